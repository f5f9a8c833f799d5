package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bugbridge/disclosoor/pkg/client"
)

var (
	userName  string
	userEmail string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Look up and update user accounts",
}

var usersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersShow,
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user's profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersUpdate,
}

func init() {
	usersUpdateCmd.Flags().StringVar(&userName, "name", "", "new display name")
	usersUpdateCmd.Flags().StringVar(&userEmail, "email", "", "new email address")

	usersCmd.AddCommand(usersShowCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersShow(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	user, err := c.GetUser(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", user.ID)
	fmt.Printf("Name:     %s\n", user.Name)
	fmt.Printf("Email:    %s\n", user.Email)
	fmt.Printf("Username: %s\n", user.Username)

	return nil
}

func runUsersUpdate(cmd *cobra.Command, args []string) error {
	if userName == "" && userEmail == "" {
		return fmt.Errorf("nothing to update, pass --name or --email")
	}

	s, _, err := newStore()
	if err != nil {
		return err
	}

	s.RestoreSession(cmd.Context())

	if s.Snapshot().User == nil {
		return fmt.Errorf("not logged in; run `disclosoor auth login`")
	}

	req := client.UpdateUserRequest{
		Name:  userName,
		Email: userEmail,
	}

	user, err := s.Client().UpdateUser(cmd.Context(), args[0], req)
	if err != nil {
		return err
	}

	fmt.Printf("Updated user %s (%s)\n", user.Name, user.Email)

	return nil
}
