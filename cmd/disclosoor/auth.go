package main

import (
	"fmt"
	"strings"

	"github.com/bugbridge/disclosoor/pkg/client"
	"github.com/spf13/cobra"
)

var (
	authEmail     string
	authPassword  string
	authFirstName string
	authLastName  string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate against the platform",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session's user",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&authEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	signupCmd.Flags().StringVar(&authEmail, "email", "", "account email")
	signupCmd.Flags().StringVar(&authPassword, "password", "", "account password")
	signupCmd.Flags().StringVar(&authFirstName, "first-name", "", "first name")
	signupCmd.Flags().StringVar(&authLastName, "last-name", "", "last name")
	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("password")
	_ = signupCmd.MarkFlagRequired("first-name")
	_ = signupCmd.MarkFlagRequired("last-name")

	authCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(authCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	s, _, err := newStore()
	if err != nil {
		return err
	}

	resp, err := s.Login(cmd.Context(), authEmail, authPassword)
	if err != nil {
		return friendlyAuthError(err)
	}

	fmt.Printf("Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)

	if resp.CompanyProfile != nil {
		fmt.Printf("Company profile: %s\n", resp.CompanyProfile.Name)
	}

	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	s, _, err := newStore()
	if err != nil {
		return err
	}

	resp, err := s.Signup(cmd.Context(), client.SignupRequest{
		FirstName: authFirstName,
		LastName:  authLastName,
		Email:     authEmail,
		Password:  authPassword,
	})
	if err != nil {
		return friendlyAuthError(err)
	}

	fmt.Printf("Account created. Logged in as %s <%s>\n",
		resp.User.Name, resp.User.Email)

	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, _, err := newStore()
	if err != nil {
		return err
	}

	s.RestoreSession(cmd.Context())
	s.Logout(cmd.Context())

	fmt.Println("Logged out.")

	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s, _, err := newStore()
	if err != nil {
		return err
	}

	s.RestoreSession(cmd.Context())

	snap := s.Snapshot()
	if snap.User == nil {
		return fmt.Errorf("not logged in; run `disclosoor auth login`")
	}

	fmt.Printf("User:     %s\n", snap.User.Name)
	fmt.Printf("Email:    %s\n", snap.User.Email)
	fmt.Printf("Username: %s\n", snap.User.Username)
	fmt.Printf("ID:       %s\n", snap.User.ID)

	if snap.CompanyProfile != nil {
		fmt.Printf("Company:  %s (%s)\n",
			snap.CompanyProfile.Name, snap.CompanyProfile.Industry)
	}

	return nil
}

// friendlyAuthError maps platform auth failures to messages a person can
// act on; everything else passes through unchanged.
func friendlyAuthError(err error) error {
	if status, ok := client.HTTPStatusCode(err); ok && status == 401 {
		return fmt.Errorf("invalid email or password")
	}

	if strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("an account with this email already exists")
	}

	return err
}
