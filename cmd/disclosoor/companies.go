package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bugbridge/disclosoor/pkg/client"
	"github.com/spf13/cobra"
)

var (
	companyName        string
	companyIndustry    string
	companyWebsite     string
	companyDescription string
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Browse and manage companies",
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies accepting reports",
	RunE:  runCompaniesList,
}

var companiesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one company",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompaniesShow,
}

var companiesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create your company profile",
	RunE:  runCompaniesCreate,
}

func init() {
	companiesCreateCmd.Flags().StringVar(&companyName, "name", "", "company name")
	companiesCreateCmd.Flags().StringVar(&companyIndustry, "industry", "", "industry")
	companiesCreateCmd.Flags().StringVar(&companyWebsite, "website", "", "website URL")
	companiesCreateCmd.Flags().StringVar(&companyDescription, "description", "", "description")
	_ = companiesCreateCmd.MarkFlagRequired("name")
	_ = companiesCreateCmd.MarkFlagRequired("industry")

	companiesCmd.AddCommand(companiesListCmd, companiesShowCmd, companiesCreateCmd)
	rootCmd.AddCommand(companiesCmd)
}

func runCompaniesList(cmd *cobra.Command, args []string) error {
	s, _, err := newStore()
	if err != nil {
		return err
	}

	companies, err := s.LoadCompanies(cmd.Context())
	if err != nil {
		return err
	}

	if len(companies) == 0 {
		fmt.Println("No companies found.")

		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tINDUSTRY\tACCEPTING\tREPORTS")

	for _, c := range companies {
		accepting := "no"
		if c.AcceptingReports {
			accepting = "yes"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			c.ID, c.Name, c.Industry, accepting, c.BugReportsCount)
	}

	return w.Flush()
}

func runCompaniesShow(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	company, err := c.GetCompany(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Name:        %s\n", company.Name)
	fmt.Printf("Industry:    %s\n", company.Industry)
	fmt.Printf("Website:     %s\n", company.Website)
	fmt.Printf("Created:     %s\n", company.CreatedAt)
	fmt.Printf("Reports:     %d\n", company.BugReportsCount)
	fmt.Printf("Accepting:   %v\n", company.AcceptingReports)
	fmt.Printf("Description: %s\n", company.Description)

	return nil
}

func runCompaniesCreate(cmd *cobra.Command, args []string) error {
	s, _, err := newStore()
	if err != nil {
		return err
	}

	s.RestoreSession(cmd.Context())

	if s.Snapshot().User == nil {
		return fmt.Errorf("not logged in; run `disclosoor auth login`")
	}

	profile, err := s.CreateCompany(cmd.Context(), client.CreateCompanyRequest{
		Name:        companyName,
		Industry:    companyIndustry,
		Website:     companyWebsite,
		Description: companyDescription,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Company profile created: %s (id %s)\n", profile.Name, profile.ID)

	return nil
}
