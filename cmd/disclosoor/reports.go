package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bugbridge/disclosoor/pkg/client"
	"github.com/spf13/cobra"
)

var (
	reportsMine      bool
	reportCompanyID  string
	reportTitle      string
	reportDesc       string
	reportSeverity   string
	reportSteps      string
	reportAdditional string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse and submit bug reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bug reports",
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one bug report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

var reportsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new bug report",
	RunE:  runReportsSubmit,
}

var reportsSetStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Change a report's status (pending, under_review, accepted, rejected)",
	Args:  cobra.ExactArgs(2),
	RunE:  runReportsSetStatus,
}

func init() {
	reportsListCmd.Flags().BoolVar(&reportsMine, "mine", false,
		"only reports submitted by the current user")

	reportsSubmitCmd.Flags().StringVar(&reportCompanyID, "company", "", "target company id")
	reportsSubmitCmd.Flags().StringVar(&reportTitle, "title", "", "report title")
	reportsSubmitCmd.Flags().StringVar(&reportDesc, "description", "", "vulnerability description")
	reportsSubmitCmd.Flags().StringVar(&reportSeverity, "severity", client.SeverityMedium,
		"severity (low, medium, high, critical)")
	reportsSubmitCmd.Flags().StringVar(&reportSteps, "steps", "", "steps to reproduce")
	reportsSubmitCmd.Flags().StringVar(&reportAdditional, "additional", "", "additional context")
	_ = reportsSubmitCmd.MarkFlagRequired("company")
	_ = reportsSubmitCmd.MarkFlagRequired("title")
	_ = reportsSubmitCmd.MarkFlagRequired("description")

	reportsCmd.AddCommand(
		reportsListCmd, reportsShowCmd, reportsSubmitCmd, reportsSetStatusCmd,
	)
	rootCmd.AddCommand(reportsCmd)
}

func runReportsList(cmd *cobra.Command, args []string) error {
	s, _, err := newStore()
	if err != nil {
		return err
	}

	s.RestoreSession(cmd.Context())

	userID := ""

	if reportsMine {
		snap := s.Snapshot()
		if snap.User == nil {
			return fmt.Errorf("not logged in; run `disclosoor auth login`")
		}

		userID = snap.User.ID
	}

	reports, err := s.LoadBugReports(cmd.Context(), userID)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Println("No bug reports found.")

		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tSEVERITY\tSTATUS\tSUBMITTED")

	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, r.CompanyName, r.Severity, r.Status, r.SubmittedAt)
	}

	return w.Flush()
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	r, err := c.GetBugReport(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Title:       %s\n", r.Title)
	fmt.Printf("Company:     %s (id %s)\n", r.CompanyName, r.CompanyID)
	fmt.Printf("Severity:    %s\n", r.Severity)
	fmt.Printf("Status:      %s\n", r.Status)
	fmt.Printf("Submitted:   %s\n", r.SubmittedAt)
	fmt.Printf("Description: %s\n", r.Description)

	if r.StepsToReproduce != "" {
		fmt.Printf("Steps to reproduce:\n%s\n", indent(r.StepsToReproduce))
	}

	if r.AdditionalInfo != "" {
		fmt.Printf("Additional info:\n%s\n", indent(r.AdditionalInfo))
	}

	for _, a := range r.Attachments {
		fmt.Printf("Attachment:  %s\n", a)
	}

	return nil
}

func runReportsSubmit(cmd *cobra.Command, args []string) error {
	if !client.ValidSeverity(reportSeverity) {
		return fmt.Errorf(
			"unknown severity %q (low, medium, high, critical)", reportSeverity,
		)
	}

	s, _, err := newStore()
	if err != nil {
		return err
	}

	s.RestoreSession(cmd.Context())

	if s.Snapshot().User == nil {
		return fmt.Errorf("not logged in; run `disclosoor auth login`")
	}

	// Resolve the company so the report carries its denormalized name.
	company, err := s.Client().GetCompany(cmd.Context(), reportCompanyID)
	if err != nil {
		return err
	}

	if !company.AcceptingReports {
		return fmt.Errorf("%s is not accepting reports", company.Name)
	}

	report, err := s.CreateBugReport(cmd.Context(), client.CreateBugReportRequest{
		CompanyID:        company.ID,
		CompanyName:      company.Name,
		Title:            reportTitle,
		Description:      reportDesc,
		Severity:         reportSeverity,
		StepsToReproduce: reportSteps,
		AdditionalInfo:   reportAdditional,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Report submitted: %s (id %s, status %s)\n",
		report.Title, report.ID, report.Status)

	return nil
}

func runReportsSetStatus(cmd *cobra.Command, args []string) error {
	id, status := args[0], args[1]

	if !client.ValidStatus(status) {
		return fmt.Errorf(
			"unknown status %q (pending, under_review, accepted, rejected)",
			status,
		)
	}

	s, _, err := newStore()
	if err != nil {
		return err
	}

	s.RestoreSession(cmd.Context())

	report, err := s.UpdateBugReportStatus(cmd.Context(), id, status)
	if err != nil {
		return err
	}

	fmt.Printf("Report %s is now %s\n", report.ID, report.Status)

	return nil
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}

	return strings.Join(lines, "\n")
}
