package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inheir-ai/inheir-console/internal/api"
	"github.com/inheir-ai/inheir-console/internal/validate"
)

var (
	reportName    string
	reportEmail   string
	reportAddress string
	reportText    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Submit and review property reports",
}

// reportSubmitCmd files a property report.
var reportSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a property report",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, flush, err := buildLogger(GetConfig().Log.Level, false)
		if err != nil {
			return err
		}
		defer flush()

		form := validate.ReportForm{
			FullName: reportName,
			Email:    reportEmail,
			Address:  reportAddress,
			Report:   reportText,
		}
		if errs := validate.Report(form); !errs.OK() {
			for field, msg := range errs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
			}
			return fmt.Errorf("invalid report input")
		}

		client, st, _, err := openWorkspace(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := client.CreateReport(cmd.Context(), api.Report{
			FullName: form.FullName,
			Email:    form.Email,
			Address:  form.Address,
			Report:   form.Report,
		})
		if err != nil {
			return fmt.Errorf("failed to submit report: %w", err)
		}
		if id != "" {
			fmt.Printf("Report submitted (%s)\n", id)
		} else {
			fmt.Println("Report submitted")
		}
		return nil
	},
}

// reportListCmd lists submitted reports (admin only).
var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted reports (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, flush, err := buildLogger(GetConfig().Log.Level, false)
		if err != nil {
			return err
		}
		defer flush()

		client, st, _, err := openWorkspace(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		reports, err := client.AllReports(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list reports: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tADDRESS\tSTATUS\tREPORTED BY")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Address, r.Status, r.FullName)
		}
		return w.Flush()
	},
}

func newReportActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <report-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, flush, err := buildLogger(GetConfig().Log.Level, false)
			if err != nil {
				return err
			}
			defer flush()

			client, st, _, err := openWorkspace(logger)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := client.ReportAction(cmd.Context(), args[0], action); err != nil {
				return fmt.Errorf("failed to %s report: %w", action, err)
			}
			fmt.Printf("Report %s: %s\n", args[0], action)
			return nil
		},
	}
}

func init() {
	reportSubmitCmd.Flags().StringVar(&reportName, "name", "", "your full name")
	reportSubmitCmd.Flags().StringVar(&reportEmail, "email", "", "contact email")
	reportSubmitCmd.Flags().StringVar(&reportAddress, "address", "", "property address")
	reportSubmitCmd.Flags().StringVar(&reportText, "reason", "", "reason for reporting")
	reportSubmitCmd.MarkFlagRequired("name")
	reportSubmitCmd.MarkFlagRequired("email")
	reportSubmitCmd.MarkFlagRequired("address")
	reportSubmitCmd.MarkFlagRequired("reason")

	reportCmd.AddCommand(reportSubmitCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(newReportActionCmd("verify", "Verify a report (admin)"))
	reportCmd.AddCommand(newReportActionCmd("reject", "Reject a report (admin)"))
	rootCmd.AddCommand(reportCmd)
}
