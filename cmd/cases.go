package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	caseTitle      string
	caseAddress    string
	caseDocument   string
	caseSupporting []string
	caseRemarks    string
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Work with cases from the command line",
}

// casesListCmd prints the case history as a table.
var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your cases",
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

		cases, err := client.CaseHistory(cmd.Context())
		if err != nil {
			// Offline fallback to the cached copy.
			cached, cerr := st.CachedCases(cmd.Context())
			if cerr != nil || len(cached) == 0 {
				return fmt.Errorf("failed to list cases: %w", err)
			}
			fmt.Fprintln(os.Stderr, "Backend unreachable, showing cached cases")
			cases = cached
		} else if err := st.ReplaceCases(cmd.Context(), cases); err != nil {
			logger.Debugw("case cache write failed", "error", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CASE ID\tTITLE\tSTATUS\tCREATED")
		for _, c := range cases {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.CaseID, c.Title, c.Status, c.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

// casesShowCmd prints one case's analysis.
var casesShowCmd = &cobra.Command{
	Use:   "show <case-id>",
	Short: "Show a case's analysis",
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

		data, err := client.CaseDetail(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch case: %w", err)
		}

		fmt.Printf("%s  [%s]\n", data.Meta.Title, data.Meta.Status)
		if data.Summary.CaseType != "" {
			fmt.Printf("Type: %s\n", data.Summary.CaseType)
		}
		if data.Summary.Summary != "" {
			fmt.Printf("\n%s\n", data.Summary.Summary)
		}
		if len(data.Summary.Entities) > 0 {
			fmt.Println("\nParties:")
			for _, e := range data.Summary.Entities {
				valid := "valid"
				if !e.Valid {
					valid = "unverified"
				}
				fmt.Printf("  %s (%s, %s)\n", e.Name, e.EntityType, valid)
			}
		}
		if len(data.Summary.Assets) > 0 {
			fmt.Println("\nAssets:")
			for _, a := range data.Summary.Assets {
				fmt.Printf("  %s (%s)", a.Name, a.AssetType)
				if a.Location != "" {
					fmt.Printf(" @ %s", a.Location)
				}
				fmt.Println()
			}
		}
		if len(data.Summary.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for _, r := range data.Summary.Recommendations {
				fmt.Printf("  - %s\n", r)
			}
		}
		if data.Summary.Remarks != "" {
			fmt.Printf("\nRemarks: %s\n", data.Summary.Remarks)
		}
		return nil
	},
}

// casesCreateCmd uploads documents and opens a new case.
var casesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a case from local documents",
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

		caseID, err := client.CreateCase(cmd.Context(), caseTitle, caseAddress, caseDocument, caseSupporting)
		if err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}
		fmt.Printf("Created case %s\n", caseID)
		return nil
	},
}

func newStatusCmd(action, short string) *cobra.Command {
	c := &cobra.Command{
		Use:   action + " <case-id>",
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

			change, err := client.SetCaseStatus(cmd.Context(), args[0], action, caseRemarks)
			if err != nil {
				return fmt.Errorf("failed to %s case: %w", action, err)
			}
			if err := st.UpdateCaseStatus(cmd.Context(), args[0], string(change.Status)); err != nil {
				logger.Debugw("cached status update failed", "error", err)
			}
			fmt.Printf("Case %s is now %s\n", args[0], change.Status)
			return nil
		},
	}
	c.Flags().StringVar(&caseRemarks, "remarks", "", "closing remarks")
	return c
}

func init() {
	casesCreateCmd.Flags().StringVar(&caseTitle, "title", "", "case title")
	casesCreateCmd.Flags().StringVar(&caseAddress, "address", "", "property address")
	casesCreateCmd.Flags().StringVar(&caseDocument, "document", "", "path to the main document")
	casesCreateCmd.Flags().StringSliceVar(&caseSupporting, "supporting", nil, "paths to supporting documents")
	casesCreateCmd.MarkFlagRequired("title")
	casesCreateCmd.MarkFlagRequired("address")
	casesCreateCmd.MarkFlagRequired("document")

	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesShowCmd)
	casesCmd.AddCommand(casesCreateCmd)
	casesCmd.AddCommand(newStatusCmd("resolve", "Resolve an open case"))
	casesCmd.AddCommand(newStatusCmd("abort", "Abort an open case"))
	rootCmd.AddCommand(casesCmd)
}
