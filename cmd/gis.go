package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// gisCmd runs a one-shot address analysis without the TUI.
var gisCmd = &cobra.Command{
	Use:   "gis <address>",
	Short: "Analyze an address for location risk",
	Args:  cobra.MinimumNArgs(1),
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

		address := strings.Join(args, " ")
		res, err := client.AnalyzeAddress(cmd.Context(), address)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		fmt.Printf("Address:    %s\n", res.Address)
		fmt.Printf("Risk level: %s\n", res.RiskLevel)
		fmt.Printf("Risk score: %.1f\n", res.RiskScore)
		if res.FloodRisk != "" {
			fmt.Printf("Flood risk: %s\n", res.FloodRisk)
		}
		if res.Coordinates.Latitude != 0 || res.Coordinates.Longitude != 0 {
			fmt.Printf("Location:   %.4f, %.4f\n", res.Coordinates.Latitude, res.Coordinates.Longitude)
		}
		if res.Summary != "" {
			fmt.Printf("\n%s\n", res.Summary)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gisCmd)
}
