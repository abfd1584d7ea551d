package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallysheet/tally/internal/report"
)

var (
	reportFrom       string
	reportTo         string
	reportFormat     string
	reportAllowMixed bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show aggregated hours and earnings",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD, default this week)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD, default this week)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "Output format: text, json")
	reportCmd.Flags().BoolVar(&reportAllowMixed, "allow-mixed", false,
		"Report across mixed currencies (sums without conversion)")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	from, to, err := resolveRange(reportFrom, reportTo)
	if err != nil {
		return err
	}

	entries, err := s.client.ListEntries(ctx, s.user.ID, from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if !reportAllowMixed {
		if err := report.ValidateSingleCurrency(report.Filter(entries, from, to)); err != nil {
			return fmt.Errorf("%w (pass --allow-mixed to sum anyway)", err)
		}
	}

	rep := report.Aggregate(entries, from, to)
	if rep == nil {
		fmt.Println("No completed entries in range.")
		return nil
	}

	switch reportFormat {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Println(string(data))
	default: // text
		fmt.Printf("%s – %s\n", rep.StartDate, rep.EndDate)
		fmt.Println("--------------------------------")
		fmt.Print(report.FormatText(rep))
	}
	return nil
}
