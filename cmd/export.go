package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallysheet/tally/internal/model"
	"github.com/tallysheet/tally/internal/timecalc"
)

var (
	exportFrom   string
	exportTo     string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Start date (YYYY-MM-DD, default this week)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "End date (YYYY-MM-DD, default this week)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	from, to, err := resolveRange(exportFrom, exportTo)
	if err != nil {
		return err
	}

	entries, err := s.client.ListEntries(ctx, s.user.ID, from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	switch exportFormat {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	case "md":
		printList(entries)
	default: // csv
		printCSV(entries)
	}

	return nil
}

func printCSV(entries []model.TimeEntry) {
	fmt.Println("date,start,end,break_minutes,hourly_rate,currency,hours,pay")
	for _, e := range entries {
		hours := ""
		payout := ""
		if pay, ok := timecalc.EntryPay(e); ok {
			hours = fmt.Sprintf("%.4f", pay.Hours)
			payout = fmt.Sprintf("%.2f", pay.Amount)
		}
		fmt.Printf("%s,%s,%s,%d,%g,%s,%s,%s\n",
			csvEscape(e.Date),
			csvEscape(e.StartTime),
			csvEscape(e.EndTime),
			e.BreakTime,
			e.HourlyRate,
			csvEscape(e.Currency),
			hours,
			payout,
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	// Escape internal double quotes by doubling them.
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
