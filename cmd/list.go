package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallysheet/tally/internal/model"
	"github.com/tallysheet/tally/internal/timecalc"
)

var (
	listFrom string
	listTo   string
	listWeek bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listFrom, "from", "", "Start date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "End date (YYYY-MM-DD)")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's entries (default)")
}

// resolveRange turns the --from/--to/--week flags into an inclusive date
// range, defaulting to the current ISO week.
func resolveRange(from, to string) (string, string, error) {
	if from == "" && to == "" {
		monday, sunday := timecalc.WeekRange(time.Now())
		return timecalc.ISODate(monday), timecalc.ISODate(sunday), nil
	}
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return "", "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", d)
		}
	}
	return from, to, nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	from, to, err := resolveRange(listFrom, listTo)
	if err != nil {
		return err
	}

	entries, err := s.client.ListEntries(ctx, s.user.ID, from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	printList(entries)
	return nil
}

// printList groups entries by date and prints them.
func printList(entries []model.TimeEntry) {
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return
	}

	var currentDay string
	for _, e := range entries {
		if e.Date != currentDay {
			fmt.Println(e.Date)
			currentDay = e.Date
		}

		endStr := "ongoing"
		payStr := ""
		if pay, ok := timecalc.EntryPay(e); ok {
			endStr = e.EndTime
			symbol := model.CurrencySymbol(e.Currency)
			payStr = fmt.Sprintf("  (%sh, %s)",
				timecalc.FormatHours(pay.Hours), timecalc.FormatMoney(symbol, pay.Amount))
		}

		fmt.Printf("%s–%s  break %dm%s\n", e.StartTime, endStr, e.BreakTime, payStr)
	}
}
