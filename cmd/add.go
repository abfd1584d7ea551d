package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallysheet/tally/internal/backend"
	"github.com/tallysheet/tally/internal/model"
	"github.com/tallysheet/tally/internal/timecalc"
)

var (
	addDate     string
	addStart    string
	addEnd      string
	addBreak    int
	addRate     float64
	addCurrency string
	addTemplate string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a new time entry",
	Long: `Log a new time entry. Omitting --end records the entry as in progress.
Rate, currency and break default to the most recent entry's values; pass
--template to instantiate a saved template instead.`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "Work day (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVar(&addStart, "start", "", "Start time (HH:MM)")
	addCmd.Flags().StringVar(&addEnd, "end", "", "End time (HH:MM); omit while still working")
	addCmd.Flags().IntVar(&addBreak, "break", 0, "Break minutes")
	addCmd.Flags().Float64Var(&addRate, "rate", 0, "Hourly rate")
	addCmd.Flags().StringVar(&addCurrency, "currency", "", "Currency code (e.g. USD)")
	addCmd.Flags().StringVar(&addTemplate, "template", "", "Name of a saved template to instantiate")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	date := addDate
	if date == "" {
		date = timecalc.ISODate(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid --date value %q: want YYYY-MM-DD", date)
	}

	var entry model.TimeEntry
	if addTemplate != "" {
		tmpl, err := findTemplate(cmd, s, addTemplate)
		if err != nil {
			return err
		}
		entry = tmpl.Entry(s.user.ID, date)
	} else {
		if addStart == "" {
			return errors.New("--start is required (or use --template)")
		}
		entry = model.TimeEntry{
			UserID:     s.user.ID,
			Date:       date,
			StartTime:  addStart,
			EndTime:    addEnd,
			BreakTime:  addBreak,
			HourlyRate: addRate,
			Currency:   addCurrency,
		}
		fillEntryDefaults(cmd, s, &entry)
	}

	if _, err := timecalc.ParseClock(entry.StartTime); err != nil {
		return err
	}
	if entry.EndTime != "" {
		if _, err := timecalc.ParseClock(entry.EndTime); err != nil {
			return err
		}
	}
	if !model.ValidCurrency(entry.Currency) {
		return fmt.Errorf("unsupported currency %q", entry.Currency)
	}

	created, err := s.client.CreateEntry(ctx, entry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if pay, ok := timecalc.EntryPay(created); ok {
		symbol := model.CurrencySymbol(created.Currency)
		fmt.Printf("Logged %s %s–%s: %sh, %s\n",
			created.Date, created.StartTime, created.EndTime,
			timecalc.FormatHours(pay.Hours), timecalc.FormatMoney(symbol, pay.Amount))
	} else {
		fmt.Printf("Logged %s starting %s (in progress)\n", created.Date, created.StartTime)
	}
	return nil
}

// fillEntryDefaults backfills rate, currency and break from the most recent
// entry when the user did not pass the corresponding flags.
func fillEntryDefaults(cmd *cobra.Command, s *session, entry *model.TimeEntry) {
	needRate := !cmd.Flags().Changed("rate")
	needCurrency := !cmd.Flags().Changed("currency")
	needBreak := !cmd.Flags().Changed("break")
	if !needRate && !needCurrency && !needBreak {
		return
	}

	recent, err := s.client.RecentEntry(cmd.Context(), s.user.ID)
	if err != nil {
		if !errors.Is(err, backend.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Warning: could not load entry defaults: %v\n", err)
		}
		if needCurrency {
			entry.Currency = "USD"
		}
		return
	}
	if needRate {
		entry.HourlyRate = recent.HourlyRate
	}
	if needCurrency {
		entry.Currency = recent.Currency
	}
	if needBreak {
		entry.BreakTime = recent.BreakTime
	}
}

// findTemplate resolves a template by name or ID.
func findTemplate(cmd *cobra.Command, s *session, nameOrID string) (model.Template, error) {
	templates, err := s.client.ListTemplates(cmd.Context(), s.user.ID)
	if err != nil {
		return model.Template{}, err
	}
	for _, t := range templates {
		if t.Name == nameOrID || t.ID == nameOrID {
			return t, nil
		}
	}
	return model.Template{}, fmt.Errorf("no template named %q", nameOrID)
}
