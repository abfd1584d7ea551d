// Package report folds time entries over a date range into summary
// statistics and a human-readable text rendering. All functions are pure;
// callers supply immutable snapshots and own any concurrency control.
package report

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tallysheet/tally/internal/model"
	"github.com/tallysheet/tally/internal/timecalc"
)

// ErrMixedCurrencies is returned when a report would silently sum amounts
// in more than one currency. No conversion is performed anywhere; a report
// is only meaningful over a single currency.
var ErrMixedCurrencies = errors.New("entries use more than one currency")

// Filter returns the entries that qualify for a report over the closed
// range [from, to]: date within range by calendar-date string comparison
// and a non-empty end time. In-progress entries never contribute to totals.
func Filter(entries []model.TimeEntry, from, to string) []model.TimeEntry {
	var out []model.TimeEntry
	for _, e := range entries {
		if e.InProgress() {
			continue
		}
		if e.Date < from || e.Date > to {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ValidateSingleCurrency returns ErrMixedCurrencies when the entries span
// more than one currency code.
func ValidateSingleCurrency(entries []model.TimeEntry) error {
	var seen []string
	for _, e := range entries {
		found := false
		for _, c := range seen {
			if c == e.Currency {
				found = true
				break
			}
		}
		if !found {
			seen = append(seen, e.Currency)
		}
	}
	if len(seen) > 1 {
		return fmt.Errorf("%w: %s", ErrMixedCurrencies, strings.Join(seen, ", "))
	}
	return nil
}

// Aggregate builds a report over the qualifying entries of [from, to].
// It returns nil when no entry qualifies.
//
// The report currency is the code appearing most often among qualifying
// entries, ties broken by first encounter; amounts are never converted
// between currencies. Callers that need the single-currency guarantee run
// ValidateSingleCurrency(Filter(...)) first.
func Aggregate(entries []model.TimeEntry, from, to string) *model.TimesheetReport {
	qualifying := Filter(entries, from, to)
	if len(qualifying) == 0 {
		return nil
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		if qualifying[i].Date != qualifying[j].Date {
			return qualifying[i].Date < qualifying[j].Date
		}
		return qualifying[i].StartTime < qualifying[j].StartTime
	})

	var totalHours, totalEarnings float64
	byDay := map[string]*model.DaySummary{}
	var dayOrder []string
	for _, e := range qualifying {
		pay, ok := timecalc.EntryPay(e)
		if !ok {
			continue
		}
		totalHours += pay.Hours
		totalEarnings += pay.Amount

		day, seen := byDay[e.Date]
		if !seen {
			day = &model.DaySummary{Date: e.Date}
			byDay[e.Date] = day
			dayOrder = append(dayOrder, e.Date)
		}
		day.Hours += pay.Hours
		day.Earnings += pay.Amount
	}

	// Average rate over the unrounded sums; zero when every qualifying
	// entry billed zero hours.
	var avg float64
	if totalHours > 0 {
		avg = totalEarnings / totalHours
	}

	sort.Strings(dayOrder)
	days := make([]model.DaySummary, 0, len(dayOrder))
	for _, d := range dayOrder {
		s := byDay[d]
		days = append(days, model.DaySummary{
			Date:     s.Date,
			Hours:    round2(s.Hours),
			Earnings: round2(s.Earnings),
		})
	}

	return &model.TimesheetReport{
		StartDate:         from,
		EndDate:           to,
		Entries:           qualifying,
		TotalHours:        round2(totalHours),
		TotalEarnings:     round2(totalEarnings),
		AverageHourlyRate: round2(avg),
		Currency:          pluralityCurrency(qualifying),
		Days:              days,
	}
}

// pluralityCurrency returns the most frequent currency code, ties broken
// by first encounter during iteration.
func pluralityCurrency(entries []model.TimeEntry) string {
	counts := map[string]int{}
	var order []string
	for _, e := range entries {
		if counts[e.Currency] == 0 {
			order = append(order, e.Currency)
		}
		counts[e.Currency]++
	}
	best := ""
	for _, code := range order {
		if best == "" || counts[code] > counts[best] {
			best = code
		}
	}
	return best
}

// FormatText renders a report as plain text: one line per entry, then a
// total-pay trailer.
func FormatText(r *model.TimesheetReport) string {
	symbol := model.CurrencySymbol(r.Currency)
	var b strings.Builder
	for _, e := range r.Entries {
		pay, ok := timecalc.EntryPay(e)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s - Work from %s to %s - %s\n",
			timecalc.FormatDate(e.Date), e.StartTime, e.EndTime,
			timecalc.FormatMoney(symbol, pay.Amount))
	}
	fmt.Fprintf(&b, "Total Pay: %s\n", timecalc.FormatMoney(symbol, r.TotalEarnings))
	return b.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
