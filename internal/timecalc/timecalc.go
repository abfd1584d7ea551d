package timecalc

import (
	"fmt"
	"time"

	"github.com/tallysheet/tally/internal/model"
)

// Pay is the billable outcome of a single completed entry.
type Pay struct {
	Hours  float64
	Amount float64
}

// ParseClock parses a 24-hour HH:MM string into minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return h*60 + m, nil
}

// EntryPay computes the billable hours and pay for one entry.
//
// The second return value is false for entries that cannot be billed yet:
// in-progress entries (empty end time) and entries whose times do not parse.
// A non-positive worked span (end before start, or break exceeding the span)
// yields zero hours and zero pay; shifts never roll over midnight, so
// end < start is not treated as a next-day end.
func EntryPay(e model.TimeEntry) (Pay, bool) {
	if e.InProgress() {
		return Pay{}, false
	}
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return Pay{}, false
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return Pay{}, false
	}

	billable := end - start - e.BreakTime
	if billable <= 0 {
		return Pay{}, true
	}
	hours := float64(billable) / 60
	return Pay{Hours: hours, Amount: hours * e.HourlyRate}, true
}

// FormatMoney renders an amount with its currency symbol and exactly two
// decimal places, e.g. "$150.00".
func FormatMoney(symbol string, amount float64) string {
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

// FormatHours renders hours with one decimal place for display. Aggregation
// always works on the full-precision value.
func FormatHours(h float64) string {
	return fmt.Sprintf("%.1f", h)
}

// FormatDate renders an ISO date (YYYY-MM-DD) in the medium display form
// used by reports, e.g. "Apr 29, 2026". Unparseable input is returned as is.
func FormatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2, 2006")
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, 6)
	return monday, sunday
}

// ISODate formats t as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
