package model

// TimeEntry is one logged work session. Entries belong to exactly one user
// and are keyed to a single calendar day; an empty EndTime means the session
// is still in progress and not yet billable.
type TimeEntry struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Date       string  `json:"date"`       // YYYY-MM-DD
	StartTime  string  `json:"start_time"` // HH:MM, 24-hour
	EndTime    string  `json:"end_time"`   // HH:MM or "" while in progress
	BreakTime  int     `json:"break_time"` // minutes deducted from the worked span
	HourlyRate float64 `json:"hourly_rate"`
	Currency   string  `json:"currency"`
}

// InProgress reports whether the entry has no end time yet.
func (e TimeEntry) InProgress() bool {
	return e.EndTime == ""
}

// Template is a named preset of entry defaults used to prefill or directly
// instantiate new time entries.
type Template struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	BreakTime  int     `json:"break_time"`
	HourlyRate float64 `json:"hourly_rate"`
	Currency   string  `json:"currency"`
}

// Entry builds a time entry for the given user and date from the template's
// defaults. The ID is left empty; the persistence service assigns it.
func (t Template) Entry(userID, date string) TimeEntry {
	return TimeEntry{
		UserID:     userID,
		Date:       date,
		StartTime:  t.StartTime,
		EndTime:    t.EndTime,
		BreakTime:  t.BreakTime,
		HourlyRate: t.HourlyRate,
		Currency:   t.Currency,
	}
}
