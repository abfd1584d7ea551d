package model

// DaySummary is one point of a report's per-day series.
type DaySummary struct {
	Date     string  `json:"date"`
	Hours    float64 `json:"hours"`
	Earnings float64 `json:"earnings"`
}

// TimesheetReport is a derived aggregation over the completed entries of a
// date range. Reports are computed on demand and never persisted.
type TimesheetReport struct {
	StartDate         string       `json:"start_date"`
	EndDate           string       `json:"end_date"`
	Entries           []TimeEntry  `json:"entries"`
	TotalHours        float64      `json:"total_hours"`
	TotalEarnings     float64      `json:"total_earnings"`
	AverageHourlyRate float64      `json:"average_hourly_rate"`
	Currency          string       `json:"currency"`
	Days              []DaySummary `json:"days"`
}
