package domain

import "time"

// Schedule returns the candidate slot dates for a writer: weekly steps
// starting at today plus the lead time, capped at today plus the
// requested number of weeks. Blackouts and capacity are applied by the
// caller against live data.
func Schedule(today time.Time, leadTimeDays, weeksAhead int) []time.Time {
	start := today.AddDate(0, 0, leadTimeDays)
	end := today.AddDate(0, 0, weeksAhead*7)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}
