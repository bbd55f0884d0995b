package service

import (
	"time"
)

// NormalizeBusinessDate truncates an instant to its business date,
// midnight UTC. Accrual records are keyed on the result.
func NormalizeBusinessDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns midnight UTC on the first day of the month
// containing t
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthInterval returns the half-open range [start, end) covering the
// month containing t
func MonthInterval(t time.Time) (time.Time, time.Time) {
	start := StartOfMonth(t)
	return start, start.AddDate(0, 1, 0)
}

// EndOfMonthDate returns the last business date of the month containing t
func EndOfMonthDate(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}
