package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBusinessDate(t *testing.T) {
	t.Run("truncates to midnight UTC", func(t *testing.T) {
		instant := time.Date(2024, 3, 15, 23, 59, 59, 999, time.UTC)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), NormalizeBusinessDate(instant))
	})

	t.Run("converts other zones to UTC first", func(t *testing.T) {
		zone := time.FixedZone("UTC+5", 5*3600)
		// 02:00 on the 16th in UTC+5 is still the 15th in UTC
		instant := time.Date(2024, 3, 16, 2, 0, 0, 0, zone)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), NormalizeBusinessDate(instant))
	})
}

func TestMonthInterval(t *testing.T) {
	t.Run("any instant in the month maps to the same interval", func(t *testing.T) {
		start, end := MonthInterval(time.Date(2024, 3, 17, 14, 30, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("leap February", func(t *testing.T) {
		start, end := MonthInterval(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), end)
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), EndOfMonthDate(start))
	})

	t.Run("December rolls into the next year", func(t *testing.T) {
		start, end := MonthInterval(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), end)
	})
}
