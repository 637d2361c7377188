package pms

import (
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parseDate accepts a calendar date (UTC midnight) or a full RFC 3339 timestamp
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// nightsBetween rounds partial days up. Zero means the range is empty or inverted.
func nightsBetween(checkIn, checkOut time.Time) int {
	diff := checkOut.Sub(checkIn)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}

func seasonMultiplier(checkIn time.Time) float64 {
	switch checkIn.UTC().Month() {
	case time.December, time.January, time.February:
		return 1.25
	case time.March, time.April:
		return 1.10
	case time.September, time.October, time.November:
		return 0.95
	default:
		return 1.0
	}
}

func isWeekend(checkIn time.Time) bool {
	day := checkIn.UTC().Weekday()
	return day == time.Friday || day == time.Saturday
}

func weekendMultiplier(checkIn time.Time) float64 {
	if isWeekend(checkIn) {
		return 1.10
	}
	return 1.0
}

// nightlyRate applies the season and weekend adjustments of the check-in date
func nightlyRate(room Room, checkIn time.Time) int {
	rate := float64(room.BaseNightlyRate) * seasonMultiplier(checkIn) * weekendMultiplier(checkIn)
	return int(math.Round(rate))
}

// unitsLeft is the inventory for a room, one unit fewer on weekend arrivals
func unitsLeft(room Room, checkIn time.Time) int {
	units := baseInventory[room.ID]
	if isWeekend(checkIn) {
		units--
	}
	if units < 0 {
		return 0
	}
	return units
}
