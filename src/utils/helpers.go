package utils

import (
	"time"

	"ygb/src/config"
)

// ParseWireDate parses a DD.MM.YYYY date into a UTC-midnight time.Time.
// Calendar dates carry no clock component anywhere in the system.
func ParseWireDate(s string) (time.Time, error) {
	t, err := time.Parse(config.WIRE_DATE_FORMAT, s)
	if err != nil {
		return time.Time{}, err
	}
	return Midnight(t), nil
}

func FormatWireDate(t time.Time) string {
	return t.Format(config.WIRE_DATE_FORMAT)
}

// Midnight truncates a timestamp to its UTC calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DatesBetween expands an inclusive date range into individual days.
func DatesBetween(start, end time.Time) []time.Time {
	start = Midnight(start)
	end = Midnight(end)
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func FormatWireDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, FormatWireDate(d))
	}
	return out
}
