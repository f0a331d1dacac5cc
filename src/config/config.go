package config

import (
	"fmt"
	"os"
	"strconv"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// WIRE_DATE_FORMAT is the DD.MM.YYYY layout used on all request and response bodies.
const WIRE_DATE_FORMAT = "02.01.2006"

// SweepCrontab returns the crontab expression for the daily reconciliation
// sweep. Defaults to 01:00 server time.
func SweepCrontab() string {
	if tab := os.Getenv("SWEEP_CRONTAB"); tab != "" {
		return tab
	}
	return "0 1 * * *"
}

// CalendarSeedDays overrides the seeding window for new guide calendars.
// 0 means "rest of the current calendar year".
func CalendarSeedDays() int {
	v := os.Getenv("CALENDAR_SEED_DAYS")
	if v == "" {
		return 0
	}
	days, err := strconv.Atoi(v)
	if err != nil || days < 0 {
		return 0
	}
	return days
}
