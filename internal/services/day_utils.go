package services

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// ResolveSummaryDate picks the day a meal summary belongs to: its own
// YYYY-MM-DD date when present and valid, today otherwise.
func ResolveSummaryDate(raw string, now time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		if parsed, err := time.ParseInLocation(DateLayout, trimmed, location); err == nil {
			return DateAtLocation(parsed, location)
		}
	}
	return DateAtLocation(now, location)
}

func ParseDayParam(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	parsed, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), location)
	if err != nil {
		return time.Time{}, err
	}
	return DateAtLocation(parsed, location), nil
}

func sameDay(left time.Time, right time.Time) bool {
	leftYear, leftMonth, leftDay := left.Date()
	rightYear, rightMonth, rightDay := right.Date()
	return leftYear == rightYear && leftMonth == rightMonth && leftDay == rightDay
}
