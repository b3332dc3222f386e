package services

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrRangeFromInvalid = errors.New("range from date invalid")
	ErrRangeToInvalid   = errors.New("range to date invalid")
	ErrRangeReversed    = errors.New("range ends before it starts")
)

// DateRange is a ledger query window of calendar days. Nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange reads optional YYYY-MM-DD bounds in location.
func ParseDateRange(rawFrom string, rawTo string, location *time.Location) (DateRange, error) {
	from, err := parseRangeBound(rawFrom, location)
	if err != nil {
		return DateRange{}, ErrRangeFromInvalid
	}
	to, err := parseRangeBound(rawTo, location)
	if err != nil {
		return DateRange{}, ErrRangeToInvalid
	}

	dateRange := DateRange{From: from, To: to}
	if from != nil && to != nil && to.Before(*from) {
		return DateRange{}, ErrRangeReversed
	}
	return dateRange, nil
}

// Window closes the open bounds: a missing end is today and a missing start
// reaches back span days including the end day.
func (dateRange DateRange) Window(today time.Time, span int) (time.Time, time.Time, error) {
	end := today
	if dateRange.To != nil {
		end = *dateRange.To
	}
	start := end.AddDate(0, 0, -(span - 1))
	if dateRange.From != nil {
		start = *dateRange.From
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrRangeReversed
	}
	return start, end, nil
}

func parseRangeBound(raw string, location *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(DateLayout, raw, location)
	if err != nil {
		return nil, err
	}
	day := DateAtLocation(parsed, location)
	return &day, nil
}
