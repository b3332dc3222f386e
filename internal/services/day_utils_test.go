package services

import (
	"testing"
	"time"
)

func TestDayRangeNormalizesToLocationMidnight(t *testing.T) {
	location, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	raw := time.Date(2026, 2, 1, 19, 35, 10, 0, time.UTC)
	start, end := DayRange(raw, location)

	if start.Format(time.RFC3339) != "2026-02-02T00:00:00+05:30" {
		t.Fatalf("DayRange() start = %s", start.Format(time.RFC3339))
	}
	if end.Sub(start) != 24*time.Hour {
		t.Fatalf("DayRange() span = %s, want 24h", end.Sub(start))
	}
}

func TestDateAtLocationDefaultsToUTC(t *testing.T) {
	got := DateAtLocation(time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC), nil)
	if got.Location() != time.UTC || got.Day() != 9 || got.Hour() != 0 {
		t.Fatalf("DateAtLocation(nil) = %s", got)
	}
}

func TestResolveSummaryDate(t *testing.T) {
	now := time.Date(2025, 12, 28, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "explicit date", raw: "2025-12-27", want: "2025-12-27"},
		{name: "padded date", raw: " 2025-12-01 ", want: "2025-12-01"},
		{name: "missing date", raw: "", want: "2025-12-28"},
		{name: "unparseable date", raw: "yesterday", want: "2025-12-28"},
		{name: "wrong layout", raw: "27/12/2025", want: "2025-12-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSummaryDate(tt.raw, now, time.UTC)
			if got.Format(DateLayout) != tt.want {
				t.Fatalf("ResolveSummaryDate(%q) = %s, want %s", tt.raw, got.Format(DateLayout), tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Fatalf("ResolveSummaryDate(%q) not normalized to midnight: %s", tt.raw, got)
			}
		})
	}
}
