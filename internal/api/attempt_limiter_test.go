package api

import (
	"testing"
	"time"
)

func TestAttemptLimiterWindowAndReset(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(1, time.Hour)
	key := "127.0.0.1"
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

	limiter.recordFailure(key, now.Add(-2*time.Hour))
	if limiter.blocked(key, now) {
		t.Fatal("expected old attempt to be pruned from active window")
	}

	limiter.recordFailure(key, now.Add(-30*time.Minute))
	if !limiter.blocked(key, now) {
		t.Fatal("expected one recent attempt to hit limit 1")
	}

	limiter.reset(key)
	if limiter.blocked(key, now) {
		t.Fatal("expected no attempts after reset")
	}
}

func TestAttemptLimiterKeepsClientsApart(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(2, time.Minute)
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

	limiter.recordFailure("10.0.0.1", now)
	limiter.recordFailure("10.0.0.1", now.Add(time.Second))
	limiter.recordFailure("10.0.0.2", now)

	if !limiter.blocked("10.0.0.1", now.Add(2*time.Second)) {
		t.Fatal("expected 10.0.0.1 to be blocked after two failures")
	}
	if limiter.blocked("10.0.0.2", now.Add(2*time.Second)) {
		t.Fatal("expected 10.0.0.2 to stay below the limit")
	}
	if limiter.blocked("10.0.0.1", now.Add(2*time.Minute)) {
		t.Fatal("expected failures older than the window to stop counting")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer  abc ", want: "abc"},
		{header: "Basic abc", want: ""},
		{header: "abc", want: ""},
		{header: "", want: ""},
	}
	for _, tt := range tests {
		if got := bearerToken(tt.header); got != tt.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
