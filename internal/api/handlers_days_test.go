package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestDeleteMealUpdatesDay(t *testing.T) {
	env := newTestEnv(t)
	token := env.setupOwner(t)
	env.provider.script(lunchResponse)
	turn := sendChatMessage(t, env, token, "rice and dal", "")

	response := env.request(t, http.MethodDelete, "/api/meals/"+turn.Meal.ID, nil, token)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected delete status 200, got %d", response.StatusCode)
	}
	payload := struct {
		Day struct {
			TotalCalories int `json:"total_calories"`
		} `json:"day"`
	}{}
	decodeJSON(t, response, &payload)
	if payload.Day.TotalCalories != 0 {
		t.Fatalf("expected day total 0 after delete, got %d", payload.Day.TotalCalories)
	}

	again := env.request(t, http.MethodDelete, "/api/meals/"+turn.Meal.ID, nil, token)
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 for a deleted meal, got %d", again.StatusCode)
	}

	invalid := env.request(t, http.MethodDelete, "/api/meals/not-a-uuid", nil, token)
	if invalid.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for a bad id, got %d", invalid.StatusCode)
	}
}

func TestLogWaterAdvancesStreak(t *testing.T) {
	env := newTestEnv(t)
	token := env.setupOwner(t)

	response := env.request(t, http.MethodPost, "/api/water", fiber.Map{"amount_ml": 2500}, token)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected water status 200, got %d", response.StatusCode)
	}
	payload := struct {
		Day struct {
			WaterIntake int `json:"water_intake_ml"`
		} `json:"day"`
		Streak struct {
			CurrentStreak int `json:"current_streak"`
		} `json:"streak"`
	}{}
	decodeJSON(t, response, &payload)
	if payload.Day.WaterIntake != 2500 || payload.Streak.CurrentStreak != 1 {
		t.Fatalf("unexpected water payload %+v", payload)
	}

	streak := struct {
		CurrentStreak int `json:"current_streak"`
		LongestStreak int `json:"longest_streak"`
	}{}
	decodeJSON(t, env.request(t, http.MethodGet, "/api/streak", nil, token), &streak)
	if streak.CurrentStreak != 1 || streak.LongestStreak != 1 {
		t.Fatalf("unexpected streak %+v", streak)
	}
}

func TestLogWaterRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	token := env.setupOwner(t)

	response := env.request(t, http.MethodPost, "/api/water", fiber.Map{"amount_ml": 0}, token)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", response.StatusCode)
	}
	if got := readAPIError(t, response); got != "invalid water amount" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestGetDaysRange(t *testing.T) {
	env := newTestEnv(t)
	token := env.setupOwner(t)
	env.provider.script(lunchResponse)
	sendChatMessage(t, env, token, "rice and dal", "")

	payload := struct {
		From string `json:"from"`
		To   string `json:"to"`
		Days []struct {
			TotalCalories int `json:"total_calories"`
		} `json:"days"`
	}{}
	decodeJSON(t, env.request(t, http.MethodGet, "/api/days", nil, token), &payload)
	if payload.From != "2024-12-03" || payload.To != "2025-01-01" {
		t.Fatalf("expected default 30 day range, got %s..%s", payload.From, payload.To)
	}
	if len(payload.Days) != 1 || payload.Days[0].TotalCalories != 640 {
		t.Fatalf("unexpected days %+v", payload.Days)
	}

	decodeJSON(t, env.request(t, http.MethodGet, "/api/days?from=2024-12-01&to=2024-12-31", nil, token), &payload)
	if len(payload.Days) != 0 {
		t.Fatalf("expected no days in December, got %d", len(payload.Days))
	}
}

func TestGetDayAndRangeValidation(t *testing.T) {
	tests := []struct {
		path      string
		wantError string
	}{
		{path: "/api/days/2025-13-01", wantError: "invalid date"},
		{path: "/api/days?from=bad", wantError: "invalid from date"},
		{path: "/api/days?to=bad", wantError: "invalid to date"},
		{path: "/api/days?from=2025-01-10&to=2025-01-01", wantError: "invalid range"},
	}

	env := newTestEnv(t)
	token := env.setupOwner(t)
	for _, tt := range tests {
		response := env.request(t, http.MethodGet, tt.path, nil, token)
		if response.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", tt.path, response.StatusCode)
		}
		if got := readAPIError(t, response); got != tt.wantError {
			t.Fatalf("%s: expected error %q, got %q", tt.path, tt.wantError, got)
		}
	}
}
