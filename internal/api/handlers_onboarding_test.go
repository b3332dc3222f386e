package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestChatIsGatedUntilOnboardingCompletes(t *testing.T) {
	env := newTestEnv(t)
	token := env.createOwner(t)

	status := struct {
		Completed bool     `json:"completed"`
		Personas  []string `json:"personas"`
	}{}
	decodeJSON(t, env.request(t, http.MethodGet, "/api/onboarding", nil, token), &status)
	if status.Completed || len(status.Personas) != 3 {
		t.Fatalf("unexpected onboarding status %+v", status)
	}

	gated := env.request(t, http.MethodGet, "/api/chat/messages", nil, token)
	if gated.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409 before onboarding, got %d", gated.StatusCode)
	}
	if got := readAPIError(t, gated); got != "onboarding required" {
		t.Fatalf("unexpected error %q", got)
	}

	completed := env.request(t, http.MethodPost, "/api/onboarding", fiber.Map{"persona": "Lumi", "daily_goal": 1900}, token)
	if completed.StatusCode != http.StatusOK {
		t.Fatalf("expected onboarding status 200, got %d", completed.StatusCode)
	}
	profile := struct {
		Persona             string `json:"persona"`
		DailyGoal           int    `json:"daily_goal"`
		OnboardingCompleted bool   `json:"onboarding_completed"`
	}{}
	decodeJSON(t, completed, &profile)
	if profile.Persona != "Lumi" || profile.DailyGoal != 1900 || !profile.OnboardingCompleted {
		t.Fatalf("unexpected profile %+v", profile)
	}

	open := env.request(t, http.MethodGet, "/api/chat/messages", nil, token)
	if open.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 after onboarding, got %d", open.StatusCode)
	}

	again := env.request(t, http.MethodPost, "/api/onboarding", fiber.Map{"persona": "Lumi"}, token)
	if again.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409 for a second onboarding, got %d", again.StatusCode)
	}
}

func TestCompleteOnboardingValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      fiber.Map
		wantError string
	}{
		{name: "missing persona", body: fiber.Map{"daily_goal": 1900}, wantError: "persona is required"},
		{name: "unknown persona", body: fiber.Map{"persona": "Robot"}, wantError: "unknown persona"},
		{name: "goal out of range", body: fiber.Map{"persona": "Titan", "daily_goal": 20}, wantError: "daily goal out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			token := env.createOwner(t)

			response := env.request(t, http.MethodPost, "/api/onboarding", tt.body, token)
			if response.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", response.StatusCode)
			}
			if got := readAPIError(t, response); got != tt.wantError {
				t.Fatalf("expected error %q, got %q", tt.wantError, got)
			}
		})
	}
}
