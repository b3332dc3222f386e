package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/bootstrap"
	"github.com/terraincognita07/bitebuddy/internal/db"
	"github.com/terraincognita07/bitebuddy/internal/i18n"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

const (
	testSecretKey     = "test-secret-key-with-at-least-32-chars"
	testOwnerEmail    = "owner@example.com"
	testOwnerPassword = "StrongPass1"
)

var testNow = time.Date(2025, time.January, 1, 13, 15, 0, 0, time.UTC)

type scriptedProvider struct {
	mu        sync.Mutex
	responses []string
	requests  []services.CompletionRequest
}

func (provider *scriptedProvider) Complete(_ context.Context, request services.CompletionRequest) (string, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()

	provider.requests = append(provider.requests, request)
	if len(provider.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	response := provider.responses[0]
	provider.responses = provider.responses[1:]
	return response, nil
}

func (provider *scriptedProvider) script(responses ...string) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	provider.responses = append(provider.responses, responses...)
}

type testEnv struct {
	app      *fiber.App
	deps     *bootstrap.Services
	provider *scriptedProvider
	now      time.Time
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := quietLogger()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "bitebuddy-api-test.db"), logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	manager, err := i18n.NewDefaultManager("en")
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	env := &testEnv{provider: &scriptedProvider{}, now: testNow}
	clock := func() time.Time { return env.now }
	env.deps = bootstrap.New(database, bootstrap.Options{
		Location:      time.UTC,
		Persistence:   services.PersistenceBestEffort,
		ContextWindow: 10,
		Provider:      env.provider,
		I18n:          manager,
		Logger:        logger,
		Clock:         clock,
	})

	handler, err := NewHandler(env.deps, HandlerConfig{
		SecretKey: testSecretKey,
		ModelName: "gpt-4o-mini",
		Logger:    logger,
		Clock:     clock,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	env.app = fiber.New()
	env.app.Use(handler.LanguageMiddleware)
	RegisterRoutes(env.app, handler)
	return env
}

func (env *testEnv) request(t *testing.T, method string, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

// setupOwner creates the owner profile, completes onboarding and returns
// its bearer token.
func (env *testEnv) setupOwner(t *testing.T) string {
	t.Helper()

	token := env.createOwner(t)
	response := env.request(t, http.MethodPost, "/api/onboarding", fiber.Map{"persona": "BiteBuddy"}, token)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected onboarding status 200, got %d", response.StatusCode)
	}
	return token
}

func (env *testEnv) createOwner(t *testing.T) string {
	t.Helper()

	response := env.request(t, http.MethodPost, "/api/auth/setup", fiber.Map{
		"email":    testOwnerEmail,
		"password": testOwnerPassword,
		"name":     "Ana",
	}, "")
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected setup status 201, got %d", response.StatusCode)
	}

	payload := struct {
		Token string `json:"token"`
	}{}
	decodeJSON(t, response, &payload)
	if payload.Token == "" {
		t.Fatal("expected setup to return a token")
	}
	return payload.Token
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("decode response %q: %v", string(body), err)
	}
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()

	payload := struct {
		Error string `json:"error"`
	}{}
	decodeJSON(t, response, &payload)
	return payload.Error
}

func responseCookieValue(response *http.Response, name string) string {
	for _, cookie := range response.Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}
