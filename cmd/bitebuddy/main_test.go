package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/api"
	"github.com/terraincognita07/bitebuddy/internal/bootstrap"
	"github.com/terraincognita07/bitebuddy/internal/db"
	"github.com/terraincognita07/bitebuddy/internal/i18n"
)

func setRuntimeEnv(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "bitebuddy.db")
	t.Setenv("BITEBUDDY_CONFIG", "")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("TZ", "UTC")
	t.Setenv("DEFAULT_LANGUAGE", "en")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LEDGER_PERSISTENCE", "strict")
	return dbPath
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	for _, name := range []string{"serve", "reset-password", "ingest"} {
		command, _, err := rootCmd.Find([]string{name})
		if err != nil || command.Name() != name {
			t.Fatalf("expected subcommand %q, got %v (%v)", name, command, err)
		}
	}
	if flag := resetPasswordCmd.Flags().Lookup("email"); flag == nil {
		t.Fatal("expected reset-password --email flag")
	}
	if flag := ingestCmd.Flags().ShorthandLookup("f"); flag == nil || flag.Name != "file" {
		t.Fatal("expected ingest -f/--file flag")
	}
}

func TestLoadRuntimeUsesEnvironment(t *testing.T) {
	dbPath := setRuntimeEnv(t)

	rt, err := loadRuntime()
	if err != nil {
		t.Fatalf("loadRuntime() unexpected error: %v", err)
	}
	defer rt.close()

	if rt.cfg.DBPath != dbPath || rt.location.String() != "UTC" {
		t.Fatalf("runtime = %s in %s, want %s in UTC", rt.cfg.DBPath, rt.location, dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	deps, err := rt.services(bootstrap.Options{})
	if err != nil {
		t.Fatalf("services() unexpected error: %v", err)
	}
	if deps.Location != rt.location || deps.I18n != rt.i18n {
		t.Fatal("expected services to share the runtime location and i18n manager")
	}
}

func TestRuntimeRejectsUnknownPersistenceMode(t *testing.T) {
	setRuntimeEnv(t)
	t.Setenv("LEDGER_PERSISTENCE", "sometimes")

	rt, err := loadRuntime()
	if err != nil {
		t.Fatalf("loadRuntime() unexpected error: %v", err)
	}
	defer rt.close()

	if _, err := rt.services(bootstrap.Options{}); err == nil {
		t.Fatal("expected an error for an unknown persistence mode")
	}
}

func TestIngestCommandAppliesResponse(t *testing.T) {
	setRuntimeEnv(t)

	responsePath := filepath.Join(t.TempDir(), "response.txt")
	if err := os.WriteFile(responsePath, []byte("Nice hydration! <WATER_LOG>300</WATER_LOG>"), 0o600); err != nil {
		t.Fatalf("write response: %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"ingest", "--file", responsePath})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		ingestFile = ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if !strings.Contains(out.String(), "Reply: Nice hydration!") || !strings.Contains(out.String(), "Water: +300 ml") {
		t.Fatalf("unexpected ingest output %q", out.String())
	}
}

func TestNewAppServesHealthAndMetrics(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "bitebuddy-app.db"), logger)
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
	deps := bootstrap.New(database, bootstrap.Options{I18n: manager, Logger: logger})
	handler, err := api.NewHandler(deps, api.HandlerConfig{SecretKey: "0123456789abcdef0123456789abcdef", Logger: logger})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	app := newApp(handler, io.Discard)

	for _, path := range []string{"/healthz", "/metrics"} {
		response, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		response.Body.Close()
		if response.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: expected status 200, got %d", path, response.StatusCode)
		}
	}
}
