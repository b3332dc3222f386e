package bootstrap

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/db"
	"github.com/terraincognita07/bitebuddy/internal/i18n"
	"github.com/terraincognita07/bitebuddy/internal/metrics"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

const dinnerResponse = `Enjoy your dinner!<SUMMARY>{"mealType":"Dinner","totalCalories":520,"protein":25,"carbs":60,"fats":18,` +
	`"date":"2025-03-04","items":[{"name":"Pasta","quantity":"1 plate","calories":520}]}</SUMMARY>`

func TestNewWiresLedgerThroughChatAndMetrics(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "bitebuddy.db"), logger)
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
		t.Fatalf("NewDefaultManager() unexpected error: %v", err)
	}

	now := time.Date(2025, time.March, 4, 19, 30, 0, 0, time.UTC)
	collector := metrics.New(prometheus.NewRegistry())
	graph := New(database, Options{
		Location:    time.UTC,
		Persistence: services.PersistenceStrict,
		I18n:        manager,
		Metrics:     collector,
		Logger:      logger,
		Clock:       func() time.Time { return now },
	})

	if graph.Location != time.UTC || graph.I18n != manager {
		t.Fatalf("unexpected location/i18n on graph: %+v", graph)
	}

	result, err := graph.Chat.ApplyResponse(dinnerResponse)
	if err != nil {
		t.Fatalf("ApplyResponse() unexpected error: %v", err)
	}
	if result.MealRule != services.MealRuleNew || result.Day.TotalCalories != 520 {
		t.Fatalf("ApplyResponse() = rule %s with %d kcal, want new with 520", result.MealRule, result.Day.TotalCalories)
	}

	stored, err := graph.Ledger.FetchDay(now)
	if err != nil {
		t.Fatalf("FetchDay() unexpected error: %v", err)
	}
	if stored.TotalCalories != 520 || len(stored.Meals) != 1 {
		t.Fatalf("stored day = %d kcal with %d meals, want 520 with 1", stored.TotalCalories, len(stored.Meals))
	}

	if got := testutil.ToFloat64(collector.MealsRecorded.WithLabelValues(string(services.MealRuleNew))); got != 1 {
		t.Fatalf("meals recorded counter = %v, want 1", got)
	}

	required, err := graph.Onboarding.Required()
	if err != nil {
		t.Fatalf("Required() unexpected error: %v", err)
	}
	if !required {
		t.Fatal("expected onboarding to be required before the owner exists")
	}
}

func TestNewDefaultsLocationAndLogger(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "bitebuddy.db"), logger)
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

	graph := New(database, Options{})
	if graph.Location != time.UTC {
		t.Fatalf("Location = %v, want UTC", graph.Location)
	}
	if graph.Ledger.Location() != time.UTC {
		t.Fatalf("ledger location = %v, want UTC", graph.Ledger.Location())
	}
	if graph.Export == nil || graph.Stats == nil || graph.Auth == nil || graph.Settings == nil || graph.Streaks == nil {
		t.Fatalf("incomplete service graph: %+v", graph)
	}
}
