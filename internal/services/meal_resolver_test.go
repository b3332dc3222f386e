package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/bitebuddy/internal/models"
)

type mealLocatorStub struct {
	owners map[uuid.UUID]*models.DailyLog
	err    error
	calls  []uuid.UUID
}

func (stub *mealLocatorStub) LocateMealByMessage(messageID uuid.UUID) (*models.DailyLog, int, bool, error) {
	stub.calls = append(stub.calls, messageID)
	if stub.err != nil {
		return nil, -1, false, stub.err
	}
	owner, ok := stub.owners[messageID]
	if !ok {
		return nil, -1, false, nil
	}
	index := owner.FindMealByMessageID(messageID)
	return owner, index, index >= 0, nil
}

func TestResolveMealTarget(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	activeID := uuid.New()
	olderID := uuid.New()

	target := &models.DailyLog{Date: DateAtLocation(at, time.UTC), Meals: []models.MealEntry{{ID: uuid.New(), Type: "Lunch"}}}
	yesterday := &models.DailyLog{Date: target.Date.AddDate(0, 0, -1), Meals: []models.MealEntry{
		{ID: uuid.New(), Type: "Dinner", AssociatedMessageID: &activeID},
		{ID: uuid.New(), Type: "Snack", AssociatedMessageID: &olderID},
	}}
	locator := &mealLocatorStub{owners: map[uuid.UUID]*models.DailyLog{activeID: yesterday, olderID: yesterday}}

	history := []models.Message{
		assistantSummaryMessage(olderID, mealSummary("Snack", 100, ""), at.Add(-2*time.Hour)),
		assistantSummaryMessage(activeID, mealSummary("Dinner", 600, ""), at.Add(-time.Hour)),
		{ID: uuid.New(), Content: "actually 2 rotis", IsUser: true, Timestamp: at},
	}

	tests := []struct {
		name      string
		mealType  string
		active    *uuid.UUID
		history   []models.Message
		wantRule  MealRule
		wantOwner *models.DailyLog
		wantIndex int
	}{
		{name: "type match on target day", mealType: "LUNCH", active: &activeID, history: history, wantRule: MealRuleTypeMatch, wantOwner: target, wantIndex: 0},
		{name: "active context", mealType: "dinner", active: &activeID, history: history, wantRule: MealRuleActiveContext, wantOwner: yesterday, wantIndex: 0},
		{name: "last summary when no active context", mealType: "Dinner", history: history, wantRule: MealRuleLastSummary, wantOwner: yesterday, wantIndex: 0},
		{name: "active context type mismatch and last summary mismatch", mealType: "Snack", active: &activeID, history: history, wantRule: MealRuleNew, wantIndex: -1},
		{name: "active context missing from history", mealType: "Dinner", active: &olderID, history: history[1:], wantRule: MealRuleLastSummary, wantOwner: yesterday, wantIndex: 0},
		{name: "empty history", mealType: "Breakfast", wantRule: MealRuleNew, wantIndex: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolution, err := ResolveMealTarget(target, mealSummary(tt.mealType, 1, ""), tt.history, tt.active, locator)
			if err != nil {
				t.Fatalf("ResolveMealTarget() unexpected error: %v", err)
			}
			if resolution.Rule != tt.wantRule || resolution.Owner != tt.wantOwner || resolution.Index != tt.wantIndex {
				t.Fatalf("ResolveMealTarget() = %s/%p/%d, want %s/%p/%d", resolution.Rule, resolution.Owner, resolution.Index, tt.wantRule, tt.wantOwner, tt.wantIndex)
			}
		})
	}
}

func TestResolveMealTargetFallsThroughWhenAssociatedEntryIsGone(t *testing.T) {
	messageID := uuid.New()
	history := []models.Message{assistantSummaryMessage(messageID, mealSummary("Dinner", 500, ""), time.Now())}
	locator := &mealLocatorStub{owners: map[uuid.UUID]*models.DailyLog{}}

	resolution, err := ResolveMealTarget(&models.DailyLog{}, mealSummary("Dinner", 300, ""), history, &messageID, locator)
	if err != nil {
		t.Fatalf("ResolveMealTarget() unexpected error: %v", err)
	}
	if resolution.IsUpdate() || resolution.Rule != MealRuleNew {
		t.Fatalf("ResolveMealTarget() = %+v, want new", resolution)
	}
	if len(locator.calls) != 2 {
		t.Fatalf("locator calls = %d, want active context then last summary", len(locator.calls))
	}
}

func TestResolveMealTargetPropagatesLocatorErrors(t *testing.T) {
	messageID := uuid.New()
	history := []models.Message{assistantSummaryMessage(messageID, mealSummary("Dinner", 500, ""), time.Now())}
	locatorErr := errors.New("store offline")

	_, err := ResolveMealTarget(&models.DailyLog{}, mealSummary("Dinner", 300, ""), history, &messageID, &mealLocatorStub{err: locatorErr})
	if !errors.Is(err, locatorErr) {
		t.Fatalf("ResolveMealTarget() error = %v, want %v", err, locatorErr)
	}
}
