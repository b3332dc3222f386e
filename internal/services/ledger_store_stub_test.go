package services

import (
	"errors"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/models"
)

var errStubSaveFailed = errors.New("disk full")

type ledgerStoreStub struct {
	days      map[string]models.DailyLog
	saveErr   error
	saveCalls int
	findErr   error
}

func newLedgerStoreStub() *ledgerStoreStub {
	return &ledgerStoreStub{days: make(map[string]models.DailyLog)}
}

func (stub *ledgerStoreStub) dayKey(value time.Time) string {
	return value.Format(DateLayout)
}

func (stub *ledgerStoreStub) FindByDayRange(dayStart time.Time, dayEnd time.Time) (models.DailyLog, bool, error) {
	if stub.findErr != nil {
		return models.DailyLog{}, false, stub.findErr
	}
	entry, ok := stub.days[stub.dayKey(dayStart)]
	if !ok {
		return models.DailyLog{}, false, nil
	}
	return cloneDailyLog(&entry), true, nil
}

func (stub *ledgerStoreStub) FindByMealMessageID(messageID uuid.UUID) (models.DailyLog, bool, error) {
	for _, entry := range stub.days {
		if entry.FindMealByMessageID(messageID) >= 0 {
			return cloneDailyLog(&entry), true, nil
		}
	}
	return models.DailyLog{}, false, nil
}

func (stub *ledgerStoreStub) FindByMealID(mealID uuid.UUID) (models.DailyLog, bool, error) {
	for _, entry := range stub.days {
		if entry.FindMealByID(mealID) >= 0 {
			return cloneDailyLog(&entry), true, nil
		}
	}
	return models.DailyLog{}, false, nil
}

func (stub *ledgerStoreStub) ListRange(fromStart *time.Time, toEnd *time.Time) ([]models.DailyLog, error) {
	logs := make([]models.DailyLog, 0)
	for _, entry := range stub.days {
		if fromStart != nil && entry.Date.Before(*fromStart) {
			continue
		}
		if toEnd != nil && !entry.Date.Before(*toEnd) {
			continue
		}
		logs = append(logs, cloneDailyLog(&entry))
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})
	return logs, nil
}

func (stub *ledgerStoreStub) Save(entries ...*models.DailyLog) error {
	stub.saveCalls++
	if stub.saveErr != nil {
		return stub.saveErr
	}
	for _, entry := range entries {
		stub.days[stub.dayKey(entry.Date)] = cloneDailyLog(entry)
	}
	return nil
}

type ledgerObserverStub struct {
	rules       []MealRule
	deleted     int
	waterML     int
	saveFailure []string
}

func (stub *ledgerObserverStub) MealRecorded(rule MealRule) { stub.rules = append(stub.rules, rule) }
func (stub *ledgerObserverStub) MealDeleted()               { stub.deleted++ }
func (stub *ledgerObserverStub) WaterLogged(amountML int)   { stub.waterML += amountML }
func (stub *ledgerObserverStub) LedgerSaveFailed(operation string) {
	stub.saveFailure = append(stub.saveFailure, operation)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestLedger(store LedgerStore, persistence PersistenceMode) (*LedgerService, *ledgerObserverStub) {
	observer := &ledgerObserverStub{}
	return NewLedgerService(store, LedgerOptions{
		Location:    time.UTC,
		Persistence: persistence,
		Logger:      quietLogger(),
		Observer:    observer,
	}), observer
}

func mealSummary(mealType string, calories int, date string, items ...models.FoodItem) models.MealSummary {
	if items == nil {
		items = []models.FoodItem{{Name: mealType + " plate", Quantity: "1", Calories: calories}}
	}
	return models.MealSummary{
		MealType:      mealType,
		TotalCalories: calories,
		Protein:       float64(calories) / 20,
		Carbs:         float64(calories) / 8,
		Fats:          float64(calories) / 40,
		Date:          date,
		Items:         items,
	}
}

func assistantSummaryMessage(id uuid.UUID, summary models.MealSummary, at time.Time) models.Message {
	return models.Message{ID: id, Content: "Logged.", Timestamp: at, AttachedSummary: &summary}
}

func sumMealCalories(dailyLog models.DailyLog) int {
	total := 0
	for _, meal := range dailyLog.Meals {
		total += meal.TotalCalories
	}
	return total
}
