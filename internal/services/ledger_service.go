package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/models"
)

var (
	ErrLedgerLoadFailed       = errors.New("load ledger day failed")
	ErrLedgerSaveFailed       = errors.New("save ledger day failed")
	ErrMealEntryNotFound      = errors.New("meal entry not found")
	ErrInvalidWaterAmount     = errors.New("invalid water amount")
	ErrInvalidPersistenceMode = errors.New("invalid ledger persistence mode")
)

type PersistenceMode string

const (
	// PersistenceBestEffort keeps in-memory mutations when a save fails; the
	// next successful save of that day writes the whole aggregate.
	PersistenceBestEffort PersistenceMode = "best_effort"
	// PersistenceStrict discards the day from memory on a failed save so the
	// next access reloads the last persisted state.
	PersistenceStrict PersistenceMode = "strict"
)

func ParsePersistenceMode(raw string) (PersistenceMode, error) {
	switch PersistenceMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PersistenceBestEffort:
		return PersistenceBestEffort, nil
	case PersistenceStrict:
		return PersistenceStrict, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPersistenceMode, raw)
	}
}

type LedgerStore interface {
	FindByDayRange(dayStart time.Time, dayEnd time.Time) (models.DailyLog, bool, error)
	FindByMealMessageID(messageID uuid.UUID) (models.DailyLog, bool, error)
	FindByMealID(mealID uuid.UUID) (models.DailyLog, bool, error)
	ListRange(fromStart *time.Time, toEnd *time.Time) ([]models.DailyLog, error)
	Save(entries ...*models.DailyLog) error
}

type LedgerObserver interface {
	MealRecorded(rule MealRule)
	MealDeleted()
	WaterLogged(amountML int)
	LedgerSaveFailed(operation string)
}

type noopLedgerObserver struct{}

func (noopLedgerObserver) MealRecorded(MealRule)   {}
func (noopLedgerObserver) MealDeleted()            {}
func (noopLedgerObserver) WaterLogged(int)         {}
func (noopLedgerObserver) LedgerSaveFailed(string) {}

type LedgerOptions struct {
	Location    *time.Location
	Persistence PersistenceMode
	Logger      logrus.FieldLogger
	Observer    LedgerObserver
}

// LedgerService applies mutations to the per-day aggregates. Every mutation
// runs under one mutex, starts from the stored days and ends with a save, so
// other writers on the same database are not overwritten. Only days whose
// best-effort save failed stay in memory until a later save succeeds.
type LedgerService struct {
	mu          sync.Mutex
	store       LedgerStore
	location    *time.Location
	persistence PersistenceMode
	logger      logrus.FieldLogger
	observer    LedgerObserver
	unsaved     map[string]*models.DailyLog
}

func NewLedgerService(store LedgerStore, options LedgerOptions) *LedgerService {
	location := options.Location
	if location == nil {
		location = time.UTC
	}
	persistence := options.Persistence
	if persistence == "" {
		persistence = PersistenceBestEffort
	}
	logger := options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	observer := options.Observer
	if observer == nil {
		observer = noopLedgerObserver{}
	}

	return &LedgerService{
		store:       store,
		location:    location,
		persistence: persistence,
		logger:      logger.WithField("component", "ledger"),
		observer:    observer,
		unsaved:     make(map[string]*models.DailyLog),
	}
}

func (service *LedgerService) Location() *time.Location {
	return service.location
}

type MealContext struct {
	// MessageID is the assistant message that carried the summary.
	MessageID       uuid.UUID
	History         []models.Message
	ActiveContextID *uuid.UUID
}

type MealOutcome struct {
	Rule        MealRule
	Day         models.DailyLog
	Entry       models.MealEntry
	PreviousDay *time.Time
	Persisted   bool
}

type WaterOutcome struct {
	Day       models.DailyLog
	AddedML   int
	Persisted bool
}

type DeleteOutcome struct {
	Day       models.DailyLog
	Removed   models.MealEntry
	Persisted bool
}

// ApplyMealDelta subtracts the pre-edit snapshot (when given) and adds the
// new totals. The arithmetic is exact; nothing is clamped.
func ApplyMealDelta(dailyLog *models.DailyLog, subtract *models.MealTotals, add models.MealTotals) {
	if subtract != nil {
		dailyLog.TotalCalories -= subtract.TotalCalories
		dailyLog.Protein -= subtract.Protein
		dailyLog.Carbs -= subtract.Carbs
		dailyLog.Fats -= subtract.Fats
	}
	dailyLog.TotalCalories += add.TotalCalories
	dailyLog.Protein += add.Protein
	dailyLog.Carbs += add.Carbs
	dailyLog.Fats += add.Fats
}

// EnsureDailyLog returns the aggregate for date, or a fresh unsaved one when
// the store has none. The first mutation of that day writes it.
func (service *LedgerService) EnsureDailyLog(date time.Time) (models.DailyLog, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	dailyLog, err := service.beginLocked().ensureDay(date)
	if err != nil {
		return models.DailyLog{}, err
	}
	return cloneDailyLog(dailyLog), nil
}

func (service *LedgerService) RecordMeal(now time.Time, summary models.MealSummary, mealContext MealContext) (MealOutcome, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	session := service.beginLocked()
	targetDate := ResolveSummaryDate(summary.Date, now, service.location)
	target, err := session.ensureDay(targetDate)
	if err != nil {
		return MealOutcome{}, err
	}

	resolution, err := ResolveMealTarget(target, summary, mealContext.History, mealContext.ActiveContextID, session)
	if err != nil {
		return MealOutcome{}, fmt.Errorf("%w: %v", ErrLedgerLoadFailed, err)
	}

	outcome := MealOutcome{Rule: resolution.Rule}
	dirty := []*models.DailyLog{target}
	entryIndex := -1

	switch {
	case !resolution.IsUpdate():
		target.Meals = append(target.Meals, models.MealEntry{
			ID:         uuid.New(),
			DailyLogID: target.ID,
			Timestamp:  now,
		})
		entryIndex = len(target.Meals) - 1
		overwriteMealEntry(&target.Meals[entryIndex], summary, mealContext.MessageID)
		ApplyMealDelta(target, nil, summary.Totals())
	case resolution.Owner == target:
		entryIndex = resolution.Index
		snapshot := target.Meals[entryIndex].Totals()
		overwriteMealEntry(&target.Meals[entryIndex], summary, mealContext.MessageID)
		ApplyMealDelta(target, &snapshot, summary.Totals())
	default:
		owner := resolution.Owner
		moved := owner.Meals[resolution.Index]
		snapshot := moved.Totals()
		ApplyMealDelta(owner, &snapshot, models.MealTotals{})
		owner.Meals = append(owner.Meals[:resolution.Index], owner.Meals[resolution.Index+1:]...)

		moved.DailyLogID = target.ID
		overwriteMealEntry(&moved, summary, mealContext.MessageID)
		target.Meals = append(target.Meals, moved)
		entryIndex = len(target.Meals) - 1
		ApplyMealDelta(target, nil, summary.Totals())

		previous := owner.Date
		outcome.PreviousDay = &previous
		dirty = append(dirty, owner)
	}

	outcome.Entry = cloneMealEntry(target.Meals[entryIndex])
	outcome.Day = cloneDailyLog(target)
	service.observer.MealRecorded(resolution.Rule)
	service.logger.WithFields(logrus.Fields{
		"date":      target.Date.Format(DateLayout),
		"meal_type": summary.MealType,
		"rule":      string(resolution.Rule),
		"calories":  summary.TotalCalories,
		"day_total": target.TotalCalories,
	}).Info("meal recorded")

	outcome.Persisted, err = service.persistLocked("record_meal", dirty...)
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

// AddWater adds amountML to the day containing now. Water always lands on
// the current day regardless of any meal date.
func (service *LedgerService) AddWater(now time.Time, amountML int) (WaterOutcome, error) {
	if amountML <= 0 {
		return WaterOutcome{}, ErrInvalidWaterAmount
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	dailyLog, err := service.beginLocked().ensureDay(now)
	if err != nil {
		return WaterOutcome{}, err
	}
	dailyLog.WaterIntake += amountML
	service.observer.WaterLogged(amountML)
	service.logger.WithFields(logrus.Fields{
		"date":      dailyLog.Date.Format(DateLayout),
		"amount_ml": amountML,
		"day_total": dailyLog.WaterIntake,
	}).Info("water logged")

	outcome := WaterOutcome{Day: cloneDailyLog(dailyLog), AddedML: amountML}
	outcome.Persisted, err = service.persistLocked("add_water", dailyLog)
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (service *LedgerService) DeleteMeal(entryID uuid.UUID) (DeleteOutcome, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	owner, index, err := service.beginLocked().locateMeal(entryID)
	if err != nil {
		return DeleteOutcome{}, err
	}

	removed := owner.Meals[index]
	snapshot := removed.Totals()
	ApplyMealDelta(owner, &snapshot, models.MealTotals{})
	owner.Meals = append(owner.Meals[:index], owner.Meals[index+1:]...)
	service.observer.MealDeleted()
	service.logger.WithFields(logrus.Fields{
		"date":      owner.Date.Format(DateLayout),
		"meal_type": removed.Type,
		"day_total": owner.TotalCalories,
	}).Info("meal deleted")

	outcome := DeleteOutcome{Day: cloneDailyLog(owner), Removed: cloneMealEntry(removed)}
	outcome.Persisted, err = service.persistLocked("delete_meal", owner)
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

// FetchDay returns the aggregate for date without creating it. A missing
// day comes back empty with only Date set.
func (service *LedgerService) FetchDay(date time.Time) (models.DailyLog, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	dayStart, dayEnd := DayRange(date, service.location)
	if unsaved, ok := service.unsaved[service.dayKey(dayStart)]; ok {
		return cloneDailyLog(unsaved), nil
	}

	entry, found, err := service.store.FindByDayRange(dayStart, dayEnd)
	if err != nil {
		return models.DailyLog{}, fmt.Errorf("%w: %v", ErrLedgerLoadFailed, err)
	}
	if !found {
		return models.DailyLog{Date: dayStart, Meals: []models.MealEntry{}}, nil
	}
	return entry, nil
}

// FetchRange lists stored days in [from, to] with unsaved in-memory days
// layered on top.
func (service *LedgerService) FetchRange(from time.Time, to time.Time) ([]models.DailyLog, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	fromStart, _ := DayRange(from, service.location)
	_, toEnd := DayRange(to, service.location)
	stored, err := service.store.ListRange(&fromStart, &toEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerLoadFailed, err)
	}

	byKey := make(map[string]models.DailyLog, len(stored))
	for _, entry := range stored {
		byKey[service.dayKey(entry.Date)] = entry
	}
	for key, unsaved := range service.unsaved {
		if unsaved.Date.Before(fromStart) || !unsaved.Date.Before(toEnd) {
			continue
		}
		byKey[key] = cloneDailyLog(unsaved)
	}

	result := make([]models.DailyLog, 0, len(byKey))
	for _, entry := range byKey {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (service *LedgerService) dayKey(date time.Time) string {
	return DateAtLocation(date, service.location).Format(DateLayout)
}

// ledgerSession is the working set of one mutation. Each day is read once,
// so a meal located through history and the target day share one aggregate.
type ledgerSession struct {
	service *LedgerService
	days    map[string]*models.DailyLog
}

// beginLocked starts a session seeded with the days still waiting for a
// successful save. Everything else is read from the store.
func (service *LedgerService) beginLocked() *ledgerSession {
	days := make(map[string]*models.DailyLog, len(service.unsaved))
	for key, unsaved := range service.unsaved {
		days[key] = unsaved
	}
	return &ledgerSession{service: service, days: days}
}

func (session *ledgerSession) ensureDay(date time.Time) (*models.DailyLog, error) {
	service := session.service
	dayStart, dayEnd := DayRange(date, service.location)
	key := service.dayKey(dayStart)
	if loaded, ok := session.days[key]; ok {
		return loaded, nil
	}

	entry, found, err := service.store.FindByDayRange(dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerLoadFailed, err)
	}
	if !found {
		entry = models.DailyLog{
			ID:    uuid.New(),
			Date:  dayStart,
			Meals: []models.MealEntry{},
		}
	}
	session.days[key] = &entry
	return &entry, nil
}

// adopt keeps a day loaded by a meal lookup unless the session already holds
// that day, and returns the live aggregate.
func (session *ledgerSession) adopt(loaded models.DailyLog) *models.DailyLog {
	key := session.service.dayKey(loaded.Date)
	if existing, ok := session.days[key]; ok {
		return existing
	}
	session.days[key] = &loaded
	return &loaded
}

// LocateMealByMessage lets ResolveMealTarget find the entry a message
// produced, searching the session before the store.
func (session *ledgerSession) LocateMealByMessage(messageID uuid.UUID) (*models.DailyLog, int, bool, error) {
	for _, day := range session.days {
		if index := day.FindMealByMessageID(messageID); index >= 0 {
			return day, index, true, nil
		}
	}

	loaded, found, err := session.service.store.FindByMealMessageID(messageID)
	if err != nil || !found {
		return nil, -1, false, err
	}
	live := session.adopt(loaded)
	index := live.FindMealByMessageID(messageID)
	return live, index, index >= 0, nil
}

func (session *ledgerSession) locateMeal(entryID uuid.UUID) (*models.DailyLog, int, error) {
	for _, day := range session.days {
		if index := day.FindMealByID(entryID); index >= 0 {
			return day, index, nil
		}
	}

	loaded, found, err := session.service.store.FindByMealID(entryID)
	if err != nil {
		return nil, -1, fmt.Errorf("%w: %v", ErrLedgerLoadFailed, err)
	}
	if !found {
		return nil, -1, ErrMealEntryNotFound
	}
	live := session.adopt(loaded)
	index := live.FindMealByID(entryID)
	if index < 0 {
		return nil, -1, ErrMealEntryNotFound
	}
	return live, index, nil
}

func (service *LedgerService) persistLocked(operation string, days ...*models.DailyLog) (bool, error) {
	err := service.store.Save(days...)
	if err == nil {
		for _, day := range days {
			delete(service.unsaved, service.dayKey(day.Date))
		}
		return true, nil
	}

	service.observer.LedgerSaveFailed(operation)
	logger := service.logger.WithError(err).WithFields(logrus.Fields{
		"operation":   operation,
		"persistence": string(service.persistence),
	})
	if service.persistence != PersistenceStrict {
		for _, day := range days {
			service.unsaved[service.dayKey(day.Date)] = day
		}
		logger.Error("ledger save failed, keeping in-memory state")
		return false, nil
	}

	for _, day := range days {
		delete(service.unsaved, service.dayKey(day.Date))
	}
	logger.Error("ledger save failed, discarding in-memory state")
	return false, fmt.Errorf("%w: %v", ErrLedgerSaveFailed, err)
}

func overwriteMealEntry(entry *models.MealEntry, summary models.MealSummary, messageID uuid.UUID) {
	entry.Type = summary.MealType
	entry.TotalCalories = summary.TotalCalories
	entry.Protein = summary.Protein
	entry.Carbs = summary.Carbs
	entry.Fats = summary.Fats
	entry.HealthScore = nil
	if summary.HealthScore != nil {
		score := *summary.HealthScore
		entry.HealthScore = &score
	}
	entry.AssociatedMessageID = nil
	if messageID != uuid.Nil {
		associated := messageID
		entry.AssociatedMessageID = &associated
	}

	entry.FoodItems = make([]models.SavedFoodItem, 0, len(summary.Items))
	for position, item := range summary.Items {
		entry.FoodItems = append(entry.FoodItems, models.SavedFoodItem{
			ID:          uuid.New(),
			MealEntryID: entry.ID,
			Position:    position,
			Name:        item.Name,
			Quantity:    item.Quantity,
			Calories:    item.Calories,
		})
	}
}

func cloneMealEntry(entry models.MealEntry) models.MealEntry {
	cloned := entry
	cloned.FoodItems = append([]models.SavedFoodItem(nil), entry.FoodItems...)
	if cloned.FoodItems == nil {
		cloned.FoodItems = []models.SavedFoodItem{}
	}
	return cloned
}

func cloneDailyLog(dailyLog *models.DailyLog) models.DailyLog {
	cloned := *dailyLog
	cloned.Meals = make([]models.MealEntry, 0, len(dailyLog.Meals))
	for _, meal := range dailyLog.Meals {
		cloned.Meals = append(cloned.Meals, cloneMealEntry(meal))
	}
	return cloned
}
