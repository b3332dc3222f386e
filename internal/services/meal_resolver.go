package services

import (
	"github.com/google/uuid"
	"github.com/terraincognita07/bitebuddy/internal/models"
)

type MealRule string

const (
	MealRuleTypeMatch     MealRule = "type_match"
	MealRuleActiveContext MealRule = "active_context"
	MealRuleLastSummary   MealRule = "last_summary"
	MealRuleNew           MealRule = "new"
)

// MealLocator finds the day aggregate owning the meal written by an
// assistant message. The returned pointer must be the live aggregate the
// caller will mutate.
type MealLocator interface {
	LocateMealByMessage(messageID uuid.UUID) (*models.DailyLog, int, bool, error)
}

// MealResolution names the entry a summary should overwrite. Owner is nil
// and Index is -1 when a new entry must be created.
type MealResolution struct {
	Rule  MealRule
	Owner *models.DailyLog
	Index int
}

func (resolution MealResolution) IsUpdate() bool {
	return resolution.Owner != nil && resolution.Index >= 0
}

func newMealResolution() MealResolution {
	return MealResolution{Rule: MealRuleNew, Index: -1}
}

// ResolveMealTarget decides whether summary edits an existing meal or
// creates one. target is the aggregate for the summary's own date.
//
//  1. same meal type already logged on the target day
//  2. the active meal context, when its summary has the same meal type
//  3. the latest assistant summary in history, when its meal type matches
//  4. otherwise a new entry
//
// Rules 2 and 3 may return an entry owned by another day.
func ResolveMealTarget(target *models.DailyLog, summary models.MealSummary, history []models.Message, activeContextID *uuid.UUID, locator MealLocator) (MealResolution, error) {
	if target != nil {
		if index := target.FindMealByType(summary.MealType); index >= 0 {
			return MealResolution{Rule: MealRuleTypeMatch, Owner: target, Index: index}, nil
		}
	}
	if locator == nil {
		return newMealResolution(), nil
	}

	if activeContextID != nil {
		if message, found := findMessage(history, *activeContextID); found && summaryMatches(message, summary.MealType) {
			resolution, found, err := locateByMessage(locator, message.ID, MealRuleActiveContext)
			if err != nil {
				return newMealResolution(), err
			}
			if found {
				return resolution, nil
			}
		}
	}

	if message, found := lastSummaryMessage(history); found && summaryMatches(message, summary.MealType) {
		resolution, found, err := locateByMessage(locator, message.ID, MealRuleLastSummary)
		if err != nil {
			return newMealResolution(), err
		}
		if found {
			return resolution, nil
		}
	}

	return newMealResolution(), nil
}

func locateByMessage(locator MealLocator, messageID uuid.UUID, rule MealRule) (MealResolution, bool, error) {
	owner, index, found, err := locator.LocateMealByMessage(messageID)
	if err != nil || !found || owner == nil || index < 0 {
		return MealResolution{}, false, err
	}
	return MealResolution{Rule: rule, Owner: owner, Index: index}, true, nil
}

func findMessage(history []models.Message, id uuid.UUID) (models.Message, bool) {
	for index := len(history) - 1; index >= 0; index-- {
		if history[index].ID == id {
			return history[index], true
		}
	}
	return models.Message{}, false
}

func lastSummaryMessage(history []models.Message) (models.Message, bool) {
	for index := len(history) - 1; index >= 0; index-- {
		if history[index].HasSummary() {
			return history[index], true
		}
	}
	return models.Message{}, false
}

func summaryMatches(message models.Message, mealType string) bool {
	return message.HasSummary() && models.SameMealType(message.AttachedSummary.MealType, mealType)
}
