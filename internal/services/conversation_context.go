package services

import (
	"fmt"
	"time"

	"github.com/terraincognita07/bitebuddy/internal/models"
)

const DefaultContextWindow = 10

// Progress is informational only; Remaining goes negative once the goal is
// exceeded.
type Progress struct {
	Goal      int `json:"goal"`
	Current   int `json:"current"`
	Remaining int `json:"remaining"`
}

func CalculateProgress(goal int, current int) Progress {
	return Progress{Goal: goal, Current: current, Remaining: goal - current}
}

func (progress Progress) Line() string {
	return fmt.Sprintf("Today: %d / %d kcals. Remaining: %d.", progress.Current, progress.Goal, progress.Remaining)
}

// CompletionRequest is everything a completion provider needs for one turn.
type CompletionRequest struct {
	Now          time.Time
	Profile      models.Profile
	Progress     Progress
	EditBaseline *models.MealSummary
	History      []models.Message
}

type ConversationContextBuilder struct {
	window int
}

func NewConversationContextBuilder(window int) *ConversationContextBuilder {
	if window <= 0 {
		window = DefaultContextWindow
	}
	return &ConversationContextBuilder{window: window}
}

// Window keeps the most recent messages, dropping the oldest first.
func (builder *ConversationContextBuilder) Window(history []models.Message) []models.Message {
	start := 0
	if len(history) > builder.window {
		start = len(history) - builder.window
	}
	windowed := make([]models.Message, len(history)-start)
	copy(windowed, history[start:])
	return windowed
}

// Build assembles the request for one turn. The edit baseline is searched in
// the full history so an older summary still anchors an edit after the
// window has moved past it.
func (builder *ConversationContextBuilder) Build(now time.Time, profile models.Profile, today models.DailyLog, history []models.Message) CompletionRequest {
	goal := profile.DailyGoal
	if goal <= 0 {
		goal = models.DefaultDailyGoal
	}

	request := CompletionRequest{
		Now:      now,
		Profile:  profile,
		Progress: CalculateProgress(goal, today.TotalCalories),
		History:  builder.Window(history),
	}
	if baseline, ok := EditBaseline(history); ok {
		request.EditBaseline = &baseline
	}
	return request
}

// EditBaseline returns the summary carried by the most recent assistant
// message that has one.
func EditBaseline(history []models.Message) (models.MealSummary, bool) {
	message, ok := lastSummaryMessage(history)
	if !ok {
		return models.MealSummary{}, false
	}
	return *message.AttachedSummary, true
}
