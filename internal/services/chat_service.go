package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/models"
	"github.com/terraincognita07/bitebuddy/internal/tags"
)

var (
	ErrEmptyMessage       = errors.New("message content is required")
	ErrMessageStoreFailed = errors.New("message store failed")
)

const (
	TurnStatusOK     = "ok"
	TurnStatusFailed = "failed"

	DefaultIdempotencyTTL = 10 * time.Minute
)

type CompletionProvider interface {
	Complete(ctx context.Context, request CompletionRequest) (string, error)
}

type MessageStore interface {
	Create(message *models.Message) error
	ListSince(since time.Time) ([]models.Message, error)
	LastWithSummary() (models.Message, bool, error)
}

type ProfileSource interface {
	FindOwner() (models.Profile, bool, error)
}

type Translator interface {
	Translate(language string, key string) string
	Translatef(language string, key string, args ...any) string
}

// HydrationTracker is told about the day's intake after every water log.
type HydrationTracker interface {
	CheckGoalReached(now time.Time, intakeML int, goalML int) (models.WaterStreak, error)
}

type ChatObserver interface {
	TurnCompleted(status string)
	TagDecodeFailed(tag string)
}

type noopChatObserver struct{}

func (noopChatObserver) TurnCompleted(string)   {}
func (noopChatObserver) TagDecodeFailed(string) {}

type ChatOptions struct {
	Provider       CompletionProvider
	Messages       MessageStore
	Profiles       ProfileSource
	Translator     Translator
	Hydration      HydrationTracker
	Observer       ChatObserver
	Logger         logrus.FieldLogger
	ContextWindow  int
	IdempotencyTTL time.Duration
	Clock          func() time.Time
}

// ChatService runs conversation turns. A turn holds turnMu from the moment
// the user message is stored until the ledger has been updated.
type ChatService struct {
	turnMu          sync.Mutex
	ledger          *LedgerService
	provider        CompletionProvider
	messages        MessageStore
	profiles        ProfileSource
	translator      Translator
	hydration       HydrationTracker
	observer        ChatObserver
	logger          logrus.FieldLogger
	contextBuilder  *ConversationContextBuilder
	idempotency     *cache.Cache
	clock           func() time.Time
	activeContextID *uuid.UUID
}

func NewChatService(ledger *LedgerService, options ChatOptions) *ChatService {
	logger := options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	observer := options.Observer
	if observer == nil {
		observer = noopChatObserver{}
	}
	ttl := options.IdempotencyTTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}

	return &ChatService{
		ledger:         ledger,
		provider:       options.Provider,
		messages:       options.Messages,
		profiles:       options.Profiles,
		translator:     options.Translator,
		hydration:      options.Hydration,
		observer:       observer,
		logger:         logger.WithField("component", "chat"),
		contextBuilder: NewConversationContextBuilder(options.ContextWindow),
		idempotency:    cache.New(ttl, 2*ttl),
		clock:          clock,
	}
}

type TurnResult struct {
	UserMessage   models.Message    `json:"user_message"`
	Reply         models.Message    `json:"reply"`
	Suggestions   []string          `json:"suggestions"`
	WaterLoggedML *int              `json:"water_logged_ml,omitempty"`
	MealRule      MealRule          `json:"meal_rule,omitempty"`
	Meal          *models.MealEntry `json:"meal,omitempty"`
	Day           models.DailyLog   `json:"day"`
	Failed        bool              `json:"failed"`
}

// RestoreActiveContext points the active meal context at the last assistant
// message that carried a summary. It runs once at startup.
func (service *ChatService) RestoreActiveContext() error {
	service.turnMu.Lock()
	defer service.turnMu.Unlock()

	message, found, err := service.messages.LastWithSummary()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMessageStoreFailed, err)
	}
	if !found {
		service.activeContextID = nil
		return nil
	}
	id := message.ID
	service.activeContextID = &id
	service.logger.WithField("message_id", id.String()).Debug("active meal context restored")
	return nil
}

func (service *ChatService) ActiveContextID() *uuid.UUID {
	service.turnMu.Lock()
	defer service.turnMu.Unlock()

	if service.activeContextID == nil {
		return nil
	}
	id := *service.activeContextID
	return &id
}

// TodayMessages lists today's conversation. An empty day gets a stored
// time-of-day greeting first.
func (service *ChatService) TodayMessages() ([]models.Message, error) {
	service.turnMu.Lock()
	defer service.turnMu.Unlock()

	now := service.clock()
	history, err := service.todayHistoryLocked(now)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		return history, nil
	}

	profile, err := service.loadProfile()
	if err != nil {
		return nil, err
	}
	greeting := models.Message{
		ID:        uuid.New(),
		Content:   service.greeting(profile, now),
		Timestamp: now,
	}
	if err := service.messages.Create(&greeting); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMessageStoreFailed, err)
	}
	return []models.Message{greeting}, nil
}

// SendMessage runs one turn. A non-empty idempotency key that was already
// seen within the TTL returns the earlier result without a new turn. Failed
// turns are not remembered, so a retry with the same key reaches the model.
func (service *ChatService) SendMessage(ctx context.Context, content string, idempotencyKey string) (TurnResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return TurnResult{}, ErrEmptyMessage
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)

	service.turnMu.Lock()
	defer service.turnMu.Unlock()

	if idempotencyKey != "" {
		if cached, ok := service.idempotency.Get(idempotencyKey); ok {
			service.logger.WithField("idempotency_key", idempotencyKey).Debug("replaying cached turn")
			return cached.(TurnResult), nil
		}
	}

	result, err := service.runTurnLocked(ctx, content)
	if err != nil {
		return result, err
	}
	if idempotencyKey != "" && !result.Failed {
		service.idempotency.Set(idempotencyKey, result, cache.DefaultExpiration)
	}
	return result, nil
}

// ApplyResponse processes a raw assistant response as if the model had
// produced it for the current conversation. No user message is stored.
func (service *ChatService) ApplyResponse(raw string) (TurnResult, error) {
	service.turnMu.Lock()
	defer service.turnMu.Unlock()

	now := service.clock()
	history, err := service.todayHistoryLocked(now)
	if err != nil {
		return TurnResult{}, err
	}
	profile, err := service.loadProfile()
	if err != nil {
		return TurnResult{}, err
	}
	result, err := service.applyResponseLocked(now, raw, profile, history)
	if err == nil {
		service.observer.TurnCompleted(TurnStatusOK)
	}
	return result, err
}

// LogWater adds water outside a conversation turn and updates the hydration
// streak. It waits for any running turn.
func (service *ChatService) LogWater(amountML int) (models.DailyLog, error) {
	if amountML <= 0 {
		return models.DailyLog{}, ErrInvalidWaterAmount
	}

	service.turnMu.Lock()
	defer service.turnMu.Unlock()

	profile, err := service.loadProfile()
	if err != nil {
		return models.DailyLog{}, err
	}
	var result TurnResult
	if err := service.logWaterLocked(service.clock(), amountML, profile, &result); err != nil {
		return result.Day, err
	}
	return result.Day, nil
}

func (service *ChatService) runTurnLocked(ctx context.Context, content string) (TurnResult, error) {
	now := service.clock()
	history, err := service.todayHistoryLocked(now)
	if err != nil {
		return TurnResult{}, err
	}
	profile, err := service.loadProfile()
	if err != nil {
		return TurnResult{}, err
	}

	userMessage := models.Message{ID: uuid.New(), Content: content, IsUser: true, Timestamp: now}
	if err := service.messages.Create(&userMessage); err != nil {
		return TurnResult{}, fmt.Errorf("%w: %v", ErrMessageStoreFailed, err)
	}
	history = append(history, userMessage)

	today, err := service.ledger.FetchDay(now)
	if err != nil {
		return TurnResult{UserMessage: userMessage}, err
	}

	request := service.contextBuilder.Build(now.In(service.ledger.Location()), profile, today, history)
	raw, err := service.provider.Complete(ctx, request)
	if err != nil {
		service.logger.WithError(err).Warn("completion failed, replying with apology")
		result, apologyErr := service.apologizeLocked(profile, today)
		result.UserMessage = userMessage
		service.observer.TurnCompleted(TurnStatusFailed)
		return result, apologyErr
	}

	result, err := service.applyResponseLocked(service.clock(), raw, profile, history)
	result.UserMessage = userMessage
	if err != nil {
		return result, err
	}
	service.observer.TurnCompleted(TurnStatusOK)
	return result, nil
}

func (service *ChatService) applyResponseLocked(now time.Time, raw string, profile models.Profile, history []models.Message) (TurnResult, error) {
	extraction := tags.Extract(raw)
	if extraction.SuggestionsErr != nil {
		service.observer.TagDecodeFailed("SUGGESTIONS")
		service.logger.WithError(extraction.SuggestionsErr).Warn("suggestions tag could not be decoded")
	}
	suggestions := extraction.Suggestions
	if len(suggestions) == 0 {
		suggestions = FallbackSuggestions(extraction.CleanedText)
	}

	var summary *models.MealSummary
	if extraction.HasSummary() {
		decoded, err := tags.DecodeMealSummary(*extraction.SummaryRaw)
		if err != nil {
			service.observer.TagDecodeFailed(extraction.SummaryTag)
			service.logger.WithError(err).WithField("tag", extraction.SummaryTag).Warn("meal summary could not be decoded")
		} else {
			summary = &decoded
		}
	}

	result := TurnResult{Suggestions: suggestions}
	if extraction.WaterAmountML != nil {
		if err := service.logWaterLocked(now, *extraction.WaterAmountML, profile, &result); err != nil {
			return result, err
		}
	}

	reply := models.Message{
		ID:              uuid.New(),
		Content:         extraction.CleanedText,
		Timestamp:       now,
		AttachedSummary: summary,
	}
	if err := service.messages.Create(&reply); err != nil {
		return result, fmt.Errorf("%w: %v", ErrMessageStoreFailed, err)
	}
	result.Reply = reply

	if summary != nil {
		outcome, err := service.ledger.RecordMeal(now, *summary, MealContext{
			MessageID:       reply.ID,
			History:         history,
			ActiveContextID: service.activeContextID,
		})
		result.MealRule = outcome.Rule
		if outcome.Entry.ID != uuid.Nil {
			entry := outcome.Entry
			result.Meal = &entry
			result.Day = outcome.Day
		}
		if err != nil {
			return result, err
		}
		replyID := reply.ID
		service.activeContextID = &replyID
	}

	if result.Day.ID == uuid.Nil {
		today, err := service.ledger.FetchDay(now)
		if err != nil {
			return result, err
		}
		result.Day = today
	}
	return result, nil
}

func (service *ChatService) logWaterLocked(now time.Time, amountML int, profile models.Profile, result *TurnResult) error {
	outcome, err := service.ledger.AddWater(now, amountML)
	if errors.Is(err, ErrInvalidWaterAmount) {
		service.logger.WithField("amount_ml", amountML).Warn("ignoring non-positive water log")
		return nil
	}
	if outcome.AddedML > 0 {
		added := outcome.AddedML
		result.WaterLoggedML = &added
		result.Day = outcome.Day
	}
	if err != nil {
		return err
	}

	if service.hydration != nil {
		if _, err := service.hydration.CheckGoalReached(now, outcome.Day.WaterIntake, profile.DailyWaterGoal); err != nil {
			service.logger.WithError(err).Warn("water streak update failed")
		}
	}
	return nil
}

func (service *ChatService) apologizeLocked(profile models.Profile, today models.DailyLog) (TurnResult, error) {
	apology := models.Message{
		ID:        uuid.New(),
		Content:   service.translate(profile.Language, "chat.apology"),
		Timestamp: service.clock(),
	}
	result := TurnResult{
		Reply:       apology,
		Suggestions: FallbackSuggestions(apology.Content),
		Day:         today,
		Failed:      true,
	}
	if err := service.messages.Create(&apology); err != nil {
		return result, fmt.Errorf("%w: %v", ErrMessageStoreFailed, err)
	}
	return result, nil
}

func (service *ChatService) todayHistoryLocked(now time.Time) ([]models.Message, error) {
	dayStart, _ := DayRange(now, service.ledger.Location())
	history, err := service.messages.ListSince(dayStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMessageStoreFailed, err)
	}
	return history, nil
}

func (service *ChatService) loadProfile() (models.Profile, error) {
	if service.profiles == nil {
		return models.DefaultProfile(), nil
	}
	profile, found, err := service.profiles.FindOwner()
	if err != nil {
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return models.DefaultProfile(), nil
	}
	return profile, nil
}

func (service *ChatService) greeting(profile models.Profile, now time.Time) string {
	hour := now.In(service.ledger.Location()).Hour()

	prefix := ""
	if name := strings.TrimSpace(profile.Name); name != "" {
		prefix = service.translatef(profile.Language, "chat.greeting.named", name)
	}
	return prefix + service.translate(profile.Language, GreetingKey(hour))
}

// GreetingKey picks the greeting for the local hour of day.
func GreetingKey(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return "chat.greeting.morning"
	case hour >= 11 && hour < 16:
		return "chat.greeting.lunch"
	case hour >= 16 && hour < 19:
		return "chat.greeting.snack"
	default:
		return "chat.greeting.dinner"
	}
}

var fallbackMessages = map[string]string{
	"chat.greeting.named":   "Hello %s! ",
	"chat.greeting.morning": "Good morning! What did you have for breakfast?",
	"chat.greeting.lunch":   "Hi! What's for lunch today?",
	"chat.greeting.snack":   "Hey! Having an evening snack?",
	"chat.greeting.dinner":  "Good evening! What did you have for dinner?",
	"chat.apology":          "Sorry, I'm having trouble connecting right now. Please try again.",
}

func (service *ChatService) translate(language string, key string) string {
	if service.translator == nil {
		return fallbackMessages[key]
	}
	return service.translator.Translate(language, key)
}

func (service *ChatService) translatef(language string, key string, args ...any) string {
	if service.translator == nil {
		return fmt.Sprintf(fallbackMessages[key], args...)
	}
	return service.translator.Translatef(language, key, args...)
}
