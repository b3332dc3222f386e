package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/services"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxAttempts       = 3
	DefaultRetryDelay        = time.Second
	DefaultRequestsPerMinute = 30
)

var (
	ErrAPIKeyRequired   = errors.New("openai api key required")
	ErrCompletionFailed = errors.New("chat completion failed")
	ErrEmptyCompletion  = errors.New("chat completion returned no content")
)

type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	MaxAttempts       int
	RetryDelay        time.Duration
	RequestsPerMinute int
	HTTPClient        *http.Client
	Logger            logrus.FieldLogger
}

type chatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Provider calls an OpenAI-compatible chat completions endpoint. Retries
// are handled here so callers only see the final outcome.
type Provider struct {
	completions chatCompletions
	model       Model
	maxAttempts int
	retryDelay  time.Duration
	limiter     *rate.Limiter
	logger      logrus.FieldLogger
}

func NewProvider(cfg Config, catalogue *Catalogue) (*Provider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := openai.NewClient(opts...)
	return newProvider(&client.Chat.Completions, cfg, catalogue), nil
}

func newProvider(completions chatCompletions, cfg Config, catalogue *Catalogue) *Provider {
	if catalogue == nil {
		catalogue = NewCatalogue()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	model := catalogue.Lookup(cfg.Model)
	return &Provider{
		completions: completions,
		model:       model,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger.WithFields(logrus.Fields{"component": "llm", "model": model.ID}),
	}
}

func (provider *Provider) Model() Model {
	return provider.model
}

// Complete sends one turn and returns the raw assistant text. Attempt n is
// followed by a pause of n times the retry delay.
func (provider *Provider) Complete(ctx context.Context, request services.CompletionRequest) (string, error) {
	params := provider.params(request)

	var lastErr error
	for attempt := 1; attempt <= provider.maxAttempts; attempt++ {
		if err := provider.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
		}

		content, err := provider.complete(ctx, params)
		if err == nil {
			return content, nil
		}
		lastErr = err
		provider.logger.WithError(err).WithField("attempt", attempt).Warn("chat completion attempt failed")

		if attempt == provider.maxAttempts {
			break
		}
		if err := sleepContext(ctx, time.Duration(attempt)*provider.retryDelay); err != nil {
			return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %v", ErrCompletionFailed, provider.maxAttempts, lastErr)
}

func (provider *Provider) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	completion, err := provider.completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func (provider *Provider) params(request services.CompletionRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(provider.model.ID),
		Messages: ChatMessages(request),
	}
	if provider.model.SupportsTemperature {
		params.Temperature = openai.Float(DefaultTemperature)
	}
	return params
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
