package api

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/bootstrap"
	"github.com/terraincognita07/bitebuddy/internal/llm"
)

type HandlerConfig struct {
	SecretKey    string
	CookieSecure bool
	Catalogue    *llm.Catalogue
	ModelName    string
	Logger       logrus.FieldLogger
	Clock        func() time.Time
}

func NewHandler(deps *bootstrap.Services, config HandlerConfig) (*Handler, error) {
	if deps == nil {
		return nil, errors.New("services are required")
	}
	if deps.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if config.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}

	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	catalogue := config.Catalogue
	if catalogue == nil {
		catalogue = llm.NewCatalogue()
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Handler{
		secretKey:         []byte(config.SecretKey),
		location:          location,
		cookieSecure:      config.CookieSecure,
		i18n:              deps.I18n,
		logger:            logger.WithField("component", "api"),
		loginLimiter:      newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
		authService:       deps.Auth,
		settingsService:   deps.Settings,
		onboardingService: deps.Onboarding,
		chatService:       deps.Chat,
		ledgerService:     deps.Ledger,
		statsService:      deps.Stats,
		exportService:     deps.Export,
		streakService:     deps.Streaks,
		catalogue:         catalogue,
		modelName:         catalogue.Lookup(config.ModelName).ID,
		now:               clock,
	}, nil
}
