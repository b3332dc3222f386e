package bootstrap

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/db"
	"github.com/terraincognita07/bitebuddy/internal/i18n"
	"github.com/terraincognita07/bitebuddy/internal/metrics"
	"github.com/terraincognita07/bitebuddy/internal/services"
	"gorm.io/gorm"
)

type Options struct {
	Location      *time.Location
	Persistence   services.PersistenceMode
	ContextWindow int
	Provider      services.CompletionProvider
	I18n          *i18n.Manager
	Metrics       *metrics.Metrics
	Logger        logrus.FieldLogger
	Clock         func() time.Time
}

// Services is the wired service graph shared by the HTTP server and the CLI.
type Services struct {
	Repositories *db.Repositories
	Ledger       *services.LedgerService
	Chat         *services.ChatService
	Streaks      *services.StreakService
	Auth         *services.AuthService
	Settings     *services.SettingsService
	Onboarding   *services.OnboardingService
	Stats        *services.StatsService
	Export       *services.ExportService
	I18n         *i18n.Manager
	Location     *time.Location
}

func New(database *gorm.DB, options Options) *Services {
	location := options.Location
	if location == nil {
		location = time.UTC
	}
	logger := options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	repositories := db.NewRepositories(database)

	ledgerOptions := services.LedgerOptions{
		Location:    location,
		Persistence: options.Persistence,
		Logger:      logger,
	}
	chatOptions := services.ChatOptions{
		Provider:      options.Provider,
		Messages:      repositories.Messages,
		Profiles:      repositories.Profiles,
		Logger:        logger,
		ContextWindow: options.ContextWindow,
		Clock:         options.Clock,
	}
	if options.I18n != nil {
		chatOptions.Translator = options.I18n
	}
	if options.Metrics != nil {
		ledgerOptions.Observer = options.Metrics
		chatOptions.Observer = options.Metrics
	}

	ledger := services.NewLedgerService(repositories.DailyLogs, ledgerOptions)
	streaks := services.NewStreakService(repositories.WaterStreaks, location, logger)
	if options.Metrics != nil {
		streaks.SetObserver(options.Metrics)
	}
	chatOptions.Hydration = streaks

	var languages services.LanguageNormalizer
	var translator services.Translator
	if options.I18n != nil {
		languages = options.I18n
		translator = options.I18n
	}

	settings := services.NewSettingsService(repositories.Profiles, languages)

	return &Services{
		Repositories: repositories,
		Ledger:       ledger,
		Chat:         services.NewChatService(ledger, chatOptions),
		Streaks:      streaks,
		Auth:         services.NewAuthService(repositories.Profiles),
		Settings:     settings,
		Onboarding:   services.NewOnboardingService(repositories.Profiles, settings),
		Stats:        services.NewStatsService(ledger, location),
		Export:       services.NewExportService(ledger, translator, location),
		I18n:         options.I18n,
		Location:     location,
	}
}
