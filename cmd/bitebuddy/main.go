package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/bitebuddy/internal/api"
	"github.com/terraincognita07/bitebuddy/internal/bootstrap"
	"github.com/terraincognita07/bitebuddy/internal/cli"
	"github.com/terraincognita07/bitebuddy/internal/config"
	"github.com/terraincognita07/bitebuddy/internal/db"
	"github.com/terraincognita07/bitebuddy/internal/i18n"
	"github.com/terraincognita07/bitebuddy/internal/llm"
	"github.com/terraincognita07/bitebuddy/internal/logging"
	"github.com/terraincognita07/bitebuddy/internal/metrics"
	"github.com/terraincognita07/bitebuddy/internal/services"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:           "bitebuddy",
	Short:         "BiteBuddy conversational nutrition coach",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (default)",
	RunE:  runServe,
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Reset the owner's password",
	RunE:  runResetPassword,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Apply a raw tagged assistant response to the ledger",
	RunE:  runIngest,
}

var (
	resetEmail  string
	resetPrompt bool
	ingestFile  string
)

func init() {
	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "owner email")
	resetPasswordCmd.Flags().BoolVar(&resetPrompt, "prompt", false, "choose the new password interactively instead of a temporary one")
	_ = resetPasswordCmd.MarkFlagRequired("email")
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "read the response from a file instead of stdin")
	rootCmd.AddCommand(serveCmd, resetPasswordCmd, ingestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bitebuddy:", err)
		os.Exit(1)
	}
}

// runtime holds what every command needs before services are wired.
type runtime struct {
	cfg      config.Config
	logger   *logrus.Logger
	location *time.Location
	database *gorm.DB
	i18n     *i18n.Manager
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.IsProduction())

	location, err := cfg.Location()
	if err != nil {
		logger.WithError(err).Warn("falling back to UTC")
	}
	time.Local = location

	database, err := db.OpenSQLite(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	manager, err := i18n.NewDefaultManager(cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, location: location, database: database, i18n: manager}, nil
}

func (rt *runtime) services(options bootstrap.Options) (*bootstrap.Services, error) {
	persistence, err := services.ParsePersistenceMode(rt.cfg.LedgerPersistence)
	if err != nil {
		return nil, err
	}
	options.Location = rt.location
	options.Persistence = persistence
	options.ContextWindow = rt.cfg.ContextWindow
	options.I18n = rt.i18n
	options.Logger = rt.logger
	return bootstrap.New(rt.database, options), nil
}

func (rt *runtime) close() {
	if sqlDB, err := rt.database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	secretKey, err := rt.cfg.ResolveSecretKey()
	if err != nil {
		return fmt.Errorf("SECRET_KEY: %w", err)
	}

	catalogue := llm.NewCatalogue()
	provider, err := llm.NewProvider(llm.Config{
		APIKey:            rt.cfg.OpenAIAPIKey,
		BaseURL:           rt.cfg.OpenAIBaseURL,
		Model:             rt.cfg.OpenAIModel,
		MaxAttempts:       rt.cfg.LLMMaxAttempts,
		RetryDelay:        rt.cfg.LLMRetryDelay,
		RequestsPerMinute: rt.cfg.LLMRequestsPerMinute,
		Logger:            rt.logger,
	}, catalogue)
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}

	deps, err := rt.services(bootstrap.Options{
		Provider: provider,
		Metrics:  metrics.New(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return err
	}
	if err := deps.Chat.RestoreActiveContext(); err != nil {
		rt.logger.WithError(err).Warn("active meal context not restored")
	}
	if _, err := deps.Streaks.ExpireIfBroken(time.Now()); err != nil {
		rt.logger.WithError(err).Warn("startup streak check failed")
	}

	scheduler, err := services.NewStreakScheduler(deps.Streaks, rt.cfg.StreakSchedule, rt.logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	handler, err := api.NewHandler(deps, api.HandlerConfig{
		SecretKey:    secretKey,
		CookieSecure: rt.cfg.CookieSecure,
		Catalogue:    catalogue,
		ModelName:    provider.Model().ID,
		Logger:       rt.logger,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newApp(handler, rt.logger.Writer())

	sigCtx, stopSignals := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		scheduler.Stop(shutdownCtx)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			rt.logger.WithError(err).Error("server shutdown failed")
		}
	}()

	rt.logger.WithFields(logrus.Fields{
		"port":  rt.cfg.Port,
		"db":    rt.cfg.DBPath,
		"tz":    rt.location.String(),
		"model": provider.Model().ID,
	}).Info("BiteBuddy listening")
	if err := app.Listen(":" + rt.cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(handler *api.Handler, accessLog io.Writer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "BiteBuddy",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Output: accessLog}))
	app.Use(compress.New())

	requestMetrics := fiberprometheus.New("bitebuddy")
	requestMetrics.RegisterAt(app, "/metrics")
	app.Use(requestMetrics.Middleware)

	app.Use(handler.LanguageMiddleware)
	api.RegisterRoutes(app, handler)
	return app
}

func runResetPassword(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	options := cli.ResetPasswordOptions{Email: resetEmail}
	if resetPrompt {
		options.Password, err = cli.PromptNewPassword(os.Stdin, cmd.OutOrStdout())
		if err != nil {
			return err
		}
	}
	return cli.RunResetPasswordCommand(db.NewProfileRepository(rt.database), options, cmd.OutOrStdout())
}

func runIngest(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	input := cmd.InOrStdin()
	if ingestFile != "" {
		file, err := os.Open(ingestFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", ingestFile, err)
		}
		defer file.Close()
		input = file
	}

	deps, err := rt.services(bootstrap.Options{})
	if err != nil {
		return err
	}
	if err := deps.Chat.RestoreActiveContext(); err != nil {
		rt.logger.WithError(err).Warn("active meal context not restored")
	}
	return cli.RunIngestCommand(deps.Chat, input, cmd.OutOrStdout())
}
