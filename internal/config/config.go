package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"

	insecureSecretPlaceholder = "change_me_in_production"
	exampleSecretPlaceholder  = "replace_with_at_least_32_random_characters"
	minSecretKeyLength        = 32
)

var (
	ErrSecretKeyMissing  = errors.New("SECRET_KEY is required")
	ErrSecretKeyInsecure = errors.New("SECRET_KEY uses a placeholder value")
	ErrSecretKeyTooShort = errors.New("SECRET_KEY must be at least 32 characters")
)

type Config struct {
	Port                 string        `yaml:"port"`
	DBPath               string        `yaml:"db_path"`
	Timezone             string        `yaml:"timezone"`
	SecretKey            string        `yaml:"secret_key"`
	CookieSecure         bool          `yaml:"cookie_secure"`
	Environment          string        `yaml:"environment"`
	LogLevel             string        `yaml:"log_level"`
	OpenAIAPIKey         string        `yaml:"openai_api_key"`
	OpenAIBaseURL        string        `yaml:"openai_base_url"`
	OpenAIModel          string        `yaml:"openai_model"`
	LLMMaxAttempts       int           `yaml:"llm_max_attempts"`
	LLMRetryDelay        time.Duration `yaml:"llm_retry_delay"`
	LLMRequestsPerMinute int           `yaml:"llm_requests_per_minute"`
	ContextWindow        int           `yaml:"context_window"`
	LedgerPersistence    string        `yaml:"ledger_persistence"`
	DefaultLanguage      string        `yaml:"default_language"`
	StreakSchedule       string        `yaml:"streak_schedule"`
}

func Default() Config {
	return Config{
		Port:                 "8080",
		DBPath:               filepath.Join("data", "bitebuddy.db"),
		Timezone:             "UTC",
		Environment:          EnvironmentDevelopment,
		LogLevel:             "info",
		OpenAIModel:          "gpt-4o",
		LLMMaxAttempts:       3,
		LLMRetryDelay:        time.Second,
		LLMRequestsPerMinute: 30,
		ContextWindow:        10,
		LedgerPersistence:    "best_effort",
		DefaultLanguage:      "en",
		StreakSchedule:       "5 0 * * *",
	}
}

// Load applies defaults, then the YAML file named by BITEBUDDY_CONFIG, then
// environment variables. A .env file in the working directory is loaded
// first when present and never overrides variables that are already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("BITEBUDDY_CONFIG")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) mergeFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) mergeEnv() error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.Timezone = getEnv("TZ", cfg.Timezone)
	cfg.SecretKey = getEnv("SECRET_KEY", cfg.SecretKey)
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", cfg.Environment))
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.LedgerPersistence = getEnv("LEDGER_PERSISTENCE", cfg.LedgerPersistence)
	cfg.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	cfg.StreakSchedule = getEnv("STREAK_SCHEDULE", cfg.StreakSchedule)

	var err error
	if cfg.CookieSecure, err = getEnvBool("COOKIE_SECURE", cfg.CookieSecure); err != nil {
		return err
	}
	if cfg.LLMMaxAttempts, err = getEnvInt("LLM_MAX_ATTEMPTS", cfg.LLMMaxAttempts); err != nil {
		return err
	}
	if cfg.LLMRequestsPerMinute, err = getEnvInt("LLM_REQUESTS_PER_MINUTE", cfg.LLMRequestsPerMinute); err != nil {
		return err
	}
	if cfg.ContextWindow, err = getEnvInt("CONTEXT_WINDOW", cfg.ContextWindow); err != nil {
		return err
	}
	if raw := os.Getenv("LLM_RETRY_DELAY"); raw != "" {
		delay, parseErr := time.ParseDuration(raw)
		if parseErr != nil {
			return fmt.Errorf("LLM_RETRY_DELAY: %w", parseErr)
		}
		cfg.LLMRetryDelay = delay
	}
	return nil
}

func (cfg Config) IsProduction() bool {
	return cfg.Environment == EnvironmentProduction
}

// Location resolves the configured timezone, falling back to UTC.
func (cfg Config) Location() (*time.Location, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid TZ %q: %w", cfg.Timezone, err)
	}
	return location, nil
}

// ResolveSecretKey returns the signing key for sessions, rejecting empty,
// placeholder and short values.
func (cfg Config) ResolveSecretKey() (string, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	switch {
	case secret == "":
		return "", ErrSecretKeyMissing
	case secret == insecureSecretPlaceholder, secret == exampleSecretPlaceholder:
		return "", ErrSecretKeyInsecure
	case len(secret) < minSecretKeyLength:
		return "", ErrSecretKeyTooShort
	}
	return secret, nil
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
