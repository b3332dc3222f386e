package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/i18n"
	"github.com/terraincognita07/bitebuddy/internal/llm"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

const (
	authCookieName     = "bitebuddy_auth"
	languageCookieName = "bitebuddy_lang"

	contextProfileKey  = "profile"
	contextLanguageKey = "language"

	idempotencyKeyHeader = "Idempotency-Key"

	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour

	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
)

type Handler struct {
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	i18n         *i18n.Manager
	logger       logrus.FieldLogger
	loginLimiter *attemptLimiter

	authService       *services.AuthService
	settingsService   *services.SettingsService
	onboardingService *services.OnboardingService
	chatService       *services.ChatService
	ledgerService     *services.LedgerService
	statsService      *services.StatsService
	exportService     *services.ExportService
	streakService     *services.StreakService
	catalogue         *llm.Catalogue
	modelName         string
	now               func() time.Time
}

type authClaims struct {
	ProfileID uint `json:"uid"`
	jwt.RegisteredClaims
}

type credentialsInput struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	Name       string `json:"name" form:"name"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type chatMessageInput struct {
	Content string `json:"content" form:"content"`
}

type waterInput struct {
	AmountML int `json:"amount_ml" form:"amount_ml"`
}
