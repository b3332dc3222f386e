package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/bitebuddy/internal/models"
)

var errUnauthenticated = errors.New("unauthenticated")

// AuthRequired accepts the session cookie or an Authorization bearer token.
// A profile flagged for a forced password change may only change its
// password or log out.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	profile, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextProfileKey, profile)
	if profile.MustChangePassword && !allowedDuringPasswordChange(c.Path()) {
		return apiError(c, fiber.StatusForbidden, "password change required")
	}
	return c.Next()
}

func allowedDuringPasswordChange(path string) bool {
	switch strings.TrimSuffix(path, "/") {
	case "/api/auth/password", "/api/auth/logout", "/api/auth/me":
		return true
	default:
		return false
	}
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.Profile, error) {
	tokenValue := bearerToken(c.Get(fiber.HeaderAuthorization))
	if tokenValue == "" {
		tokenValue = strings.TrimSpace(c.Cookies(authCookieName))
	}
	if tokenValue == "" {
		return nil, errUnauthenticated
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(handler.now))
	if err != nil || !token.Valid {
		return nil, errUnauthenticated
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(handler.now()) {
		return nil, errUnauthenticated
	}

	profile, err := handler.authService.FindByID(claims.ProfileID)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
