package api

import (
	"github.com/gofiber/fiber/v2"
)

// LanguageMiddleware resolves the response language from the language
// cookie, then Accept-Language.
func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	cookieLanguage := c.Cookies(languageCookieName)
	language := handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	if cookieLanguage != "" {
		language = handler.i18n.NormalizeLanguage(cookieLanguage)
	}

	if cookieLanguage != language {
		handler.setLanguageCookie(c, language)
	}
	c.Locals(contextLanguageKey, language)
	return c.Next()
}

func (handler *Handler) setLanguageCookie(c *fiber.Ctx, language string) {
	c.Cookie(&fiber.Cookie{
		Name:     languageCookieName,
		Value:    handler.i18n.NormalizeLanguage(language),
		Path:     "/",
		HTTPOnly: false,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().AddDate(1, 0, 0),
	})
}

// exportLanguage prefers the owner's profile language over the request's.
func (handler *Handler) exportLanguage(c *fiber.Ctx) string {
	if profile, ok := currentProfile(c); ok && profile.Language != "" {
		return handler.i18n.NormalizeLanguage(profile.Language)
	}
	if language := currentLanguage(c); language != "" {
		return language
	}
	return handler.i18n.DefaultLanguage()
}
