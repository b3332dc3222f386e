package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Get("/setup-status", handler.SetupStatus)
	auth.Post("/setup", handler.Setup)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)
	auth.Post("/password", handler.AuthRequired, handler.ChangePassword)

	onboarding := api.Group("/onboarding", handler.AuthRequired)
	onboarding.Get("", handler.GetOnboarding)
	onboarding.Post("", handler.CompleteOnboarding)

	chat := api.Group("/chat", handler.AuthRequired, handler.OnboardingRequired)
	chat.Get("/messages", handler.GetMessages)
	chat.Post("/messages", handler.SendMessage)

	days := api.Group("/days", handler.AuthRequired)
	days.Get("", handler.GetDays)
	days.Get("/:date", handler.GetDay)

	api.Delete("/meals/:id", handler.AuthRequired, handler.DeleteMeal)
	api.Post("/water", handler.AuthRequired, handler.LogWater)
	api.Get("/streak", handler.AuthRequired, handler.GetStreak)

	stats := api.Group("/stats", handler.AuthRequired)
	stats.Get("/month", handler.GetMonthStats)

	export := api.Group("/export", handler.AuthRequired)
	export.Get("/summary", handler.ExportSummary)
	export.Get("/csv", handler.ExportCSV)
	export.Get("/json", handler.ExportJSON)
	export.Get("/xlsx", handler.ExportXLSX)

	settings := api.Group("/settings", handler.AuthRequired)
	settings.Get("", handler.GetSettings)
	settings.Patch("", handler.UpdateSettings)
	settings.Get("/personas", handler.GetPersonas)
	settings.Get("/languages", handler.GetLanguages)
	settings.Get("/models", handler.GetModels)
}
