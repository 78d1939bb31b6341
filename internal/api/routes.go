package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/oauth/callback", handler.OAuthCallback)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	api.Get("/entries", handler.AuthRequired, handler.ListEntries)
	api.Get("/predictions", handler.AuthRequired, handler.Predictions)
	api.Get("/calendar/:year/:month", handler.AuthRequired, handler.CalendarMonth)
	api.Post("/period", handler.AuthRequired, handler.LogPeriod)

	calendar := api.Group("/google", handler.AuthRequired)
	calendar.Get("/status", handler.GoogleStatus)
	calendar.Get("/connect", handler.GoogleConnect)
	calendar.Delete("/connection", handler.GoogleDisconnect)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
