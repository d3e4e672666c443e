package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, svc Services) {
	handler := NewHandler(svc)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Nearby search and derived location data
		api.Get("/search/:category", handler.Search)
		api.Get("/distance", handler.GetDistance)
		api.Get("/pricing", handler.GetPricing)
		api.Get("/currency", handler.GetCurrency)
		api.Get("/weather", handler.GetWeather)
		api.Get("/context", handler.GetContext)

		// Saved parking location
		api.Get("/parking", handler.GetParking)
		api.Post("/parking", handler.SaveParking)
		api.Put("/parking", handler.UpdateParking)
		api.Delete("/parking", handler.ClearParking)
		api.Put("/parking/note", handler.UpdateParkingNote)
		api.Get("/parking/history", handler.GetParkingHistory)

		// Favorites
		api.Get("/favorites", handler.GetFavorites)
		api.Post("/favorites", handler.AddFavorite)
		api.Delete("/favorites/:id", handler.RemoveFavorite)
	}
}

// RequestContext gives every handler a user context that ends when the request
// returns or after timeout. fasthttp does not report client disconnects, so the
// deadline is what bounds upstream calls made on the request's behalf.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// ErrorHandler renders errors as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
