package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	hrest "notification-relay/internal/handler/http"
	"notification-relay/internal/middleware"
)

// SetupRoutes configures the HTTP routes for the notification relay.
func SetupRoutes(r chi.Router, h *hrest.RelayHandler, token string, rdb *redis.Client) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RateLimit(rdb, 100, time.Minute, "global"))

	r.Route("/NotificationService", func(r chi.Router) {
		r.Use(middleware.RequireToken(token))
		r.Post("/", h.SendNotification)
	})
	return r
}
