package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hotel-reservation-backend/config"
	"hotel-reservation-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Responses to retried bookings are replayed for IdempotencyTTL.
	idempotencyStore := cache.New(cfg.IdempotencyTTL, 2*cfg.IdempotencyTTL)
	idempotent := mw.Idempotency(idempotencyStore, cfg.IdempotencyTTL)

	// API group
	api := r.Group("/api")
	api.Use(mw.Identity(), rateLimiter)
	{
		api.GET("/room-types", h.GetRoomTypes)
		api.GET("/availability", h.GetAvailability)
		api.GET("/quote", h.GetQuote)

		reservations := api.Group("/reservations")
		reservations.POST("", mw.RequireUser(), idempotent, h.CreateReservation)
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.PUT("/:id", h.UpdateReservation)
		reservations.PATCH("/:id/dates", h.ChangeDates)
		reservations.POST("/:id/status", h.TransitionStatus)
		reservations.POST("/:id/cancel", h.CancelReservation)
		reservations.DELETE("/:id", h.DeleteReservation)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
