package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"hotel-reservation-backend/internal/booking"
	"hotel-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine  *booking.Engine
	store   store.Store
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(engine *booking.Engine, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		engine:  engine,
		store:   s,
		webpush: webpushOptions,
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": "invalid_request"})
}

// respondError maps engine and store failures onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, booking.ErrInvalidInput),
		errors.Is(err, booking.ErrInvalidInterval):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, booking.ErrUnknownRoomType):
		status, code = http.StatusBadRequest, "unknown_room_type"
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, booking.ErrNoAvailability):
		status, code = http.StatusConflict, "no_availability"
	case errors.Is(err, store.ErrRoomConflict):
		status, code = http.StatusConflict, "room_conflict"
	case errors.Is(err, booking.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	}

	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error", "code": code})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": code})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid reservation ID")
		return 0, false
	}
	return uint(id), true
}
