package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-reservation-backend/internal/booking"
)

// GetRoomTypes handles GET /api/room-types.
func (h *Handler) GetRoomTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Catalog().Types())
}

// GetAvailability handles GET /api/availability. Without room_type it
// summarizes every type.
func (h *Handler) GetAvailability(c *gin.Context) {
	iv, err := booking.ParseInterval(c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		respondError(c, err)
		return
	}

	roomType := c.Query("room_type")
	if roomType == "" {
		all, err := h.engine.Availability(c.Request.Context(), iv)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, all)
		return
	}

	n, err := h.engine.AvailableCount(c.Request.Context(), roomType, iv)
	if err != nil {
		respondError(c, err)
		return
	}
	rt, _ := h.engine.Catalog().Lookup(roomType)
	c.JSON(http.StatusOK, booking.TypeAvailability{
		RoomType:  rt.Name,
		Available: n,
		PoolSize:  rt.PoolSize(),
		Rate:      rt.Rate,
		Level:     booking.LevelFor(n),
	})
}

// GetQuote handles GET /api/quote.
func (h *Handler) GetQuote(c *gin.Context) {
	iv, err := booking.ParseInterval(c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		respondError(c, err)
		return
	}
	q, err := h.engine.Quote(c.Query("room_type"), iv)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}
