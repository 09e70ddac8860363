package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-reservation-backend/internal/booking"
	"hotel-reservation-backend/internal/model"
	"hotel-reservation-backend/internal/mw"
)

// reservationResponse renders dates as YYYY-MM-DD.
type reservationResponse struct {
	ID          uint         `json:"id"`
	UserID      int64        `json:"user_id"`
	GuestName   string       `json:"guest_name"`
	RoomNumber  int          `json:"room_number"`
	RoomType    string       `json:"room_type"`
	CheckIn     string       `json:"check_in"`
	CheckOut    string       `json:"check_out"`
	Nights      int          `json:"nights"`
	PhoneNumber string       `json:"phone_number"`
	Status      model.Status `json:"status"`
	TotalPrice  float64      `json:"total_price"`
	CreatedAt   time.Time    `json:"created_at"`
}

func toResponse(r model.Reservation) reservationResponse {
	return reservationResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		GuestName:   r.GuestName,
		RoomNumber:  r.RoomNumber,
		RoomType:    r.RoomType,
		CheckIn:     r.CheckIn.Format(time.DateOnly),
		CheckOut:    r.CheckOut.Format(time.DateOnly),
		Nights:      booking.Interval{CheckIn: r.CheckIn, CheckOut: r.CheckOut}.Nights(),
		PhoneNumber: r.PhoneNumber,
		Status:      r.Status,
		TotalPrice:  r.TotalPrice,
		CreatedAt:   r.CreatedAt,
	}
}

func toResponses(list []model.Reservation) []reservationResponse {
	out := make([]reservationResponse, len(list))
	for i, r := range list {
		out[i] = toResponse(r)
	}
	return out
}

type createReservationRequest struct {
	GuestName   string `json:"guest_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	RoomType    string `json:"room_type" binding:"required"`
	CheckIn     string `json:"check_in" binding:"required"`
	CheckOut    string `json:"check_out" binding:"required"`
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	iv, err := booking.ParseInterval(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}
	uid, _ := mw.UserID(c)

	r, err := h.engine.Book(c.Request.Context(), booking.BookRequest{
		UserID:      uid,
		GuestName:   req.GuestName,
		PhoneNumber: req.PhoneNumber,
		RoomType:    req.RoomType,
		Interval:    iv,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(r))
}

// ListReservations handles GET /api/reservations with at most one of the
// user_id, date or year (plus optional month) filters.
func (h *Handler) ListReservations(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		list []model.Reservation
		err  error
	)

	switch {
	case c.Query("user_id") != "":
		uid, perr := strconv.ParseInt(c.Query("user_id"), 10, 64)
		if perr != nil {
			badRequest(c, "Invalid user_id")
			return
		}
		list, err = h.store.ByUser(ctx, uid)

	case c.Query("date") != "":
		date, perr := time.Parse(time.DateOnly, c.Query("date"))
		if perr != nil {
			badRequest(c, "Invalid date. Use YYYY-MM-DD.")
			return
		}
		list, err = h.store.ByCheckInDate(ctx, date)

	case c.Query("year") != "":
		year, perr := strconv.Atoi(c.Query("year"))
		if perr != nil || year < 1 || year > 9999 {
			badRequest(c, "Invalid year")
			return
		}
		if raw := c.Query("month"); raw != "" {
			month, perr := strconv.Atoi(raw)
			if perr != nil || month < 1 || month > 12 {
				badRequest(c, "Invalid month")
				return
			}
			list, err = h.store.ByCheckInMonth(ctx, year, time.Month(month))
		} else {
			list, err = h.store.ByCheckInYear(ctx, year)
		}

	default:
		list, err = h.store.All(ctx)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// GetReservation handles GET /api/reservations/:id.
func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.engine.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

type updateReservationRequest struct {
	UserID      *int64   `json:"user_id" binding:"required"`
	GuestName   string   `json:"guest_name" binding:"required"`
	PhoneNumber string   `json:"phone_number" binding:"required"`
	RoomNumber  int      `json:"room_number" binding:"required"`
	RoomType    string   `json:"room_type" binding:"required"`
	CheckIn     string   `json:"check_in" binding:"required"`
	CheckOut    string   `json:"check_out" binding:"required"`
	Status      string   `json:"status" binding:"required"`
	TotalPrice  *float64 `json:"total_price" binding:"required"`
}

// UpdateReservation handles PUT /api/reservations/:id, replacing every field.
func (h *Handler) UpdateReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	iv, err := booking.ParseInterval(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.engine.Update(c.Request.Context(), model.Reservation{
		ID:          id,
		UserID:      *req.UserID,
		GuestName:   req.GuestName,
		RoomNumber:  req.RoomNumber,
		RoomType:    req.RoomType,
		CheckIn:     iv.CheckIn,
		CheckOut:    iv.CheckOut,
		PhoneNumber: req.PhoneNumber,
		Status:      status,
		TotalPrice:  *req.TotalPrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

type changeDatesRequest struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
}

// ChangeDates handles PATCH /api/reservations/:id/dates.
func (h *Handler) ChangeDates(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req changeDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	iv, err := booking.ParseInterval(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}
	r, err := h.engine.ChangeDates(c.Request.Context(), id, iv)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TransitionStatus handles POST /api/reservations/:id/status.
func (h *Handler) TransitionStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.engine.Transition(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

// CancelReservation handles POST /api/reservations/:id/cancel.
func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.engine.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

// DeleteReservation handles DELETE /api/reservations/:id.
func (h *Handler) DeleteReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.engine.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
