package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hotel-reservation-backend/internal/model"
)

// Type names a reservation lifecycle event.
type Type string

const (
	TypeCreated       Type = "reservation.created"
	TypeUpdated       Type = "reservation.updated"
	TypeDatesChanged  Type = "reservation.dates_changed"
	TypeStatusChanged Type = "reservation.status_changed"
	TypeCancelled     Type = "reservation.cancelled"
	TypeDeleted       Type = "reservation.deleted"
)

// Event is the JSON envelope published to every broker.
type Event struct {
	ID            string       `json:"id"`
	Type          Type         `json:"type"`
	OccurredAt    time.Time    `json:"occurred_at"`
	ReservationID uint         `json:"reservation_id"`
	UserID        int64        `json:"user_id"`
	RoomType      string       `json:"room_type"`
	RoomNumber    int          `json:"room_number"`
	CheckIn       string       `json:"check_in"`
	CheckOut      string       `json:"check_out"`
	Status        model.Status `json:"status"`
}

// FromReservation builds an event of type t describing r.
func FromReservation(t Type, r model.Reservation, at time.Time) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          t,
		OccurredAt:    at.UTC(),
		ReservationID: r.ID,
		UserID:        r.UserID,
		RoomType:      r.RoomType,
		RoomNumber:    r.RoomNumber,
		CheckIn:       r.CheckIn.Format(time.DateOnly),
		CheckOut:      r.CheckOut.Format(time.DateOnly),
		Status:        r.Status,
	}
}

// Message renders a short human-readable summary for front-desk notifications.
func (e Event) Message() string {
	switch e.Type {
	case TypeCreated:
		return fmt.Sprintf("New booking: %s room %d, %s to %s", e.RoomType, e.RoomNumber, e.CheckIn, e.CheckOut)
	case TypeDatesChanged:
		return fmt.Sprintf("Booking %d moved to room %d, %s to %s", e.ReservationID, e.RoomNumber, e.CheckIn, e.CheckOut)
	case TypeStatusChanged:
		return fmt.Sprintf("Booking %d (room %d) is now %s", e.ReservationID, e.RoomNumber, e.Status)
	case TypeCancelled:
		return fmt.Sprintf("Booking %d cancelled, room %d is free from %s", e.ReservationID, e.RoomNumber, e.CheckIn)
	case TypeDeleted:
		return fmt.Sprintf("Booking %d deleted", e.ReservationID)
	default:
		return fmt.Sprintf("Booking %d updated", e.ReservationID)
	}
}

// Publisher delivers events to one downstream system.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
