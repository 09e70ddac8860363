package sweeper

import (
	"context"
	"errors"
	"log"
	"time"

	"hotel-reservation-backend/internal/booking"
	"hotel-reservation-backend/internal/model"
)

// OverdueLister finds reservations whose guests never checked in.
type OverdueLister interface {
	Overdue(ctx context.Context, cutoff time.Time) ([]model.Reservation, error)
}

// Transitioner applies lifecycle changes.
type Transitioner interface {
	Transition(ctx context.Context, id uint, target model.Status) (model.Reservation, error)
}

// Service periodically marks reservations as No-Show once their check-in day
// plus a grace period has passed, releasing the room.
type Service struct {
	reservations OverdueLister
	lifecycle    Transitioner
	interval     time.Duration
	grace        time.Duration
	now          func() time.Time
}

func NewService(reservations OverdueLister, lifecycle Transitioner, interval, grace time.Duration) *Service {
	return &Service{
		reservations: reservations,
		lifecycle:    lifecycle,
		interval:     interval,
		grace:        grace,
		now:          time.Now,
	}
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	log.Println("Starting no-show sweeper...")
	s.SweepOnce(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("No-show sweeper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// SweepOnce marks every overdue reservation as No-Show and returns how many
// were changed.
func (s *Service) SweepOnce(ctx context.Context) int {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.Add(-s.grace)

	overdue, err := s.reservations.Overdue(ctx, cutoff)
	if err != nil {
		log.Printf("Error listing overdue reservations: %v", err)
		return 0
	}

	marked := 0
	for _, r := range overdue {
		if _, err := s.lifecycle.Transition(ctx, r.ID, model.StatusNoShow); err != nil {
			// The guest may have checked in since the listing.
			if !errors.Is(err, booking.ErrInvalidTransition) {
				log.Printf("Error marking reservation %d as no-show: %v", r.ID, err)
			}
			continue
		}
		marked++
	}
	if marked > 0 {
		log.Printf("Marked %d reservations checking in before %s as no-show", marked, cutoff.Format(time.DateOnly))
	}
	return marked
}
