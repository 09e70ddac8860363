package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-reservation-backend/internal/model"
)

// ER_LOCK_DEADLOCK
const mysqlDeadlock = 1213

// Store defines the interface for all reservation persistence.
type Store interface {
	BookedRoomNumbers(ctx context.Context, roomType string, checkIn, checkOut time.Time) ([]int, error)

	Insert(ctx context.Context, r *model.Reservation) error
	UpdateFull(ctx context.Context, r *model.Reservation) error
	UpdateDatesOnly(ctx context.Context, id uint, checkIn, checkOut time.Time) error
	MoveRoom(ctx context.Context, id uint, room int, checkIn, checkOut time.Time) error
	UpdateStatus(ctx context.Context, id uint, from, to model.Status) error
	Delete(ctx context.Context, id uint) error
	SoftCancel(ctx context.Context, id uint) error

	Get(ctx context.Context, id uint) (model.Reservation, error)
	All(ctx context.Context) ([]model.Reservation, error)
	ByUser(ctx context.Context, userID int64) ([]model.Reservation, error)
	ByCheckInDate(ctx context.Context, date time.Time) ([]model.Reservation, error)
	ByCheckInMonth(ctx context.Context, year int, month time.Month) ([]model.Reservation, error)
	ByCheckInYear(ctx context.Context, year int) ([]model.Reservation, error)
	Overdue(ctx context.Context, cutoff time.Time) ([]model.Reservation, error)

	SubscriptionStore
}

// SubscriptionStore persists Web Push registrations.
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	SubscriptionsForRoomType(ctx context.Context, roomType string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// BookedRoomNumbers returns the sorted, distinct rooms of roomType held by an
// active reservation overlapping [checkIn, checkOut).
func (s *gormStore) BookedRoomNumbers(ctx context.Context, roomType string, checkIn, checkOut time.Time) ([]int, error) {
	var rooms []int
	q := blockingOverlap(s.db.WithContext(ctx).Model(&model.Reservation{}), checkIn, checkOut)
	if err := q.Where("room_type = ?", roomType).
		Order("room_number").
		Distinct().
		Pluck("room_number", &rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch booked rooms for %s: %w", roomType, err)
	}
	return rooms, nil
}

// Insert persists a new reservation, re-checking inside the transaction that
// its room is still free.
func (s *gormStore) Insert(ctx context.Context, r *model.Reservation) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if r.Status.Blocks() {
			if err := ensureRoomFree(tx, r.RoomNumber, r.CheckIn, r.CheckOut, 0); err != nil {
				return err
			}
		}
		if err := tx.Create(r).Error; err != nil {
			return fmt.Errorf("failed to insert reservation for room %d: %w", r.RoomNumber, err)
		}
		return nil
	})
}

// UpdateFull overwrites every mutable column of an existing reservation.
func (s *gormStore) UpdateFull(ctx context.Context, r *model.Reservation) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if _, err := findForUpdate(tx, r.ID); err != nil {
			return err
		}
		if r.Status.Blocks() {
			if err := ensureRoomFree(tx, r.RoomNumber, r.CheckIn, r.CheckOut, r.ID); err != nil {
				return err
			}
		}
		err := tx.Model(&model.Reservation{}).Where("id = ?", r.ID).Updates(map[string]any{
			"user_id":      r.UserID,
			"guest_name":   r.GuestName,
			"room_number":  r.RoomNumber,
			"room_type":    r.RoomType,
			"check_in":     r.CheckIn,
			"check_out":    r.CheckOut,
			"phone_number": r.PhoneNumber,
			"status":       r.Status,
			"total_price":  r.TotalPrice,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update reservation %d: %w", r.ID, err)
		}
		return nil
	})
}

// UpdateDatesOnly changes check-in and check-out and nothing else.
func (s *gormStore) UpdateDatesOnly(ctx context.Context, id uint, checkIn, checkOut time.Time) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		existing, err := findForUpdate(tx, id)
		if err != nil {
			return err
		}
		if existing.Status.Blocks() {
			if err := ensureRoomFree(tx, existing.RoomNumber, checkIn, checkOut, id); err != nil {
				return err
			}
		}
		err = tx.Model(&model.Reservation{}).Where("id = ?", id).Updates(map[string]any{
			"check_in":  checkIn,
			"check_out": checkOut,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update dates of reservation %d: %w", id, err)
		}
		return nil
	})
}

// MoveRoom reassigns a reservation to room for new dates. Status and the
// other columns are left as stored.
func (s *gormStore) MoveRoom(ctx context.Context, id uint, room int, checkIn, checkOut time.Time) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		existing, err := findForUpdate(tx, id)
		if err != nil {
			return err
		}
		if existing.Status.Blocks() {
			if err := ensureRoomFree(tx, room, checkIn, checkOut, id); err != nil {
				return err
			}
		}
		err = tx.Model(&model.Reservation{}).Where("id = ?", id).Updates(map[string]any{
			"room_number": room,
			"check_in":    checkIn,
			"check_out":   checkOut,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to move reservation %d to room %d: %w", id, room, err)
		}
		return nil
	})
}

// UpdateStatus moves a reservation from status from to status to. It fails
// with ErrStatusChanged when the stored status is no longer from. Moving a
// non-blocking reservation back to a blocking status re-validates its room.
func (s *gormStore) UpdateStatus(ctx context.Context, id uint, from, to model.Status) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		existing, err := findForUpdate(tx, id)
		if err != nil {
			return err
		}
		if existing.Status != from {
			return fmt.Errorf("%w: reservation %d is %s, not %s", ErrStatusChanged, id, existing.Status, from)
		}
		if to.Blocks() && !existing.Status.Blocks() {
			if err := ensureRoomFree(tx, existing.RoomNumber, existing.CheckIn, existing.CheckOut, id); err != nil {
				return err
			}
		}
		res := tx.Model(&model.Reservation{}).Where("id = ? AND status = ?", id, from).Update("status", to)
		if res.Error != nil {
			return fmt.Errorf("failed to update status of reservation %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: reservation %d left %s", ErrStatusChanged, id, from)
		}
		return nil
	})
}

// Delete removes a reservation permanently.
func (s *gormStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Reservation{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete reservation %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftCancel flips the status to Cancelled regardless of the prior status.
func (s *gormStore) SoftCancel(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if _, err := findForUpdate(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&model.Reservation{}).Where("id = ?", id).Update("status", model.StatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel reservation %d: %w", id, err)
		}
		return nil
	})
}

func (s *gormStore) Get(ctx context.Context, id uint) (model.Reservation, error) {
	var r model.Reservation
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Reservation{}, ErrNotFound
		}
		return model.Reservation{}, fmt.Errorf("failed to fetch reservation %d: %w", id, err)
	}
	return r, nil
}

// All returns every reservation, newest first.
func (s *gormStore) All(ctx context.Context) ([]model.Reservation, error) {
	var list []model.Reservation
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, nil
}

func (s *gormStore) ByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	var list []model.Reservation
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations of user %d: %w", userID, err)
	}
	return list, nil
}

func (s *gormStore) ByCheckInDate(ctx context.Context, date time.Time) ([]model.Reservation, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return s.checkInBetween(ctx, from, from.AddDate(0, 0, 1))
}

func (s *gormStore) ByCheckInMonth(ctx context.Context, year int, month time.Month) ([]model.Reservation, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return s.checkInBetween(ctx, from, from.AddDate(0, 1, 0))
}

func (s *gormStore) ByCheckInYear(ctx context.Context, year int) ([]model.Reservation, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return s.checkInBetween(ctx, from, from.AddDate(1, 0, 0))
}

// Overdue returns Pending and Confirmed reservations whose check-in date is
// before cutoff, oldest first.
func (s *gormStore) Overdue(ctx context.Context, cutoff time.Time) ([]model.Reservation, error) {
	var list []model.Reservation
	if err := s.db.WithContext(ctx).
		Where("status IN ?", []string{string(model.StatusPending), string(model.StatusConfirmed)}).
		Where("check_in < ?", cutoff).
		Order("check_in, id").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list overdue reservations: %w", err)
	}
	return list, nil
}

// checkInBetween uses a half-open range rather than YEAR()/MONTH() so the
// query works on every supported dialect and can use the date index.
func (s *gormStore) checkInBetween(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	var list []model.Reservation
	if err := s.db.WithContext(ctx).
		Where("check_in >= ? AND check_in < ?", from, to).
		Order("check_in, id").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations checking in %s..%s: %w",
			from.Format(time.DateOnly), to.Format(time.DateOnly), err)
	}
	return list, nil
}

// --- Subscriptions ---

func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "room_types"}),
	}).Create(sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Take(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PushSubscription{}, ErrNotFound
		}
		return model.PushSubscription{}, err
	}
	return sub, nil
}

func (s *gormStore) SubscriptionsForRoomType(ctx context.Context, roomType string) ([]model.PushSubscription, error) {
	var all []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	out := all[:0]
	for _, sub := range all {
		if sub.Wants(roomType) {
			out = append(out, sub)
		}
	}
	return out, nil
}

// --- Helper functions ---

// transaction runs fn in a transaction. A MySQL deadlock between two writers
// racing for the same room reports as ErrRoomConflict.
func (s *gormStore) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDeadlock {
		return fmt.Errorf("%w: %v", ErrRoomConflict, err)
	}
	return err
}

// blockingOverlap narrows q to reservations that hold their room on at least
// one night of [checkIn, checkOut).
func blockingOverlap(q *gorm.DB, checkIn, checkOut time.Time) *gorm.DB {
	return q.Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Where("status NOT IN ?", nonBlocking())
}

func nonBlocking() []string {
	statuses := model.NonBlockingStatuses()
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func findForUpdate(tx *gorm.DB, id uint) (model.Reservation, error) {
	var existing model.Reservation
	if err := tx.Where("id = ?", id).Take(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Reservation{}, ErrNotFound
		}
		return model.Reservation{}, fmt.Errorf("failed to load reservation %d: %w", id, err)
	}
	return existing, nil
}

// ensureRoomFree fails with ErrRoomConflict when another active reservation
// (other than exclude) holds room on any night of [checkIn, checkOut).
func ensureRoomFree(tx *gorm.DB, room int, checkIn, checkOut time.Time, exclude uint) error {
	if err := lockRoom(tx, room); err != nil {
		return err
	}

	q := blockingOverlap(tx.Model(&model.Reservation{}), checkIn, checkOut).Where("room_number = ?", room)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}

	switch tx.Dialector.Name() {
	case "mysql":
		// Locking read takes next-key locks on the room_number index so a
		// concurrent insert for the same room waits for this transaction.
		var ids []uint
		if err := q.Clauses(clause.Locking{Strength: "UPDATE"}).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to check room %d: %w", room, err)
		}
		if len(ids) > 0 {
			return fmt.Errorf("%w: room %d", ErrRoomConflict, room)
		}
		return nil
	default:
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check room %d: %w", room, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: room %d", ErrRoomConflict, room)
		}
		return nil
	}
}

// lockRoom serializes writers of the same room for the rest of the transaction
// on postgres. SQLite already serializes writers; MySQL relies on the locking
// read in ensureRoomFree.
func lockRoom(tx *gorm.DB, room int) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", room).Error; err != nil {
		return fmt.Errorf("failed to lock room %d: %w", room, err)
	}
	return nil
}
