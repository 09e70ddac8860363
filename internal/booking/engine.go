package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"hotel-reservation-backend/internal/catalog"
	"hotel-reservation-backend/internal/events"
	"hotel-reservation-backend/internal/lock"
	"hotel-reservation-backend/internal/model"
	"hotel-reservation-backend/internal/store"
)

var phonePattern = regexp.MustCompile(`^\+?\d{8,15}$`)

// Notifier receives lifecycle events after a write commits.
type Notifier interface {
	Dispatch(e events.Event)
}

// Level is the display hint for an availability count.
type Level string

const (
	LevelGreen  Level = "green"
	LevelYellow Level = "yellow"
	LevelRed    Level = "red"
)

// LevelFor maps a free-room count to its display level.
func LevelFor(available int) Level {
	switch {
	case available >= 10:
		return LevelGreen
	case available >= 5:
		return LevelYellow
	default:
		return LevelRed
	}
}

// TypeAvailability is the free-room summary of one room type.
type TypeAvailability struct {
	RoomType  string  `json:"room_type"`
	Available int     `json:"available"`
	PoolSize  int     `json:"pool_size"`
	Rate      float64 `json:"rate"`
	Level     Level   `json:"level"`
}

// BookRequest carries everything needed to create a reservation. UserID is
// the identity of the caller making the booking.
type BookRequest struct {
	UserID      int64
	GuestName   string
	PhoneNumber string
	RoomType    string
	Interval    Interval
}

// Engine computes availability, assigns rooms and drives reservation writes.
// It holds no booking state of its own; every call reads the store.
type Engine struct {
	store    store.Store
	catalog  *catalog.Catalog
	locker   lock.Locker
	notifier Notifier
	now      func() time.Time
}

// NewEngine wires an engine. A nil locker falls back to an in-process one;
// a nil notifier drops events.
func NewEngine(s store.Store, c *catalog.Catalog, l lock.Locker, n Notifier) *Engine {
	if l == nil {
		l = lock.NewMemoryLocker()
	}
	return &Engine{
		store:    s,
		catalog:  c,
		locker:   l,
		notifier: n,
		now:      time.Now,
	}
}

// Catalog returns the room catalog the engine allocates from.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// AvailableCount returns how many rooms of roomType are free on every night
// of iv. Unknown types report zero alongside ErrUnknownRoomType.
func (e *Engine) AvailableCount(ctx context.Context, roomType string, iv Interval) (int, error) {
	iv, err := iv.normalize()
	if err != nil {
		return 0, err
	}
	rt, err := e.roomType(roomType)
	if err != nil {
		return 0, err
	}
	booked, err := e.bookedSet(ctx, rt, iv)
	if err != nil {
		return 0, err
	}
	free := rt.PoolSize() - len(booked)
	if free < 0 {
		free = 0
	}
	return free, nil
}

// Availability returns the free-room summary for every catalog type.
func (e *Engine) Availability(ctx context.Context, iv Interval) ([]TypeAvailability, error) {
	iv, err := iv.normalize()
	if err != nil {
		return nil, err
	}
	types := e.catalog.Types()
	out := make([]TypeAvailability, 0, len(types))
	for _, rt := range types {
		n, err := e.AvailableCount(ctx, rt.Name, iv)
		if err != nil {
			return nil, err
		}
		out = append(out, TypeAvailability{
			RoomType:  rt.Name,
			Available: n,
			PoolSize:  rt.PoolSize(),
			Rate:      rt.Rate,
			Level:     LevelFor(n),
		})
	}
	return out, nil
}

// AssignRoom proposes the lowest free room of roomType for iv. ok is false
// when the type is fully booked. Nothing is reserved.
func (e *Engine) AssignRoom(ctx context.Context, roomType string, iv Interval) (room int, ok bool, err error) {
	iv, err = iv.normalize()
	if err != nil {
		return 0, false, err
	}
	rt, err := e.roomType(roomType)
	if err != nil {
		return 0, false, err
	}
	booked, err := e.bookedSet(ctx, rt, iv)
	if err != nil {
		return 0, false, err
	}
	room, ok = firstFit(rt, booked)
	return room, ok, nil
}

// ComputeTotal prices a stay of roomType.
func (e *Engine) ComputeTotal(roomType string, iv Interval) (float64, error) {
	q, err := e.Quote(roomType, iv)
	if err != nil {
		return 0, err
	}
	return q.Total, nil
}

func (e *Engine) Quote(roomType string, iv Interval) (Quote, error) {
	iv, err := iv.normalize()
	if err != nil {
		return Quote{}, err
	}
	rt, err := e.roomType(roomType)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		RoomType: rt.Name,
		Nights:   iv.Nights(),
		Rate:     rt.Rate,
		Total:    ComputeTotal(rt, iv),
	}, nil
}

// Book assigns the first free room of the requested type and persists a
// Pending reservation for it. The room-type lock is held from the booked-set
// read until the insert commits.
func (e *Engine) Book(ctx context.Context, req BookRequest) (model.Reservation, error) {
	if err := validateGuest(req.GuestName, req.PhoneNumber); err != nil {
		return model.Reservation{}, err
	}
	stay, err := req.Interval.normalize()
	if err != nil {
		return model.Reservation{}, err
	}
	rt, err := e.roomType(req.RoomType)
	if err != nil {
		return model.Reservation{}, err
	}

	unlock, err := e.locker.Lock(ctx, lockKey(rt.Name))
	if err != nil {
		return model.Reservation{}, fmt.Errorf("failed to lock room type %s: %w", rt.Name, err)
	}
	defer unlock()

	booked, err := e.bookedSet(ctx, rt, stay)
	if err != nil {
		return model.Reservation{}, err
	}
	room, ok := firstFit(rt, booked)
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %s for %s", ErrNoAvailability, rt.Name, stay)
	}

	r := model.Reservation{
		UserID:      req.UserID,
		GuestName:   strings.TrimSpace(req.GuestName),
		RoomNumber:  room,
		RoomType:    rt.Name,
		CheckIn:     stay.CheckIn,
		CheckOut:    stay.CheckOut,
		PhoneNumber: req.PhoneNumber,
		Status:      model.StatusPending,
		TotalPrice:  ComputeTotal(rt, stay),
		CreatedAt:   e.now().UTC(),
	}
	if err := e.store.Insert(ctx, &r); err != nil {
		return model.Reservation{}, fmt.Errorf("failed to book room %d: %w", room, err)
	}

	e.emit(events.TypeCreated, r)
	return r, nil
}

// ChangeDates moves a reservation to new dates. The room is kept when it is
// still free; otherwise the first free room of the same type is assigned.
// The stored total is left untouched.
func (e *Engine) ChangeDates(ctx context.Context, id uint, iv Interval) (model.Reservation, error) {
	iv, err := iv.normalize()
	if err != nil {
		return model.Reservation{}, err
	}
	existing, err := e.store.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}

	unlock, err := e.locker.Lock(ctx, lockKey(existing.RoomType))
	if err != nil {
		return model.Reservation{}, fmt.Errorf("failed to lock room type %s: %w", existing.RoomType, err)
	}
	defer unlock()

	err = e.store.UpdateDatesOnly(ctx, id, iv.CheckIn, iv.CheckOut)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrRoomConflict):
		if err := e.reassign(ctx, existing, iv); err != nil {
			return model.Reservation{}, err
		}
	default:
		return model.Reservation{}, err
	}

	updated, err := e.store.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	e.emit(events.TypeDatesChanged, updated)
	return updated, nil
}

func (e *Engine) reassign(ctx context.Context, existing model.Reservation, iv Interval) error {
	rt, err := e.roomType(existing.RoomType)
	if err != nil {
		return err
	}
	// The reservation only occupies its own room, which is already taken by
	// someone else on the new dates, so the booked set needs no exclusion.
	booked, err := e.bookedSet(ctx, rt, iv)
	if err != nil {
		return err
	}
	room, ok := firstFit(rt, booked)
	if !ok {
		return fmt.Errorf("%w: %s for %s", ErrNoAvailability, rt.Name, iv)
	}

	if err := e.store.MoveRoom(ctx, existing.ID, room, iv.CheckIn, iv.CheckOut); err != nil {
		return fmt.Errorf("failed to move reservation %d to room %d: %w", existing.ID, room, err)
	}
	log.Printf("Reservation %d moved from room %d to %d for %s", existing.ID, existing.RoomNumber, room, iv)
	return nil
}

// Transition applies a guarded lifecycle change. The store applies it only if
// the reservation is still in the status the guard was checked against.
func (e *Engine) Transition(ctx context.Context, id uint, target model.Status) (model.Reservation, error) {
	if !target.IsValid() {
		return model.Reservation{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, target)
	}
	existing, err := e.store.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if !existing.Status.CanTransitionTo(target) {
		return model.Reservation{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, existing.Status, target)
	}
	err = e.store.UpdateStatus(ctx, id, existing.Status, target)
	switch {
	case errors.Is(err, store.ErrStatusChanged):
		return model.Reservation{}, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	case err != nil:
		return model.Reservation{}, err
	}
	updated, err := e.store.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	e.emit(events.TypeStatusChanged, updated)
	return updated, nil
}

// Cancel soft-cancels a reservation from any status.
func (e *Engine) Cancel(ctx context.Context, id uint) (model.Reservation, error) {
	if err := e.store.SoftCancel(ctx, id); err != nil {
		return model.Reservation{}, err
	}
	r, err := e.store.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	e.emit(events.TypeCancelled, r)
	return r, nil
}

// Delete removes a reservation permanently.
func (e *Engine) Delete(ctx context.Context, id uint) error {
	r, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	e.emit(events.TypeDeleted, r)
	return nil
}

// Update overwrites every field of an existing reservation. The room must
// belong to the room type; overlap is re-checked by the store.
func (e *Engine) Update(ctx context.Context, r model.Reservation) (model.Reservation, error) {
	if err := validateGuest(r.GuestName, r.PhoneNumber); err != nil {
		return model.Reservation{}, err
	}
	iv, err := NewInterval(r.CheckIn, r.CheckOut)
	if err != nil {
		return model.Reservation{}, err
	}
	if !r.Status.IsValid() {
		return model.Reservation{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, r.Status)
	}
	rt, err := e.roomType(r.RoomType)
	if err != nil {
		return model.Reservation{}, err
	}
	if !rt.Contains(r.RoomNumber) {
		return model.Reservation{}, fmt.Errorf("%w: room %d is not a %s room", ErrInvalidInput, r.RoomNumber, rt.Name)
	}
	if r.TotalPrice < 0 {
		return model.Reservation{}, fmt.Errorf("%w: negative total price", ErrInvalidInput)
	}

	unlock, err := e.locker.Lock(ctx, lockKey(rt.Name))
	if err != nil {
		return model.Reservation{}, fmt.Errorf("failed to lock room type %s: %w", rt.Name, err)
	}
	defer unlock()

	r.GuestName = strings.TrimSpace(r.GuestName)
	r.CheckIn, r.CheckOut = iv.CheckIn, iv.CheckOut
	if err := e.store.UpdateFull(ctx, &r); err != nil {
		return model.Reservation{}, err
	}
	updated, err := e.store.Get(ctx, r.ID)
	if err != nil {
		return model.Reservation{}, err
	}
	e.emit(events.TypeUpdated, updated)
	return updated, nil
}

func (e *Engine) Get(ctx context.Context, id uint) (model.Reservation, error) {
	return e.store.Get(ctx, id)
}

func (e *Engine) roomType(name string) (catalog.RoomType, error) {
	rt, ok := e.catalog.Lookup(name)
	if !ok {
		return catalog.RoomType{}, fmt.Errorf("%w: %q", ErrUnknownRoomType, name)
	}
	return rt, nil
}

// bookedSet reads the rooms of rt held on any night of iv. Rooms outside the
// type's band are ignored.
func (e *Engine) bookedSet(ctx context.Context, rt catalog.RoomType, iv Interval) (map[int]struct{}, error) {
	rooms, err := e.store.BookedRoomNumbers(ctx, rt.Name, iv.CheckIn, iv.CheckOut)
	if err != nil {
		return nil, err
	}
	booked := make(map[int]struct{}, len(rooms))
	for _, room := range rooms {
		if rt.Contains(room) {
			booked[room] = struct{}{}
		}
	}
	return booked, nil
}

func (e *Engine) emit(t events.Type, r model.Reservation) {
	if e.notifier == nil {
		return
	}
	e.notifier.Dispatch(events.FromReservation(t, r, e.now()))
}

func firstFit(rt catalog.RoomType, booked map[int]struct{}) (int, bool) {
	for room := rt.StartID; room <= rt.EndID; room++ {
		if _, taken := booked[room]; !taken {
			return room, true
		}
	}
	return 0, false
}

func lockKey(roomType string) string {
	return "room-type:" + roomType
}

func validateGuest(name, phone string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: guest name is required", ErrInvalidInput)
	}
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("%w: phone number must be 8 to 15 digits with an optional leading +", ErrInvalidInput)
	}
	return nil
}
