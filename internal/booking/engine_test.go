package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-reservation-backend/internal/catalog"
	"hotel-reservation-backend/internal/events"
	"hotel-reservation-backend/internal/model"
	"hotel-reservation-backend/internal/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Dispatch(e events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []events.Type {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]events.Type, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

// noLock lets every caller through, leaving the store as the only guard.
type noLock struct{}

func (noLock) Lock(context.Context, string) (func(), error) { return func() {}, nil }

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Reservation{}, &model.PushSubscription{}))
	return store.NewGormStore(db)
}

func newTestEngine(t *testing.T) (*Engine, store.Store, *recordingNotifier) {
	t.Helper()
	s := newTestStore(t)
	n := &recordingNotifier{}
	e := NewEngine(s, catalog.Default(), nil, n)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return e, s, n
}

func guest(roomType string, stay Interval) BookRequest {
	return BookRequest{
		UserID:      1,
		GuestName:   "Jane Perera",
		PhoneNumber: "+94771234567",
		RoomType:    roomType,
		Interval:    stay,
	}
}

func TestEngine_EmptyPool(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	stay := iv(t, "2024-06-01", "2024-06-03")

	n, err := e.AvailableCount(ctx, "Standard", stay)
	require.NoError(t, err)
	assert.Equal(t, 51, n)

	room, ok, err := e.AssignRoom(ctx, "Standard", stay)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100, room)
}

func TestEngine_OneBooked(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	stay := iv(t, "2024-06-01", "2024-06-03")

	r, err := e.Book(ctx, guest("Standard", stay))
	require.NoError(t, err)
	assert.Equal(t, 100, r.RoomNumber)
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, 6000.0, r.TotalPrice)
	assert.NotZero(t, r.ID)

	n, err := e.AvailableCount(ctx, "Standard", stay)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	room, ok, err := e.AssignRoom(ctx, "Standard", stay)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 101, room)

	// Back-to-back stay reuses room 100.
	room, ok, err = e.AssignRoom(ctx, "Standard", iv(t, "2024-06-03", "2024-06-05"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100, room)
}

func TestEngine_PoolExhausted(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	stay := iv(t, "2024-06-01", "2024-06-03")

	for i := 0; i < 51; i++ {
		r, err := e.Book(ctx, guest("Standard", stay))
		require.NoError(t, err)
		assert.Equal(t, 100+i, r.RoomNumber)
	}

	_, ok, err := e.AssignRoom(ctx, "Standard", stay)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := e.AvailableCount(ctx, "Standard", stay)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = e.Book(ctx, guest("Standard", stay))
	assert.ErrorIs(t, err, ErrNoAvailability)

	// Other types are unaffected.
	n, err = e.AvailableCount(ctx, "Deluxe", stay)
	require.NoError(t, err)
	assert.Equal(t, 51, n)
}

func TestEngine_RejectsBadInput(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()
	stay := iv(t, "2024-06-01", "2024-06-03")
	sameDay := Interval{
		CheckIn:  time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	}

	_, err := e.AvailableCount(ctx, "Standard", sameDay)
	assert.ErrorIs(t, err, ErrInvalidInterval)
	_, _, err = e.AssignRoom(ctx, "Standard", sameDay)
	assert.ErrorIs(t, err, ErrInvalidInterval)
	_, err = e.Book(ctx, guest("Standard", sameDay))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	n, err := e.AvailableCount(ctx, "Penthouse", stay)
	assert.ErrorIs(t, err, ErrUnknownRoomType)
	assert.Equal(t, 0, n)
	_, err = e.ComputeTotal("Penthouse", stay)
	assert.ErrorIs(t, err, ErrUnknownRoomType)
	_, err = e.Book(ctx, guest("Penthouse", stay))
	assert.ErrorIs(t, err, ErrUnknownRoomType)

	noName := guest("Standard", stay)
	noName.GuestName = "  "
	_, err = e.Book(ctx, noName)
	assert.ErrorIs(t, err, ErrInvalidInput)

	badPhone := guest("Standard", stay)
	badPhone.PhoneNumber = "12-34"
	_, err = e.Book(ctx, badPhone)
	assert.ErrorIs(t, err, ErrInvalidInput)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected requests must not create reservations")
}

func TestEngine_Quote(t *testing.T) {
	e, _, _ := newTestEngine(t)

	q, err := e.Quote("Deluxe", iv(t, "2024-06-01", "2024-06-04"))
	require.NoError(t, err)
	assert.Equal(t, Quote{RoomType: "Deluxe", Nights: 3, Rate: 5000, Total: 15000}, q)

	total, err := e.ComputeTotal("Suite", iv(t, "2024-06-01", "2024-06-02"))
	require.NoError(t, err)
	assert.Equal(t, 7500.0, total)
}

func TestEngine_PricingIsReDerivable(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()

	for _, tc := range []struct{ roomType, in, out string }{
		{"Standard", "2024-06-01", "2024-06-02"},
		{"Deluxe", "2024-06-01", "2024-06-08"},
		{"Suite", "2024-12-30", "2025-01-02"},
	} {
		_, err := e.Book(ctx, guest(tc.roomType, iv(t, tc.in, tc.out)))
		require.NoError(t, err)
	}

	all, err := s.All(ctx)
	require.NoError(t, err)
	for _, r := range all {
		stay, err := NewInterval(r.CheckIn, r.CheckOut)
		require.NoError(t, err)
		total, err := e.ComputeTotal(r.RoomType, stay)
		require.NoError(t, err)
		assert.Equal(t, r.TotalPrice, total, "reservation %d", r.ID)
	}
}

// Cancelled and No-Show reservations free their room for counting and
// allocation. Historically the counting query ignored status while the
// single-room check excluded these two; both now apply the exclusion.
func TestEngine_CancelledAndNoShowFreeTheRoom(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	stay := iv(t, "2024-06-01", "2024-06-03")

	first, err := e.Book(ctx, guest("Suite", stay))
	require.NoError(t, err)
	second, err := e.Book(ctx, guest("Suite", stay))
	require.NoError(t, err)
	require.Equal(t, 301, second.RoomNumber)

	_, err = e.Cancel(ctx, first.ID)
	require.NoError(t, err)
	_, err = e.Transition(ctx, second.ID, model.StatusNoShow)
	require.NoError(t, err)

	n, err := e.AvailableCount(ctx, "Suite", stay)
	require.NoError(t, err)
	assert.Equal(t, 51, n)

	again, err := e.Book(ctx, guest("Suite", stay))
	require.NoError(t, err)
	assert.Equal(t, 300, again.RoomNumber)
}

func TestEngine_CapacityConservation(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()

	stays := []Interval{
		iv(t, "2024-06-01", "2024-06-03"),
		iv(t, "2024-06-02", "2024-06-06"),
		iv(t, "2024-06-05", "2024-06-07"),
		iv(t, "2024-06-10", "2024-06-11"),
	}
	for i := 0; i < 40; i++ {
		r, err := e.Book(ctx, guest("Deluxe", stays[i%len(stays)]))
		require.NoError(t, err)
		if i%7 == 0 {
			_, err = e.Cancel(ctx, r.ID)
			require.NoError(t, err)
		}
	}

	windows := append(stays, iv(t, "2024-05-01", "2024-07-01"), iv(t, "2024-06-03", "2024-06-05"))
	for _, window := range windows {
		n, err := e.AvailableCount(ctx, "Deluxe", window)
		require.NoError(t, err)
		booked, err := s.BookedRoomNumbers(ctx, "Deluxe", window.CheckIn, window.CheckOut)
		require.NoError(t, err)
		assert.Equal(t, 51, n+len(booked), "window %s", window)
	}
}

func TestEngine_DeterministicFirstFit(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	stay := iv(t, "2024-06-01", "2024-06-03")

	var ids []uint
	for i := 0; i < 5; i++ {
		r, err := e.Book(ctx, guest("Standard", stay))
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	_, err := e.Cancel(ctx, ids[1])
	require.NoError(t, err)
	_, err = e.Cancel(ctx, ids[3])
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		room, ok, err := e.AssignRoom(ctx, "Standard", stay)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 101, room)
	}
}

func TestEngine_ChangeDates(t *testing.T) {
	e, s, n := newTestEngine(t)
	ctx := context.Background()

	a, err := e.Book(ctx, guest("Standard", iv(t, "2024-06-01", "2024-06-03")))
	require.NoError(t, err)
	b, err := e.Book(ctx, guest("Standard", iv(t, "2024-06-05", "2024-06-07")))
	require.NoError(t, err)
	require.Equal(t, 100, b.RoomNumber)

	t.Run("keeps the room when still free", func(t *testing.T) {
		got, err := e.ChangeDates(ctx, a.ID, iv(t, "2024-06-02", "2024-06-05"))
		require.NoError(t, err)
		assert.Equal(t, 100, got.RoomNumber)
		assert.Equal(t, a.TotalPrice, got.TotalPrice)
	})

	t.Run("moves to the first free room on conflict", func(t *testing.T) {
		got, err := e.ChangeDates(ctx, a.ID, iv(t, "2024-06-04", "2024-06-06"))
		require.NoError(t, err)
		assert.Equal(t, 101, got.RoomNumber)
		assert.True(t, got.CheckIn.Equal(time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("unknown reservation", func(t *testing.T) {
		_, err := e.ChangeDates(ctx, 999, iv(t, "2024-06-04", "2024-06-06"))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("invalid interval", func(t *testing.T) {
		bad := Interval{CheckIn: b.CheckOut, CheckOut: b.CheckIn}
		_, err := e.ChangeDates(ctx, b.ID, bad)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	rooms, err := s.BookedRoomNumbers(ctx, "Standard", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []int{100, 101}, rooms)
	assert.Contains(t, n.types(), events.TypeDatesChanged)
}

func TestEngine_ChangeDatesNoRoomLeft(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	full := iv(t, "2024-06-10", "2024-06-12")

	for i := 0; i < 51; i++ {
		_, err := e.Book(ctx, guest("Suite", full))
		require.NoError(t, err)
	}
	early, err := e.Book(ctx, guest("Suite", iv(t, "2024-06-01", "2024-06-03")))
	require.NoError(t, err)

	_, err = e.ChangeDates(ctx, early.ID, iv(t, "2024-06-09", "2024-06-11"))
	assert.ErrorIs(t, err, ErrNoAvailability)

	got, err := e.Get(ctx, early.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckIn.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)), "failed change must leave dates untouched")
}

func TestEngine_Transition(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	r, err := e.Book(ctx, guest("Deluxe", iv(t, "2024-06-01", "2024-06-03")))
	require.NoError(t, err)

	_, err = e.Transition(ctx, r.ID, model.StatusCheckedIn)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, next := range []model.Status{model.StatusConfirmed, model.StatusCheckedIn, model.StatusCheckedOut} {
		got, err := e.Transition(ctx, r.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	_, err = e.Transition(ctx, r.ID, model.StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.Transition(ctx, r.ID, model.Status("Lost"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Soft cancel ignores the lifecycle guard.
	got, err := e.Cancel(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
}

func TestEngine_Update(t *testing.T) {
	e, _, n := newTestEngine(t)
	ctx := context.Background()
	stay := iv(t, "2024-06-01", "2024-06-03")

	a, err := e.Book(ctx, guest("Standard", stay))
	require.NoError(t, err)
	b, err := e.Book(ctx, guest("Standard", stay))
	require.NoError(t, err)

	edit := a
	edit.GuestName = "  John Silva "
	edit.Status = model.StatusConfirmed
	got, err := e.Update(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "John Silva", got.GuestName)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	clash := a
	clash.RoomNumber = b.RoomNumber
	_, err = e.Update(ctx, clash)
	assert.ErrorIs(t, err, store.ErrRoomConflict)

	wrongBand := a
	wrongBand.RoomNumber = 300
	_, err = e.Update(ctx, wrongBand)
	assert.ErrorIs(t, err, ErrInvalidInput)

	badStatus := a
	badStatus.Status = "Gone"
	_, err = e.Update(ctx, badStatus)
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := a
	missing.ID = 12345
	_, err = e.Update(ctx, missing)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, e.Delete(ctx, b.ID))
	assert.ErrorIs(t, e.Delete(ctx, b.ID), store.ErrNotFound)

	assert.Equal(t, []events.Type{
		events.TypeCreated, events.TypeCreated, events.TypeUpdated, events.TypeDeleted,
	}, n.types())
}

// Many callers race for the last free Standard room. Exactly one wins.
func TestEngine_ConcurrentLastRoom(t *testing.T) {
	run := func(t *testing.T, e *Engine) {
		ctx := context.Background()
		stay := iv(t, "2024-06-01", "2024-06-03")
		for i := 0; i < 50; i++ {
			_, err := e.Book(ctx, guest("Standard", stay))
			require.NoError(t, err)
		}

		const callers = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			winners   []model.Reservation
			rejection int
		)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				req := guest("Standard", stay)
				req.UserID = int64(100 + i)
				r, err := e.Book(ctx, req)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					winners = append(winners, r)
				case errors.Is(err, ErrNoAvailability), errors.Is(err, store.ErrRoomConflict):
					rejection++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		require.Len(t, winners, 1)
		assert.Equal(t, 150, winners[0].RoomNumber)
		assert.Equal(t, callers-1, rejection)

		n, err := e.AvailableCount(ctx, "Standard", stay)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}

	t.Run("room type lock", func(t *testing.T) {
		e, _, _ := newTestEngine(t)
		run(t, e)
	})

	t.Run("store re-validation only", func(t *testing.T) {
		e, _, _ := newTestEngine(t)
		e.locker = noLock{}
		run(t, e)
	})
}

// Concurrent bookings over mixed, overlapping stays never put two active
// reservations on the same room for the same night.
func TestEngine_NoDoubleBookingUnderLoad(t *testing.T) {
	for _, tc := range []struct {
		name    string
		useLock bool
	}{
		{"room type lock", true},
		{"store re-validation only", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e, s, _ := newTestEngine(t)
			if !tc.useLock {
				e.locker = noLock{}
			}
			ctx := context.Background()

			stays := []Interval{
				iv(t, "2024-07-01", "2024-07-04"),
				iv(t, "2024-07-03", "2024-07-05"),
				iv(t, "2024-07-04", "2024-07-08"),
				iv(t, "2024-06-30", "2024-07-02"),
			}

			var wg sync.WaitGroup
			for i := 0; i < 120; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := e.Book(ctx, guest("Suite", stays[i%len(stays)]))
					if err != nil && !errors.Is(err, ErrNoAvailability) && !errors.Is(err, store.ErrRoomConflict) {
						t.Errorf("booking %d: %v", i, err)
					}
				}(i)
			}
			wg.Wait()

			all, err := s.All(ctx)
			require.NoError(t, err)
			require.NotEmpty(t, all)

			byRoom := make(map[int][]Interval)
			for _, r := range all {
				if !r.Status.Blocks() {
					continue
				}
				stay, err := NewInterval(r.CheckIn, r.CheckOut)
				require.NoError(t, err)
				for _, other := range byRoom[r.RoomNumber] {
					assert.False(t, stay.Overlaps(other), "room %d double-booked: %s and %s", r.RoomNumber, stay, other)
				}
				byRoom[r.RoomNumber] = append(byRoom[r.RoomNumber], stay)
			}
		})
	}
}

func TestEngine_Events(t *testing.T) {
	e, _, n := newTestEngine(t)
	ctx := context.Background()

	r, err := e.Book(ctx, guest("Deluxe", iv(t, "2024-06-01", "2024-06-03")))
	require.NoError(t, err)
	_, err = e.Transition(ctx, r.ID, model.StatusConfirmed)
	require.NoError(t, err)
	_, err = e.Cancel(ctx, r.ID)
	require.NoError(t, err)

	require.Equal(t, []events.Type{events.TypeCreated, events.TypeStatusChanged, events.TypeCancelled}, n.types())
	created := n.events[0]
	assert.Equal(t, r.ID, created.ReservationID)
	assert.Equal(t, "Deluxe", created.RoomType)
	assert.Equal(t, 200, created.RoomNumber)
	assert.Equal(t, model.StatusConfirmed, n.events[1].Status)
}

// interleavingStore runs a competing write at a fixed point between the
// engine's reads and writes. Each hook fires once.
type interleavingStore struct {
	store.Store
	afterGet           func(id uint)
	afterDatesConflict func(id uint)
}

func (s *interleavingStore) Get(ctx context.Context, id uint) (model.Reservation, error) {
	r, err := s.Store.Get(ctx, id)
	if hook := s.afterGet; hook != nil {
		s.afterGet = nil
		hook(id)
	}
	return r, err
}

func (s *interleavingStore) UpdateDatesOnly(ctx context.Context, id uint, checkIn, checkOut time.Time) error {
	err := s.Store.UpdateDatesOnly(ctx, id, checkIn, checkOut)
	if hook := s.afterDatesConflict; hook != nil && errors.Is(err, store.ErrRoomConflict) {
		s.afterDatesConflict = nil
		hook(id)
	}
	return err
}

func newInterleavedEngine(t *testing.T) (*Engine, *interleavingStore) {
	t.Helper()
	s := &interleavingStore{Store: newTestStore(t)}
	e := NewEngine(s, catalog.Default(), nil, &recordingNotifier{})
	e.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return e, s
}

func TestEngine_ChangeDatesKeepsConcurrentCancel(t *testing.T) {
	e, s := newInterleavedEngine(t)
	ctx := context.Background()

	a, err := e.Book(ctx, guest("Standard", iv(t, "2024-06-01", "2024-06-03")))
	require.NoError(t, err)
	_, err = e.Book(ctx, guest("Standard", iv(t, "2024-06-05", "2024-06-07")))
	require.NoError(t, err)

	s.afterDatesConflict = func(id uint) {
		require.NoError(t, s.Store.SoftCancel(ctx, id))
	}

	got, err := e.ChangeDates(ctx, a.ID, iv(t, "2024-06-04", "2024-06-06"))
	require.NoError(t, err)
	assert.Equal(t, 101, got.RoomNumber)
	assert.Equal(t, model.StatusCancelled, got.Status)

	stored, err := s.Store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, stored.Status)
}

func TestEngine_TransitionAfterConcurrentCancel(t *testing.T) {
	testCases := []struct {
		name   string
		target model.Status
	}{
		{name: "confirm", target: model.StatusConfirmed},
		{name: "no-show", target: model.StatusNoShow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, s := newInterleavedEngine(t)
			ctx := context.Background()

			r, err := e.Book(ctx, guest("Deluxe", iv(t, "2024-06-01", "2024-06-03")))
			require.NoError(t, err)

			s.afterGet = func(id uint) {
				require.NoError(t, s.Store.SoftCancel(ctx, id))
			}

			_, err = e.Transition(ctx, r.ID, tc.target)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			stored, err := s.Store.Get(ctx, r.ID)
			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, stored.Status)
		})
	}
}

func TestEngine_LiteralIntervalsAreNormalized(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	sameDay := Interval{
		CheckIn:  time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC),
	}

	t.Run("same calendar day is rejected", func(t *testing.T) {
		_, err := e.Book(ctx, guest("Standard", sameDay))
		assert.ErrorIs(t, err, ErrInvalidInterval)

		_, err = e.AvailableCount(ctx, "Standard", sameDay)
		assert.ErrorIs(t, err, ErrInvalidInterval)

		_, _, err = e.AssignRoom(ctx, "Standard", sameDay)
		assert.ErrorIs(t, err, ErrInvalidInterval)

		_, err = e.Quote("Standard", sameDay)
		assert.ErrorIs(t, err, ErrInvalidInterval)

		_, err = e.Availability(ctx, sameDay)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("times of day are dropped", func(t *testing.T) {
		stay := Interval{
			CheckIn:  time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC),
		}
		r, err := e.Book(ctx, guest("Standard", stay))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), r.CheckIn)
		assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), r.CheckOut)
		assert.Equal(t, 6000.0, r.TotalPrice)

		q, err := e.Quote("Standard", stay)
		require.NoError(t, err)
		assert.Equal(t, 2, q.Nights)

		moved, err := e.ChangeDates(ctx, r.ID, Interval{
			CheckIn:  time.Date(2024, 6, 4, 23, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 6, 6, 1, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.True(t, moved.CheckIn.Equal(time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)))
		assert.True(t, moved.CheckOut.Equal(time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC)))
	})
}
