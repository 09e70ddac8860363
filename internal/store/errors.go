package store

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrRoomConflict is returned when a write would leave two active
	// reservations on the same room with overlapping nights.
	ErrRoomConflict = errors.New("store: room already booked for overlapping dates")
	// ErrStatusChanged is returned when a status update finds the reservation
	// in a different status than the caller expected.
	ErrStatusChanged = errors.New("store: reservation status changed concurrently")
)
