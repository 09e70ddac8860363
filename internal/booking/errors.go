package booking

import "errors"

var (
	// ErrInvalidInterval is returned when check-in is not strictly before check-out.
	ErrInvalidInterval = errors.New("booking: check-in must be before check-out")
	// ErrUnknownRoomType is returned for room types missing from the catalog.
	ErrUnknownRoomType = errors.New("booking: unknown room type")
	// ErrNoAvailability means every room of the type is taken for the interval.
	ErrNoAvailability = errors.New("booking: no room available")
	// ErrInvalidTransition is returned when the lifecycle forbids a status change.
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	// ErrInvalidInput wraps field-level validation failures.
	ErrInvalidInput = errors.New("booking: invalid input")
)
