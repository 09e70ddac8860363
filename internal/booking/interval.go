package booking

import (
	"fmt"
	"time"
)

// Interval is a half-open stay [CheckIn, CheckOut) of UTC calendar dates.
// A night is occupied for every date in the interval.
type Interval struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewInterval truncates both ends to their calendar dates and rejects
// empty or inverted stays.
func NewInterval(checkIn, checkOut time.Time) (Interval, error) {
	iv := Interval{CheckIn: dateOf(checkIn), CheckOut: dateOf(checkOut)}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// ParseInterval parses two YYYY-MM-DD dates.
func ParseInterval(checkIn, checkOut string) (Interval, error) {
	in, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: check_in %q is not a YYYY-MM-DD date", ErrInvalidInput, checkIn)
	}
	out, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: check_out %q is not a YYYY-MM-DD date", ErrInvalidInput, checkOut)
	}
	return NewInterval(in, out)
}

// Validate reports ErrInvalidInterval unless CheckIn is strictly before CheckOut.
func (iv Interval) Validate() error {
	if !iv.CheckIn.Before(iv.CheckOut) {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, iv)
	}
	return nil
}

// normalize re-derives the calendar dates, so intervals built as literals get
// the same treatment as NewInterval.
func (iv Interval) normalize() (Interval, error) {
	return NewInterval(iv.CheckIn, iv.CheckOut)
}

// Overlaps reports whether the two stays share at least one night.
// A checkout on the day of another's check-in is not an overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(iv.CheckOut)
}

// Nights returns the number of whole days in the stay, never less than one.
func (iv Interval) Nights() int {
	n := int(iv.CheckOut.Sub(iv.CheckIn).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.CheckIn.Format(time.DateOnly), iv.CheckOut.Format(time.DateOnly))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
