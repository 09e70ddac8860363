package model

import "fmt"

// Status is a reservation's position in its lifecycle.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusConfirmed  Status = "Confirmed"
	StatusCheckedIn  Status = "Checked-In"
	StatusCheckedOut Status = "Checked-Out"
	StatusCancelled  Status = "Cancelled"
	StatusNoShow     Status = "No-Show"
)

var validTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCheckedOut: {},
	StatusCancelled:  {},
	StatusNoShow:     {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle allows moving from s to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible from s.
// Unknown statuses are treated as terminal.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Blocks reports whether a reservation in this status occupies its room.
// Cancelled and No-Show reservations never hold a room.
func (s Status) Blocks() bool {
	return s != StatusCancelled && s != StatusNoShow
}

func (s Status) String() string {
	return string(s)
}

// NonBlockingStatuses lists the statuses ignored when computing booked rooms.
func NonBlockingStatuses() []Status {
	return []Status{StatusCancelled, StatusNoShow}
}

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid reservation status: %q", s)
	}
	return status, nil
}
