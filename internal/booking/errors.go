// Package booking implements the reservation core: time-window validation,
// conflict detection over half-open intervals, and the booking status state
// machine with its approval re-check.  The package is pure domain logic
// driven through an injected Store; it owns no database handles, no
// globals and no goroutines.
package booking

import (
	"fmt"
	"time"

	"github.com/campusbook/resource-booking/internal/model"
)

// Sentinel errors returned by the validator and the engine.  Handlers map
// these to HTTP statuses; none of them is fatal to the process.
var (
	ErrInvalidOrder = fmt.Errorf("end must be after start")
	ErrTooShort     = fmt.Errorf("window is shorter than the minimum duration")
	ErrInThePast    = fmt.Errorf("start must be in the future")
	ErrNotFound     = fmt.Errorf("booking not found")
	ErrTooEarly     = fmt.Errorf("booking has not ended yet")
)

// ConflictError reports an overlap with an existing blocking booking.  It
// carries the conflicting booking's identity and window so callers can
// show the user which slot is taken.
type ConflictError struct {
	BookingID uint64
	StartsAt  time.Time
	EndsAt    time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("window overlaps booking %d (%s – %s)",
		e.BookingID, e.StartsAt.Format(time.RFC3339), e.EndsAt.Format(time.RFC3339))
}

// InvalidTransitionError reports an attempt to move a booking along an
// edge the transition table does not allow.  The booking is left
// unchanged.
type InvalidTransitionError struct {
	From model.BookingStatus
	To   model.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}
