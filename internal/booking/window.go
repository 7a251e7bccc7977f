package booking

import "time"

// ValidateWindow checks a proposed booking window against the current
// time and the configured minimum duration.  It returns ErrInvalidOrder
// when end is not after start, ErrTooShort when the window is below the
// minimum, and ErrInThePast when start is not strictly after now.  Pure
// validation; no side effects.
func ValidateWindow(now, start, end time.Time, minDuration time.Duration) error {
	if !end.After(start) {
		return ErrInvalidOrder
	}
	if end.Sub(start) < minDuration {
		return ErrTooShort
	}
	// start == now fails too: by the time the row is written "now" has
	// already passed.
	if !start.After(now) {
		return ErrInThePast
	}
	return nil
}
