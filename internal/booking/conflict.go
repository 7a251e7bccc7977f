package booking

import (
	"context"
	"time"

	"github.com/campusbook/resource-booking/internal/model"
)

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// share any instant.  Equal boundary points do not overlap, so bookings
// scheduled back to back never conflict.  Both windows must already be
// ordered (start before end); the detector does not re-validate that.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// FindConflict returns the first blocking booking of the resource whose
// window overlaps [start, end), or nil when the window is free.  A booking
// with ID equal to excludeID is skipped, which is required when re-checking
// an existing booking's own window: it must not conflict with itself.
// Pass excludeID 0 to exclude nothing.
//
// The result is only valid at the instant it is computed; callers that
// intend to write based on it must run inside Store.Atomically for the
// same resource.
func FindConflict(ctx context.Context, s Store, resourceID uint64, start, end time.Time, excludeID uint64) (*model.Booking, error) {
	blocking, err := s.ListBlocking(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	for i := range blocking {
		b := &blocking[i]
		if b.ID == excludeID {
			continue
		}
		if Overlaps(start, end, b.StartsAt, b.EndsAt) {
			return b, nil
		}
	}
	return nil, nil
}
