package booking

import (
	"context"
	"time"

	"github.com/campusbook/resource-booking/internal/model"
)

// Engine drives the booking lifecycle.  Every operation is a single
// read-check-write unit executed inside Store.Atomically, so the conflict
// re-check and the status write cannot be split by a concurrent writer on
// the same resource.
type Engine struct {
	store       Store
	notifier    Notifier // optional; nil disables events
	minDuration time.Duration
	now         func() time.Time
}

// NewEngine constructs an Engine over the given store.  The notifier may
// be nil.  minDuration is the shortest window a booking may request.
func NewEngine(store Store, notifier Notifier, minDuration time.Duration) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{
		store:       store,
		notifier:    notifier,
		minDuration: minDuration,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the engine's time source and returns the engine.
// Tests use it to pin "now".
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Create requests a new booking for [start, end) on the resource.  The
// window is validated, checked for conflicts against all blocking
// bookings, and persisted with an initial status derived from the
// resource's approval flag: PENDING when approval is required, APPROVED
// otherwise.
func (e *Engine) Create(ctx context.Context, actor Actor, resourceID, userID uint64, start, end time.Time) (model.Booking, error) {
	if err := ValidateWindow(e.now(), start, end, e.minDuration); err != nil {
		return model.Booking{}, err
	}

	var b model.Booking
	err := e.store.Atomically(ctx, resourceID, func(s Store) error {
		conflict, err := FindConflict(ctx, s, resourceID, start, end, 0)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ConflictError{BookingID: conflict.ID, StartsAt: conflict.StartsAt, EndsAt: conflict.EndsAt}
		}

		requiresApproval, err := s.ResourceRequiresApproval(ctx, resourceID)
		if err != nil {
			return err
		}
		status := model.BookingApproved
		if requiresApproval {
			status = model.BookingPending
		}

		b = model.Booking{
			ResourceID: resourceID,
			UserID:     userID,
			StartsAt:   start,
			EndsAt:     end,
			Status:     status,
		}
		return s.CreateBooking(ctx, &b)
	})
	if err != nil {
		return model.Booking{}, err
	}

	e.emit(ctx, actor, b, "", b.Status)
	return b, nil
}

// Approve moves a PENDING booking to APPROVED.  The conflict check is
// re-run, excluding the booking itself, immediately before the write:
// other bookings may have been approved between this booking's creation
// and the decision, and stale approvals must not double-book the
// resource.  On conflict the booking stays PENDING.
func (e *Engine) Approve(ctx context.Context, actor Actor, bookingID uint64) (model.Booking, error) {
	return e.transition(ctx, actor, bookingID, model.BookingApproved, func(s Store, b model.Booking) error {
		conflict, err := FindConflict(ctx, s, b.ResourceID, b.StartsAt, b.EndsAt, b.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ConflictError{BookingID: conflict.ID, StartsAt: conflict.StartsAt, EndsAt: conflict.EndsAt}
		}
		return nil
	})
}

// Reject moves a PENDING booking to REJECTED.  Removing a blocking
// booking can never create a conflict, so no re-check runs.
func (e *Engine) Reject(ctx context.Context, actor Actor, bookingID uint64) (model.Booking, error) {
	return e.transition(ctx, actor, bookingID, model.BookingRejected, nil)
}

// Cancel moves a PENDING or APPROVED booking to CANCELLED.
func (e *Engine) Cancel(ctx context.Context, actor Actor, bookingID uint64) (model.Booking, error) {
	return e.transition(ctx, actor, bookingID, model.BookingCancelled, nil)
}

// Complete moves an APPROVED booking to COMPLETED once its end time has
// passed.  Completing earlier fails with ErrTooEarly.
func (e *Engine) Complete(ctx context.Context, actor Actor, bookingID uint64) (model.Booking, error) {
	return e.transition(ctx, actor, bookingID, model.BookingCompleted, func(s Store, b model.Booking) error {
		if e.now().Before(b.EndsAt) {
			return ErrTooEarly
		}
		return nil
	})
}

// transition implements the shared load → validate-transition →
// precondition → write sequence.  The booking is loaded once outside the
// atomic section to learn its resource, then reloaded under the resource
// scope so the status and window checked are the committed ones.
func (e *Engine) transition(ctx context.Context, actor Actor, bookingID uint64, to model.BookingStatus, precondition func(Store, model.Booking) error) (model.Booking, error) {
	loaded, err := e.store.GetBooking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}

	var updated model.Booking
	var from model.BookingStatus
	err = e.store.Atomically(ctx, loaded.ResourceID, func(s Store) error {
		b, err := s.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		from = b.Status
		if !b.Status.CanTransition(to) {
			return &InvalidTransitionError{From: b.Status, To: to}
		}
		if precondition != nil {
			if err := precondition(s, b); err != nil {
				return err
			}
		}
		if err := s.UpdateBookingStatus(ctx, b.ID, to); err != nil {
			return err
		}
		updated = b
		updated.Status = to
		updated.UpdatedAt = e.now()
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}

	e.emit(ctx, actor, updated, from, to)
	return updated, nil
}

func (e *Engine) emit(ctx context.Context, actor Actor, b model.Booking, from, to model.BookingStatus) {
	if e.notifier == nil {
		return
	}
	e.notifier.BookingStatusChanged(ctx, StatusChange{
		BookingID:  b.ID,
		ResourceID: b.ResourceID,
		UserID:     b.UserID,
		ActorID:    actor.UserID,
		From:       from,
		To:         to,
		StartsAt:   b.StartsAt,
		EndsAt:     b.EndsAt,
		OccurredAt: e.now(),
	})
}
