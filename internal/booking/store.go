package booking

import (
	"context"
	"time"

	"github.com/campusbook/resource-booking/internal/model"
)

// Store is the persistence surface the engine operates on.  The SQL
// implementation lives in internal/repository; tests use an in-memory
// fake.
//
// Implementations must serialize Atomically calls that target the same
// resource: within fn, reads reflect every previously committed write for
// that resource, and fn's writes commit only if fn returns nil.  Without
// that guarantee two concurrent approvals of overlapping pending bookings
// could both pass their conflict checks and both commit.
type Store interface {
	// GetBooking loads a booking by id, returning ErrNotFound when no
	// such row exists.
	GetBooking(ctx context.Context, id uint64) (model.Booking, error)

	// ListBlocking returns the resource's bookings whose status counts
	// toward conflict detection (PENDING and APPROVED).
	ListBlocking(ctx context.Context, resourceID uint64) ([]model.Booking, error)

	// CreateBooking persists a new booking and fills in its generated
	// ID and timestamps.
	CreateBooking(ctx context.Context, b *model.Booking) error

	// UpdateBookingStatus sets the booking's status and bumps its
	// updated_at timestamp.
	UpdateBookingStatus(ctx context.Context, id uint64, status model.BookingStatus) error

	// ResourceRequiresApproval reports the resource's approval flag,
	// which decides the initial status of a new booking.
	ResourceRequiresApproval(ctx context.Context, resourceID uint64) (bool, error)

	// Atomically runs fn as one atomic unit scoped to the resource.
	Atomically(ctx context.Context, resourceID uint64, fn func(Store) error) error
}

// Actor identifies who triggered an engine operation.  The engine does not
// authorize actors (the calling layer has already done that), it only
// records them in emitted events.
type Actor struct {
	UserID uint64
	Admin  bool
}

// StatusChange describes one committed booking transition.  From is empty
// for creations.
type StatusChange struct {
	BookingID  uint64              `json:"booking_id"`
	ResourceID uint64              `json:"resource_id"`
	UserID     uint64              `json:"user_id"`
	ActorID    uint64              `json:"actor_id"`
	From       model.BookingStatus `json:"from,omitempty"`
	To         model.BookingStatus `json:"to"`
	StartsAt   time.Time           `json:"starts_at"`
	EndsAt     time.Time           `json:"ends_at"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Notifier receives status-change events after each successful transition.
// Implementations are fire-and-forget: they must not fail the operation
// that emitted the event.
type Notifier interface {
	BookingStatusChanged(ctx context.Context, ev StatusChange)
}
