package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbook/resource-booking/internal/model"
)

const minDuration = 15 * time.Minute

// newTestEngine pins the clock to base time 09:00 so window validation and
// completion checks are deterministic.  The returned clock pointer can be
// advanced by tests.
func newTestEngine(store *memStore, n Notifier) (*Engine, *time.Time) {
	now := base.Add(9 * time.Hour)
	clock := &now
	e := NewEngine(store, n, minDuration).WithClock(func() time.Time { return *clock })
	return e, clock
}

var actor = Actor{UserID: 42}

func TestCreateInitialStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, true)  // requires approval
	store.addResource(2, false) // auto-approve
	e, _ := newTestEngine(store, nil)

	b, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.NotZero(t, b.ID)

	b2, err := e.Create(ctx, actor, 2, 7, at(10), at(12))
	require.NoError(t, err)
	assert.Equal(t, model.BookingApproved, b2.Status)
}

func TestCreateValidationErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, false)
	e, _ := newTestEngine(store, nil)

	testCases := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{name: "disordered", start: at(12), end: at(10), wantErr: ErrInvalidOrder},
		{name: "too short", start: at(10), end: at(10).Add(5 * time.Minute), wantErr: ErrTooShort},
		{name: "in the past", start: at(8), end: at(10), wantErr: ErrInThePast},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Create(ctx, actor, 1, 7, tc.start, tc.end)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// Nothing may have been written.
	blocking, err := store.ListBlocking(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, blocking)
}

// Scenario: a second overlapping request on the same resource fails with
// the conflicting booking's identity; an adjacent one succeeds.
func TestCreateConflictAndAdjacency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, true)
	e, _ := newTestEngine(store, nil)

	first, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)
	require.Equal(t, model.BookingPending, first.Status)

	// Overlap 11:00–12:00.
	_, err = e.Create(ctx, actor, 1, 8, at(11), at(13))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.BookingID)
	assert.Equal(t, at(10), conflict.StartsAt)
	assert.Equal(t, at(12), conflict.EndsAt)

	// Back-to-back with the first booking: allowed.
	adjacent, err := e.Create(ctx, actor, 1, 8, at(12), at(13))
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, adjacent.Status)
}

// Overlapping windows on different resources never interact.
func TestCreateAcrossResources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, false)
	store.addResource(2, false)
	e, _ := newTestEngine(store, nil)

	_, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)
	b, err := e.Create(ctx, actor, 2, 8, at(10), at(12))
	require.NoError(t, err)
	assert.Equal(t, model.BookingApproved, b.Status)
}

func TestApproveRecheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, true)
	e, _ := newTestEngine(store, nil)

	first, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)
	second, err := e.Create(ctx, actor, 1, 8, at(12), at(14))
	require.NoError(t, err)

	// Non-overlapping pending sibling: approval passes the re-check.
	approved, err := e.Approve(ctx, actor, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingApproved, approved.Status)

	// Approving the adjacent booking is still fine.
	_, err = e.Approve(ctx, actor, second.ID)
	require.NoError(t, err)
}

// The race the re-check closes: two overlapping PENDING bookings exist
// (both created before either was decided); once one is approved, the
// other's approval must fail and leave it PENDING.
func TestApproveConflictLeavesPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, true)
	e, _ := newTestEngine(store, nil)

	first, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)

	// Second overlapping request sneaks in as PENDING directly; creation
	// through the engine would have been rejected.
	second := model.Booking{ResourceID: 1, UserID: 8, StartsAt: at(11), EndsAt: at(13), Status: model.BookingPending}
	require.NoError(t, store.CreateBooking(ctx, &second))

	_, err = e.Approve(ctx, actor, first.ID)
	require.NoError(t, err)

	_, err = e.Approve(ctx, actor, second.ID)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.BookingID)

	got, err := store.GetBooking(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, got.Status)
}

// Scenario D: the overlapping candidate is rejected first, then approval of
// the remaining booking succeeds.
func TestApproveAfterCompetitorRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, true)
	e, _ := newTestEngine(store, nil)

	first, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)
	second := model.Booking{ResourceID: 1, UserID: 8, StartsAt: at(11), EndsAt: at(13), Status: model.BookingPending}
	require.NoError(t, store.CreateBooking(ctx, &second))

	_, err = e.Reject(ctx, actor, second.ID)
	require.NoError(t, err)

	approved, err := e.Approve(ctx, actor, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingApproved, approved.Status)
}

func TestCompleteRequiresElapsedEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, false)
	e, clock := newTestEngine(store, nil)

	b, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)
	require.Equal(t, model.BookingApproved, b.Status)

	_, err = e.Complete(ctx, actor, b.ID)
	assert.ErrorIs(t, err, ErrTooEarly)

	*clock = at(12) // exactly the end instant is enough
	done, err := e.Complete(ctx, actor, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, done.Status)
}

func TestTerminalStatesAreClosed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for _, terminal := range []model.BookingStatus{model.BookingRejected, model.BookingCancelled, model.BookingCompleted} {
		t.Run(string(terminal), func(t *testing.T) {
			store := newMemStore()
			store.addResource(1, true)
			e, _ := newTestEngine(store, nil)

			b := model.Booking{ResourceID: 1, UserID: 7, StartsAt: at(10), EndsAt: at(12), Status: terminal}
			require.NoError(t, store.CreateBooking(ctx, &b))

			ops := map[string]func() (model.Booking, error){
				"approve":  func() (model.Booking, error) { return e.Approve(ctx, actor, b.ID) },
				"reject":   func() (model.Booking, error) { return e.Reject(ctx, actor, b.ID) },
				"cancel":   func() (model.Booking, error) { return e.Cancel(ctx, actor, b.ID) },
				"complete": func() (model.Booking, error) { return e.Complete(ctx, actor, b.ID) },
			}
			for name, op := range ops {
				_, err := op()
				var invalid *InvalidTransitionError
				require.ErrorAsf(t, err, &invalid, "%s out of %s", name, terminal)
				assert.Equal(t, terminal, invalid.From)
			}

			got, err := store.GetBooking(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, terminal, got.Status)
		})
	}
}

// Rejecting twice is an error, not a silent no-op.
func TestRejectTwiceFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, true)
	e, _ := newTestEngine(store, nil)

	b, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)

	_, err = e.Reject(ctx, actor, b.ID)
	require.NoError(t, err)

	_, err = e.Reject(ctx, actor, b.ID)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.BookingRejected, invalid.From)
}

func TestCancelFromPendingAndApproved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, true)
	store.addResource(2, false)
	e, _ := newTestEngine(store, nil)

	pending, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)
	cancelled, err := e.Cancel(ctx, actor, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)

	approved, err := e.Create(ctx, actor, 2, 7, at(10), at(12))
	require.NoError(t, err)
	cancelled, err = e.Cancel(ctx, actor, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)
}

// A cancelled booking frees its slot for new requests.
func TestCancelledSlotReusable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, false)
	e, _ := newTestEngine(store, nil)

	b, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)
	_, err = e.Cancel(ctx, actor, b.ID)
	require.NoError(t, err)

	again, err := e.Create(ctx, actor, 1, 8, at(10), at(12))
	require.NoError(t, err)
	assert.Equal(t, model.BookingApproved, again.Status)
}

func TestOperationsOnMissingBooking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	e, _ := newTestEngine(store, nil)

	for name, op := range map[string]func() (model.Booking, error){
		"approve":  func() (model.Booking, error) { return e.Approve(ctx, actor, 99) },
		"reject":   func() (model.Booking, error) { return e.Reject(ctx, actor, 99) },
		"cancel":   func() (model.Booking, error) { return e.Cancel(ctx, actor, 99) },
		"complete": func() (model.Booking, error) { return e.Complete(ctx, actor, 99) },
	} {
		_, err := op()
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
}

func TestStatusChangeEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.addResource(1, true)
	n := &recordNotifier{}
	e, _ := newTestEngine(store, n)

	b, err := e.Create(ctx, actor, 1, 7, at(10), at(12))
	require.NoError(t, err)
	_, err = e.Approve(ctx, Actor{UserID: 9, Admin: true}, b.ID)
	require.NoError(t, err)

	require.Len(t, n.events, 2)

	created := n.events[0]
	assert.Equal(t, b.ID, created.BookingID)
	assert.Equal(t, model.BookingStatus(""), created.From)
	assert.Equal(t, model.BookingPending, created.To)
	assert.Equal(t, uint64(42), created.ActorID)

	approved := n.events[1]
	assert.Equal(t, model.BookingPending, approved.From)
	assert.Equal(t, model.BookingApproved, approved.To)
	assert.Equal(t, uint64(9), approved.ActorID)
	assert.Equal(t, uint64(7), approved.UserID)

	// Failed transitions emit nothing.
	_, err = e.Reject(ctx, actor, b.ID)
	require.Error(t, err)
	assert.Len(t, n.events, 2)
}
