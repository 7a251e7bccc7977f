package booking

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbook/resource-booking/internal/model"
)

var base = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

func at(hours int) time.Time { return base.Add(time.Duration(hours) * time.Hour) }

func TestOverlaps(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name                   string
		s1, e1, s2, e2         int
		want                   bool
	}{
		{name: "partial overlap", s1: 10, e1: 12, s2: 11, e2: 13, want: true},
		{name: "contained", s1: 10, e1: 14, s2: 11, e2: 12, want: true},
		{name: "identical", s1: 10, e1: 12, s2: 10, e2: 12, want: true},
		{name: "adjacent after", s1: 10, e1: 12, s2: 12, e2: 14, want: false},
		{name: "adjacent before", s1: 12, e1: 14, s2: 10, e2: 12, want: false},
		{name: "disjoint", s1: 10, e1: 11, s2: 13, e2: 14, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(at(tc.s1), at(tc.e1), at(tc.s2), at(tc.e2))
			assert.Equal(t, tc.want, got)
		})
	}
}

// Random interval pairs must match the half-open overlap formula exactly.
func TestOverlapsMatchesFormula(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		s1 := rng.Intn(48)
		e1 := s1 + 1 + rng.Intn(12)
		s2 := rng.Intn(48)
		e2 := s2 + 1 + rng.Intn(12)

		want := s1 < e2 && e1 > s2
		got := Overlaps(at(s1), at(e1), at(s2), at(e2))
		require.Equalf(t, want, got, "[%d,%d) vs [%d,%d)", s1, e1, s2, e2)
	}
}

func TestFindConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	seed := func(statuses ...model.BookingStatus) *memStore {
		store := newMemStore()
		store.addResource(1, true)
		for _, st := range statuses {
			b := model.Booking{ResourceID: 1, UserID: 7, StartsAt: at(10), EndsAt: at(12), Status: st}
			require.NoError(t, store.CreateBooking(ctx, &b))
		}
		return store
	}

	t.Run("blocking booking conflicts", func(t *testing.T) {
		store := seed(model.BookingPending)
		got, err := FindConflict(ctx, store, 1, at(11), at(13), 0)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, uint64(1), got.ID)
	})

	t.Run("adjacent window does not conflict", func(t *testing.T) {
		store := seed(model.BookingApproved)
		got, err := FindConflict(ctx, store, 1, at(12), at(14), 0)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("terminal statuses never block", func(t *testing.T) {
		store := seed(model.BookingRejected, model.BookingCancelled, model.BookingCompleted)
		got, err := FindConflict(ctx, store, 1, at(10), at(12), 0)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("other resources are out of scope", func(t *testing.T) {
		store := seed(model.BookingApproved)
		got, err := FindConflict(ctx, store, 2, at(10), at(12), 0)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("self exclusion", func(t *testing.T) {
		store := seed(model.BookingPending)
		// Re-checking booking 1's own window with itself excluded must
		// not report a conflict even though it is in the blocking set.
		got, err := FindConflict(ctx, store, 1, at(10), at(12), 1)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
