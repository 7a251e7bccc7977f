package booking

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/campusbook/resource-booking/internal/model"
)

// memStore is an in-memory Store for tests.  Atomically serializes on a
// single mutex and rolls the booking map back when fn fails, which gives
// the same observable behavior as the SQL store's transaction; the plain
// accessors are unsynchronized and only used from the test goroutine.
type memStore struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]model.Booking
	approval map[uint64]bool // resource id -> requires approval
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[uint64]model.Booking),
		approval: make(map[uint64]bool),
	}
}

func (m *memStore) addResource(id uint64, requiresApproval bool) {
	m.approval[id] = requiresApproval
}

func (m *memStore) GetBooking(_ context.Context, id uint64) (model.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return b, nil
}

func (m *memStore) ListBlocking(_ context.Context, resourceID uint64) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range m.bookings {
		if b.ResourceID == resourceID && b.Status.Blocking() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) CreateBooking(_ context.Context, b *model.Booking) error {
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) UpdateBookingStatus(_ context.Context, id uint64, status model.BookingStatus) error {
	b, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	m.bookings[id] = b
	return nil
}

func (m *memStore) ResourceRequiresApproval(_ context.Context, resourceID uint64) (bool, error) {
	return m.approval[resourceID], nil
}

func (m *memStore) Atomically(_ context.Context, _ uint64, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := maps.Clone(m.bookings)
	nextID := m.nextID
	if err := fn(m); err != nil {
		m.bookings = snapshot
		m.nextID = nextID
		return err
	}
	return nil
}

// recordNotifier captures emitted status-change events.
type recordNotifier struct {
	events []StatusChange
}

func (n *recordNotifier) BookingStatusChanged(_ context.Context, ev StatusChange) {
	n.events = append(n.events, ev)
}
