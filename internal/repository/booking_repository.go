package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campusbook/resource-booking/internal/booking"
	"github.com/campusbook/resource-booking/internal/model"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx; the
// booking repository runs against either depending on whether it is
// inside an Atomically scope.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BookingRepo persists bookings and implements booking.Store.  Atomicity
// per resource is provided by a transaction that takes a FOR UPDATE row
// lock on the resource, so the engine's conflict re-check always sees
// every previously committed transition for that resource.
type BookingRepo struct {
	db *sql.DB
	q  dbtx
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db, q: db} }

const bookingColumns = "id, resource_id, user_id, starts_at, ends_at, status, created_at, updated_at"

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.ResourceID, &b.UserID, &b.StartsAt, &b.EndsAt,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// GetBooking loads a booking by id, mapping a missing row to
// booking.ErrNotFound per the Store contract.
func (r *BookingRepo) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ? LIMIT 1", id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, booking.ErrNotFound
	}
	return b, err
}

// ListBlocking returns the resource's PENDING and APPROVED bookings,
// the candidate set for conflict detection.
func (r *BookingRepo) ListBlocking(ctx context.Context, resourceID uint64) ([]model.Booking, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE resource_id = ? AND status IN (?, ?)",
		resourceID, model.BookingPending, model.BookingApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// CreateBooking inserts a booking and queries the row back to populate
// generated ID and timestamps.
func (r *BookingRepo) CreateBooking(ctx context.Context, b *model.Booking) error {
	result, err := r.q.ExecContext(ctx,
		"INSERT INTO bookings (resource_id, user_id, starts_at, ends_at, status) VALUES (?, ?, ?, ?, ?)",
		b.ResourceID, b.UserID, b.StartsAt, b.EndsAt, b.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetBooking(ctx, uint64(id))
	if err != nil {
		return err
	}
	*b = stored
	return nil
}

// UpdateBookingStatus sets the booking's status; updated_at is bumped by
// the column's ON UPDATE clause.
func (r *BookingRepo) UpdateBookingStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	result, err := r.q.ExecContext(ctx,
		"UPDATE bookings SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetBooking(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ResourceRequiresApproval reports the resource's approval flag.
func (r *BookingRepo) ResourceRequiresApproval(ctx context.Context, resourceID uint64) (bool, error) {
	var requires bool
	err := r.q.QueryRowContext(ctx,
		"SELECT requires_approval FROM resources WHERE id = ? LIMIT 1",
		resourceID).Scan(&requires)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrResourceNotFound
	}
	return requires, err
}

// Atomically runs fn inside a transaction holding a FOR UPDATE lock on
// the resource row.  Concurrent calls for the same resource serialize on
// that lock; fn's writes commit only when fn returns nil.  Nested calls
// reuse the ambient transaction.
func (r *BookingRepo) Atomically(ctx context.Context, resourceID uint64, fn func(booking.Store) error) error {
	if _, inTx := r.q.(*sql.Tx); inTx {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM resources WHERE id = ? FOR UPDATE", resourceID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrResourceNotFound
	}
	if err != nil {
		return err
	}

	if err := fn(&BookingRepo{db: r.db, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByUser returns all of a user's bookings, newest window first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id = ? ORDER BY starts_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListForResource returns the resource's blocking bookings ordered by
// start time, used to render availability to browsers.
func (r *BookingRepo) ListForResource(ctx context.Context, resourceID uint64) ([]model.Booking, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE resource_id = ? AND status IN (?, ?) ORDER BY starts_at ASC",
		resourceID, model.BookingPending, model.BookingApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListOverlapping returns bookings overlapping [start, end) whose status
// is PENDING, APPROVED or COMPLETED, excluding excludeID.  This is a
// display query for the booking detail page; the conflict gate itself
// uses only the blocking set.
func (r *BookingRepo) ListOverlapping(ctx context.Context, resourceID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+bookingColumns+` FROM bookings
		WHERE resource_id = ? AND id <> ? AND status IN (?, ?, ?)
		AND starts_at < ? AND ends_at > ?
		ORDER BY starts_at ASC`,
		resourceID, excludeID,
		model.BookingPending, model.BookingApproved, model.BookingCompleted,
		end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListPending returns PENDING bookings oldest first for the admin
// approval queue.
func (r *BookingRepo) ListPending(ctx context.Context, limit int) ([]model.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE status = ? ORDER BY created_at ASC LIMIT ?",
		model.BookingPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// CompleteElapsed marks APPROVED bookings whose end time has passed as
// COMPLETED and returns how many rows changed.  The background sweep
// calls this once a minute.
func (r *BookingRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		"UPDATE bookings SET status = ? WHERE status = ? AND ends_at <= ?",
		model.BookingCompleted, model.BookingApproved, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// HasCompletedBooking reports whether the user has at least one
// COMPLETED booking for the resource; it gates review eligibility.
func (r *BookingRepo) HasCompletedBooking(ctx context.Context, userID, resourceID uint64) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx,
		"SELECT 1 FROM bookings WHERE user_id = ? AND resource_id = ? AND status = ? LIMIT 1",
		userID, resourceID, model.BookingCompleted).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
