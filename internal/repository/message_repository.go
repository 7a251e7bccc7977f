package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusbook/resource-booking/internal/model"
)

// MessageRepo persists booking thread messages.
type MessageRepo struct {
	DB *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

const messageColumns = "id, booking_id, sender_id, recipient_id, body, is_reported, is_hidden, created_at"

func scanMessage(row interface{ Scan(...any) error }) (model.Message, error) {
	var (
		m         model.Message
		recipient sql.NullInt64
	)
	err := row.Scan(&m.ID, &m.BookingID, &m.SenderID, &recipient, &m.Body,
		&m.IsReported, &m.IsHidden, &m.CreatedAt)
	if err != nil {
		return model.Message{}, err
	}
	if recipient.Valid {
		id := uint64(recipient.Int64)
		m.RecipientID = &id
	}
	return m, nil
}

// Create inserts a message and fills in the generated id and timestamp.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	var recipient any
	if m.RecipientID != nil {
		recipient = *m.RecipientID
	}
	result, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (booking_id, sender_id, recipient_id, body) VALUES (?, ?, ?, ?)",
		m.BookingID, m.SenderID, recipient, m.Body)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*m = stored
	return nil
}

// GetByID loads one message.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (model.Message, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id = ? LIMIT 1", id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Message{}, ErrMessageNotFound
	}
	return m, err
}

// ListForBooking returns the booking's thread oldest first.  Hidden
// messages are excluded unless includeHidden is set (admin view).
func (r *MessageRepo) ListForBooking(ctx context.Context, bookingID uint64, includeHidden bool, limit, offset int) ([]model.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := "SELECT " + messageColumns + " FROM messages WHERE booking_id = ?"
	if !includeHidden {
		query += " AND is_hidden = 0"
	}
	query += " ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, query, bookingID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// SetReported flags or clears the moderation report on a message.
func (r *MessageRepo) SetReported(ctx context.Context, id uint64, reported bool) error {
	return r.flag(ctx, id, "is_reported", reported)
}

// SetHidden hides or unhides a message.  Hiding also clears the report
// flag so the admin queue does not show already handled items.
func (r *MessageRepo) SetHidden(ctx context.Context, id uint64, hidden bool) error {
	if hidden {
		result, err := r.DB.ExecContext(ctx,
			"UPDATE messages SET is_hidden = 1, is_reported = 0 WHERE id = ?", id)
		if err != nil {
			return err
		}
		return r.checkFound(ctx, id, result)
	}
	return r.flag(ctx, id, "is_hidden", false)
}

// ListReported returns reported, not yet hidden messages oldest first for
// the moderation queue.
func (r *MessageRepo) ListReported(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE is_reported = 1 AND is_hidden = 0 ORDER BY created_at ASC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *MessageRepo) flag(ctx context.Context, id uint64, column string, value bool) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE messages SET "+column+" = ? WHERE id = ?", value, id)
	if err != nil {
		return err
	}
	return r.checkFound(ctx, id, result)
}

func (r *MessageRepo) checkFound(ctx context.Context, id uint64, result sql.Result) error {
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func collectMessages(rows *sql.Rows) ([]model.Message, error) {
	var out []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
