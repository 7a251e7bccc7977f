package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusbook/resource-booking/internal/model"
)

// ReviewRepo persists reviews and keeps the denormalized rating
// aggregate on resources in sync.  Writes that change a review's
// visibility or rating recompute the aggregate in the same transaction.
type ReviewRepo struct {
	DB *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

const reviewColumns = "id, resource_id, user_id, rating, comment, is_reported, is_hidden, created_at, updated_at"

func scanReview(row interface{ Scan(...any) error }) (model.Review, error) {
	var (
		rv      model.Review
		comment sql.NullString
	)
	err := row.Scan(&rv.ID, &rv.ResourceID, &rv.UserID, &rv.Rating, &comment,
		&rv.IsReported, &rv.IsHidden, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return model.Review{}, err
	}
	if comment.Valid {
		rv.Comment = &comment.String
	}
	return rv, nil
}

// Upsert inserts the user's review for the resource or, if one exists,
// replaces its rating and comment.  The resource rating aggregate is
// recomputed in the same transaction.
func (r *ReviewRepo) Upsert(ctx context.Context, rv *model.Review) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var comment any
	if rv.Comment != nil {
		comment = *rv.Comment
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reviews (resource_id, user_id, rating, comment)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE rating = VALUES(rating), comment = VALUES(comment), is_reported = 0`,
		rv.ResourceID, rv.UserID, rv.Rating, comment)
	if err != nil {
		return err
	}
	if err := recomputeRating(ctx, tx, rv.ResourceID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	stored, err := r.GetByResourceUser(ctx, rv.ResourceID, rv.UserID)
	if err != nil {
		return err
	}
	*rv = stored
	return nil
}

// GetByID loads one review.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE id = ? LIMIT 1", id)
	rv, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, ErrReviewNotFound
	}
	return rv, err
}

// GetByResourceUser loads the user's review of a resource, if any.
func (r *ReviewRepo) GetByResourceUser(ctx context.Context, resourceID, userID uint64) (model.Review, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE resource_id = ? AND user_id = ? LIMIT 1",
		resourceID, userID)
	rv, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, ErrReviewNotFound
	}
	return rv, err
}

// ListVisible returns the resource's non-hidden reviews newest first.
func (r *ReviewRepo) ListVisible(ctx context.Context, resourceID uint64, limit, offset int) ([]model.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE resource_id = ? AND is_hidden = 0 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		resourceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

// SetReported flags or clears the moderation report on a review.
func (r *ReviewRepo) SetReported(ctx context.Context, id uint64, reported bool) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET is_reported = ? WHERE id = ?", reported, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetHidden hides or unhides a review and recomputes the resource's
// rating aggregate, since hidden reviews do not count toward it.
func (r *ReviewRepo) SetHidden(ctx context.Context, id uint64, hidden bool) error {
	rv, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if hidden {
		_, err = tx.ExecContext(ctx,
			"UPDATE reviews SET is_hidden = 1, is_reported = 0 WHERE id = ?", id)
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE reviews SET is_hidden = 0 WHERE id = ?", id)
	}
	if err != nil {
		return err
	}
	if err := recomputeRating(ctx, tx, rv.ResourceID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListReported returns reported, not yet hidden reviews oldest first.
func (r *ReviewRepo) ListReported(ctx context.Context, limit int) ([]model.Review, error) {
	return r.listFlagged(ctx, "is_reported = 1 AND is_hidden = 0", limit)
}

// ListHidden returns hidden reviews oldest first, so admins can audit
// and reverse moderation decisions.
func (r *ReviewRepo) ListHidden(ctx context.Context, limit int) ([]model.Review, error) {
	return r.listFlagged(ctx, "is_hidden = 1", limit)
}

func (r *ReviewRepo) listFlagged(ctx context.Context, where string, limit int) ([]model.Review, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE "+where+" ORDER BY created_at ASC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

// recomputeRating rewrites resources.rating_avg and rating_count from
// the visible reviews.  Runs inside the caller's transaction.
func recomputeRating(ctx context.Context, tx *sql.Tx, resourceID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE resources SET
			rating_avg = COALESCE((SELECT AVG(rating) FROM reviews WHERE resource_id = ? AND is_hidden = 0), 0),
			rating_count = (SELECT COUNT(*) FROM reviews WHERE resource_id = ? AND is_hidden = 0)
		WHERE id = ?`,
		resourceID, resourceID, resourceID)
	return err
}

func collectReviews(rows *sql.Rows) ([]model.Review, error) {
	var out []model.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
