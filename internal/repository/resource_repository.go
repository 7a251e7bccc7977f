package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/campusbook/resource-booking/internal/model"
)

// ResourceRepo provides CRUD operations for bookable resources.  The
// publication lifecycle (DRAFT → PUBLISHED → ARCHIVED) is handled here;
// the booking state machine never mutates resources.
type ResourceRepo struct{ DB *sql.DB }

func NewResourceRepo(db *sql.DB) *ResourceRepo { return &ResourceRepo{DB: db} }

const resourceColumns = `id, title, description, category_id, location_id, capacity,
	status, requires_approval, rating_avg, rating_count, created_by, created_at, updated_at`

func scanResource(row interface{ Scan(...any) error }) (model.Resource, error) {
	var (
		res        model.Resource
		desc       sql.NullString
		categoryID sql.NullInt64
		locationID sql.NullInt64
	)
	err := row.Scan(&res.ID, &res.Title, &desc, &categoryID, &locationID, &res.Capacity,
		&res.Status, &res.RequiresApproval, &res.RatingAvg, &res.RatingCount,
		&res.CreatedBy, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Resource{}, err
	}
	if desc.Valid {
		res.Description = &desc.String
	}
	if categoryID.Valid {
		v := uint64(categoryID.Int64)
		res.CategoryID = &v
	}
	if locationID.Valid {
		v := uint64(locationID.Int64)
		res.LocationID = &v
	}
	return res, nil
}

// Create inserts a new DRAFT resource and populates the generated ID and
// timestamps on the provided struct.
func (r *ResourceRepo) Create(ctx context.Context, res *model.Resource) error {
	const q = `INSERT INTO resources
		(title, description, category_id, location_id, capacity, status, requires_approval, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.DB.ExecContext(ctx, q,
		res.Title, res.Description, res.CategoryID, res.LocationID,
		res.Capacity, res.Status, res.RequiresApproval, res.CreatedBy)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	stored, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = stored
	return nil
}

// GetByID fetches a resource by id.
func (r *ResourceRepo) GetByID(ctx context.Context, id uint64) (model.Resource, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE id = ? LIMIT 1", id)
	res, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Resource{}, ErrResourceNotFound
	}
	return res, err
}

// Update rewrites the editable fields of a resource.  Status changes go
// through SetStatus instead.
func (r *ResourceRepo) Update(ctx context.Context, res *model.Resource) error {
	const q = `UPDATE resources SET
		title = ?, description = ?, category_id = ?, location_id = ?,
		capacity = ?, requires_approval = ?
		WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, q,
		res.Title, res.Description, res.CategoryID, res.LocationID,
		res.Capacity, res.RequiresApproval, res.ID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		// Row may exist with identical values; confirm before reporting 404.
		if _, err := r.GetByID(ctx, res.ID); err != nil {
			return err
		}
	}
	return nil
}

// SetStatus moves the resource through its publication lifecycle.
func (r *ResourceRepo) SetStatus(ctx context.Context, id uint64, status model.ResourceStatus) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE resources SET status = ? WHERE id = ?", status, id)
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

// SearchQuery defines filters and pagination for browsing published
// resources.  Q matches title and description with a LIKE pattern.
type SearchQuery struct {
	Q           string
	CategoryID  uint64
	LocationID  uint64
	MinCapacity uint32
	Page        int
	PageSize    int
}

// Search returns published resources matching the query plus the total
// match count for pagination.
func (r *ResourceRepo) Search(ctx context.Context, q SearchQuery) ([]model.Resource, int64, error) {
	where := []string{"status = ?"}
	args := []any{model.ResourcePublished}

	if q.Q != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		pat := "%" + strings.ToLower(q.Q) + "%"
		args = append(args, pat, pat)
	}
	if q.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.LocationID != 0 {
		where = append(where, "location_id = ?")
		args = append(args, q.LocationID)
	}
	if q.MinCapacity != 0 {
		where = append(where, "capacity >= ?")
		args = append(args, q.MinCapacity)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM resources WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	dataArgs := append(args, q.PageSize, (q.Page-1)*q.PageSize)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE "+cond+
			" ORDER BY title ASC LIMIT ? OFFSET ?", dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

// ListAdmin returns resources in any status for the admin dashboard.
func (r *ResourceRepo) ListAdmin(ctx context.Context, status model.ResourceStatus, limit int) ([]model.Resource, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := "SELECT " + resourceColumns + " FROM resources"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
