package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusbook/resource-booking/internal/model"
)

// Taxonomy sentinel errors.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrLocationNotFound = errors.New("location not found")
)

// TaxonomyRepo manages the categories and locations resources are filed
// under.  Both are soft-deactivated rather than deleted, since resources
// keep referencing them.
type TaxonomyRepo struct {
	DB *sql.DB
}

func NewTaxonomyRepo(db *sql.DB) *TaxonomyRepo { return &TaxonomyRepo{DB: db} }

// ListCategories returns categories by name; inactive ones are included
// only when includeInactive is set (admin view).
func (r *TaxonomyRepo) ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	query := "SELECT id, name, description, is_active FROM categories"
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name ASC"
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var (
			c    model.Category
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc, &c.IsActive); err != nil {
			return nil, err
		}
		if desc.Valid {
			c.Description = &desc.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category and fills in the generated id.
func (r *TaxonomyRepo) CreateCategory(ctx context.Context, c *model.Category) error {
	var desc any
	if c.Description != nil {
		desc = *c.Description
	}
	result, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, description, is_active) VALUES (?, ?, 1)",
		c.Name, desc)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.IsActive = true
	return nil
}

// SetCategoryActive activates or deactivates a category.
func (r *TaxonomyRepo) SetCategoryActive(ctx context.Context, id uint64, active bool) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET is_active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	return taxonomyFound(result, ErrCategoryNotFound, func() error {
		return r.DB.QueryRowContext(ctx, "SELECT id FROM categories WHERE id = ?", id).Scan(new(uint64))
	})
}

// ListLocations returns locations by name; inactive ones are included
// only when includeInactive is set.
func (r *TaxonomyRepo) ListLocations(ctx context.Context, includeInactive bool) ([]model.Location, error) {
	query := "SELECT id, name, building, floor, is_active FROM locations"
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name ASC"
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		var (
			l               model.Location
			building, floor sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &building, &floor, &l.IsActive); err != nil {
			return nil, err
		}
		if building.Valid {
			l.Building = &building.String
		}
		if floor.Valid {
			l.Floor = &floor.String
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CreateLocation inserts a location and fills in the generated id.
func (r *TaxonomyRepo) CreateLocation(ctx context.Context, l *model.Location) error {
	var building, floor any
	if l.Building != nil {
		building = *l.Building
	}
	if l.Floor != nil {
		floor = *l.Floor
	}
	result, err := r.DB.ExecContext(ctx,
		"INSERT INTO locations (name, building, floor, is_active) VALUES (?, ?, ?, 1)",
		l.Name, building, floor)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	l.IsActive = true
	return nil
}

// SetLocationActive activates or deactivates a location.
func (r *TaxonomyRepo) SetLocationActive(ctx context.Context, id uint64, active bool) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE locations SET is_active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	return taxonomyFound(result, ErrLocationNotFound, func() error {
		return r.DB.QueryRowContext(ctx, "SELECT id FROM locations WHERE id = ?", id).Scan(new(uint64))
	})
}

// taxonomyFound distinguishes "no change" from "no row" after an UPDATE
// that affected zero rows.
func taxonomyFound(result sql.Result, notFound error, probe func() error) error {
	n, err := result.RowsAffected()
	if err != nil || n > 0 {
		return err
	}
	if err := probe(); errors.Is(err, sql.ErrNoRows) {
		return notFound
	} else if err != nil {
		return err
	}
	return nil
}
