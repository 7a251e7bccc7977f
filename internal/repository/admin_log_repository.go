package repository

import (
	"context"
	"database/sql"

	"github.com/campusbook/resource-booking/internal/model"
)

// AdminLogRepo writes and reads the audit trail of privileged actions.
type AdminLogRepo struct {
	DB *sql.DB
}

func NewAdminLogRepo(db *sql.DB) *AdminLogRepo { return &AdminLogRepo{DB: db} }

// Insert appends an audit record.
func (r *AdminLogRepo) Insert(ctx context.Context, entry model.AdminLog) error {
	var detail, ip any
	if entry.Detail != nil {
		detail = *entry.Detail
	}
	if entry.IPAddr != nil {
		ip = *entry.IPAddr
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO admin_logs (admin_id, action, target_table, target_id, detail, ip_addr) VALUES (?, ?, ?, ?, ?, ?)",
		entry.AdminID, entry.Action, entry.TargetTable, entry.TargetID, detail, ip)
	return err
}

// List returns the newest audit records first.
func (r *AdminLogRepo) List(ctx context.Context, limit, offset int) ([]model.AdminLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, admin_id, action, target_table, target_id, detail, ip_addr, created_at FROM admin_logs ORDER BY id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AdminLog
	for rows.Next() {
		var (
			e          model.AdminLog
			detail, ip sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.TargetTable,
			&e.TargetID, &detail, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		if detail.Valid {
			e.Detail = &detail.String
		}
		if ip.Valid {
			e.IPAddr = &ip.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
