package model

import "time"

// Review is a user's rating of a resource.  A user may hold at most one
// review per resource (unique key on resource_id + user_id) and must have
// at least one COMPLETED booking for that resource before reviewing.
//
// Fields:
//  ID         – primary key identifier.
//  ResourceID – reviewed resource.
//  UserID     – author of the review.
//  Rating     – integer rating between 1 and 5.
//  Comment    – optional comment, at most 2000 characters.
//  IsReported – flagged for moderation.
//  IsHidden   – hidden by an admin; excluded from listings and from the
//               resource rating aggregate.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Review struct {
	ID         uint64    // reviews.id
	ResourceID uint64    // reviews.resource_id
	UserID     uint64    // reviews.user_id
	Rating     uint8     // reviews.rating
	Comment    *string   // reviews.comment (nullable)
	IsReported bool      // reviews.is_reported
	IsHidden   bool      // reviews.is_hidden
	CreatedAt  time.Time // reviews.created_at
	UpdatedAt  time.Time // reviews.updated_at
}

// AdminLog is an audit record of a privileged action.  Rows are appended
// once the action they describe has committed.
//
// Fields:
//  ID          – primary key identifier.
//  AdminID     – user who performed the action.
//  Action      – short verb, e.g. "hide_message", "deactivate_category".
//  TargetTable – table the action touched.
//  TargetID    – primary key of the affected row.
//  Detail      – free-form context (nullable).
//  IPAddr      – requester IP at the time of the action (nullable).
//  CreatedAt   – timestamp of the action.
type AdminLog struct {
	ID          uint64    // admin_logs.id
	AdminID     uint64    // admin_logs.admin_id
	Action      string    // admin_logs.action
	TargetTable string    // admin_logs.target_table
	TargetID    uint64    // admin_logs.target_id
	Detail      *string   // admin_logs.detail (nullable)
	IPAddr      *string   // admin_logs.ip_addr (nullable)
	CreatedAt   time.Time // admin_logs.created_at
}
