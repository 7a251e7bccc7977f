package model

import "time"

// ResourceStatus enumerates the publication lifecycle of a resource.  This
// lifecycle is independent of the booking state machine: only PUBLISHED
// resources are visible to browsers, and ARCHIVED resources cannot accept
// new bookings.
type ResourceStatus string

const (
	ResourceDraft     ResourceStatus = "DRAFT"
	ResourcePublished ResourceStatus = "PUBLISHED"
	ResourceArchived  ResourceStatus = "ARCHIVED"
)

// Resource is a bookable item such as a room or a piece of equipment.
//
// Fields:
//  ID               – primary key identifier.
//  Title            – display name.
//  Description      – free-form description (nullable).
//  CategoryID       – optional reference into categories.
//  LocationID       – optional reference into locations.
//  Capacity         – how many people/units the resource holds; zero means
//                     the resource is not bookable.
//  Status           – publication state (DRAFT, PUBLISHED, ARCHIVED).
//  RequiresApproval – when true, new bookings start PENDING and must be
//                     approved; when false they are auto-approved.
//  RatingAvg        – average of visible review ratings.
//  RatingCount      – number of visible reviews.
//  CreatedBy        – user who created the resource.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Resource struct {
	ID               uint64         // resources.id
	Title            string         // resources.title
	Description      *string        // resources.description (nullable)
	CategoryID       *uint64        // resources.category_id (nullable)
	LocationID       *uint64        // resources.location_id (nullable)
	Capacity         uint32         // resources.capacity
	Status           ResourceStatus // resources.status
	RequiresApproval bool           // resources.requires_approval
	RatingAvg        float64        // resources.rating_avg
	RatingCount      uint32         // resources.rating_count
	CreatedBy        uint64         // resources.created_by
	CreatedAt        time.Time      // resources.created_at
	UpdatedAt        time.Time      // resources.updated_at
}

// Category groups resources for filtering (e.g. "Study Room", "AV
// Equipment").  Inactive categories stay attached to existing resources
// but are hidden from pickers.
type Category struct {
	ID          uint64  // categories.id
	Name        string  // categories.name
	Description *string // categories.description (nullable)
	IsActive    bool    // categories.is_active
}

// Location is a physical place a resource lives in.  Building and floor
// are optional descriptive fields.
type Location struct {
	ID       uint64  // locations.id
	Name     string  // locations.name
	Building *string // locations.building (nullable)
	Floor    *string // locations.floor (nullable)
	IsActive bool    // locations.is_active
}
