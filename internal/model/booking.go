package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  The set is
// closed: a booking always holds exactly one of these values and moves
// between them only through the transitions declared below.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// bookingTransitions is the explicit transition table.  A booking may move
// from a source status only to one of the listed targets; REJECTED,
// CANCELLED and COMPLETED have no outgoing edges and are terminal.
var bookingTransitions = map[BookingStatus]map[BookingStatus]bool{
	BookingPending: {
		BookingApproved:  true,
		BookingRejected:  true,
		BookingCancelled: true,
	},
	BookingApproved: {
		BookingCancelled: true,
		BookingCompleted: true,
	},
}

// CanTransition reports whether moving from one status to another is
// permitted by the transition table.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	return bookingTransitions[s][to]
}

// Blocking reports whether a booking in this status counts toward conflict
// detection for its resource.  Only PENDING and APPROVED bookings block a
// time window; terminal bookings never do.
func (s BookingStatus) Blocking() bool {
	return s == BookingPending || s == BookingApproved
}

// Booking records a user's reservation of a resource for a half-open time
// window [StartsAt, EndsAt).  Bookings are never deleted; they only move
// to a terminal status.
//
// Fields:
//  ID         – primary key identifier.
//  ResourceID – resource being booked.
//  UserID     – user who requested the booking.
//  StartsAt   – start of the window (UTC, inclusive).
//  EndsAt     – end of the window (UTC, exclusive; must be after StartsAt).
//  Status     – current lifecycle state.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Booking struct {
	ID         uint64        // bookings.id
	ResourceID uint64        // bookings.resource_id
	UserID     uint64        // bookings.user_id
	StartsAt   time.Time     // bookings.starts_at
	EndsAt     time.Time     // bookings.ends_at
	Status     BookingStatus // bookings.status
	CreatedAt  time.Time     // bookings.created_at
	UpdatedAt  time.Time     // bookings.updated_at
}
