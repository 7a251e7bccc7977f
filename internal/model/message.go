package model

import "time"

// Message is a threaded message attached to a booking.  Only booking
// participants (requester, resource creator, admins) may post or read.
// Moderation is flag-based: reported messages show up in the admin queue
// and hidden messages are excluded from normal listings.
//
// Fields:
//  ID          – primary key identifier.
//  BookingID   – booking the message belongs to.
//  SenderID    – user who wrote the message.
//  RecipientID – optional directed recipient (another participant).
//  Body        – message text, at most 2000 characters.
//  IsReported  – flagged by a participant for moderation.
//  IsHidden    – hidden by an admin; excluded from listings.
//  CreatedAt   – creation timestamp.
type Message struct {
	ID          uint64    // messages.id
	BookingID   uint64    // messages.booking_id
	SenderID    uint64    // messages.sender_id
	RecipientID *uint64   // messages.recipient_id (nullable)
	Body        string    // messages.body
	IsReported  bool      // messages.is_reported
	IsHidden    bool      // messages.is_hidden
	CreatedAt   time.Time // messages.created_at
}
