// Package queue defines message payloads exchanged over the message broker.
package queue

// StatusChangedEvent is published whenever a booking is created or moves
// between statuses. It carries enough information for downstream
// consumers to log or notify without querying the primary database.
// From is empty when the event describes a creation.
type StatusChangedEvent struct {
	BookingID  uint64 `json:"booking_id"`
	ResourceID uint64 `json:"resource_id"`
	UserID     uint64 `json:"user_id"`
	ActorID    uint64 `json:"actor_id"`
	From       string `json:"from,omitempty"`
	To         string `json:"to"`
	StartsAt   string `json:"starts_at"`
	EndsAt     string `json:"ends_at"`
	OccurredAt string `json:"occurred_at"`
}
