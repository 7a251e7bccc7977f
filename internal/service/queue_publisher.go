// Package queue_publisher publishes domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures
// without interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/campusbook/resource-booking/internal/booking"
	q "github.com/campusbook/resource-booking/internal/queue"
)

// PublishStatusChanged publishes a StatusChangedEvent to the
// booking.status-changed queue. The function never panics; any error is
// logged and returned so the caller can choose to ignore it. Messages
// are marked persistent so they survive broker restarts.
func PublishStatusChanged(ctx context.Context, event q.StatusChangedEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(
		q.StatusQueueName, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                // default exchange
		q.StatusQueueName, // routing key = queue name
		false,             // mandatory
		false,             // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}

// Notifier adapts the publisher to the booking engine's notification
// hook. Publishing happens in a goroutine with its own timeout so a slow
// or unreachable broker never delays a booking response.
type Notifier struct{}

// BookingStatusChanged converts the engine event to the wire payload and
// publishes it in the background.
func (Notifier) BookingStatusChanged(_ context.Context, ev booking.StatusChange) {
	event := q.StatusChangedEvent{
		BookingID:  ev.BookingID,
		ResourceID: ev.ResourceID,
		UserID:     ev.UserID,
		ActorID:    ev.ActorID,
		From:       string(ev.From),
		To:         string(ev.To),
		StartsAt:   ev.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:     ev.EndsAt.UTC().Format(time.RFC3339),
		OccurredAt: ev.OccurredAt.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = PublishStatusChanged(ctx, event)
	}()
}
