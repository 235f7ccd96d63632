package application

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event types published on the booking topic.
const (
	EventBookingCreated  = "shareit.booking.created"
	EventBookingApproved = "shareit.booking.approved"
	EventBookingRejected = "shareit.booking.rejected"
	EventCommentAdded    = "shareit.comment.added"
)

// EventPublisher delivers domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, data any) error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }

// BookingEvent is the payload of every booking lifecycle event.
type BookingEvent struct {
	BookingID  int64     `json:"booking_id"`
	ItemID     int64     `json:"item_id"`
	OwnerID    int64     `json:"owner_id"`
	BookerID   int64     `json:"booker_id"`
	Status     string    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CommentAddedEvent is published after a comment is stored.
type CommentAddedEvent struct {
	CommentID  int64     `json:"comment_id"`
	ItemID     int64     `json:"item_id"`
	AuthorID   int64     `json:"author_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishEvent sends an event after the write it describes has committed.
// Delivery failures are logged and never surface to the caller.
func publishEvent(ctx context.Context, pub EventPublisher, logger *zap.Logger, eventType, key string, data any) {
	if err := pub.Publish(ctx, eventType, key, data); err != nil {
		logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
