// Package events publishes booking lifecycle notifications.
package events

import (
	"context"
	"time"

	"spacebook/pkg/model"
)

const (
	TypeBookingCreated = "booking.created"
	TypeBookingUpdated = "booking.updated"
	TypeBookingDeleted = "booking.deleted"

	SchemaVersion = "1"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	ResourceID string    `json:"resource_id"`
	OwnerID    string    `json:"owner_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		ResourceID: b.ResourceID,
		OwnerID:    b.OwnerID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }
