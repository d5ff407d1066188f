// Package notifier turns booking lifecycle events into owner notifications.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"spacebook/internal/bookings/events"
	"spacebook/pkg/kafka"
	"spacebook/pkg/logger"
	"spacebook/pkg/model"
)

var ErrMalformedEvent = errors.New("malformed booking event")

type Notification struct {
	Recipient     string
	Subject       string
	Body          string
	BookingID     string
	CorrelationID string
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the service log.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.log.Info("Booking notification",
		"recipient", n.Recipient,
		"subject", n.Subject,
		"body", n.Body,
		"booking_id", n.BookingID,
		"correlation_id", n.CorrelationID,
	)
	return nil
}

type Notifier struct {
	sender Sender
	log    *logger.Logger
}

func New(sender Sender, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, log: log}
}

// Handle is a kafka.MessageHandler. Events of unknown type are skipped.
// Malformed payloads fail permanently and go straight to the DLQ; delivery
// failures are transient and retried by the consumer.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode booking event", fmt.Errorf("%w: %v", ErrMalformedEvent, err))
	}
	if event.BookingID == "" || event.OwnerID == "" {
		return kafka.NewPermanentError("invalid booking event", fmt.Errorf("%w: missing booking or owner id", ErrMalformedEvent))
	}

	notification, ok := build(event)
	if !ok {
		n.log.Debug("Skipping booking event", "type", event.Type, "event_id", msg.GetEventID())
		return nil
	}
	notification.CorrelationID = msg.GetCorrelationID()

	if err := n.sender.Send(ctx, notification); err != nil {
		return kafka.NewTransientError("failed to deliver notification", err)
	}
	return nil
}

func build(e events.BookingEvent) (Notification, bool) {
	span := fmt.Sprintf("%s to %s UTC",
		e.StartTime.UTC().Format(model.DateLayout+" "+model.TimeOfDayLayout),
		e.EndTime.UTC().Format(model.TimeOfDayLayout),
	)

	var subject string
	switch e.Type {
	case events.TypeBookingCreated:
		subject = "Booking confirmed"
	case events.TypeBookingUpdated:
		subject = "Booking rescheduled"
	case events.TypeBookingDeleted:
		subject = "Booking cancelled"
	default:
		return Notification{}, false
	}

	return Notification{
		Recipient: e.OwnerID,
		Subject:   subject,
		Body:      fmt.Sprintf("Resource %s, %s", e.ResourceID, span),
		BookingID: e.BookingID,
	}, true
}
