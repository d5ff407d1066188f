package model

import (
	"time"
)

// Booking is a reservation of a resource over the half-open interval [StartTime, EndTime).
type Booking struct {
	ID         string    `json:"id" bson:"_id"`
	ResourceID string    `json:"resource_id" bson:"resource_id"`
	OwnerID    string    `json:"owner_id" bson:"owner_id"`
	StartTime  time.Time `json:"start_time" bson:"start_time"`
	EndTime    time.Time `json:"end_time" bson:"end_time"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Date returns the calendar day of the booking in loc.
func (b *Booking) Date(loc *time.Location) string {
	return b.StartTime.In(loc).Format(DateLayout)
}

// Overlaps reports whether the booking intersects [start, end) under half-open semantics.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// BookingRequest carries the create payload. Date and time layouts are
// checked by the scheduling policy, not by tag validation.
type BookingRequest struct {
	ResourceID string `json:"resource_id" validate:"required,uuid4"`
	Date       string `json:"date" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
}

type BookingUpdate struct {
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
)
