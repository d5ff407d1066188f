package model

import "time"

// TimeSlot is a free interval of a working day. It is computed, never stored.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

type Availability struct {
	ResourceID string     `json:"resource_id"`
	Date       string     `json:"date"`
	OpenTime   time.Time  `json:"open_time"`
	CloseTime  time.Time  `json:"close_time"`
	Slots      []TimeSlot `json:"slots"`
}
