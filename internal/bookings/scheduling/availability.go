package scheduling

import (
	"sort"
	"time"

	"spacebook/pkg/model"
)

// FreeSlots returns the maximal free intervals of [open, close) not covered by bookings,
// in chronological order. Bookings are clipped to the window. Overlapping or adjacent
// bookings are merged, so malformed input never yields malformed slots. bookings is not modified.
func FreeSlots(bookings []*model.Booking, open, close time.Time) []model.TimeSlot {
	slots := make([]model.TimeSlot, 0, len(bookings)+1)
	if !open.Before(close) {
		return slots
	}

	sorted := make([]*model.Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	cursor := open
	for _, b := range sorted {
		start, end := clip(b.StartTime, b.EndTime, open, close)
		if !start.Before(end) {
			continue
		}
		if cursor.Before(start) {
			slots = append(slots, model.TimeSlot{Start: cursor, End: start})
		}
		if end.After(cursor) {
			cursor = end
		}
	}

	if cursor.Before(close) {
		slots = append(slots, model.TimeSlot{Start: cursor, End: close})
	}
	return slots
}

func clip(start, end, open, close time.Time) (time.Time, time.Time) {
	if start.Before(open) {
		start = open
	}
	if end.After(close) {
		end = close
	}
	return start, end
}
