package scheduling

import (
	"sort"
	"time"

	"spacebook/pkg/model"
)

// HasConflict reports whether [start, end) overlaps any booking other than excludeID.
// Back-to-back bookings do not conflict.
func HasConflict(existing []*model.Booking, start, end time.Time, excludeID string) bool {
	return FirstConflict(existing, start, end, excludeID) != nil
}

// FirstConflict returns the earliest overlapping booking, or nil.
// When existing is ordered by start the scan stops at the first booking starting at or after end.
func FirstConflict(existing []*model.Booking, start, end time.Time, excludeID string) *model.Booking {
	ordered := sort.SliceIsSorted(existing, func(i, j int) bool {
		return existing[i].StartTime.Before(existing[j].StartTime)
	})

	for _, b := range existing {
		if ordered && !b.StartTime.Before(end) {
			break
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if b.Overlaps(start, end) {
			return b
		}
	}
	return nil
}
