package scheduling

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"spacebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(sh, sm, eh, em int) model.TimeSlot {
	return model.TimeSlot{Start: day(sh, sm), End: day(eh, em)}
}

func TestFreeSlots(t *testing.T) {
	open, close := day(9, 0), day(18, 0)

	tests := []struct {
		name     string
		bookings []*model.Booking
		want     []model.TimeSlot
	}{
		{
			name: "no bookings",
			want: []model.TimeSlot{slot(9, 0, 18, 0)},
		},
		{
			name:     "single booking",
			bookings: []*model.Booking{booking("a", 10, 0, 11, 0)},
			want:     []model.TimeSlot{slot(9, 0, 10, 0), slot(11, 0, 18, 0)},
		},
		{
			name:     "back to back",
			bookings: []*model.Booking{booking("b", 11, 0, 12, 0), booking("a", 10, 0, 11, 0)},
			want:     []model.TimeSlot{slot(9, 0, 10, 0), slot(12, 0, 18, 0)},
		},
		{
			name:     "covers whole window",
			bookings: []*model.Booking{booking("a", 9, 0, 18, 0)},
			want:     []model.TimeSlot{},
		},
		{
			name:     "starts at opening and ends at closing",
			bookings: []*model.Booking{booking("a", 9, 0, 10, 0), booking("b", 17, 0, 18, 0)},
			want:     []model.TimeSlot{slot(10, 0, 17, 0)},
		},
		{
			name:     "clipped to window",
			bookings: []*model.Booking{booking("a", 8, 0, 9, 30), booking("b", 17, 30, 19, 0)},
			want:     []model.TimeSlot{slot(9, 30, 17, 30)},
		},
		{
			name:     "outside window ignored",
			bookings: []*model.Booking{booking("a", 7, 0, 8, 0), booking("b", 19, 0, 20, 0)},
			want:     []model.TimeSlot{slot(9, 0, 18, 0)},
		},
		{
			name:     "overlapping input merged",
			bookings: []*model.Booking{booking("a", 10, 0, 12, 0), booking("b", 11, 0, 13, 0), booking("c", 11, 30, 11, 45)},
			want:     []model.TimeSlot{slot(9, 0, 10, 0), slot(13, 0, 18, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreeSlots(tt.bookings, open, close)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFreeSlots_DoesNotMutateInput(t *testing.T) {
	input := []*model.Booking{booking("b", 14, 0, 15, 0), booking("a", 10, 0, 11, 0)}
	_ = FreeSlots(input, day(9, 0), day(18, 0))

	assert.Equal(t, "b", input[0].ID)
	assert.Equal(t, "a", input[1].ID)
}

func TestFreeSlots_Restartable(t *testing.T) {
	input := []*model.Booking{booking("a", 10, 0, 11, 0)}
	first := FreeSlots(input, day(9, 0), day(18, 0))
	second := FreeSlots(input, day(9, 0), day(18, 0))
	assert.Equal(t, first, second)
}

// Slots plus bookings must tile the window exactly.
func TestFreeSlots_Complementarity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	w := DefaultWorkingWindow()
	open, close := w.On(day(0, 0))

	for iter := 0; iter < 200; iter++ {
		bookings := randomNonOverlapping(rng, open, close)
		slots := FreeSlots(bookings, open, close)
		assert.LessOrEqual(t, len(slots), len(bookings)+1)

		var pieces []model.TimeSlot
		pieces = append(pieces, slots...)
		for _, b := range bookings {
			pieces = append(pieces, model.TimeSlot{Start: b.StartTime, End: b.EndTime})
		}
		sort.Slice(pieces, func(i, j int) bool { return pieces[i].Start.Before(pieces[j].Start) })

		cursor := open
		for _, p := range pieces {
			require.True(t, p.Start.Equal(cursor), "gap or overlap at %s (iteration %d)", cursor, iter)
			require.True(t, p.Start.Before(p.End))
			cursor = p.End
		}
		require.True(t, cursor.Equal(close), "window not fully covered (iteration %d)", iter)

		for _, s := range slots {
			assert.False(t, HasConflict(bookings, s.Start, s.End, ""), "slot %v overlaps a booking", s)
		}
	}
}

func randomNonOverlapping(rng *rand.Rand, open, close time.Time) []*model.Booking {
	var out []*model.Booking
	cursor := open
	for i := 0; cursor.Before(close); i++ {
		cursor = cursor.Add(time.Duration(rng.Intn(4)) * 15 * time.Minute)
		end := cursor.Add(time.Duration(1+rng.Intn(6)) * 15 * time.Minute)
		if end.After(close) {
			break
		}
		out = append(out, &model.Booking{ID: string(rune('a' + i)), StartTime: cursor, EndTime: end})
		cursor = end
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
