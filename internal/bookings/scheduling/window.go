// Package scheduling holds the pure booking rules: the daily working window,
// overlap detection and free-slot computation. Nothing here performs I/O.
package scheduling

import (
	"fmt"
	"time"

	bookingserrors "spacebook/internal/bookings/errors"
	"spacebook/pkg/clock"
	"spacebook/pkg/model"
)

const (
	DefaultOpenTime  = "09:00"
	DefaultCloseTime = "18:00"
)

// WorkingWindow is the fixed daily span during which bookings may exist.
// Open and Close are minutes after midnight in Location.
type WorkingWindow struct {
	Open     int
	Close    int
	Location *time.Location
}

func NewWorkingWindow(open, close string, loc *time.Location) (WorkingWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	o, err := minuteOfDay(open)
	if err != nil {
		return WorkingWindow{}, fmt.Errorf("invalid open time %q: %w", open, err)
	}
	c, err := minuteOfDay(close)
	if err != nil {
		return WorkingWindow{}, fmt.Errorf("invalid close time %q: %w", close, err)
	}
	if o >= c {
		return WorkingWindow{}, fmt.Errorf("open time %s must be before close time %s", open, close)
	}
	return WorkingWindow{Open: o, Close: c, Location: loc}, nil
}

// DefaultWorkingWindow is 09:00-18:00 UTC.
func DefaultWorkingWindow() WorkingWindow {
	return WorkingWindow{Open: 9 * 60, Close: 18 * 60, Location: time.UTC}
}

func (w WorkingWindow) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

// On returns the absolute open and close instants for the calendar day of day.
func (w WorkingWindow) On(day time.Time) (time.Time, time.Time) {
	loc := w.location()
	y, m, d := day.In(loc).Date()
	return at(y, m, d, w.Open, loc), at(y, m, d, w.Close, loc)
}

func (w WorkingWindow) String() string {
	return fmt.Sprintf("%s-%s %s", formatMinutes(w.Open), formatMinutes(w.Close), w.location())
}

func (w WorkingWindow) OpenTime() string  { return formatMinutes(w.Open) }
func (w WorkingWindow) CloseTime() string { return formatMinutes(w.Close) }

type Interval struct {
	Start time.Time
	End   time.Time
}

// Policy validates proposed intervals against a WorkingWindow.
type Policy struct {
	window    WorkingWindow
	notBefore clock.Clock
}

type PolicyOption func(*Policy)

// WithNotBefore rejects intervals starting before clk's current instant.
// Without it the policy depends on nothing but the window.
func WithNotBefore(clk clock.Clock) PolicyOption {
	return func(p *Policy) {
		p.notBefore = clk
	}
}

func NewPolicy(window WorkingWindow, opts ...PolicyOption) *Policy {
	p := &Policy{window: window}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) Window() WorkingWindow {
	return p.window
}

// Day parses date and returns the window bounds for it.
func (p *Policy) Day(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(model.DateLayout, date, p.window.location())
	if err != nil {
		return time.Time{}, time.Time{}, invalidRange("date %q must be formatted as %s", date, model.DateLayout)
	}
	open, close := p.window.On(day)
	return open, close, nil
}

// Validate combines a calendar date with two times of day and checks the result
// against the working window.
func (p *Policy) Validate(date, start, end string) (Interval, error) {
	open, _, err := p.Day(date)
	if err != nil {
		return Interval{}, err
	}
	s, err := minuteOfDay(start)
	if err != nil {
		return Interval{}, invalidRange("start time %q must be formatted as %s", start, model.TimeOfDayLayout)
	}
	e, err := minuteOfDay(end)
	if err != nil {
		return Interval{}, invalidRange("end time %q must be formatted as %s", end, model.TimeOfDayLayout)
	}

	loc := p.window.location()
	y, m, d := open.Date()
	return p.ValidateInterval(at(y, m, d, s, loc), at(y, m, d, e, loc))
}

// ValidateInterval checks two absolute instants. Both must fall on the same
// calendar day, inside the window, with start strictly before end.
func (p *Policy) ValidateInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, invalidRange("start %s must be before end %s", clockTime(start, p.window), clockTime(end, p.window))
	}

	loc := p.window.location()
	if start.In(loc).Format(model.DateLayout) != end.In(loc).Format(model.DateLayout) {
		return Interval{}, invalidRange("booking must start and end on the same day")
	}

	open, close := p.window.On(start)
	if start.Before(open) {
		return Interval{}, invalidRange("start %s is before opening time %s", clockTime(start, p.window), p.window.OpenTime())
	}
	if end.After(close) {
		return Interval{}, invalidRange("end %s is after closing time %s", clockTime(end, p.window), p.window.CloseTime())
	}
	if p.notBefore != nil && start.Before(Now(p.notBefore)) {
		return Interval{}, invalidRange("start %s on %s is in the past", clockTime(start, p.window), start.In(loc).Format(model.DateLayout))
	}

	return Interval{Start: start, End: end}, nil
}

// Now reads clk as UTC at millisecond precision, the resolution stored timestamps keep.
func Now(clk clock.Clock) time.Time {
	return clk.Now().UTC().Truncate(time.Millisecond)
}

func invalidRange(format string, args ...any) error {
	return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidTimeRange, fmt.Sprintf(format, args...))
}

func minuteOfDay(s string) (int, error) {
	t, err := time.Parse(model.TimeOfDayLayout, s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func clockTime(t time.Time, w WorkingWindow) string {
	return t.In(w.location()).Format(model.TimeOfDayLayout)
}

func at(y int, m time.Month, d int, minutes int, loc *time.Location) time.Time {
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc)
}
