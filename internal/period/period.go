// Package period resolves reporting windows: the current window, the
// comparison window that precedes it, and the fixed four-way segmentation
// used for short series.
package period

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidPeriodKind = errors.New("invalid period kind")
	ErrInvalidDate       = errors.New("invalid date")
)

// DateLayout is the layout of explicit dates and of appointment days.
const DateLayout = "2006-01-02"

// SegmentCount is the number of buckets a current window is split into.
const SegmentCount = 4

type Kind string

const (
	Week    Kind = "week"
	Month   Kind = "month"
	Quarter Kind = "quarter"
)

// Window is an inclusive [Start, End] time range. End is the last
// nanosecond of its day for every window built by this package.
type Window struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether the window contains no instant at all.
func (w Window) Empty() bool {
	return w.End.Before(w.Start)
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days is the number of calendar days touched by the window.
func (w Window) Days() int {
	if w.Empty() {
		return 0
	}
	return calendarDays(w.Start, w.End)
}

func (w Window) StartDate() string { return w.Start.Format(DateLayout) }
func (w Window) EndDate() string   { return w.End.Format(DateLayout) }

// DateRange is an explicit pair of YYYY-MM-DD dates, both inclusive.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type Periods struct {
	Current  Window
	Previous Window
}

// Resolver turns period selectors into windows in a fixed location.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{loc: loc, now: time.Now}
}

// WithClock returns a copy of the resolver that reads "now" from clock.
func (r *Resolver) WithClock(clock func() time.Time) *Resolver {
	return &Resolver{loc: r.loc, now: clock}
}

func (r *Resolver) Location() *time.Location { return r.loc }

func (r *Resolver) Now() time.Time { return r.now().In(r.loc) }

// Resolve returns the current and previous windows. An explicit range wins
// over kind and gets an equal-length previous window ending the day before
// it starts; a kind selects the calendar unit containing now and the unit
// right before it.
func (r *Resolver) Resolve(kind Kind, explicit *DateRange) (Periods, error) {
	if explicit != nil {
		current, err := r.Range(*explicit)
		if err != nil {
			return Periods{}, err
		}
		return Periods{Current: current, Previous: Preceding(current)}, nil
	}

	now := r.Now()
	switch kind {
	case Week:
		start := startOfDay(now).AddDate(0, 0, -isoWeekday(now))
		return Periods{
			Current:  Window{Start: start, End: endOfDay(start.AddDate(0, 0, 6))},
			Previous: Window{Start: start.AddDate(0, 0, -7), End: start.Add(-time.Nanosecond)},
		}, nil
	case Month:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, r.loc)
		return Periods{
			Current:  Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)},
			Previous: Window{Start: start.AddDate(0, -1, 0), End: start.Add(-time.Nanosecond)},
		}, nil
	case Quarter:
		first := time.Month((int(now.Month())-1)/3*3 + 1)
		start := time.Date(now.Year(), first, 1, 0, 0, 0, 0, r.loc)
		return Periods{
			Current:  Window{Start: start, End: start.AddDate(0, 3, 0).Add(-time.Nanosecond)},
			Previous: Window{Start: start.AddDate(0, -3, 0), End: start.Add(-time.Nanosecond)},
		}, nil
	default:
		return Periods{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKind, kind)
	}
}

// Range converts an explicit date range into a whole-day window.
func (r *Resolver) Range(dr DateRange) (Window, error) {
	start, err := r.ParseDate(dr.StartDate)
	if err != nil {
		return Window{}, err
	}
	end, err := r.ParseDate(dr.EndDate)
	if err != nil {
		return Window{}, err
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidDate, dr.EndDate, dr.StartDate)
	}
	return Window{Start: start, End: endOfDay(end)}, nil
}

// ParseDate parses a YYYY-MM-DD date as midnight in the resolver location.
func (r *Resolver) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, r.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Preceding returns the window of the same number of days that ends on the
// day before w starts.
func Preceding(w Window) Window {
	days := w.Days()
	end := endOfDay(w.Start.AddDate(0, 0, -1))
	start := startOfDay(end.AddDate(0, 0, -(days - 1)))
	return Window{Start: start, End: end}
}

// Segments splits w into SegmentCount contiguous buckets of
// ceil(days/SegmentCount) days each. The last bucket always ends at w.End,
// so it absorbs whatever the first three leave over. Buckets that would
// start past w.End are empty windows positioned right after it.
func Segments(w Window) [SegmentCount]Window {
	var out [SegmentCount]Window
	per := (w.Days() + SegmentCount - 1) / SegmentCount
	after := w.End.Add(time.Nanosecond)
	for i := range SegmentCount {
		start := w.Start.AddDate(0, 0, i*per)
		end := endOfDay(start.AddDate(0, 0, per-1))
		if i == SegmentCount-1 || end.After(w.End) {
			end = w.End
		}
		if start.After(w.End) {
			start = after
		}
		out[i] = Window{Start: start, End: end}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// isoWeekday maps Monday..Sunday to 0..6.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func calendarDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s)/(24*time.Hour)) + 1
}
