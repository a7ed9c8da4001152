package calendarlink

import (
	"math"
	"time"

	"github.com/agis/calendar-link/internal/timeparse"
)

// Resolver turns Event start/end fields into instants. The zero value reads
// zone-less timestamps in time.Local and uses time.Now for the fallback end.
type Resolver struct {
	// Location interprets dates and date-times that carry no offset, and is
	// the zone of resolved times when not converting to UTC.
	Location *time.Location
	// Now supplies the end time of events with nothing else to derive it from.
	Now func() time.Time
}

var defaultResolver Resolver

// ResolveEvent resolves ev with the default Resolver.
func ResolveEvent(ev Event, toUTC bool) (ResolvedEvent, error) {
	return defaultResolver.Resolve(ev, toUTC)
}

// Resolve parses the start time and derives the end time, in priority
// order: explicit End, AllDay (one day), Duration, then the current time.
// The end is not checked against the start.
func (r Resolver) Resolve(ev Event, toUTC bool) (ResolvedEvent, error) {
	loc := r.location()
	zone := func(t time.Time) time.Time {
		if toUTC {
			return t.UTC()
		}
		return t.In(loc)
	}

	st, err := timeparse.ParseISO(ev.Start, loc)
	if err != nil {
		return ResolvedEvent{}, &ParseError{Field: "start", Value: ev.Start, Err: err}
	}
	st = zone(st)

	var et time.Time
	switch {
	case ev.End != "":
		et, err = timeparse.ParseISO(ev.End, loc)
		if err != nil {
			return ResolvedEvent{}, &ParseError{Field: "end", Value: ev.End, Err: err}
		}
		et = zone(et)
	case ev.AllDay:
		et = st.AddDate(0, 0, 1)
	case ev.Duration != nil:
		et, err = addDuration(st, *ev.Duration)
		if err != nil {
			return ResolvedEvent{}, err
		}
	default:
		et = zone(r.now())
	}

	return ResolvedEvent{
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		URL:         ev.URL,
		AllDay:      ev.AllDay,
		Busy:        ev.Busy,
		RRule:       ev.RRule,
		Guests:      append([]string(nil), ev.Guests...),
		Organizer:   ev.Organizer,
		StartTime:   st,
		EndTime:     et,
	}, nil
}

func (r Resolver) location() *time.Location {
	if r.Location != nil {
		return r.Location
	}
	return time.Local
}

func (r Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// addDuration offsets t by d. Sub-day units add elapsed time; day and week
// move the calendar date in t's zone; month and longer move the month and
// clamp to the last day of the target month.
func addDuration(t time.Time, d Duration) (time.Time, error) {
	unit, ok := d.Unit.Canonical()
	if !ok {
		return time.Time{}, &ValidationError{Field: "duration", Value: string(d.Unit), Reason: "unknown time unit"}
	}
	switch unit {
	case Millisecond:
		return t.Add(scaled(d.Value, time.Millisecond)), nil
	case Second:
		return t.Add(scaled(d.Value, time.Second)), nil
	case Minute:
		return t.Add(scaled(d.Value, time.Minute)), nil
	case Hour:
		return t.Add(scaled(d.Value, time.Hour)), nil
	case Day:
		return t.AddDate(0, 0, round(d.Value)), nil
	case Week:
		return t.AddDate(0, 0, 7*round(d.Value)), nil
	case Month:
		return addMonths(t, round(d.Value)), nil
	case Quarter:
		return addMonths(t, 3*round(d.Value)), nil
	default:
		return addMonths(t, 12*round(d.Value)), nil
	}
}

func scaled(v float64, unit time.Duration) time.Duration {
	return time.Duration(math.Round(v * float64(unit)))
}

func round(v float64) int {
	return int(math.Round(v))
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
