// Package calendarlink turns an event description into "add to calendar"
// artifacts: deep links for Google Calendar, Outlook.com, Office 365 and
// Yahoo Calendar, and an inline calendar file carried by a data URI.
//
// Every operation is a pure function of its input, apart from the end time
// of an event that has no end, all-day flag or duration: that one is stamped
// with the current clock, as the links have always done.
package calendarlink

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event is the provider-neutral description of a calendar entry.
// Empty strings mean the field is absent.
type Event struct {
	Title       string     `json:"title" toml:"title"`
	Description string     `json:"description,omitempty" toml:"description"`
	Location    string     `json:"location,omitempty" toml:"location"`
	URL         string     `json:"url,omitempty" toml:"url"`
	Start       string     `json:"start" toml:"start"`
	End         string     `json:"end,omitempty" toml:"end"`
	Duration    *Duration  `json:"duration,omitempty" toml:"duration"`
	AllDay      bool       `json:"allDay,omitempty" toml:"all_day"`
	Busy        *bool      `json:"busy,omitempty" toml:"busy"`
	RRule       string     `json:"rRule,omitempty" toml:"rrule"`
	Guests      []string   `json:"guests,omitempty" toml:"guests"`
	Organizer   *Organizer `json:"organizer,omitempty" toml:"organizer"`
}

type Organizer struct {
	Name  string `json:"name" toml:"name"`
	Email string `json:"email" toml:"email"`
}

// ResolvedEvent is an Event whose start and end have been turned into
// instants. The location of StartTime and EndTime decides how the formatter
// renders them.
type ResolvedEvent struct {
	Title       string
	Description string
	Location    string
	URL         string
	AllDay      bool
	Busy        *bool
	RRule       string
	Guests      []string
	Organizer   *Organizer
	StartTime   time.Time
	EndTime     time.Time
}

// TimeUnit names the unit of a Duration. Values are kept as given so that
// an unknown unit is reported when the end time is computed.
type TimeUnit string

const (
	Millisecond TimeUnit = "millisecond"
	Second      TimeUnit = "second"
	Minute      TimeUnit = "minute"
	Hour        TimeUnit = "hour"
	Day         TimeUnit = "day"
	Week        TimeUnit = "week"
	Month       TimeUnit = "month"
	Quarter     TimeUnit = "quarter"
	Year        TimeUnit = "year"
)

var unitAliases = map[string]TimeUnit{
	"ms": Millisecond,
	"s":  Second,
	"m":  Minute,
	"h":  Hour,
	"d":  Day,
	"w":  Week,
	"M":  Month,
	"Q":  Quarter,
	"y":  Year,
}

// Canonical returns the long singular form of u, accepting the short
// aliases and plurals. ok is false for units the resolver cannot apply.
func (u TimeUnit) Canonical() (TimeUnit, bool) {
	s := strings.TrimSpace(string(u))
	if v, ok := unitAliases[s]; ok {
		return v, true
	}
	s = strings.TrimSuffix(strings.ToLower(s), "s")
	switch TimeUnit(s) {
	case Millisecond, Second, Minute, Hour, Day, Week, Month, Quarter, Year:
		return TimeUnit(s), true
	}
	return u, false
}

// Duration is a value and unit offset from the start, e.g. {2, "hour"}.
type Duration struct {
	Value float64
	Unit  TimeUnit
}

func (d Duration) String() string {
	return strconv.FormatFloat(d.Value, 'f', -1, 64) + " " + string(d.Unit)
}

// ParseDuration reads "2 hour", "2hours", "90m" or "1.5h".
func ParseDuration(s string) (Duration, error) {
	raw := strings.TrimSpace(s)
	i := 0
	for i < len(raw) && (raw[i] == '.' || raw[i] == '-' || raw[i] == '+' || (raw[i] >= '0' && raw[i] <= '9')) {
		i++
	}
	if i == 0 {
		return Duration{}, fmt.Errorf("invalid duration %q", s)
	}
	v, err := strconv.ParseFloat(raw[:i], 64)
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q", s)
	}
	unit := strings.TrimSpace(raw[i:])
	if unit == "" {
		return Duration{}, fmt.Errorf("duration %q has no unit", s)
	}
	return Duration{Value: v, Unit: TimeUnit(unit)}, nil
}

// MarshalJSON writes the tuple form [value, unit].
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{d.Value, string(d.Unit)})
}

// UnmarshalJSON accepts the tuple form, with the value given as a number or
// a numeric string, and the text form accepted by ParseDuration.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		v, err := ParseDuration(text)
		if err != nil {
			return err
		}
		*d = v
		return nil
	}
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return fmt.Errorf("duration must be [value, unit]: %w", err)
	}
	if len(tuple) != 2 {
		return fmt.Errorf("duration must have 2 elements, got %d", len(tuple))
	}
	v, err := coerceNumber(tuple[0])
	if err != nil {
		return err
	}
	var unit string
	if err := json.Unmarshal(tuple[1], &unit); err != nil {
		return fmt.Errorf("duration unit must be a string: %w", err)
	}
	*d = Duration{Value: v, Unit: TimeUnit(unit)}
	return nil
}

// UnmarshalText lets TOML event files write duration = "2 hour".
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func coerceNumber(raw json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("duration value must be a number: %s", raw)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("duration value must be a number: %q", s)
	}
	return n, nil
}
