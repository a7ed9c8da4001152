package calendarlink

import "fmt"

// FormatMode selects the textual layout of a resolved time pair.
type FormatMode int

const (
	// DateTimeUTC renders 20191229T120000Z. The Z is literal: the times
	// must already be in UTC.
	DateTimeUTC FormatMode = iota
	// AllDayDate renders 20191229.
	AllDayDate
	// DateTimeLocal renders 2019-12-29T12:00:00 without a zone suffix.
	DateTimeLocal
)

var layouts = map[FormatMode]string{
	DateTimeUTC:   "20060102T150405Z",
	AllDayDate:    "20060102",
	DateTimeLocal: "2006-01-02T15:04:05",
}

func (m FormatMode) String() string {
	switch m {
	case DateTimeUTC:
		return "dateTimeUTC"
	case AllDayDate:
		return "allDay"
	case DateTimeLocal:
		return "dateTimeLocal"
	default:
		return fmt.Sprintf("FormatMode(%d)", int(m))
	}
}

type TimePair struct {
	Start string
	End   string
}

// FormatTimes renders both ends of r with the same layout. No zone
// conversion takes place.
func FormatTimes(r ResolvedEvent, mode FormatMode) (TimePair, error) {
	layout, ok := layouts[mode]
	if !ok {
		return TimePair{}, &ValidationError{Field: "format", Value: mode.String(), Reason: "unknown format mode"}
	}
	return TimePair{Start: r.StartTime.Format(layout), End: r.EndTime.Format(layout)}, nil
}

// utcMode is the policy of the providers that take UTC times.
func utcMode(r ResolvedEvent) FormatMode {
	if r.AllDay {
		return AllDayDate
	}
	return DateTimeUTC
}
