package calendarlink

import (
	"fmt"
	"net/url"
	"strings"
)

// CalendarFilePrefix starts every data URI produced by CalendarFile.
const CalendarFilePrefix = "data:text/calendar;charset=utf8,"

// icsLine is one property of the calendar file. sep is ':' for plain
// values and ';' when the value starts with parameters.
type icsLine struct {
	key   string
	sep   byte
	value string
}

// CalendarFile returns ev as a calendar file in a data URI.
func CalendarFile(ev Event) (string, error) { return defaultResolver.CalendarFile(ev) }

// CalendarFile encodes each line as KEY:value with the value and its
// trailing newline percent-encoded. Lines with an empty value are skipped.
func (r Resolver) CalendarFile(ev Event) (string, error) {
	e, t, err := r.prepare(ev, true, utcMode)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(CalendarFilePrefix)
	for _, l := range calendarLines(e, t) {
		if l.value == "" {
			continue
		}
		b.WriteString(l.key)
		b.WriteByte(l.sep)
		b.WriteString(componentEscape(l.value + "\n"))
	}
	return b.String(), nil
}

func calendarLines(e ResolvedEvent, t TimePair) []icsLine {
	var organizer string
	if e.Organizer != nil {
		organizer = fmt.Sprintf("CN=%s:MAILTO:%s", e.Organizer.Name, e.Organizer.Email)
	}
	return []icsLine{
		{"BEGIN", ':', "VCALENDAR"},
		{"VERSION", ':', "2.0"},
		{"BEGIN", ':', "VEVENT"},
		{"URL", ':', e.URL},
		{"DTSTART", ':', t.Start},
		{"DTEND", ':', t.End},
		{"RRULE", ':', e.RRule},
		{"SUMMARY", ':', e.Title},
		{"DESCRIPTION", ':', EscapeText(e.Description)},
		{"LOCATION", ':', EscapeText(e.Location)},
		{"ORGANIZER", ';', organizer},
		{"END", ':', "VEVENT"},
		{"END", ':', "VCALENDAR"},
	}
}

// DecodeCalendarFile undoes CalendarFile's encoding and returns the
// newline-terminated calendar text.
func DecodeCalendarFile(uri string) (string, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(uri), CalendarFilePrefix)
	if !ok {
		return "", &ValidationError{Field: "uri", Value: truncate(uri, 40), Reason: "not a text/calendar data URI"}
	}
	text, err := url.PathUnescape(body)
	if err != nil {
		return "", &ParseError{Field: "uri", Value: truncate(uri, 40), Err: err}
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
