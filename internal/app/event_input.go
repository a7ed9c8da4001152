package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	calendarlink "github.com/agis/calendar-link"
	"github.com/agis/calendar-link/internal/timeparse"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// eventFlags are the event fields shared by every build command.
type eventFlags struct {
	File           string
	Title          string
	Description    string
	Location       string
	URL            string
	Start          string
	End            string
	Duration       string
	AllDay         bool
	Busy           bool
	RRule          string
	Repeat         string
	Guests         []string
	OrganizerName  string
	OrganizerEmail string
}

func (f *eventFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.File, "file", "", "Event file (JSON or TOML), - for stdin")
	fs.StringVar(&f.Title, "title", "", "Event title")
	fs.StringVar(&f.Description, "description", "", "Event description")
	fs.StringVar(&f.Location, "location", "", "Event location")
	fs.StringVar(&f.URL, "url", "", "Event URL (calendar file only)")
	fs.StringVar(&f.Start, "start", "", "Start date or date-time (YYYY-MM-DD, YYYY-MM-DDTHH:MM, RFC3339, today, +Nd)")
	fs.StringVar(&f.End, "end", "", "End date or date-time")
	fs.StringVar(&f.Duration, "duration", "", "Duration when --end is absent (2h, 90m, \"2 hour\")")
	fs.BoolVar(&f.AllDay, "all-day", false, "All-day event")
	fs.BoolVar(&f.Busy, "busy", false, "Show as busy (Google); omitted unless passed")
	fs.StringVar(&f.RRule, "rrule", "", "Raw recurrence rule, e.g. FREQ=WEEKLY;BYDAY=MO")
	fs.StringVar(&f.Repeat, "repeat", "", "Repeat shorthand: daily|weekly[:mon,wed]|monthly|yearly[*count]")
	fs.StringSliceVar(&f.Guests, "guest", nil, "Guest email (repeatable, Google only)")
	fs.StringVar(&f.OrganizerName, "organizer-name", "", "Organizer name (calendar file only)")
	fs.StringVar(&f.OrganizerEmail, "organizer-email", "", "Organizer email (calendar file only)")
}

// event assembles the event from the optional file, then flags, then
// config defaults for fields still unset.
func (f *eventFlags) event(cmd *cobra.Command, ro *globalOptions) (calendarlink.Event, error) {
	var ev calendarlink.Event
	if strings.TrimSpace(f.File) != "" {
		loaded, err := loadEventFile(f.File)
		if err != nil {
			return ev, err
		}
		ev = loaded
	}

	set := func(name string, dst *string, v string) {
		if flagValueChanged(cmd, name) {
			*dst = v
		}
	}
	set("title", &ev.Title, f.Title)
	set("description", &ev.Description, f.Description)
	set("location", &ev.Location, f.Location)
	set("url", &ev.URL, f.URL)
	set("rrule", &ev.RRule, f.RRule)
	if flagValueChanged(cmd, "start") {
		ev.Start = f.Start
	}
	if flagValueChanged(cmd, "end") {
		ev.End = f.End
	}
	if flagValueChanged(cmd, "all-day") {
		ev.AllDay = f.AllDay
	}
	if flagValueChanged(cmd, "busy") {
		busy := f.Busy
		ev.Busy = &busy
	}
	if flagValueChanged(cmd, "guest") {
		ev.Guests = f.Guests
	}
	if flagValueChanged(cmd, "duration") {
		d, err := calendarlink.ParseDuration(f.Duration)
		if err != nil {
			return ev, err
		}
		ev.Duration = &d
	}
	if flagValueChanged(cmd, "organizer-name") || flagValueChanged(cmd, "organizer-email") {
		org := calendarlink.Organizer{}
		if ev.Organizer != nil {
			org = *ev.Organizer
		}
		set("organizer-name", &org.Name, f.OrganizerName)
		set("organizer-email", &org.Email, f.OrganizerEmail)
		ev.Organizer = &org
	}

	if strings.TrimSpace(ev.Start) == "" {
		return ev, errors.New("missing --start")
	}
	loc := resolveLocation(ro.TZ)
	if timeparse.IsRelative(ev.Start) {
		st, err := timeparse.ParseDateTime(ev.Start, clock(), loc)
		if err != nil {
			return ev, err
		}
		ev.Start = st.Format("2006-01-02")
	}
	if timeparse.IsRelative(ev.End) {
		et, err := timeparse.ParseDateTime(ev.End, clock(), loc)
		if err != nil {
			return ev, err
		}
		ev.End = et.Format("2006-01-02")
	}

	if strings.TrimSpace(f.Repeat) != "" {
		if ev.RRule != "" {
			return ev, errors.New("use either --rrule or --repeat, not both")
		}
		anchor, err := timeparse.ParseISO(ev.Start, loc)
		if err != nil {
			return ev, err
		}
		rule, err := composeRRule(f.Repeat, anchor)
		if err != nil {
			return ev, err
		}
		ev.RRule = rule
	}

	applyEventDefaults(&ev, ro)
	return ev, nil
}

// applyEventDefaults fills gaps from config: a default duration for events
// that would otherwise end at the current time, and a default organizer.
func applyEventDefaults(ev *calendarlink.Event, ro *globalOptions) {
	if ev.End == "" && !ev.AllDay && ev.Duration == nil && ro.DefaultDuration != "" {
		if d, err := calendarlink.ParseDuration(ro.DefaultDuration); err == nil {
			ev.Duration = &d
		}
	}
	if ev.Organizer == nil && ro.OrganizerEmail != "" {
		ev.Organizer = &calendarlink.Organizer{Name: ro.OrganizerName, Email: ro.OrganizerEmail}
	}
}

func loadEventFile(path string) (calendarlink.Event, error) {
	raw, err := readTextInput(path)
	if err != nil {
		return calendarlink.Event{}, err
	}
	return decodeEvent(raw, filepath.Ext(path))
}

// decodeEvent reads JSON when the content looks like an object or the
// extension says so, TOML otherwise.
func decodeEvent(raw []byte, ext string) (calendarlink.Event, error) {
	var ev calendarlink.Event
	trimmed := strings.TrimSpace(string(raw))
	if strings.EqualFold(ext, ".json") || strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(raw, &ev); err != nil {
			return ev, fmt.Errorf("invalid JSON event: %w", err)
		}
		return ev, nil
	}
	if err := toml.Unmarshal(raw, &ev); err != nil {
		return ev, fmt.Errorf("invalid TOML event: %w", err)
	}
	return ev, nil
}
