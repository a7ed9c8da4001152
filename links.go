package calendarlink

import "strings"

const (
	googleBase    = "https://calendar.google.com/calendar/render?"
	outlookBase   = "https://outlook.live.com/calendar/0/deeplink/compose?"
	office365Base = "https://outlook.office.com/calendar/0/deeplink/compose?"
	yahooBase     = "https://calendar.yahoo.com/?"
)

// Google returns a Google Calendar template link for ev.
func Google(ev Event) (string, error) { return defaultResolver.Google(ev) }

// Outlook returns an Outlook.com compose link for ev.
func Outlook(ev Event) (string, error) { return defaultResolver.Outlook(ev) }

// Office365 returns an Office 365 compose link for ev.
func Office365(ev Event) (string, error) { return defaultResolver.Office365(ev) }

// Yahoo returns a Yahoo Calendar link for ev.
func Yahoo(ev Event) (string, error) { return defaultResolver.Yahoo(ev) }

func (r Resolver) Google(ev Event) (string, error) {
	e, t, err := r.prepare(ev, true, utcMode)
	if err != nil {
		return "", err
	}
	fields := []field{
		always("action", "TEMPLATE"),
		opt("text", e.Title),
		opt("details", e.Description),
		opt("location", e.Location),
		optBool("trp", e.Busy),
		always("dates", t.Start+"/"+t.End),
		opt("add", strings.Join(e.Guests, ",")),
	}
	if e.RRule != "" {
		fields = append(fields, always("recur", "RRULE:"+e.RRule))
	}
	return googleBase + encodeQuery(fields), nil
}

func (r Resolver) Outlook(ev Event) (string, error) {
	return r.outlookCompose(outlookBase, ev)
}

func (r Resolver) Office365(ev Event) (string, error) {
	return r.outlookCompose(office365Base, ev)
}

// outlookCompose builds the deeplink shared by Outlook.com and Office 365.
// Both take wall-clock times in the resolver's location.
func (r Resolver) outlookCompose(base string, ev Event) (string, error) {
	e, t, err := r.prepare(ev, false, func(ResolvedEvent) FormatMode { return DateTimeLocal })
	if err != nil {
		return "", err
	}
	fields := []field{
		always("path", "/calendar/action/compose"),
		always("rru", "addevent"),
		always("startdt", t.Start),
		always("enddt", t.End),
		opt("subject", e.Title),
		opt("body", e.Description),
		opt("location", e.Location),
		optBool("allday", &e.AllDay),
	}
	return base + encodeQuery(fields), nil
}

func (r Resolver) Yahoo(ev Event) (string, error) {
	e, t, err := r.prepare(ev, true, utcMode)
	if err != nil {
		return "", err
	}
	dur := "false"
	if e.AllDay {
		dur = "allday"
	}
	fields := []field{
		always("v", "60"),
		opt("title", e.Title),
		always("st", t.Start),
		always("et", t.End),
		opt("desc", e.Description),
		opt("in_loc", e.Location),
		always("dur", dur),
	}
	return yahooBase + encodeQuery(fields), nil
}

// prepare resolves ev under the given zone policy and formats its times
// with the mode chosen for the resolved event.
func (r Resolver) prepare(ev Event, toUTC bool, mode func(ResolvedEvent) FormatMode) (ResolvedEvent, TimePair, error) {
	e, err := r.Resolve(ev, toUTC)
	if err != nil {
		return ResolvedEvent{}, TimePair{}, err
	}
	t, err := FormatTimes(e, mode(e))
	if err != nil {
		return ResolvedEvent{}, TimePair{}, err
	}
	return e, t, nil
}
