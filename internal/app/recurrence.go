package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

type repeatSpec struct {
	Frequency string
	Weekdays  []time.Weekday
	Count     int
}

func parseRepeatSpec(v string, anchor time.Time) (repeatSpec, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" {
		return repeatSpec{}, nil
	}
	count := 0
	if strings.Contains(s, "*") {
		parts := strings.SplitN(s, "*", 2)
		s = strings.TrimSpace(parts[0])
		n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || n <= 0 {
			return repeatSpec{}, fmt.Errorf("invalid repeat count")
		}
		count = n
	}
	sp := repeatSpec{Count: count}
	left := s
	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		left = strings.TrimSpace(parts[0])
		if left != "weekly" {
			return repeatSpec{}, fmt.Errorf("weekdays are only valid with weekly repeat")
		}
		ws, err := parseWeekdays(strings.TrimSpace(parts[1]))
		if err != nil {
			return repeatSpec{}, err
		}
		sp.Weekdays = ws
	}
	sp.Frequency = left
	if sp.Frequency == "weekly" && len(sp.Weekdays) == 0 {
		sp.Weekdays = []time.Weekday{anchor.Weekday()}
	}
	switch sp.Frequency {
	case "daily", "weekly", "monthly", "yearly":
		return sp, nil
	default:
		return repeatSpec{}, fmt.Errorf("unsupported --repeat frequency: %s", sp.Frequency)
	}
}

var rruleFrequencies = map[string]rrule.Frequency{
	"daily":   rrule.DAILY,
	"weekly":  rrule.WEEKLY,
	"monthly": rrule.MONTHLY,
	"yearly":  rrule.YEARLY,
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// composeRRule turns the --repeat shorthand into an RRULE value without
// the RRULE: prefix. Without a count the rule is open-ended.
func composeRRule(v string, anchor time.Time) (string, error) {
	spec, err := parseRepeatSpec(v, anchor)
	if err != nil {
		return "", err
	}
	opt := rrule.ROption{Freq: rruleFrequencies[spec.Frequency], Count: spec.Count}
	for _, wd := range spec.Weekdays {
		opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", err
	}
	return opt.RRuleString(), nil
}

func parseWeekdays(v string) ([]time.Weekday, error) {
	parts := strings.Split(v, ",")
	out := make([]time.Weekday, 0, len(parts))
	seen := map[time.Weekday]bool{}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		wd, err := parseWeekdayToken(p)
		if err != nil {
			return nil, err
		}
		if !seen[wd] {
			out = append(out, wd)
			seen[wd] = true
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("weekly repeat requires weekdays")
	}
	return out, nil
}

func parseWeekdayToken(v string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "mon", "monday":
		return time.Monday, nil
	case "tue", "tues", "tuesday":
		return time.Tuesday, nil
	case "wed", "wednesday":
		return time.Wednesday, nil
	case "thu", "thurs", "thursday":
		return time.Thursday, nil
	case "fri", "friday":
		return time.Friday, nil
	case "sat", "saturday":
		return time.Saturday, nil
	case "sun", "sunday":
		return time.Sunday, nil
	default:
		return time.Sunday, fmt.Errorf("invalid weekday: %s", v)
	}
}
