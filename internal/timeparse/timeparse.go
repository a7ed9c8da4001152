package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts without a zone are interpreted in the caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

const dateOnlyLayout = "2006-01-02"

// ParseISO parses an ISO-8601 date or date-time. Values carrying an offset
// keep their instant; all other values are read in loc.
func ParseISO(input string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if loc == nil {
		loc = time.Local
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported datetime format: %s", input)
}

// IsDateOnly reports whether input is a bare calendar date.
func IsDateOnly(input string) bool {
	_, err := time.Parse(dateOnlyLayout, strings.TrimSpace(input))
	return err == nil
}

// ParseDateTime extends ParseISO with the relative keywords accepted on the
// command line: today, tomorrow, yesterday and +Nd/-Nd.
func ParseDateTime(input string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}

	switch s {
	case "today":
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	case "tomorrow":
		v, _ := ParseDateTime("today", now, loc)
		return v.AddDate(0, 0, 1), nil
	case "yesterday":
		v, _ := ParseDateTime("today", now, loc)
		return v.AddDate(0, 0, -1), nil
	}

	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		sign := 1
		if strings.HasPrefix(s, "-") {
			sign = -1
		}
		raw := strings.TrimPrefix(strings.TrimPrefix(s, "+"), "-")
		if strings.HasSuffix(raw, "d") {
			n, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid relative day: %s", input)
			}
			v, _ := ParseDateTime("today", now, loc)
			return v.AddDate(0, 0, sign*n), nil
		}
	}

	return ParseISO(input, loc)
}

// IsRelative reports whether input is one of the keywords ParseDateTime
// resolves against the clock rather than an absolute timestamp.
func IsRelative(input string) bool {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "today", "tomorrow", "yesterday":
		return true
	}
	if len(s) > 2 && (s[0] == '+' || s[0] == '-') && strings.HasSuffix(s, "d") {
		_, err := strconv.Atoi(s[1 : len(s)-1])
		return err == nil
	}
	return false
}
