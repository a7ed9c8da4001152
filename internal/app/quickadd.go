package app

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	calendarlink "github.com/agis/calendar-link"
	"github.com/agis/calendar-link/internal/contract"
	"github.com/agis/calendar-link/internal/timeparse"
	"github.com/spf13/cobra"
)

var clockRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

func newQuickCmd(opts *globalOptions) *cobra.Command {
	var duration string
	var allDay bool
	var dryRun bool
	var only []string
	cmd := &cobra.Command{
		Use:   "quick <text>",
		Short: "Build links from natural text, e.g. \"tomorrow 10:00 Standup @Room 4 30m\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			p, ro, err := buildContext(c, opts, "quick")
			if err != nil {
				return err
			}
			loc := resolveLocation(ro.TZ)
			defaultDuration := time.Hour
			if strings.TrimSpace(duration) != "" {
				parsed, err := time.ParseDuration(duration)
				if err != nil || parsed <= 0 {
					return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("invalid --duration: %q", duration), "Use a positive Go duration like 30m or 1h", 2)
				}
				defaultDuration = parsed
			}
			ev, err := parseQuickInput(args[0], clock(), loc, defaultDuration, allDay)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, `Example: calendar-link quick "tomorrow 10:00 Standup @Room 4 30m"`, 2)
			}
			applyEventDefaults(&ev, ro)
			if dryRun {
				return p.Success(ev, map[string]any{"dry_run": true}, nil)
			}
			providers, err := selectProviders(only)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Run `calendar-link providers` for valid names", 2)
			}
			links, err := buildLinks(resolverFor(ro), providers, ev)
			if err != nil {
				return failBuild(p, err)
			}
			if len(links) == 1 {
				return printLink(c, p, links[0])
			}
			return printLinks(c, p, links)
		},
	}
	cmd.Flags().StringVar(&duration, "duration", "1h", "Default duration if missing in text")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day event")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the parsed event instead of links")
	cmd.Flags().StringSliceVar(&only, "provider", nil, "Restrict to providers (repeatable)")
	return cmd
}

// parseQuickInput reads "<day> <HH:MM> <title words> [@location words] [duration]".
// The first @token starts the location, which runs to the end of the text
// apart from a duration token.
func parseQuickInput(input string, now time.Time, loc *time.Location, defaultDuration time.Duration, allDay bool) (calendarlink.Event, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return calendarlink.Event{}, fmt.Errorf("input is required")
	}
	tokens := strings.Fields(text)
	start, consumed, hasTime, err := parseQuickStart(tokens, now, loc)
	if err != nil {
		return calendarlink.Event{}, err
	}
	if consumed >= len(tokens) {
		return calendarlink.Event{}, fmt.Errorf("missing title")
	}
	duration := defaultDuration
	var titleParts, locationParts []string
	inLocation := false
	for _, tok := range tokens[consumed:] {
		if d, ok := parseQuickDuration(tok); ok {
			duration = d
			continue
		}
		if !inLocation && strings.HasPrefix(tok, "@") && len(tok) > 1 {
			inLocation = true
			tok = tok[1:]
		}
		if inLocation {
			locationParts = append(locationParts, tok)
			continue
		}
		titleParts = append(titleParts, tok)
	}
	title := strings.Join(titleParts, " ")
	if title == "" {
		return calendarlink.Event{}, fmt.Errorf("missing title")
	}
	if !allDay && !hasTime {
		return calendarlink.Event{}, fmt.Errorf("missing time; include HH:MM or use --all-day")
	}
	ev := calendarlink.Event{Title: title, Location: strings.Join(locationParts, " ")}
	if allDay {
		ev.Start = start.Format("2006-01-02")
		ev.AllDay = true
		return ev, nil
	}
	ev.Start = start.Format(time.RFC3339)
	ev.Duration = &calendarlink.Duration{Value: duration.Minutes(), Unit: calendarlink.Minute}
	return ev, nil
}

func parseQuickStart(tokens []string, now time.Time, loc *time.Location) (time.Time, int, bool, error) {
	if len(tokens) == 0 {
		return time.Time{}, 0, false, fmt.Errorf("missing date/time")
	}
	if len(tokens) >= 2 && isDayToken(tokens[0]) && clockRe.MatchString(tokens[1]) {
		day, err := timeparse.ParseDateTime(tokens[0], now, loc)
		if err != nil {
			return time.Time{}, 0, false, fmt.Errorf("invalid day: %w", err)
		}
		hour, minute, err := parseClock(tokens[1])
		if err != nil {
			return time.Time{}, 0, false, err
		}
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), 2, true, nil
	}
	if clockRe.MatchString(tokens[0]) {
		hour, minute, err := parseClock(tokens[0])
		if err != nil {
			return time.Time{}, 0, false, err
		}
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, hour, minute, 0, 0, loc), 1, true, nil
	}
	ts, err := timeparse.ParseDateTime(tokens[0], now, loc)
	if err != nil {
		return time.Time{}, 0, false, fmt.Errorf("invalid date/time: %s", tokens[0])
	}
	return ts, 1, strings.Contains(tokens[0], ":"), nil
}

func parseClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid time: %s", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time: %s", s)
	}
	return hour, minute, nil
}

func parseQuickDuration(token string) (time.Duration, bool) {
	d, err := time.ParseDuration(token)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func isDayToken(token string) bool {
	if timeparse.IsRelative(token) {
		return true
	}
	_, err := time.Parse("2006-01-02", token)
	return err == nil
}
