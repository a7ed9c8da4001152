package app

import (
	"fmt"
	"strings"
	"time"

	calendarlink "github.com/agis/calendar-link"
	"github.com/agis/calendar-link/internal/contract"
	"github.com/agis/calendar-link/internal/output"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newResolveCmd(opts *globalOptions) *cobra.Command {
	ef := &eventFlags{}
	var local bool
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the start and end times the builders would use",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			p, ro, err := buildContext(c, opts, "resolve")
			if err != nil {
				return err
			}
			ev, err := ef.event(c, ro)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Pass --start and optionally --end, --duration or --all-day", 2)
			}
			r, err := resolverFor(ro).Resolve(ev, !local)
			if err != nil {
				return failBuild(p, err)
			}
			res := contract.ResolvedTimes{
				Title:  r.Title,
				Start:  r.StartTime,
				End:    r.EndTime,
				AllDay: r.AllDay,
				UTC:    !local,
				Span:   span(r.StartTime, r.EndTime),
				EndBy:  endSource(ev),
			}
			var warnings []string
			if res.EndBy == "now" {
				warnings = append(warnings, "no end, all-day flag or duration; end time is the current time")
			}
			if r.EndTime.Before(r.StartTime) {
				warnings = append(warnings, "end is before start")
			}
			if p.EffectiveSuccessMode() == output.ModePlain && len(p.Fields) == 0 {
				_, err := fmt.Fprintf(c.OutOrStdout(), "%s\t%s\t%s\n", res.Start.Format(time.RFC3339), res.End.Format(time.RFC3339), res.Span)
				return err
			}
			return p.Success(res, nil, warnings)
		},
	}
	ef.bind(cmd)
	cmd.Flags().BoolVar(&local, "local", false, "Resolve in the local zone (Outlook/Office 365 policy)")
	return cmd
}

// endSource names the rule that produced the end time.
func endSource(ev calendarlink.Event) string {
	switch {
	case ev.End != "":
		return "end"
	case ev.AllDay:
		return "all_day"
	case ev.Duration != nil:
		return "duration"
	default:
		return "now"
	}
}

func span(start, end time.Time) string {
	if end.Equal(start) {
		return "0 seconds"
	}
	return strings.TrimSpace(humanize.RelTime(start, end, "", ""))
}
