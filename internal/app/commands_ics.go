package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	calendarlink "github.com/agis/calendar-link"
	"github.com/agis/calendar-link/internal/contract"
	"github.com/agis/calendar-link/internal/output"
	ical "github.com/arran4/golang-ical"
	"github.com/spf13/cobra"
)

func newICSCmd(opts *globalOptions) *cobra.Command {
	ef := &eventFlags{}
	var outPath string
	cmd := &cobra.Command{
		Use:     "ics",
		Aliases: []string{"ical", "calendar-file"},
		Short:   "Build a calendar file as a data URI",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			p, ro, err := buildContext(c, opts, "ics")
			if err != nil {
				return err
			}
			ev, err := ef.event(c, ro)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Pass --start and optionally --end, --duration or --all-day", 2)
			}
			uri, err := resolverFor(ro).CalendarFile(ev)
			if err != nil {
				return failBuild(p, err)
			}
			if strings.TrimSpace(outPath) != "" {
				text, derr := calendarlink.DecodeCalendarFile(uri)
				if derr != nil {
					return failWithHint(p, contract.ErrGeneric, derr, "", 1)
				}
				if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
					return failWithHint(p, contract.ErrGeneric, err, "Check destination path permissions", 1)
				}
				return p.Success(map[string]any{"path": outPath, "url": uri}, map[string]any{"bytes": len(text)}, nil)
			}
			return printLink(c, p, contract.Link{Provider: string(calendarlink.ProviderICS), URL: uri})
		},
	}
	ef.bind(cmd)
	cmd.Flags().StringVar(&outPath, "out", "", "Also write the decoded calendar file to this path")
	return cmd
}

func newInspectCmd(opts *globalOptions) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "inspect [data-uri]",
		Short: "Decode a calendar data URI and show its events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			p, _, err := buildContext(c, opts, "inspect")
			if err != nil {
				return err
			}
			var uri string
			switch {
			case len(args) == 1:
				uri = args[0]
			case strings.TrimSpace(filePath) != "":
				raw, rerr := readTextInput(filePath)
				if rerr != nil {
					return failWithHint(p, contract.ErrInvalidUsage, rerr, "Check --file path or stdin data", 2)
				}
				uri = string(raw)
			default:
				return failWithHint(p, contract.ErrInvalidUsage, errors.New("missing data URI"), "Pass the URI as an argument or --file <path>", 2)
			}
			text, err := calendarlink.DecodeCalendarFile(uri)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Expected a URI starting with "+calendarlink.CalendarFilePrefix, 2)
			}
			events, err := parseCalendarText(text)
			if err != nil {
				return failWithHint(p, contract.ErrValidationFailed, err, "The decoded body is not a valid calendar", 2)
			}
			if p.EffectiveSuccessMode() == output.ModePlain && len(p.Fields) == 0 {
				_, err := fmt.Fprint(c.OutOrStdout(), text)
				return err
			}
			return p.Success(events, map[string]any{"count": len(events)}, nil)
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "Read the data URI from a file, - for stdin")
	return cmd
}

func parseCalendarText(text string) ([]contract.CalendarEvent, error) {
	cal, err := ical.ParseCalendar(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	out := make([]contract.CalendarEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev := contract.CalendarEvent{
			Summary:     propValue(ve, ical.ComponentPropertySummary),
			Start:       propValue(ve, ical.ComponentPropertyDtStart),
			End:         propValue(ve, ical.ComponentPropertyDtEnd),
			Description: propValue(ve, ical.ComponentPropertyDescription),
			Location:    propValue(ve, ical.ComponentPropertyLocation),
			URL:         propValue(ve, ical.ComponentPropertyUrl),
			RRule:       propValue(ve, ical.ComponentPropertyRrule),
		}
		if org := ve.GetProperty(ical.ComponentPropertyOrganizer); org != nil {
			ev.Organizer = strings.TrimPrefix(org.Value, "MAILTO:")
			if cn := org.ICalParameters["CN"]; len(cn) > 0 {
				ev.Organizer = fmt.Sprintf("%s <%s>", cn[0], ev.Organizer)
			}
		}
		out = append(out, ev)
	}
	return out, nil
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}
