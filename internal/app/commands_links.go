package app

import (
	"errors"
	"fmt"

	calendarlink "github.com/agis/calendar-link"
	"github.com/agis/calendar-link/internal/contract"
	"github.com/agis/calendar-link/internal/output"
	"github.com/spf13/cobra"
)

type linkProvider struct {
	provider calendarlink.Provider
	use      string
	short    string
	aliases  []string
}

var linkProviders = []linkProvider{
	{calendarlink.ProviderGoogle, "google", "Build a Google Calendar link", []string{"gcal"}},
	{calendarlink.ProviderOutlook, "outlook", "Build an Outlook.com link", nil},
	{calendarlink.ProviderOffice365, "office365", "Build an Office 365 link", []string{"office", "o365"}},
	{calendarlink.ProviderYahoo, "yahoo", "Build a Yahoo Calendar link", nil},
}

func newLinkCmd(opts *globalOptions, lp linkProvider) *cobra.Command {
	ef := &eventFlags{}
	cmd := &cobra.Command{
		Use:     lp.use,
		Aliases: lp.aliases,
		Short:   lp.short,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			p, ro, err := buildContext(c, opts, lp.use)
			if err != nil {
				return err
			}
			ev, err := ef.event(c, ro)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Pass --start and optionally --end, --duration or --all-day", 2)
			}
			u, err := resolverFor(ro).Build(lp.provider, ev)
			if err != nil {
				return failBuild(p, err)
			}
			return printLink(c, p, contract.Link{Provider: string(lp.provider), URL: u})
		},
	}
	ef.bind(cmd)
	return cmd
}

func newLinksCmd(opts *globalOptions) *cobra.Command {
	ef := &eventFlags{}
	var only []string
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Build links for every provider",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			p, ro, err := buildContext(c, opts, "links")
			if err != nil {
				return err
			}
			providers, err := selectProviders(only)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Run `calendar-link providers` for valid names", 2)
			}
			ev, err := ef.event(c, ro)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Pass --start and optionally --end, --duration or --all-day", 2)
			}
			links, err := buildLinks(resolverFor(ro), providers, ev)
			if err != nil {
				return failBuild(p, err)
			}
			return printLinks(c, p, links)
		},
	}
	ef.bind(cmd)
	cmd.Flags().StringSliceVar(&only, "provider", nil, "Restrict to providers (repeatable)")
	return cmd
}

// resolverFor reads zone-less times in the configured zone.
func resolverFor(ro *globalOptions) calendarlink.Resolver {
	return calendarlink.Resolver{Location: resolveLocation(ro.TZ), Now: clock}
}

func selectProviders(names []string) ([]calendarlink.Provider, error) {
	if len(names) == 0 {
		return calendarlink.Providers(), nil
	}
	out := make([]calendarlink.Provider, 0, len(names))
	for _, name := range names {
		pr, err := calendarlink.ParseProvider(name)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, nil
}

func buildLinks(r calendarlink.Resolver, providers []calendarlink.Provider, ev calendarlink.Event) ([]contract.Link, error) {
	links := make([]contract.Link, 0, len(providers))
	for _, pr := range providers {
		u, err := r.Build(pr, ev)
		if err != nil {
			return nil, err
		}
		links = append(links, contract.Link{Provider: string(pr), URL: u})
	}
	return links, nil
}

func printLinks(c *cobra.Command, p output.Printer, links []contract.Link) error {
	if p.EffectiveSuccessMode() == output.ModePlain && len(p.Fields) == 0 {
		for _, l := range links {
			if _, err := fmt.Fprintf(c.OutOrStdout(), "%s\t%s\n", l.Provider, l.URL); err != nil {
				return err
			}
		}
		return nil
	}
	return p.Success(links, map[string]any{"count": len(links)}, nil)
}

func printLink(c *cobra.Command, p output.Printer, l contract.Link) error {
	if p.EffectiveSuccessMode() == output.ModePlain && len(p.Fields) == 0 {
		_, err := fmt.Fprintln(c.OutOrStdout(), l.URL)
		return err
	}
	return p.Success(l, nil, nil)
}

// failBuild maps library errors to exit code 2; anything else is generic.
func failBuild(p output.Printer, err error) error {
	var pe *calendarlink.ParseError
	if errors.As(err, &pe) {
		return failWithHint(p, contract.ErrInvalidUsage, err, "Use YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC3339", 2)
	}
	var ve *calendarlink.ValidationError
	if errors.As(err, &ve) {
		return failWithHint(p, contract.ErrValidationFailed, err, validationHint(ve), 2)
	}
	return failWithHint(p, contract.ErrGeneric, err, "", 1)
}

func validationHint(ve *calendarlink.ValidationError) string {
	switch ve.Field {
	case "duration":
		return "Use a unit such as minute, hour, day, week, month or year"
	case "provider":
		return "Run `calendar-link providers` for valid names"
	default:
		return ""
	}
}
