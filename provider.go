package calendarlink

import "strings"

// Provider names a link target.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderOutlook   Provider = "outlook"
	ProviderOffice365 Provider = "office365"
	ProviderYahoo     Provider = "yahoo"
	ProviderICS       Provider = "ics"
)

// Link pairs a provider with the artifact built for it.
type Link struct {
	Provider Provider `json:"provider"`
	URL      string   `json:"url"`
}

// Providers lists every provider in a stable order.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderOutlook, ProviderOffice365, ProviderYahoo, ProviderICS}
}

// ParseProvider maps a case-insensitive name or alias to a Provider.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "google", "gcal":
		return ProviderGoogle, nil
	case "outlook", "outlook.com":
		return ProviderOutlook, nil
	case "office365", "office", "o365":
		return ProviderOffice365, nil
	case "yahoo":
		return ProviderYahoo, nil
	case "ics", "ical", "calendar-file":
		return ProviderICS, nil
	default:
		return "", &ValidationError{Field: "provider", Value: name, Reason: "unknown provider"}
	}
}

func (r Resolver) builder(p Provider) (func(Event) (string, error), error) {
	switch p {
	case ProviderGoogle:
		return r.Google, nil
	case ProviderOutlook:
		return r.Outlook, nil
	case ProviderOffice365:
		return r.Office365, nil
	case ProviderYahoo:
		return r.Yahoo, nil
	case ProviderICS:
		return r.CalendarFile, nil
	default:
		return nil, &ValidationError{Field: "provider", Value: string(p), Reason: "unknown provider"}
	}
}

// Build dispatches ev to the builder of p.
func Build(p Provider, ev Event) (string, error) { return defaultResolver.Build(p, ev) }

// BuildAll builds ev for every provider. It fails on the first error.
func BuildAll(ev Event) ([]Link, error) { return defaultResolver.BuildAll(ev) }

func (r Resolver) Build(p Provider, ev Event) (string, error) {
	fn, err := r.builder(p)
	if err != nil {
		return "", err
	}
	return fn(ev)
}

func (r Resolver) BuildAll(ev Event) ([]Link, error) {
	out := make([]Link, 0, len(Providers()))
	for _, p := range Providers() {
		u, err := r.Build(p, ev)
		if err != nil {
			return nil, err
		}
		out = append(out, Link{Provider: p, URL: u})
	}
	return out, nil
}
