package contract

import "time"

const SchemaVersion = "v1"

type ErrorCode string

const (
	ErrGeneric          ErrorCode = "GENERIC_FAILURE"
	ErrInvalidUsage     ErrorCode = "INVALID_USAGE"
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"
)

type ErrorEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Error         ErrorBody      `json:"error"`
	Meta          map[string]any `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
}

type SuccessEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Command       string         `json:"command"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Data          any            `json:"data"`
	Meta          map[string]any `json:"meta"`
	Warnings      []string       `json:"warnings"`
}

// Link is one generated artifact.
type Link struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// ResolvedTimes reports the start/end pair the builders would use.
type ResolvedTimes struct {
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`
	UTC    bool      `json:"utc"`
	Span   string    `json:"span"`
	EndBy  string    `json:"end_by"`
}

// CalendarEvent is a VEVENT read back from a calendar file.
type CalendarEvent struct {
	Summary     string `json:"summary"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	URL         string `json:"url,omitempty"`
	RRule       string `json:"rrule,omitempty"`
	Organizer   string `json:"organizer,omitempty"`
}

type ProviderInfo struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Output  string   `json:"output"`
	Times   string   `json:"times"`
}
