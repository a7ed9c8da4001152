package calendarlink

import "fmt"

// ParseError reports a timestamp field that could not be read as an
// ISO-8601 date or date-time.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("calendarlink: parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a value that parsed but is not one the builders
// know how to apply, such as an unknown duration unit.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("calendarlink: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
