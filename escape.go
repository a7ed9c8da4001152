package calendarlink

import (
	"regexp"
	"strings"
)

var (
	textEscaper       = strings.NewReplacer(",", `\,`, ";", `\;`)
	continuationSpace = regexp.MustCompile(`(\\n)[\s\t]+`)
)

// EscapeText prepares free text for a calendar file line: commas and
// semicolons are backslash-escaped, line breaks become a literal \n, and
// indentation after a line break is dropped.
func EscapeText(raw string) string {
	s := textEscaper.Replace(raw)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", `\n`)
	return continuationSpace.ReplaceAllString(s, `$1`)
}
