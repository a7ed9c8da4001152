package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	calendarlink "github.com/agis/calendar-link"
	"github.com/agis/calendar-link/internal/contract"
)

func TestICSCommandPlain(t *testing.T) {
	out, _, err := runCLI(t, "ics", "--title", "Birthday party", "--start", "2019-12-29", "--duration", "2 hour", "--tz", "UTC", "--plain")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	want := "data:text/calendar;charset=utf8," +
		"BEGIN:VCALENDAR%0A" +
		"VERSION:2.0%0A" +
		"BEGIN:VEVENT%0A" +
		"DTSTART:20191229T000000Z%0A" +
		"DTEND:20191229T020000Z%0A" +
		"SUMMARY:Birthday%20party%0A" +
		"END:VEVENT%0A" +
		"END:VCALENDAR%0A\n"
	if out != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", out, want)
	}
}

func TestICSCommandWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.ics")
	out, _, err := runCLI(t, "ics", "--title", "Standup", "--start", "2026-02-20T09:00:00Z", "--duration", "30m",
		"--organizer-name", "Ada", "--organizer-email", "ada@example.com", "--out", path, "--json")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	var data struct {
		Path string `json:"path"`
		URL  string `json:"url"`
	}
	env := decodeSuccess(t, out, &data)
	if data.Path != path || !strings.HasPrefix(data.URL, calendarlink.CalendarFilePrefix) {
		t.Fatalf("unexpected payload: %+v", data)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	text := string(raw)
	for _, want := range []string{"BEGIN:VCALENDAR\n", "DTSTART:20260220T090000Z\n", "DTEND:20260220T093000Z\n", "ORGANIZER;CN=Ada:MAILTO:ada@example.com\n"} {
		if !strings.Contains(text, want) {
			t.Fatalf("calendar file missing %q:\n%s", want, text)
		}
	}
	if env.Meta["bytes"] != float64(len(text)) {
		t.Fatalf("unexpected meta: %+v", env.Meta)
	}
}

func TestInspectCommand(t *testing.T) {
	uri, err := calendarlink.Resolver{Now: func() time.Time { return testNow }}.CalendarFile(calendarlink.Event{
		Title:     "Launch",
		Start:     "2026-03-01T10:00:00Z",
		End:       "2026-03-01T11:00:00Z",
		Location:  "Dock 3",
		RRule:     "FREQ=WEEKLY;COUNT=2",
		Organizer: &calendarlink.Organizer{Name: "Ops", Email: "ops@example.com"},
	})
	if err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "inspect", uri, "--json")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	var events []contract.CalendarEvent
	decodeSuccess(t, out, &events)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	got := events[0]
	if got.Summary != "Launch" || got.Start != "20260301T100000Z" || got.End != "20260301T110000Z" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Location != "Dock 3" || got.RRule != "FREQ=WEEKLY;COUNT=2" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Organizer != "Ops <ops@example.com>" {
		t.Fatalf("unexpected organizer: %q", got.Organizer)
	}

	file := filepath.Join(t.TempDir(), "uri.txt")
	if err := os.WriteFile(file, []byte(uri+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, "inspect", "--file", file, "--plain")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.HasPrefix(out, "BEGIN:VCALENDAR\nVERSION:2.0\n") || !strings.Contains(out, "SUMMARY:Launch\n") {
		t.Fatalf("unexpected plain output: %q", out)
	}
}

func TestInspectCommandRejectsOtherURIs(t *testing.T) {
	_, stderr, err := runCLI(t, "inspect", "https://calendar.yahoo.com/?v=60", "--json")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr, string(contract.ErrInvalidUsage)) {
		t.Fatalf("expected INVALID_USAGE: %s", stderr)
	}

	_, _, err = runCLI(t, "inspect")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}
