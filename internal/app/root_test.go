package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agis/calendar-link/internal/contract"
)

var testNow = time.Date(2026, 2, 16, 8, 0, 0, 0, time.UTC)

// runCLI executes the root command with an isolated config home and a fixed
// clock.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("CALENDAR_LINK_PROFILE", "")
	t.Setenv("CALENDAR_LINK_CONFIG", "")
	t.Setenv("CALENDAR_LINK_TIMEZONE", "")
	t.Setenv("CALENDAR_LINK_OUTPUT", "")
	t.Setenv("CALENDAR_LINK_FIELDS", "")
	origClock := clock
	clock = func() time.Time { return testNow }
	t.Cleanup(func() { clock = origClock })

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeSuccess(t *testing.T, raw string, data any) contract.SuccessEnvelope {
	t.Helper()
	var env struct {
		contract.SuccessEnvelope
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, raw)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("invalid data payload: %v\n%s", err, env.Data)
		}
	}
	return env.SuccessEnvelope
}

func TestGoogleCommandPlain(t *testing.T) {
	out, _, err := runCLI(t, "google", "--title", "Birthday party", "--start", "2019-12-29", "--duration", "2 hour", "--tz", "UTC", "--plain")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	want := "https://calendar.google.com/calendar/render?action=TEMPLATE&dates=20191229T000000Z%2F20191229T020000Z&text=Birthday%20party\n"
	if out != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", out, want)
	}
}

func TestLinkCommandsJSON(t *testing.T) {
	cases := []struct {
		cmd    string
		prefix string
	}{
		{"google", "https://calendar.google.com/calendar/render?"},
		{"outlook", "https://outlook.live.com/calendar/0/deeplink/compose?"},
		{"office365", "https://outlook.office.com/calendar/0/deeplink/compose?"},
		{"yahoo", "https://calendar.yahoo.com/?"},
		{"ics", "data:text/calendar;charset=utf8,"},
	}
	for _, tc := range cases {
		t.Run(tc.cmd, func(t *testing.T) {
			out, _, err := runCLI(t, tc.cmd, "--title", "Standup", "--start", "2026-02-20T09:00", "--duration", "30m", "--tz", "UTC", "--json")
			if err != nil {
				t.Fatalf("execute failed: %v", err)
			}
			var link contract.Link
			env := decodeSuccess(t, out, &link)
			if env.Command != tc.cmd {
				t.Fatalf("command mismatch: %q", env.Command)
			}
			if !strings.HasPrefix(link.URL, tc.prefix) {
				t.Fatalf("unexpected url: %q", link.URL)
			}
		})
	}
}

func TestOutlookUsesConfiguredZone(t *testing.T) {
	out, _, err := runCLI(t, "outlook", "--title", "Call", "--start", "2026-02-20T09:00:00Z", "--duration", "1h", "--tz", "Europe/Athens", "--plain")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out, "startdt=2026-02-20T11%3A00%3A00") || !strings.Contains(out, "enddt=2026-02-20T12%3A00%3A00") {
		t.Fatalf("expected Athens wall clock, got %q", out)
	}
}

func TestBusyFlagIsTriState(t *testing.T) {
	out, _, err := runCLI(t, "google", "--title", "x", "--start", "2026-02-20", "--all-day", "--tz", "UTC", "--plain")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "trp=") {
		t.Fatalf("trp should be omitted without --busy: %q", out)
	}
	out, _, err = runCLI(t, "google", "--title", "x", "--start", "2026-02-20", "--all-day", "--busy=false", "--tz", "UTC", "--plain")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "trp=false") {
		t.Fatalf("expected trp=false: %q", out)
	}
}

func TestGuestsAndRepeat(t *testing.T) {
	out, _, err := runCLI(t, "google", "--title", "Sync", "--start", "2026-02-16T10:00", "--duration", "30m",
		"--guest", "a@example.com", "--guest", "b@example.com", "--repeat", "daily*3", "--tz", "UTC", "--plain")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out, "add=a%40example.com%2Cb%40example.com") {
		t.Fatalf("missing guests: %q", out)
	}
	if !strings.Contains(out, "recur=RRULE%3AFREQ%3DDAILY") || !strings.Contains(out, "COUNT%3D3") {
		t.Fatalf("missing recurrence: %q", out)
	}
}

func TestRRuleAndRepeatConflict(t *testing.T) {
	_, _, err := runCLI(t, "google", "--start", "2026-02-16", "--all-day", "--rrule", "FREQ=DAILY", "--repeat", "daily")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d (%v)", code, err)
	}
}

func TestMissingStartIsUsageError(t *testing.T) {
	_, stderr, err := runCLI(t, "yahoo", "--title", "x", "--json")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	var env contract.ErrorEnvelope
	if err := json.Unmarshal([]byte(stderr), &env); err != nil {
		t.Fatalf("expected json error envelope: %v\n%s", err, stderr)
	}
	if env.Error.Code != contract.ErrInvalidUsage {
		t.Fatalf("unexpected code: %s", env.Error.Code)
	}
}

func TestInvalidStartAndUnit(t *testing.T) {
	_, stderr, err := runCLI(t, "google", "--start", "29/12/2019", "--all-day", "--json")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr, string(contract.ErrInvalidUsage)) {
		t.Fatalf("expected INVALID_USAGE: %s", stderr)
	}

	_, stderr, err = runCLI(t, "google", "--start", "2019-12-29", "--duration", "2 fortnights", "--json")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr, string(contract.ErrValidationFailed)) {
		t.Fatalf("expected VALIDATION_FAILED: %s", stderr)
	}
}

func TestInvalidTZ(t *testing.T) {
	_, _, err := runCLI(t, "google", "--start", "2019-12-29", "--all-day", "--tz", "Mars/Olympus")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestOutputModesAreExclusive(t *testing.T) {
	_, _, err := runCLI(t, "google", "--start", "2019-12-29", "--all-day", "--json", "--plain")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestNoEndFallsBackToClock(t *testing.T) {
	out, _, err := runCLI(t, "yahoo", "--title", "x", "--start", "2026-02-16T07:00:00Z", "--plain")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "et=20260216T080000Z") {
		t.Fatalf("expected end at the fixed clock: %q", out)
	}
}

func TestRelativeStart(t *testing.T) {
	out, _, err := runCLI(t, "yahoo", "--title", "x", "--start", "tomorrow", "--all-day", "--tz", "UTC", "--plain")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "st=20260217&") || !strings.Contains(out, "dur=allday") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestLinksCommand(t *testing.T) {
	out, _, err := runCLI(t, "links", "--title", "Party", "--start", "2019-12-29", "--all-day", "--tz", "UTC", "--json")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	var links []contract.Link
	env := decodeSuccess(t, out, &links)
	if len(links) != 5 {
		t.Fatalf("expected 5 links, got %d", len(links))
	}
	if links[0].Provider != "google" || links[4].Provider != "ics" {
		t.Fatalf("unexpected order: %+v", links)
	}
	if env.Meta["count"] != float64(5) {
		t.Fatalf("unexpected meta: %+v", env.Meta)
	}

	out, _, err = runCLI(t, "links", "--start", "2019-12-29", "--all-day", "--provider", "yahoo", "--provider", "o365", "--tz", "UTC", "--plain")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "yahoo\t") || !strings.HasPrefix(lines[1], "office365\t") {
		t.Fatalf("unexpected plain output: %q", out)
	}

	_, _, err = runCLI(t, "links", "--start", "2019-12-29", "--provider", "aol")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestEventFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.json")
	content := `{"title":"From file","start":"2019-12-29","duration":[2,"hour"],"location":"Home"}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, "google", "--file", path, "--title", "From flag", "--tz", "UTC", "--plain")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out, "text=From%20flag") || !strings.Contains(out, "location=Home") {
		t.Fatalf("unexpected output: %q", out)
	}

	tomlPath := filepath.Join(dir, "event.toml")
	if err := os.WriteFile(tomlPath, []byte("title = \"Toml\"\nstart = \"2019-12-29\"\nall_day = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, "yahoo", "--file", tomlPath, "--tz", "UTC", "--plain")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out, "title=Toml") || !strings.Contains(out, "et=20191230") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestVerboseDiagnostics(t *testing.T) {
	_, stderr, err := runCLI(t, "google", "--start", "2019-12-29", "--all-day", "--tz", "UTC", "--plain", "--verbose")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "calendar-link: command=google mode=plain tz=UTC profile=default") {
		t.Fatalf("missing diagnostics: %q", stderr)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" provider, ,url ")
	if len(got) != 2 || got[0] != "provider" || got[1] != "url" {
		t.Fatalf("unexpected split: %#v", got)
	}
}

func TestResolveCommand(t *testing.T) {
	out, _, err := runCLI(t, "resolve", "--start", "2019-12-29T10:00:00Z", "--duration", "2 hour", "--tz", "UTC", "--json")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	var res contract.ResolvedTimes
	env := decodeSuccess(t, out, &res)
	if res.EndBy != "duration" || !res.UTC || res.Span != "2 hours" {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if !res.End.Equal(time.Date(2019, 12, 29, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %s", res.End)
	}
	if len(env.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", env.Warnings)
	}

	out, _, err = runCLI(t, "resolve", "--start", "2026-02-16T07:00:00Z", "--json")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	env = decodeSuccess(t, out, &res)
	if res.EndBy != "now" || len(env.Warnings) != 1 {
		t.Fatalf("expected the clock fallback warning: %+v %v", res, env.Warnings)
	}

	out, _, err = runCLI(t, "resolve", "--start", "2026-02-16T07:00:00Z", "--end", "2026-02-16T09:00:00Z", "--tz", "Europe/Athens", "--local", "--plain")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.HasPrefix(out, "2026-02-16T09:00:00+02:00\t2026-02-16T11:00:00+02:00\t") {
		t.Fatalf("unexpected plain output: %q", out)
	}
}
