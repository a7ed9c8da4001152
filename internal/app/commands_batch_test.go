package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecuteBatchLine(t *testing.T) {
	ro := &globalOptions{TZ: "UTC"}
	r := resolverFor(ro)

	res := executeBatchLine(r, ro, `{"title":"Plan","start":"2026-02-20T09:00:00Z","duration":"30m","providers":["yahoo"]}`)
	if !res.OK || res.Title != "Plan" || len(res.Links) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(res.Links[0].URL, "st=20260220T090000Z") || !strings.Contains(res.Links[0].URL, "et=20260220T093000Z") {
		t.Fatalf("unexpected url: %s", res.Links[0].URL)
	}

	res = executeBatchLine(r, ro, `{"title":"All","start":"2026-02-20","allDay":true}`)
	if !res.OK || len(res.Links) != 5 {
		t.Fatalf("expected every provider: %+v", res)
	}

	cases := []struct {
		line string
		want string
	}{
		{`{"title":`, "invalid json"},
		{`{"title":"x"}`, "start is required"},
		{`{"start":"2026-02-20","providers":["aol"]}`, "aol"},
		{`{"start":"2026-02-20","duration":[1,"eon"]}`, "eon"},
		{`{"start":"20.02.2026","allDay":true}`, "20.02.2026"},
	}
	for _, tc := range cases {
		res := executeBatchLine(r, ro, tc.line)
		if res.OK || !strings.Contains(res.Error, tc.want) {
			t.Fatalf("%s: expected error containing %q, got %+v", tc.line, tc.want, res)
		}
	}
}

func TestBatchCommandReportsRowErrors(t *testing.T) {
	f := filepath.Join(t.TempDir(), "events.jsonl")
	content := "{\"title\":\"Plan\",\"start\":\"2026-02-20T09:00:00Z\",\"duration\":\"30m\"}\n" +
		"\n" +
		"{\"title\":\"Broken\"}\n" +
		"{\"title\":\"Retro\",\"start\":\"2026-02-21\",\"allDay\":true,\"providers\":[\"google\"]}\n"
	if err := os.WriteFile(f, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out, _, err := runCLI(t, "batch", "--file", f, "--tz", "UTC", "--json")
	if code := ExitCode(err); code != 1 {
		t.Fatalf("expected exit code 1, got %d err=%v", code, err)
	}
	var rows []batchResult
	env := decodeSuccess(t, out, &rows)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !rows[0].OK || rows[1].OK || !rows[2].OK {
		t.Fatalf("unexpected row status: %+v", rows)
	}
	if rows[1].Line != 3 || rows[2].Line != 4 {
		t.Fatalf("line numbers should count blank lines: %+v", rows)
	}
	if env.Meta["errors"] != float64(1) {
		t.Fatalf("unexpected meta: %+v", env.Meta)
	}

	out, _, err = runCLI(t, "batch", "--file", f, "--strict", "--tz", "UTC", "--json")
	if code := ExitCode(err); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	rows = nil
	decodeSuccess(t, out, &rows)
	if len(rows) != 2 {
		t.Fatalf("strict mode should stop at the first error, got %d rows", len(rows))
	}
}

func TestBatchCommandRequiresFile(t *testing.T) {
	_, _, err := runCLI(t, "batch")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}
