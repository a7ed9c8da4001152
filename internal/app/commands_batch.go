package app

import (
	"encoding/json"
	"fmt"
	"strings"

	calendarlink "github.com/agis/calendar-link"
	"github.com/agis/calendar-link/internal/contract"
	"github.com/spf13/cobra"
)

// batchLine is one JSONL row: an event plus an optional provider filter.
type batchLine struct {
	calendarlink.Event
	Providers []string `json:"providers,omitempty"`
}

type batchResult struct {
	Line  int             `json:"line"`
	OK    bool            `json:"ok"`
	Title string          `json:"title,omitempty"`
	Links []contract.Link `json:"links,omitempty"`
	Error string          `json:"error,omitempty"`
}

func newBatchCmd(opts *globalOptions) *cobra.Command {
	var filePath string
	var continueOnError bool
	var strict bool
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Build links for every event in a JSONL file",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			p, ro, err := buildContext(c, opts, "batch")
			if err != nil {
				return err
			}
			if strings.TrimSpace(filePath) == "" {
				return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("--file is required"), "Pass --file <path> or --file -", 2)
			}
			if strict {
				continueOnError = false
			}
			raw, err := readTextInput(filePath)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Check file path or stdin", 2)
			}
			r := resolverFor(ro)
			lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
			results := make([]batchResult, 0)
			errorsCount := 0
			for i, line := range lines {
				s := strings.TrimSpace(line)
				if s == "" {
					continue
				}
				res := executeBatchLine(r, ro, s)
				res.Line = i + 1
				results = append(results, res)
				if !res.OK {
					errorsCount++
					if !continueOnError {
						break
					}
				}
			}
			meta := map[string]any{"count": len(results), "errors": errorsCount}
			if errorsCount > 0 {
				_ = p.Success(results, meta, nil)
				return WrapPrinted(1, fmt.Errorf("batch completed with %d error(s)", errorsCount))
			}
			return p.Success(results, meta, nil)
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "JSONL file path or - for stdin")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "Continue processing after row errors")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail fast on first row error")
	return cmd
}

func executeBatchLine(r calendarlink.Resolver, ro *globalOptions, s string) batchResult {
	var row batchLine
	if err := json.Unmarshal([]byte(s), &row); err != nil {
		return batchResult{Error: "invalid json: " + err.Error()}
	}
	if strings.TrimSpace(row.Start) == "" {
		return batchResult{Title: row.Title, Error: "start is required"}
	}
	providers, err := selectProviders(row.Providers)
	if err != nil {
		return batchResult{Title: row.Title, Error: err.Error()}
	}
	ev := row.Event
	applyEventDefaults(&ev, ro)
	links, err := buildLinks(r, providers, ev)
	if err != nil {
		return batchResult{Title: row.Title, Error: err.Error()}
	}
	return batchResult{OK: true, Title: row.Title, Links: links}
}
