package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/expr-lang/expr"

	"github.com/getmockd/interceptd/internal/matching"
	"github.com/getmockd/interceptd/pkg/logging"
	"github.com/getmockd/interceptd/pkg/requestlog"
	"github.com/getmockd/interceptd/pkg/session"
)

// Outcome is what one case observed.
type Outcome struct {
	Status    int            `json:"status,omitempty"`
	Body      map[string]any `json:"body,omitempty"`
	Error     string         `json:"error,omitempty"`
	Unmatched bool           `json:"unmatched,omitempty"`
	Branch    string         `json:"branch,omitempty"`
	Hit       bool           `json:"hit,omitempty"`
}

// Result is the verdict for one case.
type Result struct {
	Case    string  `json:"case"`
	Passed  bool    `json:"passed"`
	Outcome Outcome `json:"outcome"`
	// Message explains a failure.
	Message string `json:"message,omitempty"`
}

// Report is the verdict for a scenario.
type Report struct {
	Scenario string   `json:"scenario"`
	Results  []Result `json:"results"`
	// Filtered reports whether fixtures answered at least one call.
	Filtered bool `json:"filtered"`
}

// Passed reports whether every case passed.
func (r *Report) Passed() bool {
	return r.Failed() == 0
}

// Failed returns the number of failing cases.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

// Runner executes scenarios.
type Runner struct {
	log *slog.Logger
}

// NewRunner returns a Runner. A nil logger discards output.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{log: logging.Component(logger, "scenario")}
}

// Run installs the scenario's fixtures in a fresh Registry, runs every
// case in order and tears the Registry down. Case failures are reported in
// the Report; the error is reserved for scenarios that cannot run.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Report, error) {
	if s.programs == nil {
		if err := s.Compile(); err != nil {
			return nil, err
		}
	}

	registry := session.NewRegistry(session.WithLogger(r.log))
	if err := registry.Install(s.Loaded...); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	client := registry.Client()

	report := &Report{Scenario: s.Name, Results: make([]Result, 0, len(s.Cases))}
	for i, c := range s.Cases {
		before := lastEntry(registry.Requests())
		outcome := r.call(ctx, client, c.Request)
		// A case that never reached the transport leaves the log unchanged.
		if last := lastEntry(registry.Requests()); last != nil && (before == nil || last.ID != before.ID) {
			outcome.Branch = last.Branch
			outcome.Hit = last.Hit
		}

		res := Result{Case: c.Name, Outcome: outcome}
		out, err := expr.Run(s.programs[i], exprEnv(outcome))
		switch {
		case err != nil:
			res.Message = fmt.Sprintf("eval %q: %v", c.Expect, err)
		case out != true:
			res.Message = fmt.Sprintf("expectation %q not met", c.Expect)
		default:
			res.Passed = true
		}

		r.log.DebugContext(ctx, "case finished", "scenario", s.Name, "case", c.Name, "passed", res.Passed)
		report.Results = append(report.Results, res)
	}

	registry.Teardown()
	report.Filtered = registry.RequestFiltered()

	r.log.InfoContext(ctx, "scenario finished", "scenario", s.Name, "cases", len(report.Results), "failed", report.Failed())
	return report, nil
}

func lastEntry(store requestlog.Store) *requestlog.Entry {
	entries := store.List(nil)
	if len(entries) == 0 {
		return nil
	}
	return entries[len(entries)-1]
}

func (r *Runner) call(ctx context.Context, client *http.Client, req Request) Outcome {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, nil)
	if err != nil {
		return Outcome{Error: err.Error()}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return Outcome{
			Error:     err.Error(),
			Unmatched: errors.Is(err, matching.ErrUnmatchedRoute),
		}
	}
	defer resp.Body.Close()

	outcome := Outcome{Status: resp.StatusCode}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &outcome.Body); err != nil {
			outcome.Error = fmt.Sprintf("decoding body: %v", err)
		}
	}
	return outcome
}
