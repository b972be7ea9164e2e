// Package scenario checks fixture sets against expected behaviour.
//
// A scenario file names fixture files and lists cases. Each case issues one
// request through a Registry loaded with those fixtures and evaluates an
// expect expression over the outcome:
//
//	name: genomics
//	fixtures: [fixtures/stats.yaml]
//	cases:
//	  - name: combined hit
//	    request: {method: GET, url: "https://genes.example.org/api/stats?gene=TP53&study=BRCA"}
//	    expect: status == 200 && len(body.data.records) == 1
//	  - name: unregistered path fails
//	    request: {method: GET, url: "https://genes.example.org/api/other"}
//	    expect: unmatched
//
// Expressions use github.com/expr-lang/expr and see these variables:
// status, body, error, unmatched, branch and hit.
package scenario

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/interceptd/pkg/config"
	"github.com/getmockd/interceptd/pkg/fixture"
)

// ErrInvalidScenario is wrapped by every scenario validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a named list of cases over a fixture set.
type Scenario struct {
	Name     string   `json:"name" yaml:"name"`
	Fixtures []string `json:"fixtures" yaml:"fixtures"`
	Cases    []Case   `json:"cases" yaml:"cases"`

	// Loaded holds the fixtures resolved from Fixtures. Callers may also
	// set it directly.
	Loaded []*fixture.Fixture `json:"-" yaml:"-"`

	programs []*vm.Program
}

// Case is one request and its expectation.
type Case struct {
	Name    string  `json:"name" yaml:"name"`
	Request Request `json:"request" yaml:"request"`
	Expect  string  `json:"expect" yaml:"expect"`
}

// Request is the outbound call a case makes.
type Request struct {
	Method string `json:"method" yaml:"method"`
	URL    string `json:"url" yaml:"url"`
}

// exprEnv is the variable set an expect expression is compiled against.
func exprEnv(o Outcome) map[string]any {
	return map[string]any{
		"status":    o.Status,
		"body":      o.Body,
		"error":     o.Error,
		"unmatched": o.Unmatched,
		"branch":    o.Branch,
		"hit":       o.Hit,
	}
}

// Load reads a scenario file and the fixture files it names, resolved
// relative to the scenario file.
func Load(path string) (*Scenario, error) {
	var s Scenario
	if err := config.Decode(path, &s); err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	fixtures, err := config.Load(filepath.Dir(path), s.Fixtures...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	s.Loaded = fixtures

	if err := s.Compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Compile validates the cases and compiles their expectations. Run calls
// it when needed.
func (s *Scenario) Compile() error {
	if len(s.Cases) == 0 {
		return fmt.Errorf("%w: scenario %s has no cases", ErrInvalidScenario, s.Name)
	}

	programs := make([]*vm.Program, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("%w: cases[%d]: name is required", ErrInvalidScenario, i)
		}
		if c.Request.Method == "" {
			return fmt.Errorf("%w: case %q: request.method is required", ErrInvalidScenario, c.Name)
		}
		u, err := url.Parse(c.Request.URL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%w: case %q: request.url %q is not absolute", ErrInvalidScenario, c.Name, c.Request.URL)
		}
		if strings.TrimSpace(c.Expect) == "" {
			return fmt.Errorf("%w: case %q: expect is required", ErrInvalidScenario, c.Name)
		}

		program, err := expr.Compile(c.Expect, expr.Env(exprEnv(Outcome{})), expr.AsBool())
		if err != nil {
			return fmt.Errorf("%w: case %q: compile %q: %v", ErrInvalidScenario, c.Name, c.Expect, err)
		}
		programs[i] = program
	}
	s.programs = programs
	return nil
}
