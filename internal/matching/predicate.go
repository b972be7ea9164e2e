package matching

import (
	"github.com/getmockd/interceptd/pkg/fixture"
)

// Branch identifies which table of a Rule produced an evaluation.
type Branch string

// Branches, in evaluation order.
const (
	BranchCombined Branch = "combined"
	BranchFirst    Branch = "first"
	BranchSecond   Branch = "second"
	BranchDefault  Branch = "default"
)

// Evaluation is the outcome of evaluating a Rule against a query string.
type Evaluation struct {
	// Branch is the table consulted. BranchDefault means no declared
	// parameter was present.
	Branch Branch

	// Hit reports whether the consulted table had an entry. A miss
	// resolves to the Rule's default response.
	Hit bool

	// Payload is the matched case, nil on a miss.
	Payload fixture.Payload

	// Params are the declared parameters as extracted from the call.
	Params []Param
}

// Evaluate applies the Rule's tables to a raw query string:
//
//  1. both declared parameters present: Combined, by (first, second);
//  2. only the first present: First;
//  3. only the second present: Second;
//  4. none present: default.
//
// A miss in the consulted table falls to the default response. In
// particular a combined miss never falls back to a single-parameter table.
func Evaluate(rule *fixture.Rule, rawQuery string) Evaluation {
	params := Extract(ParseQuery(rawQuery), rule.Params)
	eval := Evaluation{Branch: BranchDefault, Params: params}

	switch len(params) {
	case 1:
		if params[0].Present {
			eval.Branch = BranchFirst
			eval.Payload, eval.Hit = rule.First[params[0].Value]
		}
	case 2:
		first, second := params[0], params[1]
		switch {
		case first.Present && second.Present:
			eval.Branch = BranchCombined
			eval.Payload, eval.Hit = rule.Combined[fixture.Key{First: first.Value, Second: second.Value}]
		case first.Present:
			eval.Branch = BranchFirst
			eval.Payload, eval.Hit = rule.First[first.Value]
		case second.Present:
			eval.Branch = BranchSecond
			eval.Payload, eval.Hit = rule.Second[second.Value]
		}
	}

	if !eval.Hit {
		eval.Payload = nil
	}
	return eval
}
