package engine

import (
	"errors"
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/getmockd/interceptd/internal/matching"
	"github.com/getmockd/interceptd/pkg/fixture"
)

// ErrMergeTarget is returned when the default body field named by a Rule's
// MergeAt is not an object.
var ErrMergeTarget = errors.New("merge target is not an object")

// Result is a resolved call.
type Result struct {
	Response   fixture.Response
	Evaluation matching.Evaluation
}

// Resolve evaluates f's Rule against rawQuery and builds the response.
//
// The default body is copied, then the matched payload (if any) is merged
// one level deep into body[MergeAt], or into the body itself when MergeAt
// is empty. Fields of the default not named by the payload are kept.
// Resolve never mutates f.
func Resolve(f *fixture.Fixture, rawQuery string) (Result, error) {
	eval := matching.Evaluate(&f.Rule, rawQuery)

	body := cloneBody(f.Rule.Default.Body)
	if eval.Hit {
		if err := merge(body, f.Rule.MergeAt, eval.Payload); err != nil {
			return Result{}, fmt.Errorf("fixture %s: %w", f.ID, err)
		}
	}

	return Result{
		Response: fixture.Response{
			StatusCode: f.Rule.Default.Status(),
			Body:       body,
		},
		Evaluation: eval,
	}, nil
}

func merge(body map[string]any, at string, payload fixture.Payload) error {
	target := body
	if at != "" {
		switch v := body[at].(type) {
		case map[string]any:
			target = v
		case nil:
			target = make(map[string]any, len(payload))
			body[at] = target
		default:
			return fmt.Errorf("%w: field %q holds %T", ErrMergeTarget, at, v)
		}
	}
	for k, v := range payload {
		target[k] = deepcopy.Copy(v)
	}
	return nil
}

func cloneBody(body map[string]any) map[string]any {
	if body == nil {
		return make(map[string]any)
	}
	return deepcopy.Copy(body).(map[string]any)
}
