package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"testing"

	"github.com/ohler55/ojg/jp"
)

// AssertCalled asserts that a route was called at least once.
func (i *Interceptor) AssertCalled(t testing.TB, method, rawURL string) {
	t.Helper()

	if i.countCalls(method, rawURL) == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, rawURL)
	}
}

// AssertCalledTimes asserts that a route was called exactly n times.
func (i *Interceptor) AssertCalledTimes(t testing.TB, method, rawURL string, times int) {
	t.Helper()

	count := i.countCalls(method, rawURL)
	if count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, rawURL, times, count)
	}
}

// AssertNotCalled asserts that a route was not called.
func (i *Interceptor) AssertNotCalled(t testing.TB, method, rawURL string) {
	t.Helper()

	count := i.countCalls(method, rawURL)
	if count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, rawURL, count)
	}
}

// AssertNoUnmatched asserts that every intercepted call found a route.
func (i *Interceptor) AssertNoUnmatched(t testing.TB) {
	t.Helper()

	for _, e := range i.Requests() {
		if !e.Matched {
			t.Errorf("unmatched call %s %s%s: %s", e.Method, e.Host, e.Path, e.Error)
		}
	}
}

// AssertJSONPath asserts that the value at a JSONPath in body equals
// expected. body may be a []byte, a string, an *http.Response (its body is
// read and restored) or an already decoded value. A path selecting several
// values is compared as a list.
func AssertJSONPath(t testing.TB, body any, path string, expected any) {
	t.Helper()

	data, err := decodeBody(body)
	if err != nil {
		t.Errorf("decoding body: %v", err)
		return
	}

	x, err := jp.ParseString(path)
	if err != nil {
		t.Errorf("invalid JSONPath %q: %v", path, err)
		return
	}

	results := x.Get(data)
	if len(results) == 0 {
		t.Errorf("JSONPath %q matched nothing", path)
		return
	}

	want, err := normalize(expected)
	if err != nil {
		t.Errorf("failed to normalize expected value: %v", err)
		return
	}

	var got any = results
	if len(results) == 1 {
		got = results[0]
	}
	if !reflect.DeepEqual(got, want) {
		gotJSON, _ := json.Marshal(got)
		wantJSON, _ := json.Marshal(want)
		t.Errorf("JSONPath %q mismatch\nexpected: %s\nactual:   %s", path, wantJSON, gotJSON)
	}
}

func decodeBody(body any) (any, error) {
	var raw []byte
	switch v := body.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case *http.Response:
		b, err := io.ReadAll(v.Body)
		if err != nil {
			return nil, err
		}
		_ = v.Body.Close()
		v.Body = io.NopCloser(bytes.NewReader(b))
		raw = b
	default:
		return normalize(v)
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("body is not valid JSON: %w", err)
	}
	return data, nil
}

// normalize round-trips v through JSON so numbers and maps compare like
// decoded bodies.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
