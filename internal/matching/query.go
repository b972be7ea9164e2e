package matching

import (
	"net/url"
	"strings"
)

// ParseQuery decodes a raw query string. When a key repeats, the last
// occurrence wins. Pairs that fail to decode are skipped.
func ParseQuery(raw string) map[string]string {
	values := make(map[string]string)
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		values[key] = value
	}
	return values
}

// Param is a declared query parameter as seen on one call.
type Param struct {
	Name    string
	Value   string
	Present bool
}

// Extract picks the declared parameters out of values, in declaration
// order. An absent parameter has Present=false, which is distinct from a
// present parameter with an empty value.
func Extract(values map[string]string, names []string) []Param {
	params := make([]Param, len(names))
	for i, name := range names {
		v, ok := values[name]
		params[i] = Param{Name: name, Value: v, Present: ok}
	}
	return params
}
