package config

import (
	"encoding/json"
	"errors"
	"io"
)

// unmarshalJSON decodes a document for jsonschema/v5 validation, keeping
// numbers as json.Number and rejecting trailing data (the v6
// jsonschema.UnmarshalJSON contract).
func unmarshalJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid character after top-level value")
	}
	return v, nil
}
