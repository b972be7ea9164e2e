package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrSchema is wrapped by every schema violation.
var ErrSchema = errors.New("fixture file does not match schema")

//go:embed fixture.schema.json
var fixtureSchema []byte

const schemaURL = "fixture.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// SchemaError lists the schema violations of one document.
type SchemaError struct {
	Violations []Violation
}

// Violation is one leaf schema failure.
type Violation struct {
	// Field is the dotted instance location, empty for the document root.
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("%s: %s", ErrSchema, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// Schema returns the embedded fixture file schema.
func Schema() []byte {
	return bytes.Clone(fixtureSchema)
}

func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(fixtureSchema)); err != nil {
			schemaErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validateSchema checks a JSON document against the fixture file schema.
func validateSchema(doc []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	v, err := unmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}

	err = schema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	se := &SchemaError{}
	collectViolations(ve, se)
	return se
}

func collectViolations(err *jsonschema.ValidationError, se *SchemaError) {
	if len(err.Causes) == 0 {
		se.Violations = append(se.Violations, Violation{
			Field:   fieldFromPointer(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectViolations(cause, se)
	}
}

// fieldFromPointer turns a JSON Pointer into dotted notation.
func fieldFromPointer(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	for i, p := range parts {
		parts[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(p)
	}
	return strings.Join(parts, ".")
}
