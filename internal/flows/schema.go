package flows

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

type compiledSchema struct {
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

func compile(s *jsonschema.Schema) *compiledSchema {
	resolved, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("flows: invalid schema: %v", err))
	}
	return &compiledSchema{schema: s, resolved: resolved}
}

// validate checks a decoded JSON document against the schema.
func (c *compiledSchema) validate(doc any) error {
	return c.resolved.Validate(doc)
}

// toDocument converts v into its generic JSON form so it can be validated.
func toDocument(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func nonEmpty(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description, MinLength: ptr(1)}
}

func pattern(description, re string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description, Pattern: re}
}

func oneOf(description string, values ...string) *jsonschema.Schema {
	enum := make([]any, 0, len(values))
	for _, v := range values {
		enum = append(enum, v)
	}
	return &jsonschema.Schema{Type: "string", Description: description, Enum: enum}
}

func number(description string, lo, hi *float64) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: description, Minimum: lo, Maximum: hi}
}

func integer(description string, lo *float64) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: description, Minimum: lo}
}

func ptr[T any](v T) *T {
	return &v
}
