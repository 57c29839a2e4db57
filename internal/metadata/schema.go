package metadata

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalidDocument is returned when a document does not match the schema.
var ErrInvalidDocument = errors.New("invalid metadata document")

// Problem is one schema violation.
type Problem struct {
	Field       string
	Description string
}

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Source   string
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Field + ": " + p.Description
	}
	return fmt.Sprintf("%s: %v: %s", e.Source, ErrInvalidDocument, strings.Join(parts, "; "))
}

// Unwrap returns ErrInvalidDocument.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Schema returns the embedded JSON schema of metadata documents.
func Schema() []byte {
	return schemaJSON
}

// Validate checks data against the embedded schema. A document that is not
// YAML at all yields a decode error; schema violations a *ValidationError.
func Validate(source string, data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s: decode: %w", source, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(normalize(raw)),
	)
	if err != nil {
		return fmt.Errorf("%s: schema validation: %w", source, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Source: source}
	for _, re := range result.Errors() {
		verr.Problems = append(verr.Problems, Problem{Field: re.Field(), Description: re.Description()})
	}
	return verr
}

// normalize rewrites maps with non-string keys so the value can be
// marshaled to JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	default:
		return v
	}
}
