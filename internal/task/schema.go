package task

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tasks.schema.json
var schemaJSON []byte

const schemaURL = "tasks.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// SchemaJSON returns the JSON Schema the task blob is validated against.
func SchemaJSON() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidationError represents a schema violation with context.
type ValidationError struct {
	Path string // dotted path to the offending value
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

// Err joins the validation errors, or returns nil when valid.
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

// ValidateBlob checks a stored blob against the task schema. An empty blob
// is valid: it loads as an empty collection.
func ValidateBlob(data []byte) *ValidationResult {
	result := &ValidationResult{Valid: true}
	if len(bytes.TrimSpace(data)) == 0 {
		return result
	}

	s, err := schema()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err)
		return result
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: err})
		return result
	}
	if doc == nil {
		return result
	}

	if err := s.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}

	// The schema cannot express that every key equals its id.
	if obj, ok := doc.(map[string]interface{}); ok {
		for key, v := range obj {
			entry, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			if id, ok := entry["id"].(string); ok && id != "" && id != key {
				result.Valid = false
				result.Errors = append(result.Errors, &ValidationError{
					Path: key + ".id",
					Err:  fmt.Errorf("id %q does not match its key", id),
				})
			}
		}
	}
	return result
}

func appendSchemaErrors(result *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil && path != "" {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
