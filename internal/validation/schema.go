// Package validation checks the JSON shape of request bodies before any
// business rule runs.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// title is left untyped on purpose: a non-string title is reported as
// "title is required" by the task rules, not as a type error.
const taskSchema = `{
  "type": "object",
  "properties": {
    "description": {"type": ["string", "null"]},
    "completed":   {"type": ["boolean", "null"]},
    "dueDate":     {"type": ["string", "null"]},
    "sortOrder":   {"type": ["integer", "null"]}
  }
}`

const statusSchema = `{
  "type": "object",
  "required": ["completed"],
  "properties": {
    "completed": {"type": "boolean"}
  }
}`

var fieldMessages = map[string]string{
	"":            "request body must be a JSON object",
	"description": "description must be a string",
	"completed":   "completed status must be a boolean",
	"dueDate":     "due date must be a string in YYYY-MM-DD format",
	"sortOrder":   "sortOrder must be an integer",
}

// FieldError names one structural violation.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// Validator holds the compiled schemas.
type Validator struct {
	task   *jsonschema.Schema
	status *jsonschema.Schema
}

func New() (*Validator, error) {
	task, err := compile("task.json", taskSchema)
	if err != nil {
		return nil, err
	}
	status, err := compile("status.json", statusSchema)
	if err != nil {
		return nil, err
	}
	return &Validator{task: task, status: status}, nil
}

// MustNew panics if the embedded schemas fail to compile.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

func compile(name, src string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// Decode parses a request body keeping numbers exact, so 1.5 is not mistaken for an integer.
func Decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// Task checks a create / full update body.
func (v *Validator) Task(doc any) []FieldError {
	return check(v.task, doc)
}

// Status checks a PATCH /status body. Fields other than completed are ignored.
func (v *Validator) Status(doc any) []FieldError {
	return check(v.status, doc)
}

func check(schema *jsonschema.Schema, doc any) []FieldError {
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []FieldError{{Message: err.Error()}}
	}

	var out []FieldError
	seen := make(map[string]bool)
	collect(ve, func(leaf *jsonschema.ValidationError) {
		field := strings.TrimPrefix(leaf.InstanceLocation, "/")
		// a missing required property is reported at the parent location
		if field == "" && strings.HasSuffix(leaf.KeywordLocation, "/required") {
			field = "completed"
		}
		if seen[field] {
			return
		}
		seen[field] = true
		msg, ok := fieldMessages[field]
		if !ok {
			msg = field + ": " + leaf.Message
		}
		out = append(out, FieldError{Field: field, Message: msg})
	})
	return out
}

func collect(ve *jsonschema.ValidationError, fn func(*jsonschema.ValidationError)) {
	if len(ve.Causes) == 0 {
		fn(ve)
		return
	}
	for _, c := range ve.Causes {
		collect(c, fn)
	}
}
