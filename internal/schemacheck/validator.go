// Package schemacheck is the schema-validation collaborator: an embedded
// CUE schema by default, or an external JSON Schema file when one is
// configured. Either way a failure is fatal for the file's rule pass and
// never aborts the rest of a batch.
package schemacheck

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// Violation is one schema conformance failure.
type Violation struct {
	Path    string
	Message string
	Keyword string
}

// Validator checks a decoded document against a schema.
type Validator interface {
	Validate(doc any) ([]Violation, error)
}

// CUEValidator validates against the embedded document schema.
type CUEValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewCUEValidator compiles the embedded schema once; the result is
// read-only and safe to share across files.
func NewCUEValidator() (*CUEValidator, error) {
	content, err := schemaFS.ReadFile("schemas/document.cue")
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}
	ctx := cuecontext.New()
	inst := ctx.CompileBytes(content, cue.Filename("document.cue"))
	if err := inst.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}
	def := inst.LookupPath(cue.ParsePath("#Document"))
	if !def.Exists() {
		return nil, fmt.Errorf("embedded schema has no #Document definition")
	}
	return &CUEValidator{ctx: ctx, schema: def}, nil
}

// Validate implements Validator.
func (v *CUEValidator) Validate(doc any) ([]Violation, error) {
	value := v.ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	unified := v.schema.Unify(value)
	if err := unified.Err(); err != nil {
		return cueViolations(err), nil
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cueViolations(err), nil
	}
	return nil, nil
}

func cueViolations(err error) []Violation {
	var out []Violation
	for _, e := range cueerrors.Errors(err) {
		out = append(out, Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: e.Error(),
			Keyword: "cue",
		})
	}
	if len(out) == 0 {
		out = append(out, Violation{Message: err.Error(), Keyword: "cue"})
	}
	return out
}

// JSONSchemaValidator validates against an external JSON Schema file.
type JSONSchemaValidator struct {
	schema *sjsonschema.Schema
}

// NewJSONSchemaValidator compiles the schema at path.
func NewJSONSchemaValidator(path string) (*JSONSchemaValidator, error) {
	c := sjsonschema.NewCompiler()
	sch, err := c.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", path, err)
	}
	return &JSONSchemaValidator{schema: sch}, nil
}

// NewJSONSchemaValidatorFromBytes compiles an in-memory schema document.
func NewJSONSchemaValidatorFromBytes(name string, raw []byte) (*JSONSchemaValidator, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema %s: %w", name, err)
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", name, err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &JSONSchemaValidator{schema: sch}, nil
}

// Validate implements Validator.
func (v *JSONSchemaValidator) Validate(doc any) ([]Violation, error) {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return []Violation{{Message: err.Error(), Keyword: "schema"}}, nil
	}
	var out []Violation
	for _, cause := range flatten(ve) {
		out = append(out, Violation{
			Path:    strings.Join(cause.InstanceLocation, "."),
			Message: fmt.Sprintf("%v", cause.ErrorKind),
			Keyword: kindKeyword(cause.ErrorKind),
		})
	}
	return out, nil
}

// flatten collects leaf causes; intermediate nodes only restate them.
func flatten(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var out []*sjsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, flatten(c)...)
	}
	return out
}

// kindKeyword derives a keyword label from the error kind's type name,
// e.g. *kind.Required -> "required".
func kindKeyword(k any) string {
	name := fmt.Sprintf("%T", k)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}
