package flows

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/spec-kit/sales-crm/internal/domain"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

// Name identifies a flow.
type Name string

const (
	LeadScoring    Name = "lead-scoring"
	SpokeScoring   Name = "spoke-scoring"
	Transcription  Name = "transcription"
	ReverseGeocode Name = "reverse-geocode"
)

// Runner is the name-dispatched view of a flow. Only this package implements it.
type Runner interface {
	Name() Name
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	InvokeJSON(ctx context.Context, p Provider, raw []byte) (any, error)
	sealed()
}

// Definition binds a flow's input schema, prompt template and output schema.
type Definition[In, Out any] struct {
	name        Name
	description string
	input       *compiledSchema
	output      *compiledSchema
	prompt      *template.Template
	media       func(In) ([]Media, error)
}

var registry = map[Name]Runner{}

var promptFuncs = template.FuncMap{
	"languageName": func(code string) string {
		return domain.Language(code).DisplayName()
	},
}

func define[In, Out any](name Name, description string, in, out *jsonschema.Schema, prompt string, media func(In) ([]Media, error)) *Definition[In, Out] {
	def := &Definition[In, Out]{
		name:        name,
		description: description,
		input:       compile(in),
		output:      compile(out),
		prompt:      template.Must(template.New(string(name)).Funcs(promptFuncs).Parse(prompt)),
		media:       media,
	}
	registry[name] = def
	return def
}

// Lookup returns the flow registered under name.
func Lookup(name Name) (Runner, bool) {
	r, ok := registry[name]
	return r, ok
}

// Names lists the registered flows.
func Names() []Name {
	return []Name{LeadScoring, SpokeScoring, Transcription, ReverseGeocode}
}

func (d *Definition[In, Out]) Name() Name                       { return d.name }
func (d *Definition[In, Out]) Description() string              { return d.description }
func (d *Definition[In, Out]) InputSchema() *jsonschema.Schema  { return d.input.schema }
func (d *Definition[In, Out]) OutputSchema() *jsonschema.Schema { return d.output.schema }
func (d *Definition[In, Out]) sealed()                          {}

// ValidateInput checks in against the flow's input schema without side effects.
func (d *Definition[In, Out]) ValidateInput(in In) error {
	doc, err := toDocument(in)
	if err != nil {
		return d.invalidInput(err)
	}
	return d.validateDocument(doc)
}

func (d *Definition[In, Out]) validateDocument(doc any) error {
	if err := d.input.validate(doc); err != nil {
		return d.invalidInput(err)
	}
	return nil
}

func (d *Definition[In, Out]) invalidInput(err error) error {
	return apperrors.NewInvalidInput("invalid flow input", map[string]any{
		"flow":   d.name,
		"reason": err.Error(),
	}, err)
}

// Invoke validates in, renders the prompt, performs exactly one provider call
// and returns the schema-checked result.
func Invoke[In, Out any](ctx context.Context, p Provider, def *Definition[In, Out], in In) (*Out, error) {
	if err := def.ValidateInput(in); err != nil {
		return nil, err
	}
	return def.run(ctx, p, in)
}

// InvokeJSON validates a raw JSON payload against the input schema before
// decoding it, so absent fields are caught rather than zero-filled. The decoded
// value is validated again because encoding/json folds key case and lets a
// later duplicate key win.
func (d *Definition[In, Out]) InvokeJSON(ctx context.Context, p Provider, raw []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, d.invalidInput(err)
	}
	if err := d.validateDocument(doc); err != nil {
		return nil, err
	}
	var in In
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, d.invalidInput(err)
	}
	if err := d.ValidateInput(in); err != nil {
		return nil, err
	}
	return d.run(ctx, p, in)
}

func (d *Definition[In, Out]) run(ctx context.Context, p Provider, in In) (*Out, error) {
	var media []Media
	if d.media != nil {
		var err error
		if media, err = d.media(in); err != nil {
			return nil, d.invalidInput(err)
		}
	}

	var prompt bytes.Buffer
	if err := d.prompt.Execute(&prompt, in); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	raw, err := p.Generate(ctx, Request{
		Flow:         d.name,
		Prompt:       prompt.String(),
		Media:        media,
		OutputSchema: d.output.schema,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.NewCancelled(ctxErr)
		}
		return nil, apperrors.NewUpstreamUnavailable(p.Name(), err)
	}
	return d.decodeOutput(p.Name(), raw)
}

func (d *Definition[In, Out]) decodeOutput(provider, raw string) (*Out, error) {
	body := stripCodeFence(raw)
	details := map[string]any{"flow": d.name}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, apperrors.NewUpstreamValidationFailure(provider, details, err)
	}
	if err := d.output.validate(doc); err != nil {
		return nil, apperrors.NewUpstreamValidationFailure(provider, details, err)
	}

	var out Out
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, apperrors.NewUpstreamValidationFailure(provider, details, err)
	}
	// Validate the decoded value too; case-folded duplicate keys can change it.
	decoded, err := toDocument(out)
	if err != nil {
		return nil, apperrors.NewUpstreamValidationFailure(provider, details, err)
	}
	if err := d.output.validate(decoded); err != nil {
		return nil, apperrors.NewUpstreamValidationFailure(provider, details, err)
	}
	return &out, nil
}

// stripCodeFence removes a surrounding ```json fence some models emit.
func stripCodeFence(raw string) string {
	body := strings.TrimSpace(raw)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	body = strings.TrimPrefix(body, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}
