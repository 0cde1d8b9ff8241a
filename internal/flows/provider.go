package flows

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Media is binary content sent inline alongside a prompt.
type Media struct {
	MIMEType string
	Data     []byte
}

// Request is a single-shot generation request.
type Request struct {
	Flow         Name
	Prompt       string
	Media        []Media
	OutputSchema *jsonschema.Schema
}

// Provider submits a rendered prompt to a generative-text service and returns
// the raw reply. Errors returned by Generate are treated as transport failures.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
