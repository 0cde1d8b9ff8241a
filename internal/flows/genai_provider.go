package flows

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spec-kit/sales-crm/internal/config"
)

// GenAIProvider generates structured replies with Google's Gemini API.
type GenAIProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewGenAIProvider creates a Gemini-backed provider.
func NewGenAIProvider(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*GenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("AI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIProvider{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		logger:      logger,
	}, nil
}

// Name identifies the provider in error details.
func (p *GenAIProvider) Name() string {
	return "genai:" + p.model
}

// Generate sends one prompt with optional inline media and returns the JSON reply text.
func (p *GenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	parts := make([]*genai.Part, 0, 1+len(req.Media))
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	for _, m := range req.Media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(p.temperature),
			ResponseMIMEType: "application/json",
			ResponseSchema:   toGenAISchema(req.OutputSchema),
		},
	)
	if err != nil {
		return "", fmt.Errorf("genai generate %s: %w", req.Flow, err)
	}

	text := resp.Text()
	p.logger.Debug("genai reply",
		zap.String("flow", string(req.Flow)),
		zap.String("model", p.model),
		zap.Int("bytes", len(text)))
	return text, nil
}

var genaiTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
}

// toGenAISchema translates the subset of JSON Schema used by flow outputs.
func toGenAISchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiTypes[s.Type],
		Description: s.Description,
		Required:    s.Required,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		Items:       toGenAISchema(s.Items),
	}
	for _, v := range s.Enum {
		if e, ok := v.(string); ok {
			out.Enum = append(out.Enum, e)
		}
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenAISchema(prop)
			out.PropertyOrdering = append(out.PropertyOrdering, name)
		}
		sort.Strings(out.PropertyOrdering)
	}
	return out
}
