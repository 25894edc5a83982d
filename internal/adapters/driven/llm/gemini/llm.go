// Package gemini provides an LLM service adapter using the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model to use (default: gemini-2.0-flash).
	Model string

	// Endpoint overrides the API endpoint, for proxies and tests.
	Endpoint string
}

// LLMService provides structured generation using Gemini's native
// response schemas.
type LLMService struct {
	client *genai.Client
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &LLMService{client: client, model: cfg.Model}, nil
}

// GenerateJSON sends one request with the system directive as system
// instruction and the schema as the response schema.
func (s *LLMService) GenerateJSON(ctx context.Context, req driven.StructuredRequest) (string, error) {
	// A model value per call: GenerativeModel carries mutable config and
	// batch calls run concurrently.
	model := s.client.GenerativeModel(s.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	model.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		model.ResponseSchema = ToGenaiSchema(req.Schema)
	}
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil {
			return "", fmt.Errorf("gemini: prompt blocked: %v", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	return candidateText(resp.Candidates[0]), nil
}

func candidateText(c *genai.Candidate) string {
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// ToGenaiSchema converts a provider-neutral schema to Gemini's schema type.
func ToGenaiSchema(s *driven.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Items:       ToGenaiSchema(s.Items),
		Required:    append([]string(nil), s.Required...),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = ToGenaiSchema(p)
		}
	}
	return out
}

func toGenaiType(t driven.SchemaType) genai.Type {
	switch t {
	case driven.SchemaObject:
		return genai.TypeObject
	case driven.SchemaArray:
		return genai.TypeArray
	case driven.SchemaString:
		return genai.TypeString
	case driven.SchemaNumber:
		return genai.TypeNumber
	case driven.SchemaInteger:
		return genai.TypeInteger
	case driven.SchemaBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the key and model by fetching the model's metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).Info(ctx); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	return s.client.Close()
}
