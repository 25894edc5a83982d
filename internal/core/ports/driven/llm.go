package driven

import "context"

// LLMService produces structured JSON from a generative model.
// This is an optional service - when nil, generation features report
// domain.ErrLLMUnavailable and the rest of the application keeps working.
//
// Implementations may include:
//   - Google Gemini
//   - OpenAI
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// GenerateJSON sends a system directive and user content and returns the
	// raw JSON text of the response. When req.Schema is set the provider is
	// asked to conform to it; conformance is not guaranteed.
	GenerateJSON(ctx context.Context, req StructuredRequest) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// StructuredRequest is a single structured generation call.
type StructuredRequest struct {
	// System is the fixed directive that constrains the model.
	System string

	// User is the per-request content.
	User string

	// SchemaName labels the schema for providers that require a name.
	SchemaName string

	// Schema declares the expected response shape.
	Schema *Schema

	// MaxTokens is the maximum number of tokens to generate. Zero uses the adapter default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
