package domain

const unknownDescription = "Unknown"

// AIProvider identifies a generative model provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or a proxy).
	BaseURL string

	// APIKey is the API key (for Gemini/OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings controls batch generation.
type GenerationSettings struct {
	// FlashcardsPerDocument is the number of cards requested per document.
	FlashcardsPerDocument int

	// QuestionsPerDocument is the number of quiz questions requested per document.
	QuestionsPerDocument int

	// Concurrency caps in-flight per-document model calls. Zero means unbounded.
	Concurrency int

	// RequestsPerSecond throttles model calls. Zero disables throttling.
	RequestsPerSecond float64
}

// ViewerSettings controls the page viewer.
type ViewerSettings struct {
	// DefaultScale is the zoom used when a citation opens the viewer.
	DefaultScale float64
}

// WatchSettings controls folder auto-ingest.
type WatchSettings struct {
	// Dir is the folder watched for new PDFs. Empty disables watching.
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM        LLMSettings
	Generation GenerationSettings
	Viewer     ViewerSettings
	Watch      WatchSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured until the user sets a provider.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{},
		Generation: GenerationSettings{
			FlashcardsPerDocument: 10,
			QuestionsPerDocument:  10,
			Concurrency:           4,
			RequestsPerSecond:     2,
		},
		Viewer: ViewerSettings{
			DefaultScale: DefaultScale,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
