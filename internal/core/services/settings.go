package services

import (
	"fmt"
	"os"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAIProvider         = "ai.provider"
	keyAIModel            = "ai.model"
	keyAIBaseURL          = "ai.base_url"
	keyAIAPIKey           = "ai.api_key"
	keyFlashcardsPerDoc   = "generation.flashcards_per_document"
	keyQuestionsPerDoc    = "generation.questions_per_document"
	keyConcurrency        = "generation.concurrency"
	keyRequestsPerSecond  = "generation.requests_per_second"
	keyViewerDefaultScale = "viewer.default_scale"
	keyWatchDir           = "watch.dir"
)

const defaultOllamaURL = "http://localhost:11434"

// apiKeyEnv lists the environment variables consulted, in order, when no API
// key is stored for a provider.
//
//nolint:gosec // G101: environment variable names, not credentials.
var apiKeyEnv = map[domain.AIProvider][]string{
	domain.AIProviderGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"},
	domain.AIProviderOpenAI:    {"OPENAI_API_KEY"},
	domain.AIProviderAnthropic: {"ANTHROPIC_API_KEY"},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. Unset values fall back to
// defaults, and API keys fall back to the provider's environment variables.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider()
	llm := domain.LLMSettings{
		Provider: provider,
		Model:    s.getString(keyAIModel, domain.DefaultLLMModels()[provider]),
		BaseURL:  s.configStore.GetString(keyAIBaseURL),
		APIKey:   s.getString(keyAIAPIKey, s.envAPIKey(provider)),
	}
	if provider.IsLocal() && llm.BaseURL == "" {
		llm.BaseURL = s.getenvOr("OLLAMA_HOST", defaultOllamaURL)
	}

	settings := &domain.AppSettings{
		LLM: llm,
		Generation: domain.GenerationSettings{
			FlashcardsPerDocument: s.getInt(keyFlashcardsPerDoc, defaults.Generation.FlashcardsPerDocument),
			QuestionsPerDocument:  s.getInt(keyQuestionsPerDoc, defaults.Generation.QuestionsPerDocument),
			Concurrency:           s.getInt(keyConcurrency, defaults.Generation.Concurrency),
			RequestsPerSecond:     s.getFloat(keyRequestsPerSecond, defaults.Generation.RequestsPerSecond),
		},
		Viewer: domain.ViewerSettings{
			DefaultScale: domain.ClampScale(s.getFloat(keyViewerDefaultScale, defaults.Viewer.DefaultScale)),
		},
		Watch: domain.WatchSettings{
			Dir: s.configStore.GetString(keyWatchDir),
		},
	}

	return settings, nil
}

// Save persists application settings. API keys taken from the environment
// are never written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyAIProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save ai provider: %w", err)
	}
	if err := s.configStore.Set(keyAIModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save ai model: %w", err)
	}
	if err := s.configStore.Set(keyAIBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save ai base_url: %w", err)
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.envAPIKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyAIAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save ai api_key: %w", err)
		}
	}

	gen := settings.Generation
	if err := s.configStore.Set(keyFlashcardsPerDoc, gen.FlashcardsPerDocument); err != nil {
		return fmt.Errorf("save flashcards per document: %w", err)
	}
	if err := s.configStore.Set(keyQuestionsPerDoc, gen.QuestionsPerDocument); err != nil {
		return fmt.Errorf("save questions per document: %w", err)
	}
	if err := s.configStore.Set(keyConcurrency, gen.Concurrency); err != nil {
		return fmt.Errorf("save concurrency: %w", err)
	}
	if err := s.configStore.Set(keyRequestsPerSecond, gen.RequestsPerSecond); err != nil {
		return fmt.Errorf("save requests per second: %w", err)
	}

	if err := s.configStore.Set(keyViewerDefaultScale, settings.Viewer.DefaultScale); err != nil {
		return fmt.Errorf("save viewer default scale: %w", err)
	}
	if err := s.configStore.Set(keyWatchDir, settings.Watch.Dir); err != nil {
		return fmt.Errorf("save watch dir: %w", err)
	}

	return s.configStore.Save()
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = s.getenvOr("OLLAMA_HOST", defaultOllamaURL)
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetWatchDir sets the folder watched for new PDFs. An empty dir disables watching.
func (s *SettingsService) SetWatchDir(dir string) error {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("%w: watch dir: %w", domain.ErrInvalidInput, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Watch.Dir = dir
	return s.Save(settings)
}

// Validate checks the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: %s requires an API key", domain.ErrLLMUnavailable, settings.LLM.Provider.Description())
	}

	gen := settings.Generation
	if gen.FlashcardsPerDocument < 1 || gen.QuestionsPerDocument < 1 {
		return fmt.Errorf("%w: per-document counts must be at least 1", domain.ErrInvalidInput)
	}
	if gen.Concurrency < 0 || gen.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: concurrency and requests per second must not be negative", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getProvider returns the stored provider. With none stored, a Gemini key in
// the environment selects Gemini.
func (s *SettingsService) getProvider() domain.AIProvider {
	val := s.configStore.GetString(keyAIProvider)
	if val == "" {
		if s.envAPIKey(domain.AIProviderGemini) != "" {
			return domain.AIProviderGemini
		}
		return ""
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return ""
	}
	return provider
}

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	for _, name := range apiKeyEnv[provider] {
		if v := s.getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func (s *SettingsService) getenvOr(name, fallback string) string {
	if v := s.getenv(name); v != "" {
		return v
	}
	return fallback
}
