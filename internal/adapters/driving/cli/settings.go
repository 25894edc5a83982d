package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/clauselab/internal/connectors/filesystem"
	"github.com/custodia-labs/clauselab/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the model provider, generation limits and the watch folder.

Settings are stored in ~/.clauselab/config.toml. API keys found in the
environment (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY) are used
without being written to disk.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the model used for answers, flashcards and quizzes.`,
	RunE:  runSettingsLLM,
}

var settingsWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Set the folder watched for new PDFs",
	Long:  `Set the folder the watch, tui and mcp commands ingest PDFs from. Pass "" to disable.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsWatch,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsWatchCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Generation settings
	cmd.Println("[Generation]")
	cmd.Printf("  Flashcards per document: %d\n", settings.Generation.FlashcardsPerDocument)
	cmd.Printf("  Questions per document: %d\n", settings.Generation.QuestionsPerDocument)
	cmd.Printf("  Concurrency: %d\n", settings.Generation.Concurrency)
	cmd.Printf("  Requests per second: %.2f\n", settings.Generation.RequestsPerSecond)
	cmd.Println()

	// Viewer and watch settings
	cmd.Println("[Viewer]")
	cmd.Printf("  Default scale: %.2f\n", settings.Viewer.DefaultScale)
	cmd.Println()
	cmd.Println("[Watch]")
	if settings.Watch.Dir != "" {
		cmd.Printf("  Folder: %s\n", settings.Watch.Dir)
	} else {
		cmd.Println("  Folder: (disabled)")
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'clauselab settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWatch(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	dir := filesystem.ResolvePath(args[0])
	if err := settingsService.SetWatchDir(dir); err != nil {
		return fmt.Errorf("failed to set watch folder: %w", err)
	}
	if dir == "" {
		cmd.Println("Watch folder disabled.")
		return nil
	}
	cmd.Printf("Watch folder set to: %s\n", dir)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		if hasEnvKey(selectedProvider) {
			cmd.Print("Enter API key [from environment]: ")
		} else {
			cmd.Print("Enter API key: ")
		}
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" && !hasEnvKey(selectedProvider) {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(reader *bufio.Reader) string {
	// Try to read password without echo
	if reader.Buffered() == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// hasEnvKey reports whether the settings service will find a key for provider
// in the environment.
func hasEnvKey(provider domain.AIProvider) bool {
	for _, name := range envKeyNames[provider] {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

var envKeyNames = map[domain.AIProvider][]string{
	domain.AIProviderGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"},
	domain.AIProviderOpenAI:    {"OPENAI_API_KEY"},
	domain.AIProviderAnthropic: {"ANTHROPIC_API_KEY"},
}
