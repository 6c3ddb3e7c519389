// Package config handles configuration and game variants for gamemaster.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/diogo/gamemaster/internal/errors"
	"github.com/diogo/gamemaster/internal/models"
)

// Provider names understood by the provider factory
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderDemo      = "demo"
)

// Environment variables
const (
	EnvProvider     = "GAMEMASTER_PROVIDER"
	EnvModel        = "GAMEMASTER_MODEL"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style,omitempty"`   // glamour style name or JSON theme path; empty follows the TUI theme
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// Config represents the user configuration
type Config struct {
	// Provider selects the completion backend: gemini, anthropic, openai or demo.
	Provider string `json:"provider"`
	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`
	// BaseURL is only used by the openai provider, for compatible endpoints.
	BaseURL     string  `json:"base_url,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	// StallTimeoutSeconds bounds how long a request may go without output.
	// Zero waits forever.
	StallTimeoutSeconds int            `json:"stall_timeout_seconds"`
	DefaultVariant      string         `json:"default_variant"`
	TUITheme            string         `json:"tui_theme,omitempty"` // overrides the variant theme
	LogFile             string         `json:"log_file,omitempty"`
	LogLevel            string         `json:"log_level,omitempty"`
	Markdown            MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Provider:            ProviderGemini,
		Temperature:         models.DefaultTemperature,
		MaxTokens:           models.DefaultMaxTokens,
		StallTimeoutSeconds: 90,
		DefaultVariant:      VariantOregonTrail,
		LogLevel:            "info",
		Markdown:            DefaultMarkdownConfig(),
	}
}

// StallTimeout returns the stall timeout as a duration
func (c Config) StallTimeout() time.Duration {
	if c.StallTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.StallTimeoutSeconds) * time.Second
}

// Validate checks the configuration values
func (c Config) Validate() error {
	if !IsKnownProvider(c.Provider) {
		return apperrors.NewConfigError("provider", fmt.Sprintf("unknown provider %q (want one of %s)",
			c.Provider, strings.Join(AvailableProviders(), ", ")))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return apperrors.NewConfigError("temperature", fmt.Sprintf("%v is outside [0, 2]", c.Temperature))
	}
	if c.MaxTokens <= 0 {
		return apperrors.NewConfigError("max_tokens", "must be positive")
	}
	if c.StallTimeoutSeconds < 0 {
		return apperrors.NewConfigError("stall_timeout_seconds", "must not be negative")
	}
	return nil
}

// AvailableProviders returns the provider names
func AvailableProviders() []string {
	return []string{
		ProviderGemini,
		ProviderAnthropic,
		ProviderOpenAI,
		ProviderDemo,
	}
}

// IsKnownProvider reports whether name is a supported provider
func IsKnownProvider(name string) bool {
	for _, p := range AvailableProviders() {
		if p == name {
			return true
		}
	}
	return false
}

// APIKey returns the API key for provider from the environment
func APIKey(provider string) string {
	switch provider {
	case ProviderGemini:
		return os.Getenv(EnvGeminiKey)
	case ProviderAnthropic:
		return os.Getenv(EnvAnthropicKey)
	case ProviderOpenAI:
		return os.Getenv(EnvOpenAIKey)
	default:
		return ""
	}
}

// APIKeyEnv returns the name of the variable holding provider's API key
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderGemini:
		return EnvGeminiKey
	case ProviderAnthropic:
		return EnvAnthropicKey
	case ProviderOpenAI:
		return EnvOpenAIKey
	default:
		return ""
	}
}

// LoadEnvFile loads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadEnvFile() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides provider and model from the environment
func ApplyEnv(cfg Config) Config {
	if p := os.Getenv(EnvProvider); p != "" {
		cfg.Provider = p
	}
	if m := os.Getenv(EnvModel); m != "" {
		cfg.Model = m
	}
	return cfg
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".gamemaster"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path, from config or the default location
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "gamemaster.log"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
