package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Analysis providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Default analysis models per provider
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// DefaultPrompt is the instruction prefilled in the prompt field
const DefaultPrompt = "Summarize the main points of this transcript and list any action items."

// Config represents the application configuration
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Paths    PathsConfig    `yaml:"paths"`
	Editor   EditorConfig   `yaml:"editor"`
	Log      LogConfig      `yaml:"log"`
}

// AnalysisConfig holds the remote analysis settings. The credential is never stored here.
type AnalysisConfig struct {
	Provider      string  `yaml:"provider"`
	Model         string  `yaml:"model"`
	MaxTokens     int     `yaml:"max_tokens"`
	Temperature   float32 `yaml:"temperature"`
	BaseURL       string  `yaml:"base_url"`
	DefaultPrompt string  `yaml:"default_prompt"`
}

// PathsConfig holds custom path overrides
type PathsConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	Whisper string `yaml:"whisper"`
}

// EditorConfig overrides the platform text editor
type EditorConfig struct {
	Command string `yaml:"command"`
}

// LogConfig controls the diagnostic log file
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Provider:      ProviderOpenAI,
			MaxTokens:     4400,
			Temperature:   0.7,
			DefaultPrompt: DefaultPrompt,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// AppDir returns the application directory (~/.transcriptgen)
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".transcriptgen"
	}
	return filepath.Join(home, ".transcriptgen")
}

// ModelsDir returns the models directory
func ModelsDir() string {
	return filepath.Join(AppDir(), "models")
}

// BinDir returns the bin directory
func BinDir() string {
	return filepath.Join(AppDir(), "bin")
}

// LogDir returns the diagnostic log directory
func LogDir() string {
	return filepath.Join(AppDir(), "logs")
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(AppDir(), "config.yaml")
}

// HistoryPath returns the recent-inputs file path
func HistoryPath() string {
	return filepath.Join(AppDir(), "recent.yaml")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{AppDir(), ModelsDir(), BinDir(), LogDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Load reads config from file, returns default if not exists
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads config from default path
func LoadDefault() (*Config, error) {
	return Load(ConfigPath())
}

// Save writes config to file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveDefault saves config to default path
func (c *Config) SaveDefault() error {
	return c.Save(ConfigPath())
}

// Validate checks values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	switch strings.ToLower(c.Analysis.Provider) {
	case ProviderOpenAI, ProviderGemini:
		c.Analysis.Provider = strings.ToLower(c.Analysis.Provider)
	default:
		return fmt.Errorf("unknown analysis provider %q (use openai or gemini)", c.Analysis.Provider)
	}
	if c.Analysis.MaxTokens <= 0 {
		return fmt.Errorf("analysis.max_tokens must be positive, got %d", c.Analysis.MaxTokens)
	}
	if c.Analysis.Temperature < 0 || c.Analysis.Temperature > 2 {
		return fmt.Errorf("analysis.temperature must be between 0 and 2, got %g", c.Analysis.Temperature)
	}
	return nil
}

// AnalysisModel returns the configured model, or the provider default when unset
func (c *Config) AnalysisModel() string {
	if m := strings.TrimSpace(c.Analysis.Model); m != "" {
		return m
	}
	if c.Analysis.Provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}

// APIKeyEnv lists the environment variables consulted for the analysis credential, in order.
func (c *Config) APIKeyEnv() []string {
	if c.Analysis.Provider == ProviderGemini {
		return []string{"TRANSCRIPTGEN_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	return []string{"TRANSCRIPTGEN_API_KEY", "OPENAI_API_KEY"}
}

// APIKeyFromEnv returns the first non-empty credential from the environment
func (c *Config) APIKeyFromEnv() string {
	for _, name := range c.APIKeyEnv() {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
