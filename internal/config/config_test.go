package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Analysis.Provider != ProviderOpenAI {
		t.Errorf("Default provider = %s, want openai", cfg.Analysis.Provider)
	}
	if cfg.Analysis.MaxTokens != 4400 {
		t.Errorf("Default max tokens = %d, want 4400", cfg.Analysis.MaxTokens)
	}
	if cfg.Analysis.Temperature != 0.7 {
		t.Errorf("Default temperature = %v, want 0.7", cfg.Analysis.Temperature)
	}
	if cfg.AnalysisModel() != "gpt-4o-mini" {
		t.Errorf("Default analysis model = %s, want gpt-4o-mini", cfg.AnalysisModel())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_AnalysisModel(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{ProviderOpenAI, "", "gpt-4o-mini"},
		{ProviderGemini, "", "gemini-2.0-flash"},
		{ProviderOpenAI, "gpt-4o", "gpt-4o"},
		{ProviderGemini, " gemini-1.5-pro ", "gemini-1.5-pro"},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.model, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Analysis.Provider = tt.provider
			cfg.Analysis.Model = tt.model
			if got := cfg.AnalysisModel(); got != tt.want {
				t.Errorf("AnalysisModel() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"gemini upper case", func(c *Config) { c.Analysis.Provider = "Gemini" }, false},
		{"unknown provider", func(c *Config) { c.Analysis.Provider = "claude" }, true},
		{"zero tokens", func(c *Config) { c.Analysis.MaxTokens = 0 }, true},
		{"temperature too high", func(c *Config) { c.Analysis.Temperature = 3 }, true},
		{"zero temperature", func(c *Config) { c.Analysis.Temperature = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Save_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Analysis.Provider = ProviderGemini
	cfg.Analysis.DefaultPrompt = "List the speakers."
	cfg.Paths.FFmpeg = "/opt/ffmpeg/bin/ffmpeg"
	cfg.Editor.Command = "code --wait"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("editor:\n  command: nano\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Editor.Command != "nano" {
		t.Errorf("Editor.Command = %s, want nano", cfg.Editor.Command)
	}
	if cfg.Analysis.MaxTokens != 4400 {
		t.Errorf("MaxTokens = %d, want default 4400", cfg.Analysis.MaxTokens)
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Analysis.Provider != ProviderOpenAI {
		t.Errorf("Load() of a missing file should return defaults")
	}
}

func TestLoad_Invalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("analysis: [not, a, map]"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected parse error")
	}
}

func TestConfig_APIKeyFromEnv(t *testing.T) {
	t.Setenv("TRANSCRIPTGEN_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", " sk-openai ")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg := DefaultConfig()
	if got := cfg.APIKeyFromEnv(); got != "sk-openai" {
		t.Errorf("openai APIKeyFromEnv() = %q, want sk-openai", got)
	}

	cfg.Analysis.Provider = ProviderGemini
	if got := cfg.APIKeyFromEnv(); got != "gm-key" {
		t.Errorf("gemini APIKeyFromEnv() = %q, want gm-key", got)
	}

	t.Setenv("TRANSCRIPTGEN_API_KEY", "override")
	if got := cfg.APIKeyFromEnv(); got != "override" {
		t.Errorf("APIKeyFromEnv() = %q, want override", got)
	}
}

func TestAppDir(t *testing.T) {
	dir := AppDir()
	if dir == "" {
		t.Error("AppDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".transcriptgen")
	if dir != expected {
		t.Errorf("AppDir() = %s, want %s", dir, expected)
	}
	if LogDir() != filepath.Join(expected, "logs") {
		t.Errorf("LogDir() = %s", LogDir())
	}
}
