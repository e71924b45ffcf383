package analysis

import (
	"fmt"

	"github.com/piyusharama/transcript-generator/internal/config"
	"github.com/piyusharama/transcript-generator/internal/ports"
)

// New returns the analyzer selected by the configured provider
func New(cfg *config.Config) (ports.Analyzer, error) {
	settings := Settings{
		Model:       cfg.AnalysisModel(),
		MaxTokens:   cfg.Analysis.MaxTokens,
		Temperature: cfg.Analysis.Temperature,
		BaseURL:     cfg.Analysis.BaseURL,
	}

	switch cfg.Analysis.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(settings), nil
	case config.ProviderGemini:
		return NewGemini(settings), nil
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Analysis.Provider)
	}
}
