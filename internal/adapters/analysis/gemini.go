package analysis

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/piyusharama/transcript-generator/internal/domain"
	"github.com/piyusharama/transcript-generator/internal/ports"
)

// Gemini implements ports.Analyzer with the Gemini API
type Gemini struct {
	settings Settings
}

// NewGemini creates a Gemini analyzer
func NewGemini(settings Settings) *Gemini {
	return &Gemini{settings: settings}
}

func (g *Gemini) Name() string {
	return g.settings.Model
}

// Analyze sends the instruction and transcript as a single text content
func (g *Gemini) Analyze(ctx context.Context, req ports.AnalysisRequest) (string, error) {
	cc := &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.settings.HTTPClient != nil {
		cc.HTTPClient = g.settings.HTTPClient
	}
	if g.settings.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.settings.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, g.settings.Model,
		genai.Text(domain.AnalysisPrompt(req.Prompt, req.Transcript)),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(g.settings.Temperature),
			MaxOutputTokens: int32(g.settings.MaxTokens),
		})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		if text.Len() > 0 {
			return text.String(), nil
		}
	}

	return "", fmt.Errorf("empty response from Gemini")
}

var _ ports.Analyzer = (*Gemini)(nil)
