// Package analysis sends transcripts to a hosted language model for analysis.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/piyusharama/transcript-generator/internal/domain"
	"github.com/piyusharama/transcript-generator/internal/ports"
)

// Settings are the generation parameters shared by every provider
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float32
	BaseURL     string
	HTTPClient  *http.Client
}

// OpenAI implements ports.Analyzer with the chat completions API.
// A client is built per call because the credential is supplied per run.
type OpenAI struct {
	settings Settings
}

// NewOpenAI creates an OpenAI analyzer
func NewOpenAI(settings Settings) *OpenAI {
	return &OpenAI{settings: settings}
}

func (o *OpenAI) Name() string {
	return o.settings.Model
}

// Analyze sends one user message holding the instruction and transcript
func (o *OpenAI) Analyze(ctx context.Context, req ports.AnalysisRequest) (string, error) {
	cfg := openai.DefaultConfig(req.APIKey)
	if o.settings.BaseURL != "" {
		cfg.BaseURL = o.settings.BaseURL
	}
	if o.settings.HTTPClient != nil {
		cfg.HTTPClient = o.settings.HTTPClient
	}
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.settings.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: domain.AnalysisPrompt(req.Prompt, req.Transcript),
			},
		},
		MaxTokens:   o.settings.MaxTokens,
		Temperature: requestTemperature(o.settings.Temperature),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("OpenAI HTTP %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("OpenAI request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// requestTemperature keeps a configured zero on the wire; the request field is omitempty
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

var _ ports.Analyzer = (*OpenAI)(nil)
