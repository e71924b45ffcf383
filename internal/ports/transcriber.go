package ports

import (
	"context"

	"github.com/piyusharama/transcript-generator/internal/domain"
)

// Model represents a Whisper model
type Model struct {
	Name        string
	Size        int64 // bytes
	Description string
	Downloaded  bool
}

// TranscribeOpts configures transcription behavior
type TranscribeOpts struct {
	Model string
	// Progress receives model download progress when the model has to be fetched first.
	Progress func(downloaded, total int64)
}

// Transcriber handles speech-to-text conversion
type Transcriber interface {
	// Transcribe converts an audio file to a transcript
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOpts) (*domain.Transcript, error)

	// AvailableModels returns list of available models
	AvailableModels() []Model

	// IsModelDownloaded checks if a model is available locally
	IsModelDownloaded(model string) bool

	// DownloadModel downloads a model with progress callback
	DownloadModel(ctx context.Context, model string, progress func(downloaded, total int64)) error

	// DeleteModel removes a downloaded model
	DeleteModel(model string) error

	// IsAvailable checks if the whisper binary can be found
	IsAvailable() bool

	// GetBinaryPath returns the resolved whisper binary, or "" when missing
	GetBinaryPath() string
}

// AccelerationProbe reports whether hardware-accelerated inference is available.
type AccelerationProbe interface {
	Accelerated() bool
}

// ModelPolicy picks a model variant from the probed hardware capability
type ModelPolicy struct {
	Probe       AccelerationProbe
	Accelerated string
	Fallback    string
}

// DefaultModelPolicy uses the medium model with acceleration and base without.
func DefaultModelPolicy(probe AccelerationProbe) ModelPolicy {
	return ModelPolicy{Probe: probe, Accelerated: "medium", Fallback: "base"}
}

// Choose returns the model name for the current hardware
func (p ModelPolicy) Choose() string {
	if p.Probe != nil && p.Probe.Accelerated() {
		return p.Accelerated
	}
	return p.Fallback
}
