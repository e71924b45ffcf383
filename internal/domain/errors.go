package domain

import (
	"errors"
	"fmt"
)

var (
	// Stage failure kinds
	ErrExtraction      = errors.New("audio extraction failed")
	ErrTranscription   = errors.New("transcription failed")
	ErrPersist         = errors.New("failed to persist artifact")
	ErrAnalysisRequest = errors.New("analysis request failed")

	// ErrCanceled signals a cooperative early exit. It is not a failure.
	ErrCanceled = errors.New("run canceled")

	// Run control errors
	ErrRunInProgress = errors.New("a run is already in progress")
	ErrNoInput       = errors.New("no input file selected")
	ErrJobLocked     = errors.New("job directory is in use by another process")
	ErrNoReport      = errors.New("no report file found")

	// Dependency errors
	ErrModelNotFound   = errors.New("model not found")
	ErrFFmpegNotFound  = errors.New("ffmpeg not found")
	ErrWhisperNotFound = errors.New("whisper binary not found (install whisper.cpp)")
)

// StageError ties a failure to the pipeline stage that produced it.
type StageError struct {
	Stage Stage
	Kind  error // one of the stage failure kinds above
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *StageError) Unwrap() []error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewStageError wraps err as a failure of kind in stage.
func NewStageError(stage Stage, kind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
