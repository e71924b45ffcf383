package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stage names one pipeline step
type Stage string

const (
	StageExtraction    Stage = "extraction"
	StageTranscription Stage = "transcription"
	StageAnalysis      Stage = "analysis"
)

// RunState is the lifecycle state of the pipeline controller
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateCanceled  RunState = "canceled"
	StateFailed    RunState = "failed"
)

// IsTerminal reports whether a run has finished in this state
func (s RunState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCanceled, StateFailed:
		return true
	default:
		return false
	}
}

var (
	// Extensions the extraction stage copies instead of decoding
	AudioExtensions = []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a"}
	// Extensions offered by the file picker as video input
	VideoExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".flv", ".wmv"}
)

// MediaExtensions lists the video extensions followed by the audio ones
func MediaExtensions() []string {
	exts := make([]string, 0, len(VideoExtensions)+len(AudioExtensions))
	exts = append(exts, VideoExtensions...)
	return append(exts, AudioExtensions...)
}

// IsAudioFile reports whether path has a recognized audio extension
func IsAudioFile(path string) bool {
	return hasExtension(path, AudioExtensions)
}

// IsMediaFile reports whether path looks like a supported video or audio file
func IsMediaFile(path string) bool {
	return hasExtension(path, AudioExtensions) || hasExtension(path, VideoExtensions)
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Job is one user-initiated run over a single source file.
// All artifacts live in a directory next to the source, named after its stem.
type Job struct {
	ID             string
	SourcePath     string
	Stem           string
	OutputDir      string
	AudioPath      string
	TranscriptPath string
	ReportPath     string
	CreatedAt      time.Time
}

// NewJob derives the artifact layout for a source file
func NewJob(sourcePath string) (*Job, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, ErrNoInput
	}

	base := filepath.Base(sourcePath)
	stem := base
	// a dotfile such as ".recording" is its own stem
	if ext := filepath.Ext(base); ext != base {
		stem = strings.TrimSuffix(base, ext)
	}
	if stem == "" || stem == "." || stem == ".." || stem == string(filepath.Separator) {
		return nil, fmt.Errorf("cannot derive output name from %q", sourcePath)
	}

	outDir := filepath.Join(filepath.Dir(sourcePath), stem)

	return &Job{
		ID:             uuid.NewString(),
		SourcePath:     sourcePath,
		Stem:           stem,
		OutputDir:      outDir,
		AudioPath:      filepath.Join(outDir, stem+".mp3"),
		TranscriptPath: filepath.Join(outDir, stem+".txt"),
		ReportPath:     filepath.Join(outDir, stem+"_report.txt"),
		CreatedAt:      time.Now(),
	}, nil
}

// Artifact describes one expected output of a job
type Artifact struct {
	Stage Stage
	Label string
	Path  string
}

// Artifacts lists the job's outputs in pipeline order
func (j *Job) Artifacts() []Artifact {
	return []Artifact{
		{Stage: StageExtraction, Label: "Audio", Path: j.AudioPath},
		{Stage: StageTranscription, Label: "Transcript", Path: j.TranscriptPath},
		{Stage: StageAnalysis, Label: "Report", Path: j.ReportPath},
	}
}
