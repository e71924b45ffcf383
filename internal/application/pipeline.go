package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"

	"github.com/piyusharama/transcript-generator/internal/domain"
	"github.com/piyusharama/transcript-generator/internal/ports"
	"github.com/piyusharama/transcript-generator/internal/runlog"
)

// RunConfig is the user input captured when a run starts
type RunConfig struct {
	AnalysisEnabled bool
	APIKey          string
	Prompt          string
}

// RunResult describes how a run ended
type RunResult struct {
	Job   *domain.Job
	State domain.RunState

	Transcript string

	// ReportPath is set only when this run produced a report.
	ReportPath string
	// AnalysisErr holds a non-fatal analysis request failure.
	AnalysisErr error

	AudioFromCache      bool
	TranscriptFromCache bool
	ReportFromCache     bool
}

// ReportProduced reports whether the run wrote a new analysis report
func (r *RunResult) ReportProduced() bool {
	return r != nil && r.ReportPath != ""
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLocker guards each job's output directory with locker.
func WithLocker(locker ports.JobLocker) Option {
	return func(p *Pipeline) { p.locker = locker }
}

// WithAnalyzer sets the remote analysis backend.
func WithAnalyzer(analyzer ports.Analyzer) Option {
	return func(p *Pipeline) { p.analyzer = analyzer }
}

// Pipeline runs extraction, transcription and optional analysis for one input at a time.
// Each stage skips when its artifact already exists, and a cancel request halts
// the run at the next stage boundary without interrupting the stage in flight.
type Pipeline struct {
	fs          afero.Fs
	extractor   ports.AudioExtractor
	transcriber ports.Transcriber
	analyzer    ports.Analyzer
	locker      ports.JobLocker
	policy      ports.ModelPolicy
	log         *runlog.Sink

	mu       sync.Mutex
	state    domain.RunState
	canceled atomic.Bool
}

// NewPipeline creates a pipeline writing artifacts through fs and status lines to log
func NewPipeline(
	fs afero.Fs,
	extractor ports.AudioExtractor,
	transcriber ports.Transcriber,
	policy ports.ModelPolicy,
	log *runlog.Sink,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		fs:          fs,
		extractor:   extractor,
		transcriber: transcriber,
		policy:      policy,
		log:         log,
		state:       domain.StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Log returns the sink receiving status lines
func (p *Pipeline) Log() *runlog.Sink {
	return p.log
}

// State returns the current run state
func (p *Pipeline) State() domain.RunState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cancel asks the running job to stop at the next stage boundary.
// It returns false when no run is in progress.
func (p *Pipeline) Cancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != domain.StateRunning {
		return false
	}
	if p.canceled.Swap(true) {
		return true
	}
	p.log.Canceledf("Cancel requested... next step is halted after finishing the current one.")
	return true
}

// CancelRequested reports whether the current run has been asked to stop
func (p *Pipeline) CancelRequested() bool {
	return p.canceled.Load()
}

func (p *Pipeline) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == domain.StateRunning {
		return false
	}
	p.state = domain.StateRunning
	p.canceled.Store(false)
	return true
}

func (p *Pipeline) finish(result *RunResult, err error) (*RunResult, error) {
	state := domain.StateCompleted
	switch {
	case errors.Is(err, domain.ErrCanceled):
		state = domain.StateCanceled
		err = nil
		p.log.Canceledf("Run canceled.")
	case err != nil:
		state = domain.StateFailed
	}

	p.mu.Lock()
	p.state = state
	p.mu.Unlock()

	result.State = state
	return result, err
}

// Run processes inputPath. Cancellation is not an error: the result carries StateCanceled.
// ctx is only honored by the underlying tools and is not tied to Cancel.
func (p *Pipeline) Run(ctx context.Context, inputPath string, cfg RunConfig) (*RunResult, error) {
	job, err := domain.NewJob(inputPath)
	if err != nil {
		return nil, err
	}

	if !p.begin() {
		return nil, domain.ErrRunInProgress
	}

	p.log.Reset()
	p.log.Infof("Processing started...")

	result := &RunResult{Job: job}

	if err := p.fs.MkdirAll(job.OutputDir, 0755); err != nil {
		p.log.Errorf("Error creating output folder: %v", err)
		return p.finish(result, domain.NewStageError(domain.StageExtraction, domain.ErrPersist, err))
	}

	if p.locker != nil {
		unlock, err := p.locker.Lock(job.OutputDir)
		if err != nil {
			p.log.Errorf("Error: %v", err)
			return p.finish(result, err)
		}
		defer func() { _ = unlock() }()
	}

	fromCache, err := p.extractAudio(ctx, job)
	if err != nil {
		return p.finish(result, err)
	}
	result.AudioFromCache = fromCache

	transcript, fromCache, err := p.transcribe(ctx, job)
	if err != nil {
		return p.finish(result, err)
	}
	result.Transcript = transcript
	result.TranscriptFromCache = fromCache

	if cfg.AnalysisEnabled {
		outcome, err := p.analyze(ctx, job, transcript, cfg)
		if outcome == analysisProduced {
			result.ReportPath = job.ReportPath
		}
		result.ReportFromCache = outcome == analysisFromCache

		switch {
		case errors.Is(err, domain.ErrCanceled):
			return p.finish(result, err)
		case errors.Is(err, domain.ErrAnalysisRequest):
			result.AnalysisErr = err
		case err != nil:
			return p.finish(result, err)
		}
	}

	p.log.Infof("Processing complete.")
	return p.finish(result, nil)
}

func (p *Pipeline) extractAudio(ctx context.Context, job *domain.Job) (bool, error) {
	exists, err := afero.Exists(p.fs, job.AudioPath)
	if err != nil {
		p.log.Errorf("Error extracting audio: %v", err)
		return false, domain.NewStageError(domain.StageExtraction, domain.ErrPersist, err)
	}
	if exists {
		p.log.Infof("Skipping audio extraction; %s exists.", job.AudioPath)
		return true, nil
	}

	if p.canceled.Load() {
		p.log.Canceledf("Canceled before extraction started.")
		return false, domain.ErrCanceled
	}

	partPath := job.AudioPath + partSuffix
	if domain.IsAudioFile(job.SourcePath) {
		p.log.Infof("Input is audio; copying as .mp3")
		err = copyFile(p.fs, job.SourcePath, partPath)
	} else {
		p.log.Infof("Extracting audio from video...")
		err = p.extractor.ExtractAudio(ctx, job.SourcePath, partPath)
	}
	if err != nil {
		_ = p.fs.Remove(partPath)
		p.log.Errorf("Error extracting audio: %v", err)
		return false, domain.NewStageError(domain.StageExtraction, domain.ErrExtraction, err)
	}

	if err := p.fs.Rename(partPath, job.AudioPath); err != nil {
		_ = p.fs.Remove(partPath)
		p.log.Errorf("Error saving audio: %v", err)
		return false, domain.NewStageError(domain.StageExtraction, domain.ErrPersist, err)
	}

	if p.canceled.Load() {
		p.log.Canceledf("Canceled after extraction.")
		return false, domain.ErrCanceled
	}

	p.log.Infof("Audio extracted to %s", job.AudioPath)
	return false, nil
}

func (p *Pipeline) transcribe(ctx context.Context, job *domain.Job) (string, bool, error) {
	exists, err := afero.Exists(p.fs, job.TranscriptPath)
	if err != nil {
		p.log.Errorf("Error during transcription: %v", err)
		return "", false, domain.NewStageError(domain.StageTranscription, domain.ErrPersist, err)
	}
	if exists {
		p.log.Infof("Skipping transcription; %s exists.", job.TranscriptPath)
		data, err := afero.ReadFile(p.fs, job.TranscriptPath)
		if err != nil {
			p.log.Errorf("Error reading transcript: %v", err)
			return "", false, domain.NewStageError(domain.StageTranscription, domain.ErrPersist, err)
		}
		return string(data), true, nil
	}

	if p.canceled.Load() {
		p.log.Canceledf("Canceled before transcription.")
		return "", false, domain.ErrCanceled
	}

	model := p.policy.Choose()
	p.log.Infof("Transcribing with Whisper (auto model selection).")
	p.log.Infof("Using model: %s", model)

	opts := ports.TranscribeOpts{Model: model}
	if !p.transcriber.IsModelDownloaded(model) {
		p.log.Infof("Model %s is not downloaded yet; fetching it first.", model)
		opts.Progress = downloadProgress(p.log, model)
	}

	transcript, err := p.transcriber.Transcribe(ctx, job.AudioPath, opts)
	if err != nil {
		p.log.Errorf("Error during transcription: %v", err)
		return "", false, domain.NewStageError(domain.StageTranscription, domain.ErrTranscription, err)
	}

	// A transcript finished after a cancel request is discarded.
	if p.canceled.Load() {
		p.log.Canceledf("Canceled after transcription.")
		return "", false, domain.ErrCanceled
	}

	text := transcript.ToText()
	if err := writeFileAtomic(p.fs, job.TranscriptPath, []byte(text)); err != nil {
		p.log.Errorf("Error saving transcript: %v", err)
		return "", false, domain.NewStageError(domain.StageTranscription, domain.ErrPersist, err)
	}

	p.log.Infof("Transcript saved to %s", job.TranscriptPath)
	return text, false, nil
}

type analysisOutcome int

const (
	analysisSkipped analysisOutcome = iota
	analysisFromCache
	analysisProduced
)

func (p *Pipeline) analyze(ctx context.Context, job *domain.Job, transcript string, cfg RunConfig) (analysisOutcome, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		p.log.Warnf("No API key. Skipping analysis.")
		return analysisSkipped, nil
	}

	exists, err := afero.Exists(p.fs, job.ReportPath)
	if err != nil {
		p.log.Errorf("Error saving report: %v", err)
		return analysisSkipped, domain.NewStageError(domain.StageAnalysis, domain.ErrPersist, err)
	}
	if exists {
		p.log.Infof("Skipping analysis; %s exists.", job.ReportPath)
		return analysisFromCache, nil
	}

	if p.canceled.Load() {
		p.log.Canceledf("Canceled before analysis.")
		return analysisSkipped, domain.ErrCanceled
	}

	if p.analyzer == nil {
		err := errors.New("no analysis provider configured")
		p.log.Errorf("Analysis error: %v", err)
		return analysisSkipped, domain.NewStageError(domain.StageAnalysis, domain.ErrAnalysisRequest, err)
	}

	p.log.Infof("Analyzing transcript with %s...", p.analyzer.Name())
	reply, err := p.analyzer.Analyze(ctx, ports.AnalysisRequest{
		APIKey:     apiKey,
		Prompt:     cfg.Prompt,
		Transcript: transcript,
	})
	if err != nil {
		p.log.Errorf("Analysis error: %v", err)
		return analysisSkipped, domain.NewStageError(domain.StageAnalysis, domain.ErrAnalysisRequest, err)
	}

	p.log.Infof("Analysis result:\n%s", reply)

	if err := writeFileAtomic(p.fs, job.ReportPath, []byte(reply)); err != nil {
		p.log.Errorf("Error saving report: %v", err)
		return analysisSkipped, domain.NewStageError(domain.StageAnalysis, domain.ErrPersist, err)
	}
	p.log.Infof("Analysis report saved to %s", job.ReportPath)

	// The report stays on disk; the run still ends canceled.
	if p.canceled.Load() {
		p.log.Canceledf("Canceled after analysis.")
		return analysisProduced, domain.ErrCanceled
	}

	return analysisProduced, nil
}

// downloadProgress logs model download progress at every tenth of the total.
func downloadProgress(log *runlog.Sink, model string) func(downloaded, total int64) {
	last := int64(-1)
	return func(downloaded, total int64) {
		if total <= 0 {
			return
		}
		step := downloaded * 10 / total
		if step == last {
			return
		}
		last = step
		log.Infof("Downloading model %s: %d%%", model, step*10)
	}
}
