package ports

import "context"

// AnalysisRequest is a single synchronous call to the remote analysis API
type AnalysisRequest struct {
	APIKey     string
	Prompt     string // user instruction
	Transcript string
}

// Analyzer sends a transcript to a remote language model and returns its reply
type Analyzer interface {
	// Analyze returns the model's text reply. No retries are attempted.
	Analyze(ctx context.Context, req AnalysisRequest) (string, error)

	// Name identifies the backing model, for log lines
	Name() string
}

// EditorLauncher opens a file in a plain-text editor
type EditorLauncher interface {
	Open(path string) error
}

// JobLocker guards a job's output directory against concurrent runs from other processes
type JobLocker interface {
	// Lock acquires the lock for dir, returning a release function.
	Lock(dir string) (unlock func() error, err error)
}
