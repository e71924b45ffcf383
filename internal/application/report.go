package application

import (
	"github.com/spf13/afero"

	"github.com/piyusharama/transcript-generator/internal/domain"
	"github.com/piyusharama/transcript-generator/internal/ports"
)

// ReportService opens analysis reports in the platform text editor
type ReportService struct {
	fs     afero.Fs
	editor ports.EditorLauncher
}

// NewReportService creates a new report service
func NewReportService(fs afero.Fs, editor ports.EditorLauncher) *ReportService {
	return &ReportService{fs: fs, editor: editor}
}

// Open launches the editor on path. It returns domain.ErrNoReport when the file is missing.
func (s *ReportService) Open(path string) error {
	if path == "" {
		return domain.ErrNoReport
	}
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNoReport
	}
	return s.editor.Open(path)
}

// OpenForInput opens the report belonging to a media input
func (s *ReportService) OpenForInput(inputPath string) (string, error) {
	job, err := domain.NewJob(inputPath)
	if err != nil {
		return "", err
	}
	return job.ReportPath, s.Open(job.ReportPath)
}
