package application

import (
	"os"

	"github.com/spf13/afero"

	"github.com/piyusharama/transcript-generator/internal/domain"
)

// ArtifactStatus is one stage artifact and whether it is on disk
type ArtifactStatus struct {
	domain.Artifact
	Exists bool
	Size   int64
}

// JobStatus lists the artifacts a run for an input would reuse
type JobStatus struct {
	Job       *domain.Job
	Artifacts []ArtifactStatus
}

// Complete reports whether every artifact already exists
func (s *JobStatus) Complete() bool {
	for _, a := range s.Artifacts {
		if !a.Exists {
			return false
		}
	}
	return true
}

// StatusService inspects and clears the artifacts of a job's output folder
type StatusService struct {
	fs afero.Fs
}

// NewStatusService creates a new status service
func NewStatusService(fs afero.Fs) *StatusService {
	return &StatusService{fs: fs}
}

// Status returns the artifact state for inputPath
func (s *StatusService) Status(inputPath string) (*JobStatus, error) {
	job, err := domain.NewJob(inputPath)
	if err != nil {
		return nil, err
	}

	status := &JobStatus{Job: job}
	for _, artifact := range job.Artifacts() {
		entry := ArtifactStatus{Artifact: artifact}
		info, err := s.fs.Stat(artifact.Path)
		switch {
		case err == nil:
			entry.Exists = true
			entry.Size = info.Size()
		case !os.IsNotExist(err):
			return nil, err
		}
		status.Artifacts = append(status.Artifacts, entry)
	}
	return status, nil
}

// Clean removes the artifacts for inputPath so the next run regenerates them.
// Only artifacts of stages at or after from are removed. It returns the number of files deleted.
func (s *StatusService) Clean(inputPath string, from domain.Stage) (int, error) {
	job, err := domain.NewJob(inputPath)
	if err != nil {
		return 0, err
	}

	removing := false
	count := 0
	for _, artifact := range job.Artifacts() {
		if artifact.Stage == from {
			removing = true
		}
		if !removing {
			continue
		}
		for _, path := range []string{artifact.Path, artifact.Path + partSuffix} {
			err := s.fs.Remove(path)
			if err == nil {
				if path == artifact.Path {
					count++
				}
				continue
			}
			if !os.IsNotExist(err) {
				return count, err
			}
		}
	}
	return count, nil
}
