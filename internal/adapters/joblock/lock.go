// Package joblock keeps two processes from writing the same job folder.
package joblock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/piyusharama/transcript-generator/internal/domain"
	"github.com/piyusharama/transcript-generator/internal/ports"
)

// LockFileName is created inside each job's output folder
const LockFileName = ".transcriptgen.lock"

// Locker implements ports.JobLocker with advisory file locks
type Locker struct{}

// New creates a locker
func New() *Locker {
	return &Locker{}
}

// Lock takes the folder lock without blocking. It fails with domain.ErrJobLocked when held elsewhere.
func (l *Locker) Lock(dir string) (func() error, error) {
	lock := flock.New(filepath.Join(dir, LockFileName))

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrJobLocked, dir)
	}
	return lock.Unlock, nil
}

var _ ports.JobLocker = (*Locker)(nil)
