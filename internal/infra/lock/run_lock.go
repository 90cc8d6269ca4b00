package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrAlreadyRunning = errors.New("another stock check is already running")

// RunLock is an advisory lock next to the state file that keeps two runs
// from touching the state at the same time.
type RunLock struct {
	path string
	lock *flock.Flock
}

func NewRunLock(path string) *RunLock {
	return &RunLock{
		path: path,
		lock: flock.New(path),
	}
}

// Acquire takes the lock without waiting. It returns ErrAlreadyRunning when
// another process holds it.
func (l *RunLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	return nil
}

func (l *RunLock) Release() error {
	return l.lock.Unlock()
}

func (l *RunLock) Path() string {
	return l.path
}
