package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"posecorpus/internal/services"
)

// LockFileName is created in the output directory while a run writes to it.
const LockFileName = ".posecorpus.lock"

// OutputLock is an exclusive lock on an output directory.
type OutputLock struct {
	lock *flock.Flock
}

// LockOutput takes the lock of dir, creating dir if needed. It fails when
// another process holds it.
func LockOutput(dir string) (*OutputLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "output dir", dir, err)
	}
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "lock",
			fmt.Sprintf("%s is in use by another run", dir), nil)
	}
	return &OutputLock{lock: lock}, nil
}

// Path returns the lock file path.
func (l *OutputLock) Path() string { return l.lock.Path() }

// Release unlocks and removes the lock file.
func (l *OutputLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	path := l.lock.Path()
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release output lock: %w", err)
	}
	_ = os.Remove(path)
	return nil
}
