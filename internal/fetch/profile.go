package fetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrProfileBusy means another session holds the browser profile directory.
var ErrProfileBusy = errors.New("browser profile is in use by another session")

type profileLock struct {
	fl *flock.Flock
}

// lockProfile takes an exclusive lock on dir. An empty dir needs no lock.
func lockProfile(dir string) (*profileLock, error) {
	if dir == "" {
		return &profileLock{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("profile dir: %w", err)
	}
	fl := flock.New(filepath.Join(dir, ".leadgen.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("profile lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileBusy, dir)
	}
	return &profileLock{fl: fl}, nil
}

func (l *profileLock) release() {
	if l == nil || l.fl == nil {
		return
	}
	_ = l.fl.Unlock()
}
