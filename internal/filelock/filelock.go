// Package filelock provides advisory file locking so that two prism
// processes never interleave a read-modify-write of the same JSON document.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const lockFileMode = 0o600

// lockSuffix is appended to a data file path to name its lock file.
const lockSuffix = ".lock"

const retryInterval = 5 * time.Millisecond

// Timeout bounds how long Lock waits for another holder.
var Timeout = 10 * time.Second

// ErrTimeout is returned when the lock stays held for longer than Timeout.
var ErrTimeout = errors.New("timed out waiting for lock")

// PathFor returns the lock file path guarding dataPath.
func PathFor(dataPath string) string {
	return dataPath + lockSuffix
}

// Lock acquires an exclusive advisory lock on the file at path,
// creating it if it does not exist. The returned function releases
// the lock and must be called when the critical section is done.
//
// Only one holder at a time; other callers poll until the lock frees up
// or Timeout passes.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted source
	if err != nil {
		return nil, err
	}

	if err := acquire(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}

func acquire(f *os.File) error {
	deadline := time.Now().Add(Timeout)
	for {
		ok, err := tryLock(f)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s: %w", f.Name(), ErrTimeout)
		}
		time.Sleep(retryInterval)
	}
}

// With runs fn while holding the lock that guards dataPath.
// An unlock failure is reported only when fn itself succeeded.
func With(dataPath string, fn func() error) (err error) {
	unlock, err := Lock(PathFor(dataPath))
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer func() {
		if uerr := unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("releasing lock: %w", uerr)
		}
	}()
	return fn()
}
