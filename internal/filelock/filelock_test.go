package filelock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCreatesLockFileAndRunsFn(t *testing.T) {
	data := filepath.Join(t.TempDir(), "Prism_Task_Data.json")

	ran := false
	err := With(data, func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	_, statErr := os.Stat(PathFor(data))
	assert.NoError(t, statErr)
}

func TestWithPropagatesFnError(t *testing.T) {
	data := filepath.Join(t.TempDir(), "x.json")
	boom := errors.New("boom")

	err := With(data, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	// The lock is released: a second critical section can run.
	assert.NoError(t, With(data, func() error { return nil }))
}

func TestLockMissingDir(t *testing.T) {
	_, err := Lock(filepath.Join(t.TempDir(), "missing", "x.lock"))
	assert.Error(t, err)
}

func TestLockTimesOutWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.lock")
	unlock, err := Lock(path)
	require.NoError(t, err)

	old := Timeout
	Timeout = 20 * time.Millisecond
	t.Cleanup(func() { Timeout = old })

	_, err = Lock(path)
	require.ErrorIs(t, err, ErrTimeout)

	require.NoError(t, unlock())
	unlock, err = Lock(path)
	require.NoError(t, err)
	assert.NoError(t, unlock())
}
