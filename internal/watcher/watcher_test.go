package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, files []string) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	w, err := New(files, func() { calls.Add(1) })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, nil)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return &calls
}

func TestRenameTriggersCallback(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "Prism_Task_Data.json")
	calls := start(t, []string{store})

	tmp := filepath.Join(dir, ".tmp-1")
	require.NoError(t, os.WriteFile(tmp, []byte("[]"), 0o600))
	require.NoError(t, os.Rename(tmp, store))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestOtherFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	calls := start(t, []string{filepath.Join(dir, "Prism_Task_Data.json")})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Prism_Task_Data.json.lock"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	time.Sleep(3 * debounceDelay)
	assert.Zero(t, calls.Load())
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "x.json")}, func() {})
	assert.Error(t, err)
}
