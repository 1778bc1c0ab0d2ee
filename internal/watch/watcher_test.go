package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherInvalidatesOnMarkdownWrite(t *testing.T) {
	root := t.TempDir()
	var hits atomic.Int64

	w, err := NewWatcher(root, func() { hits.Add(1) }, slog.Default())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start(t.Context()))

	require.NoError(t, os.WriteFile(filepath.Join(root, "post.md"), []byte("# Hello\n"), 0o644))

	require.Eventually(t, func() bool {
		return hits.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	root := t.TempDir()
	var hits atomic.Int64

	w, err := NewWatcher(root, func() { hits.Add(1) }, slog.Default())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start(t.Context()))

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("scratch"), 0o644))

	time.Sleep(200 * time.Millisecond)
	require.Zero(t, hits.Load())
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	var hits atomic.Int64

	w, err := NewWatcher(root, func() { hits.Add(1) }, slog.Default())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start(t.Context()))

	sub := filepath.Join(root, "guides")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// The directory create itself counts as a change.
	require.Eventually(t, func() bool {
		return hits.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
	before := hits.Load()

	require.NoError(t, os.WriteFile(filepath.Join(sub, "intro.md"), []byte("# Intro\n"), 0o644))
	require.Eventually(t, func() bool {
		return hits.Load() > before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerFiresPeriodically(t *testing.T) {
	var hits atomic.Int64

	s, err := NewScheduler(20*time.Millisecond, func() { hits.Add(1) }, slog.Default())
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return hits.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRejectsNonPositiveInterval(t *testing.T) {
	_, err := NewScheduler(0, func() {}, slog.Default())
	require.Error(t, err)
}
