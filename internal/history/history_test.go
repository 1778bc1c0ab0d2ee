package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndRecent(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	started := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(t.Context(), Recompute{
		StartedAt: started,
		Duration:  120 * time.Millisecond,
		Pages:     14,
	}))
	require.NoError(t, s.Record(t.Context(), Recompute{
		StartedAt: started.Add(time.Minute),
		Duration:  80 * time.Millisecond,
		Pages:     0,
		Error:     "scan content root: permission denied",
	}))

	recent, err := s.Recent(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	require.Equal(t, "scan content root: permission denied", recent[0].Error)
	require.Equal(t, 14, recent[1].Pages)
	require.Equal(t, 120*time.Millisecond, recent[1].Duration)
	require.True(t, recent[1].StartedAt.Equal(started))
}

func TestStore_RecentLimit(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	for i := range 5 {
		require.NoError(t, s.Record(t.Context(), Recompute{
			StartedAt: time.Now(),
			Pages:     i,
		}))
	}

	recent, err := s.Recent(t.Context(), 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	require.Equal(t, 4, recent[0].Pages)
}

func TestStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(t.Context(), Recompute{StartedAt: time.Now(), Pages: 1}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	recent, err := reopened.Recent(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}
