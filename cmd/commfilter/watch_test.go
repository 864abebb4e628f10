package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestWatchInputs(t *testing.T) {
	dir := t.TempDir()
	edges := filepath.Join(dir, "edges.txt")
	other := filepath.Join(dir, "unrelated.txt")
	require.NoError(t, os.WriteFile(edges, []byte("A B\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchInputs(ctx, []string{edges}, zerolog.Nop(), func() error {
			calls <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register before touching files.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("ignored\n"), 0o644))
	require.NoError(t, os.WriteFile(edges, []byte("A B\nB C\n"), 0o644))

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not react to the edge list change")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	require.Len(t, calls, 0, "bursts are coalesced into one run")
}
