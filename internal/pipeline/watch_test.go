package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchScans(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchScans(ctx, dir, 50*time.Millisecond, func(scans []string) error {
			batches <- scans
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o644))

	var got []string
	for len(got) < 2 {
		select {
		case b := <-batches:
			got = append(got, b...)
		case <-ctx.Done():
			t.Fatalf("timed out, got %v", got)
		}
	}
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.jpg")}, got)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchScans_StopsOnError(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	boom := errors.New("integrity")
	done := make(chan error, 1)
	go func() {
		done <- watchScans(ctx, dir, 20*time.Millisecond, func([]string) error { return boom })
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.png"), []byte("x"), 0o644))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-ctx.Done():
		t.Fatal("watch did not stop")
	}
}

func TestWatchScans_MissingDir(t *testing.T) {
	err := watchScans(context.Background(), filepath.Join(t.TempDir(), "missing"), time.Millisecond, nil)
	assert.Error(t, err)
}
