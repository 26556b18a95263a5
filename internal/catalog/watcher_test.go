package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

func TestWatcher_EmitsMatchingCreates(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(domain.Policy{AllowedExtensions: []string{".txt"}})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	paths, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("hi"), 0600))

	select {
	case p := <-paths:
		assert.Equal(t, filepath.Join(dir, "note.txt"), p)
	case <-ctx.Done():
		t.Fatal("timed out waiting for watch event")
	}
}

func TestWatcher_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(domain.Policy{AllowedExtensions: []string{".txt"}})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.exe"), []byte("no"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("yes"), 0600))

	// Only the allowed extension comes through.
	select {
	case p := <-paths:
		assert.Equal(t, ".txt", filepath.Ext(p))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}

func TestWatcher_CoalescesWriteBursts(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(domain.Policy{AllowedExtensions: []string{".txt"}},
		WithQuietWindow(100*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	paths, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	// A file copied in flushes fires one event per write. Only one
	// emission should surface, once the path has gone quiet.
	target := filepath.Join(dir, "copy.txt")
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.Write([]byte("first half "))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	time.Sleep(30 * time.Millisecond)
	_, err = f.Write([]byte("second half"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case p := <-paths:
		assert.Equal(t, target, p)
	case <-ctx.Done():
		t.Fatal("timed out waiting for coalesced event")
	}

	select {
	case p := <-paths:
		t.Fatalf("unexpected second emission for %s", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(domain.Policy{})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	paths, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-paths:
		assert.False(t, open, "channel should close after cancellation")
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not close after cancellation")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := NewWatcher(domain.Policy{})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
