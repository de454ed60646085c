package docs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcherScansExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "will.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deed.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.jpg"), []byte("x"), 0o644))

	w, err := NewWatcher(WatcherOptions{Dir: dir})
	require.NoError(t, err)

	files := w.Files()
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "deed.txt"), files[0])
	assert.Equal(t, filepath.Join(dir, "will.pdf"), files[1])
}

func TestNewWatcherCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "documents")

	w, err := NewWatcher(WatcherOptions{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, w.Files())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWatcherPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(WatcherOptions{Dir: dir})
	require.NoError(t, err)

	changed := make(chan []string, 4)
	w.OnChange(func(files []string) { changed <- files })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the fsnotify watch a moment to attach.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.docx"), []byte("x"), 0o644))

	select {
	case files := <-changed:
		require.Len(t, files, 1)
		assert.Equal(t, filepath.Join(dir, "new.docx"), files[0])
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcherIgnoresNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(WatcherOptions{Dir: dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.exe"), []byte("x"), 0o644))
	require.NoError(t, w.scanOnce())
	assert.Empty(t, w.Files())
}

func TestCustomPatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.tiff"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "will.pdf"), []byte("x"), 0o644))

	w, err := NewWatcher(WatcherOptions{Dir: dir, Patterns: []string{"*.tiff"}})
	require.NoError(t, err)

	files := w.Files()
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "scan.tiff"), files[0])
}
