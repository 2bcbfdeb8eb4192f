package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slngraph/pkg/errors"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dependencyGraph.dot")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), DefaultPerm))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), DefaultPerm))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files left behind")
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "g.dot")
	err := WriteFileAtomic(path, []byte("x"), DefaultPerm)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeRenderWrite))
}

func TestWriteFileAtomicCancelledBeforeRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.dot")
	require.NoError(t, WriteFileAtomic(path, []byte("old"), DefaultPerm))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := writeFileAtomic(ctx, path, []byte("new"), DefaultPerm)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.dot")
	w := NewWriter(0)

	require.NoError(t, w.Write(context.Background(), path, []byte("digraph G {}\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "digraph G {}\n", string(got))
}

func TestWriterRejectsDirectory(t *testing.T) {
	var w Writer
	err := w.Write(context.Background(), t.TempDir(), []byte("x"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidPath, errors.GetCode(err))
}

func TestWriterCancelledKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.dot")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var w Writer
	err := w.Write(ctx, path, []byte("new"))
	require.ErrorIs(t, err, context.Canceled)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestWriterConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.dot")
	var w Writer

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := strings.Repeat(fmt.Sprintf("%02d", i), 4096)
			assert.NoError(t, w.Write(context.Background(), path, []byte(body)))
		}()
	}
	wg.Wait()

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 8192)
	// Whole content comes from exactly one writer.
	assert.Equal(t, strings.Repeat(string(got[:2]), 4096), string(got))
}

func TestFileURI(t *testing.T) {
	dir := t.TempDir()
	uri := FileURI(filepath.Join(dir, "a b.dot"))
	assert.True(t, strings.HasPrefix(uri, "file://"), uri)
	assert.True(t, strings.HasSuffix(uri, "a%20b.dot"), uri)
}
