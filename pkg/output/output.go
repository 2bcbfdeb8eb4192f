// Package output persists generated graph files.
//
// Files are replaced atomically: data goes to a temporary file in the target
// directory which is then renamed over the destination, so a reader never
// observes a half-written graph. A [Writer] additionally serializes writers
// targeting the same path, making it safe for concurrent scans (for example
// a rescan triggered while a previous one is still running) to share an
// output file: the last completed write wins.
package output

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/slngraph/pkg/errors"
)

// DefaultPerm is the permission used for written graph files.
const DefaultPerm os.FileMode = 0o644

// WriteFileAtomic replaces path with data. The temporary file is removed on
// any failure, leaving the previous content of path untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return writeFileAtomic(context.Background(), path, data, perm)
}

// writeFileAtomic is WriteFileAtomic that gives up before the rename once
// ctx is done.
func writeFileAtomic(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeRenderWrite, err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeRenderWrite, err, "write %s", path)
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Wrap(errors.ErrCodeRenderWrite, err, "chmod %s", path)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderWrite, err, "sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderWrite, err, "close %s", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(errors.ErrCodeRenderWrite, err, "replace %s", path)
	}
	return nil
}

// Writer writes files atomically with at most one writer per path.
//
// The zero value is ready to use.
type Writer struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	perm  os.FileMode
}

// NewWriter returns a Writer creating files with perm. Zero means
// DefaultPerm.
func NewWriter(perm os.FileMode) *Writer {
	return &Writer{perm: perm}
}

// Write validates path and replaces its content with data.
// If ctx is done before the rename, the file is left untouched and the
// context error is returned.
func (w *Writer) Write(ctx context.Context, path string, data []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	if err := errors.ValidateOutputPath(abs); err != nil {
		return err
	}

	lock := w.lockFor(abs)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	perm := w.perm
	if perm == 0 {
		perm = DefaultPerm
	}
	return writeFileAtomic(ctx, abs, data, perm)
}

func (w *Writer) lockFor(path string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.locks == nil {
		w.locks = make(map[string]*sync.Mutex)
	}
	l, ok := w.locks[path]
	if !ok {
		l = &sync.Mutex{}
		w.locks[path] = l
	}
	return l
}

// FileURI returns a file:// URI for path, suitable for handing to a viewer.
func FileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := filepath.ToSlash(abs)
	if filepath.VolumeName(abs) != "" {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
