package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

// FS implements Storage against the real OS filesystem.
type FS struct {
	tmpCounter atomic.Uint64
}

// NewFS returns a Storage backed by the OS filesystem.
func NewFS() *FS {
	return &FS{}
}

type fsReader struct {
	f    *os.File
	size int64
}

func (r *fsReader) ReadAt(p []byte, off int64) (int, error) { return r.f.ReadAt(p, off) }
func (r *fsReader) Size() int64                             { return r.size }
func (r *fsReader) Close() error                             { return r.f.Close() }

// OpenReader opens path for random-access reads.
func (fs *FS) OpenReader(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: open %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return &fsReader{f: f, size: info.Size()}, nil
}

// Exists reports whether path exists.
func (fs *FS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes path, if present.
func (fs *FS) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %s: %w", path, err)
	}
	return nil
}

type fsWriter struct {
	fs       *FS
	destPath string
	tmpPath  string
	f        *os.File
	done     bool
}

// NewWriter returns a Writer that stages its bytes at a temp sibling of
// path and publishes them to path on Commit via fsync-then-rename.
func (fs *FS) NewWriter(path string) (Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}
	disambiguator := fs.tmpCounter.Add(1)
	tmpPath := fmt.Sprintf("%s.tmp-%d", path, disambiguator)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", tmpPath, err)
	}
	return &fsWriter{fs: fs, destPath: path, tmpPath: tmpPath, f: f}, nil
}

func (w *fsWriter) Write(p []byte) (int, error) { return w.f.Write(p) }

// Commit fsyncs the staged file, renames it onto destPath, and fsyncs the
// parent directory so the rename is itself durable.
func (w *fsWriter) Commit() error {
	if w.done {
		return ErrAlreadyCommitted
	}
	w.done = true

	if err := w.f.Sync(); err != nil {
		w.f.Close() //nolint:errcheck
		return fmt.Errorf("storage: sync %s: %w", w.tmpPath, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", w.tmpPath, err)
	}
	if err := os.Rename(w.tmpPath, w.destPath); err != nil {
		return fmt.Errorf("storage: rename %s to %s: %w", w.tmpPath, w.destPath, err)
	}
	return syncDir(filepath.Dir(w.destPath))
}

// Abandon closes and removes the staged file without publishing it.
func (w *fsWriter) Abandon() error {
	if w.done {
		return ErrAlreadyCommitted
	}
	w.done = true
	w.f.Close() //nolint:errcheck
	return os.Remove(w.tmpPath)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("storage: open dir %s: %w", dir, err)
	}
	defer d.Close() //nolint:errcheck
	if err := d.Sync(); err != nil {
		return fmt.Errorf("storage: sync dir %s: %w", dir, err)
	}
	return nil
}
