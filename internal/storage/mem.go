package storage

import (
	"bytes"
	"fmt"
	"sync"
)

// Mem implements Storage entirely in memory, for tests that want to
// exercise the Storage contract (including its atomic-publish semantics)
// without touching a real filesystem.
type Mem struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMem returns an empty in-memory Storage.
func NewMem() *Mem {
	return &Mem{objects: make(map[string][]byte)}
}

type memReader struct {
	data []byte
}

func (r *memReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(r.data)) {
		return 0, fmt.Errorf("storage: ReadAt offset %d out of range", off)
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, fmt.Errorf("storage: short read at offset %d", off)
	}
	return n, nil
}

func (r *memReader) Size() int64 { return int64(len(r.data)) }
func (r *memReader) Close() error { return nil }

// OpenReader opens path for random-access reads.
func (m *Mem) OpenReader(path string) (Reader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("storage: open %s: %w", path, ErrNotFound)
	}
	return &memReader{data: data}, nil
}

// Exists reports whether path exists.
func (m *Mem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok
}

// Remove deletes path, if present.
func (m *Mem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

type memWriter struct {
	m        *Mem
	destPath string
	buf      bytes.Buffer
	done     bool
}

// NewWriter returns a Writer staging bytes in memory until Commit.
func (m *Mem) NewWriter(path string) (Writer, error) {
	return &memWriter{m: m, destPath: path}, nil
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

// Commit publishes the staged bytes at destPath.
func (w *memWriter) Commit() error {
	if w.done {
		return ErrAlreadyCommitted
	}
	w.done = true
	data := make([]byte, w.buf.Len())
	copy(data, w.buf.Bytes())
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.objects[w.destPath] = data
	return nil
}

// Abandon discards the staged bytes.
func (w *memWriter) Abandon() error {
	if w.done {
		return ErrAlreadyCommitted
	}
	w.done = true
	w.buf.Reset()
	return nil
}
