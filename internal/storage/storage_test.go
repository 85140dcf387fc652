package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	return map[string]Storage{
		"fs":  NewFS(),
		"mem": NewMem(),
	}
}

func pathFor(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestCommitThenRead(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			path := pathFor(t, "table.rotbl")
			w, err := s.NewWriter(path)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}
			if _, err := w.Write([]byte("hello world")); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := w.Commit(); err != nil {
				t.Fatalf("Commit: %v", err)
			}

			if !s.Exists(path) {
				t.Fatal("Exists should report true after Commit")
			}
			r, err := s.OpenReader(path)
			if err != nil {
				t.Fatalf("OpenReader: %v", err)
			}
			defer r.Close()
			buf := make([]byte, r.Size())
			if _, err := r.ReadAt(buf, 0); err != nil {
				t.Fatalf("ReadAt: %v", err)
			}
			if string(buf) != "hello world" {
				t.Fatalf("read %q", buf)
			}
		})
	}
}

func TestNotVisibleBeforeCommit(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			path := pathFor(t, "table.rotbl")
			w, err := s.NewWriter(path)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}
			if _, err := w.Write([]byte("staged")); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if s.Exists(path) {
				t.Fatal("path must not be visible before Commit")
			}
			if err := w.Abandon(); err != nil {
				t.Fatalf("Abandon: %v", err)
			}
			if s.Exists(path) {
				t.Fatal("path must not exist after Abandon")
			}
		})
	}
}

func TestDoubleCommitFails(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			path := pathFor(t, "table.rotbl")
			w, err := s.NewWriter(path)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}
			if err := w.Commit(); err != nil {
				t.Fatalf("first Commit: %v", err)
			}
			if err := w.Commit(); !errors.Is(err, ErrAlreadyCommitted) {
				t.Fatalf("second Commit error = %v, want ErrAlreadyCommitted", err)
			}
		})
	}
}

func TestOpenReaderNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.OpenReader(pathFor(t, "missing.rotbl"))
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			path := pathFor(t, "table.rotbl")
			w, err := s.NewWriter(path)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}
			if err := w.Commit(); err != nil {
				t.Fatalf("Commit: %v", err)
			}
			if err := s.Remove(path); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if s.Exists(path) {
				t.Fatal("path should not exist after Remove")
			}
		})
	}
}

func TestConcurrentWritersDisjointDisambiguation(t *testing.T) {
	s := NewFS()
	dir := t.TempDir()
	path := filepath.Join(dir, "table.rotbl")

	w1, err := s.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter 1: %v", err)
	}
	w2, err := s.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter 2: %v", err)
	}
	if _, err := w1.Write([]byte("first")); err != nil {
		t.Fatalf("Write 1: %v", err)
	}
	if _, err := w2.Write([]byte("second")); err != nil {
		t.Fatalf("Write 2: %v", err)
	}
	if err := w2.Commit(); err != nil {
		t.Fatalf("Commit 2: %v", err)
	}
	if err := w1.Commit(); err != nil {
		t.Fatalf("Commit 1: %v", err)
	}

	r, err := s.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	buf := make([]byte, r.Size())
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf) != "first" {
		t.Fatalf("final content = %q, want last-committed writer's bytes", buf)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one surviving file, got %d", len(entries))
	}
}
