// Package storage abstracts the byte-addressed backing store a table is
// read from and written to, keyed by string path, with an atomic-publish
// write path: a Writer accumulates bytes against a staging location and
// only becomes visible at its final path when Commit succeeds.
//
// Reference: aalhour/rockyardkv internal/vfs/vfs.go (FS/WritableFile/
// SequentialFile/RandomAccessFile). rotbl narrows this to the two
// operations a read-only table format actually needs — open-for-random-
// read and atomically-publish-a-new-file — since it never mutates or
// appends to an existing table.
package storage

import (
	"errors"
	"io"
)

// ErrNotFound is returned when a path does not exist in the store.
var ErrNotFound = errors.New("storage: not found")

// ErrAlreadyCommitted is returned by a second call to Commit or Abandon on a
// Writer that has already been finalized.
var ErrAlreadyCommitted = errors.New("storage: writer already committed")

// Reader provides random access reads over a stored object's bytes.
type Reader interface {
	io.ReaderAt
	io.Closer

	// Size returns the object's total byte length.
	Size() int64
}

// Writer accumulates bytes for a new object. The object is not visible to
// Readers at its destination path until Commit succeeds; Abandon discards
// it instead.
type Writer interface {
	io.Writer

	// Commit fsyncs the accumulated bytes and atomically publishes them at
	// the writer's destination path. Commit (or Abandon) may be called at
	// most once.
	Commit() error

	// Abandon discards the accumulated bytes without publishing them.
	// Abandon (or Commit) may be called at most once.
	Abandon() error
}

// Storage is the backing store a table is opened from and built into.
type Storage interface {
	// OpenReader opens path for random-access reads.
	OpenReader(path string) (Reader, error)

	// NewWriter returns a Writer that will publish at path on Commit.
	NewWriter(path string) (Writer, error)

	// Remove deletes path. Removing a path that does not exist is not an
	// error.
	Remove(path string) error

	// Exists reports whether path is present.
	Exists(path string) bool
}
