package rotbl

import "errors"

// ErrKeyNotFound is returned by Table.Get when the key was never written.
// A key whose most recent value is a tombstone is not an error: Get returns
// it successfully with IsTombstone true.
var ErrKeyNotFound = errors.New("rotbl: key not found")

// ErrClosed is returned by Table.Get, and yielded by Table.Dump, when called
// after Close.
var ErrClosed = errors.New("rotbl: table closed")

// ErrBuilderClosed is returned by Builder.Append, Commit, or Abandon called
// after Commit or Abandon.
var ErrBuilderClosed = errors.New("rotbl: builder closed")

// ErrUnsortedKey is returned by Builder.Append when a key does not strictly
// follow the previously appended key: a rotbl file's keys must be supplied
// to the Builder already sorted.
var ErrUnsortedKey = errors.New("rotbl: keys must be appended in strictly ascending order")

// ErrInvalidConfig is returned by NewBuilder when cfg.BlockMaxItems is not
// greater than 0.
var ErrInvalidConfig = errors.New("rotbl: invalid config")
