// Package marked implements SeqMarked, the versioned-value envelope every
// key in a rotbl block carries: a sequence number plus either a live payload
// or a tombstone, ordered so that at equal sequence a tombstone always
// dominates a normal value.
//
// Reference: aalhour/rockyardkv internal/dbformat (ValueType enum
// distinguishing a put from a delete at a given SequenceNumber) — rotbl
// generalizes the two-case distinction with a generic payload type instead
// of raw bytes, since a Block's in-memory representation is decoded before
// the caller ever sees it.
package marked

import "cmp"

// Kind distinguishes a live value from a tombstone.
type Kind int

const (
	// KindNormal marks a live payload.
	KindNormal Kind = iota
	// KindTombstone marks a deletion marker. A Tombstone carries no payload.
	KindTombstone
)

// SeqMarked is a sequence-numbered value that is either live (Normal) or
// deleted (Tombstone).
type SeqMarked[D any] struct {
	seq     uint64
	kind    Kind
	data    D
	hasData bool
}

// Normal constructs a live SeqMarked carrying data at seq.
func Normal[D any](seq uint64, data D) SeqMarked[D] {
	return SeqMarked[D]{seq: seq, kind: KindNormal, data: data, hasData: true}
}

// Tombstone constructs a deletion marker at seq.
func Tombstone[D any](seq uint64) SeqMarked[D] {
	return SeqMarked[D]{seq: seq, kind: KindTombstone}
}

// Seq returns the sequence number.
func (m SeqMarked[D]) Seq() uint64 { return m.seq }

// Kind returns whether m is a live value or a tombstone.
func (m SeqMarked[D]) Kind() Kind { return m.kind }

// IsTombstone reports whether m marks a deletion.
func (m SeqMarked[D]) IsTombstone() bool { return m.kind == KindTombstone }

// DataRef returns a pointer to the carried payload, or nil if m is a
// tombstone.
func (m *SeqMarked[D]) DataRef() *D {
	if m.kind == KindTombstone {
		return nil
	}
	return &m.data
}

// IntoData returns the carried payload and true, or the zero value and
// false if m is a tombstone.
func (m SeqMarked[D]) IntoData() (D, bool) {
	if m.kind == KindTombstone {
		var zero D
		return zero, false
	}
	return m.data, true
}

// Map transforms the payload of a live SeqMarked with f, leaving a
// tombstone unchanged.
func Map[D, E any](m SeqMarked[D], f func(D) E) SeqMarked[E] {
	if m.kind == KindTombstone {
		return Tombstone[E](m.seq)
	}
	return Normal(m.seq, f(m.data))
}

// OrderKey is the ordering projection of a SeqMarked: sequence number, then
// Kind, with KindNormal sorting before KindTombstone at equal sequence so
// that a later delete always dominates an earlier (or co-timed) put.
type OrderKey struct {
	Seq  uint64
	Kind Kind
}

// Order returns m's OrderKey.
func (m SeqMarked[D]) Order() OrderKey {
	return OrderKey{Seq: m.seq, Kind: m.kind}
}

// Compare orders two OrderKeys: by Seq ascending, then Normal before
// Tombstone at equal Seq.
func (k OrderKey) Compare(other OrderKey) int {
	if c := cmp.Compare(k.Seq, other.Seq); c != 0 {
		return c
	}
	return cmp.Compare(k.Kind, other.Kind)
}

// Newer reports whether m dominates other: a strictly larger seq always
// wins; at equal seq, a Tombstone dominates a Normal value.
func (m SeqMarked[D]) Newer(other SeqMarked[D]) bool {
	return m.Order().Compare(other.Order()) > 0
}
