// Package keyrange implements half-open and bounded key ranges used by
// Block.Range, BlockIndex.LookupRange, and Table.Range to describe a scan
// window over a sorted key space.
//
// Reference: aalhour/rockyardkv internal/table reader.go's Seek/SeekToFirst
// pattern for bounding an iterator; rotbl generalizes this into an explicit
// Range value so BlockIndex can compute the covering block span before any
// I/O happens.
package keyrange

// Bound is one edge of a Range: present-or-not, and if present, whether the
// named key itself is included.
type Bound struct {
	Key       string
	Present   bool
	Exclusive bool
}

// Unbounded returns an absent Bound.
func Unbounded() Bound { return Bound{} }

// Included returns a Bound at key that includes key itself.
func Included(key string) Bound { return Bound{Key: key, Present: true} }

// Excluded returns a Bound at key that excludes key itself.
func Excluded(key string) Bound { return Bound{Key: key, Present: true, Exclusive: true} }

// Range is a start/end pair of Bounds over a sorted key space.
type Range struct {
	Start Bound
	End   Bound
}

// Full returns the unbounded range covering every key.
func Full() Range { return Range{Start: Unbounded(), End: Unbounded()} }

// AfterStart reports whether key is at or after the range's start bound.
func (r Range) AfterStart(key string) bool {
	if !r.Start.Present {
		return true
	}
	if r.Start.Exclusive {
		return key > r.Start.Key
	}
	return key >= r.Start.Key
}

// BeforeEnd reports whether key is at or before the range's end bound.
func (r Range) BeforeEnd(key string) bool {
	if !r.End.Present {
		return true
	}
	if r.End.Exclusive {
		return key < r.End.Key
	}
	return key <= r.End.Key
}

// Contains reports whether key falls within the range.
func (r Range) Contains(key string) bool {
	return r.AfterStart(key) && r.BeforeEnd(key)
}

// Empty reports whether the range is provably empty from its bounds alone
// (both bounds present and the start bound is past the end bound).
func (r Range) Empty() bool {
	if !r.Start.Present || !r.End.Present {
		return false
	}
	if r.Start.Key > r.End.Key {
		return true
	}
	if r.Start.Key == r.End.Key {
		return r.Start.Exclusive || r.End.Exclusive
	}
	return false
}
