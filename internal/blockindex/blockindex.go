// Package blockindex implements the BlockIndex structural element: the
// sorted, non-overlapping span of (first_key, last_key) per block that lets
// a Table locate which block(s) to read for a point lookup or range scan
// without touching block data.
//
// Reference: aalhour/rockyardkv internal/table/reader.go's IndexBlockIterator
// (binary-searching a loaded index block down to a data block handle).
// rotbl keeps the whole BlockIndex in memory as a flat, sorted slice rather
// than as its own nested block, since the format spec sizes it as a single
// bounded structural element separate from the data blocks it describes.
package blockindex

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/drmingdrmer/rotbl/internal/codec"
	"github.com/drmingdrmer/rotbl/internal/framing"
	"github.com/drmingdrmer/rotbl/internal/keyrange"
	"github.com/drmingdrmer/rotbl/internal/typ"
)

// Entry describes one block's position and key span.
type Entry struct {
	BlockNum uint64
	Offset   uint64
	Size     uint64
	FirstKey string
	LastKey  string
}

// BlockIndex is the sorted, non-overlapping list of block spans for a table.
type BlockIndex struct {
	entries []Entry
}

// New builds a BlockIndex from entries, which must already be sorted by
// FirstKey with non-overlapping spans.
func New(entries []Entry) *BlockIndex {
	return &BlockIndex{entries: entries}
}

// Len returns the number of blocks described.
func (bi *BlockIndex) Len() int { return len(bi.entries) }

// EntryByNum returns the entry for blockNum, and whether it exists. Block
// numbers are assigned sequentially by the Builder, so this is a direct
// slice index.
func (bi *BlockIndex) EntryByNum(blockNum uint64) (Entry, bool) {
	if blockNum >= uint64(len(bi.entries)) {
		return Entry{}, false
	}
	return bi.entries[blockNum], true
}

// Lookup returns the entry whose key span may contain key, via a
// partition-point binary search over LastKey, and whether one was found.
func (bi *BlockIndex) Lookup(key string) (Entry, bool) {
	i := sort.Search(len(bi.entries), func(i int) bool { return bi.entries[i].LastKey >= key })
	if i >= len(bi.entries) {
		return Entry{}, false
	}
	e := bi.entries[i]
	if key < e.FirstKey {
		return Entry{}, false
	}
	return e, true
}

// LookupRange returns the contiguous slice of entries whose spans may
// overlap r, found via two partition-point searches (one for each bound).
func (bi *BlockIndex) LookupRange(r keyrange.Range) []Entry {
	lo := 0
	if r.Start.Present {
		lo = sort.Search(len(bi.entries), func(i int) bool { return bi.entries[i].LastKey >= r.Start.Key })
		if r.Start.Exclusive {
			for lo < len(bi.entries) && bi.entries[lo].LastKey == r.Start.Key {
				lo++
			}
		}
	}
	hi := len(bi.entries)
	if r.End.Present {
		hi = sort.Search(len(bi.entries), func(i int) bool { return bi.entries[i].FirstKey > r.End.Key })
		if r.End.Exclusive {
			for hi > lo && bi.entries[hi-1].FirstKey == r.End.Key {
				hi--
			}
		}
	}
	if lo >= hi {
		return nil
	}
	return bi.entries[lo:hi]
}

// All returns the underlying entries in block order.
func (bi *BlockIndex) All() []Entry {
	return bi.entries
}

func entryDataBytes(entries []Entry) []byte {
	var buf bytes.Buffer
	var countBuf [4]byte
	codec.PutUint32(countBuf[:], uint32(len(entries)))
	buf.Write(countBuf[:])
	for _, e := range entries {
		var fixed [24]byte
		codec.PutUint64(fixed[0:8], e.BlockNum)
		codec.PutUint64(fixed[8:16], e.Offset)
		codec.PutUint64(fixed[16:24], e.Size)
		buf.Write(fixed[:])
		writeLenPrefixed(&buf, e.FirstKey)
		writeLenPrefixed(&buf, e.LastKey)
	}
	return buf.Bytes()
}

func writeLenPrefixed(buf *bytes.Buffer, s string) {
	var lenBuf [4]byte
	codec.PutUint32(lenBuf[:], uint32(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
}

func readLenPrefixed(b []byte, pos int) (string, int, error) {
	if len(b) < pos+4 {
		return "", 0, codec.ErrTruncated
	}
	n := int(codec.Uint32(b[pos : pos+4]))
	pos += 4
	if len(b) < pos+n {
		return "", 0, codec.ErrTruncated
	}
	return string(b[pos : pos+n]), pos + n, nil
}

func decodeEntryDataBytes(b []byte) ([]Entry, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("blockindex: data: %w", codec.ErrTruncated)
	}
	count := codec.Uint32(b[:4])
	pos := 4
	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(b) < pos+24 {
			return nil, fmt.Errorf("blockindex: data: entry %d: %w", i, codec.ErrTruncated)
		}
		e := Entry{
			BlockNum: codec.Uint64(b[pos : pos+8]),
			Offset:   codec.Uint64(b[pos+8 : pos+16]),
			Size:     codec.Uint64(b[pos+16 : pos+24]),
		}
		pos += 24
		first, next, err := readLenPrefixed(b, pos)
		if err != nil {
			return nil, fmt.Errorf("blockindex: data: entry %d: first_key: %w", i, err)
		}
		pos = next
		last, next, err := readLenPrefixed(b, pos)
		if err != nil {
			return nil, fmt.Errorf("blockindex: data: entry %d: last_key: %w", i, err)
		}
		pos = next
		e.FirstKey = first
		e.LastKey = last
		entries = append(entries, e)
	}
	return entries, nil
}

// Encode encodes bi to its framed on-disk representation:
//
//	Header(24) ∥ WithChecksum(data_encoded_size:u64) ∥ data_bytes ∥ Checksum(8)
func Encode(bi *BlockIndex) []byte {
	data := entryDataBytes(bi.entries)

	var out bytes.Buffer
	out.Write(framing.EncodeHeader(typ.TagBlockIndex))
	out.Write(codec.EncodeWithChecksum(uint64(len(data))))

	dataW := codec.NewChecksumWriter(&out)
	dataW.Write(data) //nolint:errcheck
	dataW.WriteChecksum()

	return out.Bytes()
}

// Decode decodes a BlockIndex from b, verifying every embedded checksum.
func Decode(b []byte) (*BlockIndex, error) {
	if len(b) < framing.HeaderSize {
		return nil, fmt.Errorf("blockindex: %w", codec.ErrTruncated)
	}
	if _, err := framing.DecodeHeader(b[:framing.HeaderSize], typ.TagBlockIndex); err != nil {
		return nil, err
	}
	pos := framing.HeaderSize

	dataSize, n, err := codec.DecodeWithChecksum[uint64](b[pos:], "blockindex: data_encoded_size")
	if err != nil {
		return nil, err
	}
	pos += n

	dataTotal := int(dataSize) + codec.ChecksumTagSize
	if len(b) < pos+dataTotal {
		return nil, fmt.Errorf("blockindex: data: %w", codec.ErrTruncated)
	}
	dataR := codec.NewChecksumReader(b[pos : pos+dataTotal])
	data := make([]byte, dataSize)
	if _, err := dataR.Read(data); err != nil {
		return nil, fmt.Errorf("blockindex: data: %w", err)
	}
	if err := dataR.VerifyChecksum("blockindex: data"); err != nil {
		return nil, err
	}

	entries, err := decodeEntryDataBytes(data)
	if err != nil {
		return nil, err
	}
	return &BlockIndex{entries: entries}, nil
}
