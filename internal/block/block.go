// Package block implements the Block structural element: a header-framed,
// checksummed, immutable run of sorted (key, SeqMarked) entries — the leaf
// unit a Table reads off disk and caches.
//
// Reference: aalhour/rockyardkv internal/table/builder.go's data-block
// assembly (flushDataBlock/writeBlockWithTrailer) for the overall
// write-then-trailer shape, and internal/table/reader.go's readBlock for the
// read-then-verify-then-decode shape. rotbl's inner entry codec is its own
// (length-prefixed key/value pairs) rather than RocksDB's restart-point,
// prefix-compressed scheme, since the format spec leaves the block body
// codec unspecified beyond "canonical and round-trip safe".
package block

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"iter"
	"sort"

	"github.com/drmingdrmer/rotbl/internal/codec"
	"github.com/drmingdrmer/rotbl/internal/framing"
	"github.com/drmingdrmer/rotbl/internal/keyrange"
	"github.com/drmingdrmer/rotbl/internal/marked"
	"github.com/drmingdrmer/rotbl/internal/typ"
)

// ErrEmptyBlock is returned when Finish is called on a Builder with no
// entries: a Block always carries at least one key.
var ErrEmptyBlock = errors.New("block: empty block")

// ErrKeysNotSorted is returned when Add is called with a key that does not
// strictly follow the previously added key.
var ErrKeysNotSorted = errors.New("block: keys not sorted")

// Entry is one (key, value) pair stored in a Block.
type Entry struct {
	Key   string
	Value marked.SeqMarked[[]byte]
}

// Block is an immutable, sorted run of Entries read from a rotbl file.
type Block struct {
	num     uint64
	entries []Entry
}

// BlockNum returns the block's position among its table's blocks.
func (b *Block) BlockNum() uint64 { return b.num }

// Len returns the number of entries in the block.
func (b *Block) Len() int { return len(b.entries) }

// FirstKey returns the smallest key in the block.
func (b *Block) FirstKey() string { return b.entries[0].Key }

// LastKey returns the largest key in the block.
func (b *Block) LastKey() string { return b.entries[len(b.entries)-1].Key }

// Get returns the value stored at key, and whether key is present.
func (b *Block) Get(key string) (marked.SeqMarked[[]byte], bool) {
	i := sort.Search(len(b.entries), func(i int) bool { return b.entries[i].Key >= key })
	if i < len(b.entries) && b.entries[i].Key == key {
		return b.entries[i].Value, true
	}
	return marked.SeqMarked[[]byte]{}, false
}

// Range yields the block's entries that fall within r, in ascending key
// order. The sequence is cancel-safe: the consumer may stop ranging at any
// yield boundary without leaking state.
func (b *Block) Range(r keyrange.Range) iter.Seq2[string, marked.SeqMarked[[]byte]] {
	return func(yield func(string, marked.SeqMarked[[]byte]) bool) {
		start := 0
		if r.Start.Present {
			start = sort.Search(len(b.entries), func(i int) bool { return b.entries[i].Key >= r.Start.Key })
			if r.Start.Exclusive {
				for start < len(b.entries) && b.entries[start].Key == r.Start.Key {
					start++
				}
			}
		}
		for i := start; i < len(b.entries); i++ {
			e := b.entries[i]
			if !r.BeforeEnd(e.Key) {
				return
			}
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Builder assembles a sorted run of entries into a Block.
type Builder struct {
	blockNum uint64
	entries  []Entry
	lastKey  string
	hasLast  bool
}

// NewBuilder returns a Builder for the block at position blockNum.
func NewBuilder(blockNum uint64) *Builder {
	return &Builder{blockNum: blockNum}
}

// Add appends (key, value) to the block being built. Keys must be added in
// strictly ascending order.
func (b *Builder) Add(key string, value marked.SeqMarked[[]byte]) error {
	if b.hasLast && cmp.Compare(key, b.lastKey) <= 0 {
		return fmt.Errorf("block: key %q does not follow %q: %w", key, b.lastKey, ErrKeysNotSorted)
	}
	b.entries = append(b.entries, Entry{Key: key, Value: value})
	b.lastKey = key
	b.hasLast = true
	return nil
}

// Len returns the number of entries added so far.
func (b *Builder) Len() int { return len(b.entries) }

// Empty reports whether no entries have been added.
func (b *Builder) Empty() bool { return len(b.entries) == 0 }

// Reset clears the builder for the next block, advancing to blockNum.
func (b *Builder) Reset(blockNum uint64) {
	b.blockNum = blockNum
	b.entries = b.entries[:0]
	b.hasLast = false
}

// Finish encodes the accumulated entries into a framed Block byte slice and
// returns both the bytes and the in-memory Block.
func (b *Builder) Finish() ([]byte, *Block, error) {
	if len(b.entries) == 0 {
		return nil, nil, ErrEmptyBlock
	}
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	blk := &Block{num: b.blockNum, entries: entries}
	return Encode(blk), blk, nil
}

// dataBytes encodes the block's entries as: count:u32 then, for each entry
// in order, keylen:u32 ∥ key ∥ marked.EncodeValue(value).
func dataBytes(entries []Entry) []byte {
	var buf bytes.Buffer
	var countBuf [4]byte
	codec.PutUint32(countBuf[:], uint32(len(entries)))
	buf.Write(countBuf[:])
	for _, e := range entries {
		var lenBuf [4]byte
		codec.PutUint32(lenBuf[:], uint32(len(e.Key)))
		buf.Write(lenBuf[:])
		buf.WriteString(e.Key)
		buf.Write(marked.EncodeValue(e.Value))
	}
	return buf.Bytes()
}

func decodeDataBytes(b []byte) ([]Entry, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("block: data: %w", codec.ErrTruncated)
	}
	count := codec.Uint32(b[:4])
	pos := 4
	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(b) < pos+4 {
			return nil, fmt.Errorf("block: data: entry %d: %w", i, codec.ErrTruncated)
		}
		keyLen := int(codec.Uint32(b[pos : pos+4]))
		pos += 4
		if len(b) < pos+keyLen {
			return nil, fmt.Errorf("block: data: entry %d: %w", i, codec.ErrTruncated)
		}
		key := string(b[pos : pos+keyLen])
		pos += keyLen
		val, n, err := marked.DecodeValue(b[pos:])
		if err != nil {
			return nil, fmt.Errorf("block: data: entry %d: %w", i, err)
		}
		pos += n
		entries = append(entries, Entry{Key: key, Value: val})
	}
	return entries, nil
}

// Encode encodes blk to its framed on-disk representation:
//
//	Header(24) ∥ block_num:u64 ∥ data_encoded_size:u64 ∥ Checksum(8) ∥ data_bytes ∥ Checksum(8)
func Encode(blk *Block) []byte {
	data := dataBytes(blk.entries)

	var out bytes.Buffer
	out.Write(framing.EncodeHeader(typ.TagBlock))

	metaW := codec.NewChecksumWriter(&out)
	var metaBuf [16]byte
	codec.PutUint64(metaBuf[0:8], blk.num)
	codec.PutUint64(metaBuf[8:16], uint64(len(data)))
	metaW.Write(metaBuf[:]) //nolint:errcheck
	metaW.WriteChecksum()

	dataW := codec.NewChecksumWriter(&out)
	dataW.Write(data) //nolint:errcheck
	dataW.WriteChecksum()

	return out.Bytes()
}

// Decode decodes a Block from b, verifying every embedded checksum.
func Decode(b []byte) (*Block, error) {
	if len(b) < framing.HeaderSize {
		return nil, fmt.Errorf("block: %w", codec.ErrTruncated)
	}
	if _, err := framing.DecodeHeader(b[:framing.HeaderSize], typ.TagBlock); err != nil {
		return nil, err
	}
	pos := framing.HeaderSize

	const metaSize = 16 + codec.ChecksumTagSize
	if len(b) < pos+metaSize {
		return nil, fmt.Errorf("block: meta: %w", codec.ErrTruncated)
	}
	metaR := codec.NewChecksumReader(b[pos : pos+metaSize])
	var metaBuf [16]byte
	if _, err := metaR.Read(metaBuf[:]); err != nil {
		return nil, fmt.Errorf("block: meta: %w", err)
	}
	if err := metaR.VerifyChecksum("block: meta"); err != nil {
		return nil, err
	}
	blockNum := codec.Uint64(metaBuf[0:8])
	dataSize := codec.Uint64(metaBuf[8:16])
	pos += metaSize

	dataTotal := int(dataSize) + codec.ChecksumTagSize
	if len(b) < pos+dataTotal {
		return nil, fmt.Errorf("block: data: %w", codec.ErrTruncated)
	}
	dataR := codec.NewChecksumReader(b[pos : pos+dataTotal])
	data := make([]byte, dataSize)
	if _, err := dataR.Read(data); err != nil {
		return nil, fmt.Errorf("block: data: %w", err)
	}
	if err := dataR.VerifyChecksum("block: data"); err != nil {
		return nil, err
	}

	entries, err := decodeDataBytes(data)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptyBlock
	}
	return &Block{num: blockNum, entries: entries}, nil
}

// EncodedSize returns the total framed encoded size of blk, computed by
// encoding blk with Encode and measuring the result.
func EncodedSize(blk *Block) int {
	return len(Encode(blk))
}
