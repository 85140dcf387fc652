package rotbl

import (
	"fmt"
	"iter"

	"github.com/drmingdrmer/rotbl/internal/block"
	"github.com/drmingdrmer/rotbl/internal/blockindex"
	"github.com/drmingdrmer/rotbl/internal/cache"
	"github.com/drmingdrmer/rotbl/internal/codec"
	"github.com/drmingdrmer/rotbl/internal/framing"
	"github.com/drmingdrmer/rotbl/internal/keyrange"
	"github.com/drmingdrmer/rotbl/internal/marked"
	"github.com/drmingdrmer/rotbl/internal/rotblmeta"
	"github.com/drmingdrmer/rotbl/internal/rotblstat"
	"github.com/drmingdrmer/rotbl/internal/storage"
	"github.com/drmingdrmer/rotbl/internal/typ"
)

// KV is one (key, value) pair yielded by Table.Range.
type KV struct {
	Key   string
	Value marked.SeqMarked[[]byte]
}

// Table is an opened, read-only rotbl file: point lookups and ordered range
// scans over its sorted keys, backed by a shared block cache.
//
// Reference: aalhour/rockyardkv internal/table/reader.go (Reader/Open,
// readFooter/readIndex, loadDataBlock going through the cache) — rotbl
// follows the same open-once-read-many shape with its own 3-segment Footer
// and BlockIndex in place of RocksDB's metaindex/properties machinery.
type Table struct {
	store    storage.Storage
	path     string
	r        storage.Reader
	tableID  uint32
	index    *blockindex.BlockIndex
	meta     rotblmeta.Meta
	stat     rotblstat.Stat
	cache    *cache.Cache
	access   AccessStat
	closed   bool
}

// Open opens the rotbl file at path in store for reading.
func Open(store storage.Storage, path string, cfg Config) (*Table, error) {
	r, err := store.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("rotbl: open %s: %w", path, err)
	}

	t := &Table{
		store: store,
		path:  path,
		r:     r,
		cache: cache.New(cfg.Cache, cfg.CacheShards),
	}

	if err := t.readHead(); err != nil {
		r.Close() //nolint:errcheck
		return nil, err
	}
	if err := t.readTail(); err != nil {
		r.Close() //nolint:errcheck
		return nil, err
	}
	return t, nil
}

func (t *Table) readHead() error {
	const headSize = framing.HeaderSize + 4 + codec.ChecksumTagSize
	head := make([]byte, headSize)
	if _, err := t.r.ReadAt(head, 0); err != nil {
		return fmt.Errorf("rotbl: read head: %w", err)
	}
	if _, err := framing.DecodeHeader(head[:framing.HeaderSize], typ.TagRotbl); err != nil {
		return err
	}
	tableID, _, err := codec.DecodeWithChecksum[uint32](head[framing.HeaderSize:], "rotbl: table_id")
	if err != nil {
		return err
	}
	t.tableID = tableID
	return nil
}

func (t *Table) readTail() error {
	size := t.r.Size()
	if size < int64(framing.Size) {
		return fmt.Errorf("rotbl: file too small to contain a footer: %w", codec.ErrTruncated)
	}
	footerBytes := make([]byte, framing.Size)
	if _, err := t.r.ReadAt(footerBytes, size-int64(framing.Size)); err != nil {
		return fmt.Errorf("rotbl: read footer: %w", err)
	}
	footer, err := framing.DecodeFooter(footerBytes)
	if err != nil {
		return err
	}

	biBytes := make([]byte, footer.BlockIndex.Size)
	if _, err := t.r.ReadAt(biBytes, int64(footer.BlockIndex.Offset)); err != nil {
		return fmt.Errorf("rotbl: read block index: %w", err)
	}
	index, err := blockindex.Decode(biBytes)
	if err != nil {
		return err
	}
	t.index = index

	metaBytes := make([]byte, footer.Meta.Size)
	if _, err := t.r.ReadAt(metaBytes, int64(footer.Meta.Offset)); err != nil {
		return fmt.Errorf("rotbl: read meta: %w", err)
	}
	meta, err := rotblmeta.Decode(metaBytes)
	if err != nil {
		return err
	}
	t.meta = meta

	statBytes := make([]byte, footer.Stat.Size)
	if _, err := t.r.ReadAt(statBytes, int64(footer.Stat.Offset)); err != nil {
		return fmt.Errorf("rotbl: read stat: %w", err)
	}
	stat, err := rotblstat.Decode(statBytes)
	if err != nil {
		return err
	}
	t.stat = stat

	return nil
}

// TableID returns the table_id decoded from the file header. The Builder
// always writes 0; a Reader never validates the value it decodes.
func (t *Table) TableID() uint32 { return t.tableID }

// CacheStat returns the current item count and total byte occupancy of the
// block cache backing this table, sampled under the cache's lock.
func (t *Table) CacheStat() (itemCount int, totalBytes uint64) {
	st := t.cache.Stat()
	return st.ItemCount, st.TotalBytes
}

// Meta returns the table's global sequence number and user data.
func (t *Table) Meta() rotblmeta.Meta { return t.meta }

// Stat returns the table's summary statistics.
func (t *Table) Stat() rotblstat.Stat { return t.stat }

// FileSize returns the total on-disk size of the table file.
func (t *Table) FileSize() int64 { return t.r.Size() }

// AccessStat returns the table's cumulative read-path counters.
func (t *Table) AccessStat() *AccessStat { return &t.access }

// Close releases the table's underlying file handle. After Close, Get
// returns ErrClosed, Dump yields ErrClosed, and Range yields nothing;
// repeated calls to Close return nil.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.r.Close()
}

// loadBlock loads entry's block, through the cache, and records the access
// in AccessStat — a cache hit or a disk read either way — so both Get and
// Range update the same counters.
func (t *Table) loadBlock(entry blockindex.Entry) (*block.Block, error) {
	id := cache.BlockId{TableID: t.tableID, BlockNum: entry.BlockNum}
	_, cached := t.cache.Get(id)
	v, err := t.cache.GetOrLoad(id, entry.Size, func() (any, error) {
		buf := make([]byte, entry.Size)
		if _, err := t.r.ReadAt(buf, int64(entry.Offset)); err != nil {
			return nil, fmt.Errorf("rotbl: read block %d: %w", entry.BlockNum, err)
		}
		blk, err := block.Decode(buf)
		if err != nil {
			return nil, fmt.Errorf("rotbl: decode block %d: %w", entry.BlockNum, err)
		}
		return blk, nil
	})
	if err != nil {
		return nil, err
	}
	t.access.hitBlock(cached)
	blk := v.(*block.Block)
	return blk, nil
}

// Get returns the value stored at key. ErrKeyNotFound is returned only when
// the key was never written. A key whose most recent value is a tombstone
// is still returned successfully — tombstones are values, not errors — with
// its SeqMarked.IsTombstone reporting true and no payload.
func (t *Table) Get(key string) (marked.SeqMarked[[]byte], error) {
	if t.closed {
		return marked.SeqMarked[[]byte]{}, ErrClosed
	}
	t.access.hitKey()

	entry, ok := t.index.Lookup(key)
	if !ok {
		return marked.SeqMarked[[]byte]{}, ErrKeyNotFound
	}

	blk, err := t.loadBlock(entry)
	if err != nil {
		return marked.SeqMarked[[]byte]{}, err
	}

	v, ok := blk.Get(key)
	if !ok {
		return marked.SeqMarked[[]byte]{}, ErrKeyNotFound
	}
	return v, nil
}

// Range yields the table's entries that fall within r, in ascending key
// order. The sequence is cancel-safe: stopping mid-range leaves no
// dangling state. A block that fails to load (I/O error, checksum
// mismatch) ends the sequence early rather than panicking; use Dump for a
// scan that reports such errors in-band.
func (t *Table) Range(r keyrange.Range) iter.Seq2[string, marked.SeqMarked[[]byte]] {
	return func(yield func(string, marked.SeqMarked[[]byte]) bool) {
		if t.closed || r.Empty() {
			return
		}
		entries := t.index.LookupRange(r)
		for _, entry := range entries {
			blk, err := t.loadBlock(entry)
			if err != nil {
				return
			}
			for k, v := range blk.Range(r) {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}
