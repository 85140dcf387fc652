package rotbl

import (
	"cmp"
	"fmt"

	"github.com/drmingdrmer/rotbl/internal/block"
	"github.com/drmingdrmer/rotbl/internal/blockindex"
	"github.com/drmingdrmer/rotbl/internal/codec"
	"github.com/drmingdrmer/rotbl/internal/framing"
	"github.com/drmingdrmer/rotbl/internal/marked"
	"github.com/drmingdrmer/rotbl/internal/rotblmeta"
	"github.com/drmingdrmer/rotbl/internal/rotblstat"
	"github.com/drmingdrmer/rotbl/internal/storage"
	"github.com/drmingdrmer/rotbl/internal/typ"
)

// countingWriter tracks the number of bytes written through it, so the
// Builder can record each flushed section's file offset without a Seek.
type countingWriter struct {
	w storage.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Builder assembles a new rotbl file from keys supplied in strictly
// ascending order. The file becomes visible to readers only on Commit.
//
// Reference: aalhour/rockyardkv internal/table/builder.go (flushDataBlock
// writing blocks as they fill, then writing index/properties/footer at
// Finish) — rotbl's Builder follows the same flush-as-you-go shape with its
// own block codec and a 3-segment Footer in place of RocksDB's metaindex.
type Builder struct {
	cfg Config
	cw  *countingWriter

	blockBuilder *block.Builder
	blockNum     uint64
	indexEntries []blockindex.Entry

	seq      uint64
	userData string

	numEntries int
	keyNum     uint64
	dataSize   uint64

	lastKey string
	hasLast bool

	closed bool
}

// NewBuilder returns a Builder that will publish at path in store once
// Commit succeeds. seq and userData become the table's Meta.
func NewBuilder(store storage.Storage, path string, seq uint64, userData string, cfg Config) (*Builder, error) {
	if cfg.BlockMaxItems <= 0 {
		return nil, fmt.Errorf("rotbl: BlockMaxItems must be > 0: %w", ErrInvalidConfig)
	}

	w, err := store.NewWriter(path)
	if err != nil {
		return nil, fmt.Errorf("rotbl: builder: %w", err)
	}
	cw := &countingWriter{w: w}

	cw.Write(framing.EncodeHeader(typ.TagRotbl)) //nolint:errcheck
	// table_id is reserved and always written as 0 by the Builder; a Reader
	// accepts whatever value it decodes and never validates it.
	cw.Write(codec.EncodeWithChecksum(uint32(0))) //nolint:errcheck

	return &Builder{
		cfg:          cfg,
		cw:           cw,
		blockBuilder: block.NewBuilder(0),
		seq:          seq,
		userData:     userData,
	}, nil
}

// Append adds (key, value) to the table being built. Keys must be supplied
// in strictly ascending order across the whole Builder lifetime, spanning
// block boundaries.
func (b *Builder) Append(key string, value marked.SeqMarked[[]byte]) error {
	if b.closed {
		return ErrBuilderClosed
	}
	if b.cfg.DebugCheck && b.hasLast && cmp.Compare(key, b.lastKey) <= 0 {
		return fmt.Errorf("rotbl: key %q does not follow %q: %w", key, b.lastKey, ErrUnsortedKey)
	}
	b.lastKey = key
	b.hasLast = true

	if err := b.blockBuilder.Add(key, value); err != nil {
		return fmt.Errorf("rotbl: builder: %w", err)
	}
	b.numEntries++
	b.keyNum++

	if b.blockBuilder.Len() >= b.cfg.BlockMaxItems {
		if err := b.flushBlock(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) flushBlock() error {
	if b.blockBuilder.Empty() {
		return nil
	}
	encoded, blk, err := b.blockBuilder.Finish()
	if err != nil {
		return fmt.Errorf("rotbl: flush block: %w", err)
	}

	offset := uint64(b.cw.n)
	if _, err := b.cw.Write(encoded); err != nil {
		return fmt.Errorf("rotbl: flush block: %w", err)
	}
	size := uint64(len(encoded))
	b.dataSize += size

	b.indexEntries = append(b.indexEntries, blockindex.Entry{
		BlockNum: blk.BlockNum(),
		Offset:   offset,
		Size:     size,
		FirstKey: blk.FirstKey(),
		LastKey:  blk.LastKey(),
	})

	b.blockNum++
	b.blockBuilder.Reset(b.blockNum)
	return nil
}

// NumEntries returns the number of key/value pairs appended so far.
func (b *Builder) NumEntries() int { return b.numEntries }

// FileSize returns the number of bytes written to the underlying writer so
// far.
func (b *Builder) FileSize() int64 { return b.cw.n }

// Commit flushes any pending block, writes the BlockIndex, Meta, Stat, and
// Footer sections, and atomically publishes the file. Commit (or Abandon)
// may be called at most once.
func (b *Builder) Commit() (rotblstat.Stat, error) {
	if b.closed {
		return rotblstat.Stat{}, ErrBuilderClosed
	}
	b.closed = true

	if err := b.flushBlock(); err != nil {
		return rotblstat.Stat{}, err
	}

	biOffset := uint64(b.cw.n)
	biBytes := blockindex.Encode(blockindex.New(b.indexEntries))
	if _, err := b.cw.Write(biBytes); err != nil {
		return rotblstat.Stat{}, fmt.Errorf("rotbl: write block index: %w", err)
	}
	biSize := uint64(len(biBytes))

	metaOffset := uint64(b.cw.n)
	metaBytes, err := rotblmeta.Encode(rotblmeta.New(b.seq, b.userData))
	if err != nil {
		return rotblstat.Stat{}, fmt.Errorf("rotbl: encode meta: %w", err)
	}
	if _, err := b.cw.Write(metaBytes); err != nil {
		return rotblstat.Stat{}, fmt.Errorf("rotbl: write meta: %w", err)
	}
	metaSize := uint64(len(metaBytes))

	stat := rotblstat.Stat{
		BlockNum:  uint32(len(b.indexEntries)),
		KeyNum:    b.keyNum,
		DataSize:  b.dataSize,
		IndexSize: biSize,
	}
	statOffset := uint64(b.cw.n)
	statBytes, err := rotblstat.Encode(stat)
	if err != nil {
		return rotblstat.Stat{}, fmt.Errorf("rotbl: encode stat: %w", err)
	}
	if _, err := b.cw.Write(statBytes); err != nil {
		return rotblstat.Stat{}, fmt.Errorf("rotbl: write stat: %w", err)
	}
	statSize := uint64(len(statBytes))

	footer := framing.Footer{
		BlockIndex: framing.Segment{Offset: biOffset, Size: biSize},
		Meta:       framing.Segment{Offset: metaOffset, Size: metaSize},
		Stat:       framing.Segment{Offset: statOffset, Size: statSize},
	}
	if _, err := b.cw.Write(footer.Encode()); err != nil {
		return rotblstat.Stat{}, fmt.Errorf("rotbl: write footer: %w", err)
	}

	if err := b.cw.w.Commit(); err != nil {
		return rotblstat.Stat{}, fmt.Errorf("rotbl: commit: %w", err)
	}
	return stat, nil
}

// Abandon discards the in-progress file without publishing it. Abandon (or
// Commit) may be called at most once.
func (b *Builder) Abandon() error {
	if b.closed {
		return ErrBuilderClosed
	}
	b.closed = true
	return b.cw.w.Abandon()
}
