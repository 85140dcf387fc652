package rotbl

import (
	"fmt"
	"iter"

	"github.com/drmingdrmer/rotbl/internal/keyrange"
	"github.com/drmingdrmer/rotbl/internal/marked"
	"github.com/drmingdrmer/rotbl/internal/typ"
)

// Dump returns a lazy sequence of human-readable lines describing the whole
// table: an overview (header, file size, meta, stat, access stat), the
// block index, then every block's entries in key order. Decode or I/O
// errors are surfaced in-band as the second element instead of a panic or
// silent truncation.
//
// Reference: original_source rotbl/dump.rs, where Dump is a Rust async
// generator yielding Result<String, io::Error>; its test_dump fixture fixes
// the exact line shapes this mirrors (overview block, "BlockIndex: n: ...",
// then "Block-NNNN: key: value" per entry). Go 1.23's iter.Seq2
// range-over-func is the idiomatic analogue of that coroutine here:
// restartable from the start on each call, and cancel-safe — a consumer
// that stops ranging mid-dump leaves the Table in a valid state.
func (t *Table) Dump() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if t.closed {
			yield("", ErrClosed)
			return
		}

		snap := t.access.Snapshot()
		overview := []string{
			"Rotbl:",
			fmt.Sprintf("    header: {typ: Rotbl, version: V%03d}", typ.V001),
			fmt.Sprintf("    file_size: %d", t.FileSize()),
			fmt.Sprintf("    meta: {header: {typ: RotblMeta, version: V%03d}, payload: {seq: %d, user_data: %s}}",
				typ.V001, t.meta.Seq(), t.meta.UserData()),
			fmt.Sprintf("    stat: %d keys in %d blocks: data(%d B), index(%d B), avg block size(%d B)",
				t.stat.KeyNum, t.stat.BlockNum, t.stat.DataSize, t.stat.IndexSize, t.stat.BlockAvgSize()),
			fmt.Sprintf("    access_stat: AccessStat { read_key: %d, read_block: %d, read_block_from_cache: %d, read_block_from_disk: %d }",
				snap.ReadKey, snap.ReadBlock, snap.ReadBlockFromCache, snap.ReadBlockFromDisk),
		}
		for _, line := range overview {
			if !yield(line, nil) {
				return
			}
		}

		entries := t.index.All()
		if !yield(fmt.Sprintf("BlockIndex: n: %d", len(entries)), nil) {
			return
		}
		for _, e := range entries {
			line := fmt.Sprintf("    index: { block_num: %04d, position: %d+%d, key_range: [%q, %q] }",
				e.BlockNum, e.Offset, e.Size, e.FirstKey, e.LastKey)
			if !yield(line, nil) {
				return
			}
		}

		for _, e := range entries {
			blk, err := t.loadBlock(e)
			if err != nil {
				yield("", err)
				return
			}
			for k, v := range blk.Range(keyrange.Full()) {
				line := fmt.Sprintf("Block-%04d: %s: %s", e.BlockNum, k, dumpValue(v))
				if !yield(line, nil) {
					return
				}
			}
		}
	}
}

func dumpValue(v marked.SeqMarked[[]byte]) string {
	if v.IsTombstone() {
		return fmt.Sprintf("{seq: %d, TOMBSTONE}", v.Seq())
	}
	data, _ := v.IntoData()
	return fmt.Sprintf("{seq: %d, (%v)}", v.Seq(), data)
}
