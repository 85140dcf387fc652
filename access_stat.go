package rotbl

import "sync/atomic"

// AccessStat accumulates read-path counters for a Table over its lifetime.
// All methods are safe for concurrent use.
//
// Reference: original_source rotbl/access_stat.rs (independent atomic
// counters for read_key/read_block/read_block_from_cache/
// read_block_from_disk) — a feature the distilled format spec omits but the
// original table type carries throughout its life.
type AccessStat struct {
	readKey            atomic.Uint64
	readBlock          atomic.Uint64
	readBlockFromCache atomic.Uint64
	readBlockFromDisk  atomic.Uint64
}

// AccessStatSnapshot is a point-in-time copy of an AccessStat's counters.
type AccessStatSnapshot struct {
	ReadKey            uint64
	ReadBlock          uint64
	ReadBlockFromCache uint64
	ReadBlockFromDisk  uint64
}

// Snapshot returns the current value of every counter.
func (s *AccessStat) Snapshot() AccessStatSnapshot {
	return AccessStatSnapshot{
		ReadKey:            s.readKey.Load(),
		ReadBlock:          s.readBlock.Load(),
		ReadBlockFromCache: s.readBlockFromCache.Load(),
		ReadBlockFromDisk:  s.readBlockFromDisk.Load(),
	}
}

func (s *AccessStat) hitKey() {
	s.readKey.Add(1)
}

func (s *AccessStat) hitBlock(fromCache bool) {
	s.readBlock.Add(1)
	if fromCache {
		s.readBlockFromCache.Add(1)
	} else {
		s.readBlockFromDisk.Add(1)
	}
}
