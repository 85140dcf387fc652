// Package rotbl implements a read-only, immutable, sorted on-disk key-value
// table: an append-only Builder produces a file once, and a Table opens it
// for point lookups and ordered range scans, backed by a shared block
// cache.
//
// Reference: aalhour/rockyardkv internal/table (Reader/Builder pair) for the
// overall build-once/open-for-read split, and internal/cache for the block
// cache wired through both. grounded also on original_source rotbl.rs for
// rotbl's own table-level semantics (table_id, global seq, user_data).
package rotbl

import "github.com/drmingdrmer/rotbl/internal/cache"

// Config bounds a Table's resource usage and a Builder's block-flushing
// policy.
type Config struct {
	// BlockMaxItems is the maximum number of keys per Block; the Builder
	// flushes the current block once it holds this many entries. Must be
	// greater than 0.
	BlockMaxItems int

	// Cache bounds the shared block cache. See cache.Config.
	Cache cache.Config

	// CacheShards is the number of shards the block cache is split across.
	// 1 (the default) keeps cache eviction order fully deterministic;
	// higher values trade that determinism for reduced lock contention.
	CacheShards int

	// DebugCheck enables the strict-monotonic key assertion in Builder.
	// Append.
	DebugCheck bool

	// RootPath is the default storage root a caller may join table paths
	// under. rotbl itself never touches the filesystem directly — it's
	// carried here for callers that want a default; cmd/rotbldump opens its
	// --file path as given and does not read it.
	RootPath string
}

// DefaultConfig returns a Config matching the documented defaults:
// block.max_items=8192, block_cache.max_items=1024,
// block_cache.capacity=1 GiB, debug_check=true, root_path="./.rotbl/".
func DefaultConfig() Config {
	return Config{
		BlockMaxItems: 8192,
		Cache:         cache.DefaultConfig(),
		CacheShards:   1,
		DebugCheck:    true,
		RootPath:      "./.rotbl/",
	}
}

// DisableCache returns a copy of cfg with caching disabled: every block
// read becomes a miss and nothing is retained.
func (cfg Config) DisableCache() Config {
	cfg.Cache = cache.Disabled()
	return cfg
}
