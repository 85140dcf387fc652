// Package cache implements the shared block cache: an LRU keyed by
// (table_id, block_num), weighted by each block's encoded byte size, capped
// simultaneously by item count and total bytes.
//
// Reference: aalhour/rockyardkv internal/cache/lru_cache.go (LRUCache,
// ShardedLRUCache, CacheKey, Handle). rotbl keeps the same container/list +
// map + mutex shape but replaces the teacher's ad hoc XOR-multiply shard
// hash with github.com/zeebo/xxh3, and adds a second simultaneous cap (byte
// capacity alongside item count) since the format spec requires both axes
// to be enforceable independently, including the all-zero disable_cache
// case.
package cache

import (
	"container/list"
	"sync"

	"github.com/zeebo/xxh3"
)

// BlockId identifies a cached block by its owning table and position. Width
// matches the on-disk (table_id: u32, block_num: u32) pair from the format
// spec; BlockNum is widened to uint64 here only to match blockindex.Entry's
// BlockNum field elsewhere in this module, not because the format allows more
// than 2^32 blocks per table.
type BlockId struct {
	TableID  uint32
	BlockNum uint64
}

// Config bounds a cache on two independent axes. A zero on either axis
// disables caching for that shard: every Get becomes a miss and nothing is
// retained.
type Config struct {
	MaxItems int
	Capacity uint64
}

// DefaultConfig returns the documented default: 1024 items, 1 GiB.
func DefaultConfig() Config {
	return Config{MaxItems: 1024, Capacity: 1 << 30}
}

// Disabled returns a Config with both axes at zero, matching disable_cache().
func Disabled() Config {
	return Config{}
}

func (c Config) disabled() bool {
	return c.MaxItems == 0 || c.Capacity == 0
}

// Stat summarizes a cache's current occupancy.
type Stat struct {
	ItemCount  int
	TotalBytes uint64
}

type entry struct {
	id    BlockId
	value any
	size  uint64
}

// shard is a single-lock LRU over a subset of block ids.
type shard struct {
	mu       sync.Mutex
	cfg      Config
	ll       *list.List
	items    map[BlockId]*list.Element
	curBytes uint64
}

func newShard(cfg Config) *shard {
	return &shard{
		cfg:   cfg,
		ll:    list.New(),
		items: make(map[BlockId]*list.Element),
	}
}

func (s *shard) get(id BlockId) (any, bool) {
	if s.cfg.disabled() {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.items[id]
	if !ok {
		return nil, false
	}
	s.ll.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (s *shard) insert(id BlockId, value any, size uint64) {
	if s.cfg.disabled() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(id, value, size)
}

func (s *shard) insertLocked(id BlockId, value any, size uint64) {
	if el, ok := s.items[id]; ok {
		old := el.Value.(*entry)
		s.curBytes -= old.size
		el.Value = &entry{id: id, value: value, size: size}
		s.curBytes += size
		s.ll.MoveToFront(el)
		s.evict()
		return
	}
	el := s.ll.PushFront(&entry{id: id, value: value, size: size})
	s.items[id] = el
	s.curBytes += size
	s.evict()
}

func (s *shard) evict() {
	for s.ll.Len() > s.cfg.MaxItems || s.curBytes > s.cfg.Capacity {
		back := s.ll.Back()
		if back == nil {
			return
		}
		s.removeElement(back)
	}
}

func (s *shard) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	s.ll.Remove(el)
	delete(s.items, e.id)
	s.curBytes -= e.size
}

func (s *shard) erase(id BlockId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[id]; ok {
		s.removeElement(el)
	}
}

func (s *shard) stat() Stat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stat{ItemCount: s.ll.Len(), TotalBytes: s.curBytes}
}

// Cache is a sharded, size-and-count-bounded LRU keyed by BlockId.
//
// Cache is safe for concurrent use. GetOrLoad holds the owning shard's lock
// across a miss's load function, so at most one concurrent load happens per
// block id within a shard.
type Cache struct {
	shards []*shard
	mask   uint64
}

// New returns a Cache with numShards shards (rounded up to a power of two,
// minimum 1), each sized to an even share of cfg.
func New(cfg Config, numShards int) *Cache {
	if numShards < 1 {
		numShards = 1
	}
	numShards = nextPowerOf2(numShards)

	shardCfg := cfg
	if numShards > 1 {
		shardCfg.MaxItems = cfg.MaxItems / numShards
		shardCfg.Capacity = cfg.Capacity / uint64(numShards)
	}

	c := &Cache{
		shards: make([]*shard, numShards),
		mask:   uint64(numShards - 1),
	}
	for i := range c.shards {
		c.shards[i] = newShard(shardCfg)
	}
	return c
}

// NewDefault returns a single-shard Cache with cfg. A single shard keeps
// eviction order fully deterministic, which callers that assert on exact
// cap-sequence behavior rely on; pass a larger numShards to New explicitly
// to trade that determinism for reduced lock contention under concurrency.
func NewDefault(cfg Config) *Cache {
	return New(cfg, 1)
}

func (c *Cache) shardFor(id BlockId) *shard {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	var b [16]byte
	putBlockId(b[:], id)
	h := xxh3.Hash(b[:])
	return c.shards[h&c.mask]
}

func putBlockId(b []byte, id BlockId) {
	be64(b[0:8], uint64(id.TableID))
	be64(b[8:16], id.BlockNum)
}

func be64(b []byte, v uint64) {
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
}

// Get returns the cached value for id, or (nil, false) on a miss.
func (c *Cache) Get(id BlockId) (any, bool) {
	return c.shardFor(id).get(id)
}

// Insert stores value under id, weighted by size for eviction purposes.
func (c *Cache) Insert(id BlockId, value any, size uint64) {
	c.shardFor(id).insert(id, value, size)
}

// Erase removes id from the cache, if present.
func (c *Cache) Erase(id BlockId) {
	c.shardFor(id).erase(id)
}

// GetOrLoad returns the cached value for id, loading and inserting it via
// load on a miss. The shard lock is held across load, so concurrent callers
// for the same id within a shard serialize onto a single load.
func (c *Cache) GetOrLoad(id BlockId, size uint64, load func() (any, error)) (any, error) {
	sh := c.shardFor(id)
	if sh.cfg.disabled() {
		return load()
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if el, ok := sh.items[id]; ok {
		sh.ll.MoveToFront(el)
		return el.Value.(*entry).value, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	sh.insertLocked(id, v, size)
	return v, nil
}

// Stat aggregates occupancy across all shards.
func (c *Cache) Stat() Stat {
	var out Stat
	for _, s := range c.shards {
		st := s.stat()
		out.ItemCount += st.ItemCount
		out.TotalBytes += st.TotalBytes
	}
	return out
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
