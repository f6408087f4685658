// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import (
	"math"

	"code.hybscloud.com/lfjson/internal/xxhash32"
)

const (
	initialBucketCount   = 16
	defaultGrowthFactor  = 2.0
	defaultMaxLoadFactor = 1.5
)

// StringPoolConfig holds the tunables a StringPool is constructed
// with: initial bucket count, bucket growth factor, and the max load
// factor that triggers a rehash. Numeric fields outside their valid
// range fall back to the defaults (see normalize); the two bool fields
// have no fallback, so a zero StringPoolConfig selects FNV-1a and
// modulo indexing. Start from DefaultStringPoolConfig to get xxhash
// and masked indexing.
type StringPoolConfig struct {
	InitialBuckets    int     // must be > 1; default 16
	GrowthFactor      float64 // must be > 1; default 2.0
	MaxLoadFactor     float64 // must be > 0; default 1.5
	UseXXHash         bool    // false selects FNV-1a
	BucketsPowerOfTwo bool    // false selects modulo indexing
}

// DefaultStringPoolConfig returns the knob defaults: 16 initial
// buckets, growth factor 2.0, max load factor 1.5, xxhash enabled,
// masked power-of-two indexing enabled.
func DefaultStringPoolConfig() StringPoolConfig {
	return StringPoolConfig{
		InitialBuckets:    initialBucketCount,
		GrowthFactor:      defaultGrowthFactor,
		MaxLoadFactor:     defaultMaxLoadFactor,
		UseXXHash:         true,
		BucketsPowerOfTwo: true,
	}
}

// normalize falls back to DefaultStringPoolConfig's values for any
// field set outside its valid range, and rounds InitialBuckets up to
// a power of two when BucketsPowerOfTwo is set, since masked indexing
// requires it.
func (cfg StringPoolConfig) normalize() StringPoolConfig {
	if cfg.InitialBuckets <= 1 {
		cfg.InitialBuckets = initialBucketCount
	}
	if cfg.GrowthFactor <= 1 {
		cfg.GrowthFactor = defaultGrowthFactor
	}
	if cfg.MaxLoadFactor <= 0 {
		cfg.MaxLoadFactor = defaultMaxLoadFactor
	}
	if cfg.BucketsPowerOfTwo {
		cfg.InitialBuckets = nextPowerOfTwo(cfg.InitialBuckets)
	}
	return cfg
}

// StringPool is a chained hash set of interned byte strings, backed
// by a CompactSlab so its entries and bucket chains survive Shrink
// under stable {chunkIndex,offset} pointers. Multiple documents may
// share one pool via Document.MakeSharedStringPool; the pool itself
// has no notion of which document a string belongs to.
type StringPool struct {
	_ noCopy

	slab    *CompactSlab
	buckets []CompactPtr
	count   int

	initialBuckets    int
	growthFactor      float64
	maxLoadFactor     float64
	useXXHash         bool
	bucketsPowerOfTwo bool
}

// NewStringPool creates a pool over a fresh CompactSlab using cfg's
// tunables (see StringPoolConfig, DefaultStringPoolConfig).
func NewStringPool(chunkSize, align int, cfg StringPoolConfig) *StringPool {
	return NewStringPoolWithAllocator(chunkSize, align, cfg, NewHeapAllocator(false))
}

// NewStringPoolWithAllocator creates a pool over a caller-supplied
// base allocator, letting a document's object pool and string pool
// share one instrumented HeapAllocator.
func NewStringPoolWithAllocator(chunkSize, align int, cfg StringPoolConfig, base BaseAllocator) *StringPool {
	cfg = cfg.normalize()
	p := &StringPool{
		slab:              NewCompactSlabWithAllocator(chunkSize, align, base),
		buckets:           make([]CompactPtr, cfg.InitialBuckets),
		initialBuckets:    cfg.InitialBuckets,
		growthFactor:      cfg.GrowthFactor,
		maxLoadFactor:     cfg.MaxLoadFactor,
		useXXHash:         cfg.UseXXHash,
		bucketsPowerOfTwo: cfg.BucketsPowerOfTwo,
	}
	for i := range p.buckets {
		p.buckets[i] = NilCompactPtr
	}
	return p
}

func (p *StringPool) hash(data []byte) uint32 {
	if p.useXXHash {
		return xxhash32.Sum32(data)
	}
	return xxhash32.FNV32a(data)
}

func (p *StringPool) bucketIndexFor(h uint32, bucketCount int) int {
	if p.bucketsPowerOfTwo {
		return int(h) & (bucketCount - 1)
	}
	return int(h % uint32(bucketCount))
}

func (p *StringPool) bucketIndex(h uint32) int {
	return p.bucketIndexFor(h, len(p.buckets))
}

// Count returns the number of distinct interned strings.
func (p *StringPool) Count() int { return p.count }

// Get looks up data without interning it.
func (p *StringPool) Get(data []byte) (CompactPtr, bool) {
	idx := p.bucketIndex(p.hash(data))
	for cur := p.buckets[idx]; !cur.IsNil(); cur = jstringNext(p.slab, cur) {
		switch jstringCompare(p.slab, cur, data) {
		case 0:
			return cur, true
		case 1:
			return NilCompactPtr, false
		}
	}
	return NilCompactPtr, false
}

// Provide interns data, returning the existing entry if one already
// matches byte-for-byte. key marks the entry as having been used as
// an object member name (sticky, see intern.go); own controls whether
// data is copied into the pool or referenced externally. If adding one
// more entry would push the load factor past maxLoadFactor, the table
// is rehashed to a larger bucket count before the lookup/insert runs.
func (p *StringPool) Provide(data []byte, key, own bool) (CompactPtr, error) {
	if float64(p.count+1)/float64(len(p.buckets)) > p.maxLoadFactor {
		p.rehash(p.nextBucketCount())
	}

	h := p.hash(data)
	idx := p.bucketIndex(h)

	var prev CompactPtr = NilCompactPtr
	cur := p.buckets[idx]
	for !cur.IsNil() {
		cmp := jstringCompare(p.slab, cur, data)
		if cmp == 0 {
			if key {
				jstringMarkKey(p.slab, cur)
			}
			return cur, nil
		}
		if cmp > 0 {
			break
		}
		prev = cur
		cur = jstringNext(p.slab, cur)
	}

	newPtr, err := newJString(p.slab, data, key, own, h)
	if err != nil {
		return NilCompactPtr, err
	}
	setJStringNext(p.slab, newPtr, cur)
	if prev.IsNil() {
		p.buckets[idx] = newPtr
	} else {
		setJStringNext(p.slab, prev, newPtr)
	}
	p.count++

	return newPtr, nil
}

// nextBucketCount returns the bucket count to rehash to: the initial
// count if the table is somehow empty, otherwise ceil(bucketCount *
// growthFactor), rounded up to a power of two when bucketsPowerOfTwo
// is set so masked indexing stays valid.
func (p *StringPool) nextBucketCount() int {
	if len(p.buckets) == 0 {
		return p.initialBuckets
	}
	grown := int(math.Ceil(float64(len(p.buckets)) * p.growthFactor))
	if grown <= len(p.buckets) {
		grown = len(p.buckets) + 1
	}
	if p.bucketsPowerOfTwo {
		grown = nextPowerOfTwo(grown)
	}
	return grown
}

func (p *StringPool) rehash(newCount int) {
	old := p.buckets
	p.buckets = make([]CompactPtr, newCount)
	for i := range p.buckets {
		p.buckets[i] = NilCompactPtr
	}
	for _, head := range old {
		for cur := head; !cur.IsNil(); {
			next := jstringNext(p.slab, cur)
			p.insertSorted(p.bucketIndexFor(jstringHash(p.slab, cur), newCount), cur)
			cur = next
		}
	}
}

func (p *StringPool) insertSorted(idx int, ptr CompactPtr) {
	data := jstringBytes(p.slab, ptr)
	var prev CompactPtr = NilCompactPtr
	cur := p.buckets[idx]
	for !cur.IsNil() && jstringCompare(p.slab, cur, data) < 0 {
		prev = cur
		cur = jstringNext(p.slab, cur)
	}
	setJStringNext(p.slab, ptr, cur)
	if prev.IsNil() {
		p.buckets[idx] = ptr
	} else {
		setJStringNext(p.slab, prev, ptr)
	}
}

// ReleaseValues frees every interned entry that has never been used
// as an object key, leaving key entries interned for reuse by the
// next document built against this pool.
func (p *StringPool) ReleaseValues() {
	for i, head := range p.buckets {
		var prev CompactPtr = NilCompactPtr
		cur := head
		for !cur.IsNil() {
			next := jstringNext(p.slab, cur)
			if jstringIsKeyAt(p.slab, cur) {
				prev = cur
				cur = next
				continue
			}
			freeJString(p.slab, cur)
			p.count--
			if prev.IsNil() {
				head = next
			} else {
				setJStringNext(p.slab, prev, next)
			}
			cur = next
		}
		p.buckets[i] = head
	}
}

// Clear frees every interned entry, keys included, and resets the
// bucket table to its initial size.
func (p *StringPool) Clear() {
	for _, head := range p.buckets {
		for cur := head; !cur.IsNil(); {
			next := jstringNext(p.slab, cur)
			freeJString(p.slab, cur)
			cur = next
		}
	}
	p.buckets = make([]CompactPtr, p.initialBuckets)
	for i := range p.buckets {
		p.buckets[i] = NilCompactPtr
	}
	p.count = 0
}

// Rehash resizes the bucket table to fit the pool's current entry
// count, undoing growth left over from a since-cleared burst of
// interning. It is separate from Shrink, which only releases slab
// memory, because the two operations have independent costs.
func (p *StringPool) Rehash() {
	p.rehash(p.idealBucketCount())
}

func (p *StringPool) idealBucketCount() int {
	n := p.initialBuckets
	for float64(p.count)/float64(n) > p.maxLoadFactor {
		if p.bucketsPowerOfTwo {
			n *= 2
			continue
		}
		next := int(math.Ceil(float64(n) * p.growthFactor))
		if next <= n {
			next = n + 1
		}
		n = next
	}
	return n
}

// Shrink releases the pool's slab memory back to its base allocator
// wherever every chunk has gone empty; it never touches live entries.
func (p *StringPool) Shrink() {
	p.slab.Shrink()
}

// Stats exposes the pool's underlying slab chunk/fallback counts.
func (p *StringPool) Stats() (chunkCount, fallbackCount int) {
	return p.slab.Stats()
}

// Bytes returns the live bytes of an entry previously returned by
// Provide or Get.
func (p *StringPool) Bytes(ptr CompactPtr) []byte {
	return jstringBytes(p.slab, ptr)
}
