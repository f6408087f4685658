// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

const (
	defaultChunkSize = 1 << 16
	defaultAlign     = 8
)

// ConstValue is a read-only view of a Value tree, used by consumers
// (lfjsonwalk.Walk, comparison helpers) that must not mutate what
// they visit. Go has no const pointers, so this is an intentional
// naming convention rather than a compiler-enforced guarantee; callers
// that mutate through a ConstValue are violating the contract, not
// the type system.
type ConstValue = *Value

// DocumentStats summarizes a Document's memory use: how much of its
// object pool and string pool are in service, and how many chunks and
// oversized fallback allocations each allocator is carrying.
type DocumentStats struct {
	ValueBytes    int64
	StringBytes   int64
	StringCount   int
	ChunkCount    int
	FallbackCount int
}

// Document owns one JSON value tree: a root cell, the object/array
// allocator backing every container in the tree, and a reference to
// the string pool backing every long string. The string pool may be
// shared with other documents via MakeSharedStringPool; the object
// allocator is never shared, since containers from two documents must
// never be able to alias each other's storage.
type Document struct {
	_ noCopy

	root    Value
	pool    *StringPool
	ownPool bool
	objects *NominalSlab
}

// NewDocument creates an empty document (root is Null). When pool is
// nil, the document creates and owns a private StringPool; otherwise
// it shares the caller's pool, and ClearStrings/Clear on this document
// will also discard non-key strings belonging to any other document
// sharing that pool.
func NewDocument(pool *StringPool) *Document {
	owns := pool == nil
	if owns {
		pool = NewStringPool(defaultChunkSize, defaultAlign, DefaultStringPoolConfig())
	}
	return &Document{
		pool:    pool,
		ownPool: owns,
		objects: NewNominalSlab(defaultChunkSize, defaultAlign),
	}
}

// Root returns a mutable cursor over the document's root value. The
// Ref must not outlive the Document and must not be copied past the
// scope it was obtained in; see Ref's doc comment.
func (d *Document) Root() *Ref {
	return &Ref{v: &d.root, doc: d}
}

// CRoot returns a read-only view of the root value, for callers that
// only ever walk or serialize the tree.
func (d *Document) CRoot() ConstValue {
	return &d.root
}

// Pool returns the document's string pool, shared or private.
func (d *Document) Pool() *StringPool { return d.pool }

// MakeSharedStringPool returns the document's string pool so it can
// be passed to NewDocument for another document that should dedupe
// strings against this one.
func (d *Document) MakeSharedStringPool() *StringPool { return d.pool }

// MakeHandler returns a streaming build Handler that appends into
// this document's root. allowIntToDouble controls whether an IArray
// widens to a DArray (true) or falls back to a generic Array (false)
// when a float is pushed after one or more ints; see handler.go.
func (d *Document) MakeHandler(allowIntToDouble bool) *Handler {
	return newHandler(d, allowIntToDouble)
}

// ClearObjects frees the entire value tree rooted at Root and resets
// the root to Null, without touching the string pool.
func (d *Document) ClearObjects() {
	freeValueRecursive(&d.root, d.objects)
	d.root = Value{}
}

// ClearStrings releases every interned string that has never been
// used as an object key (see StringPool.ReleaseValues). When the pool
// is shared, this affects every document sharing it.
func (d *Document) ClearStrings() {
	d.pool.ReleaseValues()
}

// Clear resets the document to empty: ClearObjects followed by
// ClearStrings.
func (d *Document) Clear() {
	d.ClearObjects()
	d.ClearStrings()
}

// Shrink releases unused object-pool and string-pool chunks back to
// their allocators. When rehash is true the string pool's bucket
// table is also resized to fit its current entry count.
func (d *Document) Shrink(rehash bool) {
	d.objects.Shrink()
	d.pool.Shrink()
	if rehash {
		d.pool.Rehash()
	}
}

// Stats reports the document's current memory footprint. ValueBytes
// and StringBytes are only meaningful when the respective allocator is
// an instrumented *HeapAllocator; otherwise they read zero.
func (d *Document) Stats() DocumentStats {
	chunkCount, fallbackCount := d.objects.Stats()
	sChunks, sFallback := d.pool.Stats()

	var valueBytes, stringBytes int64
	if ha, ok := d.objects.Base().(*HeapAllocator); ok {
		valueBytes, _, _ = ha.Stats()
	}
	if ha, ok := d.pool.slab.Base().(*HeapAllocator); ok {
		stringBytes, _, _ = ha.Stats()
	}

	return DocumentStats{
		ValueBytes:    valueBytes,
		StringBytes:   stringBytes,
		StringCount:   d.pool.Count(),
		ChunkCount:    chunkCount + sChunks,
		FallbackCount: fallbackCount + sFallback,
	}
}

// freeValueRecursive releases a value's container backing storage and
// recurses into its children. It never touches the string pool: pool
// entries are set-semantics and independent of how many live values
// reference them.
func freeValueRecursive(v *Value, objects *NominalSlab) {
	switch v.tag {
	case TagArray:
		elems := ValueElems(v)
		for i := range elems {
			freeValueRecursive(&elems[i], objects)
		}
	case TagObject:
		elems := MemberElems(v)
		for i := range elems {
			freeValueRecursive(&elems[i].Val, objects)
		}
	}
	if !v.tag.IsArrayLike() && v.tag != TagObject {
		return
	}
	ptr := v.containerPtr()
	if ptr == 0 {
		return
	}
	elemSize := elemSizeForTag(v.tag)
	full := containerFullSize(v.containerCapa(), ptr, elemSize)
	objects.Deallocate(sliceFromPtr(ptr, full), full)
}
