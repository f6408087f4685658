// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

// CompactPtr is the {chunkIndex, offset} pointer returned by
// CompactSlab, used in place of an 8-byte raw pointer by anything
// addressed through the string pool's allocator.
type CompactPtr struct {
	ChunkIndex uint16
	Offset     uint16
}

const (
	compactNilChunk      = 0xFFFF
	compactFallbackChunk = 0xFFFE
)

// NilCompactPtr is the null compact pointer.
var NilCompactPtr = CompactPtr{ChunkIndex: compactNilChunk}

// IsNil reports whether p is the null compact pointer.
func (p CompactPtr) IsNil() bool { return p.ChunkIndex == compactNilChunk }

// IsFallback reports whether p addresses the fallback list rather
// than a chunk.
func (p CompactPtr) IsFallback() bool { return p.ChunkIndex == compactFallbackChunk }

// CompactSlab is the string-pool allocation scheme: pointers are
// {chunkIndex, offset} pairs that stay valid across Shrink because
// chunk indices, unlike Nominal's address-sorted slice, are never
// reordered.
type CompactSlab struct {
	core *slabCore
}

// NewCompactSlab creates a CompactSlab with its own HeapAllocator.
func NewCompactSlab(chunkSize, align int) *CompactSlab {
	return NewCompactSlabWithAllocator(chunkSize, align, NewHeapAllocator(false))
}

// NewCompactSlabWithAllocator creates a CompactSlab over a shared or
// caller-provided BaseAllocator.
func NewCompactSlabWithAllocator(chunkSize, align int, base BaseAllocator) *CompactSlab {
	return &CompactSlab{core: newSlabCore(chunkSize, align, false, base, false)}
}

func (p *CompactSlab) Allocate(size int) (CompactPtr, error) {
	aligned := alignedSize(size, p.core.align)
	if p.core.alwaysFallback() || int(aligned) > p.core.chunkSize {
		idx, err := p.core.allocateFallback(size)
		if err != nil {
			return NilCompactPtr, err
		}
		return CompactPtr{ChunkIndex: compactFallbackChunk, Offset: uint16(idx)}, nil
	}
	chunkIdx, offset, err := p.core.allocateAligned(aligned)
	if err != nil {
		return NilCompactPtr, err
	}
	return CompactPtr{ChunkIndex: uint16(chunkIdx), Offset: offset}, nil
}

// Deref returns the live bytes addressed by p, sized to size.
func (p *CompactSlab) Deref(ptr CompactPtr, size int) []byte {
	if ptr.IsNil() {
		return nil
	}
	if ptr.IsFallback() {
		return p.core.fallback[ptr.Offset].payload
	}
	aligned := alignedSize(size, p.core.align)
	c := p.core.chunks[ptr.ChunkIndex]
	return c.data[ptr.Offset : ptr.Offset+aligned]
}

// Deallocate returns ptr's region to its chunk's freelist/tail, or
// tombstones its fallback slot, keeping later fallback indices stable.
func (p *CompactSlab) Deallocate(ptr CompactPtr, size int) {
	if ptr.IsNil() {
		return
	}
	if ptr.IsFallback() {
		p.core.deallocateFallback(int(ptr.Offset))
		return
	}
	aligned := alignedSize(size, p.core.align)
	debugAssert(int(ptr.ChunkIndex) < len(p.core.chunks), "deallocate unknown chunk index %d", ptr.ChunkIndex)
	p.core.deallocateAt(int(ptr.ChunkIndex), ptr.Offset, aligned)
}

// Realloc grows ptr's region in place when possible; see NominalSlab.Realloc.
func (p *CompactSlab) Realloc(ptr CompactPtr, oldSize, newSize int) (CompactPtr, error) {
	if ptr.IsFallback() || ptr.IsNil() {
		return NilCompactPtr, ErrAllocationFailed
	}
	oldAligned := alignedSize(oldSize, p.core.align)
	newAligned := alignedSize(newSize, p.core.align)
	if err := p.core.reallocInPlace(int(ptr.ChunkIndex), ptr.Offset, oldAligned, newAligned); err != nil {
		return NilCompactPtr, err
	}
	return ptr, nil
}

// Shrink drops all chunks or none: under the compact scheme indices
// must stay stable, so a partial compaction is never performed. It is
// a no-op unless every chunk is empty, in which case the whole vector
// is released.
func (p *CompactSlab) Shrink() {
	for _, c := range p.core.chunks {
		if c.firstAvail != 0 {
			return
		}
	}
	for _, c := range p.core.chunks {
		p.core.base.Deallocate(c.data)
	}
	p.core.chunks = nil
	p.core.lastUsed = -1
}

// Stats exposes the allocator's chunk and fallback counts for
// DocumentStats.
func (p *CompactSlab) Stats() (chunkCount, fallbackCount int) {
	live := 0
	for _, e := range p.core.fallback {
		if e.live() {
			live++
		}
	}
	return len(p.core.chunks), live
}

// Base returns the BaseAllocator backing this slab, letting callers
// that know it is a *HeapAllocator read its byte counters.
func (p *CompactSlab) Base() BaseAllocator { return p.core.base }
