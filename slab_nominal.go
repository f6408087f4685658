// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import (
	"sort"
	"unsafe"
)

// NominalSlab is the object-pool allocation scheme: it returns raw
// byte slices and finds a pointer's owning chunk by binary search on
// data address, per the design's "nominal scheme". Chunks are kept
// sorted by data address to make that search possible.
type NominalSlab struct {
	core *slabCore
}

// NewNominalSlab creates a NominalSlab with its own HeapAllocator.
func NewNominalSlab(chunkSize, align int) *NominalSlab {
	return NewNominalSlabWithAllocator(chunkSize, align, NewHeapAllocator(false))
}

// NewNominalSlabWithAllocator creates a NominalSlab over a shared or
// caller-provided BaseAllocator, so a document's object allocator can
// share instrumentation with its string pool's allocator.
func NewNominalSlabWithAllocator(chunkSize, align int, base BaseAllocator) *NominalSlab {
	return &NominalSlab{core: newSlabCore(chunkSize, align, true, base, false)}
}

func (p *NominalSlab) Allocate(size int) ([]byte, error) {
	aligned := alignedSize(size, p.core.align)
	if p.core.alwaysFallback() || int(aligned) > p.core.chunkSize {
		idx, err := p.core.allocateFallback(size)
		if err != nil {
			return nil, err
		}
		return p.core.fallback[idx].payload, nil
	}
	chunkIdx, offset, err := p.core.allocateAligned(aligned)
	if err != nil {
		return nil, err
	}
	c := p.core.chunks[chunkIdx]
	return c.data[offset : offset+aligned : offset+aligned], nil
}

// Deallocate locates buf's owning chunk by binary search on address
// and returns its region to that chunk's freelist or tail. Calling it
// with a pointer this allocator never produced is a programming error.
func (p *NominalSlab) Deallocate(buf []byte, size int) {
	if len(buf) == 0 {
		return
	}
	aligned := alignedSize(size, p.core.align)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	if idx, offset, ok := p.findChunk(addr); ok {
		p.core.deallocateAt(idx, offset, aligned)
		return
	}
	for _, e := range p.core.fallback {
		if e.live() && uintptr(unsafe.Pointer(unsafe.SliceData(e.payload))) == addr {
			p.core.base.Deallocate(e.payload)
			e.payload = nil
			return
		}
	}
	debugAssert(false, "deallocate of unknown pointer")
}

func (p *NominalSlab) findChunk(addr uintptr) (idx int, offset uint16, ok bool) {
	chunks := p.core.chunks
	i := sort.Search(len(chunks), func(i int) bool { return chunks[i].base() > addr })
	if i == 0 {
		return 0, 0, false
	}
	c := chunks[i-1]
	base := c.base()
	if addr < base || addr >= base+uintptr(len(c.data)) {
		return 0, 0, false
	}
	return i - 1, uint16(addr - base), true
}

// Realloc grows buf in place when it sits at its chunk's live tail and
// the growth fits under ChunkSize; otherwise it returns the teacher's
// iox.ErrMore sentinel and the caller must allocate fresh and copy.
func (p *NominalSlab) Realloc(buf []byte, oldSize, newSize int) ([]byte, error) {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	idx, offset, ok := p.findChunk(addr)
	if !ok {
		return nil, ErrAllocationFailed
	}
	oldAligned := alignedSize(oldSize, p.core.align)
	newAligned := alignedSize(newSize, p.core.align)
	if err := p.core.reallocInPlace(idx, offset, oldAligned, newAligned); err != nil {
		return nil, err
	}
	c := p.core.chunks[idx]
	return c.data[offset : offset+newAligned : offset+newAligned], nil
}

// Shrink frees every chunk whose firstAvail is zero and compacts the
// chunk vector; if none remain, the vector itself is dropped.
func (p *NominalSlab) Shrink() {
	p.core.shrinkSorted()
}

// Stats exposes the allocator's chunk and fallback counts for
// DocumentStats.
func (p *NominalSlab) Stats() (chunkCount, fallbackCount int) {
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
func (p *NominalSlab) Base() BaseAllocator { return p.core.base }
