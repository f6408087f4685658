// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import (
	"sort"
	"unsafe"

	"code.hybscloud.com/iox"
)

// BaseAllocator is the untyped byte allocator backing a NominalSlab or
// CompactSlab. Two
// flavors are provided: HeapAllocator (the process heap, optionally
// instrumented) and ArenaAllocator (a fixed-capacity buffer for tests
// and small documents).
type BaseAllocator interface {
	// Allocate returns a zeroed buffer of exactly size bytes.
	Allocate(size int) ([]byte, error)
	// Deallocate returns buf to the allocator. buf must be a slice
	// previously returned by Allocate on the same allocator.
	Deallocate(buf []byte)
}

// HeapAllocator backs a slab with the process heap. Instrumented,
// when true, tracks per-instance allocation counters; counters are
// never package-level globals, so multiple independent documents in
// one process never interfere with each other's accounting.
type HeapAllocator struct {
	Instrumented bool

	allocated int64
	peak      int64
	count     int64
}

// NewHeapAllocator returns a HeapAllocator, optionally instrumented.
func NewHeapAllocator(instrumented bool) *HeapAllocator {
	return &HeapAllocator{Instrumented: instrumented}
}

func (a *HeapAllocator) Allocate(size int) ([]byte, error) {
	buf := make([]byte, size)
	if a.Instrumented {
		a.allocated += int64(size)
		a.count++
		if a.allocated > a.peak {
			a.peak = a.allocated
		}
	}
	return buf, nil
}

func (a *HeapAllocator) Deallocate(buf []byte) {
	if a.Instrumented {
		a.allocated -= int64(len(buf))
		a.count--
	}
}

// Stats returns the current allocated bytes, peak allocated bytes and
// live allocation count. It is only meaningful when Instrumented.
func (a *HeapAllocator) Stats() (allocated, peak, count int64) {
	return a.allocated, a.peak, a.count
}

// ArenaAllocator is a fixed-capacity, bump-pointer allocator over a
// caller-supplied buffer. It never reclaims individual allocations
// (Deallocate is a no-op); callers reset it wholesale by constructing
// a fresh one. It is meant for tests and small, short-lived documents
// where a stack-resident or pre-sized buffer is preferable to heap
// churn.
type ArenaAllocator struct {
	buf []byte
	off int
}

// NewArenaAllocator wraps buf as a bump-pointer arena.
func NewArenaAllocator(buf []byte) *ArenaAllocator {
	return &ArenaAllocator{buf: buf}
}

func (a *ArenaAllocator) Allocate(size int) ([]byte, error) {
	if a.off+size > len(a.buf) {
		return nil, ErrArenaExhausted
	}
	b := a.buf[a.off : a.off+size : a.off+size]
	a.off += size
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

func (a *ArenaAllocator) Deallocate([]byte) {}

// deadCell is the 4-byte inline record written into a freed region of
// at least 4 bytes, chaining freed regions within one chunk.
type deadCell struct {
	size       uint16
	nextOffset uint16
}

const deadCellSize = 4
const noDead = 0xFFFF

func readDeadCell(data []byte, at uint16) deadCell {
	return deadCell{
		size:       uint16(data[at]) | uint16(data[at+1])<<8,
		nextOffset: uint16(data[at+2]) | uint16(data[at+3])<<8,
	}
}

func writeDeadCell(data []byte, at uint16, c deadCell) {
	data[at] = byte(c.size)
	data[at+1] = byte(c.size >> 8)
	data[at+2] = byte(c.nextOffset)
	data[at+3] = byte(c.nextOffset >> 8)
}

// chunk is a fixed-size byte region subdivided by bump pointer with a
// freelist of dead cells.
type chunk struct {
	data       []byte
	firstAvail uint16
	firstDead  uint16
	totalDead  uint16
}

func (c *chunk) base() uintptr {
	if len(c.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(c.data)))
}

// fallbackEntry is an oversized allocation held outside the chunk
// list. Entries are kept in a stable-index slice rather than a true
// singly linked list: Go slices give O(1) stable-index access without
// pointer chasing, while a tombstoned (nil payload) entry keeps later
// indices from shifting, which is the behavior the design calls for
// when it says fallback-list indices must stay stable under the
// compact pointer scheme.
type fallbackEntry struct {
	payload       []byte
	requestedSize int
}

func (e *fallbackEntry) live() bool { return e.payload != nil }

// slabCore is the chunk/fallback bookkeeping shared by NominalSlab and
// CompactSlab. The two pointer policies differ only in how callers
// address a location (raw slice vs {chunkIndex,offset}); the grow,
// freelist and dead-cell accounting below is identical for both,
// matching the "shared internal representation parameterized by a
// pointer policy" design note.
type slabCore struct {
	_ noCopy

	chunkSize int
	align     int
	sorted    bool // true for the Nominal (object) scheme

	chunks   []*chunk
	lastUsed int

	fallback []*fallbackEntry

	base     BaseAllocator
	ownBase  bool
	totalDead uint64
}

func newSlabCore(chunkSize, align int, sorted bool, base BaseAllocator, ownBase bool) *slabCore {
	if align < 4 {
		align = 4
	}
	// Chunk offsets, firstAvail and dead-cell links are uint16 and
	// 0xFFFF marks an empty freelist, so a chunk holds at most 0xFFFE bytes.
	const maxChunkSize = 0xFFFE
	if chunkSize > maxChunkSize {
		chunkSize = maxChunkSize
	}
	return &slabCore{
		chunkSize: chunkSize,
		align:     align,
		sorted:    sorted,
		base:      base,
		ownBase:   ownBase,
		lastUsed:  -1,
	}
}

func (s *slabCore) alwaysFallback() bool { return s.chunkSize <= 0 }

// findSlot locates a location for an aligned size, preferring (in
// order) the last-used chunk's tail, the last-used chunk's freelist,
// other chunks' tails, other chunks' freelists. Returns chunkIdx == -1
// when a new chunk must be grown.
func (s *slabCore) findSlot(size uint16) (chunkIdx int, offset uint16, fromFreelist bool) {
	if s.lastUsed >= 0 {
		c := s.chunks[s.lastUsed]
		if int(c.firstAvail)+int(size) <= s.chunkSize {
			return s.lastUsed, c.firstAvail, false
		}
	}
	if s.lastUsed >= 0 {
		c := s.chunks[s.lastUsed]
		if off, ok := s.takeFromFreelist(c, size); ok {
			return s.lastUsed, off, true
		}
	}
	for i, c := range s.chunks {
		if i == s.lastUsed {
			continue
		}
		if int(c.firstAvail)+int(size) <= s.chunkSize {
			return i, c.firstAvail, false
		}
	}
	for i, c := range s.chunks {
		if i == s.lastUsed {
			continue
		}
		if c.totalDead < size {
			continue
		}
		if off, ok := s.takeFromFreelist(c, size); ok {
			return i, off, true
		}
	}
	return -1, 0, false
}

// takeFromFreelist applies the fit policy from the design: an exact
// fit removes the cell outright; a cell at least 2x the request is
// split from its tail (so the remaining head stays on the freelist);
// otherwise the smallest cell that is still >= the request is used
// whole, to avoid fragmenting large dead cells into slivers.
func (s *slabCore) takeFromFreelist(c *chunk, size uint16) (uint16, bool) {
	var (
		best        uint16 = noDead
		bestPrevOff uint16 = noDead
		cur                = c.firstDead
		prevOff     uint16 = noDead
	)
	for cur != noDead {
		cell := readDeadCell(c.data, cur)
		switch {
		case cell.size == size:
			s.unlinkDead(c, prevOff, cur, cell)
			return cur, true
		case cell.size >= 2*size:
			tailOff := cur + cell.size - size
			cell.size -= size
			writeDeadCell(c.data, cur, cell)
			c.totalDead -= size
			s.totalDead -= uint64(size)
			return tailOff, true
		case cell.size > size && (best == noDead || cell.size < readDeadCell(c.data, best).size):
			best, bestPrevOff = cur, prevOff
		}
		prevOff = cur
		cur = cell.nextOffset
	}
	if best != noDead {
		cell := readDeadCell(c.data, best)
		s.unlinkDead(c, bestPrevOff, best, cell)
		return best, true
	}
	return 0, false
}

func (s *slabCore) unlinkDead(c *chunk, prevOff, at uint16, cell deadCell) {
	if prevOff == noDead {
		c.firstDead = cell.nextOffset
	} else {
		p := readDeadCell(c.data, prevOff)
		p.nextOffset = cell.nextOffset
		writeDeadCell(c.data, prevOff, p)
	}
	c.totalDead -= cell.size
	s.totalDead -= uint64(cell.size)
}

func (s *slabCore) growChunk() (*chunk, int, error) {
	buf, err := s.base.Allocate(s.chunkSize)
	if err != nil {
		return nil, -1, wrapAllocationFailed(err, "grow slab chunk of size %d", s.chunkSize)
	}
	c := &chunk{data: buf, firstDead: noDead}
	newCap := ceilMul3Over2(uint32(len(s.chunks)))
	if int(newCap) <= len(s.chunks) {
		newCap = uint32(len(s.chunks)) + 1
	}
	if cap(s.chunks) == len(s.chunks) {
		grown := make([]*chunk, len(s.chunks), newCap)
		copy(grown, s.chunks)
		s.chunks = grown
	}
	if s.sorted {
		idx := sort.Search(len(s.chunks), func(i int) bool {
			return s.chunks[i].base() > c.base()
		})
		s.chunks = append(s.chunks, nil)
		copy(s.chunks[idx+1:], s.chunks[idx:])
		s.chunks[idx] = c
		return c, idx, nil
	}
	s.chunks = append(s.chunks, c)
	return c, len(s.chunks) - 1, nil
}

// allocateAligned reserves size bytes (already aligned) and returns
// the owning chunk index and offset, growing the chunk vector if no
// existing chunk has room.
func (s *slabCore) allocateAligned(size uint16) (chunkIdx int, offset uint16, err error) {
	idx, off, fromFreelist := s.findSlot(size)
	if idx < 0 {
		c, newIdx, gerr := s.growChunk()
		if gerr != nil {
			return -1, 0, gerr
		}
		off = c.firstAvail
		c.firstAvail += size
		s.lastUsed = newIdx
		return newIdx, off, nil
	}
	if !fromFreelist {
		s.chunks[idx].firstAvail += size
		s.lastUsed = idx
	}
	return idx, off, nil
}

func (s *slabCore) allocateFallback(size int) (int, error) {
	buf, err := s.base.Allocate(size)
	if err != nil {
		return -1, wrapAllocationFailed(err, "allocate fallback of size %d", size)
	}
	s.fallback = append(s.fallback, &fallbackEntry{payload: buf, requestedSize: size})
	return len(s.fallback) - 1, nil
}

func (s *slabCore) deallocateFallback(idx int) {
	e := s.fallback[idx]
	debugAssert(e.live(), "deallocate unknown fallback slot %d", idx)
	s.base.Deallocate(e.payload)
	e.payload = nil
	e.requestedSize = 0
}

// deallocateAt returns an aligned region to the chunk's freelist or
// tail, per the design's three cases: sole live content resets the
// chunk; tail-adjacent shrinks firstAvail; otherwise a dead cell is
// linked in.
func (s *slabCore) deallocateAt(chunkIdx int, offset, size uint16) {
	c := s.chunks[chunkIdx]
	tailStart := c.firstAvail - size
	if offset == tailStart {
		if c.firstAvail-c.totalDead == size {
			s.totalDead -= uint64(c.totalDead)
			c.firstAvail = 0
			c.firstDead = noDead
			c.totalDead = 0
			if s.lastUsed == chunkIdx {
				s.moveLastUsedToSibling(chunkIdx)
			}
			return
		}
		c.firstAvail -= size
		return
	}
	writeDeadCell(c.data, offset, deadCell{size: size, nextOffset: c.firstDead})
	c.firstDead = offset
	c.totalDead += size
	s.totalDead += uint64(size)
}

func (s *slabCore) moveLastUsedToSibling(avoid int) {
	for i, c := range s.chunks {
		if i == avoid {
			continue
		}
		if int(c.firstAvail) < s.chunkSize {
			s.lastUsed = i
			return
		}
	}
	s.lastUsed = -1
}

// reallocInPlace grows a live-tail region without moving it, per the
// in-place-only realloc contract. Returns iox.ErrMore (the teacher's
// own control-flow sentinel, repurposed here) when the region is not
// at its chunk's tail or the growth would cross ChunkSize; callers
// then allocate fresh and copy.
func (s *slabCore) reallocInPlace(chunkIdx int, offset, oldSize, newSize uint16) error {
	c := s.chunks[chunkIdx]
	if offset+oldSize != c.firstAvail {
		return iox.ErrMore
	}
	if int(offset)+int(newSize) > s.chunkSize {
		return iox.ErrMore
	}
	c.firstAvail = offset + newSize
	return nil
}

// shrinkSorted drops every chunk with firstAvail == 0 and compacts
// the chunk vector; used by the Nominal (address-sorted) scheme where
// indices are not required to stay stable.
func (s *slabCore) shrinkSorted() {
	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.firstAvail == 0 {
			s.base.Deallocate(c.data)
			continue
		}
		kept = append(kept, c)
	}
	s.chunks = kept
	if len(s.chunks) == 0 {
		s.chunks = nil
	}
	s.lastUsed = -1
}

func alignedSize(size, align int) uint16 {
	a := alignUp(size, align)
	if a < deadCellSize {
		a = deadCellSize
	}
	if a > 0xFFFF {
		// Larger than any chunk: saturate so the callers' chunkSize
		// checks send the request to the fallback list.
		a = 0xFFFF
	}
	return uint16(a)
}
