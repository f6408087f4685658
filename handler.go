// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import (
	"encoding/binary"
	"math"
	"unsafe"

	"code.hybscloud.com/lfjson/internal/archconst"
)

// EventSink is the 13-event, JSON-token-shaped interface a Handler
// implements and lfjsonwalk.Walk drives in reverse. Nothing in this
// package tokenizes text; a lexer or any other event producer calls
// these methods directly.
type EventSink interface {
	StartObject()
	EndObject(count int)
	StartArray()
	EndArray(count int)
	PushKey(data []byte, own bool, hintLen int)
	PushString(data []byte, own bool, hintLen int)
	PushStringChunk(data []byte)
	PushInt64(n int64)
	PushUInt64(n uint64)
	PushDouble(f float64)
	PushTrue()
	PushFalse()
	PushNull()
}

// frame tracks one open array or object while the Handler is
// building it. kind is only meaningful for array frames: it starts at
// TagNull (undecided/empty) and specializes to TagBArray, TagIArray
// or TagDArray on the first element, widening to TagArray the moment
// an incompatible element arrives.
type frame struct {
	mark          int
	isObj         bool
	kind          Tag
	count         int
	pendingKey    CompactPtr
	hasPendingKey bool
}

// Handler builds a Document from a stream of events. Elements of an
// open container accumulate on an internal byte-backed stack (scratch
// space shared by every nesting level) until the matching End event,
// at which point exactly-sized storage is allocated from the
// document's object pool and the accumulated bytes are copied in;
// this avoids the repeated reallocation a naive append-per-element
// build would cause on a large array or object.
type Handler struct {
	_ noCopy

	doc              *Document
	allowIntToDouble bool

	stack  []byte
	frames []frame

	rootSet bool

	scratch       []byte
	scratchTarget int
	scratchIsKey  bool
	scratchActive bool
}

func newHandler(doc *Document, allowIntToDouble bool) *Handler {
	return &Handler{
		doc:              doc,
		allowIntToDouble: allowIntToDouble,
		stack:            make([]byte, 0, 1024),
	}
}

func valueBytes(v *Value) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), archconst.ValueSize)
}

func memberBytes(m *Member) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(m)), archconst.MemberSize)
}

func (h *Handler) appendBool(b bool) {
	var raw byte
	if b {
		raw = 1
	}
	h.stack = append(h.stack, raw)
}

func (h *Handler) appendInt64(n int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	h.stack = append(h.stack, buf[:]...)
}

func (h *Handler) appendDouble(f float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
	h.stack = append(h.stack, buf[:]...)
}

func (h *Handler) appendValue(v Value) {
	h.stack = append(h.stack, valueBytes(&v)...)
}

func (h *Handler) appendMember(m Member) {
	h.stack = append(h.stack, memberBytes(&m)...)
}

// StartObject opens a new object frame.
func (h *Handler) StartObject() {
	h.frames = append(h.frames, frame{mark: len(h.stack), isObj: true})
}

// StartArray opens a new array frame, undecided between the three
// packed specializations and the generic representation until its
// first element arrives.
func (h *Handler) StartArray() {
	h.frames = append(h.frames, frame{mark: len(h.stack)})
}

// widenIArrayToDArray reinterprets an in-progress IArray's int64
// elements as float64 in place. Both are 8 bytes, so a forward pass
// is safe: no element is ever read after its slot has been
// overwritten.
func (h *Handler) widenIArrayToDArray(top *frame) {
	region := h.stack[top.mark : top.mark+top.count*8]
	for i := 0; i < top.count; i++ {
		n := int64(binary.LittleEndian.Uint64(region[i*8:]))
		binary.LittleEndian.PutUint64(region[i*8:], math.Float64bits(float64(n)))
	}
}

// widenArrayToGeneric re-encodes an in-progress BArray, IArray or
// DArray as a generic Array of tagged Values. Since a Value is wider
// than any packed element, the stack is grown first and then walked
// back to front so a wider slot is never written over source bytes
// that have not been read yet.
func (h *Handler) widenArrayToGeneric(top *frame) {
	if top.kind == TagArray || top.kind == TagNull {
		return
	}
	oldElemSize := elemSizeForTag(top.kind)
	n := top.count
	oldEnd := top.mark + n*oldElemSize
	newEnd := top.mark + n*int(archconst.ValueSize)
	debugAssert(oldEnd == len(h.stack), "widenArrayToGeneric on non-tail frame")
	h.stack = append(h.stack, make([]byte, newEnd-oldEnd)...)

	for i := n - 1; i >= 0; i-- {
		oldOff := top.mark + i*oldElemSize
		newOff := top.mark + i*int(archconst.ValueSize)
		var val Value
		switch top.kind {
		case TagBArray:
			val.setBoolRaw(h.stack[oldOff] != 0)
		case TagIArray:
			val.setInt64Raw(int64(binary.LittleEndian.Uint64(h.stack[oldOff:])))
		case TagDArray:
			val.setDoubleRaw(math.Float64frombits(binary.LittleEndian.Uint64(h.stack[oldOff:])))
		}
		copy(h.stack[newOff:newOff+int(archconst.ValueSize)], valueBytes(&val))
	}
	top.kind = TagArray
}

// commitArrayValue appends v to the innermost open array, specializing
// or widening its packed representation as needed.
func (h *Handler) commitArrayValue(top *frame, v Value) {
	switch top.kind {
	case TagNull:
		switch v.tag {
		case TagTrue, TagFalse:
			top.kind = TagBArray
			h.appendBool(v.tag == TagTrue)
		case TagInt64:
			top.kind = TagIArray
			h.appendInt64(v.Int64())
		case TagDouble:
			top.kind = TagDArray
			h.appendDouble(v.Double())
		default:
			top.kind = TagArray
			h.appendValue(v)
		}
	case TagBArray:
		if v.tag == TagTrue || v.tag == TagFalse {
			h.appendBool(v.tag == TagTrue)
		} else {
			h.widenArrayToGeneric(top)
			h.appendValue(v)
		}
	case TagIArray:
		switch {
		case v.tag == TagInt64:
			h.appendInt64(v.Int64())
		case v.tag == TagDouble && h.allowIntToDouble:
			h.widenIArrayToDArray(top)
			top.kind = TagDArray
			h.appendDouble(v.Double())
		default:
			h.widenArrayToGeneric(top)
			h.appendValue(v)
		}
	case TagDArray:
		switch {
		case v.tag == TagDouble:
			h.appendDouble(v.Double())
		case v.tag == TagInt64 && h.allowIntToDouble:
			h.appendDouble(float64(v.Int64()))
		default:
			h.widenArrayToGeneric(top)
			h.appendValue(v)
		}
	case TagArray:
		h.appendValue(v)
	}
	top.count++
}

// commitValue routes a completed scalar or (already-closed) container
// value to the root, the pending object key, or the innermost array.
func (h *Handler) commitValue(v Value) {
	if len(h.frames) == 0 {
		debugAssert(!h.rootSet, "multiple root values pushed without a wrapping array or object")
		h.doc.root = v
		h.rootSet = true
		return
	}
	top := &h.frames[len(h.frames)-1]
	if top.isObj {
		debugAssert(top.hasPendingKey, "value pushed into an object without a preceding key")
		h.appendMember(Member{Key: top.pendingKey, Val: v})
		top.hasPendingKey = false
		top.count++
		return
	}
	h.commitArrayValue(top, v)
}

func allocateContainerStorage(objects *NominalSlab, n, elemSize int) (uintptr, uint16, error) {
	if n == 0 {
		return 0, 0, nil
	}
	if n < bigCapacitySentinel {
		buf, err := objects.Allocate(n * elemSize)
		if err != nil {
			return 0, 0, err
		}
		return ptrFromSlice(buf), uint16(n), nil
	}
	buf, err := objects.Allocate(int(bigHeaderSize) + n*elemSize)
	if err != nil {
		return 0, 0, err
	}
	ptr := ptrFromSlice(buf)
	writeBigHeader(ptr, uint32(n))
	return ptr, bigCapacitySentinel, nil
}

func containerElemDst(ptr uintptr, capaField uint16, n, elemSize int) []byte {
	if capaField == bigCapacitySentinel {
		return sliceFromPtr(ptr+bigHeaderSize, n*elemSize)
	}
	return sliceFromPtr(ptr, n*elemSize)
}

// EndArray closes the innermost array frame, committing its
// accumulated elements (at whatever specialization they ended at)
// into freshly allocated, exactly-sized storage. count, if
// non-negative, is checked against the number of elements actually
// pushed.
func (h *Handler) EndArray(count int) {
	debugAssert(len(h.frames) > 0 && !h.frames[len(h.frames)-1].isObj, "EndArray with no open array")
	top := h.frames[len(h.frames)-1]
	debugAssert(count < 0 || count == top.count, "EndArray count mismatch: got %d, have %d", count, top.count)
	h.frames = h.frames[:len(h.frames)-1]

	finalKind := top.kind
	if finalKind == TagNull {
		finalKind = TagArray
	}
	elemSize := elemSizeForTag(finalKind)
	n := top.count
	region := h.stack[top.mark : top.mark+n*elemSize]

	var v Value
	if n == 0 {
		initEmptyContainer(&v, finalKind)
	} else {
		ptr, capaField, err := allocateContainerStorage(h.doc.objects, n, elemSize)
		debugAssert(err == nil, "EndArray allocation failed: %v", err)
		copy(containerElemDst(ptr, capaField, n, elemSize), region)
		v.setContainerHeaderRaw(finalKind, capaField, uint32(n), ptr)
	}
	h.stack = h.stack[:top.mark]
	h.commitValue(v)
}

// EndObject closes the innermost object frame the same way EndArray
// closes an array frame.
func (h *Handler) EndObject(count int) {
	debugAssert(len(h.frames) > 0 && h.frames[len(h.frames)-1].isObj, "EndObject with no open object")
	top := h.frames[len(h.frames)-1]
	debugAssert(!top.hasPendingKey, "EndObject with a key awaiting its value")
	debugAssert(count < 0 || count == top.count, "EndObject count mismatch: got %d, have %d", count, top.count)
	h.frames = h.frames[:len(h.frames)-1]

	elemSize := elemSizeForTag(TagObject)
	n := top.count
	region := h.stack[top.mark : top.mark+n*elemSize]

	var v Value
	if n == 0 {
		initEmptyContainer(&v, TagObject)
	} else {
		ptr, capaField, err := allocateContainerStorage(h.doc.objects, n, elemSize)
		debugAssert(err == nil, "EndObject allocation failed: %v", err)
		copy(containerElemDst(ptr, capaField, n, elemSize), region)
		v.setContainerHeaderRaw(TagObject, capaField, uint32(n), ptr)
	}
	h.stack = h.stack[:top.mark]
	h.commitValue(v)
}

func (h *Handler) internKey(data []byte, own bool) CompactPtr {
	ptr, err := h.doc.pool.Provide(data, true, own)
	debugAssert(err == nil, "PushKey allocation failed: %v", err)
	return ptr
}

// beginChunked starts accumulating a string (key or value) whose
// total length, hintLen, is larger than what the caller can hand over
// in one call. Further bytes arrive via PushStringChunk until the
// accumulated length reaches hintLen, at which point the string is
// interned or inlined exactly as a non-chunked push would be. Because
// the accumulation buffer is reused across calls, chunked strings are
// always copied into the pool (own is honored only for single-shot
// pushes).
func (h *Handler) beginChunked(data []byte, hintLen int, isKey bool) {
	debugAssert(!h.scratchActive, "chunked string already in progress")
	h.scratch = append(h.scratch[:0], data...)
	h.scratchTarget = hintLen
	h.scratchIsKey = isKey
	h.scratchActive = true
	if len(h.scratch) >= hintLen {
		h.completeChunked()
	}
}

// PushStringChunk appends a continuation of a string started by a
// PushKey or PushString call whose hintLen indicated more data would
// follow.
func (h *Handler) PushStringChunk(data []byte) {
	debugAssert(h.scratchActive, "PushStringChunk without a preceding chunked PushKey/PushString")
	h.scratch = append(h.scratch, data...)
	if len(h.scratch) < h.scratchTarget {
		return
	}
	debugAssert(len(h.scratch) == h.scratchTarget, "PushStringChunk overran its target length")
	h.completeChunked()
}

func (h *Handler) completeChunked() {
	data := h.scratch
	isKey := h.scratchIsKey
	h.scratchActive = false
	if isKey {
		ptr := h.internKey(data, true)
		top := &h.frames[len(h.frames)-1]
		debugAssert(top.isObj, "chunked key completed outside an object")
		top.pendingKey = ptr
		top.hasPendingKey = true
		return
	}
	h.commitStringValue(data, true)
}

func (h *Handler) commitStringValue(data []byte, own bool) {
	var v Value
	if len(data) < MaxShort {
		v.setShortStringRaw(data)
	} else {
		ptr, err := h.doc.pool.Provide(data, false, own)
		debugAssert(err == nil, "PushString allocation failed: %v", err)
		v.setLongStringRaw(ptr, uint32(len(data)))
	}
	h.commitValue(v)
}

// PushKey records an object member name. When hintLen is negative,
// data is the complete key; otherwise data is the first chunk of a
// key whose total length is hintLen, and further bytes must arrive
// via PushStringChunk before any other event.
func (h *Handler) PushKey(data []byte, own bool, hintLen int) {
	debugAssert(len(h.frames) > 0 && h.frames[len(h.frames)-1].isObj, "PushKey outside an object")
	top := &h.frames[len(h.frames)-1]
	debugAssert(!top.hasPendingKey, "PushKey called twice without an intervening value")
	if hintLen < 0 {
		top.pendingKey = h.internKey(data, own)
		top.hasPendingKey = true
		return
	}
	h.beginChunked(data, hintLen, true)
}

// PushString commits a string value, inline when short enough and
// pooled otherwise. hintLen behaves as in PushKey.
func (h *Handler) PushString(data []byte, own bool, hintLen int) {
	if hintLen < 0 {
		h.commitStringValue(data, own)
		return
	}
	h.beginChunked(data, hintLen, false)
}

func (h *Handler) PushInt64(n int64) {
	var v Value
	v.setInt64Raw(n)
	h.commitValue(v)
}

func (h *Handler) PushUInt64(n uint64) {
	var v Value
	v.setUInt64Raw(n)
	h.commitValue(v)
}

func (h *Handler) PushDouble(f float64) {
	var v Value
	v.setDoubleRaw(f)
	h.commitValue(v)
}

func (h *Handler) PushTrue() {
	var v Value
	v.setBoolRaw(true)
	h.commitValue(v)
}

func (h *Handler) PushFalse() {
	var v Value
	v.setBoolRaw(false)
	h.commitValue(v)
}

func (h *Handler) PushNull() {
	var v Value
	v.setNullRaw()
	h.commitValue(v)
}

// Finalize marks the document complete. It panics (via debugAssert)
// if any array or object is still open. When shrink is true the
// document's allocators are shrunk to fit; rehash additionally
// resizes the string pool's bucket table.
func (h *Handler) Finalize(shrink, rehash bool) {
	debugAssert(len(h.frames) == 0, "Finalize with %d container(s) still open", len(h.frames))
	if shrink {
		h.doc.Shrink(rehash)
	}
}
