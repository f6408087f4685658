// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import (
	"bytes"
	"unsafe"

	"code.hybscloud.com/lfjson/internal/archconst"
)

// jstringHeader is the fixed-size prefix of every interned string
// entry living in a StringPool's CompactSlab. It is overlaid directly
// onto the slab's byte buffer; the variable-length payload (either
// the string's own bytes or an external pointer to them) follows
// immediately after.
type jstringHeader struct {
	next  CompactPtr
	flags uint32
	hash  uint32
}

const jstringHeaderSize = unsafe.Sizeof(jstringHeader{})

// flags packs (length<<2)|(key<<1)|own into one word: own marks a
// payload copied inline into the pool, key marks a string that has
// ever been used as an object member name. key is sticky: once an
// interned string is used as a key it keeps the bit even if later
// reused only as a value, so StringPool.ReleaseValues keeps it.
func encodeJStringFlags(length int, key, own bool) uint32 {
	f := uint32(length) << 2
	if key {
		f |= 0x2
	}
	if own {
		f |= 0x1
	}
	return f
}

func jstringOwn(flags uint32) bool    { return flags&0x1 != 0 }
func jstringIsKey(flags uint32) bool  { return flags&0x2 != 0 }
func jstringLength(flags uint32) int  { return int(flags >> 2) }

// totalSize returns the number of bytes a pool entry needs: the fixed
// header plus either the string's own bytes (own) or an encoded
// external pointer (!own), computed once at construction so growth
// and dealloc always agree on an entry's footprint.
func jstringTotalSize(own bool, length int) int {
	if own {
		return int(jstringHeaderSize) + length
	}
	return int(jstringHeaderSize) + archconst.PtrBytes
}

func jstringHeaderPtr(buf []byte) *jstringHeader {
	debugAssert(len(buf) >= int(jstringHeaderSize), "jstring buffer too small: %d bytes", len(buf))
	return (*jstringHeader)(unsafe.Pointer(unsafe.SliceData(buf)))
}

func encodePtrBytes(dst []byte, ptr uintptr) {
	for i := 0; i < archconst.PtrBytes; i++ {
		dst[i] = byte(ptr >> (8 * i))
	}
}

func decodePtrBytes(src []byte) uintptr {
	var ptr uintptr
	for i := 0; i < archconst.PtrBytes; i++ {
		ptr |= uintptr(src[i]) << (8 * i)
	}
	return ptr
}

// newJString allocates and writes a fresh pool entry for data. When
// own is true, data is copied inline; otherwise only a pointer to
// data is recorded and the caller must keep data alive for as long as
// the entry exists (used for long-lived source buffers the pool need
// not duplicate).
func newJString(slab *CompactSlab, data []byte, key, own bool, hash uint32) (CompactPtr, error) {
	total := jstringTotalSize(own, len(data))
	ptr, err := slab.Allocate(total)
	if err != nil {
		return NilCompactPtr, err
	}
	buf := slab.Deref(ptr, total)
	h := jstringHeaderPtr(buf)
	*h = jstringHeader{next: NilCompactPtr, flags: encodeJStringFlags(len(data), key, own), hash: hash}
	payload := buf[jstringHeaderSize:]
	if own {
		copy(payload, data)
	} else {
		encodePtrBytes(payload[:archconst.PtrBytes], ptrFromSlice(data))
	}
	return ptr, nil
}

func jstringHeaderAt(slab *CompactSlab, ptr CompactPtr) *jstringHeader {
	return jstringHeaderPtr(slab.Deref(ptr, int(jstringHeaderSize)))
}

// jstringBytes returns the live bytes of the entry at ptr, resolving
// through the external pointer when the entry does not own its copy.
func jstringBytes(slab *CompactSlab, ptr CompactPtr) []byte {
	h := jstringHeaderAt(slab, ptr)
	length := jstringLength(h.flags)
	own := jstringOwn(h.flags)
	total := jstringTotalSize(own, length)
	full := slab.Deref(ptr, total)
	payload := full[jstringHeaderSize:]
	if own {
		return payload[:length]
	}
	return sliceFromPtr(decodePtrBytes(payload[:archconst.PtrBytes]), length)
}

func jstringNext(slab *CompactSlab, ptr CompactPtr) CompactPtr {
	return jstringHeaderAt(slab, ptr).next
}

func setJStringNext(slab *CompactSlab, ptr, next CompactPtr) {
	jstringHeaderAt(slab, ptr).next = next
}

func jstringHash(slab *CompactSlab, ptr CompactPtr) uint32 {
	return jstringHeaderAt(slab, ptr).hash
}

func jstringMarkKey(slab *CompactSlab, ptr CompactPtr) {
	h := jstringHeaderAt(slab, ptr)
	h.flags |= 0x2
}

func jstringIsKeyAt(slab *CompactSlab, ptr CompactPtr) bool {
	return jstringIsKey(jstringHeaderAt(slab, ptr).flags)
}

func jstringSizeOf(slab *CompactSlab, ptr CompactPtr) int {
	h := jstringHeaderAt(slab, ptr)
	return jstringTotalSize(jstringOwn(h.flags), jstringLength(h.flags))
}

func freeJString(slab *CompactSlab, ptr CompactPtr) {
	slab.Deallocate(ptr, jstringSizeOf(slab, ptr))
}

// jstringCompare orders entries by (length, lexicographic), the order
// StringPool keeps its bucket chains in so a miss can stop early
// instead of walking the whole chain.
func jstringCompare(slab *CompactSlab, ptr CompactPtr, data []byte) int {
	b := jstringBytes(slab, ptr)
	if len(b) != len(data) {
		if len(b) < len(data) {
			return -1
		}
		return 1
	}
	return bytes.Compare(b, data)
}
