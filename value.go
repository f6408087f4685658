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

// Tag discriminates the payload a Value carries. It occupies the
// first byte of the cell; the remaining bytes are interpreted per
// tag, exactly as spec.md §3 describes for the C-style tagged union
// this type replaces.
type Tag uint8

const (
	TagNull Tag = iota
	TagTrue
	TagFalse
	TagInt64
	TagUInt64
	TagDouble
	TagShortString
	TagLongString
	TagArray
	TagBArray
	TagIArray
	TagDArray
	TagObject
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "Null"
	case TagTrue:
		return "True"
	case TagFalse:
		return "False"
	case TagInt64:
		return "Int64"
	case TagUInt64:
		return "UInt64"
	case TagDouble:
		return "Double"
	case TagShortString:
		return "ShortString"
	case TagLongString:
		return "LongString"
	case TagArray:
		return "Array"
	case TagBArray:
		return "BArray"
	case TagIArray:
		return "IArray"
	case TagDArray:
		return "DArray"
	case TagObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Meta folds the 13 tags into six coarse classes for callers that
// don't care about array specialization or string representation.
type Meta uint8

const (
	MetaNull Meta = iota
	MetaBool
	MetaNumber
	MetaString
	MetaArray
	MetaObject
)

// Meta classifies t into one of six coarse value classes.
func (t Tag) Meta() Meta {
	switch t {
	case TagNull:
		return MetaNull
	case TagTrue, TagFalse:
		return MetaBool
	case TagInt64, TagUInt64, TagDouble:
		return MetaNumber
	case TagShortString, TagLongString:
		return MetaString
	case TagArray, TagBArray, TagIArray, TagDArray:
		return MetaArray
	case TagObject:
		return MetaObject
	default:
		return MetaNull
	}
}

// IsArrayLike reports whether t is one of the four array tags.
func (t Tag) IsArrayLike() bool {
	return t == TagArray || t == TagBArray || t == TagIArray || t == TagDArray
}

// MaxShort bounds inline strings on this GOARCH: 14 on 64-bit targets,
// 10 on 32-bit ones. Strings shorter than MaxShort are stored inline in
// a Value; strings of MaxShort bytes or more go to the string pool.
const MaxShort = archconst.MaxShort

// payloadSize is sizeof(Value)-1: everything after the tag byte.
const payloadSize = archconst.ValueSize - 1

// Value is a fixed-size, 16-byte (12-byte on 32-bit GOARCH) tagged
// cell: one discriminant byte plus a payload parsed per tag. This is
// the "branded byte array with tag-indexed getters" alternative the
// design calls out for expressing the source's overlapping-substruct
// union without unsafe aliasing tricks.
type Value struct {
	tag     Tag
	payload [payloadSize]byte
}

// Member is a 24-byte (16-byte on 32-bit) (key, value) pair: a
// compact reference to an interned key string plus a Value. The
// padding after Key keeps Val's start offset pointer-aligned, which
// is what holds Member at exactly the target's Member cell size
// rather than whatever Go would pack CompactPtr and Value down to.
type Member struct {
	Key CompactPtr
	_   [archconst.MemberKeyPad]byte
	Val Value
}

// Tag returns v's discriminant.
func (v *Value) Tag() Tag { return v.tag }

// Meta classifies v into one of six coarse value classes.
func (v *Value) Meta() Meta { return v.tag.Meta() }

// IsNull, IsBool, IsNumber, IsString, IsArray and IsObject are the
// coarse predicates built on Meta.
func (v *Value) IsNull() bool   { return v.tag == TagNull }
func (v *Value) IsBool() bool   { return v.tag == TagTrue || v.tag == TagFalse }
func (v *Value) IsNumber() bool { return v.Meta() == MetaNumber }
func (v *Value) IsString() bool { return v.Meta() == MetaString }
func (v *Value) IsArray() bool  { return v.tag.IsArrayLike() }
func (v *Value) IsObject() bool { return v.tag == TagObject }

func (v *Value) setScalarTag(t Tag) {
	v.tag = t
	for i := range v.payload {
		v.payload[i] = 0
	}
}

// setNullRaw re-tags v as Null without freeing anything; callers that
// own heap-backed content must deallocate it first (see
// Ref.freeOwned in ref.go).
func (v *Value) setNullRaw() { v.setScalarTag(TagNull) }

func (v *Value) setBoolRaw(b bool) {
	if b {
		v.setScalarTag(TagTrue)
	} else {
		v.setScalarTag(TagFalse)
	}
}

// Bool returns v's boolean payload. Panics if v is not a bool.
func (v *Value) Bool() bool {
	debugAssert(v.IsBool(), "Bool() on non-bool tag %s", v.tag)
	return v.tag == TagTrue
}

func (v *Value) setInt64Raw(n int64) {
	v.tag = TagInt64
	binary.LittleEndian.PutUint64(v.payload[0:8], uint64(n))
}

// Int64 returns v's int64 payload. Panics if v is not an Int64.
func (v *Value) Int64() int64 {
	debugAssert(v.tag == TagInt64, "Int64() on tag %s", v.tag)
	return int64(binary.LittleEndian.Uint64(v.payload[0:8]))
}

func (v *Value) setUInt64Raw(n uint64) {
	v.tag = TagUInt64
	binary.LittleEndian.PutUint64(v.payload[0:8], n)
}

// UInt64 returns v's uint64 payload. Panics if v is not a UInt64.
func (v *Value) UInt64() uint64 {
	debugAssert(v.tag == TagUInt64, "UInt64() on tag %s", v.tag)
	return binary.LittleEndian.Uint64(v.payload[0:8])
}

func (v *Value) setDoubleRaw(f float64) {
	v.tag = TagDouble
	binary.LittleEndian.PutUint64(v.payload[0:8], math.Float64bits(f))
}

// Double returns v's float64 payload. Panics if v is not a Double.
func (v *Value) Double() float64 {
	debugAssert(v.tag == TagDouble, "Double() on tag %s", v.tag)
	return math.Float64frombits(binary.LittleEndian.Uint64(v.payload[0:8]))
}

// AsFloat64 widens any of the three numeric tags to float64, used by
// the IArray/DArray conversion paths and by generic numeric reads.
func (v *Value) AsFloat64() float64 {
	switch v.tag {
	case TagInt64:
		return float64(v.Int64())
	case TagUInt64:
		return float64(v.UInt64())
	case TagDouble:
		return v.Double()
	default:
		debugAssert(false, "AsFloat64() on tag %s", v.tag)
		return 0
	}
}

// setShortStringRaw writes s inline. The caller (Ref.SetString) must
// have already verified len(s) < MaxShort.
func (v *Value) setShortStringRaw(s []byte) {
	debugAssert(len(s) < MaxShort, "short string %d bytes exceeds MaxShort %d", len(s), MaxShort)
	v.tag = TagShortString
	for i := range v.payload {
		v.payload[i] = 0
	}
	copy(v.payload[:MaxShort], s)
	v.payload[len(v.payload)-1] = byte(MaxShort - len(s))
}

// ShortString returns the bytes of an inline short string. Panics if
// v is not a ShortString.
func (v *Value) ShortString() []byte {
	debugAssert(v.tag == TagShortString, "ShortString() on tag %s", v.tag)
	length := MaxShort - int(v.payload[len(v.payload)-1])
	return v.payload[:length]
}

// setLongStringRaw records a pooled string reference: a CompactPtr
// into the owning document's StringPool plus its byte length.
func (v *Value) setLongStringRaw(ptr CompactPtr, length uint32) {
	v.tag = TagLongString
	for i := range v.payload {
		v.payload[i] = 0
	}
	binary.LittleEndian.PutUint16(v.payload[0:2], ptr.ChunkIndex)
	binary.LittleEndian.PutUint16(v.payload[2:4], ptr.Offset)
	binary.LittleEndian.PutUint32(v.payload[4:8], length)
}

// LongStringRef returns the pool pointer and byte length of a
// LongString cell. Panics if v is not a LongString.
func (v *Value) LongStringRef() (CompactPtr, uint32) {
	debugAssert(v.tag == TagLongString, "LongStringRef() on tag %s", v.tag)
	ptr := CompactPtr{
		ChunkIndex: binary.LittleEndian.Uint16(v.payload[0:2]),
		Offset:     binary.LittleEndian.Uint16(v.payload[2:4]),
	}
	length := binary.LittleEndian.Uint32(v.payload[4:8])
	return ptr, length
}

// --- container header encoding, shared by Array/BArray/IArray/DArray/Object ---

// bigCapacitySentinel is the u16 capacity value that means "see the
// Big-container descriptor for the real capacity".
const bigCapacitySentinel = 0xFFFF

func (v *Value) containerCapa() uint16 {
	return binary.LittleEndian.Uint16(v.payload[0:2])
}

func (v *Value) setContainerCapa(capa uint16) {
	binary.LittleEndian.PutUint16(v.payload[0:2], capa)
}

func (v *Value) containerSize() uint32 {
	return binary.LittleEndian.Uint32(v.payload[2:6])
}

func (v *Value) setContainerSize(size uint32) {
	binary.LittleEndian.PutUint32(v.payload[2:6], size)
}

func (v *Value) containerPtr() uintptr {
	var buf [8]byte
	copy(buf[:archconst.PtrBytes], v.payload[6:6+archconst.PtrBytes])
	return uintptr(binary.LittleEndian.Uint64(buf[:]))
}

func (v *Value) setContainerPtr(ptr uintptr) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(ptr))
	copy(v.payload[6:6+archconst.PtrBytes], buf[:archconst.PtrBytes])
}

func (v *Value) setContainerHeaderRaw(tag Tag, capa uint16, size uint32, ptr uintptr) {
	v.tag = tag
	for i := range v.payload {
		v.payload[i] = 0
	}
	v.setContainerCapa(capa)
	v.setContainerSize(size)
	v.setContainerPtr(ptr)
}

// Size returns the number of elements/members in an array or object
// cell. Panics on a non-container tag.
func (v *Value) Size() int {
	debugAssert(v.tag.IsArrayLike() || v.tag == TagObject, "Size() on tag %s", v.tag)
	return int(v.containerSize())
}

// Capacity returns the element/member capacity of an array or object
// cell, resolving through the Big-container descriptor when the inline
// u16 field holds the sentinel.
func (v *Value) Capacity() int {
	debugAssert(v.tag.IsArrayLike() || v.tag == TagObject, "Capacity() on tag %s", v.tag)
	capa := v.containerCapa()
	if capa != bigCapacitySentinel {
		return int(capa)
	}
	return int(bigHeaderAt(v.containerPtr()).Capacity)
}

// elemBase returns a pointer to the first element/member, resolving
// past the Big-container header when present.
func (v *Value) elemBase() uintptr {
	base := v.containerPtr()
	if v.containerCapa() == bigCapacitySentinel {
		return base + bigHeaderSize
	}
	return base
}

func ptrFromSlice(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func sliceFromPtr(ptr uintptr, length int) []byte {
	if ptr == 0 || length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length)
}
