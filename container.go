// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import (
	"unsafe"

	"code.hybscloud.com/lfjson/internal/archconst"
)

// elemSizeForTag returns the per-element byte footprint of a
// container tag: a full Value for generic Array, one byte for packed
// BArray, eight bytes for the packed numeric arrays, and a Member for
// Object.
func elemSizeForTag(tag Tag) int {
	switch tag {
	case TagArray:
		return int(archconst.ValueSize)
	case TagBArray:
		return 1
	case TagIArray, TagDArray:
		return 8
	case TagObject:
		return int(archconst.MemberSize)
	default:
		debugAssert(false, "elemSizeForTag on non-container tag %s", tag)
		return 0
	}
}

func initEmptyContainer(v *Value, tag Tag) {
	v.setContainerHeaderRaw(tag, 0, 0, 0)
}

// growCapacity computes the next capacity that both satisfies need
// and follows the pool's 1.5x chunk-growth rule, so array growth and
// chunk growth share one curve.
func growCapacity(curCapa, need int) int {
	if curCapa == 0 {
		curCapa = 1
	}
	for curCapa < need {
		next := int(ceilMul3Over2(uint32(curCapa)))
		if next <= curCapa {
			next = need
		}
		curCapa = next
	}
	return curCapa
}

func containerFullSize(capa uint16, ptr uintptr, elemSize int) int {
	if ptr == 0 {
		return 0
	}
	if capa == bigCapacitySentinel {
		return int(bigHeaderSize) + int(bigHeaderAt(ptr).Capacity)*elemSize
	}
	return int(capa) * elemSize
}

// containerResizeTo grows or shrinks v's backing storage to exactly
// newCapa elements, migrating existing content and promoting to (or
// keeping) a Big-container header when newCapa reaches the u16
// sentinel. It tries an in-place realloc first and only falls back to
// allocate-copy-free when the region cannot be grown or shrunk where
// it sits.
func containerResizeTo(v *Value, objects *NominalSlab, elemSize, newCapa int) error {
	size := v.Size()
	oldCapa := v.containerCapa()
	oldPtr := v.containerPtr()
	bigBefore := oldCapa == bigCapacitySentinel
	bigAfter := newCapa >= bigCapacitySentinel

	oldFullSize := containerFullSize(oldCapa, oldPtr, elemSize)
	newFullSize := newCapa * elemSize
	if bigAfter {
		newFullSize += int(bigHeaderSize)
	}

	if oldPtr == 0 {
		if newFullSize == 0 {
			return nil
		}
		buf, err := objects.Allocate(newFullSize)
		if err != nil {
			return err
		}
		finishContainerResize(v, buf, newCapa, bigAfter)
		return nil
	}

	oldBuf := sliceFromPtr(oldPtr, oldFullSize)

	if newFullSize == 0 {
		objects.Deallocate(oldBuf, oldFullSize)
		v.setContainerCapa(0)
		v.setContainerPtr(0)
		return nil
	}

	if bigBefore == bigAfter {
		if grown, err := objects.Realloc(oldBuf, oldFullSize, newFullSize); err == nil {
			if bigAfter {
				bigHeaderAt(ptrFromSlice(grown)).Capacity = uint32(newCapa)
			} else {
				v.setContainerCapa(uint16(newCapa))
			}
			v.setContainerPtr(ptrFromSlice(grown))
			return nil
		}
	}

	buf, err := objects.Allocate(newFullSize)
	if err != nil {
		return err
	}
	elemOldOff := 0
	if bigBefore {
		elemOldOff = int(bigHeaderSize)
	}
	elemNewOff := 0
	if bigAfter {
		elemNewOff = int(bigHeaderSize)
	}
	copyLen := size * elemSize
	copy(buf[elemNewOff:elemNewOff+copyLen], oldBuf[elemOldOff:elemOldOff+copyLen])
	objects.Deallocate(oldBuf, oldFullSize)
	finishContainerResize(v, buf, newCapa, bigAfter)
	return nil
}

func finishContainerResize(v *Value, buf []byte, newCapa int, big bool) {
	ptr := ptrFromSlice(buf)
	if big {
		bigHeaderAt(ptr).Capacity = uint32(newCapa)
		v.setContainerCapa(bigCapacitySentinel)
	} else {
		v.setContainerCapa(uint16(newCapa))
	}
	v.setContainerPtr(ptr)
}

// containerReserve ensures storage for at least needElems elements.
func containerReserve(v *Value, objects *NominalSlab, elemSize, needElems int) error {
	if needElems <= v.Capacity() {
		return nil
	}
	return containerResizeTo(v, objects, elemSize, growCapacity(v.Capacity(), needElems))
}

// containerShrink drops unused capacity down to the live size,
// freeing storage entirely once size reaches zero.
func containerShrink(v *Value, objects *NominalSlab, elemSize int) error {
	if v.containerPtr() == 0 || v.Capacity() == v.Size() {
		return nil
	}
	return containerResizeTo(v, objects, elemSize, v.Size())
}

// --- typed element views ---

func valueElemsCap(v *Value) []Value {
	return unsafe.Slice((*Value)(unsafe.Pointer(v.elemBase())), v.Capacity())
}

func boolElemsCap(v *Value) []byte {
	return sliceFromPtr(v.elemBase(), v.Capacity())
}

func int64ElemsCap(v *Value) []int64 {
	return unsafe.Slice((*int64)(unsafe.Pointer(v.elemBase())), v.Capacity())
}

func float64ElemsCap(v *Value) []float64 {
	return unsafe.Slice((*float64)(unsafe.Pointer(v.elemBase())), v.Capacity())
}

func memberElemsCap(v *Value) []Member {
	return unsafe.Slice((*Member)(unsafe.Pointer(v.elemBase())), v.Capacity())
}

// ValueElems, BoolElems, Int64Elems, Float64Elems and MemberElems
// return the live (size-bounded) elements of the corresponding
// container tag.
func ValueElems(v *Value) []Value    { return valueElemsCap(v)[:v.Size()] }
func BoolElems(v *Value) []byte      { return boolElemsCap(v)[:v.Size()] }
func Int64Elems(v *Value) []int64    { return int64ElemsCap(v)[:v.Size()] }
func Float64Elems(v *Value) []float64 { return float64ElemsCap(v)[:v.Size()] }
func MemberElems(v *Value) []Member  { return memberElemsCap(v)[:v.Size()] }

// --- push/pop/erase, one set per element kind ---

func containerPushBackValue(v *Value, objects *NominalSlab, val Value) error {
	size := v.Size()
	if err := containerReserve(v, objects, elemSizeForTag(TagArray), size+1); err != nil {
		return err
	}
	valueElemsCap(v)[size] = val
	v.setContainerSize(uint32(size + 1))
	return nil
}

func containerPopBackValue(v *Value) Value {
	size := v.Size()
	debugAssert(size > 0, "PopBack on empty array")
	val := valueElemsCap(v)[size-1]
	v.setContainerSize(uint32(size - 1))
	return val
}

func containerEraseValue(v *Value, index int) {
	elems := ValueElems(v)
	debugAssert(index >= 0 && index < len(elems), "erase index %d out of range [0,%d)", index, len(elems))
	copy(elems[index:], elems[index+1:])
	v.setContainerSize(uint32(len(elems) - 1))
}

func containerPushBackBool(v *Value, objects *NominalSlab, b bool) error {
	size := v.Size()
	if err := containerReserve(v, objects, elemSizeForTag(TagBArray), size+1); err != nil {
		return err
	}
	var raw byte
	if b {
		raw = 1
	}
	boolElemsCap(v)[size] = raw
	v.setContainerSize(uint32(size + 1))
	return nil
}

func containerPopBackBool(v *Value) bool {
	size := v.Size()
	debugAssert(size > 0, "PopBack on empty array")
	val := boolElemsCap(v)[size-1] != 0
	v.setContainerSize(uint32(size - 1))
	return val
}

func containerEraseBool(v *Value, index int) {
	elems := BoolElems(v)
	debugAssert(index >= 0 && index < len(elems), "erase index %d out of range [0,%d)", index, len(elems))
	copy(elems[index:], elems[index+1:])
	v.setContainerSize(uint32(len(elems) - 1))
}

func containerPushBackInt64(v *Value, objects *NominalSlab, n int64) error {
	size := v.Size()
	if err := containerReserve(v, objects, elemSizeForTag(TagIArray), size+1); err != nil {
		return err
	}
	int64ElemsCap(v)[size] = n
	v.setContainerSize(uint32(size + 1))
	return nil
}

func containerPopBackInt64(v *Value) int64 {
	size := v.Size()
	debugAssert(size > 0, "PopBack on empty array")
	val := int64ElemsCap(v)[size-1]
	v.setContainerSize(uint32(size - 1))
	return val
}

func containerEraseInt64(v *Value, index int) {
	elems := Int64Elems(v)
	debugAssert(index >= 0 && index < len(elems), "erase index %d out of range [0,%d)", index, len(elems))
	copy(elems[index:], elems[index+1:])
	v.setContainerSize(uint32(len(elems) - 1))
}

func containerPushBackFloat64(v *Value, objects *NominalSlab, f float64) error {
	size := v.Size()
	if err := containerReserve(v, objects, elemSizeForTag(TagDArray), size+1); err != nil {
		return err
	}
	float64ElemsCap(v)[size] = f
	v.setContainerSize(uint32(size + 1))
	return nil
}

func containerPopBackFloat64(v *Value) float64 {
	size := v.Size()
	debugAssert(size > 0, "PopBack on empty array")
	val := float64ElemsCap(v)[size-1]
	v.setContainerSize(uint32(size - 1))
	return val
}

func containerEraseFloat64(v *Value, index int) {
	elems := Float64Elems(v)
	debugAssert(index >= 0 && index < len(elems), "erase index %d out of range [0,%d)", index, len(elems))
	copy(elems[index:], elems[index+1:])
	v.setContainerSize(uint32(len(elems) - 1))
}

func containerPushBackMember(v *Value, objects *NominalSlab, m Member) error {
	size := v.Size()
	if err := containerReserve(v, objects, elemSizeForTag(TagObject), size+1); err != nil {
		return err
	}
	memberElemsCap(v)[size] = m
	v.setContainerSize(uint32(size + 1))
	return nil
}

func containerPopBackMember(v *Value) Member {
	size := v.Size()
	debugAssert(size > 0, "PopBack on empty object")
	val := memberElemsCap(v)[size-1]
	v.setContainerSize(uint32(size - 1))
	return val
}

func containerEraseMember(v *Value, index int) {
	elems := MemberElems(v)
	debugAssert(index >= 0 && index < len(elems), "erase index %d out of range [0,%d)", index, len(elems))
	copy(elems[index:], elems[index+1:])
	v.setContainerSize(uint32(len(elems) - 1))
}

// convertIArrayToDArray converts an IArray's int64 elements to float64
// in place and retags the cell; Ref.PromoteToDArray calls it. int64
// and float64 are both 8 bytes, so each slot is rewritten where it
// sits and the existing buffer and capacity are kept unchanged.
func convertIArrayToDArray(v *Value) {
	debugAssert(v.tag == TagIArray, "convertIArrayToDArray on tag %s", v.tag)
	size := v.Size()
	ints := int64ElemsCap(v)
	floats := float64ElemsCap(v)
	for i := size - 1; i >= 0; i-- {
		floats[i] = float64(ints[i])
	}
	v.tag = TagDArray
}

// convertNumericArrayToGeneric widens an IArray or DArray back to a
// generic Array of tagged Values. The packed elements are copied out
// first and the new Value storage is allocated before the old buffer
// is freed, so a failed allocation leaves v unchanged.
func convertNumericArrayToGeneric(v *Value, objects *NominalSlab) error {
	debugAssert(v.tag == TagIArray || v.tag == TagDArray, "convertNumericArrayToGeneric on tag %s", v.tag)
	size := v.Size()
	isInt := v.tag == TagIArray

	var ints []int64
	var floats []float64
	if isInt {
		ints = make([]int64, size)
		copy(ints, int64ElemsCap(v)[:size])
	} else {
		floats = make([]float64, size)
		copy(floats, float64ElemsCap(v)[:size])
	}

	oldCapa := v.containerCapa()
	oldPtr := v.containerPtr()
	oldElemSize := 8
	oldFullSize := containerFullSize(oldCapa, oldPtr, oldElemSize)

	var nv Value
	initEmptyContainer(&nv, TagArray)
	if err := containerReserve(&nv, objects, elemSizeForTag(TagArray), size); err != nil {
		return err
	}
	if oldPtr != 0 {
		objects.Deallocate(sliceFromPtr(oldPtr, oldFullSize), oldFullSize)
	}
	*v = nv
	slots := valueElemsCap(v)
	for i := size - 1; i >= 0; i-- {
		var val Value
		if isInt {
			val.setInt64Raw(ints[i])
		} else {
			val.setDoubleRaw(floats[i])
		}
		slots[i] = val
	}
	v.setContainerSize(uint32(size))
	return nil
}

// convertBArrayToGeneric widens a BArray's packed bools to generic
// Values, in the same copy-out, allocate-then-free order as the
// numeric conversion.
func convertBArrayToGeneric(v *Value, objects *NominalSlab) error {
	debugAssert(v.tag == TagBArray, "convertBArrayToGeneric on tag %s", v.tag)
	size := v.Size()
	bools := make([]byte, size)
	copy(bools, boolElemsCap(v)[:size])

	oldCapa := v.containerCapa()
	oldPtr := v.containerPtr()
	oldFullSize := containerFullSize(oldCapa, oldPtr, 1)

	var nv Value
	initEmptyContainer(&nv, TagArray)
	if err := containerReserve(&nv, objects, elemSizeForTag(TagArray), size); err != nil {
		return err
	}
	if oldPtr != 0 {
		objects.Deallocate(sliceFromPtr(oldPtr, oldFullSize), oldFullSize)
	}
	*v = nv
	slots := valueElemsCap(v)
	for i := size - 1; i >= 0; i-- {
		var val Value
		val.setBoolRaw(bools[i] != 0)
		slots[i] = val
	}
	v.setContainerSize(uint32(size))
	return nil
}
