// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import "iter"

// Ref is a cursor onto one Value cell inside a Document's tree. It is
// cheap to create and meant to be used and discarded within one call
// chain; a Ref must never outlive the Document it was obtained from,
// and must never be retained past a mutation of an ancestor container
// (growing or shrinking a parent array/object can relocate every
// Value nested under it). Treat a Ref the way a slice re-slicing
// operation treats its backing array: valid until something upstream
// reallocates.
type Ref struct {
	_ noCopy

	v   *Value
	doc *Document
}

// Tag, Meta and the coarse predicates mirror Value's.
func (r *Ref) Tag() Tag       { return r.v.Tag() }
func (r *Ref) Meta() Meta     { return r.v.Meta() }
func (r *Ref) IsNull() bool   { return r.v.IsNull() }
func (r *Ref) IsBool() bool   { return r.v.IsBool() }
func (r *Ref) IsNumber() bool { return r.v.IsNumber() }
func (r *Ref) IsString() bool { return r.v.IsString() }
func (r *Ref) IsArray() bool  { return r.v.IsArray() }
func (r *Ref) IsObject() bool { return r.v.IsObject() }

// Bool, Int64, UInt64, Double and AsFloat64 read the current scalar
// payload; see Value for their panic conditions.
func (r *Ref) Bool() bool       { return r.v.Bool() }
func (r *Ref) Int64() int64     { return r.v.Int64() }
func (r *Ref) UInt64() uint64   { return r.v.UInt64() }
func (r *Ref) Double() float64  { return r.v.Double() }
func (r *Ref) AsFloat64() float64 { return r.v.AsFloat64() }

// Size and Capacity report an array or object's element/member count
// and backing capacity.
func (r *Ref) Size() int     { return r.v.Size() }
func (r *Ref) Capacity() int { return r.v.Capacity() }

// String returns the bytes of a ShortString or LongString value,
// resolving a LongString through the document's string pool.
func (r *Ref) String() []byte {
	switch r.v.tag {
	case TagShortString:
		return r.v.ShortString()
	case TagLongString:
		ptr, length := r.v.LongStringRef()
		return r.doc.pool.Bytes(ptr)[:length]
	default:
		debugAssert(false, "String() on tag %s", r.v.tag)
		return nil
	}
}

// freeOwned releases any container storage currently held by r.v
// before r.v is overwritten with a new scalar or container value.
func (r *Ref) freeOwned() {
	freeValueRecursive(r.v, r.doc.objects)
}

// ToNull, SetBool, SetInt64, SetUInt64 and SetDouble overwrite r with
// a scalar, releasing any container content r previously held.
func (r *Ref) ToNull() {
	r.freeOwned()
	r.v.setNullRaw()
}

func (r *Ref) SetBool(b bool) {
	r.freeOwned()
	r.v.setBoolRaw(b)
}

func (r *Ref) SetInt64(n int64) {
	r.freeOwned()
	r.v.setInt64Raw(n)
}

func (r *Ref) SetUInt64(n uint64) {
	r.freeOwned()
	r.v.setUInt64Raw(n)
}

func (r *Ref) SetDouble(f float64) {
	r.freeOwned()
	r.v.setDoubleRaw(f)
}

// SetString overwrites r with data, inlining it when short enough and
// otherwise interning a copy into the document's string pool.
func (r *Ref) SetString(data []byte) error {
	if len(data) < MaxShort {
		r.freeOwned()
		r.v.setShortStringRaw(data)
		return nil
	}
	ptr, err := r.doc.pool.Provide(data, false, true)
	if err != nil {
		return err
	}
	r.freeOwned()
	r.v.setLongStringRaw(ptr, uint32(len(data)))
	return nil
}

func (r *Ref) toContainer(tag Tag) {
	r.freeOwned()
	initEmptyContainer(r.v, tag)
}

// ToArray, ToObject, ToBArray, ToIArray and ToDArray overwrite r with
// an empty container of the given kind, releasing any content r
// previously held.
func (r *Ref) ToArray()  { r.toContainer(TagArray) }
func (r *Ref) ToObject() { r.toContainer(TagObject) }
func (r *Ref) ToBArray() { r.toContainer(TagBArray) }
func (r *Ref) ToIArray() { r.toContainer(TagIArray) }
func (r *Ref) ToDArray() { r.toContainer(TagDArray) }

// ContainerClear empties an array or object in place, keeping its
// current capacity, after freeing any nested container content.
func (r *Ref) ContainerClear() {
	debugAssert(r.v.tag.IsArrayLike() || r.v.tag == TagObject, "ContainerClear on tag %s", r.v.tag)
	switch r.v.tag {
	case TagArray:
		for i := range ValueElems(r.v) {
			freeValueRecursive(&ValueElems(r.v)[i], r.doc.objects)
		}
	case TagObject:
		for i := range MemberElems(r.v) {
			freeValueRecursive(&MemberElems(r.v)[i].Val, r.doc.objects)
		}
	}
	r.v.setContainerSize(0)
}

// Reserve ensures the array or object has capacity for at least
// extra additional elements beyond its current size.
func (r *Ref) Reserve(extra int) error {
	debugAssert(r.v.tag.IsArrayLike() || r.v.tag == TagObject, "Reserve on tag %s", r.v.tag)
	return containerReserve(r.v, r.doc.objects, elemSizeForTag(r.v.tag), r.v.Size()+extra)
}

// ContainerShrink drops capacity down to the current size.
func (r *Ref) ContainerShrink() error {
	debugAssert(r.v.tag.IsArrayLike() || r.v.tag == TagObject, "ContainerShrink on tag %s", r.v.tag)
	return containerShrink(r.v, r.doc.objects, elemSizeForTag(r.v.tag))
}

func mustReserve(v *Value, objects *NominalSlab, elemSize, need int) {
	err := containerReserve(v, objects, elemSize, need)
	debugAssert(err == nil, "allocation failed while auto-extending container: %v", err)
}

// Index returns a Ref to the i'th element of a generic Array,
// auto-extending the array with Null elements when i is past the
// current size. It panics (via the package's debug-assert contract)
// on the exceedingly rare case that growth fails to allocate; use
// Reserve first on a path that must return an error instead.
func (r *Ref) Index(i int) *Ref {
	debugAssert(r.v.tag == TagArray, "Index on tag %s", r.v.tag)
	if size := r.v.Size(); i >= size {
		mustReserve(r.v, r.doc.objects, elemSizeForTag(TagArray), i+1)
		clear(valueElemsCap(r.v)[size : i+1])
		r.v.setContainerSize(uint32(i + 1))
	}
	return &Ref{v: &valueElemsCap(r.v)[i], doc: r.doc}
}

// BoolAt, Int64At and DoubleAt read a packed element by index from a
// BArray, IArray or DArray respectively.
func (r *Ref) BoolAt(i int) bool {
	debugAssert(r.v.tag == TagBArray, "BoolAt on tag %s", r.v.tag)
	return BoolElems(r.v)[i] != 0
}

func (r *Ref) Int64At(i int) int64 {
	debugAssert(r.v.tag == TagIArray, "Int64At on tag %s", r.v.tag)
	return Int64Elems(r.v)[i]
}

func (r *Ref) DoubleAt(i int) float64 {
	debugAssert(r.v.tag == TagDArray, "DoubleAt on tag %s", r.v.tag)
	return Float64Elems(r.v)[i]
}

// PushBackElem appends a Null element to a generic Array and returns
// a Ref to it for further mutation.
func (r *Ref) PushBackElem() *Ref {
	debugAssert(r.v.tag == TagArray, "PushBackElem on tag %s", r.v.tag)
	if err := containerPushBackValue(r.v, r.doc.objects, Value{}); err != nil {
		debugAssert(false, "PushBackElem allocation failed: %v", err)
	}
	return &Ref{v: &valueElemsCap(r.v)[r.v.Size()-1], doc: r.doc}
}

// PushBackBool, PushBackInt64Elem and PushBackDoubleElem append to a
// BArray, IArray or DArray respectively.
func (r *Ref) PushBackBool(b bool) error {
	debugAssert(r.v.tag == TagBArray, "PushBackBool on tag %s", r.v.tag)
	return containerPushBackBool(r.v, r.doc.objects, b)
}

func (r *Ref) PushBackInt64Elem(n int64) error {
	debugAssert(r.v.tag == TagIArray, "PushBackInt64Elem on tag %s", r.v.tag)
	return containerPushBackInt64(r.v, r.doc.objects, n)
}

func (r *Ref) PushBackDoubleElem(f float64) error {
	debugAssert(r.v.tag == TagDArray, "PushBackDoubleElem on tag %s", r.v.tag)
	return containerPushBackFloat64(r.v, r.doc.objects, f)
}

// PopBack removes and discards the array's last element, freeing any
// container content it held.
func (r *Ref) PopBack() {
	debugAssert(r.v.Size() > 0, "PopBack on empty container")
	switch r.v.tag {
	case TagArray:
		val := containerPopBackValue(r.v)
		freeValueRecursive(&val, r.doc.objects)
	case TagBArray:
		containerPopBackBool(r.v)
	case TagIArray:
		containerPopBackInt64(r.v)
	case TagDArray:
		containerPopBackFloat64(r.v)
	case TagObject:
		m := containerPopBackMember(r.v)
		freeValueRecursive(&m.Val, r.doc.objects)
	default:
		debugAssert(false, "PopBack on tag %s", r.v.tag)
	}
}

// Erase removes the element or member at index, shifting later
// entries down by one slot.
func (r *Ref) Erase(index int) {
	switch r.v.tag {
	case TagArray:
		freeValueRecursive(&ValueElems(r.v)[index], r.doc.objects)
		containerEraseValue(r.v, index)
	case TagBArray:
		containerEraseBool(r.v, index)
	case TagIArray:
		containerEraseInt64(r.v, index)
	case TagDArray:
		containerEraseFloat64(r.v, index)
	case TagObject:
		freeValueRecursive(&MemberElems(r.v)[index].Val, r.doc.objects)
		containerEraseMember(r.v, index)
	default:
		debugAssert(false, "Erase on tag %s", r.v.tag)
	}
}

// PromoteToDArray widens an IArray to a DArray in place.
func (r *Ref) PromoteToDArray() {
	debugAssert(r.v.tag == TagIArray, "PromoteToDArray on tag %s", r.v.tag)
	convertIArrayToDArray(r.v)
}

// PromoteToGenericArray widens a BArray, IArray or DArray to a
// generic Array of tagged Values.
func (r *Ref) PromoteToGenericArray() error {
	switch r.v.tag {
	case TagIArray, TagDArray:
		return convertNumericArrayToGeneric(r.v, r.doc.objects)
	case TagBArray:
		return convertBArrayToGeneric(r.v, r.doc.objects)
	default:
		debugAssert(false, "PromoteToGenericArray on tag %s", r.v.tag)
		return nil
	}
}

// findMember resolves name to its interned string reference and
// linear-scans members comparing that reference, not raw bytes: a
// name never interned in the document's pool cannot match any member,
// so a pool miss short-circuits to not-found without touching the
// member array at all.
func findMember(doc *Document, v *Value, name []byte) (int, bool) {
	ref, ok := doc.pool.Get(name)
	if !ok {
		return -1, false
	}
	elems := MemberElems(v)
	for i := range elems {
		if elems[i].Key == ref {
			return i, true
		}
	}
	return -1, false
}

// retagNullToObject re-tags a Null cell to an empty Object in place,
// the way an object member assignment on an untyped field does in a
// dynamically-typed language. Any other non-Object tag is left alone
// for the caller to assert against.
func retagNullToObject(r *Ref) {
	if r.v.tag == TagNull {
		r.toContainer(TagObject)
	}
}

// Key looks up an object member by name and returns a Ref to its
// value, or nil if the object has no such member. A Null receiver is
// first re-tagged to an empty Object.
func (r *Ref) Key(name []byte) *Ref {
	retagNullToObject(r)
	debugAssert(r.v.tag == TagObject, "Key on tag %s", r.v.tag)
	idx, ok := findMember(r.doc, r.v, name)
	if !ok {
		return nil
	}
	return &Ref{v: &memberElemsCap(r.v)[idx].Val, doc: r.doc}
}

// Has reports whether an object has a member named name.
func (r *Ref) Has(name []byte) bool {
	debugAssert(r.v.tag == TagObject, "Has on tag %s", r.v.tag)
	_, ok := findMember(r.doc, r.v, name)
	return ok
}

// KeyOrInsert looks up an object member by name, inserting a new
// Null-valued member when none exists, and returns a Ref to its
// value either way. A Null receiver is first re-tagged to an empty
// Object, so calling KeyOrInsert on a fresh document's root builds
// the root object implicitly.
func (r *Ref) KeyOrInsert(name []byte) *Ref {
	retagNullToObject(r)
	debugAssert(r.v.tag == TagObject, "KeyOrInsert on tag %s", r.v.tag)
	if idx, ok := findMember(r.doc, r.v, name); ok {
		return &Ref{v: &memberElemsCap(r.v)[idx].Val, doc: r.doc}
	}
	keyPtr, err := r.doc.pool.Provide(name, true, true)
	debugAssert(err == nil, "KeyOrInsert allocation failed: %v", err)
	if err := containerPushBackMember(r.v, r.doc.objects, Member{Key: keyPtr}); err != nil {
		debugAssert(false, "KeyOrInsert allocation failed: %v", err)
	}
	return &Ref{v: &memberElemsCap(r.v)[r.v.Size()-1].Val, doc: r.doc}
}

// EraseKey removes the member named name, if present, freeing its
// value's container content. It reports whether a member was removed.
func (r *Ref) EraseKey(name []byte) bool {
	debugAssert(r.v.tag == TagObject, "EraseKey on tag %s", r.v.tag)
	idx, ok := findMember(r.doc, r.v, name)
	if !ok {
		return false
	}
	freeValueRecursive(&memberElemsCap(r.v)[idx].Val, r.doc.objects)
	containerEraseMember(r.v, idx)
	return true
}

// Elements iterates a generic Array's elements as read-only views.
func (r *Ref) Elements() iter.Seq2[int, ConstValue] {
	debugAssert(r.v.tag == TagArray, "Elements on tag %s", r.v.tag)
	return func(yield func(int, ConstValue) bool) {
		elems := ValueElems(r.v)
		for i := range elems {
			if !yield(i, &elems[i]) {
				return
			}
		}
	}
}

// Members iterates an Object's (key, value) pairs; key is copied out
// of the pool on each yield since LongString payloads are not
// guaranteed to be NUL-terminated C strings a caller can hold onto.
func (r *Ref) Members() iter.Seq2[string, ConstValue] {
	debugAssert(r.v.tag == TagObject, "Members on tag %s", r.v.tag)
	return func(yield func(string, ConstValue) bool) {
		elems := MemberElems(r.v)
		for i := range elems {
			key := string(jstringBytes(r.doc.pool.slab, elems[i].Key))
			if !yield(key, &elems[i].Val) {
				return
			}
		}
	}
}

func valueAddrWithin(root *Value, target *Value) bool {
	if root == target {
		return true
	}
	switch root.tag {
	case TagArray:
		elems := ValueElems(root)
		for i := range elems {
			if valueAddrWithin(&elems[i], target) {
				return true
			}
		}
	case TagObject:
		elems := MemberElems(root)
		for i := range elems {
			if valueAddrWithin(&elems[i].Val, target) {
				return true
			}
		}
	}
	return false
}

// Swap exchanges the cell contents of r and other. It refuses (with
// ErrNestedSwap) when one side's subtree contains the other, since
// overwriting a container's header with its own descendant's would
// corrupt the tree rather than exchange two independent values. This
// is a conservative check: it walks generic Array/Object children but
// cannot detect aliasing introduced by pointers a caller constructed
// by hand outside this package.
func (r *Ref) Swap(other *Ref) error {
	if r.v == other.v {
		return nil
	}
	if valueAddrWithin(r.v, other.v) || valueAddrWithin(other.v, r.v) {
		return ErrNestedSwap
	}
	*r.v, *other.v = *other.v, *r.v
	return nil
}
