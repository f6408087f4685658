// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/lfjson/internal/archconst"
)

func TestCellSizes(t *testing.T) {
	if got, want := unsafe.Sizeof(Value{}), uintptr(archconst.ValueSize); got != want {
		t.Fatalf("sizeof(Value) = %d, want %d", got, want)
	}
	if got, want := unsafe.Sizeof(Member{}), uintptr(archconst.MemberSize); got != want {
		t.Fatalf("sizeof(Member) = %d, want %d", got, want)
	}
}

func TestShortStringBoundary(t *testing.T) {
	var v Value
	v.setShortStringRaw(nil)
	if v.Tag() != TagShortString {
		t.Fatalf("tag = %s, want ShortString", v.Tag())
	}
	if got := v.ShortString(); len(got) != 0 {
		t.Fatalf("ShortString() = %q, want empty", got)
	}

	longest := make([]byte, MaxShort-1)
	for i := range longest {
		longest[i] = byte('a' + i%26)
	}
	v.setShortStringRaw(longest)
	if got := v.ShortString(); string(got) != string(longest) {
		t.Fatalf("ShortString() = %q, want %q", got, longest)
	}
}

func TestLongStringRoundTrip(t *testing.T) {
	var v Value
	ptr := CompactPtr{ChunkIndex: 3, Offset: 17}
	v.setLongStringRaw(ptr, 12345)
	if v.Tag() != TagLongString {
		t.Fatalf("tag = %s, want LongString", v.Tag())
	}
	gotPtr, gotLen := v.LongStringRef()
	if gotPtr != ptr || gotLen != 12345 {
		t.Fatalf("LongStringRef() = (%v, %d), want (%v, 12345)", gotPtr, gotLen, ptr)
	}
}

func TestScalarAccessors(t *testing.T) {
	var v Value
	v.setInt64Raw(-7)
	if v.Int64() != -7 {
		t.Fatalf("Int64() = %d, want -7", v.Int64())
	}
	v.setUInt64Raw(42)
	if v.UInt64() != 42 {
		t.Fatalf("UInt64() = %d, want 42", v.UInt64())
	}
	v.setDoubleRaw(3.5)
	if v.Double() != 3.5 {
		t.Fatalf("Double() = %v, want 3.5", v.Double())
	}
	v.setBoolRaw(true)
	if !v.Bool() || !v.IsBool() {
		t.Fatalf("Bool()/IsBool() wrong after setBoolRaw(true)")
	}
	v.setNullRaw()
	if !v.IsNull() {
		t.Fatalf("IsNull() false after setNullRaw")
	}
}

func TestContainerHeaderRoundTrip(t *testing.T) {
	var v Value
	v.setContainerHeaderRaw(TagArray, 4, 2, 0xABCD0)
	if v.Size() != 2 || v.Capacity() != 4 {
		t.Fatalf("Size/Capacity = %d/%d, want 2/4", v.Size(), v.Capacity())
	}
	if v.containerPtr() != 0xABCD0 {
		t.Fatalf("containerPtr() = %#x, want %#x", v.containerPtr(), 0xABCD0)
	}
}

func TestMetaFolding(t *testing.T) {
	cases := map[Tag]Meta{
		TagNull:        MetaNull,
		TagTrue:        MetaBool,
		TagFalse:       MetaBool,
		TagInt64:       MetaNumber,
		TagUInt64:      MetaNumber,
		TagDouble:      MetaNumber,
		TagShortString: MetaString,
		TagLongString:  MetaString,
		TagArray:       MetaArray,
		TagBArray:      MetaArray,
		TagIArray:      MetaArray,
		TagDArray:      MetaArray,
		TagObject:      MetaObject,
	}
	for tag, want := range cases {
		if got := tag.Meta(); got != want {
			t.Errorf("%s.Meta() = %v, want %v", tag, got, want)
		}
	}
}
