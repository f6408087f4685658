// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import "testing"

func TestIArrayToDArrayConversion(t *testing.T) {
	objects := NewNominalSlab(1<<16, 8)
	var v Value
	initEmptyContainer(&v, TagIArray)
	for _, n := range []int64{1, 2, 3, 4} {
		if err := containerPushBackInt64(&v, objects, n); err != nil {
			t.Fatal(err)
		}
	}
	convertIArrayToDArray(&v)
	if v.Tag() != TagDArray {
		t.Fatalf("tag = %s, want DArray", v.Tag())
	}
	want := []float64{1, 2, 3, 4}
	got := Float64Elems(&v)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Float64Elems()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNumericArrayToGenericConversion(t *testing.T) {
	objects := NewNominalSlab(1<<16, 8)
	var v Value
	initEmptyContainer(&v, TagIArray)
	for _, n := range []int64{10, -20, 30} {
		if err := containerPushBackInt64(&v, objects, n); err != nil {
			t.Fatal(err)
		}
	}
	if err := convertNumericArrayToGeneric(&v, objects); err != nil {
		t.Fatal(err)
	}
	if v.Tag() != TagArray {
		t.Fatalf("tag = %s, want Array", v.Tag())
	}
	elems := ValueElems(&v)
	if len(elems) != 3 {
		t.Fatalf("len(elems) = %d, want 3", len(elems))
	}
	for i, want := range []int64{10, -20, 30} {
		if elems[i].Tag() != TagInt64 || elems[i].Int64() != want {
			t.Fatalf("elems[%d] = %v, want Int64(%d)", i, elems[i], want)
		}
	}
}

func TestBArrayToGenericConversion(t *testing.T) {
	objects := NewNominalSlab(1<<16, 8)
	var v Value
	initEmptyContainer(&v, TagBArray)
	for _, b := range []bool{true, false, true} {
		if err := containerPushBackBool(&v, objects, b); err != nil {
			t.Fatal(err)
		}
	}
	if err := convertBArrayToGeneric(&v, objects); err != nil {
		t.Fatal(err)
	}
	elems := ValueElems(&v)
	want := []bool{true, false, true}
	for i := range want {
		if elems[i].Tag() != TagTrue && elems[i].Tag() != TagFalse {
			t.Fatalf("elems[%d] tag = %s, want bool tag", i, elems[i].Tag())
		}
		if elems[i].Bool() != want[i] {
			t.Fatalf("elems[%d].Bool() = %v, want %v", i, elems[i].Bool(), want[i])
		}
	}
}

func TestBigContainerPromotionAndShrink(t *testing.T) {
	objects := NewNominalSlab(1<<20, 8)
	var v Value
	initEmptyContainer(&v, TagIArray)

	const n = 70000 // past the uint16 capacity sentinel
	for i := 0; i < n; i++ {
		if err := containerPushBackInt64(&v, objects, int64(i)); err != nil {
			t.Fatalf("push #%d: %v", i, err)
		}
	}
	if v.Size() != n {
		t.Fatalf("Size() = %d, want %d", v.Size(), n)
	}
	if v.Capacity() < n {
		t.Fatalf("Capacity() = %d, want >= %d", v.Capacity(), n)
	}
	if v.containerCapa() != bigCapacitySentinel {
		t.Fatalf("expected big-container promotion at %d elements", n)
	}
	elems := Int64Elems(&v)
	if elems[0] != 0 || elems[n-1] != int64(n-1) {
		t.Fatalf("Int64Elems() endpoints wrong after big growth")
	}

	if err := containerShrink(&v, objects, elemSizeForTag(TagIArray)); err != nil {
		t.Fatal(err)
	}
	if v.Capacity() != n {
		t.Fatalf("Capacity() after shrink = %d, want %d", v.Capacity(), n)
	}
	elems = Int64Elems(&v)
	if elems[0] != 0 || elems[n-1] != int64(n-1) {
		t.Fatalf("Int64Elems() endpoints wrong after shrink")
	}
}

func TestContainerEraseAndPopBack(t *testing.T) {
	objects := NewNominalSlab(1<<16, 8)
	var v Value
	initEmptyContainer(&v, TagIArray)
	for _, n := range []int64{1, 2, 3, 4, 5} {
		if err := containerPushBackInt64(&v, objects, n); err != nil {
			t.Fatal(err)
		}
	}
	containerEraseInt64(&v, 1) // removes the 2
	if got := Int64Elems(&v); len(got) != 4 || got[1] != 3 {
		t.Fatalf("after erase: %v, want [1 3 4 5]", got)
	}
	popped := containerPopBackInt64(&v)
	if popped != 5 {
		t.Fatalf("PopBack() = %d, want 5", popped)
	}
	if v.Size() != 3 {
		t.Fatalf("Size() after pop = %d, want 3", v.Size())
	}
}
