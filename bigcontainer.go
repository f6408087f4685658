// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import "unsafe"

// bigHeader is the descriptor written at the front of a container
// allocation once its element count has grown past what a u16
// capacity field can address. The elements themselves follow the
// header immediately in the same allocation, mirroring the flexible
// array member the source's Big-container structs use; Go has no
// such member, so elemBase (value.go) does the pointer arithmetic by
// hand instead.
type bigHeader struct {
	Capacity uint32
	_        uint32 // padding, keeps elements 8-byte aligned
}

// BigArrayHeader and BigObjectHeader are the two Big-container
// descriptors the design calls for. Both array and object containers
// use the same physical layout once past the sentinel, so they share
// one underlying type.
type BigArrayHeader = bigHeader
type BigObjectHeader = bigHeader

// bigHeaderSize is the number of bytes the header reserves at the
// front of a Big-container allocation, before the element buffer.
const bigHeaderSize = unsafe.Sizeof(bigHeader{})

func bigHeaderAt(ptr uintptr) *bigHeader {
	debugAssert(ptr != 0, "bigHeaderAt on nil pointer")
	return (*bigHeader)(unsafe.Pointer(ptr))
}

func writeBigHeader(ptr uintptr, capacity uint32) {
	bigHeaderAt(ptr).Capacity = capacity
}
