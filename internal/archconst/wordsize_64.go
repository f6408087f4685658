// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build amd64 || arm64 || riscv64 || loong64 || ppc64 || ppc64le || s390x || mips64 || mips64le || wasm

package archconst

// ValueSize is sizeof(Value) on this target: one tag byte plus a
// 15-byte payload, for a 16-byte packed value cell.
const ValueSize = 16

// MemberSize is sizeof(Member) on this target: a 4-byte compact key
// reference plus a 16-byte Value, rounded to the 24-byte member cell
// the spec calls for (MemberKeyPad's 4 bytes place Value at offset 8).
const MemberSize = 24

// MaxShort is the inline-string bound: strings shorter than MaxShort
// fit inline in a Value. It is ValueSize-2 (one byte for the tag, one
// for the encoded length-from-max used by the short-string terminator
// trick).
const MaxShort = ValueSize - 2

// PtrBytes is the width used to pack a raw heap address into a
// Value's payload.
const PtrBytes = 8

// MemberKeyPad is the padding Member inserts after its CompactPtr key
// so Value starts at a PtrBytes-aligned offset, landing Member at the
// 24-byte cell size the spec calls for on this target.
const MemberKeyPad = PtrBytes - 4

// Is64Bit reports whether this build targets a 64-bit address space.
const Is64Bit = true
