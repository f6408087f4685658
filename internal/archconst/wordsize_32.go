// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build 386 || arm || mips || mipsle || riscv32

package archconst

// ValueSize is sizeof(Value) on this target: 12 bytes, the 32-bit
// value cell size the spec calls for.
const ValueSize = 12

// MemberSize is sizeof(Member) on this target: a 4-byte compact key
// reference plus a 12-byte Value.
const MemberSize = 16

// MaxShort is the inline-string bound on a 32-bit target: strings
// shorter than MaxShort fit inline in a Value.
const MaxShort = ValueSize - 2

// PtrBytes is the width used to pack a raw heap address into a
// Value's payload on a 32-bit target.
const PtrBytes = 4

// MemberKeyPad is the padding Member inserts after its CompactPtr key
// so Value starts at a PtrBytes-aligned offset. On a 32-bit target
// CompactPtr is already word-sized, so no padding is needed.
const MemberKeyPad = PtrBytes - 4

// Is64Bit reports whether this build targets a 64-bit address space.
const Is64Bit = false
