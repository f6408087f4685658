// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package xxhash32 adapts the corpus's available xxhash binding to the
// 32-bit digest the string pool's hash table wants, with an FNV-1a
// fallback for pools configured without it.
package xxhash32

import (
	"hash/fnv"

	"github.com/cespare/xxhash/v2"
)

// Sum32 returns the low 32 bits of the 64-bit XXH64 digest of b.
//
// The spec this pool is built against calls for "XXH3 low 32 bits
// when available"; this tree's dependency pack carries cespare's
// XXH64 binding rather than a dedicated XXH3 one, so XXH64 truncated
// to its low word stands in for it. Both are non-cryptographic,
// avalanche-mixed digests over the same byte range, and the pool only
// ever compares hashes for bucket placement, never persists them.
func Sum32(b []byte) uint32 {
	return uint32(xxhash.Sum64(b))
}

// FNV32a returns the 32-bit FNV-1a digest of b, used by a StringPool
// whose StringPoolConfig.UseXXHash is false.
func FNV32a(b []byte) uint32 {
	h := fnv.New32a()
	_, _ = h.Write(b)
	return h.Sum32()
}
