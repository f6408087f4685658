// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfjson

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrOutOfRange reports an index or key lookup that falls outside a
// container. No method in this package returns it: Ref has no checked
// accessor, and Ref.Index extends a generic Array instead of failing.
var ErrOutOfRange = errors.New("lfjson: index out of range")

// ErrAllocationFailed wraps a failure from a BaseAllocator. It never
// leaves a document partially mutated: callers build replacement
// content in a scratch allocation first and only deallocate the old
// cell once the new one is committed.
var ErrAllocationFailed = errors.New("lfjson: allocation failed")

// ErrArenaExhausted is returned by ArenaAllocator.Allocate once its
// fixed-capacity backing buffer is used up.
var ErrArenaExhausted = errors.New("lfjson: arena allocator exhausted")

// ErrNestedSwap is returned by Ref.Swap when one side's subtree
// contains the other: swapping a container with its own descendant
// would corrupt the tree instead of exchanging two independent cells.
var ErrNestedSwap = errors.New("lfjson: swap operands are nested")

// AssertionsEnabled gates debugAssert panics. It defaults to true;
// callers on an already-validated hot path (for example, replaying a
// trusted internal event stream) may turn it off. It is a per-process
// toggle, not a build tag, because Go does not distinguish debug and
// release builds the way the design this module is modeled on does.
var AssertionsEnabled = true

// debugAssert panics with msg (formatted with args) when cond is
// false and AssertionsEnabled is set. It is used for precondition
// violations the spec treats as programming errors: a wrong tag on a
// typed accessor, unbalanced handler events, popping an empty stack,
// or deallocating an unknown pointer.
func debugAssert(cond bool, msg string, args ...any) {
	if cond || !AssertionsEnabled {
		return
	}
	panic(fmt.Sprintf("lfjson: assertion failed: "+msg, args...))
}

func wrapOutOfRange(format string, args ...any) error {
	return errors.Wrapf(ErrOutOfRange, format, args...)
}

func wrapAllocationFailed(err error, format string, args ...any) error {
	return errors.Wrapf(ErrAllocationFailed, "%s: %s", fmt.Sprintf(format, args...), err)
}
