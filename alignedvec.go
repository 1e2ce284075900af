// Package alignedvec provides a growable array container whose backing
// storage is guaranteed to start on a 64-byte boundary, as required by
// fixed-width vector instructions operating on the element data. Bulk
// copy, move and fill operations run in parallel over a shared worker
// budget once a range is large enough to amortize the dispatch.
//
// A Vector is not safe for concurrent use: the internal parallelism of a
// single bulk operation relies purely on index-disjoint subranges, and two
// distinct operations on one instance require external synchronization.
package alignedvec

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/23skdu/alignedvec/internal/logging"
)

// Vector is an aligned, growable array of T. The zero value is not usable;
// construct instances with New, NewSized, NewSizedInit or NewWith. Vectors
// with managed traits must be released with Clear so their elements' Destroy
// closures run; garbage collection alone does not run them.
type Vector[T any] struct {
	traits   Traits[T]
	alloc    memory.Allocator
	elemSize int
	blk      block[T]
	used     int
}

// New returns an empty vector with trivial element semantics.
func New[T comparable]() *Vector[T] {
	return NewWith(Trivial[T]())
}

// NewSized returns a vector of n default-valued (zero) elements.
func NewSized[T comparable](n int) *Vector[T] {
	v := New[T]()
	v.Resize(n)
	return v
}

// NewSizedInit returns a vector of n copies of init.
func NewSizedInit[T comparable](n int, init T) *Vector[T] {
	v := New[T]()
	v.ResizeInit(n, init)
	return v
}

// NewWith returns an empty vector using the given element traits.
func NewWith[T any](tr Traits[T]) *Vector[T] {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		panic("alignedvec: zero-sized element types are not supported")
	}
	return &Vector[T]{
		traits:   tr,
		alloc:    memory.DefaultAllocator,
		elemSize: size,
	}
}

// Size returns the number of live elements.
func (v *Vector[T]) Size() int { return v.used }

// Capacity returns the number of elements the vector can hold without
// reallocating. Capacity() >= Size().
func (v *Vector[T]) Capacity() int { return len(v.blk.view) }

// Empty reports whether the vector holds no live elements.
func (v *Vector[T]) Empty() bool { return v.used == 0 }

// At returns a read-write pointer to element i.
func (v *Vector[T]) At(i int) *T {
	if i < 0 || i >= v.used {
		panic(fmt.Sprintf("alignedvec: index %d out of range [0, %d)", i, v.used))
	}
	return &v.blk.view[i]
}

// Back returns a read-write pointer to the last element.
func (v *Vector[T]) Back() *T {
	if v.used == 0 {
		panic("alignedvec: Back on empty vector")
	}
	return &v.blk.view[v.used-1]
}

// Elements returns the live elements as a mutable slice. The slice aliases
// the vector's storage and is invalidated by any reallocating operation.
func (v *Vector[T]) Elements() []T {
	if v.blk.raw == nil {
		return nil
	}
	return v.blk.view[:v.used:v.used]
}

// Data returns the full-capacity view of the backing block; only the first
// Size() entries are live. The slice start is 64-byte aligned.
func (v *Vector[T]) Data() []T {
	return v.blk.view
}

// MemoryConsumption returns the approximate number of bytes owned by the
// vector, including unused reserved capacity. Memory owned by the elements
// themselves is not counted.
func (v *Vector[T]) MemoryConsumption() int {
	return int(unsafe.Sizeof(*v)) + v.Capacity()*v.elemSize
}

// Reserve ensures capacity for at least n elements. When n exceeds the
// current capacity the new capacity is max(n, 2*capacity) and the live
// elements are move-migrated into a fresh aligned block. Reserve(0)
// releases all storage, like Clear. Any other n <= Capacity() is a no-op.
func (v *Vector[T]) Reserve(n int) {
	if n < 0 {
		panic(fmt.Sprintf("alignedvec: negative reservation %d", n))
	}
	switch c := v.Capacity(); {
	case n == 0:
		v.Clear()
	case n > c:
		v.grow(max(n, 2*c))
	}
}

// grow migrates the vector into a new aligned block of newCap elements.
func (v *Vector[T]) grow(newCap int) {
	logging.Default().Debug("growing aligned block",
		zap.Int("capacity", v.Capacity()),
		zap.Int("new_capacity", newCap),
		zap.Int("live", v.used))

	nb := newBlock[T](v.alloc, newCap, v.elemSize)
	if v.used > 0 {
		v.bulkMove(v.blk.view[:v.used], nb.view[:v.used])
	}
	v.blk.release()
	v.blk = nb
}

// Clear destroys all live elements (in reverse construction order for
// managed traits), releases the block and resets to the empty state.
// Safe to call on an already-empty vector.
func (v *Vector[T]) Clear() {
	v.shrinkTo(0)
	v.blk.release()
}

// shrinkTo tears down elements [n, used) in reverse index order. Later
// elements may hold references into earlier ones, so teardown runs
// backwards. Trivial elements are abandoned without per-element work.
func (v *Vector[T]) shrinkTo(n int) {
	if !v.traits.trivial {
		for i := v.used - 1; i >= n; i-- {
			v.traits.lc.Destroy(&v.blk.view[i])
		}
	}
	v.used = n
}

// resizeCommon applies the shared shrink rule and capacity handling of the
// resize family, returning the previous size.
func (v *Vector[T]) resizeCommon(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("alignedvec: negative size %d", n))
	}
	old := v.used
	if n < old {
		v.shrinkTo(n)
	}
	v.Reserve(n)
	v.used = n
	return old
}

// ResizeFast sets the size to n without a defined-value guarantee for
// grown slots: trivial elements keep whatever bytes the block holds, while
// managed elements are default-constructed (they must run their
// constructor regardless). Shrinking still destroys managed elements.
func (v *Vector[T]) ResizeFast(n int) {
	old := v.resizeCommon(n)
	if !v.traits.trivial && n > old {
		v.bulkDefaultInit(v.blk.view[old:n], true)
	}
}

// Resize sets the size to n. Grown slots carry the element type's default
// value: zero bytes for trivial elements, a default-constructed value for
// managed ones.
func (v *Vector[T]) Resize(n int) {
	old := v.resizeCommon(n)
	if n > old {
		v.bulkDefaultInit(v.blk.view[old:n], true)
	}
}

// ResizeInit sets the size to n, copy-initializing grown slots from init.
func (v *Vector[T]) ResizeInit(n int, init T) {
	old := v.resizeCommon(n)
	if n > old {
		v.bulkSet(v.blk.view[old:n], init, true)
	}
}

// PushBack appends one element, doubling the capacity (minimum 16 slots)
// when the block is full. Amortized O(1).
func (v *Vector[T]) PushBack(x T) {
	if v.used == v.Capacity() {
		v.Reserve(max(2*v.Capacity(), 16))
	}
	if v.traits.trivial {
		v.blk.view[v.used] = x
	} else {
		v.blk.view[v.used] = v.traits.needClone()(&x)
	}
	v.used++
}

// InsertBack appends every element produced by seq. Arbitrary sequences do
// not support random-access partitioning, so this path is never
// parallelized.
func (v *Vector[T]) InsertBack(seq iter.Seq[T]) {
	for x := range seq {
		v.PushBack(x)
	}
}

// InsertBackSlice appends all elements of src, reserving the combined
// capacity up front. The elements are appended one at a time; src must not
// alias this vector's storage.
func (v *Vector[T]) InsertBackSlice(src []T) {
	v.Reserve(v.used + len(src))
	for i := range src {
		if v.traits.trivial {
			v.blk.view[v.used] = src[i]
		} else {
			v.blk.view[v.used] = v.traits.needClone()(&src[i])
		}
		v.used++
	}
}

// Fill sets every live element to the type's default value via assignment.
// Unlike FillWith this works for managed types without an Assign-from-copy
// source value, as long as they can default-construct.
func (v *Vector[T]) Fill() {
	v.bulkDefaultInit(v.blk.view[:v.used], false)
}

// FillWith copy-assigns x into every live element.
func (v *Vector[T]) FillWith(x T) {
	v.bulkSet(v.blk.view[:v.used], x, false)
}

// Clone returns an independent copy of the vector: same size, element-wise
// equal, separate backing block.
func (v *Vector[T]) Clone() *Vector[T] {
	out := &Vector[T]{traits: v.traits, alloc: v.alloc, elemSize: v.elemSize}
	if v.used > 0 {
		out.grow(v.used)
		out.used = v.used
		out.bulkCopy(v.blk.view[:v.used], out.blk.view[:v.used])
	}
	return out
}

// CopyFrom replaces this vector's contents with a copy of other's.
func (v *Vector[T]) CopyFrom(other *Vector[T]) {
	if v == other {
		return
	}
	v.Clear()
	if other.used > 0 {
		v.grow(other.used)
		v.used = other.used
		v.bulkCopy(other.blk.view[:other.used], v.blk.view[:v.used])
	}
}

// Move returns a new vector that steals this vector's block, leaving the
// source empty with zero capacity. O(1), no element-level work.
func (v *Vector[T]) Move() *Vector[T] {
	out := &Vector[T]{
		traits:   v.traits,
		alloc:    v.alloc,
		elemSize: v.elemSize,
		blk:      v.blk,
		used:     v.used,
	}
	v.blk = block[T]{}
	v.used = 0
	return out
}

// MoveFrom discards this vector's contents and steals other's block,
// leaving other empty with zero capacity.
func (v *Vector[T]) MoveFrom(other *Vector[T]) {
	if v == other {
		return
	}
	v.Clear()
	v.blk, v.used = other.blk, other.used
	other.blk = block[T]{}
	other.used = 0
}

// Swap exchanges the contents of the two vectors in O(1) by swapping block
// ownership. Both vectors must use the same element traits.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.blk, other.blk = other.blk, v.blk
	v.used, other.used = other.used, v.used
}

// Equal reports whether both vectors hold the same number of elements and
// all pairs compare equal in iteration order.
func (v *Vector[T]) Equal(other *Vector[T]) bool {
	if v.used != other.used {
		return false
	}
	if v.used == 0 {
		return true
	}
	eq := v.traits.needEqual()
	for i := 0; i < v.used; i++ {
		if !eq(&v.blk.view[i], &other.blk.view[i]) {
			return false
		}
	}
	return true
}
