package alignedvec

import (
	"unsafe"

	"github.com/23skdu/alignedvec/internal/metrics"
	"github.com/23skdu/alignedvec/internal/parallel"
)

// parallelGrainBytes is the byte budget a single parallel chunk should
// cover; ranges below one chunk's worth of elements run inline.
const parallelGrainBytes = 160000

func (v *Vector[T]) grain() int {
	return parallelGrainBytes/v.elemSize + 1
}

func (v *Vector[T]) opPath(n int) string {
	if n >= v.grain() {
		return "parallel"
	}
	return "serial"
}

// bulkCopy copy-constructs src into the raw destination slots. Both slices
// must have equal length and be index-disjoint.
func (v *Vector[T]) bulkCopy(src, dst []T) {
	if len(src) != len(dst) {
		panic("alignedvec: bulkCopy range length mismatch")
	}
	n := len(src)
	if n == 0 {
		return
	}
	metrics.BulkOpsTotal.WithLabelValues("copy", v.opPath(n)).Inc()

	if v.traits.trivial {
		parallel.For(n, v.grain(), func(begin, end int) {
			copy(dst[begin:end], src[begin:end])
		})
		return
	}

	clone := v.traits.needClone()
	destroy := v.traits.lc.Destroy
	parallel.For(n, v.grain(), func(begin, end int) {
		i := begin
		defer func() {
			// A panicking clone must not leak the elements this subrange
			// already constructed.
			if r := recover(); r != nil {
				for j := i - 1; j >= begin; j-- {
					destroy(&dst[j])
				}
				panic(r)
			}
		}()
		for ; i < end; i++ {
			dst[i] = clone(&src[i])
		}
	})
}

// bulkMove transfers src into the raw destination slots, tearing down the
// source slots as it goes.
func (v *Vector[T]) bulkMove(src, dst []T) {
	if len(src) != len(dst) {
		panic("alignedvec: bulkMove range length mismatch")
	}
	n := len(src)
	if n == 0 {
		return
	}
	metrics.BulkOpsTotal.WithLabelValues("move", v.opPath(n)).Inc()

	if v.traits.trivial {
		parallel.For(n, v.grain(), func(begin, end int) {
			copy(dst[begin:end], src[begin:end])
		})
		return
	}

	move := v.traits.moveInto()
	destroy := v.traits.lc.Destroy
	parallel.For(n, v.grain(), func(begin, end int) {
		i := begin
		defer func() {
			if r := recover(); r != nil {
				for j := i - 1; j >= begin; j-- {
					destroy(&dst[j])
				}
				panic(r)
			}
		}()
		for ; i < end; i++ {
			move(&dst[i], &src[i])
		}
	})
}

// bulkSet writes value into every slot of dst. With initialize set the
// slots are raw and the value is copy-constructed into them; otherwise the
// slots are live and copy-assigned.
func (v *Vector[T]) bulkSet(dst []T, value T, initialize bool) {
	n := len(dst)
	if n == 0 {
		return
	}
	metrics.BulkOpsTotal.WithLabelValues("set", v.opPath(n)).Inc()

	if v.traits.trivial {
		if !v.traits.noZeroPattern && isZeroPattern(&value, v.elemSize) {
			parallel.For(n, v.grain(), func(begin, end int) {
				clear(dst[begin:end])
			})
			return
		}
		parallel.For(n, v.grain(), func(begin, end int) {
			for i := begin; i < end; i++ {
				dst[i] = value
			}
		})
		return
	}

	if initialize {
		clone := v.traits.needClone()
		destroy := v.traits.lc.Destroy
		parallel.For(n, v.grain(), func(begin, end int) {
			i := begin
			defer func() {
				if r := recover(); r != nil {
					for j := i - 1; j >= begin; j-- {
						destroy(&dst[j])
					}
					panic(r)
				}
			}()
			for ; i < end; i++ {
				dst[i] = clone(&value)
			}
		})
		return
	}

	assign := v.traits.needAssign()
	parallel.For(n, v.grain(), func(begin, end int) {
		for i := begin; i < end; i++ {
			assign(&dst[i], &value)
		}
	})
}

// bulkDefaultInit writes the element type's default value into every slot
// of dst, with the same initialize split as bulkSet. Trivial elements
// always take the raw zero fill.
func (v *Vector[T]) bulkDefaultInit(dst []T, initialize bool) {
	n := len(dst)
	if n == 0 {
		return
	}
	metrics.BulkOpsTotal.WithLabelValues("default_init", v.opPath(n)).Inc()

	if v.traits.trivial {
		parallel.For(n, v.grain(), func(begin, end int) {
			clear(dst[begin:end])
		})
		return
	}

	construct := v.traits.needConstruct()
	destroy := v.traits.lc.Destroy
	if initialize {
		parallel.For(n, v.grain(), func(begin, end int) {
			i := begin
			defer func() {
				if r := recover(); r != nil {
					for j := i - 1; j >= begin; j-- {
						destroy(&dst[j])
					}
					panic(r)
				}
			}()
			for ; i < end; i++ {
				dst[i] = construct()
			}
		})
		return
	}

	if assign := v.traits.lc.Assign; assign != nil {
		parallel.For(n, v.grain(), func(begin, end int) {
			for i := begin; i < end; i++ {
				fresh := construct()
				assign(&dst[i], &fresh)
				destroy(&fresh)
			}
		})
		return
	}

	// Types without copy assignment can still be reset to their default by
	// replacing each live element outright.
	parallel.For(n, v.grain(), func(begin, end int) {
		for i := begin; i < end; i++ {
			destroy(&dst[i])
			dst[i] = construct()
		}
	})
}

// isZeroPattern reports whether every byte of *p is zero across the full
// storage width of T.
func isZeroPattern[T any](p *T, size int) bool {
	b := unsafe.Slice((*byte)(unsafe.Pointer(p)), size)
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
