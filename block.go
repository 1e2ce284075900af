package alignedvec

import (
	"fmt"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/23skdu/alignedvec/internal/metrics"
	"github.com/23skdu/alignedvec/internal/simd"
)

// BlockAlignment is the guaranteed byte alignment of every backing block.
// 64 bytes covers the widest vector registers currently in use (AVX-512
// ZMM); the arrow allocators below hand out exactly this alignment.
const BlockAlignment = 64

func init() {
	if w := simd.VectorWidthBytes(); w > BlockAlignment {
		panic(fmt.Sprintf("alignedvec: detected vector width %d exceeds block alignment %d", w, BlockAlignment))
	}
}

// block owns one aligned allocation together with its typed view. The raw
// slice must be released through the same allocator that produced it; the
// typed view is rebuilt from the raw block and never outlives it.
type block[T any] struct {
	alloc memory.Allocator
	raw   []byte
	view  []T
}

func newBlock[T any](alloc memory.Allocator, capacity, elemSize int) block[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("alignedvec: block capacity must be positive, got %d", capacity))
	}
	raw := alloc.Allocate(capacity * elemSize)
	view := unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), capacity)

	metrics.AlignedAllocationsTotal.Inc()
	metrics.ReservedBytes.Add(float64(len(raw)))

	return block[T]{alloc: alloc, raw: raw, view: view}
}

// release returns the block to its allocator. Idempotent.
func (b *block[T]) release() {
	if b.raw == nil {
		return
	}
	metrics.AlignedFreesTotal.Inc()
	metrics.ReservedBytes.Sub(float64(len(b.raw)))
	b.alloc.Free(b.raw)
	b.raw = nil
	b.view = nil
}

// bytes returns the raw storage backing elements [begin, end).
func (b *block[T]) bytes(begin, end, elemSize int) []byte {
	return b.raw[begin*elemSize : end*elemSize]
}
