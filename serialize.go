package alignedvec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/23skdu/alignedvec/internal/config"
	"github.com/23skdu/alignedvec/internal/metrics"
)

// Serialization errors
var (
	// ErrTruncated indicates the input ended before the declared payload.
	ErrTruncated = errors.New("alignedvec: truncated serialized payload")
	// ErrCountTooLarge indicates the declared element count would exceed
	// the configured load ceiling.
	ErrCountTooLarge = errors.New("alignedvec: serialized element count exceeds configured limit")
)

// Save writes the vector as a little-endian uint64 element count followed
// by the raw live-element bytes. The payload is an opaque memory dump: it
// round-trips exactly for trivial element types only, and carries no
// format version of its own.
func (v *Vector[T]) Save(w io.Writer) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(v.used))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("alignedvec: writing element count: %w", err)
	}
	if v.used == 0 {
		return nil
	}
	if _, err := w.Write(v.blk.bytes(0, v.used, v.elemSize)); err != nil {
		return fmt.Errorf("alignedvec: writing %d elements: %w", v.used, err)
	}
	return nil
}

// Load replaces the vector's contents with a payload written by Save. The
// declared count is validated against the configured byte ceiling before
// any memory is reserved, so a corrupted or hostile count cannot trigger
// an unbounded allocation. The payload bytes are read straight into the
// backing block, bypassing element-level construction.
func (v *Vector[T]) Load(r io.Reader) error {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return fmt.Errorf("%w: reading element count: %v", ErrTruncated, err)
	}
	count := binary.LittleEndian.Uint64(hdr[:])

	limit := config.Default().MaxLoadBytes
	if count > math.MaxInt64/uint64(v.elemSize) || int64(count)*int64(v.elemSize) > limit {
		metrics.LoadRejectsTotal.Inc()
		return fmt.Errorf("%w: %d elements of %d bytes against limit %d",
			ErrCountTooLarge, count, v.elemSize, limit)
	}

	v.Clear()
	if count == 0 {
		return nil
	}
	n := int(count)
	v.Reserve(n)
	if _, err := io.ReadFull(r, v.blk.bytes(0, n, v.elemSize)); err != nil {
		v.Clear()
		return fmt.Errorf("%w: reading %d elements: %v", ErrTruncated, n, err)
	}
	v.used = n
	return nil
}
