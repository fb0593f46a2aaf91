package kdf

import (
	"fmt"
	"sync/atomic"
)

// regionAlign is the alignment the aligned view of a region honours.
const regionAlign = 64

// Region is a reusable scratch allocation for derivations. A Region belongs
// to exactly one owner and must be released exactly once through the
// Capability that created it.
//
// Region is not a lock. Acquire marks it in use and fails fast when another
// call already holds it, so overlapping calls are reported instead of
// corrupting each other's working state.
type Region struct {
	baseSize    atomic.Uint64
	alignedSize atomic.Uint64
	inUse       atomic.Bool
	freed       atomic.Bool
}

// NewRegion returns a live region sized for size bytes of working memory.
func NewRegion(size uint64) *Region {
	r := &Region{}
	r.setSize(size)
	return r
}

func (r *Region) setSize(size uint64) {
	r.alignedSize.Store(size)
	if size > ^uint64(0)-(regionAlign-1) {
		r.baseSize.Store(^uint64(0))
		return
	}
	r.baseSize.Store(size + regionAlign - 1)
}

// BaseSize is the size of the underlying allocation, including alignment slack.
func (r *Region) BaseSize() uint64 { return r.baseSize.Load() }

// AlignedSize is the usable, aligned portion of the allocation.
func (r *Region) AlignedSize() uint64 { return r.alignedSize.Load() }

// Live reports whether the region has not been freed yet.
func (r *Region) Live() bool { return r != nil && !r.freed.Load() }

// Acquire marks the region in use for the duration of one derivation.
func (r *Region) Acquire() error {
	if r == nil {
		return ErrRegionFreed
	}
	if r.freed.Load() {
		return ErrRegionFreed
	}
	if !r.inUse.CompareAndSwap(false, true) {
		return ErrRegionBusy
	}
	return nil
}

// Release ends the use started by a successful Acquire.
func (r *Region) Release() { r.inUse.Store(false) }

// Grow enlarges the region to at least size bytes. A limit of zero means
// unlimited. Growing never shrinks the region.
func (r *Region) Grow(size, limit uint64) error {
	if limit != 0 && size > limit {
		return fmt.Errorf("%w: need %d bytes, limit is %d", ErrRegionTooLarge, size, limit)
	}
	if size > r.AlignedSize() {
		r.setSize(size)
	}
	return nil
}

// Free marks the region released. Only the first call succeeds.
func (r *Region) Free() error {
	if r == nil || !r.freed.CompareAndSwap(false, true) {
		return ErrRegionFreed
	}
	r.baseSize.Store(0)
	r.alignedSize.Store(0)
	return nil
}
