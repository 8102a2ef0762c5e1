// Package occupancy tracks which addresses of the simulated range are
// currently allocated.
//
// The tracker is an optional mirror of the allocator's state backed by a
// roaring bitmap: tests use it to cross-check the partition, and the CLI
// uses it to report utilization.
package occupancy

import (
	"io"

	"github.com/RoaringBitmap/roaring/v2"
)

// Tracker records the set of allocated addresses in [1, memorySize].
type Tracker struct {
	rb         *roaring.Bitmap
	memorySize int
}

// New creates an empty tracker for a range of memorySize addresses.
func New(memorySize int) *Tracker {
	return &Tracker{
		rb:         roaring.New(),
		memorySize: memorySize,
	}
}

// MarkRange records size addresses starting at addr as allocated.
func (t *Tracker) MarkRange(addr, size int) {
	t.rb.AddRange(uint64(addr), uint64(addr+size))
}

// ClearRange records size addresses starting at addr as free.
func (t *Tracker) ClearRange(addr, size int) {
	t.rb.RemoveRange(uint64(addr), uint64(addr+size))
}

// Allocated reports whether addr is currently allocated.
func (t *Tracker) Allocated(addr int) bool {
	return t.rb.Contains(uint32(addr))
}

// AllocatedCount returns the number of allocated addresses.
func (t *Tracker) AllocatedCount() uint64 {
	return t.rb.GetCardinality()
}

// Utilization returns the allocated fraction of the range in [0, 1].
func (t *Tracker) Utilization() float64 {
	if t.memorySize == 0 {
		return 0
	}
	return float64(t.rb.GetCardinality()) / float64(t.memorySize)
}

// MemorySize returns the size of the tracked range.
func (t *Tracker) MemorySize() int { return t.memorySize }

// WriteTo serializes the bitmap to w.
func (t *Tracker) WriteTo(w io.Writer) (int64, error) {
	return t.rb.WriteTo(w)
}

// ReadFrom replaces the bitmap with one deserialized from r.
func (t *Tracker) ReadFrom(r io.Reader) (int64, error) {
	return t.rb.ReadFrom(r)
}
