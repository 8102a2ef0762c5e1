package allocator

import "github.com/segalloc/segalloc/queue"

// Segment is a contiguous sub-range [Left, Right] (1-based, inclusive) of
// the managed address space. Segments form an address-ordered doubly-linked
// chain that partitions the whole range with no gaps and no overlaps; the
// *Segment pointer itself is the handle callers pass back to Free.
//
// Handle lifetime: a handle stays valid until the segment is merged away,
// which happens when Free coalesces it into a neighbor. Callers must not
// retain a handle past the Free call that releases it, and must never pass
// a handle for a segment that is already free.
type Segment struct {
	left  int
	right int

	// pos mirrors the segment's slot in the free index; None while the
	// segment is allocated. Updated exclusively by the index notifier.
	// Its absence from the free index is the allocated marker: there is
	// no separate flag.
	pos queue.Position

	prev, next *Segment
}

// Left returns the first address of the segment.
func (s *Segment) Left() int { return s.left }

// Right returns the last address of the segment.
func (s *Segment) Right() int { return s.right }

// Size returns the number of addresses the segment spans.
func (s *Segment) Size() int { return s.right - s.left + 1 }

// Free reports whether the segment is currently in the free index.
func (s *Segment) Free() bool { return s.pos.Present() }

// Prev returns the address-order predecessor, or nil at the start of the
// range.
func (s *Segment) Prev() *Segment { return s.prev }

// Next returns the address-order successor, or nil at the end of the range.
func (s *Segment) Next() *Segment { return s.next }
