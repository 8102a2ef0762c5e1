// Package allocator implements first-fit-by-size allocation over a fixed
// contiguous address range.
//
// The manager keeps two views of the same partition: an address-ordered
// chain of segments (the single source of truth for adjacency) and an
// indexed heap over exactly the free segments, ordered largest size first
// with ties broken by lowest address. Allocation inspects the heap top;
// release coalesces with free neighbors immediately, so the heap size is
// bounded by the number of maximal free runs.
package allocator

import (
	"iter"

	"github.com/segalloc/segalloc/queue"
)

// Manager allocates and releases segments of a fixed address range
// [1, memorySize]. It is not safe for concurrent use.
type Manager struct {
	memorySize int
	head, tail *Segment
	free       *queue.Indexed[*Segment]
}

// segmentLess orders free segments largest first, then leftmost first.
// Preferring the lowest address among equal sizes keeps fragmentation
// deterministic.
func segmentLess(a, b *Segment) bool {
	if a.Size() != b.Size() {
		return a.Size() > b.Size()
	}
	return a.left < b.left
}

// New creates a manager for the range [1, memorySize] with the whole range
// free. memorySize must be at least 1.
func New(memorySize int) *Manager {
	m := &Manager{memorySize: memorySize}
	m.free = queue.NewIndexed(segmentLess, func(s *Segment, pos queue.Position) {
		s.pos = pos
	})

	s := &Segment{left: 1, right: memorySize, pos: queue.None}
	m.head, m.tail = s, s
	m.free.Push(s)
	return m
}

// Allocate reserves a segment of exactly size addresses and returns its
// handle, or nil if no free segment is large enough. size must be positive;
// validating requests is the caller's job.
//
// The best candidate is the largest free segment (leftmost among equals).
// An exact fit is returned as-is; a larger segment is split, the request
// carved from its low end and the remainder kept free.
func (m *Manager) Allocate(size int) *Segment {
	top, ok := m.free.Top()
	if !ok || top.Size() < size {
		return nil
	}

	if top.Size() == size {
		m.free.Pop()
		return top
	}

	m.free.Pop()
	carved := &Segment{left: top.left, right: top.left + size - 1, pos: queue.None}
	top.left = carved.right + 1
	m.insertBefore(carved, top)
	m.free.Push(top)
	return carved
}

// Free releases an allocated segment, merging it with any free neighbors.
// The surviving segment enters the free index exactly once. Passing nil is
// a no-op. Passing a handle that is already free, or one retired by an
// earlier merge, corrupts the partition; callers track handle liveness.
func (m *Manager) Free(seg *Segment) {
	if seg == nil {
		return
	}

	surviving := seg
	if p := surviving.prev; p != nil && p.Free() {
		// Take the neighbor out of the index before resizing it; a free
		// segment's size must never change while the index holds it.
		m.free.Remove(p.pos)
		p.right = surviving.right
		m.unlink(surviving)
		surviving = p
	}
	if n := surviving.next; n != nil && n.Free() {
		m.free.Remove(n.pos)
		surviving.right = n.right
		m.unlink(n)
	}
	m.free.Push(surviving)
}

// MemorySize returns the size of the managed range.
func (m *Manager) MemorySize() int { return m.memorySize }

// FreeSegments returns the number of maximal free runs.
func (m *Manager) FreeSegments() int { return m.free.Len() }

// LargestFree returns the size of the largest free segment, or 0 when the
// range is fully allocated.
func (m *Manager) LargestFree() int {
	top, ok := m.free.Top()
	if !ok {
		return 0
	}
	return top.Size()
}

// TotalFree returns the total number of free addresses.
func (m *Manager) TotalFree() int {
	total := 0
	for s := range m.Segments() {
		if s.Free() {
			total += s.Size()
		}
	}
	return total
}

// Segments iterates the partition in address order.
func (m *Manager) Segments() iter.Seq[*Segment] {
	return func(yield func(*Segment) bool) {
		for s := m.head; s != nil; s = s.next {
			if !yield(s) {
				return
			}
		}
	}
}

// insertBefore links s into the chain immediately before at.
func (m *Manager) insertBefore(s, at *Segment) {
	s.prev = at.prev
	s.next = at
	if at.prev != nil {
		at.prev.next = s
	} else {
		m.head = s
	}
	at.prev = s
}

// unlink removes s from the chain.
func (m *Manager) unlink(s *Segment) {
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		m.head = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	} else {
		m.tail = s.prev
	}
	s.prev, s.next = nil, nil
}
