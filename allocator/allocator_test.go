package allocator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkPartition verifies the structural invariants: the chain partitions
// [1, memorySize] exactly, free-segment count matches the index, and no two
// free segments are adjacent (coalescing is immediate).
func checkPartition(t *testing.T, m *Manager) {
	t.Helper()

	total := 0
	freeCount := 0
	prevRight := 0
	prevFree := false
	for s := range m.Segments() {
		require.Equal(t, prevRight+1, s.Left(), "gap or overlap at %d", s.Left())
		require.GreaterOrEqual(t, s.Size(), 1)
		total += s.Size()
		if s.Free() {
			require.False(t, prevFree, "adjacent free segments at %d", s.Left())
			freeCount++
		}
		prevRight = s.Right()
		prevFree = s.Free()
	}
	require.Equal(t, m.MemorySize(), total)
	require.Equal(t, m.MemorySize(), prevRight)
	require.Equal(t, m.FreeSegments(), freeCount)
}

// partition flattens the chain for comparisons.
type span struct {
	left, right int
	free        bool
}

func partition(m *Manager) []span {
	var out []span
	for s := range m.Segments() {
		out = append(out, span{s.Left(), s.Right(), s.Free()})
	}
	return out
}

func TestAllocate(t *testing.T) {
	t.Run("FirstAllocationIsLeftmost", func(t *testing.T) {
		m := New(10)
		seg := m.Allocate(5)
		require.NotNil(t, seg)
		assert.Equal(t, 1, seg.Left())
		assert.Equal(t, 5, seg.Size())
		checkPartition(t, m)
	})

	t.Run("ExactFitConsumesWholeRange", func(t *testing.T) {
		m := New(10)
		seg := m.Allocate(10)
		require.NotNil(t, seg)
		assert.Equal(t, 1, seg.Left())
		assert.Equal(t, 10, seg.Right())
		assert.Equal(t, 0, m.FreeSegments())
		checkPartition(t, m)
	})

	t.Run("InsufficientSpaceFails", func(t *testing.T) {
		m := New(5)
		require.NotNil(t, m.Allocate(3))
		assert.Nil(t, m.Allocate(3))
		checkPartition(t, m)
	})

	t.Run("FailureWhenFullyAllocated", func(t *testing.T) {
		m := New(4)
		require.NotNil(t, m.Allocate(4))
		assert.Nil(t, m.Allocate(1))
	})

	t.Run("ReuseAfterFree", func(t *testing.T) {
		// memory_size=10, queries [5, 3, 6, -2, 3]
		m := New(10)
		a := m.Allocate(5)
		require.Equal(t, 1, a.Left())
		b := m.Allocate(3)
		require.Equal(t, 6, b.Left())
		require.Nil(t, m.Allocate(6))
		m.Free(b)
		c := m.Allocate(3)
		require.NotNil(t, c)
		assert.Equal(t, 6, c.Left())
		checkPartition(t, m)
	})

	t.Run("LeftmostAmongEqualSizes", func(t *testing.T) {
		m := New(10)
		segs := make([]*Segment, 5)
		for i := range segs {
			segs[i] = m.Allocate(2)
			require.NotNil(t, segs[i])
		}
		m.Free(segs[1]) // [3,4]
		m.Free(segs[3]) // [7,8]
		checkPartition(t, m)

		got := m.Allocate(2)
		require.NotNil(t, got)
		assert.Equal(t, 3, got.Left())
	})
}

func TestFree(t *testing.T) {
	t.Run("NilIsNoop", func(t *testing.T) {
		m := New(3)
		m.Free(nil)
		checkPartition(t, m)
		assert.Equal(t, 3, m.LargestFree())
	})

	t.Run("MergeBothNeighbors", func(t *testing.T) {
		m := New(12)
		a := m.Allocate(4)
		b := m.Allocate(4)
		c := m.Allocate(4)
		require.Equal(t, 0, m.FreeSegments())

		m.Free(a)
		m.Free(c)
		require.Equal(t, 2, m.FreeSegments())

		// Freeing the middle block must collapse all three into one run.
		m.Free(b)
		require.Equal(t, 1, m.FreeSegments())
		assert.Equal(t, 12, m.LargestFree())
		checkPartition(t, m)
	})

	t.Run("AdjacentMergeEnablesLargerFit", func(t *testing.T) {
		m := New(10)
		a := m.Allocate(4)
		b := m.Allocate(4)
		m.Free(a)
		m.Free(b)
		checkPartition(t, m)

		seg := m.Allocate(8)
		require.NotNil(t, seg)
		assert.Equal(t, 1, seg.Left())
	})

	t.Run("MergeOrderIndependent", func(t *testing.T) {
		build := func() (*Manager, *Segment, *Segment) {
			m := New(10)
			a := m.Allocate(4)
			b := m.Allocate(4)
			return m, a, b
		}

		m1, a1, b1 := build()
		m1.Free(a1)
		m1.Free(b1)

		m2, a2, b2 := build()
		m2.Free(b2)
		m2.Free(a2)

		assert.Equal(t, partition(m1), partition(m2))
		checkPartition(t, m1)
		checkPartition(t, m2)
	})

	t.Run("RoundTripRestoresFreeIndex", func(t *testing.T) {
		m := New(20)
		keep := m.Allocate(5)
		require.NotNil(t, keep)

		before := partition(m)
		largest := m.LargestFree()

		seg := m.Allocate(7)
		require.NotNil(t, seg)
		m.Free(seg)

		assert.Equal(t, before, partition(m))
		assert.Equal(t, largest, m.LargestFree())
		checkPartition(t, m)
	})
}

func TestAccessors(t *testing.T) {
	m := New(10)
	assert.Equal(t, 10, m.MemorySize())
	assert.Equal(t, 10, m.TotalFree())
	assert.Equal(t, 10, m.LargestFree())

	seg := m.Allocate(4)
	require.NotNil(t, seg)
	assert.Equal(t, 6, m.TotalFree())
	assert.Equal(t, 6, m.LargestFree())
	assert.Equal(t, 1, m.FreeSegments())
}

// refAllocator is a naive O(n) model used to cross-check the heap-backed
// manager: free spans in a sorted slice, linear scan for the largest (then
// leftmost) candidate, linear coalescing on release.
type refAllocator struct {
	spans []span // free spans only, sorted by left
}

func newRefAllocator(memorySize int) *refAllocator {
	return &refAllocator{spans: []span{{left: 1, right: memorySize}}}
}

func (r *refAllocator) allocate(size int) int {
	best := -1
	for i, s := range r.spans {
		sz := s.right - s.left + 1
		if sz < size {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		bestSz := r.spans[best].right - r.spans[best].left + 1
		if sz > bestSz || (sz == bestSz && s.left < r.spans[best].left) {
			best = i
		}
	}
	if best == -1 {
		return -1
	}

	s := r.spans[best]
	addr := s.left
	if s.right-s.left+1 == size {
		r.spans = append(r.spans[:best], r.spans[best+1:]...)
	} else {
		r.spans[best].left += size
	}
	return addr
}

func (r *refAllocator) free(left, size int) {
	right := left + size - 1
	i := 0
	for i < len(r.spans) && r.spans[i].left < left {
		i++
	}
	r.spans = append(r.spans[:i], append([]span{{left: left, right: right}}, r.spans[i:]...)...)

	// Coalesce around i.
	if i+1 < len(r.spans) && r.spans[i].right+1 == r.spans[i+1].left {
		r.spans[i].right = r.spans[i+1].right
		r.spans = append(r.spans[:i+1], r.spans[i+2:]...)
	}
	if i > 0 && r.spans[i-1].right+1 == r.spans[i].left {
		r.spans[i-1].right = r.spans[i].right
		r.spans = append(r.spans[:i], r.spans[i+1:]...)
	}
}

func TestRandomWorkloadAgainstReference(t *testing.T) {
	const (
		memorySize = 1000
		steps      = 5000
	)

	rng := rand.New(rand.NewSource(7))
	m := New(memorySize)
	ref := newRefAllocator(memorySize)

	type live struct {
		seg  *Segment
		size int
	}
	var allocated []live

	for step := 0; step < steps; step++ {
		if len(allocated) > 0 && rng.Intn(3) == 0 {
			i := rng.Intn(len(allocated))
			a := allocated[i]
			ref.free(a.seg.Left(), a.size)
			m.Free(a.seg)
			allocated = append(allocated[:i], allocated[i+1:]...)
		} else {
			size := 1 + rng.Intn(memorySize/10)
			seg := m.Allocate(size)
			want := ref.allocate(size)
			if seg == nil {
				require.Equal(t, -1, want, "step %d: manager failed, reference at %d", step, want)
				continue
			}
			require.Equal(t, want, seg.Left(), "step %d: size %d", step, size)
			allocated = append(allocated, live{seg: seg, size: size})
		}

		if step%100 == 0 {
			checkPartition(t, m)
		}
	}
	checkPartition(t, m)
}
