package queue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// posTracker mirrors element positions the way real callers do: the notifier
// is the only writer.
type posTracker map[int]Position

func (pt posTracker) notify(v int, pos Position) {
	if pos.Present() {
		pt[v] = pos
	} else {
		delete(pt, v)
	}
}

// verify checks that every tracked position points at the element it claims.
func (pt posTracker) verify(t *testing.T, q *Indexed[int]) {
	t.Helper()
	require.Len(t, pt, q.Len())
	for v, pos := range pt {
		require.Equal(t, v, q.items[int(pos)], "mirror for %d points at slot %d", v, pos)
	}
}

func TestIndexed(t *testing.T) {
	t.Run("PushPopOrder", func(t *testing.T) {
		q := NewIndexed(func(a, b int) bool { return a < b }, nil)

		for _, v := range []int{5, 1, 4, 2, 3} {
			q.Push(v)
		}
		require.Equal(t, 5, q.Len())

		for want := 1; want <= 5; want++ {
			top, ok := q.Top()
			require.True(t, ok)
			assert.Equal(t, want, top)
			q.Pop()
		}
		assert.True(t, q.Empty())
	})

	t.Run("TopOnEmpty", func(t *testing.T) {
		q := NewIndexed(func(a, b int) bool { return a < b }, nil)
		_, ok := q.Top()
		assert.False(t, ok)
	})

	t.Run("PushReturnsFinalPosition", func(t *testing.T) {
		pt := posTracker{}
		q := NewIndexed(func(a, b int) bool { return a < b }, pt.notify)

		pos := q.Push(10)
		require.Equal(t, Position(0), pos)

		// 5 displaces 10 from the root.
		pos = q.Push(5)
		require.Equal(t, Position(0), pos)
		require.Equal(t, Position(1), pt[10])
		pt.verify(t, q)
	})

	t.Run("RemoveMiddle", func(t *testing.T) {
		pt := posTracker{}
		q := NewIndexed(func(a, b int) bool { return a < b }, pt.notify)

		for _, v := range []int{7, 3, 9, 1, 5} {
			q.Push(v)
		}
		pt.verify(t, q)

		q.Remove(pt[9])
		require.Equal(t, 4, q.Len())
		_, removed := pt[9]
		require.False(t, removed)
		pt.verify(t, q)

		var got []int
		for !q.Empty() {
			top, _ := q.Top()
			got = append(got, top)
			q.Pop()
		}
		assert.Equal(t, []int{1, 3, 5, 7}, got)
	})

	t.Run("RemoveLastSlot", func(t *testing.T) {
		pt := posTracker{}
		q := NewIndexed(func(a, b int) bool { return a < b }, pt.notify)

		q.Push(1)
		q.Push(2)

		// 2 occupies the last slot; removal must not disturb the rest.
		q.Remove(pt[2])
		require.Equal(t, 1, q.Len())
		pt.verify(t, q)

		top, ok := q.Top()
		require.True(t, ok)
		assert.Equal(t, 1, top)
	})

	t.Run("RemoveOutOfRangePanics", func(t *testing.T) {
		q := NewIndexed(func(a, b int) bool { return a < b }, nil)
		q.Push(1)

		assert.Panics(t, func() { q.Remove(Position(3)) })
		assert.Panics(t, func() { q.Remove(None) })
	})

	t.Run("PopEmptyPanics", func(t *testing.T) {
		q := NewIndexed(func(a, b int) bool { return a < b }, nil)
		assert.Panics(t, func() { q.Pop() })
	})

	t.Run("NotifierSeesEverySwap", func(t *testing.T) {
		var events int
		q := NewIndexed(func(a, b int) bool { return a < b }, func(int, Position) {
			events++
		})

		// Pushing a strictly decreasing run forces a full sift-up each
		// time: 1 append notification plus 2 per swap.
		for v := 5; v >= 1; v-- {
			q.Push(v)
		}
		assert.Greater(t, events, 5)
	})

	t.Run("StressRandomRemoval", func(t *testing.T) {
		const n = 2000
		rng := rand.New(rand.NewSource(42))

		pt := posTracker{}
		q := NewIndexed(func(a, b int) bool { return a < b }, pt.notify)

		live := map[int]bool{}
		for len(live) < n {
			v := rng.Intn(1 << 30)
			if live[v] {
				continue
			}
			live[v] = true
			q.Push(v)
		}
		pt.verify(t, q)

		// Remove half the elements through their mirrored positions.
		removed := 0
		for v := range live {
			if removed == n/2 {
				break
			}
			q.Remove(pt[v])
			delete(live, v)
			removed++
		}
		pt.verify(t, q)

		var got []int
		for !q.Empty() {
			top, _ := q.Top()
			got = append(got, top)
			q.Pop()
		}

		want := make([]int, 0, len(live))
		for v := range live {
			want = append(want, v)
		}
		sort.Ints(want)
		require.Equal(t, want, got)
	})
}
