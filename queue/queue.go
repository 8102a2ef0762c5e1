// Package queue provides an index-tracking binary heap.
//
// Unlike a plain heap, Indexed reports every slot change of every element
// through a notifier callback. Callers that mirror an element's position in
// external state can therefore remove arbitrary elements in O(log n) without
// searching the backing array.
package queue

import "fmt"

// Position identifies an element's slot in the heap's backing array.
type Position int

// None marks an element that is not currently stored in the heap.
const None Position = -1

// Present reports whether p refers to a live heap slot.
func (p Position) Present() bool { return p != None }

// Notify is invoked whenever an element's slot changes. A pos of None means
// the element has been removed from the heap. The notifier fires for both
// sides of every swap during sift operations; it is the only channel through
// which external position mirrors stay current.
type Notify[T any] func(value T, pos Position)

// Indexed is a binary min-heap under a caller-supplied strict weak order.
// The element at slot i compares less-or-equal to its children at 2i+1
// and 2i+2.
type Indexed[T any] struct {
	less   func(a, b T) bool
	notify Notify[T]
	items  []T
}

// NewIndexed creates an empty heap ordered by less. notify may be nil if
// position tracking is not needed.
func NewIndexed[T any](less func(a, b T) bool, notify Notify[T]) *Indexed[T] {
	if notify == nil {
		notify = func(T, Position) {}
	}
	return &Indexed[T]{
		less:   less,
		notify: notify,
		items:  make([]T, 0, 16),
	}
}

// Len returns the number of elements in the heap.
func (q *Indexed[T]) Len() int { return len(q.items) }

// Empty reports whether the heap holds no elements.
func (q *Indexed[T]) Empty() bool { return len(q.items) == 0 }

// Top returns the minimal element under the comparator.
func (q *Indexed[T]) Top() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

// Push inserts v and returns its final position.
func (q *Indexed[T]) Push(v T) Position {
	q.items = append(q.items, v)
	last := len(q.items) - 1
	q.notify(v, Position(last))
	return q.siftUp(last)
}

// Pop removes the minimal element. It panics on an empty heap.
func (q *Indexed[T]) Pop() {
	q.Remove(0)
}

// Remove deletes the element at pos. The vacated element is notified with
// None before heap order is restored. Remove panics if pos does not refer
// to a live slot: a stale position means the external mirror is corrupt,
// and continuing would silently corrupt the heap as well.
func (q *Indexed[T]) Remove(pos Position) {
	i := int(pos)
	last := len(q.items) - 1
	if i < 0 || i > last {
		panic(fmt.Sprintf("queue: remove position %d out of range (len %d)", i, len(q.items)))
	}

	if i != last {
		q.swap(i, last)
		q.notify(q.items[last], None)
		q.dropLast()
		// The swapped-in element may violate heap order in either
		// direction. Running both sifts is safe: at most one moves it.
		q.siftDown(i)
		q.siftUp(i)
		return
	}

	q.notify(q.items[last], None)
	q.dropLast()
}

func (q *Indexed[T]) dropLast() {
	last := len(q.items) - 1
	var zero T
	q.items[last] = zero
	q.items = q.items[:last]
}

// swap exchanges two slots and notifies both elements of their new position.
func (q *Indexed[T]) swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.notify(q.items[i], Position(i))
	q.notify(q.items[j], Position(j))
}

// siftUp moves the element at i toward the root until heap order holds and
// returns its final position.
func (q *Indexed[T]) siftUp(i int) Position {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(q.items[i], q.items[parent]) {
			break
		}
		q.swap(i, parent)
		i = parent
	}
	return Position(i)
}

// siftDown moves the element at i toward the leaves until heap order holds.
func (q *Indexed[T]) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && q.less(q.items[right], q.items[left]) {
			child = right
		}
		if !q.less(q.items[child], q.items[i]) {
			break
		}
		q.swap(i, child)
		i = child
	}
}
