// Package testutil provides deterministic helpers for simulator tests and
// benchmarks.
package testutil

import (
	"math/rand"
	"sync"

	"github.com/segalloc/segalloc"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// RandomWorkload generates n queries for a range of memorySize addresses.
// Roughly a third of the queries are frees; every free references an
// earlier allocation query, so the workload always passes boundary
// validation. Frees may repeat a reference, exercising the no-op path.
func RandomWorkload(r *RNG, memorySize, n int) []segalloc.Query {
	maxSize := memorySize / 4
	if maxSize < 1 {
		maxSize = 1
	}

	queries := make([]segalloc.Query, 0, n)
	var allocations []int // 1-based indices of allocation queries

	for i := 1; i <= n; i++ {
		if len(allocations) > 0 && r.Intn(3) == 0 {
			ref := allocations[r.Intn(len(allocations))]
			queries = append(queries, segalloc.FreeQuery{QueryIndex: ref})
			continue
		}
		queries = append(queries, segalloc.AllocateQuery{Size: 1 + r.Intn(maxSize)})
		allocations = append(allocations, i)
	}
	return queries
}
