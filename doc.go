// Package segalloc simulates a first-fit-by-size memory allocator over a
// contiguous address range of fixed size.
//
// A Simulator processes a sequence of queries — allocate a block of a given
// size, or free the block produced by an earlier query — and reports, for
// each allocation, the 1-based starting address granted or failure. The
// allocator core lives in the allocator package; its free-space index is the
// index-tracking heap in the queue package.
//
// # Quick Start
//
//	sim, _ := segalloc.New(10)
//	responses, _ := sim.Run([]segalloc.Query{
//	    segalloc.AllocateQuery{Size: 5},
//	    segalloc.AllocateQuery{Size: 3},
//	    segalloc.AllocateQuery{Size: 6},
//	    segalloc.FreeQuery{QueryIndex: 2},
//	    segalloc.AllocateQuery{Size: 3},
//	})
//	// responses: 1, 6, failed, 6
//
// The text protocol (memory size, query count, signed query values on
// stdin; one address or -1 per allocation on stdout) is implemented by the
// script package and the segalloc command.
//
// Optional collaborators are wired through functional options: WithTracer
// journals every applied query for later replay, WithOccupancy maintains a
// roaring bitmap of allocated addresses, and WithStatsCollector counts
// operations and peak usage.
package segalloc
