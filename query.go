package segalloc

// Query is a simulator request. It is a closed set: the only
// implementations are AllocateQuery and FreeQuery, so a type switch over
// both variants is exhaustive.
type Query interface {
	isQuery()
}

// AllocateQuery requests a contiguous block of Size addresses. Size must be
// positive.
type AllocateQuery struct {
	Size int
}

// FreeQuery releases the block produced by the QueryIndex-th query,
// 1-indexed across all earlier queries, not just allocations. Referencing a
// failed or already-freed allocation is a no-op.
type FreeQuery struct {
	QueryIndex int
}

func (AllocateQuery) isQuery() {}
func (FreeQuery) isQuery()     {}

// AllocationResponse reports the outcome of a single AllocateQuery.
type AllocationResponse struct {
	Success bool
	Addr    int // 1-based starting address; meaningful only when Success
}

// SuccessfulAllocation builds a response granting addr.
func SuccessfulAllocation(addr int) AllocationResponse {
	return AllocationResponse{Success: true, Addr: addr}
}

// FailedAllocation builds a failure response.
func FailedAllocation() AllocationResponse {
	return AllocationResponse{}
}
