package segalloc

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMemorySize is returned when the configured memory size is
	// less than 1.
	ErrInvalidMemorySize = errors.New("memory size must be at least 1")

	// ErrInvalidQuerySize is returned when an allocation query requests a
	// non-positive size. Allocation failure for lack of space is not an
	// error; it is a normal FailedAllocation response.
	ErrInvalidQuerySize = errors.New("allocation size must be positive")
)

// ErrInvalidQueryReference indicates a free query referencing a query that
// does not exist, lies in the future, or was not itself an allocation.
type ErrInvalidQueryReference struct {
	// QueryIndex is the 1-based position of the offending free query, when
	// known (0 when the query is applied standalone).
	QueryIndex int
	// Referenced is the 1-based query index the free query pointed at.
	Referenced int
}

func (e *ErrInvalidQueryReference) Error() string {
	if e.QueryIndex > 0 {
		return fmt.Sprintf("query %d: invalid free reference to query %d", e.QueryIndex, e.Referenced)
	}
	return fmt.Sprintf("invalid free reference to query %d", e.Referenced)
}
