// Package script implements the text protocol of the simulator.
//
// Input is whitespace-separated integers: the memory size, the query count,
// then one value per query — positive for an allocation of that size,
// negative for a free referencing the |value|-th earlier query (1-indexed
// across all queries). Output is one line per allocation query, in query
// order, holding the granted 1-based starting address or -1.
//
// The package owns boundary validation: sizes and references are checked
// here, before anything reaches the allocator core.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/segalloc/segalloc"
)

// ErrTruncatedInput is returned when the input ends before the announced
// query count is reached.
var ErrTruncatedInput = errors.New("script: input ended before all queries were read")

// Parse reads a complete simulation script from r.
//
// References are validated structurally: a free query must point at an
// earlier query that is itself an allocation. Whether that allocation
// succeeded is only known at run time; the simulator no-ops frees of failed
// or already-freed allocations.
func Parse(r io.Reader) (int, []segalloc.Query, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	memorySize, err := readInt(sc, "memory size")
	if err != nil {
		return 0, nil, err
	}
	if memorySize < 1 {
		return 0, nil, fmt.Errorf("script: %w, got %d", segalloc.ErrInvalidMemorySize, memorySize)
	}

	count, err := readInt(sc, "query count")
	if err != nil {
		return 0, nil, err
	}
	if count < 0 {
		return 0, nil, fmt.Errorf("script: query count must be non-negative, got %d", count)
	}

	queries := make([]segalloc.Query, 0, count)
	for i := 1; i <= count; i++ {
		v, err := readInt(sc, fmt.Sprintf("query %d", i))
		if err != nil {
			return 0, nil, err
		}

		switch {
		case v > 0:
			queries = append(queries, segalloc.AllocateQuery{Size: v})
		case v < 0:
			ref := -v
			if ref >= i {
				return 0, nil, &segalloc.ErrInvalidQueryReference{QueryIndex: i, Referenced: ref}
			}
			if _, ok := queries[ref-1].(segalloc.AllocateQuery); !ok {
				return 0, nil, &segalloc.ErrInvalidQueryReference{QueryIndex: i, Referenced: ref}
			}
			queries = append(queries, segalloc.FreeQuery{QueryIndex: ref})
		default:
			return 0, nil, fmt.Errorf("script: query %d: %w, got 0", i, segalloc.ErrInvalidQuerySize)
		}
	}

	return memorySize, queries, nil
}

func readInt(sc *bufio.Scanner, what string) (int, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, fmt.Errorf("script: failed to read %s: %w", what, err)
		}
		return 0, fmt.Errorf("%w (expected %s)", ErrTruncatedInput, what)
	}
	v, err := strconv.Atoi(sc.Text())
	if err != nil {
		return 0, fmt.Errorf("script: invalid %s %q: %w", what, sc.Text(), err)
	}
	return v, nil
}

// WriteResponses prints one line per allocation response: the granted
// address, or -1 for failures.
func WriteResponses(w io.Writer, responses []segalloc.AllocationResponse) error {
	bw := bufio.NewWriter(w)
	for _, resp := range responses {
		if resp.Success {
			if _, err := fmt.Fprintln(bw, resp.Addr); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(bw, -1); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Run is the batch transform: parse a script from r, simulate it and write
// the responses to w. Options are forwarded to the simulator.
func Run(r io.Reader, w io.Writer, optFns ...segalloc.Option) error {
	memorySize, queries, err := Parse(r)
	if err != nil {
		return err
	}

	sim, err := segalloc.New(memorySize, optFns...)
	if err != nil {
		return err
	}

	responses, err := sim.Run(queries)
	if err != nil {
		return err
	}
	return WriteResponses(w, responses)
}
