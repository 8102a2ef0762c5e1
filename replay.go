package segalloc

import (
	"fmt"

	"github.com/segalloc/segalloc/trace"
)

// QueriesFromEntries reconstructs the query sequence recorded in a trace.
func QueriesFromEntries(entries []trace.Entry) ([]Query, error) {
	queries := make([]Query, 0, len(entries))
	for _, e := range entries {
		switch e.Kind {
		case trace.KindAllocate:
			queries = append(queries, AllocateQuery{Size: e.Size})
		case trace.KindFree:
			queries = append(queries, FreeQuery{QueryIndex: e.Ref})
		default:
			return nil, fmt.Errorf("segalloc: trace entry %d has unknown kind %d", e.Seq, e.Kind)
		}
	}
	return queries, nil
}

// ReplayFile reads a trace file and returns the recorded memory size and
// query sequence, ready to drive a fresh simulator.
func ReplayFile(path string) (int, []Query, error) {
	r, err := trace.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer r.Close()

	entries, err := r.Entries()
	if err != nil {
		return 0, nil, err
	}
	queries, err := QueriesFromEntries(entries)
	if err != nil {
		return 0, nil, err
	}
	return r.MemorySize(), queries, nil
}
