package segalloc

import (
	"fmt"

	"github.com/segalloc/segalloc/allocator"
	"github.com/segalloc/segalloc/occupancy"
	"github.com/segalloc/segalloc/trace"
)

// Simulator drives an allocator.Manager through a query sequence and keeps
// the per-query handle table that free queries reference. It owns the
// boundary responsibilities the core deliberately does not have: request
// validation, translating query references into handles, and mapping frees
// of failed or already-freed allocations to no-ops.
//
// A Simulator is single-threaded; it processes one sequential request
// stream.
type Simulator struct {
	mgr        *allocator.Manager
	memorySize int

	// handles holds one slot per applied query: the live segment for a
	// granted allocation, nil for failures, frees and released blocks.
	handles []*allocator.Segment

	failures int

	logger *Logger
	tracer *trace.Writer
	occ    *occupancy.Tracker
	stats  StatsCollector
}

// New creates a simulator over the address range [1, memorySize].
func New(memorySize int, optFns ...Option) (*Simulator, error) {
	if memorySize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMemorySize, memorySize)
	}

	o := options{
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	s := &Simulator{
		mgr:        allocator.New(memorySize),
		memorySize: memorySize,
		logger:     o.logger,
		tracer:     o.tracer,
		stats:      o.stats,
	}
	if o.occupancy {
		s.occ = occupancy.New(memorySize)
	}
	return s, nil
}

// Run applies queries in order and returns one response per allocation
// query, in original query order. Free queries produce no response. On a
// validation error the responses produced so far are returned alongside it.
func (s *Simulator) Run(queries []Query) ([]AllocationResponse, error) {
	responses := make([]AllocationResponse, 0, len(queries))
	for _, q := range queries {
		resp, ok, err := s.Apply(q)
		if err != nil {
			return responses, err
		}
		if ok {
			responses = append(responses, resp)
		}
	}
	s.logger.LogRun(s.memorySize, len(s.handles), len(responses), s.failures)
	return responses, nil
}

// Apply executes a single query. The returned bool reports whether the
// query produced a response (allocations do, frees do not).
func (s *Simulator) Apply(q Query) (AllocationResponse, bool, error) {
	switch q := q.(type) {
	case AllocateQuery:
		resp, err := s.applyAllocate(q)
		return resp, err == nil, err
	case FreeQuery:
		return AllocationResponse{}, false, s.applyFree(q)
	default:
		// Query is a closed set; a third variant cannot be constructed
		// outside this package.
		panic(fmt.Sprintf("segalloc: unknown query type %T", q))
	}
}

func (s *Simulator) applyAllocate(q AllocateQuery) (AllocationResponse, error) {
	queryIndex := len(s.handles) + 1
	if q.Size < 1 {
		return AllocationResponse{}, fmt.Errorf("query %d: %w, got %d", queryIndex, ErrInvalidQuerySize, q.Size)
	}

	seg := s.mgr.Allocate(q.Size)
	s.handles = append(s.handles, seg)

	if seg == nil {
		s.failures++
		if s.stats != nil {
			s.stats.RecordFailure(q.Size)
		}
		s.logger.LogAllocate(queryIndex, q.Size, 0, false)
		if err := s.record(trace.Entry{Kind: trace.KindAllocate, Size: q.Size, Addr: -1}); err != nil {
			return FailedAllocation(), err
		}
		return FailedAllocation(), nil
	}

	if s.occ != nil {
		s.occ.MarkRange(seg.Left(), seg.Size())
	}
	if s.stats != nil {
		s.stats.RecordAllocation(seg.Size(), seg.Left())
	}
	s.logger.LogAllocate(queryIndex, q.Size, seg.Left(), true)
	if err := s.record(trace.Entry{Kind: trace.KindAllocate, Size: q.Size, Addr: seg.Left()}); err != nil {
		return SuccessfulAllocation(seg.Left()), err
	}
	return SuccessfulAllocation(seg.Left()), nil
}

func (s *Simulator) applyFree(q FreeQuery) error {
	queryIndex := len(s.handles) + 1
	if q.QueryIndex < 1 || q.QueryIndex > len(s.handles) {
		return &ErrInvalidQueryReference{QueryIndex: queryIndex, Referenced: q.QueryIndex}
	}

	seg := s.handles[q.QueryIndex-1]
	noop := seg == nil
	if !noop {
		left, size := seg.Left(), seg.Size()
		s.mgr.Free(seg)
		s.handles[q.QueryIndex-1] = nil
		if s.occ != nil {
			s.occ.ClearRange(left, size)
		}
		if s.stats != nil {
			s.stats.RecordFree(size)
		}
	}
	s.handles = append(s.handles, nil)

	s.logger.LogFree(queryIndex, q.QueryIndex, noop)
	return s.record(trace.Entry{Kind: trace.KindFree, Ref: q.QueryIndex, Noop: noop})
}

func (s *Simulator) record(e trace.Entry) error {
	if s.tracer == nil {
		return nil
	}
	return s.tracer.Append(e)
}

// MemorySize returns the size of the simulated address range.
func (s *Simulator) MemorySize() int { return s.memorySize }

// Allocator exposes the underlying manager for inspection.
func (s *Simulator) Allocator() *allocator.Manager { return s.mgr }

// Occupancy returns the allocated-address tracker, or nil unless the
// simulator was built with WithOccupancy.
func (s *Simulator) Occupancy() *occupancy.Tracker { return s.occ }
