package segalloc

// StatsCollector receives simulator lifecycle events. Implementations need
// not be safe for concurrent use; the simulator is single-threaded.
type StatsCollector interface {
	// RecordAllocation is called for every granted allocation.
	RecordAllocation(size, addr int)
	// RecordFailure is called for every allocation that found no segment.
	RecordFailure(size int)
	// RecordFree is called for every free that actually released a block.
	RecordFree(size int)
}

// Stats is a snapshot of counters gathered by BasicStatsCollector.
type Stats struct {
	Allocations uint64
	Failures    uint64
	Frees       uint64
	// PeakUsed is the maximum number of simultaneously allocated
	// addresses observed.
	PeakUsed int
}

// BasicStatsCollector is a simple in-memory StatsCollector.
type BasicStatsCollector struct {
	stats Stats
	used  int
}

// RecordAllocation implements StatsCollector.
func (c *BasicStatsCollector) RecordAllocation(size, _ int) {
	c.stats.Allocations++
	c.used += size
	if c.used > c.stats.PeakUsed {
		c.stats.PeakUsed = c.used
	}
}

// RecordFailure implements StatsCollector.
func (c *BasicStatsCollector) RecordFailure(int) {
	c.stats.Failures++
}

// RecordFree implements StatsCollector.
func (c *BasicStatsCollector) RecordFree(size int) {
	c.stats.Frees++
	c.used -= size
}

// Stats returns a snapshot of the collected counters.
func (c *BasicStatsCollector) Stats() Stats {
	return c.stats
}
