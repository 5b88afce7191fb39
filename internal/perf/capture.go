package perf

import "time"

// Sample is the aggregate of one timed name.
type Sample struct {
	Count int64
	Avg   time.Duration
	Max   time.Duration
	P95   time.Duration
}

// Capture collects measurements in-process without periodic logging. Tests
// use it to assert what a code path reported.
type Capture struct {
	prevEnabled  bool
	prevInterval int64
}

// StartCapture turns collection on, drops anything already buffered, and
// returns a Capture whose Stop restores the previous settings.
func StartCapture() *Capture {
	c := &Capture{prevEnabled: enabled.Load(), prevInterval: logInterval.Load()}
	enabled.Store(true)
	logInterval.Store(0)
	lastLog.Store(0)
	reg.drain()
	return c
}

// Take returns counters and samples gathered since the last Take and resets them.
func (c *Capture) Take() (map[string]int64, map[string]Sample) {
	sums, tallies := reg.drain()
	counts := make(map[string]int64, len(tallies))
	for _, t := range tallies {
		counts[t.name] = t.value
	}
	samples := make(map[string]Sample, len(sums))
	for _, s := range sums {
		samples[s.name] = Sample{Count: s.count, Avg: s.avg, Max: s.max, P95: s.p95}
	}
	return counts, samples
}

// Stop restores the settings in place before StartCapture.
func (c *Capture) Stop() {
	enabled.Store(c.prevEnabled)
	logInterval.Store(c.prevInterval)
}
