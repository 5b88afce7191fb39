// Package perf collects opt-in timing samples and counters. Set
// TPROMPT_PROFILE=1 to enable it; summaries go to the log every
// TPROMPT_PROFILE_INTERVAL_MS (default 5s) and on Flush.
package perf

import (
	"cmp"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andyrewlee/tprompt/internal/logging"
)

const (
	windowSize      = 256
	defaultInterval = 5 * time.Second
)

// series aggregates one timed name. The newest windowSize samples feed p95.
type series struct {
	count    int64
	total    time.Duration
	min, max time.Duration
	window   []time.Duration
	next     int
}

func (s *series) add(d time.Duration) {
	if s.count == 0 || d < s.min {
		s.min = d
	}
	s.max = max(s.max, d)
	s.count++
	s.total += d
	if len(s.window) < windowSize {
		s.window = append(s.window, d)
		return
	}
	s.window[s.next] = d
	s.next = (s.next + 1) % windowSize
}

type summary struct {
	name               string
	count              int64
	avg, min, max, p95 time.Duration
}

type tally struct {
	name  string
	value int64
}

type registry struct {
	mu       sync.Mutex
	series   map[string]*series
	counters map[string]int64
}

func newRegistry() *registry {
	return &registry{series: map[string]*series{}, counters: map[string]int64{}}
}

func (r *registry) record(name string, d time.Duration) {
	r.mu.Lock()
	s := r.series[name]
	if s == nil {
		s = &series{}
		r.series[name] = s
	}
	s.add(d)
	r.mu.Unlock()
}

func (r *registry) count(name string, delta int64) {
	r.mu.Lock()
	r.counters[name] += delta
	r.mu.Unlock()
}

// drain returns everything gathered since the last drain, sorted by name,
// and starts over.
func (r *registry) drain() ([]summary, []tally) {
	r.mu.Lock()
	all, counters := r.series, r.counters
	r.series, r.counters = map[string]*series{}, map[string]int64{}
	r.mu.Unlock()

	sums := make([]summary, 0, len(all))
	for name, s := range all {
		sums = append(sums, summary{
			name:  name,
			count: s.count,
			avg:   s.total / time.Duration(s.count),
			min:   s.min,
			max:   s.max,
			p95:   percentile(s.window, 0.95),
		})
	}
	tallies := make([]tally, 0, len(counters))
	for name, v := range counters {
		if v != 0 {
			tallies = append(tallies, tally{name: name, value: v})
		}
	}
	slices.SortFunc(sums, func(a, b summary) int { return cmp.Compare(a.name, b.name) })
	slices.SortFunc(tallies, func(a, b tally) int { return cmp.Compare(a.name, b.name) })
	return sums, tallies
}

// percentile uses the nearest-rank method over a copy of samples.
func percentile(samples []time.Duration, q float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	rank := int(math.Ceil(q*float64(len(sorted)))) - 1
	return sorted[min(max(rank, 0), len(sorted)-1)]
}

var (
	reg = newRegistry()

	enabled     atomic.Bool
	logInterval atomic.Int64
	lastLog     atomic.Int64
)

func init() {
	enabled.Store(envEnabled(os.Getenv("TPROMPT_PROFILE")))
	logInterval.Store(int64(envInterval(os.Getenv("TPROMPT_PROFILE_INTERVAL_MS"))))
}

// Enabled reports whether collection is on.
func Enabled() bool { return enabled.Load() }

// Time starts a measurement; call the result to record it under name.
func Time(name string) func() {
	if !enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() { Record(name, time.Since(start)) }
}

// Record adds one duration sample.
func Record(name string, d time.Duration) {
	if !enabled.Load() {
		return
	}
	reg.record(name, d)
	maybeLog()
}

// Count adds delta to a counter.
func Count(name string, delta int64) {
	if !enabled.Load() {
		return
	}
	reg.count(name, delta)
	maybeLog()
}

// Flush logs and resets everything gathered so far. reason is appended to
// the log prefix when set.
func Flush(reason string) {
	if !enabled.Load() {
		return
	}
	prefix := "PERF SUMMARY"
	if reason = strings.TrimSpace(reason); reason != "" {
		prefix += " " + reason
	}
	logSummary(prefix)
}

func maybeLog() {
	interval := logInterval.Load()
	if interval <= 0 {
		return
	}
	now := time.Now().UnixNano()
	last := lastLog.Load()
	if last != 0 && now-last < interval {
		return
	}
	if lastLog.CompareAndSwap(last, now) {
		logSummary("PERF")
	}
}

func logSummary(prefix string) {
	sums, tallies := reg.drain()
	for _, s := range sums {
		logging.Info("%s %s n=%d avg=%s p95=%s min=%s max=%s", prefix, s.name, s.count, s.avg, s.p95, s.min, s.max)
	}
	for _, t := range tallies {
		logging.Info("%s %s n=%d", prefix, t.name, t.value)
	}
}

func envEnabled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

func envInterval(raw string) time.Duration {
	ms, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || ms <= 0 {
		return defaultInterval
	}
	return time.Duration(ms) * time.Millisecond
}
