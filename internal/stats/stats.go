package stats

import (
	"sync"
	"time"
)

// CallOutcome is the immutable result of a single query call.
// Latency and Bytes are meaningful only on success, Err only on failure.
type CallOutcome struct {
	Index   int
	Success bool
	Latency time.Duration
	Bytes   int64
	Err     string
}

// Latency bucket upper bounds in milliseconds. Buckets are half-open:
// [0,50) [50,100) [100,200) [200,500) [500,inf).
var BucketBounds = [4]float64{50, 100, 200, 500}

const (
	NumBuckets = 5

	// MaxRetainedErrors caps the verbatim error sample; failures past the
	// cap are still counted.
	MaxRetainedErrors = 5
)

// Accumulator holds the run-scoped metrics. One instance per run (or per
// sub-run in comparison mode); all mutation goes through Record, which is
// safe to call from every member of a batch concurrently.
type Accumulator struct {
	mu sync.Mutex

	total   uint64
	success uint64
	fail    uint64

	sumLatency time.Duration
	minLatency time.Duration
	maxLatency time.Duration
	sumBytes   uint64

	latencies []time.Duration
	errors    []string
	buckets   [NumBuckets]uint64

	// live powers the progress view; report percentiles come from the
	// retained latencies instead.
	live *SafeHistogram
}

func NewAccumulator() *Accumulator {
	return &Accumulator{live: NewSafeHistogram()}
}

// Record folds one outcome into the running totals.
func (a *Accumulator) Record(o CallOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	if !o.Success {
		a.fail++
		if len(a.errors) < MaxRetainedErrors {
			a.errors = append(a.errors, o.Err)
		}
		return
	}

	a.success++
	a.sumLatency += o.Latency
	if a.success == 1 || o.Latency < a.minLatency {
		a.minLatency = o.Latency
	}
	if o.Latency > a.maxLatency {
		a.maxLatency = o.Latency
	}
	a.sumBytes += uint64(o.Bytes)
	a.latencies = append(a.latencies, o.Latency)
	a.buckets[bucketFor(o.Latency)]++
	a.live.RecordValue(o.Latency.Microseconds())
}

func bucketFor(d time.Duration) int {
	ms := float64(d) / float64(time.Millisecond)
	for i, bound := range BucketBounds {
		if ms < bound {
			return i
		}
	}
	return NumBuckets - 1
}

// Totals returns (total, success, fail) call counts.
func (a *Accumulator) Totals() (uint64, uint64, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total, a.success, a.fail
}

func (a *Accumulator) SumLatency() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sumLatency
}

// MinLatency is meaningful only when at least one call succeeded.
func (a *Accumulator) MinLatency() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.minLatency
}

func (a *Accumulator) MaxLatency() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxLatency
}

func (a *Accumulator) SumBytes() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sumBytes
}

// Latencies returns a copy of the retained successful-call latencies.
func (a *Accumulator) Latencies() []time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]time.Duration, len(a.latencies))
	copy(out, a.latencies)
	return out
}

// Errors returns a copy of the retained error sample (first
// MaxRetainedErrors failures).
func (a *Accumulator) Errors() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.errors))
	copy(out, a.errors)
	return out
}

func (a *Accumulator) Buckets() [NumBuckets]uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buckets
}

// ErrorRate returns the failure percentage over all calls so far.
func (a *Accumulator) ErrorRate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.total == 0 {
		return 0
	}
	return float64(a.fail) / float64(a.total) * 100
}

// Snapshot is a cheap copy of the live counters for the progress view.
type Snapshot struct {
	Total   uint64
	Success uint64
	Fail    uint64
	Bytes   uint64

	P50Ms float64
	P90Ms float64
	P99Ms float64
	MaxMs float64
}

func (a *Accumulator) Snapshot() Snapshot {
	a.mu.Lock()
	s := Snapshot{
		Total:   a.total,
		Success: a.success,
		Fail:    a.fail,
		Bytes:   a.sumBytes,
	}
	live := a.live
	a.mu.Unlock()

	s.P50Ms = float64(live.ValueAtQuantile(50)) / 1000.0
	s.P90Ms = float64(live.ValueAtQuantile(90)) / 1000.0
	s.P99Ms = float64(live.ValueAtQuantile(99)) / 1000.0
	s.MaxMs = float64(live.Max()) / 1000.0
	return s
}
