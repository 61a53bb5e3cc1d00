package report

import (
	"math"
	"sort"
	"time"

	"queryblast/internal/stats"
)

// Connection strategy labels used in reports and verdicts.
const (
	StrategyShared = "shared"
	StrategyFresh  = "fresh"
)

// Bucket is one row of the latency histogram.
type Bucket struct {
	Range string `json:"range"`
	Count uint64 `json:"count"`
}

// Report is the read-only view over a finished run. Built once, never
// mutated. Latency fields are milliseconds.
type Report struct {
	Pattern  string `json:"pattern,omitempty"`
	Strategy string `json:"strategy,omitempty"`

	Duration    float64 `json:"duration"`
	QPS         float64 `json:"qps"`
	TotalCalls  uint64  `json:"totalCalls"`
	Success     uint64  `json:"successCount"`
	Failures    uint64  `json:"failureCount"`
	AvgLatency  float64 `json:"avgLatency"`
	MedianLat   float64 `json:"medianLatency"`
	P95Latency  float64 `json:"p95Latency"`
	P99Latency  float64 `json:"p99Latency"`
	MinLatency  float64 `json:"minLatency"`
	MaxLatency  float64 `json:"maxLatency"`
	TotalMB     float64 `json:"totalMB"`
	SuccessRate float64 `json:"successRate"`

	Buckets []Bucket `json:"latencyBuckets"`
	Errors  []string `json:"errors,omitempty"`
}

var bucketRanges = [stats.NumBuckets]string{
	"0-50ms", "50-100ms", "100-200ms", "200-500ms", "500ms+",
}

// Build reduces a finished accumulator into a Report. Degenerate runs
// (zero calls, zero successes) yield zero-valued fields, never NaN/Inf.
func Build(acc *stats.Accumulator, elapsed time.Duration) Report {
	total, success, fail := acc.Totals()

	r := Report{
		Duration:   elapsed.Seconds(),
		TotalCalls: total,
		Success:    success,
		Failures:   fail,
		TotalMB:    float64(acc.SumBytes()) / (1 << 20),
		Errors:     acc.Errors(),
	}

	if elapsed > 0 && total > 0 {
		r.QPS = float64(total) / elapsed.Seconds()
	}
	if total > 0 {
		r.SuccessRate = float64(success) / float64(total) * 100
	}

	if success > 0 {
		lat := toMillis(acc.Latencies())
		sort.Float64s(lat)

		r.AvgLatency = durMillis(acc.SumLatency()) / float64(success)
		r.MedianLat = Median(lat)
		r.P95Latency = NearestRank(lat, 95)
		r.P99Latency = NearestRank(lat, 99)
		r.MinLatency = durMillis(acc.MinLatency())
		r.MaxLatency = durMillis(acc.MaxLatency())
	}

	counts := acc.Buckets()
	r.Buckets = make([]Bucket, stats.NumBuckets)
	for i, label := range bucketRanges {
		r.Buckets[i] = Bucket{Range: label, Count: counts[i]}
	}

	return r
}

// NearestRank returns the p-th percentile of ascending-sorted values using
// the nearest-rank method: index ceil(p/100*n)-1, clamped to [0,n-1].
// No interpolation, so results match literal samples exactly.
func NearestRank(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

// Median of ascending-sorted values: mean of the central pair for even
// length, the central element for odd.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func toMillis(ds []time.Duration) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = durMillis(d)
	}
	return out
}

func durMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
