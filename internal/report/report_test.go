package report

import (
	"math"
	"testing"
	"time"

	"queryblast/internal/stats"
)

func TestNearestRank(t *testing.T) {
	// 20 sorted latencies 1..20: P95 index = ceil(19)-1 = 18 -> 19,
	// P99 index = ceil(19.8)-1 = 19 -> 20.
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i + 1)
	}

	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"p95 of 1..20", values, 95, 19},
		{"p99 of 1..20", values, 99, 20},
		{"p95 single", []float64{7}, 95, 7},
		{"p99 single", []float64{7}, 99, 7},
		{"empty", nil, 95, 0},
		{"p95 of five", []float64{10, 20, 30, 40, 50}, 95, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearestRank(tt.sorted, tt.p); got != tt.want {
				t.Errorf("NearestRank(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		want   float64
	}{
		{"even length", []float64{10, 20, 30, 40}, 25},
		{"odd length", []float64{10, 20, 30}, 20},
		{"single", []float64{42}, 42},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.sorted); got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.sorted, got, tt.want)
			}
		})
	}
}

func TestBuildAllSuccess(t *testing.T) {
	acc := stats.NewAccumulator()
	for i := 1; i <= 50; i++ {
		acc.Record(stats.CallOutcome{
			Index:   i,
			Success: true,
			Latency: 40 * time.Millisecond,
			Bytes:   1 << 20, // 1 MB each
		})
	}

	rep := Build(acc, 2*time.Second)

	if rep.TotalCalls != 50 || rep.Success != 50 || rep.Failures != 0 {
		t.Fatalf("counts = (%d,%d,%d), want (50,50,0)", rep.TotalCalls, rep.Success, rep.Failures)
	}
	if rep.QPS != 25 {
		t.Errorf("QPS = %v, want 25", rep.QPS)
	}
	if rep.AvgLatency != 40 {
		t.Errorf("AvgLatency = %v, want 40", rep.AvgLatency)
	}
	if rep.MedianLat != 40 || rep.P95Latency != 40 || rep.P99Latency != 40 {
		t.Errorf("median/p95/p99 = %v/%v/%v, want 40/40/40", rep.MedianLat, rep.P95Latency, rep.P99Latency)
	}
	if rep.MinLatency != 40 || rep.MaxLatency != 40 {
		t.Errorf("min/max = %v/%v, want 40/40", rep.MinLatency, rep.MaxLatency)
	}
	if rep.SuccessRate != 100.0 {
		t.Errorf("SuccessRate = %v, want 100.0", rep.SuccessRate)
	}
	if rep.TotalMB != 50 {
		t.Errorf("TotalMB = %v, want 50", rep.TotalMB)
	}
	if rep.Buckets[0].Count != 50 {
		t.Errorf("0-50ms bucket = %d, want 50", rep.Buckets[0].Count)
	}
	for i := 1; i < len(rep.Buckets); i++ {
		if rep.Buckets[i].Count != 0 {
			t.Errorf("bucket %s = %d, want 0", rep.Buckets[i].Range, rep.Buckets[i].Count)
		}
	}
}

func TestBuildWithFailures(t *testing.T) {
	acc := stats.NewAccumulator()
	for i := 1; i <= 5; i++ {
		acc.Record(stats.CallOutcome{Index: i, Err: "rate limited"})
	}
	for i := 6; i <= 50; i++ {
		acc.Record(stats.CallOutcome{Index: i, Success: true, Latency: 40 * time.Millisecond, Bytes: 100})
	}

	rep := Build(acc, time.Second)

	if rep.Failures != 5 || rep.Success != 45 {
		t.Fatalf("fail/success = %d/%d, want 5/45", rep.Failures, rep.Success)
	}
	if rep.SuccessRate != 90.0 {
		t.Errorf("SuccessRate = %v, want 90.0", rep.SuccessRate)
	}
	if len(rep.Errors) != 5 {
		t.Fatalf("retained %d errors, want 5", len(rep.Errors))
	}
	for _, e := range rep.Errors {
		if e != "rate limited" {
			t.Errorf("error = %q, want %q", e, "rate limited")
		}
	}
}

func TestBuildAllFailures(t *testing.T) {
	acc := stats.NewAccumulator()
	for i := 1; i <= 10; i++ {
		acc.Record(stats.CallOutcome{Index: i, Err: "connection refused"})
	}

	rep := Build(acc, time.Second)

	if rep.SuccessRate != 0.0 {
		t.Errorf("SuccessRate = %v, want 0.0", rep.SuccessRate)
	}
	// Latency fields default to 0 rather than NaN when nothing succeeded.
	for name, v := range map[string]float64{
		"avg": rep.AvgLatency, "median": rep.MedianLat,
		"p95": rep.P95Latency, "p99": rep.P99Latency,
		"min": rep.MinLatency, "max": rep.MaxLatency,
	} {
		if v != 0 {
			t.Errorf("%s latency = %v, want 0", name, v)
		}
	}
	if rep.QPS != 10 {
		t.Errorf("QPS = %v, want 10", rep.QPS)
	}
}

func TestBuildZeroCalls(t *testing.T) {
	rep := Build(stats.NewAccumulator(), 0)

	for name, v := range map[string]float64{
		"qps": rep.QPS, "successRate": rep.SuccessRate,
		"avg": rep.AvgLatency, "totalMB": rep.TotalMB,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, NaN/Inf must not leak", name, v)
		}
		if v != 0 {
			t.Errorf("%s = %v, want 0", name, v)
		}
	}
	if len(rep.Buckets) != stats.NumBuckets {
		t.Errorf("bucket count = %d, want %d", len(rep.Buckets), stats.NumBuckets)
	}
}
