package report

// Verdict names the winning strategy per axis and the improvement
// percentage relative to the non-winning report. Ties leave the winner
// empty and the percentage zero.
type Verdict struct {
	LatencyWinner     string  `json:"latencyWinner,omitempty"`
	LatencyGainPct    float64 `json:"latencyGainPct"`
	ThroughputWinner  string  `json:"throughputWinner,omitempty"`
	ThroughputGainPct float64 `json:"throughputGainPct"`
}

// Comparison pairs the two strategy reports with the derived verdict.
type Comparison struct {
	Pattern string  `json:"pattern,omitempty"`
	Shared  Report  `json:"shared"`
	Fresh   Report  `json:"fresh"`
	Verdict Verdict `json:"verdict"`
}

// Compare diffs the two finished reports. Lower average latency wins the
// latency axis, higher QPS wins the throughput axis.
func Compare(shared, fresh Report) Comparison {
	c := Comparison{Pattern: shared.Pattern, Shared: shared, Fresh: fresh}

	switch {
	case shared.AvgLatency < fresh.AvgLatency:
		c.Verdict.LatencyWinner = StrategyShared
		c.Verdict.LatencyGainPct = pctOf(fresh.AvgLatency-shared.AvgLatency, fresh.AvgLatency)
	case fresh.AvgLatency < shared.AvgLatency:
		c.Verdict.LatencyWinner = StrategyFresh
		c.Verdict.LatencyGainPct = pctOf(shared.AvgLatency-fresh.AvgLatency, shared.AvgLatency)
	}

	switch {
	case shared.QPS > fresh.QPS:
		c.Verdict.ThroughputWinner = StrategyShared
		c.Verdict.ThroughputGainPct = pctOf(shared.QPS-fresh.QPS, fresh.QPS)
	case fresh.QPS > shared.QPS:
		c.Verdict.ThroughputWinner = StrategyFresh
		c.Verdict.ThroughputGainPct = pctOf(fresh.QPS-shared.QPS, shared.QPS)
	}

	return c
}

func pctOf(diff, base float64) float64 {
	if base == 0 {
		return 0
	}
	return diff / base * 100
}
