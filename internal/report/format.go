package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			Padding(0, 1)
)

// Text renders the report for the console.
func (r Report) Text() string {
	s := strings.Builder{}

	header := "QUERY LOAD RESULTS"
	if r.Strategy != "" {
		header = fmt.Sprintf("QUERY LOAD RESULTS [%s]", r.Strategy)
	}
	s.WriteString(titleStyle.Render(header))
	s.WriteString("\n")

	overview := fmt.Sprintf(
		"Duration     : %.2fs\nCalls        : %d\nQPS          : %.2f\nSuccess Rate : %.1f%%\nTransferred  : %.2f MB",
		r.Duration, r.TotalCalls, r.QPS, r.SuccessRate, r.TotalMB,
	)
	s.WriteString(boxStyle.Render(overview))
	s.WriteString("\n")

	latency := fmt.Sprintf(
		"Latency (ms)\n  Avg    : %.2f\n  Median : %.2f\n  P95    : %.2f\n  P99    : %.2f\n  Min    : %.2f\n  Max    : %.2f",
		r.AvgLatency, r.MedianLat, r.P95Latency, r.P99Latency, r.MinLatency, r.MaxLatency,
	)
	s.WriteString(boxStyle.Render(latency))
	s.WriteString("\n")

	hist := strings.Builder{}
	hist.WriteString("Distribution")
	for _, b := range r.Buckets {
		hist.WriteString(fmt.Sprintf("\n  %-10s %d", b.Range, b.Count))
	}
	s.WriteString(boxStyle.Render(hist.String()))
	s.WriteString("\n")

	if len(r.Errors) > 0 {
		s.WriteString(errStyle.Render(fmt.Sprintf("Failures: %d (first %d shown)", r.Failures, len(r.Errors))))
		for _, e := range r.Errors {
			s.WriteString("\n  " + labelStyle.Render(e))
		}
		s.WriteString("\n")
	}

	return s.String()
}

// Text renders the comparison, both reports plus the verdict.
func (c Comparison) Text() string {
	s := strings.Builder{}
	s.WriteString(c.Shared.Text())
	s.WriteString("\n")
	s.WriteString(c.Fresh.Text())
	s.WriteString("\n")

	s.WriteString(titleStyle.Render("VERDICT"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(c.verdictLines()))
	s.WriteString("\n")
	return s.String()
}

func (c Comparison) verdictLines() string {
	v := c.Verdict
	lat := "Latency    : no difference"
	if v.LatencyWinner != "" {
		lat = fmt.Sprintf("Latency    : %s is %.1f%% faster (%.2fms vs %.2fms avg)",
			valueStyle.Render(v.LatencyWinner), v.LatencyGainPct,
			c.Shared.AvgLatency, c.Fresh.AvgLatency)
	}
	qps := "Throughput : no difference"
	if v.ThroughputWinner != "" {
		qps = fmt.Sprintf("Throughput : %s does %.1f%% more QPS (%.2f vs %.2f)",
			valueStyle.Render(v.ThroughputWinner), v.ThroughputGainPct,
			c.Shared.QPS, c.Fresh.QPS)
	}
	return lat + "\n" + qps
}

// JSON marshals the report as the machine-readable document.
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (c Comparison) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// WriteJSONFile writes any report shape to <prefix>.json.
func WriteJSONFile(prefix string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(prefix+".json", data, 0644)
}
