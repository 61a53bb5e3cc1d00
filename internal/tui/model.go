package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"queryblast/internal/runner"
)

const tickInterval = 200 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")).MarginBottom(1)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	subtle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type tickMsg time.Time

// Model is the live progress view for a single run. It polls the runner's
// accumulator on a tick and quits itself when the run drains.
type Model struct {
	Runner    *runner.Runner
	Progress  progress.Model
	StartTime time.Time
	Quitting  bool
	Width     int
}

func NewModel(r *runner.Runner) Model {
	return Model{
		Runner:    r,
		Progress:  progress.New(progress.WithDefaultGradient()),
		StartTime: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Progress.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.Quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		pct := m.percentDone()
		cmd := m.Progress.SetPercent(pct)

		if m.Runner.Finished() && m.Runner.Inflight() == 0 {
			m.Quitting = true
			return m, tea.Quit
		}
		return m, tea.Batch(cmd, tickCmd())

	case progress.FrameMsg:
		progressModel, cmd := m.Progress.Update(msg)
		m.Progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) percentDone() float64 {
	cfg := m.Runner.Cfg
	var pct float64
	if cfg.Duration > 0 {
		pct = float64(time.Since(m.StartTime)) / float64(cfg.Duration)
	} else if cfg.TotalCalls > 0 {
		snap := m.Runner.Stats.Snapshot()
		pct = float64(snap.Total) / float64(cfg.TotalCalls)
	}
	if pct > 1.0 {
		pct = 1.0
	}
	return pct
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	s := strings.Builder{}
	cfg := m.Runner.Cfg
	snap := m.Runner.Stats.Snapshot()

	s.WriteString(titleStyle.Render("queryblast"))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Endpoint: %s\n", cfg.URL))
	if cfg.Duration > 0 {
		s.WriteString(fmt.Sprintf("Pattern: %s | Concurrency: %d | Budget: %s | Strategy: %s\n",
			cfg.Pattern, cfg.Concurrency, cfg.Duration, m.Runner.Strategy))
	} else {
		s.WriteString(fmt.Sprintf("Pattern: %s | Concurrency: %d | Calls: %d | Strategy: %s\n",
			cfg.Pattern, cfg.Concurrency, cfg.TotalCalls, m.Runner.Strategy))
	}
	s.WriteString(subtle.Render(fmt.Sprintf("Elapsed: %s", time.Since(m.StartTime).Round(time.Second))))
	s.WriteString("\n\n")

	leftCol := fmt.Sprintf(
		"Calls:    %d\nInflight: %d\nFailed:   %s",
		snap.Total, m.Runner.Inflight(),
		failText(snap.Fail),
	)
	rightCol := fmt.Sprintf(
		"Latency (live)\n  P50: %.1f ms\n  P90: %.1f ms\n  P99: %.1f ms\n  Max: %.1f ms",
		snap.P50Ms, snap.P90Ms, snap.P99Ms, snap.MaxMs,
	)
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(24).Render(leftCol),
		lipgloss.NewStyle().Width(30).Render(rightCol),
	))

	s.WriteString("\n\n")
	s.WriteString(m.Progress.View())
	s.WriteString("\n")
	s.WriteString(subtle.Render("Press q to quit"))

	return s.String()
}

func failText(fail uint64) string {
	if fail == 0 {
		return "0"
	}
	return errStyle.Render(fmt.Sprintf("%d", fail))
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
