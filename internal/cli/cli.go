package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"queryblast/internal/pattern"
	"queryblast/internal/report"
	"queryblast/internal/runner"
	"queryblast/internal/storage"
	"queryblast/internal/tui"
)

// Options selects how a run is driven and rendered.
type Options struct {
	Config runner.Config

	// Live shows the bubbletea progress view. Plain mode falls back to a
	// single-line ticker. JSON suppresses all progress output.
	Live bool
	JSON bool
}

// Start validates the config, drives the run (or comparison), renders the
// report, and persists it to history. Configuration errors return before
// any call is issued.
func Start(opts Options) error {
	cfg := opts.Config
	cfg.Normalize()

	if err := pattern.NewResolver().Validate(cfg.Pattern); err != nil {
		return err
	}
	if cfg.URL == "" {
		return runner.ErrMissingEndpoint
	}

	if cfg.Mode == runner.ModeBoth {
		return runBoth(cfg, opts)
	}
	return runSingle(cfg, opts)
}

func runSingle(cfg runner.Config, opts Options) error {
	r, err := runner.New(cfg, cfg.Mode)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- r.Run(ctx)
	}()

	switch {
	case opts.JSON:
		if err := <-runErr; err != nil {
			return err
		}
	case opts.Live:
		p := tea.NewProgram(tui.NewModel(r))
		if _, err := p.Run(); err != nil {
			return err
		}
		cancel()
		if err := <-runErr; err != nil {
			return err
		}
	default:
		printHeader(cfg)
		if err := waitWithProgress(r, runErr); err != nil {
			return err
		}
	}

	rep := r.Report()
	return finish(cfg, rep, opts)
}

func runBoth(cfg runner.Config, opts Options) error {
	if !opts.JSON {
		printHeader(cfg)
		fmt.Println("Running both strategies sequentially (shared first)...")
	}

	cmp, err := runner.Compare(context.Background(), cfg)
	if err != nil {
		return err
	}

	if opts.JSON {
		data, err := cmp.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Println(cmp.Text())
	}

	saveHistory(cfg, cmp.Shared)
	saveHistory(cfg, cmp.Fresh)

	if cfg.OutPrefix != "" {
		if err := report.WriteJSONFile(cfg.OutPrefix, cmp); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}

func finish(cfg runner.Config, rep report.Report, opts Options) error {
	if opts.JSON {
		data, err := rep.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Println(rep.Text())
	}

	saveHistory(cfg, rep)

	if cfg.OutPrefix != "" {
		if err := report.WriteJSONFile(cfg.OutPrefix, rep); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		if !opts.JSON {
			fmt.Printf("Report saved to %s.json\n", cfg.OutPrefix)
		}
	}
	return nil
}

// saveHistory is best-effort: a broken history store never fails a run.
func saveHistory(cfg runner.Config, rep report.Report) {
	store, err := storage.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Save(storage.NewRecord(cfg, rep)); err != nil {
		fmt.Fprintf(os.Stderr, "history save failed: %v\n", err)
	}
}

func printHeader(cfg runner.Config) {
	fmt.Printf("\nQUERYBLAST LOAD TEST\n")
	fmt.Printf("======================================================================\n")
	fmt.Printf("Endpoint    : %s\n", cfg.URL)
	fmt.Printf("Pattern     : %s\n", cfg.Pattern)
	if cfg.Duration > 0 {
		fmt.Printf("Budget      : %s\n", cfg.Duration)
	} else {
		fmt.Printf("Total Calls : %d\n", cfg.TotalCalls)
	}
	fmt.Printf("Concurrency : %d\n", cfg.Concurrency)
	fmt.Printf("Mode        : %s\n", cfg.Mode)
	fmt.Printf("Timeout     : %s\n", cfg.Timeout)
	fmt.Printf("======================================================================\n\n")
}

func waitWithProgress(r *runner.Runner, runErr chan error) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case err := <-runErr:
			fmt.Println()
			return err
		case <-ticker.C:
			snap := r.Stats.Snapshot()
			pct := percentDone(r, snap.Total, start)
			fmt.Printf("\r%s %3.0f%% | Calls: %d | Inf: %d | Err: %d | P99: %.1fms",
				progressBar(pct, 20), pct*100,
				snap.Total, r.Inflight(), snap.Fail, snap.P99Ms)
		}
	}
}

func percentDone(r *runner.Runner, total uint64, start time.Time) float64 {
	cfg := r.Cfg
	var pct float64
	if cfg.Duration > 0 {
		pct = time.Since(start).Seconds() / cfg.Duration.Seconds()
	} else if cfg.TotalCalls > 0 {
		pct = float64(total) / float64(cfg.TotalCalls)
	}
	if pct > 1.0 {
		pct = 1.0
	}
	return pct
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}
