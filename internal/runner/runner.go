package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"queryblast/internal/pattern"
	"queryblast/internal/report"
	"queryblast/internal/stats"
)

// Runner drives one run under one connection strategy: batches of up to
// Concurrency calls, each batch joined before the next starts, outcomes
// fed to a run-owned accumulator.
type Runner struct {
	Cfg      Config
	Strategy string
	Stats    *stats.Accumulator
	Resolver *pattern.Resolver

	factory ClientFactory

	issued   uint64
	inflight int64
	finished int32

	start   time.Time
	elapsed time.Duration
}

// New builds a runner that talks HTTP to the configured endpoint.
func New(cfg Config, strategy string) (*Runner, error) {
	cfg.Normalize()
	factory, err := factoryFor(cfg, strategy)
	if err != nil {
		return nil, err
	}
	return NewWithFactory(cfg, strategy, factory), nil
}

// NewWithFactory injects the connection handle construction, used by tests
// and by the comparator.
func NewWithFactory(cfg Config, strategy string, factory ClientFactory) *Runner {
	cfg.Normalize()
	return &Runner{
		Cfg:      cfg,
		Strategy: strategy,
		Stats:    stats.NewAccumulator(),
		Resolver: pattern.NewResolver(),
		factory:  factory,
	}
}

// Run executes the workload to completion. Configuration errors (unknown
// pattern, unusable endpoint) return before any call is issued; per-call
// failures are recorded and never abort the run.
func (r *Runner) Run(ctx context.Context) error {
	defer atomic.StoreInt32(&r.finished, 1)

	if err := r.Resolver.Validate(r.Cfg.Pattern); err != nil {
		return err
	}

	var shared Client
	if r.Strategy != ModeFresh {
		c, err := r.factory()
		if err != nil {
			return err
		}
		shared = c
	}

	r.start = time.Now()
	if r.Cfg.Duration > 0 {
		r.runDuration(ctx, shared)
	} else {
		r.runCount(ctx, shared)
	}
	r.elapsed = time.Since(r.start)
	return nil
}

// runCount issues exactly TotalCalls calls in batches of
// min(Concurrency, remaining).
func (r *Runner) runCount(ctx context.Context, shared Client) {
	remaining := r.Cfg.TotalCalls
	for remaining > 0 {
		n := r.Cfg.Concurrency
		if remaining < n {
			n = remaining
		}
		r.runBatch(ctx, shared, n)
		remaining -= n

		if remaining > 0 && r.Cfg.Delay > 0 {
			time.Sleep(r.Cfg.Delay)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// runDuration issues full-concurrency batches until the wall clock budget
// is spent. An in-flight batch is never aborted, only new batches stop.
func (r *Runner) runDuration(ctx context.Context, shared Client) {
	for time.Since(r.start) < r.Cfg.Duration {
		r.runBatch(ctx, shared, r.Cfg.Concurrency)
		if ctx.Err() != nil {
			return
		}
	}
}

// runBatch launches n calls concurrently and blocks until every one has
// resolved. Call indices are assigned in launch order, 1-based, monotonic
// across the whole run.
func (r *Runner) runBatch(ctx context.Context, shared Client, n int) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		index := int(atomic.AddUint64(&r.issued, 1))
		// Pattern was validated before dispatch; resolve cannot fail here.
		size, _ := r.Resolver.Resolve(r.Cfg.Pattern, index-1)

		wg.Add(1)
		go func() {
			defer wg.Done()
			r.executeCall(ctx, shared, index, size)
		}()
	}
	wg.Wait()
}

func (r *Runner) executeCall(ctx context.Context, shared Client, index, size int) {
	atomic.AddInt64(&r.inflight, 1)
	defer atomic.AddInt64(&r.inflight, -1)

	client := shared
	if client == nil {
		c, err := r.factory()
		if err != nil {
			r.Stats.Record(stats.CallOutcome{Index: index, Err: err.Error()})
			return
		}
		client = c
	}

	start := time.Now()
	payload, err := client.Query(ctx, size)
	latency := time.Since(start)

	if err != nil {
		r.Stats.Record(stats.CallOutcome{Index: index, Err: err.Error()})
		return
	}
	r.Stats.Record(stats.CallOutcome{
		Index:   index,
		Success: true,
		Latency: latency,
		Bytes:   int64(len(payload)),
	})
}

// Report freezes the accumulated stats into the run's report.
func (r *Runner) Report() report.Report {
	rep := report.Build(r.Stats, r.elapsed)
	rep.Pattern = r.Cfg.Pattern
	rep.Strategy = r.Strategy
	return rep
}

func (r *Runner) Elapsed() time.Duration {
	return r.elapsed
}

func (r *Runner) Issued() uint64 {
	return atomic.LoadUint64(&r.issued)
}

func (r *Runner) Inflight() int64 {
	return atomic.LoadInt64(&r.inflight)
}

func (r *Runner) Finished() bool {
	return atomic.LoadInt32(&r.finished) == 1
}
