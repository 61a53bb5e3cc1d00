package runner

import (
	"context"

	"queryblast/internal/report"
)

// Compare runs the identical workload once per connection strategy and
// diffs the two reports. Sub-runs execute sequentially, shared first, so
// they never compete for sockets or the endpoint's capacity and skew the
// measurement. Each sub-run owns its accumulator.
func Compare(ctx context.Context, cfg Config) (report.Comparison, error) {
	sharedFactory, err := factoryFor(cfg, ModeShared)
	if err != nil {
		return report.Comparison{}, err
	}
	freshFactory, err := factoryFor(cfg, ModeFresh)
	if err != nil {
		return report.Comparison{}, err
	}
	return CompareWithFactories(ctx, cfg, sharedFactory, freshFactory)
}

// CompareWithFactories is Compare with injected connection construction.
func CompareWithFactories(ctx context.Context, cfg Config, sharedFactory, freshFactory ClientFactory) (report.Comparison, error) {
	sharedRun := NewWithFactory(cfg, ModeShared, sharedFactory)
	if err := sharedRun.Run(ctx); err != nil {
		return report.Comparison{}, err
	}

	freshRun := NewWithFactory(cfg, ModeFresh, freshFactory)
	if err := freshRun.Run(ctx); err != nil {
		return report.Comparison{}, err
	}

	return report.Compare(sharedRun.Report(), freshRun.Report()), nil
}
