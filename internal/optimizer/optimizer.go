// Package optimizer sweeps a strategy's parameter grid against one
// instrument's fixed bar series and ranks the parameter combinations by a
// chosen metric.
package optimizer

import (
	"context"
	"math"
	"sort"

	"github.com/rxtech-lab/argo-screener/internal/backtest"
	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/internal/strategy"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ParamRange defines one swept parameter as an inclusive arithmetic range.
type ParamRange struct {
	Name string  `yaml:"name" validate:"required"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step" validate:"gt=0"`
}

// Values expands the range. Max is included when it lands on a step.
func (r ParamRange) Values() []float64 {
	var values []float64

	// Guard against float drift dropping the final value.
	for v := r.Min; v <= r.Max+r.Step*1e-9; v += r.Step {
		values = append(values, v)
	}

	return values
}

// Grid is an ordered set of parameter ranges. Combination order is
// deterministic: the last range varies fastest.
type Grid []ParamRange

// Combinations expands the grid into every parameter assignment.
func (g Grid) Combinations() ([]map[string]float64, error) {
	if len(g) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGrid, "empty parameter grid")
	}

	for _, r := range g {
		if r.Step <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidGrid, "parameter %s has non-positive step", r.Name)
		}

		if r.Max < r.Min {
			return nil, errors.Newf(errors.ErrCodeInvalidGrid, "parameter %s has max below min", r.Name)
		}
	}

	combos := []map[string]float64{{}}

	for _, r := range g {
		values := r.Values()
		expanded := make([]map[string]float64, 0, len(combos)*len(values))

		for _, combo := range combos {
			for _, value := range values {
				next := make(map[string]float64, len(combo)+1)
				for k, v := range combo {
					next[k] = v
				}

				next[r.Name] = value
				expanded = append(expanded, next)
			}
		}

		combos = expanded
	}

	return combos, nil
}

// Config controls an optimization run.
type Config struct {
	// Concurrency bounds the worker pool. Defaults to 4.
	Concurrency int `yaml:"concurrency" validate:"min=0"`
	// Lookback is the simulation window in daily bars. Defaults to one
	// trading year.
	Lookback int `yaml:"lookback" validate:"min=0"`
	// MinTrades drops combinations whose simulation produced fewer closed
	// trades from the ranking. Defaults to 3.
	MinTrades int `yaml:"min_trades" validate:"min=0"`
	// RankBy selects the metric combinations are sorted by, descending.
	// Defaults to profit factor.
	RankBy types.MetricName `yaml:"rank_by"`
	// ShowProgress renders a terminal progress bar during the sweep.
	ShowProgress bool `yaml:"show_progress"`
}

// Row is one parameter combination that evaluated successfully.
type Row struct {
	Params  map[string]float64   `yaml:"params"`
	Metrics types.MetricsSummary `yaml:"metrics"`
	// Passed reports whether the combination produced enough closed trades
	// to be ranked.
	Passed bool `yaml:"passed"`
}

// FailedRow records a combination that could not be evaluated.
type FailedRow struct {
	Params map[string]float64 `yaml:"params"`
	Reason string             `yaml:"reason"`
	Err    string             `yaml:"error"`
}

// Report is the outcome of one sweep.
type Report struct {
	Family string      `yaml:"family"`
	Symbol string      `yaml:"symbol"`
	Rows   []Row       `yaml:"rows"`
	Failed []FailedRow `yaml:"failed"`
}

// Succeeded returns the number of combinations evaluated without error.
func (r *Report) Succeeded() int {
	return len(r.Rows)
}

// Total returns the number of combinations attempted.
func (r *Report) Total() int {
	return len(r.Rows) + len(r.Failed)
}

// Ranked returns the rows that produced enough trades, sorted by the ranking
// metric descending. Ties keep grid order.
func (r *Report) Ranked(metric types.MetricName) []Row {
	ranked := make([]Row, 0, len(r.Rows))

	for _, row := range r.Rows {
		if row.Passed {
			ranked = append(ranked, row)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metrics.Value(metric) > ranked[j].Metrics.Value(metric)
	})

	return ranked
}

// Best returns the top-ranked row, or nil when every combination failed or
// no combination produced a defined metric.
func (r *Report) Best(metric types.MetricName) *Row {
	ranked := r.Ranked(metric)
	if len(ranked) == 0 {
		return nil
	}

	if math.IsInf(ranked[0].Metrics.Value(metric), -1) {
		return nil
	}

	best := ranked[0]

	return &best
}

// Optimizer sweeps parameter grids.
type Optimizer struct {
	registry *strategy.Registry
	config   Config
	log      *logger.Logger
}

// NewOptimizer creates an Optimizer. A nil logger is replaced with a no-op
// one.
func NewOptimizer(registry *strategy.Registry, config Config, log *logger.Logger) *Optimizer {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}

	if config.Lookback <= 0 {
		config.Lookback = backtest.DefaultLookback
	}

	if config.MinTrades <= 0 {
		config.MinTrades = 3
	}

	if !config.RankBy.IsValid() {
		config.RankBy = types.MetricProfitFactor
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Optimizer{
		registry: registry,
		config:   config,
		log:      log,
	}
}

// Optimize evaluates every grid combination of the named strategy family
// against the fixed daily and weekly series. A combination that fails to
// construct or evaluate becomes a FailedRow; an invalid grid aborts the
// sweep. Context cancellation stops the run between combinations and the
// rows gathered up to that point are returned alongside the abort error.
func (o *Optimizer) Optimize(ctx context.Context, family string, grid Grid, daily, weekly *types.Series) (*Report, error) {
	combos, err := grid.Combinations()
	if err != nil {
		return nil, err
	}

	type outcome struct {
		row    *Row
		failed *FailedRow
	}

	outcomes := make([]outcome, len(combos))

	var bar *progressbar.ProgressBar
	if o.config.ShowProgress {
		bar = progressbar.Default(int64(len(combos)), "optimizing")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.config.Concurrency)

	for i, params := range combos {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			row, failed := o.evaluateCombo(family, params, daily, weekly)
			outcomes[i] = outcome{row: row, failed: failed}

			if bar != nil {
				bar.Add(1)
			}

			return nil
		})
	}

	waitErr := group.Wait()

	symbol := ""
	if daily != nil {
		symbol = daily.Symbol
	}

	report := &Report{Family: family, Symbol: symbol}

	for _, result := range outcomes {
		switch {
		case result.row != nil:
			report.Rows = append(report.Rows, *result.row)
		case result.failed != nil:
			report.Failed = append(report.Failed, *result.failed)
		}
	}

	if waitErr != nil {
		// Combinations finished before the cancellation stay in the report.
		return report, errors.Wrap(errors.ErrCodeOptimizeAborted, "optimization aborted", waitErr)
	}

	o.log.Info("optimization finished",
		zap.String("family", family),
		zap.String("symbol", symbol),
		zap.Int("combinations", len(combos)),
		zap.Int("failed", len(report.Failed)))

	return report, nil
}

func (o *Optimizer) evaluateCombo(family string, params map[string]float64, daily, weekly *types.Series) (*Row, *FailedRow) {
	strat, err := o.registry.Create(family, params)
	if err != nil {
		return nil, o.failedRow(params, err)
	}

	evaluation, err := backtest.Evaluate(strat, daily, weekly, backtest.SimulatorConfig{Lookback: o.config.Lookback}, o.log)
	if err != nil {
		return nil, o.failedRow(params, err)
	}

	return &Row{
		Params:  params,
		Metrics: evaluation.Metrics,
		Passed:  evaluation.Metrics.TotalTrades >= o.config.MinTrades,
	}, nil
}

func (o *Optimizer) failedRow(params map[string]float64, err error) *FailedRow {
	o.log.Debug("combination evaluation failed",
		zap.Any("params", params),
		zap.String("reason", errors.Kind(err)),
		zap.Error(err))

	return &FailedRow{
		Params: params,
		Reason: errors.Kind(err),
		Err:    err.Error(),
	}
}
