// Package scanner runs one strategy across a universe of symbols and ranks
// the survivors. Each symbol is evaluated independently in a bounded worker
// pool; a failure on one symbol becomes a failed row, never a failed scan.
package scanner

import (
	"context"
	"sort"

	"github.com/rxtech-lab/argo-screener/internal/backtest"
	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/internal/strategy"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls a scan run. Zero values fall back to defaults where noted;
// filter thresholds at zero mean "no filter" apart from MinTrades.
type Config struct {
	// Concurrency bounds the worker pool. Defaults to 4.
	Concurrency int `yaml:"concurrency" validate:"min=0"`
	// Lookback is the simulation window in daily bars. Defaults to one
	// trading year.
	Lookback int `yaml:"lookback" validate:"min=0"`
	// WeeklyLookback is the number of weekly bars fetched for the higher
	// timeframe. Defaults to 104 (two years).
	WeeklyLookback int `yaml:"weekly_lookback" validate:"min=0"`

	// MinTrades drops symbols whose simulation produced fewer closed trades.
	// Defaults to 3.
	MinTrades int `yaml:"min_trades" validate:"min=0"`
	// MinWinRate drops symbols below this win rate, in percent.
	MinWinRate float64 `yaml:"min_win_rate" validate:"min=0,max=100"`
	// MinProfitFactor drops symbols below this profit factor.
	MinProfitFactor float64 `yaml:"min_profit_factor" validate:"min=0"`

	// RankBy selects the metric results are sorted by, descending. Defaults
	// to profit factor.
	RankBy types.MetricName `yaml:"rank_by"`

	// ShowProgress renders a terminal progress bar during the scan.
	ShowProgress bool `yaml:"show_progress"`
}

// Row is one symbol that was evaluated successfully.
type Row struct {
	Symbol       string                  `yaml:"symbol"`
	Convergence  types.ConvergenceResult `yaml:"convergence"`
	Metrics      types.MetricsSummary    `yaml:"metrics"`
	CurrentPrice float64                 `yaml:"current_price"`
	// Passed reports whether the row survived the scan filters.
	Passed bool `yaml:"passed"`
}

// FailedRow records a symbol that could not be evaluated and why.
type FailedRow struct {
	Symbol string `yaml:"symbol"`
	// Reason is the error kind label (insufficient_data, data_provider, ...).
	Reason string `yaml:"reason"`
	Err    string `yaml:"error"`
}

// Report is the outcome of one scan run. Rows holds every successful
// evaluation in symbol input order; Failed holds the rest.
type Report struct {
	StrategyName string      `yaml:"strategy"`
	Rows         []Row       `yaml:"rows"`
	Failed       []FailedRow `yaml:"failed"`
}

// Succeeded returns the number of symbols evaluated without error.
func (r *Report) Succeeded() int {
	return len(r.Rows)
}

// Total returns the number of symbols attempted.
func (r *Report) Total() int {
	return len(r.Rows) + len(r.Failed)
}

// Ranked returns the rows that passed the filters, sorted by the ranking
// metric descending. Ties keep input order, so repeated runs over the same
// universe produce identical output.
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

// Scanner evaluates one strategy across many symbols.
type Scanner struct {
	provider marketdata.Provider
	config   Config
	log      *logger.Logger
}

// NewScanner creates a Scanner. A nil logger is replaced with a no-op one.
func NewScanner(provider marketdata.Provider, config Config, log *logger.Logger) *Scanner {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}

	if config.Lookback <= 0 {
		config.Lookback = backtest.DefaultLookback
	}

	if config.WeeklyLookback <= 0 {
		config.WeeklyLookback = 104
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

	return &Scanner{
		provider: provider,
		config:   config,
		log:      log,
	}
}

// Scan evaluates strat against every symbol. Per-symbol failures become
// FailedRows. Context cancellation stops the run between symbols; the rows
// gathered up to that point are returned alongside the abort error.
func (s *Scanner) Scan(ctx context.Context, strat strategy.Strategy, symbols []string) (*Report, error) {
	type outcome struct {
		row    *Row
		failed *FailedRow
	}

	outcomes := make([]outcome, len(symbols))

	var bar *progressbar.ProgressBar
	if s.config.ShowProgress {
		bar = progressbar.Default(int64(len(symbols)), "scanning")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.config.Concurrency)

	for i, symbol := range symbols {
		group.Go(func() error {
			// A cancelled run stops between symbols, not mid-evaluation.
			if err := groupCtx.Err(); err != nil {
				return err
			}

			row, failed := s.scanOne(groupCtx, strat, symbol)
			outcomes[i] = outcome{row: row, failed: failed}

			if bar != nil {
				bar.Add(1)
			}

			return nil
		})
	}

	waitErr := group.Wait()

	report := &Report{StrategyName: strat.Name()}

	for _, result := range outcomes {
		switch {
		case result.row != nil:
			report.Rows = append(report.Rows, *result.row)
		case result.failed != nil:
			report.Failed = append(report.Failed, *result.failed)
		}
	}

	if waitErr != nil {
		// Symbols finished before the cancellation stay in the report.
		return report, errors.Wrap(errors.ErrCodeScanAborted, "scan aborted", waitErr)
	}

	s.log.Info("scan finished",
		zap.String("strategy", strat.Name()),
		zap.Int("total", report.Total()),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", len(report.Failed)))

	return report, nil
}

func (s *Scanner) scanOne(ctx context.Context, strat strategy.Strategy, symbol string) (*Row, *FailedRow) {
	daily, err := s.provider.Fetch(ctx, symbol, types.TimeframeDaily, s.config.Lookback)
	if err != nil {
		return nil, s.failedRow(symbol, err)
	}

	weekly, err := s.provider.Fetch(ctx, symbol, types.TimeframeWeekly, s.config.WeeklyLookback)
	if err != nil {
		return nil, s.failedRow(symbol, err)
	}

	evaluation, err := backtest.Evaluate(strat, daily, weekly, backtest.SimulatorConfig{Lookback: s.config.Lookback}, s.log)
	if err != nil {
		return nil, s.failedRow(symbol, err)
	}

	return &Row{
		Symbol:       symbol,
		Convergence:  evaluation.Convergence,
		Metrics:      evaluation.Metrics,
		CurrentPrice: evaluation.CurrentPrice,
		Passed:       s.passes(evaluation.Metrics),
	}, nil
}

// passes applies the scan filters to a summary.
func (s *Scanner) passes(metrics types.MetricsSummary) bool {
	if metrics.TotalTrades < s.config.MinTrades {
		return false
	}

	if metrics.WinRate < s.config.MinWinRate {
		return false
	}

	// NaN (no trades) never passes a profit factor floor; +Inf always does.
	if s.config.MinProfitFactor > 0 && !(metrics.ProfitFactor >= s.config.MinProfitFactor) {
		return false
	}

	return true
}

func (s *Scanner) failedRow(symbol string, err error) *FailedRow {
	s.log.Debug("symbol evaluation failed",
		zap.String("symbol", symbol),
		zap.String("reason", errors.Kind(err)),
		zap.Error(err))

	return &FailedRow{
		Symbol: symbol,
		Reason: errors.Kind(err),
		Err:    err.Error(),
	}
}
