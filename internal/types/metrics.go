package types

import (
	"math"

	"github.com/moznion/go-optional"
)

// ExitDistribution counts closed trades by exit reason.
type ExitDistribution struct {
	Target int `yaml:"target"`
	Stop   int `yaml:"stop"`
	Signal int `yaml:"signal"`
}

// MetricsSummary is the statistical summary of one ordered trade list. It is
// derived read-only from the trades and recomputed whenever they change.
//
// Percentages (win rates, returns, drawdown) are expressed in percent, not
// fractions. Undefined metrics are represented explicitly: AdjustedWinRate
// and SharpeRatio are None when their denominator is undefined, ProfitFactor
// is +Inf when there are no losing trades and NaN when there are no trades at
// all.
type MetricsSummary struct {
	TotalTrades int `yaml:"total_trades"`
	Winners     int `yaml:"winners"`
	Losers      int `yaml:"losers"`

	// WinRate is the share of trades with a positive return, in percent.
	WinRate float64 `yaml:"win_rate"`
	// AdjustedWinRate restricts the win rate to trades that ran to a defined
	// exit (target or stop). None when no trade exited at target or stop.
	AdjustedWinRate optional.Option[float64] `yaml:"-"`

	// ProfitFactor is gross profit over absolute gross loss.
	ProfitFactor float64 `yaml:"profit_factor"`
	// SharpeRatio is the annualized mean-over-stdev of per-trade returns.
	// None when fewer than two trades or zero stdev.
	SharpeRatio optional.Option[float64] `yaml:"-"`

	// MaxDrawdown is the maximum peak-to-trough decline of the compounded
	// equity curve, in percent (positive number).
	MaxDrawdown float64 `yaml:"max_drawdown"`
	// Expectancy is the mean per-trade return, in percent.
	Expectancy float64 `yaml:"expectancy"`
	// TotalReturn is the sum of per-trade returns, in percent.
	TotalReturn float64 `yaml:"total_return"`
	// AvgReturn equals Expectancy and is kept as its own field for tabular
	// export parity.
	AvgReturn float64 `yaml:"avg_return"`

	AvgWinner     float64 `yaml:"avg_winner"`
	AvgLoser      float64 `yaml:"avg_loser"`
	LargestWinner float64 `yaml:"largest_winner"`
	LargestLoser  float64 `yaml:"largest_loser"`

	// AvgHoldingBars is the mean holding period across trades, in bars.
	AvgHoldingBars float64 `yaml:"avg_holding_bars"`

	ExitReasons ExitDistribution `yaml:"exit_reasons"`
}

// MetricName selects a summary metric for ranking batch results.
type MetricName string

const (
	MetricProfitFactor MetricName = "profit_factor"
	MetricWinRate      MetricName = "win_rate"
	MetricSharpeRatio  MetricName = "sharpe_ratio"
	MetricTotalReturn  MetricName = "total_return"
	MetricExpectancy   MetricName = "expectancy"
)

// IsValid reports whether the metric name is rankable.
func (m MetricName) IsValid() bool {
	switch m {
	case MetricProfitFactor, MetricWinRate, MetricSharpeRatio, MetricTotalReturn, MetricExpectancy:
		return true
	default:
		return false
	}
}

// Value returns the named metric from the summary. Undefined metrics rank as
// -Inf so they never beat a defined value; +Inf profit factors rank above
// every finite one.
func (s MetricsSummary) Value(metric MetricName) float64 {
	switch metric {
	case MetricProfitFactor:
		if math.IsNaN(s.ProfitFactor) {
			return math.Inf(-1)
		}

		return s.ProfitFactor
	case MetricWinRate:
		return s.WinRate
	case MetricSharpeRatio:
		return s.SharpeRatio.TakeOr(math.Inf(-1))
	case MetricTotalReturn:
		return s.TotalReturn
	case MetricExpectancy:
		return s.Expectancy
	default:
		return math.Inf(-1)
	}
}
