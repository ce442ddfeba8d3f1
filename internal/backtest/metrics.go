package backtest

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/shopspring/decimal"
)

// annualizationFactor converts a per-trade Sharpe ratio to an annualized one
// on daily data: the square root of 252 trading days.
const annualizationFactor = 252

// ComputeMetrics derives the summary statistics of an ordered trade list.
// It is pure, deterministic and idempotent; running it twice on the same
// trades yields identical results.
func ComputeMetrics(trades []types.Trade) types.MetricsSummary {
	summary := types.MetricsSummary{
		TotalTrades:     len(trades),
		ProfitFactor:    math.NaN(),
		AdjustedWinRate: optional.None[float64](),
		SharpeRatio:     optional.None[float64](),
	}

	if len(trades) == 0 {
		return summary
	}

	var (
		grossProfit   float64
		grossLoss     float64
		sumReturns    float64
		sumWinners    float64
		sumLosers     float64
		largestWinner = math.Inf(-1)
		largestLoser  = math.Inf(1)
		definedExits  int
		definedWins   int
		sumHolding    int
	)

	for _, trade := range trades {
		r := trade.ReturnPct
		sumReturns += r
		sumHolding += trade.HoldingBars

		if r > 0 {
			summary.Winners++
			grossProfit += r
			sumWinners += r

			if r > largestWinner {
				largestWinner = r
			}
		} else {
			summary.Losers++
			grossLoss += -r
			sumLosers += r

			if r < largestLoser {
				largestLoser = r
			}
		}

		switch trade.ExitReason {
		case types.ExitReasonTarget:
			summary.ExitReasons.Target++
		case types.ExitReasonStop:
			summary.ExitReasons.Stop++
		case types.ExitReasonSignal:
			summary.ExitReasons.Signal++
		}

		if trade.ExitReason == types.ExitReasonTarget || trade.ExitReason == types.ExitReasonStop {
			definedExits++

			if r > 0 {
				definedWins++
			}
		}
	}

	total := float64(len(trades))

	summary.WinRate = float64(summary.Winners) / total * 100
	summary.TotalReturn = sumReturns
	summary.Expectancy = sumReturns / total
	summary.AvgReturn = summary.Expectancy
	summary.AvgHoldingBars = float64(sumHolding) / total

	if summary.Winners > 0 {
		summary.AvgWinner = sumWinners / float64(summary.Winners)
		summary.LargestWinner = largestWinner
	}

	if summary.Losers > 0 {
		summary.AvgLoser = sumLosers / float64(summary.Losers)
		summary.LargestLoser = largestLoser
	}

	// Adjusted win rate only counts trades that ran to a defined exit.
	if definedExits > 0 {
		summary.AdjustedWinRate = optional.Some(float64(definedWins) / float64(definedExits) * 100)
	}

	// Profit factor is +Inf when nothing was lost but something was won, and
	// stays NaN when every return is exactly zero.
	switch {
	case grossLoss > 0:
		summary.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		summary.ProfitFactor = math.Inf(1)
	}

	summary.SharpeRatio = sharpeRatio(trades)
	summary.MaxDrawdown = maxDrawdown(trades)

	return summary
}

// sharpeRatio computes the annualized mean-over-stdev of per-trade returns.
// Undefined with fewer than two trades or zero variance.
func sharpeRatio(trades []types.Trade) optional.Option[float64] {
	if len(trades) < 2 {
		return optional.None[float64]()
	}

	var sum float64
	for _, trade := range trades {
		sum += trade.ReturnPct
	}

	mean := sum / float64(len(trades))

	var sumSquares float64

	for _, trade := range trades {
		diff := trade.ReturnPct - mean
		sumSquares += diff * diff
	}

	// Sample standard deviation.
	stdev := math.Sqrt(sumSquares / float64(len(trades)-1))
	if stdev == 0 {
		return optional.None[float64]()
	}

	return optional.Some(mean / stdev * math.Sqrt(annualizationFactor))
}

// maxDrawdown computes the maximum peak-to-trough decline of the equity curve
// built by compounding trade returns in chronological order, in percent.
// Compounding runs on decimals so long trade lists do not accumulate float
// drift.
func maxDrawdown(trades []types.Trade) float64 {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	equity := one
	peak := one
	maxDD := decimal.Zero

	for _, trade := range trades {
		factor := one.Add(decimal.NewFromFloat(trade.ReturnPct).Div(hundred))
		equity = equity.Mul(factor)

		if equity.GreaterThan(peak) {
			peak = equity
		}

		drawdown := peak.Sub(equity).Div(peak).Mul(hundred)
		if drawdown.GreaterThan(maxDD) {
			maxDD = drawdown
		}
	}

	result, _ := maxDD.Float64()

	return result
}
