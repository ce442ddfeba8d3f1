package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

// tradeWithReturn builds a closed trade with the given percent return.
func tradeWithReturn(returnPct float64, reason types.ExitReason) types.Trade {
	entry := 100.0
	exit := entry * (1 + returnPct/100)

	return types.Trade{
		Symbol:      "TEST",
		EntryTime:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EntryPrice:  entry,
		ExitTime:    time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		ExitPrice:   exit,
		ExitReason:  reason,
		PnL:         exit - entry,
		ReturnPct:   returnPct,
		HoldingBars: 4,
	}
}

func (suite *MetricsTestSuite) TestZeroTrades() {
	summary := ComputeMetrics(nil)

	suite.Equal(0, summary.TotalTrades)
	suite.Equal(0.0, summary.WinRate)
	suite.True(math.IsNaN(summary.ProfitFactor))
	suite.True(summary.AdjustedWinRate.IsNone())
	suite.True(summary.SharpeRatio.IsNone())
	suite.Equal(0.0, summary.MaxDrawdown)
}

func (suite *MetricsTestSuite) TestMixedTrades() {
	trades := []types.Trade{
		tradeWithReturn(10, types.ExitReasonTarget),
		tradeWithReturn(-5, types.ExitReasonStop),
		tradeWithReturn(6, types.ExitReasonTarget),
		tradeWithReturn(-3, types.ExitReasonSignal),
	}

	summary := ComputeMetrics(trades)

	suite.Equal(4, summary.TotalTrades)
	suite.Equal(2, summary.Winners)
	suite.Equal(2, summary.Losers)
	suite.InDelta(50.0, summary.WinRate, 1e-9)
	suite.InDelta(2.0, summary.ProfitFactor, 1e-9) // 16 profit over 8 loss
	suite.InDelta(8.0, summary.TotalReturn, 1e-9)
	suite.InDelta(2.0, summary.Expectancy, 1e-9)
	suite.InDelta(8.0, summary.AvgWinner, 1e-9)
	suite.InDelta(-4.0, summary.AvgLoser, 1e-9)
	suite.InDelta(10.0, summary.LargestWinner, 1e-9)
	suite.InDelta(-5.0, summary.LargestLoser, 1e-9)
	suite.Equal(types.ExitDistribution{Target: 2, Stop: 1, Signal: 1}, summary.ExitReasons)
}

func (suite *MetricsTestSuite) TestAdjustedWinRateCountsDefinedExitsOnly() {
	trades := []types.Trade{
		tradeWithReturn(10, types.ExitReasonTarget),
		tradeWithReturn(-5, types.ExitReasonStop),
		// Signal exits are excluded from the adjusted denominator.
		tradeWithReturn(4, types.ExitReasonSignal),
		tradeWithReturn(2, types.ExitReasonSignal),
	}

	summary := ComputeMetrics(trades)

	suite.InDelta(75.0, summary.WinRate, 1e-9)
	suite.True(summary.AdjustedWinRate.IsSome())
	suite.InDelta(50.0, summary.AdjustedWinRate.Unwrap(), 1e-9)
}

func (suite *MetricsTestSuite) TestAdjustedWinRateUndefinedWithoutDefinedExits() {
	trades := []types.Trade{
		tradeWithReturn(4, types.ExitReasonSignal),
		tradeWithReturn(-2, types.ExitReasonSignal),
	}

	summary := ComputeMetrics(trades)
	suite.True(summary.AdjustedWinRate.IsNone())
}

func (suite *MetricsTestSuite) TestProfitFactorAllWinners() {
	trades := []types.Trade{
		tradeWithReturn(5, types.ExitReasonTarget),
		tradeWithReturn(3, types.ExitReasonTarget),
	}

	summary := ComputeMetrics(trades)
	suite.True(math.IsInf(summary.ProfitFactor, 1))
}

func (suite *MetricsTestSuite) TestProfitFactorAllZeroReturns() {
	trades := []types.Trade{
		tradeWithReturn(0, types.ExitReasonSignal),
		tradeWithReturn(0, types.ExitReasonSignal),
	}

	summary := ComputeMetrics(trades)
	suite.True(math.IsNaN(summary.ProfitFactor))
}

func (suite *MetricsTestSuite) TestSharpeUndefinedSingleTrade() {
	summary := ComputeMetrics([]types.Trade{tradeWithReturn(5, types.ExitReasonTarget)})
	suite.True(summary.SharpeRatio.IsNone())
}

func (suite *MetricsTestSuite) TestSharpeUndefinedZeroVariance() {
	trades := []types.Trade{
		tradeWithReturn(5, types.ExitReasonTarget),
		tradeWithReturn(5, types.ExitReasonTarget),
	}

	summary := ComputeMetrics(trades)
	suite.True(summary.SharpeRatio.IsNone())
}

func (suite *MetricsTestSuite) TestSharpeKnownValue() {
	trades := []types.Trade{
		tradeWithReturn(2, types.ExitReasonTarget),
		tradeWithReturn(4, types.ExitReasonTarget),
	}

	summary := ComputeMetrics(trades)
	suite.Require().True(summary.SharpeRatio.IsSome())

	// mean 3, sample stdev sqrt(2), annualized by sqrt(252).
	expected := 3.0 / math.Sqrt2 * math.Sqrt(252)
	suite.InDelta(expected, summary.SharpeRatio.Unwrap(), 1e-9)
}

func (suite *MetricsTestSuite) TestMaxDrawdownKnownValue() {
	trades := []types.Trade{
		tradeWithReturn(10, types.ExitReasonTarget),
		tradeWithReturn(-20, types.ExitReasonStop),
		tradeWithReturn(5, types.ExitReasonTarget),
	}

	summary := ComputeMetrics(trades)

	// Equity: 1.10 peak, then 0.88 trough -> 20% drawdown.
	suite.InDelta(20.0, summary.MaxDrawdown, 1e-9)
}

func (suite *MetricsTestSuite) TestMaxDrawdownMonotonicGains() {
	trades := []types.Trade{
		tradeWithReturn(5, types.ExitReasonTarget),
		tradeWithReturn(3, types.ExitReasonTarget),
	}

	summary := ComputeMetrics(trades)
	suite.Equal(0.0, summary.MaxDrawdown)
}

func (suite *MetricsTestSuite) TestIdempotent() {
	trades := []types.Trade{
		tradeWithReturn(10, types.ExitReasonTarget),
		tradeWithReturn(-5, types.ExitReasonStop),
	}

	first := ComputeMetrics(trades)
	second := ComputeMetrics(trades)
	suite.Equal(first, second)
}

func (suite *MetricsTestSuite) TestMetricValueRanking() {
	defined := ComputeMetrics([]types.Trade{
		tradeWithReturn(10, types.ExitReasonTarget),
		tradeWithReturn(-5, types.ExitReasonStop),
	})
	undefined := ComputeMetrics(nil)

	// Undefined metrics never outrank defined ones.
	suite.Greater(defined.Value(types.MetricProfitFactor), undefined.Value(types.MetricProfitFactor))
	suite.Greater(defined.Value(types.MetricSharpeRatio), undefined.Value(types.MetricSharpeRatio))
	suite.True(math.IsInf(undefined.Value(types.MetricProfitFactor), -1))
}
