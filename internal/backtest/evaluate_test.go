package backtest

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-screener/internal/strategy"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type EvaluateTestSuite struct {
	suite.Suite
}

func TestEvaluateSuite(t *testing.T) {
	suite.Run(t, new(EvaluateTestSuite))
}

func (suite *EvaluateTestSuite) trendingSeries(timeframe types.Timeframe, n int, start, step float64) *types.Series {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)

	for i := range bars {
		c := start + float64(i)*step
		bars[i] = types.Bar{
			Time:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}

	series, err := types.NewSeries("TEST", timeframe, bars)
	suite.Require().NoError(err)

	return series
}

func (suite *EvaluateTestSuite) TestFullPipelineOnTrendingSeries() {
	strat, err := strategy.NewMACrossStrategy(strategy.DefaultMACrossConfig())
	suite.Require().NoError(err)

	daily := suite.trendingSeries(types.TimeframeDaily, 120, 100, 0.5)
	weekly := suite.trendingSeries(types.TimeframeWeekly, 60, 100, 2)

	evaluation, err := Evaluate(strat, daily, weekly, SimulatorConfig{}, nil)
	suite.Require().NoError(err)

	suite.Equal("Moving Average Cross", evaluation.StrategyName)
	suite.True(evaluation.Convergence.Convergence)
	suite.InDelta(100+119*0.5, evaluation.CurrentPrice, 1e-9)

	// A clean uptrend holds one long position to the end of the series.
	suite.NotNil(evaluation.Open)
	suite.Equal(len(evaluation.Trades), evaluation.Metrics.TotalTrades)
}

func (suite *EvaluateTestSuite) TestShortSeriesFails() {
	strat, err := strategy.NewMACrossStrategy(strategy.DefaultMACrossConfig())
	suite.Require().NoError(err)

	daily := suite.trendingSeries(types.TimeframeDaily, 5, 100, 1)
	weekly := suite.trendingSeries(types.TimeframeWeekly, 60, 100, 2)

	_, err = Evaluate(strat, daily, weekly, SimulatorConfig{}, nil)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

type ConvergenceCheckTestSuite struct {
	suite.Suite
}

func TestConvergenceCheckSuite(t *testing.T) {
	suite.Run(t, new(ConvergenceCheckTestSuite))
}

func (suite *ConvergenceCheckTestSuite) annotated(timeframe types.Timeframe, signal int) *types.AnnotatedSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []types.Bar{
		{Time: base, High: 101, Low: 99, Close: 100},
		{Time: base.AddDate(0, 0, 1), High: 102, Low: 100, Close: 101},
	}

	series, err := types.NewSeries("TEST", timeframe, bars)
	suite.Require().NoError(err)

	result := types.NewAnnotatedSeries(series)
	result.Signal[1] = signal

	return result
}

func (suite *ConvergenceCheckTestSuite) TestBothLong() {
	result, err := CheckConvergence(
		suite.annotated(types.TimeframeDaily, 1),
		suite.annotated(types.TimeframeWeekly, 1))
	suite.NoError(err)
	suite.True(result.Convergence)
}

func (suite *ConvergenceCheckTestSuite) TestDailyOnly() {
	result, err := CheckConvergence(
		suite.annotated(types.TimeframeDaily, 1),
		suite.annotated(types.TimeframeWeekly, 0))
	suite.NoError(err)
	suite.False(result.Convergence)
	suite.True(result.DailySignal)
	suite.False(result.WeeklySignal)
}

func (suite *ConvergenceCheckTestSuite) TestMissingSeries() {
	_, err := CheckConvergence(nil, suite.annotated(types.TimeframeWeekly, 1))
	suite.True(errors.IsNotEnoughHistoryError(err))

	_, err = CheckConvergence(suite.annotated(types.TimeframeDaily, 1), nil)
	suite.True(errors.IsNotEnoughHistoryError(err))
}
