package strategy

import (
	"testing"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MACrossStrategyTestSuite struct {
	suite.Suite
}

func TestMACrossStrategySuite(t *testing.T) {
	suite.Run(t, new(MACrossStrategyTestSuite))
}

func (suite *MACrossStrategyTestSuite) TestSlowPeriodMustExceedFast() {
	config := DefaultMACrossConfig()
	config.FastPeriod = 21
	config.SlowPeriod = 9

	_, err := NewMACrossStrategy(config)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}

func (suite *MACrossStrategyTestSuite) TestMinBars() {
	strat, err := NewMACrossStrategy(DefaultMACrossConfig())
	suite.Require().NoError(err)
	suite.Equal(21, strat.MinBars())
}

func (suite *MACrossStrategyTestSuite) TestInsufficientData() {
	strat, err := NewMACrossStrategy(DefaultMACrossConfig())
	suite.Require().NoError(err)

	series := newTestSeries(suite.T(), types.TimeframeDaily, risingCloses(5, 100, 1))

	_, err = strat.ComputeIndicators(series)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *MACrossStrategyTestSuite) TestRisingSeriesGoesLong() {
	strat, err := NewMACrossStrategy(DefaultMACrossConfig())
	suite.Require().NoError(err)

	series := newTestSeries(suite.T(), types.TimeframeDaily, risingCloses(50, 100, 1))

	annotated, err := Annotate(strat, series)
	suite.Require().NoError(err)

	// The fast EMA tracks a rising series more closely than the slow one.
	suite.Equal(1, annotated.LastSignal())
}

func (suite *MACrossStrategyTestSuite) TestFallingSeriesStaysFlat() {
	strat, err := NewMACrossStrategy(DefaultMACrossConfig())
	suite.Require().NoError(err)

	series := newTestSeries(suite.T(), types.TimeframeDaily, risingCloses(50, 200, -1))

	annotated, err := Annotate(strat, series)
	suite.Require().NoError(err)
	suite.Equal(0, annotated.LastSignal())
}

func (suite *MACrossStrategyTestSuite) TestConvergenceDetailHasDistance() {
	strat, err := NewMACrossStrategy(DefaultMACrossConfig())
	suite.Require().NoError(err)

	daily, err := Annotate(strat, newTestSeries(suite.T(), types.TimeframeDaily, risingCloses(50, 100, 1)))
	suite.Require().NoError(err)

	weekly, err := Annotate(strat, newTestSeries(suite.T(), types.TimeframeWeekly, risingCloses(50, 100, 2)))
	suite.Require().NoError(err)

	result, err := strat.CheckConvergence(daily, weekly)
	suite.NoError(err)
	suite.True(result.Convergence)
	suite.Contains(result.Detail, "daily_distance_pct")
	suite.Contains(result.Detail, "weekly_distance_pct")
	suite.Greater(result.Detail["daily_distance_pct"], 0.0)
}
