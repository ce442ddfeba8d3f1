package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type SeriesTestSuite struct {
	suite.Suite
}

func TestSeriesSuite(t *testing.T) {
	suite.Run(t, new(SeriesTestSuite))
}

func barsAt(closes ...float64) []Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, len(closes))

	for i, c := range closes {
		bars[i] = Bar{
			Time:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *SeriesTestSuite) TestNewSeriesValid() {
	series, err := NewSeries("AAPL", TimeframeDaily, barsAt(10, 11, 12))
	suite.NoError(err)
	suite.Equal("AAPL", series.Symbol)
	suite.Equal(3, series.Len())
	suite.False(series.IsEmpty())
}

func (suite *SeriesTestSuite) TestNewSeriesInvalidTimeframe() {
	_, err := NewSeries("AAPL", Timeframe("hourly"), barsAt(10))
	suite.Error(err)
	suite.Contains(err.Error(), "unsupported timeframe")
}

func (suite *SeriesTestSuite) TestNewSeriesRejectsDuplicateTimestamps() {
	bars := barsAt(10, 11)
	bars[1].Time = bars[0].Time

	_, err := NewSeries("AAPL", TimeframeDaily, bars)
	suite.Error(err)
	suite.Contains(err.Error(), "strictly increasing")
}

func (suite *SeriesTestSuite) TestNewSeriesRejectsOutOfOrderTimestamps() {
	bars := barsAt(10, 11, 12)
	bars[2].Time = bars[0].Time.AddDate(0, 0, -1)

	_, err := NewSeries("AAPL", TimeframeDaily, bars)
	suite.Error(err)
}

func (suite *SeriesTestSuite) TestEmptySeries() {
	series, err := NewSeries("AAPL", TimeframeDaily, nil)
	suite.NoError(err)
	suite.True(series.IsEmpty())

	_, ok := series.Last()
	suite.False(ok)
}

func (suite *SeriesTestSuite) TestLast() {
	series, err := NewSeries("AAPL", TimeframeDaily, barsAt(10, 11, 12))
	suite.NoError(err)

	last, ok := series.Last()
	suite.True(ok)
	suite.Equal(12.0, last.Close)
}

func (suite *SeriesTestSuite) TestColumns() {
	series, err := NewSeries("AAPL", TimeframeDaily, barsAt(10, 11, 12))
	suite.NoError(err)

	suite.Equal([]float64{10, 11, 12}, series.Closes())
	suite.Equal([]float64{11, 12, 13}, series.Highs())
	suite.Equal([]float64{9, 10, 11}, series.Lows())
}

func (suite *SeriesTestSuite) TestTimeframeIsValid() {
	suite.True(TimeframeDaily.IsValid())
	suite.True(TimeframeWeekly.IsValid())
	suite.False(Timeframe("hourly").IsValid())
	suite.False(Timeframe("").IsValid())
}
