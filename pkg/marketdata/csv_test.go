package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CSVProviderTestSuite struct {
	suite.Suite

	dir      string
	provider *CSVProvider
}

func TestCSVProviderSuite(t *testing.T) {
	suite.Run(t, new(CSVProviderTestSuite))
}

func (suite *CSVProviderTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.provider = NewCSVProvider(suite.dir)
}

func (suite *CSVProviderTestSuite) writeFile(name, content string) {
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.dir, name), []byte(content), 0o644))
}

func (suite *CSVProviderTestSuite) TestFetch() {
	suite.writeFile("AAPL_daily.csv", `time,open,high,low,close,volume
2024-01-02,184.0,186.0,183.0,185.5,50000000
2024-01-03,185.0,187.5,184.5,186.0,48000000
2024-01-04,186.0,188.0,185.0,187.2,51000000
`)

	series, err := suite.provider.Fetch(context.Background(), "AAPL", types.TimeframeDaily, 0)
	suite.Require().NoError(err)

	suite.Equal("AAPL", series.Symbol)
	suite.Equal(3, series.Len())
	suite.Equal(185.5, series.Bars[0].Close)
	suite.Equal(188.0, series.Bars[2].High)
}

func (suite *CSVProviderTestSuite) TestFetchTrimsToLookback() {
	suite.writeFile("AAPL_daily.csv", `time,open,high,low,close,volume
2024-01-02,1,1,1,1,1
2024-01-03,2,2,2,2,2
2024-01-04,3,3,3,3,3
`)

	series, err := suite.provider.Fetch(context.Background(), "AAPL", types.TimeframeDaily, 2)
	suite.Require().NoError(err)
	suite.Equal(2, series.Len())
	suite.Equal(2.0, series.Bars[0].Close)
}

func (suite *CSVProviderTestSuite) TestFetchMissingFile() {
	_, err := suite.provider.Fetch(context.Background(), "NOPE", types.TimeframeDaily, 0)
	suite.Error(err)
	suite.True(errors.IsDataProviderError(err))
}

func (suite *CSVProviderTestSuite) TestFetchMalformedRow() {
	suite.writeFile("BAD_daily.csv", `time,open,high,low,close,volume
2024-01-02,1,1,1,not-a-number,1
`)

	_, err := suite.provider.Fetch(context.Background(), "BAD", types.TimeframeDaily, 0)
	suite.Error(err)
	suite.True(errors.IsDataProviderError(err))
	suite.Contains(err.Error(), "row 2")
}

func (suite *CSVProviderTestSuite) TestFetchHeaderOnly() {
	suite.writeFile("EMPTY_daily.csv", "time,open,high,low,close,volume\n")

	_, err := suite.provider.Fetch(context.Background(), "EMPTY", types.TimeframeDaily, 0)
	suite.Error(err)
	suite.Contains(err.Error(), "no bar rows")
}

func (suite *CSVProviderTestSuite) TestFetchOutOfOrderRows() {
	suite.writeFile("OOO_daily.csv", `time,open,high,low,close,volume
2024-01-03,1,1,1,1,1
2024-01-02,2,2,2,2,2
`)

	_, err := suite.provider.Fetch(context.Background(), "OOO", types.TimeframeDaily, 0)
	suite.Error(err)
}

func (suite *CSVProviderTestSuite) TestFetchRFC3339Timestamps() {
	suite.writeFile("BTCUSDT_weekly.csv", `time,open,high,low,close,volume
2024-01-01T00:00:00Z,42000,43000,41000,42500,1000
2024-01-08T00:00:00Z,42500,44000,42000,43800,1200
`)

	series, err := suite.provider.Fetch(context.Background(), "BTCUSDT", types.TimeframeWeekly, 0)
	suite.Require().NoError(err)
	suite.Equal(2, series.Len())
	suite.Equal(types.TimeframeWeekly, series.Timeframe)
}
