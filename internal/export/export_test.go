package export

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-screener/internal/optimizer"
	"github.com/rxtech-lab/argo-screener/internal/scanner"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/stretchr/testify/suite"
)

type ExportTestSuite struct {
	suite.Suite

	dir string
}

func TestExportSuite(t *testing.T) {
	suite.Run(t, new(ExportTestSuite))
}

func (suite *ExportTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *ExportTestSuite) readCSV(path string) [][]string {
	file, err := os.Open(path)
	suite.Require().NoError(err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	suite.Require().NoError(err)

	return records
}

func (suite *ExportTestSuite) TestWriteTrades() {
	path := filepath.Join(suite.dir, "trades.csv")
	trades := []types.Trade{
		{
			Symbol:      "AAPL",
			EntryTime:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			EntryPrice:  100,
			ExitTime:    time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
			ExitPrice:   110,
			StopLoss:    95,
			Target:      110,
			ExitReason:  types.ExitReasonTarget,
			PnL:         10,
			ReturnPct:   10,
			HoldingBars: 5,
		},
	}

	suite.Require().NoError(WriteTrades(path, trades))

	records := suite.readCSV(path)
	suite.Require().Len(records, 2)
	suite.Equal("symbol", records[0][0])
	suite.Equal("AAPL", records[1][0])
	suite.Equal("target", records[1][7])
	suite.Equal("10.0000", records[1][9])
}

func (suite *ExportTestSuite) TestWriteScanRowsUndefinedMetrics() {
	path := filepath.Join(suite.dir, "scan.csv")
	rows := []scanner.Row{
		{
			Symbol:       "AAPL",
			CurrentPrice: 190,
			Convergence: types.ConvergenceResult{
				DailySignal:  true,
				WeeklySignal: false,
				Convergence:  false,
			},
			Metrics: types.MetricsSummary{
				TotalTrades:     2,
				WinRate:         100,
				ProfitFactor:    math.Inf(1),
				AdjustedWinRate: optional.None[float64](),
				SharpeRatio:     optional.None[float64](),
			},
		},
	}

	suite.Require().NoError(WriteScanRows(path, rows))

	records := suite.readCSV(path)
	suite.Require().Len(records, 2)

	header := records[0]
	row := records[1]

	byName := map[string]string{}
	for i, name := range header {
		byName[name] = row[i]
	}

	suite.Equal("true", byName["daily_signal"])
	suite.Equal("false", byName["weekly_signal"])
	suite.Equal("false", byName["convergence"])
	suite.Equal("inf", byName["profit_factor"])
	suite.Equal("N/A", byName["adjusted_win_rate"])
	suite.Equal("N/A", byName["sharpe_ratio"])
	suite.Equal("190.0000", byName["current_price"])
}

func (suite *ExportTestSuite) TestWriteOptimizeRowsStableParamColumns() {
	path := filepath.Join(suite.dir, "optimize.csv")
	rows := []optimizer.Row{
		{
			Params:  map[string]float64{"slow_period": 21, "fast_period": 9},
			Metrics: types.MetricsSummary{TotalTrades: 3, WinRate: 66.7},
		},
		{
			Params:  map[string]float64{"slow_period": 30, "fast_period": 5},
			Metrics: types.MetricsSummary{TotalTrades: 2, WinRate: 50},
		},
	}

	suite.Require().NoError(WriteOptimizeRows(path, rows))

	records := suite.readCSV(path)
	suite.Require().Len(records, 3)

	// Parameter columns are sorted by name ahead of the metric columns.
	suite.Equal("fast_period", records[0][0])
	suite.Equal("slow_period", records[0][1])
	suite.Equal("9.0000", records[1][0])
	suite.Equal("5.0000", records[2][0])
}

func (suite *ExportTestSuite) TestWriteSummaryYAML() {
	path := filepath.Join(suite.dir, "summary.yaml")
	metrics := types.MetricsSummary{
		TotalTrades:     3,
		WinRate:         66.7,
		ProfitFactor:    2.5,
		SharpeRatio:     optional.Some(1.8),
		AdjustedWinRate: optional.None[float64](),
	}
	open := &types.OpenPosition{
		Symbol:     "AAPL",
		EntryTime:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EntryPrice: 180,
		StopLoss:   174,
		Target:     192,
		BarsHeld:   7,
	}

	suite.Require().NoError(WriteSummaryYAML(path, "AAPL", "Channel Crossover", metrics, open))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	content := string(data)
	suite.Contains(content, "symbol: AAPL")
	suite.Contains(content, "strategy: Channel Crossover")
	suite.Contains(content, "total_trades: 3")
	suite.Contains(content, "sharpe_ratio: \"1.8000\"")
	suite.Contains(content, "adjusted_win_rate: N/A")
	suite.Contains(content, "open_position")
}

func (suite *ExportTestSuite) TestWriteSummaryYAMLNoOpenPosition() {
	path := filepath.Join(suite.dir, "summary.yaml")

	suite.Require().NoError(WriteSummaryYAML(path, "AAPL", "Channel Crossover", types.MetricsSummary{}, nil))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.NotContains(string(data), "open_position")
}

func (suite *ExportTestSuite) TestWriteToUnwritablePath() {
	err := WriteTrades(filepath.Join(suite.dir, "missing", "trades.csv"), nil)
	suite.Error(err)
}
