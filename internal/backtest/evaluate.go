package backtest

import (
	"math"

	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/internal/strategy"
	"github.com/rxtech-lab/argo-screener/internal/types"
)

// DefaultLookback is the simulation window applied when a config leaves
// Lookback at zero: one trading year of daily bars.
const DefaultLookback = 252

// Evaluation is the outcome of running one strategy against one instrument's
// daily and weekly series.
type Evaluation struct {
	StrategyName string
	Convergence  types.ConvergenceResult
	Metrics      types.MetricsSummary
	Trades       []types.Trade
	Open         *types.OpenPosition
	// CurrentPrice is the close of the final daily bar.
	CurrentPrice float64
}

// Evaluate runs the full single-instrument pipeline: annotate both
// timeframes, check convergence, simulate the daily series and summarize the
// trades. Errors propagate to the caller; there is no partial result.
func Evaluate(strat strategy.Strategy, daily, weekly *types.Series, config SimulatorConfig, log *logger.Logger) (*Evaluation, error) {
	if config.Lookback == 0 {
		config.Lookback = DefaultLookback
	}

	dailyAnnotated, err := strategy.Annotate(strat, daily)
	if err != nil {
		return nil, err
	}

	weeklyAnnotated, err := strategy.Annotate(strat, weekly)
	if err != nil {
		return nil, err
	}

	convergence, err := strat.CheckConvergence(dailyAnnotated, weeklyAnnotated)
	if err != nil {
		return nil, err
	}

	simulator := NewSimulator(config, log)

	result, err := simulator.Simulate(dailyAnnotated)
	if err != nil {
		return nil, err
	}

	currentPrice := math.NaN()
	if last, ok := daily.Last(); ok {
		currentPrice = last.Close
	}

	return &Evaluation{
		StrategyName: strat.Name(),
		Convergence:  convergence,
		Metrics:      ComputeMetrics(result.Trades),
		Trades:       result.Trades,
		Open:         result.Open,
		CurrentPrice: currentPrice,
	}, nil
}
