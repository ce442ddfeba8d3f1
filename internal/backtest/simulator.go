// Package backtest turns a signal-annotated bar series into realized trades
// and summary statistics. The simulator is a single-position state machine;
// the metrics calculator is a pure function over the resulting trade list.
package backtest

import (
	"math"

	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"go.uber.org/zap"
)

// SimulatorConfig controls one simulation run.
type SimulatorConfig struct {
	// Lookback restricts the simulation to the last N bars of the annotated
	// series. Zero means the whole series. Default 252 at the evaluation
	// layer (one trading year of daily bars).
	Lookback int `yaml:"lookback" validate:"min=0"`
	// StrictRisk makes a degenerate risk setup (stop at or above entry, or
	// target at or below entry) a hard error instead of a logged flag.
	StrictRisk bool `yaml:"strict_risk"`
}

// Simulator replays an annotated series bar by bar and produces the ordered,
// non-overlapping list of realized trades.
type Simulator struct {
	config SimulatorConfig
	log    *logger.Logger
}

// NewSimulator creates a simulator. A nil logger falls back to a no-op one.
func NewSimulator(config SimulatorConfig, log *logger.Logger) *Simulator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Simulator{
		config: config,
		log:    log,
	}
}

// Result is the outcome of one simulation: realized trades in chronological
// order, plus the position still open when the series ended, if any. Open
// positions are not force-closed and are excluded from the trade list.
type Result struct {
	Symbol string
	Trades []types.Trade
	Open   *types.OpenPosition
}

// Simulate runs the single-position state machine over the annotated series.
//
// Entry executes at the signal bar's close. On every subsequent bar the three
// exit conditions are checked in priority order: stop (bar low at or below
// the stop, exit at the stop price), then target (bar high at or above the
// target, exit at the target price), then signal loss (signal = 0, exit at
// the bar close). A bar whose range satisfies both stop and target counts as
// a stop. Re-entry is allowed on the bar immediately after an exit.
func (s *Simulator) Simulate(a *types.AnnotatedSeries) (Result, error) {
	window := a.Tail(s.config.Lookback)

	result := Result{
		Symbol: window.Symbol,
		Trades: nil,
		Open:   nil,
	}

	inPosition := false

	var (
		entryIndex int
		entryPrice float64
		stopLoss   float64
		target     float64
		degenerate bool
	)

	for i, bar := range window.Bars {
		if math.IsNaN(bar.Close) {
			continue
		}

		if !inPosition {
			if window.Signal[i] != 1 {
				continue
			}

			// A signal bar inside the indicator warmup window carries no
			// usable risk levels; it cannot open a position.
			if math.IsNaN(window.StopLoss[i]) || math.IsNaN(window.Target[i]) {
				continue
			}

			entryIndex = i
			entryPrice = bar.Close
			stopLoss = window.StopLoss[i]
			target = window.Target[i]

			degenerate = stopLoss >= entryPrice || target <= entryPrice
			if degenerate {
				if s.config.StrictRisk {
					return Result{}, errors.NewDegenerateParameterError(window.Symbol, entryPrice, stopLoss, target)
				}

				s.log.Warn("degenerate risk setup, opening trade as given",
					zap.String("symbol", window.Symbol),
					zap.Time("entry_time", bar.Time),
					zap.Float64("entry_price", entryPrice),
					zap.Float64("stop_loss", stopLoss),
					zap.Float64("target", target),
				)
			}

			inPosition = true

			continue
		}

		var (
			exitPrice  float64
			exitReason types.ExitReason
			exited     = true
		)

		switch {
		case bar.Low <= stopLoss:
			exitPrice = stopLoss
			exitReason = types.ExitReasonStop
		case bar.High >= target:
			exitPrice = target
			exitReason = types.ExitReasonTarget
		case window.Signal[i] == 0:
			exitPrice = bar.Close
			exitReason = types.ExitReasonSignal
		default:
			exited = false
		}

		if !exited {
			continue
		}

		entryBar := window.Bars[entryIndex]
		result.Trades = append(result.Trades, types.Trade{
			Symbol:      window.Symbol,
			EntryTime:   entryBar.Time,
			EntryPrice:  entryPrice,
			ExitTime:    bar.Time,
			ExitPrice:   exitPrice,
			StopLoss:    stopLoss,
			Target:      target,
			ExitReason:  exitReason,
			PnL:         exitPrice - entryPrice,
			ReturnPct:   (exitPrice - entryPrice) / entryPrice * 100,
			HoldingBars: i - entryIndex,
			Degenerate:  degenerate,
		})

		inPosition = false
	}

	if inPosition {
		entryBar := window.Bars[entryIndex]
		result.Open = &types.OpenPosition{
			Symbol:     window.Symbol,
			EntryTime:  entryBar.Time,
			EntryPrice: entryPrice,
			StopLoss:   stopLoss,
			Target:     target,
			BarsHeld:   window.Len() - 1 - entryIndex,
		}

		s.log.Debug("series ended with an open position",
			zap.String("symbol", window.Symbol),
			zap.Time("entry_time", entryBar.Time),
			zap.Int("bars_held", result.Open.BarsHeld),
		)
	}

	return result, nil
}
