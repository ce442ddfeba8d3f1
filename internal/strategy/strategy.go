// Package strategy defines the strategy contract and the built-in strategy
// families. A strategy is a pure function set: bars in, indicator columns,
// a binary long-bias signal and ATR-sized risk levels out. Strategies never
// look ahead of the bar being annotated.
package strategy

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// Strategy is the capability set every strategy variant implements.
type Strategy interface {
	// Name returns the human-readable strategy name.
	Name() string
	// Description returns a one-line description including key parameters.
	Description() string
	// IndicatorNames returns the ordered names of the indicator columns the
	// strategy annotates.
	IndicatorNames() []string
	// MinBars returns the minimum series length the strategy requires.
	MinBars() int

	// ComputeIndicators derives an annotated series with the strategy's
	// indicator columns. It returns an InsufficientDataError when the series
	// is shorter than MinBars.
	ComputeIndicators(s *types.Series) (*types.AnnotatedSeries, error)

	// GenerateSignals fills the signal, stop-loss and target columns of an
	// annotated series produced by ComputeIndicators. Stop and target are
	// defined on every bar that carries signal = 1.
	GenerateSignals(a *types.AnnotatedSeries) error

	// CheckConvergence compares the final bar of the daily and weekly series.
	// It returns a NotEnoughHistoryError when either series is empty.
	CheckConvergence(daily, weekly *types.AnnotatedSeries) (types.ConvergenceResult, error)
}

// Annotate runs the full per-series pipeline: indicators then signals.
func Annotate(s Strategy, series *types.Series) (*types.AnnotatedSeries, error) {
	annotated, err := s.ComputeIndicators(series)
	if err != nil {
		return nil, err
	}

	if err := s.GenerateSignals(annotated); err != nil {
		return nil, err
	}

	return annotated, nil
}

var validate = validator.New()

// validateConfig runs struct-tag validation on a strategy parameter config.
func validateConfig(cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy parameters", err)
	}

	return nil
}

// applyRiskLevels fills the stop-loss and target columns from the ATR column.
// The convention is a stop-distance multiple: the stop sits stopMult ATRs
// below the close and the target sits targetMult stop-distances above it.
// Bars without a defined ATR keep NaN risk levels.
func applyRiskLevels(a *types.AnnotatedSeries, atr []float64, stopMult, targetMult float64) {
	for i, bar := range a.Bars {
		if math.IsNaN(atr[i]) {
			continue
		}

		distance := atr[i] * stopMult
		a.StopLoss[i] = bar.Close - distance
		a.Target[i] = bar.Close + distance*targetMult
	}
}

// checkConvergence implements the shared multi-timeframe rule: convergence
// holds exactly when the final daily and weekly bars both carry signal = 1.
// The daily bar's risk levels are surfaced for display.
func checkConvergence(daily, weekly *types.AnnotatedSeries, detail map[string]float64) (types.ConvergenceResult, error) {
	if daily == nil || daily.IsEmpty() {
		symbol := ""
		if daily != nil {
			symbol = daily.Symbol
		}

		return types.ConvergenceResult{}, errors.NewNotEnoughHistoryError(symbol, string(types.TimeframeDaily))
	}

	if weekly == nil || weekly.IsEmpty() {
		symbol := ""
		if weekly != nil {
			symbol = weekly.Symbol
		}

		return types.ConvergenceResult{}, errors.NewNotEnoughHistoryError(symbol, string(types.TimeframeWeekly))
	}

	dailySignal := daily.LastSignal() == 1
	weeklySignal := weekly.LastSignal() == 1

	return types.ConvergenceResult{
		DailySignal:  dailySignal,
		WeeklySignal: weeklySignal,
		Convergence:  dailySignal && weeklySignal,
		StopLoss:     daily.LastStopLoss(),
		Target:       daily.LastTarget(),
		Detail:       detail,
	}, nil
}
