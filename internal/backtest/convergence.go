package backtest

import (
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// CheckConvergence compares the latest long-bias signal across the daily and
// weekly series of one instrument: convergence holds exactly when the final
// bar of both series carries signal = 1. The daily bar's stop-loss and target
// are surfaced for display.
//
// This is the strategy-agnostic form of the check; strategies add their own
// indicator detail through Strategy.CheckConvergence.
func CheckConvergence(daily, weekly *types.AnnotatedSeries) (types.ConvergenceResult, error) {
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
		Detail:       nil,
	}, nil
}
