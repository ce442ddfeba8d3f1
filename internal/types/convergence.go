package types

// ConvergenceResult is the outcome of comparing the latest long-bias signal
// across the daily and weekly series of one instrument. It is recomputed on
// demand and never persisted.
type ConvergenceResult struct {
	// DailySignal is true when the final daily bar carries signal = 1.
	DailySignal bool `yaml:"daily_signal"`
	// WeeklySignal is true when the final weekly bar carries signal = 1.
	WeeklySignal bool `yaml:"weekly_signal"`
	// Convergence is true exactly when both timeframes agree on a long bias.
	Convergence bool `yaml:"convergence"`
	// StopLoss and Target are the daily bar's risk levels, surfaced for
	// display. NaN when the strategy has not defined them on the final bar.
	StopLoss float64 `yaml:"stop_loss"`
	Target   float64 `yaml:"target"`
	// Detail carries strategy-specific indicator readings from the final bars
	// (e.g. channel mid and EMA per timeframe).
	Detail map[string]float64 `yaml:"detail,omitempty"`
}
