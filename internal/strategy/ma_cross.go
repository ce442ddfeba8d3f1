package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-screener/internal/indicator"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

const (
	colEMAFast = "ema_fast"
	colEMASlow = "ema_slow"
)

// MACrossConfig holds the parameters of the moving-average-cross family.
type MACrossConfig struct {
	// FastPeriod is the span of the fast EMA over closes.
	FastPeriod int `json:"fast_period" yaml:"fast_period" validate:"required,min=1"`
	// SlowPeriod is the span of the slow EMA over closes. Must exceed the
	// fast period.
	SlowPeriod int `json:"slow_period" yaml:"slow_period" validate:"required,gtfield=FastPeriod"`
	// ATRPeriod is the ATR window used for risk sizing.
	ATRPeriod int `json:"atr_period" yaml:"atr_period" validate:"required,min=1"`
	// StopMultiplier sizes the stop distance in ATRs.
	StopMultiplier float64 `json:"stop_multiplier" yaml:"stop_multiplier" validate:"required,gt=0"`
	// TargetMultiplier sizes the target as a multiple of the stop distance.
	TargetMultiplier float64 `json:"target_multiplier" yaml:"target_multiplier" validate:"required,gt=0"`
}

// DefaultMACrossConfig returns the reference parameters of the family.
func DefaultMACrossConfig() MACrossConfig {
	return MACrossConfig{
		FastPeriod:       9,
		SlowPeriod:       21,
		ATRPeriod:        14,
		StopMultiplier:   1.5,
		TargetMultiplier: 2.0,
	}
}

// ApplyValues overrides config fields from named grid values.
func (c *MACrossConfig) ApplyValues(values map[string]float64) error {
	for name, value := range values {
		switch name {
		case "fast_period":
			c.FastPeriod = int(value)
		case "slow_period":
			c.SlowPeriod = int(value)
		case "atr_period":
			c.ATRPeriod = int(value)
		case "stop_multiplier":
			c.StopMultiplier = value
		case "target_multiplier":
			c.TargetMultiplier = value
		default:
			return errors.Newf(errors.ErrCodeInvalidParameter, "unknown ma_cross parameter: %s", name)
		}
	}

	return nil
}

// MACrossStrategy holds a long bias while a fast EMA of closes sits above a
// slow EMA.
type MACrossStrategy struct {
	config MACrossConfig
}

// NewMACrossStrategy creates a moving-average-cross strategy after validating
// the config.
func NewMACrossStrategy(config MACrossConfig) (*MACrossStrategy, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return &MACrossStrategy{config: config}, nil
}

// Name implements Strategy.
func (s *MACrossStrategy) Name() string {
	return "Moving Average Cross"
}

// Description implements Strategy.
func (s *MACrossStrategy) Description() string {
	return fmt.Sprintf("EMA crossover with multi-timeframe convergence. Parameters: Fast=%d, Slow=%d",
		s.config.FastPeriod, s.config.SlowPeriod)
}

// IndicatorNames implements Strategy.
func (s *MACrossStrategy) IndicatorNames() []string {
	return []string{colEMAFast, colEMASlow, colATR}
}

// MinBars implements Strategy.
func (s *MACrossStrategy) MinBars() int {
	minBars := s.config.SlowPeriod
	if s.config.ATRPeriod > minBars {
		minBars = s.config.ATRPeriod
	}

	return minBars
}

// ComputeIndicators implements Strategy.
func (s *MACrossStrategy) ComputeIndicators(series *types.Series) (*types.AnnotatedSeries, error) {
	if series.Len() < s.MinBars() {
		return nil, errors.NewInsufficientDataErrorf(s.MinBars(), series.Len(), series.Symbol,
			"%s requires at least %d bars, got %d", s.Name(), s.MinBars(), series.Len())
	}

	annotated := types.NewAnnotatedSeries(series)

	closes := series.Closes()

	for _, col := range []struct {
		name   string
		values []float64
	}{
		{colEMAFast, indicator.EMA(closes, s.config.FastPeriod)},
		{colEMASlow, indicator.EMA(closes, s.config.SlowPeriod)},
		{colATR, indicator.ATR(series.Bars, s.config.ATRPeriod)},
	} {
		if err := annotated.AddColumn(col.name, col.values); err != nil {
			return nil, err
		}
	}

	return annotated, nil
}

// GenerateSignals implements Strategy. The long bias holds on bars where the
// fast EMA is above the slow EMA.
func (s *MACrossStrategy) GenerateSignals(a *types.AnnotatedSeries) error {
	fast, ok := a.Column(colEMAFast)
	if !ok {
		return errors.New(errors.ErrCodeIndicatorCalculation, "fast EMA column missing; run ComputeIndicators first")
	}

	slow, _ := a.Column(colEMASlow)
	atr, _ := a.Column(colATR)

	for i := range a.Bars {
		if fast[i] > slow[i] {
			a.Signal[i] = 1
		}
	}

	applyRiskLevels(a, atr, s.config.StopMultiplier, s.config.TargetMultiplier)

	return nil
}

// CheckConvergence implements Strategy. The detail includes the percentage
// distance between the EMAs on each timeframe as a signal-strength reading.
func (s *MACrossStrategy) CheckConvergence(daily, weekly *types.AnnotatedSeries) (types.ConvergenceResult, error) {
	detail := map[string]float64{}

	if daily != nil && !daily.IsEmpty() {
		fast := daily.ColumnValue(colEMAFast)
		slow := daily.ColumnValue(colEMASlow)
		detail["daily_ema_fast"] = fast
		detail["daily_ema_slow"] = slow
		detail["atr"] = daily.ColumnValue(colATR)

		if slow != 0 {
			detail["daily_distance_pct"] = (fast - slow) / slow * 100
		}
	}

	if weekly != nil && !weekly.IsEmpty() {
		fast := weekly.ColumnValue(colEMAFast)
		slow := weekly.ColumnValue(colEMASlow)
		detail["weekly_ema_fast"] = fast
		detail["weekly_ema_slow"] = slow

		if slow != 0 {
			detail["weekly_distance_pct"] = (fast - slow) / slow * 100
		}
	}

	return checkConvergence(daily, weekly, detail)
}

var _ Strategy = (*MACrossStrategy)(nil)
