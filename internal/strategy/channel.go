package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-screener/internal/indicator"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

const (
	colChannelUpper = "channel_upper"
	colChannelUnder = "channel_under"
	colChannelMid   = "channel_mid"
	colChannelEMA   = "ema"
	colATR          = "atr"
)

// ChannelConfig holds the parameters of the channel-crossover family.
type ChannelConfig struct {
	// UpperPeriod is the rolling window over highs for the resistance line.
	UpperPeriod int `json:"upper_period" yaml:"upper_period" validate:"required,min=1"`
	// UnderPeriod is the rolling window over lows for the support line.
	UnderPeriod int `json:"under_period" yaml:"under_period" validate:"required,min=1"`
	// EMAPeriod is the span of the reference EMA over closes.
	EMAPeriod int `json:"ema_period" yaml:"ema_period" validate:"required,min=1"`
	// ATRPeriod is the ATR window used for risk sizing.
	ATRPeriod int `json:"atr_period" yaml:"atr_period" validate:"required,min=1"`
	// StopMultiplier sizes the stop distance in ATRs.
	StopMultiplier float64 `json:"stop_multiplier" yaml:"stop_multiplier" validate:"required,gt=0"`
	// TargetMultiplier sizes the target as a multiple of the stop distance.
	TargetMultiplier float64 `json:"target_multiplier" yaml:"target_multiplier" validate:"required,gt=0"`
}

// DefaultChannelConfig returns the reference parameters of the family.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		UpperPeriod:      20,
		UnderPeriod:      30,
		EMAPeriod:        9,
		ATRPeriod:        14,
		StopMultiplier:   1.5,
		TargetMultiplier: 2.0,
	}
}

// ApplyValues overrides config fields from named grid values.
func (c *ChannelConfig) ApplyValues(values map[string]float64) error {
	for name, value := range values {
		switch name {
		case "upper_period":
			c.UpperPeriod = int(value)
		case "under_period":
			c.UnderPeriod = int(value)
		case "ema_period":
			c.EMAPeriod = int(value)
		case "atr_period":
			c.ATRPeriod = int(value)
		case "stop_multiplier":
			c.StopMultiplier = value
		case "target_multiplier":
			c.TargetMultiplier = value
		default:
			return errors.Newf(errors.ErrCodeInvalidParameter, "unknown channel parameter: %s", name)
		}
	}

	return nil
}

// ChannelStrategy is a trend channel built from rolling means of highs and
// lows. The long bias holds while the channel midline sits above a reference
// EMA of closes.
type ChannelStrategy struct {
	config ChannelConfig
}

// NewChannelStrategy creates a channel-crossover strategy after validating
// the config.
func NewChannelStrategy(config ChannelConfig) (*ChannelStrategy, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return &ChannelStrategy{config: config}, nil
}

// Name implements Strategy.
func (s *ChannelStrategy) Name() string {
	return "Channel Crossover"
}

// Description implements Strategy.
func (s *ChannelStrategy) Description() string {
	return fmt.Sprintf("Trend channel with multi-timeframe convergence. Parameters: Upper=%d, Under=%d, EMA=%d",
		s.config.UpperPeriod, s.config.UnderPeriod, s.config.EMAPeriod)
}

// IndicatorNames implements Strategy.
func (s *ChannelStrategy) IndicatorNames() []string {
	return []string{colChannelUpper, colChannelUnder, colChannelMid, colChannelEMA, colATR}
}

// MinBars implements Strategy.
func (s *ChannelStrategy) MinBars() int {
	minBars := s.config.UpperPeriod
	if s.config.UnderPeriod > minBars {
		minBars = s.config.UnderPeriod
	}

	if s.config.ATRPeriod > minBars {
		minBars = s.config.ATRPeriod
	}

	return minBars
}

// ComputeIndicators implements Strategy.
func (s *ChannelStrategy) ComputeIndicators(series *types.Series) (*types.AnnotatedSeries, error) {
	if series.Len() < s.MinBars() {
		return nil, errors.NewInsufficientDataErrorf(s.MinBars(), series.Len(), series.Symbol,
			"%s requires at least %d bars, got %d", s.Name(), s.MinBars(), series.Len())
	}

	annotated := types.NewAnnotatedSeries(series)

	upper := indicator.SMA(series.Highs(), s.config.UpperPeriod)
	under := indicator.SMA(series.Lows(), s.config.UnderPeriod)

	mid := make([]float64, series.Len())
	for i := range mid {
		mid[i] = (upper[i] + under[i]) / 2
	}

	ema := indicator.EMA(series.Closes(), s.config.EMAPeriod)
	atr := indicator.ATR(series.Bars, s.config.ATRPeriod)

	for _, col := range []struct {
		name   string
		values []float64
	}{
		{colChannelUpper, upper},
		{colChannelUnder, under},
		{colChannelMid, mid},
		{colChannelEMA, ema},
		{colATR, atr},
	} {
		if err := annotated.AddColumn(col.name, col.values); err != nil {
			return nil, err
		}
	}

	return annotated, nil
}

// GenerateSignals implements Strategy. The long bias holds on bars where the
// channel midline is above the EMA.
func (s *ChannelStrategy) GenerateSignals(a *types.AnnotatedSeries) error {
	mid, ok := a.Column(colChannelMid)
	if !ok {
		return errors.New(errors.ErrCodeIndicatorCalculation, "channel midline column missing; run ComputeIndicators first")
	}

	ema, _ := a.Column(colChannelEMA)
	atr, _ := a.Column(colATR)

	for i := range a.Bars {
		// NaN comparisons are false, so warmup bars stay flat.
		if mid[i] > ema[i] {
			a.Signal[i] = 1
		}
	}

	applyRiskLevels(a, atr, s.config.StopMultiplier, s.config.TargetMultiplier)

	return nil
}

// CheckConvergence implements Strategy.
func (s *ChannelStrategy) CheckConvergence(daily, weekly *types.AnnotatedSeries) (types.ConvergenceResult, error) {
	detail := map[string]float64{}

	if daily != nil && !daily.IsEmpty() {
		detail["daily_mid"] = daily.ColumnValue(colChannelMid)
		detail["daily_ema"] = daily.ColumnValue(colChannelEMA)
		detail["atr"] = daily.ColumnValue(colATR)
	}

	if weekly != nil && !weekly.IsEmpty() {
		detail["weekly_mid"] = weekly.ColumnValue(colChannelMid)
		detail["weekly_ema"] = weekly.ColumnValue(colChannelEMA)
	}

	return checkConvergence(daily, weekly, detail)
}

var _ Strategy = (*ChannelStrategy)(nil)
