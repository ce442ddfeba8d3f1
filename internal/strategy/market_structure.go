package strategy

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-screener/internal/indicator"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

const (
	colSwingHigh     = "swing_high"
	colSwingLow      = "swing_low"
	colLastSwingHigh = "last_swing_high"
	colLastSwingLow  = "last_swing_low"
	colStructureLine = "structure_line"
)

// MarketStructureConfig holds the parameters of the market-structure family.
type MarketStructureConfig struct {
	// SwingLength is the number of bars on each side a pivot must dominate.
	SwingLength int `json:"swing_length" yaml:"swing_length" validate:"required,min=1"`
	// ATRPeriod is the ATR window used for risk sizing.
	ATRPeriod int `json:"atr_period" yaml:"atr_period" validate:"required,min=1"`
	// StopMultiplier sizes the stop distance in ATRs.
	StopMultiplier float64 `json:"stop_multiplier" yaml:"stop_multiplier" validate:"required,gt=0"`
	// TargetMultiplier sizes the target as a multiple of the stop distance.
	TargetMultiplier float64 `json:"target_multiplier" yaml:"target_multiplier" validate:"required,gt=0"`
}

// DefaultMarketStructureConfig returns the reference parameters of the family.
func DefaultMarketStructureConfig() MarketStructureConfig {
	return MarketStructureConfig{
		SwingLength:      5,
		ATRPeriod:        14,
		StopMultiplier:   1.5,
		TargetMultiplier: 2.0,
	}
}

// ApplyValues overrides config fields from named grid values.
func (c *MarketStructureConfig) ApplyValues(values map[string]float64) error {
	for name, value := range values {
		switch name {
		case "swing_length":
			c.SwingLength = int(value)
		case "atr_period":
			c.ATRPeriod = int(value)
		case "stop_multiplier":
			c.StopMultiplier = value
		case "target_multiplier":
			c.TargetMultiplier = value
		default:
			return errors.Newf(errors.ErrCodeInvalidParameter, "unknown market_structure parameter: %s", name)
		}
	}

	return nil
}

// MarketStructureStrategy tracks swing pivots and break-of-structure events.
// A close above the last confirmed swing high turns the structure bullish; a
// close below the last confirmed swing low turns it bearish. The long bias
// holds while the structure is bullish.
//
// A pivot needs SwingLength bars on both sides, so it is attributed only once
// those bars have printed. Signals consume the last pivot confirmed at or
// before the previous bar, which keeps the columns free of future-bar leakage.
type MarketStructureStrategy struct {
	config MarketStructureConfig
}

// NewMarketStructureStrategy creates a market-structure strategy after
// validating the config.
func NewMarketStructureStrategy(config MarketStructureConfig) (*MarketStructureStrategy, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return &MarketStructureStrategy{config: config}, nil
}

// Name implements Strategy.
func (s *MarketStructureStrategy) Name() string {
	return "Market Structure"
}

// Description implements Strategy.
func (s *MarketStructureStrategy) Description() string {
	return fmt.Sprintf("Break-of-structure detection on swing pivots. Parameters: Swing=%d, ATR=%d",
		s.config.SwingLength, s.config.ATRPeriod)
}

// IndicatorNames implements Strategy.
func (s *MarketStructureStrategy) IndicatorNames() []string {
	return []string{colSwingHigh, colSwingLow, colStructureLine, colATR}
}

// MinBars implements Strategy.
func (s *MarketStructureStrategy) MinBars() int {
	minBars := 2*s.config.SwingLength + 1
	if s.config.ATRPeriod > minBars {
		minBars = s.config.ATRPeriod
	}

	return minBars
}

// ComputeIndicators implements Strategy.
func (s *MarketStructureStrategy) ComputeIndicators(series *types.Series) (*types.AnnotatedSeries, error) {
	if series.Len() < s.MinBars() {
		return nil, errors.NewInsufficientDataErrorf(s.MinBars(), series.Len(), series.Symbol,
			"%s requires at least %d bars, got %d", s.Name(), s.MinBars(), series.Len())
	}

	annotated := types.NewAnnotatedSeries(series)

	highs := series.Highs()
	lows := series.Lows()

	swingHigh := s.confirmedPivots(highs, true)
	swingLow := s.confirmedPivots(lows, false)

	lastHigh := forwardFill(swingHigh)
	lastLow := forwardFill(swingLow)

	structureLine := make([]float64, series.Len())
	for i := range structureLine {
		structureLine[i] = (lastHigh[i] + lastLow[i]) / 2
	}

	atr := indicator.ATR(series.Bars, s.config.ATRPeriod)

	for _, col := range []struct {
		name   string
		values []float64
	}{
		{colSwingHigh, swingHigh},
		{colSwingLow, swingLow},
		{colLastSwingHigh, lastHigh},
		{colLastSwingLow, lastLow},
		{colStructureLine, structureLine},
		{colATR, atr},
	} {
		if err := annotated.AddColumn(col.name, col.values); err != nil {
			return nil, err
		}
	}

	return annotated, nil
}

// confirmedPivots finds swing pivots in values and records each pivot's price
// at its confirmation bar (pivot index + SwingLength). A bar is a pivot high
// when it strictly dominates SwingLength bars on both sides; pivot lows
// mirror that.
func (s *MarketStructureStrategy) confirmedPivots(values []float64, high bool) []float64 {
	length := s.config.SwingLength
	result := make([]float64, len(values))

	for i := range result {
		result[i] = math.NaN()
	}

	for i := length; i < len(values)-length; i++ {
		isPivot := true

		for j := 1; j <= length; j++ {
			if high {
				if values[i-j] >= values[i] || values[i+j] >= values[i] {
					isPivot = false

					break
				}
			} else {
				if values[i-j] <= values[i] || values[i+j] <= values[i] {
					isPivot = false

					break
				}
			}
		}

		if isPivot {
			result[i+length] = values[i]
		}
	}

	return result
}

// forwardFill carries the last defined value forward over NaN gaps.
func forwardFill(values []float64) []float64 {
	result := make([]float64, len(values))
	last := math.NaN()

	for i, v := range values {
		if !math.IsNaN(v) {
			last = v
		}

		result[i] = last
	}

	return result
}

// GenerateSignals implements Strategy. The structure state machine walks the
// series once: a close above the previous bar's last swing high flips the
// structure bullish, a close below the last swing low flips it bearish, and
// the long bias follows the bullish state.
func (s *MarketStructureStrategy) GenerateSignals(a *types.AnnotatedSeries) error {
	lastHigh, ok := a.Column(colLastSwingHigh)
	if !ok {
		return errors.New(errors.ErrCodeIndicatorCalculation, "swing columns missing; run ComputeIndicators first")
	}

	lastLow, _ := a.Column(colLastSwingLow)
	atr, _ := a.Column(colATR)

	structure := 0

	for i := 1; i < a.Len(); i++ {
		price := a.Bars[i].Close

		switch {
		case !math.IsNaN(lastHigh[i-1]) && price > lastHigh[i-1]:
			structure = 1
		case !math.IsNaN(lastLow[i-1]) && price < lastLow[i-1]:
			structure = -1
		}

		if structure > 0 {
			a.Signal[i] = 1
		}
	}

	applyRiskLevels(a, atr, s.config.StopMultiplier, s.config.TargetMultiplier)

	return nil
}

// CheckConvergence implements Strategy.
func (s *MarketStructureStrategy) CheckConvergence(daily, weekly *types.AnnotatedSeries) (types.ConvergenceResult, error) {
	detail := map[string]float64{}

	if daily != nil && !daily.IsEmpty() {
		detail["daily_swing_high"] = daily.ColumnValue(colLastSwingHigh)
		detail["daily_swing_low"] = daily.ColumnValue(colLastSwingLow)
		detail["atr"] = daily.ColumnValue(colATR)

		if last, ok := daily.Last(); ok {
			detail["entry_price"] = last.Close
		}
	}

	if weekly != nil && !weekly.IsEmpty() {
		detail["weekly_swing_high"] = weekly.ColumnValue(colLastSwingHigh)
		detail["weekly_swing_low"] = weekly.ColumnValue(colLastSwingLow)
	}

	return checkConvergence(daily, weekly, detail)
}

var _ Strategy = (*MarketStructureStrategy)(nil)
