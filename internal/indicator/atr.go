package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-screener/internal/types"
)

// TrueRange computes the per-bar true range: the largest of high-low,
// |high-prevClose| and |low-prevClose|. The first bar has no previous close,
// so its true range is simply high-low.
func TrueRange(bars []types.Bar) []float64 {
	result := make([]float64, len(bars))

	for i, bar := range bars {
		if i == 0 {
			result[i] = bar.High - bar.Low

			continue
		}

		prevClose := bars[i-1].Close
		result[i] = math.Max(
			bar.High-bar.Low,
			math.Max(
				math.Abs(bar.High-prevClose),
				math.Abs(bar.Low-prevClose),
			),
		)
	}

	return result
}

// ATR computes the Average True Range as a simple moving average of the true
// range over the given period. The first period-1 entries are NaN.
func ATR(bars []types.Bar, period int) []float64 {
	return SMA(TrueRange(bars), period)
}
