package indicator

// SMA computes the simple moving average of values over the given period.
// The first period-1 entries are NaN.
func SMA(values []float64, period int) []float64 {
	result := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return result
	}

	var sum float64
	for i, v := range values {
		sum += v

		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			result[i] = sum / float64(period)
		}
	}

	return result
}

// EMA computes the exponential moving average of values with the standard
// span smoothing factor 2/(period+1), seeded at the first value. Every entry
// is defined.
func EMA(values []float64, period int) []float64 {
	result := nanSlice(len(values))
	if period <= 0 || len(values) == 0 {
		return result
	}

	alpha := 2.0 / (float64(period) + 1.0)

	result[0] = values[0]
	for i := 1; i < len(values); i++ {
		result[i] = alpha*values[i] + (1-alpha)*result[i-1]
	}

	return result
}
