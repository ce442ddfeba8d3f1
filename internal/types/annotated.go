package types

import (
	"math"

	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// AnnotatedSeries is a Series with appended derived columns: strategy-defined
// indicator values, a binary long-bias signal, and the stop-loss/target prices
// captured on bars where an entry condition exists. It is produced and owned
// by one strategy invocation and consumed read-only by the simulator.
//
// Indicator, stop and target columns use NaN for bars where the value is not
// yet defined (warmup window). The signal column uses 0 for both "no bias"
// and "not yet computable"; the simulator treats a signal bar with NaN
// stop/target as warmup and skips it.
type AnnotatedSeries struct {
	*Series

	columns  map[string][]float64
	Signal   []int
	StopLoss []float64
	Target   []float64
}

// NewAnnotatedSeries derives an annotated view of s with empty signal and
// risk columns sized to the series.
func NewAnnotatedSeries(s *Series) *AnnotatedSeries {
	n := s.Len()

	stop := make([]float64, n)
	target := make([]float64, n)

	for i := range stop {
		stop[i] = math.NaN()
		target[i] = math.NaN()
	}

	return &AnnotatedSeries{
		Series:   s,
		columns:  make(map[string][]float64),
		Signal:   make([]int, n),
		StopLoss: stop,
		Target:   target,
	}
}

// AddColumn appends a named indicator column. The column must be aligned to
// the underlying series.
func (a *AnnotatedSeries) AddColumn(name string, values []float64) error {
	if len(values) != a.Len() {
		return errors.Newf(errors.ErrCodeInvalidSeries,
			"column %q has %d values, series has %d bars", name, len(values), a.Len())
	}

	a.columns[name] = values

	return nil
}

// Column returns a named indicator column. The second return value is false
// when the column does not exist.
func (a *AnnotatedSeries) Column(name string) ([]float64, bool) {
	values, ok := a.columns[name]

	return values, ok
}

// ColumnValue returns the value of a named column at the final bar, or NaN
// when the column is missing or the series is empty.
func (a *AnnotatedSeries) ColumnValue(name string) float64 {
	values, ok := a.columns[name]
	if !ok || len(values) == 0 {
		return math.NaN()
	}

	return values[len(values)-1]
}

// LastSignal returns the signal on the final bar, or 0 when the series is
// empty.
func (a *AnnotatedSeries) LastSignal() int {
	if len(a.Signal) == 0 {
		return 0
	}

	return a.Signal[len(a.Signal)-1]
}

// LastStopLoss returns the stop-loss on the final bar, or NaN when undefined.
func (a *AnnotatedSeries) LastStopLoss() float64 {
	if len(a.StopLoss) == 0 {
		return math.NaN()
	}

	return a.StopLoss[len(a.StopLoss)-1]
}

// LastTarget returns the target on the final bar, or NaN when undefined.
func (a *AnnotatedSeries) LastTarget() float64 {
	if len(a.Target) == 0 {
		return math.NaN()
	}

	return a.Target[len(a.Target)-1]
}

// Tail returns an annotated view restricted to the last n bars. Columns are
// re-sliced, not copied; the result shares storage with the receiver. When the
// series holds fewer than n bars the receiver itself is returned.
func (a *AnnotatedSeries) Tail(n int) *AnnotatedSeries {
	total := a.Len()
	if n <= 0 || total <= n {
		return a
	}

	offset := total - n

	tailSeries := &Series{
		Symbol:    a.Symbol,
		Timeframe: a.Timeframe,
		Bars:      a.Bars[offset:],
	}

	columns := make(map[string][]float64, len(a.columns))
	for name, values := range a.columns {
		columns[name] = values[offset:]
	}

	return &AnnotatedSeries{
		Series:   tailSeries,
		columns:  columns,
		Signal:   a.Signal[offset:],
		StopLoss: a.StopLoss[offset:],
		Target:   a.Target[offset:],
	}
}
