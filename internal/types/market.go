package types

import (
	"time"

	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// Timeframe identifies the bar interval of a series.
type Timeframe string

const (
	TimeframeDaily  Timeframe = "daily"
	TimeframeWeekly Timeframe = "weekly"
)

// IsValid reports whether the timeframe is one of the supported intervals.
func (t Timeframe) IsValid() bool {
	return t == TimeframeDaily || t == TimeframeWeekly
}

// Bar is a single OHLCV price bar. The engine uses the fields as given and
// does not re-validate OHLC consistency.
type Bar struct {
	Time   time.Time `csv:"time" yaml:"time"`
	Open   float64   `csv:"open" yaml:"open"`
	High   float64   `csv:"high" yaml:"high"`
	Low    float64   `csv:"low" yaml:"low"`
	Close  float64   `csv:"close" yaml:"close"`
	Volume float64   `csv:"volume" yaml:"volume"`
}

// Series is an ordered sequence of bars for one instrument and one timeframe.
// Timestamps are strictly increasing with no duplicates. A series is built
// once per evaluation and never mutated in place; derived columns live on
// AnnotatedSeries.
type Series struct {
	Symbol    string
	Timeframe Timeframe
	Bars      []Bar
}

// NewSeries builds a Series and enforces the ordering invariant.
func NewSeries(symbol string, timeframe Timeframe, bars []Bar) (*Series, error) {
	if !timeframe.IsValid() {
		return nil, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %s", timeframe)
	}

	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeInvalidSeries,
				"bars must have strictly increasing timestamps: bar %d (%s) not after bar %d (%s)",
				i, bars[i].Time, i-1, bars[i-1].Time)
		}
	}

	return &Series{
		Symbol:    symbol,
		Timeframe: timeframe,
		Bars:      bars,
	}, nil
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.Bars)
}

// IsEmpty reports whether the series holds no bars.
func (s *Series) IsEmpty() bool {
	return len(s.Bars) == 0
}

// Last returns the final bar of the series. The second return value is false
// when the series is empty.
func (s *Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}

	return s.Bars[len(s.Bars)-1], true
}

// Closes returns the close column of the series.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}

	return closes
}

// Highs returns the high column of the series.
func (s *Series) Highs() []float64 {
	highs := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		highs[i] = bar.High
	}

	return highs
}

// Lows returns the low column of the series.
func (s *Series) Lows() []float64 {
	lows := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		lows[i] = bar.Low
	}

	return lows
}
