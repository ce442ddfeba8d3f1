package types

import "time"

// ExitReason records which of the three exit conditions closed a trade.
type ExitReason string

const (
	// ExitReasonStop means the bar's low reached the stop-loss price.
	ExitReasonStop ExitReason = "stop"
	// ExitReasonTarget means the bar's high reached the target price.
	ExitReasonTarget ExitReason = "target"
	// ExitReasonSignal means the long-bias signal turned off.
	ExitReasonSignal ExitReason = "signal"
)

// Trade is a realized round trip created by the simulator when a position
// closes. It is immutable afterward.
type Trade struct {
	Symbol      string     `csv:"symbol" yaml:"symbol"`
	EntryTime   time.Time  `csv:"entry_time" yaml:"entry_time"`
	EntryPrice  float64    `csv:"entry_price" yaml:"entry_price"`
	ExitTime    time.Time  `csv:"exit_time" yaml:"exit_time"`
	ExitPrice   float64    `csv:"exit_price" yaml:"exit_price"`
	StopLoss    float64    `csv:"stop_loss" yaml:"stop_loss"`
	Target      float64    `csv:"target" yaml:"target"`
	ExitReason  ExitReason `csv:"exit_reason" yaml:"exit_reason"`
	PnL         float64    `csv:"pnl" yaml:"pnl"`
	ReturnPct   float64    `csv:"return_pct" yaml:"return_pct"`
	HoldingBars int        `csv:"holding_bars" yaml:"holding_bars"`
	// Degenerate flags a trade opened with stop at or above entry, or target
	// at or below entry. The engine opens it as given.
	Degenerate bool `csv:"degenerate" yaml:"degenerate"`
}

// OpenPosition describes a position still open when the series ended. It is
// excluded from the realized trade list and reported separately; there is no
// forced mark-to-market close.
type OpenPosition struct {
	Symbol     string    `yaml:"symbol"`
	EntryTime  time.Time `yaml:"entry_time"`
	EntryPrice float64   `yaml:"entry_price"`
	StopLoss   float64   `yaml:"stop_loss"`
	Target     float64   `yaml:"target"`
	BarsHeld   int       `yaml:"bars_held"`
}
