// Package marketdata supplies historical bar series to the evaluation
// engine. Providers are external collaborators: any fetch failure is wrapped
// as a DataProviderError so batch drivers can record it as a per-item failure
// instead of aborting.
package marketdata

import (
	"context"

	"github.com/rxtech-lab/argo-screener/internal/types"
)

// Provider fetches a bar series for one instrument and timeframe. lookback
// is the number of bars requested; providers may return fewer when less
// history exists.
type Provider interface {
	Fetch(ctx context.Context, symbol string, timeframe types.Timeframe, lookback int) (*types.Series, error)
}

// trimToLookback keeps the most recent lookback bars.
func trimToLookback(bars []types.Bar, lookback int) []types.Bar {
	if lookback <= 0 || len(bars) <= lookback {
		return bars
	}

	return bars[len(bars)-lookback:]
}
