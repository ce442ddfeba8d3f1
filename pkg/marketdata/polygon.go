package marketdata

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// PolygonProvider fetches daily and weekly aggregates from Polygon.io.
type PolygonProvider struct {
	client *polygon.Client
}

// NewPolygonProvider creates a Polygon-backed provider.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon provider requires an API key")
	}

	return &PolygonProvider{
		client: polygon.New(apiKey),
	}, nil
}

// Fetch implements Provider.
func (p *PolygonProvider) Fetch(ctx context.Context, symbol string, timeframe types.Timeframe, lookback int) (*types.Series, error) {
	timespan, calendarDays, err := polygonTimespan(timeframe, lookback)
	if err != nil {
		return nil, err
	}

	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -calendarDays)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	var bars []types.Bar

	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.Bar{
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return nil, errors.NewDataProviderError(symbol, string(timeframe), iter.Err())
	}

	if len(bars) == 0 {
		return nil, errors.NewDataProviderError(symbol, string(timeframe),
			errors.Newf(errors.ErrCodeEmptyResponse, "polygon returned no aggregates for %s", symbol))
	}

	series, err := types.NewSeries(symbol, timeframe, trimToLookback(bars, lookback))
	if err != nil {
		return nil, errors.NewDataProviderError(symbol, string(timeframe), err)
	}

	return series, nil
}

// polygonTimespan maps a timeframe to the polygon timespan plus a calendar
// window wide enough to cover the requested number of bars across weekends
// and holidays.
func polygonTimespan(timeframe types.Timeframe, lookback int) (models.Timespan, int, error) {
	switch timeframe {
	case types.TimeframeDaily:
		// Roughly 252 trading days per 365 calendar days.
		return models.Day, lookback*3/2 + 7, nil
	case types.TimeframeWeekly:
		return models.Week, lookback*7 + 14, nil
	default:
		return "", 0, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %s", timeframe)
	}
}
