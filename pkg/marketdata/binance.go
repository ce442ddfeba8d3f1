package marketdata

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// BinanceProvider fetches daily and weekly klines from Binance. Historical
// klines are public market data, so API credentials are optional.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates a Binance-backed provider.
func NewBinanceProvider(apiKey, secretKey string) *BinanceProvider {
	return &BinanceProvider{
		client: binance.NewClient(apiKey, secretKey),
	}
}

// Fetch implements Provider.
func (p *BinanceProvider) Fetch(ctx context.Context, symbol string, timeframe types.Timeframe, lookback int) (*types.Series, error) {
	interval, err := binanceInterval(timeframe)
	if err != nil {
		return nil, err
	}

	klines, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(lookback).
		Do(ctx)
	if err != nil {
		return nil, errors.NewDataProviderError(symbol, string(timeframe), err)
	}

	if len(klines) == 0 {
		return nil, errors.NewDataProviderError(symbol, string(timeframe),
			errors.Newf(errors.ErrCodeEmptyResponse, "binance returned no klines for %s", symbol))
	}

	bars := make([]types.Bar, 0, len(klines))

	for _, kline := range klines {
		bar, parseErr := klineToBar(kline)
		if parseErr != nil {
			return nil, errors.NewDataProviderError(symbol, string(timeframe), parseErr)
		}

		bars = append(bars, bar)
	}

	series, err := types.NewSeries(symbol, timeframe, trimToLookback(bars, lookback))
	if err != nil {
		return nil, errors.NewDataProviderError(symbol, string(timeframe), err)
	}

	return series, nil
}

func klineToBar(kline *binance.Kline) (types.Bar, error) {
	open, err := strconv.ParseFloat(kline.Open, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeParseFailed, "failed to parse kline open", err)
	}

	high, err := strconv.ParseFloat(kline.High, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeParseFailed, "failed to parse kline high", err)
	}

	low, err := strconv.ParseFloat(kline.Low, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeParseFailed, "failed to parse kline low", err)
	}

	closePrice, err := strconv.ParseFloat(kline.Close, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeParseFailed, "failed to parse kline close", err)
	}

	volume, err := strconv.ParseFloat(kline.Volume, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeParseFailed, "failed to parse kline volume", err)
	}

	return types.Bar{
		Time:   time.UnixMilli(kline.OpenTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

func binanceInterval(timeframe types.Timeframe) (string, error) {
	switch timeframe {
	case types.TimeframeDaily:
		return "1d", nil
	case types.TimeframeWeekly:
		return "1w", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %s", timeframe)
	}
}
