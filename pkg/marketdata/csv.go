package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// CSVProvider reads bar series from CSV files on disk, for offline runs and
// tests. Files are named SYMBOL_TIMEFRAME.csv (e.g. AAPL_daily.csv) with a
// header row of time,open,high,low,close,volume. Timestamps are RFC3339 or
// plain dates (2006-01-02).
type CSVProvider struct {
	dir string
}

// NewCSVProvider creates a provider rooted at dir.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

// Fetch implements Provider.
func (p *CSVProvider) Fetch(_ context.Context, symbol string, timeframe types.Timeframe, lookback int) (*types.Series, error) {
	path := filepath.Join(p.dir, fmt.Sprintf("%s_%s.csv", symbol, timeframe))

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataProviderError(symbol, string(timeframe), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewDataProviderError(symbol, string(timeframe), err)
	}

	if len(records) < 2 {
		return nil, errors.NewDataProviderError(symbol, string(timeframe),
			errors.Newf(errors.ErrCodeEmptyResponse, "no bar rows in %s", path))
	}

	bars := make([]types.Bar, 0, len(records)-1)

	// Skip the header row.
	for i, record := range records[1:] {
		bar, parseErr := recordToBar(record)
		if parseErr != nil {
			return nil, errors.NewDataProviderError(symbol, string(timeframe),
				errors.Wrapf(errors.ErrCodeParseFailed, parseErr, "row %d of %s", i+2, path))
		}

		bars = append(bars, bar)
	}

	series, err := types.NewSeries(symbol, timeframe, trimToLookback(bars, lookback))
	if err != nil {
		return nil, errors.NewDataProviderError(symbol, string(timeframe), err)
	}

	return series, nil
}

func recordToBar(record []string) (types.Bar, error) {
	if len(record) != 6 {
		return types.Bar{}, errors.Newf(errors.ErrCodeParseFailed, "expected 6 columns, got %d", len(record))
	}

	timestamp, err := parseBarTime(record[0])
	if err != nil {
		return types.Bar{}, err
	}

	values := make([]float64, 5)

	for i, field := range record[1:] {
		value, parseErr := strconv.ParseFloat(field, 64)
		if parseErr != nil {
			return types.Bar{}, errors.Wrapf(errors.ErrCodeParseFailed, parseErr, "column %d", i+1)
		}

		values[i] = value
	}

	return types.Bar{
		Time:   timestamp,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

func parseBarTime(field string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if timestamp, err := time.Parse(layout, field); err == nil {
			return timestamp, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeParseFailed, "unrecognized timestamp format: %s", field)
}
