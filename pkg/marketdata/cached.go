package marketdata

import (
	"context"
	"database/sql"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// CachedProvider is a fetch-through bar cache backed by DuckDB. A fetch is
// served from the cache when the stored series is fresh and long enough;
// otherwise it delegates to the inner provider and replaces the cached rows.
//
// The cache serializes access with a mutex: scan workers share one DuckDB
// handle and correctness matters more than cache throughput here.
type CachedProvider struct {
	inner Provider
	db    *sql.DB
	ttl   time.Duration
	mu    sync.Mutex
}

// NewCachedProvider opens (or creates) the DuckDB database at dbPath and
// wraps inner. Use ":memory:" for an ephemeral cache. Entries older than ttl
// are refetched.
func NewCachedProvider(inner Provider, dbPath string, ttl time.Duration) (*CachedProvider, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnusable, "failed to open DuckDB cache", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			id TEXT,
			symbol TEXT,
			timeframe TEXT,
			time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS fetches (
			symbol TEXT,
			timeframe TEXT,
			fetched_at TIMESTAMP,
			bar_count INTEGER
		)`,
	}

	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			db.Close()

			return nil, errors.Wrap(errors.ErrCodeStoreUnusable, "failed to create cache tables", err)
		}
	}

	return &CachedProvider{
		inner: inner,
		db:    db,
		ttl:   ttl,
	}, nil
}

// Close releases the underlying database handle.
func (p *CachedProvider) Close() error {
	return p.db.Close()
}

// Fetch implements Provider.
func (p *CachedProvider) Fetch(ctx context.Context, symbol string, timeframe types.Timeframe, lookback int) (*types.Series, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if series, ok := p.lookup(ctx, symbol, timeframe, lookback); ok {
		return series, nil
	}

	series, err := p.inner.Fetch(ctx, symbol, timeframe, lookback)
	if err != nil {
		return nil, err
	}

	if storeErr := p.store(ctx, series); storeErr != nil {
		// A broken cache must not fail the fetch; the series is already in hand.
		return series, nil
	}

	return series, nil
}

// lookup returns the cached series when it is fresh and covers the lookback.
func (p *CachedProvider) lookup(ctx context.Context, symbol string, timeframe types.Timeframe, lookback int) (*types.Series, bool) {
	query, args, err := sq.Select("fetched_at", "bar_count").
		From("fetches").
		Where(sq.Eq{"symbol": symbol, "timeframe": string(timeframe)}).
		ToSql()
	if err != nil {
		return nil, false
	}

	var (
		fetchedAt time.Time
		barCount  int
	)

	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&fetchedAt, &barCount); err != nil {
		return nil, false
	}

	if time.Since(fetchedAt) > p.ttl || barCount < lookback {
		return nil, false
	}

	query, args, err = sq.Select("time", "open", "high", "low", "close", "volume").
		From("bars").
		Where(sq.Eq{"symbol": symbol, "timeframe": string(timeframe)}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, false
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, false
		}

		bars = append(bars, bar)
	}

	if rows.Err() != nil || len(bars) == 0 {
		return nil, false
	}

	series, err := types.NewSeries(symbol, timeframe, trimToLookback(bars, lookback))
	if err != nil {
		return nil, false
	}

	return series, true
}

// store replaces the cached rows for the series' symbol and timeframe.
func (p *CachedProvider) store(ctx context.Context, series *types.Series) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, "failed to begin cache transaction", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"bars", "fetches"} {
		query, args, buildErr := sq.Delete(table).
			Where(sq.Eq{"symbol": series.Symbol, "timeframe": string(series.Timeframe)}).
			ToSql()
		if buildErr != nil {
			err = buildErr

			return errors.Wrap(errors.ErrCodeCacheFailed, "failed to build cache delete", buildErr)
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(errors.ErrCodeCacheFailed, "failed to clear cache rows", err)
		}
	}

	insert := sq.Insert("bars").
		Columns("id", "symbol", "timeframe", "time", "open", "high", "low", "close", "volume")

	for _, bar := range series.Bars {
		insert = insert.Values(uuid.New().String(), series.Symbol, string(series.Timeframe),
			bar.Time, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, "failed to build cache insert", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, "failed to insert cache rows", err)
	}

	query, args, err = sq.Insert("fetches").
		Columns("symbol", "timeframe", "fetched_at", "bar_count").
		Values(series.Symbol, string(series.Timeframe), time.Now().UTC(), series.Len()).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, "failed to build fetch record", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, "failed to record fetch", err)
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, "failed to commit cache transaction", err)
	}

	return nil
}
