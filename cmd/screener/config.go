package main

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-screener/internal/optimizer"
	"github.com/rxtech-lab/argo-screener/internal/scanner"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"gopkg.in/yaml.v3"
)

// ProviderConfig selects and configures the market data source. API keys are
// read from the environment (POLYGON_API_KEY, BINANCE_API_KEY,
// BINANCE_SECRET_KEY), never from the config file.
type ProviderConfig struct {
	// Type is one of csv, polygon, binance.
	Type string `yaml:"type" validate:"required,oneof=csv polygon binance"`
	// DataDir is the directory CSV files are read from (csv provider only).
	DataDir string `yaml:"data_dir"`

	// CachePath enables the DuckDB fetch-through cache when non-empty.
	CachePath string `yaml:"cache_path"`
	// CacheTTL controls how long cached series stay fresh. Defaults to 12h.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	RateLimit marketdata.RateLimitConfig `yaml:"rate_limit"`
}

// StrategyConfig names a strategy family and its parameter overrides.
type StrategyConfig struct {
	Family string             `yaml:"family" validate:"required"`
	Params map[string]float64 `yaml:"params"`
}

// Config is the screener's YAML configuration file.
type Config struct {
	Provider ProviderConfig   `yaml:"provider" validate:"required"`
	Strategy StrategyConfig   `yaml:"strategy" validate:"required"`
	Scan     scanner.Config   `yaml:"scan"`
	Optimize optimizer.Config `yaml:"optimize"`
	// Grid is the parameter sweep used by the optimize command.
	Grid optimizer.Grid `yaml:"grid"`
	// CatalogPath points at the ticker universe manifest.
	CatalogPath string `yaml:"catalog_path"`
}

var validate = validator.New()

// LoadConfig reads and validates the YAML config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read config file", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config file", err)
	}

	if err := validate.Struct(&config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config file", err)
	}

	if config.Provider.CacheTTL <= 0 {
		config.Provider.CacheTTL = 12 * time.Hour
	}

	return &config, nil
}

// buildProvider assembles the provider chain: base source, rate limiting,
// then the optional DuckDB cache in front. Returns a cleanup func for the
// cache handle.
func buildProvider(config ProviderConfig) (marketdata.Provider, func() error, error) {
	var (
		base marketdata.Provider
		err  error
	)

	switch config.Type {
	case "csv":
		if config.DataDir == "" {
			return nil, nil, errors.New(errors.ErrCodeInvalidConfiguration, "csv provider requires data_dir")
		}

		base = marketdata.NewCSVProvider(config.DataDir)
	case "polygon":
		base, err = marketdata.NewPolygonProvider(os.Getenv("POLYGON_API_KEY"))
		if err != nil {
			return nil, nil, err
		}
	case "binance":
		base = marketdata.NewBinanceProvider(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_SECRET_KEY"))
	default:
		return nil, nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown provider type: %s", config.Type)
	}

	provider := marketdata.Provider(marketdata.NewRateLimitedProvider(base, config.RateLimit))
	cleanup := func() error { return nil }

	if config.CachePath != "" {
		cached, err := marketdata.NewCachedProvider(provider, config.CachePath, config.CacheTTL)
		if err != nil {
			return nil, nil, err
		}

		provider = cached
		cleanup = cached.Close
	}

	return provider, cleanup, nil
}
