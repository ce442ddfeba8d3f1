// Package catalog loads the ticker universe for a scan run. A YAML manifest
// groups markets into categories, and each category points at a CSV file of
// ticker symbols.
package catalog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manifest describes the ticker universe. Keys of Markets are market names
// (e.g. "us", "crypto"); each market maps category names to the CSV file
// holding that category's symbols, relative to the manifest's directory.
type Manifest struct {
	Markets map[string]map[string]string `yaml:"markets"`
}

// Entry is one symbol together with where it came from.
type Entry struct {
	Symbol   string `yaml:"symbol"`
	Market   string `yaml:"market"`
	Category string `yaml:"category"`
}

// Catalog is a loaded ticker universe.
type Catalog struct {
	entries []Entry
	log     *logger.Logger
}

// Load reads the manifest at manifestPath and every CSV file it references.
// A missing or unreadable category file is logged and skipped rather than
// failing the whole load; a malformed manifest fails.
func Load(manifestPath string, log *logger.Logger) (*Catalog, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestFailed, "failed to read catalog manifest", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestFailed, "failed to parse catalog manifest", err)
	}

	if len(manifest.Markets) == 0 {
		return nil, errors.New(errors.ErrCodeManifestFailed, "catalog manifest defines no markets")
	}

	baseDir := filepath.Dir(manifestPath)
	catalog := &Catalog{log: log}

	for _, market := range sortedKeys(manifest.Markets) {
		categories := manifest.Markets[market]
		for _, category := range sortedKeys(categories) {
			path := categories[category]
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}

			symbols, err := readSymbols(path)
			if err != nil {
				log.Warn("skipping unreadable category file",
					zap.String("market", market),
					zap.String("category", category),
					zap.String("path", path),
					zap.Error(err))

				continue
			}

			for _, symbol := range symbols {
				catalog.entries = append(catalog.entries, Entry{
					Symbol:   symbol,
					Market:   market,
					Category: category,
				})
			}
		}
	}

	return catalog, nil
}

// Entries returns all loaded entries in manifest order (markets and
// categories sorted by name, symbols in file order).
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Symbols returns the deduplicated symbol list, preserving first-seen order.
func (c *Catalog) Symbols() []string {
	seen := make(map[string]bool, len(c.entries))
	symbols := make([]string, 0, len(c.entries))

	for _, entry := range c.entries {
		if seen[entry.Symbol] {
			continue
		}

		seen[entry.Symbol] = true
		symbols = append(symbols, entry.Symbol)
	}

	return symbols
}

// Tickers returns the symbols of one market category, in file order.
func (c *Catalog) Tickers(market, category string) []string {
	var symbols []string

	for _, entry := range c.entries {
		if entry.Market == market && entry.Category == category {
			symbols = append(symbols, entry.Symbol)
		}
	}

	return symbols
}

// Counts returns the number of entries per market.
func (c *Catalog) Counts() map[string]int {
	counts := make(map[string]int)

	for _, entry := range c.entries {
		counts[entry.Market]++
	}

	return counts
}

// FilterMarket returns the entries belonging to the named market.
func (c *Catalog) FilterMarket(market string) []Entry {
	var filtered []Entry

	for _, entry := range c.entries {
		if entry.Market == market {
			filtered = append(filtered, entry)
		}
	}

	return filtered
}

// Len returns the number of entries, duplicates included.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// readSymbols parses one category CSV. The first column holds the symbol; a
// header row is detected by a literal "symbol"/"ticker" heading and skipped.
func readSymbols(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogFailed, "failed to open category file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // category files may carry extra columns

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogFailed, "failed to parse category file", err)
	}

	symbols := make([]string, 0, len(records))

	for i, record := range records {
		if len(record) == 0 {
			continue
		}

		symbol := strings.TrimSpace(record[0])
		if symbol == "" {
			continue
		}

		if i == 0 {
			lowered := strings.ToLower(symbol)
			if lowered == "symbol" || lowered == "ticker" {
				continue
			}
		}

		symbols = append(symbols, strings.ToUpper(symbol))
	}

	return symbols, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
