package strategy

import (
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// Family keys accepted by the registry.
const (
	FamilyChannel         = "channel"
	FamilyMACross         = "ma_cross"
	FamilyMarketStructure = "market_structure"
)

// Factory builds a strategy instance from named parameter values. Values not
// present in the map keep the family defaults.
type Factory func(params map[string]float64) (Strategy, error)

type registryEntry struct {
	factory       Factory
	defaultConfig any
	description   string
}

// Registry is an immutable table mapping a family key to a strategy factory.
// It is built once at startup and passed explicitly to the scanner and
// optimizer; there is no ambient global registration.
type Registry struct {
	entries map[string]registryEntry
	order   []string
}

// NewRegistry builds the registry of built-in strategy families.
func NewRegistry() *Registry {
	r := &Registry{
		entries: make(map[string]registryEntry),
	}

	r.register(FamilyChannel, "Trend channel crossover with ATR risk sizing", DefaultChannelConfig(),
		func(params map[string]float64) (Strategy, error) {
			config := DefaultChannelConfig()
			if err := config.ApplyValues(params); err != nil {
				return nil, err
			}

			return NewChannelStrategy(config)
		})

	r.register(FamilyMACross, "Fast/slow EMA crossover with ATR risk sizing", DefaultMACrossConfig(),
		func(params map[string]float64) (Strategy, error) {
			config := DefaultMACrossConfig()
			if err := config.ApplyValues(params); err != nil {
				return nil, err
			}

			return NewMACrossStrategy(config)
		})

	r.register(FamilyMarketStructure, "Break-of-structure on swing pivots with ATR risk sizing", DefaultMarketStructureConfig(),
		func(params map[string]float64) (Strategy, error) {
			config := DefaultMarketStructureConfig()
			if err := config.ApplyValues(params); err != nil {
				return nil, err
			}

			return NewMarketStructureStrategy(config)
		})

	return r
}

func (r *Registry) register(name, description string, defaultConfig any, factory Factory) {
	r.entries[name] = registryEntry{
		factory:       factory,
		defaultConfig: defaultConfig,
		description:   description,
	}
	r.order = append(r.order, name)
}

// Create instantiates a strategy family with the given parameter overrides.
func (r *Registry) Create(name string, params map[string]float64) (Strategy, error) {
	entry, ok := r.entries[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound,
			"strategy family %q not found, available: %v", name, r.Names())
	}

	return entry.factory(params)
}

// Names returns the family keys in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// Describe returns the one-line description of a family.
func (r *Registry) Describe(name string) (string, error) {
	entry, ok := r.entries[name]
	if !ok {
		return "", errors.Newf(errors.ErrCodeStrategyNotFound, "strategy family %q not found", name)
	}

	return entry.description, nil
}

// Schema returns the JSON schema of a family's parameter config, for CLI
// listings and external tooling.
func (r *Registry) Schema(name string) (string, error) {
	entry, ok := r.entries[name]
	if !ok {
		return "", errors.Newf(errors.ErrCodeStrategyNotFound, "strategy family %q not found", name)
	}

	return ToJSONSchema(entry.defaultConfig)
}
