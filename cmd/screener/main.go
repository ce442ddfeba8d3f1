// Command screener scans ticker universes with trend-following strategies,
// sweeps parameter grids, and evaluates single instruments.
package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/rxtech-lab/argo-screener/internal/backtest"
	"github.com/rxtech-lab/argo-screener/internal/catalog"
	"github.com/rxtech-lab/argo-screener/internal/export"
	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/internal/optimizer"
	"github.com/rxtech-lab/argo-screener/internal/scanner"
	"github.com/rxtech-lab/argo-screener/internal/strategy"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/urfave/cli/v3"
)

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	if cmd.Bool("verbose") {
		return logger.NewDevelopmentLogger()
	}

	return logger.NewLogger()
}

// scanAction runs one strategy across the catalog universe and writes the
// ranked survivors to CSV.
func scanAction(ctx context.Context, cmd *cli.Command) error {
	config, err := LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	if config.CatalogPath == "" {
		return fmt.Errorf("scan requires catalog_path in the config file")
	}

	universe, err := catalog.Load(config.CatalogPath, log)
	if err != nil {
		return err
	}

	symbols := universe.Symbols()
	if market := cmd.String("market"); market != "" {
		symbols = symbols[:0]
		for _, entry := range universe.FilterMarket(market) {
			symbols = append(symbols, entry.Symbol)
		}
	}

	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to scan")
	}

	registry := strategy.NewRegistry()

	strat, err := registry.Create(config.Strategy.Family, config.Strategy.Params)
	if err != nil {
		return err
	}

	provider, cleanup, err := buildProvider(config.Provider)
	if err != nil {
		return err
	}
	defer cleanup()

	scan := scanner.NewScanner(provider, config.Scan, log)

	report, err := scan.Scan(ctx, strat, symbols)
	if err != nil {
		return err
	}

	ranked := report.Ranked(config.Scan.RankBy)

	if output := cmd.String("output"); output != "" {
		if err := export.WriteScanRows(output, ranked); err != nil {
			return err
		}
	}

	fmt.Printf("scanned %d symbols: %d succeeded, %d failed, %d passed filters\n",
		report.Total(), report.Succeeded(), len(report.Failed), len(ranked))

	for i, row := range ranked {
		if i >= 20 {
			fmt.Printf("... and %d more\n", len(ranked)-i)

			break
		}

		fmt.Printf("%-8s convergence=%-5v trades=%-3d win_rate=%6.2f%% profit_factor=%s\n",
			row.Symbol, row.Convergence.Convergence, row.Metrics.TotalTrades,
			row.Metrics.WinRate, formatMetric(row.Metrics.ProfitFactor))
	}

	return nil
}

// optimizeAction sweeps the configured parameter grid against one symbol.
func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	config, err := LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	symbol := cmd.String("symbol")

	provider, cleanup, err := buildProvider(config.Provider)
	if err != nil {
		return err
	}
	defer cleanup()

	lookback := config.Optimize.Lookback
	if lookback <= 0 {
		lookback = backtest.DefaultLookback
	}

	daily, err := provider.Fetch(ctx, symbol, types.TimeframeDaily, lookback)
	if err != nil {
		return err
	}

	weekly, err := provider.Fetch(ctx, symbol, types.TimeframeWeekly, 104)
	if err != nil {
		return err
	}

	registry := strategy.NewRegistry()
	optim := optimizer.NewOptimizer(registry, config.Optimize, log)

	report, err := optim.Optimize(ctx, config.Strategy.Family, config.Grid, daily, weekly)
	if err != nil {
		return err
	}

	ranked := report.Ranked(config.Optimize.RankBy)

	if output := cmd.String("output"); output != "" {
		if err := export.WriteOptimizeRows(output, ranked); err != nil {
			return err
		}
	}

	fmt.Printf("swept %d combinations for %s on %s (%d failed)\n",
		len(report.Rows)+len(report.Failed), config.Strategy.Family, symbol, len(report.Failed))

	if best := report.Best(config.Optimize.RankBy); best != nil {
		fmt.Printf("best params: %v\n", best.Params)
		fmt.Printf("  trades=%d win_rate=%.2f%% profit_factor=%s total_return=%.2f%%\n",
			best.Metrics.TotalTrades, best.Metrics.WinRate,
			formatMetric(best.Metrics.ProfitFactor), best.Metrics.TotalReturn)
	} else {
		fmt.Println("no combination produced a rankable result")
	}

	return nil
}

// evaluateAction runs the full pipeline for a single symbol and prints the
// summary.
func evaluateAction(ctx context.Context, cmd *cli.Command) error {
	config, err := LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	symbol := cmd.String("symbol")

	provider, cleanup, err := buildProvider(config.Provider)
	if err != nil {
		return err
	}
	defer cleanup()

	lookback := config.Scan.Lookback
	if lookback <= 0 {
		lookback = backtest.DefaultLookback
	}

	daily, err := provider.Fetch(ctx, symbol, types.TimeframeDaily, lookback)
	if err != nil {
		return err
	}

	weekly, err := provider.Fetch(ctx, symbol, types.TimeframeWeekly, 104)
	if err != nil {
		return err
	}

	registry := strategy.NewRegistry()

	strat, err := registry.Create(config.Strategy.Family, config.Strategy.Params)
	if err != nil {
		return err
	}

	evaluation, err := backtest.Evaluate(strat, daily, weekly, backtest.SimulatorConfig{Lookback: lookback}, log)
	if err != nil {
		return err
	}

	metrics := evaluation.Metrics

	fmt.Printf("%s / %s @ %.2f\n", symbol, evaluation.StrategyName, evaluation.CurrentPrice)
	fmt.Printf("convergence: %v (daily=%v weekly=%v)\n",
		evaluation.Convergence.Convergence, evaluation.Convergence.DailySignal, evaluation.Convergence.WeeklySignal)
	fmt.Printf("trades=%d win_rate=%.2f%% profit_factor=%s expectancy=%.2f%% max_drawdown=%.2f%%\n",
		metrics.TotalTrades, metrics.WinRate, formatMetric(metrics.ProfitFactor),
		metrics.Expectancy, metrics.MaxDrawdown)

	if evaluation.Open != nil {
		fmt.Printf("open position: entered %s @ %.2f (stop %.2f, target %.2f)\n",
			evaluation.Open.EntryTime.Format("2006-01-02"), evaluation.Open.EntryPrice,
			evaluation.Open.StopLoss, evaluation.Open.Target)
	}

	if output := cmd.String("trades"); output != "" {
		if err := export.WriteTrades(output, evaluation.Trades); err != nil {
			return err
		}
	}

	if output := cmd.String("summary"); output != "" {
		if err := export.WriteSummaryYAML(output, symbol, evaluation.StrategyName, metrics, evaluation.Open); err != nil {
			return err
		}
	}

	return nil
}

// strategiesAction lists the built-in strategy families with their parameter
// schemas.
func strategiesAction(_ context.Context, cmd *cli.Command) error {
	registry := strategy.NewRegistry()

	for _, name := range registry.Names() {
		description, err := registry.Describe(name)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", name, description)

		if cmd.Bool("schema") {
			schema, err := registry.Schema(name)
			if err != nil {
				return err
			}

			fmt.Println(schema)
		}
	}

	return nil
}

func formatMetric(value float64) string {
	switch {
	case math.IsNaN(value):
		return "N/A"
	case math.IsInf(value, 1):
		return "inf"
	default:
		return fmt.Sprintf("%.2f", value)
	}
}

func main() {
	configFlag := &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Path to the YAML configuration file",
		Value:    "screener.yaml",
		Required: false,
	}
	verboseFlag := &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
	symbolFlag := &cli.StringFlag{
		Name:     "symbol",
		Aliases:  []string{"s"},
		Usage:    "Ticker symbol",
		Required: true,
	}

	cmd := &cli.Command{
		Name:  "screener",
		Usage: "Scan, optimize and evaluate trend-following strategies",
		Commands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "Evaluate a strategy across the catalog universe",
				Flags: []cli.Flag{
					configFlag,
					verboseFlag,
					&cli.StringFlag{
						Name:    "market",
						Aliases: []string{"m"},
						Usage:   "Restrict the scan to one catalog market",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write ranked rows to this CSV file",
					},
				},
				Action: scanAction,
			},
			{
				Name:  "optimize",
				Usage: "Sweep a strategy's parameter grid against one symbol",
				Flags: []cli.Flag{
					configFlag,
					verboseFlag,
					symbolFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write ranked combinations to this CSV file",
					},
				},
				Action: optimizeAction,
			},
			{
				Name:  "evaluate",
				Usage: "Run the full pipeline for a single symbol",
				Flags: []cli.Flag{
					configFlag,
					verboseFlag,
					symbolFlag,
					&cli.StringFlag{
						Name:  "trades",
						Usage: "Write the closed trade list to this CSV file",
					},
					&cli.StringFlag{
						Name:  "summary",
						Usage: "Write the metrics summary to this YAML file",
					},
				},
				Action: evaluateAction,
			},
			{
				Name:  "strategies",
				Usage: "List the built-in strategy families",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "schema",
						Usage: "Print each family's parameter JSON schema",
					},
				},
				Action: strategiesAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
