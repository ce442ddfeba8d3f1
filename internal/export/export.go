// Package export writes evaluation results to disk as CSV tables and YAML
// summaries.
package export

import (
	"encoding/csv"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-screener/internal/optimizer"
	"github.com/rxtech-lab/argo-screener/internal/scanner"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"gopkg.in/yaml.v3"
)

// WriteTrades writes the closed trade list to a CSV file.
func WriteTrades(path string, trades []types.Trade) error {
	header := []string{
		"symbol", "entry_time", "entry_price", "exit_time", "exit_price",
		"stop_loss", "target", "exit_reason", "pnl", "return_pct", "holding_bars",
	}

	rows := make([][]string, 0, len(trades))

	for _, trade := range trades {
		rows = append(rows, []string{
			trade.Symbol,
			trade.EntryTime.Format(time.RFC3339),
			formatFloat(trade.EntryPrice),
			trade.ExitTime.Format(time.RFC3339),
			formatFloat(trade.ExitPrice),
			formatFloat(trade.StopLoss),
			formatFloat(trade.Target),
			string(trade.ExitReason),
			formatFloat(trade.PnL),
			formatFloat(trade.ReturnPct),
			strconv.Itoa(trade.HoldingBars),
		})
	}

	return writeCSV(path, header, rows)
}

// WriteScanRows writes ranked scan rows to a CSV file.
func WriteScanRows(path string, rows []scanner.Row) error {
	header := []string{
		"symbol", "convergence", "daily_signal", "weekly_signal",
		"current_price", "stop_loss", "target",
		"trades", "win_rate", "adjusted_win_rate", "profit_factor",
		"sharpe_ratio", "max_drawdown", "expectancy", "total_return",
	}

	records := make([][]string, 0, len(rows))

	for _, row := range rows {
		records = append(records, []string{
			row.Symbol,
			strconv.FormatBool(row.Convergence.Convergence),
			strconv.FormatBool(row.Convergence.DailySignal),
			strconv.FormatBool(row.Convergence.WeeklySignal),
			formatFloat(row.CurrentPrice),
			formatFloat(row.Convergence.StopLoss),
			formatFloat(row.Convergence.Target),
			strconv.Itoa(row.Metrics.TotalTrades),
			formatFloat(row.Metrics.WinRate),
			formatOptional(row.Metrics.AdjustedWinRate),
			formatFloat(row.Metrics.ProfitFactor),
			formatOptional(row.Metrics.SharpeRatio),
			formatFloat(row.Metrics.MaxDrawdown),
			formatFloat(row.Metrics.Expectancy),
			formatFloat(row.Metrics.TotalReturn),
		})
	}

	return writeCSV(path, header, records)
}

// WriteOptimizeRows writes ranked optimization rows to a CSV file. Parameter
// columns come first, sorted by name so the layout is stable across runs.
func WriteOptimizeRows(path string, rows []optimizer.Row) error {
	paramNames := collectParamNames(rows)

	header := make([]string, 0, len(paramNames)+7)
	header = append(header, paramNames...)
	header = append(header,
		"trades", "win_rate", "profit_factor", "sharpe_ratio",
		"max_drawdown", "expectancy", "total_return")

	records := make([][]string, 0, len(rows))

	for _, row := range rows {
		record := make([]string, 0, len(header))

		for _, name := range paramNames {
			value, ok := row.Params[name]
			if !ok {
				record = append(record, "N/A")

				continue
			}

			record = append(record, formatFloat(value))
		}

		record = append(record,
			strconv.Itoa(row.Metrics.TotalTrades),
			formatFloat(row.Metrics.WinRate),
			formatFloat(row.Metrics.ProfitFactor),
			formatOptional(row.Metrics.SharpeRatio),
			formatFloat(row.Metrics.MaxDrawdown),
			formatFloat(row.Metrics.Expectancy),
			formatFloat(row.Metrics.TotalReturn),
		)

		records = append(records, record)
	}

	return writeCSV(path, header, records)
}

// summaryDocument is the YAML shape of one evaluation summary. Optional
// metrics are flattened to string fields so an undefined value exports as
// "N/A" instead of disappearing.
type summaryDocument struct {
	Symbol          string               `yaml:"symbol"`
	Strategy        string               `yaml:"strategy"`
	Metrics         types.MetricsSummary `yaml:"metrics"`
	AdjustedWinRate string               `yaml:"adjusted_win_rate"`
	SharpeRatio     string               `yaml:"sharpe_ratio"`
	Open            *types.OpenPosition  `yaml:"open_position,omitempty"`
}

// WriteSummaryYAML writes one evaluation summary to a YAML file.
func WriteSummaryYAML(path, symbol, strategyName string, metrics types.MetricsSummary, open *types.OpenPosition) error {
	document := summaryDocument{
		Symbol:          symbol,
		Strategy:        strategyName,
		Metrics:         metrics,
		AdjustedWinRate: formatOptional(metrics.AdjustedWinRate),
		SharpeRatio:     formatOptional(metrics.SharpeRatio),
		Open:            open,
	}

	data, err := yaml.Marshal(document)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to marshal summary", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write summary file", err)
	}

	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create export file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(header); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to write header", err)
	}

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to write row", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to flush export file", err)
	}

	return nil
}

// formatFloat renders metric values for CSV. Undefined values export as
// "N/A", unbounded profit factors as "inf".
func formatFloat(value float64) string {
	switch {
	case math.IsNaN(value):
		return "N/A"
	case math.IsInf(value, 1):
		return "inf"
	case math.IsInf(value, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(value, 'f', 4, 64)
	}
}

func formatOptional(value optional.Option[float64]) string {
	if value.IsNone() {
		return "N/A"
	}

	return formatFloat(value.Unwrap())
}

func collectParamNames(rows []optimizer.Row) []string {
	seen := make(map[string]bool)

	for _, row := range rows {
		for name := range row.Params {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
