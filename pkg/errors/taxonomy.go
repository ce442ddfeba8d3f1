package errors

import (
	"errors"
	"fmt"
)

// InsufficientDataError indicates a series is shorter than the minimum
// lookback a calculation requires.
type InsufficientDataError struct {
	Required int    // Minimum bars required
	Actual   int    // Actual bars available
	Symbol   string // Optional: symbol context
	Message  string // Human-readable message
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, symbol, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  message,
	}
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
// It uses errors.As to check the error chain.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}

// NotEnoughHistoryError indicates an empty series was supplied where at least
// one bar is required, e.g. at convergence time.
type NotEnoughHistoryError struct {
	Symbol    string
	Timeframe string
}

// NewNotEnoughHistoryError creates a new NotEnoughHistoryError.
func NewNotEnoughHistoryError(symbol, timeframe string) *NotEnoughHistoryError {
	return &NotEnoughHistoryError{
		Symbol:    symbol,
		Timeframe: timeframe,
	}
}

// Error implements the error interface.
func (e *NotEnoughHistoryError) Error() string {
	return fmt.Sprintf("not enough history for %s (%s): series is empty", e.Symbol, e.Timeframe)
}

// IsNotEnoughHistoryError checks if an error is a NotEnoughHistoryError.
func IsNotEnoughHistoryError(err error) bool {
	var historyErr *NotEnoughHistoryError

	return errors.As(err, &historyErr)
}

// DataProviderError indicates a bar provider failed to deliver a series.
// The original network, timeout or not-found error is kept as the cause.
type DataProviderError struct {
	Symbol    string
	Timeframe string
	Cause     error
}

// NewDataProviderError creates a new DataProviderError.
func NewDataProviderError(symbol, timeframe string, cause error) *DataProviderError {
	return &DataProviderError{
		Symbol:    symbol,
		Timeframe: timeframe,
		Cause:     cause,
	}
}

// Error implements the error interface.
func (e *DataProviderError) Error() string {
	return fmt.Sprintf("data provider failed for %s (%s): %v", e.Symbol, e.Timeframe, e.Cause)
}

// Unwrap returns the underlying provider error.
func (e *DataProviderError) Unwrap() error {
	return e.Cause
}

// IsDataProviderError checks if an error is a DataProviderError.
func IsDataProviderError(err error) bool {
	var providerErr *DataProviderError

	return errors.As(err, &providerErr)
}

// DegenerateParameterError indicates a trade entry with non-sensical risk
// levels (stop at or above entry, or target at or below entry). It is only
// returned when the simulator runs in strict mode; otherwise the condition is
// logged and the trade opens as given.
type DegenerateParameterError struct {
	Symbol     string
	EntryPrice float64
	StopLoss   float64
	Target     float64
}

// NewDegenerateParameterError creates a new DegenerateParameterError.
func NewDegenerateParameterError(symbol string, entryPrice, stopLoss, target float64) *DegenerateParameterError {
	return &DegenerateParameterError{
		Symbol:     symbol,
		EntryPrice: entryPrice,
		StopLoss:   stopLoss,
		Target:     target,
	}
}

// Error implements the error interface.
func (e *DegenerateParameterError) Error() string {
	return fmt.Sprintf("degenerate risk setup for %s: entry=%.4f stop=%.4f target=%.4f",
		e.Symbol, e.EntryPrice, e.StopLoss, e.Target)
}

// IsDegenerateParameterError checks if an error is a DegenerateParameterError.
func IsDegenerateParameterError(err error) bool {
	var degenerateErr *DegenerateParameterError

	return errors.As(err, &degenerateErr)
}

// Kind returns a short machine-readable name for the taxonomy error wrapped in
// err, or "unknown" when err does not match any taxonomy type. Batch drivers
// use it to label failed rows.
func Kind(err error) string {
	switch {
	case IsInsufficientDataError(err):
		return "insufficient_data"
	case IsNotEnoughHistoryError(err):
		return "not_enough_history"
	case IsDataProviderError(err):
		return "data_provider"
	case IsDegenerateParameterError(err):
		return "degenerate_parameter"
	default:
		return "unknown"
	}
}
