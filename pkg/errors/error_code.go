package errors

// ErrorCode identifies the category and kind of an error.
type ErrorCode int

const (
	// ErrCodeUnknown is the default code for errors without an explicit code.
	ErrCodeUnknown ErrorCode = 1
)

// Validation errors (100-199).
const (
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidMultiplier    ErrorCode = 103
	ErrCodeInvalidSeries        ErrorCode = 104
	ErrCodeInvalidTimeframe     ErrorCode = 105
	ErrCodeInvalidGrid          ErrorCode = 106
	ErrCodeInvalidMetric        ErrorCode = 107
)

// Data and resource errors (200-299).
const (
	ErrCodeDataNotFound   ErrorCode = 200
	ErrCodeFetchFailed    ErrorCode = 201
	ErrCodeCacheFailed    ErrorCode = 202
	ErrCodeCatalogFailed  ErrorCode = 203
	ErrCodeExportFailed   ErrorCode = 204
	ErrCodeQueryFailed    ErrorCode = 205
	ErrCodeRateLimited    ErrorCode = 206
	ErrCodeEmptyResponse  ErrorCode = 207
	ErrCodeParseFailed    ErrorCode = 208
	ErrCodeStoreUnusable  ErrorCode = 209
	ErrCodeWriteFailed    ErrorCode = 210
	ErrCodeManifestFailed ErrorCode = 211
)

// Indicator errors (300-399).
const (
	ErrCodeIndicatorCalculation ErrorCode = 300
)

// Strategy errors (400-499).
const (
	ErrCodeStrategyNotFound    ErrorCode = 400
	ErrCodeStrategyConfigError ErrorCode = 401
)

// Evaluation errors (500-599).
const (
	ErrCodeSimulationFailed ErrorCode = 500
	ErrCodeMetricsFailed    ErrorCode = 501
)

// Batch errors (600-699).
const (
	ErrCodeScanAborted     ErrorCode = 600
	ErrCodeOptimizeAborted ErrorCode = 601
)
