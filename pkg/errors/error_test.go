package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewAndCode() {
	err := New(ErrCodeInvalidSeries, "bad series")
	suite.Equal("bad series", err.Message)
	suite.True(HasCode(err, ErrCodeInvalidSeries))
	suite.False(HasCode(err, ErrCodeInvalidTimeframe))
	suite.Equal(ErrCodeInvalidSeries, GetCode(err))
}

func (suite *ErrorTestSuite) TestWrapKeepsCause() {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrCodeWriteFailed, "failed to write export", cause)

	suite.ErrorIs(err, cause)
	suite.Contains(err.Error(), "disk full")
	suite.True(HasCode(err, ErrCodeWriteFailed))
}

func (suite *ErrorTestSuite) TestGetCodeUnknown() {
	suite.Equal(ErrCodeUnknown, GetCode(fmt.Errorf("plain error")))
}

func (suite *ErrorTestSuite) TestKind() {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"insufficient data", NewInsufficientDataError(30, 10, "AAPL", "too short"), "insufficient_data"},
		{"not enough history", NewNotEnoughHistoryError("AAPL", "weekly"), "not_enough_history"},
		{"data provider", NewDataProviderError("AAPL", "daily", fmt.Errorf("timeout")), "data_provider"},
		{"degenerate parameter", NewDegenerateParameterError("AAPL", 100, 105, 110), "degenerate_parameter"},
		{"plain error", fmt.Errorf("whatever"), "unknown"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.want, Kind(tc.err))
		})
	}
}

func (suite *ErrorTestSuite) TestKindSeesThroughWrapping() {
	inner := NewInsufficientDataError(30, 10, "AAPL", "too short")
	wrapped := fmt.Errorf("evaluation failed: %w", inner)

	suite.Equal("insufficient_data", Kind(wrapped))
	suite.True(IsInsufficientDataError(wrapped))
}

func (suite *ErrorTestSuite) TestDataProviderErrorUnwrap() {
	cause := fmt.Errorf("connection refused")
	err := NewDataProviderError("AAPL", "daily", cause)
	suite.ErrorIs(err, cause)
}
