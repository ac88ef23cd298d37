// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		wantCode  string
		wantRetry int
	}{
		{"invalid query", NewInvalidQueryError("age out of range"), "INVALID_QUERY", 0},
		{"candidate fetch", NewCandidateFetchFailedError(fmt.Errorf("conn reset")), "CANDIDATE_FETCH_FAILED", 3},
		{"search timeout", NewSearchTimeoutError(5 * time.Second), "SEARCH_TIMEOUT", 2},
		{"case not found", NewCaseNotFoundError("case-9"), "CASE_NOT_FOUND", 0},
		{"database connection", NewDatabaseConnectionError(fmt.Errorf("dial tcp: refused")), "DATABASE_CONNECTION_FAILED", 3},
		{"index not found", NewIndexNotFoundError("clinical_cases"), "INDEX_NOT_FOUND", 0},
		{"unmapped code", &StandardError{Code: "SOMETHING_ELSE", Retryable: true}, "SOMETHING_ELSE", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetry, bpmnErr.Retries)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_NonRetryableZeroesRetries(t *testing.T) {
	stdErr := NewDatabaseConnectionError(fmt.Errorf("refused"))
	stdErr.Retryable = false

	assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
}

func TestToErrorVariables_IncludesMetadata(t *testing.T) {
	vars := ConvertToBPMNError(NewCaseNotFoundError("case-9")).ToErrorVariables()

	assert.Equal(t, "CASE_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "case-9", vars["caseId"])
	assert.Equal(t, false, vars["retryable"])
}

func TestAsStandardError(t *testing.T) {
	assert.Nil(t, AsStandardError(nil))

	wrapped := fmt.Errorf("fetch: %w", NewQueryTimeoutError(time.Second))
	got := AsStandardError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrCodeQueryTimeout, got.Code)

	plain := AsStandardError(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeSearchTimeout:            "SEARCH",
		ErrCodeIndexNotFound:            "SEARCH",
		ErrCodeDatabaseConnectionFailed: "DATABASE",
		ErrCodeCandidateFetchFailed:     "DATABASE",
		ErrCodeCaseNotFound:             "DATABASE",
		ErrCodeRankingFailed:            "SCORING",
		ErrCodeInvalidQuery:             "VALIDATION",
		ErrCodeValidationFailed:         "VALIDATION",
		ErrCodeInternal:                 "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, int32(1), remainingRetries(2, 3))
	assert.Equal(t, int32(2), remainingRetries(5, 3))
	assert.Equal(t, int32(0), remainingRetries(0, 1))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeSearchQueryFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeValidationFailed))
}
