package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOutcome(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		jobRetries  int32
		wantThrow   bool
		wantRetries int32
		wantCode    string
	}{
		{
			name:       "invalid input is thrown",
			err:        NewInvalidSearchInputError("empty query"),
			jobRetries: 3,
			wantThrow:  true,
			wantCode:   "INVALID_SEARCH_INPUT",
		},
		{
			name:        "provider failure is retried",
			err:         NewProviderRequestFailedError("gemini", context.DeadlineExceeded),
			jobRetries:  3,
			wantRetries: 3,
			wantCode:    "PROVIDER_REQUEST_FAILED",
		},
		{
			name:        "engine retries cap the count",
			err:         NewProviderRequestFailedError("gemini", context.DeadlineExceeded),
			jobRetries:  1,
			wantRetries: 1,
			wantCode:    "PROVIDER_REQUEST_FAILED",
		},
		{
			name:       "no retries left is thrown",
			err:        NewJournalWriteFailedError(stderrors.New("down")),
			jobRetries: 0,
			wantThrow:  true,
			wantCode:   "JOURNAL_WRITE_FAILED",
		},
		{
			name:       "plain error becomes internal",
			err:        stderrors.New("boom"),
			jobRetries: 3,
			wantThrow:  true,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := resolveOutcome(tt.err, tt.jobRetries)
			assert.Equal(t, tt.wantThrow, out.throw)
			assert.Equal(t, tt.wantRetries, out.retries)
			assert.Equal(t, tt.wantCode, out.code)
			require.NotEmpty(t, out.variables)

			var vars map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(out.variables), &vars))
			assert.Equal(t, tt.wantCode, vars["errorCode"])
		})
	}
}

func TestResolveOutcome_CarriesMetadata(t *testing.T) {
	err := NewProviderRateLimitedError("gemini", 0)
	out := resolveOutcome(err, 2)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out.variables), &vars))
	assert.Equal(t, "gemini", vars["provider"])
	assert.Equal(t, "PROVIDER_RATE_LIMITED", vars["originalErrorCode"])
}
