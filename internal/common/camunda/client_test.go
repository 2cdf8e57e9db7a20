package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastRetry(), "topology", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("rpc error: code = Unavailable")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastRetry(), "topology", func(context.Context) error {
		calls++
		return errors.New("permission denied")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, apperrors.ErrCodeDatabaseConnectionFailed, apperrors.CodeOf(err))
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastRetry(), "topology", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "StandardError")
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second}
	err := retry(ctx, cfg, "topology", func(context.Context) error {
		return errors.New("deadline exceeded")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("Connection Reset by peer")))
	assert.True(t, isRetryableZeebeError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(errors.New("NOT_FOUND")))
}
