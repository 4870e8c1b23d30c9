package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithExponentialBackoff_Success(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := WithExponentialBackoff(context.Background(), func(context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	var retried []int

	err := WithExponentialBackoff(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	},
		WithInitialDelay(5*time.Millisecond),
		WithOnRetry(func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) }),
	)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestWithExponentialBackoff_MaxRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	persistent := errors.New("persistent error")

	err := WithExponentialBackoff(context.Background(), func(context.Context) error {
		attempts++
		return persistent
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.ErrorIs(t, err, persistent)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestWithExponentialBackoff_FatalError(t *testing.T) {
	t.Parallel()
	attempts := 0
	base := errors.New("bad request")

	err := WithExponentialBackoff(context.Background(), func(context.Context) error {
		attempts++
		return Fatal(base)
	}, WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := WithExponentialBackoff(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("error")
	}, WithInitialDelay(time.Second))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_DelayIsCapped(t *testing.T) {
	t.Parallel()
	var delays []time.Duration

	_ = WithExponentialBackoff(context.Background(), func(context.Context) error {
		return errors.New("error")
	},
		WithMaxRetries(4),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(3*time.Millisecond),
		WithOnRetry(func(_ int, d time.Duration, _ error) { delays = append(delays, d) }),
	)

	assert.Equal(t, []time.Duration{
		time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond,
	}, delays)
}

func TestFatal(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Fatal(nil))

	sentinel := errors.New("sentinel error")
	wrapped := fmt.Errorf("context: %w", Fatal(sentinel))
	assert.True(t, IsFatal(wrapped))
	assert.ErrorIs(t, wrapped, sentinel)
	assert.Equal(t, sentinel.Error(), Fatal(sentinel).Error())
	assert.False(t, IsFatal(errors.New("regular error")))
}
