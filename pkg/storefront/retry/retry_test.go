package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/storefront/pkg/storefront/retry"
)

var errBusy = errors.New("busy")

func fast(attempts int) retry.Config {
	return retry.Config{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Factor: 2}
}

func TestTransient(t *testing.T) {
	assert.NoError(t, retry.Transient(nil))

	err := retry.Transient(errBusy)
	assert.True(t, retry.IsTransient(err))
	assert.ErrorIs(t, err, errBusy)
	assert.Equal(t, "busy", err.Error())

	assert.False(t, retry.IsTransient(errBusy))
	assert.True(t, retry.IsTransient(errors.Join(errBusy, err)))
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	res := retry.Do(context.Background(), fast(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", retry.Transient(errBusy)
		}
		return "ok", nil
	})

	require.NoError(t, res.Err)
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, 3, res.Attempts)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	res := retry.Do(context.Background(), fast(5), func(context.Context) (int, error) {
		calls++
		return 0, errBusy
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, res.Err, errBusy)

	var rerr *retry.Error
	require.ErrorAs(t, res.Err, &rerr)
	assert.Equal(t, 1, rerr.Attempts)
	assert.Equal(t, "permanent failure", rerr.Reason)
}

func TestDo_MaxAttempts(t *testing.T) {
	calls := 0
	res := retry.Do(context.Background(), fast(2), func(context.Context) (int, error) {
		calls++
		return 0, retry.Transient(errBusy)
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, res.Attempts)
	var rerr *retry.Error
	require.ErrorAs(t, res.Err, &rerr)
	assert.Equal(t, "max attempts exceeded", rerr.Reason)
	assert.ErrorIs(t, res.Err, errBusy)
}

func TestDo_CustomRetryable(t *testing.T) {
	cfg := fast(3)
	cfg.Retryable = func(err error) bool { return errors.Is(err, errBusy) }

	calls := 0
	res := retry.Do(context.Background(), cfg, func(context.Context) (int, error) {
		calls++
		return 0, errBusy
	})
	assert.Equal(t, 3, calls)
	assert.Error(t, res.Err)
}

func TestDo_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	res := retry.Do(ctx, fast(3), func(context.Context) (int, error) {
		calls++
		return 1, nil
	})
	assert.Zero(t, calls)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Zero(t, res.Attempts)
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := retry.Config{MaxAttempts: 3, InitialBackoff: time.Hour, Factor: 1}

	res := retry.Do(ctx, cfg, func(context.Context) (int, error) {
		cancel()
		return 0, retry.Transient(errBusy)
	})

	var rerr *retry.Error
	require.ErrorAs(t, res.Err, &rerr)
	assert.Equal(t, "cancelled during backoff", rerr.Reason)
	assert.Equal(t, 1, res.Attempts)
}

func TestNever(t *testing.T) {
	calls := 0
	res := retry.Do(context.Background(), retry.Never, func(context.Context) (int, error) {
		calls++
		return 0, retry.Transient(errBusy)
	})
	assert.Equal(t, 1, calls)
	assert.Error(t, res.Err)
}
