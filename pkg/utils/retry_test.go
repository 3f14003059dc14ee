package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), FixedRetryConfig(3, time.Millisecond), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), FixedRetryConfig(3, time.Millisecond), func() error {
		attempts++
		return errors.New("persistent")
	})
	assert.EqualError(t, err, "persistent")
	assert.Equal(t, 3, attempts)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Retry(ctx, FixedRetryConfig(10, time.Millisecond), func() error {
		attempts++
		cancel()
		return errors.New("failing")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithResult(t *testing.T) {
	attempts := 0
	value, err := RetryWithResult(context.Background(), FixedRetryConfig(3, time.Millisecond), func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, value)

	_, err = RetryWithResult(context.Background(), FixedRetryConfig(2, time.Millisecond), func() (int, error) {
		return 0, errors.New("persistent")
	})
	assert.EqualError(t, err, "persistent")
}
