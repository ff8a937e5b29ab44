package llmservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	fn := WithRetry(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "answer", nil
	}, 3, time.Millisecond)

	text, err := fn(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("permanent")
	fn := WithRetry(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", wantErr
	}, 2, time.Millisecond)

	_, err := fn(context.Background(), "prompt")
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestWithRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fn := WithRetry(func(ctx context.Context, prompt string) (string, error) {
		calls++
		cancel()
		return "", errors.New("transient")
	}, 5, time.Millisecond)

	_, err := fn(ctx, "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "canceled context must not be retried")
}
