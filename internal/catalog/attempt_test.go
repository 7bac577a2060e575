package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstSuccessStopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	var tried []string
	result, source, err := FirstSuccess(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, c string) (int, error) {
		tried = append(tried, c)
		if c == "b" {
			return 42, nil
		}
		return 0, errors.New("nope")
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, "b", source)
	assert.Equal(t, []string{"a", "b"}, tried)
}

func TestFirstSuccessExhausted(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	_, source, err := FirstSuccess(context.Background(), []string{"a", "b"}, func(context.Context, string) (string, error) {
		calls++
		return "", boom
	})
	require.ErrorIs(t, err, ErrExhausted)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, source)
	assert.Equal(t, 2, calls)
}

func TestFirstSuccessHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, _, err := FirstSuccess(ctx, []string{"a"}, func(context.Context, string) (int, error) {
		calls++
		return 1, nil
	})
	require.ErrorIs(t, err, ErrExhausted)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
