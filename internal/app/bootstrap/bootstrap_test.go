package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAddr(t *testing.T) {
	require.Equal(t, ":8080", normalizeAddr(""))
	require.Equal(t, ":9090", normalizeAddr("9090"))
	require.Equal(t, ":9090", normalizeAddr(" :9090 "))
}

func TestRunEveryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := runEvery(ctx, time.Hour, func(context.Context) error {
		calls++
		cancel()
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestRunEveryReturnsJobError(t *testing.T) {
	boom := errors.New("boom")
	err := runEvery(context.Background(), time.Hour, func(context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestBuildAPIRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	_, err := BuildAPI()
	require.Error(t, err)
}
