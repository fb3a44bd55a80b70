package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func serializationFailure() error {
	return fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"})
}

func TestRetrySerializableRerunsAfterConcurrentConsume(t *testing.T) {
	runs := 0
	err := retrySerializable(context.Background(), maxSerializableAttempts, func() error {
		runs++
		if runs == 1 {
			return serializationFailure()
		}
		// The winning transaction committed; the token is gone on re-run.
		return fmt.Errorf("%w: unknown voter token", domainerrors.ErrInvalidToken)
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	require.Equal(t, 2, runs)
}

func TestRetrySerializableGivesUpAfterAttempts(t *testing.T) {
	runs := 0
	err := retrySerializable(context.Background(), 3, func() error {
		runs++
		return serializationFailure()
	})
	require.True(t, isSerializationFailure(err))
	require.Equal(t, 3, runs)
}

func TestRetrySerializableDoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	runs := 0
	err := retrySerializable(context.Background(), maxSerializableAttempts, func() error {
		runs++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, runs)

	runs = 0
	err = retrySerializable(context.Background(), maxSerializableAttempts, func() error {
		runs++
		return &pgconn.PgError{Code: "23505"}
	})
	require.True(t, isUniqueViolation(err))
	require.Equal(t, 1, runs)
}

func TestRetrySerializableStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runs := 0
	err := retrySerializable(ctx, maxSerializableAttempts, func() error {
		runs++
		return serializationFailure()
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, runs)
}
