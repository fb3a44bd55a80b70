package commands

import (
	"errors"
	"log/slog"

	application "liquido/contexts/governance/liquid-democracy/application"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
)

func isCircular(err error) bool {
	return errors.Is(err, domainerrors.ErrCircularDelegation)
}

// logFailure logs expected domain failures as warnings and everything else,
// data inconsistencies included, as errors.
func logFailure(logger *slog.Logger, event string, err error, attrs ...any) {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", application.ModuleName,
		"layer", "application",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	if isExpected(err) {
		logger.Warn("liquid democracy command rejected", fields...)
		return
	}
	logger.Error("liquid democracy command failed", fields...)
}

func isExpected(err error) bool {
	if errors.Is(err, domainerrors.ErrDataInconsistency) {
		return false
	}
	for _, expected := range []error{
		domainerrors.ErrNotEligible,
		domainerrors.ErrSelfDelegation,
		domainerrors.ErrCircularDelegation,
		domainerrors.ErrInvalidToken,
		domainerrors.ErrInvalidPollStatus,
		domainerrors.ErrCannotCastVote,
		domainerrors.ErrPollNotFound,
		domainerrors.ErrProposalNotFound,
		domainerrors.ErrDelegationNotFound,
		domainerrors.ErrInvalidInput,
		domainerrors.ErrConflict,
	} {
		if errors.Is(err, expected) {
			return true
		}
	}
	return false
}
