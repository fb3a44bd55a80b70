package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "liquido/contexts/governance/liquid-democracy/application"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/ports"
)

type EnsureRightToVoteResult struct {
	ExpiresAt time.Time
	Created   bool
	// PublicProxy reports whether delegations to this voter are accepted
	// automatically.
	PublicProxy bool
}

// RightToVoteUseCase grants eligibility. The anonymous record is created on
// first call and its expiry refreshed on every later call.
type RightToVoteUseCase struct {
	Transactor   ports.Transactor
	RightsToVote application.RightToVoteStore
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc RightToVoteUseCase) Ensure(ctx context.Context, userID string) (EnsureRightToVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return EnsureRightToVoteResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	var result EnsureRightToVoteResult
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		rightToVote, created, err := uc.RightsToVote.Ensure(ctx, repo, userID, now)
		if err != nil {
			return err
		}
		result = EnsureRightToVoteResult{
			ExpiresAt:   rightToVote.ExpiresAt,
			Created:     created,
			PublicProxy: rightToVote.IsPublicProxy(),
		}
		return nil
	})
	if err != nil {
		logFailure(logger, "liquid_ensure_right_to_vote_failed", err, "user_id", userID)
		return EnsureRightToVoteResult{}, err
	}
	logger.Info("right to vote ensured",
		"event", "liquid_ensure_right_to_vote_completed",
		"module", application.ModuleName,
		"layer", "application",
		"user_id", userID,
		"created", result.Created,
	)
	return result, nil
}

func (uc RightToVoteUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
