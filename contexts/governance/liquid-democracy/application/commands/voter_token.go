package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "liquido/contexts/governance/liquid-democracy/application"
	"liquido/contexts/governance/liquid-democracy/domain/entities"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/ports"
)

const DefaultVoterTokenTTL = time.Hour

type IssueVoterTokenCommand struct {
	UserID string
	PollID string
}

type IssueVoterTokenResult struct {
	// VoterToken is the plain token. Only its hash is stored.
	VoterToken string
	ExpiresAt  time.Time
}

type ConsumeVoterTokenCommand struct {
	VoterToken string
	PollID     string
}

// VoterTokenUseCase issues single-use, poll-bound proofs of eligibility.
type VoterTokenUseCase struct {
	Transactor   ports.Transactor
	RightsToVote application.RightToVoteStore
	Tokens       application.VoterTokens
	TokenGen     ports.TokenGenerator
	Clock        ports.Clock
	TTL          time.Duration
	Logger       *slog.Logger
}

func (uc VoterTokenUseCase) Issue(ctx context.Context, cmd IssueVoterTokenCommand) (IssueVoterTokenResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID := strings.TrimSpace(cmd.UserID)
	pollID := strings.TrimSpace(cmd.PollID)
	if userID == "" || pollID == "" {
		return IssueVoterTokenResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	var result IssueVoterTokenResult
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		if _, err := repo.GetPoll(ctx, pollID); err != nil {
			return err
		}
		rightToVote, found, err := uc.RightsToVote.FindByOwner(ctx, repo, userID, now)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrNotEligible
		}
		if _, err := uc.RightsToVote.Refresh(ctx, repo, rightToVote, now); err != nil {
			return err
		}

		plain, err := uc.TokenGen.NewToken()
		if err != nil {
			return fmt.Errorf("generate voter token: %w", err)
		}
		token := entities.VoterToken{
			HashedVoterToken: uc.Tokens.Hasher.VoterTokenHash(plain, pollID),
			PollID:           pollID,
			RightToVoteID:    rightToVote.RightToVoteID,
			ExpiresAt:        now.Add(uc.ttl()),
			CreatedAt:        now,
		}
		if err := repo.SaveVoterToken(ctx, token); err != nil {
			return err
		}
		result = IssueVoterTokenResult{VoterToken: plain, ExpiresAt: token.ExpiresAt}
		return nil
	})
	if err != nil {
		logFailure(logger, "liquid_issue_voter_token_failed", err, "user_id", userID, "poll_id", pollID)
		return IssueVoterTokenResult{}, err
	}
	logger.Info("voter token issued",
		"event", "liquid_issue_voter_token_completed",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", pollID,
		"expires_at", result.ExpiresAt,
	)
	return result, nil
}

// Consume redeems a token on its own atomic unit. CastVote consumes inside
// its cascade instead.
func (uc VoterTokenUseCase) Consume(ctx context.Context, cmd ConsumeVoterTokenCommand) (entities.RightToVote, error) {
	logger := application.ResolveLogger(uc.Logger)
	pollID := strings.TrimSpace(cmd.PollID)

	now := uc.now()
	var rightToVote entities.RightToVote
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		var err error
		rightToVote, err = uc.Tokens.Consume(ctx, repo, cmd.VoterToken, pollID, now)
		return err
	})
	if err != nil {
		logFailure(logger, "liquid_consume_voter_token_failed", err, "poll_id", pollID)
		return entities.RightToVote{}, err
	}
	return rightToVote, nil
}

func (uc VoterTokenUseCase) ttl() time.Duration {
	if uc.TTL <= 0 {
		return DefaultVoterTokenTTL
	}
	return uc.TTL
}

func (uc VoterTokenUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
