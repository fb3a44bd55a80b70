package queries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "liquido/contexts/governance/liquid-democracy/application"
	"liquido/contexts/governance/liquid-democracy/domain/entities"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/ports"
)

type EffectiveProxyQuery struct {
	PollID     string
	UserID     string
	VoterToken string
}

type EffectiveProxyResult struct {
	// UserID is the identity whose decision the voter's ballot carries. It is
	// the voter themself when they voted directly.
	UserID string
	// Level is the level of the voter's own ballot.
	Level int
	// Voted is false when no ballot exists yet for the voter.
	Voted bool
}

// EffectiveProxyResolver walks identity-level delegations upward to find who
// actually decided the voter's ballot.
type EffectiveProxyResolver struct {
	Transactor    ports.Transactor
	RightsToVote  application.RightToVoteStore
	Tokens        application.VoterTokens
	Clock         ports.Clock
	MaxChainDepth int
	Logger        *slog.Logger
}

func (r EffectiveProxyResolver) FindEffectiveProxy(ctx context.Context, query EffectiveProxyQuery) (EffectiveProxyResult, error) {
	logger := application.ResolveLogger(r.Logger)
	pollID := strings.TrimSpace(query.PollID)
	userID := strings.TrimSpace(query.UserID)
	if userID == "" {
		return EffectiveProxyResult{}, domainerrors.ErrInvalidInput
	}

	now := r.now()
	var result EffectiveProxyResult
	err := r.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		poll, err := repo.GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if poll.Status == entities.PollStatusElaboration {
			return fmt.Errorf("%w: poll is %s", domainerrors.ErrInvalidPollStatus, poll.Status)
		}
		rightToVote, err := r.Tokens.Resolve(ctx, repo, query.VoterToken, pollID, now)
		if err != nil {
			return err
		}
		if rightToVote.RightToVoteID != r.RightsToVote.Hasher.RightToVoteID(userID) {
			return fmt.Errorf("%w: token belongs to another voter", domainerrors.ErrInvalidToken)
		}
		result, err = r.walk(ctx, repo, pollID, rightToVote, userID)
		return err
	})
	if err != nil {
		attrs := []any{
			"event", "liquid_find_effective_proxy_failed",
			"module", application.ModuleName,
			"layer", "application",
			"poll_id", pollID,
			"user_id", userID,
			"error", err.Error(),
		}
		if errors.Is(err, domainerrors.ErrDataInconsistency) {
			logger.Error("effective proxy resolution hit inconsistent delegation data", attrs...)
		} else {
			logger.Warn("effective proxy resolution failed", attrs...)
		}
		return EffectiveProxyResult{}, err
	}
	return result, nil
}

func (r EffectiveProxyResolver) walk(
	ctx context.Context,
	repo ports.Repository,
	pollID string,
	rightToVote entities.RightToVote,
	identityGuess string,
) (EffectiveProxyResult, error) {
	maxDepth := r.MaxChainDepth
	if maxDepth <= 0 {
		maxDepth = application.DefaultMaxChainDepth
	}
	voterLevel := 0
	for depth := 0; depth <= maxDepth; depth++ {
		if rightToVote.IsPublicProxy() && rightToVote.PublicProxyID != identityGuess {
			return EffectiveProxyResult{}, fmt.Errorf("%w: public proxy reached under another identity", domainerrors.ErrDataInconsistency)
		}
		ballot, found, err := repo.GetBallot(ctx, pollID, rightToVote.RightToVoteID)
		if err != nil {
			return EffectiveProxyResult{}, err
		}
		if !found {
			return EffectiveProxyResult{}, nil
		}
		if depth == 0 {
			voterLevel = ballot.Level
		}
		if ballot.Level == 0 || !rightToVote.IsDelegated() {
			return EffectiveProxyResult{UserID: identityGuess, Level: voterLevel, Voted: true}, nil
		}

		delegation, found, err := repo.GetDelegationFrom(ctx, identityGuess)
		if err != nil {
			return EffectiveProxyResult{}, err
		}
		if !found || delegation.IsPending() {
			return EffectiveProxyResult{}, fmt.Errorf("%w: delegated right to vote has no active delegation", domainerrors.ErrDataInconsistency)
		}
		if r.RightsToVote.Hasher.RightToVoteID(delegation.ToProxyID) != rightToVote.DelegatedTo {
			return EffectiveProxyResult{}, fmt.Errorf("%w: delegation and right to vote point at different proxies", domainerrors.ErrDataInconsistency)
		}
		next, found, err := repo.GetRightToVote(ctx, rightToVote.DelegatedTo)
		if err != nil {
			return EffectiveProxyResult{}, err
		}
		if !found {
			return EffectiveProxyResult{}, fmt.Errorf("%w: dangling delegation edge", domainerrors.ErrDataInconsistency)
		}
		rightToVote = next
		identityGuess = delegation.ToProxyID
	}
	return EffectiveProxyResult{}, fmt.Errorf("%w: delegation chain exceeds %d hops", domainerrors.ErrDataInconsistency, maxDepth)
}

func (r EffectiveProxyResolver) now() time.Time {
	if r.Clock != nil {
		return r.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
