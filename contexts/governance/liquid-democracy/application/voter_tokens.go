package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"liquido/contexts/governance/liquid-democracy/domain/entities"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/domain/services"
	"liquido/contexts/governance/liquid-democracy/ports"
)

// VoterTokens turns plain voter tokens back into the RightToVote they prove.
type VoterTokens struct {
	Hasher services.Hasher
}

// Consume validates and deletes the token. A second call with the same token
// fails with ErrInvalidToken.
func (v VoterTokens) Consume(
	ctx context.Context,
	repo ports.Repository,
	plainToken string,
	pollID string,
	now time.Time,
) (entities.RightToVote, error) {
	if strings.TrimSpace(plainToken) == "" {
		return entities.RightToVote{}, domainerrors.ErrInvalidToken
	}
	hashed := v.Hasher.VoterTokenHash(plainToken, pollID)
	token, found, err := repo.ConsumeVoterToken(ctx, hashed, now)
	if err != nil {
		return entities.RightToVote{}, err
	}
	if !found {
		return entities.RightToVote{}, domainerrors.ErrInvalidToken
	}
	return v.linkedRightToVote(ctx, repo, token, pollID)
}

// Resolve validates the token without consuming it. Expired tokens are
// deleted.
func (v VoterTokens) Resolve(
	ctx context.Context,
	repo ports.Repository,
	plainToken string,
	pollID string,
	now time.Time,
) (entities.RightToVote, error) {
	if strings.TrimSpace(plainToken) == "" {
		return entities.RightToVote{}, domainerrors.ErrInvalidToken
	}
	hashed := v.Hasher.VoterTokenHash(plainToken, pollID)
	token, found, err := repo.GetVoterToken(ctx, hashed)
	if err != nil {
		return entities.RightToVote{}, err
	}
	if !found {
		return entities.RightToVote{}, domainerrors.ErrInvalidToken
	}
	if token.IsExpired(now) {
		if err := repo.DeleteVoterToken(ctx, hashed); err != nil {
			return entities.RightToVote{}, err
		}
		return entities.RightToVote{}, fmt.Errorf("%w: token expired", domainerrors.ErrInvalidToken)
	}
	return v.linkedRightToVote(ctx, repo, token, pollID)
}

func (v VoterTokens) linkedRightToVote(
	ctx context.Context,
	repo ports.Repository,
	token entities.VoterToken,
	pollID string,
) (entities.RightToVote, error) {
	if token.PollID != strings.TrimSpace(pollID) || token.RightToVoteID == "" {
		return entities.RightToVote{}, domainerrors.ErrInvalidToken
	}
	rightToVote, found, err := repo.GetRightToVote(ctx, token.RightToVoteID)
	if err != nil {
		return entities.RightToVote{}, err
	}
	if !found {
		return entities.RightToVote{}, fmt.Errorf("%w: no right to vote linked", domainerrors.ErrInvalidToken)
	}
	return rightToVote, nil
}
