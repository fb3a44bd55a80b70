package application

import (
	"context"
	"strings"
	"time"

	"liquido/contexts/governance/liquid-democracy/domain/entities"
	"liquido/contexts/governance/liquid-democracy/domain/services"
	"liquido/contexts/governance/liquid-democracy/ports"
)

// DefaultMaxChainDepth caps every walk along delegation edges. The edges are
// kept acyclic, so the cap only trips on corrupted data.
const DefaultMaxChainDepth = 10000

// RightToVoteStore resolves identities to their anonymous RightToVote and
// mutates delegation edges. Callers pass the repository so the same store
// works inside and outside an atomic unit.
type RightToVoteStore struct {
	Hasher services.Hasher
	TTL    time.Duration
}

// FindByOwner looks up the RightToVote derived from userID. Expired records
// are reported as missing.
func (s RightToVoteStore) FindByOwner(
	ctx context.Context,
	repo ports.RightToVoteRepository,
	userID string,
	now time.Time,
) (entities.RightToVote, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.RightToVote{}, false, nil
	}
	rightToVote, found, err := s.FindByChecksum(ctx, repo, s.Hasher.RightToVoteID(userID))
	if err != nil || !found {
		return entities.RightToVote{}, false, err
	}
	if rightToVote.IsExpired(now) {
		return entities.RightToVote{}, false, nil
	}
	return rightToVote, true, nil
}

func (s RightToVoteStore) FindByChecksum(
	ctx context.Context,
	repo ports.RightToVoteRepository,
	checksum string,
) (entities.RightToVote, bool, error) {
	return repo.GetRightToVote(ctx, strings.TrimSpace(checksum))
}

// Ensure creates the RightToVote of userID or refreshes its expiry.
func (s RightToVoteStore) Ensure(
	ctx context.Context,
	repo ports.RightToVoteRepository,
	userID string,
	now time.Time,
) (entities.RightToVote, bool, error) {
	id := s.Hasher.RightToVoteID(userID)
	rightToVote, found, err := repo.GetRightToVote(ctx, id)
	if err != nil {
		return entities.RightToVote{}, false, err
	}
	if !found {
		rightToVote = entities.RightToVote{
			RightToVoteID: id,
			CreatedAt:     now,
		}
	}
	rightToVote.ExpiresAt = now.Add(s.ttl())
	rightToVote.UpdatedAt = now
	if err := repo.SaveRightToVote(ctx, rightToVote); err != nil {
		return entities.RightToVote{}, false, err
	}
	return rightToVote, !found, nil
}

// Refresh extends the expiry of a RightToVote that was just used.
func (s RightToVoteStore) Refresh(
	ctx context.Context,
	repo ports.RightToVoteRepository,
	rightToVote entities.RightToVote,
	now time.Time,
) (entities.RightToVote, error) {
	rightToVote.ExpiresAt = now.Add(s.ttl())
	rightToVote.UpdatedAt = now
	if err := repo.SaveRightToVote(ctx, rightToVote); err != nil {
		return entities.RightToVote{}, err
	}
	return rightToVote, nil
}

func (s RightToVoteStore) SetDelegation(
	ctx context.Context,
	repo ports.RightToVoteRepository,
	voter entities.RightToVote,
	proxy entities.RightToVote,
	now time.Time,
) (entities.RightToVote, error) {
	voter.DelegatedTo = proxy.RightToVoteID
	voter.UpdatedAt = now
	if err := repo.SaveRightToVote(ctx, voter); err != nil {
		return entities.RightToVote{}, err
	}
	return voter, nil
}

func (s RightToVoteStore) ClearDelegation(
	ctx context.Context,
	repo ports.RightToVoteRepository,
	voter entities.RightToVote,
	now time.Time,
) (entities.RightToVote, error) {
	if !voter.IsDelegated() {
		return voter, nil
	}
	voter.DelegatedTo = ""
	voter.UpdatedAt = now
	if err := repo.SaveRightToVote(ctx, voter); err != nil {
		return entities.RightToVote{}, err
	}
	return voter, nil
}

func (s RightToVoteStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 365 * 24 * time.Hour
	}
	return s.TTL
}
