package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "liquido/contexts/governance/liquid-democracy/application"
	"liquido/contexts/governance/liquid-democracy/domain/entities"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/ports"
)

// BallotQueries lets voters look up and verify their counted ballot.
type BallotQueries struct {
	Transactor ports.Transactor
	Repository ports.Repository
	Tokens     application.VoterTokens
	Clock      ports.Clock
	Logger     *slog.Logger
}

// BallotForToken returns the ballot currently stored for the token's
// RightToVote. The token is not consumed.
func (q BallotQueries) BallotForToken(ctx context.Context, pollID string, voterToken string) (entities.Ballot, bool, error) {
	logger := application.ResolveLogger(q.Logger)
	pollID = strings.TrimSpace(pollID)

	now := q.now()
	var (
		ballot entities.Ballot
		found  bool
	)
	err := q.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		if _, err := repo.GetPoll(ctx, pollID); err != nil {
			return err
		}
		rightToVote, err := q.Tokens.Resolve(ctx, repo, voterToken, pollID, now)
		if err != nil {
			return err
		}
		ballot, found, err = repo.GetBallot(ctx, pollID, rightToVote.RightToVoteID)
		return err
	})
	if err != nil {
		logger.Warn("ballot lookup by token failed",
			"event", "liquid_ballot_for_token_failed",
			"module", application.ModuleName,
			"layer", "application",
			"poll_id", pollID,
			"error", err.Error(),
		)
		return entities.Ballot{}, false, err
	}
	return ballot, found, nil
}

// BallotForChecksum finds a ballot by the checksum a voter was shown when
// casting it.
func (q BallotQueries) BallotForChecksum(ctx context.Context, pollID string, checksum string) (entities.Ballot, bool, error) {
	pollID = strings.TrimSpace(pollID)
	checksum = strings.ToLower(strings.TrimSpace(checksum))
	if checksum == "" {
		return entities.Ballot{}, false, domainerrors.ErrInvalidInput
	}
	if _, err := q.Repository.GetPoll(ctx, pollID); err != nil {
		return entities.Ballot{}, false, err
	}
	return q.Repository.GetBallotByChecksum(ctx, pollID, checksum)
}

func (q BallotQueries) now() time.Time {
	if q.Clock != nil {
		return q.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
