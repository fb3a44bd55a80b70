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
	"liquido/contexts/governance/liquid-democracy/domain/services"
	"liquido/contexts/governance/liquid-democracy/ports"
)

type CastVoteCommand struct {
	VoterToken string
	PollID     string
	VoteOrder  []string
}

type CastVoteResult struct {
	Ballot entities.Ballot
	// VoteCount is the number of RightToVotes this vote now represents,
	// the voter included.
	VoteCount int
}

// CastVoteUseCase stores a ballot and cascades it down the delegation tree.
// The whole cascade runs in one atomic unit.
type CastVoteUseCase struct {
	Transactor    ports.Transactor
	Tokens        application.VoterTokens
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	MaxChainDepth int
	Logger        *slog.Logger
}

func (uc CastVoteUseCase) Execute(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	pollID := strings.TrimSpace(cmd.PollID)
	logger.Info("cast vote started",
		"event", "liquid_cast_vote_started",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", pollID,
	)

	now := uc.now()
	var result CastVoteResult
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		poll, err := repo.GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if err := validateBallotPoll(poll); err != nil {
			return err
		}
		voteOrder, err := validateVoteOrder(poll, cmd.VoteOrder)
		if err != nil {
			return err
		}
		rightToVote, err := uc.Tokens.Consume(ctx, repo, cmd.VoterToken, pollID, now)
		if err != nil {
			return err
		}

		cascade := ballotCascade{
			repo:     repo,
			poll:     poll,
			idGen:    uc.IDGen,
			now:      now,
			maxDepth: uc.maxDepth(),
			visited:  make(map[string]bool),
		}
		ballot, count, _, err := cascade.cast(ctx, entities.Ballot{
			PollID:        pollID,
			RightToVoteID: rightToVote.RightToVoteID,
			VoteOrder:     voteOrder,
			Level:         0,
		})
		if err != nil {
			return err
		}
		result = CastVoteResult{Ballot: ballot, VoteCount: count}
		return nil
	})
	if err != nil {
		logFailure(logger, "liquid_cast_vote_failed", err, "poll_id", pollID)
		return CastVoteResult{}, err
	}
	logger.Info("cast vote completed",
		"event", "liquid_cast_vote_completed",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", pollID,
		"level", result.Ballot.Level,
		"vote_count", result.VoteCount,
	)
	return result, nil
}

func (uc CastVoteUseCase) maxDepth() int {
	if uc.MaxChainDepth <= 0 {
		return application.DefaultMaxChainDepth
	}
	return uc.MaxChainDepth
}

func (uc CastVoteUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

type ballotCascade struct {
	repo     ports.Repository
	poll     entities.Poll
	idGen    ports.IDGenerator
	now      time.Time
	maxDepth int
	visited  map[string]bool
}

// cast applies the override rule to one RightToVote and recurses into its
// delegees. It returns the stored ballot, the number of ballots applied in
// this subtree and whether this ballot itself was applied.
func (c ballotCascade) cast(ctx context.Context, ballot entities.Ballot) (entities.Ballot, int, bool, error) {
	if _, err := validateVoteOrder(c.poll, ballot.VoteOrder); err != nil {
		return entities.Ballot{}, 0, false, err
	}
	if ballot.Level > c.maxDepth {
		return entities.Ballot{}, 0, false, fmt.Errorf("%w: ballot cascade exceeds %d levels", domainerrors.ErrDataInconsistency, c.maxDepth)
	}
	if c.visited[ballot.RightToVoteID] {
		return entities.Ballot{}, 0, false, fmt.Errorf("%w: delegation cycle reached by ballot cascade", domainerrors.ErrDataInconsistency)
	}
	c.visited[ballot.RightToVoteID] = true

	existing, found, err := c.repo.GetBallot(ctx, ballot.PollID, ballot.RightToVoteID)
	if err != nil {
		return entities.Ballot{}, 0, false, err
	}
	if found && existing.Level < ballot.Level {
		return existing, 0, false, nil
	}

	stored := ballot.Clone()
	if found {
		stored.BallotID = existing.BallotID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.BallotID, err = c.idGen.NewID(ctx)
		if err != nil {
			return entities.Ballot{}, 0, false, err
		}
		stored.CreatedAt = c.now
	}
	stored.Checksum = services.BallotChecksum(stored.PollID, stored.RightToVoteID, stored.VoteOrder)
	stored.UpdatedAt = c.now
	if err := c.repo.SaveBallot(ctx, stored); err != nil {
		return entities.Ballot{}, 0, false, err
	}

	delegees, err := c.repo.ListDelegees(ctx, stored.RightToVoteID)
	if err != nil {
		return entities.Ballot{}, 0, false, err
	}
	count := 1
	for _, delegee := range delegees {
		_, applied, _, err := c.cast(ctx, entities.Ballot{
			PollID:        stored.PollID,
			RightToVoteID: delegee.RightToVoteID,
			VoteOrder:     stored.VoteOrder,
			Level:         stored.Level + 1,
		})
		if err != nil {
			return entities.Ballot{}, 0, false, err
		}
		count += applied
	}
	return stored, count, true, nil
}

func validateBallotPoll(poll entities.Poll) error {
	if poll.Status != entities.PollStatusVoting {
		return fmt.Errorf("%w: %w", domainerrors.ErrCannotCastVote, domainerrors.ErrInvalidPollStatus)
	}
	if len(poll.Proposals) < 2 {
		return fmt.Errorf("%w: poll needs at least two proposals", domainerrors.ErrCannotCastVote)
	}
	return nil
}

// validateVoteOrder trims ids and rejects empty, duplicate or foreign
// candidates.
func validateVoteOrder(poll entities.Poll, voteOrder []string) ([]string, error) {
	if len(voteOrder) == 0 {
		return nil, fmt.Errorf("%w: empty vote order", domainerrors.ErrCannotCastVote)
	}
	cleaned := make([]string, 0, len(voteOrder))
	seen := make(map[string]bool, len(voteOrder))
	for _, raw := range voteOrder {
		id := strings.TrimSpace(raw)
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate proposal %q", domainerrors.ErrCannotCastVote, id)
		}
		seen[id] = true
		proposal, ok := poll.Proposal(id)
		if !ok {
			return nil, fmt.Errorf("%w: %w: %q", domainerrors.ErrCannotCastVote, domainerrors.ErrProposalNotFound, id)
		}
		if proposal.Status != entities.ProposalStatusVoting {
			return nil, fmt.Errorf("%w: proposal %q is not in voting", domainerrors.ErrCannotCastVote, id)
		}
		cleaned = append(cleaned, id)
	}
	return cleaned, nil
}
