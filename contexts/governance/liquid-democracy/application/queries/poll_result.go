package queries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "liquido/contexts/governance/liquid-democracy/application"
	"liquido/contexts/governance/liquid-democracy/domain/entities"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/domain/services"
	"liquido/contexts/governance/liquid-democracy/ports"
)

// PollResultQuery rebuilds the audit view of a finished poll from its
// snapshotted duel matrix.
type PollResultQuery struct {
	Repository ports.Repository
	Cache      ports.PollResultCache
	Logger     *slog.Logger
}

func (q PollResultQuery) Execute(ctx context.Context, pollID string) (ports.PollResult, error) {
	logger := application.ResolveLogger(q.Logger)
	pollID = strings.TrimSpace(pollID)
	if q.Cache != nil {
		if result, ok := q.Cache.Get(pollID); ok {
			return result, nil
		}
	}

	poll, err := q.Repository.GetPoll(ctx, pollID)
	if err != nil {
		return ports.PollResult{}, err
	}
	if poll.Status != entities.PollStatusFinished {
		return ports.PollResult{}, fmt.Errorf("%w: poll is %s", domainerrors.ErrInvalidPollStatus, poll.Status)
	}
	ballots, err := q.Repository.ListBallotsByPoll(ctx, pollID)
	if err != nil {
		return ports.PollResult{}, err
	}

	candidateIDs := poll.CandidateIDs()
	locked, winners := services.LockPairs(candidateIDs, poll.DuelMatrix)
	result := ports.PollResult{
		PollID:           pollID,
		CandidateIDs:     candidateIDs,
		Matrix:           poll.Clone().DuelMatrix,
		Locked:           locked,
		Winners:          winners,
		WinnerProposalID: poll.WinnerProposalID,
		Unique:           len(winners) == 1,
		BallotCount:      len(ballots),
	}
	if len(ballots) == 0 {
		result.Winners = []string{}
		result.Unique = false
	}
	if q.Cache != nil {
		q.Cache.Add(pollID, result)
	}
	logger.Debug("poll result computed",
		"event", "liquid_poll_result_computed",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", pollID,
		"ballot_count", result.BallotCount,
	)
	return result, nil
}
