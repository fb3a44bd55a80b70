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

type CreatePollCommand struct {
	Title     string
	Proposals []CreateProposalInput
}

type CreateProposalInput struct {
	Title string
}

type FinishVotingPhaseResult struct {
	Poll   entities.Poll
	Result entities.TallyResult
}

// PollPhaseUseCase moves polls through ELABORATION, VOTING and FINISHED.
type PollPhaseUseCase struct {
	Transactor ports.Transactor
	Tally      services.RankedPairs
	Notifier   ports.Notifier
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// CreatePoll registers a poll in ELABORATION with its proposals.
func (uc PollPhaseUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return entities.Poll{}, fmt.Errorf("%w: poll title is required", domainerrors.ErrInvalidInput)
	}

	now := uc.now()
	var poll entities.Poll
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		pollID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		poll = entities.Poll{
			PollID:    pollID,
			Title:     title,
			Status:    entities.PollStatusElaboration,
			Proposals: make([]entities.Proposal, 0, len(cmd.Proposals)),
			CreatedAt: now,
			UpdatedAt: now,
		}
		seen := make(map[string]struct{}, len(cmd.Proposals))
		for _, input := range cmd.Proposals {
			proposalTitle := strings.TrimSpace(input.Title)
			if proposalTitle == "" {
				return fmt.Errorf("%w: proposal title is required", domainerrors.ErrInvalidInput)
			}
			if _, dup := seen[proposalTitle]; dup {
				return fmt.Errorf("%w: duplicate proposal title %q", domainerrors.ErrInvalidInput, proposalTitle)
			}
			seen[proposalTitle] = struct{}{}
			proposalID, err := uc.IDGen.NewID(ctx)
			if err != nil {
				return err
			}
			poll.Proposals = append(poll.Proposals, entities.Proposal{
				ProposalID: proposalID,
				PollID:     pollID,
				Title:      proposalTitle,
				Status:     entities.ProposalStatusElaboration,
			})
		}
		return repo.SavePoll(ctx, poll)
	})
	if err != nil {
		logFailure(logger, "liquid_create_poll_failed", err)
		return entities.Poll{}, err
	}
	logger.Info("poll created",
		"event", "liquid_create_poll_completed",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", poll.PollID,
		"proposal_count", len(poll.Proposals),
	)
	return poll, nil
}

func (uc PollPhaseUseCase) StartVotingPhase(ctx context.Context, pollID string) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	pollID = strings.TrimSpace(pollID)

	now := uc.now()
	var poll entities.Poll
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		var err error
		poll, err = repo.GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if poll.Status != entities.PollStatusElaboration {
			return fmt.Errorf("%w: poll is %s", domainerrors.ErrInvalidPollStatus, poll.Status)
		}
		if len(poll.Proposals) < 2 {
			return fmt.Errorf("%w: poll needs at least two proposals", domainerrors.ErrInvalidPollStatus)
		}
		startedAt := now
		poll.Status = entities.PollStatusVoting
		poll.VotingStartedAt = &startedAt
		poll.UpdatedAt = now
		for i := range poll.Proposals {
			poll.Proposals[i].Status = entities.ProposalStatusVoting
		}
		return repo.SavePoll(ctx, poll)
	})
	if err != nil {
		logFailure(logger, "liquid_start_voting_failed", err, "poll_id", pollID)
		return entities.Poll{}, err
	}
	logger.Info("voting phase started",
		"event", "liquid_start_voting_completed",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", pollID,
		"proposal_count", len(poll.Proposals),
	)
	return poll, nil
}

// FinishVotingPhase tallies all ballots, snapshots the duel matrix on the
// poll and marks the winning proposal.
func (uc PollPhaseUseCase) FinishVotingPhase(ctx context.Context, pollID string) (FinishVotingPhaseResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	pollID = strings.TrimSpace(pollID)

	now := uc.now()
	var result FinishVotingPhaseResult
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		poll, err := repo.GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if poll.Status != entities.PollStatusVoting {
			return fmt.Errorf("%w: poll is %s", domainerrors.ErrInvalidPollStatus, poll.Status)
		}
		ballots, err := repo.ListBallotsByPoll(ctx, pollID)
		if err != nil {
			return err
		}
		voteOrders := make([][]string, 0, len(ballots))
		for _, ballot := range ballots {
			voteOrders = append(voteOrders, ballot.VoteOrder)
		}
		tally := uc.Tally.Tally(poll.CandidateIDs(), voteOrders)

		endedAt := now
		poll.Status = entities.PollStatusFinished
		poll.VotingEndedAt = &endedAt
		poll.DuelMatrix = tally.Matrix
		poll.WinnerProposalID = tally.WinnerID
		poll.UpdatedAt = now
		for i := range poll.Proposals {
			if poll.Proposals[i].ProposalID == tally.WinnerID {
				poll.Proposals[i].Status = entities.ProposalStatusWinner
			} else {
				poll.Proposals[i].Status = entities.ProposalStatusLost
			}
		}
		if err := repo.SavePoll(ctx, poll); err != nil {
			return err
		}
		result = FinishVotingPhaseResult{Poll: poll, Result: tally}
		return nil
	})
	if err != nil {
		logFailure(logger, "liquid_finish_voting_failed", err, "poll_id", pollID)
		return FinishVotingPhaseResult{}, err
	}

	if !result.Result.Unique {
		logger.Warn("ranked pairs produced no unique winner",
			"event", "liquid_finish_voting_not_unique",
			"module", application.ModuleName,
			"layer", "application",
			"poll_id", pollID,
			"winners", result.Result.Winners,
			"ballot_count", result.Result.BallotCount,
		)
	}
	uc.notifyFinished(ctx, logger, result, now)
	logger.Info("voting phase finished",
		"event", "liquid_finish_voting_completed",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", pollID,
		"winner_proposal_id", result.Poll.WinnerProposalID,
		"ballot_count", result.Result.BallotCount,
	)
	return result, nil
}

func (uc PollPhaseUseCase) notifyFinished(ctx context.Context, logger *slog.Logger, result FinishVotingPhaseResult, now time.Time) {
	if uc.Notifier == nil {
		return
	}
	err := uc.Notifier.PollFinished(ctx, ports.PollFinishedNotification{
		PollID:           result.Poll.PollID,
		WinnerProposalID: result.Poll.WinnerProposalID,
		Unique:           result.Result.Unique,
		BallotCount:      result.Result.BallotCount,
		FinishedAt:       now,
	})
	if err != nil {
		logger.Warn("poll finished notification failed",
			"event", "liquid_poll_finished_notify_failed",
			"module", application.ModuleName,
			"layer", "application",
			"poll_id", result.Poll.PollID,
			"error", err.Error(),
		)
	}
}

func (uc PollPhaseUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
