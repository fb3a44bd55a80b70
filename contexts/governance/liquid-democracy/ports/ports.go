package ports

import (
	"context"
	"encoding/json"
	"time"

	"liquido/contexts/governance/liquid-democracy/domain/entities"
)

// RightToVoteRepository stores anonymous eligibility records and their
// delegation edges. It does not check cycles.
type RightToVoteRepository interface {
	GetRightToVote(ctx context.Context, rightToVoteID string) (entities.RightToVote, bool, error)
	SaveRightToVote(ctx context.Context, rightToVote entities.RightToVote) error
	// ListDelegees returns every RightToVote whose active edge points at
	// rightToVoteID, ordered by id.
	ListDelegees(ctx context.Context, rightToVoteID string) ([]entities.RightToVote, error)
}

// DelegationRepository stores identity-level delegations, at most one per
// delegating user.
type DelegationRepository interface {
	GetDelegation(ctx context.Context, delegationID string) (entities.Delegation, bool, error)
	GetDelegationFrom(ctx context.Context, fromUserID string) (entities.Delegation, bool, error)
	SaveDelegation(ctx context.Context, delegation entities.Delegation) error
	DeleteDelegationFrom(ctx context.Context, fromUserID string) (bool, error)
	ListDelegationRequests(ctx context.Context, toProxyID string) ([]entities.Delegation, error)
}

type VoterTokenRepository interface {
	SaveVoterToken(ctx context.Context, token entities.VoterToken) error
	GetVoterToken(ctx context.Context, hashedVoterToken string) (entities.VoterToken, bool, error)
	// ConsumeVoterToken deletes and returns the token in one conditional
	// step. It reports false when the token is unknown or expired; expired
	// tokens are removed as a side effect.
	ConsumeVoterToken(ctx context.Context, hashedVoterToken string, now time.Time) (entities.VoterToken, bool, error)
	DeleteVoterToken(ctx context.Context, hashedVoterToken string) error
	DeleteExpiredVoterTokens(ctx context.Context, now time.Time) (int, error)
}

// BallotRepository keeps one ballot per (poll, RightToVote).
type BallotRepository interface {
	GetBallot(ctx context.Context, pollID string, rightToVoteID string) (entities.Ballot, bool, error)
	GetBallotByChecksum(ctx context.Context, pollID string, checksum string) (entities.Ballot, bool, error)
	SaveBallot(ctx context.Context, ballot entities.Ballot) error
	ListBallotsByPoll(ctx context.Context, pollID string) ([]entities.Ballot, error)
}

type PollRepository interface {
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	SavePoll(ctx context.Context, poll entities.Poll) error
}

type Repository interface {
	RightToVoteRepository
	DelegationRepository
	VoterTokenRepository
	BallotRepository
	PollRepository
}

// Transactor runs fn as one atomic unit: every write made through repo
// commits together or not at all.
type Transactor interface {
	Atomically(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// TokenGenerator produces unguessable plain voter tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}

// PollResult is the audit view of a finished poll.
type PollResult struct {
	PollID           string
	CandidateIDs     []string
	Matrix           [][]int
	Locked           []entities.Duel
	Winners          []string
	WinnerProposalID string
	Unique           bool
	BallotCount      int
}

// PollResultCache holds results of finished polls, which never change.
type PollResultCache interface {
	Get(pollID string) (PollResult, bool)
	Add(pollID string, result PollResult)
}

type DelegationRequestedNotification struct {
	DelegationID string
	FromUserID   string
	ToProxyID    string
	RequestedAt  time.Time
}

type PollFinishedNotification struct {
	PollID           string
	WinnerProposalID string
	Unique           bool
	BallotCount      int
	FinishedAt       time.Time
}

// Notifier sends user-facing notifications. Delivery failures never roll
// back the operation that triggered them.
type Notifier interface {
	DelegationRequested(ctx context.Context, notification DelegationRequestedNotification) error
	PollFinished(ctx context.Context, notification PollFinishedNotification) error
}

const (
	TopicNotifications       = "liquid.notifications"
	EventDelegationRequested = "liquid.delegation.requested"
	EventPollFinished        = "liquid.poll.finished"
)

// EventEnvelope is the message shape published on the event bus.
type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
