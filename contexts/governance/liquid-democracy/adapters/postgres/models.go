package postgresadapter

import (
	"strings"
	"time"

	"liquido/contexts/governance/liquid-democracy/domain/entities"

	"gorm.io/gorm"
)

type rightToVoteModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	DelegatedTo   *string   `gorm:"column:delegated_to;index"`
	PublicProxyID *string   `gorm:"column:public_proxy_id"`
	ExpiresAt     time.Time `gorm:"column:expires_at"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (rightToVoteModel) TableName() string {
	return "liquid_rights_to_vote"
}

func rightToVoteModelFromEntity(item entities.RightToVote) rightToVoteModel {
	row := rightToVoteModel{
		ID:            strings.TrimSpace(item.RightToVoteID),
		DelegatedTo:   optionalString(item.DelegatedTo),
		PublicProxyID: optionalString(item.PublicProxyID),
		ExpiresAt:     item.ExpiresAt.UTC(),
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m rightToVoteModel) toEntity() entities.RightToVote {
	return entities.RightToVote{
		RightToVoteID: m.ID,
		DelegatedTo:   derefString(m.DelegatedTo),
		PublicProxyID: derefString(m.PublicProxyID),
		ExpiresAt:     m.ExpiresAt.UTC(),
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type delegationModel struct {
	ID                      string     `gorm:"column:id;primaryKey"`
	FromUserID              string     `gorm:"column:from_user_id;uniqueIndex"`
	ToProxyID               string     `gorm:"column:to_proxy_id;index"`
	RequestedDelegationFrom *string    `gorm:"column:requested_delegation_from"`
	RequestedAt             *time.Time `gorm:"column:requested_at"`
	CreatedAt               time.Time  `gorm:"column:created_at"`
	UpdatedAt               time.Time  `gorm:"column:updated_at"`
}

func (delegationModel) TableName() string {
	return "liquid_delegations"
}

func delegationModelFromEntity(item entities.Delegation) delegationModel {
	row := delegationModel{
		ID:                      strings.TrimSpace(item.DelegationID),
		FromUserID:              strings.TrimSpace(item.FromUserID),
		ToProxyID:               strings.TrimSpace(item.ToProxyID),
		RequestedDelegationFrom: optionalString(item.RequestedDelegationFrom),
		RequestedAt:             normalizeOptionalTime(item.RequestedAt),
		CreatedAt:               item.CreatedAt.UTC(),
		UpdatedAt:               item.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m delegationModel) toEntity() entities.Delegation {
	return entities.Delegation{
		DelegationID:            m.ID,
		FromUserID:              m.FromUserID,
		ToProxyID:               m.ToProxyID,
		RequestedDelegationFrom: derefString(m.RequestedDelegationFrom),
		RequestedAt:             normalizeOptionalTime(m.RequestedAt),
		CreatedAt:               m.CreatedAt.UTC(),
		UpdatedAt:               m.UpdatedAt.UTC(),
	}
}

type voterTokenModel struct {
	HashedVoterToken string    `gorm:"column:hashed_voter_token;primaryKey"`
	PollID           string    `gorm:"column:poll_id"`
	RightToVoteID    string    `gorm:"column:right_to_vote_id"`
	ExpiresAt        time.Time `gorm:"column:expires_at;index"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (voterTokenModel) TableName() string {
	return "liquid_voter_tokens"
}

func (m voterTokenModel) toEntity() entities.VoterToken {
	return entities.VoterToken{
		HashedVoterToken: m.HashedVoterToken,
		PollID:           m.PollID,
		RightToVoteID:    m.RightToVoteID,
		ExpiresAt:        m.ExpiresAt.UTC(),
		CreatedAt:        m.CreatedAt.UTC(),
	}
}

type ballotModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	PollID        string    `gorm:"column:poll_id;uniqueIndex:liquid_ballots_poll_right_to_vote"`
	RightToVoteID string    `gorm:"column:right_to_vote_id;uniqueIndex:liquid_ballots_poll_right_to_vote"`
	VoteOrder     []string  `gorm:"column:vote_order;type:jsonb;serializer:json"`
	Level         int       `gorm:"column:level"`
	Checksum      string    `gorm:"column:checksum;index"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (ballotModel) TableName() string {
	return "liquid_ballots"
}

func ballotModelFromEntity(item entities.Ballot) ballotModel {
	row := ballotModel{
		ID:            strings.TrimSpace(item.BallotID),
		PollID:        strings.TrimSpace(item.PollID),
		RightToVoteID: strings.TrimSpace(item.RightToVoteID),
		VoteOrder:     append([]string(nil), item.VoteOrder...),
		Level:         item.Level,
		Checksum:      item.Checksum,
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		BallotID:      m.ID,
		PollID:        m.PollID,
		RightToVoteID: m.RightToVoteID,
		VoteOrder:     append([]string(nil), m.VoteOrder...),
		Level:         m.Level,
		Checksum:      m.Checksum,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type pollModel struct {
	ID               string     `gorm:"column:id;primaryKey"`
	Title            string     `gorm:"column:title"`
	Status           string     `gorm:"column:status"`
	VotingStartedAt  *time.Time `gorm:"column:voting_started_at"`
	VotingEndedAt    *time.Time `gorm:"column:voting_ended_at"`
	DuelMatrix       [][]int    `gorm:"column:duel_matrix;type:jsonb;serializer:json"`
	WinnerProposalID *string    `gorm:"column:winner_proposal_id"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (pollModel) TableName() string {
	return "liquid_polls"
}

func pollModelFromEntity(item entities.Poll) pollModel {
	row := pollModel{
		ID:               strings.TrimSpace(item.PollID),
		Title:            strings.TrimSpace(item.Title),
		Status:           string(item.Status),
		VotingStartedAt:  normalizeOptionalTime(item.VotingStartedAt),
		VotingEndedAt:    normalizeOptionalTime(item.VotingEndedAt),
		DuelMatrix:       item.Clone().DuelMatrix,
		WinnerProposalID: optionalString(item.WinnerProposalID),
		CreatedAt:        item.CreatedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m pollModel) toEntity(proposals []proposalModel) entities.Poll {
	poll := entities.Poll{
		PollID:           m.ID,
		Title:            m.Title,
		Status:           entities.PollStatus(m.Status),
		Proposals:        make([]entities.Proposal, 0, len(proposals)),
		VotingStartedAt:  normalizeOptionalTime(m.VotingStartedAt),
		VotingEndedAt:    normalizeOptionalTime(m.VotingEndedAt),
		DuelMatrix:       m.DuelMatrix,
		WinnerProposalID: derefString(m.WinnerProposalID),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
	for _, proposal := range proposals {
		poll.Proposals = append(poll.Proposals, entities.Proposal{
			ProposalID: proposal.ID,
			PollID:     proposal.PollID,
			Title:      proposal.Title,
			Status:     entities.ProposalStatus(proposal.Status),
		})
	}
	return poll
}

type proposalModel struct {
	ID     string `gorm:"column:id;primaryKey"`
	PollID string `gorm:"column:poll_id;index"`
	Title  string `gorm:"column:title"`
	Status string `gorm:"column:status"`
}

func (proposalModel) TableName() string {
	return "liquid_proposals"
}

// AutoMigrate creates or updates every table of this context.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&rightToVoteModel{},
		&delegationModel{},
		&voterTokenModel{},
		&ballotModel{},
		&pollModel{},
		&proposalModel{},
	)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
