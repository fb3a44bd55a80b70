package httptransport

import "time"

// ErrorResponse carries a stable code usable as a localisation key.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type EnsureRightToVoteResponse struct {
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	Created     bool      `json:"created"`
	PublicProxy bool      `json:"public_proxy"`
}

type DelegateRequest struct {
	ProxyID string `json:"proxy_id"`
}

type DelegationDTO struct {
	DelegationID string     `json:"delegation_id"`
	FromUserID   string     `json:"from_user_id"`
	ToProxyID    string     `json:"to_proxy_id"`
	Pending      bool       `json:"pending"`
	RequestedAt  *time.Time `json:"requested_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type AcceptDelegationRequestsRequest struct {
	DelegationIDs []string `json:"delegation_ids,omitempty"`
}

type AcceptDelegationRequestsResponse struct {
	AcceptedCount int             `json:"accepted_count"`
	Accepted      []DelegationDTO `json:"accepted"`
}

type BecomePublicProxyResponse struct {
	UserID        string          `json:"user_id"`
	AcceptedCount int             `json:"accepted_count"`
	StillPending  []DelegationDTO `json:"still_pending"`
}

type ListDelegationRequestsResponse struct {
	ProxyID  string          `json:"proxy_id"`
	Requests []DelegationDTO `json:"requests"`
}

type IssueVoterTokenResponse struct {
	PollID     string    `json:"poll_id"`
	VoterToken string    `json:"voter_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type CastVoteRequest struct {
	VoterToken string   `json:"voter_token"`
	VoteOrder  []string `json:"vote_order"`
}

// BallotDTO never carries the owning RightToVote.
type BallotDTO struct {
	PollID    string    `json:"poll_id"`
	VoteOrder []string  `json:"vote_order"`
	Level     int       `json:"level"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CastVoteResponse struct {
	Ballot    BallotDTO `json:"ballot"`
	VoteCount int       `json:"vote_count"`
}

type BallotLookupResponse struct {
	Found  bool       `json:"found"`
	Ballot *BallotDTO `json:"ballot,omitempty"`
}

type EffectiveProxyResponse struct {
	PollID          string `json:"poll_id"`
	Voted           bool   `json:"voted"`
	EffectiveUserID string `json:"effective_user_id,omitempty"`
	Level           int    `json:"level"`
}

type CreatePollRequest struct {
	Title     string   `json:"title"`
	Proposals []string `json:"proposals"`
}

type ProposalDTO struct {
	ProposalID string `json:"proposal_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
}

type PollResponse struct {
	PollID           string        `json:"poll_id"`
	Title            string        `json:"title"`
	Status           string        `json:"status"`
	Proposals        []ProposalDTO `json:"proposals"`
	WinnerProposalID string        `json:"winner_proposal_id,omitempty"`
	VotingStartedAt  *time.Time    `json:"voting_started_at,omitempty"`
	VotingEndedAt    *time.Time    `json:"voting_ended_at,omitempty"`
}

type FinishVotingResponse struct {
	Poll        PollResponse `json:"poll"`
	Winners     []string     `json:"winners"`
	Unique      bool         `json:"unique"`
	BallotCount int          `json:"ballot_count"`
}

type DuelDTO struct {
	WinnerID string `json:"winner_id"`
	LoserID  string `json:"loser_id"`
	Margin   int    `json:"margin"`
}

type PollResultResponse struct {
	PollID           string    `json:"poll_id"`
	CandidateIDs     []string  `json:"candidate_ids"`
	DuelMatrix       [][]int   `json:"duel_matrix"`
	Locked           []DuelDTO `json:"locked"`
	Winners          []string  `json:"winners"`
	WinnerProposalID string    `json:"winner_proposal_id,omitempty"`
	Unique           bool      `json:"unique"`
	BallotCount      int       `json:"ballot_count"`
}
