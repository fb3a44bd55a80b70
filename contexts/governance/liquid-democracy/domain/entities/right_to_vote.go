package entities

import "time"

// RightToVote is the anonymous eligibility record of one voter. RightToVoteID
// is a keyed checksum of the owner's identity and cannot be reversed without
// the server secret.
type RightToVote struct {
	RightToVoteID string
	// DelegatedTo is the RightToVoteID of the proxy, empty when the voter
	// votes for themselves. Only active edges are stored here; pending
	// requests live on Delegation.
	DelegatedTo string
	// PublicProxyID is set only when the owner opted in to accept
	// delegations without a request/accept handshake.
	PublicProxyID string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r RightToVote) IsDelegated() bool {
	return r.DelegatedTo != ""
}

func (r RightToVote) IsPublicProxy() bool {
	return r.PublicProxyID != ""
}

func (r RightToVote) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}
