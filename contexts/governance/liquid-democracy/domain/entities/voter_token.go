package entities

import "time"

// VoterToken is a single-use, poll-scoped credential. Only the hash of the
// plain token is ever stored.
type VoterToken struct {
	HashedVoterToken string
	PollID           string
	RightToVoteID    string
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

func (t VoterToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
