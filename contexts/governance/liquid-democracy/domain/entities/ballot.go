package entities

import "time"

// Ballot is the ranked preference stored for one RightToVote in one poll.
// Level 0 means the owner voted directly; level n means the vote was cast by
// a proxy n hops up the delegation chain.
type Ballot struct {
	BallotID      string
	PollID        string
	RightToVoteID string
	VoteOrder     []string
	Level         int
	Checksum      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a copy that does not share the VoteOrder backing array.
func (b Ballot) Clone() Ballot {
	b.VoteOrder = append([]string(nil), b.VoteOrder...)
	return b
}
