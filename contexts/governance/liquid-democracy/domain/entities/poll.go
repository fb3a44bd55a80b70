package entities

import (
	"sort"
	"time"
)

type PollStatus string

const (
	PollStatusElaboration PollStatus = "ELABORATION"
	PollStatusVoting      PollStatus = "VOTING"
	PollStatusFinished    PollStatus = "FINISHED"
)

type ProposalStatus string

const (
	ProposalStatusIdea        ProposalStatus = "IDEA"
	ProposalStatusProposal    ProposalStatus = "PROPOSAL"
	ProposalStatusElaboration ProposalStatus = "ELABORATION"
	ProposalStatusVoting      ProposalStatus = "VOTING"
	ProposalStatusWinner      ProposalStatus = "WINNER"
	ProposalStatusLost        ProposalStatus = "LOST"
)

// Proposal is a candidate of a poll.
type Proposal struct {
	ProposalID string
	PollID     string
	Title      string
	Status     ProposalStatus
}

// Poll groups competing proposals. DuelMatrix and WinnerProposalID are
// snapshotted when the voting phase finishes and never change afterwards.
type Poll struct {
	PollID           string
	Title            string
	Status           PollStatus
	Proposals        []Proposal
	VotingStartedAt  *time.Time
	VotingEndedAt    *time.Time
	DuelMatrix       [][]int
	WinnerProposalID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CandidateIDs returns proposal ids in ascending order, the canonical
// candidate order for tallying.
func (p Poll) CandidateIDs() []string {
	ids := make([]string, 0, len(p.Proposals))
	for _, proposal := range p.Proposals {
		ids = append(ids, proposal.ProposalID)
	}
	sort.Strings(ids)
	return ids
}

func (p Poll) Proposal(proposalID string) (Proposal, bool) {
	for _, proposal := range p.Proposals {
		if proposal.ProposalID == proposalID {
			return proposal, true
		}
	}
	return Proposal{}, false
}

// Clone deep-copies slices so stored polls are not mutated through callers.
func (p Poll) Clone() Poll {
	p.Proposals = append([]Proposal(nil), p.Proposals...)
	if p.DuelMatrix != nil {
		matrix := make([][]int, len(p.DuelMatrix))
		for i, row := range p.DuelMatrix {
			matrix[i] = append([]int(nil), row...)
		}
		p.DuelMatrix = matrix
	}
	if p.VotingStartedAt != nil {
		startedAt := *p.VotingStartedAt
		p.VotingStartedAt = &startedAt
	}
	if p.VotingEndedAt != nil {
		endedAt := *p.VotingEndedAt
		p.VotingEndedAt = &endedAt
	}
	return p
}
