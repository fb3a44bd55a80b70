package entities

// Duel is one locked-in pairwise victory of the ranked pairs tally.
type Duel struct {
	WinnerID string
	LoserID  string
	Margin   int
}

// TallyResult is the auditable outcome of a ranked pairs count.
type TallyResult struct {
	CandidateIDs []string
	Matrix       [][]int
	Locked       []Duel
	Winners      []string
	// WinnerID is the first of Winners by candidate order, empty when no
	// candidate won.
	WinnerID    string
	Unique      bool
	BallotCount int
}
