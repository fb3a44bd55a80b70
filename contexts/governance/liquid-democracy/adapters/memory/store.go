package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"liquido/contexts/governance/liquid-democracy/domain/entities"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/ports"
)

type ballotKey struct {
	pollID        string
	rightToVoteID string
}

type state struct {
	rightsToVote map[string]entities.RightToVote
	delegations  map[string]entities.Delegation
	voterTokens  map[string]entities.VoterToken
	ballots      map[ballotKey]entities.Ballot
	polls        map[string]entities.Poll
}

func newState() *state {
	return &state{
		rightsToVote: make(map[string]entities.RightToVote),
		delegations:  make(map[string]entities.Delegation),
		voterTokens:  make(map[string]entities.VoterToken),
		ballots:      make(map[ballotKey]entities.Ballot),
		polls:        make(map[string]entities.Poll),
	}
}

func (s *state) clone() *state {
	cloned := newState()
	for id, rightToVote := range s.rightsToVote {
		cloned.rightsToVote[id] = rightToVote
	}
	for id, delegation := range s.delegations {
		cloned.delegations[id] = cloneDelegation(delegation)
	}
	for hash, token := range s.voterTokens {
		cloned.voterTokens[hash] = token
	}
	for key, ballot := range s.ballots {
		cloned.ballots[key] = ballot.Clone()
	}
	for id, poll := range s.polls {
		cloned.polls[id] = poll.Clone()
	}
	return cloned
}

// Store keeps the whole liquid democracy state in memory. Atomic units run
// on a private copy that replaces the live state only when fn succeeds.
type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

// SeedPoll stores a poll as-is, bypassing phase checks.
func (s *Store) SeedPoll(poll entities.Poll) {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll.PollID = strings.TrimSpace(poll.PollID)
	s.state.polls[poll.PollID] = poll.Clone()
}

func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	working := s.state.clone()
	if err := fn(ctx, txRepo{state: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) live() txRepo {
	return txRepo{state: s.state}
}

func (s *Store) GetRightToVote(ctx context.Context, rightToVoteID string) (entities.RightToVote, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().GetRightToVote(ctx, rightToVoteID)
}

func (s *Store) SaveRightToVote(ctx context.Context, rightToVote entities.RightToVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().SaveRightToVote(ctx, rightToVote)
}

func (s *Store) ListDelegees(ctx context.Context, rightToVoteID string) ([]entities.RightToVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().ListDelegees(ctx, rightToVoteID)
}

func (s *Store) GetDelegation(ctx context.Context, delegationID string) (entities.Delegation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().GetDelegation(ctx, delegationID)
}

func (s *Store) GetDelegationFrom(ctx context.Context, fromUserID string) (entities.Delegation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().GetDelegationFrom(ctx, fromUserID)
}

func (s *Store) SaveDelegation(ctx context.Context, delegation entities.Delegation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().SaveDelegation(ctx, delegation)
}

func (s *Store) DeleteDelegationFrom(ctx context.Context, fromUserID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().DeleteDelegationFrom(ctx, fromUserID)
}

func (s *Store) ListDelegationRequests(ctx context.Context, toProxyID string) ([]entities.Delegation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().ListDelegationRequests(ctx, toProxyID)
}

func (s *Store) SaveVoterToken(ctx context.Context, token entities.VoterToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().SaveVoterToken(ctx, token)
}

func (s *Store) GetVoterToken(ctx context.Context, hashedVoterToken string) (entities.VoterToken, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().GetVoterToken(ctx, hashedVoterToken)
}

func (s *Store) ConsumeVoterToken(ctx context.Context, hashedVoterToken string, now time.Time) (entities.VoterToken, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().ConsumeVoterToken(ctx, hashedVoterToken, now)
}

func (s *Store) DeleteVoterToken(ctx context.Context, hashedVoterToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().DeleteVoterToken(ctx, hashedVoterToken)
}

func (s *Store) DeleteExpiredVoterTokens(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().DeleteExpiredVoterTokens(ctx, now)
}

func (s *Store) GetBallot(ctx context.Context, pollID string, rightToVoteID string) (entities.Ballot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().GetBallot(ctx, pollID, rightToVoteID)
}

func (s *Store) GetBallotByChecksum(ctx context.Context, pollID string, checksum string) (entities.Ballot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().GetBallotByChecksum(ctx, pollID, checksum)
}

func (s *Store) SaveBallot(ctx context.Context, ballot entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().SaveBallot(ctx, ballot)
}

func (s *Store) ListBallotsByPoll(ctx context.Context, pollID string) ([]entities.Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().ListBallotsByPoll(ctx, pollID)
}

func (s *Store) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().GetPoll(ctx, pollID)
}

func (s *Store) SavePoll(ctx context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().SavePoll(ctx, poll)
}

// txRepo operates on one state without locking. The owning Store holds the
// lock for its whole lifetime.
type txRepo struct {
	state *state
}

func (r txRepo) GetRightToVote(_ context.Context, rightToVoteID string) (entities.RightToVote, bool, error) {
	rightToVote, ok := r.state.rightsToVote[strings.TrimSpace(rightToVoteID)]
	return rightToVote, ok, nil
}

func (r txRepo) SaveRightToVote(_ context.Context, rightToVote entities.RightToVote) error {
	id := strings.TrimSpace(rightToVote.RightToVoteID)
	if id == "" {
		return domainerrors.ErrInvalidInput
	}
	r.state.rightsToVote[id] = rightToVote
	return nil
}

func (r txRepo) ListDelegees(_ context.Context, rightToVoteID string) ([]entities.RightToVote, error) {
	rightToVoteID = strings.TrimSpace(rightToVoteID)
	delegees := make([]entities.RightToVote, 0)
	for _, rightToVote := range r.state.rightsToVote {
		if rightToVote.DelegatedTo == rightToVoteID {
			delegees = append(delegees, rightToVote)
		}
	}
	sort.Slice(delegees, func(i, j int) bool {
		return delegees[i].RightToVoteID < delegees[j].RightToVoteID
	})
	return delegees, nil
}

func (r txRepo) GetDelegation(_ context.Context, delegationID string) (entities.Delegation, bool, error) {
	delegationID = strings.TrimSpace(delegationID)
	for _, delegation := range r.state.delegations {
		if delegation.DelegationID == delegationID {
			return cloneDelegation(delegation), true, nil
		}
	}
	return entities.Delegation{}, false, nil
}

func (r txRepo) GetDelegationFrom(_ context.Context, fromUserID string) (entities.Delegation, bool, error) {
	delegation, ok := r.state.delegations[strings.TrimSpace(fromUserID)]
	if !ok {
		return entities.Delegation{}, false, nil
	}
	return cloneDelegation(delegation), true, nil
}

func (r txRepo) SaveDelegation(_ context.Context, delegation entities.Delegation) error {
	from := strings.TrimSpace(delegation.FromUserID)
	if from == "" || strings.TrimSpace(delegation.DelegationID) == "" {
		return domainerrors.ErrInvalidInput
	}
	if existing, ok := r.state.delegations[from]; ok && existing.DelegationID != delegation.DelegationID {
		return domainerrors.ErrConflict
	}
	r.state.delegations[from] = cloneDelegation(delegation)
	return nil
}

func (r txRepo) DeleteDelegationFrom(_ context.Context, fromUserID string) (bool, error) {
	fromUserID = strings.TrimSpace(fromUserID)
	if _, ok := r.state.delegations[fromUserID]; !ok {
		return false, nil
	}
	delete(r.state.delegations, fromUserID)
	return true, nil
}

func (r txRepo) ListDelegationRequests(_ context.Context, toProxyID string) ([]entities.Delegation, error) {
	toProxyID = strings.TrimSpace(toProxyID)
	requests := make([]entities.Delegation, 0)
	for _, delegation := range r.state.delegations {
		if delegation.ToProxyID == toProxyID && delegation.IsPending() {
			requests = append(requests, cloneDelegation(delegation))
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		left, right := requestedAt(requests[i]), requestedAt(requests[j])
		if !left.Equal(right) {
			return left.Before(right)
		}
		return requests[i].DelegationID < requests[j].DelegationID
	})
	return requests, nil
}

func (r txRepo) SaveVoterToken(_ context.Context, token entities.VoterToken) error {
	hash := strings.TrimSpace(token.HashedVoterToken)
	if hash == "" {
		return domainerrors.ErrInvalidInput
	}
	if _, exists := r.state.voterTokens[hash]; exists {
		return domainerrors.ErrConflict
	}
	r.state.voterTokens[hash] = token
	return nil
}

func (r txRepo) GetVoterToken(_ context.Context, hashedVoterToken string) (entities.VoterToken, bool, error) {
	token, ok := r.state.voterTokens[strings.TrimSpace(hashedVoterToken)]
	return token, ok, nil
}

func (r txRepo) ConsumeVoterToken(_ context.Context, hashedVoterToken string, now time.Time) (entities.VoterToken, bool, error) {
	hash := strings.TrimSpace(hashedVoterToken)
	token, ok := r.state.voterTokens[hash]
	if !ok {
		return entities.VoterToken{}, false, nil
	}
	delete(r.state.voterTokens, hash)
	if token.IsExpired(now) {
		return entities.VoterToken{}, false, nil
	}
	return token, true, nil
}

func (r txRepo) DeleteVoterToken(_ context.Context, hashedVoterToken string) error {
	delete(r.state.voterTokens, strings.TrimSpace(hashedVoterToken))
	return nil
}

func (r txRepo) DeleteExpiredVoterTokens(_ context.Context, now time.Time) (int, error) {
	deleted := 0
	for hash, token := range r.state.voterTokens {
		if token.ExpiresAt.Before(now) {
			delete(r.state.voterTokens, hash)
			deleted++
		}
	}
	return deleted, nil
}

func (r txRepo) GetBallot(_ context.Context, pollID string, rightToVoteID string) (entities.Ballot, bool, error) {
	ballot, ok := r.state.ballots[ballotKey{
		pollID:        strings.TrimSpace(pollID),
		rightToVoteID: strings.TrimSpace(rightToVoteID),
	}]
	if !ok {
		return entities.Ballot{}, false, nil
	}
	return ballot.Clone(), true, nil
}

func (r txRepo) GetBallotByChecksum(_ context.Context, pollID string, checksum string) (entities.Ballot, bool, error) {
	pollID = strings.TrimSpace(pollID)
	for key, ballot := range r.state.ballots {
		if key.pollID == pollID && ballot.Checksum == checksum {
			return ballot.Clone(), true, nil
		}
	}
	return entities.Ballot{}, false, nil
}

func (r txRepo) SaveBallot(_ context.Context, ballot entities.Ballot) error {
	key := ballotKey{
		pollID:        strings.TrimSpace(ballot.PollID),
		rightToVoteID: strings.TrimSpace(ballot.RightToVoteID),
	}
	if key.pollID == "" || key.rightToVoteID == "" {
		return domainerrors.ErrInvalidInput
	}
	if existing, ok := r.state.ballots[key]; ok && existing.BallotID != ballot.BallotID {
		return domainerrors.ErrConflict
	}
	r.state.ballots[key] = ballot.Clone()
	return nil
}

func (r txRepo) ListBallotsByPoll(_ context.Context, pollID string) ([]entities.Ballot, error) {
	pollID = strings.TrimSpace(pollID)
	ballots := make([]entities.Ballot, 0)
	for key, ballot := range r.state.ballots {
		if key.pollID == pollID {
			ballots = append(ballots, ballot.Clone())
		}
	}
	sort.Slice(ballots, func(i, j int) bool {
		return ballots[i].BallotID < ballots[j].BallotID
	})
	return ballots, nil
}

func (r txRepo) GetPoll(_ context.Context, pollID string) (entities.Poll, error) {
	poll, ok := r.state.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return poll.Clone(), nil
}

func (r txRepo) SavePoll(_ context.Context, poll entities.Poll) error {
	id := strings.TrimSpace(poll.PollID)
	if id == "" {
		return domainerrors.ErrInvalidInput
	}
	r.state.polls[id] = poll.Clone()
	return nil
}

func requestedAt(delegation entities.Delegation) time.Time {
	if delegation.RequestedAt == nil {
		return time.Time{}
	}
	return *delegation.RequestedAt
}

func cloneDelegation(delegation entities.Delegation) entities.Delegation {
	if delegation.RequestedAt != nil {
		requestedAt := *delegation.RequestedAt
		delegation.RequestedAt = &requestedAt
	}
	return delegation
}
