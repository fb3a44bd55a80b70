package liquiddemocracy_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	liquiddemocracy "liquido/contexts/governance/liquid-democracy"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/domain/services"
	httptransport "liquido/contexts/governance/liquid-democracy/transport/http"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type votingPoll struct {
	id  string
	ids map[string]string
}

func (p votingPoll) order(titles ...string) []string {
	out := make([]string, 0, len(titles))
	for _, title := range titles {
		out = append(out, p.ids[title])
	}
	return out
}

func newTestModule(t *testing.T) (liquiddemocracy.Module, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return liquiddemocracy.NewInMemoryModule(clock, nil), clock
}

func ensureVoters(t *testing.T, module liquiddemocracy.Module, userIDs ...string) {
	t.Helper()
	for _, userID := range userIDs {
		_, err := module.Handler.EnsureRightToVoteHandler(context.Background(), userID)
		require.NoError(t, err)
	}
}

func createPoll(t *testing.T, module liquiddemocracy.Module, start bool, titles ...string) votingPoll {
	t.Helper()
	ctx := context.Background()
	created, err := module.Handler.CreatePollHandler(ctx, httptransport.CreatePollRequest{
		Title:     "budget 2026",
		Proposals: titles,
	})
	require.NoError(t, err)
	poll := votingPoll{id: created.PollID, ids: make(map[string]string, len(titles))}
	for _, proposal := range created.Proposals {
		poll.ids[proposal.Title] = proposal.ProposalID
	}
	if start {
		started, err := module.Handler.StartVotingHandler(ctx, created.PollID)
		require.NoError(t, err)
		require.Equal(t, "VOTING", started.Status)
	}
	return poll
}

func issueToken(t *testing.T, module liquiddemocracy.Module, userID string, pollID string) string {
	t.Helper()
	issued, err := module.Handler.IssueVoterTokenHandler(context.Background(), userID, pollID)
	require.NoError(t, err)
	require.NotEmpty(t, issued.VoterToken)
	return issued.VoterToken
}

func castVote(t *testing.T, module liquiddemocracy.Module, userID string, poll votingPoll, titles ...string) httptransport.CastVoteResponse {
	t.Helper()
	resp, err := module.Handler.CastVoteHandler(context.Background(), poll.id, httptransport.CastVoteRequest{
		VoterToken: issueToken(t, module, userID, poll.id),
		VoteOrder:  poll.order(titles...),
	})
	require.NoError(t, err)
	return resp
}

func TestProxyVoteCascadesUntilVoterVotesDirectly(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "voter", "proxy")
	_, err := module.Handler.BecomePublicProxyHandler(ctx, "proxy")
	require.NoError(t, err)
	delegation, err := module.Handler.DelegateHandler(ctx, "voter", httptransport.DelegateRequest{ProxyID: "proxy"})
	require.NoError(t, err)
	require.False(t, delegation.Pending)

	poll := createPoll(t, module, true, "A", "B")

	proxyVote := castVote(t, module, "proxy", poll, "A", "B")
	require.Equal(t, 0, proxyVote.Ballot.Level)
	require.Equal(t, 2, proxyVote.VoteCount)

	voterToken := issueToken(t, module, "voter", poll.id)
	lookup, err := module.Handler.BallotForTokenHandler(ctx, poll.id, voterToken)
	require.NoError(t, err)
	require.True(t, lookup.Found)
	require.Equal(t, 1, lookup.Ballot.Level)
	require.Equal(t, poll.order("A", "B"), lookup.Ballot.VoteOrder)

	effective, err := module.Handler.EffectiveProxyHandler(ctx, poll.id, "voter", voterToken)
	require.NoError(t, err)
	require.True(t, effective.Voted)
	require.Equal(t, "proxy", effective.EffectiveUserID)
	require.Equal(t, 1, effective.Level)

	// Lookups do not consume the token.
	direct, err := module.Handler.CastVoteHandler(ctx, poll.id, httptransport.CastVoteRequest{
		VoterToken: voterToken,
		VoteOrder:  poll.order("B", "A"),
	})
	require.NoError(t, err)
	require.Equal(t, 0, direct.Ballot.Level)
	require.Equal(t, 1, direct.VoteCount)

	revote := castVote(t, module, "proxy", poll, "A", "B")
	require.Equal(t, 1, revote.VoteCount)

	voterToken = issueToken(t, module, "voter", poll.id)
	lookup, err = module.Handler.BallotForTokenHandler(ctx, poll.id, voterToken)
	require.NoError(t, err)
	require.Equal(t, 0, lookup.Ballot.Level)
	require.Equal(t, poll.order("B", "A"), lookup.Ballot.VoteOrder)

	effective, err = module.Handler.EffectiveProxyHandler(ctx, poll.id, "voter", voterToken)
	require.NoError(t, err)
	require.Equal(t, "voter", effective.EffectiveUserID)
}

func TestCascadeFollowsTransitiveChain(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "u1", "u2", "u3")
	for _, proxy := range []string{"u2", "u3"} {
		_, err := module.Handler.BecomePublicProxyHandler(ctx, proxy)
		require.NoError(t, err)
	}
	_, err := module.Handler.DelegateHandler(ctx, "u1", httptransport.DelegateRequest{ProxyID: "u2"})
	require.NoError(t, err)
	_, err = module.Handler.DelegateHandler(ctx, "u2", httptransport.DelegateRequest{ProxyID: "u3"})
	require.NoError(t, err)

	poll := createPoll(t, module, true, "A", "B", "C")
	resp := castVote(t, module, "u3", poll, "C", "A")
	require.Equal(t, 3, resp.VoteCount)

	token := issueToken(t, module, "u1", poll.id)
	lookup, err := module.Handler.BallotForTokenHandler(ctx, poll.id, token)
	require.NoError(t, err)
	require.Equal(t, 2, lookup.Ballot.Level)

	effective, err := module.Handler.EffectiveProxyHandler(ctx, poll.id, "u1", token)
	require.NoError(t, err)
	require.Equal(t, "u3", effective.EffectiveUserID)
	require.Equal(t, 2, effective.Level)

	// u2 overrides for its own branch; u3's next vote reaches nobody below u2.
	middle := castVote(t, module, "u2", poll, "B")
	require.Equal(t, 2, middle.VoteCount)
	top := castVote(t, module, "u3", poll, "A")
	require.Equal(t, 1, top.VoteCount)
}

func TestDelegationRejectsCyclesAndLeavesStateUnchanged(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "a", "b", "c")
	for _, userID := range []string{"a", "b", "c"} {
		_, err := module.Handler.BecomePublicProxyHandler(ctx, userID)
		require.NoError(t, err)
	}
	_, err := module.Handler.DelegateHandler(ctx, "a", httptransport.DelegateRequest{ProxyID: "b"})
	require.NoError(t, err)
	_, err = module.Handler.DelegateHandler(ctx, "b", httptransport.DelegateRequest{ProxyID: "c"})
	require.NoError(t, err)

	_, err = module.Handler.DelegateHandler(ctx, "c", httptransport.DelegateRequest{ProxyID: "a"})
	require.ErrorIs(t, err, domainerrors.ErrCircularDelegation)
	_, err = module.Handler.GetDelegationHandler(ctx, "c")
	require.ErrorIs(t, err, domainerrors.ErrDelegationNotFound)

	_, err = module.Handler.DelegateHandler(ctx, "a", httptransport.DelegateRequest{ProxyID: "a"})
	require.ErrorIs(t, err, domainerrors.ErrSelfDelegation)

	_, err = module.Handler.DelegateHandler(ctx, "a", httptransport.DelegateRequest{ProxyID: "stranger"})
	require.ErrorIs(t, err, domainerrors.ErrNotEligible)

	// a still delegates to b.
	current, err := module.Handler.GetDelegationHandler(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "b", current.ToProxyID)
}

func TestDelegationToPrivateProxyNeedsAcceptance(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "voter", "proxy")

	delegation, err := module.Handler.DelegateHandler(ctx, "voter", httptransport.DelegateRequest{ProxyID: "proxy"})
	require.NoError(t, err)
	require.True(t, delegation.Pending)

	requests, err := module.Handler.ListDelegationRequestsHandler(ctx, "proxy")
	require.NoError(t, err)
	require.Len(t, requests.Requests, 1)
	require.Equal(t, "voter", requests.Requests[0].FromUserID)

	poll := createPoll(t, module, true, "A", "B")
	require.Equal(t, 1, castVote(t, module, "proxy", poll, "A").VoteCount)

	accepted, err := module.Handler.AcceptDelegationRequestsHandler(ctx, "proxy", httptransport.AcceptDelegationRequestsRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, accepted.AcceptedCount)
	require.Equal(t, 2, castVote(t, module, "proxy", poll, "A").VoteCount)

	current, err := module.Handler.GetDelegationHandler(ctx, "voter")
	require.NoError(t, err)
	require.False(t, current.Pending)

	requests, err = module.Handler.ListDelegationRequestsHandler(ctx, "proxy")
	require.NoError(t, err)
	require.Empty(t, requests.Requests)

	_, err = module.Handler.AcceptDelegationRequestsHandler(ctx, "proxy", httptransport.AcceptDelegationRequestsRequest{
		DelegationIDs: []string{"unknown"},
	})
	require.ErrorIs(t, err, domainerrors.ErrDelegationNotFound)
}

func TestBecomePublicProxyKeepsCircularRequestsPending(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "a", "b", "c")

	_, err := module.Handler.DelegateHandler(ctx, "b", httptransport.DelegateRequest{ProxyID: "a"})
	require.NoError(t, err)
	_, err = module.Handler.DelegateHandler(ctx, "c", httptransport.DelegateRequest{ProxyID: "a"})
	require.NoError(t, err)
	_, err = module.Handler.BecomePublicProxyHandler(ctx, "b")
	require.NoError(t, err)
	_, err = module.Handler.DelegateHandler(ctx, "a", httptransport.DelegateRequest{ProxyID: "b"})
	require.NoError(t, err)

	resp, err := module.Handler.BecomePublicProxyHandler(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 1, resp.AcceptedCount)
	require.Len(t, resp.StillPending, 1)
	require.Equal(t, "b", resp.StillPending[0].FromUserID)

	ensured, err := module.Handler.EnsureRightToVoteHandler(ctx, "a")
	require.NoError(t, err)
	require.True(t, ensured.PublicProxy)
	require.False(t, ensured.Created)
}

func TestRemoveDelegationStopsCascade(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "voter", "proxy")
	_, err := module.Handler.BecomePublicProxyHandler(ctx, "proxy")
	require.NoError(t, err)
	_, err = module.Handler.DelegateHandler(ctx, "voter", httptransport.DelegateRequest{ProxyID: "proxy"})
	require.NoError(t, err)

	require.NoError(t, module.Handler.RemoveDelegationHandler(ctx, "voter"))
	require.NoError(t, module.Handler.RemoveDelegationHandler(ctx, "voter"))
	_, err = module.Handler.GetDelegationHandler(ctx, "voter")
	require.ErrorIs(t, err, domainerrors.ErrDelegationNotFound)

	poll := createPoll(t, module, true, "A", "B")
	require.Equal(t, 1, castVote(t, module, "proxy", poll, "B", "A").VoteCount)
}

func TestVoterTokenIsSingleUseAndPollBound(t *testing.T) {
	module, clock := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "voter")
	first := createPoll(t, module, true, "A", "B")
	second := createPoll(t, module, true, "X", "Y")

	token := issueToken(t, module, "voter", first.id)
	_, err := module.Handler.CastVoteHandler(ctx, second.id, httptransport.CastVoteRequest{
		VoterToken: token,
		VoteOrder:  second.order("X"),
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	_, err = module.Handler.CastVoteHandler(ctx, first.id, httptransport.CastVoteRequest{
		VoterToken: token,
		VoteOrder:  first.order("A"),
	})
	require.NoError(t, err)
	_, err = module.Handler.CastVoteHandler(ctx, first.id, httptransport.CastVoteRequest{
		VoterToken: token,
		VoteOrder:  first.order("B"),
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	expiring := issueToken(t, module, "voter", first.id)
	clock.Advance(2 * time.Hour)
	_, err = module.Handler.CastVoteHandler(ctx, first.id, httptransport.CastVoteRequest{
		VoterToken: expiring,
		VoteOrder:  first.order("A"),
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	_, err = module.Handler.IssueVoterTokenHandler(ctx, "stranger", first.id)
	require.ErrorIs(t, err, domainerrors.ErrNotEligible)
	_, err = module.Handler.IssueVoterTokenHandler(ctx, "voter", "missing-poll")
	require.ErrorIs(t, err, domainerrors.ErrPollNotFound)
}

func TestConcurrentCastWithSameTokenSucceedsOnce(t *testing.T) {
	module, _ := newTestModule(t)
	ensureVoters(t, module, "voter")
	poll := createPoll(t, module, true, "A", "B")
	token := issueToken(t, module, "voter", poll.id)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		invalid   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := module.Handler.CastVoteHandler(context.Background(), poll.id, httptransport.CastVoteRequest{
				VoterToken: token,
				VoteOrder:  poll.order("A", "B"),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, domainerrors.ErrInvalidToken) {
				invalid++
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, successes)
	require.Equal(t, attempts-1, invalid)
}

func TestCastVoteValidationKeepsTokenUsable(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "voter")
	poll := createPoll(t, module, true, "A", "B", "C")
	token := issueToken(t, module, "voter", poll.id)

	cases := map[string][]string{
		"empty":     {},
		"duplicate": {poll.ids["A"], poll.ids["A"]},
		"foreign":   {poll.ids["A"], "not-a-proposal"},
	}
	for name, voteOrder := range cases {
		_, err := module.Handler.CastVoteHandler(ctx, poll.id, httptransport.CastVoteRequest{
			VoterToken: token,
			VoteOrder:  voteOrder,
		})
		require.ErrorIs(t, err, domainerrors.ErrCannotCastVote, name)
	}

	resp, err := module.Handler.CastVoteHandler(ctx, poll.id, httptransport.CastVoteRequest{
		VoterToken: token,
		VoteOrder:  poll.order("C", "A"),
	})
	require.NoError(t, err)

	verified, err := module.Handler.BallotForChecksumHandler(ctx, poll.id, resp.Ballot.Checksum)
	require.NoError(t, err)
	require.True(t, verified.Found)
	require.Equal(t, poll.order("C", "A"), verified.Ballot.VoteOrder)

	missing, err := module.Handler.BallotForChecksumHandler(ctx, poll.id, "deadbeef")
	require.NoError(t, err)
	require.False(t, missing.Found)
}

func TestCastVoteOutsideVotingPhase(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "voter")
	poll := createPoll(t, module, false, "A", "B")
	token := issueToken(t, module, "voter", poll.id)

	_, err := module.Handler.CastVoteHandler(ctx, poll.id, httptransport.CastVoteRequest{
		VoterToken: token,
		VoteOrder:  poll.order("A"),
	})
	require.ErrorIs(t, err, domainerrors.ErrCannotCastVote)
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollStatus)

	_, err = module.Handler.EffectiveProxyHandler(ctx, poll.id, "voter", token)
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollStatus)

	_, err = module.Handler.FinishVotingHandler(ctx, poll.id)
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollStatus)

	lonely := createPoll(t, module, false, "only")
	_, err = module.Handler.StartVotingHandler(ctx, lonely.id)
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollStatus)
}

func TestEffectiveProxyRejectsForeignToken(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "alice", "bob")
	poll := createPoll(t, module, true, "A", "B")
	token := issueToken(t, module, "alice", poll.id)

	_, err := module.Handler.EffectiveProxyHandler(ctx, poll.id, "bob", token)
	require.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	effective, err := module.Handler.EffectiveProxyHandler(ctx, poll.id, "alice", token)
	require.NoError(t, err)
	require.False(t, effective.Voted)
}

func TestFinishVotingCondorcetCycleHasNoUniqueWinner(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "v1", "v2", "v3")
	poll := createPoll(t, module, true, "A", "B", "C")
	castVote(t, module, "v1", poll, "A", "B", "C")
	castVote(t, module, "v2", poll, "B", "C", "A")
	castVote(t, module, "v3", poll, "C", "A", "B")

	finished, err := module.Handler.FinishVotingHandler(ctx, poll.id)
	require.NoError(t, err)
	require.False(t, finished.Unique)
	require.Len(t, finished.Winners, 3)
	require.Equal(t, 3, finished.BallotCount)
	require.Equal(t, "FINISHED", finished.Poll.Status)

	result, err := module.Handler.PollResultHandler(ctx, poll.id)
	require.NoError(t, err)
	require.Empty(t, result.Locked)
	require.False(t, result.Unique)
	for i := range result.DuelMatrix {
		for j := range result.DuelMatrix {
			if i != j {
				require.Equal(t, 1, abs(result.DuelMatrix[i][j]-result.DuelMatrix[j][i]))
			}
		}
	}

	_, err = module.Handler.FinishVotingHandler(ctx, poll.id)
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollStatus)
	_, err = module.Handler.IssueVoterTokenHandler(ctx, "v1", poll.id)
	require.NoError(t, err)
}

func TestFinishVotingMarksCondorcetWinner(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "v1", "v2", "v3")
	poll := createPoll(t, module, true, "A", "B")
	castVote(t, module, "v1", poll, "A", "B")
	castVote(t, module, "v2", poll, "A", "B")
	castVote(t, module, "v3", poll, "B", "A")

	_, err := module.Handler.PollResultHandler(ctx, poll.id)
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollStatus)

	finished, err := module.Handler.FinishVotingHandler(ctx, poll.id)
	require.NoError(t, err)
	require.True(t, finished.Unique)
	require.Equal(t, poll.ids["A"], finished.Poll.WinnerProposalID)
	for _, proposal := range finished.Poll.Proposals {
		if proposal.ProposalID == poll.ids["A"] {
			require.Equal(t, "WINNER", proposal.Status)
		} else {
			require.Equal(t, "LOST", proposal.Status)
		}
	}

	result, err := module.Handler.PollResultHandler(ctx, poll.id)
	require.NoError(t, err)
	require.Equal(t, []string{poll.ids["A"]}, result.Winners)
	require.Len(t, result.Locked, 1)
	require.Equal(t, 1, result.Locked[0].Margin)

	cached, err := module.Handler.PollResultHandler(ctx, poll.id)
	require.NoError(t, err)
	require.Equal(t, result, cached)

	token := issueToken(t, module, "v1", poll.id)
	_, err = module.Handler.CastVoteHandler(ctx, poll.id, httptransport.CastVoteRequest{
		VoterToken: token,
		VoteOrder:  poll.order("B"),
	})
	require.ErrorIs(t, err, domainerrors.ErrCannotCastVote)
}

func TestSweeperRemovesExpiredTokens(t *testing.T) {
	module, clock := newTestModule(t)
	ensureVoters(t, module, "voter")
	poll := createPoll(t, module, true, "A", "B")
	issueToken(t, module, "voter", poll.id)
	issueToken(t, module, "voter", poll.id)

	deleted, err := module.Sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, deleted)

	clock.Advance(2 * time.Hour)
	deleted, err = module.Sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, deleted)
}

func TestExpiredRightToVoteIsNotEligible(t *testing.T) {
	module, clock := newTestModule(t)
	ensureVoters(t, module, "voter")
	poll := createPoll(t, module, true, "A", "B")

	clock.Advance(366 * 24 * time.Hour)
	_, err := module.Handler.IssueVoterTokenHandler(context.Background(), "voter", poll.id)
	require.ErrorIs(t, err, domainerrors.ErrNotEligible)

	ensured, err := module.Handler.EnsureRightToVoteHandler(context.Background(), "voter")
	require.NoError(t, err)
	require.False(t, ensured.Created)
	issueToken(t, module, "voter", poll.id)
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}

func TestCreatePollValidatesProposals(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()

	_, err := module.Handler.CreatePollHandler(ctx, httptransport.CreatePollRequest{Title: " "})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = module.Handler.CreatePollHandler(ctx, httptransport.CreatePollRequest{
		Title:     "roads",
		Proposals: []string{"repair", "repair"},
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	single, err := module.Handler.CreatePollHandler(ctx, httptransport.CreatePollRequest{
		Title:     "roads",
		Proposals: []string{"repair"},
	})
	require.NoError(t, err)
	require.Equal(t, "ELABORATION", single.Status)

	_, err = module.Handler.StartVotingHandler(ctx, single.PollID)
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollStatus)
}

func TestEffectiveProxyRequiresVotingStarted(t *testing.T) {
	module, _ := newTestModule(t)
	ensureVoters(t, module, "voter")
	poll := createPoll(t, module, false, "A", "B")
	token := issueToken(t, module, "voter", poll.id)

	_, err := module.Handler.EffectiveProxyHandler(context.Background(), poll.id, "voter", token)
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollStatus)
}

func delegatedVoteFixture(t *testing.T) (liquiddemocracy.Module, votingPoll) {
	t.Helper()
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "voter", "proxy")
	_, err := module.Handler.BecomePublicProxyHandler(ctx, "proxy")
	require.NoError(t, err)
	_, err = module.Handler.DelegateHandler(ctx, "voter", httptransport.DelegateRequest{ProxyID: "proxy"})
	require.NoError(t, err)
	poll := createPoll(t, module, true, "A", "B")
	require.Equal(t, 2, castVote(t, module, "proxy", poll, "A", "B").VoteCount)
	return module, poll
}

func TestEffectiveProxyDetectsPublicProxyUnderAnotherIdentity(t *testing.T) {
	module, poll := delegatedVoteFixture(t)
	ctx := context.Background()
	hasher := services.NewHasher("dev-right-to-vote-secret", "dev-voter-token-secret")

	proxyRight, found, err := module.Store.GetRightToVote(ctx, hasher.RightToVoteID("proxy"))
	require.NoError(t, err)
	require.True(t, found)
	proxyRight.PublicProxyID = "someone-else"
	require.NoError(t, module.Store.SaveRightToVote(ctx, proxyRight))

	token := issueToken(t, module, "voter", poll.id)
	_, err = module.Handler.EffectiveProxyHandler(ctx, poll.id, "voter", token)
	require.ErrorIs(t, err, domainerrors.ErrDataInconsistency)
}

func TestEffectiveProxyDetectsEdgeWithoutDelegation(t *testing.T) {
	module, poll := delegatedVoteFixture(t)
	ctx := context.Background()

	removed, err := module.Store.DeleteDelegationFrom(ctx, "voter")
	require.NoError(t, err)
	require.True(t, removed)

	token := issueToken(t, module, "voter", poll.id)
	_, err = module.Handler.EffectiveProxyHandler(ctx, poll.id, "voter", token)
	require.ErrorIs(t, err, domainerrors.ErrDataInconsistency)
}

func TestEffectiveProxyIsVoterAfterDelegationRemoved(t *testing.T) {
	module, poll := delegatedVoteFixture(t)
	ctx := context.Background()
	require.NoError(t, module.Handler.RemoveDelegationHandler(ctx, "voter"))

	token := issueToken(t, module, "voter", poll.id)
	effective, err := module.Handler.EffectiveProxyHandler(ctx, poll.id, "voter", token)
	require.NoError(t, err)
	require.True(t, effective.Voted)
	require.Equal(t, "voter", effective.EffectiveUserID)
	require.Equal(t, 1, effective.Level)
}

func TestRepeatedDelegationToAcceptedProxyKeepsItActive(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()
	ensureVoters(t, module, "voter", "proxy")

	requested, err := module.Handler.DelegateHandler(ctx, "voter", httptransport.DelegateRequest{ProxyID: "proxy"})
	require.NoError(t, err)
	require.True(t, requested.Pending)
	accepted, err := module.Handler.AcceptDelegationRequestsHandler(ctx, "proxy", httptransport.AcceptDelegationRequestsRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, accepted.AcceptedCount)

	again, err := module.Handler.DelegateHandler(ctx, "voter", httptransport.DelegateRequest{ProxyID: "proxy"})
	require.NoError(t, err)
	require.False(t, again.Pending)
	require.Equal(t, requested.DelegationID, again.DelegationID)

	pending, err := module.Handler.ListDelegationRequestsHandler(ctx, "proxy")
	require.NoError(t, err)
	require.Empty(t, pending.Requests)

	poll := createPoll(t, module, true, "A", "B")
	require.Equal(t, 2, castVote(t, module, "proxy", poll, "A", "B").VoteCount)
}
