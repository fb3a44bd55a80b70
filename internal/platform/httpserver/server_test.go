package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	liquiddemocracy "liquido/contexts/governance/liquid-democracy"
	liquidhttp "liquido/contexts/governance/liquid-democracy/transport/http"

	"github.com/jonboulle/clockwork"
)

func newTestServer() *Server {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(liquiddemocracy.NewInMemoryModule(clock, nil), nil, ":0")
}

func doRequest(t *testing.T, server *Server, method string, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rr.Body.String())
	}
	return out
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d body=%s", status, rr.Code, rr.Body.String())
	}
}

func expectErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rr, status)
	resp := decode[liquidhttp.ErrorResponse](t, rr)
	if resp.Code != code {
		t.Fatalf("expected code %q, got %q", code, resp.Code)
	}
}

func asUser(userID string) map[string]string {
	return map[string]string{"X-User-Id": userID}
}

func TestRightToVoteRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodPost, "/api/liquid/v1/rights-to-vote", "", nil)
	expectErrorCode(t, rr, http.StatusUnauthorized, "missing_user")
}

func TestRightToVoteCreatedOnce(t *testing.T) {
	server := newTestServer()
	first := doRequest(t, server, http.MethodPost, "/api/liquid/v1/rights-to-vote", "", asUser("alice"))
	expectStatus(t, first, http.StatusCreated)
	second := doRequest(t, server, http.MethodPost, "/api/liquid/v1/rights-to-vote", "", asUser("alice"))
	expectStatus(t, second, http.StatusOK)
}

func TestDelegationErrorsMapToStableCodes(t *testing.T) {
	server := newTestServer()
	for _, user := range []string{"alice", "bob"} {
		expectStatus(t, doRequest(t, server, http.MethodPost, "/api/liquid/v1/rights-to-vote", "", asUser(user)), http.StatusCreated)
	}

	rr := doRequest(t, server, http.MethodPut, "/api/liquid/v1/delegation", `{"proxy_id":"alice"}`, asUser("alice"))
	expectErrorCode(t, rr, http.StatusBadRequest, "self_delegation")

	rr = doRequest(t, server, http.MethodPut, "/api/liquid/v1/delegation", `{"proxy_id":"carol"}`, asUser("alice"))
	expectErrorCode(t, rr, http.StatusForbidden, "not_eligible")

	expectStatus(t, doRequest(t, server, http.MethodPost, "/api/liquid/v1/public-proxy", "", asUser("bob")), http.StatusOK)
	expectStatus(t, doRequest(t, server, http.MethodPut, "/api/liquid/v1/delegation", `{"proxy_id":"bob"}`, asUser("alice")), http.StatusOK)

	expectStatus(t, doRequest(t, server, http.MethodPost, "/api/liquid/v1/public-proxy", "", asUser("alice")), http.StatusOK)
	rr = doRequest(t, server, http.MethodPut, "/api/liquid/v1/delegation", `{"proxy_id":"alice"}`, asUser("bob"))
	expectErrorCode(t, rr, http.StatusConflict, "circular_delegation")

	rr = doRequest(t, server, http.MethodPut, "/api/liquid/v1/delegation", `{"proxy":"alice"}`, asUser("bob"))
	expectErrorCode(t, rr, http.StatusBadRequest, "invalid_json")
}

func TestDelegationLifecycle(t *testing.T) {
	server := newTestServer()
	for _, user := range []string{"alice", "bob"} {
		expectStatus(t, doRequest(t, server, http.MethodPost, "/api/liquid/v1/rights-to-vote", "", asUser(user)), http.StatusCreated)
	}

	rr := doRequest(t, server, http.MethodPut, "/api/liquid/v1/delegation", `{"proxy_id":"bob"}`, asUser("alice"))
	expectStatus(t, rr, http.StatusAccepted)
	if !decode[liquidhttp.DelegationDTO](t, rr).Pending {
		t.Fatal("expected pending delegation request")
	}

	rr = doRequest(t, server, http.MethodGet, "/api/liquid/v1/delegation-requests", "", asUser("bob"))
	expectStatus(t, rr, http.StatusOK)
	if got := len(decode[liquidhttp.ListDelegationRequestsResponse](t, rr).Requests); got != 1 {
		t.Fatalf("expected 1 request, got %d", got)
	}

	rr = doRequest(t, server, http.MethodPost, "/api/liquid/v1/delegation-requests/accept", "", asUser("bob"))
	expectStatus(t, rr, http.StatusOK)
	if got := decode[liquidhttp.AcceptDelegationRequestsResponse](t, rr).AcceptedCount; got != 1 {
		t.Fatalf("expected 1 accepted request, got %d", got)
	}

	rr = doRequest(t, server, http.MethodGet, "/api/liquid/v1/delegation", "", asUser("alice"))
	expectStatus(t, rr, http.StatusOK)
	if delegation := decode[liquidhttp.DelegationDTO](t, rr); delegation.Pending || delegation.ToProxyID != "bob" {
		t.Fatalf("unexpected delegation %+v", delegation)
	}

	expectStatus(t, doRequest(t, server, http.MethodDelete, "/api/liquid/v1/delegation", "", asUser("alice")), http.StatusNoContent)
	rr = doRequest(t, server, http.MethodGet, "/api/liquid/v1/delegation", "", asUser("alice"))
	expectErrorCode(t, rr, http.StatusNotFound, "delegation_not_found")
}

func TestVotingFlowOverHTTP(t *testing.T) {
	server := newTestServer()
	for _, user := range []string{"alice", "bob"} {
		expectStatus(t, doRequest(t, server, http.MethodPost, "/api/liquid/v1/rights-to-vote", "", asUser(user)), http.StatusCreated)
	}
	expectStatus(t, doRequest(t, server, http.MethodPost, "/api/liquid/v1/public-proxy", "", asUser("bob")), http.StatusOK)
	expectStatus(t, doRequest(t, server, http.MethodPut, "/api/liquid/v1/delegation", `{"proxy_id":"bob"}`, asUser("alice")), http.StatusOK)

	rr := doRequest(t, server, http.MethodPost, "/api/liquid/v1/polls", `{"title":"park","proposals":["trees","benches"]}`, nil)
	expectStatus(t, rr, http.StatusCreated)
	poll := decode[liquidhttp.PollResponse](t, rr)
	pollPath := "/api/liquid/v1/polls/" + poll.PollID
	ids := map[string]string{}
	for _, proposal := range poll.Proposals {
		ids[proposal.Title] = proposal.ProposalID
	}

	rr = doRequest(t, server, http.MethodPost, pollPath+"/voter-token", "", asUser("bob"))
	expectStatus(t, rr, http.StatusOK)
	bobToken := decode[liquidhttp.IssueVoterTokenResponse](t, rr).VoterToken

	castBody, _ := json.Marshal(liquidhttp.CastVoteRequest{VoterToken: bobToken, VoteOrder: []string{ids["benches"], ids["trees"]}})
	rr = doRequest(t, server, http.MethodPost, pollPath+"/ballots", string(castBody), nil)
	expectErrorCode(t, rr, http.StatusConflict, "cannot_cast_vote")

	expectStatus(t, doRequest(t, server, http.MethodPost, pollPath+"/start", "", nil), http.StatusOK)

	rr = doRequest(t, server, http.MethodPost, pollPath+"/ballots", string(castBody), nil)
	expectStatus(t, rr, http.StatusCreated)
	cast := decode[liquidhttp.CastVoteResponse](t, rr)
	if cast.VoteCount != 2 {
		t.Fatalf("expected vote count 2, got %d", cast.VoteCount)
	}

	rr = doRequest(t, server, http.MethodPost, pollPath+"/ballots", string(castBody), nil)
	expectErrorCode(t, rr, http.StatusUnauthorized, "invalid_token")

	rr = doRequest(t, server, http.MethodGet, pollPath+"/ballots/"+cast.Ballot.Checksum, "", nil)
	expectStatus(t, rr, http.StatusOK)
	if !decode[liquidhttp.BallotLookupResponse](t, rr).Found {
		t.Fatal("expected ballot found by checksum")
	}
	rr = doRequest(t, server, http.MethodGet, pollPath+"/ballots/unknown", "", nil)
	expectStatus(t, rr, http.StatusNotFound)

	rr = doRequest(t, server, http.MethodPost, pollPath+"/voter-token", "", asUser("alice"))
	expectStatus(t, rr, http.StatusOK)
	aliceToken := decode[liquidhttp.IssueVoterTokenResponse](t, rr).VoterToken

	rr = doRequest(t, server, http.MethodGet, pollPath+"/ballot", "", map[string]string{"X-Voter-Token": aliceToken})
	expectStatus(t, rr, http.StatusOK)
	lookup := decode[liquidhttp.BallotLookupResponse](t, rr)
	if !lookup.Found || lookup.Ballot.Level != 1 {
		t.Fatalf("expected proxy ballot at level 1, got %+v", lookup)
	}

	rr = doRequest(t, server, http.MethodGet, pollPath+"/effective-proxy", "", map[string]string{
		"X-User-Id":     "alice",
		"X-Voter-Token": aliceToken,
	})
	expectStatus(t, rr, http.StatusOK)
	if proxy := decode[liquidhttp.EffectiveProxyResponse](t, rr); !proxy.Voted || proxy.EffectiveUserID != "bob" {
		t.Fatalf("unexpected effective proxy %+v", proxy)
	}

	rr = doRequest(t, server, http.MethodGet, pollPath+"/result", "", nil)
	expectErrorCode(t, rr, http.StatusConflict, "invalid_poll_status")

	expectStatus(t, doRequest(t, server, http.MethodPost, pollPath+"/finish", "", nil), http.StatusOK)
	rr = doRequest(t, server, http.MethodGet, pollPath+"/result", "", nil)
	expectStatus(t, rr, http.StatusOK)
	result := decode[liquidhttp.PollResultResponse](t, rr)
	if !result.Unique || result.WinnerProposalID != ids["benches"] || result.BallotCount != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestUnknownPollReturnsNotFound(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodPost, "/api/liquid/v1/polls/missing/start", "", nil)
	expectErrorCode(t, rr, http.StatusNotFound, "poll_not_found")
}

func TestBallotLookupRequiresVoterToken(t *testing.T) {
	server := newTestServer()
	rr := doRequest(t, server, http.MethodGet, "/api/liquid/v1/polls/any/ballot", "", nil)
	expectErrorCode(t, rr, http.StatusBadRequest, "missing_voter_token")
}
