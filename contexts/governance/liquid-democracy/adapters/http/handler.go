package httpadapter

import (
	"context"
	"log/slog"

	application "liquido/contexts/governance/liquid-democracy/application"
	"liquido/contexts/governance/liquid-democracy/application/commands"
	"liquido/contexts/governance/liquid-democracy/application/queries"
	"liquido/contexts/governance/liquid-democracy/domain/entities"
	"liquido/contexts/governance/liquid-democracy/ports"
	httptransport "liquido/contexts/governance/liquid-democracy/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	RightsToVote   commands.RightToVoteUseCase
	Delegations    commands.DelegationUseCase
	VoterTokens    commands.VoterTokenUseCase
	CastVote       commands.CastVoteUseCase
	PollPhases     commands.PollPhaseUseCase
	Ballots        queries.BallotQueries
	EffectiveProxy queries.EffectiveProxyResolver
	PollResults    queries.PollResultQuery
	DelegationView queries.DelegationQueries
	Logger         *slog.Logger
}

func (h Handler) EnsureRightToVoteHandler(ctx context.Context, userID string) (httptransport.EnsureRightToVoteResponse, error) {
	result, err := h.RightsToVote.Ensure(ctx, userID)
	if err != nil {
		return httptransport.EnsureRightToVoteResponse{}, err
	}
	return httptransport.EnsureRightToVoteResponse{
		UserID:      userID,
		ExpiresAt:   result.ExpiresAt,
		Created:     result.Created,
		PublicProxy: result.PublicProxy,
	}, nil
}

func (h Handler) DelegateHandler(
	ctx context.Context,
	userID string,
	request httptransport.DelegateRequest,
) (httptransport.DelegationDTO, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Debug("http delegate received",
		"event", "liquid_http_delegate_received",
		"module", application.ModuleName,
		"layer", "transport",
		"user_id", userID,
		"proxy_id", request.ProxyID,
	)
	result, err := h.Delegations.DelegateTo(ctx, commands.DelegateCommand{
		UserID:  userID,
		ProxyID: request.ProxyID,
	})
	if err != nil {
		return httptransport.DelegationDTO{}, err
	}
	return toDelegationDTO(result.Delegation), nil
}

func (h Handler) RemoveDelegationHandler(ctx context.Context, userID string) error {
	return h.Delegations.RemoveDelegation(ctx, userID)
}

func (h Handler) GetDelegationHandler(ctx context.Context, userID string) (httptransport.DelegationDTO, error) {
	delegation, err := h.DelegationView.GetDelegation(ctx, userID)
	if err != nil {
		return httptransport.DelegationDTO{}, err
	}
	return toDelegationDTO(delegation), nil
}

func (h Handler) ListDelegationRequestsHandler(ctx context.Context, proxyID string) (httptransport.ListDelegationRequestsResponse, error) {
	requests, err := h.DelegationView.ListDelegationRequests(ctx, proxyID)
	if err != nil {
		return httptransport.ListDelegationRequestsResponse{}, err
	}
	return httptransport.ListDelegationRequestsResponse{
		ProxyID:  proxyID,
		Requests: toDelegationDTOs(requests),
	}, nil
}

func (h Handler) AcceptDelegationRequestsHandler(
	ctx context.Context,
	proxyID string,
	request httptransport.AcceptDelegationRequestsRequest,
) (httptransport.AcceptDelegationRequestsResponse, error) {
	result, err := h.Delegations.AcceptDelegationRequests(ctx, commands.AcceptDelegationRequestsCommand{
		ProxyID:       proxyID,
		DelegationIDs: request.DelegationIDs,
	})
	if err != nil {
		return httptransport.AcceptDelegationRequestsResponse{}, err
	}
	return httptransport.AcceptDelegationRequestsResponse{
		AcceptedCount: len(result.Accepted),
		Accepted:      toDelegationDTOs(result.Accepted),
	}, nil
}

func (h Handler) BecomePublicProxyHandler(ctx context.Context, userID string) (httptransport.BecomePublicProxyResponse, error) {
	result, err := h.Delegations.BecomePublicProxy(ctx, userID)
	if err != nil {
		return httptransport.BecomePublicProxyResponse{}, err
	}
	return httptransport.BecomePublicProxyResponse{
		UserID:        userID,
		AcceptedCount: len(result.Accepted),
		StillPending:  toDelegationDTOs(result.StillPending),
	}, nil
}

func (h Handler) IssueVoterTokenHandler(ctx context.Context, userID string, pollID string) (httptransport.IssueVoterTokenResponse, error) {
	result, err := h.VoterTokens.Issue(ctx, commands.IssueVoterTokenCommand{
		UserID: userID,
		PollID: pollID,
	})
	if err != nil {
		return httptransport.IssueVoterTokenResponse{}, err
	}
	return httptransport.IssueVoterTokenResponse{
		PollID:     pollID,
		VoterToken: result.VoterToken,
		ExpiresAt:  result.ExpiresAt,
	}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	pollID string,
	request httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.CastVote.Execute(ctx, commands.CastVoteCommand{
		VoterToken: request.VoterToken,
		PollID:     pollID,
		VoteOrder:  request.VoteOrder,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		Ballot:    toBallotDTO(result.Ballot),
		VoteCount: result.VoteCount,
	}, nil
}

func (h Handler) BallotForTokenHandler(ctx context.Context, pollID string, voterToken string) (httptransport.BallotLookupResponse, error) {
	ballot, found, err := h.Ballots.BallotForToken(ctx, pollID, voterToken)
	if err != nil {
		return httptransport.BallotLookupResponse{}, err
	}
	return toBallotLookup(ballot, found), nil
}

func (h Handler) BallotForChecksumHandler(ctx context.Context, pollID string, checksum string) (httptransport.BallotLookupResponse, error) {
	ballot, found, err := h.Ballots.BallotForChecksum(ctx, pollID, checksum)
	if err != nil {
		return httptransport.BallotLookupResponse{}, err
	}
	return toBallotLookup(ballot, found), nil
}

func (h Handler) EffectiveProxyHandler(
	ctx context.Context,
	pollID string,
	userID string,
	voterToken string,
) (httptransport.EffectiveProxyResponse, error) {
	result, err := h.EffectiveProxy.FindEffectiveProxy(ctx, queries.EffectiveProxyQuery{
		PollID:     pollID,
		UserID:     userID,
		VoterToken: voterToken,
	})
	if err != nil {
		return httptransport.EffectiveProxyResponse{}, err
	}
	return httptransport.EffectiveProxyResponse{
		PollID:          pollID,
		Voted:           result.Voted,
		EffectiveUserID: result.UserID,
		Level:           result.Level,
	}, nil
}

func (h Handler) CreatePollHandler(ctx context.Context, request httptransport.CreatePollRequest) (httptransport.PollResponse, error) {
	proposals := make([]commands.CreateProposalInput, 0, len(request.Proposals))
	for _, title := range request.Proposals {
		proposals = append(proposals, commands.CreateProposalInput{Title: title})
	}
	poll, err := h.PollPhases.CreatePoll(ctx, commands.CreatePollCommand{
		Title:     request.Title,
		Proposals: proposals,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return toPollResponse(poll), nil
}

func (h Handler) StartVotingHandler(ctx context.Context, pollID string) (httptransport.PollResponse, error) {
	poll, err := h.PollPhases.StartVotingPhase(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return toPollResponse(poll), nil
}

func (h Handler) FinishVotingHandler(ctx context.Context, pollID string) (httptransport.FinishVotingResponse, error) {
	result, err := h.PollPhases.FinishVotingPhase(ctx, pollID)
	if err != nil {
		return httptransport.FinishVotingResponse{}, err
	}
	return httptransport.FinishVotingResponse{
		Poll:        toPollResponse(result.Poll),
		Winners:     nonNil(result.Result.Winners),
		Unique:      result.Result.Unique,
		BallotCount: result.Result.BallotCount,
	}, nil
}

func (h Handler) PollResultHandler(ctx context.Context, pollID string) (httptransport.PollResultResponse, error) {
	result, err := h.PollResults.Execute(ctx, pollID)
	if err != nil {
		return httptransport.PollResultResponse{}, err
	}
	return toPollResultResponse(result), nil
}

func toDelegationDTO(delegation entities.Delegation) httptransport.DelegationDTO {
	return httptransport.DelegationDTO{
		DelegationID: delegation.DelegationID,
		FromUserID:   delegation.FromUserID,
		ToProxyID:    delegation.ToProxyID,
		Pending:      delegation.IsPending(),
		RequestedAt:  delegation.RequestedAt,
		UpdatedAt:    delegation.UpdatedAt,
	}
}

func toDelegationDTOs(items []entities.Delegation) []httptransport.DelegationDTO {
	out := make([]httptransport.DelegationDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toDelegationDTO(item))
	}
	return out
}

func toBallotDTO(ballot entities.Ballot) httptransport.BallotDTO {
	return httptransport.BallotDTO{
		PollID:    ballot.PollID,
		VoteOrder: append([]string(nil), ballot.VoteOrder...),
		Level:     ballot.Level,
		Checksum:  ballot.Checksum,
		UpdatedAt: ballot.UpdatedAt,
	}
}

func toBallotLookup(ballot entities.Ballot, found bool) httptransport.BallotLookupResponse {
	if !found {
		return httptransport.BallotLookupResponse{}
	}
	dto := toBallotDTO(ballot)
	return httptransport.BallotLookupResponse{Found: true, Ballot: &dto}
}

func toPollResponse(poll entities.Poll) httptransport.PollResponse {
	proposals := make([]httptransport.ProposalDTO, 0, len(poll.Proposals))
	for _, proposal := range poll.Proposals {
		proposals = append(proposals, httptransport.ProposalDTO{
			ProposalID: proposal.ProposalID,
			Title:      proposal.Title,
			Status:     string(proposal.Status),
		})
	}
	return httptransport.PollResponse{
		PollID:           poll.PollID,
		Title:            poll.Title,
		Status:           string(poll.Status),
		Proposals:        proposals,
		WinnerProposalID: poll.WinnerProposalID,
		VotingStartedAt:  poll.VotingStartedAt,
		VotingEndedAt:    poll.VotingEndedAt,
	}
}

func toPollResultResponse(result ports.PollResult) httptransport.PollResultResponse {
	locked := make([]httptransport.DuelDTO, 0, len(result.Locked))
	for _, duel := range result.Locked {
		locked = append(locked, httptransport.DuelDTO{
			WinnerID: duel.WinnerID,
			LoserID:  duel.LoserID,
			Margin:   duel.Margin,
		})
	}
	return httptransport.PollResultResponse{
		PollID:           result.PollID,
		CandidateIDs:     nonNil(result.CandidateIDs),
		DuelMatrix:       result.Matrix,
		Locked:           locked,
		Winners:          nonNil(result.Winners),
		WinnerProposalID: result.WinnerProposalID,
		Unique:           result.Unique,
		BallotCount:      result.BallotCount,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
