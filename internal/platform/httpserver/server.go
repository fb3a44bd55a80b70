package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	liquiddemocracy "liquido/contexts/governance/liquid-democracy"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	liquidhttp "liquido/contexts/governance/liquid-democracy/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "liquido/internal/platform/httpserver/docs"
)

const (
	userHeader       = "X-User-Id"
	voterTokenHeader = "X-Voter-Token"
	maxBodyBytes     = 1 << 20
)

type Server struct {
	mux    *http.ServeMux
	http   *http.Server
	logger *slog.Logger
	addr   string
	liquid liquiddemocracy.Module
}

func New(liquid liquiddemocracy.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		liquid: liquid,
	}
	s.registerRoutes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/liquid/v1/rights-to-vote", s.handleEnsureRightToVote)

	s.mux.HandleFunc("GET /api/liquid/v1/delegation", s.handleGetDelegation)
	s.mux.HandleFunc("PUT /api/liquid/v1/delegation", s.handleDelegate)
	s.mux.HandleFunc("DELETE /api/liquid/v1/delegation", s.handleRemoveDelegation)
	s.mux.HandleFunc("GET /api/liquid/v1/delegation-requests", s.handleListDelegationRequests)
	s.mux.HandleFunc("POST /api/liquid/v1/delegation-requests/accept", s.handleAcceptDelegationRequests)
	s.mux.HandleFunc("POST /api/liquid/v1/public-proxy", s.handleBecomePublicProxy)

	s.mux.HandleFunc("POST /api/liquid/v1/polls", s.handleCreatePoll)
	s.mux.HandleFunc("POST /api/liquid/v1/polls/{poll_id}/start", s.handleStartVoting)
	s.mux.HandleFunc("POST /api/liquid/v1/polls/{poll_id}/finish", s.handleFinishVoting)
	s.mux.HandleFunc("GET /api/liquid/v1/polls/{poll_id}/result", s.handlePollResult)

	s.mux.HandleFunc("POST /api/liquid/v1/polls/{poll_id}/voter-token", s.handleIssueVoterToken)
	s.mux.HandleFunc("POST /api/liquid/v1/polls/{poll_id}/ballots", s.handleCastVote)
	s.mux.HandleFunc("GET /api/liquid/v1/polls/{poll_id}/ballot", s.handleBallotForToken)
	s.mux.HandleFunc("GET /api/liquid/v1/polls/{poll_id}/ballots/{checksum}", s.handleBallotForChecksum)
	s.mux.HandleFunc("GET /api/liquid/v1/polls/{poll_id}/effective-proxy", s.handleEffectiveProxy)
}

func (s *Server) handleEnsureRightToVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.liquid.Handler.EnsureRightToVoteHandler(r.Context(), userID)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleGetDelegation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.liquid.Handler.GetDelegationHandler(r.Context(), userID)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req liquidhttp.DelegateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.liquid.Handler.DelegateHandler(r.Context(), userID, req)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Pending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleRemoveDelegation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := s.liquid.Handler.RemoveDelegationHandler(r.Context(), userID); err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDelegationRequests(w http.ResponseWriter, r *http.Request) {
	proxyID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.liquid.Handler.ListDelegationRequestsHandler(r.Context(), proxyID)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAcceptDelegationRequests(w http.ResponseWriter, r *http.Request) {
	proxyID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req liquidhttp.AcceptDelegationRequestsRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	resp, err := s.liquid.Handler.AcceptDelegationRequestsHandler(r.Context(), proxyID, req)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBecomePublicProxy(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.liquid.Handler.BecomePublicProxyHandler(r.Context(), userID)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req liquidhttp.CreatePollRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.liquid.Handler.CreatePollHandler(r.Context(), req)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.liquid.Handler.StartVotingHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinishVoting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.liquid.Handler.FinishVotingHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePollResult(w http.ResponseWriter, r *http.Request) {
	resp, err := s.liquid.Handler.PollResultHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIssueVoterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.liquid.Handler.IssueVoterTokenHandler(r.Context(), userID, r.PathValue("poll_id"))
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req liquidhttp.CastVoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.VoterToken) == "" {
		req.VoterToken = strings.TrimSpace(r.Header.Get(voterTokenHeader))
	}
	resp, err := s.liquid.Handler.CastVoteHandler(r.Context(), r.PathValue("poll_id"), req)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleBallotForToken(w http.ResponseWriter, r *http.Request) {
	token, ok := requireVoterToken(w, r)
	if !ok {
		return
	}
	resp, err := s.liquid.Handler.BallotForTokenHandler(r.Context(), r.PathValue("poll_id"), token)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBallotForChecksum(w http.ResponseWriter, r *http.Request) {
	resp, err := s.liquid.Handler.BallotForChecksumHandler(r.Context(), r.PathValue("poll_id"), r.PathValue("checksum"))
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	if !resp.Found {
		writeJSON(w, http.StatusNotFound, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEffectiveProxy(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	token, ok := requireVoterToken(w, r)
	if !ok {
		return
	}
	resp, err := s.liquid.Handler.EffectiveProxyHandler(r.Context(), r.PathValue("poll_id"), userID, token)
	if err != nil {
		s.writeLiquidDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(userHeader))
	if userID == "" {
		writeLiquidError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func requireVoterToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := strings.TrimSpace(r.Header.Get(voterTokenHeader))
	if token == "" {
		writeLiquidError(w, http.StatusBadRequest, "missing_voter_token", "X-Voter-Token header is required")
		return "", false
	}
	return token, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeLiquidError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

// decodeOptionalBody accepts an empty body.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		writeLiquidError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func (s *Server) writeLiquidDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrDataInconsistency):
		s.logger.Error("liquid data inconsistency",
			"event", "http_liquid_data_inconsistency",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeLiquidError(w, http.StatusInternalServerError, "data_inconsistency", "internal data inconsistency")
	case errors.Is(err, domainerrors.ErrCannotCastVote):
		writeLiquidError(w, http.StatusConflict, "cannot_cast_vote", err.Error())
	case errors.Is(err, domainerrors.ErrNotEligible):
		writeLiquidError(w, http.StatusForbidden, "not_eligible", err.Error())
	case errors.Is(err, domainerrors.ErrSelfDelegation):
		writeLiquidError(w, http.StatusBadRequest, "self_delegation", err.Error())
	case errors.Is(err, domainerrors.ErrCircularDelegation):
		writeLiquidError(w, http.StatusConflict, "circular_delegation", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidToken):
		writeLiquidError(w, http.StatusUnauthorized, "invalid_token", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidPollStatus):
		writeLiquidError(w, http.StatusConflict, "invalid_poll_status", err.Error())
	case errors.Is(err, domainerrors.ErrPollNotFound),
		errors.Is(err, domainerrors.ErrProposalNotFound):
		writeLiquidError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrDelegationNotFound):
		writeLiquidError(w, http.StatusNotFound, "delegation_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidInput):
		writeLiquidError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domainerrors.ErrConflict):
		writeLiquidError(w, http.StatusConflict, "conflict", err.Error())
	default:
		s.logger.Error("liquid request failed",
			"event", "http_liquid_internal_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeLiquidError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLiquidError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, liquidhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
