package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "liquido/contexts/governance/liquid-democracy/application"
	"liquido/contexts/governance/liquid-democracy/domain/entities"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/ports"
)

type DelegateCommand struct {
	UserID  string
	ProxyID string
}

type DelegateResult struct {
	Delegation entities.Delegation
	// Pending is true when the proxy must accept before the delegation counts.
	Pending bool
}

type AcceptDelegationRequestsCommand struct {
	ProxyID string
	// DelegationIDs selects the requests to accept. Empty accepts all.
	DelegationIDs []string
}

type AcceptDelegationRequestsResult struct {
	Accepted []entities.Delegation
}

type BecomePublicProxyResult struct {
	Accepted []entities.Delegation
	// StillPending lists requests that would close a proxy cycle.
	StillPending []entities.Delegation
}

// DelegationUseCase maintains the proxy graph: one outgoing edge per voter,
// no cycles among active edges, and request/accept for non-public proxies.
type DelegationUseCase struct {
	Transactor    ports.Transactor
	RightsToVote  application.RightToVoteStore
	Notifier      ports.Notifier
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	MaxChainDepth int
	Logger        *slog.Logger
}

// DelegateTo assigns proxyID as the proxy of userID. Public proxies take
// effect at once; other proxies receive a pending request.
func (uc DelegationUseCase) DelegateTo(ctx context.Context, cmd DelegateCommand) (DelegateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID := strings.TrimSpace(cmd.UserID)
	proxyID := strings.TrimSpace(cmd.ProxyID)
	logger.Info("delegate to proxy started",
		"event", "liquid_delegate_started",
		"module", application.ModuleName,
		"layer", "application",
		"user_id", userID,
		"proxy_id", proxyID,
	)
	if userID == "" || proxyID == "" {
		return DelegateResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	var result DelegateResult
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		voter, found, err := uc.RightsToVote.FindByOwner(ctx, repo, userID, now)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: voter", domainerrors.ErrNotEligible)
		}
		proxy, found, err := uc.RightsToVote.FindByOwner(ctx, repo, proxyID, now)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: proxy", domainerrors.ErrNotEligible)
		}
		if userID == proxyID {
			return domainerrors.ErrSelfDelegation
		}
		if err := uc.checkCycle(ctx, repo, voter, proxy); err != nil {
			return err
		}

		delegation, found, err := repo.GetDelegationFrom(ctx, userID)
		if err != nil {
			return err
		}
		if found && delegation.ToProxyID == proxyID && !delegation.IsPending() {
			result = DelegateResult{Delegation: delegation}
			return nil
		}
		if !found {
			delegationID, err := uc.IDGen.NewID(ctx)
			if err != nil {
				return err
			}
			delegation = entities.Delegation{
				DelegationID: delegationID,
				FromUserID:   userID,
				CreatedAt:    now,
			}
		}
		delegation.ToProxyID = proxyID
		delegation.UpdatedAt = now

		if proxy.IsPublicProxy() {
			delegation.RequestedDelegationFrom = ""
			delegation.RequestedAt = nil
			if _, err := uc.RightsToVote.SetDelegation(ctx, repo, voter, proxy, now); err != nil {
				return err
			}
		} else {
			requestedAt := now
			delegation.RequestedDelegationFrom = voter.RightToVoteID
			delegation.RequestedAt = &requestedAt
			// The edge to a previous proxy must not outlive the Delegation
			// record that explains it.
			if _, err := uc.RightsToVote.ClearDelegation(ctx, repo, voter, now); err != nil {
				return err
			}
		}
		if err := repo.SaveDelegation(ctx, delegation); err != nil {
			return err
		}
		result = DelegateResult{Delegation: delegation, Pending: delegation.IsPending()}
		return nil
	})
	if err != nil {
		uc.logFailure(logger, "liquid_delegate_failed", err, "user_id", userID, "proxy_id", proxyID)
		return DelegateResult{}, err
	}

	if result.Pending {
		uc.notifyRequested(ctx, logger, result.Delegation, now)
	}
	logger.Info("delegate to proxy completed",
		"event", "liquid_delegate_completed",
		"module", application.ModuleName,
		"layer", "application",
		"delegation_id", result.Delegation.DelegationID,
		"user_id", userID,
		"proxy_id", proxyID,
		"pending", result.Pending,
	)
	return result, nil
}

// RemoveDelegation clears the voter's own edge and deletes their Delegation.
// It is a no-op when the voter has none.
func (uc DelegationUseCase) RemoveDelegation(ctx context.Context, userID string) error {
	logger := application.ResolveLogger(uc.Logger)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domainerrors.ErrInvalidInput
	}

	now := uc.now()
	removed := false
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		voter, found, err := uc.RightsToVote.FindByOwner(ctx, repo, userID, now)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrNotEligible
		}
		if _, err := uc.RightsToVote.ClearDelegation(ctx, repo, voter, now); err != nil {
			return err
		}
		removed, err = repo.DeleteDelegationFrom(ctx, userID)
		return err
	})
	if err != nil {
		uc.logFailure(logger, "liquid_remove_delegation_failed", err, "user_id", userID)
		return err
	}
	logger.Info("delegation removed",
		"event", "liquid_remove_delegation_completed",
		"module", application.ModuleName,
		"layer", "application",
		"user_id", userID,
		"removed", removed,
	)
	return nil
}

// AcceptDelegationRequests activates pending requests addressed to the proxy.
// Either all selected requests are activated or none.
func (uc DelegationUseCase) AcceptDelegationRequests(
	ctx context.Context,
	cmd AcceptDelegationRequestsCommand,
) (AcceptDelegationRequestsResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	proxyID := strings.TrimSpace(cmd.ProxyID)
	if proxyID == "" {
		return AcceptDelegationRequestsResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	var result AcceptDelegationRequestsResult
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		proxy, found, err := uc.RightsToVote.FindByOwner(ctx, repo, proxyID, now)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrNotEligible
		}
		requests, err := repo.ListDelegationRequests(ctx, proxyID)
		if err != nil {
			return err
		}
		selected, err := selectRequests(requests, cmd.DelegationIDs)
		if err != nil {
			return err
		}
		accepted, _, err := uc.acceptRequests(ctx, repo, proxy, selected, false, now)
		if err != nil {
			return err
		}
		result.Accepted = accepted
		return nil
	})
	if err != nil {
		uc.logFailure(logger, "liquid_accept_delegations_failed", err, "proxy_id", proxyID)
		return AcceptDelegationRequestsResult{}, err
	}
	logger.Info("delegation requests accepted",
		"event", "liquid_accept_delegations_completed",
		"module", application.ModuleName,
		"layer", "application",
		"proxy_id", proxyID,
		"accepted_count", len(result.Accepted),
	)
	return result, nil
}

// BecomePublicProxy lets userID accept future delegations automatically and
// accepts every request already waiting for them.
func (uc DelegationUseCase) BecomePublicProxy(ctx context.Context, userID string) (BecomePublicProxyResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return BecomePublicProxyResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	var result BecomePublicProxyResult
	err := uc.Transactor.Atomically(ctx, func(ctx context.Context, repo ports.Repository) error {
		proxy, found, err := uc.RightsToVote.FindByOwner(ctx, repo, userID, now)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrNotEligible
		}
		proxy.PublicProxyID = userID
		proxy.UpdatedAt = now
		if err := repo.SaveRightToVote(ctx, proxy); err != nil {
			return err
		}
		requests, err := repo.ListDelegationRequests(ctx, userID)
		if err != nil {
			return err
		}
		result.Accepted, result.StillPending, err = uc.acceptRequests(ctx, repo, proxy, requests, true, now)
		return err
	})
	if err != nil {
		uc.logFailure(logger, "liquid_become_public_proxy_failed", err, "user_id", userID)
		return BecomePublicProxyResult{}, err
	}
	logger.Info("public proxy enabled",
		"event", "liquid_become_public_proxy_completed",
		"module", application.ModuleName,
		"layer", "application",
		"user_id", userID,
		"accepted_count", len(result.Accepted),
		"pending_count", len(result.StillPending),
	)
	return result, nil
}

// acceptRequests activates each request in order. With skipCircular, a
// request that would close a cycle stays pending; otherwise it aborts.
func (uc DelegationUseCase) acceptRequests(
	ctx context.Context,
	repo ports.Repository,
	proxy entities.RightToVote,
	requests []entities.Delegation,
	skipCircular bool,
	now time.Time,
) ([]entities.Delegation, []entities.Delegation, error) {
	accepted := make([]entities.Delegation, 0, len(requests))
	skipped := make([]entities.Delegation, 0)
	for _, request := range requests {
		voter, found, err := repo.GetRightToVote(ctx, request.RequestedDelegationFrom)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			return nil, nil, fmt.Errorf("%w: delegation request %s has no right to vote", domainerrors.ErrDataInconsistency, request.DelegationID)
		}
		if err := uc.checkCycle(ctx, repo, voter, proxy); err != nil {
			if skipCircular && isCircular(err) {
				skipped = append(skipped, request)
				continue
			}
			return nil, nil, err
		}
		if _, err := uc.RightsToVote.SetDelegation(ctx, repo, voter, proxy, now); err != nil {
			return nil, nil, err
		}
		request.RequestedDelegationFrom = ""
		request.RequestedAt = nil
		request.UpdatedAt = now
		if err := repo.SaveDelegation(ctx, request); err != nil {
			return nil, nil, err
		}
		accepted = append(accepted, request)
	}
	return accepted, skipped, nil
}

// checkCycle follows active edges upward from proxy. Reaching voter means the
// new edge voter->proxy would close a cycle.
func (uc DelegationUseCase) checkCycle(
	ctx context.Context,
	repo ports.Repository,
	voter entities.RightToVote,
	proxy entities.RightToVote,
) error {
	maxDepth := uc.MaxChainDepth
	if maxDepth <= 0 {
		maxDepth = application.DefaultMaxChainDepth
	}
	current := proxy
	for depth := 0; ; depth++ {
		if current.RightToVoteID == voter.RightToVoteID {
			return domainerrors.ErrCircularDelegation
		}
		if !current.IsDelegated() {
			return nil
		}
		if depth >= maxDepth {
			return fmt.Errorf("%w: delegation chain exceeds %d hops", domainerrors.ErrDataInconsistency, maxDepth)
		}
		next, found, err := repo.GetRightToVote(ctx, current.DelegatedTo)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: dangling delegation edge", domainerrors.ErrDataInconsistency)
		}
		current = next
	}
}

func (uc DelegationUseCase) notifyRequested(ctx context.Context, logger *slog.Logger, delegation entities.Delegation, now time.Time) {
	if uc.Notifier == nil {
		return
	}
	err := uc.Notifier.DelegationRequested(ctx, ports.DelegationRequestedNotification{
		DelegationID: delegation.DelegationID,
		FromUserID:   delegation.FromUserID,
		ToProxyID:    delegation.ToProxyID,
		RequestedAt:  now,
	})
	if err != nil {
		logger.Warn("delegation request notification failed",
			"event", "liquid_delegation_request_notify_failed",
			"module", application.ModuleName,
			"layer", "application",
			"delegation_id", delegation.DelegationID,
			"error", err.Error(),
		)
	}
}

func (uc DelegationUseCase) logFailure(logger *slog.Logger, event string, err error, attrs ...any) {
	logFailure(logger, event, err, attrs...)
}

func (uc DelegationUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func selectRequests(requests []entities.Delegation, ids []string) ([]entities.Delegation, error) {
	if len(ids) == 0 {
		return requests, nil
	}
	byID := make(map[string]entities.Delegation, len(requests))
	for _, request := range requests {
		byID[request.DelegationID] = request
	}
	selected := make([]entities.Delegation, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		seen[id] = true
		request, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domainerrors.ErrDelegationNotFound, id)
		}
		selected = append(selected, request)
	}
	return selected, nil
}
