package queries

import (
	"context"
	"strings"

	"liquido/contexts/governance/liquid-democracy/domain/entities"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/ports"
)

type DelegationQueries struct {
	Repository ports.Repository
}

// GetDelegation returns the outgoing delegation of userID, active or pending.
func (q DelegationQueries) GetDelegation(ctx context.Context, userID string) (entities.Delegation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.Delegation{}, domainerrors.ErrInvalidInput
	}
	delegation, found, err := q.Repository.GetDelegationFrom(ctx, userID)
	if err != nil {
		return entities.Delegation{}, err
	}
	if !found {
		return entities.Delegation{}, domainerrors.ErrDelegationNotFound
	}
	return delegation, nil
}

// ListDelegationRequests returns pending requests waiting for proxyID.
func (q DelegationQueries) ListDelegationRequests(ctx context.Context, proxyID string) ([]entities.Delegation, error) {
	proxyID = strings.TrimSpace(proxyID)
	if proxyID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return q.Repository.ListDelegationRequests(ctx, proxyID)
}
