package entities

import "time"

// Delegation is the identity-level link from a voter to their proxy. A voter
// owns at most one Delegation.
type Delegation struct {
	DelegationID string `json:"delegation_id"`
	FromUserID   string `json:"from_user_id"`
	ToProxyID    string `json:"to_proxy_id"`
	// RequestedDelegationFrom holds the voter's RightToVoteID while the proxy
	// has not accepted yet. Empty once the edge is active.
	RequestedDelegationFrom string     `json:"-"`
	RequestedAt             *time.Time `json:"requested_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

func (d Delegation) IsPending() bool {
	return d.RequestedDelegationFrom != ""
}
