package errors

import "errors"

var (
	ErrNotEligible        = errors.New("voter has no right to vote")
	ErrSelfDelegation     = errors.New("cannot delegate to yourself")
	ErrCircularDelegation = errors.New("delegation would create a circular proxy chain")
	ErrInvalidToken       = errors.New("invalid voter token")
	ErrInvalidPollStatus  = errors.New("operation not allowed in current poll status")
	ErrCannotCastVote     = errors.New("cannot cast vote")
	ErrDataInconsistency  = errors.New("delegation data is inconsistent")
	ErrPollNotFound       = errors.New("poll not found")
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrDelegationNotFound = errors.New("delegation not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("concurrent modification conflict")
)
