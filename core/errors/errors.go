// Package errors defines the rejection reasons surfaced by the ledger core.
// Every value is terminal for the action that triggered it: the dispatcher
// discards the draft state and the committed ledger is untouched.
package errors

import stderrors "errors"

// Token transfers.
var (
	ErrInvalidQuantity   = stderrors.New("transfer: quantity must be a positive integer")
	ErrInvalidTarget     = stderrors.New("transfer: target must differ from caller")
	ErrInsufficientFunds = stderrors.New("ledger: insufficient funds")
	ErrUndefinedBalance  = stderrors.New("ledger: caller balance undefined")
)

// Name-lease lifecycle.
var (
	ErrInvalidName           = stderrors.New("registry: invalid name")
	ErrInvalidYears          = stderrors.New("registry: years out of range")
	ErrInvalidTier           = stderrors.New("registry: invalid tier")
	ErrSameTier              = stderrors.New("registry: tier unchanged")
	ErrNameReserved          = stderrors.New("registry: name reserved")
	ErrNameNotYetAvailable   = stderrors.New("registry: name not yet available")
	ErrNameDoesNotExist      = stderrors.New("registry: name does not exist")
	ErrLeaseNotInGracePeriod = stderrors.New("registry: lease not in grace period")
	ErrLeaseExpired          = stderrors.New("registry: lease expired beyond grace")
)

// Gateway staking lifecycle.
var (
	ErrNotRegistered          = stderrors.New("gateway: not registered")
	ErrAlreadyRegistered      = stderrors.New("gateway: already registered")
	ErrGatewayLeaving         = stderrors.New("gateway: gateway is leaving")
	ErrInvalidVaultIndex      = stderrors.New("gateway: invalid vault index")
	ErrBelowMinimumStake      = stderrors.New("gateway: stake below network minimum")
	ErrLockNotElapsed         = stderrors.New("gateway: vault lock not yet elapsed")
	ErrAlreadyScheduled       = stderrors.New("gateway: vault already scheduled for release")
	ErrJoinTooRecent          = stderrors.New("gateway: minimum join duration not reached")
	ErrNotYetEligibleToLeave  = stderrors.New("gateway: leave period not yet elapsed")
	ErrDelegationClosed       = stderrors.New("gateway: delegation closed to caller")
	ErrInvalidGatewaySettings = stderrors.New("gateway: invalid settings")
)

// Foundation governance.
var (
	ErrNotFoundationMember  = stderrors.New("foundation: caller is not a foundation address")
	ErrNoteTooLong          = stderrors.New("foundation: note exceeds maximum length")
	ErrInvalidActionType    = stderrors.New("foundation: invalid action type")
	ErrInvalidActionPayload = stderrors.New("foundation: invalid action payload")
	ErrActionNotFound       = stderrors.New("foundation: action not found")
	ErrActionNotActive      = stderrors.New("foundation: action not active")
	ErrEvolutionNotReady    = stderrors.New("foundation: evolution height not reached")
	ErrEvolutionWindow      = stderrors.New("foundation: evolve height outside allowed window")
)

// Dispatcher.
var (
	ErrUnknownAction = stderrors.New("core: unknown action kind")
	ErrInvalidParams = stderrors.New("core: malformed action params")
)

// Kind buckets rejection reasons for metrics and event attributes.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindAuthorization     Kind = "authorization"
	KindStateConflict     Kind = "state_conflict"
	KindInsufficientFunds Kind = "insufficient_funds"
)

// Classify maps a rejection to its taxonomy bucket. Unrecognized errors are
// treated as validation failures since they can only originate from input
// that slipped past the boundary validator.
func Classify(err error) Kind {
	switch {
	case stderrors.Is(err, ErrInsufficientFunds), stderrors.Is(err, ErrUndefinedBalance):
		return KindInsufficientFunds
	case stderrors.Is(err, ErrNameDoesNotExist), stderrors.Is(err, ErrNotRegistered),
		stderrors.Is(err, ErrActionNotFound), stderrors.Is(err, ErrInvalidTier):
		return KindNotFound
	case stderrors.Is(err, ErrNotFoundationMember), stderrors.Is(err, ErrDelegationClosed):
		return KindAuthorization
	case stderrors.Is(err, ErrNameReserved), stderrors.Is(err, ErrNameNotYetAvailable),
		stderrors.Is(err, ErrLeaseNotInGracePeriod), stderrors.Is(err, ErrLeaseExpired),
		stderrors.Is(err, ErrAlreadyRegistered), stderrors.Is(err, ErrGatewayLeaving),
		stderrors.Is(err, ErrAlreadyScheduled), stderrors.Is(err, ErrLockNotElapsed),
		stderrors.Is(err, ErrJoinTooRecent), stderrors.Is(err, ErrNotYetEligibleToLeave),
		stderrors.Is(err, ErrActionNotActive), stderrors.Is(err, ErrEvolutionNotReady),
		stderrors.Is(err, ErrBelowMinimumStake):
		return KindStateConflict
	default:
		return KindValidation
	}
}
