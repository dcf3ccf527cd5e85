// Package state defines the ledger aggregate threaded through every action
// handler. Handlers mutate a draft produced by Clone; the dispatcher commits
// the draft only when the whole action validated cleanly, so a committed
// ledger never observes a partial transition.
package state

import (
	"fmt"
	"sort"

	corerr "arnsledger/core/errors"
)

// GatewayStatus enumerates the staking lifecycle phases of a gateway entry.
// Absence of the entry altogether means "never joined or fully exited".
type GatewayStatus string

const (
	GatewayStatusJoined  GatewayStatus = "joined"
	GatewayStatusLeaving GatewayStatus = "leaving"
)

// Record is a name lease. EndTimestamp marks expiry in unix seconds; the
// record survives a further GracePeriodSeconds before third parties may
// re-purchase the name.
type Record struct {
	ContractTxID string `json:"contractTxId"`
	EndTimestamp uint64 `json:"endTimestamp"`
	TierID       string `json:"tier"`
}

// ReservedName gates the purchase of short or premium names. A zero Target
// means the reservation is open-ended until EndTimestamp; a zero
// EndTimestamp means it never expires on its own.
type ReservedName struct {
	Target       string `json:"target,omitempty"`
	EndTimestamp uint64 `json:"endTimestamp,omitempty"`
}

// Tier is a purchasable service level. Immutable once appended to history.
type Tier struct {
	ID            string `json:"id"`
	Fee           uint64 `json:"fee"`
	MaxUndernames uint64 `json:"settings.maxUndernames"`
}

// TierRegistry tracks the tiers selectable by 1-based tier number (Current)
// and every tier ever created (History). Every id referenced by Current or
// by a Record must exist in History.
type TierRegistry struct {
	Current []string `json:"current"`
	History []Tier   `json:"history"`
}

// Vault is a time-locked stake position. End == 0 means locked indefinitely;
// End > 0 schedules release at that height.
type Vault struct {
	Balance uint64 `json:"balance"`
	Start   uint64 `json:"start"`
	End     uint64 `json:"end"`
}

// GatewaySettings is the operator-editable metadata of a gateway.
type GatewaySettings struct {
	Label             string   `json:"label"`
	FQDN              string   `json:"fqdn"`
	Port              uint64   `json:"port"`
	Protocol          string   `json:"protocol"`
	OpenDelegation    bool     `json:"openDelegation"`
	DelegateAllowList []string `json:"delegateAllowList"`
	Note              string   `json:"note"`
}

// Gateway is a staked network operator keyed by its operator address.
type Gateway struct {
	OperatorStake  uint64             `json:"operatorStake"`
	DelegatedStake uint64             `json:"delegatedStake"`
	Vaults         []Vault            `json:"vaults"`
	Delegates      map[string][]Vault `json:"delegates"`
	Settings       GatewaySettings    `json:"settings"`
	Status         GatewayStatus      `json:"status"`
	Start          uint64             `json:"start"`
	End            uint64             `json:"end"`
}

// TotalStake returns operator plus delegated stake.
func (g *Gateway) TotalStake() uint64 {
	if g == nil {
		return 0
	}
	return g.OperatorStake + g.DelegatedStake
}

// DelegateAddresses returns the delegate keys in sorted order. Payout paths
// must iterate delegates through this helper so replay stays byte-identical.
func (g *Gateway) DelegateAddresses() []string {
	if g == nil || len(g.Delegates) == 0 {
		return nil
	}
	addrs := make([]string, 0, len(g.Delegates))
	for addr := range g.Delegates {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// ActionStatus enumerates the foundation action lifecycle.
type ActionStatus string

const (
	ActionStatusActive  ActionStatus = "active"
	ActionStatusPassed  ActionStatus = "passed"
	ActionStatusFailed  ActionStatus = "failed"
	ActionStatusEvolved ActionStatus = "evolved"
)

// ActionType enumerates the governance payload kinds.
type ActionType string

const (
	ActionTypeAddAddress       ActionType = "addAddress"
	ActionTypeRemoveAddress    ActionType = "removeAddress"
	ActionTypeSetMinSignatures ActionType = "setMinSignatures"
	ActionTypeSetActionPeriod  ActionType = "setActionPeriod"
	ActionTypeSetNameFees      ActionType = "setNameFees"
	ActionTypeCreateNewTier    ActionType = "createNewTier"
	ActionTypeSetActiveTier    ActionType = "setActiveTier"
	ActionTypeDelayedEvolve    ActionType = "delayedEvolve"
)

// ValidActionType reports whether t names a supported governance payload.
func ValidActionType(t ActionType) bool {
	switch t {
	case ActionTypeAddAddress, ActionTypeRemoveAddress, ActionTypeSetMinSignatures,
		ActionTypeSetActionPeriod, ActionTypeSetNameFees, ActionTypeCreateNewTier,
		ActionTypeSetActiveTier, ActionTypeDelayedEvolve:
		return true
	default:
		return false
	}
}

// ActionValue holds the per-type governance payload. Only the fields for the
// action's declared type are populated; the rest stay at their zero value.
type ActionValue struct {
	Address         string         `json:"address,omitempty"`
	MinSignatures   int            `json:"minSignatures,omitempty"`
	ActionPeriod    uint64         `json:"actionPeriod,omitempty"`
	Fees            map[int]uint64 `json:"fees,omitempty"`
	Tier            *Tier          `json:"tier,omitempty"`
	TierNumber      int            `json:"tierNumber,omitempty"`
	TierID          string         `json:"tierId,omitempty"`
	ContractSrcTxID string         `json:"contractSrcTxId,omitempty"`
	EvolveHeight    uint64         `json:"evolveHeight,omitempty"`
}

// FoundationAction is a multi-signature governance proposal. Its effect is
// applied exactly once, guarded by the active→passed status flip.
type FoundationAction struct {
	ID          int          `json:"id"`
	Status      ActionStatus `json:"status"`
	Type        ActionType   `json:"type"`
	Note        string       `json:"note"`
	Signed      []string     `json:"signed"`
	StartHeight uint64       `json:"startHeight"`
	Value       ActionValue  `json:"value"`
}

// HasSigned reports whether addr already appears in the signature list.
func (a *FoundationAction) HasSigned(addr string) bool {
	for _, s := range a.Signed {
		if s == addr {
			return true
		}
	}
	return false
}

// Foundation is the governance body. Invariant: MinSignatures never exceeds
// len(Addresses).
type Foundation struct {
	Addresses     []string            `json:"addresses"`
	MinSignatures int                 `json:"minSignatures"`
	ActionPeriod  uint64              `json:"actionPeriod"`
	Actions       []*FoundationAction `json:"actions"`
}

// IsMember reports whether addr is a foundation address.
func (f *Foundation) IsMember(addr string) bool {
	for _, a := range f.Addresses {
		if a == addr {
			return true
		}
	}
	return false
}

// Ledger is the root state aggregate. One value is exclusively owned by the
// state processor; handlers only ever see drafts produced by Clone.
type Ledger struct {
	Ticker     string                   `json:"ticker"`
	Name       string                   `json:"name"`
	Evolve     string                   `json:"evolve,omitempty"`
	Balances   map[string]uint64        `json:"balances"`
	Records    map[string]*Record       `json:"records"`
	Reserved   map[string]*ReservedName `json:"reserved"`
	Fees       map[int]uint64           `json:"fees"`
	Tiers      TierRegistry             `json:"tiers"`
	Gateways   map[string]*Gateway      `json:"gateways"`
	Foundation Foundation               `json:"foundation"`
	Settings   NetworkSettings          `json:"settings"`
}

// NewLedger returns an empty ledger with initialized containers and default
// network settings.
func NewLedger() *Ledger {
	return &Ledger{
		Balances: make(map[string]uint64),
		Records:  make(map[string]*Record),
		Reserved: make(map[string]*ReservedName),
		Fees:     make(map[int]uint64),
		Gateways: make(map[string]*Gateway),
		Settings: DefaultNetworkSettings(),
	}
}

// Debit removes qty from addr's balance. The entry must exist and cover the
// amount; the balance map never holds a negative value.
func (l *Ledger) Debit(addr string, qty uint64) error {
	bal, ok := l.Balances[addr]
	if !ok {
		return corerr.ErrUndefinedBalance
	}
	if bal < qty {
		return corerr.ErrInsufficientFunds
	}
	l.Balances[addr] = bal - qty
	return nil
}

// Credit adds qty to addr's balance, creating the entry when absent.
func (l *Ledger) Credit(addr string, qty uint64) {
	l.Balances[addr] += qty
}

// BaseFee returns the registration base fee for a name of the given length.
func (l *Ledger) BaseFee(nameLength int) (uint64, error) {
	fee, ok := l.Fees[nameLength]
	if !ok {
		return 0, fmt.Errorf("%w: no fee for name length %d", corerr.ErrInvalidName, nameLength)
	}
	return fee, nil
}

// TierByID resolves a tier id against history.
func (l *Ledger) TierByID(id string) (Tier, bool) {
	for _, t := range l.Tiers.History {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// ActiveTier resolves a 1-based tier number to the concrete tier it
// currently selects.
func (l *Ledger) ActiveTier(tierNumber int) (Tier, error) {
	if tierNumber < 1 || tierNumber > len(l.Tiers.Current) || tierNumber > MaxActiveTiers {
		return Tier{}, fmt.Errorf("%w: tier number %d", corerr.ErrInvalidTier, tierNumber)
	}
	id := l.Tiers.Current[tierNumber-1]
	tier, ok := l.TierByID(id)
	if !ok {
		return Tier{}, fmt.Errorf("%w: tier %q missing from history", corerr.ErrInvalidTier, id)
	}
	return tier, nil
}

// TotalSupply sums every balance. Transfers conserve this; nothing in the
// core mints or burns.
func (l *Ledger) TotalSupply() uint64 {
	var total uint64
	for _, bal := range l.Balances {
		total += bal
	}
	return total
}
