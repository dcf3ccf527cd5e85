// Package foundation implements the multi-signature governance machine: a
// proposal accrues member signatures during its action period and applies
// its typed payload exactly once when the signature quorum is reached.
package foundation

import (
	"fmt"

	corerr "arnsledger/core/errors"
	"arnsledger/core/state"
	"arnsledger/core/types"
)

// ProposeParams is the typed input of the foundationAction kind when no id
// is supplied: a new proposal carrying a per-type payload.
type ProposeParams struct {
	Type  state.ActionType  `json:"type"`
	Note  string            `json:"note"`
	Value state.ActionValue `json:"value"`
}

// SignParams is the typed input of the foundationAction kind when an id is
// supplied: a signature on an existing proposal.
type SignParams struct {
	ID int `json:"id"`
}

// ActionResult reports the proposal's id and post-transition status.
type ActionResult struct {
	ID     int
	Status state.ActionStatus
}

// Propose creates a new active foundation action signed by the proposer.
// With a quorum of one the action passes and applies immediately.
func Propose(ledger *state.Ledger, ctx types.ExecutionContext, params ProposeParams) (*ActionResult, error) {
	if !ledger.Foundation.IsMember(ctx.Caller) {
		return nil, fmt.Errorf("%w: %s", corerr.ErrNotFoundationMember, ctx.Caller)
	}
	if len(params.Note) > state.MaxNoteLength {
		return nil, corerr.ErrNoteTooLong
	}
	if !state.ValidActionType(params.Type) {
		return nil, fmt.Errorf("%w: %q", corerr.ErrInvalidActionType, params.Type)
	}
	if err := validatePayload(ledger, ctx, params.Type, params.Value); err != nil {
		return nil, err
	}
	action := &state.FoundationAction{
		ID:          len(ledger.Foundation.Actions),
		Status:      state.ActionStatusActive,
		Type:        params.Type,
		Note:        params.Note,
		Signed:      []string{ctx.Caller},
		StartHeight: ctx.Height,
		Value:       params.Value,
	}
	ledger.Foundation.Actions = append(ledger.Foundation.Actions, action)
	maybePass(ledger, ctx, action)
	return &ActionResult{ID: action.ID, Status: action.Status}, nil
}

// Sign appends the caller's signature to an active action. An action whose
// period elapsed with too few signatures is marked failed and the transition
// commits; that is a state change, not a rejection.
func Sign(ledger *state.Ledger, ctx types.ExecutionContext, params SignParams) (*ActionResult, error) {
	if !ledger.Foundation.IsMember(ctx.Caller) {
		return nil, fmt.Errorf("%w: %s", corerr.ErrNotFoundationMember, ctx.Caller)
	}
	if params.ID < 0 || params.ID >= len(ledger.Foundation.Actions) {
		return nil, fmt.Errorf("%w: id %d", corerr.ErrActionNotFound, params.ID)
	}
	action := ledger.Foundation.Actions[params.ID]
	if action.Status != state.ActionStatusActive {
		return nil, fmt.Errorf("%w: id %d is %s", corerr.ErrActionNotActive, params.ID, action.Status)
	}
	if ctx.Height > action.StartHeight+ledger.Foundation.ActionPeriod {
		action.Status = state.ActionStatusFailed
		return &ActionResult{ID: action.ID, Status: action.Status}, nil
	}
	if !action.HasSigned(ctx.Caller) {
		action.Signed = append(action.Signed, ctx.Caller)
	}
	maybePass(ledger, ctx, action)
	return &ActionResult{ID: action.ID, Status: action.Status}, nil
}

// maybePass applies the action's effect exactly once when the signature
// count reaches the quorum. The active→passed flip guards re-entry across
// repeated signing.
func maybePass(ledger *state.Ledger, ctx types.ExecutionContext, action *state.FoundationAction) {
	if action.Status != state.ActionStatusActive {
		return
	}
	if len(action.Signed) < ledger.Foundation.MinSignatures {
		return
	}
	// Membership or tier state may have shifted since the proposal was
	// admitted; a payload that no longer validates fails instead of applying.
	// The evolve scheduling window was already judged at the proposal height
	// and must not drift with the signing height.
	reCtx := ctx
	reCtx.Height = action.StartHeight
	if err := validatePayload(ledger, reCtx, action.Type, action.Value); err != nil {
		action.Status = state.ActionStatusFailed
		return
	}
	applyEffect(ledger, action)
	action.Status = state.ActionStatusPassed
}

func applyEffect(ledger *state.Ledger, action *state.FoundationAction) {
	f := &ledger.Foundation
	switch action.Type {
	case state.ActionTypeAddAddress:
		f.Addresses = append(f.Addresses, action.Value.Address)
	case state.ActionTypeRemoveAddress:
		kept := f.Addresses[:0]
		for _, addr := range f.Addresses {
			if addr != action.Value.Address {
				kept = append(kept, addr)
			}
		}
		f.Addresses = kept
	case state.ActionTypeSetMinSignatures:
		f.MinSignatures = action.Value.MinSignatures
	case state.ActionTypeSetActionPeriod:
		f.ActionPeriod = action.Value.ActionPeriod
	case state.ActionTypeSetNameFees:
		fees := make(map[int]uint64, len(action.Value.Fees))
		for length, fee := range action.Value.Fees {
			fees[length] = fee
		}
		ledger.Fees = fees
	case state.ActionTypeCreateNewTier:
		ledger.Tiers.History = append(ledger.Tiers.History, *action.Value.Tier)
	case state.ActionTypeSetActiveTier:
		if action.Value.TierNumber > len(ledger.Tiers.Current) {
			ledger.Tiers.Current = append(ledger.Tiers.Current, action.Value.TierID)
		} else {
			ledger.Tiers.Current[action.Value.TierNumber-1] = action.Value.TierID
		}
	case state.ActionTypeDelayedEvolve:
		// Deferred: passing only records the scheduled source and height.
		// The evolve action consumes it later.
	}
}

func validatePayload(ledger *state.Ledger, ctx types.ExecutionContext, t state.ActionType, v state.ActionValue) error {
	f := &ledger.Foundation
	switch t {
	case state.ActionTypeAddAddress:
		if !state.TxIDPattern.MatchString(v.Address) {
			return fmt.Errorf("%w: address %q", corerr.ErrInvalidActionPayload, v.Address)
		}
		if f.IsMember(v.Address) {
			return fmt.Errorf("%w: %s already a member", corerr.ErrInvalidActionPayload, v.Address)
		}
	case state.ActionTypeRemoveAddress:
		if !f.IsMember(v.Address) {
			return fmt.Errorf("%w: %s not a member", corerr.ErrInvalidActionPayload, v.Address)
		}
		if len(f.Addresses)-1 < f.MinSignatures {
			return fmt.Errorf("%w: removal would break signature quorum", corerr.ErrInvalidActionPayload)
		}
	case state.ActionTypeSetMinSignatures:
		if v.MinSignatures < 1 || v.MinSignatures > len(f.Addresses) {
			return fmt.Errorf("%w: minSignatures %d with %d addresses", corerr.ErrInvalidActionPayload, v.MinSignatures, len(f.Addresses))
		}
	case state.ActionTypeSetActionPeriod:
		if v.ActionPeriod == 0 {
			return fmt.Errorf("%w: action period must be positive", corerr.ErrInvalidActionPayload)
		}
	case state.ActionTypeSetNameFees:
		if len(v.Fees) != state.MaxNameLength {
			return fmt.Errorf("%w: fee table must cover lengths 1..%d", corerr.ErrInvalidActionPayload, state.MaxNameLength)
		}
		for length := 1; length <= state.MaxNameLength; length++ {
			fee, ok := v.Fees[length]
			if !ok || fee == 0 {
				return fmt.Errorf("%w: missing or zero fee for length %d", corerr.ErrInvalidActionPayload, length)
			}
		}
	case state.ActionTypeCreateNewTier:
		if v.Tier == nil || !state.TxIDPattern.MatchString(v.Tier.ID) {
			return fmt.Errorf("%w: tier id", corerr.ErrInvalidActionPayload)
		}
		if _, exists := ledger.TierByID(v.Tier.ID); exists {
			return fmt.Errorf("%w: tier %q already exists", corerr.ErrInvalidActionPayload, v.Tier.ID)
		}
		if v.Tier.Fee == 0 || v.Tier.MaxUndernames == 0 {
			return fmt.Errorf("%w: tier fee and undername capacity must be positive", corerr.ErrInvalidActionPayload)
		}
	case state.ActionTypeSetActiveTier:
		if v.TierNumber < 1 || v.TierNumber > state.MaxActiveTiers {
			return fmt.Errorf("%w: tier number %d", corerr.ErrInvalidActionPayload, v.TierNumber)
		}
		// Slots fill in order; skipping one would leave an unset tier below it.
		if v.TierNumber > len(ledger.Tiers.Current)+1 {
			return fmt.Errorf("%w: tier number %d skips unset slots", corerr.ErrInvalidActionPayload, v.TierNumber)
		}
		if _, ok := ledger.TierByID(v.TierID); !ok {
			return fmt.Errorf("%w: tier %q not in history", corerr.ErrInvalidActionPayload, v.TierID)
		}
	case state.ActionTypeDelayedEvolve:
		if !state.TxIDPattern.MatchString(v.ContractSrcTxID) {
			return fmt.Errorf("%w: contract source %q", corerr.ErrInvalidActionPayload, v.ContractSrcTxID)
		}
		if v.EvolveHeight < ctx.Height+state.MinDelayedEvolveBlocks || v.EvolveHeight > ctx.Height+state.MaxDelayedEvolveBlocks {
			return fmt.Errorf("%w: height %d", corerr.ErrEvolutionWindow, v.EvolveHeight)
		}
	}
	return nil
}

// EvolveParams is the typed input of the evolve kind: the contract source
// reference previously scheduled through a delayedEvolve action.
type EvolveParams struct {
	Value string `json:"value"`
}

// Evolve consumes a passed delayedEvolve action whose scheduled height has
// been reached, marking it evolved and switching the ledger's active code
// reference.
func Evolve(ledger *state.Ledger, ctx types.ExecutionContext, params EvolveParams) (*ActionResult, error) {
	if !ledger.Foundation.IsMember(ctx.Caller) {
		return nil, fmt.Errorf("%w: %s", corerr.ErrNotFoundationMember, ctx.Caller)
	}
	for _, action := range ledger.Foundation.Actions {
		if action.Type != state.ActionTypeDelayedEvolve || action.Status != state.ActionStatusPassed {
			continue
		}
		if action.Value.ContractSrcTxID != params.Value {
			continue
		}
		if ctx.Height < action.Value.EvolveHeight {
			return nil, fmt.Errorf("%w: scheduled for height %d", corerr.ErrEvolutionNotReady, action.Value.EvolveHeight)
		}
		action.Status = state.ActionStatusEvolved
		ledger.Evolve = action.Value.ContractSrcTxID
		return &ActionResult{ID: action.ID, Status: action.Status}, nil
	}
	return nil, fmt.Errorf("%w: no passed delayed evolution for %q", corerr.ErrActionNotFound, params.Value)
}
