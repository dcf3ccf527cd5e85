// Package core hosts the state processor: the dispatcher that applies one
// action at a time against the ledger, committing the resulting state only
// when the whole action validated cleanly.
package core

import (
	"encoding/json"
	"fmt"

	corerr "arnsledger/core/errors"
	"arnsledger/core/events"
	"arnsledger/core/state"
	"arnsledger/core/types"
	"arnsledger/native/bank"
	"arnsledger/native/foundation"
	"arnsledger/native/gateway"
	"arnsledger/native/registry"
	"arnsledger/observability/metrics"
)

// StateProcessor owns the committed ledger and applies actions from the
// externally ordered log, one at a time. Handlers only ever see a draft
// clone; a rejection leaves the committed ledger byte-identical.
type StateProcessor struct {
	ledger  *state.Ledger
	height  uint64
	emitter events.Emitter
}

// NewStateProcessor wraps an initial ledger (usually genesis or the latest
// snapshot) in a processor.
func NewStateProcessor(ledger *state.Ledger) *StateProcessor {
	if ledger == nil {
		ledger = state.NewLedger()
	}
	return &StateProcessor{ledger: ledger, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (sp *StateProcessor) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		sp.emitter = events.NoopEmitter{}
		return
	}
	sp.emitter = emitter
}

// Ledger returns the committed ledger. Callers must treat it as read-only;
// reads that leave the process go through Query, which copies.
func (sp *StateProcessor) Ledger() *state.Ledger { return sp.ledger }

// Height returns the height of the last applied action.
func (sp *StateProcessor) Height() uint64 { return sp.height }

// SetHeight seeds the last-applied height when resuming from a snapshot, so
// reads report the snapshot position before any new action arrives. Apply
// keeps the height monotonic past the seed.
func (sp *StateProcessor) SetHeight(height uint64) {
	sp.height = height
	metrics.Ledger().SetHeight(height)
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", corerr.ErrInvalidParams, err)
	}
	return nil
}

// Apply validates and applies one write action. On success the draft ledger
// is committed and the action's events are returned; on rejection the
// committed ledger is untouched and the reason is returned.
func (sp *StateProcessor) Apply(action types.Action) ([]types.Event, error) {
	ctx := action.Context()
	draft := sp.ledger.Clone()
	evts, err := sp.applyOn(draft, ctx, action)
	if err != nil {
		metrics.Ledger().ObserveRejected(action.Kind, string(corerr.Classify(err)))
		return nil, err
	}
	sp.ledger = draft
	if action.Height > sp.height {
		sp.height = action.Height
	}
	metrics.Ledger().ObserveApplied(action.Kind)
	metrics.Ledger().SetHeight(sp.height)
	for _, evt := range evts {
		sp.emitter.Emit(ledgerEvent{evt: evt})
	}
	out := make([]types.Event, len(evts))
	copy(out, evts)
	return out, nil
}

func (sp *StateProcessor) applyOn(draft *state.Ledger, ctx types.ExecutionContext, action types.Action) ([]types.Event, error) {
	switch action.Kind {
	case "transfer":
		var params bank.TransferParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		if err := bank.Transfer(draft, ctx, params); err != nil {
			return nil, err
		}
		return []types.Event{*events.Transfer{From: ctx.Caller, To: params.Target, Amount: params.Qty}.Event()}, nil

	case "buyRecord":
		var params registry.BuyRecordParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		res, err := registry.BuyRecord(draft, ctx, params)
		if err != nil {
			return nil, err
		}
		return []types.Event{*events.LeaseBought{
			Name: params.Name, Buyer: ctx.Caller, Fee: res.Fee,
			TierID: res.TierID, EndTimestamp: res.EndTimestamp,
		}.Event()}, nil

	case "extendRecord":
		var params registry.ExtendRecordParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		res, err := registry.ExtendRecord(draft, ctx, params)
		if err != nil {
			return nil, err
		}
		return []types.Event{*events.LeaseExtended{
			Name: params.Name, Caller: ctx.Caller, Fee: res.Fee,
			Years: params.Years, EndTimestamp: res.EndTimestamp,
		}.Event()}, nil

	case "upgradeTier":
		var params registry.UpgradeTierParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		res, err := registry.UpgradeTier(draft, ctx, params)
		if err != nil {
			return nil, err
		}
		return []types.Event{*events.LeaseUpgraded{
			Name: params.Name, Caller: ctx.Caller, Fee: res.Fee, TierID: res.TierID,
		}.Event()}, nil

	case "joinNetwork":
		var params gateway.JoinNetworkParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		if err := gateway.JoinNetwork(draft, ctx, params); err != nil {
			return nil, err
		}
		return []types.Event{*events.GatewayJoined{Operator: ctx.Caller, Stake: params.Qty}.Event()}, nil

	case "increaseOperatorStake":
		var params gateway.IncreaseOperatorStakeParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		if err := gateway.IncreaseOperatorStake(draft, ctx, params); err != nil {
			return nil, err
		}
		return []types.Event{*events.GatewayStakeIncreased{Operator: ctx.Caller, Amount: params.Qty}.Event()}, nil

	case "initiateOperatorStakeDecrease":
		var params gateway.InitiateDecreaseParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		res, err := gateway.InitiateOperatorStakeDecrease(draft, ctx, params)
		if err != nil {
			return nil, err
		}
		return []types.Event{*events.GatewayStakeScheduled{
			Operator: ctx.Caller, VaultIndex: params.VaultIndex, ReleaseAt: res.ReleaseAt,
		}.Event()}, nil

	case "finalizeOperatorStakeDecrease":
		var params gateway.FinalizeDecreaseParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		res, err := gateway.FinalizeOperatorStakeDecrease(draft, ctx, params)
		if err != nil {
			return nil, err
		}
		return []types.Event{*events.GatewayStakeReleased{
			Operator: res.Target, Amount: res.Amount, Vaults: res.Vaults,
		}.Event()}, nil

	case "delegateStake":
		var params gateway.DelegateStakeParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		if err := gateway.DelegateStake(draft, ctx, params); err != nil {
			return nil, err
		}
		return []types.Event{*events.GatewayDelegated{
			Operator: params.Target, Delegate: ctx.Caller, Amount: params.Qty,
		}.Event()}, nil

	case "initiateLeave":
		res, err := gateway.InitiateLeave(draft, ctx)
		if err != nil {
			return nil, err
		}
		return []types.Event{*events.GatewayLeaving{Operator: ctx.Caller, LeaveHeight: res.LeaveHeight}.Event()}, nil

	case "finalizeLeave":
		var params gateway.FinalizeLeaveParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		res, err := gateway.FinalizeLeave(draft, ctx, params)
		if err != nil {
			return nil, err
		}
		return []types.Event{*events.GatewayLeft{Operator: res.Target, Returned: res.Returned}.Event()}, nil

	case "updateGatewaySettings":
		var params gateway.UpdateSettingsParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		if err := gateway.UpdateSettings(draft, ctx, params); err != nil {
			return nil, err
		}
		return []types.Event{*events.GatewaySettingsUpdated{Operator: ctx.Caller}.Event()}, nil

	case "foundationAction":
		return sp.applyFoundation(draft, ctx, action.Params)

	case "evolve":
		var params foundation.EvolveParams
		if err := decode(action.Params, &params); err != nil {
			return nil, err
		}
		res, err := foundation.Evolve(draft, ctx, params)
		if err != nil {
			return nil, err
		}
		return []types.Event{*events.FoundationEvolved{ID: res.ID, Source: params.Value}.Event()}, nil

	default:
		return nil, fmt.Errorf("%w: %q", corerr.ErrUnknownAction, action.Kind)
	}
}

// applyFoundation disambiguates a foundationAction envelope: an id field
// signs an existing proposal, its absence proposes a new one.
func (sp *StateProcessor) applyFoundation(draft *state.Ledger, ctx types.ExecutionContext, raw json.RawMessage) ([]types.Event, error) {
	var probe struct {
		ID *int `json:"id"`
	}
	if err := decode(raw, &probe); err != nil {
		return nil, err
	}
	if probe.ID != nil {
		res, err := foundation.Sign(draft, ctx, foundation.SignParams{ID: *probe.ID})
		if err != nil {
			return nil, err
		}
		return foundationEvents(ctx, res), nil
	}
	var params foundation.ProposeParams
	if err := decode(raw, &params); err != nil {
		return nil, err
	}
	res, err := foundation.Propose(draft, ctx, params)
	if err != nil {
		return nil, err
	}
	evts := []types.Event{*events.FoundationProposed{ID: res.ID, Proposer: ctx.Caller, Kind: string(params.Type)}.Event()}
	if res.Status == state.ActionStatusPassed {
		evts = append(evts, *events.FoundationPassed{ID: res.ID, Kind: string(params.Type)}.Event())
	}
	return evts, nil
}

func foundationEvents(ctx types.ExecutionContext, res *foundation.ActionResult) []types.Event {
	switch res.Status {
	case state.ActionStatusPassed:
		return []types.Event{
			*events.FoundationSigned{ID: res.ID, Signer: ctx.Caller}.Event(),
			*events.FoundationPassed{ID: res.ID}.Event(),
		}
	case state.ActionStatusFailed:
		return []types.Event{*events.FoundationFailed{ID: res.ID}.Event()}
	default:
		return []types.Event{*events.FoundationSigned{ID: res.ID, Signer: ctx.Caller}.Event()}
	}
}

type ledgerEvent struct {
	evt types.Event
}

func (l ledgerEvent) EventType() string { return l.evt.Type }

// Event returns the underlying attribute payload.
func (l ledgerEvent) Event() *types.Event { return &l.evt }
