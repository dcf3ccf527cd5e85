package core

import (
	"encoding/json"
	"errors"
	"testing"

	corerr "arnsledger/core/errors"
	"arnsledger/core/events"
	"arnsledger/core/state"
	"arnsledger/core/types"
)

const (
	alice = "alice-address"
	bob   = "bob-address"
	txID  = "TxIdEfGhIjKlMnOpQrStUvWxYz0123456789_-AbCdE"
)

func newTestProcessor() *StateProcessor {
	ledger := state.NewLedger()
	ledger.Balances[alice] = 1_000
	for length := 1; length <= state.MaxNameLength; length++ {
		ledger.Fees[length] = 100
	}
	ledger.Tiers = state.TierRegistry{
		Current: []string{"tier-basic"},
		History: []state.Tier{{ID: "tier-basic", Fee: 100, MaxUndernames: 10}},
	}
	ledger.Foundation = state.Foundation{
		Addresses:     []string{alice, bob},
		MinSignatures: 2,
		ActionPeriod:  720,
	}
	return NewStateProcessor(ledger)
}

func action(kind, caller string, height, ts uint64, params any) types.Action {
	raw, err := json.Marshal(params)
	if err != nil {
		panic(err)
	}
	return types.Action{
		Kind: kind, Caller: caller, Height: height, Timestamp: ts,
		TxID: txID, Params: raw,
	}
}

func TestApplyUnknownKind(t *testing.T) {
	sp := newTestProcessor()
	_, err := sp.Apply(action("mint", alice, 1, 0, map[string]any{"qty": 5}))
	if !errors.Is(err, corerr.ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
}

func TestApplyMalformedParams(t *testing.T) {
	sp := newTestProcessor()
	act := types.Action{Kind: "transfer", Caller: alice, Height: 1, Params: json.RawMessage(`{"qty": "ten"}`)}
	if _, err := sp.Apply(act); !errors.Is(err, corerr.ErrInvalidParams) {
		t.Fatalf("err = %v, want ErrInvalidParams", err)
	}
}

func TestApplyTransferCommitsAndEmits(t *testing.T) {
	sp := newTestProcessor()
	evts, err := sp.Apply(action("transfer", alice, 5, 0, map[string]any{"target": bob, "qty": 400}))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got := sp.Ledger().Balances[alice]; got != 600 {
		t.Fatalf("alice balance = %d, want 600", got)
	}
	if got := sp.Ledger().Balances[bob]; got != 400 {
		t.Fatalf("bob balance = %d, want 400", got)
	}
	if sp.Height() != 5 {
		t.Fatalf("height = %d, want 5", sp.Height())
	}
	if len(evts) != 1 || evts[0].Type != events.TypeTransfer {
		t.Fatalf("events = %+v", evts)
	}
	if got := evts[0].Attributes["to"]; got != bob {
		t.Fatalf("event target = %q", got)
	}
}

func TestApplyRejectionLeavesLedgerUntouched(t *testing.T) {
	sp := newTestProcessor()
	// The reservation is consumable by alice, but the purchase fails on
	// funds. The committed ledger must still hold the reservation.
	sp.Ledger().Reserved["prized"] = &state.ReservedName{Target: alice}
	sp.Ledger().Balances[alice] = 10

	_, err := sp.Apply(action("buyRecord", alice, 6, 1_700_000_000, map[string]any{"name": "prized"}))
	if !errors.Is(err, corerr.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if _, ok := sp.Ledger().Reserved["prized"]; !ok {
		t.Fatal("rejected action consumed the reservation")
	}
	if _, ok := sp.Ledger().Records["prized"]; ok {
		t.Fatal("rejected action wrote a record")
	}
	if sp.Height() != 0 {
		t.Fatalf("height advanced on rejection: %d", sp.Height())
	}
}

func TestApplyBuyRecord(t *testing.T) {
	sp := newTestProcessor()
	now := uint64(1_700_000_000)
	evts, err := sp.Apply(action("buyRecord", alice, 7, now, map[string]any{"name": "my-name", "years": 2}))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	record, ok := sp.Ledger().Records["my-name"]
	if !ok {
		t.Fatal("record missing")
	}
	if record.EndTimestamp != now+2*state.SecondsInYear {
		t.Fatalf("end = %d", record.EndTimestamp)
	}
	// No contractTxId supplied: the record binds to the purchase transaction.
	if record.ContractTxID != txID {
		t.Fatalf("contract tx = %q", record.ContractTxID)
	}
	if len(evts) != 1 || evts[0].Type != events.TypeLeaseBought {
		t.Fatalf("events = %+v", evts)
	}
}

func TestApplyFoundationProposeAndSign(t *testing.T) {
	sp := newTestProcessor()
	newMember := "AbCdEfGhIjKlMnOpQrStUvWxYz0123456789_-AbCdE"

	evts, err := sp.Apply(action("foundationAction", alice, 10, 0, map[string]any{
		"type":  "addAddress",
		"value": map[string]any{"address": newMember},
	}))
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if len(evts) != 1 || evts[0].Type != events.TypeFoundationProposed {
		t.Fatalf("events = %+v", evts)
	}

	evts, err = sp.Apply(action("foundationAction", bob, 20, 0, map[string]any{"id": 0}))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if len(evts) != 2 || evts[0].Type != events.TypeFoundationSigned || evts[1].Type != events.TypeFoundationPassed {
		t.Fatalf("events = %+v", evts)
	}
	if !sp.Ledger().Foundation.IsMember(newMember) {
		t.Fatal("quorum reached but member not added")
	}
}

func TestApplyHeightIsMonotonic(t *testing.T) {
	sp := newTestProcessor()
	if _, err := sp.Apply(action("transfer", alice, 9, 0, map[string]any{"target": bob, "qty": 1})); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	// A lower-height action still applies but never rewinds the height.
	if _, err := sp.Apply(action("transfer", alice, 3, 0, map[string]any{"target": bob, "qty": 1})); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if sp.Height() != 9 {
		t.Fatalf("height = %d, want 9", sp.Height())
	}
}

func TestSetHeightSeedsResumedProcessor(t *testing.T) {
	sp := newTestProcessor()
	sp.SetHeight(42)
	if sp.Height() != 42 {
		t.Fatalf("height = %d, want 42", sp.Height())
	}
	// A replayed action below the seed never rewinds the height.
	if _, err := sp.Apply(action("transfer", alice, 7, 0, map[string]any{"target": bob, "qty": 1})); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if sp.Height() != 42 {
		t.Fatalf("height = %d, want 42", sp.Height())
	}
}

type captureEmitter struct {
	types []string
}

func (c *captureEmitter) Emit(evt events.Event) {
	c.types = append(c.types, evt.EventType())
}

func TestEmitterReceivesAppliedEvents(t *testing.T) {
	sp := newTestProcessor()
	capture := &captureEmitter{}
	sp.SetEmitter(capture)

	if _, err := sp.Apply(action("transfer", alice, 1, 0, map[string]any{"target": bob, "qty": 1})); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := sp.Apply(action("transfer", alice, 2, 0, map[string]any{"target": alice, "qty": 1})); err == nil {
		t.Fatal("self-transfer applied")
	}
	if len(capture.types) != 1 || capture.types[0] != events.TypeTransfer {
		t.Fatalf("emitted = %v", capture.types)
	}
}
