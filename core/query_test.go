package core

import (
	"encoding/json"
	"errors"
	"testing"

	corerr "arnsledger/core/errors"
	"arnsledger/core/state"
)

func gatewayWithStake(operator uint64, delegated uint64) *state.Gateway {
	return &state.Gateway{
		OperatorStake:  operator,
		DelegatedStake: delegated,
		Vaults:         []state.Vault{{Balance: operator, Start: 1}},
		Status:         state.GatewayStatusJoined,
		Start:          1,
	}
}

func TestQueryBalance(t *testing.T) {
	sp := newTestProcessor()
	out, err := sp.Query(QueryBalance, json.RawMessage(`{"target":"alice-address"}`))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	view := out.(BalanceView)
	if view.Balance != 1_000 {
		t.Fatalf("balance = %d, want 1000", view.Balance)
	}

	// An address with no ledger entry reads as zero, not as an error.
	out, err = sp.Query(QueryBalance, json.RawMessage(`{"target":"nobody"}`))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if out.(BalanceView).Balance != 0 {
		t.Fatalf("balance = %d, want 0", out.(BalanceView).Balance)
	}
}

func TestQueryRecordMissing(t *testing.T) {
	sp := newTestProcessor()
	_, err := sp.Query(QueryRecord, json.RawMessage(`{"name":"ghost"}`))
	if !errors.Is(err, corerr.ErrNameDoesNotExist) {
		t.Fatalf("err = %v, want ErrNameDoesNotExist", err)
	}
}

func TestQueryRecordReturnsCopy(t *testing.T) {
	sp := newTestProcessor()
	sp.Ledger().Records["held"] = &state.Record{ContractTxID: txID, EndTimestamp: 99, TierID: "tier-basic"}

	out, err := sp.Query(QueryRecord, json.RawMessage(`{"name":"held"}`))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	record := out.(state.Record)
	record.EndTimestamp = 0
	if sp.Ledger().Records["held"].EndTimestamp != 99 {
		t.Fatal("query leaked a mutable reference")
	}
}

func TestQueryActiveTiers(t *testing.T) {
	sp := newTestProcessor()
	out, err := sp.Query(QueryActiveTiers, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	tiers := out.([]state.Tier)
	if len(tiers) != 1 || tiers[0].ID != "tier-basic" {
		t.Fatalf("tiers = %+v", tiers)
	}
}

func TestQueryGatewayReturnsCopy(t *testing.T) {
	sp := newTestProcessor()
	sp.Ledger().Gateways["op"] = gatewayWithStake(10_000, 0)

	out, err := sp.Query(QueryGateway, json.RawMessage(`{"target":"op"}`))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	gw := out.(state.Gateway)
	gw.Vaults[0].Balance = 0
	if sp.Ledger().Gateways["op"].Vaults[0].Balance != 10_000 {
		t.Fatal("query leaked a mutable reference")
	}

	if _, err := sp.Query(QueryGateway, json.RawMessage(`{"target":"missing"}`)); !errors.Is(err, corerr.ErrNotRegistered) {
		t.Fatalf("err = %v, want ErrNotRegistered", err)
	}
}

func TestQueryGatewayTotalStake(t *testing.T) {
	sp := newTestProcessor()
	sp.Ledger().Gateways["op"] = gatewayWithStake(10_000, 2_500)

	out, err := sp.Query(QueryGatewayTotalStake, json.RawMessage(`{"target":"op"}`))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if out.(uint64) != 12_500 {
		t.Fatalf("total stake = %d, want 12500", out)
	}
}

func TestQueryRankedGatewayRegistry(t *testing.T) {
	sp := newTestProcessor()
	sp.Ledger().Gateways["charlie"] = gatewayWithStake(8_000, 0)
	sp.Ledger().Gateways["beta"] = gatewayWithStake(9_000, 3_000)
	// charlie, delta and harry tie on total stake; order falls back to the address.
	sp.Ledger().Gateways["harry"] = gatewayWithStake(8_000, 0)
	sp.Ledger().Gateways["delta"] = gatewayWithStake(6_000, 2_000)

	out, err := sp.Query(QueryRankedGatewayRegistry, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	ranked := out.([]RankedGateway)
	wantOrder := []string{"beta", "charlie", "delta", "harry"}
	if len(ranked) != len(wantOrder) {
		t.Fatalf("len = %d", len(ranked))
	}
	for i, want := range wantOrder {
		if ranked[i].Operator != want {
			t.Fatalf("position %d = %q, want %q", i, ranked[i].Operator, want)
		}
	}
	if ranked[0].TotalStake != 12_000 {
		t.Fatalf("top stake = %d", ranked[0].TotalStake)
	}
}

func TestQuerySettings(t *testing.T) {
	sp := newTestProcessor()
	out, err := sp.Query(QuerySettings, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	settings := out.(state.NetworkSettings)
	if settings.MinNetworkJoinStake != state.DefaultNetworkSettings().MinNetworkJoinStake {
		t.Fatalf("settings = %+v", settings)
	}
}

func TestQueryUnknownKind(t *testing.T) {
	sp := newTestProcessor()
	if _, err := sp.Query("supply", nil); !errors.Is(err, corerr.ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
	if IsReadKind("balance") != true || IsReadKind("transfer") != false {
		t.Fatal("read kind classification wrong")
	}
}
