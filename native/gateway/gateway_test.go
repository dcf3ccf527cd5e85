package gateway

import (
	"errors"
	"testing"

	corerr "arnsledger/core/errors"
	"arnsledger/core/state"
	"arnsledger/core/types"
)

const (
	operator = "operator-address"
	delegate = "ZdGk8mPq3wVt5nK2bYcL7xFhJ4gT6uA1eW0oI9pSrQ_"
)

func testLedger() *state.Ledger {
	ledger := state.NewLedger()
	ledger.Balances[operator] = 100_000
	ledger.Balances[delegate] = 10_000
	return ledger
}

func joinParams() JoinNetworkParams {
	return JoinNetworkParams{
		Qty:      10_000,
		Label:    "test-gateway",
		FQDN:     "gateway.example.com",
		Port:     443,
		Protocol: "https",
	}
}

func mustJoin(t *testing.T, ledger *state.Ledger, height uint64) {
	t.Helper()
	ctx := types.ExecutionContext{Caller: operator, Height: height}
	if err := JoinNetwork(ledger, ctx, joinParams()); err != nil {
		t.Fatalf("join failed: %v", err)
	}
}

func TestJoinNetwork(t *testing.T) {
	ledger := testLedger()
	mustJoin(t, ledger, 100)

	gw := ledger.Gateways[operator]
	if gw == nil {
		t.Fatal("gateway not created")
	}
	if gw.OperatorStake != 10_000 {
		t.Fatalf("operatorStake = %d, want 10000", gw.OperatorStake)
	}
	if len(gw.Vaults) != 1 || gw.Vaults[0].Balance != 10_000 || gw.Vaults[0].Start != 100 || gw.Vaults[0].End != 0 {
		t.Fatalf("join vault = %+v", gw.Vaults)
	}
	if gw.Status != state.GatewayStatusJoined {
		t.Fatalf("status = %q", gw.Status)
	}
	if got := ledger.Balances[operator]; got != 90_000 {
		t.Fatalf("balance = %d, want 90000", got)
	}
}

func TestJoinNetworkRejections(t *testing.T) {
	ledger := testLedger()
	ctx := types.ExecutionContext{Caller: operator, Height: 100}

	low := joinParams()
	low.Qty = ledger.Settings.MinNetworkJoinStake - 1
	if err := JoinNetwork(ledger, ctx, low); !errors.Is(err, corerr.ErrBelowMinimumStake) {
		t.Fatalf("err = %v, want ErrBelowMinimumStake", err)
	}

	badPort := joinParams()
	badPort.Port = 70_000
	if err := JoinNetwork(ledger, ctx, badPort); !errors.Is(err, corerr.ErrInvalidGatewaySettings) {
		t.Fatalf("port: err = %v", err)
	}

	badProto := joinParams()
	badProto.Protocol = "gopher"
	if err := JoinNetwork(ledger, ctx, badProto); !errors.Is(err, corerr.ErrInvalidGatewaySettings) {
		t.Fatalf("protocol: err = %v", err)
	}

	badFQDN := joinParams()
	badFQDN.FQDN = "not a domain"
	if err := JoinNetwork(ledger, ctx, badFQDN); !errors.Is(err, corerr.ErrInvalidGatewaySettings) {
		t.Fatalf("fqdn: err = %v", err)
	}

	mustJoin(t, ledger, 100)
	if err := JoinNetwork(ledger, ctx, joinParams()); !errors.Is(err, corerr.ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestIncreaseOperatorStake(t *testing.T) {
	ledger := testLedger()
	mustJoin(t, ledger, 100)
	ctx := types.ExecutionContext{Caller: operator, Height: 150}
	if err := IncreaseOperatorStake(ledger, ctx, IncreaseOperatorStakeParams{Qty: 2_000}); err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	gw := ledger.Gateways[operator]
	if gw.OperatorStake != 12_000 {
		t.Fatalf("operatorStake = %d, want 12000", gw.OperatorStake)
	}
	if len(gw.Vaults) != 2 || gw.Vaults[1].Balance != 2_000 || gw.Vaults[1].Start != 150 {
		t.Fatalf("vaults = %+v", gw.Vaults)
	}
}

func TestStakeDecreaseLifecycle(t *testing.T) {
	ledger := testLedger()
	mustJoin(t, ledger, 100)
	ctx := types.ExecutionContext{Caller: operator, Height: 150}
	if err := IncreaseOperatorStake(ledger, ctx, IncreaseOperatorStakeParams{Qty: 2_000}); err != nil {
		t.Fatalf("increase failed: %v", err)
	}

	// Releasing the join vault would drop the stake below the minimum.
	ctx.Height = 200
	if _, err := InitiateOperatorStakeDecrease(ledger, ctx, InitiateDecreaseParams{VaultIndex: 0}); !errors.Is(err, corerr.ErrBelowMinimumStake) {
		t.Fatalf("err = %v, want ErrBelowMinimumStake", err)
	}

	// The second vault is still inside its minimum lock.
	ctx.Height = 150 + ledger.Settings.MinLockLength - 1
	if _, err := InitiateOperatorStakeDecrease(ledger, ctx, InitiateDecreaseParams{VaultIndex: 1}); !errors.Is(err, corerr.ErrLockNotElapsed) {
		t.Fatalf("err = %v, want ErrLockNotElapsed", err)
	}

	ctx.Height = 200
	res, err := InitiateOperatorStakeDecrease(ledger, ctx, InitiateDecreaseParams{VaultIndex: 1})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if res.ReleaseAt != 200+ledger.Settings.OperatorStakeWithdrawLength {
		t.Fatalf("releaseAt = %d", res.ReleaseAt)
	}
	if _, err := InitiateOperatorStakeDecrease(ledger, ctx, InitiateDecreaseParams{VaultIndex: 1}); !errors.Is(err, corerr.ErrAlreadyScheduled) {
		t.Fatalf("err = %v, want ErrAlreadyScheduled", err)
	}

	// Finalizing before the release height moves nothing.
	balanceBefore := ledger.Balances[operator]
	early := types.ExecutionContext{Caller: "anyone", Height: res.ReleaseAt - 1}
	out, err := FinalizeOperatorStakeDecrease(ledger, early, FinalizeDecreaseParams{Target: operator})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if out.Amount != 0 || ledger.Balances[operator] != balanceBefore {
		t.Fatalf("early finalize released %d", out.Amount)
	}

	due := types.ExecutionContext{Caller: "anyone", Height: res.ReleaseAt}
	out, err = FinalizeOperatorStakeDecrease(ledger, due, FinalizeDecreaseParams{Target: operator})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if out.Amount != 2_000 || out.Vaults != 1 {
		t.Fatalf("released %d from %d vaults", out.Amount, out.Vaults)
	}
	gw := ledger.Gateways[operator]
	if gw.OperatorStake != 10_000 || len(gw.Vaults) != 1 {
		t.Fatalf("post-release gateway: stake=%d vaults=%d", gw.OperatorStake, len(gw.Vaults))
	}
	if got := ledger.Balances[operator]; got != balanceBefore+2_000 {
		t.Fatalf("balance = %d, want %d", got, balanceBefore+2_000)
	}
}

func TestDelegateStake(t *testing.T) {
	ledger := testLedger()
	mustJoin(t, ledger, 100)
	ctx := types.ExecutionContext{Caller: delegate, Height: 120}

	if err := DelegateStake(ledger, ctx, DelegateStakeParams{Target: operator, Qty: 500}); !errors.Is(err, corerr.ErrDelegationClosed) {
		t.Fatalf("err = %v, want ErrDelegationClosed", err)
	}

	ledger.Gateways[operator].Settings.OpenDelegation = true
	if err := DelegateStake(ledger, ctx, DelegateStakeParams{Target: operator, Qty: 500}); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}
	gw := ledger.Gateways[operator]
	if gw.DelegatedStake != 500 {
		t.Fatalf("delegatedStake = %d", gw.DelegatedStake)
	}
	if vaults := gw.Delegates[delegate]; len(vaults) != 1 || vaults[0].Balance != 500 {
		t.Fatalf("delegate vaults = %+v", vaults)
	}
	if gw.TotalStake() != 10_500 {
		t.Fatalf("totalStake = %d", gw.TotalStake())
	}
}

func TestInitiateLeaveTooRecent(t *testing.T) {
	ledger := testLedger()
	mustJoin(t, ledger, 100)
	ctx := types.ExecutionContext{Caller: operator, Height: 100 + ledger.Settings.MinGatewayJoinLength - 1}
	if _, err := InitiateLeave(ledger, ctx); !errors.Is(err, corerr.ErrJoinTooRecent) {
		t.Fatalf("err = %v, want ErrJoinTooRecent", err)
	}
}

func TestLeaveLifecycle(t *testing.T) {
	ledger := testLedger()
	mustJoin(t, ledger, 100)
	ledger.Gateways[operator].Settings.OpenDelegation = true
	if err := DelegateStake(ledger, types.ExecutionContext{Caller: delegate, Height: 110}, DelegateStakeParams{Target: operator, Qty: 500}); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}

	ctx := types.ExecutionContext{Caller: operator, Height: 1_000}
	res, err := InitiateLeave(ledger, ctx)
	if err != nil {
		t.Fatalf("initiate leave failed: %v", err)
	}
	wantLeave := uint64(1_000) + ledger.Settings.GatewayLeaveLength
	if res.LeaveHeight != wantLeave {
		t.Fatalf("leaveHeight = %d, want %d", res.LeaveHeight, wantLeave)
	}
	gw := ledger.Gateways[operator]
	if gw.Status != state.GatewayStatusLeaving || gw.End != wantLeave {
		t.Fatalf("gateway after initiate: %+v", gw)
	}
	if gw.Vaults[0].End != wantLeave {
		t.Fatalf("vault end not capped: %d", gw.Vaults[0].End)
	}
	if gw.Delegates[delegate][0].End != wantLeave {
		t.Fatalf("delegate vault end not capped")
	}

	if _, err := InitiateLeave(ledger, ctx); !errors.Is(err, corerr.ErrGatewayLeaving) {
		t.Fatalf("err = %v, want ErrGatewayLeaving", err)
	}
	if err := IncreaseOperatorStake(ledger, ctx, IncreaseOperatorStakeParams{Qty: 1_000}); !errors.Is(err, corerr.ErrGatewayLeaving) {
		t.Fatalf("increase while leaving: err = %v", err)
	}

	early := types.ExecutionContext{Caller: "anyone", Height: wantLeave - 1}
	if _, err := FinalizeLeave(ledger, early, FinalizeLeaveParams{Target: operator}); !errors.Is(err, corerr.ErrNotYetEligibleToLeave) {
		t.Fatalf("err = %v, want ErrNotYetEligibleToLeave", err)
	}

	operatorBefore := ledger.Balances[operator]
	delegateBefore := ledger.Balances[delegate]
	done := types.ExecutionContext{Caller: "anyone", Height: wantLeave}
	out, err := FinalizeLeave(ledger, done, FinalizeLeaveParams{Target: operator})
	if err != nil {
		t.Fatalf("finalize leave failed: %v", err)
	}
	if out.Returned != 10_000 {
		t.Fatalf("returned = %d, want 10000", out.Returned)
	}
	if got := ledger.Balances[operator]; got != operatorBefore+10_000 {
		t.Fatalf("operator balance = %d", got)
	}
	// Delegate payouts accumulate into the existing balance.
	if got := ledger.Balances[delegate]; got != delegateBefore+500 {
		t.Fatalf("delegate balance = %d, want %d", got, delegateBefore+500)
	}
	if _, still := ledger.Gateways[operator]; still {
		t.Fatal("gateway entry not removed")
	}
}

func TestUpdateSettings(t *testing.T) {
	ledger := testLedger()
	mustJoin(t, ledger, 100)
	ctx := types.ExecutionContext{Caller: operator, Height: 200}

	label := "renamed"
	open := true
	if err := UpdateSettings(ledger, ctx, UpdateSettingsParams{Label: &label, OpenDelegation: &open}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	gw := ledger.Gateways[operator]
	if gw.Settings.Label != "renamed" || !gw.Settings.OpenDelegation {
		t.Fatalf("settings = %+v", gw.Settings)
	}
	// Untouched fields survive.
	if gw.Settings.FQDN != "gateway.example.com" || gw.Settings.Port != 443 {
		t.Fatalf("settings clobbered: %+v", gw.Settings)
	}

	badPort := uint64(0)
	if err := UpdateSettings(ledger, ctx, UpdateSettingsParams{Port: &badPort}); !errors.Is(err, corerr.ErrInvalidGatewaySettings) {
		t.Fatalf("err = %v, want ErrInvalidGatewaySettings", err)
	}
	if gw.Settings.Port != 443 {
		t.Fatal("rejected update mutated settings")
	}
}
