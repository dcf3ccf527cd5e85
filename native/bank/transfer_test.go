package bank

import (
	"errors"
	"testing"

	corerr "arnsledger/core/errors"
	"arnsledger/core/state"
	"arnsledger/core/types"
)

func testLedger() *state.Ledger {
	ledger := state.NewLedger()
	ledger.Balances["alice-address"] = 1_000
	ledger.Balances["bob-address"] = 50
	return ledger
}

func TestTransferMovesFunds(t *testing.T) {
	ledger := testLedger()
	ctx := types.ExecutionContext{Caller: "alice-address"}
	if err := Transfer(ledger, ctx, TransferParams{Target: "bob-address", Qty: 400}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if got := ledger.Balances["alice-address"]; got != 600 {
		t.Fatalf("sender balance = %d, want 600", got)
	}
	if got := ledger.Balances["bob-address"]; got != 450 {
		t.Fatalf("target balance = %d, want 450", got)
	}
}

func TestTransferCreatesTargetEntry(t *testing.T) {
	ledger := testLedger()
	ctx := types.ExecutionContext{Caller: "alice-address"}
	if err := Transfer(ledger, ctx, TransferParams{Target: "carol-address", Qty: 10}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if got := ledger.Balances["carol-address"]; got != 10 {
		t.Fatalf("new target balance = %d, want 10", got)
	}
}

func TestTransferConservesSupply(t *testing.T) {
	ledger := testLedger()
	before := ledger.TotalSupply()
	ctx := types.ExecutionContext{Caller: "alice-address"}
	if err := Transfer(ledger, ctx, TransferParams{Target: "bob-address", Qty: 999}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if after := ledger.TotalSupply(); after != before {
		t.Fatalf("supply changed: %d -> %d", before, after)
	}
}

func TestTransferRejections(t *testing.T) {
	cases := []struct {
		name   string
		caller string
		params TransferParams
		want   error
	}{
		{"zero quantity", "alice-address", TransferParams{Target: "bob-address", Qty: 0}, corerr.ErrInvalidQuantity},
		{"self transfer", "alice-address", TransferParams{Target: "alice-address", Qty: 5}, corerr.ErrInvalidTarget},
		{"empty target", "alice-address", TransferParams{Target: "", Qty: 5}, corerr.ErrInvalidTarget},
		{"insufficient funds", "bob-address", TransferParams{Target: "alice-address", Qty: 51}, corerr.ErrInsufficientFunds},
		{"unknown caller", "nobody", TransferParams{Target: "alice-address", Qty: 5}, corerr.ErrUndefinedBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := testLedger()
			err := Transfer(ledger, types.ExecutionContext{Caller: tc.caller}, tc.params)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if got := ledger.Balances["alice-address"]; got != 1_000 {
				t.Fatalf("sender balance mutated on rejection: %d", got)
			}
		})
	}
}
