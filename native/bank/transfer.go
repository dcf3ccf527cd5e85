// Package bank implements the token transfer family.
package bank

import (
	"fmt"

	corerr "arnsledger/core/errors"
	"arnsledger/core/state"
	"arnsledger/core/types"
)

// TransferParams is the typed input of the transfer kind.
type TransferParams struct {
	Target string `json:"target"`
	Qty    uint64 `json:"qty"`
}

// Transfer moves Qty tokens from the caller to the target, creating the
// target balance entry when absent. Supply is conserved.
func Transfer(ledger *state.Ledger, ctx types.ExecutionContext, params TransferParams) error {
	if params.Qty == 0 {
		return corerr.ErrInvalidQuantity
	}
	if params.Target == "" || params.Target == ctx.Caller {
		return fmt.Errorf("%w: %q", corerr.ErrInvalidTarget, params.Target)
	}
	if err := ledger.Debit(ctx.Caller, params.Qty); err != nil {
		return err
	}
	ledger.Credit(params.Target, params.Qty)
	return nil
}
