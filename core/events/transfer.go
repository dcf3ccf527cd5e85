package events

import (
	"strconv"

	"arnsledger/core/types"
)

const (
	// TypeTransfer is emitted for token balance movements between accounts.
	TypeTransfer = "bank.transfer"
)

type Transfer struct {
	From   string
	To     string
	Amount uint64
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	return &types.Event{Type: TypeTransfer, Attributes: map[string]string{
		"from":   e.From,
		"to":     e.To,
		"amount": strconv.FormatUint(e.Amount, 10),
	}}
}
