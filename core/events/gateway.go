package events

import (
	"strconv"

	"arnsledger/core/types"
)

const (
	TypeGatewayJoined          = "gateway.joined"
	TypeGatewayStakeIncreased  = "gateway.stake.increased"
	TypeGatewayStakeScheduled  = "gateway.stake.scheduled"
	TypeGatewayStakeReleased   = "gateway.stake.released"
	TypeGatewayDelegated       = "gateway.stake.delegated"
	TypeGatewayLeaving         = "gateway.leaving"
	TypeGatewayLeft            = "gateway.left"
	TypeGatewaySettingsUpdated = "gateway.settings.updated"
)

type GatewayJoined struct {
	Operator string
	Stake    uint64
}

func (GatewayJoined) EventType() string { return TypeGatewayJoined }

func (e GatewayJoined) Event() *types.Event {
	return &types.Event{Type: TypeGatewayJoined, Attributes: map[string]string{
		"operator": e.Operator,
		"stake":    strconv.FormatUint(e.Stake, 10),
	}}
}

type GatewayStakeIncreased struct {
	Operator string
	Amount   uint64
}

func (GatewayStakeIncreased) EventType() string { return TypeGatewayStakeIncreased }

func (e GatewayStakeIncreased) Event() *types.Event {
	return &types.Event{Type: TypeGatewayStakeIncreased, Attributes: map[string]string{
		"operator": e.Operator,
		"amount":   strconv.FormatUint(e.Amount, 10),
	}}
}

type GatewayStakeScheduled struct {
	Operator   string
	VaultIndex int
	ReleaseAt  uint64
}

func (GatewayStakeScheduled) EventType() string { return TypeGatewayStakeScheduled }

func (e GatewayStakeScheduled) Event() *types.Event {
	return &types.Event{Type: TypeGatewayStakeScheduled, Attributes: map[string]string{
		"operator":  e.Operator,
		"vault":     strconv.Itoa(e.VaultIndex),
		"releaseAt": strconv.FormatUint(e.ReleaseAt, 10),
	}}
}

type GatewayStakeReleased struct {
	Operator string
	Amount   uint64
	Vaults   int
}

func (GatewayStakeReleased) EventType() string { return TypeGatewayStakeReleased }

func (e GatewayStakeReleased) Event() *types.Event {
	return &types.Event{Type: TypeGatewayStakeReleased, Attributes: map[string]string{
		"operator": e.Operator,
		"amount":   strconv.FormatUint(e.Amount, 10),
		"vaults":   strconv.Itoa(e.Vaults),
	}}
}

type GatewayDelegated struct {
	Operator string
	Delegate string
	Amount   uint64
}

func (GatewayDelegated) EventType() string { return TypeGatewayDelegated }

func (e GatewayDelegated) Event() *types.Event {
	return &types.Event{Type: TypeGatewayDelegated, Attributes: map[string]string{
		"operator": e.Operator,
		"delegate": e.Delegate,
		"amount":   strconv.FormatUint(e.Amount, 10),
	}}
}

type GatewayLeaving struct {
	Operator    string
	LeaveHeight uint64
}

func (GatewayLeaving) EventType() string { return TypeGatewayLeaving }

func (e GatewayLeaving) Event() *types.Event {
	return &types.Event{Type: TypeGatewayLeaving, Attributes: map[string]string{
		"operator":    e.Operator,
		"leaveHeight": strconv.FormatUint(e.LeaveHeight, 10),
	}}
}

type GatewayLeft struct {
	Operator string
	Returned uint64
}

func (GatewayLeft) EventType() string { return TypeGatewayLeft }

func (e GatewayLeft) Event() *types.Event {
	return &types.Event{Type: TypeGatewayLeft, Attributes: map[string]string{
		"operator": e.Operator,
		"returned": strconv.FormatUint(e.Returned, 10),
	}}
}

type GatewaySettingsUpdated struct {
	Operator string
}

func (GatewaySettingsUpdated) EventType() string { return TypeGatewaySettingsUpdated }

func (e GatewaySettingsUpdated) Event() *types.Event {
	return &types.Event{Type: TypeGatewaySettingsUpdated, Attributes: map[string]string{
		"operator": e.Operator,
	}}
}
