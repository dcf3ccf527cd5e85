package events

import (
	"strconv"

	"arnsledger/core/types"
)

const (
	// TypeLeaseBought is emitted when a name record is purchased or
	// re-purchased after its grace period elapsed.
	TypeLeaseBought = "registry.lease.bought"
	// TypeLeaseExtended is emitted for in-grace lease extensions.
	TypeLeaseExtended = "registry.lease.extended"
	// TypeLeaseUpgraded is emitted when a record moves to a higher tier.
	TypeLeaseUpgraded = "registry.lease.upgraded"
)

type LeaseBought struct {
	Name         string
	Buyer        string
	Fee          uint64
	TierID       string
	EndTimestamp uint64
}

func (LeaseBought) EventType() string { return TypeLeaseBought }

func (e LeaseBought) Event() *types.Event {
	return &types.Event{Type: TypeLeaseBought, Attributes: map[string]string{
		"name":         e.Name,
		"buyer":        e.Buyer,
		"fee":          strconv.FormatUint(e.Fee, 10),
		"tier":         e.TierID,
		"endTimestamp": strconv.FormatUint(e.EndTimestamp, 10),
	}}
}

type LeaseExtended struct {
	Name         string
	Caller       string
	Fee          uint64
	Years        int
	EndTimestamp uint64
}

func (LeaseExtended) EventType() string { return TypeLeaseExtended }

func (e LeaseExtended) Event() *types.Event {
	return &types.Event{Type: TypeLeaseExtended, Attributes: map[string]string{
		"name":         e.Name,
		"caller":       e.Caller,
		"fee":          strconv.FormatUint(e.Fee, 10),
		"years":        strconv.Itoa(e.Years),
		"endTimestamp": strconv.FormatUint(e.EndTimestamp, 10),
	}}
}

type LeaseUpgraded struct {
	Name   string
	Caller string
	Fee    uint64
	TierID string
}

func (LeaseUpgraded) EventType() string { return TypeLeaseUpgraded }

func (e LeaseUpgraded) Event() *types.Event {
	return &types.Event{Type: TypeLeaseUpgraded, Attributes: map[string]string{
		"name":   e.Name,
		"caller": e.Caller,
		"fee":    strconv.FormatUint(e.Fee, 10),
		"tier":   e.TierID,
	}}
}
