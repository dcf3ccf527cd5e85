package core

import (
	"encoding/json"
	"fmt"
	"sort"

	corerr "arnsledger/core/errors"
	"arnsledger/core/state"
)

// Read kinds recognized by the dispatcher. Reads derive a view from the
// committed ledger without mutating it; every returned value is a copy.
const (
	QueryBalance               = "balance"
	QueryRecord                = "record"
	QueryTier                  = "tier"
	QueryActiveTiers           = "activeTiers"
	QueryGateway               = "gateway"
	QueryGatewayTotalStake     = "gatewayTotalStake"
	QueryGatewayRegistry       = "gatewayRegistry"
	QueryRankedGatewayRegistry = "rankedGatewayRegistry"
	QuerySettings              = "settings"
)

// IsReadKind reports whether kind names a read operation.
func IsReadKind(kind string) bool {
	switch kind {
	case QueryBalance, QueryRecord, QueryTier, QueryActiveTiers, QueryGateway,
		QueryGatewayTotalStake, QueryGatewayRegistry, QueryRankedGatewayRegistry,
		QuerySettings:
		return true
	default:
		return false
	}
}

// BalanceView is the response of the balance read.
type BalanceView struct {
	Target  string `json:"target"`
	Balance uint64 `json:"balance"`
}

// RankedGateway pairs an operator with its total stake for the ranked
// registry view.
type RankedGateway struct {
	Operator   string        `json:"operator"`
	TotalStake uint64        `json:"totalStake"`
	Gateway    state.Gateway `json:"gateway"`
}

// Query resolves a read kind against the committed ledger.
func (sp *StateProcessor) Query(kind string, raw json.RawMessage) (any, error) {
	ledger := sp.ledger
	switch kind {
	case QueryBalance:
		var params struct {
			Target string `json:"target"`
		}
		if err := decode(raw, &params); err != nil {
			return nil, err
		}
		return BalanceView{Target: params.Target, Balance: ledger.Balances[params.Target]}, nil

	case QueryRecord:
		var params struct {
			Name string `json:"name"`
		}
		if err := decode(raw, &params); err != nil {
			return nil, err
		}
		record, ok := ledger.Records[params.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", corerr.ErrNameDoesNotExist, params.Name)
		}
		return *record, nil

	case QueryTier:
		var params struct {
			ID string `json:"id"`
		}
		if err := decode(raw, &params); err != nil {
			return nil, err
		}
		tier, ok := ledger.TierByID(params.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", corerr.ErrInvalidTier, params.ID)
		}
		return tier, nil

	case QueryActiveTiers:
		tiers := make([]state.Tier, 0, len(ledger.Tiers.Current))
		for _, id := range ledger.Tiers.Current {
			if tier, ok := ledger.TierByID(id); ok {
				tiers = append(tiers, tier)
			}
		}
		return tiers, nil

	case QueryGateway:
		var params struct {
			Target string `json:"target"`
		}
		if err := decode(raw, &params); err != nil {
			return nil, err
		}
		gw, ok := ledger.Gateways[params.Target]
		if !ok {
			return nil, fmt.Errorf("%w: %s", corerr.ErrNotRegistered, params.Target)
		}
		return *gw.Clone(), nil

	case QueryGatewayTotalStake:
		var params struct {
			Target string `json:"target"`
		}
		if err := decode(raw, &params); err != nil {
			return nil, err
		}
		gw, ok := ledger.Gateways[params.Target]
		if !ok {
			return nil, fmt.Errorf("%w: %s", corerr.ErrNotRegistered, params.Target)
		}
		return gw.TotalStake(), nil

	case QueryGatewayRegistry:
		registry := make(map[string]state.Gateway, len(ledger.Gateways))
		for addr, gw := range ledger.Gateways {
			registry[addr] = *gw.Clone()
		}
		return registry, nil

	case QueryRankedGatewayRegistry:
		ranked := make([]RankedGateway, 0, len(ledger.Gateways))
		for addr, gw := range ledger.Gateways {
			ranked = append(ranked, RankedGateway{
				Operator:   addr,
				TotalStake: gw.TotalStake(),
				Gateway:    *gw.Clone(),
			})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].TotalStake != ranked[j].TotalStake {
				return ranked[i].TotalStake > ranked[j].TotalStake
			}
			return ranked[i].Operator < ranked[j].Operator
		})
		return ranked, nil

	case QuerySettings:
		return ledger.Settings, nil

	default:
		return nil, fmt.Errorf("%w: %q", corerr.ErrUnknownAction, kind)
	}
}
