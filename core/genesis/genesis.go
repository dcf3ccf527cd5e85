// Package genesis loads the initial ledger from a JSON document and checks
// the structural invariants every later transition relies on.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"

	"arnsledger/core/state"
)

// LoadFile reads and validates an initial ledger from path.
func LoadFile(path string) (*state.Ledger, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genesis: read %s: %w", path, err)
	}
	return Load(raw)
}

// Load decodes and validates an initial ledger document.
func Load(raw []byte) (*state.Ledger, error) {
	ledger := state.NewLedger()
	if err := json.Unmarshal(raw, ledger); err != nil {
		return nil, fmt.Errorf("genesis: decode: %w", err)
	}
	applyDefaults(ledger)
	if err := Validate(ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

func applyDefaults(ledger *state.Ledger) {
	if ledger.Balances == nil {
		ledger.Balances = make(map[string]uint64)
	}
	if ledger.Records == nil {
		ledger.Records = make(map[string]*state.Record)
	}
	if ledger.Reserved == nil {
		ledger.Reserved = make(map[string]*state.ReservedName)
	}
	if ledger.Fees == nil {
		ledger.Fees = make(map[int]uint64)
	}
	if ledger.Gateways == nil {
		ledger.Gateways = make(map[string]*state.Gateway)
	}
	defaults := state.DefaultNetworkSettings()
	if ledger.Settings == (state.NetworkSettings{}) {
		ledger.Settings = defaults
	}
	if ledger.Foundation.ActionPeriod == 0 {
		ledger.Foundation.ActionPeriod = 720
	}
	if ledger.Foundation.MinSignatures == 0 && len(ledger.Foundation.Addresses) > 0 {
		ledger.Foundation.MinSignatures = 1
	}
}

// Validate checks the cross-entity invariants of a ledger document.
func Validate(ledger *state.Ledger) error {
	if ledger.Foundation.MinSignatures > len(ledger.Foundation.Addresses) {
		return fmt.Errorf("genesis: minSignatures %d exceeds %d foundation addresses",
			ledger.Foundation.MinSignatures, len(ledger.Foundation.Addresses))
	}
	seen := make(map[string]struct{}, len(ledger.Tiers.History))
	for _, tier := range ledger.Tiers.History {
		if tier.ID == "" {
			return fmt.Errorf("genesis: tier with empty id in history")
		}
		if _, dup := seen[tier.ID]; dup {
			return fmt.Errorf("genesis: duplicate tier id %q", tier.ID)
		}
		seen[tier.ID] = struct{}{}
	}
	if len(ledger.Tiers.Current) > state.MaxActiveTiers {
		return fmt.Errorf("genesis: %d active tiers exceeds %d", len(ledger.Tiers.Current), state.MaxActiveTiers)
	}
	for _, id := range ledger.Tiers.Current {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("genesis: active tier %q missing from history", id)
		}
	}
	for name, record := range ledger.Records {
		if _, ok := seen[record.TierID]; !ok {
			return fmt.Errorf("genesis: record %q references unknown tier %q", name, record.TierID)
		}
	}
	for length, fee := range ledger.Fees {
		if length < 1 || length > state.MaxNameLength {
			return fmt.Errorf("genesis: fee table length %d out of range", length)
		}
		if fee == 0 {
			return fmt.Errorf("genesis: zero base fee for length %d", length)
		}
	}
	return nil
}
