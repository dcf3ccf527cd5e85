// Package registry implements the name-lease lifecycle: purchase, in-grace
// extension, and tier upgrades, together with the fee arithmetic tying them
// to the ledger's fee table and tier registry.
package registry

import (
	"arnsledger/core/state"
)

// RenewalFee is the per-lease annual charge: one tenth of the base fee plus
// the tier fee, per year. Integer floor division pins the rounding rule so
// replay is byte-identical across platforms.
func RenewalFee(baseFee uint64, tier state.Tier, years uint64) uint64 {
	return (baseFee/state.AnnualFeeDivisor + tier.Fee) * years
}

// RegistrationFee is the full purchase price of a name: the length-indexed
// base fee plus the renewal fee for the requested duration.
func RegistrationFee(baseFee uint64, tier state.Tier, years uint64) uint64 {
	return baseFee + RenewalFee(baseFee, tier, years)
}

// UpgradeFee prorates the fee difference between two tiers over the seconds
// remaining on the lease.
func UpgradeFee(oldTier, newTier state.Tier, secondsRemaining uint64) uint64 {
	if newTier.Fee <= oldTier.Fee {
		return 0
	}
	return (newTier.Fee - oldTier.Fee) * secondsRemaining / state.SecondsInYear
}
