package registry

import (
	"fmt"

	corerr "arnsledger/core/errors"
	"arnsledger/core/state"
	"arnsledger/core/types"
)

// BuyRecordParams is the typed input of the buyRecord kind. Years and
// TierNumber default to 1 when omitted; an empty or "atomic" ContractTxID is
// replaced with the identifier of the transaction carrying the action.
type BuyRecordParams struct {
	Name         string `json:"name"`
	ContractTxID string `json:"contractTxId,omitempty"`
	Years        int    `json:"years,omitempty"`
	TierNumber   int    `json:"tierNumber,omitempty"`
}

// BuyResult reports the committed purchase for event emission.
type BuyResult struct {
	Fee          uint64
	TierID       string
	EndTimestamp uint64
}

// BuyRecord purchases (or re-purchases, once grace elapsed) a name lease.
func BuyRecord(ledger *state.Ledger, ctx types.ExecutionContext, params BuyRecordParams) (*BuyResult, error) {
	name := params.Name
	if !state.NamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", corerr.ErrInvalidName, name)
	}
	years := params.Years
	if years == 0 {
		years = 1
	}
	if years < state.MinLeaseYears || years > state.MaxLeaseYears {
		return nil, fmt.Errorf("%w: %d", corerr.ErrInvalidYears, years)
	}
	tierNumber := params.TierNumber
	if tierNumber == 0 {
		tierNumber = 1
	}
	tier, err := ledger.ActiveTier(tierNumber)
	if err != nil {
		return nil, err
	}

	contractTxID := params.ContractTxID
	if contractTxID == "" {
		contractTxID = state.AtomicTxID
	}
	if !state.ValidTxID(contractTxID) {
		return nil, fmt.Errorf("%w: contract tx id %q", corerr.ErrInvalidName, contractTxID)
	}
	if contractTxID == state.AtomicTxID {
		contractTxID = ctx.TxID
	}

	// Short names exist only through the reservation table; reserved names
	// are claimable by their target or by anyone once the window lapses.
	// Expiry releases the name regardless of who it was held for.
	if reservation, ok := ledger.Reserved[name]; ok {
		switch {
		case reservation.Target != "" && reservation.Target == ctx.Caller:
			delete(ledger.Reserved, name)
		case reservation.EndTimestamp != 0 && reservation.EndTimestamp <= ctx.Timestamp:
			delete(ledger.Reserved, name)
		default:
			return nil, fmt.Errorf("%w: %q", corerr.ErrNameReserved, name)
		}
	} else if len(name) < state.MinNameLength {
		return nil, fmt.Errorf("%w: %q shorter than %d characters", corerr.ErrNameReserved, name, state.MinNameLength)
	}

	if existing, ok := ledger.Records[name]; ok {
		if existing.EndTimestamp+state.GracePeriodSeconds > ctx.Timestamp {
			return nil, fmt.Errorf("%w: %q", corerr.ErrNameNotYetAvailable, name)
		}
		// Grace elapsed: the stale record is destroyed by the re-purchase.
		delete(ledger.Records, name)
	}

	baseFee, err := ledger.BaseFee(len(name))
	if err != nil {
		return nil, err
	}
	fee := RegistrationFee(baseFee, tier, uint64(years))
	if err := ledger.Debit(ctx.Caller, fee); err != nil {
		return nil, err
	}

	end := ctx.Timestamp + uint64(years)*state.SecondsInYear
	ledger.Records[name] = &state.Record{
		ContractTxID: contractTxID,
		EndTimestamp: end,
		TierID:       tier.ID,
	}
	return &BuyResult{Fee: fee, TierID: tier.ID, EndTimestamp: end}, nil
}

// ExtendRecordParams is the typed input of the extendRecord kind.
type ExtendRecordParams struct {
	Name  string `json:"name"`
	Years int    `json:"years"`
}

// ExtendResult reports the committed extension for event emission.
type ExtendResult struct {
	Fee          uint64
	EndTimestamp uint64
}

// ExtendRecord renews an expired lease during its grace period. Extension is
// a grace-period-only operation: a live lease cannot be renewed early, and a
// lease whose grace elapsed is gone for good.
func ExtendRecord(ledger *state.Ledger, ctx types.ExecutionContext, params ExtendRecordParams) (*ExtendResult, error) {
	record, ok := ledger.Records[params.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", corerr.ErrNameDoesNotExist, params.Name)
	}
	if params.Years < state.MinLeaseYears || params.Years > state.MaxLeaseYears {
		return nil, fmt.Errorf("%w: %d", corerr.ErrInvalidYears, params.Years)
	}
	if ctx.Timestamp < record.EndTimestamp {
		return nil, fmt.Errorf("%w: %q", corerr.ErrLeaseNotInGracePeriod, params.Name)
	}
	if ctx.Timestamp >= record.EndTimestamp+state.GracePeriodSeconds {
		return nil, fmt.Errorf("%w: %q", corerr.ErrLeaseExpired, params.Name)
	}
	tier, ok := ledger.TierByID(record.TierID)
	if !ok {
		return nil, fmt.Errorf("%w: tier %q", corerr.ErrInvalidTier, record.TierID)
	}
	baseFee, err := ledger.BaseFee(len(params.Name))
	if err != nil {
		return nil, err
	}
	fee := RenewalFee(baseFee, tier, uint64(params.Years))
	if err := ledger.Debit(ctx.Caller, fee); err != nil {
		return nil, err
	}
	record.EndTimestamp += uint64(params.Years) * state.SecondsInYear
	return &ExtendResult{Fee: fee, EndTimestamp: record.EndTimestamp}, nil
}

// UpgradeTierParams is the typed input of the upgradeTier kind.
type UpgradeTierParams struct {
	Name       string `json:"name"`
	TierNumber int    `json:"tierNumber"`
}

// UpgradeResult reports the committed upgrade for event emission.
type UpgradeResult struct {
	Fee    uint64
	TierID string
}

// UpgradeTier moves a record to a strictly more expensive active tier,
// charging the fee difference prorated over the remaining lease seconds.
func UpgradeTier(ledger *state.Ledger, ctx types.ExecutionContext, params UpgradeTierParams) (*UpgradeResult, error) {
	record, ok := ledger.Records[params.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", corerr.ErrNameDoesNotExist, params.Name)
	}
	if ctx.Timestamp >= record.EndTimestamp+state.GracePeriodSeconds {
		return nil, fmt.Errorf("%w: %q", corerr.ErrLeaseExpired, params.Name)
	}
	newTier, err := ledger.ActiveTier(params.TierNumber)
	if err != nil {
		return nil, err
	}
	currentTier, ok := ledger.TierByID(record.TierID)
	if !ok {
		return nil, fmt.Errorf("%w: tier %q", corerr.ErrInvalidTier, record.TierID)
	}
	if newTier.ID == currentTier.ID {
		return nil, corerr.ErrSameTier
	}
	if newTier.Fee <= currentTier.Fee {
		return nil, fmt.Errorf("%w: tier %q does not exceed current fee", corerr.ErrInvalidTier, newTier.ID)
	}
	var secondsRemaining uint64
	if record.EndTimestamp > ctx.Timestamp {
		secondsRemaining = record.EndTimestamp - ctx.Timestamp
	}
	fee := UpgradeFee(currentTier, newTier, secondsRemaining)
	if err := ledger.Debit(ctx.Caller, fee); err != nil {
		return nil, err
	}
	record.TierID = newTier.ID
	return &UpgradeResult{Fee: fee, TierID: newTier.ID}, nil
}
