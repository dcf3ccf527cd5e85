// Package gateway implements the staking lifecycle of network gateways:
// joining, operator stake adjustments through time-locked vaults, delegated
// stake, and the two-phase leave flow. All lifecycle arithmetic is driven by
// block heights supplied in the execution context.
package gateway

import (
	"fmt"

	corerr "arnsledger/core/errors"
	"arnsledger/core/state"
	"arnsledger/core/types"
)

// JoinNetworkParams is the typed input of the joinNetwork kind.
type JoinNetworkParams struct {
	Qty               uint64   `json:"qty"`
	Label             string   `json:"label"`
	FQDN              string   `json:"fqdn"`
	Port              uint64   `json:"port"`
	Protocol          string   `json:"protocol"`
	OpenDelegation    bool     `json:"openDelegation,omitempty"`
	DelegateAllowList []string `json:"delegateAllowList,omitempty"`
	Note              string   `json:"note,omitempty"`
}

func validateSettings(ledger *state.Ledger, s state.GatewaySettings) error {
	if s.Label == "" || len(s.Label) > state.MaxGatewayLabelLength {
		return fmt.Errorf("%w: label %q", corerr.ErrInvalidGatewaySettings, s.Label)
	}
	if s.Port == 0 || s.Port > state.MaxPortNumber {
		return fmt.Errorf("%w: port %d", corerr.ErrInvalidGatewaySettings, s.Port)
	}
	valid := false
	for _, p := range state.ValidProtocols {
		if s.Protocol == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: protocol %q", corerr.ErrInvalidGatewaySettings, s.Protocol)
	}
	if !state.FQDNPattern.MatchString(s.FQDN) {
		return fmt.Errorf("%w: fqdn %q", corerr.ErrInvalidGatewaySettings, s.FQDN)
	}
	if uint64(len(s.DelegateAllowList)) > ledger.Settings.MaxDelegates {
		return fmt.Errorf("%w: allow list exceeds %d entries", corerr.ErrInvalidGatewaySettings, ledger.Settings.MaxDelegates)
	}
	for _, addr := range s.DelegateAllowList {
		if !state.TxIDPattern.MatchString(addr) {
			return fmt.Errorf("%w: delegate address %q", corerr.ErrInvalidGatewaySettings, addr)
		}
	}
	if len(s.Note) > state.MaxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", corerr.ErrInvalidGatewaySettings, state.MaxNoteLength)
	}
	return nil
}

// JoinNetwork registers the caller as a gateway, locking the joining stake
// into an open-ended vault.
func JoinNetwork(ledger *state.Ledger, ctx types.ExecutionContext, params JoinNetworkParams) error {
	if _, ok := ledger.Gateways[ctx.Caller]; ok {
		return fmt.Errorf("%w: %s", corerr.ErrAlreadyRegistered, ctx.Caller)
	}
	if params.Qty < ledger.Settings.MinNetworkJoinStake {
		return fmt.Errorf("%w: %d < %d", corerr.ErrBelowMinimumStake, params.Qty, ledger.Settings.MinNetworkJoinStake)
	}
	settings := state.GatewaySettings{
		Label:             params.Label,
		FQDN:              params.FQDN,
		Port:              params.Port,
		Protocol:          params.Protocol,
		OpenDelegation:    params.OpenDelegation,
		DelegateAllowList: append([]string(nil), params.DelegateAllowList...),
		Note:              params.Note,
	}
	if err := validateSettings(ledger, settings); err != nil {
		return err
	}
	if err := ledger.Debit(ctx.Caller, params.Qty); err != nil {
		return err
	}
	ledger.Gateways[ctx.Caller] = &state.Gateway{
		OperatorStake: params.Qty,
		Vaults:        []state.Vault{{Balance: params.Qty, Start: ctx.Height, End: 0}},
		Delegates:     make(map[string][]state.Vault),
		Settings:      settings,
		Status:        state.GatewayStatusJoined,
		Start:         ctx.Height,
	}
	return nil
}

// IncreaseOperatorStakeParams is the typed input of the increaseOperatorStake kind.
type IncreaseOperatorStakeParams struct {
	Qty uint64 `json:"qty"`
}

// IncreaseOperatorStake locks additional operator stake into a fresh vault.
func IncreaseOperatorStake(ledger *state.Ledger, ctx types.ExecutionContext, params IncreaseOperatorStakeParams) error {
	gw, ok := ledger.Gateways[ctx.Caller]
	if !ok {
		return fmt.Errorf("%w: %s", corerr.ErrNotRegistered, ctx.Caller)
	}
	if gw.Status == state.GatewayStatusLeaving {
		return corerr.ErrGatewayLeaving
	}
	if params.Qty == 0 || params.Qty < ledger.Settings.MinDelegatedStake {
		return fmt.Errorf("%w: %d", corerr.ErrInvalidQuantity, params.Qty)
	}
	if err := ledger.Debit(ctx.Caller, params.Qty); err != nil {
		return err
	}
	gw.OperatorStake += params.Qty
	gw.Vaults = append(gw.Vaults, state.Vault{Balance: params.Qty, Start: ctx.Height, End: 0})
	return nil
}

// InitiateDecreaseParams is the typed input of the initiateOperatorStakeDecrease kind.
type InitiateDecreaseParams struct {
	VaultIndex int `json:"id"`
}

// ScheduleResult reports the release height assigned to the vault.
type ScheduleResult struct {
	ReleaseAt uint64
}

// InitiateOperatorStakeDecrease schedules one vault for release after the
// withdraw delay. Funds do not move until finalization.
func InitiateOperatorStakeDecrease(ledger *state.Ledger, ctx types.ExecutionContext, params InitiateDecreaseParams) (*ScheduleResult, error) {
	gw, ok := ledger.Gateways[ctx.Caller]
	if !ok {
		return nil, fmt.Errorf("%w: %s", corerr.ErrNotRegistered, ctx.Caller)
	}
	if gw.Status == state.GatewayStatusLeaving {
		return nil, corerr.ErrGatewayLeaving
	}
	if params.VaultIndex < 0 || params.VaultIndex >= len(gw.Vaults) {
		return nil, fmt.Errorf("%w: %d", corerr.ErrInvalidVaultIndex, params.VaultIndex)
	}
	vault := &gw.Vaults[params.VaultIndex]
	if vault.End != 0 {
		return nil, corerr.ErrAlreadyScheduled
	}
	if gw.OperatorStake-vault.Balance < ledger.Settings.MinNetworkJoinStake {
		return nil, fmt.Errorf("%w: releasing vault %d leaves %d", corerr.ErrBelowMinimumStake, params.VaultIndex, gw.OperatorStake-vault.Balance)
	}
	if ctx.Height < vault.Start+ledger.Settings.MinLockLength {
		return nil, fmt.Errorf("%w: vault %d locked until height %d", corerr.ErrLockNotElapsed, params.VaultIndex, vault.Start+ledger.Settings.MinLockLength)
	}
	vault.End = ctx.Height + ledger.Settings.OperatorStakeWithdrawLength
	return &ScheduleResult{ReleaseAt: vault.End}, nil
}

// FinalizeDecreaseParams is the typed input of the finalizeOperatorStakeDecrease kind.
// Target defaults to the caller; anyone may finalize on an operator's behalf.
type FinalizeDecreaseParams struct {
	Target string `json:"target,omitempty"`
}

// ReleaseResult reports the released amount and vault count.
type ReleaseResult struct {
	Target string
	Amount uint64
	Vaults int
}

// FinalizeOperatorStakeDecrease pays out every vault of the target gateway
// whose scheduled release height has passed, shrinking the operator stake
// accordingly. Vaults not yet due remain untouched.
func FinalizeOperatorStakeDecrease(ledger *state.Ledger, ctx types.ExecutionContext, params FinalizeDecreaseParams) (*ReleaseResult, error) {
	target := params.Target
	if target == "" {
		target = ctx.Caller
	}
	gw, ok := ledger.Gateways[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", corerr.ErrNotRegistered, target)
	}
	var released uint64
	var count int
	remaining := gw.Vaults[:0]
	for _, vault := range gw.Vaults {
		if vault.End != 0 && vault.End <= ctx.Height {
			released += vault.Balance
			count++
			continue
		}
		remaining = append(remaining, vault)
	}
	gw.Vaults = remaining
	if released > 0 {
		gw.OperatorStake -= released
		ledger.Credit(target, released)
	}
	return &ReleaseResult{Target: target, Amount: released, Vaults: count}, nil
}

// DelegateStakeParams is the typed input of the delegateStake kind.
type DelegateStakeParams struct {
	Target string `json:"target"`
	Qty    uint64 `json:"qty"`
}

// DelegateStake stakes the caller's tokens toward another operator's
// gateway, subject to the gateway's delegation policy.
func DelegateStake(ledger *state.Ledger, ctx types.ExecutionContext, params DelegateStakeParams) error {
	gw, ok := ledger.Gateways[params.Target]
	if !ok {
		return fmt.Errorf("%w: %s", corerr.ErrNotRegistered, params.Target)
	}
	if gw.Status == state.GatewayStatusLeaving {
		return corerr.ErrGatewayLeaving
	}
	if params.Qty == 0 || params.Qty < ledger.Settings.MinDelegatedStake {
		return fmt.Errorf("%w: %d", corerr.ErrInvalidQuantity, params.Qty)
	}
	if !gw.Settings.OpenDelegation {
		allowed := false
		for _, addr := range gw.Settings.DelegateAllowList {
			if addr == ctx.Caller {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: %s", corerr.ErrDelegationClosed, ctx.Caller)
		}
	}
	if err := ledger.Debit(ctx.Caller, params.Qty); err != nil {
		return err
	}
	if gw.Delegates == nil {
		gw.Delegates = make(map[string][]state.Vault)
	}
	gw.Delegates[ctx.Caller] = append(gw.Delegates[ctx.Caller], state.Vault{Balance: params.Qty, Start: ctx.Height, End: 0})
	gw.DelegatedStake += params.Qty
	return nil
}

// LeaveResult reports the leave height assigned by InitiateLeave.
type LeaveResult struct {
	LeaveHeight uint64
}

// InitiateLeave starts the gateway's exit. Every vault's release is capped
// at the leave height: later-scheduled releases are pulled forward, earlier
// ones keep their schedule.
func InitiateLeave(ledger *state.Ledger, ctx types.ExecutionContext) (*LeaveResult, error) {
	gw, ok := ledger.Gateways[ctx.Caller]
	if !ok {
		return nil, fmt.Errorf("%w: %s", corerr.ErrNotRegistered, ctx.Caller)
	}
	if gw.Status == state.GatewayStatusLeaving {
		return nil, corerr.ErrGatewayLeaving
	}
	if ctx.Height < gw.Start+ledger.Settings.MinGatewayJoinLength {
		return nil, fmt.Errorf("%w: joined at height %d", corerr.ErrJoinTooRecent, gw.Start)
	}
	leaveHeight := ctx.Height + ledger.Settings.GatewayLeaveLength
	for i := range gw.Vaults {
		if gw.Vaults[i].End == 0 || gw.Vaults[i].End > leaveHeight {
			gw.Vaults[i].End = leaveHeight
		}
	}
	for _, addr := range gw.DelegateAddresses() {
		vaults := gw.Delegates[addr]
		for i := range vaults {
			if vaults[i].End == 0 || vaults[i].End > leaveHeight {
				vaults[i].End = leaveHeight
			}
		}
	}
	gw.End = leaveHeight
	gw.Status = state.GatewayStatusLeaving
	return &LeaveResult{LeaveHeight: leaveHeight}, nil
}

// FinalizeLeaveParams is the typed input of the finalizeLeave kind. Target
// defaults to the caller; anyone may finalize an elapsed leave.
type FinalizeLeaveParams struct {
	Target string `json:"target,omitempty"`
}

// ExitResult reports the stake returned to the operator on exit.
type ExitResult struct {
	Target   string
	Returned uint64
}

// FinalizeLeave returns all remaining operator stake to the gateway owner
// and all delegated stake to the respective delegates, then removes the
// gateway entry entirely. Delegates are paid in sorted address order so the
// resulting balance map is replay-stable.
func FinalizeLeave(ledger *state.Ledger, ctx types.ExecutionContext, params FinalizeLeaveParams) (*ExitResult, error) {
	target := params.Target
	if target == "" {
		target = ctx.Caller
	}
	gw, ok := ledger.Gateways[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", corerr.ErrNotRegistered, target)
	}
	if gw.Status != state.GatewayStatusLeaving {
		return nil, fmt.Errorf("%w: %s has not initiated leave", corerr.ErrNotYetEligibleToLeave, target)
	}
	if ctx.Height < gw.End {
		return nil, fmt.Errorf("%w: eligible at height %d", corerr.ErrNotYetEligibleToLeave, gw.End)
	}
	var returned uint64
	for _, vault := range gw.Vaults {
		returned += vault.Balance
	}
	ledger.Credit(target, returned)
	for _, addr := range gw.DelegateAddresses() {
		var sum uint64
		for _, vault := range gw.Delegates[addr] {
			sum += vault.Balance
		}
		ledger.Credit(addr, sum)
	}
	delete(ledger.Gateways, target)
	return &ExitResult{Target: target, Returned: returned}, nil
}

// UpdateSettingsParams is the typed input of the updateGatewaySettings kind.
// Nil fields leave the corresponding setting unchanged.
type UpdateSettingsParams struct {
	Label             *string   `json:"label,omitempty"`
	FQDN              *string   `json:"fqdn,omitempty"`
	Port              *uint64   `json:"port,omitempty"`
	Protocol          *string   `json:"protocol,omitempty"`
	OpenDelegation    *bool     `json:"openDelegation,omitempty"`
	DelegateAllowList *[]string `json:"delegateAllowList,omitempty"`
	Note              *string   `json:"note,omitempty"`
}

// UpdateSettings edits the caller's gateway metadata. The merged settings
// are validated as a whole before any field is committed.
func UpdateSettings(ledger *state.Ledger, ctx types.ExecutionContext, params UpdateSettingsParams) error {
	gw, ok := ledger.Gateways[ctx.Caller]
	if !ok {
		return fmt.Errorf("%w: %s", corerr.ErrNotRegistered, ctx.Caller)
	}
	updated := gw.Settings
	updated.DelegateAllowList = append([]string(nil), gw.Settings.DelegateAllowList...)
	if params.Label != nil {
		updated.Label = *params.Label
	}
	if params.FQDN != nil {
		updated.FQDN = *params.FQDN
	}
	if params.Port != nil {
		updated.Port = *params.Port
	}
	if params.Protocol != nil {
		updated.Protocol = *params.Protocol
	}
	if params.OpenDelegation != nil {
		updated.OpenDelegation = *params.OpenDelegation
	}
	if params.DelegateAllowList != nil {
		updated.DelegateAllowList = append([]string(nil), (*params.DelegateAllowList)...)
	}
	if params.Note != nil {
		updated.Note = *params.Note
	}
	if err := validateSettings(ledger, updated); err != nil {
		return err
	}
	gw.Settings = updated
	return nil
}
