package state

import "regexp"

// Protocol constants. These are consensus-critical: changing any of them
// forks replay, so they are compiled in rather than configured.
const (
	// SecondsInYear is the lease duration unit for name records.
	SecondsInYear uint64 = 31_536_000
	// GracePeriodSeconds is the window after lease expiry during which the
	// name may still be extended but not re-purchased by a third party.
	GracePeriodSeconds uint64 = 1_814_400

	MinLeaseYears = 1
	MaxLeaseYears = 3

	// MinNameLength is the shortest name purchasable without a reservation.
	MinNameLength = 5
	MaxNameLength = 32

	// MaxActiveTiers bounds the tier slots selectable by tier number.
	MaxActiveTiers = 3

	// AnnualFeeDivisor pins the 10% annual percentage as integer floor
	// division of the base fee.
	AnnualFeeDivisor uint64 = 10

	// AtomicTxID is the sentinel a buyRecord may pass to bind the record to
	// the transaction that carries the action itself.
	AtomicTxID = "atomic"

	MaxNoteLength         = 256
	MaxGatewayLabelLength = 64
	MaxPortNumber         = 65535

	// Delayed evolutions must be scheduled within this block window from the
	// proposing height.
	MinDelayedEvolveBlocks uint64 = 720
	MaxDelayedEvolveBlocks uint64 = 720 * 30
)

var (
	// NamePattern matches a registrable name: 1-32 chars of [A-Za-z0-9-],
	// not starting with a hyphen.
	NamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,31}$`)
	// TxIDPattern matches a 43-char base64url transaction identifier.
	TxIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)
	// FQDNPattern matches a fully qualified domain name for gateway settings.
	FQDNPattern = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
)

// ValidProtocols enumerates the gateway protocols accepted at join time.
var ValidProtocols = []string{"http", "https"}

// NetworkSettings carries the stake and lifecycle knobs shared by every
// gateway handler. Heights, not timestamps: the staking lifecycle is driven
// by block height.
type NetworkSettings struct {
	MinNetworkJoinStake         uint64 `json:"minNetworkJoinStake"`
	MinDelegatedStake           uint64 `json:"minDelegatedStake"`
	MinLockLength               uint64 `json:"minLockLength"`
	OperatorStakeWithdrawLength uint64 `json:"operatorStakeWithdrawLength"`
	GatewayLeaveLength          uint64 `json:"gatewayLeaveLength"`
	MinGatewayJoinLength        uint64 `json:"minGatewayJoinLength"`
	MaxDelegates                uint64 `json:"maxDelegates"`
}

// DefaultNetworkSettings returns the genesis defaults used when a snapshot
// does not carry explicit settings.
func DefaultNetworkSettings() NetworkSettings {
	return NetworkSettings{
		MinNetworkJoinStake:         5_000,
		MinDelegatedStake:           100,
		MinLockLength:               5,
		OperatorStakeWithdrawLength: 5,
		GatewayLeaveLength:          5,
		MinGatewayJoinLength:        2,
		MaxDelegates:                16,
	}
}

// ValidTxID reports whether ref is a well-formed transaction identifier or
// the atomic sentinel.
func ValidTxID(ref string) bool {
	return ref == AtomicTxID || TxIDPattern.MatchString(ref)
}
