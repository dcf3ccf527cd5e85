package types

import "encoding/json"

// Action is the envelope delivered by the external ordering log after schema
// validation. Params stays raw until the dispatcher decodes it into the
// typed input for the declared kind.
type Action struct {
	Kind      string          `json:"kind"`
	Caller    string          `json:"caller"`
	Height    uint64          `json:"height"`
	Timestamp uint64          `json:"timestamp"`
	TxID      string          `json:"txId"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// ExecutionContext carries the ambient inputs of one action application. The
// core never reads a clock; height, timestamp and caller identity arrive
// here and nowhere else.
type ExecutionContext struct {
	Height    uint64
	Timestamp uint64
	Caller    string
	TxID      string
}

// Context extracts the execution context from the envelope.
func (a Action) Context() ExecutionContext {
	return ExecutionContext{
		Height:    a.Height,
		Timestamp: a.Timestamp,
		Caller:    a.Caller,
		TxID:      a.TxID,
	}
}
