package types

// Event records a structured state change for downstream consumers (RPC,
// indexers, operator tooling). Attributes are flat strings so the encoding
// stays stable across replays.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
