package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"arnsledger/core/state"
)

var (
	snapshotPrefix = []byte("snapshot/")
	latestKey      = []byte("snapshot-latest")
	logOffsetKey   = []byte("action-log-offset")
)

// SnapshotStore persists the committed ledger per height. Snapshots are the
// node's restart point; replay resumes from the latest one.
type SnapshotStore struct {
	db Database
}

func NewSnapshotStore(db Database) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func snapshotKey(height uint64) []byte {
	key := make([]byte, len(snapshotPrefix)+8)
	copy(key, snapshotPrefix)
	binary.BigEndian.PutUint64(key[len(snapshotPrefix):], height)
	return key
}

// Save writes the ledger at the given height and moves the latest pointer.
func (s *SnapshotStore) Save(height uint64, ledger *state.Ledger) error {
	encoded, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}
	if err := s.db.Put(snapshotKey(height), encoded); err != nil {
		return err
	}
	var latest [8]byte
	binary.BigEndian.PutUint64(latest[:], height)
	return s.db.Put(latestKey, latest[:])
}

// Load returns the ledger stored at the given height.
func (s *SnapshotStore) Load(height uint64) (*state.Ledger, error) {
	encoded, err := s.db.Get(snapshotKey(height))
	if err != nil {
		return nil, err
	}
	ledger := state.NewLedger()
	if err := json.Unmarshal(encoded, ledger); err != nil {
		return nil, fmt.Errorf("storage: decode snapshot: %w", err)
	}
	return ledger, nil
}

// SaveLogOffset records how many action-log entries have been consumed, so
// a restart resumes replay after the last applied entry.
func (s *SnapshotStore) SaveLogOffset(n uint64) error {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], n)
	return s.db.Put(logOffsetKey, raw[:])
}

// LogOffset returns the recorded action-log offset, zero when none is set.
func (s *SnapshotStore) LogOffset() (uint64, error) {
	raw, err := s.db.Get(logOffsetKey)
	if err != nil {
		if err == ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("storage: corrupt log offset")
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Latest returns the most recently saved ledger and its height. A store
// without snapshots returns ErrKeyNotFound.
func (s *SnapshotStore) Latest() (*state.Ledger, uint64, error) {
	raw, err := s.db.Get(latestKey)
	if err != nil {
		return nil, 0, err
	}
	if len(raw) != 8 {
		return nil, 0, fmt.Errorf("storage: corrupt latest pointer")
	}
	height := binary.BigEndian.Uint64(raw)
	ledger, err := s.Load(height)
	if err != nil {
		return nil, 0, err
	}
	return ledger, height, nil
}
