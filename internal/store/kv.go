// Package store persists committed epoch history. The primary store is a
// cometbft-db key-value backend, adapted from the teacher's
// pkg/kvdb.KVAdapter + pkg/ledger.LedgerStore pattern: a thin adapter over
// dbm.DB, a fixed key layout with big-endian numeric suffixes, and
// JSON-marshaled records. A secondary Postgres-backed store (postgres.go)
// mirrors committed epochs for ad-hoc SQL queries and audit tooling.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/certen/kernel-validator/internal/kernel/epoch"
)

// ErrNotFound is returned when a requested epoch or meta record is absent.
var ErrNotFound = errors.New("store: not found")

// KV is the minimal key-value interface EpochStore depends on, matching
// the teacher's ledger.KV shape so any dbm.DB-backed implementation (or a
// test double) satisfies it directly.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// KVAdapter wraps a cometbft-db dbm.DB and exposes the KV interface,
// writing through SetSync so committed epochs survive a crash.
type KVAdapter struct {
	db dbm.DB
}

// NewKVAdapter wraps db for use as a KV.
func NewKVAdapter(db dbm.DB) *KVAdapter {
	return &KVAdapter{db: db}
}

// OpenDB opens (creating if absent) a cometbft-db database of the given
// backend under dir, named "kernel".
func OpenDB(backend, dir string) (dbm.DB, error) {
	return dbm.NewDB("kernel", dbm.BackendType(backend), dir)
}

func (a *KVAdapter) Get(key []byte) ([]byte, error) {
	if a.db == nil {
		return nil, nil
	}
	v, err := a.db.Get(key)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (a *KVAdapter) Set(key, value []byte) error {
	if a.db == nil {
		return nil
	}
	return a.db.SetSync(key, value)
}

// EpochStore provides high-level access to committed epoch history in a
// KV store. CONCURRENCY: like the teacher's LedgerStore, EpochStore
// assumes single-writer access — it is designed to be called only from
// the thread that applies epoch transitions. Readers (HTTP handlers,
// CLI tooling) may call Get/Latest concurrently with that writer since
// the underlying KV is append-only per key.
type EpochStore struct {
	kv KV
}

// NewEpochStore wraps kv as an EpochStore.
func NewEpochStore(kv KV) *EpochStore {
	return &EpochStore{kv: kv}
}

var (
	keyEpochPrefix = []byte("epoch:state:") // + big-endian epoch number -> epoch.State
	keyLatestEpoch = []byte("epoch:latest") // -> epoch.State
)

func epochKey(number uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, number)
	return append(append([]byte{}, keyEpochPrefix...), b...)
}

// Put records state as the committed state for its own EpochNumber and
// advances the latest-epoch pointer. Callers are responsible for calling
// Put epoch numbers in strictly increasing order; Put does not itself
// enforce that invariant since it trusts the single-writer caller.
func (s *EpochStore) Put(state epoch.State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("store: marshal epoch %d: %w", state.EpochNumber, err)
	}
	if err := s.kv.Set(epochKey(state.EpochNumber), b); err != nil {
		return fmt.Errorf("store: put epoch %d: %w", state.EpochNumber, err)
	}
	return s.kv.Set(keyLatestEpoch, b)
}

// Get loads the committed state for the given epoch number.
func (s *EpochStore) Get(number uint64) (epoch.State, error) {
	b, err := s.kv.Get(epochKey(number))
	if err != nil {
		return epoch.State{}, fmt.Errorf("store: get epoch %d: %w", number, err)
	}
	if len(b) == 0 {
		return epoch.State{}, ErrNotFound
	}
	var state epoch.State
	if err := json.Unmarshal(b, &state); err != nil {
		return epoch.State{}, fmt.Errorf("store: unmarshal epoch %d: %w", number, err)
	}
	return state, nil
}

// Latest loads the most recently committed epoch state, or ErrNotFound
// if no epoch has ever been committed (the caller should fall back to
// epoch.Genesis()).
func (s *EpochStore) Latest() (epoch.State, error) {
	b, err := s.kv.Get(keyLatestEpoch)
	if err != nil {
		return epoch.State{}, fmt.Errorf("store: get latest epoch: %w", err)
	}
	if len(b) == 0 {
		return epoch.State{}, ErrNotFound
	}
	var state epoch.State
	if err := json.Unmarshal(b, &state); err != nil {
		return epoch.State{}, fmt.Errorf("store: unmarshal latest epoch: %w", err)
	}
	return state, nil
}
