// Package store provides a durable, crash-safe backing for the
// sequencer's migration checkpoints and dead-letter log, grounded on
// github.com/cockroachdb/pebble (teacher go.mod, via luxfi-precompiles'
// own storage-engine choice). In-memory structures (mempool, asset
// registry) stay exactly that — in-memory, per spec.md's concurrency
// model. The sequencer package does not call this store itself: its
// checkpoints and dead-letter entries live in memory, and nothing is
// written to disk unless a caller writes it here.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
)

const (
	checkpointPrefix = "checkpoint/"
	deadLetterPrefix = "deadletter/"
)

// Store is a durable key-value log backed by a pebble database.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a pebble database at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %v", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// PutCheckpoint durably records a checkpoint, keyed by its id.
func (s *Store) PutCheckpoint(id string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: marshal checkpoint %s: %v", id, err)
	}
	return s.db.Set([]byte(checkpointPrefix+id), raw, pebble.Sync)
}

// GetCheckpoint loads a previously-written checkpoint into dest.
func (s *Store) GetCheckpoint(id string, dest interface{}) (bool, error) {
	raw, closer, err := s.db.Get([]byte(checkpointPrefix + id))
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: get checkpoint %s: %v", id, err)
	}
	defer closer.Close()
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("store: unmarshal checkpoint %s: %v", id, err)
	}
	return true, nil
}

// AppendDeadLetter durably appends one dead-letter entry keyed by a
// caller-supplied monotonic sequence number, so replay after a crash
// reconstructs the log in submission order.
func (s *Store) AppendDeadLetter(seq uint64, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: marshal dead letter %d: %v", seq, err)
	}
	key := fmt.Sprintf("%s%020d", deadLetterPrefix, seq)
	return s.db.Set([]byte(key), raw, pebble.Sync)
}

// IterateDeadLetters calls fn for every recorded dead-letter entry, in
// sequence order, until fn returns false or the log is exhausted.
func (s *Store) IterateDeadLetters(fn func(raw []byte) bool) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(deadLetterPrefix),
		UpperBound: []byte(deadLetterPrefix + "\xff"),
	})
	if err != nil {
		return fmt.Errorf("store: iterate dead letters: %v", err)
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		val, err := iter.ValueAndErr()
		if err != nil {
			return err
		}
		cp := make([]byte, len(val))
		copy(cp, val)
		if !fn(cp) {
			break
		}
	}
	return iter.Error()
}
