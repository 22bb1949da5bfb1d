package sequencer

import "errors"

// ErrMempoolFull is submit_encrypted's overflow error (spec.md §4.4).
var ErrMempoolFull = errors.New("sequencer: mempool is full")

// ErrNoFeasibleMapping-style sentinel: spec.md §4.4's complete_migration
// and rollback both require the supplied checkpoint to be the active one.
var ErrCheckpointMismatch = errors.New("sequencer: checkpoint is not the active migration's checkpoint")

// ErrNotMigrating is returned when complete_migration/rollback is called
// outside the Migrating state.
var ErrNotMigrating = errors.New("sequencer: not currently migrating")

// ErrAlreadyMigrating is returned when start_migration is called while
// already Migrating.
var ErrAlreadyMigrating = errors.New("sequencer: migration already in progress")

// ErrAssetNotFound is returned by policy lookups against an unregistered
// asset id.
var ErrAssetNotFound = errors.New("sequencer: asset not found")
