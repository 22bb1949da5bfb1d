package sequencer

import "time"

// MigrationState is the sequencer's migration lifecycle position
// (spec.md §4.4 migration state machine: Idle <-> Migrating).
type MigrationState byte

const (
	MigrationIdle MigrationState = iota
	MigrationMigrating
)

func (s MigrationState) String() string {
	if s == MigrationMigrating {
		return "migrating"
	}
	return "idle"
}

// migrationController holds the sequencer's migration state, guarded by
// the sequencer's own mutex (not its own — callers always hold
// Sequencer.mu when touching this).
type migrationController struct {
	state      MigrationState
	checkpoint *MigrationCheckpoint
}

// startMigration transitions Idle -> Migrating, snapshotting every
// Active asset immediately (spec.md §4.4: "checkpoint created
// immediately").
func (m *migrationController) startMigration(registry *Registry) (*MigrationCheckpoint, error) {
	if m.state == MigrationMigrating {
		return nil, ErrAlreadyMigrating
	}
	cp := &MigrationCheckpoint{
		CheckpointID:   NewCheckpointID(),
		CreatedAt:      time.Now(),
		AssetSnapshots: registry.Snapshot(),
	}
	registry.transitionAll(AssetActive, AssetMigrating)
	m.state = MigrationMigrating
	m.checkpoint = cp
	return cp, nil
}

// completeMigration transitions Migrating -> Idle, but only if cp is the
// active checkpoint (spec.md §4.4: "only if cp.checkpoint_id is the
// active one; assets transition migrating -> active").
func (m *migrationController) completeMigration(cp MigrationCheckpoint, registry *Registry) error {
	if m.state != MigrationMigrating {
		return ErrNotMigrating
	}
	if m.checkpoint == nil || m.checkpoint.CheckpointID != cp.CheckpointID {
		return ErrCheckpointMismatch
	}
	registry.transitionAll(AssetMigrating, AssetActive)
	m.state = MigrationIdle
	m.checkpoint = nil
	return nil
}

// rollback transitions Migrating -> Idle, restoring cp's asset
// snapshots verbatim (spec.md §4.4: "restore asset snapshots from
// cp.asset_snapshots").
func (m *migrationController) rollback(cp MigrationCheckpoint, registry *Registry) error {
	if m.state != MigrationMigrating {
		return ErrNotMigrating
	}
	if m.checkpoint == nil || m.checkpoint.CheckpointID != cp.CheckpointID {
		return ErrCheckpointMismatch
	}
	registry.restore(cp.AssetSnapshots)
	m.state = MigrationIdle
	m.checkpoint = nil
	return nil
}
