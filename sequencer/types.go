// Package sequencer implements the TEE Sequencer (spec.md §4.4): a
// bounded encrypted mempool, an asset-protection registry with access
// policy, a pluggable intelligence-ordering layer, a migration state
// machine, and quantum-resistant batch assembly with dual/redundancy
// attestation. The worker-pool / config / stats shape is grounded on
// common/gpu/gpu_processor.go's batching architecture, translated from
// GPU transaction batches to TEE-decrypted transaction batches. The
// canonical batch body is a fixed header followed by length-prefixed
// transactions, with no type tags.
package sequencer

import (
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// OrderingMode selects the active intelligence-ordering policy (spec.md
// §4.4 set_ordering()).
type OrderingMode byte

const (
	RiskAware OrderingMode = iota
	AssetProtection
	MigrationAware
	Hybrid
)

func (m OrderingMode) String() string {
	switch m {
	case AssetProtection:
		return "asset_protection"
	case MigrationAware:
		return "migration_aware"
	case Hybrid:
		return "hybrid"
	default:
		return "risk_aware"
	}
}

// ProtectionTier ranks an asset's required handling (spec.md §4.4 step 4
// AssetProtection tiebreak: "requires-tee > requires-pqc > neither").
type ProtectionTier byte

const (
	TierNone ProtectionTier = iota
	TierRequiresPQC
	TierRequiresTEE
)

// AssetRecord is one entry of the asset-protection registry (spec.md
// §4.4 register_asset()).
type AssetRecord struct {
	AssetID         string
	ChainID         *uint256.Int
	RequiresPQC     bool
	RequiresTEE     bool
	RequiresMigration bool
	RiskThreshold   uint32
	State           AssetState
}

// AssetState is an asset's migration lifecycle position (spec.md §4.4
// migration state machine: "assets transition migrating -> active").
type AssetState byte

const (
	AssetActive AssetState = iota
	AssetMigrating
)

func (r AssetRecord) tier() ProtectionTier {
	switch {
	case r.RequiresTEE:
		return TierRequiresTEE
	case r.RequiresPQC:
		return TierRequiresPQC
	default:
		return TierNone
	}
}

// EncryptedTx is one client submission before TEE decryption (spec.md
// §4.4 submit_encrypted()).
type EncryptedTx struct {
	ID              string
	Ciphertext      []byte
	Nonce           []byte
	AssetID         string
	SubmittedAt     time.Time
	RequiresMigration bool
}

// DecryptedTx is one transaction after successful TEE decryption,
// carrying the fields ordering and policy evaluation read.
type DecryptedTx struct {
	ID                string
	Payload           []byte
	AssetID           string
	RiskLevel         uint32
	SubmittedAt       time.Time
	RequiresMigration bool
}

// DeadLetterEntry records one transaction rejected before reaching a
// batch (spec.md §4.4 step 2/3: malformed ciphertexts and policy
// rejections "go to a dead-letter log; not to the batch").
type DeadLetterEntry struct {
	TxID      string
	Reason    string
	Timestamp time.Time
}

// MigrationCheckpoint snapshots every Active asset at the moment
// start_migration() is called (spec.md §4.4 migration state machine).
type MigrationCheckpoint struct {
	CheckpointID   string
	CreatedAt      time.Time
	AssetSnapshots map[string]AssetRecord
}

// NewCheckpointID mints a fresh checkpoint identifier.
func NewCheckpointID() string { return uuid.NewString() }

// AttestationRecord is one TEE quote over a batch's canonical bytes
// (spec.md §4.4 step 7).
type AttestationRecord struct {
	ReportData      [32]byte
	Quote           []byte
	CollaboratorID  string
	IsRedundancy    bool
	ProducedAt      time.Time
}

// QuantumResistantBatch is create_quantum_batch's success output
// (spec.md §4.4 step 9).
type QuantumResistantBatch struct {
	BatchID          string
	BlockNumber      uint64
	Transactions     []DecryptedTx
	CanonicalBytes   []byte
	MLDSASignature   []byte
	SLHDSASignature  []byte
	AlgorithmSetTag  string
	PrimaryAttestation   AttestationRecord
	RedundancyAttestation *AttestationRecord
	Checkpoint       *MigrationCheckpoint
	AssembledAt      time.Time
}
