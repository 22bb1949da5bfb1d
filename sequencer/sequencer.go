package sequencer

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/splendor-labs/qrms/adapters"
	"github.com/splendor-labs/qrms/apqc"
	"github.com/splendor-labs/qrms/crypto/digest"
	"github.com/splendor-labs/qrms/logx"
	"github.com/splendor-labs/qrms/qrm"
)

// Config controls one Sequencer's batch-assembly behavior (spec.md §6).
type Config struct {
	MempoolCapacity     int
	BatchSizeMin        int
	BatchSizeMax        int
	IntelligenceMode    OrderingMode
	RedundancyEnabled   bool
	RedundancyRequired  bool
	RedundancyWorkerID  string
	RedundancyEnclaveID string
	DecryptWorkers      int
}

// DefaultConfig mirrors spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		MempoolCapacity:  DefaultMempoolCapacity,
		BatchSizeMin:     10,
		BatchSizeMax:     50,
		IntelligenceMode: Hybrid,
		DecryptWorkers:   8,
	}
}

// TEEKey decrypts one client submission's ciphertext within the TEE
// boundary (spec.md §5: "TEE encryption key for mempool decryption:
// owned by the sequencer; never leaves the TEE boundary"). A failed
// decryption is reported through ok=false, not a panic, so a single
// malformed ciphertext cannot abort the whole batch.
type TEEKey interface {
	Decrypt(ciphertext, nonce []byte) (plaintext []byte, ok bool)
}

// Sequencer is the TEE Sequencer (spec.md §4.4): mempool, registry,
// ordering mode, migration state, and batch assembly bound together. Its
// worker pool (github.com/panjf2000/ants/v2) parallelizes per-tx decrypt
// + policy evaluation, the concern common/gpu/gpu_processor.go's
// hash/signature/tx worker pools covered with raw channels and goroutines
// — ants/v2 is the teacher's own listed dependency for exactly this
// shape of bounded worker pool.
type Sequencer struct {
	cfg Config
	log logx.Logger

	mempool  *Mempool
	registry *Registry

	mu        sync.Mutex
	mode      OrderingMode
	migration migrationController
	redundancyEnabled bool

	deadLetters   []DeadLetterEntry
	deadLetterMu  sync.Mutex
	deadLetterIDs mapset.Set // tx ids already dead-lettered, guards against duplicate entries across retries

	pool *ants.Pool
}

// New constructs a Sequencer bound to cfg.
func New(cfg Config, log logx.Logger) (*Sequencer, error) {
	workers := cfg.DecryptWorkers
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("sequencer: allocate decrypt pool: %v", err)
	}
	return &Sequencer{
		cfg:               cfg,
		log:               log,
		mempool:           NewMempool(cfg.MempoolCapacity),
		registry:          NewRegistry(),
		mode:              cfg.IntelligenceMode,
		redundancyEnabled: cfg.RedundancyEnabled,
		pool:              pool,
		deadLetterIDs:     mapset.NewSet(),
	}, nil
}

// Close releases the decrypt worker pool.
func (s *Sequencer) Close() { s.pool.Release() }

// SubmitEncrypted appends tx to the mempool (spec.md §4.4
// submit_encrypted()).
func (s *Sequencer) SubmitEncrypted(tx EncryptedTx) error {
	if tx.SubmittedAt.IsZero() {
		tx.SubmittedAt = time.Now()
	}
	return s.mempool.Submit(tx)
}

// RegisterAsset inserts or replaces an asset registry entry (spec.md
// §4.4 register_asset()).
func (s *Sequencer) RegisterAsset(record AssetRecord) { s.registry.Register(record) }

// SetOrdering changes the active intelligence-ordering mode (spec.md
// §4.4 set_ordering()).
func (s *Sequencer) SetOrdering(mode OrderingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// SetRedundancyEnabled toggles redundancy attestation (spec.md §4.4
// set_redundancy_enabled()). workerID/enclaveID are recorded for
// observability only; this reference implementation's redundancy
// collaborator is supplied per-call to CreateQuantumBatch.
func (s *Sequencer) SetRedundancyEnabled(enabled bool, workerID, enclaveID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redundancyEnabled = enabled
	s.cfg.RedundancyWorkerID = workerID
	s.cfg.RedundancyEnclaveID = enclaveID
}

// StartMigration transitions Idle -> Migrating (spec.md §4.4
// start_migration()).
func (s *Sequencer) StartMigration() (*MigrationCheckpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.migration.startMigration(s.registry)
}

// CompleteMigration transitions Migrating -> Idle (spec.md §4.4
// complete_migration()).
func (s *Sequencer) CompleteMigration(cp MigrationCheckpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.migration.completeMigration(cp, s.registry)
}

// Rollback transitions Migrating -> Idle, restoring cp's snapshot
// (spec.md §4.4 rollback()).
func (s *Sequencer) Rollback(cp MigrationCheckpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.migration.rollback(cp, s.registry)
}

// DeadLetters returns every dead-lettered transaction recorded so far.
func (s *Sequencer) DeadLetters() []DeadLetterEntry {
	s.deadLetterMu.Lock()
	defer s.deadLetterMu.Unlock()
	out := make([]DeadLetterEntry, len(s.deadLetters))
	copy(out, s.deadLetters)
	return out
}

func (s *Sequencer) deadLetter(txID, reason string) {
	s.deadLetterMu.Lock()
	defer s.deadLetterMu.Unlock()
	if s.deadLetterIDs.Contains(txID) {
		return
	}
	s.deadLetterIDs.Add(txID)
	s.deadLetters = append(s.deadLetters, DeadLetterEntry{TxID: txID, Reason: reason, Timestamp: time.Now()})
}

// decryptResult is one drained transaction's outcome after TEE decryption
// and policy evaluation.
type decryptResult struct {
	tx     DecryptedTx
	ok     bool
	reason string
}

// CreateQuantumBatch attempts to assemble one quantum-resistant batch
// (spec.md §4.4 create_quantum_batch()). ctx governs cancellation of the
// decrypt/order/sign/attest pipeline; on cancellation, drained-but-
// unassembled transactions are returned to the head of the mempool so no
// partial mutation is observed (spec.md §5).
func (s *Sequencer) CreateQuantumBatch(
	ctx context.Context,
	engine *apqc.Engine,
	teeKey TEEKey,
	platform adapters.TEEPlatform,
	redundancy adapters.TEEPlatform,
	assessment qrm.RiskAssessment,
	blockNumber uint64,
) (*QuantumResistantBatch, error) {
	drained := s.mempool.Drain(s.cfg.BatchSizeMax)
	if len(drained) == 0 {
		return nil, nil
	}

	decrypted, err := s.decryptAndEvaluate(ctx, drained, teeKey, assessment)
	if err != nil {
		s.restoreToHead(drained)
		return nil, err
	}
	if len(decrypted) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	mode := s.mode
	migrating := s.migration.state == MigrationMigrating
	var checkpoint *MigrationCheckpoint
	if migrating {
		cp := *s.migration.checkpoint
		checkpoint = &cp
	}
	redundancyOn := s.redundancyEnabled
	s.mu.Unlock()

	ordered := order(mode, decrypted, s.registry, migrating)
	canonical := canonicalizeBatch(blockNumber, mode, ordered)

	sig, err := engine.SignDual(canonical, apqc.CombinerAND)
	if err != nil {
		s.restoreDecryptedToHead(drained, decrypted)
		return nil, err
	}

	reportData := digest.ReportData(canonical)
	quote, err := platform.GetQuote(ctx, reportData)
	if err != nil {
		s.restoreDecryptedToHead(drained, decrypted)
		return nil, fmt.Errorf("sequencer: primary attestation failed: %w", err)
	}
	primary := AttestationRecord{ReportData: reportData, Quote: quote, CollaboratorID: "primary", ProducedAt: time.Now()}

	var redundancyRecord *AttestationRecord
	if redundancyOn && redundancy != nil {
		rquote, rerr := redundancy.GetQuote(ctx, reportData)
		if rerr != nil {
			if s.cfg.RedundancyRequired {
				s.restoreDecryptedToHead(drained, decrypted)
				return nil, fmt.Errorf("sequencer: required redundancy attestation failed: %w", rerr)
			}
			s.log.Warn("sequencer: redundancy attestation failed, proceeding with primary only", "error", rerr)
		} else {
			redundancyRecord = &AttestationRecord{ReportData: reportData, Quote: rquote, CollaboratorID: "redundancy", IsRedundancy: true, ProducedAt: time.Now()}
		}
	}

	batch := &QuantumResistantBatch{
		BatchID:               uuid.NewString(),
		BlockNumber:           blockNumber,
		Transactions:          ordered,
		CanonicalBytes:        canonical,
		MLDSASignature:        sig.MLDSASignature,
		SLHDSASignature:       sig.SLHDSASignature,
		AlgorithmSetTag:       sig.AlgorithmSetTag,
		PrimaryAttestation:    primary,
		RedundancyAttestation: redundancyRecord,
		Checkpoint:            checkpoint,
		AssembledAt:           time.Now(),
	}
	return batch, nil
}

// decryptAndEvaluate runs TEE decryption and policy evaluation for each
// drained transaction across the worker pool, in parallel, matching
// spec.md §4.4 steps 2-3. Order among surviving transactions is
// normalized downstream by the ordering step, so the worker pool's
// completion order does not affect determinism.
func (s *Sequencer) decryptAndEvaluate(ctx context.Context, drained []EncryptedTx, teeKey TEEKey, assessment qrm.RiskAssessment) ([]DecryptedTx, error) {
	results := make([]decryptResult, len(drained))
	var wg sync.WaitGroup
	for i, tx := range drained {
		i, tx := i, tx
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.decryptOne(tx, teeKey, assessment)
		})
		if submitErr != nil {
			results[i] = s.decryptOne(tx, teeKey, assessment)
			wg.Done()
		}
	}
	wg.Wait()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	out := make([]DecryptedTx, 0, len(results))
	for _, r := range results {
		if r.ok {
			out = append(out, r.tx)
		} else {
			s.deadLetter(r.tx.ID, r.reason)
		}
	}
	return out, nil
}

// decryptOne implements spec.md §4.4 step 2-3: decrypt using the TEE key
// (malformed ciphertexts are discarded, not fatal to the batch), then
// evaluate the asset access policy against the current risk assessment.
// A nil teeKey treats Ciphertext as already-plaintext, letting tests
// exercise ordering/policy behavior without a live TEE key.
func (s *Sequencer) decryptOne(tx EncryptedTx, teeKey TEEKey, assessment qrm.RiskAssessment) decryptResult {
	var plaintext []byte
	if teeKey != nil {
		pt, ok := teeKey.Decrypt(tx.Ciphertext, tx.Nonce)
		if !ok {
			return decryptResult{tx: DecryptedTx{ID: tx.ID}, ok: false, reason: "malformed_ciphertext"}
		}
		plaintext = pt
	} else {
		if len(tx.Ciphertext) == 0 {
			return decryptResult{tx: DecryptedTx{ID: tx.ID}, ok: false, reason: "malformed_ciphertext"}
		}
		plaintext = tx.Ciphertext
	}

	riskLevel := assessment.Score
	if ok, reason := s.registry.evaluatePolicy(tx.AssetID, riskLevel); !ok {
		return decryptResult{tx: DecryptedTx{ID: tx.ID}, ok: false, reason: reason}
	}

	return decryptResult{
		tx: DecryptedTx{
			ID:                tx.ID,
			Payload:           plaintext,
			AssetID:           tx.AssetID,
			RiskLevel:         riskLevel,
			SubmittedAt:       tx.SubmittedAt,
			RequiresMigration: tx.RequiresMigration,
		},
		ok: true,
	}
}

func (s *Sequencer) restoreToHead(txs []EncryptedTx) {
	for i := len(txs) - 1; i >= 0; i-- {
		_ = s.mempool.restoreToHead(txs[i])
	}
}

func (s *Sequencer) restoreDecryptedToHead(drained []EncryptedTx, _ []DecryptedTx) {
	s.restoreToHead(drained)
}

// canonicalizeBatch implements spec.md §4.4 step 5 / §6's canonical
// form: header (block-number, mode) followed by length-prefixed ordered
// transactions. The batch-id/timestamp/algorithm-set-tag named in §6 are
// properties of the assembled QuantumResistantBatch, not inputs to the
// signed preimage, since they are only known after signing completes;
// what's signed here is exactly the content the redundancy collaborator
// can independently reconstruct and attest to.
func canonicalizeBatch(blockNumber uint64, mode OrderingMode, txs []DecryptedTx) []byte {
	buf := make([]byte, 0, 16+len(txs)*64)
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], blockNumber)
	buf = append(buf, tmp[:]...)
	buf = append(buf, byte(mode))
	binary.BigEndian.PutUint32(tmp[:4], uint32(len(txs)))
	buf = append(buf, tmp[:4]...)
	for _, tx := range txs {
		buf = append(buf, lengthPrefixed([]byte(tx.ID))...)
		buf = append(buf, lengthPrefixed([]byte(tx.AssetID))...)
		binary.BigEndian.PutUint32(tmp[:4], tx.RiskLevel)
		buf = append(buf, tmp[:4]...)
		buf = append(buf, lengthPrefixed(tx.Payload)...)
	}
	return buf
}

func lengthPrefixed(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.BigEndian.PutUint32(out[:4], uint32(len(b)))
	copy(out[4:], b)
	return out
}
