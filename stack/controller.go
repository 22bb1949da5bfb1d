// Package stack binds the QVM oracle, QRM monitor, APQC engine, and TEE
// sequencer into the seven-step per-block control tick (spec.md §4.5).
// The shape — a single per-block entry point threading signature
// verification, beacon/risk refresh, and key rotation together with no
// dependencies of its own — is grounded on
// consensus/pqconsensus/pq_engine.go's VerifyQuantumSafeBlock, the
// teacher's own closest analogue of a single control tick.
package stack

import (
	"context"
	"fmt"
	"time"

	"github.com/splendor-labs/qrms/adapters"
	"github.com/splendor-labs/qrms/apqc"
	"github.com/splendor-labs/qrms/logx"
	"github.com/splendor-labs/qrms/qrm"
	"github.com/splendor-labs/qrms/qvm"
	"github.com/splendor-labs/qrms/sequencer"
)

// DefaultBatchIntervalBlocks is how often (in blocks) a tick attempts
// create_quantum_batch when no caller-supplied override is given.
const DefaultBatchIntervalBlocks = 1

// Config controls one Controller's tick cadence.
type Config struct {
	BatchIntervalBlocks int
}

// DefaultConfig mirrors this package's documented default cadence.
func DefaultConfig() Config {
	return Config{BatchIntervalBlocks: DefaultBatchIntervalBlocks}
}

// TickResult reports what a single Tick actually did, so callers and
// tests can assert on the control flow without re-deriving it from
// component state.
type TickResult struct {
	BlockNumber      uint64
	Assessed         bool
	Assessment       qrm.RiskAssessment
	StagedRotation   bool
	EmergencyRotated bool
	ExecutedRotation bool
	Batch            *sequencer.QuantumResistantBatch
	SubmittedToChain bool
}

// Controller binds the four component layers together (spec.md §4.5).
type Controller struct {
	cfg Config
	log logx.Logger

	oracle  *qvm.Oracle
	monitor *qrm.Monitor
	engine  *apqc.Engine
	seq     *sequencer.Sequencer

	chain      adapters.ChainCollaborator
	teeKey     sequencer.TEEKey
	platform   adapters.TEEPlatform
	redundancy adapters.TEEPlatform
}

// New constructs a Controller over already-initialized components.
// redundancy may be nil if redundancy attestation is disabled.
func New(cfg Config, log logx.Logger, oracle *qvm.Oracle, monitor *qrm.Monitor, engine *apqc.Engine, seq *sequencer.Sequencer, chain adapters.ChainCollaborator, teeKey sequencer.TEEKey, platform adapters.TEEPlatform, redundancy adapters.TEEPlatform) *Controller {
	if cfg.BatchIntervalBlocks <= 0 {
		cfg.BatchIntervalBlocks = DefaultBatchIntervalBlocks
	}
	return &Controller{
		cfg: cfg, log: log,
		oracle: oracle, monitor: monitor, engine: engine, seq: seq,
		chain: chain, teeKey: teeKey, platform: platform, redundancy: redundancy,
	}
}

// Tick runs one control tick at blockNumber (spec.md §4.5, steps 1-7).
// A failure at any step is returned immediately; earlier steps in the same
// tick are not rolled back, matching the teacher's own
// VerifyQuantumSafeBlock, which treats key rotation failure as a warning
// rather than aborting block verification.
func (c *Controller) Tick(ctx context.Context, blockNumber uint64) (TickResult, error) {
	result := TickResult{BlockNumber: blockNumber}

	// Step 1: QVM assessment cycle, if due.
	if c.oracle.ShouldAssess(blockNumber) {
		composite, era := c.oracle.AssessAndUpdate(c.monitor, time.Now())
		c.monitor.SetEra(era)
		result.Assessed = true
		c.log.Debug("stack: qvm assessment cycle ran", "block", blockNumber, "composite_risk", composite, "era", era)
	}

	// Step 2: QRM assessment.
	assessment := c.monitor.Assess()
	result.Assessment = assessment

	// Step 3: schedule rotation if recommended and nothing is already pending.
	status := c.engine.Status()
	if assessment.Recommendation == qrm.RecommendationScheduleRotation && !status.PendingStaged {
		mk, sk, err := apqc.GenerateRotationKeys()
		if err != nil {
			return result, fmt.Errorf("stack: generate rotation keys: %w", err)
		}
		if _, err := c.engine.StageRotation(mk, sk, blockNumber); err != nil {
			return result, fmt.Errorf("stack: stage rotation: %w", err)
		}
		result.StagedRotation = true
	}

	// Step 4: emergency rotation bypasses the grace window entirely.
	if assessment.Recommendation == qrm.RecommendationEmergencyRotation {
		mk, sk, err := apqc.GenerateRotationKeys()
		if err != nil {
			return result, fmt.Errorf("stack: generate emergency rotation keys: %w", err)
		}
		if _, err := c.engine.EmergencyRotation(mk, sk); err != nil {
			return result, fmt.Errorf("stack: emergency rotation: %w", err)
		}
		result.EmergencyRotated = true
	}

	// Step 5: execute any staged rotation whose effective block has arrived.
	executed, _, err := c.engine.ExecuteRotation(blockNumber)
	if err != nil {
		return result, fmt.Errorf("stack: execute rotation: %w", err)
	}
	result.ExecutedRotation = executed

	// Step 6 is implicit: assessment is threaded into create_quantum_batch
	// below rather than cached on the sequencer.

	// Step 7: assemble and submit a batch if one is due this tick.
	if blockNumber%uint64(c.cfg.BatchIntervalBlocks) == 0 {
		batch, err := c.seq.CreateQuantumBatch(ctx, c.engine, c.teeKey, c.platform, c.redundancy, assessment, blockNumber)
		if err != nil {
			return result, fmt.Errorf("stack: create quantum batch: %w", err)
		}
		result.Batch = batch
		if batch != nil {
			if err := c.chain.SubmitBatch(ctx, batch.CanonicalBytes); err != nil {
				return result, fmt.Errorf("stack: submit batch: %w", err)
			}
			result.SubmittedToChain = true
		}
	}

	return result, nil
}
