package apqc

import (
	"github.com/splendor-labs/qrms/crypto/mldsa"
	"github.com/splendor-labs/qrms/crypto/slhdsa"
)

// StageRotation writes a pending key set and marks PhasePendingRotation,
// with effective-block = currentBlock + grace_period (spec.md §4.1
// stage_rotation). It fails with ErrRotationInProgress if a rotation is
// already pending.
func (e *Engine) StageRotation(newMLDSA *mldsa.KeyPair, newSLHDSA *slhdsa.KeyPair, currentBlock uint64) (RotationStatus, error) {
	e.keyMu.Lock()
	defer e.keyMu.Unlock()

	if e.phase == PhasePendingRotation {
		return RotationStatus{}, ErrRotationInProgress
	}
	e.pendingMLDSA = newMLDSA
	e.pendingSLHDSA = newSLHDSA
	e.pendingGeneration = e.active.generation + 1
	e.phase = PhasePendingRotation
	e.effectiveBlock = currentBlock + e.cfg.GraceBlocks

	e.log.Info("apqc: staged key rotation", "active_generation", e.active.generation,
		"current_block", currentBlock, "effective_block", e.effectiveBlock)
	return e.statusLocked(), nil
}

// ExecuteRotation promotes the staged key set to active once
// currentBlock has reached the recorded effective block. It returns
// whether an execution occurred; calling it with no rotation pending, or
// before the effective block, is not an error — it simply reports false
// (spec.md §4.1 execute_rotation).
func (e *Engine) ExecuteRotation(currentBlock uint64) (bool, RotationStatus, error) {
	e.keyMu.Lock()
	defer e.keyMu.Unlock()

	if e.phase != PhasePendingRotation {
		return false, e.statusLocked(), nil
	}
	if currentBlock < e.effectiveBlock {
		return false, e.statusLocked(), nil
	}
	e.promoteLocked()
	e.log.Info("apqc: rotation executed", "new_generation", e.active.generation, "block", currentBlock)
	return true, e.statusLocked(), nil
}

// EmergencyRotation bypasses the grace period entirely and overwrites the
// active key set immediately, clearing any pending state (spec.md §4.1
// emergency_rotation). The caller is responsible for having already
// asserted risk ≥ T_emerg; this method performs no threshold check of its
// own.
func (e *Engine) EmergencyRotation(newMLDSA *mldsa.KeyPair, newSLHDSA *slhdsa.KeyPair) (RotationStatus, error) {
	e.keyMu.Lock()
	defer e.keyMu.Unlock()

	e.pendingMLDSA = newMLDSA
	e.pendingSLHDSA = newSLHDSA
	e.pendingGeneration = e.active.generation + 1
	e.promoteLocked()

	e.log.Info("apqc: emergency rotation executed", "new_generation", e.active.generation)
	return e.statusLocked(), nil
}

func (e *Engine) promoteLocked() {
	e.active = keySet{generation: e.pendingGeneration, mldsa: e.pendingMLDSA, slhdsa: e.pendingSLHDSA}
	e.pendingMLDSA, e.pendingSLHDSA = nil, nil
	e.phase = PhaseStable
	e.effectiveBlock = 0

	e.metricsMu.Lock()
	e.rotations++
	e.metricsMu.Unlock()
}

func (e *Engine) statusLocked() RotationStatus {
	return RotationStatus{
		Phase:          e.phase,
		EffectiveBlock: e.effectiveBlock,
		PendingStaged:  e.phase == PhasePendingRotation,
	}
}

// StagedPublicKeys exposes the staged key set's public half during the
// pending-rotation window, so downstream verifiers can pre-register the
// next generation's keys ahead of ExecuteRotation.
func (e *Engine) StagedPublicKeys() (PublicKeySet, error) {
	e.keyMu.RLock()
	defer e.keyMu.RUnlock()
	if e.phase != PhasePendingRotation {
		return PublicKeySet{}, ErrNoPendingRotation
	}
	return PublicKeySet{
		AlgorithmSetTag: algorithmSetTag(e.ecdsa != nil),
		MLDSA:           e.pendingMLDSA.PublicKey(),
		SLHDSA:          e.pendingSLHDSA.PublicKey(),
	}, nil
}
