// Package apqc implements the Adaptive Post-Quantum Cryptography layer:
// dual ML-DSA-87/SLH-DSA-256s signing with a block-gated staged rotation
// state machine, and an ECDSA-secp256k1 classical component for
// sign_hybrid. Structure (per-concern RWMutex, lru.ARC-cached
// verification, log15 key-value logging, parallel dual-sign via a worker
// group) is grounded on the teacher's
// consensus/pqconsensus/pq_engine.go PQConsensusEngine; rotation
// semantics are rewritten to the grace-overlap state machine spec.md §4.1
// specifies, replacing the teacher's hard-cutover RotateValidatorKeys.
package apqc

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/splendor-labs/qrms/crypto/hybridecdsa"
	"github.com/splendor-labs/qrms/crypto/mldsa"
	"github.com/splendor-labs/qrms/crypto/slhdsa"
	"github.com/splendor-labs/qrms/logx"
)

// verificationCacheSize bounds the memoized verification-result cache,
// mirroring PQSignatureCacheSize's role in the teacher engine.
const verificationCacheSize = 1024

// Config controls the rotation grace window (in blocks, per spec.md §6
// rotation_grace_blocks) and the classical-component policy.
type Config struct {
	GraceBlocks  uint64
	IncludeECDSA bool
}

// DefaultConfig mirrors spec.md §6's defaults.
func DefaultConfig() Config {
	return Config{
		GraceBlocks:  1000,
		IncludeECDSA: true,
	}
}

// Engine is the Adaptive PQC layer. One Engine instance custodies exactly
// one sequencer identity's signing material.
type Engine struct {
	cfg Config
	log logx.Logger

	keyMu             sync.RWMutex
	active            keySet
	ecdsa             *hybridecdsa.KeyPair
	phase             RotationPhase
	pendingMLDSA      *mldsa.KeyPair
	pendingSLHDSA     *slhdsa.KeyPair
	pendingGeneration uint64
	effectiveBlock    uint64

	verifyCache *lru.ARCCache

	metricsMu sync.RWMutex
	rotations uint64
}

// New constructs an Engine and calls generate() to populate its initial
// active key set.
func New(cfg Config, log logx.Logger) (*Engine, error) {
	cache, err := lru.NewARC(verificationCacheSize)
	if err != nil {
		return nil, fmt.Errorf("apqc: allocate verification cache: %v", err)
	}
	e := &Engine{cfg: cfg, log: log, verifyCache: cache}
	if err := e.Generate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Generate produces fresh active ML-DSA, SLH-DSA, and (if configured)
// ECDSA keypairs; clears any pending rotation (spec.md §4.1 generate()).
func (e *Engine) Generate() error {
	mk, err := mldsa.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("apqc: generate ml-dsa key: %v", err)
	}
	sk, err := slhdsa.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("apqc: generate slh-dsa key: %v", err)
	}
	var ek *hybridecdsa.KeyPair
	if e.cfg.IncludeECDSA {
		ek, err = hybridecdsa.GenerateKeyPair()
		if err != nil {
			return fmt.Errorf("apqc: generate ecdsa key: %v", err)
		}
	}

	e.keyMu.Lock()
	defer e.keyMu.Unlock()
	e.active = keySet{generation: e.active.generation + 1, mldsa: mk, slhdsa: sk}
	e.ecdsa = ek
	e.pendingMLDSA, e.pendingSLHDSA = nil, nil
	e.phase = PhaseStable
	e.effectiveBlock = 0
	return nil
}

// GenerateRotationKeys produces a fresh ML-DSA/SLH-DSA pair suitable for
// stage_rotation, without touching engine state — the protocol-stack
// controller calls this, then StageRotation, as two distinct steps per
// spec.md §4.5 step 3.
func GenerateRotationKeys() (*mldsa.KeyPair, *slhdsa.KeyPair, error) {
	mk, err := mldsa.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("apqc: generate ml-dsa rotation key: %v", err)
	}
	sk, err := slhdsa.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("apqc: generate slh-dsa rotation key: %v", err)
	}
	return mk, sk, nil
}

// PublicKeys returns the active key set's publishable public keys
// (spec.md §4.1 public_keys()).
func (e *Engine) PublicKeys() (PublicKeySet, error) {
	e.keyMu.RLock()
	defer e.keyMu.RUnlock()
	if e.active.mldsa == nil {
		return PublicKeySet{}, ErrNoActiveKeySet
	}
	return e.activePublicKeysLocked(), nil
}

func (e *Engine) activePublicKeysLocked() PublicKeySet {
	pks := PublicKeySet{
		AlgorithmSetTag: algorithmSetTag(e.ecdsa != nil),
		MLDSA:           e.active.mldsa.PublicKey(),
		SLHDSA:          e.active.slhdsa.PublicKey(),
	}
	if e.ecdsa != nil {
		pks.ECDSA = e.ecdsa.PublicKey()
	}
	return pks
}

// SignDual produces a dual signature over message using the active key
// set. Both components are always computed (spec.md §4.1): combiner is
// recorded as metadata describing the verification policy the caller
// intends, it never changes what gets signed. The two signatures are
// computed concurrently, matching spec.md §5's optional parallel work
// step, since they share no mutable state.
func (e *Engine) SignDual(message []byte, combiner Combiner) (DualSignResult, error) {
	e.keyMu.RLock()
	ks := e.active
	e.keyMu.RUnlock()
	if ks.mldsa == nil {
		return DualSignResult{}, ErrNoActiveKeySet
	}

	start := time.Now()
	var mlSig, slhSig []byte
	var g errgroup.Group
	g.Go(func() error {
		sig, err := ks.mldsa.Sign(message)
		if err != nil {
			return &SigningFailureError{Which: "mldsa", Err: err}
		}
		mlSig = sig
		return nil
	})
	g.Go(func() error {
		sig, err := ks.slhdsa.Sign(message)
		if err != nil {
			return &SigningFailureError{Which: "slhdsa", Err: err}
		}
		slhSig = sig
		return nil
	})
	if err := g.Wait(); err != nil {
		// spec.md §4.1: "No partial result is ever returned."
		return DualSignResult{}, err
	}

	return DualSignResult{
		MLDSASignature:  mlSig,
		SLHDSASignature: slhSig,
		AlgorithmSetTag: algorithmSetDual,
		Combiner:        combiner,
		TimingMS:        float64(time.Since(start)) / float64(time.Millisecond),
	}, nil
}

// SignHybrid returns {ecdsa_sig, mldsa_sig, slhdsa_sig} all over the same
// message bytes (spec.md §4.1 sign_hybrid).
func (e *Engine) SignHybrid(message []byte) (HybridSignResult, error) {
	e.keyMu.RLock()
	ks := e.active
	ek := e.ecdsa
	e.keyMu.RUnlock()
	if ks.mldsa == nil {
		return HybridSignResult{}, ErrNoActiveKeySet
	}
	if ek == nil {
		return HybridSignResult{}, ErrECDSARetired
	}

	dual, err := e.SignDual(message, CombinerAND)
	if err != nil {
		return HybridSignResult{}, err
	}
	ecSig, err := ek.Sign(message)
	if err != nil {
		return HybridSignResult{}, &SigningFailureError{Which: "ecdsa", Err: err}
	}
	return HybridSignResult{
		ECDSASignature:  ecSig,
		MLDSASignature:  dual.MLDSASignature,
		SLHDSASignature: dual.SLHDSASignature,
	}, nil
}

// VerifyDual is the pure, stateless form of verify_dual (spec.md §4.1):
// it checks a dual signature against an explicit public key set with no
// awareness of any engine's rotation state. Size mismatches are reported
// via MalformedSignatureError before any cryptographic check runs.
func VerifyDual(message, mldsaSig, slhdsaSig []byte, pub PublicKeySet, combiner Combiner) (VerifyResult, error) {
	if err := mldsa.ValidateSizes(mldsaSig, pub.MLDSA); err != nil {
		return VerifyResult{}, &MalformedSignatureError{Which: "mldsa"}
	}
	if err := slhdsa.ValidateSizes(slhdsaSig, pub.SLHDSA); err != nil {
		return VerifyResult{}, &MalformedSignatureError{Which: "slhdsa"}
	}

	mlOK := mldsa.Verify(pub.MLDSA, message, mldsaSig) == nil
	slhOK := slhdsa.Verify(pub.SLHDSA, message, slhdsaSig) == nil

	var ok bool
	if combiner == CombinerOR {
		ok = mlOK || slhOK
	} else {
		ok = mlOK && slhOK
	}
	return VerifyResult{OK: ok, MLDSAVerified: mlOK, SLHDSAVerified: slhOK}, nil
}

// VerifyDual checks a dual signature against this engine's own rotation
// state: the active key set first, and — during PendingRotation — the
// staged key set as well, satisfying the grace-overlap availability
// requirement (spec.md §4.1, testable property 5) without the caller
// needing to track epochs itself.
func (e *Engine) VerifyDual(message, mldsaSig, slhdsaSig []byte, combiner Combiner) (VerifyResult, error) {
	e.keyMu.RLock()
	activePub := e.activePublicKeysLocked()
	generation := e.active.generation
	var pendingPub PublicKeySet
	hasPending := e.phase == PhasePendingRotation
	if hasPending {
		pendingPub = PublicKeySet{
			AlgorithmSetTag: activePub.AlgorithmSetTag,
			MLDSA:           e.pendingMLDSA.PublicKey(),
			SLHDSA:          e.pendingSLHDSA.PublicKey(),
			ECDSA:           activePub.ECDSA,
		}
	}
	e.keyMu.RUnlock()

	cacheKey := fmt.Sprintf("%d:%t:%x:%x:%x:%s", generation, hasPending, message, mldsaSig, slhdsaSig, combiner)
	if v, ok := e.verifyCache.Get(cacheKey); ok {
		return v.(VerifyResult), nil
	}

	res, err := VerifyDual(message, mldsaSig, slhdsaSig, activePub, combiner)
	if err != nil {
		return VerifyResult{}, err
	}
	if !res.OK && hasPending {
		pendingRes, err := VerifyDual(message, mldsaSig, slhdsaSig, pendingPub, combiner)
		if err != nil {
			return VerifyResult{}, err
		}
		if pendingRes.OK {
			pendingRes.AgainstPending = true
			res = pendingRes
		}
	}
	e.verifyCache.Add(cacheKey, res)
	if !res.OK {
		e.log.Debug("apqc: dual verification failed", "mldsa_ok", res.MLDSAVerified, "slhdsa_ok", res.SLHDSAVerified)
	}
	return res, nil
}

// Status reports the engine's current rotation lifecycle position.
func (e *Engine) Status() RotationStatus {
	e.keyMu.RLock()
	defer e.keyMu.RUnlock()
	return RotationStatus{
		Phase:          e.phase,
		EffectiveBlock: e.effectiveBlock,
		PendingStaged:  e.phase == PhasePendingRotation,
	}
}

// RotationCount reports how many rotations have executed over the
// engine's lifetime.
func (e *Engine) RotationCount() uint64 {
	e.metricsMu.RLock()
	defer e.metricsMu.RUnlock()
	return e.rotations
}
