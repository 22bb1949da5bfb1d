package apqc

import (
	"github.com/splendor-labs/qrms/crypto/mldsa"
	"github.com/splendor-labs/qrms/crypto/slhdsa"
)

// Combiner selects how a dual signature's two PQC components are combined
// during verification (spec.md §4.1 verify_dual). AND is the
// security-critical default; OR exists only for grace-overlap
// availability during a pending rotation.
type Combiner byte

const (
	CombinerAND Combiner = iota
	CombinerOR
)

func (c Combiner) String() string {
	if c == CombinerOR {
		return "OR"
	}
	return "AND"
}

// RotationPhase is the APQC key lifecycle state (spec.md §4.1).
type RotationPhase byte

const (
	PhaseStable RotationPhase = iota
	PhasePendingRotation
)

func (p RotationPhase) String() string {
	if p == PhasePendingRotation {
		return "pending_rotation"
	}
	return "stable"
}

// keySet is the dual post-quantum keypair. The classical ECDSA component
// used for sign_hybrid is held separately on Engine and is not subject to
// stage/execute rotation — it is only replaced by a full generate() call,
// reflecting its role as a transitional legacy-verifier bridge rather than
// a rotation-managed asset.
type keySet struct {
	generation uint64
	mldsa      *mldsa.KeyPair
	slhdsa     *slhdsa.KeyPair
}

// PublicKeySet is the externally-publishable half of the active (or
// pending) key material (spec.md §4.1 public_keys()).
type PublicKeySet struct {
	AlgorithmSetTag string
	MLDSA           []byte
	SLHDSA          []byte
	ECDSA           []byte // empty if the classical component has been retired
}

// DualSignResult is sign_dual's return value.
type DualSignResult struct {
	MLDSASignature  []byte
	SLHDSASignature []byte
	AlgorithmSetTag string
	Combiner        Combiner
	TimingMS        float64
}

// HybridSignResult is sign_hybrid's return value.
type HybridSignResult struct {
	ECDSASignature  []byte
	MLDSASignature  []byte
	SLHDSASignature []byte
}

// VerifyResult reports which dual-signature components verified and
// against which key generation (active or pending), satisfying spec.md
// §4.1's "returns boolean plus which component(s) verified".
type VerifyResult struct {
	OK             bool
	MLDSAVerified  bool
	SLHDSAVerified bool
	AgainstPending bool
}

// RotationStatus reports the engine's current lifecycle position.
type RotationStatus struct {
	Phase          RotationPhase
	EffectiveBlock uint64
	PendingStaged  bool
}

const (
	algorithmSetDual   = "ML-DSA-87 + SLH-DSA-256s"
	algorithmSetHybrid = "ML-DSA-87 + SLH-DSA-256s + ECDSA-secp256k1"
)

func algorithmSetTag(hasECDSA bool) string {
	if hasECDSA {
		return algorithmSetHybrid
	}
	return algorithmSetDual
}
