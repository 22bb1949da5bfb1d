package apqc

import (
	"errors"
	"testing"

	"github.com/splendor-labs/qrms/logx"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg, logx.New("test", "apqc"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestSignAndVerifyDualAND(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	pub, err := e.PublicKeys()
	if err != nil {
		t.Fatalf("PublicKeys: %v", err)
	}
	if pub.AlgorithmSetTag != "ML-DSA-87 + SLH-DSA-256s + ECDSA-secp256k1" {
		t.Fatalf("unexpected algorithm set tag: %s", pub.AlgorithmSetTag)
	}

	msg := []byte("batch header")
	sig, err := e.SignDual(msg, CombinerAND)
	if err != nil {
		t.Fatalf("SignDual: %v", err)
	}

	res, err := VerifyDual(msg, sig.MLDSASignature, sig.SLHDSASignature, pub, CombinerAND)
	if err != nil {
		t.Fatalf("VerifyDual: %v", err)
	}
	if !res.OK || !res.MLDSAVerified || !res.SLHDSAVerified {
		t.Fatalf("VerifyDual result = %+v, want both components verified", res)
	}

	tampered := append([]byte{}, msg...)
	tampered[0] ^= 0xff
	if res, err := VerifyDual(tampered, sig.MLDSASignature, sig.SLHDSASignature, pub, CombinerAND); err != nil || res.OK {
		t.Fatalf("VerifyDual accepted a tampered message: res=%+v err=%v", res, err)
	}
}

func TestVerifyDualMalformedSignature(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	pub, _ := e.PublicKeys()
	_, err := VerifyDual([]byte("msg"), []byte("too-short"), make([]byte, 29792), pub, CombinerAND)
	var malformed *MalformedSignatureError
	if !errors.As(err, &malformed) {
		t.Fatalf("got error %v, want *MalformedSignatureError", err)
	}
}

func TestHybridRequiresECDSAComponent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IncludeECDSA = false
	e := newTestEngine(t, cfg)
	if _, err := e.SignHybrid([]byte("msg")); err != ErrECDSARetired {
		t.Fatalf("SignHybrid with no ECDSA component: got %v, want ErrECDSARetired", err)
	}
}

func TestHybridSignRoundTrip(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	sig, err := e.SignHybrid([]byte("hybrid-signed batch"))
	if err != nil {
		t.Fatalf("SignHybrid: %v", err)
	}
	encoded := EncodeHybrid(sig)
	decoded, err := DecodeHybrid(encoded)
	if err != nil {
		t.Fatalf("DecodeHybrid: %v", err)
	}
	if string(decoded.ECDSASignature) != string(sig.ECDSASignature) {
		t.Fatal("decoded ECDSA component does not match original")
	}
}

func TestRotationGraceWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GraceBlocks = 1000
	e := newTestEngine(t, cfg)

	oldPub, _ := e.PublicKeys()
	newML, newSLH, err := GenerateRotationKeys()
	if err != nil {
		t.Fatalf("GenerateRotationKeys: %v", err)
	}

	const currentBlock = 500
	status, err := e.StageRotation(newML, newSLH, currentBlock)
	if err != nil {
		t.Fatalf("StageRotation: %v", err)
	}
	if status.Phase != PhasePendingRotation {
		t.Fatalf("Phase = %v, want PhasePendingRotation", status.Phase)
	}
	if status.EffectiveBlock != currentBlock+cfg.GraceBlocks {
		t.Fatalf("EffectiveBlock = %d, want %d", status.EffectiveBlock, currentBlock+cfg.GraceBlocks)
	}

	// A second stage_rotation while one is pending must fail.
	if _, err := e.StageRotation(newML, newSLH, currentBlock); err != ErrRotationInProgress {
		t.Fatalf("second StageRotation: got %v, want ErrRotationInProgress", err)
	}

	// execute_rotation before the effective block is reached is a no-op,
	// not an error.
	executed, _, err := e.ExecuteRotation(currentBlock + 1)
	if err != nil {
		t.Fatalf("ExecuteRotation (early): %v", err)
	}
	if executed {
		t.Fatal("ExecuteRotation executed before the effective block")
	}

	// Grace-overlap: a signature produced under the old active keys still
	// verifies via OR while rotation is pending.
	msg := []byte("in-flight message from the old key set")
	sig, err := e.SignDual(msg, CombinerOR)
	if err != nil {
		t.Fatalf("SignDual: %v", err)
	}
	res, err := e.VerifyDual(msg, sig.MLDSASignature, sig.SLHDSASignature, CombinerOR)
	if err != nil {
		t.Fatalf("VerifyDual during pending rotation: %v", err)
	}
	if !res.OK || res.AgainstPending {
		t.Fatalf("VerifyDual during grace window = %+v, want OK against the active (non-pending) key set", res)
	}

	executed, status, err = e.ExecuteRotation(status.EffectiveBlock)
	if err != nil {
		t.Fatalf("ExecuteRotation: %v", err)
	}
	if !executed {
		t.Fatal("ExecuteRotation did not execute at the effective block")
	}
	if status.Phase != PhaseStable {
		t.Fatalf("Phase after ExecuteRotation = %v, want PhaseStable", status.Phase)
	}

	newPub, _ := e.PublicKeys()
	if string(newPub.MLDSA) == string(oldPub.MLDSA) {
		t.Fatal("active public key unchanged after rotation executed")
	}

	// The old signature must no longer verify against the new active keys.
	res, err = e.VerifyDual(msg, sig.MLDSASignature, sig.SLHDSASignature, CombinerOR)
	if err != nil {
		t.Fatalf("VerifyDual post-rotation: %v", err)
	}
	if res.OK {
		t.Fatal("old-epoch signature verified after rotation executed and grace window closed")
	}
}

func TestEmergencyRotationBypassesGrace(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	before, _ := e.PublicKeys()

	newML, newSLH, err := GenerateRotationKeys()
	if err != nil {
		t.Fatalf("GenerateRotationKeys: %v", err)
	}
	status, err := e.EmergencyRotation(newML, newSLH)
	if err != nil {
		t.Fatalf("EmergencyRotation: %v", err)
	}
	if status.Phase != PhaseStable {
		t.Fatalf("Phase = %v, want PhaseStable immediately after emergency rotation", status.Phase)
	}

	after, _ := e.PublicKeys()
	if string(after.MLDSA) == string(before.MLDSA) {
		t.Fatal("active public key unchanged after emergency rotation")
	}
}

func TestDualSignatureTLVRoundTrip(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	sig, err := e.SignDual([]byte("round trip"), CombinerAND)
	if err != nil {
		t.Fatalf("SignDual: %v", err)
	}
	encoded := EncodeDual(sig.MLDSASignature, sig.SLHDSASignature)
	mlSig, slhSig, err := DecodeDual(encoded)
	if err != nil {
		t.Fatalf("DecodeDual: %v", err)
	}
	if string(mlSig) != string(sig.MLDSASignature) || string(slhSig) != string(sig.SLHDSASignature) {
		t.Fatal("decoded signature bytes do not match original")
	}
}
