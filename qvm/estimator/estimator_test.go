package estimator

import "testing"

func TestGroverEstimateMonotonicInBits(t *testing.T) {
	small := Estimate(AES128, 105, 25e-9, DefaultGroverParams())
	large := Estimate(AES256, 105, 25e-9, DefaultGroverParams())
	if large.TimeYears <= small.TimeYears {
		t.Fatalf("AES-256 estimate (%v years) should exceed AES-128 (%v years)", large.TimeYears, small.TimeYears)
	}
}

func TestGroverImminentRequiresFitAndFastTime(t *testing.T) {
	// A tiny target against a huge, fast processor should classify as
	// imminent: few physical qubits needed, negligible runtime.
	e := Estimate(SymmetricTarget{Name: "toy", Bits: 4}, 1_000_000, 1e-12, DefaultGroverParams())
	if e.Level != ThreatImminent {
		t.Fatalf("Level = %v, want Imminent for a trivially small target", e.Level)
	}
}

func TestGroverTheoreticalForLargeTarget(t *testing.T) {
	e := Estimate(AES256, 105, 25e-9, DefaultGroverParams())
	if e.Level != ThreatTheoretical && e.Level != ThreatLongTerm {
		t.Fatalf("Level = %v, want a distant-horizon tier for AES-256 against a 105-qubit processor", e.Level)
	}
}

func TestShorRSALargerThanECC(t *testing.T) {
	rsa := EstimateShor(RSA2048, 1000, 0.01, 25e-9, DefaultShorParams())
	ecc := EstimateShor(ECDSA256, 1000, 0.01, 25e-9, DefaultShorParams())
	if rsa.LogicalQubits <= ecc.LogicalQubits {
		t.Fatalf("RSA-2048 logical qubits (%d) should exceed ECDSA-256 (%d)", rsa.LogicalQubits, ecc.LogicalQubits)
	}
}

func TestCodeDistanceBounds(t *testing.T) {
	if d := codeDistance(0.5); d < 7 || d > 25 {
		t.Fatalf("codeDistance(0.5) = %d, want in [7,25]", d)
	}
	if d := codeDistance(1e-12); d != 25 {
		t.Fatalf("codeDistance(1e-12) = %d, want capped at 25", d)
	}
}
