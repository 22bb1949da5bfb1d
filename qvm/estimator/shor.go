package estimator

// AsymmetricTargetKind distinguishes the two logical/physical-qubit
// formulas spec.md §4.3 gives for Shor's algorithm.
type AsymmetricTargetKind byte

const (
	KindRSA AsymmetricTargetKind = iota
	KindECC
)

// AsymmetricTarget is one of spec.md §4.3's Shor-oracle targets.
type AsymmetricTarget struct {
	Name string
	Bits int
	Kind AsymmetricTargetKind
}

var (
	RSA2048  = AsymmetricTarget{Name: "RSA-2048", Bits: 2048, Kind: KindRSA}
	RSA4096  = AsymmetricTarget{Name: "RSA-4096", Bits: 4096, Kind: KindRSA}
	ECDSA256 = AsymmetricTarget{Name: "ECDSA-256", Bits: 256, Kind: KindECC}
	BLS12381 = AsymmetricTarget{Name: "BLS12-381", Bits: 381, Kind: KindECC}
)

// AsymmetricTargets enumerates spec.md §4.3's four named Shor targets in
// a fixed order.
var AsymmetricTargets = []AsymmetricTarget{RSA2048, RSA4096, ECDSA256, BLS12381}

// ShorParams are the Shor estimator's tunable constants.
type ShorParams struct {
	// MagicStateOverhead multiplies the raw T-gate time into a wall-clock
	// estimate, accounting for magic-state distillation (spec.md §4.3
	// default 15).
	MagicStateOverhead float64
}

// DefaultShorParams mirrors spec.md §4.3's documented default.
func DefaultShorParams() ShorParams {
	return ShorParams{MagicStateOverhead: 15}
}

// ShorEstimate is one target's resource estimate.
type ShorEstimate struct {
	Target         AsymmetricTarget
	LogicalQubits  int
	TGates         float64
	PhysicalQubits int
	TimeHours      float64
	// TimeYears is TimeHours converted to years, used by the shared
	// classify() table (spec.md §4.3 states the Imminent/Near-term/...
	// thresholds in years) and by the assessment cycle's severity
	// formula, which is defined in terms of time_years for every target.
	TimeYears float64
	Level     ThreatLevel
}

// logicalQubits implements spec.md §4.3's two formulas: "2n+5 for RSA,
// 6n+10 for ECC".
func logicalQubits(t AsymmetricTarget) int {
	n := t.Bits
	if t.Kind == KindRSA {
		return 2*n + 5
	}
	return 6*n + 10
}

// tGateCount implements spec.md §4.3's two formulas: "n³ for RSA,
// ≈100·n³ for ECC".
func tGateCount(t AsymmetricTarget) float64 {
	n := float64(t.Bits)
	cubed := n * n * n
	if t.Kind == KindRSA {
		return cubed
	}
	return 100 * cubed
}

// EstimateShor computes spec.md §4.3's Shor resource estimate for one
// target against a candidate processor's qubit budget, physical gate
// error rate (used to pick a code distance), and gate time.
func EstimateShor(target AsymmetricTarget, processorQubits int, gateErrorRate, gateTimeSeconds float64, params ShorParams) ShorEstimate {
	logical := logicalQubits(target)
	d := codeDistance(gateErrorRate)
	physical := logical * d * d

	tGates := tGateCount(target)
	timeHours := tGates * gateTimeSeconds * params.MagicStateOverhead / 3600
	const hoursPerYear = 24 * 365.25
	timeYears := timeHours / hoursPerYear

	return ShorEstimate{
		Target:         target,
		LogicalQubits:  logical,
		TGates:         tGates,
		PhysicalQubits: physical,
		TimeHours:      timeHours,
		TimeYears:      timeYears,
		Level:          classify(physical, processorQubits, timeYears),
	}
}
