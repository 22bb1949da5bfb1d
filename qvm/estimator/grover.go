package estimator

import "math"

// SymmetricTarget is one of spec.md §4.3's Grover-oracle targets.
type SymmetricTarget struct {
	Name string
	// Bits is the target's effective key/digest size n.
	Bits int
}

var (
	AES128           = SymmetricTarget{Name: "AES-128", Bits: 128}
	AES256           = SymmetricTarget{Name: "AES-256", Bits: 256}
	SHA256Preimage   = SymmetricTarget{Name: "SHA-256-preimage", Bits: 256}
	Keccak256Preimage = SymmetricTarget{Name: "Keccak-256-preimage", Bits: 256}
)

// SymmetricTargets enumerates spec.md §4.3's four named Grover targets in
// a fixed order.
var SymmetricTargets = []SymmetricTarget{AES128, AES256, SHA256Preimage, Keccak256Preimage}

// GroverParams are the Grover estimator's tunable constants (spec.md
// §4.3's documented defaults).
type GroverParams struct {
	// LogicalOverheadFactor multiplies n for the ancilla/oracle overhead
	// added on top of the n "data" qubits (default 2, i.e. "2n").
	LogicalOverheadFactor float64
	// CodeDistance is the fixed surface-code distance spec.md §4.3 names
	// (default 25, giving a physical/logical factor of d²=625).
	CodeDistance int
	// SecondsPerYear is the constant used to convert total gate-time to
	// years.
	SecondsPerYear float64
}

// DefaultGroverParams mirrors spec.md §4.3's stated defaults exactly.
func DefaultGroverParams() GroverParams {
	return GroverParams{
		LogicalOverheadFactor: 2,
		CodeDistance:          25,
		SecondsPerYear:        365.25 * 24 * 3600,
	}
}

// GroverEstimate is one target's resource estimate.
type GroverEstimate struct {
	Target         SymmetricTarget
	// Iterations is a float64, not an integer count: for n≥~80 the
	// iteration count vastly exceeds any integer type's range, and the
	// value is only ever used as a magnitude in the time estimate below.
	Iterations     float64
	LogicalQubits  int
	PhysicalQubits int
	TimeYears      float64
	Level          ThreatLevel
}

// gatesPerIteration is the per-Grover-iteration gate-count model: an
// oracle evaluation plus a diffusion operator, each assumed O(logical
// qubits) — a standard order-of-magnitude estimate since spec.md gives
// no closed form for "total_gates" beyond iterations × gate_time.
func gatesPerIteration(logicalQubits int) float64 {
	return float64(2 * logicalQubits)
}

// Estimate computes spec.md §4.3's Grover resource estimate for one
// target against a candidate processor's qubit budget and gate time.
func Estimate(target SymmetricTarget, processorQubits int, gateTimeSeconds float64, params GroverParams) GroverEstimate {
	n := float64(target.Bits)
	iterations := math.Ceil((math.Pi / 4) * math.Sqrt(math.Pow(2, n)))

	logical := target.Bits + int(math.Round(params.LogicalOverheadFactor*n))
	physical := logical * params.CodeDistance * params.CodeDistance

	totalGates := iterations * gatesPerIteration(logical)
	timeYears := totalGates * gateTimeSeconds / params.SecondsPerYear

	return GroverEstimate{
		Target:         target,
		Iterations:     iterations,
		LogicalQubits:  logical,
		PhysicalQubits: physical,
		TimeYears:      timeYears,
		Level:          classify(physical, processorQubits, timeYears),
	}
}
