// Package qrm implements the Quantum Resistance Monitor: a weighted risk
// model over a fixed 12-category threat taxonomy with era-dependent
// severity multipliers, producing a normalized score and a recommendation.
// The bounded-history pattern (an LRU-backed ring read oldest-to-newest)
// is grounded on the teacher's keyRotationLog usage in
// consensus/pqconsensus/pq_engine.go; the validated fixed-table style
// mirrors the teacher's MLDSAParams/SLHDSAParams maps.
package qrm

// Category is one of the 12 closed threat-taxonomy tags (spec.md §3).
type Category string

const (
	CategoryDigitalSignatures Category = "digital-signatures"
	CategoryZKProofForgery    Category = "zk-proof-forgery"
	CategoryDecryptionHNDL    Category = "decryption-hndl"
	CategoryHashReversal      Category = "hash-reversal"
	CategoryConsensusAttacks  Category = "consensus-attacks"
	CategoryCrossChainBridge  Category = "cross-chain-bridge"
	CategoryNetworkLayer      Category = "network-layer"
	CategoryKeyManagement     Category = "key-management"
	CategoryMEVOrdering       Category = "mev-ordering"
	CategorySmartContracts    Category = "smart-contracts"
	CategorySideChannel       Category = "side-channel"
	CategoryMigrationAgility  Category = "migration-agility"
)

// Categories enumerates the taxonomy in a fixed, stable order used
// wherever a deterministic iteration order matters (breakdown vectors,
// canonical encoding).
var Categories = []Category{
	CategoryDigitalSignatures,
	CategoryZKProofForgery,
	CategoryDecryptionHNDL,
	CategoryHashReversal,
	CategoryConsensusAttacks,
	CategoryCrossChainBridge,
	CategoryNetworkLayer,
	CategoryKeyManagement,
	CategoryMEVOrdering,
	CategorySmartContracts,
	CategorySideChannel,
	CategoryMigrationAgility,
}

// categoryWeights is the normative 1.0-summing layout (spec.md §9 open
// question 2: the source's ~0.95 layout is non-normative and was
// discarded).
var categoryWeights = map[Category]float64{
	CategoryDigitalSignatures: 0.15,
	CategoryZKProofForgery:    0.07,
	CategoryDecryptionHNDL:    0.12,
	CategoryHashReversal:      0.05,
	CategoryConsensusAttacks:  0.10,
	CategoryCrossChainBridge:  0.08,
	CategoryNetworkLayer:      0.07,
	CategoryKeyManagement:     0.10,
	CategoryMEVOrdering:       0.06,
	CategorySmartContracts:    0.08,
	CategorySideChannel:       0.06,
	CategoryMigrationAgility:  0.06,
}

// eraMultipliers indexes [preQuantum, nisq, faultTolerant] per category.
// decryption-hndl never drops below 0.8 (the "harvest now, decrypt
// later" threat is already live); hash-reversal never exceeds 0.2
// (Grover gives only a quadratic speedup against preimage search).
var eraMultipliers = map[Category][3]float64{
	CategoryDigitalSignatures: {0.10, 0.50, 1.00},
	CategoryZKProofForgery:    {0.05, 0.30, 0.90},
	CategoryDecryptionHNDL:    {0.80, 0.90, 1.00},
	CategoryHashReversal:      {0.05, 0.10, 0.20},
	CategoryConsensusAttacks:  {0.10, 0.40, 0.90},
	CategoryCrossChainBridge:  {0.10, 0.35, 0.80},
	CategoryNetworkLayer:      {0.10, 0.30, 0.60},
	CategoryKeyManagement:     {0.15, 0.50, 0.95},
	CategoryMEVOrdering:       {0.05, 0.20, 0.50},
	CategorySmartContracts:    {0.10, 0.35, 0.75},
	CategorySideChannel:       {0.10, 0.30, 0.60},
	CategoryMigrationAgility:  {0.20, 0.50, 0.80},
}

// weightSumTolerance is spec.md §3/§8's 1e-9 invariant band.
const weightSumTolerance = 1e-9

// Weight returns a category's static weight.
func Weight(c Category) float64 { return categoryWeights[c] }

// EraMultiplier returns a category's severity multiplier for a given era.
func EraMultiplier(c Category, era Era) float64 {
	m, ok := eraMultipliers[c]
	if !ok {
		return 0
	}
	switch era {
	case EraNISQ:
		return m[1]
	case EraFaultTolerant:
		return m[2]
	default:
		return m[0]
	}
}

// validateTaxonomy enforces spec.md §4.2's invariants: weights sum to
// 1.0 within tolerance, every era multiplier lies in [0,1], and the two
// named category-specific bounds hold in every era. A violation here is
// a build-time data bug, not a runtime condition, so it panics with
// InvariantBroken rather than returning an error.
func validateTaxonomy() {
	sum := 0.0
	for _, c := range Categories {
		sum += Weight(c)
	}
	if sum < 1-weightSumTolerance || sum > 1+weightSumTolerance {
		panic(&InvariantBroken{Which: "category weights do not sum to 1.0"})
	}

	for _, c := range Categories {
		for _, era := range []Era{EraPreQuantum, EraNISQ, EraFaultTolerant} {
			m := EraMultiplier(c, era)
			if m < 0 || m > 1 {
				panic(&InvariantBroken{Which: "era multiplier out of [0,1] range"})
			}
		}
		if EraMultiplier(c, EraPreQuantum) < 0 {
			panic(&InvariantBroken{Which: "negative era multiplier"})
		}
	}

	for _, era := range []Era{EraPreQuantum, EraNISQ, EraFaultTolerant} {
		if EraMultiplier(CategoryDecryptionHNDL, era) < 0.8 {
			panic(&InvariantBroken{Which: "decryption-hndl era multiplier below 0.8"})
		}
		if EraMultiplier(CategoryHashReversal, era) > 0.2 {
			panic(&InvariantBroken{Which: "hash-reversal era multiplier above 0.2"})
		}
	}
}
