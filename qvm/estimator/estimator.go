// Package estimator implements the QVM oracle's Grover and Shor threat
// oracles (spec.md §4.3): resource-estimate formulas over named symmetric
// and asymmetric primitives, mapped to a discrete threat-level taxonomy.
// These are closed-form estimates, not circuit simulations — they are the
// "how many qubits, how long" answer the assessment cycle turns into
// threat indicators.
package estimator

import "math"

// ThreatLevel is the discrete feasibility tier spec.md §4.3 maps a
// resource estimate onto.
type ThreatLevel byte

const (
	ThreatImminent ThreatLevel = iota
	ThreatNearTerm
	ThreatMediumTerm
	ThreatLongTerm
	ThreatTheoretical
)

func (t ThreatLevel) String() string {
	switch t {
	case ThreatImminent:
		return "imminent"
	case ThreatNearTerm:
		return "near_term"
	case ThreatMediumTerm:
		return "medium_term"
	case ThreatLongTerm:
		return "long_term"
	default:
		return "theoretical"
	}
}

// codeDistance is a monotonic heuristic choosing a surface-code distance
// from a physical gate error rate: d = ceil(5·log10(1/errorRate)), so the
// distance grows as the error rate falls. Spec.md §4.3 names a default
// d=25 for the Grover estimator and says Shor "chooses d by error rate"
// without a formula; the result is floored at 7 (the smallest practically
// discussed surface-code distance) and capped at the Grover default of
// 25. A non-positive error rate returns the floor, 7.
func codeDistance(errorRate float64) int {
	if errorRate <= 0 {
		return 7
	}
	d := int(math.Ceil(5 * math.Log10(1/errorRate)))
	if d < 7 {
		d = 7
	}
	if d > 25 {
		d = 25
	}
	return d
}

// classify applies spec.md §4.3's threat-level table, shared by both
// oracles: "Imminent if physical fits in processor qubit count AND
// time < 1 [unit]; Near-term <5; Medium-term <10; Long-term <100;
// Theoretical otherwise." timeUnit is years for Grover, converted hours
// for Shor by the caller.
func classify(physicalQubits, processorQubits int, timeUnit float64) ThreatLevel {
	fits := physicalQubits <= processorQubits
	switch {
	case fits && timeUnit < 1:
		return ThreatImminent
	case timeUnit < 5:
		return ThreatNearTerm
	case timeUnit < 10:
		return ThreatMediumTerm
	case timeUnit < 100:
		return ThreatLongTerm
	default:
		return ThreatTheoretical
	}
}
