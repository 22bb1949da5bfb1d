// Package picker implements the QVM oracle's qubit picker (spec.md
// §4.3): selecting k physical qubits off a processor profile and
// calibration snapshot that minimize a strategy-weighted cost, honoring
// any logical connectivity constraints, and reporting the resulting
// estimated circuit fidelity.
package picker

import (
	"errors"
	"sort"

	"github.com/splendor-labs/qrms/qvm/calibration"
	"github.com/splendor-labs/qrms/qvm/profile"
	"github.com/splendor-labs/qrms/qvm/sim"
)

// ErrNoFeasibleMapping is returned when the requested logical connectivity
// cannot be embedded into the processor's physical connectivity graph
// (spec.md §4.3).
var ErrNoFeasibleMapping = errors.New("picker: no feasible mapping for the requested logical connectivity")

// Strategy selects which calibration dimensions the cost function
// weighs (spec.md §4.3).
type Strategy byte

const (
	MinimizeSingleQubitError Strategy = iota
	MinimizeTwoQubitError
	MinimizeReadoutError
	MaximizeCoherence
	Balanced
	CustomStrategy
)

// Weights is the strategy-weighted cost function's coefficient set
// (spec.md §4.3's Custom{w_1q, w_2q, w_ro, w_coh}).
type Weights struct {
	SingleQubit float64
	TwoQubit    float64
	Readout     float64
	Coherence   float64
}

func weightsFor(s Strategy, custom Weights) Weights {
	switch s {
	case MinimizeSingleQubitError:
		return Weights{SingleQubit: 1}
	case MinimizeTwoQubitError:
		return Weights{TwoQubit: 1}
	case MinimizeReadoutError:
		return Weights{Readout: 1}
	case MaximizeCoherence:
		return Weights{Coherence: 1}
	case CustomStrategy:
		return custom
	default: // Balanced
		return Weights{SingleQubit: 0.25, TwoQubit: 0.25, Readout: 0.25, Coherence: 0.25}
	}
}

// Result is Pick()'s return value (spec.md §4.3).
type Result struct {
	SelectedPhysical  []int
	LogicalToPhysical map[int]int
	EstimatedFidelity float64
	Avoid             []int
}

// qubitCost scores one physical qubit: lower is better. Coherence is
// inverted (shorter T1+T2 costs more) so every term is a "badness" the
// weights linearly combine.
func qubitCost(c calibration.QubitCalibration, w Weights) float64 {
	coherence := float64(c.T1 + c.T2)
	var coherenceCost float64
	if coherence > 0 {
		coherenceCost = 1 / coherence
	}
	return w.SingleQubit*c.SingleQubitError + w.Readout*(c.Readout01+c.Readout10)/2 + w.Coherence*coherenceCost
}

// Pick selects k physical qubits from p/cal minimizing the
// strategy-weighted cost, honoring logicalEdges (pairs of logical qubit
// indices in [0,k)) against the profile's physical connectivity graph.
func Pick(p profile.ProcessorProfile, cal calibration.Set, k int, strategy Strategy, custom Weights, logicalEdges []profile.Edge) (Result, error) {
	w := weightsFor(strategy, custom)

	candidates := make([]qubitCandidate, 0, p.QubitCount)
	for q := 0; q < p.QubitCount; q++ {
		qc, ok := cal.Qubit(q)
		if !ok {
			continue
		}
		candidates = append(candidates, qubitCandidate{qubit: q, cost: qubitCost(qc, w)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].cost < candidates[j].cost })

	if len(logicalEdges) == 0 {
		if len(candidates) < k {
			return Result{}, ErrNoFeasibleMapping
		}
		mapping := make(map[int]int, k)
		selected := make([]int, k)
		for i := 0; i < k; i++ {
			mapping[i] = candidates[i].qubit
			selected[i] = candidates[i].qubit
		}
		return finalize(p, cal, selected, mapping, nil), nil
	}

	mapping, err := mapWithConnectivity(p, candidates, k, logicalEdges)
	if err != nil {
		return Result{}, err
	}
	selected := make([]int, 0, k)
	for i := 0; i < k; i++ {
		selected = append(selected, mapping[i])
	}
	var avoid []int
	used := make(map[int]bool, k)
	for _, q := range selected {
		used[q] = true
	}
	for _, c := range candidates {
		if !used[c.qubit] {
			avoid = append(avoid, c.qubit)
		}
	}
	return finalize(p, cal, selected, mapping, avoid), nil
}

// qubitCandidate is a physical qubit paired with its strategy-weighted
// cost, sorted ascending (cheapest first) before selection.
type qubitCandidate struct {
	qubit int
	cost  float64
}

// mapWithConnectivity backtracks over physical candidates, in ascending
// cost order, assigning logical qubits (highest-degree first) so that
// every logical edge maps onto an existing physical edge. This is an
// exact, not approximate, search — adequate for the picker's small k
// (a handful of logical qubits per batch-signing operation), not meant
// to scale to large subgraph-isomorphism instances.
func mapWithConnectivity(p profile.ProcessorProfile, candidates []qubitCandidate, k int, logicalEdges []profile.Edge) (map[int]int, error) {
	degree := make([]int, k)
	adj := make([][]int, k)
	for _, e := range logicalEdges {
		degree[e.A]++
		degree[e.B]++
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return degree[order[i]] > degree[order[j]] })

	assignment := make(map[int]int, k) // logical -> physical
	used := make(map[int]bool, k)

	var backtrack func(pos int) bool
	backtrack = func(pos int) bool {
		if pos == k {
			return true
		}
		logical := order[pos]
		for _, cand := range candidates {
			if used[cand.qubit] {
				continue
			}
			ok := true
			for _, neighbor := range adj[logical] {
				if physNeighbor, assigned := assignment[neighbor]; assigned {
					if !p.HasEdge(cand.qubit, physNeighbor) {
						ok = false
						break
					}
				}
			}
			if !ok {
				continue
			}
			assignment[logical] = cand.qubit
			used[cand.qubit] = true
			if backtrack(pos + 1) {
				return true
			}
			delete(assignment, logical)
			used[cand.qubit] = false
		}
		return false
	}

	if !backtrack(0) {
		return nil, ErrNoFeasibleMapping
	}
	return assignment, nil
}

func finalize(p profile.ProcessorProfile, cal calibration.Set, selected []int, mapping map[int]int, avoid []int) Result {
	fidelity := 1.0
	for _, q := range selected {
		if qc, ok := cal.Qubit(q); ok {
			fidelity *= (1 - qc.SingleQubitError) * (1 - (qc.Readout01+qc.Readout10)/2)
		}
	}
	seen := make(map[[2]int]bool)
	for i, a := range selected {
		for _, b := range selected[i+1:] {
			if !p.HasEdge(a, b) {
				continue
			}
			key := [2]int{a, b}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			if pc, ok := cal.Pair(a, b); ok {
				fidelity *= 1 - pc.TwoQubitError
			}
		}
	}
	return Result{SelectedPhysical: selected, LogicalToPhysical: mapping, EstimatedFidelity: fidelity, Avoid: avoid}
}

// TransformCircuit returns an isomorphic circuit acting on the physical
// qubits mapping maps logical qubits onto (spec.md §4.3
// transform_circuit()).
func TransformCircuit(c *sim.Circuit, mapping map[int]int) *sim.Circuit {
	maxPhysical := 0
	for _, phys := range mapping {
		if phys > maxPhysical {
			maxPhysical = phys
		}
	}
	out := sim.NewCircuit(maxPhysical + 1)
	for _, g := range c.Gates {
		mapped := g
		mapped.Qubits[0] = mapping[g.Qubits[0]]
		if g.Qubits[1] >= 0 {
			mapped.Qubits[1] = mapping[g.Qubits[1]]
		}
		out.Gates = append(out.Gates, mapped)
	}
	return out
}
