package picker

import (
	"testing"

	"github.com/splendor-labs/qrms/qvm/calibration"
	"github.com/splendor-labs/qrms/qvm/profile"
)

func TestPickWithoutConnectivityReturnsCheapestK(t *testing.T) {
	p := profile.Rainbow()
	cal := calibration.FromProfile(p)
	res, err := Pick(p, cal, 4, Balanced, Weights{}, nil)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if len(res.SelectedPhysical) != 4 {
		t.Fatalf("SelectedPhysical has %d entries, want 4", len(res.SelectedPhysical))
	}
	if res.EstimatedFidelity <= 0 || res.EstimatedFidelity > 1 {
		t.Fatalf("EstimatedFidelity = %v, want in (0,1]", res.EstimatedFidelity)
	}
}

func TestPickHonorsConnectivity(t *testing.T) {
	p := profile.Rainbow()
	cal := calibration.FromProfile(p)
	edges := []profile.Edge{{A: 0, B: 1}, {A: 1, B: 2}}
	res, err := Pick(p, cal, 3, Balanced, Weights{}, edges)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	for _, e := range edges {
		pa, pb := res.LogicalToPhysical[e.A], res.LogicalToPhysical[e.B]
		if !p.HasEdge(pa, pb) {
			t.Fatalf("logical edge (%d,%d) mapped to physical (%d,%d), which is not a connected pair", e.A, e.B, pa, pb)
		}
	}
}

func TestPickInfeasibleConnectivityFails(t *testing.T) {
	p := profile.Rainbow()
	cal := calibration.FromProfile(p)
	// A complete graph over k=6 logical qubits cannot embed into a sparse
	// nearest-neighbor lattice.
	var edges []profile.Edge
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			edges = append(edges, profile.Edge{A: i, B: j})
		}
	}
	if _, err := Pick(p, cal, 6, Balanced, Weights{}, edges); err != ErrNoFeasibleMapping {
		t.Fatalf("err = %v, want ErrNoFeasibleMapping", err)
	}
}

func TestPickRejectsTooManyQubits(t *testing.T) {
	p := profile.Rainbow()
	cal := calibration.FromProfile(p)
	if _, err := Pick(p, cal, p.QubitCount+1, Balanced, Weights{}, nil); err != ErrNoFeasibleMapping {
		t.Fatalf("err = %v, want ErrNoFeasibleMapping", err)
	}
}

func TestWeightsForCustomStrategy(t *testing.T) {
	custom := Weights{SingleQubit: 0.7, TwoQubit: 0.1, Readout: 0.1, Coherence: 0.1}
	if got := weightsFor(CustomStrategy, custom); got != custom {
		t.Fatalf("weightsFor(CustomStrategy) = %+v, want %+v", got, custom)
	}
}
