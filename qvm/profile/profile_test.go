package profile

import "testing"

func TestNamedProfilesHaveGridConnectivity(t *testing.T) {
	for _, p := range []ProcessorProfile{WillowPink(), Weber(), Rainbow()} {
		if len(p.Connectivity) == 0 {
			t.Fatalf("%s: connectivity graph is empty", p.Name)
		}
		for _, e := range p.Connectivity {
			if e.A < 0 || e.A >= p.QubitCount || e.B < 0 || e.B >= p.QubitCount {
				t.Fatalf("%s: edge %+v out of bounds for %d qubits", p.Name, e, p.QubitCount)
			}
		}
		if !p.HasEdge(p.Connectivity[0].A, p.Connectivity[0].B) {
			t.Fatalf("%s: HasEdge false for a known connectivity edge", p.Name)
		}
		if p.HasEdge(p.Connectivity[0].B, p.Connectivity[0].A) == false {
			t.Fatalf("%s: HasEdge should be symmetric", p.Name)
		}
	}
}

func TestByName(t *testing.T) {
	if p, ok := ByName("willow_pink"); !ok || p.QubitCount != 105 {
		t.Fatalf("ByName(willow_pink) = %+v, %v", p, ok)
	}
	if p, ok := ByName("weber"); !ok || p.QubitCount != 72 {
		t.Fatalf("ByName(weber) = %+v, %v", p, ok)
	}
	if p, ok := ByName("rainbow"); !ok || p.QubitCount != 53 {
		t.Fatalf("ByName(rainbow) = %+v, %v", p, ok)
	}
	if _, ok := ByName("nonexistent"); ok {
		t.Fatal("ByName(nonexistent) = true, want false")
	}
}
