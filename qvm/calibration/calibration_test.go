package calibration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/splendor-labs/qrms/logx"
	"github.com/splendor-labs/qrms/qvm/profile"
)

func TestFromProfileCoversEveryQubitAndEdge(t *testing.T) {
	p := profile.Rainbow()
	s := FromProfile(p)
	for q := 0; q < p.QubitCount; q++ {
		if _, ok := s.Qubit(q); !ok {
			t.Fatalf("qubit %d missing from derived calibration", q)
		}
	}
	for _, e := range p.Connectivity {
		if _, ok := s.Pair(e.A, e.B); !ok {
			t.Fatalf("pair (%d,%d) missing from derived calibration", e.A, e.B)
		}
		if _, ok := s.Pair(e.B, e.A); !ok {
			t.Fatalf("Pair should be order-insensitive for (%d,%d)", e.B, e.A)
		}
	}
	var zero [32]byte
	if s.Fingerprint == zero {
		t.Fatal("fingerprint was never stamped")
	}
}

func TestStampIsDeterministic(t *testing.T) {
	p := profile.Weber()
	a := FromProfile(p)
	b := FromProfile(p)
	if a.Fingerprint != b.Fingerprint {
		t.Fatal("two snapshots derived from the same profile should fingerprint identically")
	}
}

func TestLoadFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.json")

	type qubitEntry struct {
		Index            int           `json:"index"`
		SingleQubitError float64       `json:"single_qubit_error"`
		Readout01        float64       `json:"readout_0_to_1"`
		Readout10        float64       `json:"readout_1_to_0"`
		T1Nanos          time.Duration `json:"t1_ns"`
		T2Nanos          time.Duration `json:"t2_ns"`
	}
	type pairEntry struct {
		A              int     `json:"a"`
		B              int     `json:"b"`
		TwoQubitError  float64 `json:"two_qubit_error"`
		FSimAngleError float64 `json:"fsim_angle_error"`
	}
	doc := struct {
		Qubits []qubitEntry `json:"qubits"`
		Pairs  []pairEntry  `json:"pairs"`
	}{
		Qubits: []qubitEntry{{Index: 0, SingleQubitError: 0.001, Readout01: 0.01, Readout10: 0.02, T1Nanos: 50000, T2Nanos: 40000}},
		Pairs:  []pairEntry{{A: 0, B: 1, TwoQubitError: 0.005, FSimAngleError: 0.0001}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	qc, ok := s.Qubit(0)
	if !ok || qc.SingleQubitError != 0.001 {
		t.Fatalf("qubit 0 = %+v, %v", qc, ok)
	}
	pc, ok := s.Pair(0, 1)
	if !ok || pc.TwoQubitError != 0.005 {
		t.Fatalf("pair (0,1) = %+v, %v", pc, ok)
	}
}

func TestStoreReplaceIsVisibleToSnapshot(t *testing.T) {
	log := logx.New("test", "calibration")
	initial := FromProfile(profile.Rainbow())
	store := NewStore(initial, log)

	if store.Snapshot().Fingerprint != initial.Fingerprint {
		t.Fatal("Snapshot should return the seeded initial set")
	}

	next := FromProfile(profile.Weber())
	store.Replace(next)
	if store.Snapshot().Fingerprint != next.Fingerprint {
		t.Fatal("Snapshot should observe the replaced set")
	}
}
