package sim

import "testing"

func TestBellStateMeasuresCorrelated(t *testing.T) {
	c := NewCircuit(2).H(0).CNOT(0, 1)
	s := New(1 << 20)
	hist, err := s.Run(c, nil, Config{Repetitions: 500})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for bits, count := range hist {
		if bits != "00" && bits != "11" && count > 0 {
			t.Fatalf("Bell state produced uncorrelated outcome %q (count %d)", bits, count)
		}
	}
	if len(hist) == 0 {
		t.Fatal("histogram is empty")
	}
}

func TestXFlipsDeterministically(t *testing.T) {
	c := NewCircuit(1).X(0)
	s := New(1 << 16)
	hist, err := s.Run(c, nil, Config{Repetitions: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(hist) != 1 || hist["1"] != 100 {
		t.Fatalf("X|0> histogram = %+v, want {\"1\":100}", hist)
	}
}

func TestTooManyQubitsRejected(t *testing.T) {
	c := NewCircuit(MaxQubits + 1)
	s := New(1 << 16)
	if _, err := s.Run(c, nil, DefaultConfig()); err != ErrTooManyQubits {
		t.Fatalf("err = %v, want ErrTooManyQubits", err)
	}
}

func TestNoiselessResultsAreCached(t *testing.T) {
	c := NewCircuit(1).H(0)
	s := New(1 << 16)
	cfg := Config{Repetitions: 10}
	first, err := s.Run(c, nil, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := s.Run(c, nil, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(first) != len(second) {
		t.Fatal("cached rerun returned a differently shaped histogram")
	}
	for bits, count := range first {
		if second[bits] != count {
			t.Fatalf("cached rerun diverged: %q had %d then %d", bits, count, second[bits])
		}
	}
}

func TestNoisyRunsAreNotCached(t *testing.T) {
	c := NewCircuit(1).H(0)
	s := New(1 << 16)
	noise := &NoiseModel{Enabled: true, SingleQubitErrorRate: 0.5, GateTime: 25, T1: 1000, T2: 1000, ReadoutErrorRate: 0.1}
	cfg := Config{Repetitions: 200}
	if _, err := s.Run(c, noise, cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// A second run with a heavy noise parameter should not collide with the
	// noiseless cache entry for the same circuit.
	clean, err := s.Run(c, nil, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(clean) == 0 {
		t.Fatal("noiseless histogram unexpectedly empty")
	}
}

func TestAmplitudeDampingGammaBounds(t *testing.T) {
	n := NoiseModel{GateTime: 25, T1: 1000}
	g := n.amplitudeDampingGamma()
	if g <= 0 || g >= 1 {
		t.Fatalf("amplitudeDampingGamma = %v, want in (0,1)", g)
	}
	zero := NoiseModel{}
	if got := zero.amplitudeDampingGamma(); got != 0 {
		t.Fatalf("zero-T1 gamma = %v, want 0", got)
	}
}
