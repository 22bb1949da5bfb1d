// Package calibration models per-qubit and per-pair QVM calibration data
// (spec.md §3 "Qubit calibration"): loaded once at init, refreshable, with
// readers taking an immutable snapshot reference per spec.md §5's resource
// rule. Hot-reload watches a calibration file with
// github.com/rjeczalik/notify (teacher go.mod) and fingerprints each
// snapshot with github.com/zeebo/blake3 (pack-wide fingerprinting
// convention) so callers can cheaply tell whether calibration changed.
package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rjeczalik/notify"
	"github.com/zeebo/blake3"

	"github.com/splendor-labs/qrms/logx"
	"github.com/splendor-labs/qrms/qvm/profile"
)

// QubitCalibration is one qubit's measured error characteristics (spec.md
// §3).
type QubitCalibration struct {
	SingleQubitError float64       `json:"single_qubit_error"`
	Readout01        float64       `json:"readout_0_to_1"`
	Readout10        float64       `json:"readout_1_to_0"`
	T1               time.Duration `json:"t1"`
	T2               time.Duration `json:"t2"`
}

// PairCalibration is one physical-qubit-pair's two-qubit gate
// characteristics (spec.md §3).
type PairCalibration struct {
	TwoQubitError  float64 `json:"two_qubit_error"`
	FSimAngleError float64 `json:"fsim_angle_error"`
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Set is one immutable calibration snapshot.
type Set struct {
	Qubits      map[int]QubitCalibration   `json:"qubits"`
	Pairs       map[[2]int]PairCalibration `json:"-"`
	Fingerprint [32]byte                   `json:"-"`
}

// Qubit returns q's calibration, if known.
func (s Set) Qubit(q int) (QubitCalibration, bool) {
	c, ok := s.Qubits[q]
	return c, ok
}

// Pair returns the (a,b) pair's calibration, if known. Order-insensitive.
func (s Set) Pair(a, b int) (PairCalibration, bool) {
	c, ok := s.Pairs[pairKey(a, b)]
	return c, ok
}

func (s *Set) stamp() {
	indices := make([]int, 0, len(s.Qubits))
	for q := range s.Qubits {
		indices = append(indices, q)
	}
	sort.Ints(indices)

	h := blake3.New()
	for _, q := range indices {
		c := s.Qubits[q]
		fmt.Fprintf(h, "%d:%f:%f:%f:%d:%d;", q, c.SingleQubitError, c.Readout01, c.Readout10, c.T1, c.T2)
	}
	pairs := make([][2]int, 0, len(s.Pairs))
	for k := range s.Pairs {
		pairs = append(pairs, k)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	for _, k := range pairs {
		c := s.Pairs[k]
		fmt.Fprintf(h, "%d-%d:%f:%f;", k[0], k[1], c.TwoQubitError, c.FSimAngleError)
	}
	var fp [32]byte
	copy(fp[:], h.Sum(nil))
	s.Fingerprint = fp
}

// FromProfile derives a calibration snapshot from a processor profile's
// aggregate error rates, applying each named qubit/pair its uniform rate
// — the profile's own constants ARE the per-qubit calibration in the
// absence of a richer per-qubit measurement feed. PairCalibration is
// populated for every edge in the profile's connectivity graph.
func FromProfile(p profile.ProcessorProfile) Set {
	qubits := make(map[int]QubitCalibration, p.QubitCount)
	for q := 0; q < p.QubitCount; q++ {
		qubits[q] = QubitCalibration{
			SingleQubitError: p.SingleQubitErrorRate,
			Readout01:        p.ReadoutErrorRate,
			Readout10:        p.ReadoutErrorRate,
			T1:               p.T1,
			T2:               p.T2,
		}
	}
	pairs := make(map[[2]int]PairCalibration, len(p.Connectivity))
	for _, e := range p.Connectivity {
		pairs[pairKey(e.A, e.B)] = PairCalibration{TwoQubitError: p.TwoQubitErrorRate}
	}
	s := Set{Qubits: qubits, Pairs: pairs}
	s.stamp()
	return s
}

// fileFormat is the on-disk calibration-refresh payload: a flat qubit
// array plus explicit pairs, simpler to hand-edit than the map-keyed Set.
type fileFormat struct {
	Qubits []struct {
		Index            int           `json:"index"`
		SingleQubitError float64       `json:"single_qubit_error"`
		Readout01        float64       `json:"readout_0_to_1"`
		Readout10        float64       `json:"readout_1_to_0"`
		T1Nanos          time.Duration `json:"t1_ns"`
		T2Nanos          time.Duration `json:"t2_ns"`
	} `json:"qubits"`
	Pairs []struct {
		A              int     `json:"a"`
		B              int     `json:"b"`
		TwoQubitError  float64 `json:"two_qubit_error"`
		FSimAngleError float64 `json:"fsim_angle_error"`
	} `json:"pairs"`
}

// LoadFile parses a calibration-refresh JSON document from disk.
func LoadFile(path string) (Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("calibration: read %s: %v", path, err)
	}
	var ff fileFormat
	if err := json.Unmarshal(raw, &ff); err != nil {
		return Set{}, fmt.Errorf("calibration: parse %s: %v", path, err)
	}
	s := Set{
		Qubits: make(map[int]QubitCalibration, len(ff.Qubits)),
		Pairs:  make(map[[2]int]PairCalibration, len(ff.Pairs)),
	}
	for _, q := range ff.Qubits {
		s.Qubits[q.Index] = QubitCalibration{
			SingleQubitError: q.SingleQubitError,
			Readout01:        q.Readout01,
			Readout10:        q.Readout10,
			T1:               q.T1Nanos,
			T2:               q.T2Nanos,
		}
	}
	for _, p := range ff.Pairs {
		s.Pairs[pairKey(p.A, p.B)] = PairCalibration{TwoQubitError: p.TwoQubitError, FSimAngleError: p.FSimAngleError}
	}
	s.stamp()
	return s, nil
}

// Store holds the current calibration snapshot behind an atomic pointer so
// readers never observe a torn update (spec.md §5: "readers take a
// snapshot reference").
type Store struct {
	current atomic.Value // *Set
	log     logx.Logger
	stopCh  chan struct{}
}

// NewStore constructs a Store seeded with an initial snapshot.
func NewStore(initial Set, log logx.Logger) *Store {
	st := &Store{log: log}
	st.current.Store(&initial)
	return st
}

// Snapshot returns the current calibration snapshot. The returned pointer
// is never mutated in place; a refresh always swaps in a new *Set.
func (s *Store) Snapshot() *Set {
	return s.current.Load().(*Set)
}

// Replace atomically swaps in a new calibration snapshot.
func (s *Store) Replace(next Set) {
	prev := s.Snapshot()
	s.current.Store(&next)
	s.log.Info("calibration: snapshot replaced", "previous_fingerprint", fmt.Sprintf("%x", prev.Fingerprint[:8]), "new_fingerprint", fmt.Sprintf("%x", next.Fingerprint[:8]))
}

// WatchFile watches path for writes and reloads+replaces the snapshot on
// each change, supplementing spec.md §3's "refreshable" calibration
// lifetime with a concrete mechanism. The returned stop function halts
// watching; it is safe to call at most once.
func (s *Store) WatchFile(path string) (stop func(), err error) {
	events := make(chan notify.EventInfo, 4)
	if err := notify.Watch(path, events, notify.Write); err != nil {
		return nil, fmt.Errorf("calibration: watch %s: %v", path, err)
	}
	s.stopCh = make(chan struct{})
	go func() {
		for {
			select {
			case <-events:
				next, err := LoadFile(path)
				if err != nil {
					s.log.Warn("calibration: reload failed", "path", path, "error", err)
					continue
				}
				s.Replace(next)
			case <-s.stopCh:
				notify.Stop(events)
				return
			}
		}
	}()
	return func() { close(s.stopCh) }, nil
}
