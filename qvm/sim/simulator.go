// Package sim implements the QVM oracle's state-vector circuit
// simulator: the gate set {X, Y, Z, H, S, T, Rx, Ry, Rz, CZ, CNOT, iSWAP,
// √iSWAP} over up to ~25 qubits, an optional per-gate noise model
// (depolarizing, amplitude/phase damping, readout flip), and a
// Born-rule measurement histogram over a configurable shot count.
// Structure (config struct, a result cache sized like the
// teacher's memory pools) is grounded on common/gpu/gpu_processor.go's
// batching architecture, translated from CUDA batch dispatch to gate-by-
// gate amplitude evolution; the cache itself uses
// github.com/VictoriaMetrics/fastcache (teacher go.mod) to memoize
// noiseless circuit measurement distributions.
package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"time"

	"github.com/VictoriaMetrics/fastcache"
)

// MaxQubits is spec.md §4.3's circuit-simulator bound ("state-vector
// simulation of ≤ ~25 qubits").
const MaxQubits = 25

var ErrTooManyQubits = errors.New("sim: circuit exceeds the state-vector simulator's qubit bound")

// GateKind is one of spec.md §4.3's fixed gate-set members.
type GateKind byte

const (
	GateX GateKind = iota
	GateY
	GateZ
	GateH
	GateS
	GateT
	GateRx
	GateRy
	GateRz
	GateCZ
	GateCNOT
	GateISwap
	GateSqrtISwap
)

// Gate is one operation in a Circuit: single-qubit gates take Qubits[0];
// two-qubit gates take Qubits[0] as control/first and Qubits[1] as
// target/second; Rx/Ry/Rz additionally read Theta.
type Gate struct {
	Kind   GateKind
	Qubits [2]int
	Theta  float64
}

func gate1(kind GateKind, q int) Gate       { return Gate{Kind: kind, Qubits: [2]int{q, -1}} }
func gateRot(kind GateKind, q int, theta float64) Gate {
	return Gate{Kind: kind, Qubits: [2]int{q, -1}, Theta: theta}
}
func gate2(kind GateKind, a, b int) Gate { return Gate{Kind: kind, Qubits: [2]int{a, b}} }

// Circuit is an ordered gate sequence over a fixed qubit count.
type Circuit struct {
	Qubits int
	Gates  []Gate
}

// NewCircuit constructs an empty circuit over n qubits.
func NewCircuit(n int) *Circuit { return &Circuit{Qubits: n} }

func (c *Circuit) X(q int) *Circuit  { c.Gates = append(c.Gates, gate1(GateX, q)); return c }
func (c *Circuit) Y(q int) *Circuit  { c.Gates = append(c.Gates, gate1(GateY, q)); return c }
func (c *Circuit) Z(q int) *Circuit  { c.Gates = append(c.Gates, gate1(GateZ, q)); return c }
func (c *Circuit) H(q int) *Circuit  { c.Gates = append(c.Gates, gate1(GateH, q)); return c }
func (c *Circuit) S(q int) *Circuit  { c.Gates = append(c.Gates, gate1(GateS, q)); return c }
func (c *Circuit) T(q int) *Circuit  { c.Gates = append(c.Gates, gate1(GateT, q)); return c }
func (c *Circuit) Rx(q int, theta float64) *Circuit {
	c.Gates = append(c.Gates, gateRot(GateRx, q, theta))
	return c
}
func (c *Circuit) Ry(q int, theta float64) *Circuit {
	c.Gates = append(c.Gates, gateRot(GateRy, q, theta))
	return c
}
func (c *Circuit) Rz(q int, theta float64) *Circuit {
	c.Gates = append(c.Gates, gateRot(GateRz, q, theta))
	return c
}
func (c *Circuit) CZ(a, b int) *Circuit   { c.Gates = append(c.Gates, gate2(GateCZ, a, b)); return c }
func (c *Circuit) CNOT(a, b int) *Circuit { c.Gates = append(c.Gates, gate2(GateCNOT, a, b)); return c }
func (c *Circuit) ISwap(a, b int) *Circuit {
	c.Gates = append(c.Gates, gate2(GateISwap, a, b))
	return c
}
func (c *Circuit) SqrtISwap(a, b int) *Circuit {
	c.Gates = append(c.Gates, gate2(GateSqrtISwap, a, b))
	return c
}

// encode serializes a circuit deterministically for use as a cache key.
func (c *Circuit) encode() []byte {
	buf := make([]byte, 0, 8+len(c.Gates)*18)
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(c.Qubits))
	buf = append(buf, tmp[:]...)
	for _, g := range c.Gates {
		buf = append(buf, byte(g.Kind))
		binary.BigEndian.PutUint32(tmp[:4], uint32(int32(g.Qubits[0])))
		buf = append(buf, tmp[:4]...)
		binary.BigEndian.PutUint32(tmp[:4], uint32(int32(g.Qubits[1])))
		buf = append(buf, tmp[:4]...)
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(g.Theta))
		buf = append(buf, tmp[:]...)
	}
	return buf
}

// NoiseModel composes per-gate depolarizing noise, amplitude/phase
// damping, and readout flip errors (spec.md §4.3). A zero-value
// NoiseModel with Enabled=false performs a noiseless simulation.
type NoiseModel struct {
	Enabled              bool
	SingleQubitErrorRate float64
	TwoQubitErrorRate    float64
	GateTime             time.Duration
	T1                   time.Duration
	T2                   time.Duration
	ReadoutErrorRate     float64
}

// amplitudeDampingGamma and phaseDampingGamma implement spec.md §4.3's
// formulas exactly: γ = 1 − exp(−gate_time/T1 or T2).
func (n NoiseModel) amplitudeDampingGamma() float64 {
	if n.T1 <= 0 {
		return 0
	}
	return 1 - math.Exp(-float64(n.GateTime)/float64(n.T1))
}

func (n NoiseModel) phaseDampingGamma() float64 {
	if n.T2 <= 0 {
		return 0
	}
	return 1 - math.Exp(-float64(n.GateTime)/float64(n.T2))
}

// Config controls measurement shot count and whether noise applies
// (spec.md §6 simulation.repetitions / apply_noise).
type Config struct {
	Repetitions int
	ApplyNoise  bool
}

// DefaultConfig mirrors spec.md §6's default repetitions of 3000.
func DefaultConfig() Config { return Config{Repetitions: 3000, ApplyNoise: false} }

// Histogram maps a measured bitstring (first character = highest-index
// qubit, last character = qubit 0) to its observed
// shot count.
type Histogram map[string]int

// Simulator runs circuits and memoizes noiseless measurement
// distributions in a bounded fastcache, since a noisy circuit's
// histogram is stochastic per run and must not be cached.
type Simulator struct {
	cache *fastcache.Cache
}

// New constructs a Simulator with a result cache of maxBytes capacity.
func New(maxBytes int) *Simulator {
	return &Simulator{cache: fastcache.New(maxBytes)}
}

// Run executes circuit cfg.Repetitions times, returning the measured
// bitstring histogram. When noise is nil or disabled, repeated calls with
// an identical circuit hit the memoization cache.
func (s *Simulator) Run(c *Circuit, noise *NoiseModel, cfg Config) (Histogram, error) {
	if c.Qubits > MaxQubits {
		return nil, ErrTooManyQubits
	}
	reps := cfg.Repetitions
	if reps <= 0 {
		reps = DefaultConfig().Repetitions
	}
	noisy := noise != nil && noise.Enabled

	var cacheKey []byte
	if !noisy {
		cacheKey = append(c.encode(), byte(reps>>24), byte(reps>>16), byte(reps>>8), byte(reps))
		if cached, ok := s.cache.HasGet(nil, cacheKey); ok {
			return decodeHistogram(cached), nil
		}
	}

	hist := make(Histogram)
	for shot := 0; shot < reps; shot++ {
		bits := s.runOnce(c, noise)
		hist[bits]++
	}

	if !noisy {
		s.cache.Set(cacheKey, encodeHistogram(hist))
	}
	return hist, nil
}

// runOnce executes one measurement shot: state-vector evolution with
// optional per-gate noise trajectories, then a Born-rule sample followed
// by readout-flip errors.
func (s *Simulator) runOnce(c *Circuit, noise *NoiseModel) string {
	dim := 1 << uint(c.Qubits)
	state := make([]complex128, dim)
	state[0] = 1

	for _, g := range c.Gates {
		applyGate(state, c.Qubits, g)
		if noise != nil && noise.Enabled {
			applyNoise(state, c.Qubits, g, *noise)
		}
	}

	outcome := sampleBorn(state)
	if noise != nil && noise.Enabled && noise.ReadoutErrorRate > 0 {
		for q := 0; q < c.Qubits; q++ {
			if rand.Float64() < noise.ReadoutErrorRate {
				outcome ^= 1 << uint(q)
			}
		}
	}
	return formatBits(outcome, c.Qubits)
}

func formatBits(outcome, n int) string {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		if outcome&(1<<uint(n-1-i)) != 0 {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// sampleBorn draws one computational-basis outcome from |amplitude|².
func sampleBorn(state []complex128) int {
	r := rand.Float64()
	var cumulative float64
	for i, amp := range state {
		cumulative += real(amp)*real(amp) + imag(amp)*imag(amp)
		if r <= cumulative {
			return i
		}
	}
	return len(state) - 1
}

func encodeHistogram(h Histogram) []byte {
	buf := make([]byte, 0, len(h)*8)
	var tmp [4]byte
	for bits, count := range h {
		binary.BigEndian.PutUint32(tmp[:], uint32(len(bits)))
		buf = append(buf, tmp[:]...)
		buf = append(buf, bits...)
		binary.BigEndian.PutUint32(tmp[:], uint32(count))
		buf = append(buf, tmp[:]...)
	}
	return buf
}

func decodeHistogram(data []byte) Histogram {
	h := make(Histogram)
	for len(data) > 0 {
		n := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		bits := string(data[:n])
		data = data[n:]
		count := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		h[bits] = int(count)
	}
	return h
}

// --- gate application ---

func applyGate(state []complex128, n int, g Gate) {
	switch g.Kind {
	case GateX, GateY, GateZ, GateH, GateS, GateT, GateRx, GateRy, GateRz:
		applySingleQubit(state, n, g.Qubits[0], single1x1Matrix(g))
	case GateCZ:
		applyCZ(state, n, g.Qubits[0], g.Qubits[1])
	case GateCNOT:
		applyCNOT(state, n, g.Qubits[0], g.Qubits[1])
	case GateISwap:
		applyISwap(state, n, g.Qubits[0], g.Qubits[1], false)
	case GateSqrtISwap:
		applyISwap(state, n, g.Qubits[0], g.Qubits[1], true)
	default:
		panic(fmt.Sprintf("sim: unknown gate kind %d", g.Kind))
	}
}

type mat2 [2][2]complex128

func single1x1Matrix(g Gate) mat2 {
	switch g.Kind {
	case GateX:
		return mat2{{0, 1}, {1, 0}}
	case GateY:
		return mat2{{0, -1i}, {1i, 0}}
	case GateZ:
		return mat2{{1, 0}, {0, -1}}
	case GateH:
		inv := complex(1/math.Sqrt2, 0)
		return mat2{{inv, inv}, {inv, -inv}}
	case GateS:
		return mat2{{1, 0}, {0, 1i}}
	case GateT:
		return mat2{{1, 0}, {0, cmplx.Exp(1i * math.Pi / 4)}}
	case GateRx:
		c := complex(math.Cos(g.Theta/2), 0)
		s := complex(0, -math.Sin(g.Theta/2))
		return mat2{{c, s}, {s, c}}
	case GateRy:
		c := complex(math.Cos(g.Theta/2), 0)
		s := complex(math.Sin(g.Theta/2), 0)
		return mat2{{c, -s}, {s, c}}
	case GateRz:
		return mat2{{cmplx.Exp(complex(0, -g.Theta/2)), 0}, {0, cmplx.Exp(complex(0, g.Theta/2))}}
	default:
		return mat2{{1, 0}, {0, 1}}
	}
}

func applySingleQubit(state []complex128, n, q int, m mat2) {
	bit := 1 << uint(q)
	for i := 0; i < len(state); i++ {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := state[i], state[j]
		state[i] = m[0][0]*a0 + m[0][1]*a1
		state[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

func applyCZ(state []complex128, n, a, b int) {
	ba, bb := 1<<uint(a), 1<<uint(b)
	for i := 0; i < len(state); i++ {
		if i&ba != 0 && i&bb != 0 {
			state[i] = -state[i]
		}
	}
}

func applyCNOT(state []complex128, n, control, target int) {
	bc, bt := 1<<uint(control), 1<<uint(target)
	for i := 0; i < len(state); i++ {
		if i&bc == 0 || i&bt != 0 {
			continue
		}
		j := i | bt
		state[i], state[j] = state[j], state[i]
	}
}

// applyISwap implements iSWAP (sqrt=false) and √iSWAP (sqrt=true) on the
// {|01>,|10>} subspace, identity elsewhere.
func applyISwap(state []complex128, n, a, b int, sqrt bool) {
	ba, bb := 1<<uint(a), 1<<uint(b)
	var c, s complex128
	if sqrt {
		c = complex(1/math.Sqrt2, 0)
		s = complex(0, 1/math.Sqrt2)
	} else {
		c = 0
		s = 1i
	}
	for i := 0; i < len(state); i++ {
		if i&ba != 0 || i&bb == 0 {
			continue
		}
		j := (i &^ bb) | ba // flips the roles: |..0(a)..1(b)..> -> |..1(a)..0(b)..>
		a01, a10 := state[i], state[j]
		if sqrt {
			state[i] = c*a01 + s*a10
			state[j] = s*a01 + c*a10
		} else {
			state[i] = s * a10
			state[j] = s * a01
		}
	}
}

// --- noise trajectories ---

// applyNoise applies a single Monte-Carlo noise trajectory step after g:
// depolarizing on the gate's qubit(s) (parameter = the 2q rate for 2-qubit
// gates, the 1q rate otherwise, per spec.md §4.3), then amplitude and
// phase damping on each of the gate's qubits.
func applyNoise(state []complex128, n int, g Gate, noise NoiseModel) {
	qubits := gateQubits(g)
	depolParam := noise.SingleQubitErrorRate
	if len(qubits) == 2 {
		depolParam = noise.TwoQubitErrorRate
	}
	for _, q := range qubits {
		applyDepolarizing(state, n, q, depolParam)
		applyAmplitudeDamping(state, n, q, noise.amplitudeDampingGamma())
		applyPhaseDamping(state, n, q, noise.phaseDampingGamma())
	}
}

func gateQubits(g Gate) []int {
	if g.Qubits[1] < 0 {
		return []int{g.Qubits[0]}
	}
	return []int{g.Qubits[0], g.Qubits[1]}
}

// applyDepolarizing is a quantum-trajectory Monte Carlo approximation of
// the depolarizing channel: with probability p the qubit is hit by a
// uniformly random Pauli error (X, Y, or Z), else left alone.
func applyDepolarizing(state []complex128, n, q int, p float64) {
	if p <= 0 || rand.Float64() >= p {
		return
	}
	switch rand.Intn(3) {
	case 0:
		applySingleQubit(state, n, q, mat2{{0, 1}, {1, 0}})
	case 1:
		applySingleQubit(state, n, q, mat2{{0, -1i}, {1i, 0}})
	default:
		applySingleQubit(state, n, q, mat2{{1, 0}, {0, -1}})
	}
}

// applyAmplitudeDamping is a trajectory approximation of T1 decay: with
// probability γ, project the qubit onto |0> and renormalize (a "jump"
// event); the no-jump branch's amplitude rescaling is omitted for
// tractability, a documented approximation of the true Kraus channel.
func applyAmplitudeDamping(state []complex128, n, q int, gamma float64) {
	if gamma <= 0 || rand.Float64() >= gamma {
		return
	}
	bit := 1 << uint(q)
	var norm float64
	for i := 0; i < len(state); i++ {
		if i&bit != 0 {
			state[i] = 0
		} else {
			norm += real(state[i])*real(state[i]) + imag(state[i])*imag(state[i])
		}
	}
	if norm == 0 {
		return
	}
	scale := complex(1/math.Sqrt(norm), 0)
	for i := 0; i < len(state); i++ {
		state[i] *= scale
	}
}

// applyPhaseDamping is a trajectory approximation of T2 dephasing: with
// probability γ, apply a Z dephasing event to the qubit.
func applyPhaseDamping(state []complex128, n, q int, gamma float64) {
	if gamma <= 0 || rand.Float64() >= gamma {
		return
	}
	applySingleQubit(state, n, q, mat2{{1, 0}, {0, -1}})
}
