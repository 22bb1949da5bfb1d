package qrm

import (
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/splendor-labs/qrms/logx"
)

// historyCapacity is the "bounded ring of ≥ 1000 entries" spec.md §4.2
// mandates for ingest(). Backed by the teacher's lru.Cache (the plain LRU,
// not the ARC variant apqc uses for its verification cache) whose Keys()
// returns oldest-to-newest — exactly a FIFO ring when keys are
// monotonically increasing sequence numbers that are never re-read via Get.
const historyCapacity = 1000

// DefaultWindowSize is the scoring window N (spec.md §3/§4.2 step 1).
const DefaultWindowSize = 50

// Config controls the monitor's scoring window and recommendation
// thresholds (spec.md §6).
type Config struct {
	WindowSize              int
	ThresholdScheduled      uint32
	ThresholdEmergency      uint32
}

// DefaultConfig mirrors spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		WindowSize:         DefaultWindowSize,
		ThresholdScheduled: 6000,
		ThresholdEmergency: 9000,
	}
}

// Monitor is the Quantum Resistance Monitor: an append-only bounded
// indicator history plus a pure scoring function over its recent window
// (spec.md §4.2). validateTaxonomy runs once at construction so a
// misconfigured weight table crashes at startup, not mid-assessment.
type Monitor struct {
	cfg Config
	log logx.Logger

	mu      sync.RWMutex
	history *lru.Cache
	seq     uint64
	era     Era
}

// New constructs a Monitor, enforcing spec.md §4.2's taxonomy invariants
// (weight sum, era-multiplier bounds) before accepting any indicators.
func New(cfg Config, log logx.Logger) *Monitor {
	validateTaxonomy()
	history, err := lru.New(historyCapacity)
	if err != nil {
		// lru.New only fails for size <= 0, a build-time constant here.
		panic(&InvariantBroken{Which: "failed to allocate indicator history: " + err.Error()})
	}
	return &Monitor{cfg: cfg, log: log, history: history, era: EraPreQuantum}
}

// Ingest appends an indicator to the bounded history (spec.md §4.2
// ingest()). Overflow discards the oldest entry.
func (m *Monitor) Ingest(ind ThreatIndicator) {
	m.mu.Lock()
	m.seq++
	key := m.seq
	m.history.Add(key, ind)
	m.mu.Unlock()
	m.log.Debug("qrm: ingested threat indicator", "category", ind.Category, "severity", ind.Severity, "confidence", ind.Confidence, "source", ind.Source)
}

// SetEra overrides the era used by Assess (spec.md §4.2 set_era()),
// normally driven by the protocol-stack controller from the QVM oracle's
// auto-era-transition logic.
func (m *Monitor) SetEra(era Era) {
	m.mu.Lock()
	prev := m.era
	m.era = era
	m.mu.Unlock()
	if era != prev {
		m.log.Info("qrm: era updated", "previous", prev, "current", era)
	}
}

// Era reports the monitor's current era.
func (m *Monitor) Era() Era {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.era
}

// recentWindowLocked returns the WindowSize most recent indicators,
// oldest-first, assuming the caller holds at least a read lock.
func (m *Monitor) recentWindowLocked() []ThreatIndicator {
	keys := m.history.Keys() // oldest-to-newest
	n := m.cfg.WindowSize
	if n <= 0 {
		n = DefaultWindowSize
	}
	if n > len(keys) {
		n = len(keys)
	}
	window := make([]ThreatIndicator, 0, n)
	for _, k := range keys[len(keys)-n:] {
		if v, ok := m.history.Peek(k); ok {
			window = append(window, v.(ThreatIndicator))
		}
	}
	return window
}

// Assess computes a full RiskAssessment over the recent window (spec.md
// §4.2 assess()). It is a pure function of the current history window,
// era, and threshold config — repeated calls with no intervening Ingest
// or SetEra return identical results.
func (m *Monitor) Assess() RiskAssessment {
	m.mu.RLock()
	window := m.recentWindowLocked()
	era := m.era
	m.mu.RUnlock()

	byCategory := make(map[Category][]ThreatIndicator, len(Categories))
	for _, ind := range window {
		byCategory[ind.Category] = append(byCategory[ind.Category], ind)
	}

	breakdown := make([]CategoryBreakdown, 0, len(Categories))
	var weightedSum, weightTotal float64
	for _, c := range Categories {
		inds := byCategory[c]
		catScore := categoryScore(c, era, inds)
		breakdown = append(breakdown, CategoryBreakdown{
			Category:       c,
			Score:          uint32(math.Round(catScore)),
			IndicatorCount: len(inds),
		})
		w := Weight(c)
		weightedSum += catScore * w
		weightTotal += w
	}

	var score float64
	if weightTotal > 0 {
		score = weightedSum / weightTotal
	}
	score = math.Round(score)
	if score < 0 {
		score = 0
	}
	if score > 10000 {
		score = 10000
	}

	rec := recommendationFor(uint32(score), m.cfg)
	return RiskAssessment{
		Score:            uint32(score),
		Recommendation:   rec,
		Breakdown:        breakdown,
		ActiveIndicators: len(window),
		Era:              era,
		Timestamp:        time.Now(),
	}
}

// categoryScore implements spec.md §4.2 step 2: a confidence-weighted
// average of severity·era_multiplier, scaled to [0,10000]. An empty
// category scores 0.
func categoryScore(c Category, era Era, inds []ThreatIndicator) float64 {
	if len(inds) == 0 {
		return 0
	}
	mult := EraMultiplier(c, era)
	var weighted, confidenceTotal float64
	for _, ind := range inds {
		weighted += ind.Severity * ind.Confidence * mult
		confidenceTotal += ind.Confidence
	}
	if confidenceTotal == 0 {
		return 0
	}
	avg := weighted / confidenceTotal
	return avg * 10000
}

// recommendationFor is the pure threshold function of spec.md §3's
// recommendation table.
func recommendationFor(score uint32, cfg Config) Recommendation {
	switch {
	case score >= cfg.ThresholdEmergency:
		return RecommendationEmergencyRotation
	case score >= cfg.ThresholdScheduled:
		return RecommendationScheduleRotation
	case score >= cfg.ThresholdScheduled/2:
		return RecommendationMonitorClosely
	default:
		return RecommendationContinue
	}
}
