// Package qvm implements the QVM oracle (spec.md §4.3): a named processor
// profile plus calibration snapshot driving an assessment cycle that runs
// the Grover and Shor resource estimators against every named target and
// emits one threat indicator per target into the Quantum Resistance
// Monitor. Composite risk then drives an optional auto-era transition.
// The sub-packages (profile, calibration, sim, picker, estimator) are the
// oracle's constituent instruments; Oracle is the binding the protocol
// stack controller drives once per assessment interval.
package qvm

import (
	"math"
	"time"

	"github.com/splendor-labs/qrms/logx"
	"github.com/splendor-labs/qrms/qrm"
	"github.com/splendor-labs/qrms/qvm/calibration"
	"github.com/splendor-labs/qrms/qvm/estimator"
	"github.com/splendor-labs/qrms/qvm/profile"
)

// DefaultAssessmentIntervalBlocks is spec.md §4.3's documented default
// ("every assessment_interval_blocks (default 100 blocks)").
const DefaultAssessmentIntervalBlocks = 100

// DefaultHorizonYears anchors the severity formula's log scale: a
// resource estimate at exactly this many years from feasibility scores
// severity 0.
const DefaultHorizonYears = 100.0

// Config controls one Oracle's assessment cycle (spec.md §6).
type Config struct {
	AssessmentIntervalBlocks int
	HorizonYears             float64
	AutoEraTransition        bool
	// RiskThresholdNISQ and RiskThresholdFaultTolerant are the composite
	// risk crossings spec.md §4.3 names for auto-era-transition ("> 4000
	// -> nisq; > 7000 -> fault-tolerant").
	RiskThresholdNISQ          uint32
	RiskThresholdFaultTolerant uint32
}

// DefaultConfig mirrors spec.md §4.3/§6's documented defaults.
func DefaultConfig() Config {
	return Config{
		AssessmentIntervalBlocks:   DefaultAssessmentIntervalBlocks,
		HorizonYears:               DefaultHorizonYears,
		AutoEraTransition:          true,
		RiskThresholdNISQ:          4000,
		RiskThresholdFaultTolerant: 7000,
	}
}

// Oracle binds a processor profile and calibration store to the estimator
// instruments and runs the periodic assessment cycle.
type Oracle struct {
	cfg     Config
	profile profile.ProcessorProfile
	cal     *calibration.Store
	log     logx.Logger

	groverParams estimator.GroverParams
	shorParams   estimator.ShorParams
}

// New constructs an Oracle against a named or custom processor profile,
// seeded with a calibration snapshot derived from that profile's
// aggregate error rates.
func New(cfg Config, p profile.ProcessorProfile, log logx.Logger) *Oracle {
	cal := calibration.NewStore(calibration.FromProfile(p), log)
	return &Oracle{
		cfg:          cfg,
		profile:      p,
		cal:          cal,
		log:          log,
		groverParams: estimator.DefaultGroverParams(),
		shorParams:   estimator.DefaultShorParams(),
	}
}

// Calibration exposes the oracle's live calibration store so the protocol
// stack can wire a file watcher or replace snapshots from an external
// feed.
func (o *Oracle) Calibration() *calibration.Store { return o.cal }

// Profile reports the processor profile the oracle was constructed with.
func (o *Oracle) Profile() profile.ProcessorProfile { return o.profile }

// ShouldAssess reports spec.md §4.5 step 1's trigger condition: whether
// blockNumber falls on an assessment boundary.
func (o *Oracle) ShouldAssess(blockNumber uint64) bool {
	interval := o.cfg.AssessmentIntervalBlocks
	if interval <= 0 {
		interval = DefaultAssessmentIntervalBlocks
	}
	return blockNumber%uint64(interval) == 0
}

// AssessAndUpdate runs both estimator oracles for every named target
// (spec.md §4.3's assessment cycle), ingests one threat indicator per
// target into monitor, and returns the composite risk used for
// auto-era-transition, plus the era it recommends (monitor.Era() if
// auto-era-transition is disabled or no threshold crossed).
func (o *Oracle) AssessAndUpdate(monitor *qrm.Monitor, now time.Time) (compositeRisk uint32, era qrm.Era) {
	gateTime := float64(o.profile.GateTime) / float64(time.Second)

	var severities []float64
	for _, target := range estimator.SymmetricTargets {
		est := estimator.Estimate(target, o.profile.QubitCount, gateTime, o.groverParams)
		sev := severityFromYears(est.TimeYears, o.cfg.HorizonYears)
		severities = append(severities, sev)
		monitor.Ingest(qrm.ThreatIndicator{
			Category:     categoryForSymmetric(target.Name),
			SubCategory:  target.Name,
			Severity:     sev,
			Confidence:   confidenceFor(o.profile),
			Source:       "qvm:grover:" + o.profile.Name,
			Timestamp:    now,
			Description:  "Grover resource estimate against " + target.Name,
			EraRelevance: eraForThreatLevel(est.Level),
		})
	}

	avgGateError := (o.profile.SingleQubitErrorRate + o.profile.TwoQubitErrorRate) / 2
	for _, target := range estimator.AsymmetricTargets {
		est := estimator.EstimateShor(target, o.profile.QubitCount, avgGateError, gateTime, o.shorParams)
		sev := severityFromYears(est.TimeYears, o.cfg.HorizonYears)
		severities = append(severities, sev)
		monitor.Ingest(qrm.ThreatIndicator{
			Category:     categoryForAsymmetric(target),
			SubCategory:  target.Name,
			Severity:     sev,
			Confidence:   confidenceFor(o.profile),
			Source:       "qvm:shor:" + o.profile.Name,
			Timestamp:    now,
			Description:  "Shor resource estimate against " + target.Name,
			EraRelevance: eraForThreatLevel(est.Level),
		})
	}

	composite := compositeScore(severities)
	prev := monitor.Era()
	next := prev
	if o.cfg.AutoEraTransition {
		switch {
		case composite > o.cfg.RiskThresholdFaultTolerant:
			next = qrm.EraFaultTolerant
		case composite > o.cfg.RiskThresholdNISQ:
			if next < qrm.EraNISQ {
				next = qrm.EraNISQ
			}
		}
		if next != prev {
			monitor.SetEra(next)
			o.log.Info("qvm: auto era transition", "previous", prev, "composite_risk", composite, "next", next)
		}
	}
	return composite, next
}

// severityFromYears implements spec.md §4.3's "severity = clamp(1 −
// log10(time_years)/log10(horizon_years), 0, 1)". time_years <= 0 (a
// feasibility estimate of effectively zero) clamps to maximum severity.
func severityFromYears(timeYears, horizonYears float64) float64 {
	if timeYears <= 0 {
		return 1
	}
	if horizonYears <= 1 {
		horizonYears = DefaultHorizonYears
	}
	sev := 1 - math.Log10(timeYears)/math.Log10(horizonYears)
	if sev < 0 {
		return 0
	}
	if sev > 1 {
		return 1
	}
	return sev
}

// compositeScore maps the cycle's eight per-target severities onto the
// same [0,10000] scale qrm.RiskAssessment.Score uses, as a simple mean —
// the auto-era-transition thresholds (4000/7000) are defined on this
// same scale in spec.md §4.3.
func compositeScore(severities []float64) uint32 {
	if len(severities) == 0 {
		return 0
	}
	var sum float64
	for _, s := range severities {
		sum += s
	}
	avg := sum / float64(len(severities))
	scaled := math.Round(avg * 10000)
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 10000 {
		scaled = 10000
	}
	return uint32(scaled)
}

// confidenceFor is a processor-dependent constant (spec.md §4.3:
// "confidence = processor-dependent constant"): a cleaner, larger
// processor's simulation-derived estimate is trusted more.
func confidenceFor(p profile.ProcessorProfile) float64 {
	switch {
	case p.QubitCount >= 100:
		return 0.9
	case p.QubitCount >= 60:
		return 0.8
	default:
		return 0.7
	}
}

// eraForThreatLevel derives era_relevance from an estimator's threat
// level (spec.md §4.3: "era_relevance derived from threat level").
func eraForThreatLevel(level estimator.ThreatLevel) qrm.Era {
	switch level {
	case estimator.ThreatImminent, estimator.ThreatNearTerm:
		return qrm.EraFaultTolerant
	case estimator.ThreatMediumTerm:
		return qrm.EraNISQ
	default:
		return qrm.EraPreQuantum
	}
}

func categoryForSymmetric(name string) qrm.Category {
	if name == "SHA-256-preimage" || name == "Keccak-256-preimage" {
		return qrm.CategoryHashReversal
	}
	return qrm.CategoryDecryptionHNDL
}

func categoryForAsymmetric(t estimator.AsymmetricTarget) qrm.Category {
	if t.Kind == estimator.KindECC {
		return qrm.CategoryDigitalSignatures
	}
	return qrm.CategoryKeyManagement
}
