package qrm

import (
	"testing"
	"time"

	"github.com/splendor-labs/qrms/logx"
)

func newTestMonitor(t *testing.T) *Monitor {
	t.Helper()
	return New(DefaultConfig(), logx.New("test", "qrm"))
}

func TestWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, c := range Categories {
		sum += Weight(c)
	}
	if sum < 1-1e-9 || sum > 1+1e-9 {
		t.Fatalf("category weights sum to %v, want 1.0 ± 1e-9", sum)
	}
}

func TestColdStartScoresZero(t *testing.T) {
	m := newTestMonitor(t)
	a := m.Assess()
	if a.Score != 0 {
		t.Fatalf("Score = %d, want 0 with no indicators", a.Score)
	}
	if a.Recommendation != RecommendationContinue {
		t.Fatalf("Recommendation = %v, want Continue", a.Recommendation)
	}
}

func TestScheduledRotationThreshold(t *testing.T) {
	m := newTestMonitor(t)
	m.SetEra(EraNISQ)
	for i := 0; i < 5; i++ {
		m.Ingest(ThreatIndicator{
			Category:   CategoryDigitalSignatures,
			Severity:   0.9,
			Confidence: 1.0,
			Timestamp:  time.Now(),
		})
	}
	a := m.Assess()
	if a.Score < m.cfg.ThresholdScheduled || a.Score >= m.cfg.ThresholdEmergency {
		t.Fatalf("Score = %d, want in [%d, %d)", a.Score, m.cfg.ThresholdScheduled, m.cfg.ThresholdEmergency)
	}
	if a.Recommendation != RecommendationScheduleRotation {
		t.Fatalf("Recommendation = %v, want ScheduleRotation", a.Recommendation)
	}
}

func TestScoreAlwaysInBounds(t *testing.T) {
	m := newTestMonitor(t)
	for i := 0; i < 60; i++ {
		m.Ingest(ThreatIndicator{
			Category:   Categories[i%len(Categories)],
			Severity:   1.0,
			Confidence: 1.0,
		})
	}
	a := m.Assess()
	if a.Score > 10000 {
		t.Fatalf("Score = %d, exceeds [0,10000]", a.Score)
	}
}

func TestHistoryWindowDiscardsOldest(t *testing.T) {
	m := newTestMonitor(t)
	// Flood with low-severity noise older than the 50-entry window, then
	// five severe indicators; only the 50 most recent entries stay active.
	for i := 0; i < 100; i++ {
		m.Ingest(ThreatIndicator{Category: CategoryHashReversal, Severity: 0.01, Confidence: 1.0})
	}
	for i := 0; i < 5; i++ {
		m.Ingest(ThreatIndicator{Category: CategoryDecryptionHNDL, Severity: 1.0, Confidence: 1.0})
	}
	a := m.Assess()
	if a.ActiveIndicators != DefaultWindowSize {
		t.Fatalf("ActiveIndicators = %d, want %d", a.ActiveIndicators, DefaultWindowSize)
	}
}

func TestRecommendationMonotonicity(t *testing.T) {
	cfg := DefaultConfig()
	scores := []uint32{0, cfg.ThresholdScheduled/2 - 1, cfg.ThresholdScheduled / 2, cfg.ThresholdScheduled, cfg.ThresholdEmergency}
	var last Recommendation
	var haveLast bool
	for _, s := range scores {
		r := recommendationFor(s, cfg)
		if haveLast && r < last {
			t.Fatalf("recommendation regressed at score %d: %v < %v", s, r, last)
		}
		last, haveLast = r, true
	}
}

func TestEraMultiplierBounds(t *testing.T) {
	for _, era := range []Era{EraPreQuantum, EraNISQ, EraFaultTolerant} {
		if EraMultiplier(CategoryDecryptionHNDL, era) < 0.8 {
			t.Fatalf("decryption-hndl multiplier below 0.8 at era %v", era)
		}
		if EraMultiplier(CategoryHashReversal, era) > 0.2 {
			t.Fatalf("hash-reversal multiplier above 0.2 at era %v", era)
		}
	}
}
