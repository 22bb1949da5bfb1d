package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.QRM.ThresholdScheduled != 6000 || cfg.QRM.ThresholdEmergency != 9000 {
		t.Fatalf("QRM thresholds = %+v, want {6000 9000}", cfg.QRM)
	}
	if cfg.QVM.AssessmentIntervalBlocks != 100 {
		t.Fatalf("AssessmentIntervalBlocks = %d, want 100", cfg.QVM.AssessmentIntervalBlocks)
	}
	if cfg.APQC.GraceBlocks != 1000 {
		t.Fatalf("GraceBlocks = %d, want 1000", cfg.APQC.GraceBlocks)
	}
	if cfg.Sequencer.MempoolCapacity != 10000 {
		t.Fatalf("MempoolCapacity = %d, want 10000", cfg.Sequencer.MempoolCapacity)
	}
}

func TestLoadFileOverridesOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrms.toml")
	const body = `
[qrm]
risk_threshold_scheduled = 5000

[sequencer]
intelligence_mode = "risk_aware"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.QRM.ThresholdScheduled != 5000 {
		t.Fatalf("ThresholdScheduled = %d, want overridden 5000", cfg.QRM.ThresholdScheduled)
	}
	if cfg.QRM.ThresholdEmergency != 9000 {
		t.Fatalf("ThresholdEmergency = %d, want default 9000 preserved", cfg.QRM.ThresholdEmergency)
	}
	if cfg.Sequencer.IntelligenceMode != "risk_aware" {
		t.Fatalf("IntelligenceMode = %q, want risk_aware", cfg.Sequencer.IntelligenceMode)
	}
	if cfg.QVM.ProcessorProfile != "willow_pink" {
		t.Fatalf("ProcessorProfile = %q, want default willow_pink preserved", cfg.QVM.ProcessorProfile)
	}
}

func TestLoadFileMissingReturnsError(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("LoadFile of a nonexistent path should return an error")
	}
}
