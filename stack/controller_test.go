package stack

import (
	"context"
	"testing"

	"github.com/splendor-labs/qrms/adapters"
	"github.com/splendor-labs/qrms/apqc"
	"github.com/splendor-labs/qrms/logx"
	"github.com/splendor-labs/qrms/qrm"
	"github.com/splendor-labs/qrms/qvm"
	"github.com/splendor-labs/qrms/qvm/profile"
	"github.com/splendor-labs/qrms/sequencer"
)

func newTestController(t *testing.T) (*Controller, *adapters.MemoryChain) {
	t.Helper()
	log := logx.New("test", "stack")

	oracleCfg := qvm.DefaultConfig()
	oracleCfg.AssessmentIntervalBlocks = 10
	oracle := qvm.New(oracleCfg, profile.Rainbow(), log)

	monitor := qrm.New(qrm.DefaultConfig(), log)

	engine, err := apqc.New(apqc.DefaultConfig(), log)
	if err != nil {
		t.Fatalf("apqc.New: %v", err)
	}

	seqCfg := sequencer.DefaultConfig()
	seq, err := sequencer.New(seqCfg, log)
	if err != nil {
		t.Fatalf("sequencer.New: %v", err)
	}
	t.Cleanup(seq.Close)

	chain := adapters.NewMemoryChain(1)
	tee, err := adapters.NewMemoryTEE(make([]byte, 32), []byte("mrenclave"), []byte("mrsigner"))
	if err != nil {
		t.Fatalf("NewMemoryTEE: %v", err)
	}

	ctrl := New(DefaultConfig(), log, oracle, monitor, engine, seq, chain, nil, tee, nil)
	return ctrl, chain
}

func TestTickRunsAssessmentOnIntervalBoundary(t *testing.T) {
	ctrl, _ := newTestController(t)
	result, err := ctrl.Tick(context.Background(), 10)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !result.Assessed {
		t.Fatal("Assessed = false at a block on the assessment interval boundary")
	}
}

func TestTickSkipsAssessmentOffInterval(t *testing.T) {
	ctrl, _ := newTestController(t)
	result, err := ctrl.Tick(context.Background(), 7)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Assessed {
		t.Fatal("Assessed = true at a block off the assessment interval boundary")
	}
}

func TestTickSubmitsEmptyMempoolAsNoBatch(t *testing.T) {
	ctrl, chain := newTestController(t)
	result, err := ctrl.Tick(context.Background(), 1)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Batch != nil {
		t.Fatal("Batch should be nil with an empty mempool")
	}
	if len(chain.Batches()) != 0 {
		t.Fatal("no batch should have been submitted to the chain")
	}
}

func TestTickAssemblesAndSubmitsBatch(t *testing.T) {
	ctrl, chain := newTestController(t)
	if err := ctrl.seq.SubmitEncrypted(sequencer.EncryptedTx{ID: "tx1", Ciphertext: []byte("payload")}); err != nil {
		t.Fatalf("SubmitEncrypted: %v", err)
	}

	result, err := ctrl.Tick(context.Background(), 1)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if result.Batch == nil {
		t.Fatal("Batch should be populated with a non-empty mempool")
	}
	if !result.SubmittedToChain {
		t.Fatal("SubmittedToChain = false, want true")
	}
	if len(chain.Batches()) != 1 {
		t.Fatalf("chain recorded %d batches, want 1", len(chain.Batches()))
	}
}

func TestTickStagesRotationOnScheduleRecommendation(t *testing.T) {
	ctrl, _ := newTestController(t)
	for i := 0; i < 60; i++ {
		ctrl.monitor.Ingest(qrm.ThreatIndicator{
			Category:   qrm.CategoryDigitalSignatures,
			Severity:   0.9,
			Confidence: 0.9,
			Source:     "test",
		})
	}
	assessment := ctrl.monitor.Assess()
	if assessment.Recommendation != qrm.RecommendationScheduleRotation && assessment.Recommendation != qrm.RecommendationEmergencyRotation {
		t.Skipf("synthetic indicators scored %v, not a rotation-triggering recommendation", assessment.Recommendation)
	}

	result, err := ctrl.Tick(context.Background(), 1)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if assessment.Recommendation == qrm.RecommendationScheduleRotation && !result.StagedRotation {
		t.Fatal("StagedRotation = false despite a ScheduleRotation recommendation")
	}
	if assessment.Recommendation == qrm.RecommendationEmergencyRotation && !result.EmergencyRotated {
		t.Fatal("EmergencyRotated = false despite an EmergencyRotation recommendation")
	}
}
