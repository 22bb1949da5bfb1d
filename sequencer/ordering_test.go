package sequencer

import (
	"testing"
	"time"
)

func mkTx(id, asset string, risk uint32, t time.Time, migration bool) DecryptedTx {
	return DecryptedTx{ID: id, AssetID: asset, RiskLevel: risk, SubmittedAt: t, RequiresMigration: migration}
}

func TestRiskAwareOrdering(t *testing.T) {
	base := time.Now()
	txs := []DecryptedTx{
		mkTx("low", "", 100, base, false),
		mkTx("high", "", 9000, base.Add(time.Second), false),
		mkTx("mid", "", 5000, base.Add(2*time.Second), false),
	}
	out := order(RiskAware, txs, NewRegistry(), false)
	if out[0].ID != "high" || out[1].ID != "mid" || out[2].ID != "low" {
		t.Fatalf("order = %v, want [high mid low]", ids(out))
	}
}

func TestAssetProtectionOrdering(t *testing.T) {
	base := time.Now()
	reg := NewRegistry()
	reg.Register(AssetRecord{AssetID: "tee-asset", RequiresTEE: true})
	reg.Register(AssetRecord{AssetID: "pqc-asset", RequiresPQC: true})
	txs := []DecryptedTx{
		mkTx("plain", "", 9999, base, false),
		mkTx("pqc", "pqc-asset", 10, base, false),
		mkTx("tee", "tee-asset", 5, base, false),
	}
	out := order(AssetProtection, txs, reg, false)
	if out[0].ID != "tee" || out[1].ID != "pqc" || out[2].ID != "plain" {
		t.Fatalf("order = %v, want [tee pqc plain]", ids(out))
	}
}

func TestMigrationAwareOrdering(t *testing.T) {
	base := time.Now()
	txs := []DecryptedTx{
		mkTx("normal", "", 9999, base, false),
		mkTx("migrating-older", "", 10, base, true),
		mkTx("migrating-newer", "", 10, base.Add(time.Second), true),
	}
	out := order(MigrationAware, txs, NewRegistry(), true)
	if out[0].ID != "migrating-older" || out[1].ID != "migrating-newer" || out[2].ID != "normal" {
		t.Fatalf("order = %v, want migration txs first preserving submit order", ids(out))
	}
}

func TestMigrationAwareFallsBackToRiskAwareWhenNotMigrating(t *testing.T) {
	base := time.Now()
	txs := []DecryptedTx{
		mkTx("low", "", 10, base, true),
		mkTx("high", "", 9000, base, false),
	}
	out := order(MigrationAware, txs, NewRegistry(), false)
	if out[0].ID != "high" {
		t.Fatalf("order = %v, want risk-aware order when not migrating", ids(out))
	}
}

func TestHybridOrderingMigrationThenTierThenRisk(t *testing.T) {
	base := time.Now()
	reg := NewRegistry()
	reg.Register(AssetRecord{AssetID: "tee-asset", RequiresTEE: true})
	txs := []DecryptedTx{
		mkTx("plain-high-risk", "", 9999, base, false),
		mkTx("tee-low-risk", "tee-asset", 1, base, false),
		mkTx("migrating", "", 1, base, true),
	}
	out := order(Hybrid, txs, reg, true)
	if out[0].ID != "migrating" {
		t.Fatalf("order[0] = %s, want migrating first", out[0].ID)
	}
	if out[1].ID != "tee-low-risk" {
		t.Fatalf("order[1] = %s, want tee-low-risk (higher tier) before plain-high-risk", out[1].ID)
	}
}

func ids(txs []DecryptedTx) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}
