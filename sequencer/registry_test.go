package sequencer

import "testing"

func TestRegistryRegisterReplacesOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.Register(AssetRecord{AssetID: "a1", RequiresTEE: true})
	r.Register(AssetRecord{AssetID: "a1", RequiresTEE: false, RequiresPQC: true})

	rec, ok := r.Lookup("a1")
	if !ok {
		t.Fatal("Lookup(a1) not found")
	}
	if rec.RequiresTEE || !rec.RequiresPQC {
		t.Fatalf("rec = %+v, want replaced by second Register call", rec)
	}
}

func TestRegistryLookupMiss(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("Lookup(missing) = true, want false")
	}
}

func TestRegistrySnapshotOnlyIncludesActive(t *testing.T) {
	r := NewRegistry()
	r.Register(AssetRecord{AssetID: "active", State: AssetActive})
	r.Register(AssetRecord{AssetID: "migrating", State: AssetMigrating})

	snap := r.Snapshot()
	if _, ok := snap["active"]; !ok {
		t.Fatal("Snapshot missing active asset")
	}
	if _, ok := snap["migrating"]; ok {
		t.Fatal("Snapshot included migrating asset, want excluded")
	}
}

func TestRegistryTransitionAll(t *testing.T) {
	r := NewRegistry()
	r.Register(AssetRecord{AssetID: "a1", State: AssetActive})
	r.Register(AssetRecord{AssetID: "a2", State: AssetActive})
	r.Register(AssetRecord{AssetID: "a3", State: AssetMigrating})

	r.transitionAll(AssetActive, AssetMigrating)

	for _, id := range []string{"a1", "a2"} {
		rec, _ := r.Lookup(id)
		if rec.State != AssetMigrating {
			t.Fatalf("%s.State = %v, want Migrating", id, rec.State)
		}
	}
	rec, _ := r.Lookup("a3")
	if rec.State != AssetMigrating {
		t.Fatal("a3 should remain Migrating, untouched by the from=Active transition")
	}
}

func TestRegistryRestoreOverwritesCurrentEntries(t *testing.T) {
	r := NewRegistry()
	r.Register(AssetRecord{AssetID: "a1", RiskThreshold: 999})

	snapshot := map[string]AssetRecord{"a1": {AssetID: "a1", RiskThreshold: 10}}
	r.restore(snapshot)

	rec, _ := r.Lookup("a1")
	if rec.RiskThreshold != 10 {
		t.Fatalf("RiskThreshold = %d, want restored 10", rec.RiskThreshold)
	}
}

func TestEvaluatePolicyUnregisteredAssetPasses(t *testing.T) {
	r := NewRegistry()
	ok, reason := r.evaluatePolicy("unregistered", 0)
	if !ok || reason != "" {
		t.Fatalf("evaluatePolicy(unregistered) = (%v, %q), want (true, \"\")", ok, reason)
	}
}

func TestEvaluatePolicyBelowThresholdFails(t *testing.T) {
	r := NewRegistry()
	r.Register(AssetRecord{AssetID: "gated", RiskThreshold: 5000})

	ok, reason := r.evaluatePolicy("gated", 1000)
	if ok {
		t.Fatal("evaluatePolicy below threshold should fail")
	}
	if reason != "risk_below_policy_threshold" {
		t.Fatalf("reason = %q, want risk_below_policy_threshold", reason)
	}

	ok, _ = r.evaluatePolicy("gated", 5000)
	if !ok {
		t.Fatal("evaluatePolicy at threshold should pass")
	}
}

func TestAssetRecordTierRanksTEEAbovePQC(t *testing.T) {
	tee := AssetRecord{RequiresTEE: true, RequiresPQC: true}
	pqc := AssetRecord{RequiresPQC: true}
	none := AssetRecord{}

	if tee.tier() != TierRequiresTEE {
		t.Fatalf("tee.tier() = %v, want TierRequiresTEE", tee.tier())
	}
	if pqc.tier() != TierRequiresPQC {
		t.Fatalf("pqc.tier() = %v, want TierRequiresPQC", pqc.tier())
	}
	if none.tier() != TierNone {
		t.Fatalf("none.tier() = %v, want TierNone", none.tier())
	}
}
