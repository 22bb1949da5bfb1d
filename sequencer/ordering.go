package sequencer

import "sort"

// order applies the active OrderingMode to txs, returning a new slice
// (spec.md §4.4 step 4). Sorting is always stable so the deterministic-
// ordering property (spec.md §4.4: "bit-identical across runs and
// workers") holds for any tiebreak that itself compares equal.
func order(mode OrderingMode, txs []DecryptedTx, registry *Registry, migrating bool) []DecryptedTx {
	out := make([]DecryptedTx, len(txs))
	copy(out, txs)

	switch mode {
	case AssetProtection:
		sort.SliceStable(out, func(i, j int) bool {
			ti, tj := tierOf(registry, out[i].AssetID), tierOf(registry, out[j].AssetID)
			if ti != tj {
				return ti > tj
			}
			return riskAwareLess(out[i], out[j])
		})
	case MigrationAware:
		sort.SliceStable(out, func(i, j int) bool {
			if !migrating {
				return riskAwareLess(out[i], out[j])
			}
			mi, mj := out[i].RequiresMigration, out[j].RequiresMigration
			if mi != mj {
				return mi
			}
			if mi && mj {
				return out[i].SubmittedAt.Before(out[j].SubmittedAt)
			}
			return riskAwareLess(out[i], out[j])
		})
	case Hybrid:
		sort.SliceStable(out, func(i, j int) bool {
			ki, kj := hybridKey(out[i], registry, migrating), hybridKey(out[j], registry, migrating)
			if ki != kj {
				return ki < kj
			}
			return riskAwareLess(out[i], out[j])
		})
	default: // RiskAware
		sort.SliceStable(out, func(i, j int) bool { return riskAwareLess(out[i], out[j]) })
	}
	return out
}

// riskAwareLess is spec.md §4.4's RiskAware comparator: descending risk,
// tiebreak ascending submit-timestamp.
func riskAwareLess(a, b DecryptedTx) bool {
	if a.RiskLevel != b.RiskLevel {
		return a.RiskLevel > b.RiskLevel
	}
	return a.SubmittedAt.Before(b.SubmittedAt)
}

func tierOf(registry *Registry, assetID string) ProtectionTier {
	rec, ok := registry.Lookup(assetID)
	if !ok {
		return TierNone
	}
	return rec.tier()
}

// hybridKey packs Hybrid's lexicographic precedence (migration-first,
// then asset-tier, then risk) into a single ordered integer so the
// comparator needs only one <, matching spec.md §4.4's "lexicographic
// key (migration-first, then asset-tier, then risk, then timestamp)";
// timestamp itself is handled by the riskAwareLess tiebreak.
func hybridKey(tx DecryptedTx, registry *Registry, migrating bool) uint64 {
	var migrationBit uint64
	if migrating && tx.RequiresMigration {
		migrationBit = 1
	}
	tier := uint64(tierOf(registry, tx.AssetID))
	// Invert migrationBit and tier so a numerically smaller key sorts
	// first, matching "migration-first" and "higher tier first".
	invMigration := uint64(1) - migrationBit
	invTier := uint64(TierRequiresTEE) - tier
	return invMigration<<8 | invTier
}
