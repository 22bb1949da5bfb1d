// Package digest provides the hashing primitives shared across the core:
// Keccak-256 for internal fingerprints (mirroring the teacher's pervasive
// crypto.Keccak256 use) and SHA-256 for the attestation report-data
// preimage, which spec.md names explicitly and so is not a style choice.
package digest

import (
	"crypto/sha256"

	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the concatenation of data using Keccak-256, matching
// crypto.Keccak256 in the teacher's pq_engine.go and clique_pq.go.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// ReportData computes the 32-byte SHA-256 hash that must equal a batch's
// attestation.report_data (spec.md §3, §8 invariant 7).
func ReportData(canonicalBody []byte) [32]byte {
	return sha256.Sum256(canonicalBody)
}
