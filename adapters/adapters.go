// Package adapters defines the four external collaborator interfaces
// (spec.md §6) the core talks to, plus in-memory reference
// implementations used by tests and local development. Shape follows the
// teacher's own PQSignerFn function-type adapter in
// consensus/clique/clique_pq.go: small, narrowly-scoped interfaces the
// rest of the core programs against, never a concrete client.
package adapters

import (
	"context"
	"errors"
)

// ChainCollaborator is the rollup/chain side of spec.md §6's first
// external interface.
type ChainCollaborator interface {
	SubmitBatch(ctx context.Context, canonicalBatch []byte) error
	CurrentBlockNumber(ctx context.Context) (uint64, error)
}

// TEEQuoteType names the attestation scheme spec.md §6's tee.quote_type
// option selects between.
type TEEQuoteType byte

const (
	QuoteTypeTDX TEEQuoteType = iota
	QuoteTypeSEV
	QuoteTypeSGX
)

// ErrQuoteFailed is the Platform-category error spec.md §7 names for a
// failed get_quote call.
var ErrQuoteFailed = errors.New("adapters: TEE quote acquisition failed")

// TEEPlatform is the TEE platform collaborator (spec.md §6): quote
// acquisition/verification and seal/unseal of at-rest secret material.
// Quote bytes are opaque to the core.
type TEEPlatform interface {
	GetQuote(ctx context.Context, reportData [32]byte) (quote []byte, err error)
	VerifyQuote(ctx context.Context, quote []byte, expectedMREnclave, expectedMRSigner []byte) (bool, error)
	Seal(plaintext []byte) ([]byte, error)
	Unseal(sealed []byte) ([]byte, error)
}

// ClientSubmission is the clients-facing interface (spec.md §6): clients
// submit ciphertext encrypted to the sequencer's TEE public key.
type ClientSubmission interface {
	SubmitEncryptedTransaction(ctx context.Context, id string, ciphertext, nonce []byte, assetID string, requiresMigration bool) error
}

// OracleContract is the on-chain oracle contract collaborator (spec.md
// §6): publishing the risk score and rotation events under an APQC dual
// signature.
type OracleContract interface {
	PublishRisk(ctx context.Context, score uint32, timestampUnix int64, mldsaSig, slhdsaSig []byte) error
	PublishRotation(ctx context.Context, newAlgorithmSetTag string, effectiveBlock uint64, mldsaSig, slhdsaSig []byte) error
}
