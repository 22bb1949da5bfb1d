package adapters

import (
	"context"
	"crypto/cipher"
	"errors"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

var errShortSealedInput = errors.New("adapters: sealed input shorter than one nonce")

// MemoryChain is an in-memory ChainCollaborator reference implementation
// for tests: block number advances once per SubmitBatch call, and every
// submitted batch is retained for inspection.
type MemoryChain struct {
	mu      sync.Mutex
	block   uint64
	batches [][]byte
}

// NewMemoryChain constructs a MemoryChain starting at the given block
// number.
func NewMemoryChain(startBlock uint64) *MemoryChain {
	return &MemoryChain{block: startBlock}
}

func (c *MemoryChain) SubmitBatch(_ context.Context, canonicalBatch []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, canonicalBatch)
	c.block++
	return nil
}

func (c *MemoryChain) CurrentBlockNumber(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block, nil
}

// Batches returns every batch submitted so far, in submission order.
func (c *MemoryChain) Batches() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.batches))
	copy(out, c.batches)
	return out
}

// MemoryTEE is an in-memory TEEPlatform reference implementation:
// get_quote returns a fixed tag followed by the report data and the
// configured mr-enclave and mr-signer bytes (there is no real enclave to
// attest to), and seal/unseal use
// ChaCha20-Poly1305 under a fixed process-local key, mirroring the real
// seal/unseal contract ("bytes in, bytes out") without any actual
// hardware boundary.
type MemoryTEE struct {
	aead                cipher.AEAD
	mrEnclave, mrSigner []byte
}

// NewMemoryTEE constructs a MemoryTEE sealing under key (must be exactly
// chacha20poly1305.KeySize bytes).
func NewMemoryTEE(key, mrEnclave, mrSigner []byte) (*MemoryTEE, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &MemoryTEE{aead: aead, mrEnclave: mrEnclave, mrSigner: mrSigner}, nil
}

func (t *MemoryTEE) GetQuote(_ context.Context, reportData [32]byte) ([]byte, error) {
	quote := make([]byte, 0, 4+32+len(t.mrEnclave)+len(t.mrSigner))
	quote = append(quote, []byte("QTE1")...)
	quote = append(quote, reportData[:]...)
	quote = append(quote, t.mrEnclave...)
	quote = append(quote, t.mrSigner...)
	return quote, nil
}

func (t *MemoryTEE) VerifyQuote(_ context.Context, quote []byte, expectedMREnclave, expectedMRSigner []byte) (bool, error) {
	if len(quote) < 4+32 {
		return false, nil
	}
	rest := quote[4+32:]
	if len(rest) != len(expectedMREnclave)+len(expectedMRSigner) {
		return false, nil
	}
	gotEnclave := rest[:len(expectedMREnclave)]
	gotSigner := rest[len(expectedMREnclave):]
	return bytesEqual(gotEnclave, expectedMREnclave) && bytesEqual(gotSigner, expectedMRSigner), nil
}

func (t *MemoryTEE) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, t.aead.NonceSize())
	return t.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (t *MemoryTEE) Unseal(sealed []byte) ([]byte, error) {
	n := t.aead.NonceSize()
	if len(sealed) < n {
		return nil, errShortSealedInput
	}
	return t.aead.Open(nil, sealed[:n], sealed[n:], nil)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MemoryOracle is an in-memory OracleContract reference implementation
// retaining every publication for test assertions.
type MemoryOracle struct {
	mu        sync.Mutex
	risks     []RiskPublication
	rotations []RotationPublication
}

// RiskPublication is one recorded publish_risk call.
type RiskPublication struct {
	Score         uint32
	TimestampUnix int64
	MLDSASig      []byte
	SLHDSASig     []byte
}

// RotationPublication is one recorded publish_rotation call.
type RotationPublication struct {
	NewAlgorithmSetTag string
	EffectiveBlock     uint64
	MLDSASig           []byte
	SLHDSASig          []byte
}

func NewMemoryOracle() *MemoryOracle { return &MemoryOracle{} }

func (o *MemoryOracle) PublishRisk(_ context.Context, score uint32, timestampUnix int64, mldsaSig, slhdsaSig []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.risks = append(o.risks, RiskPublication{Score: score, TimestampUnix: timestampUnix, MLDSASig: mldsaSig, SLHDSASig: slhdsaSig})
	return nil
}

func (o *MemoryOracle) PublishRotation(_ context.Context, tag string, effectiveBlock uint64, mldsaSig, slhdsaSig []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotations = append(o.rotations, RotationPublication{NewAlgorithmSetTag: tag, EffectiveBlock: effectiveBlock, MLDSASig: mldsaSig, SLHDSASig: slhdsaSig})
	return nil
}

func (o *MemoryOracle) Risks() []RiskPublication {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]RiskPublication, len(o.risks))
	copy(out, o.risks)
	return out
}

func (o *MemoryOracle) Rotations() []RotationPublication {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]RotationPublication, len(o.rotations))
	copy(out, o.rotations)
	return out
}
