// Package mldsa implements the ML-DSA-87 (FIPS 204) signer/verifier used as
// the primary half of every dual signature. The function shapes
// (GenerateKeyPair/Sign/Verify/ValidateSizes) mirror the teacher's
// crypto/mldsa package; the backend is cloudflare/circl's pure-Go
// Dilithium5 implementation rather than the teacher's cgo/liboqs call-out,
// since spec.md treats this as an opaque black-box signer obeying NIST
// sizes and places no requirement on the backend beyond that.
package mldsa

import (
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/schemes"
)

const (
	// Algorithm is the human-readable tag used in algorithm-set strings
	// and publication bodies (spec.md §6).
	Algorithm = "ML-DSA-87"

	schemeName = "Dilithium5"

	// PublicKeySize and SignatureSize are the size contracts spec.md §3/§6
	// mandates for ML-DSA-87 and MUST be enforced at every boundary.
	PublicKeySize = 2592
	SignatureSize = 4595
)

var (
	ErrInvalidPublicKey    = errors.New("mldsa: invalid public key length")
	ErrInvalidSignature    = errors.New("mldsa: invalid signature length")
	ErrVerificationFailed  = errors.New("mldsa: signature verification failed")
	ErrUnmarshalPublicKey  = errors.New("mldsa: malformed public key encoding")
)

func scheme() sign.Scheme {
	s := schemes.ByName(schemeName)
	if s == nil {
		// A missing registration is a build-time integration bug, not a
		// runtime condition callers can recover from.
		panic("mldsa: circl scheme " + schemeName + " is not registered")
	}
	return s
}

// KeyPair custodies an ML-DSA-87 keypair. The secret component is never
// exposed through PublicKey or any other accessor; only Sign consumes it,
// internally, within this package.
type KeyPair struct {
	pub      sign.PublicKey
	priv     sign.PrivateKey
	pubBytes []byte
}

// GenerateKeyPair produces a fresh ML-DSA-87 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := scheme().GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("mldsa: generate key: %v", err)
	}
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("mldsa: marshal public key: %v", err)
	}
	if len(pubBytes) != PublicKeySize {
		return nil, fmt.Errorf("mldsa: unexpected public key size %d, want %d", len(pubBytes), PublicKeySize)
	}
	return &KeyPair{pub: pub, priv: priv, pubBytes: pubBytes}, nil
}

// PublicKey returns a defensive copy of the public key bytes for external
// registration (spec.md §4.1 public_keys()).
func (kp *KeyPair) PublicKey() []byte {
	out := make([]byte, len(kp.pubBytes))
	copy(out, kp.pubBytes)
	return out
}

// Sign produces an ML-DSA-87 signature over message using the active
// secret key. Callers outside this package never see the secret key
// itself.
func (kp *KeyPair) Sign(message []byte) ([]byte, error) {
	sig := scheme().Sign(kp.priv, message, nil)
	if len(sig) != SignatureSize {
		return nil, fmt.Errorf("mldsa: unexpected signature size %d, want %d", len(sig), SignatureSize)
	}
	return sig, nil
}

// Verify checks an ML-DSA-87 signature against a public key. It is
// all-or-nothing: there is no probabilistic shortcut, per spec.md §9
// open question 1.
func Verify(publicKey, message, signature []byte) error {
	if err := ValidateSizes(signature, publicKey); err != nil {
		return err
	}
	pub, err := scheme().UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return ErrUnmarshalPublicKey
	}
	if !scheme().Verify(pub, message, signature, nil) {
		return ErrVerificationFailed
	}
	return nil
}

// ValidateSizes enforces the ML-DSA-87 size contract independent of
// verification, used by APQC to raise MalformedSignature before ever
// attempting a cryptographic check.
func ValidateSizes(signature, publicKey []byte) error {
	if len(publicKey) != PublicKeySize {
		return ErrInvalidPublicKey
	}
	if len(signature) != SignatureSize {
		return ErrInvalidSignature
	}
	return nil
}
