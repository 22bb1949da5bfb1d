// Package slhdsa implements the SLH-DSA-256s (FIPS 205) signer/verifier
// used as the backup half of every dual signature — the "harvest now,
// decrypt later" hedge against an eventual ML-DSA break, since SLH-DSA's
// hash-based security rests on different assumptions. Function shapes
// mirror the teacher's crypto/slhdsa package; the backend is
// cloudflare/circl rather than the teacher's unimplemented liboqs
// fallback.
package slhdsa

import (
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/schemes"
)

const (
	Algorithm = "SLH-DSA-256s"

	schemeName = "SLH-DSA-SHA2-256s"

	// PublicKeySize and SignatureSize are spec.md's mandated SLH-DSA-256s
	// size contract.
	PublicKeySize = 64
	SignatureSize = 29792
)

var (
	ErrInvalidPublicKey   = errors.New("slhdsa: invalid public key length")
	ErrInvalidSignature   = errors.New("slhdsa: invalid signature length")
	ErrVerificationFailed = errors.New("slhdsa: signature verification failed")
	ErrUnmarshalPublicKey = errors.New("slhdsa: malformed public key encoding")
)

func scheme() sign.Scheme {
	s := schemes.ByName(schemeName)
	if s == nil {
		panic("slhdsa: circl scheme " + schemeName + " is not registered")
	}
	return s
}

// KeyPair custodies an SLH-DSA-256s keypair; same secrecy contract as
// mldsa.KeyPair.
type KeyPair struct {
	pub      sign.PublicKey
	priv     sign.PrivateKey
	pubBytes []byte
}

func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := scheme().GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("slhdsa: generate key: %v", err)
	}
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("slhdsa: marshal public key: %v", err)
	}
	if len(pubBytes) != PublicKeySize {
		return nil, fmt.Errorf("slhdsa: unexpected public key size %d, want %d", len(pubBytes), PublicKeySize)
	}
	return &KeyPair{pub: pub, priv: priv, pubBytes: pubBytes}, nil
}

func (kp *KeyPair) PublicKey() []byte {
	out := make([]byte, len(kp.pubBytes))
	copy(out, kp.pubBytes)
	return out
}

func (kp *KeyPair) Sign(message []byte) ([]byte, error) {
	sig := scheme().Sign(kp.priv, message, nil)
	if len(sig) != SignatureSize {
		return nil, fmt.Errorf("slhdsa: unexpected signature size %d, want %d", len(sig), SignatureSize)
	}
	return sig, nil
}

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

func ValidateSizes(signature, publicKey []byte) error {
	if len(publicKey) != PublicKeySize {
		return ErrInvalidPublicKey
	}
	if len(signature) != SignatureSize {
		return ErrInvalidSignature
	}
	return nil
}
