// Package hybridecdsa implements the classical component of a hybrid
// signature (spec.md §4.1 sign_hybrid): secp256k1 ECDSA, compact-encoded
// as 32-byte r || 32-byte s, kept purely for legacy-verifier compatibility
// alongside the dual PQC signature. Grounded on tools/x402sign/main.go's
// hex-key load / sign / hex-output shape, generalized away from that
// tool's EIP-191-specific text hashing.
package hybridecdsa

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/tyler-smith/go-bip39"
)

const (
	Algorithm = "ECDSA-secp256k1"

	// PublicKeySize and SignatureSize are spec.md's mandated size contract:
	// compressed public key, compact r||s signature (no recovery id).
	PublicKeySize = 33
	SignatureSize = 64
)

var (
	ErrInvalidPublicKey   = errors.New("hybridecdsa: invalid public key length")
	ErrInvalidSignature   = errors.New("hybridecdsa: invalid signature length")
	ErrVerificationFailed = errors.New("hybridecdsa: signature verification failed")
)

// KeyPair custodies a secp256k1 keypair. The secret scalar never leaves
// this package.
type KeyPair struct {
	priv *btcec.PrivateKey
}

// GenerateKeyPair produces a fresh secp256k1 keypair from the system CSPRNG.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("hybridecdsa: generate key: %v", err)
	}
	return &KeyPair{priv: priv}, nil
}

// NewMnemonic generates a fresh BIP-39 mnemonic for operator backup of the
// classical key component — a convenience the teacher's bare hex-key
// x402sign tool doesn't offer but doesn't preclude either.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", fmt.Errorf("hybridecdsa: generate entropy: %v", err)
	}
	return bip39.NewMnemonic(entropy)
}

// GenerateFromMnemonic deterministically derives a keypair from a BIP-39
// mnemonic and optional passphrase, for operator key recovery.
func GenerateFromMnemonic(mnemonic, passphrase string) (*KeyPair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("hybridecdsa: invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	priv, _ := btcec.PrivKeyFromBytes(seed[:32])
	return &KeyPair{priv: priv}, nil
}

// PublicKey returns the 33-byte compressed public key.
func (kp *KeyPair) PublicKey() []byte {
	return kp.priv.PubKey().SerializeCompressed()
}

// Sign produces a 64-byte compact r||s signature over SHA-256(message).
func (kp *KeyPair) Sign(message []byte) ([]byte, error) {
	hash := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, kp.priv.ToECDSA(), hash[:])
	if err != nil {
		return nil, fmt.Errorf("hybridecdsa: sign: %v", err)
	}
	out := make([]byte, SignatureSize)
	r.FillBytes(out[:32])
	s.FillBytes(out[32:])
	return out, nil
}

// Verify checks a 64-byte compact signature against a 33-byte compressed
// public key.
func Verify(publicKey, message, signature []byte) error {
	if len(publicKey) != PublicKeySize {
		return ErrInvalidPublicKey
	}
	if len(signature) != SignatureSize {
		return ErrInvalidSignature
	}
	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return fmt.Errorf("hybridecdsa: parse public key: %v", err)
	}
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	hash := sha256.Sum256(message)
	if !ecdsa.Verify(pub.ToECDSA(), hash[:], r, s) {
		return ErrVerificationFailed
	}
	return nil
}
