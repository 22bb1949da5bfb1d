// Package mlkem specifies a key-encapsulation interface for client
// submissions to the TEE sequencer; the sequencer package itself does not
// import it. spec.md is explicit that
// the KEM layer is a non-goal beyond its size contract: "do not guess the
// semantics the source intended." This package therefore exposes only
// Encapsulate/Decapsulate plus size accessors; no component in this tree
// negotiates concrete KEM parameters beyond what's written here.
package mlkem

import (
	"errors"
	"fmt"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/schemes"
)

const schemeName = "ML-KEM-768"

var (
	ErrInvalidPublicKey = errors.New("mlkem: invalid public key length")
	ErrInvalidCiphertext = errors.New("mlkem: invalid ciphertext length")
)

func scheme() kem.Scheme {
	s := schemes.ByName(schemeName)
	if s == nil {
		panic("mlkem: circl scheme " + schemeName + " is not registered")
	}
	return s
}

// Sizes reports the byte lengths a concrete KEM backend must contract to.
func Sizes() (publicKeySize, ciphertextSize, sharedSecretSize int) {
	s := scheme()
	return s.PublicKeySize(), s.CiphertextSize(), s.SharedKeySize()
}

// KeyPair custodies a KEM keypair; the secret key is not exported. The
// sequencer package does not use it: it decrypts through its own TEEKey
// interface.
type KeyPair struct {
	pub  kem.PublicKey
	priv kem.PrivateKey
}

func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := scheme().GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("mlkem: generate keypair: %v", err)
	}
	return &KeyPair{pub: pub, priv: priv}, nil
}

func (kp *KeyPair) PublicKeyBytes() ([]byte, error) {
	return kp.pub.MarshalBinary()
}

// Encapsulate produces a ciphertext and shared secret under the given
// public key bytes.
func Encapsulate(publicKey []byte) (ciphertext, sharedSecret []byte, err error) {
	s := scheme()
	if len(publicKey) != s.PublicKeySize() {
		return nil, nil, ErrInvalidPublicKey
	}
	pub, err := s.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("mlkem: unmarshal public key: %v", err)
	}
	ct, ss, err := s.Encapsulate(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("mlkem: encapsulate: %v", err)
	}
	return ct, ss, nil
}

// Decapsulate recovers the shared secret from a ciphertext using the
// keypair's secret key; the secret key never leaves this package.
func (kp *KeyPair) Decapsulate(ciphertext []byte) ([]byte, error) {
	s := scheme()
	if len(ciphertext) != s.CiphertextSize() {
		return nil, ErrInvalidCiphertext
	}
	ss, err := s.Decapsulate(kp.priv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("mlkem: decapsulate: %v", err)
	}
	return ss, nil
}
