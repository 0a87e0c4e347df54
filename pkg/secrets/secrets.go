// Package secrets provides the asymmetric sealing used to protect stored
// passwords. A password sealed under a public key can only be recovered
// with the matching private key, which the store never persists.
package secrets

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/nacl/box"

	"github.com/arthur-debert/sitevault/pkg/errors"
)

// KeySize is the public key length in bytes.
const KeySize = 32

// PublicKey identifies the key a password was sealed under. It travels in
// the document as base64, so a different sealing scheme can replace the
// implementation without changing the stored vocabulary.
type PublicKey [KeySize]byte

// ParsePublicKey decodes a base64-encoded public key.
func ParsePublicKey(encoded string) (PublicKey, error) {
	var key PublicKey
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return key, errors.Wrap(err, errors.ErrBadPublicKey, "public key is not valid base64")
	}
	if len(raw) != KeySize {
		return key, errors.Newf(errors.ErrBadPublicKey, "public key must be %d bytes, got %d", KeySize, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

// Base64 returns the canonical encoded form of the key.
func (k PublicKey) Base64() string {
	return base64.StdEncoding.EncodeToString(k[:])
}

func (k PublicKey) String() string {
	return k.Base64()
}

// Sealer encrypts plaintext under a fixed public key. Implementations must
// be usable without access to any private material.
type Sealer interface {
	Key() PublicKey
	Seal(plaintext string) (ciphertext string, err error)
}

// boxSealer seals with an anonymous NaCl box.
type boxSealer struct {
	key PublicKey
}

// NewSealer returns a Sealer that seals under the given public key.
func NewSealer(key PublicKey) Sealer {
	return &boxSealer{key: key}
}

func (s *boxSealer) Key() PublicKey {
	return s.key
}

func (s *boxSealer) Seal(plaintext string) (string, error) {
	recipient := [KeySize]byte(s.key)
	sealed, err := box.SealAnonymous(nil, []byte(plaintext), &recipient, rand.Reader)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrSealFailure, "failed to seal password")
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// KeyPair holds both halves of a sealing key. The private half exists only
// in memory, for recovery tooling and tests.
type KeyPair struct {
	Public  PublicKey
	private [KeySize]byte
}

// GenerateKeyPair creates a fresh sealing key pair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSealFailure, "failed to generate key pair")
	}
	kp := &KeyPair{Public: PublicKey(*pub)}
	kp.private = *priv
	return kp, nil
}

// Open reverses Seal for ciphertext sealed under this pair's public key.
func (kp *KeyPair) Open(ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrSealFailure, "ciphertext is not valid base64")
	}
	pub := [KeySize]byte(kp.Public)
	plaintext, ok := box.OpenAnonymous(nil, sealed, &pub, &kp.private)
	if !ok {
		return "", errors.New(errors.ErrSealFailure, "failed to open sealed password")
	}
	return string(plaintext), nil
}
