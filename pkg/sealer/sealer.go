// Package sealer encrypts secrets before they are written to storage, using
// ChaCha20-Poly1305 with a random nonce prepended to each ciphertext.
package sealer

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = chacha20poly1305.KeySize

var (
	// ErrInvalidKey is returned when the key is not KeySize bytes long.
	ErrInvalidKey = errors.New("sealer: key must be 32 bytes")
	// ErrCiphertextTooShort is returned when the input cannot hold a nonce and tag.
	ErrCiphertextTooShort = errors.New("sealer: ciphertext too short")
)

// Sealer seals and opens secrets bound to additional data.
type Sealer struct {
	aead cipher.AEAD
}

// New creates a Sealer from a raw 32-byte key.
func New(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("sealer: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// NewFromBase64 creates a Sealer from a standard base64 encoded key.
func NewFromBase64(encoded string) (*Sealer, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("sealer: decode key: %w", err)
	}
	return New(key)
}

// GenerateKey returns a random key suitable for New.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("sealer: generate key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext. additionalData is authenticated but not encrypted;
// the same value must be passed to Open.
func (s *Sealer) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("sealer: nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed, additionalData []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], additionalData)
	if err != nil {
		return nil, fmt.Errorf("sealer: open: %w", err)
	}
	return plaintext, nil
}
