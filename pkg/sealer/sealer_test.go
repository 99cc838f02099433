package sealer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNew_InvalidKey(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33} {
		if _, err := New(make([]byte, n)); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("New(%d bytes) error = %v, want ErrInvalidKey", n, err)
		}
	}
}

func TestSealOpen_Roundtrip(t *testing.T) {
	s, err := New(testKey())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	secret := []byte("access-sandbox-de3ce8ef-33f8-452c-a685-8671031fc0f6")
	aad := []byte("item-123")

	sealed, err := s.Seal(secret, aad)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if bytes.Contains(sealed, secret) {
		t.Fatal("sealed value contains the plaintext")
	}

	opened, err := s.Open(sealed, aad)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(opened, secret) {
		t.Errorf("Open() = %q, want %q", opened, secret)
	}
}

func TestSeal_NonceDiffers(t *testing.T) {
	s, _ := New(testKey())
	a, _ := s.Seal([]byte("same"), nil)
	b, _ := s.Seal([]byte("same"), nil)
	if bytes.Equal(a, b) {
		t.Error("Seal() produced identical output for identical input")
	}
}

func TestOpen_WrongAdditionalData(t *testing.T) {
	s, _ := New(testKey())
	sealed, _ := s.Seal([]byte("secret"), []byte("item-a"))
	if _, err := s.Open(sealed, []byte("item-b")); err == nil {
		t.Error("Open() accepted mismatched additional data")
	}
}

func TestOpen_Tampered(t *testing.T) {
	s, _ := New(testKey())
	sealed, _ := s.Seal([]byte("secret"), nil)
	sealed[len(sealed)-1] ^= 0xff
	if _, err := s.Open(sealed, nil); err == nil {
		t.Error("Open() accepted tampered ciphertext")
	}
}

func TestOpen_TooShort(t *testing.T) {
	s, _ := New(testKey())
	if _, err := s.Open([]byte("short"), nil); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("Open() error = %v, want ErrCiphertextTooShort", err)
	}
}

func TestNewFromBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(testKey())
	if _, err := NewFromBase64(encoded); err != nil {
		t.Fatalf("NewFromBase64() error = %v", err)
	}
	if _, err := NewFromBase64("not base64!!"); err == nil {
		t.Error("NewFromBase64() accepted invalid base64")
	}
	if _, err := NewFromBase64(base64.StdEncoding.EncodeToString([]byte("short"))); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("NewFromBase64(short) error = %v, want ErrInvalidKey", err)
	}
}

func TestGenerateKey(t *testing.T) {
	k1, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	k2, _ := GenerateKey()
	if len(k1) != KeySize {
		t.Errorf("len(key) = %d, want %d", len(k1), KeySize)
	}
	if bytes.Equal(k1, k2) {
		t.Error("GenerateKey() returned the same key twice")
	}
}
