// Package keystest generates RSA key material for tests.
package keystest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

var (
	once   sync.Once
	shared *rsa.PrivateKey
	genErr error
)

// Key returns a 2048-bit key shared by every test in the binary.
func Key(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	once.Do(func() {
		shared, genErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if genErr != nil {
		t.Fatalf("generate rsa key: %v", genErr)
	}
	return shared
}

// NewKey returns a fresh key, for tests that need a second, unrelated key.
func NewKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return k
}

func PrivatePEM(t testing.TB, k *rsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(k)
	if err != nil {
		t.Fatalf("marshal private key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func PublicPEM(t testing.TB, k *rsa.PublicKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(k)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// WriteFiles writes the pair under dir and returns both paths.
func WriteFiles(t testing.TB, dir string, k *rsa.PrivateKey) (privPath, pubPath string) {
	t.Helper()
	privPath = filepath.Join(dir, "private_key.pem")
	pubPath = filepath.Join(dir, "public_key.pem")
	if err := os.WriteFile(privPath, PrivatePEM(t, k), 0o600); err != nil {
		t.Fatalf("write private key: %v", err)
	}
	if err := os.WriteFile(pubPath, PublicPEM(t, &k.PublicKey), 0o644); err != nil {
		t.Fatalf("write public key: %v", err)
	}
	return privPath, pubPath
}
