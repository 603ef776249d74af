// Package keys loads the RSA signing material used for access and refresh
// tokens. Keys are read once at startup and never change afterwards.
package keys

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrKeyNotFound = errors.New("key file not found")
	ErrKeyInvalid  = errors.New("key file is not a valid RSA PEM key")
	ErrKeyMismatch = errors.New("public key does not match private key")
)

// Config locates the key files. A file named like the basename of a path
// inside SecretDir (the runtime secret mount) takes precedence over the
// packaged path itself.
type Config struct {
	SecretDir      string
	PrivateKeyPath string
	PublicKeyPath  string
}

// Pair is the signer side: identity holds both halves.
type Pair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// NewPair wraps an already parsed key, e.g. one generated in tests.
func NewPair(priv *rsa.PrivateKey) *Pair {
	return &Pair{private: priv, public: &priv.PublicKey}
}

func (p *Pair) Private() *rsa.PrivateKey { return p.private }
func (p *Pair) Public() *rsa.PublicKey   { return p.public }

func LoadPair(cfg Config) (*Pair, error) {
	privPEM, err := read(cfg.SecretDir, cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("private key: %w: %v", ErrKeyInvalid, err)
	}

	pub, err := LoadPublic(cfg)
	if err != nil {
		return nil, err
	}
	if !priv.PublicKey.Equal(pub) {
		return nil, ErrKeyMismatch
	}

	return &Pair{private: priv, public: pub}, nil
}

// LoadPublic is used by verifiers, which never see the private key.
func LoadPublic(cfg Config) (*rsa.PublicKey, error) {
	pubPEM, err := read(cfg.SecretDir, cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("public key: %w: %v", ErrKeyInvalid, err)
	}
	return pub, nil
}

func MustLoadPair(cfg Config) *Pair {
	p, err := LoadPair(cfg)
	if err != nil {
		log.Fatalf("load key pair: %v", err)
	}
	return p
}

func MustLoadPublic(cfg Config) *rsa.PublicKey {
	pub, err := LoadPublic(cfg)
	if err != nil {
		log.Fatalf("load public key: %v", err)
	}
	return pub
}

// Resolve returns the file that would be read for path.
func Resolve(secretDir, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrKeyNotFound)
	}
	if secretDir != "" {
		mounted := filepath.Join(secretDir, filepath.Base(path))
		if fileExists(mounted) {
			return mounted, nil
		}
	}
	if fileExists(path) {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrKeyNotFound, path)
}

func read(secretDir, path string) ([]byte, error) {
	p, err := Resolve(secretDir, path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
