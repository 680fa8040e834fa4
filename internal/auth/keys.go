package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/youmark/pkcs8"

	"github.com/spec-kit/article-platform/internal/config"
)

// KeyPair holds one RSA signing key pair. Immutable after load.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// KeyStore holds the two key pairs used for token signing: one for access
// tokens, one for refresh tokens. Loaded once at startup and passed by
// injection; an access token must never validate under the refresh public
// key or vice versa.
type KeyStore struct {
	Access  KeyPair
	Refresh KeyPair
}

// LoadKeyStore reads and decrypts both key pairs from the configured files.
// Any failure here is a fatal startup error: the process cannot serve
// authenticated requests without its keys.
func LoadKeyStore(cfg config.AuthConfig) (*KeyStore, error) {
	access, err := loadKeyPair(cfg.AccessKeys)
	if err != nil {
		return nil, fmt.Errorf("access key pair: %w", err)
	}
	refresh, err := loadKeyPair(cfg.RefreshKeys)
	if err != nil {
		return nil, fmt.Errorf("refresh key pair: %w", err)
	}
	return &KeyStore{Access: access, Refresh: refresh}, nil
}

// NewKeyStoreFromKeys builds a store from already parsed keys. Used by tests.
func NewKeyStoreFromKeys(access, refresh *rsa.PrivateKey) *KeyStore {
	return &KeyStore{
		Access:  KeyPair{Private: access, Public: &access.PublicKey},
		Refresh: KeyPair{Private: refresh, Public: &refresh.PublicKey},
	}
}

func loadKeyPair(cfg config.KeyPairConfig) (KeyPair, error) {
	private, err := loadPrivateKey(cfg.PrivateKeyFile, cfg.Passphrase)
	if err != nil {
		return KeyPair{}, err
	}
	public, err := loadPublicKey(cfg.PublicKeyFile)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Private: private, Public: public}, nil
}

func loadPrivateKey(path, passphrase string) (*rsa.PrivateKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key file: %w", err)
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in private key file %s", path)
	}

	if block.Type == "ENCRYPTED PRIVATE KEY" {
		key, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("decrypt private key: %w", err)
		}
		return key, nil
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key in %s is not RSA", path)
	}
	return key, nil
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key file: %w", err)
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in public key file %s", path)
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		cert, certErr := x509.ParseCertificate(block.Bytes)
		if certErr != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		parsed = cert.PublicKey
	}

	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key in %s is not RSA", path)
	}
	return key, nil
}
