package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/youmark/pkcs8"

	"github.com/spec-kit/article-platform/internal/config"
)

func writeTestKeyPair(t *testing.T, dir, name, passphrase string) config.KeyPairConfig {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	encrypted, err := pkcs8.MarshalPrivateKey(key, []byte(passphrase), nil)
	require.NoError(t, err)

	privatePath := filepath.Join(dir, name+"_private.pem")
	require.NoError(t, os.WriteFile(privatePath, pem.EncodeToMemory(&pem.Block{
		Type:  "ENCRYPTED PRIVATE KEY",
		Bytes: encrypted,
	}), 0o600))

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	publicPath := filepath.Join(dir, name+"_public.pem")
	require.NoError(t, os.WriteFile(publicPath, pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	}), 0o644))

	return config.KeyPairConfig{
		PrivateKeyFile: privatePath,
		PublicKeyFile:  publicPath,
		Passphrase:     passphrase,
	}
}

func TestLoadKeyStore(t *testing.T) {
	dir := t.TempDir()
	cfg := config.AuthConfig{
		AccessKeys:  writeTestKeyPair(t, dir, "access", "access-pass"),
		RefreshKeys: writeTestKeyPair(t, dir, "refresh", "refresh-pass"),
	}

	store, err := LoadKeyStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, store.Access.Private)
	require.NotNil(t, store.Access.Public)
	require.NotNil(t, store.Refresh.Private)
	require.NotNil(t, store.Refresh.Public)

	// The loaded private halves must match their public files.
	require.Equal(t, store.Access.Private.PublicKey, *store.Access.Public)
	require.Equal(t, store.Refresh.Private.PublicKey, *store.Refresh.Public)
}

func TestLoadKeyStoreWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	access := writeTestKeyPair(t, dir, "access", "correct")
	access.Passphrase = "wrong"

	cfg := config.AuthConfig{
		AccessKeys:  access,
		RefreshKeys: writeTestKeyPair(t, dir, "refresh", "refresh-pass"),
	}

	_, err := LoadKeyStore(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "access key pair")
}

func TestLoadKeyStoreMissingFile(t *testing.T) {
	dir := t.TempDir()
	access := writeTestKeyPair(t, dir, "access", "pass")
	access.PrivateKeyFile = filepath.Join(dir, "does-not-exist.pem")

	cfg := config.AuthConfig{
		AccessKeys:  access,
		RefreshKeys: writeTestKeyPair(t, dir, "refresh", "pass"),
	}

	_, err := LoadKeyStore(cfg)
	require.Error(t, err)
}

func TestLoadUnencryptedPrivateKey(t *testing.T) {
	dir := t.TempDir()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	path := filepath.Join(dir, "plain.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0o600))

	loaded, err := loadPrivateKey(path, "ignored")
	require.NoError(t, err)
	require.Equal(t, key.N, loaded.N)
}
