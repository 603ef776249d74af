package keys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/classroom/pkg/keys/keystest"
)

func TestLoadPair_FromPackagedPath(t *testing.T) {
	t.Parallel()

	k := keystest.Key(t)
	priv, pub := keystest.WriteFiles(t, t.TempDir(), k)

	p, err := LoadPair(Config{SecretDir: t.TempDir(), PrivateKeyPath: priv, PublicKeyPath: pub})
	require.NoError(t, err)
	assert.True(t, p.Private().Equal(k))
	assert.True(t, p.Public().Equal(&k.PublicKey))
}

func TestLoadPair_SecretDirWins(t *testing.T) {
	t.Parallel()

	packaged := keystest.Key(t)
	mounted := keystest.NewKey(t)

	priv, pub := keystest.WriteFiles(t, t.TempDir(), packaged)
	secretDir := t.TempDir()
	keystest.WriteFiles(t, secretDir, mounted)

	p, err := LoadPair(Config{SecretDir: secretDir, PrivateKeyPath: priv, PublicKeyPath: pub})
	require.NoError(t, err)
	assert.True(t, p.Private().Equal(mounted))
}

func TestLoadPair_Mismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	priv, _ := keystest.WriteFiles(t, dir, keystest.Key(t))
	other := keystest.NewKey(t)
	otherPub := filepath.Join(t.TempDir(), "public_key.pem")
	require.NoError(t, os.WriteFile(otherPub, keystest.PublicPEM(t, &other.PublicKey), 0o644))

	_, err := LoadPair(Config{PrivateKeyPath: priv, PublicKeyPath: otherPub})
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestLoadPublic_Errors(t *testing.T) {
	t.Parallel()

	garbage := filepath.Join(t.TempDir(), "public_key.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0o644))

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "missing", path: filepath.Join(t.TempDir(), "nope.pem"), want: ErrKeyNotFound},
		{name: "empty path", path: "", want: ErrKeyNotFound},
		{name: "garbage", path: garbage, want: ErrKeyInvalid},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadPublic(Config{PublicKeyPath: tt.path})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
