package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pam-client-sol/internal/config"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerate_Distinct(t *testing.T) {
	a, b := Generate(), Generate()
	assert.NotEqual(t, a.PublicKey(), b.PublicKey())
	assert.False(t, a.IsZero())
	assert.True(t, Identity{}.IsZero())
	assert.Equal(t, a.PublicKey().String(), a.String())
}

func TestFromBase58_RoundTrip(t *testing.T) {
	orig := Generate()
	secret := base58.Encode(orig.Account().PrivateKey)

	parsed, err := FromBase58(secret)
	require.NoError(t, err)
	assert.Equal(t, orig.PublicKey(), parsed.PublicKey())

	_, err = FromBase58("abc")
	assert.Error(t, err)
}

func TestKeypairFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.json")
	orig := Generate()
	require.NoError(t, orig.WriteKeypairFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := FromKeypairFile(path)
	require.NoError(t, err)
	assert.Equal(t, orig.PublicKey(), loaded.PublicKey())
}

func TestKeypairFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := FromKeypairFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[1,2,300]`), 0o600))
	_, err = FromKeypairFile(bad)
	assert.Error(t, err)

	short := filepath.Join(dir, "short.json")
	require.NoError(t, os.WriteFile(short, []byte(`[1,2,3]`), 0o600))
	_, err = FromKeypairFile(short)
	assert.Error(t, err)
}

func TestFromMnemonic_Deterministic(t *testing.T) {
	a, err := FromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	b, err := FromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	withPass, err := FromMnemonic(testMnemonic, "secret")
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey(), withPass.PublicKey())

	otherPath, err := FromMnemonicPath(testMnemonic, "", DefaultDerivationPath[:3])
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey(), otherPath.PublicKey())
}

func TestFromMnemonic_Invalid(t *testing.T) {
	_, err := FromMnemonic("not a real mnemonic phrase", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)

	_, err = FromMnemonicPath(testMnemonic, "", []uint32{44})
	assert.Error(t, err)
}

func TestLoadPayer(t *testing.T) {
	payer, generated, err := LoadPayer(config.PayerConfig{})
	require.NoError(t, err)
	assert.True(t, generated)
	assert.False(t, payer.IsZero())

	fromWords, generated, err := LoadPayer(config.PayerConfig{Mnemonic: testMnemonic})
	require.NoError(t, err)
	assert.False(t, generated)
	expected, _ := FromMnemonic(testMnemonic, "")
	assert.Equal(t, expected.PublicKey(), fromWords.PublicKey())

	// 文件优先于助记词
	path := filepath.Join(t.TempDir(), "payer.json")
	fileID := Generate()
	require.NoError(t, fileID.WriteKeypairFile(path))
	fromFile, _, err := LoadPayer(config.PayerConfig{KeypairFile: path, Mnemonic: testMnemonic})
	require.NoError(t, err)
	assert.Equal(t, fileID.PublicKey(), fromFile.PublicKey())

	_, _, err = LoadPayer(config.PayerConfig{PrivateKey: "bogus"})
	assert.Error(t, err)
}
