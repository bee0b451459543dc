package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetScryptCost(1 << 10)
}

func TestEncryptDecryptWallet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.wlt")
	header := WalletFileHeader{Network: "preview", Address: "addr", CoinPublicKey: "00ff"}
	data := &model.WalletData{Seed: []byte{1, 2, 3, 4}, CreatedAt: "2026-01-01T00:00:00Z"}

	require.NoError(t, EncryptWallet(path, header, data, []byte("secret")))

	addr, err := ReadWalletAddress(path)
	require.NoError(t, err)
	assert.Equal(t, "addr", addr)

	file, got, err := DecryptWallet(path, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "preview", file.Network)
	assert.Equal(t, "00ff", file.CoinPublicKey)
	assert.Equal(t, []byte{1, 2, 3, 4}, got.Seed)

	_, _, err = DecryptWallet(path, []byte("wrong"))
	assert.EqualError(t, err, "invalid password")
}

func TestEncryptWallet_Refusals(t *testing.T) {
	dir := t.TempDir()
	data := &model.WalletData{Seed: []byte{1}}

	err := EncryptWallet(filepath.Join(dir, "wallet.json"), WalletFileHeader{}, data, []byte("p"))
	assert.ErrorContains(t, err, ".wlt")

	err = EncryptWallet(filepath.Join(dir, "a.wlt"), WalletFileHeader{}, data, nil)
	assert.ErrorContains(t, err, "password")

	existing := filepath.Join(dir, "existing.wlt")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0600))
	err = EncryptWallet(existing, WalletFileHeader{}, data, []byte("p"))
	assert.ErrorIs(t, err, ErrFileNotEmpty)
}

func TestDecryptWallet_MissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	_, _, err := DecryptWallet(filepath.Join(dir, "nope.wlt"), []byte("p"))
	assert.EqualError(t, err, "file does not exist")

	empty := filepath.Join(dir, "empty.wlt")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	_, _, err = DecryptWallet(empty, []byte("p"))
	assert.EqualError(t, err, "file is empty")
}
