package wallet

import (
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/will-wallet/internal/config"
	"github.com/AlexZinkM/will-wallet/internal/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	crypto.SetScryptCost(1 << 10)
}

func TestSaveLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "will.wlt")

	addr, err := SaveSeedFile(path, "preview", "0x"+config.GenesisMintWalletSeed, []byte("pw"))
	require.NoError(t, err)

	keys, err := DeriveKeys(config.GenesisMintWalletSeed)
	require.NoError(t, err)
	assert.Equal(t, keys.Address(), addr)

	fileAddr, err := crypto.ReadWalletAddress(path)
	require.NoError(t, err)
	assert.Equal(t, addr, fileAddr)

	seed, network, err := LoadSeedFile(path, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, config.GenesisMintWalletSeed, seed)
	assert.Equal(t, "preview", network)

	_, _, err = LoadSeedFile(path, []byte("nope"))
	assert.ErrorContains(t, err, "invalid password")
}

func TestSaveSeedFile_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "will.wlt")
	_, err := SaveSeedFile(path, "local", config.GenesisMintWalletSeed, []byte("pw"))
	require.NoError(t, err)

	_, err = SaveSeedFile(path, "local", config.GenesisMintWalletSeed, []byte("pw"))
	require.Error(t, err)
	assert.True(t, IsFileExistsError(err))
}

func TestSaveSeedFile_BadSeed(t *testing.T) {
	_, err := SaveSeedFile(filepath.Join(t.TempDir(), "x.wlt"), "local", "not-hex", []byte("pw"))
	assert.Error(t, err)
}
