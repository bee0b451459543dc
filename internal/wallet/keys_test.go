package wallet

import (
	"testing"

	"github.com/AlexZinkM/will-wallet/internal/config"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMnemonicToSeed(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		want     string
		wantErr  bool
	}{
		{
			name:     "bip39 vector",
			mnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
			want:     "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4",
		},
		{
			name:     "extra whitespace",
			mnemonic: "  abandon abandon abandon abandon abandon abandon\tabandon abandon abandon abandon abandon about ",
			want:     "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4",
		},
		{name: "bad checksum", mnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", wantErr: true},
		{name: "empty", mnemonic: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MnemonicToSeed(tt.mnemonic)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateMnemonic(t *testing.T) {
	m, err := GenerateMnemonic()
	require.NoError(t, err)
	assert.True(t, IsMnemonic(m))

	seed, err := MnemonicToSeed(m)
	require.NoError(t, err)
	assert.Len(t, seed, 128)
}

func TestDeriveKeys_Deterministic(t *testing.T) {
	a, err := DeriveKeys(config.GenesisMintWalletSeed)
	require.NoError(t, err)
	b, err := DeriveKeys("0x" + config.GenesisMintWalletSeed)
	require.NoError(t, err)

	assert.Equal(t, a.Address(), b.Address())
	assert.Equal(t, a.CoinPublicKeyHex(), b.CoinPublicKeyHex())
	assert.Len(t, a.CoinPublicKeyHex(), 64)

	// roles are distinct keys
	assert.NotEqual(t, a.Address(), a.DustAddress())
	assert.NotEqual(t, a.Night.PublicKey(), a.Zswap.PublicKey())

	_, err = solana.PublicKeyFromBase58(a.Address())
	require.NoError(t, err)

	seed, err := GenerateSeed()
	require.NoError(t, err)
	c, err := DeriveKeys(seed)
	require.NoError(t, err)
	assert.NotEqual(t, a.Address(), c.Address())
}

func TestDeriveKeys_InvalidSeed(t *testing.T) {
	for _, seed := range []string{"", "zz", "00"} {
		_, err := DeriveKeys(seed)
		assert.Error(t, err, "seed %q", seed)
	}
}

func TestKeys_SignVerifies(t *testing.T) {
	k, err := DeriveKeys(config.GenesisMintWalletSeed)
	require.NoError(t, err)

	sig, err := k.Night.Sign([]byte("body"))
	require.NoError(t, err)
	assert.True(t, sig.Verify(k.Night.PublicKey(), []byte("body")))

	k.Wipe()
	assert.Equal(t, make([]byte, len(k.Night)), []byte(k.Night))
}
