package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/AlexZinkM/will-wallet/internal/common"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip39"
)

// BIP44 path constants: m/44'/2400'/account'/role/index
const (
	BIP44Purpose   uint32 = 44
	CoinType       uint32 = 2400
	DefaultAccount uint32 = 0
	DefaultIndex   uint32 = 0
)

// Role selects the key chain under the account
type Role uint32

const (
	RoleNightExternal Role = 0 // unshielded signing
	RoleNightInternal Role = 1
	RoleDust          Role = 2 // fee coins
	RoleZswap         Role = 3 // shielded coin and encryption keys
)

// seedLen is the size of a freshly generated wallet seed
const seedLen = 32

// Keys are the role keys derived from one wallet seed
type Keys struct {
	Night solana.PrivateKey
	Dust  solana.PrivateKey
	Zswap solana.PrivateKey
}

// Address returns the unshielded address (base58 of the night public key)
func (k *Keys) Address() string {
	return k.Night.PublicKey().String()
}

// DustAddress returns the base58 address holding fee coins
func (k *Keys) DustAddress() string {
	return k.Dust.PublicKey().String()
}

// CoinPublicKey returns the shielded coin public key; it is the party's identity in the will
func (k *Keys) CoinPublicKey() []byte {
	pub := k.Zswap.PublicKey()
	return pub[:]
}

// CoinPublicKeyHex returns CoinPublicKey as hex
func (k *Keys) CoinPublicKeyHex() string {
	return hex.EncodeToString(k.CoinPublicKey())
}

// Wipe zeroes the private keys
func (k *Keys) Wipe() {
	clear(k.Night)
	clear(k.Dust)
	clear(k.Zswap)
}

// GenerateSeed returns a fresh random hex seed
func GenerateSeed() (string, error) {
	seed := make([]byte, seedLen)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("failed to generate seed: %w", err)
	}
	defer clear(seed)
	return hex.EncodeToString(seed), nil
}

// GenerateMnemonic returns a fresh 24 word mnemonic
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)
	return bip39.NewMnemonic(entropy)
}

// MnemonicToSeed converts a BIP39 mnemonic into a 64 byte hex seed
func MnemonicToSeed(mnemonic string) (string, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", fmt.Errorf("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	defer clear(seed)
	return hex.EncodeToString(seed), nil
}

// IsMnemonic reports whether s looks like a word list rather than a hex seed
func IsMnemonic(s string) bool {
	return len(strings.Fields(s)) > 1
}

// DeriveKeys derives the role keys from a hex seed
func DeriveKeys(seedHex string) (*Keys, error) {
	seedHex, err := common.NormalizeHexSeed(seedHex)
	if err != nil {
		return nil, err
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	defer clear(seed)

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	account := master
	for _, index := range []uint32{
		hdkeychain.HardenedKeyStart + BIP44Purpose,
		hdkeychain.HardenedKeyStart + CoinType,
		hdkeychain.HardenedKeyStart + DefaultAccount,
	} {
		account, err = account.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive account key: %w", err)
		}
	}

	keys := &Keys{}
	for role, dst := range map[Role]*solana.PrivateKey{
		RoleNightExternal: &keys.Night,
		RoleDust:          &keys.Dust,
		RoleZswap:         &keys.Zswap,
	} {
		k, err := deriveRole(account, role)
		if err != nil {
			return nil, err
		}
		*dst = k
	}
	return keys, nil
}

// deriveRole derives account/role/index and turns the child secret into an ed25519 key
func deriveRole(account *hdkeychain.ExtendedKey, role Role) (solana.PrivateKey, error) {
	chain, err := account.Derive(uint32(role))
	if err != nil {
		return nil, fmt.Errorf("failed to derive role %d: %w", role, err)
	}
	child, err := chain.Derive(DefaultIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to derive role %d index: %w", role, err)
	}
	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get role %d private key: %w", role, err)
	}
	secret := priv.Serialize()
	defer clear(secret)
	return solana.PrivateKey(ed25519.NewKeyFromSeed(secret)), nil
}
