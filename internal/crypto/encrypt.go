package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlexZinkM/will-wallet/internal/model"

	"golang.org/x/crypto/scrypt"
)

// WalletFileExt is the extension of encrypted wallet seed files
const WalletFileExt = ".wlt"

const (
	// N=2^18 (~256MB RAM, 0.5-2s)
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
)

var scryptN = 1 << 18

// SetScryptCost overrides the scrypt N parameter for files written and read
// afterwards. Only for tests and constrained devices; n must be a power of two.
func SetScryptCost(n int) {
	scryptN = n
}

// ErrFileNotEmpty is returned when the target wallet file already holds data
var ErrFileNotEmpty = errors.New("file is not empty")

// WalletFileHeader is the public part of a wallet file
type WalletFileHeader struct {
	Network       string
	Address       string
	CoinPublicKey string
	QR            string
}

// EncryptWallet encrypts wallet data and writes it to a .wlt file.
// password must be []byte (caller should zero it after use)
func EncryptWallet(filePath string, header WalletFileHeader, walletData *model.WalletData, password []byte) error {
	if !strings.HasSuffix(filePath, WalletFileExt) {
		return fmt.Errorf("file must have %s extension", WalletFileExt)
	}
	if len(password) == 0 {
		return errors.New("password cannot be empty")
	}

	if fileInfo, err := os.Stat(filePath); err == nil && fileInfo.Size() > 0 {
		return fmt.Errorf("%s: %w", filePath, ErrFileNotEmpty)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt)
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(walletData)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet data: %w", err)
	}
	defer clear(plaintext)

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	file := model.WalletFile{
		Network:       header.Network,
		Address:       header.Address,
		CoinPublicKey: header.CoinPublicKey,
		QR:            header.QR,
		Salt:          base64.StdEncoding.EncodeToString(salt),
		Nonce:         base64.StdEncoding.EncodeToString(nonce),
		CipherText:    base64.StdEncoding.EncodeToString(ciphertext),
	}

	fileData, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal wallet file: %w", err)
	}

	if err := os.WriteFile(filePath, fileData, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// newGCM derives the file key from password and salt
func newGCM(password, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
