package wallet

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/common"
	"github.com/AlexZinkM/will-wallet/internal/crypto"
	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/skip2/go-qrcode"
)

// FileExistsError is an error when file already exists and is not empty
type FileExistsError struct {
	Message string
}

func (e *FileExistsError) Error() string {
	return e.Message
}

// IsFileExistsError checks if error is FileExistsError
func IsFileExistsError(err error) bool {
	var target *FileExistsError
	return errors.As(err, &target)
}

// SaveSeedFile encrypts seedHex into a .wlt file so the same wallet can be restored later.
// Returns the wallet's unshielded address.
// password must be []byte for security (caller should zero it after use)
func SaveSeedFile(filePath, network, seedHex string, password []byte) (address string, err error) {
	seedHex, err = common.NormalizeHexSeed(seedHex)
	if err != nil {
		return "", err
	}

	keys, err := DeriveKeys(seedHex)
	if err != nil {
		return "", err
	}
	defer keys.Wipe()
	address = keys.Address()

	qrCode, err := generateQRCode(keys.CoinPublicKeyHex())
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode seed: %w", err)
	}
	defer clear(seed)

	header := crypto.WalletFileHeader{
		Network:       network,
		Address:       address,
		CoinPublicKey: keys.CoinPublicKeyHex(),
		QR:            qrCode,
	}
	data := &model.WalletData{
		Seed:      seed,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if err := crypto.EncryptWallet(filePath, header, data, password); err != nil {
		if errors.Is(err, crypto.ErrFileNotEmpty) {
			return "", &FileExistsError{Message: err.Error()}
		}
		return "", fmt.Errorf("failed to encrypt wallet: %w", err)
	}
	return address, nil
}

// LoadSeedFile decrypts a .wlt file and returns the hex seed and the network it was created for
// password must be []byte for security (caller should zero it after use)
func LoadSeedFile(filePath string, password []byte) (seedHex, network string, err error) {
	file, data, err := crypto.DecryptWallet(filePath, password)
	if err != nil {
		return "", "", fmt.Errorf("failed to decrypt wallet: %w", err)
	}
	defer clear(data.Seed)

	seedHex = hex.EncodeToString(data.Seed)

	// Verify the file header matches the decrypted seed
	keys, err := DeriveKeys(seedHex)
	if err != nil {
		return "", "", err
	}
	defer keys.Wipe()
	if keys.Address() != file.Address {
		return "", "", errors.New("seed does not match wallet address")
	}
	return seedHex, file.Network, nil
}

// generateQRCode generates QR code of text in base64
func generateQRCode(text string) (string, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	// Encode to base64
	return base64.StdEncoding.EncodeToString(png), nil
}
