package model

// WalletFile represents .wlt file structure
type WalletFile struct {
	Network       string `json:"network"`
	Address       string `json:"address"`       // unshielded address
	CoinPublicKey string `json:"coinPublicKey"` // shielded coin public key (hex)
	QR            string `json:"QR"`
	Salt          string `json:"salt"`
	Nonce         string `json:"nonce"`
	CipherText    string `json:"cipherText"`
}

// WalletData represents decrypted wallet data
type WalletData struct {
	Seed      []byte `json:"seed"` // HD wallet seed (stored as base64 in JSON)
	CreatedAt string `json:"createdAt"`
}

// DustBalance is the fee-asset balance as reported by the synced wallet
type DustBalance struct {
	Available      uint64 `json:"available"`
	Pending        uint64 `json:"pending"`
	AvailableCoins int    `json:"availableCoins"`
	PendingCoins   int    `json:"pendingCoins"`
}

// SyncProgress reports how far the wallet has applied the chain
type SyncProgress struct {
	Applied uint64 `json:"applied"`
	Highest uint64 `json:"highest"`
}

// Synced reports whether the wallet caught up with the chain tip.
func (p SyncProgress) Synced() bool {
	return p.Highest > 0 && p.Applied >= p.Highest
}
