package handler

import (
	"net/http"

	"github.com/AlexZinkM/will-wallet/internal/common"
	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/internal/wallet"

	"github.com/skip2/go-qrcode"
)

// WalletInfo is the read side of a running wallet
type WalletInfo interface {
	Keys() *wallet.Keys
	Balance() model.DustBalance
	Synced() bool
}

// WalletHandler serves wallet status
type WalletHandler struct {
	wallet WalletInfo
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(w WalletInfo) *WalletHandler {
	return &WalletHandler{wallet: w}
}

// GetBalance handles GET /wallet/balance
// @Summary      DUST balance
// @Description  Available and pending DUST of the running wallet with its addresses
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	keys := h.wallet.Keys()
	b := h.wallet.Balance()
	writeJSON(w, http.StatusOK, model.BalanceResponse{
		Address:       keys.Address(),
		CoinPublicKey: keys.CoinPublicKeyHex(),
		Dust:          b,
		DustDisplay:   common.SpecksToDust(b.Available),
		Synced:        h.wallet.Synced(),
	})
}

// AddressQR handles GET /wallet/address/qr
// @Summary      QR code of the coin public key
// @Tags         wallet
// @Produce      png
// @Success      200
// @Router       /wallet/address/qr [get]
func (h *WalletHandler) AddressQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	png, err := qrcode.Encode(h.wallet.Keys().CoinPublicKeyHex(), qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
