package api

import (
	"net/http"

	_ "github.com/AlexZinkM/will-wallet/internal/api/docs"
	"github.com/AlexZinkM/will-wallet/internal/handler"
	"github.com/AlexZinkM/will-wallet/internal/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers. Wallet routes are mounted only when walletInfo is non-nil.
func SetupRouter(sessions handler.Sessions, walletInfo handler.WalletInfo) http.Handler {
	willHandler := handler.NewWillHandler(sessions)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	mux.Handle("/metrics", metrics.Handler())

	// Will endpoints
	mux.HandleFunc("/will/join", willHandler.Join)
	mux.HandleFunc("/will/deploy", willHandler.Deploy)
	mux.HandleFunc("/will/beneficiaries", willHandler.Beneficiaries)
	mux.HandleFunc("/will/execute", willHandler.Execute)
	mux.HandleFunc("/will/claim", willHandler.Claim)
	mux.HandleFunc("/will/state", willHandler.State)
	mux.HandleFunc("/will/private-state", willHandler.PrivateState)

	if walletInfo != nil {
		walletHandler := handler.NewWalletHandler(walletInfo)
		mux.HandleFunc("/wallet/balance", walletHandler.GetBalance)
		mux.HandleFunc("/wallet/address/qr", walletHandler.AddressQR)
	}

	return mux
}
