package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/will-wallet/internal/model"
)

// statusFor maps typed errors to HTTP status codes
func statusFor(err error) int {
	switch model.ErrorCode(err) {
	case model.CodeValidation:
		return http.StatusBadRequest
	case model.CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case model.CodeContractNotFound:
		return http.StatusNotFound
	case model.CodeSessionBusy:
		return http.StatusConflict
	case model.CodeCheckRejected:
		return http.StatusUnprocessableEntity
	case model.CodeProverHTTP:
		return http.StatusBadGateway
	case model.CodeAssetUnavailable, model.CodeWalletConnection:
		return http.StatusServiceUnavailable
	case model.CodeJoinTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: model.ErrorCode(err)})
}
