package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/internal/simulator"
	"github.com/AlexZinkM/will-wallet/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDemoHandler(t *testing.T) *WillHandler {
	t.Helper()
	sessions := simulator.Sessions{Sim: simulator.New(simulator.Options{})}
	t.Cleanup(func() { sessions.Close() })
	return NewWillHandler(sessions)
}

func do(t *testing.T, h http.HandlerFunc, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&model.ValidationError{Field: "amount", Message: "must be positive"}, http.StatusBadRequest},
		{&model.InsufficientFundsError{Required: 10, Available: 1}, http.StatusPaymentRequired},
		{&model.ContractNotFoundError{Address: "ab"}, http.StatusNotFound},
		{model.ErrSessionBusy, http.StatusConflict},
		{&model.CheckRejectedError{Circuit: model.CircuitClaim, Reason: "no allocation"}, http.StatusUnprocessableEntity},
		{&model.ProverHTTPError{Status: 500, Body: "boom"}, http.StatusBadGateway},
		{&model.WalletConnectionError{Reason: "down"}, http.StatusServiceUnavailable},
		{&model.JoinTimeoutError{Address: "ab"}, http.StatusGatewayTimeout},
		{fmt.Errorf("wrapped: %w", &model.ValidationError{Field: "x"}), http.StatusBadRequest},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWillHandler_NoSession(t *testing.T) {
	h := newDemoHandler(t)

	for name, fn := range map[string]http.HandlerFunc{
		"state":   h.State,
		"execute": h.Execute,
	} {
		t.Run(name, func(t *testing.T) {
			method := http.MethodPost
			if name == "state" {
				method = http.MethodGet
			}
			rec := do(t, fn, method, "/will/"+name, nil)
			assert.Equal(t, http.StatusConflict, rec.Code)
			assert.Equal(t, errNoSession.Error(), decodeError(t, rec).Error)
		})
	}
}

func TestWillHandler_MethodNotAllowed(t *testing.T) {
	h := newDemoHandler(t)

	rec := do(t, h.Join, http.MethodGet, "/will/join", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, h.State, http.MethodPost, "/will/state", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWillHandler_DemoFlow(t *testing.T) {
	h := newDemoHandler(t)

	rec := do(t, h.Join, http.MethodPost, "/will/join", model.JoinRequest{ContractAddress: "ignored"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var joined model.JoinResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &joined))
	assert.Equal(t, simulator.DemoOwnerHex, joined.ContractAddress)
	assert.Equal(t, simulator.DemoOwnerHex, joined.State.Owner)
	assert.False(t, joined.State.IsExecuted)

	rec = do(t, h.Beneficiaries, http.MethodPost, "/will/beneficiaries",
		model.AddBeneficiaryRequest{Person: "cd34", Amount: 5000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fin model.FinalizedTxData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fin))
	assert.Equal(t, model.CircuitAddBeneficiary, fin.Circuit)
	assert.NotEmpty(t, fin.TxID)

	rec = do(t, h.Beneficiaries, http.MethodGet, "/will/beneficiaries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []model.BeneficiaryRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, uint64(5000), records[0].Amount)

	// claim before execute is rejected by the rules
	rec = do(t, h.Claim, http.MethodPost, "/will/claim", model.ClaimRequest{Person: "cd34"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeValidation, decodeError(t, rec).Code)

	rec = do(t, h.Execute, http.MethodPost, "/will/execute", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h.State, http.MethodGet, "/will/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state model.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.IsExecuted)
	assert.Len(t, state.Allocations, 1)

	rec = do(t, h.Claim, http.MethodPost, "/will/claim", model.ClaimRequest{Person: "cd34"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h.State, http.MethodGet, "/will/state", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Empty(t, state.Allocations)
}

func TestWillHandler_BadBodies(t *testing.T) {
	h := newDemoHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/will/join", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.Join(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.Join, http.MethodPost, "/will/join", model.JoinRequest{})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h.Beneficiaries, http.MethodPost, "/will/beneficiaries",
		model.AddBeneficiaryRequest{Person: "cd34", Amount: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeValidation, decodeError(t, rec).Code)

	rec = do(t, h.Beneficiaries, http.MethodDelete, "/will/beneficiaries", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWillHandler_ResetPrivateState(t *testing.T) {
	h := newDemoHandler(t)

	rec := do(t, h.PrivateState, http.MethodDelete, "/will/private-state", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.Equal(t, http.StatusOK, do(t, h.Join, http.MethodPost, "/will/join", model.JoinRequest{}).Code)
	rec = do(t, h.Beneficiaries, http.MethodPost, "/will/beneficiaries", model.AddBeneficiaryRequest{Person: "cd34", Amount: 9})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h.PrivateState, http.MethodGet, "/will/private-state", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, h.PrivateState, http.MethodDelete, "/will/private-state", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var state model.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Empty(t, state.Allocations)
	assert.False(t, state.IsExecuted)
}

func TestWillHandler_DeployUnsupportedInDemo(t *testing.T) {
	h := newDemoHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/will/deploy", nil)
	rec := httptest.NewRecorder()
	h.Deploy(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeValidation, decodeError(t, rec).Code)
}

type fakeWallet struct {
	keys    *wallet.Keys
	balance model.DustBalance
	synced  bool
}

func (f fakeWallet) Keys() *wallet.Keys         { return f.keys }
func (f fakeWallet) Balance() model.DustBalance { return f.balance }
func (f fakeWallet) Synced() bool               { return f.synced }

func newFakeWallet(t *testing.T) fakeWallet {
	t.Helper()
	keys, err := wallet.DeriveKeys("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)
	return fakeWallet{
		keys:    keys,
		balance: model.DustBalance{Available: 2_500_000_000_000_000, AvailableCoins: 2},
		synced:  true,
	}
}

func TestWalletHandler_GetBalance(t *testing.T) {
	fw := newFakeWallet(t)
	h := NewWalletHandler(fw)

	rec := do(t, h.GetBalance, http.MethodGet, "/wallet/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, fw.keys.Address(), resp.Address)
	assert.Equal(t, fw.keys.CoinPublicKeyHex(), resp.CoinPublicKey)
	assert.Equal(t, fw.balance, resp.Dust)
	assert.NotEmpty(t, resp.DustDisplay)
	assert.True(t, resp.Synced)

	rec = do(t, h.GetBalance, http.MethodPost, "/wallet/balance", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWalletHandler_AddressQR(t *testing.T) {
	h := NewWalletHandler(newFakeWallet(t))

	rec := do(t, h.AddressQR, http.MethodGet, "/wallet/address/qr", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}
