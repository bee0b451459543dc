package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/will"
)

// Sessions owns the active will session
type Sessions interface {
	Join(ctx context.Context, address string) (will.API, error)
	Deploy(ctx context.Context, initialOwner string) (will.API, error)
	Current() (will.API, bool)
}

// beneficiaryLister is implemented by sessions that keep full beneficiary records
type beneficiaryLister interface {
	Beneficiaries() []model.BeneficiaryRecord
}

var errNoSession = errors.New("join or deploy a contract first")

// WillHandler serves the will contract operations
type WillHandler struct {
	sessions Sessions
}

// NewWillHandler creates a new WillHandler
func NewWillHandler(sessions Sessions) *WillHandler {
	return &WillHandler{sessions: sessions}
}

// Join handles POST /will/join
// @Summary      Join a deployed will contract
// @Description  Waits for the contract state at the address, bounded by JOIN_TIMEOUT
// @Tags         will
// @Accept       json
// @Produce      json
// @Param        request  body      model.JoinRequest  true  "Contract address"
// @Success      200      {object}  model.JoinResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      504      {object}  model.ErrorResponse
// @Router       /will/join [post]
func (h *WillHandler) Join(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	api, err := h.sessions.Join(r.Context(), req.ContractAddress)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse(api))
}

// Deploy handles POST /will/deploy
// @Summary      Deploy a new will contract
// @Description  Runs the init circuit; initialOwner defaults to the wallet's coin public key
// @Tags         will
// @Accept       json
// @Produce      json
// @Param        request  body      model.DeployRequest  true  "Initial owner"
// @Success      200      {object}  model.JoinResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      402      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /will/deploy [post]
func (h *WillHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.DeployRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	api, err := h.sessions.Deploy(r.Context(), req.InitialOwner)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse(api))
}

// Beneficiaries handles GET and POST /will/beneficiaries
// @Summary      Add or list beneficiaries
// @Description  POST adds a beneficiary allocation, GET lists the locally known records
// @Tags         will
// @Accept       json
// @Produce      json
// @Param        request  body      model.AddBeneficiaryRequest  false  "Beneficiary (POST only)"
// @Success      200      {object}  model.FinalizedTxData
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /will/beneficiaries [post]
// @Router       /will/beneficiaries [get]
func (h *WillHandler) Beneficiaries(w http.ResponseWriter, r *http.Request) {
	api, ok := h.current(w)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		if lister, ok := api.(beneficiaryLister); ok {
			writeJSON(w, http.StatusOK, lister.Beneficiaries())
			return
		}
		writeJSON(w, http.StatusOK, api.DisplayState().Allocations)
	case http.MethodPost:
		var req model.AddBeneficiaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		fin, err := api.AddBeneficiary(r.Context(), req.Person, req.Amount)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, fin)
	default:
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
	}
}

// Execute handles POST /will/execute
// @Summary      Execute the will
// @Tags         will
// @Produce      json
// @Success      200  {object}  model.FinalizedTxData
// @Failure      400  {object}  model.ErrorResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /will/execute [post]
func (h *WillHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}
	api, ok := h.current(w)
	if !ok {
		return
	}

	fin, err := api.ExecuteWill(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, fin)
}

// Claim handles POST /will/claim
// @Summary      Claim a beneficiary allocation
// @Tags         will
// @Accept       json
// @Produce      json
// @Param        request  body      model.ClaimRequest  true  "Beneficiary"
// @Success      200      {object}  model.FinalizedTxData
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /will/claim [post]
func (h *WillHandler) Claim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}
	api, ok := h.current(w)
	if !ok {
		return
	}

	var req model.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fin, err := api.Claim(r.Context(), req.Person)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, fin)
}

// State handles GET /will/state
// @Summary      Current will state
// @Description  Owner, executed flag and local allocations of the joined contract
// @Tags         will
// @Produce      json
// @Success      200  {object}  model.StateResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /will/state [get]
func (h *WillHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	api, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, api.DisplayState())
}

// PrivateState handles DELETE /will/private-state
// @Summary      Reset the local private state
// @Description  Forgets the locally stored beneficiary records; the executed flag then follows the ledger
// @Tags         will
// @Produce      json
// @Success      200  {object}  model.StateResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /will/private-state [delete]
func (h *WillHandler) PrivateState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed. Should be DELETE", http.StatusMethodNotAllowed)
		return
	}
	api, ok := h.current(w)
	if !ok {
		return
	}
	if err := api.ResetPrivateState(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, api.DisplayState())
}

func (h *WillHandler) current(w http.ResponseWriter) (will.API, bool) {
	api, ok := h.sessions.Current()
	if !ok {
		writeError(w, http.StatusConflict, errNoSession)
	}
	return api, ok
}

func joinResponse(api will.API) model.JoinResponse {
	return model.JoinResponse{
		ContractAddress: api.ContractAddress().String(),
		State:           api.DisplayState(),
	}
}
