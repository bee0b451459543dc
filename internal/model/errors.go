package model

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes returned to API clients in ErrorResponse.Code
const (
	CodeAssetUnavailable  = "ASSET_UNAVAILABLE"
	CodeProverHTTP        = "PROVER_HTTP_ERROR"
	CodeCheckRejected     = "CHECK_REJECTED"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeContractNotFound  = "CONTRACT_NOT_FOUND"
	CodeJoinTimeout       = "JOIN_TIMEOUT"
	CodeValidation        = "VALIDATION_ERROR"
	CodeSessionBusy       = "SESSION_BUSY"
	CodeWalletConnection  = "WALLET_CONNECTION_ERROR"
)

// AssetUnavailableError is returned when key material for a circuit could not be fetched.
type AssetUnavailableError struct {
	Circuit  CircuitID
	Artifact string // "zkir", "prover" or "verifier"
	Status   int    // HTTP status, zero on transport failure
	Err      error
}

func (e *AssetUnavailableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch %s for %s: status %d %s", e.Artifact, e.Circuit, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("failed to fetch %s for %s: %v", e.Artifact, e.Circuit, e.Err)
}

func (e *AssetUnavailableError) Unwrap() error { return e.Err }

func (e *AssetUnavailableError) Code() string { return CodeAssetUnavailable }

// ProverHTTPError is returned when the proof server rejects a check or prove request.
// Body is the raw response body, usually the only actionable diagnostic.
type ProverHTTPError struct {
	Endpoint string // "check" or "prove"
	Status   int
	Body     string
}

func (e *ProverHTTPError) Error() string {
	return fmt.Sprintf("proof server %s failed: %d %s - %s", e.Endpoint, e.Status, http.StatusText(e.Status), e.Body)
}

func (e *ProverHTTPError) Code() string { return CodeProverHTTP }

// CheckRejectedError is returned when the prover's check endpoint answered but found the preimage invalid.
type CheckRejectedError struct {
	Circuit CircuitID
	Reason  string
}

func (e *CheckRejectedError) Error() string {
	return fmt.Sprintf("proof check rejected %s: %s", e.Circuit, e.Reason)
}

func (e *CheckRejectedError) Code() string { return CodeCheckRejected }

// InsufficientFundsError is returned when the wallet cannot cover transaction fees.
type InsufficientFundsError struct {
	Required  uint64
	Available uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient DUST for transaction fees: required %d, available %d", e.Required, e.Available)
}

func (e *InsufficientFundsError) Code() string { return CodeInsufficientFunds }

// ContractNotFoundError is returned when the indexer reports no state at the address.
type ContractNotFoundError struct {
	Address ContractAddress
}

func (e *ContractNotFoundError) Error() string {
	return fmt.Sprintf("no contract state found at %s", e.Address)
}

func (e *ContractNotFoundError) Code() string { return CodeContractNotFound }

// JoinTimeoutError is returned when joining did not complete within the wait bound.
type JoinTimeoutError struct {
	Address ContractAddress
	Wait    time.Duration
}

func (e *JoinTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s trying to join contract at %s. "+
		"This usually means the contract has not been deployed to the current network", e.Wait, e.Address)
}

func (e *JoinTimeoutError) Code() string { return CodeJoinTimeout }

// ValidationError is a local pre-flight failure; it never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Code() string { return CodeValidation }

// ErrSessionBusy is returned when a call is attempted while another is in flight
var ErrSessionBusy = errors.New("another call is already in flight for this session")

// WalletConnectionError is returned when the wallet process or its backing services are unavailable.
type WalletConnectionError struct {
	Reason string
	Err    error
}

func (e *WalletConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wallet connection failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("wallet connection failed: %s", e.Reason)
}

func (e *WalletConnectionError) Unwrap() error { return e.Err }

func (e *WalletConnectionError) Code() string { return CodeWalletConnection }

// IsAssetUnavailable checks if error is AssetUnavailableError
func IsAssetUnavailable(err error) bool {
	var target *AssetUnavailableError
	return errors.As(err, &target)
}

// IsProverHTTPError checks if error is ProverHTTPError
func IsProverHTTPError(err error) bool {
	var target *ProverHTTPError
	return errors.As(err, &target)
}

// IsInsufficientFunds checks if error is InsufficientFundsError
func IsInsufficientFunds(err error) bool {
	var target *InsufficientFundsError
	return errors.As(err, &target)
}

// IsContractNotFound checks if error is ContractNotFoundError
func IsContractNotFound(err error) bool {
	var target *ContractNotFoundError
	return errors.As(err, &target)
}

// IsJoinTimeout checks if error is JoinTimeoutError
func IsJoinTimeout(err error) bool {
	var target *JoinTimeoutError
	return errors.As(err, &target)
}

// IsValidationError checks if error is ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsWalletConnectionError checks if error is WalletConnectionError
func IsWalletConnectionError(err error) bool {
	var target *WalletConnectionError
	return errors.As(err, &target)
}

// ErrorCode returns the stable code of a typed error, or "" for untyped errors.
func ErrorCode(err error) string {
	if errors.Is(err, ErrSessionBusy) {
		return CodeSessionBusy
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
