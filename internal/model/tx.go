package model

import "time"

// CircuitID names one provable entry point of the will contract
type CircuitID string

const (
	CircuitInit           CircuitID = "init"
	CircuitAddBeneficiary CircuitID = "addBeneficiary"
	CircuitExecuteWill    CircuitID = "executeWill"
	CircuitClaim          CircuitID = "claim"
)

// Circuits is the closed set of circuits compiled into the contract.
var Circuits = []CircuitID{CircuitInit, CircuitAddBeneficiary, CircuitExecuteWill, CircuitClaim}

// Valid reports whether c belongs to the compiled circuit set.
func (c CircuitID) Valid() bool {
	for _, known := range Circuits {
		if c == known {
			return true
		}
	}
	return false
}

// KeyMaterial holds the three artifacts needed to prove one circuit
type KeyMaterial struct {
	IR          []byte
	ProverKey   []byte
	VerifierKey []byte
}

// CheckResult is the parsed response of the prover's check endpoint
type CheckResult struct {
	Valid    bool              `cbor:"1,keyasint"`
	Reason   string            `cbor:"2,keyasint,omitempty"`
	Metadata map[string]string `cbor:"3,keyasint,omitempty"`
}

// UnprovenTransaction is the result of invoking a circuit with concrete arguments
type UnprovenTransaction struct {
	Circuit         CircuitID
	ContractAddress ContractAddress
	Preimage        []byte
	BindingInput    *uint64
}

// ProvenTransaction is an unproven transaction with its proof attached; still unbalanced
type ProvenTransaction struct {
	Unproven UnprovenTransaction
	Proof    []byte
}

// CoinRef points at a spendable fee coin selected during balancing
type CoinRef struct {
	Nonce string `json:"nonce" cbor:"1,keyasint"`
	Value uint64 `json:"value" cbor:"2,keyasint"`
}

// BalancedTransaction is ready for submission
type BalancedTransaction struct {
	Proven    ProvenTransaction
	Inputs    []CoinRef
	Fee       uint64
	Change    uint64
	Payer     string // base58 public key of the fee payer
	Signature string // base58 signature over the transaction body
	Body      []byte // encoded transaction body that was signed
}

// FinalizedTxData is the submission receipt of a successful call
type FinalizedTxData struct {
	TxID            string          `json:"txId"`
	TxHash          string          `json:"txHash"`
	Status          string          `json:"status"`
	Circuit         CircuitID       `json:"circuit"`
	ContractAddress ContractAddress `json:"contractAddress"`
	SubmittedAt     time.Time       `json:"submittedAt"`
}

// TxStatusAccepted is reported once the node accepted the transaction into its pool
const TxStatusAccepted = "accepted"
