package model

import (
	"encoding/hex"
	"strings"
	"time"
)

// WillPrivateStateID is the store key under which the will's private state is kept.
const WillPrivateStateID = "willPrivateState"

// contractAddressLen is the byte length of a contract address
const contractAddressLen = 32

// ContractAddress is the normalized (lowercase, no 0x) hex form of a deployed contract.
type ContractAddress string

// ParseContractAddress validates and normalizes a contract address.
func ParseContractAddress(s string) (ContractAddress, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if s == "" {
		return "", &ValidationError{Field: "contractAddress", Message: "contract address cannot be empty"}
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", &ValidationError{Field: "contractAddress", Message: "contract address must be hex"}
	}
	if len(raw) != contractAddressLen {
		return "", &ValidationError{Field: "contractAddress", Message: "contract address must be 32 bytes"}
	}
	return ContractAddress(s), nil
}

// Bytes returns the raw address bytes. The address is assumed to be normalized.
func (a ContractAddress) Bytes() []byte {
	raw, _ := hex.DecodeString(string(a))
	return raw
}

func (a ContractAddress) String() string {
	return string(a)
}

// LedgerState is the public, on-chain view of the will contract
type LedgerState struct {
	Owner    []byte `json:"owner" cbor:"1,keyasint"`
	Executed bool   `json:"executed" cbor:"2,keyasint"`
}

// BeneficiaryRecord is one locally witnessed addBeneficiary call
type BeneficiaryRecord struct {
	Identity string    `json:"identity"`
	Amount   uint64    `json:"amount"`
	AddedAt  time.Time `json:"addedAt"`
}

// PrivateState is the local party's off-chain knowledge of the will.
// Beneficiaries is append-only: adding the same identity twice keeps both records.
type PrivateState struct {
	Beneficiaries []BeneficiaryRecord `json:"beneficiaries"`
	Executed      bool                `json:"executed"`
}

// Clone returns a deep copy so callers can derive a next state without aliasing.
func (p PrivateState) Clone() PrivateState {
	out := PrivateState{Executed: p.Executed}
	if len(p.Beneficiaries) > 0 {
		out.Beneficiaries = make([]BeneficiaryRecord, len(p.Beneficiaries))
		copy(out.Beneficiaries, p.Beneficiaries)
	}
	return out
}

// Allocations sums the recorded amounts per identity.
func (p PrivateState) Allocations() map[string]uint64 {
	out := make(map[string]uint64, len(p.Beneficiaries))
	for _, b := range p.Beneficiaries {
		out[b.Identity] += b.Amount
	}
	return out
}

// HasBeneficiary reports whether at least one record exists for identity.
func (p PrivateState) HasBeneficiary(identity string) bool {
	for _, b := range p.Beneficiaries {
		if b.Identity == identity {
			return true
		}
	}
	return false
}

// WithoutBeneficiary returns a copy with every record for identity removed.
func (p PrivateState) WithoutBeneficiary(identity string) PrivateState {
	out := PrivateState{Executed: p.Executed}
	for _, b := range p.Beneficiaries {
		if b.Identity != identity {
			out.Beneficiaries = append(out.Beneficiaries, b)
		}
	}
	return out
}

// DerivedState is what the UI/CLI observes: the merge of the latest ledger and private state.
type DerivedState struct {
	Owner      []byte `json:"owner"`
	IsExecuted bool   `json:"isExecuted"`
}

// OwnerHex returns the owner identity as hex.
func (d DerivedState) OwnerHex() string {
	return hex.EncodeToString(d.Owner)
}

// DeriveState merges the two upstream snapshots. It must stay a pure function.
// The executed flag is taken from the private state; the ledger flag is only
// used while no private state is known.
func DeriveState(ledger LedgerState, private *PrivateState) DerivedState {
	owner := make([]byte, len(ledger.Owner))
	copy(owner, ledger.Owner)
	executed := ledger.Executed
	if private != nil {
		executed = private.Executed
	}
	return DerivedState{
		Owner:      owner,
		IsExecuted: executed,
	}
}

// NormalizeIdentity validates a hex identity (coin public key) and returns it lowercased.
func NormalizeIdentity(field, identity string) (string, error) {
	identity = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(identity), "0x"))
	if identity == "" {
		return "", &ValidationError{Field: field, Message: "identity cannot be empty"}
	}
	if _, err := hex.DecodeString(identity); err != nil {
		return "", &ValidationError{Field: field, Message: "identity must be an even-length hex string"}
	}
	return identity, nil
}
