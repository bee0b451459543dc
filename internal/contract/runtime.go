package contract

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/ledger"
	"github.com/AlexZinkM/will-wallet/internal/model"
)

// Call is one circuit invocation with its arguments
type Call struct {
	Circuit      model.CircuitID
	Address      model.ContractAddress // empty for init
	Person       string                // addBeneficiary, claim
	Amount       uint64                // addBeneficiary
	InitialOwner []byte                // init
}

// Built is the outcome of running a circuit locally
type Built struct {
	Tx          model.UnprovenTransaction
	NextPrivate model.PrivateState
	NextLedger  model.LedgerState
}

// Runtime builds unproven transactions on behalf of one caller
type Runtime struct {
	caller []byte
	now    func() time.Time
	rand   io.Reader
}

// NewRuntime creates a runtime for the caller identified by its coin public key
func NewRuntime(caller []byte) *Runtime {
	return &Runtime{
		caller: caller,
		now:    time.Now,
		rand:   rand.Reader,
	}
}

// Caller returns the caller identity as hex
func (r *Runtime) Caller() string {
	return hex.EncodeToString(r.caller)
}

// Build runs the circuit against the current states. The returned states are the
// ones to adopt once the transaction is finalized; nothing is mutated here.
// A nil private state means the caller holds none for this contract.
func (r *Runtime) Build(ctx context.Context, call Call, current model.LedgerState, private *model.PrivateState) (Built, error) {
	if err := ctx.Err(); err != nil {
		return Built{}, err
	}
	if !call.Circuit.Valid() {
		return Built{}, &model.ValidationError{Field: "circuit", Message: fmt.Sprintf("unknown circuit %q", call.Circuit)}
	}

	nonce := make([]byte, 16)
	if _, err := io.ReadFull(r.rand, nonce); err != nil {
		return Built{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	view := NewView(current, private)
	base := model.PrivateState{Executed: view.Executed}
	if private != nil {
		base = private.Clone()
	}

	out := Built{
		NextPrivate: base.Clone(),
		NextLedger:  current,
	}
	var inputs [][]byte
	address := call.Address

	switch call.Circuit {
	case model.CircuitInit:
		owner := call.InitialOwner
		if len(owner) == 0 {
			owner = r.caller
		}
		out.NextLedger = model.LedgerState{Owner: owner}
		address = ledger.DeriveContractAddress(r.caller, nonce)
		inputs = [][]byte{owner}

	case model.CircuitAddBeneficiary:
		identity, err := CheckAddBeneficiary(view, call.Person, call.Amount)
		if err != nil {
			return Built{}, err
		}
		out.NextPrivate = ApplyAddBeneficiary(base, identity, call.Amount, r.now())
		inputs = [][]byte{mustHex(identity), binary.BigEndian.AppendUint64(nil, call.Amount)}

	case model.CircuitExecuteWill:
		if err := CheckExecuteWill(view); err != nil {
			return Built{}, err
		}
		out.NextPrivate = ApplyExecuteWill(base)
		out.NextLedger.Executed = true

	case model.CircuitClaim:
		identity, err := CheckClaim(view, call.Person)
		if err != nil {
			return Built{}, err
		}
		out.NextPrivate = ApplyClaim(base, identity)
		inputs = [][]byte{mustHex(identity)}
	}

	if address == "" {
		return Built{}, &model.ValidationError{Field: "contractAddress", Message: "contract address cannot be empty"}
	}

	stateAfter, err := ledger.EncodeLedgerState(out.NextLedger)
	if err != nil {
		return Built{}, err
	}

	preimage, err := ledger.EncodePreimage(ledger.CallPreimage{
		Circuit:    string(call.Circuit),
		Contract:   address.Bytes(),
		Caller:     r.caller,
		Inputs:     inputs,
		StateAfter: stateAfter,
		Nonce:      nonce,
	})
	if err != nil {
		return Built{}, err
	}

	out.Tx = model.UnprovenTransaction{
		Circuit:         call.Circuit,
		ContractAddress: address,
		Preimage:        preimage,
	}
	return out, nil
}

// mustHex decodes an identity already validated by NormalizeIdentity
func mustHex(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}
