// Package contract evaluates will contract circuits locally and produces the
// unproven transactions that are sent to the proof server.
package contract

import (
	"time"

	"github.com/AlexZinkM/will-wallet/internal/model"
)

// Rule violations shared by the session and the simulator
var (
	errAddAfterExecute    = &model.ValidationError{Field: "will", Message: "cannot add beneficiaries, will is already executed"}
	errAlreadyExecuted    = &model.ValidationError{Field: "will", Message: "will is already executed"}
	errClaimBeforeExecute = &model.ValidationError{Field: "will", Message: "will must be executed before claiming"}
	errAmountZero         = &model.ValidationError{Field: "amount", Message: "amount must be greater than 0"}
)

// View is what the caller knows about the will when validating a call
type View struct {
	// Executed is the merged flag the caller observes
	Executed bool
	// Private is nil when the caller holds no private state for the contract
	Private *model.PrivateState
}

// NewView merges the ledger and private state the same way the derived state does
func NewView(ledger model.LedgerState, private *model.PrivateState) View {
	return View{
		Executed: model.DeriveState(ledger, private).IsExecuted,
		Private:  private,
	}
}

// CheckAddBeneficiary validates an addBeneficiary call and returns the normalized identity
func CheckAddBeneficiary(v View, person string, amount uint64) (string, error) {
	identity, err := model.NormalizeIdentity("person", person)
	if err != nil {
		return "", err
	}
	if amount == 0 {
		return "", errAmountZero
	}
	if v.Executed {
		return "", errAddAfterExecute
	}
	return identity, nil
}

// CheckExecuteWill validates an executeWill call
func CheckExecuteWill(v View) error {
	if v.Executed {
		return errAlreadyExecuted
	}
	return nil
}

// CheckClaim validates a claim call and returns the normalized identity.
// Without private state the allocation is not known locally and is left to the circuit.
func CheckClaim(v View, person string) (string, error) {
	identity, err := model.NormalizeIdentity("person", person)
	if err != nil {
		return "", err
	}
	if !v.Executed {
		return "", errClaimBeforeExecute
	}
	if v.Private != nil && !v.Private.HasBeneficiary(identity) {
		return "", &model.ValidationError{Field: "person", Message: "no allocation recorded for " + identity}
	}
	return identity, nil
}

// ApplyAddBeneficiary returns the private state after a successful addBeneficiary
func ApplyAddBeneficiary(ps model.PrivateState, identity string, amount uint64, at time.Time) model.PrivateState {
	next := ps.Clone()
	next.Beneficiaries = append(next.Beneficiaries, model.BeneficiaryRecord{
		Identity: identity,
		Amount:   amount,
		AddedAt:  at.UTC(),
	})
	return next
}

// ApplyExecuteWill returns the private state after a successful executeWill
func ApplyExecuteWill(ps model.PrivateState) model.PrivateState {
	next := ps.Clone()
	next.Executed = true
	return next
}

// ApplyClaim returns the private state after a successful claim
func ApplyClaim(ps model.PrivateState, identity string) model.PrivateState {
	return ps.WithoutBeneficiary(identity)
}
