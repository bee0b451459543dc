package contract

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/ledger"
	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "001a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a"
	bob   = "009f8e7d6c5b4a3f2e1d0c9b8a7f6e5d4c3b2a10"
)

var testAddress = model.ContractAddress("a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2")

func newTestRuntime() *Runtime {
	r := NewRuntime([]byte{0xca, 0xfe})
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	r.rand = bytes.NewReader(bytes.Repeat([]byte{7}, 1024))
	return r
}

func TestBuild_Init(t *testing.T) {
	r := newTestRuntime()
	initial := model.PrivateState{}

	built, err := r.Build(context.Background(), Call{Circuit: model.CircuitInit, InitialOwner: []byte{1, 2}}, model.LedgerState{}, &initial)
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 2}, built.NextLedger.Owner)
	assert.False(t, built.NextLedger.Executed)
	assert.Len(t, string(built.Tx.ContractAddress), 64)

	pre, err := ledger.DecodePreimage(built.Tx.Preimage)
	require.NoError(t, err)
	assert.Equal(t, "init", pre.Circuit)
	assert.Equal(t, []byte{0xca, 0xfe}, pre.Caller)

	st, err := ledger.DecodeLedgerState(pre.StateAfter)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, st.Owner)
}

func TestBuild_InitDefaultsOwnerToCaller(t *testing.T) {
	r := newTestRuntime()
	built, err := r.Build(context.Background(), Call{Circuit: model.CircuitInit}, model.LedgerState{}, &model.PrivateState{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xca, 0xfe}, built.NextLedger.Owner)
	assert.Equal(t, "cafe", r.Caller())
}

func TestBuild_AddBeneficiaryDoesNotMutateInput(t *testing.T) {
	r := newTestRuntime()
	current := model.PrivateState{Beneficiaries: []model.BeneficiaryRecord{{Identity: alice, Amount: 5}}}

	built, err := r.Build(context.Background(), Call{
		Circuit: model.CircuitAddBeneficiary,
		Address: testAddress,
		Person:  "0x" + bob,
		Amount:  100,
	}, model.LedgerState{}, &current)
	require.NoError(t, err)

	require.Len(t, current.Beneficiaries, 1)
	require.Len(t, built.NextPrivate.Beneficiaries, 2)
	assert.Equal(t, bob, built.NextPrivate.Beneficiaries[1].Identity)
	assert.Equal(t, uint64(100), built.NextPrivate.Beneficiaries[1].Amount)
	assert.Equal(t, testAddress, built.Tx.ContractAddress)
	assert.Equal(t, model.CircuitAddBeneficiary, built.Tx.Circuit)
}

func TestBuild_RuleViolations(t *testing.T) {
	executed := model.PrivateState{Executed: true, Beneficiaries: []model.BeneficiaryRecord{{Identity: alice, Amount: 1}}}
	pending := model.PrivateState{Beneficiaries: []model.BeneficiaryRecord{{Identity: alice, Amount: 1}}}

	tests := []struct {
		name    string
		call    Call
		private model.PrivateState
	}{
		{"empty person", Call{Circuit: model.CircuitAddBeneficiary, Address: testAddress, Person: "", Amount: 1}, pending},
		{"non hex person", Call{Circuit: model.CircuitAddBeneficiary, Address: testAddress, Person: "xyz", Amount: 1}, pending},
		{"zero amount", Call{Circuit: model.CircuitAddBeneficiary, Address: testAddress, Person: bob, Amount: 0}, pending},
		{"add after execute", Call{Circuit: model.CircuitAddBeneficiary, Address: testAddress, Person: bob, Amount: 1}, executed},
		{"execute twice", Call{Circuit: model.CircuitExecuteWill, Address: testAddress}, executed},
		{"claim before execute", Call{Circuit: model.CircuitClaim, Address: testAddress, Person: alice}, pending},
		{"claim unknown", Call{Circuit: model.CircuitClaim, Address: testAddress, Person: bob}, executed},
		{"unknown circuit", Call{Circuit: "transfer", Address: testAddress}, pending},
		{"missing address", Call{Circuit: model.CircuitExecuteWill}, pending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestRuntime().Build(context.Background(), tt.call, model.LedgerState{}, &tt.private)
			require.Error(t, err)
			assert.True(t, model.IsValidationError(err), "got %T: %v", err, err)
		})
	}
}

func TestBuild_ExecuteAndClaim(t *testing.T) {
	r := newTestRuntime()
	ps := model.PrivateState{Beneficiaries: []model.BeneficiaryRecord{
		{Identity: alice, Amount: 1},
		{Identity: bob, Amount: 2},
		{Identity: alice, Amount: 3},
	}}

	built, err := r.Build(context.Background(), Call{Circuit: model.CircuitExecuteWill, Address: testAddress}, model.LedgerState{}, &ps)
	require.NoError(t, err)
	assert.True(t, built.NextPrivate.Executed)
	assert.True(t, built.NextLedger.Executed)

	built, err = r.Build(context.Background(), Call{Circuit: model.CircuitClaim, Address: testAddress, Person: alice}, built.NextLedger, &built.NextPrivate)
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{bob: 2}, built.NextPrivate.Allocations())
}

func TestBuild_WithoutPrivateStateUsesLedgerFlag(t *testing.T) {
	r := newTestRuntime()
	executedLedger := model.LedgerState{Owner: []byte{0xab, 0x12}, Executed: true}

	// a beneficiary holds no allocation records; the circuit decides
	built, err := r.Build(context.Background(), Call{Circuit: model.CircuitClaim, Address: testAddress, Person: "cafe"}, executedLedger, nil)
	require.NoError(t, err)
	assert.True(t, built.NextPrivate.Executed)
	assert.Empty(t, built.NextPrivate.Beneficiaries)

	_, err = r.Build(context.Background(), Call{Circuit: model.CircuitExecuteWill, Address: testAddress}, executedLedger, nil)
	assert.True(t, model.IsValidationError(err))

	_, err = r.Build(context.Background(), Call{Circuit: model.CircuitClaim, Address: testAddress, Person: "cafe"}, model.LedgerState{Owner: []byte{0xab}}, nil)
	assert.True(t, model.IsValidationError(err))
}

func TestNewView(t *testing.T) {
	executedLedger := model.LedgerState{Executed: true}

	v := NewView(executedLedger, nil)
	assert.True(t, v.Executed)
	assert.Nil(t, v.Private)

	v = NewView(model.LedgerState{}, &model.PrivateState{Executed: true})
	assert.True(t, v.Executed)

	_, err := CheckClaim(NewView(executedLedger, nil), bob)
	assert.NoError(t, err)
	_, err = CheckClaim(NewView(executedLedger, &model.PrivateState{Executed: true}), bob)
	assert.True(t, model.IsValidationError(err))
	assert.True(t, model.IsValidationError(CheckExecuteWill(NewView(executedLedger, nil))))
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRuntime().Build(ctx, Call{Circuit: model.CircuitInit}, model.LedgerState{}, &model.PrivateState{})
	require.ErrorIs(t, err, context.Canceled)
}
