package ledger

import (
	"testing"

	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCheckPayload_RejectsEmptyPreimage(t *testing.T) {
	_, err := EncodeCheckPayload(nil, []byte{1})
	require.Error(t, err)

	_, err = EncodeProvingPayload(nil, model.KeyMaterial{}, nil)
	require.Error(t, err)
}

func TestEncodeProvingPayload_Deterministic(t *testing.T) {
	keys := model.KeyMaterial{IR: []byte("ir"), ProverKey: []byte("pk"), VerifierKey: []byte("vk")}
	binding := uint64(7)

	a, err := EncodeProvingPayload([]byte("pre"), keys, &binding)
	require.NoError(t, err)
	b, err := EncodeProvingPayload([]byte("pre"), keys, &binding)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	withoutBinding, err := EncodeProvingPayload([]byte("pre"), keys, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, withoutBinding)
}

func TestDecodeCheckResult(t *testing.T) {
	raw, err := EncodeCheckResult(model.CheckResult{Valid: false, Reason: "owner mismatch"})
	require.NoError(t, err)

	res, err := DecodeCheckResult(raw)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "owner mismatch", res.Reason)

	_, err = DecodeCheckResult([]byte{0xff, 0x00})
	require.Error(t, err)
}

func TestDecodeLedgerState_Garbage(t *testing.T) {
	_, err := DecodeLedgerState([]byte("not cbor"))
	require.Error(t, err)
}

func TestSignedTxHex(t *testing.T) {
	body, err := EncodeTxBody(TxBody{Circuit: "claim", Fee: 10, Payer: "payer"})
	require.NoError(t, err)

	encoded, err := EncodeSignedTx(SignedTx{Body: body, Signature: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "0x", encoded[:2])

	decoded, err := DecodeSignedTx(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, decoded.Signature)

	parsed, err := DecodeTxBody(decoded.Body)
	require.NoError(t, err)
	assert.Equal(t, "claim", parsed.Circuit)
	assert.Equal(t, uint64(10), parsed.Fee)

	_, err = DecodeSignedTx("0xzz")
	require.Error(t, err)
}

func TestDeriveContractAddress(t *testing.T) {
	a := DeriveContractAddress([]byte("deployer"), []byte{1})
	b := DeriveContractAddress([]byte("deployer"), []byte{2})
	assert.NotEqual(t, a, b)

	parsed, err := model.ParseContractAddress(string(a))
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
	assert.Len(t, TxHash([]byte("x")), 64)
}
