package ledger

import (
	"encoding/hex"
	"fmt"

	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/ethereum/go-ethereum/crypto"
)

// CallPreimage is the public transcript of one circuit invocation
type CallPreimage struct {
	Version    int      `cbor:"1,keyasint"`
	Circuit    string   `cbor:"2,keyasint"`
	Contract   []byte   `cbor:"3,keyasint"`
	Caller     []byte   `cbor:"4,keyasint"`
	Inputs     [][]byte `cbor:"5,keyasint"`
	StateAfter []byte   `cbor:"6,keyasint"` // encoded LedgerState after the call
	Nonce      []byte   `cbor:"7,keyasint"`
}

// TxBody is the signed part of a balanced transaction
type TxBody struct {
	Version  int             `cbor:"1,keyasint"`
	Circuit  string          `cbor:"2,keyasint"`
	Contract []byte          `cbor:"3,keyasint"`
	Preimage []byte          `cbor:"4,keyasint"`
	Proof    []byte          `cbor:"5,keyasint"`
	Inputs   []model.CoinRef `cbor:"6,keyasint"`
	Fee      uint64          `cbor:"7,keyasint"`
	Change   uint64          `cbor:"8,keyasint"`
	Payer    string          `cbor:"9,keyasint"`
}

// SignedTx is what the node receives
type SignedTx struct {
	Body      []byte `cbor:"1,keyasint"`
	Signature []byte `cbor:"2,keyasint"`
}

// EncodePreimage encodes a call preimage
func EncodePreimage(p CallPreimage) ([]byte, error) {
	p.Version = payloadVersion
	out, err := encMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preimage: %w", err)
	}
	return out, nil
}

// DecodePreimage decodes a call preimage
func DecodePreimage(raw []byte) (CallPreimage, error) {
	var p CallPreimage
	if err := decMode.Unmarshal(raw, &p); err != nil {
		return CallPreimage{}, fmt.Errorf("failed to decode preimage: %w", err)
	}
	return p, nil
}

// EncodeTxBody encodes the bytes a fee payer signs
func EncodeTxBody(b TxBody) ([]byte, error) {
	b.Version = payloadVersion
	out, err := encMode.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction body: %w", err)
	}
	return out, nil
}

// DecodeTxBody decodes a transaction body
func DecodeTxBody(raw []byte) (TxBody, error) {
	var b TxBody
	if err := decMode.Unmarshal(raw, &b); err != nil {
		return TxBody{}, fmt.Errorf("failed to decode transaction body: %w", err)
	}
	return b, nil
}

// EncodeSignedTx encodes a signed transaction and returns it hex encoded, as the node expects
func EncodeSignedTx(tx SignedTx) (string, error) {
	out, err := encMode.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	return "0x" + hex.EncodeToString(out), nil
}

// DecodeSignedTx is the inverse of EncodeSignedTx
func DecodeSignedTx(s string) (SignedTx, error) {
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return SignedTx{}, fmt.Errorf("failed to decode transaction hex: %w", err)
	}
	var tx SignedTx
	if err := decMode.Unmarshal(raw, &tx); err != nil {
		return SignedTx{}, fmt.Errorf("failed to decode signed transaction: %w", err)
	}
	return tx, nil
}

// TxHash is the keccak-256 hash of the signed transaction body
func TxHash(body []byte) string {
	return hex.EncodeToString(crypto.Keccak256(body))
}

// DeriveContractAddress computes the address of a contract deployed by an init call
func DeriveContractAddress(deployer, nonce []byte) model.ContractAddress {
	return model.ContractAddress(hex.EncodeToString(crypto.Keccak256([]byte("will:deploy"), deployer, nonce)))
}
