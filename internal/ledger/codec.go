// Package ledger encodes the binary payloads exchanged with the proof server,
// the indexer and the node.
package ledger

import (
	"errors"
	"fmt"

	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/fxamacker/cbor/v2"
)

// payloadVersion is bumped whenever a payload layout changes
const payloadVersion = 1

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// deterministic encoding: signatures and content hashes are computed over these bytes
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor enc mode: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: 1 << 16,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor dec mode: %v", err))
	}
}

// checkPayload is the body of POST /check
type checkPayload struct {
	Version  int    `cbor:"1,keyasint"`
	Preimage []byte `cbor:"2,keyasint"`
	IR       []byte `cbor:"3,keyasint"`
}

// provingPayload is the body of POST /prove
type provingPayload struct {
	Version      int     `cbor:"1,keyasint"`
	Preimage     []byte  `cbor:"2,keyasint"`
	IR           []byte  `cbor:"3,keyasint"`
	ProverKey    []byte  `cbor:"4,keyasint"`
	VerifierKey  []byte  `cbor:"5,keyasint"`
	BindingInput *uint64 `cbor:"6,keyasint,omitempty"`
}

// EncodeCheckPayload builds the check request body from the call preimage and the circuit IR
func EncodeCheckPayload(preimage, ir []byte) ([]byte, error) {
	if len(preimage) == 0 {
		return nil, errors.New("preimage cannot be empty")
	}
	out, err := encMode.Marshal(checkPayload{Version: payloadVersion, Preimage: preimage, IR: ir})
	if err != nil {
		return nil, fmt.Errorf("failed to encode check payload: %w", err)
	}
	return out, nil
}

// EncodeProvingPayload builds the prove request body. bindingInput overrides the
// binding value the prover would otherwise choose.
func EncodeProvingPayload(preimage []byte, keys model.KeyMaterial, bindingInput *uint64) ([]byte, error) {
	if len(preimage) == 0 {
		return nil, errors.New("preimage cannot be empty")
	}
	out, err := encMode.Marshal(provingPayload{
		Version:      payloadVersion,
		Preimage:     preimage,
		IR:           keys.IR,
		ProverKey:    keys.ProverKey,
		VerifierKey:  keys.VerifierKey,
		BindingInput: bindingInput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode proving payload: %w", err)
	}
	return out, nil
}

// DecodeCheckResult parses the check response body
func DecodeCheckResult(raw []byte) (model.CheckResult, error) {
	var res model.CheckResult
	if err := decMode.Unmarshal(raw, &res); err != nil {
		return model.CheckResult{}, fmt.Errorf("failed to decode check result: %w", err)
	}
	return res, nil
}

// EncodeCheckResult is the inverse of DecodeCheckResult
func EncodeCheckResult(res model.CheckResult) ([]byte, error) {
	return encMode.Marshal(res)
}

// DecodeLedgerState parses the raw contract state reported by the indexer
func DecodeLedgerState(raw []byte) (model.LedgerState, error) {
	var st model.LedgerState
	if err := decMode.Unmarshal(raw, &st); err != nil {
		return model.LedgerState{}, fmt.Errorf("failed to decode ledger state: %w", err)
	}
	return st, nil
}

// EncodeLedgerState is the inverse of DecodeLedgerState
func EncodeLedgerState(st model.LedgerState) ([]byte, error) {
	out, err := encMode.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger state: %w", err)
	}
	return out, nil
}
