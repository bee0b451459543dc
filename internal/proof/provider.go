// Package proof turns unproven transactions into proven ones using a remote proof server.
package proof

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/will-wallet/internal/ledger"
	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/rs/zerolog"
)

// KeySource supplies per-circuit key material
type KeySource interface {
	FetchIR(ctx context.Context, circuit model.CircuitID) ([]byte, error)
	Fetch(ctx context.Context, circuit model.CircuitID) (model.KeyMaterial, error)
}

// Prover is the proof server transport
type Prover interface {
	Check(ctx context.Context, payload []byte) ([]byte, error)
	Prove(ctx context.Context, payload []byte) ([]byte, error)
}

// Provider checks and proves circuit invocations
type Provider struct {
	keys         KeySource
	prover       Prover
	checkOnProve bool
	logger       zerolog.Logger
}

// NewProvider creates a provider. When checkOnProve is set, ProveTx runs a
// check first and never calls prove for a rejected preimage.
func NewProvider(keys KeySource, prover Prover, checkOnProve bool, logger zerolog.Logger) *Provider {
	return &Provider{
		keys:         keys,
		prover:       prover,
		checkOnProve: checkOnProve,
		logger:       logger,
	}
}

// Check validates a preimage against the circuit IR only
func (p *Provider) Check(ctx context.Context, preimage []byte, circuit model.CircuitID) (model.CheckResult, error) {
	ir, err := p.keys.FetchIR(ctx, circuit)
	if err != nil {
		return model.CheckResult{}, err
	}

	payload, err := ledger.EncodeCheckPayload(preimage, ir)
	if err != nil {
		return model.CheckResult{}, err
	}

	raw, err := p.prover.Check(ctx, payload)
	if err != nil {
		return model.CheckResult{}, err
	}
	return ledger.DecodeCheckResult(raw)
}

// Prove produces the proof bytes for a preimage using the full key material
func (p *Provider) Prove(ctx context.Context, preimage []byte, circuit model.CircuitID, bindingInput *uint64) ([]byte, error) {
	keys, err := p.keys.Fetch(ctx, circuit)
	if err != nil {
		return nil, err
	}

	payload, err := ledger.EncodeProvingPayload(preimage, keys, bindingInput)
	if err != nil {
		return nil, err
	}

	proof, err := p.prover.Prove(ctx, payload)
	if err != nil {
		return nil, err
	}
	if len(proof) == 0 {
		return nil, fmt.Errorf("proof server returned an empty proof for %s", circuit)
	}
	return proof, nil
}

// ProveTx checks (when enabled) and proves an unproven transaction
func (p *Provider) ProveTx(ctx context.Context, tx model.UnprovenTransaction) (model.ProvenTransaction, error) {
	if p.checkOnProve {
		res, err := p.Check(ctx, tx.Preimage, tx.Circuit)
		if err != nil {
			return model.ProvenTransaction{}, err
		}
		if !res.Valid {
			p.logger.Warn().Str("circuit", string(tx.Circuit)).Str("reason", res.Reason).Msg("proof check rejected preimage")
			return model.ProvenTransaction{}, &model.CheckRejectedError{Circuit: tx.Circuit, Reason: res.Reason}
		}
	}

	proof, err := p.Prove(ctx, tx.Preimage, tx.Circuit, tx.BindingInput)
	if err != nil {
		return model.ProvenTransaction{}, err
	}
	return model.ProvenTransaction{Unproven: tx, Proof: proof}, nil
}
