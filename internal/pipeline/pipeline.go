// Package pipeline runs one circuit call end to end: build, prove, balance, submit.
package pipeline

import (
	"context"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/contract"
	"github.com/AlexZinkM/will-wallet/internal/metrics"
	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Stage names used in logs and metrics
const (
	StageBuild   = "build"
	StageProve   = "prove"
	StageBalance = "balance"
	StageSubmit  = "submit"
)

// Builder runs a circuit locally
type Builder interface {
	Build(ctx context.Context, call contract.Call, current model.LedgerState, private *model.PrivateState) (contract.Built, error)
}

// Prover attaches a proof to an unproven transaction
type Prover interface {
	ProveTx(ctx context.Context, tx model.UnprovenTransaction) (model.ProvenTransaction, error)
}

// Wallet pays for and submits proven transactions
type Wallet interface {
	AcquireTxGate(ctx context.Context) (release func(), err error)
	BalanceTx(ctx context.Context, tx model.ProvenTransaction) (model.BalancedTransaction, error)
	SubmitTx(ctx context.Context, tx model.BalancedTransaction) (model.FinalizedTxData, error)
}

// Result is a finalized call with the states to adopt afterwards
type Result struct {
	Finalized   model.FinalizedTxData
	NextPrivate model.PrivateState
	NextLedger  model.LedgerState
}

// Pipeline submits circuit calls
type Pipeline struct {
	builder Builder
	prover  Prover
	wallet  Wallet
	logger  zerolog.Logger
}

// New creates a pipeline
func New(builder Builder, prover Prover, wallet Wallet, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		builder: builder,
		prover:  prover,
		wallet:  wallet,
		logger:  logger,
	}
}

// Submit builds, proves, balances and submits call. Nothing local changes here:
// the caller applies Result.NextPrivate once Submit returns without error.
// Errors from any stage are returned unwrapped.
func (p *Pipeline) Submit(ctx context.Context, call contract.Call, current model.LedgerState, private *model.PrivateState) (res Result, err error) {
	circuit := string(call.Circuit)
	log := p.logger.With().
		Str("request_id", uuid.NewString()).
		Str("circuit", circuit).
		Logger()

	start := time.Now()
	stage := StageBuild
	defer func() {
		outcome := "finalized"
		if err != nil {
			outcome = "failed"
			if code := model.ErrorCode(err); code != "" {
				outcome = code
			}
			log.Warn().Err(err).Str("stage", stage).Msg("call failed")
		} else {
			log.Info().
				Str("tx_id", res.Finalized.TxID).
				Dur("elapsed", time.Since(start)).
				Msg("call finalized")
		}
		metrics.CountSubmission(circuit, outcome)
	}()

	built, err := timed(log, stage, circuit, func() (contract.Built, error) {
		return p.builder.Build(ctx, call, current, private)
	})
	if err != nil {
		return Result{}, err
	}

	stage = StageProve
	proven, err := timed(log, stage, circuit, func() (model.ProvenTransaction, error) {
		return p.prover.ProveTx(ctx, built.Tx)
	})
	if err != nil {
		return Result{}, err
	}

	release, err := p.wallet.AcquireTxGate(ctx)
	if err != nil {
		return Result{}, err
	}
	defer release()

	stage = StageBalance
	balanced, err := timed(log, stage, circuit, func() (model.BalancedTransaction, error) {
		return p.wallet.BalanceTx(ctx, proven)
	})
	if err != nil {
		return Result{}, err
	}

	stage = StageSubmit
	finalized, err := timed(log, stage, circuit, func() (model.FinalizedTxData, error) {
		return p.wallet.SubmitTx(ctx, balanced)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Finalized:   finalized,
		NextPrivate: built.NextPrivate,
		NextLedger:  built.NextLedger,
	}, nil
}

func timed[T any](log zerolog.Logger, stage, circuit string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	d := time.Since(start)
	metrics.ObserveStage(stage, circuit, d)
	log.Debug().Str("stage", stage).Dur("took", d).Bool("ok", err == nil).Msg("stage done")
	return out, err
}
