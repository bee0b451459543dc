package will

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/will-wallet/internal/contract"
	"github.com/AlexZinkM/will-wallet/internal/model"
)

// AddBeneficiary records amount for person (hex identity)
func (s *Session) AddBeneficiary(ctx context.Context, person string, amount uint64) (model.FinalizedTxData, error) {
	return s.call(ctx, contract.Call{Circuit: model.CircuitAddBeneficiary, Person: person, Amount: amount},
		func(v contract.View) error {
			_, err := contract.CheckAddBeneficiary(v, person, amount)
			return err
		})
}

// ExecuteWill marks the will executed
func (s *Session) ExecuteWill(ctx context.Context) (model.FinalizedTxData, error) {
	return s.call(ctx, contract.Call{Circuit: model.CircuitExecuteWill}, contract.CheckExecuteWill)
}

// Claim pays out person's allocation and removes it
func (s *Session) Claim(ctx context.Context, person string) (model.FinalizedTxData, error) {
	return s.call(ctx, contract.Call{Circuit: model.CircuitClaim, Person: person},
		func(v contract.View) error {
			_, err := contract.CheckClaim(v, person)
			return err
		})
}

// call validates against the state the caller observes, waits for its turn, submits
// and adopts the next private state only once the transaction is finalized.
func (s *Session) call(ctx context.Context, c contract.Call, check func(contract.View) error) (model.FinalizedTxData, error) {
	if s.isClosed() {
		return model.FinalizedTxData{}, ErrSessionClosed
	}
	if ledger, private := s.current(); check != nil {
		if err := check(contract.NewView(ledger, private)); err != nil {
			return model.FinalizedTxData{}, err
		}
	}

	if err := s.acquire(ctx); err != nil {
		return model.FinalizedTxData{}, err
	}
	defer s.release()

	if s.isClosed() {
		return model.FinalizedTxData{}, ErrSessionClosed
	}
	s.setStatus(StatusSubmitting)
	defer s.setStatus(StatusJoined)

	// a queued call sees the state left by the call before it
	ledger, private := s.current()
	c.Address = s.address

	res, err := s.providers.Pipeline.Submit(ctx, c, ledger, private)
	if err != nil {
		return model.FinalizedTxData{}, err
	}

	if s.isClosed() {
		s.logger.Warn().Str("tx_id", res.Finalized.TxID).Msg("session closed while submitting, state update discarded")
		return res.Finalized, nil
	}
	next := res.NextPrivate
	s.private.Publish(&next)
	if err := s.providers.Store.Set(ctx, s.address, next); err != nil {
		return res.Finalized, fmt.Errorf("transaction %s finalized but private state was not saved: %w", res.Finalized.TxID, err)
	}
	return res.Finalized, nil
}

func (s *Session) acquire(ctx context.Context) error {
	if s.opts.BusyPolicy == BusyReject {
		select {
		case s.busy <- struct{}{}:
			return nil
		default:
			return model.ErrSessionBusy
		}
	}
	select {
	case s.busy <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() {
	<-s.busy
}
