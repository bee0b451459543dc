// Package simulator is an in-memory will contract with artificial latency.
// It offers the same operations and errors as a live session and needs no network.
package simulator

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/contract"
	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/internal/stream"
	"github.com/AlexZinkM/will-wallet/will"

	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DemoOwnerHex is the owner reported by the simulated contract; it doubles as its address
const DemoOwnerHex = "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"

var (
	errNotConnected = &model.WalletConnectionError{Reason: "connect your wallet first"}
	errNotJoined    = &model.ValidationError{Field: "session", Message: "join the contract first"}
)

// Delays is the latency injected before each operation completes
type Delays struct {
	Connect time.Duration
	Join    time.Duration
	Add     time.Duration
	Execute time.Duration
	Claim   time.Duration
}

// DefaultDelays mirror what a user of the live network would roughly wait
func DefaultDelays() Delays {
	return Delays{
		Connect: 1200 * time.Millisecond,
		Join:    2 * time.Second,
		Add:     2500 * time.Millisecond,
		Execute: 3 * time.Second,
		Claim:   2 * time.Second,
	}
}

// Options configures a simulator
type Options struct {
	Delays Delays
	// Seed pre-populates two beneficiaries
	Seed   bool
	Logger zerolog.Logger
}

// Simulator implements will.API over an in-memory model
type Simulator struct {
	delays Delays
	logger zerolog.Logger
	now    func() time.Time

	ledger     *stream.Subject[model.LedgerState]
	private    *stream.Subject[*model.PrivateState]
	derived    *stream.Subject[model.DerivedState]
	derivedSub event.Subscription

	// busy serializes operations
	busy chan struct{}

	mu        sync.Mutex
	connected bool
	joined    bool
	state     model.PrivateState
	closeOnce sync.Once
}

// New creates a disconnected simulator
func New(opts Options) *Simulator {
	s := &Simulator{
		delays:  opts.Delays,
		logger:  opts.Logger,
		now:     time.Now,
		ledger:  stream.NewSubject[model.LedgerState](),
		private: stream.NewSubject[*model.PrivateState](),
		busy:    make(chan struct{}, 1),
	}
	if opts.Seed {
		now := s.now()
		s.state.Beneficiaries = []model.BeneficiaryRecord{
			{Identity: "001a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a", Amount: 5000, AddedAt: now.Add(-24 * time.Hour)},
			{Identity: "009f8e7d6c5b4a3f2e1d0c9b8a7f6e5d4c3b2a10", Amount: 12500, AddedAt: now.Add(-12 * time.Hour)},
		}
	}
	s.derived, s.derivedSub = stream.CombineLatest(s.ledger, s.private, model.DeriveState)
	return s
}

// Connect simulates connecting the wallet
func (s *Simulator) Connect(ctx context.Context) error {
	if err := s.run(ctx, "connect wallet", s.delays.Connect); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	s.logger.Info().Msg("wallet connected")
	return nil
}

// Join simulates joining the demo contract
func (s *Simulator) Join(ctx context.Context) error {
	s.mu.Lock()
	connected := s.connected
	s.mu.Unlock()
	if !connected {
		return errNotConnected
	}

	if err := s.run(ctx, "join contract", s.delays.Join); err != nil {
		return err
	}
	defer s.release()

	owner, _ := hex.DecodeString(DemoOwnerHex)
	s.mu.Lock()
	s.joined = true
	s.mu.Unlock()
	s.ledger.Publish(model.LedgerState{Owner: owner})
	s.publishPrivate()
	s.logger.Info().Msg("contract joined")
	return nil
}

// AddBeneficiary appends a beneficiary record after the add delay
func (s *Simulator) AddBeneficiary(ctx context.Context, person string, amount uint64) (model.FinalizedTxData, error) {
	var identity string
	return s.call(ctx, model.CircuitAddBeneficiary, s.delays.Add,
		func(v contract.View) error {
			var err error
			identity, err = contract.CheckAddBeneficiary(v, person, amount)
			return err
		},
		func(ps model.PrivateState) model.PrivateState {
			return contract.ApplyAddBeneficiary(ps, identity, amount, s.now())
		})
}

// ExecuteWill marks the will executed after the execute delay
func (s *Simulator) ExecuteWill(ctx context.Context) (model.FinalizedTxData, error) {
	return s.call(ctx, model.CircuitExecuteWill, s.delays.Execute, contract.CheckExecuteWill, contract.ApplyExecuteWill)
}

// Claim removes person's records after the claim delay
func (s *Simulator) Claim(ctx context.Context, person string) (model.FinalizedTxData, error) {
	var identity string
	return s.call(ctx, model.CircuitClaim, s.delays.Claim,
		func(v contract.View) error {
			var err error
			identity, err = contract.CheckClaim(v, person)
			return err
		},
		func(ps model.PrivateState) model.PrivateState {
			return contract.ApplyClaim(ps, identity)
		})
}

// ResetPrivateState drops every beneficiary record; the executed flag follows the ledger
func (s *Simulator) ResetPrivateState(ctx context.Context) error {
	if !s.Joined() {
		return errNotJoined
	}
	if err := s.run(ctx, "reset private state", 0); err != nil {
		return err
	}
	defer s.release()

	ledger, _ := s.ledger.Latest()
	s.mu.Lock()
	s.state = model.PrivateState{Executed: ledger.Executed}
	s.mu.Unlock()
	s.publishPrivate()
	return nil
}

// call waits out the delay, then checks the rules and mutates the model.
// Rule violations surface only after the delay.
func (s *Simulator) call(ctx context.Context, circuit model.CircuitID, delay time.Duration,
	check func(contract.View) error, apply func(model.PrivateState) model.PrivateState) (model.FinalizedTxData, error) {
	s.mu.Lock()
	joined := s.joined
	s.mu.Unlock()
	if !joined {
		return model.FinalizedTxData{}, errNotJoined
	}

	if err := s.run(ctx, string(circuit), delay); err != nil {
		return model.FinalizedTxData{}, err
	}
	defer s.release()

	s.mu.Lock()
	ps := s.state.Clone()
	if err := check(contract.View{Executed: ps.Executed, Private: &ps}); err != nil {
		s.mu.Unlock()
		s.logger.Debug().Str("op", string(circuit)).Err(err).Msg("simulated call rejected")
		return model.FinalizedTxData{}, err
	}
	s.state = apply(s.state)
	executed := s.state.Executed
	s.mu.Unlock()

	if circuit == model.CircuitExecuteWill {
		ledger, _ := s.ledger.Latest()
		ledger.Executed = executed
		s.ledger.Publish(ledger)
	}
	s.publishPrivate()

	return model.FinalizedTxData{
		TxID:            uuid.NewString(),
		Status:          model.TxStatusAccepted,
		Circuit:         circuit,
		ContractAddress: s.ContractAddress(),
		SubmittedAt:     s.now().UTC(),
	}, nil
}

// run takes the operation slot and sleeps for delay. The caller releases the slot.
func (s *Simulator) run(ctx context.Context, label string, delay time.Duration) error {
	select {
	case s.busy <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Debug().Str("op", label).Dur("delay", delay).Msg("simulating")

	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		s.release()
		return ctx.Err()
	}
}

func (s *Simulator) release() {
	<-s.busy
}

func (s *Simulator) publishPrivate() {
	s.mu.Lock()
	next := s.state.Clone()
	s.mu.Unlock()
	s.private.Publish(&next)
}

// Beneficiaries returns a copy of the recorded beneficiaries
func (s *Simulator) Beneficiaries() []model.BeneficiaryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone().Beneficiaries
}

// Connected reports whether Connect completed
func (s *Simulator) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Joined reports whether Join completed
func (s *Simulator) Joined() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined
}

// ContractAddress returns the simulated address
func (s *Simulator) ContractAddress() model.ContractAddress {
	return model.ContractAddress(DemoOwnerHex)
}

// Subscribe streams the derived state once joined
func (s *Simulator) Subscribe() (<-chan model.DerivedState, event.Subscription) {
	return s.derived.Subscribe()
}

// Latest returns the most recent derived state
func (s *Simulator) Latest() (model.DerivedState, bool) {
	return s.derived.Latest()
}

// DisplayState summarizes the simulated contract
func (s *Simulator) DisplayState() model.StateResponse {
	ledger, _ := s.ledger.Latest()
	s.mu.Lock()
	ps := s.state.Clone()
	s.mu.Unlock()

	d := model.DeriveState(ledger, &ps)
	return model.StateResponse{
		ContractAddress: DemoOwnerHex,
		Owner:           d.OwnerHex(),
		IsExecuted:      d.IsExecuted,
		Allocations:     ps.Allocations(),
	}
}

// Close ends the derived stream
func (s *Simulator) Close() error {
	s.closeOnce.Do(func() {
		s.derivedSub.Unsubscribe()
		s.ledger.Close()
		s.private.Close()
	})
	return nil
}

var _ will.API = (*Simulator)(nil)
