package will

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/AlexZinkM/will-wallet/internal/client"
	"github.com/AlexZinkM/will-wallet/internal/contract"
	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/internal/stream"

	"github.com/ethereum/go-ethereum/event"
	"github.com/rs/zerolog"
)

// ErrSessionClosed is returned by calls on a closed session
var ErrSessionClosed = errors.New("session is closed")

// Session is a joined will contract
type Session struct {
	address   model.ContractAddress
	providers Providers
	opts      Options
	logger    zerolog.Logger

	ledger     *stream.Subject[model.LedgerState]
	private    *stream.Subject[*model.PrivateState]
	derived    *stream.Subject[model.DerivedState]
	derivedSub event.Subscription

	// busy holds a token while a call is in flight
	busy chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	status    Status
	closed    bool
	closeOnce sync.Once
	watchDone chan struct{}
}

func newSession(address model.ContractAddress, p Providers, opts Options) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		address:   address,
		providers: p,
		opts:      opts.withDefaults(),
		logger:    p.Logger.With().Str("contract", address.String()).Logger(),
		ledger:    stream.NewSubject[model.LedgerState](),
		private:   stream.NewSubject[*model.PrivateState](),
		busy:      make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		status:    StatusJoining,
	}
	s.derived, s.derivedSub = stream.CombineLatest(s.ledger, s.private, model.DeriveState)
	return s
}

type joinResult struct {
	state model.LedgerState
	feed  *client.ContractFeed
	err   error
}

// Join attaches to the contract at address. It races the first state against
// opts.JoinTimeout; exceeding it is a *model.JoinTimeoutError. An indexer that
// ends the subscription without any state yields *model.ContractNotFoundError.
func Join(ctx context.Context, p Providers, address string, opts Options) (*Session, error) {
	addr, err := model.ParseContractAddress(address)
	if err != nil {
		return nil, err
	}
	s := newSession(addr, p, opts)
	s.logger.Info().Dur("timeout", s.opts.JoinTimeout).Msg("joining contract")

	joinCtx, cancel := context.WithTimeout(ctx, s.opts.JoinTimeout)
	defer cancel()

	results := make(chan joinResult, 1)
	go func() {
		st, feed, err := s.attach(joinCtx)
		results <- joinResult{state: st, feed: feed, err: err}
	}()

	var res joinResult
	select {
	case res = <-results:
	case <-joinCtx.Done():
		// the attempt lost; it must not touch the session, only release its feed
		go func() {
			if late := <-results; late.feed != nil {
				late.feed.Close()
			}
		}()
		s.abort()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &model.JoinTimeoutError{Address: addr, Wait: s.opts.JoinTimeout}
	}

	if res.err != nil {
		s.abort()
		if errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &model.JoinTimeoutError{Address: addr, Wait: s.opts.JoinTimeout}
		}
		return nil, res.err
	}

	private, err := p.Store.Get(ctx, addr)
	if err != nil {
		res.feed.Close()
		s.abort()
		return nil, err
	}

	s.ledger.Publish(res.state)
	s.private.Publish(private)
	s.follow(res.feed)
	s.setStatus(StatusJoined)
	s.logger.Info().Bool("private_state", private != nil).Msg("contract joined")
	return s, nil
}

// attach opens the state subscription first so no update between the query
// and the subscription is lost, then reads the current state or waits for one.
func (s *Session) attach(ctx context.Context) (model.LedgerState, *client.ContractFeed, error) {
	// the feed outlives the join; it is bound to the session context
	feed, err := s.providers.Ledger.SubscribeContract(s.ctx, s.address)
	if err != nil {
		return model.LedgerState{}, nil, err
	}

	st, err := s.providers.Ledger.ContractState(ctx, s.address)
	if err == nil {
		return st, feed, nil
	}
	if !model.IsContractNotFound(err) {
		feed.Close()
		return model.LedgerState{}, nil, err
	}

	s.logger.Debug().Msg("no contract state yet, waiting for the indexer")
	select {
	case st, ok := <-feed.States():
		if ok {
			return st, feed, nil
		}
		select {
		case ferr := <-feed.Err():
			return model.LedgerState{}, nil, ferr
		default:
			return model.LedgerState{}, nil, &model.ContractNotFoundError{Address: s.address}
		}
	case <-ctx.Done():
		feed.Close()
		return model.LedgerState{}, nil, ctx.Err()
	}
}

// Deploy runs the init circuit and returns a session on the new contract.
// initialOwner is a hex identity; empty means the caller's own key.
func Deploy(ctx context.Context, p Providers, initial model.PrivateState, initialOwner string, opts Options) (*Session, error) {
	var owner []byte
	if initialOwner != "" {
		identity, err := model.NormalizeIdentity("initialOwner", initialOwner)
		if err != nil {
			return nil, err
		}
		owner, _ = hex.DecodeString(identity)
	}

	res, err := p.Pipeline.Submit(ctx, contract.Call{Circuit: model.CircuitInit, InitialOwner: owner}, model.LedgerState{}, &initial)
	if err != nil {
		return nil, err
	}
	addr := res.Finalized.ContractAddress
	if err := p.Store.Set(ctx, addr, res.NextPrivate); err != nil {
		return nil, fmt.Errorf("contract deployed at %s but private state was not saved: %w", addr, err)
	}

	s := newSession(addr, p, opts)
	feed, err := p.Ledger.SubscribeContract(s.ctx, addr)
	if err != nil {
		s.abort()
		return nil, fmt.Errorf("contract deployed at %s but state subscription failed: %w", addr, err)
	}

	next := res.NextPrivate
	s.ledger.Publish(res.NextLedger)
	s.private.Publish(&next)
	s.follow(feed)
	s.setStatus(StatusJoined)
	s.logger.Info().Str("tx_id", res.Finalized.TxID).Msg("contract deployed")
	return s, nil
}

// follow publishes every indexer state until the feed or the session ends
func (s *Session) follow(feed *client.ContractFeed) {
	s.watchDone = make(chan struct{})
	go func() {
		defer close(s.watchDone)
		defer feed.Close()
		for {
			select {
			case st, ok := <-feed.States():
				if !ok {
					select {
					case err := <-feed.Err():
						s.logger.Warn().Err(err).Msg("contract state subscription ended")
					default:
					}
					return
				}
				s.ledger.Publish(st)
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

// ContractAddress returns the joined address
func (s *Session) ContractAddress() model.ContractAddress { return s.address }

// Status returns the lifecycle state
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.status = st
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Subscribe streams the derived state: the latest value first, then each update
func (s *Session) Subscribe() (<-chan model.DerivedState, event.Subscription) {
	return s.derived.Subscribe()
}

// Latest returns the most recent derived state
func (s *Session) Latest() (model.DerivedState, bool) {
	return s.derived.Latest()
}

// current returns the latest snapshots of both sources
// current returns the latest ledger state and a copy of the private state, nil when none is held
func (s *Session) current() (model.LedgerState, *model.PrivateState) {
	ledger, _ := s.ledger.Latest()
	p, _ := s.private.Latest()
	if p == nil {
		return ledger, nil
	}
	private := p.Clone()
	return ledger, &private
}

// Allocations returns the locally known beneficiary amounts
func (s *Session) Allocations() map[string]uint64 {
	_, private := s.current()
	if private == nil {
		return map[string]uint64{}
	}
	return private.Allocations()
}

// DisplayState summarizes the contract for display
func (s *Session) DisplayState() model.StateResponse {
	ledger, _ := s.ledger.Latest()
	p, _ := s.private.Latest()
	d := model.DeriveState(ledger, p)
	resp := model.StateResponse{
		ContractAddress: s.address.String(),
		Owner:           d.OwnerHex(),
		IsExecuted:      d.IsExecuted,
	}
	if p != nil {
		resp.Allocations = p.Allocations()
	}
	return resp
}

// ResetPrivateState forgets the local private state of the contract. The derived
// state falls back to the ledger until a later call creates a new private state.
func (s *Session) ResetPrivateState(ctx context.Context) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if err := s.providers.Store.Delete(ctx, s.address); err != nil {
		return err
	}
	s.private.Publish(nil)
	s.logger.Info().Msg("private state reset")
	return nil
}

// Close stops following the contract. Results of calls still in flight are discarded.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.status = StatusUnjoined
		s.mu.Unlock()

		s.cancel()
		if s.watchDone != nil {
			<-s.watchDone
		}
		s.derivedSub.Unsubscribe()
		s.ledger.Close()
		s.private.Close()
		s.logger.Info().Msg("session closed")
	})
	return nil
}

// abort tears down a session that never joined
func (s *Session) abort() {
	s.mu.Lock()
	s.status = StatusUnjoined
	s.mu.Unlock()
	s.Close()
}
