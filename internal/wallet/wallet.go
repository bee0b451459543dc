// Package wallet builds and runs the local wallet: key derivation, sync with
// the indexer, fee balancing and transaction submission.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/client"
	"github.com/AlexZinkM/will-wallet/internal/ledger"
	"github.com/AlexZinkM/will-wallet/internal/metrics"
	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/internal/stream"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Fee schedule in specks
const (
	DefaultFeeBase    uint64 = 1_000_000_000
	DefaultFeePerByte uint64 = 10_000

	// txOverhead approximates the encoded size of everything but preimage and proof
	txOverhead = 256
)

// ViewSource reports the wallet's sync progress and coins
type ViewSource interface {
	WalletView(ctx context.Context, address string) (client.WalletView, error)
}

// Submitter hands encoded transactions to the node
type Submitter interface {
	SubmitExtrinsic(ctx context.Context, txHex string) (string, error)
}

// Context is a running wallet
type Context struct {
	keys    *Keys
	adapter Adapter
	views   ViewSource
	node    Submitter
	closers []io.Closer
	logger  zerolog.Logger

	feeBase    uint64
	feePerByte uint64

	state  *stream.Subject[client.WalletView]
	txGate *semaphore.Weighted

	mu       sync.Mutex
	reserved map[string]struct{}
	syncErr  error

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func newContext(keys *Keys, adapter Adapter, views ViewSource, node Submitter, opts Options) *Context {
	feeBase, feePerByte := opts.FeeBase, opts.FeePerByte
	if feeBase == 0 {
		feeBase = DefaultFeeBase
	}
	if feePerByte == 0 {
		feePerByte = DefaultFeePerByte
	}
	return &Context{
		keys:       keys,
		adapter:    adapter,
		views:      views,
		node:       node,
		logger:     opts.Logger,
		feeBase:    feeBase,
		feePerByte: feePerByte,
		state:      stream.NewSubject[client.WalletView](),
		txGate:     semaphore.NewWeighted(1),
		reserved:   map[string]struct{}{},
	}
}

// Keys returns the wallet keys
func (w *Context) Keys() *Keys { return w.keys }

// Adapter returns the negotiated connector variant
func (w *Context) Adapter() Adapter { return w.adapter }

// CoinPublicKey returns the party's identity as hex
func (w *Context) CoinPublicKey() string { return w.keys.CoinPublicKeyHex() }

// startSync starts polling the indexer view in the background
func (w *Context) startSync(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			w.pollOnce(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (w *Context) pollOnce(ctx context.Context) {
	view, err := w.views.WalletView(ctx, w.keys.DustAddress())
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn().Err(err).Msg("wallet sync poll failed")
		}
		w.mu.Lock()
		w.syncErr = err
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.syncErr = nil
	// reserved coins that vanished from the view were spent on chain
	present := make(map[string]struct{}, len(view.Coins))
	for _, c := range view.Coins {
		present[c.Nonce] = struct{}{}
	}
	for nonce := range w.reserved {
		if _, ok := present[nonce]; !ok {
			delete(w.reserved, nonce)
		}
	}
	w.mu.Unlock()

	w.state.Publish(view)
	metrics.SetDustBalance(w.Balance().Available)
}

// Progress returns the latest sync progress
func (w *Context) Progress() model.SyncProgress {
	view, _ := w.state.Latest()
	return view.Progress
}

// Synced reports whether the wallet has caught up with the chain
func (w *Context) Synced() bool {
	return w.Progress().Synced()
}

// Balance returns the fee balance. Reserved coins count as pending.
func (w *Context) Balance() model.DustBalance {
	view, _ := w.state.Latest()

	w.mu.Lock()
	defer w.mu.Unlock()

	var b model.DustBalance
	for _, c := range view.Coins {
		_, reserved := w.reserved[c.Nonce]
		if c.Pending || reserved {
			b.Pending += c.Value
			b.PendingCoins++
			continue
		}
		b.Available += c.Value
		b.AvailableCoins++
	}
	return b
}

// AcquireTxGate serializes balance+submit pairs from this wallet
func (w *Context) AcquireTxGate(ctx context.Context) (release func(), err error) {
	if err := w.txGate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { w.txGate.Release(1) }, nil
}

// Fee returns the fee for a proven transaction
func (w *Context) Fee(tx model.ProvenTransaction) uint64 {
	size := uint64(len(tx.Unproven.Preimage) + len(tx.Proof) + txOverhead)
	return w.feeBase + w.feePerByte*size
}

// BalanceTx selects fee coins for tx, reserves them and signs the result
func (w *Context) BalanceTx(ctx context.Context, tx model.ProvenTransaction) (model.BalancedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return model.BalancedTransaction{}, err
	}
	fee := w.Fee(tx)
	view, _ := w.state.Latest()

	w.mu.Lock()
	available := spendable(view.Coins, w.reserved)
	selected, total, err := selectCoins(available, fee)
	if err != nil {
		w.mu.Unlock()
		return model.BalancedTransaction{}, &model.InsufficientFundsError{Required: fee, Available: sumCoins(available)}
	}
	inputs := make([]model.CoinRef, 0, len(selected))
	for _, c := range selected {
		w.reserved[c.Nonce] = struct{}{}
		inputs = append(inputs, model.CoinRef{Nonce: c.Nonce, Value: c.Value})
	}
	w.mu.Unlock()

	body, err := ledger.EncodeTxBody(ledger.TxBody{
		Circuit:  string(tx.Unproven.Circuit),
		Contract: tx.Unproven.ContractAddress.Bytes(),
		Preimage: tx.Unproven.Preimage,
		Proof:    tx.Proof,
		Inputs:   inputs,
		Fee:      fee,
		Change:   total - fee,
		Payer:    w.keys.Address(),
	})
	if err != nil {
		w.Release(inputs)
		return model.BalancedTransaction{}, err
	}

	sig, err := w.keys.Night.Sign(body)
	if err != nil {
		w.Release(inputs)
		return model.BalancedTransaction{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return model.BalancedTransaction{
		Proven:    tx,
		Inputs:    inputs,
		Fee:       fee,
		Change:    total - fee,
		Payer:     w.keys.Address(),
		Signature: sig.String(),
		Body:      body,
	}, nil
}

// Release returns reserved coins to the spendable set
func (w *Context) Release(inputs []model.CoinRef) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, in := range inputs {
		delete(w.reserved, in.Nonce)
	}
}

// SubmitTx submits a balanced transaction and returns once the node accepted it.
// A rejected submission releases the reserved coins.
func (w *Context) SubmitTx(ctx context.Context, tx model.BalancedTransaction) (model.FinalizedTxData, error) {
	sig, err := solana.SignatureFromBase58(tx.Signature)
	if err != nil {
		w.Release(tx.Inputs)
		return model.FinalizedTxData{}, fmt.Errorf("invalid transaction signature: %w", err)
	}

	txHex, err := ledger.EncodeSignedTx(ledger.SignedTx{Body: tx.Body, Signature: sig[:]})
	if err != nil {
		w.Release(tx.Inputs)
		return model.FinalizedTxData{}, err
	}

	txID, err := w.node.SubmitExtrinsic(ctx, txHex)
	if err != nil {
		w.Release(tx.Inputs)
		return model.FinalizedTxData{}, err
	}

	return model.FinalizedTxData{
		TxID:            txID,
		TxHash:          ledger.TxHash(tx.Body),
		Status:          model.TxStatusAccepted,
		Circuit:         tx.Proven.Unproven.Circuit,
		ContractAddress: tx.Proven.Unproven.ContractAddress,
		SubmittedAt:     time.Now().UTC(),
	}, nil
}

// Close stops syncing and releases clients. Safe on a partially built context and twice.
func (w *Context) Close() error {
	if w == nil {
		return nil
	}
	var errs []error
	w.closeOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.done
		}
		w.state.Close()
		for _, c := range w.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if w.keys != nil {
			w.keys.Wipe()
		}
	})
	return errors.Join(errs...)
}
