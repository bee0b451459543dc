package wallet

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/client"
	"github.com/AlexZinkM/will-wallet/internal/common"
	"github.com/AlexZinkM/will-wallet/internal/config"
	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

// FundingStatus is reported on every funding poll tick
type FundingStatus struct {
	Address string
	Balance model.DustBalance
	Waited  time.Duration
}

// Options tunes BuildWallet. Zero values fall back to the configuration.
type Options struct {
	Connector interface{} // ModernConnector, LegacyConnector or nil for static endpoints
	Views     ViewSource  // overrides the indexer built from the negotiated endpoints
	Node      Submitter   // overrides the node client built from the negotiated endpoints

	SyncPollInterval    time.Duration
	FundingPollInterval time.Duration
	FeeBase             uint64
	FeePerByte          uint64

	SkipFundingWait bool
	OnFunding       func(FundingStatus)
	Out             io.Writer
	Logger          zerolog.Logger
}

// BuildWallet derives keys from a hex seed or mnemonic, starts syncing, waits
// for the sync to complete and, when the wallet holds no DUST, for funds.
// Cancelling ctx aborts any of the waits; the partial wallet is closed.
func BuildWallet(ctx context.Context, cfg *config.Config, seedOrMnemonic string, opts Options) (*Context, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.SyncPollInterval == 0 {
		opts.SyncPollInterval = cfg.SyncPollInterval
	}
	if opts.FundingPollInterval == 0 {
		opts.FundingPollInterval = cfg.FundingPollInterval
	}

	seed := strings.TrimSpace(seedOrMnemonic)
	if IsMnemonic(seed) {
		var err error
		if seed, err = MnemonicToSeed(seed); err != nil {
			return nil, err
		}
	}
	keys, err := DeriveKeys(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wallet keys: %w", err)
	}

	adapter, err := Negotiate(ctx, opts.Connector, cfg.Endpoints())
	if err != nil {
		keys.Wipe()
		return nil, err
	}
	opts.Logger.Info().Str("adapter", adapter.Kind.String()).Str("network", adapter.URIs.NetworkID).Msg("wallet endpoints negotiated")

	views, node := opts.Views, opts.Node
	var closers []io.Closer
	if views == nil {
		idx := client.NewIndexerClient(adapter.URIs.Indexer, adapter.URIs.IndexerWS, cfg.HTTPTimeout)
		if err := idx.Ping(ctx); err != nil {
			keys.Wipe()
			return nil, &model.WalletConnectionError{Reason: "indexer unreachable at " + adapter.URIs.Indexer, Err: err}
		}
		views = idx
	}
	if node == nil {
		nc := client.NewNodeClient(adapter.URIs.Node)
		health, err := nc.Health(ctx)
		if err != nil {
			nc.Close()
			keys.Wipe()
			return nil, &model.WalletConnectionError{Reason: "node unreachable at " + adapter.URIs.Node, Err: err}
		}
		opts.Logger.Info().Int("peers", health.Peers).Bool("syncing", health.IsSyncing).Msg("node reachable")
		closers = append(closers, nc)
		node = nc
	}

	w := newContext(keys, adapter, views, node, opts)
	w.closers = closers
	w.startSync(opts.SyncPollInterval)

	if err := w.WaitForSync(ctx); err != nil {
		w.Close()
		return nil, err
	}

	PrintSummary(opts.Out, w)

	if !opts.SkipFundingWait && w.Balance().Available == 0 {
		fmt.Fprintf(opts.Out, "Waiting to receive tokens at %s...\n", w.keys.DustAddress())
		onFunding := opts.OnFunding
		if onFunding == nil {
			onFunding = func(s FundingStatus) {
				fmt.Fprintf(opts.Out, "  DUST available: %s (pending %s), waited %s\n",
					common.SpecksToDust(s.Balance.Available), common.SpecksToDust(s.Balance.Pending), s.Waited.Round(time.Second))
			}
		}
		balance, err := w.WaitForFunds(ctx, opts.FundingPollInterval, onFunding)
		if err != nil {
			w.Close()
			return nil, err
		}
		fmt.Fprintf(opts.Out, "Wallet funded: %s DUST\n", common.SpecksToDust(balance))
	}

	return w, nil
}

// WaitForSync blocks until the wallet caught up with the chain. It has no
// internal bound; cancel ctx to give up.
func (w *Context) WaitForSync(ctx context.Context) error {
	ch, sub := w.state.Subscribe()
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case view, ok := <-ch:
			if !ok {
				return &model.WalletConnectionError{Reason: "wallet closed while syncing"}
			}
			if view.Progress.Synced() {
				w.logger.Info().Uint64("applied", view.Progress.Applied).Msg("wallet synced")
				return nil
			}
			w.logger.Debug().
				Uint64("applied", view.Progress.Applied).
				Uint64("highest", view.Progress.Highest).
				Msg("wallet syncing")
		}
	}
}

// WaitForFunds polls the balance every interval, reporting each tick, until
// available DUST is positive. It returns the available balance.
func (w *Context) WaitForFunds(ctx context.Context, interval time.Duration, report func(FundingStatus)) (uint64, error) {
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		b := w.Balance()
		if report != nil {
			report(FundingStatus{Address: w.keys.DustAddress(), Balance: b, Waited: time.Since(start)})
		}
		if b.Available > 0 {
			return b.Available, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// MonitorBalance reports the balance now and every interval until stop is
// closed or ctx is done.
func MonitorBalance(ctx context.Context, w *Context, interval time.Duration, stop <-chan struct{}, report func(model.DustBalance)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report(w.Balance())
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PrintSummary writes the wallet addresses and a terminal QR of the coin public key
func PrintSummary(out io.Writer, w *Context) {
	b := w.Balance()
	fmt.Fprintln(out, "Wallet")
	fmt.Fprintf(out, "  Network:         %s\n", w.adapter.URIs.NetworkID)
	fmt.Fprintf(out, "  Address:         %s\n", w.keys.Address())
	fmt.Fprintf(out, "  DUST address:    %s\n", w.keys.DustAddress())
	fmt.Fprintf(out, "  Coin public key: %s\n", w.keys.CoinPublicKeyHex())
	fmt.Fprintf(out, "  DUST balance:    %s\n", common.SpecksToDust(b.Available))

	if qr, err := qrcode.New(w.keys.CoinPublicKeyHex(), qrcode.Medium); err == nil {
		fmt.Fprintln(out, qr.ToSmallString(false))
	}
}
