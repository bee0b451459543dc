package will

import (
	"fmt"
	"io"

	"github.com/AlexZinkM/will-wallet/internal/client"
	"github.com/AlexZinkM/will-wallet/internal/config"
	"github.com/AlexZinkM/will-wallet/internal/contract"
	"github.com/AlexZinkM/will-wallet/internal/logging"
	"github.com/AlexZinkM/will-wallet/internal/pipeline"
	"github.com/AlexZinkM/will-wallet/internal/privatestate"
	"github.com/AlexZinkM/will-wallet/internal/proof"
	"github.com/AlexZinkM/will-wallet/internal/wallet"

	"github.com/rs/zerolog"
)

// Stack is the set of live providers built for one wallet, plus what must be
// closed with it
type Stack struct {
	Providers Providers
	Store     *privatestate.Store
	Indexer   *client.IndexerClient
}

// Close releases the private state store
func (s *Stack) Close() error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// NewStack wires the indexer, key material, proof server and private state store
// for w using the endpoints negotiated at wallet bootstrap.
func NewStack(cfg *config.Config, w *wallet.Context, logger zerolog.Logger) (*Stack, error) {
	uris := w.Adapter().URIs

	keys, err := client.NewZkConfigClient(cfg.ZkConfigURL, cfg.KeyCacheSize, cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}
	prover := proof.NewProvider(keys, client.NewProverClient(uris.ProofServer, cfg.HTTPTimeout),
		cfg.CheckBeforeProve, logging.Component(logger, "proof"))

	store, err := privatestate.Open(cfg.PrivateStateDir, logging.Component(logger, "privatestate"))
	if err != nil {
		return nil, fmt.Errorf("failed to open private state store: %w", err)
	}

	idx := client.NewIndexerClient(uris.Indexer, uris.IndexerWS, cfg.HTTPTimeout)
	runtime := contract.NewRuntime(w.Keys().CoinPublicKey())

	return &Stack{
		Providers: Providers{
			Ledger:   idx,
			Pipeline: pipeline.New(runtime, prover, w, logging.Component(logger, "pipeline")),
			Store:    store,
			Logger:   logging.Component(logger, "session"),
		},
		Store:   store,
		Indexer: idx,
	}, nil
}

// OptionsFromConfig reads session options from the configuration
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	policy, err := ParseBusyPolicy(cfg.SessionBusyPolicy)
	if err != nil {
		return Options{}, err
	}
	return Options{JoinTimeout: cfg.JoinTimeout, BusyPolicy: policy}, nil
}

var _ io.Closer = (*Stack)(nil)
var _ API = (*Session)(nil)
