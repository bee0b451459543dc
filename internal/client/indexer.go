package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/ledger"
	"github.com/AlexZinkM/will-wallet/internal/model"
)

const (
	contractStateQuery = `query ContractState($address: HexEncoded!) {
  contractAction(address: $address) { state }
}`
	walletViewQuery = `query DustWallet($address: String!) {
  dustWallet(address: $address) {
    progress { applied highest }
    coins { nonce value pending }
  }
}`
	healthQuery = `query { __typename }`
)

// IndexerClient queries the chain indexer over GraphQL
type IndexerClient struct {
	httpURL string
	wsURL   string
	client  *http.Client
}

// NewIndexerClient creates an indexer client for the HTTP and WebSocket endpoints
func NewIndexerClient(httpURL, wsURL string, timeout time.Duration) *IndexerClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &IndexerClient{
		httpURL: strings.TrimRight(httpURL, "/"),
		wsURL:   strings.TrimRight(wsURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

func (r graphQLResponse) err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("indexer error: %s", strings.Join(msgs, "; "))
}

// contractActionData is the data part of the contract state query and subscription
type contractActionData struct {
	ContractAction *struct {
		State string `json:"state"`
	} `json:"contractAction"`
	ContractActions *struct {
		State string `json:"state"`
	} `json:"contractActions"`
}

// DustCoin is one fee coin owned by the wallet
type DustCoin struct {
	Nonce   string `json:"nonce"`
	Value   uint64 `json:"value"`
	Pending bool   `json:"pending"`
}

// WalletView is the indexer's view of a wallet: sync progress and coins
type WalletView struct {
	Progress model.SyncProgress `json:"progress"`
	Coins    []DustCoin         `json:"coins"`
}

// ContractState returns the current public state at address.
// A contract the indexer has never seen is a ContractNotFoundError.
func (c *IndexerClient) ContractState(ctx context.Context, address model.ContractAddress) (model.LedgerState, error) {
	var data contractActionData
	if err := c.query(ctx, contractStateQuery, map[string]interface{}{"address": address.String()}, &data); err != nil {
		return model.LedgerState{}, err
	}
	if data.ContractAction == nil {
		return model.LedgerState{}, &model.ContractNotFoundError{Address: address}
	}
	return decodeStateHex(data.ContractAction.State)
}

// WalletView returns the sync progress and fee coins of a wallet address
func (c *IndexerClient) WalletView(ctx context.Context, address string) (WalletView, error) {
	var data struct {
		DustWallet *WalletView `json:"dustWallet"`
	}
	if err := c.query(ctx, walletViewQuery, map[string]interface{}{"address": address}, &data); err != nil {
		return WalletView{}, err
	}
	if data.DustWallet == nil {
		return WalletView{}, nil
	}
	return *data.DustWallet, nil
}

// Ping checks that the indexer answers GraphQL requests
func (c *IndexerClient) Ping(ctx context.Context) error {
	var data json.RawMessage
	return c.query(ctx, healthQuery, nil, &data)
}

// query posts a GraphQL request and decodes its data into out
func (c *IndexerClient) query(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.httpURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to query indexer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("indexer http %d: %s", resp.StatusCode, string(msg))
	}

	var gr graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("failed to decode indexer response: %w", err)
	}
	if err := gr.err(); err != nil {
		return err
	}
	if len(gr.Data) == 0 {
		return errors.New("indexer response has no data")
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("failed to decode indexer data: %w", err)
	}
	return nil
}

func decodeStateHex(s string) (model.LedgerState, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return model.LedgerState{}, fmt.Errorf("failed to decode contract state hex: %w", err)
	}
	return ledger.DecodeLedgerState(raw)
}
