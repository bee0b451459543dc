package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// NodeHealth is the result of system_health
type NodeHealth struct {
	Peers           int  `json:"peers"`
	IsSyncing       bool `json:"isSyncing"`
	ShouldHavePeers bool `json:"shouldHavePeers"`
}

// NodeClient is a JSON-RPC client for the ledger node
type NodeClient struct {
	rpcClient jsonrpc.RPCClient
	rpcURL    string
}

// NewNodeClient creates a node client for rpcURL
func NewNodeClient(rpcURL string) *NodeClient {
	return &NodeClient{
		rpcClient: jsonrpc.NewClient(rpcURL),
		rpcURL:    rpcURL,
	}
}

// SubmitExtrinsic hands an encoded transaction to the node's pool and returns its hash
func (c *NodeClient) SubmitExtrinsic(ctx context.Context, txHex string) (string, error) {
	var hash string
	if err := c.rpcClient.CallForInto(ctx, &hash, "author_submitExtrinsic", []interface{}{txHex}); err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return "", fmt.Errorf("node rejected transaction: %d %s", rpcErr.Code, rpcErr.Message)
		}
		return "", fmt.Errorf("failed to submit transaction: %w", err)
	}
	return hash, nil
}

// Health returns the node's system_health
func (c *NodeClient) Health(ctx context.Context) (NodeHealth, error) {
	var h NodeHealth
	if err := c.rpcClient.CallForInto(ctx, &h, "system_health", nil); err != nil {
		return NodeHealth{}, fmt.Errorf("failed to get node health: %w", err)
	}
	return h, nil
}

// URL returns the RPC endpoint
func (c *NodeClient) URL() string {
	return c.rpcURL
}

// Close releases idle connections
func (c *NodeClient) Close() error {
	if closer, ok := c.rpcClient.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
