package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/config"
	"github.com/AlexZinkM/will-wallet/internal/model"
)

// AdapterKind tells which connector API supplied the service endpoints
type AdapterKind int

const (
	AdapterStatic AdapterKind = iota
	AdapterModern
	AdapterLegacy
)

func (k AdapterKind) String() string {
	switch k {
	case AdapterModern:
		return "modern"
	case AdapterLegacy:
		return "legacy"
	default:
		return "static"
	}
}

// ServiceURIs are the endpoints the providers are built from
type ServiceURIs struct {
	NetworkID   string `json:"networkId"`
	Indexer     string `json:"indexerUri"`
	IndexerWS   string `json:"indexerWsUri"`
	Node        string `json:"substrateNodeUri"`
	ProofServer string `json:"proverServerUri"`
}

// LegacyConfiguration is the older connector configuration shape
type LegacyConfiguration struct {
	NetworkID        string `json:"networkId"`
	IndexerURI       string `json:"indexerUri"`
	IndexerWSURI     string `json:"indexerWsUri"`
	SubstrateNodeURI string `json:"node"`
	ProverServerURI  string `json:"proofServer"`
}

// ModernConnector exposes the current service URI API
type ModernConnector interface {
	ServiceURIConfig(ctx context.Context) (ServiceURIs, error)
}

// LegacyConnector exposes the older configuration API
type LegacyConnector interface {
	GetConfiguration(ctx context.Context) (LegacyConfiguration, error)
}

// Adapter is the negotiated connector variant
type Adapter struct {
	Kind AdapterKind
	URIs ServiceURIs
}

// Negotiate selects the connector API once. Modern wins over legacy; a nil
// connector falls back to the static profile endpoints.
func Negotiate(ctx context.Context, connector interface{}, fallback config.Endpoints) (Adapter, error) {
	static := ServiceURIs{
		NetworkID:   fallback.NetworkID,
		Indexer:     fallback.Indexer,
		IndexerWS:   fallback.IndexerWS,
		Node:        fallback.Node,
		ProofServer: fallback.ProofServer,
	}

	switch c := connector.(type) {
	case nil:
		return Adapter{Kind: AdapterStatic, URIs: static}, nil
	case ModernConnector:
		uris, err := c.ServiceURIConfig(ctx)
		if err != nil {
			return Adapter{}, &model.WalletConnectionError{Reason: "service URI config unavailable", Err: err}
		}
		return Adapter{Kind: AdapterModern, URIs: fillMissing(uris, static)}, nil
	case LegacyConnector:
		cfg, err := c.GetConfiguration(ctx)
		if err != nil {
			return Adapter{}, &model.WalletConnectionError{Reason: "wallet configuration unavailable", Err: err}
		}
		return Adapter{Kind: AdapterLegacy, URIs: fillMissing(ServiceURIs{
			NetworkID:   cfg.NetworkID,
			Indexer:     cfg.IndexerURI,
			IndexerWS:   cfg.IndexerWSURI,
			Node:        cfg.SubstrateNodeURI,
			ProofServer: cfg.ProverServerURI,
		}, static)}, nil
	default:
		return Adapter{}, &model.WalletConnectionError{Reason: fmt.Sprintf("unsupported connector %T", connector)}
	}
}

// fillMissing takes empty endpoints from the static set
func fillMissing(u, static ServiceURIs) ServiceURIs {
	if u.NetworkID == "" {
		u.NetworkID = static.NetworkID
	}
	if u.Indexer == "" {
		u.Indexer = static.Indexer
	}
	if u.IndexerWS == "" {
		u.IndexerWS = static.IndexerWS
	}
	if u.Node == "" {
		u.Node = static.Node
	}
	if u.ProofServer == "" {
		u.ProofServer = static.ProofServer
	}
	return u
}

// HTTPConnector reads the service configuration from a remote wallet endpoint
type HTTPConnector struct {
	baseURL string
	client  *http.Client
}

// ModernHTTPConnector serves GET {base}/service-uri-config
type ModernHTTPConnector struct{ HTTPConnector }

// LegacyHTTPConnector serves GET {base}/configuration
type LegacyHTTPConnector struct{ HTTPConnector }

// NewHTTPConnector returns the connector variant for api ("modern" or "legacy")
func NewHTTPConnector(baseURL, api string) (interface{}, error) {
	h := HTTPConnector{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	switch api {
	case "", "modern":
		return &ModernHTTPConnector{h}, nil
	case "legacy":
		return &LegacyHTTPConnector{h}, nil
	default:
		return nil, fmt.Errorf("unknown connector api %q (expected modern or legacy)", api)
	}
}

// ServiceURIConfig implements ModernConnector
func (c *ModernHTTPConnector) ServiceURIConfig(ctx context.Context) (ServiceURIs, error) {
	var out ServiceURIs
	err := c.getJSON(ctx, "/service-uri-config", &out)
	return out, err
}

// GetConfiguration implements LegacyConnector
func (c *LegacyHTTPConnector) GetConfiguration(ctx context.Context) (LegacyConfiguration, error) {
	var out LegacyConfiguration
	err := c.getJSON(ctx, "/configuration", &out)
	return out, err
}

func (c *HTTPConnector) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach wallet connector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet connector returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode connector response: %w", err)
	}
	return nil
}
