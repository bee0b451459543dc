package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/metrics"
	"github.com/AlexZinkM/will-wallet/internal/model"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Artifact file extensions served under the zk config base URL
const (
	artifactIR       = "zkir"
	artifactProver   = "prover"
	artifactVerifier = "verifier"
)

// ZkConfigClient fetches per-circuit key material from a static asset server
type ZkConfigClient struct {
	baseURL string
	client  *http.Client
	full    *lru.Cache[model.CircuitID, model.KeyMaterial]
	irOnly  *lru.Cache[model.CircuitID, []byte]
	group   singleflight.Group
}

// NewZkConfigClient creates a client for baseURL. cacheSize bounds each cache.
func NewZkConfigClient(baseURL string, cacheSize int, timeout time.Duration) (*ZkConfigClient, error) {
	if cacheSize <= 0 {
		cacheSize = len(model.Circuits)
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	full, err := lru.New[model.CircuitID, model.KeyMaterial](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create key cache: %w", err)
	}
	irOnly, err := lru.New[model.CircuitID, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create IR cache: %w", err)
	}
	return &ZkConfigClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		full:    full,
		irOnly:  irOnly,
	}, nil
}

// FetchIR returns only the circuit's intermediate representation
func (c *ZkConfigClient) FetchIR(ctx context.Context, circuit model.CircuitID) ([]byte, error) {
	if !circuit.Valid() {
		return nil, unknownCircuit(circuit)
	}
	if km, ok := c.full.Get(circuit); ok {
		metrics.CacheLookup("ir", true)
		return km.IR, nil
	}
	if ir, ok := c.irOnly.Get(circuit); ok {
		metrics.CacheLookup("ir", true)
		return ir, nil
	}
	metrics.CacheLookup("ir", false)

	v, err := c.shared(ctx, "ir/"+string(circuit), func(ctx context.Context) (interface{}, error) {
		ir, err := c.fetchArtifact(ctx, circuit, artifactIR)
		if err != nil {
			return nil, err
		}
		c.irOnly.Add(circuit, ir)
		return ir, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Fetch returns the full key material for a circuit. The three artifacts are
// fetched concurrently and cached only when all of them succeed.
func (c *ZkConfigClient) Fetch(ctx context.Context, circuit model.CircuitID) (model.KeyMaterial, error) {
	if !circuit.Valid() {
		return model.KeyMaterial{}, unknownCircuit(circuit)
	}
	if km, ok := c.full.Get(circuit); ok {
		metrics.CacheLookup("full", true)
		return km, nil
	}
	metrics.CacheLookup("full", false)

	v, err := c.shared(ctx, "full/"+string(circuit), func(ctx context.Context) (interface{}, error) {
		var km model.KeyMaterial
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			km.IR, err = c.fetchArtifact(gctx, circuit, artifactIR)
			return err
		})
		g.Go(func() (err error) {
			km.ProverKey, err = c.fetchArtifact(gctx, circuit, artifactProver)
			return err
		})
		g.Go(func() (err error) {
			km.VerifierKey, err = c.fetchArtifact(gctx, circuit, artifactVerifier)
			return err
		})
		if err := g.Wait(); err != nil {
			return model.KeyMaterial{}, err
		}
		c.full.Add(circuit, km)
		c.irOnly.Remove(circuit)
		return km, nil
	})
	if err != nil {
		return model.KeyMaterial{}, err
	}
	return v.(model.KeyMaterial), nil
}

// shared runs fn once for all concurrent callers of key. The download is not
// bound to any one caller's cancellation; each caller stops waiting on its own
// ctx, and the http client timeout bounds the download.
func (c *ZkConfigClient) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetchArtifact downloads {base}/{circuit}.{artifact}
func (c *ZkConfigClient) fetchArtifact(ctx context.Context, circuit model.CircuitID, artifact string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s.%s", c.baseURL, circuit, artifact)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &model.AssetUnavailableError{Circuit: circuit, Artifact: artifact, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &model.AssetUnavailableError{Circuit: circuit, Artifact: artifact, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.AssetUnavailableError{Circuit: circuit, Artifact: artifact, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.AssetUnavailableError{Circuit: circuit, Artifact: artifact, Err: err}
	}
	return body, nil
}

func unknownCircuit(circuit model.CircuitID) error {
	return &model.ValidationError{Field: "circuit", Message: fmt.Sprintf("unknown circuit %q", circuit)}
}
