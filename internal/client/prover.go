package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/model"
)

const (
	proverCheckPath = "/check"
	proverProvePath = "/prove"
)

// ProverClient talks to the proof server's check and prove endpoints
type ProverClient struct {
	baseURL string
	client  *http.Client
}

// NewProverClient creates a proof server client. Proving is slow, so timeout is usually minutes.
func NewProverClient(baseURL string, timeout time.Duration) *ProverClient {
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &ProverClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Check posts a check payload and returns the raw result bytes
func (c *ProverClient) Check(ctx context.Context, payload []byte) ([]byte, error) {
	return c.post(ctx, "check", proverCheckPath, payload)
}

// Prove posts a proving payload and returns the raw proof bytes
func (c *ProverClient) Prove(ctx context.Context, payload []byte) ([]byte, error) {
	return c.post(ctx, "prove", proverProvePath, payload)
}

// post sends an octet-stream body. Non-2xx responses keep the whole body.
func (c *ProverClient) post(ctx context.Context, endpoint, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach proof server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.ProverHTTPError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
