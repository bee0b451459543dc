package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assetServer struct {
	mu       sync.Mutex
	hits     map[string]int
	failures map[string]int // path -> status to return
	gate     chan struct{}  // when set, responses wait for it to close
}

func newAssetServer(t *testing.T) (*assetServer, *httptest.Server) {
	a := &assetServer{hits: map[string]int{}, failures: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.hits[r.URL.Path]++
		status, gate := a.failures[r.URL.Path], a.gate
		a.mu.Unlock()
		if gate != nil {
			<-gate
		}
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte("bytes:" + strings.TrimPrefix(r.URL.Path, "/assets/")))
	}))
	t.Cleanup(srv.Close)
	return a, srv
}

func (a *assetServer) count(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[path]
}

func (a *assetServer) fail(path string, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if status == 0 {
		delete(a.failures, path)
		return
	}
	a.failures[path] = status
}

func TestZkConfigClient_FetchAllArtifacts(t *testing.T) {
	assets, srv := newAssetServer(t)
	c, err := NewZkConfigClient(srv.URL+"/assets/", 4, 0)
	require.NoError(t, err)

	km, err := c.Fetch(context.Background(), model.CircuitAddBeneficiary)
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes:addBeneficiary.zkir"), km.IR)
	assert.Equal(t, []byte("bytes:addBeneficiary.prover"), km.ProverKey)
	assert.Equal(t, []byte("bytes:addBeneficiary.verifier"), km.VerifierKey)

	// cached for the session lifetime
	again, err := c.Fetch(context.Background(), model.CircuitAddBeneficiary)
	require.NoError(t, err)
	assert.Equal(t, km, again)
	assert.Equal(t, 1, assets.count("/assets/addBeneficiary.prover"))
}

func TestZkConfigClient_FetchIROnly(t *testing.T) {
	assets, srv := newAssetServer(t)
	c, err := NewZkConfigClient(srv.URL+"/assets", 4, 0)
	require.NoError(t, err)

	ir, err := c.FetchIR(context.Background(), model.CircuitClaim)
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes:claim.zkir"), ir)
	assert.Equal(t, 0, assets.count("/assets/claim.prover"))
	assert.Equal(t, 0, assets.count("/assets/claim.verifier"))

	_, err = c.FetchIR(context.Background(), model.CircuitClaim)
	require.NoError(t, err)
	assert.Equal(t, 1, assets.count("/assets/claim.zkir"))
}

func TestZkConfigClient_PartialFailureIsNotCached(t *testing.T) {
	assets, srv := newAssetServer(t)
	assets.fail("/assets/executeWill.verifier", http.StatusNotFound)

	c, err := NewZkConfigClient(srv.URL+"/assets", 4, 0)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), model.CircuitExecuteWill)
	require.Error(t, err)

	var assetErr *model.AssetUnavailableError
	require.ErrorAs(t, err, &assetErr)
	assert.Equal(t, model.CircuitExecuteWill, assetErr.Circuit)
	assert.Equal(t, "verifier", assetErr.Artifact)
	assert.Equal(t, http.StatusNotFound, assetErr.Status)

	// a retry after the server recovers fetches everything again
	assets.fail("/assets/executeWill.verifier", 0)
	km, err := c.Fetch(context.Background(), model.CircuitExecuteWill)
	require.NoError(t, err)
	assert.NotEmpty(t, km.VerifierKey)
	assert.Equal(t, 2, assets.count("/assets/executeWill.zkir"))
}

func TestZkConfigClient_CancelledWaiterDoesNotFailOthers(t *testing.T) {
	assets, srv := newAssetServer(t)
	gate := make(chan struct{})
	assets.mu.Lock()
	assets.gate = gate
	assets.mu.Unlock()

	c, err := NewZkConfigClient(srv.URL+"/assets", 4, 0)
	require.NoError(t, err)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Fetch(first, model.CircuitClaim)
		firstErr <- err
	}()
	require.Eventually(t, func() bool {
		return assets.count("/assets/claim.prover") == 1
	}, 2*time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	var km model.KeyMaterial
	go func() {
		var err error
		km, err = c.Fetch(context.Background(), model.CircuitClaim)
		second <- err
	}()

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(gate)
	require.NoError(t, <-second)
	assert.Equal(t, []byte("bytes:claim.prover"), km.ProverKey)
	assert.Equal(t, 1, assets.count("/assets/claim.prover"))
}

func TestZkConfigClient_TransportFailure(t *testing.T) {
	_, srv := newAssetServer(t)
	srv.Close()

	c, err := NewZkConfigClient(srv.URL, 4, 0)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), model.CircuitInit)
	require.True(t, model.IsAssetUnavailable(err))
	assert.Equal(t, model.CodeAssetUnavailable, model.ErrorCode(err))
}

func TestZkConfigClient_UnknownCircuit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c, err := NewZkConfigClient(srv.URL, 4, 0)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "transfer")
	assert.True(t, model.IsValidationError(err))
	_, err = c.FetchIR(context.Background(), "transfer")
	assert.True(t, model.IsValidationError(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
}
