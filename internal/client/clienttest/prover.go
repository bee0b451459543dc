package clienttest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/AlexZinkM/will-wallet/internal/ledger"
	"github.com/AlexZinkM/will-wallet/internal/model"
)

// Prover is a fake proof server that also serves key material under /assets
type Prover struct {
	Server *httptest.Server

	mu          sync.Mutex
	checkResult model.CheckResult
	failStatus  int
	failBody    string
	checks      int
	proves      int
	assetHits   map[string]int
}

// NewProver starts a fake prover that is closed with the test
func NewProver(t *testing.T) *Prover {
	t.Helper()
	p := &Prover{
		checkResult: model.CheckResult{Valid: true},
		assetHits:   map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/check", p.handleCheck)
	mux.HandleFunc("/prove", p.handleProve)
	mux.HandleFunc("/assets/", p.handleAsset)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// URL is the proof server endpoint
func (p *Prover) URL() string { return p.Server.URL }

// AssetsURL is the key material base URL
func (p *Prover) AssetsURL() string { return p.Server.URL + "/assets" }

// SetCheckResult sets what /check answers
func (p *Prover) SetCheckResult(res model.CheckResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkResult = res
}

// Fail makes /check and /prove answer status with body; zero status restores success
func (p *Prover) Fail(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failStatus, p.failBody = status, body
}

// Counts returns how many check and prove calls were served
func (p *Prover) Counts() (checks, proves int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checks, p.proves
}

// AssetHits returns how often an artifact such as "claim.prover" was fetched
func (p *Prover) AssetHits(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.assetHits[name]
}

func (p *Prover) handleCheck(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.checks++
	status, body, res := p.failStatus, p.failBody, p.checkResult
	p.mu.Unlock()

	if status != 0 {
		http.Error(w, body, status)
		return
	}
	raw, _ := ledger.EncodeCheckResult(res)
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(raw)
}

func (p *Prover) handleProve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.proves++
	status, body := p.failStatus, p.failBody
	p.mu.Unlock()

	if status != 0 {
		http.Error(w, body, status)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write([]byte("proof"))
}

func (p *Prover) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/assets/")
	p.mu.Lock()
	p.assetHits[name]++
	p.mu.Unlock()
	_, _ = w.Write([]byte("artifact:" + name))
}
