package clienttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/AlexZinkM/will-wallet/internal/ledger"
)

// Node is a fake JSON-RPC ledger node
type Node struct {
	Server *httptest.Server

	mu        sync.Mutex
	submitted []ledger.SignedTx
	reject    string
	onSubmit  func(ledger.SignedTx)
}

// NewNode starts a fake node that is closed with the test
func NewNode(t *testing.T) *Node {
	t.Helper()
	n := &Node{}
	n.Server = httptest.NewServer(http.HandlerFunc(n.handle))
	t.Cleanup(n.Server.Close)
	return n
}

// URL is the RPC endpoint
func (n *Node) URL() string { return n.Server.URL }

// Reject makes every following submission fail with msg; empty accepts again
func (n *Node) Reject(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reject = msg
}

// OnSubmit registers a hook run for each accepted transaction
func (n *Node) OnSubmit(fn func(ledger.SignedTx)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onSubmit = fn
}

// Submitted returns the accepted transactions
func (n *Node) Submitted() []ledger.SignedTx {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ledger.SignedTx(nil), n.submitted...)
}

func (n *Node) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	switch req.Method {
	case "system_health":
		resp["result"] = map[string]interface{}{"peers": 1, "isSyncing": false, "shouldHavePeers": true}
	case "author_submitExtrinsic":
		var txHex string
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params[0], &txHex)
		}
		n.mu.Lock()
		reject := n.reject
		hook := n.onSubmit
		n.mu.Unlock()

		tx, err := ledger.DecodeSignedTx(txHex)
		switch {
		case reject != "":
			resp["error"] = map[string]interface{}{"code": 1010, "message": reject}
		case err != nil:
			resp["error"] = map[string]interface{}{"code": -32602, "message": err.Error()}
		default:
			n.mu.Lock()
			n.submitted = append(n.submitted, tx)
			n.mu.Unlock()
			if hook != nil {
				hook(tx)
			}
			resp["result"] = "0x" + ledger.TxHash(tx.Body)
		}
	default:
		resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
