// Package clienttest provides in-process fakes of the indexer, node, prover and
// key material server for tests.
package clienttest

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/client"
	"github.com/AlexZinkM/will-wallet/internal/ledger"
	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/gorilla/websocket"
)

// Indexer is a fake GraphQL indexer. The WebSocket endpoint lives under /ws.
type Indexer struct {
	Server *httptest.Server

	mu        sync.Mutex
	contracts map[model.ContractAddress]model.LedgerState
	wallets   map[string]client.WalletView
	queryWait time.Duration
	subs      map[model.ContractAddress][]*indexerSub
	queries   int
}

type indexerSub struct {
	conn *websocket.Conn
	id   string
	mu   sync.Mutex
}

func (s *indexerSub) send(msg map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

// NewIndexer starts a fake indexer that is closed with the test
func NewIndexer(t *testing.T) *Indexer {
	t.Helper()
	idx := &Indexer{
		contracts: map[model.ContractAddress]model.LedgerState{},
		wallets:   map[string]client.WalletView{},
		subs:      map[model.ContractAddress][]*indexerSub{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", idx.handleQuery)
	mux.HandleFunc("/ws", idx.handleWS)
	idx.Server = httptest.NewServer(mux)
	t.Cleanup(idx.Server.Close)
	return idx
}

// HTTPURL is the GraphQL endpoint
func (i *Indexer) HTTPURL() string { return i.Server.URL + "/graphql" }

// WSURL is the subscription endpoint
func (i *Indexer) WSURL() string { return "ws" + strings.TrimPrefix(i.Server.URL, "http") + "/ws" }

// Client returns an IndexerClient for this fake
func (i *Indexer) Client() *client.IndexerClient {
	return client.NewIndexerClient(i.HTTPURL(), i.WSURL(), 5*time.Second)
}

// SetContract makes a contract known with the given state
func (i *Indexer) SetContract(addr model.ContractAddress, st model.LedgerState) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.contracts[addr] = st
}

// SetWallet sets the wallet view returned for address
func (i *Indexer) SetWallet(address string, view client.WalletView) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.wallets[address] = view
}

// SetQueryDelay delays every GraphQL query response
func (i *Indexer) SetQueryDelay(d time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.queryWait = d
}

// Queries returns how many GraphQL queries were served
func (i *Indexer) Queries() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.queries
}

// Subscribers returns the number of open subscriptions for addr
func (i *Indexer) Subscribers(addr model.ContractAddress) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.subs[addr])
}

// PushState updates the contract and notifies its subscribers
func (i *Indexer) PushState(addr model.ContractAddress, st model.LedgerState) {
	i.mu.Lock()
	i.contracts[addr] = st
	subs := append([]*indexerSub(nil), i.subs[addr]...)
	i.mu.Unlock()

	raw, _ := ledger.EncodeLedgerState(st)
	for _, s := range subs {
		_ = s.send(map[string]interface{}{
			"id":   s.id,
			"type": "next",
			"payload": map[string]interface{}{
				"data": map[string]interface{}{
					"contractActions": map[string]string{"state": hex.EncodeToString(raw)},
				},
			},
		})
	}
}

func (i *Indexer) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	i.mu.Lock()
	i.queries++
	wait := i.queryWait
	i.mu.Unlock()
	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-r.Context().Done():
			return
		}
	}

	addr, _ := req.Variables["address"].(string)
	var data interface{}

	i.mu.Lock()
	switch {
	case strings.Contains(req.Query, "contractAction("):
		if st, ok := i.contracts[model.ContractAddress(addr)]; ok {
			raw, _ := ledger.EncodeLedgerState(st)
			data = map[string]interface{}{"contractAction": map[string]string{"state": hex.EncodeToString(raw)}}
		} else {
			data = map[string]interface{}{"contractAction": nil}
		}
	case strings.Contains(req.Query, "dustWallet"):
		if view, ok := i.wallets[addr]; ok {
			data = map[string]interface{}{"dustWallet": view}
		} else {
			data = map[string]interface{}{"dustWallet": nil}
		}
	default:
		data = map[string]string{"__typename": "Query"}
	}
	i.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

var upgrader = websocket.Upgrader{
	Subprotocols: []string{"graphql-transport-ws"},
	CheckOrigin:  func(*http.Request) bool { return true },
}

func (i *Indexer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := &indexerSub{conn: conn}
	var addr model.ContractAddress
	defer func() {
		i.mu.Lock()
		list := i.subs[addr]
		for n, s := range list {
			if s == sub {
				i.subs[addr] = append(list[:n], list[n+1:]...)
				break
			}
		}
		i.mu.Unlock()
	}()

	for {
		var msg struct {
			ID      string          `json:"id"`
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "connection_init":
			_ = sub.send(map[string]interface{}{"type": "connection_ack"})
		case "subscribe":
			var p struct {
				Variables map[string]interface{} `json:"variables"`
			}
			_ = json.Unmarshal(msg.Payload, &p)
			a, _ := p.Variables["address"].(string)
			addr = model.ContractAddress(a)
			sub.id = msg.ID
			i.mu.Lock()
			i.subs[addr] = append(i.subs[addr], sub)
			i.mu.Unlock()
		case "complete":
			return
		}
	}
}
