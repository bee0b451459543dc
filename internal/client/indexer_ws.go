package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/gorilla/websocket"
)

const (
	graphQLWSProtocol = "graphql-transport-ws"
	subscriptionID    = "1"
	ackTimeout        = 10 * time.Second
	writeTimeout      = 5 * time.Second

	contractActionsSubscription = `subscription ContractActions($address: HexEncoded!) {
  contractActions(address: $address) { state }
}`
)

// wsMessage is a graphql-transport-ws frame
type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ContractFeed delivers every public state change of one contract
type ContractFeed struct {
	conn      *websocket.Conn
	states    chan model.LedgerState
	errCh     chan error
	writeMu   sync.Mutex
	closeCh   chan struct{}
	closeOnce sync.Once
}

// States is closed when the feed ends
func (f *ContractFeed) States() <-chan model.LedgerState {
	return f.states
}

// Err receives at most one terminal error
func (f *ContractFeed) Err() <-chan error {
	return f.errCh
}

// Close completes the subscription and closes the connection. Safe to call twice.
func (f *ContractFeed) Close() {
	f.closeOnce.Do(func() {
		close(f.closeCh)
		_ = f.write(wsMessage{ID: subscriptionID, Type: "complete"})
		_ = f.conn.Close()
	})
}

func (f *ContractFeed) write(msg wsMessage) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	_ = f.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return f.conn.WriteJSON(msg)
}

// SubscribeContract opens a WebSocket subscription for state changes at address
func (c *IndexerClient) SubscribeContract(ctx context.Context, address model.ContractAddress) (*ContractFeed, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		Subprotocols:     []string{graphQLWSProtocol},
	}

	conn, resp, err := dialer.DialContext(ctx, c.wsURL, http.Header{})
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial indexer websocket: %w", err)
	}

	feed := &ContractFeed{
		conn:    conn,
		states:  make(chan model.LedgerState, 1),
		errCh:   make(chan error, 1),
		closeCh: make(chan struct{}),
	}

	if err := feed.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	payload, err := json.Marshal(graphQLRequest{
		Query:     contractActionsSubscription,
		Variables: map[string]interface{}{"address": address.String()},
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to marshal subscription: %w", err)
	}
	if err := feed.write(wsMessage{ID: subscriptionID, Type: "subscribe", Payload: payload}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send subscription: %w", err)
	}

	go feed.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			feed.Close()
		case <-feed.closeCh:
		}
	}()

	return feed, nil
}

// handshake performs connection_init / connection_ack
func (f *ContractFeed) handshake() error {
	if err := f.write(wsMessage{Type: "connection_init"}); err != nil {
		return fmt.Errorf("failed to send connection_init: %w", err)
	}
	_ = f.conn.SetReadDeadline(time.Now().Add(ackTimeout))
	for {
		var msg wsMessage
		if err := f.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("failed to read connection_ack: %w", err)
		}
		switch msg.Type {
		case "connection_ack":
			_ = f.conn.SetReadDeadline(time.Time{})
			return nil
		case "ping":
			if err := f.write(wsMessage{Type: "pong"}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected %q before connection_ack", msg.Type)
		}
	}
}

func (f *ContractFeed) readLoop() {
	defer close(f.states)

	for {
		var msg wsMessage
		if err := f.conn.ReadJSON(&msg); err != nil {
			select {
			case <-f.closeCh:
			default:
				f.fail(fmt.Errorf("indexer websocket read: %w", err))
			}
			return
		}

		switch msg.Type {
		case "next":
			var gr graphQLResponse
			if err := json.Unmarshal(msg.Payload, &gr); err != nil {
				f.fail(fmt.Errorf("failed to decode subscription payload: %w", err))
				return
			}
			if err := gr.err(); err != nil {
				f.fail(err)
				return
			}
			var data contractActionData
			if err := json.Unmarshal(gr.Data, &data); err != nil || data.ContractActions == nil {
				continue
			}
			st, err := decodeStateHex(data.ContractActions.State)
			if err != nil {
				f.fail(err)
				return
			}
			select {
			case f.states <- st:
			case <-f.closeCh:
				return
			}
		case "error":
			f.fail(fmt.Errorf("indexer subscription error: %s", string(msg.Payload)))
			return
		case "complete":
			return
		case "ping":
			_ = f.write(wsMessage{Type: "pong"})
		}
	}
}

func (f *ContractFeed) fail(err error) {
	if err == nil {
		err = errors.New("indexer subscription ended")
	}
	select {
	case f.errCh <- err:
	default:
	}
}
