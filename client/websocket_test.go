package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsNode 模拟节点：应答请求，并在收到 eth_blockNumber 后推送一个新区块
func wsNode(t *testing.T, unsubscribed chan<- string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var writeMu sync.Mutex
		write := func(v interface{}) {
			writeMu.Lock()
			defer writeMu.Unlock()
			_ = conn.WriteJSON(v)
		}

		for {
			var req struct {
				ID     uint64            `json:"id"`
				Method string            `json:"method"`
				Params []json.RawMessage `json:"params"`
			}
			if err := conn.ReadJSON(&req); err != nil {
				return
			}

			switch req.Method {
			case "eth_subscribe":
				write(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": "0xsub1"})
			case "eth_blockNumber":
				write(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": "0x10"})
				write(map[string]interface{}{
					"jsonrpc": "2.0",
					"method":  "eth_subscription",
					"params": map[string]interface{}{
						"subscription": "0xsub1",
						"result":       map[string]string{"number": "0x11", "hash": "0x" + strings.Repeat("ab", 32)},
					},
				})
			case "eth_unsubscribe":
				var id string
				_ = json.Unmarshal(req.Params[0], &id)
				unsubscribed <- id
				write(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": true})
			default:
				write(map[string]interface{}{
					"jsonrpc": "2.0",
					"id":      req.ID,
					"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
				})
			}
		}
	}))
}

func TestWebSocketClient_CallAndSubscribe(t *testing.T) {
	unsubscribed := make(chan string, 1)
	server := wsNode(t, unsubscribed)
	defer server.Close()

	c, err := NewWebSocketClient(&Config{Endpoint: server.URL, Timeout: 5})
	require.NoError(t, err)
	defer c.Close()
	eth := NewEthClientFromClient(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	heads, err := eth.SubscribeNewHeads(ctx)
	require.NoError(t, err)

	number, err := eth.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), number)

	select {
	case h := <-heads:
		require.NotNil(t, h)
		assert.Equal(t, uint64(17), h.Number.ToInt().Uint64())
	case <-time.After(2 * time.Second):
		t.Fatal("no newHeads notification")
	}

	cancel()
	select {
	case id := <-unsubscribed:
		assert.Equal(t, "0xsub1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not canceled")
	}
}

func TestWebSocketClient_RPCError(t *testing.T) {
	server := wsNode(t, make(chan string, 1))
	defer server.Close()

	c, err := NewWebSocketClient(&Config{Endpoint: server.URL, Timeout: 5})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Call(context.Background(), "eth_chainId")
	rpcErr, ok := IsRPCError(err)
	require.True(t, ok)
	assert.Equal(t, -32601, rpcErr.Code)
}

func TestWebSocketClient_ClosedConnection(t *testing.T) {
	server := wsNode(t, make(chan string, 1))
	defer server.Close()

	c, err := NewWebSocketClient(&Config{Endpoint: server.URL, Timeout: 5})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Call(context.Background(), "eth_blockNumber")
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, ErrCodeNetwork, clientErr.Code)
}

func TestNormalizeWebSocketEndpoint(t *testing.T) {
	tests := map[string]string{
		"http://node:8545": "ws://node:8545",
		"https://node/ws":  "wss://node/ws",
		"ws://node:8546":   "ws://node:8546",
		"node:8546":        "ws://node:8546",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeWebSocketEndpoint(in), in)
	}
}
