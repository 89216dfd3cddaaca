package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcHandler 根据方法名返回固定响应体
func rpcHandler(t *testing.T, calls *int32, respond func(method string, params []json.RawMessage) (int, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		status, resp := respond(req.Method, req.Params)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}
}

func newTestHTTPClient(t *testing.T, url string) Client {
	c, err := NewHTTPClient(&Config{
		Endpoint: url,
		Protocol: ProtocolHTTP,
		Timeout:  5,
		Retry: &RetryConfig{
			MaxRetries:        2,
			InitialDelay:      1,
			MaxDelay:          5,
			BackoffMultiplier: 2,
		},
	})
	require.NoError(t, err)
	return c
}

func TestHTTPClient_ErrorHandling(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		checkErr   func(*testing.T, error)
	}{
		{
			name:       "execution reverted",
			statusCode: http.StatusOK,
			body:       `{"jsonrpc":"2.0","id":1,"error":{"code":3,"message":"execution reverted","data":"0x08c379a0"}}`,
			checkErr: func(t *testing.T, err error) {
				rpcErr, ok := IsRPCError(err)
				require.True(t, ok, "expected RPCError, got %v", err)
				assert.Equal(t, 3, rpcErr.Code)
				assert.Equal(t, "execution reverted", rpcErr.Message)
				assert.JSONEq(t, `"0x08c379a0"`, string(rpcErr.Data))
			},
		},
		{
			name:       "rpc error with non-200 status",
			statusCode: http.StatusBadRequest,
			body:       `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid argument 0"}}`,
			checkErr: func(t *testing.T, err error) {
				rpcErr, ok := IsRPCError(err)
				require.True(t, ok)
				assert.Equal(t, -32602, rpcErr.Code)
			},
		},
		{
			name:       "invalid json",
			statusCode: http.StatusOK,
			body:       `not json`,
			checkErr: func(t *testing.T, err error) {
				var clientErr *Error
				require.True(t, errors.As(err, &clientErr))
				assert.Equal(t, ErrCodeInvalidResponse, clientErr.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(rpcHandler(t, &calls, func(string, []json.RawMessage) (int, string) {
				return tt.statusCode, tt.body
			}))
			defer server.Close()

			c := newTestHTTPClient(t, server.URL)
			_, err := c.Call(context.Background(), "eth_estimateGas", map[string]interface{}{})
			require.Error(t, err)
			tt.checkErr(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestHTTPClient_RetriesOnlyIdempotentMethods(t *testing.T) {
	var calls int32
	server := httptest.NewServer(rpcHandler(t, &calls, func(string, []json.RawMessage) (int, string) {
		if atomic.LoadInt32(&calls) < 3 {
			return http.StatusServiceUnavailable, `busy`
		}
		return http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`
	}))
	defer server.Close()

	c := newTestHTTPClient(t, server.URL)

	raw, err := c.Call(context.Background(), "eth_chainId")
	require.NoError(t, err)
	assert.JSONEq(t, `"0x1"`, string(raw))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	_, err = c.SendRawTransaction(context.Background(), "0xdeadbeef")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "transaction submission must not be retried")
}

func TestHTTPClient_SubscribeNotSupported(t *testing.T) {
	c := newTestHTTPClient(t, "http://127.0.0.1:1")
	_, err := c.Subscribe(context.Background(), &SubscriptionFilter{Kind: "newHeads"})
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestEthClient_TypedCalls(t *testing.T) {
	var calls int32
	server := httptest.NewServer(rpcHandler(t, &calls, func(method string, params []json.RawMessage) (int, string) {
		switch method {
		case "eth_estimateGas":
			var arg map[string]interface{}
			require.NoError(t, json.Unmarshal(params[0], &arg))
			assert.Equal(t, "0xa9059cbb", arg["input"])
			return http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0x5208"}`
		case "eth_getTransactionReceipt":
			var hash string
			require.NoError(t, json.Unmarshal(params[0], &hash))
			if hash == common.HexToHash("0x01").Hex() {
				return http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":null}`
			}
			return http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":{
				"transactionHash":"` + hash + `",
				"blockHash":"0x00000000000000000000000000000000000000000000000000000000000000aa",
				"blockNumber":"0x10","status":"0x1","gasUsed":"0x5208"}}`
		case "eth_getTransactionCount":
			return http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0x7"}`
		}
		return http.StatusOK, `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`
	}))
	defer server.Close()

	ec := NewEthClientFromClient(newTestHTTPClient(t, server.URL))
	ctx := context.Background()
	to := common.HexToAddress("0x00000000000000000000000000000000000000b0")

	gas, err := ec.EstimateGas(ctx, ethereum.CallMsg{To: &to, Data: []byte{0xa9, 0x05, 0x9c, 0xbb}})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)

	nonce, err := ec.PendingNonceAt(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)

	_, err = ec.TransactionReceipt(ctx, common.HexToHash("0x01"))
	assert.ErrorIs(t, err, ErrReceiptNotFound)

	receipt, err := ec.TransactionReceipt(ctx, common.HexToHash("0x02"))
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, int64(16), receipt.BlockNumber.ToInt().Int64())
	assert.Equal(t, uint64(21000), uint64(receipt.GasUsed))

	_, err = ec.ChainID(ctx)
	_, isRPC := IsRPCError(err)
	assert.True(t, isRPC)
}
