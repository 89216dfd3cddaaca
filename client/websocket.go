package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// websocketClient WebSocket 客户端实现
type websocketClient struct {
	endpoint string
	conn     *websocket.Conn
	writeMu  sync.Mutex
	closed   int32
	nextID   uint64
	timeout  time.Duration
	logger   Logger

	requests map[uint64]chan *jsonRPCResponse
	muReq    sync.Mutex

	subs  map[string]chan *Event
	muSub sync.Mutex
}

// NewWebSocketClient 创建 WebSocket 客户端
func NewWebSocketClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	endpoint := normalizeWebSocketEndpoint(config.Endpoint)

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, NewNetworkError(fmt.Errorf("dial websocket: %w", err))
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &websocketClient{
		endpoint: endpoint,
		conn:     conn,
		timeout:  timeout,
		logger:   config.logger(),
		requests: make(map[uint64]chan *jsonRPCResponse),
		subs:     make(map[string]chan *Event),
	}

	go client.readLoop()

	return client, nil
}

// normalizeWebSocketEndpoint 将 http:// 或 https:// 转换为 ws:// 或 wss://
func normalizeWebSocketEndpoint(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "ws://"), strings.HasPrefix(endpoint, "wss://"):
		return endpoint
	default:
		return "ws://" + endpoint
	}
}

// readLoop 消息读取循环：按 ID 分发响应，按订阅 ID 分发推送
func (c *websocketClient) readLoop() {
	defer c.shutdown()

	for {
		var resp jsonRPCResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			if atomic.LoadInt32(&c.closed) == 0 {
				c.logger.Warn("websocket read failed", "endpoint", c.endpoint, "error", err)
			}
			return
		}

		if resp.Method == "eth_subscription" && resp.Params != nil {
			c.dispatch(resp.Params)
			continue
		}

		c.muReq.Lock()
		ch, exists := c.requests[resp.ID]
		if exists {
			delete(c.requests, resp.ID)
		}
		c.muReq.Unlock()

		if exists {
			ch <- &resp
		}
	}
}

// dispatch 将订阅推送投递给订阅者，订阅者处理不及时则丢弃
func (c *websocketClient) dispatch(params *subscriptionParams) {
	c.muSub.Lock()
	defer c.muSub.Unlock()

	ch, ok := c.subs[params.Subscription]
	if !ok {
		return
	}
	select {
	case ch <- &Event{Subscription: params.Subscription, Data: params.Result}:
	default:
		c.logger.Warn("subscription buffer full, dropping event", "subscription", params.Subscription)
	}
}

// shutdown 连接断开后关闭所有等待中的请求与订阅
func (c *websocketClient) shutdown() {
	atomic.StoreInt32(&c.closed, 1)

	c.muReq.Lock()
	for id, ch := range c.requests {
		close(ch)
		delete(c.requests, id)
	}
	c.muReq.Unlock()

	c.muSub.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.muSub.Unlock()
}

// Call 调用 JSON-RPC 方法
func (c *websocketClient) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, NewNetworkError(fmt.Errorf("websocket client is closed"))
	}
	if params == nil {
		params = []interface{}{}
	}

	reqID := atomic.AddUint64(&c.nextID, 1)
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      reqID,
	}

	respCh := make(chan *jsonRPCResponse, 1)
	c.muReq.Lock()
	c.requests[reqID] = respCh
	c.muReq.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(reqID)
		return nil, NewNetworkError(fmt.Errorf("write request: %w", err))
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-respCh:
		if !ok {
			return nil, NewNetworkError(fmt.Errorf("connection closed while waiting for %s", method))
		}
		if resp.Error != nil {
			return nil, NewRPCError(resp.Error.Code, resp.Error.Message, resp.Error.Data)
		}
		return resp.Result, nil

	case <-ctx.Done():
		c.forget(reqID)
		return nil, ctx.Err()

	case <-timer.C:
		c.forget(reqID)
		return nil, NewTimeoutError()
	}
}

// forget 移除等待中的请求
func (c *websocketClient) forget(reqID uint64) {
	c.muReq.Lock()
	delete(c.requests, reqID)
	c.muReq.Unlock()
}

// SendRawTransaction 发送已签名的原始交易
func (c *websocketClient) SendRawTransaction(ctx context.Context, signedTxHex string) (string, error) {
	return sendRawTransaction(ctx, c, signedTxHex)
}

// Subscribe 订阅事件（eth_subscribe），ctx 结束时自动退订并关闭通道
func (c *websocketClient) Subscribe(ctx context.Context, filter *SubscriptionFilter) (<-chan *Event, error) {
	if filter == nil || filter.Kind == "" {
		return nil, fmt.Errorf("subscription kind is required")
	}

	params := []interface{}{filter.Kind}
	if len(filter.Params) > 0 {
		params = append(params, filter.Params)
	}

	raw, err := c.Call(ctx, "eth_subscribe", params...)
	if err != nil {
		return nil, fmt.Errorf("subscribe failed: %w", err)
	}

	var subscriptionID string
	if err := json.Unmarshal(raw, &subscriptionID); err != nil || subscriptionID == "" {
		return nil, NewInvalidResponseError("missing subscription ID")
	}

	eventCh := make(chan *Event, 16)
	c.muSub.Lock()
	c.subs[subscriptionID] = eventCh
	c.muSub.Unlock()

	go func() {
		<-ctx.Done()
		if !c.unregister(subscriptionID) {
			return
		}
		unsubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := c.Call(unsubCtx, "eth_unsubscribe", subscriptionID); err != nil {
			c.logger.Debug("eth_unsubscribe failed", "subscription", subscriptionID, "error", err)
		}
	}()

	return eventCh, nil
}

// unregister 移除并关闭订阅通道，返回订阅是否仍然存在
func (c *websocketClient) unregister(subscriptionID string) bool {
	c.muSub.Lock()
	defer c.muSub.Unlock()

	ch, ok := c.subs[subscriptionID]
	if !ok {
		return false
	}
	delete(c.subs, subscriptionID)
	close(ch)
	return true
}

// Close 关闭连接
func (c *websocketClient) Close() error {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return c.conn.Close()
	}
	return nil
}
