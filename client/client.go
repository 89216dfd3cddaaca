package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client 以太坊 JSON-RPC 客户端接口
type Client interface {
	// Call 调用 JSON-RPC 方法，返回原始 result
	Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)

	// SendRawTransaction 发送已签名的原始交易，返回交易哈希
	SendRawTransaction(ctx context.Context, signedTxHex string) (string, error)

	// Subscribe 订阅事件（仅 WebSocket 支持）
	Subscribe(ctx context.Context, filter *SubscriptionFilter) (<-chan *Event, error)

	// Close 关闭连接
	Close() error
}

// SubscriptionFilter 订阅参数
type SubscriptionFilter struct {
	// Kind 订阅类型，例如 "newHeads"、"logs"
	Kind string
	// Params 附加参数（logs 订阅的过滤条件）
	Params map[string]interface{}
}

// Event 订阅推送
type Event struct {
	Subscription string
	Data         json.RawMessage
}

// NewClient 创建新的客户端
func NewClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Protocol {
	case ProtocolHTTP:
		return NewHTTPClient(config)
	case ProtocolWebSocket:
		return NewWebSocketClient(config)
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", config.Protocol)
	}
}

// sendRawTransaction 两种传输共用的 eth_sendRawTransaction 解码
func sendRawTransaction(ctx context.Context, c Client, signedTxHex string) (string, error) {
	raw, err := c.Call(ctx, "eth_sendRawTransaction", signedTxHex)
	if err != nil {
		return "", err
	}

	var txHash string
	if err := json.Unmarshal(raw, &txHash); err != nil {
		return "", NewInvalidResponseError(fmt.Sprintf("decode transaction hash: %v", err))
	}
	return txHash, nil
}
