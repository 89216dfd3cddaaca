package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrReceiptNotFound 交易尚未上链
var ErrReceiptNotFound = errors.New("transaction receipt not found")

// EthClient 以太坊类型化 RPC 封装
// 避免上层直接使用 Call(method, params)
type EthClient interface {
	// 链信息
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)

	// 交易构建
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)

	// 只读合约调用
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)

	// 交易提交与回执
	SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*Receipt, error)

	// 订阅（WebSocket）；HTTP 传输返回 ErrNotSupported
	SubscribeNewHeads(ctx context.Context) (<-chan *Header, error)

	// 底层通道（不推荐上层直接使用）
	Raw() Client

	Close() error
}

// ethClientImpl EthClient 实现
type ethClientImpl struct {
	client Client
}

// NewEthClient 创建 EthClient 实例
func NewEthClient(config *Config) (EthClient, error) {
	client, err := NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &ethClientImpl{client: client}, nil
}

// NewEthClientFromClient 从现有 Client 创建 EthClient
func NewEthClientFromClient(client Client) EthClient {
	return &ethClientImpl{client: client}
}

// ChainID 查询链 ID
func (c *ethClientImpl) ChainID(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := c.callInto(ctx, &result, "eth_chainId"); err != nil {
		return nil, err
	}
	return (*big.Int)(&result), nil
}

// BlockNumber 查询最新区块高度
func (c *ethClientImpl) BlockNumber(ctx context.Context) (uint64, error) {
	var result hexutil.Uint64
	if err := c.callInto(ctx, &result, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// PendingNonceAt 查询账户 pending nonce
func (c *ethClientImpl) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var result hexutil.Uint64
	if err := c.callInto(ctx, &result, "eth_getTransactionCount", account, "pending"); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// SuggestGasPrice 查询建议 gas price
func (c *ethClientImpl) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := c.callInto(ctx, &result, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return (*big.Int)(&result), nil
}

// EstimateGas 估算交易 gas（dry-run）
func (c *ethClientImpl) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var result hexutil.Uint64
	if err := c.callInto(ctx, &result, "eth_estimateGas", toCallArg(msg)); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// CallContract 执行只读合约调用
func (c *ethClientImpl) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	var result hexutil.Bytes
	if err := c.callInto(ctx, &result, "eth_call", toCallArg(msg), "latest"); err != nil {
		return nil, err
	}
	return result, nil
}

// SendTransaction 提交已签名交易
func (c *ethClientImpl) SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode transaction failed: %w", err)
	}

	txHash, err := c.client.SendRawTransaction(ctx, hexutil.Encode(data))
	if err != nil {
		return common.Hash{}, err
	}
	if txHash == "" {
		return tx.Hash(), nil
	}
	return common.HexToHash(txHash), nil
}

// TransactionReceipt 查询交易回执，未上链时返回 ErrReceiptNotFound
func (c *ethClientImpl) TransactionReceipt(ctx context.Context, txHash common.Hash) (*Receipt, error) {
	raw, err := c.client.Call(ctx, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrReceiptNotFound
	}

	var receipt Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, NewInvalidResponseError(fmt.Sprintf("decode receipt: %v", err))
	}
	return &receipt, nil
}

// SubscribeNewHeads 订阅新区块
func (c *ethClientImpl) SubscribeNewHeads(ctx context.Context) (<-chan *Header, error) {
	events, err := c.client.Subscribe(ctx, &SubscriptionFilter{Kind: "newHeads"})
	if err != nil {
		return nil, err
	}

	headers := make(chan *Header, 4)
	go func() {
		defer close(headers)
		for event := range events {
			var header Header
			if err := json.Unmarshal(event.Data, &header); err != nil {
				continue
			}
			select {
			case headers <- &header:
			case <-ctx.Done():
				return
			}
		}
	}()
	return headers, nil
}

// Raw 返回底层 Client
func (c *ethClientImpl) Raw() Client {
	return c.client
}

// Close 关闭连接
func (c *ethClientImpl) Close() error {
	return c.client.Close()
}

// callInto 调用方法并解码 result
func (c *ethClientImpl) callInto(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	raw, err := c.client.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return NewInvalidResponseError(fmt.Sprintf("%s returned empty result", method))
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return NewInvalidResponseError(fmt.Sprintf("decode %s result: %v", method, err))
	}
	return nil
}

// toCallArg 将 CallMsg 转换为 JSON-RPC 参数
func toCallArg(msg ethereum.CallMsg) map[string]interface{} {
	arg := map[string]interface{}{
		"from": msg.From,
		"to":   msg.To,
	}
	if len(msg.Data) > 0 {
		arg["input"] = hexutil.Bytes(msg.Data)
	}
	if msg.Value != nil {
		arg["value"] = (*hexutil.Big)(msg.Value)
	}
	if msg.Gas != 0 {
		arg["gas"] = hexutil.Uint64(msg.Gas)
	}
	if msg.GasPrice != nil {
		arg["gasPrice"] = (*hexutil.Big)(msg.GasPrice)
	}
	return arg
}
