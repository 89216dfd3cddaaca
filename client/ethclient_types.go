package client

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ReceiptStatus 交易回执状态
const (
	ReceiptStatusFailed     uint64 = 0
	ReceiptStatusSuccessful uint64 = 1
)

// Receipt 交易回执（eth_getTransactionReceipt）
type Receipt struct {
	TxHash            common.Hash     `json:"transactionHash"`
	BlockHash         common.Hash     `json:"blockHash"`
	BlockNumber       *hexutil.Big    `json:"blockNumber"`
	Status            hexutil.Uint64  `json:"status"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	ContractAddress   *common.Address `json:"contractAddress"`
}

// Succeeded 回执是否表示执行成功
func (r *Receipt) Succeeded() bool {
	return uint64(r.Status) == ReceiptStatusSuccessful
}

// Header 区块头（newHeads 订阅推送，只取需要的字段）
type Header struct {
	Number *hexutil.Big `json:"number"`
	Hash   common.Hash  `json:"hash"`
}
