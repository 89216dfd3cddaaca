package ledger

import (
	"context"
	"encoding/hex"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/rightshare/client-sdk-go/client"
)

// fakeEth client.EthClient 桩
type fakeEth struct {
	mu sync.Mutex

	gas         uint64
	estimateErr error
	sendErr     error
	// receipts 依次返回，耗尽后一直返回最后一个；nil 表示尚未上链
	receipts []*client.Receipt
	// calls 以 4 字节选择器（hex）为键的 eth_call 返回值
	calls map[string][]byte

	sent         []*ethtypes.Transaction
	estimateMsgs []ethereum.CallMsg
	receiptPolls int
}

func (f *fakeEth) ChainID(ctx context.Context) (*big.Int, error) { return big.NewInt(1337), nil }

func (f *fakeEth) BlockNumber(ctx context.Context) (uint64, error) { return 1, nil }

func (f *fakeEth) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeEth) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (f *fakeEth) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.estimateMsgs = append(f.estimateMsgs, msg)
	return f.gas, f.estimateErr
}

func (f *fakeEth) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	out, ok := f.calls[hex.EncodeToString(msg.Data[:4])]
	if !ok {
		return nil, client.NewRPCError(3, "execution reverted", nil)
	}
	return out, nil
}

func (f *fakeEth) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.sent = append(f.sent, tx)
	return tx.Hash(), nil
}

func (f *fakeEth) TransactionReceipt(ctx context.Context, txHash common.Hash) (*client.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.receiptPolls
	if i >= len(f.receipts) {
		i = len(f.receipts) - 1
	}
	f.receiptPolls++
	if i < 0 || f.receipts[i] == nil {
		return nil, client.ErrReceiptNotFound
	}
	r := *f.receipts[i]
	r.TxHash = txHash
	return &r, nil
}

func (f *fakeEth) SubscribeNewHeads(ctx context.Context) (<-chan *client.Header, error) {
	return nil, client.NewNotSupportedError("eth_subscribe")
}

func (f *fakeEth) Raw() client.Client { return nil }

func (f *fakeEth) Close() error { return nil }

func (f *fakeEth) sentTxs() []*ethtypes.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ethtypes.Transaction(nil), f.sent...)
}
