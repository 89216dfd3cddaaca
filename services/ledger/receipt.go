package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/services/rights"
)

// waitReceipt 等待交易回执
//
// 按 PollInterval 轮询 eth_getTransactionReceipt；WebSocket 传输下
// 新区块推送会提前唤醒一次查询。
func (s *Service) waitReceipt(ctx context.Context, hash common.Hash) (*client.Receipt, error) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	heads, err := s.eth.SubscribeNewHeads(subCtx)
	if err != nil {
		if !errors.Is(err, client.ErrNotSupported) {
			s.config.Logger.Warn("newHeads subscription failed, polling only", "error", err)
		}
		heads = nil
	}

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, client.ErrReceiptNotFound) {
			return nil, toLedgerError(err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		case _, ok := <-heads:
			if !ok {
				heads = nil
			}
		}
	}
}

func toReceipt(r *client.Receipt) *rights.Receipt {
	out := &rights.Receipt{
		TxHash:  r.TxHash.Hex(),
		GasUsed: uint64(r.GasUsed),
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.ToInt().Uint64()
	}
	return out
}
