package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/rightshare/client-sdk-go/services/rights"
	"github.com/rightshare/client-sdk-go/types"
)

// gasHeadroomPercent 提交时在估算值上追加的余量
const gasHeadroomPercent = 20

// operation 已编码的合约调用
type operation struct {
	service  *Service
	call     *call
	buildErr error
}

// Estimate eth_estimateGas 预演
func (o *operation) Estimate(ctx context.Context) (int64, error) {
	if o.buildErr != nil {
		return 0, o.buildErr
	}
	gas, err := o.service.eth.EstimateGas(ctx, o.callMsg())
	if err != nil {
		return 0, toLedgerError(err)
	}
	return int64(gas), nil
}

// Send 签名、广播并等待确认
func (o *operation) Send(ctx context.Context) <-chan rights.SubmissionEvent {
	// hash + 终止事件，缓冲足够时发送方永不阻塞
	events := make(chan rights.SubmissionEvent, 3)

	go func() {
		defer close(events)

		if o.buildErr != nil {
			events <- rights.SubmissionEvent{Kind: rights.EventError, Err: o.buildErr}
			return
		}

		signed, err := o.sign(ctx)
		if err != nil {
			events <- rights.SubmissionEvent{Kind: rights.EventError, Err: err}
			return
		}

		hash, err := o.service.eth.SendTransaction(ctx, signed)
		if err != nil {
			events <- rights.SubmissionEvent{Kind: rights.EventError, Err: toLedgerError(err)}
			return
		}
		txHash := hash.Hex()
		o.service.config.Logger.Debug("transaction broadcast", "method", o.call.method, "hash", txHash)
		events <- rights.SubmissionEvent{Kind: rights.EventHash, Hash: txHash}

		receipt, err := o.service.waitReceipt(ctx, hash)
		if err != nil {
			events <- rights.SubmissionEvent{Kind: rights.EventError, Hash: txHash, Err: err}
			return
		}
		if !receipt.Succeeded() {
			reverted := types.NewLedgerError(types.ErrorCodeTransactionReverted, "transaction reverted")
			reverted.Reason = txHash
			events <- rights.SubmissionEvent{Kind: rights.EventError, Hash: txHash, Err: reverted}
			return
		}
		events <- rights.SubmissionEvent{Kind: rights.EventReceipt, Hash: txHash, Receipt: toReceipt(receipt)}
	}()

	return events
}

// sign 构建并签名 legacy 交易
func (o *operation) sign(ctx context.Context) (*ethtypes.Transaction, error) {
	w := o.service.wallet
	if w == nil {
		return nil, types.NewLedgerError(types.ErrorCodeActionRejected, "no wallet configured")
	}

	// 1. nonce
	nonce, err := o.service.eth.PendingNonceAt(ctx, w.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", toLedgerError(err))
	}

	// 2. gas price
	gasPrice, err := o.service.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", toLedgerError(err))
	}

	// 3. gas limit
	estimated, err := o.service.eth.EstimateGas(ctx, o.callMsg())
	if err != nil {
		return nil, toLedgerError(err)
	}
	gas := withHeadroom(estimated, o.service.config.GasLimit)

	// 4. chain id
	chainID, err := o.service.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", toLedgerError(err))
	}

	// 5. 签名
	to := o.call.to
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    new(big.Int),
		Data:     o.call.data,
	})
	signed, err := w.SignTx(tx, chainID)
	if err != nil {
		rejected := types.NewLedgerError(types.ErrorCodeActionRejected, "signing rejected")
		rejected.Reason = err.Error()
		return nil, rejected
	}
	return signed, nil
}

func (o *operation) callMsg() ethereum.CallMsg {
	var from common.Address
	if o.service.wallet != nil {
		from = o.service.wallet.Address()
	}
	to := o.call.to
	return ethereum.CallMsg{From: from, To: &to, Data: o.call.data}
}

// withHeadroom 在估算值上追加余量，不超过上限
func withHeadroom(estimated, limit uint64) uint64 {
	gas := estimated + estimated*gasHeadroomPercent/100
	if limit > 0 && gas > limit {
		return limit
	}
	return gas
}
