package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/services/rights"
	"github.com/rightshare/client-sdk-go/utils"
)

// readConcurrency 单次刷新的并发 eth_call 数
const readConcurrency = 4

// Reader 从链上读取资产的权威状态
type Reader struct {
	eth       client.EthClient
	contracts Contracts
}

// NewReader 创建 Reader
func NewReader(eth client.EthClient, contracts Contracts) *Reader {
	return &Reader{eth: eth, contracts: contracts}
}

// query 一次只读合约调用及其结果的写回
type query struct {
	contract abi.ABI
	to       common.Address
	method   string
	args     []interface{}
	apply    func(asset *rights.Asset, out []interface{}) error
}

// Refresh 重新读取资产的所有者与冻结标记，返回新的快照
//
// 传入的资产不会被修改。
func (r *Reader) Refresh(ctx context.Context, asset *rights.Asset) (*rights.Asset, error) {
	if asset == nil {
		return nil, rights.ErrNoAsset
	}

	queries, err := r.queriesFor(asset)
	if err != nil {
		return nil, err
	}

	outputs, err := utils.ParallelExecute(ctx, queries, r.execute, readConcurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh asset %s: %w", asset.TokenID, err)
	}

	fresh := *asset
	fresh.Type = r.contracts.AssetType(asset.ContractAddress)
	for i, q := range queries {
		if err := q.apply(&fresh, outputs[i]); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", q.method, err)
		}
	}
	return &fresh, nil
}

func (r *Reader) queriesFor(asset *rights.Asset) ([]query, error) {
	contract, err := parseAddress("contractAddress", asset.ContractAddress)
	if err != nil {
		return nil, err
	}
	tokenID, err := parseTokenID("tokenId", asset.TokenID)
	if err != nil {
		return nil, err
	}

	queries := []query{{
		contract: nftContract,
		to:       contract,
		method:   "ownerOf",
		args:     []interface{}{tokenID},
		apply: func(a *rights.Asset, out []interface{}) error {
			owner, ok := out[0].(common.Address)
			if !ok {
				return fmt.Errorf("unexpected ownerOf output %T", out[0])
			}
			a.Owner = owner.Hex()
			return nil
		},
	}}

	dao := r.contracts.RightsDao
	switch r.contracts.AssetType(asset.ContractAddress) {
	case rights.AssetPlain:
		queries = append(queries, boolQuery(dao, "isFrozen", func(a *rights.Asset, v bool) { a.IsFrozen = v }, contract, tokenID))
	case rights.AssetFRight:
		owner := common.HexToAddress(asset.Owner)
		queries = append(queries,
			boolQuery(dao, "isUnfreezable", func(a *rights.Asset, v bool) { a.IsUnfreezable = v }, owner, tokenID),
			boolQuery(dao, "isIMintable", func(a *rights.Asset, v bool) { a.IsIMintable = v }, tokenID),
		)
	}
	return queries, nil
}

func boolQuery(to common.Address, method string, set func(*rights.Asset, bool), args ...interface{}) query {
	return query{
		contract: rightsDaoContract,
		to:       to,
		method:   method,
		args:     args,
		apply: func(a *rights.Asset, out []interface{}) error {
			v, ok := out[0].(bool)
			if !ok {
				return fmt.Errorf("unexpected %s output %T", method, out[0])
			}
			set(a, v)
			return nil
		},
	}
}

func (r *Reader) execute(ctx context.Context, q query) ([]interface{}, error) {
	data, err := q.contract.Pack(q.method, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", q.method, err)
	}
	to := q.to
	raw, err := r.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data})
	if err != nil {
		return nil, toLedgerError(err)
	}
	out, err := q.contract.Unpack(q.method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", q.method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", q.method)
	}
	return out, nil
}

// AssetReloader 刷新资产并把新快照交给 onReload
//
// 作为 rights.Session 的 Reloader 使用；current 返回当前资产。
func (r *Reader) AssetReloader(current func() *rights.Asset, onReload func(ctx context.Context, asset *rights.Asset, hint string) error) rights.Reloader {
	return rights.ReloaderFunc(func(ctx context.Context, hint string) error {
		fresh, err := r.Refresh(ctx, current())
		if err != nil {
			return err
		}
		return onReload(ctx, fresh, hint)
	})
}
