package ledger

import (
	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/types"
)

// toLedgerError 将节点的 JSON-RPC 错误转换为 LedgerError
//
// 传输层错误保持原样，由上层作为无结构错误处理。
func toLedgerError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := types.IsLedgerError(err); ok {
		return err
	}
	if rpcErr, ok := client.IsRPCError(err); ok {
		return types.NewLedgerErrorFromRPC(rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	return err
}
