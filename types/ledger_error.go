package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// LedgerError 链上拒绝错误（估算 dry-run 或提交被账本拒绝）
//
// Code 为空表示无法归因到账本语义的错误（例如传输层失败），
// 调用方应将其视为全局错误而非某个操作的错误。
type LedgerError struct {
	Code    string
	Message string
	// Arg 引发错误的参数名（可选）
	Arg string
	// Reason 结构化的拒绝原因，例如 revert reason（可选）
	Reason    string
	RPCCode   int
	TraceID   string
	Timestamp string
}

func (e *LedgerError) Error() string {
	switch {
	case e.Arg != "" && e.Reason != "":
		return fmt.Sprintf("[%s] %s (arg=%q): %s", e.Code, e.Message, e.Arg, e.Reason)
	case e.Reason != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Reason)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Structured 是否携带结构化错误码
func (e *LedgerError) Structured() bool {
	return e != nil && e.Code != ""
}

// IsLedgerError 检查错误链中是否包含 LedgerError
func IsLedgerError(err error) (*LedgerError, bool) {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr, true
	}
	return nil, false
}

// ErrorCode 错误码常量
const (
	ErrorCodeCallException       = "CALL_EXCEPTION"
	ErrorCodeInvalidArgument     = "INVALID_ARGUMENT"
	ErrorCodeServerError         = "SERVER_ERROR"
	ErrorCodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ErrorCodeNonceExpired        = "NONCE_EXPIRED"
	ErrorCodeActionRejected      = "ACTION_REJECTED"
	ErrorCodeTransactionReverted = "TRANSACTION_REVERTED"
	ErrorCodeUnknown             = "UNKNOWN_ERROR"
)

// JSON-RPC 错误码
const (
	rpcCodeExecutionReverted = 3
	rpcCodeServerError       = -32000
	rpcCodeInvalidParams     = -32602
	rpcCodeUserRejected      = 4001
)

// NewLedgerError 创建 LedgerError（自动生成 TraceID）
func NewLedgerError(code, message string) *LedgerError {
	return &LedgerError{
		Code:      code,
		Message:   message,
		TraceID:   uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewInvalidArgumentError 参数无法编码时的错误
func NewInvalidArgumentError(arg string, reason string) *LedgerError {
	e := NewLedgerError(ErrorCodeInvalidArgument, "invalid argument")
	e.Arg = arg
	e.Reason = reason
	return e
}

// NewLedgerErrorFromRPC 从 JSON-RPC 错误响应构建 LedgerError
//
// data 字段支持两种形态：
// - revert 数据（hex 字符串），使用 ABI 解码 Error(string) 得到 reason
// - 结构化对象 {code, arg, reason}（部分节点中间件的扩展）
func NewLedgerErrorFromRPC(rpcCode int, message string, data json.RawMessage) *LedgerError {
	e := NewLedgerError(codeFromRPC(rpcCode, message), message)
	e.RPCCode = rpcCode

	if len(data) == 0 || string(data) == "null" {
		return e
	}

	// 1. revert 数据
	var hexData string
	if err := json.Unmarshal(data, &hexData); err == nil {
		if raw, err := hexutil.Decode(hexData); err == nil {
			if reason, err := abi.UnpackRevert(raw); err == nil {
				e.Reason = reason
			}
		} else if hexData != "" {
			e.Reason = hexData
		}
		return e
	}

	// 2. 结构化对象
	var structured struct {
		Code   string `json:"code"`
		Arg    string `json:"arg"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &structured); err == nil {
		if structured.Code != "" {
			e.Code = structured.Code
		}
		e.Arg = structured.Arg
		e.Reason = structured.Reason
	}
	return e
}

// codeFromRPC 将 JSON-RPC 错误码映射为账本错误码
func codeFromRPC(rpcCode int, message string) string {
	lower := strings.ToLower(message)
	switch {
	case rpcCode == rpcCodeExecutionReverted || strings.Contains(lower, "execution reverted"):
		return ErrorCodeCallException
	case rpcCode == rpcCodeUserRejected:
		return ErrorCodeActionRejected
	case rpcCode == rpcCodeInvalidParams:
		return ErrorCodeInvalidArgument
	case strings.Contains(lower, "insufficient funds"):
		return ErrorCodeInsufficientFunds
	case strings.Contains(lower, "nonce too low"):
		return ErrorCodeNonceExpired
	case rpcCode == rpcCodeServerError:
		return ErrorCodeServerError
	default:
		return ErrorCodeUnknown
	}
}
