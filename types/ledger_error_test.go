package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// revertData 构造 Error(string) revert 数据
func revertData(t *testing.T, reason string) string {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	selector := []byte{0x08, 0xc3, 0x79, 0xa0}
	return hexutil.Encode(append(selector, packed...))
}

func TestNewLedgerErrorFromRPC(t *testing.T) {
	tests := []struct {
		name       string
		rpcCode    int
		message    string
		data       func(t *testing.T) json.RawMessage
		wantCode   string
		wantArg    string
		wantReason string
	}{
		{
			name:    "execution reverted with reason",
			rpcCode: 3,
			message: "execution reverted: caller is not owner",
			data: func(t *testing.T) json.RawMessage {
				raw, _ := json.Marshal(revertData(t, "caller is not owner"))
				return raw
			},
			wantCode:   ErrorCodeCallException,
			wantReason: "caller is not owner",
		},
		{
			name:     "server error without data",
			rpcCode:  -32000,
			message:  "header not found",
			data:     func(t *testing.T) json.RawMessage { return nil },
			wantCode: ErrorCodeServerError,
		},
		{
			name:     "insufficient funds",
			rpcCode:  -32000,
			message:  "insufficient funds for gas * price + value",
			data:     func(t *testing.T) json.RawMessage { return json.RawMessage("null") },
			wantCode: ErrorCodeInsufficientFunds,
		},
		{
			name:    "structured data object",
			rpcCode: -32000,
			message: "invalid expiry",
			data: func(t *testing.T) json.RawMessage {
				return json.RawMessage(`{"code":"INVALID","arg":"expiry","reason":"must be in the future"}`)
			},
			wantCode:   "INVALID",
			wantArg:    "expiry",
			wantReason: "must be in the future",
		},
		{
			name:     "user rejected",
			rpcCode:  4001,
			message:  "User denied transaction signature",
			data:     func(t *testing.T) json.RawMessage { return nil },
			wantCode: ErrorCodeActionRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewLedgerErrorFromRPC(tt.rpcCode, tt.message, tt.data(t))
			assert.Equal(t, tt.wantCode, e.Code)
			assert.Equal(t, tt.wantArg, e.Arg)
			assert.Equal(t, tt.wantReason, e.Reason)
			assert.Equal(t, tt.message, e.Message)
			assert.Equal(t, tt.rpcCode, e.RPCCode)
			assert.NotEmpty(t, e.TraceID)
			assert.True(t, e.Structured())
		})
	}
}

func TestIsLedgerError(t *testing.T) {
	base := NewLedgerError("INVALID", "bad state")
	wrapped := fmt.Errorf("estimate failed: %w", base)

	got, ok := IsLedgerError(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)

	_, ok = IsLedgerError(errors.New("connection refused"))
	assert.False(t, ok)
}

func TestLedgerError_Error(t *testing.T) {
	assert.Equal(t, "[INVALID] bad state", NewLedgerError("INVALID", "bad state").Error())

	withArg := NewInvalidArgumentError("expiry", "value out of range")
	assert.Equal(t, `[INVALID_ARGUMENT] invalid argument (arg="expiry"): value out of range`, withArg.Error())

	var unstructured *LedgerError
	assert.False(t, unstructured.Structured())
	assert.False(t, (&LedgerError{Message: "x"}).Structured())
}
