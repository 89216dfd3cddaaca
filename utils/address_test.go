package utils

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

const (
	lowerAddr = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	mixedAddr = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    common.Address
		wantErr bool
	}{
		{name: "lowercase", input: lowerAddr, want: common.HexToAddress(mixedAddr)},
		{name: "checksummed", input: mixedAddr, want: common.HexToAddress(mixedAddr)},
		{name: "without prefix", input: lowerAddr[2:], want: common.HexToAddress(mixedAddr)},
		{name: "surrounding spaces", input: "  " + lowerAddr + " ", want: common.HexToAddress(mixedAddr)},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "0x1234", wantErr: true},
		{name: "non hex", input: "0xzzaeb6053f3e94c9b9a09f33669435e7ef1beaed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress(lowerAddr, mixedAddr))
	assert.False(t, SameAddress(lowerAddr, "0x0000000000000000000000000000000000000001"))
	assert.False(t, SameAddress("", ""))
	assert.False(t, SameAddress("garbage", "garbage"))
}

func TestIsZeroAddress(t *testing.T) {
	assert.True(t, IsZeroAddress(""))
	assert.True(t, IsZeroAddress("0x0000000000000000000000000000000000000000"))
	assert.False(t, IsZeroAddress(lowerAddr))
	assert.False(t, IsZeroAddress("garbage"))
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x5aAe...eAed", ShortAddress(lowerAddr))
	assert.Equal(t, "not-an-address", ShortAddress("not-an-address"))
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{input: "Short name", max: 20, want: "Short name"},
		{input: "Exactly twenty chars", max: 20, want: "Exactly twenty chars"},
		{input: "A considerably longer asset name", max: 20, want: "A considerably lo..."},
		{input: "anything", max: 0, want: "anything"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateText(tt.input, tt.max))
	}
}
