package utils

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress 解析十六进制地址（带或不带 0x 前缀）
//
// 返回 EIP-55 校验格式无关的 20 字节地址；长度或字符非法时返回错误。
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, fmt.Errorf("empty address")
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid hex address: %q", s)
	}
	return common.HexToAddress(s), nil
}

// SameAddress 判断两个地址是否相同（忽略大小写）
//
// 任一地址非法时返回 false。
func SameAddress(a, b string) bool {
	addrA, err := ParseAddress(a)
	if err != nil {
		return false
	}
	addrB, err := ParseAddress(b)
	if err != nil {
		return false
	}
	return addrA == addrB
}

// IsZeroAddress 判断地址是否为空或零地址
func IsZeroAddress(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return false
	}
	return addr == (common.Address{})
}

// ShortAddress 缩写地址用于展示，例如 0x1234...abcd
func ShortAddress(s string) string {
	addr, err := ParseAddress(s)
	if err != nil {
		return s
	}
	hex := addr.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}

// TruncateText 超过 max 个字符时截断并追加省略号
func TruncateText(s string, max int) string {
	runes := []rune(s)
	if max <= 3 || len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
