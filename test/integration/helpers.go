//go:build integration

package integration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/services/i18n"
	"github.com/rightshare/client-sdk-go/services/ledger"
	"github.com/rightshare/client-sdk-go/services/rights"
	"github.com/rightshare/client-sdk-go/wallet"
)

// TestAsset 返回测试资产，未配置时跳过测试
//
// RIGHTSHARE_TEST_CONTRACT / RIGHTSHARE_TEST_TOKEN_ID 指定资产；
// FRight / IRight 还需要 RIGHTSHARE_TEST_BASE_CONTRACT。
func TestAsset(t *testing.T, owner string) *rights.Asset {
	t.Helper()
	contract := os.Getenv("RIGHTSHARE_TEST_CONTRACT")
	tokenID := os.Getenv("RIGHTSHARE_TEST_TOKEN_ID")
	if contract == "" || tokenID == "" {
		t.Skip("RIGHTSHARE_TEST_CONTRACT / RIGHTSHARE_TEST_TOKEN_ID 未设置")
	}

	asset := &rights.Asset{TokenID: tokenID, ContractAddress: contract, Owner: owner}
	if base := os.Getenv("RIGHTSHARE_TEST_BASE_CONTRACT"); base != "" {
		asset.Metadata = &rights.Metadata{TokenID: tokenID, BaseAssetAddress: base}
	}
	return asset
}

// NewTestSession 创建连接到测试节点的会话
func NewTestSession(t *testing.T, eth client.EthClient, w wallet.Wallet, network ledger.Network) *rights.Session {
	t.Helper()
	cfg := ledger.DefaultConfig()
	cfg.Contracts = network.Contracts

	session, err := rights.NewSession(rights.SessionConfig{
		Operations: ledger.NewService(eth, w, cfg),
		Narrator:   i18n.New("en"),
	})
	require.NoError(t, err)
	t.Cleanup(session.Wait)
	return session
}
