//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/services/ledger"
	"github.com/rightshare/client-sdk-go/wallet"
)

const (
	// DefaultNodeEndpoint 默认节点端点（hardhat / anvil）
	DefaultNodeEndpoint = "http://localhost:8545"
	// DefaultTimeout 默认超时时间
	DefaultTimeout = 30 * time.Second
	// TransactionConfirmTimeout 交易确认超时时间
	TransactionConfirmTimeout = 60 * time.Second

	// devPrivateKey 开发链的第一个预置账户
	devPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

// TestConfig 测试配置
//
// 从环境变量读取：
// - RIGHTSHARE_TEST_ENDPOINT 节点端点
// - RIGHTSHARE_TEST_NETWORK 合约地址预设（mainnet / rinkeby，用于分叉节点）
// - RIGHTSHARE_TEST_PRIVATEKEY 签名私钥
type TestConfig struct {
	NodeEndpoint string
	Network      string
	PrivateKey   string
	Timeout      time.Duration
}

// DefaultTestConfig 返回默认测试配置
func DefaultTestConfig() *TestConfig {
	cfg := &TestConfig{
		NodeEndpoint: DefaultNodeEndpoint,
		Network:      ledger.Rinkeby.Name,
		PrivateKey:   devPrivateKey,
		Timeout:      DefaultTimeout,
	}
	if v := os.Getenv("RIGHTSHARE_TEST_ENDPOINT"); v != "" {
		cfg.NodeEndpoint = v
	}
	if v := os.Getenv("RIGHTSHARE_TEST_NETWORK"); v != "" {
		cfg.Network = v
	}
	if v := os.Getenv("RIGHTSHARE_TEST_PRIVATEKEY"); v != "" {
		cfg.PrivateKey = v
	}
	return cfg
}

// SetupTestClient 创建连接到测试节点的 EthClient
//
// 节点未运行时跳过测试。
func SetupTestClient(t *testing.T) client.EthClient {
	t.Helper()
	cfg := DefaultTestConfig()

	eth, err := client.NewEthClient(&client.Config{
		Endpoint: cfg.NodeEndpoint,
		Protocol: client.ProtocolHTTP,
		Timeout:  int(cfg.Timeout.Seconds()),
	})
	require.NoError(t, err, "创建客户端失败")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := eth.BlockNumber(ctx); err != nil {
		_ = eth.Close()
		t.Skipf("节点未运行: %s (%v)", cfg.NodeEndpoint, err)
	}

	t.Cleanup(func() {
		if err := eth.Close(); err != nil {
			t.Logf("关闭客户端时出现警告: %v", err)
		}
	})
	return eth
}

// TestNetwork 返回测试使用的网络预设
func TestNetwork(t *testing.T) ledger.Network {
	t.Helper()
	n, err := ledger.LookupNetwork(DefaultTestConfig().Network)
	require.NoError(t, err)
	return n
}

// CreateTestWallet 创建签名钱包
func CreateTestWallet(t *testing.T) wallet.Wallet {
	t.Helper()
	w, err := wallet.NewWalletFromPrivateKey(DefaultTestConfig().PrivateKey)
	require.NoError(t, err, "从私钥创建测试钱包失败")
	return w
}
