// Package ledger 将 rights 操作绑定到以太坊 JSON-RPC 节点上的 RightsDao 合约
package ledger

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/services/rights"
	"github.com/rightshare/client-sdk-go/wallet"
)

// Contracts 合约地址
type Contracts struct {
	RightsDao common.Address
	FRight    common.Address
	IRight    common.Address
}

// Config 账本服务配置
type Config struct {
	Contracts Contracts

	// GasLimit 单笔交易 gas 上限
	GasLimit uint64

	// PollInterval 回执轮询间隔
	PollInterval time.Duration

	Logger client.Logger
}

// DefaultConfig 返回默认配置（合约地址需由调用方填写）
func DefaultConfig() *Config {
	return &Config{
		GasLimit:     rights.GasLimit,
		PollInterval: 2 * time.Second,
		Logger:       client.NopLogger(),
	}
}

// Service 实现 rights.Operations
//
// 绑定方法只编码调用，不发起网络请求；编码失败会在 Estimate/Send 时以
// INVALID_ARGUMENT 的 LedgerError 报告。
type Service struct {
	eth    client.EthClient
	wallet wallet.Wallet
	config *Config
}

var _ rights.Operations = (*Service)(nil)

// NewService 创建账本服务
func NewService(eth client.EthClient, w wallet.Wallet, cfg *Config) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = rights.GasLimit
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = client.NopLogger()
	}
	return &Service{eth: eth, wallet: w, config: cfg}
}

// Approve NFT.approve(RightsDao, tokenId)
func (s *Service) Approve(asset *rights.Asset) rights.Operation {
	c, err := buildApprove(asset, s.config.Contracts.RightsDao)
	return s.bind(c, err)
}

// Freeze RightsDao.freeze
func (s *Service) Freeze(asset *rights.Asset, params rights.FreezeParams) rights.Operation {
	c, err := buildFreeze(asset, params, s.config.Contracts.RightsDao)
	return s.bind(c, err)
}

// IssueUnencumberedI RightsDao.issueUnencumberedI
func (s *Service) IssueUnencumberedI(asset *rights.Asset, params rights.FreezeParams) rights.Operation {
	c, err := buildIssueUnencumberedI(asset, params, s.config.Contracts.RightsDao)
	return s.bind(c, err)
}

// Unfreeze RightsDao.unfreeze
func (s *Service) Unfreeze(asset *rights.Asset) rights.Operation {
	c, err := buildUnfreeze(asset, s.config.Contracts.RightsDao)
	return s.bind(c, err)
}

// IssueI RightsDao.issueI
func (s *Service) IssueI(asset *rights.Asset) rights.Operation {
	c, err := buildIssueI(asset, s.config.Contracts.RightsDao)
	return s.bind(c, err)
}

// RevokeI RightsDao.revokeI
func (s *Service) RevokeI(asset *rights.Asset) rights.Operation {
	c, err := buildRevokeI(asset, s.config.Contracts.RightsDao)
	return s.bind(c, err)
}

// Transfer IRight.transferFrom(owner, to, tokenId)
func (s *Service) Transfer(asset *rights.Asset, to string) rights.Operation {
	c, err := buildTransfer(asset, to, s.config.Contracts.IRight)
	return s.bind(c, err)
}

func (s *Service) bind(c *call, err error) rights.Operation {
	return &operation{service: s, call: c, buildErr: err}
}
