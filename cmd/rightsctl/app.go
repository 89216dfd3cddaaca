package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/services"
	"github.com/rightshare/client-sdk-go/services/i18n"
	"github.com/rightshare/client-sdk-go/services/ledger"
	"github.com/rightshare/client-sdk-go/services/rights"
	"github.com/rightshare/client-sdk-go/services/shortener"
	"github.com/rightshare/client-sdk-go/wallet"
)

// app 一次命令执行所需的全部组件
type app struct {
	out      io.Writer
	logger   client.Logger
	network  ledger.Network
	narrator *i18n.Catalog
	eth      client.EthClient
	wallet   wallet.Wallet
	reader   *ledger.Reader
	session  *rights.Session
	printer  *printer
}

func newApp(opts *rootOptions, out io.Writer) (*app, error) {
	// 1. 配置
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	network, err := cfg.ResolveNetwork()
	if err != nil {
		return nil, err
	}

	// 2. 日志
	zl := zap.NewNop()
	if opts.verbose || cfg.Node.Debug {
		if zl, err = zap.NewDevelopment(); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	logger := client.NewZapLogger(zl)

	// 3. 钱包与节点
	w, err := loadWallet(cfg, opts.password)
	if err != nil {
		return nil, err
	}
	eth, err := client.NewEthClient(cfg.ClientConfig(logger))
	if err != nil {
		return nil, err
	}

	// 4. 业务服务
	ledgerCfg, err := cfg.LedgerConfig(logger)
	if err != nil {
		_ = eth.Close()
		return nil, err
	}
	short, err := shortener.NewService(cfg.ShortenerConfig(logger))
	if err != nil {
		_ = eth.Close()
		return nil, err
	}
	narrator := i18n.New(cfg.Language)

	a := &app{
		out:      out,
		logger:   logger,
		network:  network,
		narrator: narrator,
		eth:      eth,
		wallet:   w,
		reader:   ledger.NewReader(eth, network.Contracts),
	}
	a.printer = newPrinter(out, narrator, network)

	orchestrator := rights.NewOrchestrator(narrator,
		rights.WithOrchestratorLogger(logger),
		rights.WithSettleDelay(cfg.SettleDelay),
	)
	a.session, err = rights.NewSession(rights.SessionConfig{
		Operations:    ledger.NewService(eth, w, ledgerCfg),
		Reloader:      a.reader.AssetReloader(a.currentAsset, a.onReload),
		Shortener:     short,
		Narrator:      narrator,
		Logger:        logger,
		Orchestrator:  orchestrator,
		TemplateImage: cfg.TemplateImage,
		OnChange:      a.printer.onChange,
	})
	if err != nil {
		_ = eth.Close()
		return nil, err
	}
	return a, nil
}

// loadWallet 私钥优先，其次 keystore
func loadWallet(cfg *services.Config, password string) (wallet.Wallet, error) {
	if cfg.PrivateKey != "" {
		return wallet.NewWalletFromPrivateKey(cfg.PrivateKey)
	}
	if cfg.Keystore == "" || cfg.Account == "" {
		return nil, errors.New("a signing key is required: set RIGHTSHARE_PRIVATEKEY or --keystore with --account")
	}
	if !common.IsHexAddress(cfg.Account) {
		return nil, fmt.Errorf("invalid account address: %s", cfg.Account)
	}
	if password == "" {
		password = os.Getenv(services.EnvPrefix + "_PASSWORD")
	}
	km, err := wallet.NewKeystoreManager(cfg.Keystore)
	if err != nil {
		return nil, err
	}
	return km.Load(common.HexToAddress(cfg.Account), password)
}

// open 读取资产并载入会话，等待首轮估算完成
func (a *app) open(ctx context.Context, flags assetFlags) error {
	if flags.contract == "" || flags.tokenID == "" {
		return errors.New("--contract and --token-id are required")
	}

	asset := &rights.Asset{
		TokenID:         flags.tokenID,
		ContractAddress: flags.contract,
		Owner:           a.wallet.Address().Hex(),
	}
	if a.network.Contracts.AssetType(flags.contract) != rights.AssetPlain {
		if flags.baseContract == "" {
			return errors.New("--base-contract is required for FRight and IRight tokens")
		}
		asset.Metadata = &rights.Metadata{
			TokenID:          flags.tokenID,
			BaseAssetAddress: flags.baseContract,
			EndTime:          flags.endTime,
		}
	}

	fresh, err := a.reader.Refresh(ctx, asset)
	if err != nil {
		return err
	}
	if !common.IsHexAddress(fresh.Owner) || common.HexToAddress(fresh.Owner) != a.wallet.Address() {
		a.logger.Warn("Asset is not owned by the signing account", "owner", fresh.Owner, "account", a.wallet.Address().Hex())
	}

	a.session.SetAsset(ctx, fresh)
	a.session.Wait()
	return nil
}

func (a *app) currentAsset() *rights.Asset {
	return a.session.Asset()
}

func (a *app) onReload(ctx context.Context, asset *rights.Asset, hint string) error {
	a.logger.Debug("Asset reloaded", "token", asset.TokenID, "hint", hint)
	a.session.SetAsset(ctx, asset)
	return nil
}

func (a *app) close() {
	a.session.Wait()
	_ = a.eth.Close()
}

func (a *app) approve(ctx context.Context) (*rights.Receipt, error) {
	return a.session.Approve(ctx)
}

func (a *app) unfreeze(ctx context.Context) (*rights.Receipt, error) {
	return a.session.Unfreeze(ctx)
}

func (a *app) issueI(ctx context.Context) (*rights.Receipt, error) {
	return a.session.IssueI(ctx)
}

func (a *app) revokeI(ctx context.Context) (*rights.Receipt, error) {
	return a.session.RevokeI(ctx)
}
