package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/services/i18n"
	"github.com/rightshare/client-sdk-go/services/ledger"
	"github.com/rightshare/client-sdk-go/services/rights"
	"github.com/rightshare/client-sdk-go/services/shortener"
)

// EnvPrefix 环境变量前缀，例如 RIGHTSHARE_NODE_ENDPOINT 对应 node.endpoint
const EnvPrefix = "RIGHTSHARE"

// Config 统一的业务服务配置，为各个 Service 提供合约地址、网络与文案等运行时参数
//
// 合约地址未填写时使用 Network 对应的预设。
type Config struct {
	Network string     `mapstructure:"network"`
	Node    NodeConfig `mapstructure:"node"`

	// ChainID 为 0 时使用网络预设
	ChainID   int64           `mapstructure:"chainId"`
	Contracts ContractsConfig `mapstructure:"contracts"`

	GasLimit     uint64        `mapstructure:"gasLimit"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	SettleDelay  time.Duration `mapstructure:"settleDelay"`

	Language      string `mapstructure:"language"`
	TemplateImage string `mapstructure:"templateImage"`
	Shortener     string `mapstructure:"shortener"`

	// PrivateKey 签名私钥（hex），建议只通过环境变量提供
	PrivateKey string `mapstructure:"privateKey"`
	// Keystore 加密钥匙串目录，与 Account 一起使用
	Keystore string `mapstructure:"keystore"`
	Account  string `mapstructure:"account"`
}

// NodeConfig 节点连接配置
type NodeConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Protocol string `mapstructure:"protocol"`
	Timeout  int    `mapstructure:"timeout"`
	Debug    bool   `mapstructure:"debug"`
}

// ContractsConfig 合约地址覆盖
type ContractsConfig struct {
	RightsDao string `mapstructure:"rightsDao"`
	FRight    string `mapstructure:"fRight"`
	IRight    string `mapstructure:"iRight"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Network: ledger.Mainnet.Name,
		Node: NodeConfig{
			Endpoint: "http://localhost:8545",
			Protocol: string(client.ProtocolHTTP),
			Timeout:  30,
		},
		GasLimit:     rights.GasLimit,
		PollInterval: 2 * time.Second,
		SettleDelay:  rights.DefaultSettleDelay,
		Language:     string(i18n.English),
		Shortener:    shortener.DefaultEndpoint,
	}
}

// LoadConfig 读取配置文件（YAML/JSON/TOML，按扩展名识别）并叠加环境变量
//
// path 为空时只使用默认值与环境变量。
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	Bind(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// Bind 在 v 上注册默认值与环境变量映射
//
// 命令行可在此之后把 flag 绑定到同名键上。
func Bind(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv 只对已知键生效，所有键都需要默认值
	d := DefaultConfig()
	defaults := map[string]interface{}{
		"network":             d.Network,
		"node.endpoint":       d.Node.Endpoint,
		"node.protocol":       d.Node.Protocol,
		"node.timeout":        d.Node.Timeout,
		"node.debug":          d.Node.Debug,
		"chainId":             d.ChainID,
		"contracts.rightsDao": "",
		"contracts.fRight":    "",
		"contracts.iRight":    "",
		"gasLimit":            d.GasLimit,
		"pollInterval":        d.PollInterval,
		"settleDelay":         d.SettleDelay,
		"language":            d.Language,
		"templateImage":       d.TemplateImage,
		"shortener":           d.Shortener,
		"privateKey":          "",
		"keystore":            "",
		"account":             "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// FromViper 从已绑定的 viper 实例解码配置并校验
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if _, err := ledger.LookupNetwork(c.Network); err != nil {
		errs = append(errs, err)
	}
	if c.Node.Endpoint == "" {
		errs = append(errs, errors.New("node.endpoint is required"))
	}
	switch client.Protocol(c.Node.Protocol) {
	case client.ProtocolHTTP, client.ProtocolWebSocket:
	default:
		errs = append(errs, fmt.Errorf("unsupported node.protocol: %s", c.Node.Protocol))
	}
	for key, addr := range map[string]string{
		"contracts.rightsDao": c.Contracts.RightsDao,
		"contracts.fRight":    c.Contracts.FRight,
		"contracts.iRight":    c.Contracts.IRight,
	} {
		if addr != "" && !common.IsHexAddress(addr) {
			errs = append(errs, fmt.Errorf("%s is not an address: %s", key, addr))
		}
	}
	if c.GasLimit == 0 {
		errs = append(errs, errors.New("gasLimit must be positive"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("pollInterval must be positive"))
	}
	if c.SettleDelay < 0 {
		errs = append(errs, errors.New("settleDelay must not be negative"))
	}
	return errors.Join(errs...)
}

// ResolveNetwork 返回应用了覆盖项的网络预设
func (c *Config) ResolveNetwork() (ledger.Network, error) {
	n, err := ledger.LookupNetwork(c.Network)
	if err != nil {
		return ledger.Network{}, err
	}
	if c.ChainID != 0 {
		n.ChainID = c.ChainID
	}
	if c.Contracts.RightsDao != "" {
		n.Contracts.RightsDao = common.HexToAddress(c.Contracts.RightsDao)
	}
	if c.Contracts.FRight != "" {
		n.Contracts.FRight = common.HexToAddress(c.Contracts.FRight)
	}
	if c.Contracts.IRight != "" {
		n.Contracts.IRight = common.HexToAddress(c.Contracts.IRight)
	}
	return n, nil
}

// ClientConfig 节点客户端配置
func (c *Config) ClientConfig(logger client.Logger) *client.Config {
	return &client.Config{
		Endpoint: c.Node.Endpoint,
		Protocol: client.Protocol(c.Node.Protocol),
		Timeout:  c.Node.Timeout,
		Debug:    c.Node.Debug,
		Logger:   logger,
	}
}

// LedgerConfig 账本服务配置
func (c *Config) LedgerConfig(logger client.Logger) (*ledger.Config, error) {
	n, err := c.ResolveNetwork()
	if err != nil {
		return nil, err
	}
	return &ledger.Config{
		Contracts:    n.Contracts,
		GasLimit:     c.GasLimit,
		PollInterval: c.PollInterval,
		Logger:       logger,
	}, nil
}

// ShortenerConfig 图片缩短服务配置
func (c *Config) ShortenerConfig(logger client.Logger) *shortener.Config {
	cfg := shortener.DefaultConfig()
	if c.Shortener != "" {
		cfg.Endpoint = c.Shortener
	}
	cfg.Logger = logger
	return cfg
}
