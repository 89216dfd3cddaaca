package ledger

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rightshare/client-sdk-go/services/rights"
)

// Network 已部署的网络预设
type Network struct {
	Name        string
	ChainID     int64
	Contracts   Contracts
	ExplorerURL string
}

// 网络预设
var (
	Mainnet = Network{
		Name:    "mainnet",
		ChainID: 1,
		Contracts: Contracts{
			RightsDao: common.HexToAddress("0xb7998D58EEa7c462cDc2d27e66ADde325f388FE0"),
			FRight:    common.HexToAddress("0x6f6ba89560235C00d899CB877539E20c5DBF5C69"),
			IRight:    common.HexToAddress("0x8830478133c1942A96273952be7A712D7C9e04e6"),
		},
		ExplorerURL: "https://etherscan.io/tx/",
	}

	Rinkeby = Network{
		Name:    "rinkeby",
		ChainID: 4,
		Contracts: Contracts{
			RightsDao: common.HexToAddress("0x8066E491b1100b86A9a41a93fc2d218D43552563"),
			FRight:    common.HexToAddress("0xefC727FE2Ba2157820990f66955019A62Fa3Cc6d"),
			IRight:    common.HexToAddress("0xf73B07252629fb493F721AA7A28945334fea62C7"),
		},
		ExplorerURL: "https://rinkeby.etherscan.io/tx/",
	}
)

// LookupNetwork 按名称查找网络预设
func LookupNetwork(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "main", "mainnet":
		return Mainnet, nil
	case "rinkeby":
		return Rinkeby, nil
	}
	return Network{}, fmt.Errorf("unknown network: %s", name)
}

// TxURL 交易浏览器链接；哈希为空时返回空串
func (n Network) TxURL(hash string) string {
	if hash == "" || n.ExplorerURL == "" {
		return ""
	}
	return n.ExplorerURL + hash
}

// AssetType 根据合约地址判断资产类型标签
func (c Contracts) AssetType(contract string) rights.AssetType {
	if !common.IsHexAddress(contract) {
		return rights.AssetPlain
	}
	switch common.HexToAddress(contract) {
	case c.FRight:
		return rights.AssetFRight
	case c.IRight:
		return rights.AssetIRight
	}
	return rights.AssetPlain
}
