package rights

import (
	"github.com/rightshare/client-sdk-go/utils"
)

// AssetType 资产类型标签
type AssetType string

const (
	// AssetPlain 普通持有（未冻结）
	AssetPlain AssetType = ""
	// AssetFRight 已冻结的权利代币
	AssetFRight AssetType = "FRight"
	// AssetIRight 由 FRight 发行的实例权利
	AssetIRight AssetType = "IRight"
)

// displayNameLimit 资产名称展示长度上限
const displayNameLimit = 20

// Metadata 链上冻结元数据
type Metadata struct {
	TokenID            string
	BaseAssetAddress   string
	EndTime            int64
	Expiry             int64 // 优先于 EndTime
	IsExclusive        bool
	MaxISupply         uint64
	CirculatingISupply uint64
	SerialNumber       uint64
	Purpose            string
	ImageURL           string
	TermsURL           string
}

// ExpiryUnix 返回到期时间（UTC 秒）
func (m *Metadata) ExpiryUnix() int64 {
	if m.Expiry != 0 {
		return m.Expiry
	}
	return m.EndTime
}

// Asset 数字藏品快照
//
// 每次重新加载时整体替换，不做局部修改。
type Asset struct {
	TokenID         string
	Owner           string
	ContractAddress string

	Name            string
	ImageURL        string
	Description     string
	BackgroundColor string

	Type          AssetType
	IsFrozen      bool
	IsUnfreezable bool
	IsIMintable   bool

	// Metadata 仅对 FRight / IRight 存在
	Metadata *Metadata
}

// Unavailable 元数据指向零地址的底层资产时视为不可用
func (a *Asset) Unavailable() bool {
	return a.Metadata != nil && utils.IsZeroAddress(a.Metadata.BaseAssetAddress)
}

// RightTokenID 返回权利代币 ID（无元数据时回退到资产自身的 ID）
func (a *Asset) RightTokenID() string {
	if a.Metadata != nil && a.Metadata.TokenID != "" {
		return a.Metadata.TokenID
	}
	return a.TokenID
}

// DisplayName 返回截断后的展示名称
func (a *Asset) DisplayName() string {
	name := a.Name
	if name == "" {
		name = "#" + a.TokenID
	}
	return utils.TruncateText(name, displayNameLimit)
}

// Freezable 资产当前可被冻结
func (a *Asset) Freezable() bool {
	return a.Type == AssetPlain && !a.IsFrozen
}
