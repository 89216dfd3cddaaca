package rights

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 表单字段名
const (
	FieldExpiryDate  = "expiryDate"
	FieldExpiryTime  = "expiryTime"
	FieldIsExclusive = "isExclusive"
	FieldMaxISupply  = "maxISupply"
	FieldPurpose     = "purpose"
	FieldImageURL    = "imageUrl"
	FieldTermsURL    = "termsUrl"
	FieldTo          = "to"
	FieldOwner       = "owner"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	// defaultTermsURL 未填写条款链接时写入链上的占位值
	defaultTermsURL = "none"
)

// freezeFields 冻结估算与提交前校验的字段
var freezeFields = []string{FieldExpiryDate, FieldExpiryTime, FieldMaxISupply}

// Form 可被校验的表单
type Form interface {
	// FieldValue 返回字段的字符串值，字段不存在时 ok 为 false
	FieldValue(name string) (value string, ok bool)
}

// FreezeForm 冻结表单草稿
//
// 日期与时间按 UTC 组合为到期时间。
type FreezeForm struct {
	ExpiryDate         string // YYYY-MM-DD
	ExpiryTime         string // HH:MM
	IsExclusive        bool
	MaxISupply         string
	CirculatingISupply string
	SerialNumber       string
	Purpose            string
	ImageURL           string
	TermsURL           string

	// ReadOnly 由链上元数据派生，仅用于展示
	ReadOnly bool
}

// NewFreezeForm 创建新的冻结草稿：24 小时后到期、非独占、供应量 1
func NewFreezeForm(now time.Time, imageURL string) *FreezeForm {
	expiry := now.UTC().Add(24 * time.Hour)
	return &FreezeForm{
		ExpiryDate:         expiry.Format(dateLayout),
		ExpiryTime:         expiry.Format(timeLayout),
		IsExclusive:        false,
		MaxISupply:         "1",
		CirculatingISupply: "1",
		ImageURL:           imageURL,
	}
}

// FreezeFormFromMetadata 从链上元数据派生只读表单
func FreezeFormFromMetadata(m *Metadata) *FreezeForm {
	if m == nil {
		return nil
	}
	expiry := time.Unix(m.ExpiryUnix(), 0).UTC()
	return &FreezeForm{
		ExpiryDate:         expiry.Format(dateLayout),
		ExpiryTime:         expiry.Format(timeLayout),
		IsExclusive:        m.IsExclusive,
		MaxISupply:         strconv.FormatUint(m.MaxISupply, 10),
		CirculatingISupply: strconv.FormatUint(m.CirculatingISupply, 10),
		SerialNumber:       strconv.FormatUint(m.SerialNumber, 10),
		Purpose:            m.Purpose,
		ImageURL:           unescapeURL(m.ImageURL),
		TermsURL:           unescapeURL(m.TermsURL),
		ReadOnly:           true,
	}
}

// FieldValue 实现 Form
func (f *FreezeForm) FieldValue(name string) (string, bool) {
	switch name {
	case FieldExpiryDate:
		return f.ExpiryDate, true
	case FieldExpiryTime:
		return f.ExpiryTime, true
	case FieldIsExclusive:
		return strconv.FormatBool(f.IsExclusive), true
	case FieldMaxISupply:
		return f.MaxISupply, true
	case FieldPurpose:
		return f.Purpose, true
	case FieldImageURL:
		return f.ImageURL, true
	case FieldTermsURL:
		return f.TermsURL, true
	}
	return "", false
}

// Clone 返回副本
func (f *FreezeForm) Clone() *FreezeForm {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// Expiry 返回到期时间（UTC）
func (f *FreezeForm) Expiry() (time.Time, error) {
	return parseExpiry(f.ExpiryDate, f.ExpiryTime)
}

// Params 将表单转换为链上调用参数
//
// 独占冻结的供应量固定为 1。
func (f *FreezeForm) Params() (FreezeParams, error) {
	expiry, err := f.Expiry()
	if err != nil {
		return FreezeParams{}, err
	}

	supply := uint64(1)
	if !f.IsExclusive {
		supply, err = strconv.ParseUint(strings.TrimSpace(f.MaxISupply), 10, 64)
		if err != nil || supply == 0 {
			return FreezeParams{}, fmt.Errorf("invalid %s: %q", FieldMaxISupply, f.MaxISupply)
		}
	}

	terms := f.TermsURL
	if terms == "" {
		terms = defaultTermsURL
	}

	return FreezeParams{
		Expiry:      expiry.Unix(),
		IsExclusive: f.IsExclusive,
		MaxISupply:  supply,
		Purpose:     f.Purpose,
		ImageURL:    EscapeURL(f.ImageURL),
		TermsURL:    EscapeURL(terms),
	}, nil
}

// FreezeParams 冻结类操作的链上参数
type FreezeParams struct {
	Expiry      int64 // UTC 秒
	IsExclusive bool
	MaxISupply  uint64
	Purpose     string
	ImageURL    string // 已转义
	TermsURL    string // 已转义
}

// TransferForm 转让表单
type TransferForm struct {
	To    string
	Owner string
}

// FieldValue 实现 Form
func (f *TransferForm) FieldValue(name string) (string, bool) {
	switch name {
	case FieldTo:
		return f.To, true
	case FieldOwner:
		return f.Owner, true
	}
	return "", false
}

// EscapeURL 将 '/' 替换为 '|'，链上记录中的 URL 均为转义形式
func EscapeURL(u string) string {
	return strings.ReplaceAll(u, "/", "|")
}

func unescapeURL(u string) string {
	return strings.ReplaceAll(u, "|", "/")
}

func parseExpiry(date, clock string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q", FieldExpiryDate, date)
	}
	c, err := time.ParseInLocation(timeLayout, strings.TrimSpace(clock), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q", FieldExpiryTime, clock)
	}
	return d.Add(time.Duration(c.Hour())*time.Hour + time.Duration(c.Minute())*time.Minute), nil
}
