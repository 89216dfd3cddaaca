package rights

import (
	"context"
)

// Operation 已绑定参数的链上操作
type Operation interface {
	// Estimate 预演操作并返回 gas 估算值
	//
	// 账本拒绝时返回 *types.LedgerError（带 Code）；
	// 其他错误视为传输层故障。
	Estimate(ctx context.Context) (int64, error)

	// Send 签名并广播交易
	//
	// 返回的通道依次产生至多一个 EventHash 与恰好一个终止事件
	// （EventReceipt 或 EventError），之后关闭。实现方在 ctx 结束后
	// 必须停止发送。
	Send(ctx context.Context) <-chan SubmissionEvent
}

// EventKind 提交事件类型
type EventKind int

const (
	// EventHash 交易已被签名并广播
	EventHash EventKind = iota + 1
	// EventReceipt 交易已上链确认
	EventReceipt
	// EventError 签名被拒、广播失败或链上回滚
	EventError
)

// String 返回事件名
func (k EventKind) String() string {
	switch k {
	case EventHash:
		return "hash"
	case EventReceipt:
		return "receipt"
	case EventError:
		return "error"
	}
	return "unknown"
}

// SubmissionEvent 提交生命周期事件
type SubmissionEvent struct {
	Kind    EventKind
	Hash    string
	Receipt *Receipt
	Err     error
}

// Receipt 交易回执
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
}

// Operations 链上操作绑定
//
// 每个方法只绑定参数，不发起网络调用。
type Operations interface {
	// Approve NFT.approve(RightsDao, tokenId)
	Approve(asset *Asset) Operation
	// Freeze RightsDao.freeze
	Freeze(asset *Asset, params FreezeParams) Operation
	// IssueUnencumberedI RightsDao.issueUnencumberedI
	IssueUnencumberedI(asset *Asset, params FreezeParams) Operation
	// Unfreeze RightsDao.unfreeze
	Unfreeze(asset *Asset) Operation
	// IssueI RightsDao.issueI
	IssueI(asset *Asset) Operation
	// RevokeI RightsDao.revokeI
	RevokeI(asset *Asset) Operation
	// Transfer IRight.transferFrom(owner, to, tokenId)
	Transfer(asset *Asset, to string) Operation
}

// Reloader 成功的变更操作后重新加载资产
type Reloader interface {
	// Reload hint 为触发重载的操作提示，例如 "freeze"；可为空
	Reload(ctx context.Context, hint string) error
}

// ReloaderFunc 函数适配器
type ReloaderFunc func(ctx context.Context, hint string) error

// Reload 实现 Reloader
func (f ReloaderFunc) Reload(ctx context.Context, hint string) error {
	return f(ctx, hint)
}

// ImageShortener 图片链接缩短服务
type ImageShortener interface {
	Shorten(ctx context.Context, url string) (string, error)
}

// Labeler 操作按钮文案
type Labeler interface {
	Label(action Action) string
}

// Narration 交易说明：标题加若干详情行
type Narration struct {
	Title string
	Lines []string
}

// Narrator 操作文案与交易说明
type Narrator interface {
	Labeler
	// Narrate args 为说明中的位置参数（例如转让目标地址）
	Narrate(action Action, args ...string) Narration
}
