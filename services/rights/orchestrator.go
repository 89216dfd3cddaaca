package rights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rightshare/client-sdk-go/client"
)

// Lifecycle 交易提交状态机
//
//	idle -> awaiting-signature -> awaiting-confirmation -> confirmed
//	                 |                      |
//	                 +--------> failed <----+
type Lifecycle int

const (
	LifecycleIdle Lifecycle = iota
	LifecycleAwaitingSignature
	LifecycleAwaitingConfirmation
	LifecycleConfirmed
	LifecycleFailed
)

// 状态文案
const (
	StatusAwaitingSignature    = "Waiting for sign transaction..."
	StatusAwaitingConfirmation = "Waiting for confirmation..."
	StatusConfirmed            = "Transaction confirmed!"
	StatusFailed               = "Transaction failed or declined!"
)

// DefaultSettleDelay 确认后延迟返回，保证成功提示可见
const DefaultSettleDelay = 100 * time.Millisecond

// String 返回状态名
func (l Lifecycle) String() string {
	switch l {
	case LifecycleIdle:
		return "idle"
	case LifecycleAwaitingSignature:
		return "awaiting-signature"
	case LifecycleAwaitingConfirmation:
		return "awaiting-confirmation"
	case LifecycleConfirmed:
		return "confirmed"
	case LifecycleFailed:
		return "failed"
	}
	return fmt.Sprintf("Lifecycle(%d)", int(l))
}

// Status 返回状态对应的展示文案
func (l Lifecycle) Status() string {
	switch l {
	case LifecycleAwaitingSignature:
		return StatusAwaitingSignature
	case LifecycleAwaitingConfirmation:
		return StatusAwaitingConfirmation
	case LifecycleConfirmed:
		return StatusConfirmed
	case LifecycleFailed:
		return StatusFailed
	}
	return ""
}

// Terminal 是否为终止状态
func (l Lifecycle) Terminal() bool {
	return l == LifecycleConfirmed || l == LifecycleFailed
}

// ErrNoTerminalEvent 事件通道在终止事件之前关闭
var ErrNoTerminalEvent = errors.New("submission ended without receipt or error")

// SubmissionError 提交失败
type SubmissionError struct {
	Action Action
	Hash   string // 广播前失败时为空
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Hash != "" {
		return fmt.Sprintf("%s transaction %s failed: %v", e.Action, e.Hash, e.Err)
	}
	return fmt.Sprintf("%s transaction failed: %v", e.Action, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Progress 提交进度通知
type Progress struct {
	SubmissionID uuid.UUID
	Action       Action
	State        Lifecycle
	Status       string
	Hash         string
	Narration    Narration
}

// ProgressFunc 进度回调，在提交 goroutine 中同步调用
type ProgressFunc func(Progress)

// Orchestrator 交易编排器
//
// 一次 Submit 对应一笔交易；同一时间只允许一笔由调用方（Session）保证。
// 编排器本身不做重试。
type Orchestrator struct {
	narrator    Narrator
	logger      client.Logger
	settleDelay time.Duration
}

// OrchestratorOption 编排器选项
type OrchestratorOption func(*Orchestrator)

// WithOrchestratorLogger 设置日志
func WithOrchestratorLogger(logger client.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSettleDelay 设置确认后的延迟
func WithSettleDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.settleDelay = d
		}
	}
}

// NewOrchestrator 创建编排器
func NewOrchestrator(narrator Narrator, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		narrator:    narrator,
		logger:      client.NopLogger(),
		settleDelay: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit 提交一笔交易并等待终止事件
//
// 先生成交易说明并进入 awaiting-signature，再调用 Send 消费事件。
// hash 进入 awaiting-confirmation；receipt 进入 confirmed，延迟
// settleDelay 后返回回执；error 进入 failed 并返回 *SubmissionError。
//
// 每类事件只处理第一次；终止事件之后的事件被忽略。
func (o *Orchestrator) Submit(ctx context.Context, op Operation, action Action, onProgress ProgressFunc, args ...string) (*Receipt, error) {
	// 1. 交易说明
	var narration Narration
	if o.narrator != nil {
		narration = o.narrator.Narrate(action, args...)
	}

	p := Progress{
		SubmissionID: uuid.New(),
		Action:       action,
		Narration:    narration,
	}
	emit := func(state Lifecycle) {
		p.State = state
		p.Status = state.Status()
		if onProgress != nil {
			onProgress(p)
		}
	}

	// 2. 等待签名
	emit(LifecycleAwaitingSignature)
	o.logger.Info("Submitting transaction", "action", action.String(), "submission", p.SubmissionID.String())

	// 3. 消费事件
	events := op.Send(ctx)
	for {
		select {
		case <-ctx.Done():
			emit(LifecycleFailed)
			return nil, &SubmissionError{Action: action, Hash: p.Hash, Err: ctx.Err()}

		case ev, ok := <-events:
			if !ok {
				cause := ErrNoTerminalEvent
				if err := ctx.Err(); err != nil {
					cause = err
				}
				emit(LifecycleFailed)
				return nil, &SubmissionError{Action: action, Hash: p.Hash, Err: cause}
			}

			switch ev.Kind {
			case EventHash:
				if p.Hash != "" {
					continue
				}
				p.Hash = ev.Hash
				o.logger.Info("Transaction broadcast", "action", action.String(), "hash", ev.Hash)
				emit(LifecycleAwaitingConfirmation)

			case EventReceipt:
				receipt := ev.Receipt
				if receipt == nil {
					receipt = &Receipt{TxHash: p.Hash}
				}
				if p.Hash == "" {
					p.Hash = receipt.TxHash
				}
				o.logger.Info("Transaction confirmed", "action", action.String(), "hash", p.Hash, "block", receipt.BlockNumber)
				emit(LifecycleConfirmed)
				o.settle(ctx)
				return receipt, nil

			case EventError:
				err := ev.Err
				if err == nil {
					err = errors.New("unknown submission error")
				}
				o.logger.Warn("Transaction failed", "action", action.String(), "hash", p.Hash, "error", err)
				emit(LifecycleFailed)
				return nil, &SubmissionError{Action: action, Hash: p.Hash, Err: err}
			}
		}
	}
}

// settle 确认后等待 settleDelay；ctx 结束时提前返回，回执仍然有效
func (o *Orchestrator) settle(ctx context.Context) {
	if o.settleDelay <= 0 {
		return
	}
	timer := time.NewTimer(o.settleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
