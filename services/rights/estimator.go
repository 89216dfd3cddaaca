package rights

import (
	"context"
	"fmt"

	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/types"
	"github.com/rightshare/client-sdk-go/utils"
)

const (
	// Unavailable 可用性哨兵值：账本拒绝了预演
	Unavailable int64 = -1
	// Pending 可用性占位值：估算进行中
	Pending int64 = 0

	// GasLimit 单笔交易 gas 上限，达到该值的估算视为昂贵
	GasLimit = 5_000_000

	defaultGlobalError = "Something went wrong"
)

// Round 一轮估算的结果
//
// Availability 包含本轮所有操作的键；Errors 只包含被账本拒绝的操作。
type Round struct {
	Availability map[Action]int64
	Errors       map[Action]string
	// Global 无法归属到具体操作的错误
	Global string
}

// Keys 返回本轮涉及的键
func (r *Round) Keys() []Action {
	keys := make([]Action, 0, len(r.Availability))
	for _, a := range Actions() {
		if _, ok := r.Availability[a]; ok {
			keys = append(keys, a)
		}
	}
	return keys
}

// Only 返回仅包含指定键的子集，全局错误保留
func (r *Round) Only(keys []Action) *Round {
	sub := &Round{
		Availability: make(map[Action]int64, len(keys)),
		Errors:       make(map[Action]string),
		Global:       r.Global,
	}
	for _, k := range keys {
		if v, ok := r.Availability[k]; ok {
			sub.Availability[k] = v
		}
		if msg, ok := r.Errors[k]; ok {
			sub.Errors[k] = msg
		}
	}
	return sub
}

// Estimator 并发估算器
type Estimator struct {
	labels      Labeler
	logger      client.Logger
	concurrency int
}

// EstimatorOption 估算器选项
type EstimatorOption func(*Estimator)

// WithEstimatorLogger 设置日志
func WithEstimatorLogger(logger client.Logger) EstimatorOption {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConcurrency 限制同一轮的并发调用数，<= 0 表示不限制
func WithConcurrency(n int) EstimatorOption {
	return func(e *Estimator) {
		e.concurrency = n
	}
}

// NewEstimator 创建估算器
func NewEstimator(labels Labeler, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		labels: labels,
		logger: client.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EstimateGas 并发估算所有操作
//
// 单个估算失败不会中断其他估算，本轮在全部调用结束后返回。
// 仅当 ctx 结束时返回错误。
func (e *Estimator) EstimateGas(ctx context.Context, descriptors []ActionDescriptor) (*Round, error) {
	round := &Round{
		Availability: make(map[Action]int64, len(descriptors)),
		Errors:       make(map[Action]string),
	}
	if len(descriptors) == 0 {
		return round, nil
	}

	result, err := utils.BatchQuery(ctx, descriptors,
		func(ctx context.Context, d ActionDescriptor, _ int) (int64, error) {
			return d.Operation.Estimate(ctx)
		},
		&utils.BatchConfig{Concurrency: e.concurrency},
	)
	if err != nil {
		return nil, fmt.Errorf("estimate gas failed: %w", err)
	}

	for i, d := range descriptors {
		if result.Succeeded(i) {
			round.Availability[d.Action] = NormalizeGas(result.Results[i])
		}
	}
	for _, be := range result.Errors {
		d := descriptors[be.Index]
		round.Availability[d.Action] = Unavailable

		msg, global := ClassifyEstimateError(e.label(d.Action), d.Action, be.Error)
		if global {
			e.logger.Warn("Estimate failed without ledger code", "action", d.Action.String(), "error", be.Error)
			round.Global = msg
			continue
		}
		e.logger.Debug("Estimate rejected by ledger", "action", d.Action.String(), "error", be.Error)
		round.Errors[d.Action] = msg
	}

	return round, nil
}

func (e *Estimator) label(a Action) string {
	if e.labels == nil {
		return a.String()
	}
	return e.labels.Label(a)
}

// NormalizeGas 任何 <= 0 的估算值都归一为 Unavailable
func NormalizeGas(v int64) int64 {
	if v <= 0 {
		return Unavailable
	}
	return v
}

// ClassifyEstimateError 将估算错误转换为展示文案
//
// 带 Code 的账本拒绝归属到具体操作，global 为 false；其余错误为全局错误。
func ClassifyEstimateError(label string, action Action, err error) (msg string, global bool) {
	le, ok := types.IsLedgerError(err)
	if !ok || !le.Structured() {
		var msg string
		switch {
		case ok:
			msg = le.Message
		case err != nil:
			msg = err.Error()
		}
		if msg == "" {
			msg = defaultGlobalError
		}
		return msg, true
	}

	if (action == ActionFreeze || action == ActionTransfer) && (le.Arg != "" || le.Reason != "") {
		return fmt.Sprintf("%s cannot be performed on this NFT.\n(%s: \"%s\" %s)", label, le.Code, le.Arg, le.Reason), false
	}
	return fmt.Sprintf("%s cannot be performed on this NFT.\n(%s: %s)", label, le.Code, le.Message), false
}
