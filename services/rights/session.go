package rights

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rightshare/client-sdk-go/client"
)

var (
	// ErrNoAsset 未选择资产
	ErrNoAsset = errors.New("no asset selected")
	// ErrSubmissionInFlight 已有交易在途
	ErrSubmissionInFlight = errors.New("another transaction is in flight")
	// ErrActionDisabled 操作不适用或已被标记为不可用
	ErrActionDisabled = errors.New("action is not available")
	// ErrApprovalRequired 独占冻结需要先完成 approve
	ErrApprovalRequired = errors.New("approve is required before an exclusive freeze")
	// ErrFormOpened 表单刚刚打开，填写后再次提交
	ErrFormOpened = errors.New("form opened, fill it in and submit again")
)

// SessionConfig 会话配置
type SessionConfig struct {
	// Operations 链上操作绑定（必填）
	Operations Operations
	// Reloader 成功变更后的重载回调（可选）
	Reloader Reloader
	// Shortener 冻结前缩短图片链接（可选）
	Shortener ImageShortener
	// Narrator 文案与交易说明（可选，缺省使用操作名）
	Narrator Narrator
	// Logger 日志（可选）
	Logger client.Logger
	// Validator 表单校验器（可选）
	Validator *Validator
	// Estimator / Orchestrator 可选，缺省按 Narrator 与 Logger 创建
	Estimator    *Estimator
	Orchestrator *Orchestrator
	// TemplateImage 新建冻结表单的默认图片
	TemplateImage string
	// OnChange 状态变化回调，按顺序串行调用且不持有会话锁；回调内可以
	// 调用只读方法，但不得调用变更方法或 Wait
	OnChange func(State)
}

// Session 单个资产详情页的编排会话
//
// 负责把表单编辑、估算轮次与交易提交归并到一个 State。
// 所有方法都可以并发调用。
type Session struct {
	mu sync.Mutex

	ops          Operations
	reloader     Reloader
	shortener    ImageShortener
	validator    *Validator
	estimator    *Estimator
	orchestrator *Orchestrator
	logger       client.Logger
	template     string
	onChange     func(State)

	state        State
	dirty        bool
	asset        *Asset
	freezeForm   *FreezeForm
	transferForm *TransferForm

	// gen 每个键的估算代次，过期轮次的结果被丢弃
	gen    map[Action]uint64
	rounds sync.WaitGroup

	// 待推送的快照队列，同一时刻只有一个 goroutine 负责推送
	queue     []State
	queued    uint64
	delivered uint64
	notifying bool
	notified  *sync.Cond
}

// NewSession 创建会话
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Operations == nil {
		return nil, fmt.Errorf("operations are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = client.NopLogger()
	}
	narrator := cfg.Narrator
	if narrator == nil {
		narrator = plainNarrator{}
	}

	s := &Session{
		ops:          cfg.Operations,
		reloader:     cfg.Reloader,
		shortener:    cfg.Shortener,
		validator:    cfg.Validator,
		estimator:    cfg.Estimator,
		orchestrator: cfg.Orchestrator,
		logger:       logger,
		template:     cfg.TemplateImage,
		onChange:     cfg.OnChange,
		state:        NewState(),
		gen:          make(map[Action]uint64),
	}
	s.notified = sync.NewCond(&s.mu)
	if s.validator == nil {
		s.validator = NewValidator()
	}
	if s.estimator == nil {
		s.estimator = NewEstimator(narrator, WithEstimatorLogger(logger))
	}
	if s.orchestrator == nil {
		s.orchestrator = NewOrchestrator(narrator, WithOrchestratorLogger(logger))
	}
	return s, nil
}

// Snapshot 返回当前状态副本
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Asset 返回当前资产
func (s *Session) Asset() *Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asset
}

// FreezeForm 返回当前冻结表单副本
func (s *Session) FreezeForm() *FreezeForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.freezeForm.Clone()
}

// TransferForm 返回当前转让表单副本
func (s *Session) TransferForm() *TransferForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transferForm == nil {
		return nil
	}
	f := *s.transferForm
	return &f
}

// CanClose 有交易在途时不允许关闭
func (s *Session) CanClose() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.state.Busy()
}

// Wait 等待所有已发起的估算轮次结束
func (s *Session) Wait() {
	s.rounds.Wait()
}

// SetAsset 切换资产并重新估算
//
// 资产带元数据时冻结表单由元数据派生（只读）；可冻结的普通资产
// 初始化一份新草稿。转让表单关闭。
func (s *Session) SetAsset(ctx context.Context, asset *Asset) {
	s.mu.Lock()
	s.asset = asset
	s.transferForm = nil
	s.freezeForm = nil
	if asset != nil {
		if asset.Metadata != nil {
			s.freezeForm = FreezeFormFromMetadata(asset.Metadata)
		} else if asset.Freezable() {
			s.freezeForm = NewFreezeForm(s.validator.now(), s.template)
		}
	}

	for _, a := range Actions() {
		s.gen[a]++
	}
	s.reduceLocked(Invalidated{All: true}, FieldErrorsSet{})

	if asset != nil && !asset.Unavailable() {
		s.startRoundLocked(ctx, Catalog(asset, s.freezeForm, s.ops))
		s.estimateFreezeLocked(ctx)
	}
	s.unlockAndNotify()
}

// SetFreezeForm 编辑冻结表单
//
// freeze 的可用性先同步置为估算中，再发起新一轮估算。
func (s *Session) SetFreezeForm(ctx context.Context, form *FreezeForm) {
	s.mu.Lock()
	if s.state.FieldErrors != nil {
		s.reduceLocked(FieldErrorsSet{})
	}
	s.freezeForm = form.Clone()
	s.estimateFreezeLocked(ctx)
	s.unlockAndNotify()
}

// SetTransferForm 编辑转让表单，nil 表示关闭
func (s *Session) SetTransferForm(ctx context.Context, form *TransferForm) {
	s.mu.Lock()
	if s.state.FieldErrors != nil {
		s.reduceLocked(FieldErrorsSet{})
	}
	s.transferForm = nil
	if form != nil {
		f := *form
		if f.Owner == "" && s.asset != nil {
			f.Owner = s.asset.Owner
		}
		s.transferForm = &f
	}
	s.estimateTransferLocked(ctx)
	s.unlockAndNotify()
}

// Approve 授权 RightsDao；成功后 approve 置为 0，不触发重载
func (s *Session) Approve(ctx context.Context) (*Receipt, error) {
	return s.run(ctx, ActionApprove,
		func(asset *Asset) (ActionDescriptor, []string, error) {
			return ApproveDescriptor(asset, s.ops), nil, nil
		},
		func(ctx context.Context) error {
			s.mu.Lock()
			s.reduceLocked(ApprovalConfirmed{})
			s.estimateFreezeLocked(ctx)
			s.unlockAndNotify()
			return nil
		},
	)
}

// Freeze 提交冻结表单
//
// 表单未打开时创建默认草稿并返回 ErrFormOpened。非独占表单实际
// 调用 issueUnencumberedI。成功后以 "freeze" 为提示重载资产。
func (s *Session) Freeze(ctx context.Context) (*Receipt, error) {
	// 1. 表单检查
	s.mu.Lock()
	if s.asset == nil {
		s.mu.Unlock()
		return nil, ErrNoAsset
	}
	if s.freezeForm == nil {
		s.freezeForm = NewFreezeForm(s.validator.now(), s.template)
		s.estimateFreezeLocked(ctx)
		s.unlockAndNotify()
		return nil, ErrFormOpened
	}
	form := s.freezeForm.Clone()
	if ok, errs := s.validator.Validate(form, freezeFields...); !ok {
		s.reduceLocked(FieldErrorsSet{Errors: errs})
		s.unlockAndNotify()
		return nil, errs
	}
	if s.state.NeedsApproval(form) {
		s.mu.Unlock()
		return nil, ErrApprovalRequired
	}
	s.mu.Unlock()

	// 2. 缩短图片链接
	if s.shortener != nil && form.ImageURL != "" {
		short, err := s.shortener.Shorten(ctx, form.ImageURL)
		if err != nil {
			s.logger.Warn("Shorten image url failed", "url", form.ImageURL, "error", err)
			return nil, fmt.Errorf("shorten image url failed: %w", err)
		}
		form.ImageURL = short
	}

	// 3. 提交
	return s.run(ctx, ActionFreeze,
		func(asset *Asset) (ActionDescriptor, []string, error) {
			d, err := FreezeDescriptor(asset, form, s.ops)
			return d, nil, err
		},
		s.reload("freeze"),
	)
}

// Unfreeze 解冻
func (s *Session) Unfreeze(ctx context.Context) (*Receipt, error) {
	return s.run(ctx, ActionUnfreeze, s.bind(ActionUnfreeze, s.ops.Unfreeze), s.reload(""))
}

// IssueI 发行 IRight
func (s *Session) IssueI(ctx context.Context) (*Receipt, error) {
	return s.run(ctx, ActionIssueI, s.bind(ActionIssueI, s.ops.IssueI), s.reload(""))
}

// RevokeI 撤销 IRight
func (s *Session) RevokeI(ctx context.Context) (*Receipt, error) {
	return s.run(ctx, ActionRevokeI, s.bind(ActionRevokeI, s.ops.RevokeI), s.reload(""))
}

// Transfer 提交转让表单
//
// 表单未打开时打开空表单并返回 ErrFormOpened；目标地址不合法时
// 返回 FieldErrors，不发起任何链上调用。
func (s *Session) Transfer(ctx context.Context) (*Receipt, error) {
	s.mu.Lock()
	if s.asset == nil {
		s.mu.Unlock()
		return nil, ErrNoAsset
	}
	if s.transferForm == nil {
		s.transferForm = &TransferForm{Owner: s.asset.Owner}
		s.estimateTransferLocked(ctx)
		s.unlockAndNotify()
		return nil, ErrFormOpened
	}
	form := *s.transferForm
	if ok, errs := s.validator.Validate(&form, FieldTo); !ok {
		s.reduceLocked(FieldErrorsSet{Errors: errs})
		s.unlockAndNotify()
		return nil, errs
	}
	s.mu.Unlock()

	return s.run(ctx, ActionTransfer,
		func(asset *Asset) (ActionDescriptor, []string, error) {
			return TransferDescriptor(asset, &form, s.ops), []string{form.To}, nil
		},
		s.reload(""),
	)
}

// prepareFunc 在持锁状态下绑定操作
type prepareFunc func(asset *Asset) (ActionDescriptor, []string, error)

func (s *Session) bind(action Action, fn func(*Asset) Operation) prepareFunc {
	return func(asset *Asset) (ActionDescriptor, []string, error) {
		return describe(action, fn(asset)), nil, nil
	}
}

func (s *Session) reload(hint string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if s.reloader == nil {
			return nil
		}
		return s.reloader.Reload(ctx, hint)
	}
}

// run 检查门禁、设置在途标记并提交
//
// 在途标记在任何退出路径上都恰好释放一次。
func (s *Session) run(ctx context.Context, action Action, prepare prepareFunc, onSuccess func(ctx context.Context) error) (receipt *Receipt, err error) {
	// 1. 门禁
	s.mu.Lock()
	asset := s.asset
	switch {
	case asset == nil:
		s.mu.Unlock()
		return nil, ErrNoAsset
	case s.state.Busy():
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case !Applicable(action, asset, s.freezeForm) || !s.state.Enabled(action):
		s.mu.Unlock()
		return nil, ErrActionDisabled
	}

	desc, args, err := prepare(asset)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.reduceLocked(SubmissionStarted{Action: action})
	s.unlockAndNotify()

	// 2. 释放在途标记
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Submission panicked", "action", action.String(), "panic", r)
			receipt, err = nil, fmt.Errorf("%s submission panicked: %v", action, r)
		}
		s.dispatch(SubmissionFinished{Action: action})
	}()

	// 3. 提交
	receipt, err = s.orchestrator.Submit(ctx, desc.Operation, desc.Invokes, func(p Progress) {
		s.dispatch(ProgressUpdated{Progress: p})
	}, args...)
	if err != nil {
		s.logger.Warn("Submission failed", "action", action.String(), "error", err)
		return nil, err
	}

	// 4. 成功后的副作用
	if onSuccess != nil {
		if err := onSuccess(ctx); err != nil {
			s.logger.Error("Post-submission step failed", "action", action.String(), "error", err)
			return receipt, fmt.Errorf("reload after %s failed: %w", action, err)
		}
	}
	return receipt, nil
}

// estimateFreezeLocked 冻结表单变化后重新估算 freeze
func (s *Session) estimateFreezeLocked(ctx context.Context) {
	form := s.freezeForm
	if form == nil || s.asset == nil || !s.asset.Freezable() {
		return
	}
	s.invalidateLocked(ActionFreeze)

	if s.state.NeedsApproval(form) {
		return
	}
	if ok, _ := s.validator.Validate(form, freezeFields...); !ok {
		return
	}
	d, err := FreezeDescriptor(s.asset, form, s.ops)
	if err != nil {
		s.logger.Debug("Skip freeze estimate", "error", err)
		return
	}
	s.startRoundLocked(ctx, []ActionDescriptor{d})
}

// estimateTransferLocked 转让表单变化后重新估算 transfer
func (s *Session) estimateTransferLocked(ctx context.Context) {
	form := s.transferForm
	if form == nil || !Applicable(ActionTransfer, s.asset, s.freezeForm) {
		return
	}
	s.invalidateLocked(ActionTransfer)

	if ok, _ := s.validator.Validate(form, FieldTo); !ok {
		return
	}
	s.startRoundLocked(ctx, []ActionDescriptor{TransferDescriptor(s.asset, form, s.ops)})
}

func (s *Session) invalidateLocked(keys ...Action) {
	for _, k := range keys {
		s.gen[k]++
	}
	s.reduceLocked(Invalidated{Keys: keys})
}

// startRoundLocked 发起一轮估算，结果在后台合并
func (s *Session) startRoundLocked(ctx context.Context, descriptors []ActionDescriptor) {
	if len(descriptors) == 0 {
		return
	}

	keys := make([]Action, 0, len(descriptors))
	tokens := make(map[Action]uint64, len(descriptors))
	for _, d := range descriptors {
		s.gen[d.Action]++
		tokens[d.Action] = s.gen[d.Action]
		keys = append(keys, d.Action)
	}
	s.reduceLocked(RoundStarted{Keys: keys})

	s.rounds.Add(1)
	go func() {
		defer s.rounds.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Estimate round panicked", "panic", r)
			}
		}()

		round, err := s.estimator.EstimateGas(ctx, descriptors)

		s.mu.Lock()
		current := make([]Action, 0, len(keys))
		for _, k := range keys {
			if s.gen[k] == tokens[k] {
				current = append(current, k)
			}
		}
		if len(current) == 0 {
			s.mu.Unlock()
			return
		}
		if err != nil {
			s.logger.Warn("Estimate round failed", "error", err)
			s.reduceLocked(RoundFailed{Keys: current, Err: err})
		} else {
			s.reduceLocked(RoundCompleted{Round: round.Only(current)})
		}
		s.unlockAndNotify()
	}()
}

func (s *Session) reduceLocked(updates ...Update) {
	for _, u := range updates {
		s.state = Reduce(s.state, u)
	}
	s.dirty = true
}

// unlockAndNotify 把变化后的快照入队，释放锁并按顺序推送
//
// 回调执行期间不持有 mu。已有 goroutine 在推送时，调用方等到自己的
// 快照被推送后再返回。
func (s *Session) unlockAndNotify() {
	if s.dirty && s.onChange != nil {
		s.queue = append(s.queue, s.state.Clone())
		s.queued++
	}
	s.dirty = false
	mine := s.queued

	if s.notifying {
		for s.delivered < mine {
			s.notified.Wait()
		}
		s.mu.Unlock()
		return
	}

	s.notifying = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		s.deliver(next)
		s.mu.Lock()
		s.delivered++
		s.notified.Broadcast()
	}
	s.notifying = false
	s.mu.Unlock()
}

func (s *Session) deliver(state State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("State change callback panicked", "panic", r)
		}
	}()
	s.onChange(state)
}

func (s *Session) dispatch(updates ...Update) {
	s.mu.Lock()
	s.reduceLocked(updates...)
	s.unlockAndNotify()
}

// plainNarrator 未配置文案时使用操作名
type plainNarrator struct{}

func (plainNarrator) Label(a Action) string { return a.String() }

func (plainNarrator) Narrate(a Action, args ...string) Narration {
	return Narration{Title: a.String(), Lines: args}
}
