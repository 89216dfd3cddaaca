package rights

import (
	"fmt"
)

// TxErrors 估算错误
type TxErrors struct {
	// Global 无法归属到具体操作的错误
	Global string
	// Actions 按操作记录的账本拒绝原因
	Actions map[Action]string
}

// State 可用性快照
//
// State 是值类型：Reduce 返回新值，不修改输入。
type State struct {
	// Availability 缺失表示未估算，0 表示估算中，>0 为 gas，-1 为不可用
	Availability map[Action]int64
	Errors       TxErrors
	FieldErrors  FieldErrors

	// InFlight 正在提交的操作，ActionNone 表示空闲
	InFlight  Action
	Lifecycle Lifecycle
	Status    string
	Hash      string
	Narration Narration
}

// Update 状态更新
type Update interface {
	apply(s *State)
}

// RoundStarted 新一轮估算开始：相关键置为估算中并清空全局错误
type RoundStarted struct {
	Keys []Action
}

// RoundCompleted 一轮估算完成：只合并本轮的键
type RoundCompleted struct {
	Round *Round
}

// RoundFailed 整轮估算失败（非单个操作级别）
type RoundFailed struct {
	Keys []Action
	Err  error
}

// Invalidated 清除可用性（表单编辑、资产切换）
//
// All 为 true 时清空整个可用性表与错误。
type Invalidated struct {
	Keys []Action
	All  bool
}

// ApprovalConfirmed 授权成功：approve 置为 0 以便立即进行冻结
type ApprovalConfirmed struct{}

// SubmissionStarted 提交开始，设置在途标记
type SubmissionStarted struct {
	Action Action
}

// ProgressUpdated 提交进度
type ProgressUpdated struct {
	Progress Progress
}

// SubmissionFinished 提交结束（成功或失败），释放在途标记
type SubmissionFinished struct {
	Action Action
}

// FieldErrorsSet 设置表单字段错误，nil 表示清空
type FieldErrorsSet struct {
	Errors FieldErrors
}

func (u RoundStarted) apply(s *State) {
	for _, k := range u.Keys {
		s.Availability[k] = Pending
	}
	s.Errors.Global = ""
}

func (u RoundCompleted) apply(s *State) {
	if u.Round == nil {
		return
	}
	for k, v := range u.Round.Availability {
		s.Availability[k] = v
	}
	for k, msg := range u.Round.Errors {
		s.Errors.Actions[k] = msg
	}
	if u.Round.Global != "" {
		s.Errors.Global = u.Round.Global
	}
}

func (u RoundFailed) apply(s *State) {
	msg := defaultGlobalError
	if u.Err != nil && u.Err.Error() != "" {
		msg = u.Err.Error()
	}
	s.Errors.Global = msg
}

func (u Invalidated) apply(s *State) {
	if u.All {
		s.Availability = make(map[Action]int64)
		s.Errors = TxErrors{Actions: make(map[Action]string)}
		return
	}
	for _, k := range u.Keys {
		s.Availability[k] = Pending
	}
}

func (ApprovalConfirmed) apply(s *State) {
	s.Availability[ActionApprove] = Pending
}

func (u SubmissionStarted) apply(s *State) {
	s.InFlight = u.Action
	s.Lifecycle = LifecycleIdle
	s.Status = ""
	s.Hash = ""
	s.Narration = Narration{}
}

func (u ProgressUpdated) apply(s *State) {
	if s.InFlight == ActionNone {
		return
	}
	s.Lifecycle = u.Progress.State
	s.Status = u.Progress.Status
	s.Hash = u.Progress.Hash
	s.Narration = u.Progress.Narration
}

func (u SubmissionFinished) apply(s *State) {
	if s.InFlight != u.Action {
		return
	}
	s.InFlight = ActionNone
	s.Lifecycle = LifecycleIdle
	s.Status = ""
	s.Narration = Narration{}
}

func (u FieldErrorsSet) apply(s *State) {
	s.FieldErrors = u.Errors
}

// NewState 返回空状态
func NewState() State {
	return State{
		Availability: make(map[Action]int64),
		Errors:       TxErrors{Actions: make(map[Action]string)},
	}
}

// Reduce 应用更新并返回新状态
func Reduce(s State, u Update) State {
	next := s.Clone()
	u.apply(&next)
	return next
}

// Clone 深拷贝
func (s State) Clone() State {
	c := s
	c.Availability = make(map[Action]int64, len(s.Availability))
	for k, v := range s.Availability {
		c.Availability[k] = v
	}
	c.Errors.Actions = make(map[Action]string, len(s.Errors.Actions))
	for k, v := range s.Errors.Actions {
		c.Errors.Actions[k] = v
	}
	if s.FieldErrors != nil {
		c.FieldErrors = make(FieldErrors, len(s.FieldErrors))
		for k, v := range s.FieldErrors {
			c.FieldErrors[k] = v
		}
	}
	if s.Narration.Lines != nil {
		c.Narration.Lines = append([]string(nil), s.Narration.Lines...)
	}
	return c
}

// Busy 是否有交易在途
func (s State) Busy() bool {
	return s.InFlight != ActionNone
}

// Gas 返回可用性值及是否已估算
func (s State) Gas(a Action) (int64, bool) {
	v, ok := s.Availability[a.Key()]
	return v, ok
}

// Enabled 操作按钮是否可点击：无在途交易且未被标记为不可用
func (s State) Enabled(a Action) bool {
	if s.Busy() {
		return false
	}
	v, _ := s.Gas(a)
	return v != Unavailable
}

// NeedsApproval 独占冻结在授权确认前需要先 approve
func (s State) NeedsApproval(form *FreezeForm) bool {
	if form == nil || !form.IsExclusive {
		return false
	}
	v, ok := s.Availability[ActionApprove]
	return !ok || v != Pending
}

// Tooltip 返回 gas 提示文案
func (s State) Tooltip(a Action) string {
	v, _ := s.Gas(a)
	if s.Errors.Global != "" || v == Unavailable {
		return "Not available"
	}
	if v == Pending {
		return "Estimated gas cost: ..."
	}
	return fmt.Sprintf("Estimated gas cost: %d", v)
}

// ErrorFor 返回操作的错误说明（全局错误优先）
func (s State) ErrorFor(a Action) string {
	if s.Errors.Global != "" {
		return s.Errors.Global
	}
	v, _ := s.Gas(a)
	if v != Unavailable {
		return ""
	}
	return s.Errors.Actions[a.Key()]
}

// Tone gas 提示的色调
type Tone int

const (
	ToneOK Tone = iota
	TonePending
	ToneExpensive
	ToneUnavailable
)

// String 返回色调名
func (t Tone) String() string {
	switch t {
	case ToneOK:
		return "ok"
	case TonePending:
		return "pending"
	case ToneExpensive:
		return "expensive"
	case ToneUnavailable:
		return "unavailable"
	}
	return fmt.Sprintf("Tone(%d)", int(t))
}

// Tone 返回操作的提示色调
func (s State) Tone(a Action) Tone {
	v, _ := s.Gas(a)
	switch {
	case s.Errors.Global != "" || v == Unavailable:
		return ToneUnavailable
	case v == Pending:
		return TonePending
	case v >= GasLimit:
		return ToneExpensive
	}
	return ToneOK
}
