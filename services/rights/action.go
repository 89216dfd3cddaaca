package rights

import "fmt"

// Action 链上操作种类（封闭枚举）
//
// 可用性、错误信息、按钮文案和交易说明都以 Action 为键，
// 新增种类时需要同步更新 actionNames 与 i18n 表。
type Action int

const (
	// ActionNone 无操作（零值）
	ActionNone Action = iota
	// ActionApprove 授权 RightsDao 转移 NFT（独占冻结的前置步骤）
	ActionApprove
	// ActionFreeze 独占冻结
	ActionFreeze
	// ActionIssueUnencumberedI 非独占冻结并直接发行 IRight
	ActionIssueUnencumberedI
	// ActionUnfreeze 解冻
	ActionUnfreeze
	// ActionIssueI 基于 FRight 发行 IRight
	ActionIssueI
	// ActionRevokeI 撤销 IRight
	ActionRevokeI
	// ActionTransfer 转让 IRight
	ActionTransfer
)

var actionNames = [...]string{
	ActionNone:               "",
	ActionApprove:            "approve",
	ActionFreeze:             "freeze",
	ActionIssueUnencumberedI: "issueUnencumberedI",
	ActionUnfreeze:           "unfreeze",
	ActionIssueI:             "issueI",
	ActionRevokeI:            "revokeI",
	ActionTransfer:           "transfer",
}

// Actions 返回全部有效操作（按声明顺序）
func Actions() []Action {
	return []Action{
		ActionApprove,
		ActionFreeze,
		ActionIssueUnencumberedI,
		ActionUnfreeze,
		ActionIssueI,
		ActionRevokeI,
		ActionTransfer,
	}
}

// String 返回操作名
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// Valid 是否为有效操作
func (a Action) Valid() bool {
	return a > ActionNone && int(a) < len(actionNames)
}

// Key 返回可用性表中的键
//
// issueUnencumberedI 与 freeze 共用同一个按钮，可用性记录在 freeze 下。
func (a Action) Key() Action {
	if a == ActionIssueUnencumberedI {
		return ActionFreeze
	}
	return a
}

// MarshalText 实现 encoding.TextMarshaler，使 Action 可作为 JSON map 键
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action: %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction 解析操作名
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n != "" && n == name {
			return Action(i), nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action: %q", name)
}
