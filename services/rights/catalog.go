package rights

import "fmt"

// ActionDescriptor 可执行操作描述
type ActionDescriptor struct {
	// Action 可用性表中的键（按钮）
	Action Action
	// Invokes 实际调用的链上操作，与 Action 仅在冻结类操作上不同
	Invokes Action
	// Operation 已绑定参数的操作
	Operation Operation
}

// Catalog 根据资产状态列出静态可用的操作
//
// 冻结类操作和转让依赖当前打开的表单，分别由 FreezeDescriptor 与
// TransferDescriptor 生成。freezeForm 为 nil 时视为非独占。
func Catalog(asset *Asset, freezeForm *FreezeForm, ops Operations) []ActionDescriptor {
	if asset == nil {
		return nil
	}

	var descriptors []ActionDescriptor
	if asset.IsUnfreezable {
		descriptors = append(descriptors, describe(ActionUnfreeze, ops.Unfreeze(asset)))
	}
	if asset.IsIMintable && (freezeForm == nil || !freezeForm.IsExclusive) {
		descriptors = append(descriptors, describe(ActionIssueI, ops.IssueI(asset)))
	}
	if asset.Type == AssetIRight {
		descriptors = append(descriptors, describe(ActionRevokeI, ops.RevokeI(asset)))
	}
	return descriptors
}

// Applicable 判断操作对当前资产是否适用
func Applicable(action Action, asset *Asset, freezeForm *FreezeForm) bool {
	if asset == nil {
		return false
	}
	switch action {
	case ActionApprove, ActionFreeze, ActionIssueUnencumberedI:
		return asset.Freezable()
	case ActionUnfreeze:
		return asset.IsUnfreezable
	case ActionIssueI:
		return asset.IsIMintable && (freezeForm == nil || !freezeForm.IsExclusive)
	case ActionRevokeI, ActionTransfer:
		return asset.Type == AssetIRight
	}
	return false
}

// ResolveFreezeAction 非独占冻结实际调用 issueUnencumberedI
func ResolveFreezeAction(form *FreezeForm) Action {
	if form != nil && !form.IsExclusive {
		return ActionIssueUnencumberedI
	}
	return ActionFreeze
}

// FreezeDescriptor 根据冻结表单绑定冻结类操作
func FreezeDescriptor(asset *Asset, form *FreezeForm, ops Operations) (ActionDescriptor, error) {
	if form == nil {
		return ActionDescriptor{}, fmt.Errorf("freeze form is required")
	}
	params, err := form.Params()
	if err != nil {
		return ActionDescriptor{}, fmt.Errorf("build freeze params failed: %w", err)
	}

	invokes := ResolveFreezeAction(form)
	var op Operation
	if invokes == ActionIssueUnencumberedI {
		op = ops.IssueUnencumberedI(asset, params)
	} else {
		op = ops.Freeze(asset, params)
	}
	return ActionDescriptor{Action: ActionFreeze, Invokes: invokes, Operation: op}, nil
}

// TransferDescriptor 绑定转让操作
func TransferDescriptor(asset *Asset, form *TransferForm, ops Operations) ActionDescriptor {
	return describe(ActionTransfer, ops.Transfer(asset, form.To))
}

// ApproveDescriptor 绑定授权操作
func ApproveDescriptor(asset *Asset, ops Operations) ActionDescriptor {
	return describe(ActionApprove, ops.Approve(asset))
}

func describe(action Action, op Operation) ActionDescriptor {
	return ActionDescriptor{Action: action, Invokes: action, Operation: op}
}
