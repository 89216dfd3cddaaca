package rights

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeOperation 可编排的操作桩
type fakeOperation struct {
	gas    int64
	err    error
	events []SubmissionEvent
	// release 非 nil 时，Send 在发送 hash 之后等待它关闭再继续
	release chan struct{}
	// estimateBlock 非 nil 时，Estimate 等待它关闭后再返回
	estimateBlock chan struct{}
	// panics 为 true 时 Send 直接 panic
	panics bool

	estimates atomic.Int32
	sends     atomic.Int32
}

func (o *fakeOperation) Estimate(ctx context.Context) (int64, error) {
	o.estimates.Add(1)
	if o.estimateBlock != nil {
		select {
		case <-o.estimateBlock:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return o.gas, o.err
}

func (o *fakeOperation) Send(ctx context.Context) <-chan SubmissionEvent {
	o.sends.Add(1)
	if o.panics {
		panic("send exploded")
	}
	ch := make(chan SubmissionEvent, len(o.events))
	go func() {
		defer close(ch)
		for _, ev := range o.events {
			if ev.Kind != EventHash && o.release != nil {
				select {
				case <-o.release:
				case <-ctx.Done():
					return
				}
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func succeeding(hash string) []SubmissionEvent {
	return []SubmissionEvent{
		{Kind: EventHash, Hash: hash},
		{Kind: EventReceipt, Receipt: &Receipt{TxHash: hash, BlockNumber: 7, GasUsed: 21000}},
	}
}

func failing(hash string, err error) []SubmissionEvent {
	return []SubmissionEvent{
		{Kind: EventHash, Hash: hash},
		{Kind: EventError, Err: err},
	}
}

// fakeOps 记录被绑定的操作
type fakeOps struct {
	mu    sync.Mutex
	ops   map[Action]*fakeOperation
	bound []Action

	lastFreeze   FreezeParams
	lastTransfer string
}

func newFakeOps() *fakeOps {
	f := &fakeOps{ops: make(map[Action]*fakeOperation)}
	for _, a := range Actions() {
		f.ops[a] = &fakeOperation{gas: 50000, events: succeeding("0x" + a.String())}
	}
	return f
}

func (f *fakeOps) op(a Action) *fakeOperation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ops[a]
}

func (f *fakeOps) set(a Action, op *fakeOperation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops[a] = op
}

func (f *fakeOps) boundActions() []Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Action(nil), f.bound...)
}

func (f *fakeOps) bind(a Action) Operation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bound = append(f.bound, a)
	return f.ops[a]
}

func (f *fakeOps) Approve(*Asset) Operation { return f.bind(ActionApprove) }

func (f *fakeOps) Freeze(_ *Asset, p FreezeParams) Operation {
	f.mu.Lock()
	f.lastFreeze = p
	f.mu.Unlock()
	return f.bind(ActionFreeze)
}

func (f *fakeOps) IssueUnencumberedI(_ *Asset, p FreezeParams) Operation {
	f.mu.Lock()
	f.lastFreeze = p
	f.mu.Unlock()
	return f.bind(ActionIssueUnencumberedI)
}

func (f *fakeOps) Unfreeze(*Asset) Operation { return f.bind(ActionUnfreeze) }
func (f *fakeOps) IssueI(*Asset) Operation   { return f.bind(ActionIssueI) }
func (f *fakeOps) RevokeI(*Asset) Operation  { return f.bind(ActionRevokeI) }

func (f *fakeOps) Transfer(_ *Asset, to string) Operation {
	f.mu.Lock()
	f.lastTransfer = to
	f.mu.Unlock()
	return f.bind(ActionTransfer)
}

// fakeReloader 记录重载提示
type fakeReloader struct {
	mu    sync.Mutex
	hints []string
	err   error
}

func (r *fakeReloader) Reload(_ context.Context, hint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hints = append(r.hints, hint)
	return r.err
}

func (r *fakeReloader) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.hints...)
}

type fakeShortener struct {
	prefix string
	err    error
}

func (s *fakeShortener) Shorten(_ context.Context, url string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.prefix + "short", nil
}

// labels 测试用文案
type labels struct{}

func (labels) Label(a Action) string {
	switch a {
	case ActionFreeze:
		return "Freeze"
	case ActionTransfer:
		return "Transfer"
	case ActionUnfreeze:
		return "Unfreeze"
	}
	return a.String()
}

func (labels) Narrate(a Action, args ...string) Narration {
	return Narration{Title: "Narrate " + a.String(), Lines: args}
}
