package rights

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// progressLog 线程安全地记录进度
type progressLog struct {
	mu      sync.Mutex
	entries []Progress
}

func (l *progressLog) record(p Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, p)
}

func (l *progressLog) states() []Lifecycle {
	l.mu.Lock()
	defer l.mu.Unlock()
	states := make([]Lifecycle, 0, len(l.entries))
	for _, p := range l.entries {
		states = append(states, p.State)
	}
	return states
}

func (l *progressLog) last() Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[len(l.entries)-1]
}

func TestOrchestrator_Success(t *testing.T) {
	op := &fakeOperation{events: succeeding("0xabc")}
	log := &progressLog{}
	o := NewOrchestrator(labels{}, WithSettleDelay(0))

	receipt, err := o.Submit(context.Background(), op, ActionTransfer, log.record, otherAddr)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", receipt.TxHash)

	assert.Equal(t, []Lifecycle{
		LifecycleAwaitingSignature,
		LifecycleAwaitingConfirmation,
		LifecycleConfirmed,
	}, log.states())

	last := log.last()
	assert.Equal(t, StatusConfirmed, last.Status)
	assert.Equal(t, "0xabc", last.Hash)
	assert.Equal(t, Narration{Title: "Narrate transfer", Lines: []string{otherAddr}}, last.Narration)
}

func TestOrchestrator_StatusStrings(t *testing.T) {
	op := &fakeOperation{events: succeeding("0x1"), release: make(chan struct{})}
	log := &progressLog{}
	o := NewOrchestrator(labels{}, WithSettleDelay(0))

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), op, ActionFreeze, log.record)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return len(log.states()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusAwaitingConfirmation, log.last().Status)

	close(op.release)
	require.NoError(t, <-done)
	assert.Equal(t, StatusConfirmed, log.last().Status)
}

func TestOrchestrator_SettleDelay(t *testing.T) {
	op := &fakeOperation{events: succeeding("0x1")}
	o := NewOrchestrator(nil, WithSettleDelay(50*time.Millisecond))

	start := time.Now()
	_, err := o.Submit(context.Background(), op, ActionUnfreeze, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestOrchestrator_Failure(t *testing.T) {
	cause := errors.New("user denied transaction signature")
	op := &fakeOperation{events: failing("0xdead", cause)}
	log := &progressLog{}
	o := NewOrchestrator(labels{}, WithSettleDelay(0))

	receipt, err := o.Submit(context.Background(), op, ActionRevokeI, log.record)
	assert.Nil(t, receipt)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var subErr *SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, "0xdead", subErr.Hash)
	assert.Equal(t, ActionRevokeI, subErr.Action)

	assert.Equal(t, LifecycleFailed, log.last().State)
	assert.Equal(t, StatusFailed, log.last().Status)
}

func TestOrchestrator_EventsObservedOnce(t *testing.T) {
	op := &fakeOperation{events: []SubmissionEvent{
		{Kind: EventHash, Hash: "0x1"},
		{Kind: EventHash, Hash: "0x2"},
		{Kind: EventReceipt, Receipt: &Receipt{TxHash: "0x1"}},
		{Kind: EventError, Err: errors.New("late error")},
	}}
	log := &progressLog{}
	o := NewOrchestrator(nil, WithSettleDelay(0))

	receipt, err := o.Submit(context.Background(), op, ActionIssueI, log.record)
	require.NoError(t, err)
	assert.Equal(t, "0x1", receipt.TxHash)
	assert.Equal(t, []Lifecycle{
		LifecycleAwaitingSignature,
		LifecycleAwaitingConfirmation,
		LifecycleConfirmed,
	}, log.states())
}

func TestOrchestrator_ClosedWithoutTerminalEvent(t *testing.T) {
	op := &fakeOperation{events: []SubmissionEvent{{Kind: EventHash, Hash: "0x1"}}}
	o := NewOrchestrator(nil, WithSettleDelay(0))

	_, err := o.Submit(context.Background(), op, ActionIssueI, nil)
	assert.ErrorIs(t, err, ErrNoTerminalEvent)
}

func TestOrchestrator_ContextCanceled(t *testing.T) {
	op := &fakeOperation{events: succeeding("0x1"), release: make(chan struct{})}
	o := NewOrchestrator(nil, WithSettleDelay(0))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := o.Submit(ctx, op, ActionUnfreeze, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLifecycle_String(t *testing.T) {
	assert.Equal(t, "awaiting-signature", LifecycleAwaitingSignature.String())
	assert.Equal(t, "", LifecycleIdle.Status())
	assert.True(t, LifecycleFailed.Terminal())
	assert.False(t, LifecycleAwaitingConfirmation.Terminal())
}
