package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	name  string
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Name() string { return r.name }

func (r *countingRefresher) BackgroundRefresh(ctx context.Context) error {
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		panic("refresh without deadline")
	}
	return r.err
}

func receive(t *testing.T, cmd func() any) SyncResultMsg {
	t.Helper()
	done := make(chan any, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		res, ok := msg.(SyncResultMsg)
		require.True(t, ok, "unexpected message %T", msg)
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sync result")
		return SyncResultMsg{}
	}
}

func TestPoller_InitialRefreshAndStatus(t *testing.T) {
	ok := &countingRefresher{name: "todos"}
	failing := &countingRefresher{name: "categories", err: errBoom}

	p := NewPoller(time.Hour, time.Second, nil)
	p.Register(ok)
	p.Register(failing)

	cmd := p.Start()
	require.NotNil(t, cmd)
	defer p.Stop()

	results := map[string]error{}
	first := receive(t, func() any { return cmd() })
	results[first.Name] = first.Error
	second := receive(t, func() any { return p.WaitForNextResult()() })
	results[second.Name] = second.Error

	assert.NoError(t, results["todos"])
	assert.ErrorIs(t, results["categories"], errBoom)

	statuses := p.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "todos", statuses[0].Name)
	assert.Equal(t, SyncIdle, statuses[0].State)
	assert.False(t, statuses[0].LastSync.IsZero())
	assert.Equal(t, SyncError, statuses[1].State)
	assert.Equal(t, "error", statuses[1].State.String())
}

func TestPoller_RefreshAllTriggersImmediateRun(t *testing.T) {
	r := &countingRefresher{name: "todos"}
	p := NewPoller(time.Hour, time.Second, nil)
	p.Register(r)

	cmd := p.Start()
	defer p.Stop()
	receive(t, func() any { return cmd() })

	p.RefreshAll()
	receive(t, func() any { return p.WaitForNextResult()() })
	assert.Equal(t, int32(2), r.calls.Load())

	p.RefreshStore("todos")
	receive(t, func() any { return p.WaitForNextResult()() })
	assert.Equal(t, int32(3), r.calls.Load())
}

func TestPoller_TicksOnInterval(t *testing.T) {
	r := &countingRefresher{name: "todos"}
	p := NewPoller(20*time.Millisecond, time.Second, nil)
	p.Register(r)

	cmd := p.Start()
	defer p.Stop()
	receive(t, func() any { return cmd() })
	receive(t, func() any { return p.WaitForNextResult()() })

	assert.GreaterOrEqual(t, r.calls.Load(), int32(2))
}

func TestPoller_StartTwiceAndStopTwice(t *testing.T) {
	p := NewPoller(0, 0, nil)
	assert.Equal(t, DefaultInterval, p.interval)
	assert.Equal(t, DefaultFetchTimeout, p.fetchTimeout)

	require.NotNil(t, p.Start())
	assert.Nil(t, p.Start())

	p.Stop()
	assert.NotPanics(t, p.Stop)
	assert.Nil(t, p.WaitForNextResult()())
}
