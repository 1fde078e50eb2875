package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   int32
	block   chan struct{}
	stats   Stats
	err     error
	started chan struct{}
}

func (f *fakeRunner) ProcessPendingJobs(ctx context.Context) (Stats, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.stats, f.err
}

type fakeChecker struct {
	pending bool
	err     error
	calls   int32
}

func (f *fakeChecker) PendingWork(ctx context.Context) (bool, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.pending, f.err
}

func TestTickSingleFlight(t *testing.T) {
	runner := &fakeRunner{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := New(runner, &fakeChecker{pending: true})

	go s.tick()
	<-runner.started // first tick is inside the runner now

	s.tick() // must skip, not stack

	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.calls),
		"second tick while running must not start a second pass")

	close(runner.block)
}

func TestTickSkipsWhenDisabled(t *testing.T) {
	runner := &fakeRunner{}
	checker := &fakeChecker{pending: true}
	s := New(runner, checker)

	s.Disable()
	s.tick()

	assert.Zero(t, atomic.LoadInt32(&runner.calls))
	assert.Zero(t, atomic.LoadInt32(&checker.calls), "disabled tick does no work at all")

	s.Enable()
	s.tick()
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.calls))
}

func TestTickSkipsBrowserWhenNoPendingWork(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, &fakeChecker{pending: false})

	s.tick()

	assert.Zero(t, atomic.LoadInt32(&runner.calls),
		"no browser pass when the cheap existence check finds nothing")
}

func TestTickAbsorbsRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("login session not established")}
	s := New(runner, &fakeChecker{pending: true})

	assert.NotPanics(t, func() { s.tick() })
	assert.False(t, s.Status().Running, "running flag released after a failed pass")
}

func TestRunNowPropagatesError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("login session not established")}
	s := New(runner, &fakeChecker{pending: true})

	_, err := s.RunNow(context.Background())
	assert.EqualError(t, err, "login session not established")
}

func TestRunNowRejectsOverlap(t *testing.T) {
	runner := &fakeRunner{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := New(runner, &fakeChecker{pending: true})

	go s.RunNow(context.Background())
	<-runner.started

	_, err := s.RunNow(context.Background())
	assert.Error(t, err)

	close(runner.block)
}

func TestRunNowIgnoresDisabledFlag(t *testing.T) {
	runner := &fakeRunner{stats: Stats{Total: 2, Successful: 2}}
	s := New(runner, &fakeChecker{pending: true})
	s.Disable()

	stats, err := s.RunNow(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.Successful)
}

func TestStatusLifecycle(t *testing.T) {
	s := New(&fakeRunner{}, &fakeChecker{})

	st := s.Status()
	assert.False(t, st.Scheduled)
	assert.True(t, st.Enabled)
	assert.False(t, st.Running)
	assert.True(t, st.LastScheduledAt.IsZero())

	assert.NoError(t, s.Start("* * * * *"))
	assert.True(t, s.Status().Scheduled)
	assert.Error(t, s.Start("* * * * *"), "double start rejected")

	s.Stop()
	assert.False(t, s.Status().Scheduled)
}

func TestStartRejectsBadCronExpr(t *testing.T) {
	s := New(&fakeRunner{}, &fakeChecker{})
	assert.Error(t, s.Start("not a cron expr"))
}

func TestTickRecordsLastScheduledAt(t *testing.T) {
	s := New(&fakeRunner{}, &fakeChecker{pending: false})
	before := time.Now()
	s.tick()
	assert.False(t, s.Status().LastScheduledAt.Before(before))
}
