package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/services/catalog"
)

type fakePipeline struct {
	mu      sync.Mutex
	cycles  int
	runs    []string
	started chan struct{}
	release chan struct{}
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{started: make(chan struct{}, 16)}
}

func (p *fakePipeline) RunAll(_ context.Context, _ *domain.DateRange) []domain.PipelineResult {
	p.started <- struct{}{}
	if p.release != nil {
		<-p.release
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cycles++
	return []domain.PipelineResult{
		{ReportKey: "open_invoices", Changed: true},
		{ReportKey: "balance_sheet", Error: &domain.ErrorDescriptor{Kind: domain.ErrorKindConnectionFailed}},
	}
}

func (p *fakePipeline) Run(_ context.Context, key string, _ *domain.DateRange) domain.PipelineResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = append(p.runs, key)
	return domain.PipelineResult{ReportKey: key}
}

func (p *fakePipeline) Catalog() *catalog.Catalog {
	return catalog.Default()
}

func (p *fakePipeline) cycleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cycles
}

func waitStarted(t *testing.T, p *fakePipeline) {
	select {
	case <-p.started:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not start")
	}
}

func TestController_RunOnce(t *testing.T) {
	p := newFakePipeline()
	ctrl := NewController(p)
	ctx := context.Background()

	t.Run("single report", func(t *testing.T) {
		results, err := ctrl.RunOnce(ctx, "open_invoices", nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "open_invoices", results[0].ReportKey)
	})

	t.Run("all reports", func(t *testing.T) {
		results, err := ctrl.RunOnce(ctx, catalog.AllReports, nil)
		require.NoError(t, err)
		assert.Len(t, results, 2)
		waitStarted(t, p)
	})

	t.Run("unknown report", func(t *testing.T) {
		_, err := ctrl.RunOnce(ctx, "nope", nil)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("inverted range", func(t *testing.T) {
		rng := domain.DateRange{
			From: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		}
		_, err := ctrl.RunOnce(ctx, "open_invoices", &rng)
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	})
}

func TestController_StartValidation(t *testing.T) {
	ctrl := NewController(newFakePipeline())

	assert.ErrorIs(t, ctrl.Start(context.Background(), 7), ErrInvalidInterval)
	assert.ErrorIs(t, ctrl.Stop(context.Background()), ErrNotRunning)
	assert.Equal(t, domain.ScheduleIdle, ctrl.State())
}

func TestController_StartStop(t *testing.T) {
	p := newFakePipeline()
	ctrl := NewController(p)

	require.NoError(t, ctrl.Start(context.Background(), 5))
	assert.ErrorIs(t, ctrl.Start(context.Background(), 15), ErrAlreadyRunning)
	waitStarted(t, p)

	require.Eventually(t, func() bool {
		s := ctrl.Status()
		return s.Cycles == 1 && s.LastReports == 2
	}, 2*time.Second, 10*time.Millisecond)

	status := ctrl.Status()
	assert.Equal(t, domain.ScheduleRunning, status.State)
	assert.Equal(t, 5*time.Minute, status.Interval)
	assert.NotNil(t, status.LastCycleAt)
	assert.Equal(t, 1, status.LastFailed)
	assert.Equal(t, 1, status.LastChanged)

	stopped := make(chan error, 1)
	go func() {
		stopped <- ctrl.Stop(context.Background())
	}()

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not interrupt the interval wait")
	}
	assert.Equal(t, domain.ScheduleIdle, ctrl.State())
	assert.Equal(t, 1, p.cycleCount())

	require.NoError(t, ctrl.Start(context.Background(), 60))
	waitStarted(t, p)
	require.NoError(t, ctrl.Stop(context.Background()))
}

func TestController_StopLetsCycleFinish(t *testing.T) {
	p := newFakePipeline()
	p.release = make(chan struct{})
	ctrl := NewController(p)

	require.NoError(t, ctrl.Start(context.Background(), 15))
	waitStarted(t, p)

	stopped := make(chan error, 1)
	go func() {
		stopped <- ctrl.Stop(context.Background())
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while a cycle was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, domain.ScheduleRunning, ctrl.State())

	close(p.release)
	require.NoError(t, <-stopped)
	assert.Equal(t, 1, p.cycleCount())
	assert.Equal(t, domain.ScheduleIdle, ctrl.State())
}

func TestController_StopDeadline(t *testing.T) {
	p := newFakePipeline()
	p.release = make(chan struct{})
	ctrl := NewController(p)

	require.NoError(t, ctrl.Start(context.Background(), 30))
	waitStarted(t, p)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, ctrl.Stop(ctx), context.DeadlineExceeded)

	close(p.release)
	assert.Eventually(t, func() bool {
		return ctrl.State() == domain.ScheduleIdle
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, p.cycleCount())
}

func TestRunner_ContextCancel(t *testing.T) {
	p := newFakePipeline()
	r := NewRunner(p, RunnerConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	waitStarted(t, p)

	select {
	case progress := <-r.Progress():
		assert.Equal(t, int64(1), progress.Cycle)
		assert.Equal(t, 2, progress.Reports)
		assert.Equal(t, 1, progress.Failed)
		assert.Equal(t, 1, progress.Changed)
	case <-time.After(2 * time.Second):
		t.Fatal("no progress reported")
	}

	cancel()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on cancel")
	}
}
