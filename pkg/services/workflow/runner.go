package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

// CycleRunner runs every catalog report once.
type CycleRunner interface {
	RunAll(ctx context.Context, dateRange *domain.DateRange) []domain.PipelineResult
}

type RunnerConfig struct {
	Interval time.Duration
}

type RunnerProgress struct {
	Cycle       int64
	Reports     int
	Failed      int
	Changed     int
	CompletedAt time.Time
}

// Runner is the polling loop. Stop prevents the next cycle from starting
// and wakes the interval wait; it never interrupts a cycle in flight.
type Runner struct {
	pipeline CycleRunner
	config   RunnerConfig
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	progress chan RunnerProgress

	mu          sync.Mutex
	cycles      int64
	lastCycleAt *time.Time
}

func NewRunner(pipeline CycleRunner, config RunnerConfig) *Runner {
	return &Runner{
		pipeline: pipeline,
		config:   config,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		progress: make(chan RunnerProgress, 100),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

func (r *Runner) Cycles() (int64, *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycles, r.lastCycleAt
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Dur("interval", r.config.Interval).Logger()
	defer close(r.done)
	defer close(r.progress)

	for {
		select {
		case <-r.stop:
			logger.Info().Msg("schedule stopped")
			return
		case <-ctx.Done():
			logger.Info().Msg("schedule cancelled")
			return
		default:
		}

		r.cycle(logger.WithContext(ctx))

		wait := time.NewTimer(r.config.Interval)
		select {
		case <-r.stop:
			wait.Stop()
			logger.Info().Msg("schedule stopped")
			return
		case <-ctx.Done():
			wait.Stop()
			logger.Info().Msg("schedule cancelled")
			return
		case <-wait.C:
		}
	}
}

func (r *Runner) cycle(ctx context.Context) {
	rng := domain.CurrentMonth(r.now())
	results := r.pipeline.RunAll(ctx, &rng)

	completed := r.now()
	r.mu.Lock()
	r.cycles++
	r.lastCycleAt = &completed
	progress := RunnerProgress{
		Cycle:       r.cycles,
		Reports:     len(results),
		CompletedAt: completed,
	}
	r.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	for _, res := range results {
		if res.Failed() {
			progress.Failed++
			logger.Error().
				Str("report", res.ReportKey).
				Str("kind", string(res.Error.Kind)).
				Strs("remedies", res.Error.Remedies).
				Msg(res.Error.Message)
			continue
		}
		if res.Changed {
			progress.Changed++
		}
	}

	logger.Info().
		Int64("cycle", progress.Cycle).
		Int("reports", progress.Reports).
		Int("failed", progress.Failed).
		Int("changed", progress.Changed).
		Msg("cycle completed")

	select {
	case r.progress <- progress:
	default:
	}
}
