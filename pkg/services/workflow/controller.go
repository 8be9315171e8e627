package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/services/catalog"
)

var (
	ErrAlreadyRunning  = errors.New("schedule already running")
	ErrNotRunning      = errors.New("schedule not running")
	ErrInvalidInterval = errors.New("invalid schedule interval")
)

// Pipeline is what the controller drives, for one report or all of them.
type Pipeline interface {
	CycleRunner
	Run(ctx context.Context, reportKey string, dateRange *domain.DateRange) domain.PipelineResult
	Catalog() *catalog.Catalog
}

type Controller interface {
	RunOnce(ctx context.Context, reportKey string, dateRange *domain.DateRange) ([]domain.PipelineResult, error)
	Start(ctx context.Context, intervalMinutes int) error
	Stop(ctx context.Context) error
	State() domain.ScheduleState
	Status() domain.ScheduleStatus
}

type scheduleDescriptor struct {
	runner   *Runner
	interval time.Duration
	last     *RunnerProgress
}

type DefaultController struct {
	pipeline Pipeline

	mu       sync.Mutex
	schedule *scheduleDescriptor
}

func NewController(pipeline Pipeline) *DefaultController {
	return &DefaultController{pipeline: pipeline}
}

// RunOnce runs a single report, or every report when reportKey is
// catalog.AllReports. It waits for any in-flight scheduled cycle.
func (ctrl *DefaultController) RunOnce(ctx context.Context, reportKey string, dateRange *domain.DateRange) ([]domain.PipelineResult, error) {
	if dateRange == nil {
		rng := domain.CurrentMonth(time.Now())
		dateRange = &rng
	}
	if err := dateRange.Validate(); err != nil {
		return nil, err
	}

	if reportKey == catalog.AllReports {
		return ctrl.pipeline.RunAll(ctx, dateRange), nil
	}
	if _, err := ctrl.pipeline.Catalog().Get(reportKey); err != nil {
		return nil, err
	}
	return []domain.PipelineResult{ctrl.pipeline.Run(ctx, reportKey, dateRange)}, nil
}

// Start launches the polling loop. The loop outlives ctx cancellation; it
// ends only through Stop.
func (ctrl *DefaultController) Start(ctx context.Context, intervalMinutes int) error {
	if !domain.IntervalAllowed(intervalMinutes) {
		return fmt.Errorf("%w: %d minutes, allowed %v", ErrInvalidInterval, intervalMinutes, domain.AllowedIntervals)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.schedule != nil {
		return ErrAlreadyRunning
	}

	interval := time.Duration(intervalMinutes) * time.Minute
	desc := &scheduleDescriptor{
		runner:   NewRunner(ctrl.pipeline, RunnerConfig{Interval: interval}),
		interval: interval,
	}
	ctrl.schedule = desc

	go desc.runner.Run(context.WithoutCancel(ctx))
	go ctrl.watch(desc)
	return nil
}

// Stop signals the loop and waits for an in-flight cycle to finish. If ctx
// ends first the loop still stops after that cycle.
func (ctrl *DefaultController) Stop(ctx context.Context) error {
	ctrl.mu.Lock()
	desc := ctrl.schedule
	ctrl.mu.Unlock()

	if desc == nil {
		return ErrNotRunning
	}

	desc.runner.Stop()
	select {
	case <-desc.runner.Done():
		ctrl.release(desc)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ctrl *DefaultController) State() domain.ScheduleState {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.schedule == nil {
		return domain.ScheduleIdle
	}
	return domain.ScheduleRunning
}

func (ctrl *DefaultController) Status() domain.ScheduleStatus {
	ctrl.mu.Lock()
	desc := ctrl.schedule
	var progress *RunnerProgress
	if desc != nil && desc.last != nil {
		p := *desc.last
		progress = &p
	}
	ctrl.mu.Unlock()

	if desc == nil {
		return domain.ScheduleStatus{State: domain.ScheduleIdle}
	}

	cycles, last := desc.runner.Cycles()
	status := domain.ScheduleStatus{
		State:       domain.ScheduleRunning,
		Interval:    desc.interval,
		Cycles:      cycles,
		LastCycleAt: last,
	}
	if progress != nil {
		status.LastReports = progress.Reports
		status.LastFailed = progress.Failed
		status.LastChanged = progress.Changed
	}
	return status
}

// watch keeps the latest cycle outcome on desc and releases it once the
// loop exits.
func (ctrl *DefaultController) watch(desc *scheduleDescriptor) {
	for p := range desc.runner.Progress() {
		ctrl.mu.Lock()
		progress := p
		desc.last = &progress
		ctrl.mu.Unlock()
	}
	<-desc.runner.Done()
	ctrl.release(desc)
}

func (ctrl *DefaultController) release(desc *scheduleDescriptor) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.schedule == desc {
		ctrl.schedule = nil
	}
}
