package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/models/store"
	"github.com/de-tools/ledger-sync/pkg/services/catalog"
	"github.com/de-tools/ledger-sync/pkg/services/changes"
	"github.com/de-tools/ledger-sync/pkg/services/export"
	"github.com/de-tools/ledger-sync/pkg/services/hosterr"
	"github.com/de-tools/ledger-sync/pkg/services/qbxml"
	"github.com/de-tools/ledger-sync/pkg/services/session"
)

const snapshotLayout = "20060102_150405"

type Executor interface {
	Execute(ctx context.Context, def domain.ReportDefinition, dateRange *domain.DateRange) (session.Exchange, error)
}

type BaselineStore interface {
	ReadBaseline(ctx context.Context, reportKey string) (*domain.ContentHash, error)
	WriteBaseline(ctx context.Context, reportKey string, hash domain.ContentHash) error
}

type RunRecorder interface {
	Add(ctx context.Context, run store.Run) error
}

// Runner executes reports one at a time. Run and RunAll share one gate, so
// no two executions ever hold a host session at the same time.
type Runner struct {
	gate      sync.Mutex
	catalog   *catalog.Catalog
	executor  Executor
	baselines BaselineStore
	history   RunRecorder
	exporter  export.Exporter
	now       func() time.Time
	newID     func() string
}

type Option func(*Runner)

func WithExporter(exporter export.Exporter) Option {
	return func(r *Runner) {
		r.exporter = exporter
	}
}

func WithHistory(history RunRecorder) Option {
	return func(r *Runner) {
		r.history = history
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func NewRunner(c *catalog.Catalog, executor Executor, baselines BaselineStore, opts ...Option) (*Runner, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor cannot be nil")
	}
	if baselines == nil {
		return nil, fmt.Errorf("baseline store cannot be nil")
	}

	r := &Runner{
		catalog:   c,
		executor:  executor,
		baselines: baselines,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runner) Catalog() *catalog.Catalog {
	return r.catalog
}

// Run executes a single report. It never returns an error: failures are
// classified into the result.
func (r *Runner) Run(ctx context.Context, reportKey string, dateRange *domain.DateRange) domain.PipelineResult {
	r.gate.Lock()
	defer r.gate.Unlock()

	return r.run(ctx, reportKey, dateRange)
}

// RunAll executes every catalog report sequentially under a single gate
// acquisition. A failing report does not stop the remaining ones.
func (r *Runner) RunAll(ctx context.Context, dateRange *domain.DateRange) []domain.PipelineResult {
	r.gate.Lock()
	defer r.gate.Unlock()

	defs := r.catalog.List()
	results := make([]domain.PipelineResult, 0, len(defs))
	for _, def := range defs {
		if ctx.Err() != nil {
			break
		}
		results = append(results, r.run(ctx, def.Key, dateRange))
	}
	return results
}

func (r *Runner) run(ctx context.Context, reportKey string, dateRange *domain.DateRange) (result domain.PipelineResult) {
	result = domain.PipelineResult{
		RunID:     r.newID(),
		ReportKey: reportKey,
	}
	logger := zerolog.Ctx(ctx).With().
		Str("run_id", result.RunID).
		Str("report", reportKey).
		Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		result.CompletedAt = r.now().UTC()
		r.record(ctx, result)
	}()

	def, err := r.catalog.Get(reportKey)
	if err != nil {
		r.fail(ctx, &result, err)
		return result
	}

	rng := dateRange
	if !def.UsesDateRange {
		rng = nil
	}

	exchange, err := r.executor.Execute(ctx, def, rng)
	if err != nil {
		r.fail(ctx, &result, err)
		return result
	}

	record, err := qbxml.Parse(exchange.Response)
	if err != nil {
		var perr *qbxml.ParseError
		if errors.As(err, &perr) && perr.Malformed {
			result.Changed = true
		}
		r.fail(ctx, &result, err)
		return result
	}
	result.RowCount = record.RowCount

	stored, err := r.baselines.ReadBaseline(ctx, reportKey)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read baseline, treating report as changed")
		stored = nil
	}

	hash, decision, err := changes.Evaluate(record, stored)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to hash report, treating report as changed")
	}
	result.Hash = hash
	result.Changed = decision == changes.Changed

	files, err := r.export(ctx, record, reportKey, result.Changed)
	result.Files = files
	if err != nil {
		r.fail(ctx, &result, err)
		return result
	}

	if result.Changed && hash != "" {
		if err := r.baselines.WriteBaseline(ctx, reportKey, hash); err != nil {
			logger.Warn().Err(err).Msg("failed to write baseline")
		}
	}

	logger.Info().
		Int("rows", result.RowCount).
		Bool("changed", result.Changed).
		Str("version", exchange.Envelope.Version).
		Msg("report extracted")
	return result
}

// export always refreshes the base file and adds a timestamped snapshot
// when the content changed.
func (r *Runner) export(ctx context.Context, record domain.ResponseRecord, reportKey string, changed bool) ([]string, error) {
	if r.exporter == nil {
		return nil, nil
	}

	files, err := r.exporter.ExportTabular(ctx, record, reportKey)
	if err != nil {
		return nil, err
	}
	if !changed {
		return files, nil
	}

	snapshot := fmt.Sprintf("%s_%s", reportKey, r.now().Format(snapshotLayout))
	more, err := r.exporter.ExportTabular(ctx, record, snapshot)
	if err != nil {
		return files, err
	}
	return append(files, more...), nil
}

func (r *Runner) fail(ctx context.Context, result *domain.PipelineResult, err error) {
	c := hosterr.Classify(err)
	result.Error = c.Descriptor()

	zerolog.Ctx(ctx).Error().
		Err(err).
		Str("kind", string(c.Kind)).
		Bool("changed", result.Changed).
		Msg("report run failed")
}

func (r *Runner) record(ctx context.Context, result domain.PipelineResult) {
	if r.history == nil {
		return
	}
	if err := r.history.Add(ctx, toRun(result)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record run history")
	}
}

func toRun(result domain.PipelineResult) store.Run {
	run := store.Run{
		RunID:       result.RunID,
		ReportKey:   result.ReportKey,
		RowCount:    result.RowCount,
		Changed:     result.Changed,
		Files:       result.Files,
		CompletedAt: result.CompletedAt,
	}
	if result.Hash != "" {
		hash := string(result.Hash)
		run.Hash = &hash
	}
	if result.Error != nil {
		kind := string(result.Error.Kind)
		run.ErrorKind = &kind
		run.ErrorMessage = &result.Error.Message
	}
	return run
}
