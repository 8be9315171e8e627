package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-sync/pkg/services/catalog"
	"github.com/de-tools/ledger-sync/pkg/services/config"
	"github.com/de-tools/ledger-sync/pkg/services/export"
	"github.com/de-tools/ledger-sync/pkg/services/pipeline"
	"github.com/de-tools/ledger-sync/pkg/services/qbxml"
	"github.com/de-tools/ledger-sync/pkg/services/session"
	"github.com/de-tools/ledger-sync/pkg/services/workflow"
	"github.com/de-tools/ledger-sync/pkg/store/client/qbxmlrp"
	"github.com/de-tools/ledger-sync/pkg/store/duckdb"
	"github.com/de-tools/ledger-sync/pkg/store/duckdb/baseline"
	"github.com/de-tools/ledger-sync/pkg/store/duckdb/exchange"
	"github.com/de-tools/ledger-sync/pkg/store/duckdb/history"
)

// App holds the wired services shared by the CLI and the web server.
type App struct {
	Settings   *config.Settings
	Catalog    *catalog.Catalog
	Runner     *pipeline.Runner
	Controller *workflow.DefaultController
	Baselines  baseline.Store
	Runs       history.Store
	Exchanges  exchange.Store

	db *sql.DB
}

type Options struct {
	ProfilePath string
	HostFactory session.HostFactory
}

func New(ctx context.Context, settings *config.Settings, opts Options) (*App, error) {
	logger := zerolog.Ctx(ctx)

	if settings.Host.Profile != "" {
		path := opts.ProfilePath
		if path == "" {
			path = config.DefaultProfilePath()
		}
		registry, err := config.NewRegistry(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create profile registry: %w", err)
		}
		profile, err := registry.GetProfile(ctx, settings.Host.Profile)
		if err != nil {
			return nil, err
		}
		settings.ApplyProfile(profile)
		logger.Info().
			Str("profile", profile.Name).
			Str("company_file", profile.CompanyFile).
			Msg("company profile loaded")
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: settings.Database.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	app, err := wire(ctx, db, settings, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func wire(ctx context.Context, db *sql.DB, settings *config.Settings, opts Options) (*App, error) {
	baselines, err := baseline.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create baseline store: %w", err)
	}
	runs, err := history.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create run history store: %w", err)
	}
	exchanges, err := exchange.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange log store: %w", err)
	}

	connect := opts.HostFactory
	if connect == nil {
		connect = qbxmlrp.Connect
	}
	manager, err := session.NewManager(connect, qbxml.NewBuilder(), exchanges, session.Config{
		AppID:       settings.Host.AppID,
		AppName:     settings.Host.AppName,
		CompanyFile: settings.Host.CompanyFile,
		Modes:       session.DefaultModes,
		Version:     settings.Host.Version,
		Fallback:    settings.Host.FallbackVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	exporter, err := newExporter(ctx, settings.Export)
	if err != nil {
		return nil, err
	}

	c := catalog.Default()
	runner, err := pipeline.NewRunner(c, manager, baselines,
		pipeline.WithExporter(exporter),
		pipeline.WithHistory(runs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return &App{
		Settings:   settings,
		Catalog:    c,
		Runner:     runner,
		Controller: workflow.NewController(runner),
		Baselines:  baselines,
		Runs:       runs,
		Exchanges:  exchanges,
		db:         db,
	}, nil
}

func newExporter(ctx context.Context, settings config.ExportSettings) (export.Exporter, error) {
	local, err := export.NewFileExporter(settings.Dir, export.Format(settings.Format))
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}
	if settings.S3.Bucket == "" {
		return local, nil
	}

	mirror, err := export.NewS3MirrorFromEnv(ctx, local, settings.S3.Region, settings.S3.Bucket, settings.S3.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 mirror: %w", err)
	}
	return mirror, nil
}

// Close stops a running schedule, letting its cycle finish, then closes the database.
func (a *App) Close(ctx context.Context) error {
	if err := a.Controller.Stop(ctx); err != nil && !errors.Is(err, workflow.ErrNotRunning) {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to stop schedule")
	}
	return a.db.Close()
}
