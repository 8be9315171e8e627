package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-sync/pkg/handlers/reports"
	"github.com/de-tools/ledger-sync/pkg/services/catalog"
	"github.com/de-tools/ledger-sync/pkg/services/workflow"

	ledgermiddleware "github.com/de-tools/ledger-sync/pkg/server/middleware"
)

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Controller      workflow.Controller
	Catalog         *catalog.Catalog
	Runs            reports.RunLister
	Baselines       reports.BaselineLister
	Exchanges       reports.ExchangeLister
	DefaultInterval int
	Logger          zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	h := reports.NewHandler(deps.Controller, deps.Catalog, reports.Stores{
		Runs:      deps.Runs,
		Baselines: deps.Baselines,
		Exchanges: deps.Exchanges,
	}, deps.DefaultInterval)

	router := chi.NewRouter()

	router.Use(ledgermiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports", h.ListReports)
		r.Post("/reports/run", h.RunAll)
		r.Post("/reports/{report}/run", h.RunReport)
		r.Get("/reports/{report}/exchanges", h.ListExchanges)

		r.Get("/schedule", h.GetSchedule)
		r.Post("/schedule/start", h.StartSchedule)
		r.Post("/schedule/stop", h.StopSchedule)

		r.Get("/runs", h.ListRuns)
		r.Get("/baselines", h.ListBaselines)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	logger := config.Dependencies.Logger
	router := ConfigureRouter(config)

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: shutdownTimeout,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
