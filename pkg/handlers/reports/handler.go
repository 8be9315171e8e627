package reports

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-sync/pkg/adapters"
	"github.com/de-tools/ledger-sync/pkg/models/api"
	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/models/store"
	"github.com/de-tools/ledger-sync/pkg/services/catalog"
	"github.com/de-tools/ledger-sync/pkg/services/workflow"
)

const (
	defaultRunsLimit       = 50
	defaultExchangesLimit  = 20
	defaultIntervalMinutes = 15
)

type RunLister interface {
	List(ctx context.Context, reportKey string, limit int) ([]store.Run, error)
}

type BaselineLister interface {
	ListBaselines(ctx context.Context) ([]store.Baseline, error)
}

type ExchangeLister interface {
	ListExchanges(ctx context.Context, reportKey string, limit int) ([]store.Exchange, error)
}

// Stores are the read views served next to the pipeline endpoints.
type Stores struct {
	Runs      RunLister
	Baselines BaselineLister
	Exchanges ExchangeLister
}

type Handler struct {
	ctrl            workflow.Controller
	catalog         *catalog.Catalog
	stores          Stores
	defaultInterval int
}

func NewHandler(ctrl workflow.Controller, c *catalog.Catalog, stores Stores, defaultInterval int) *Handler {
	if defaultInterval == 0 {
		defaultInterval = defaultIntervalMinutes
	}
	return &Handler{
		ctrl:            ctrl,
		catalog:         c,
		stores:          stores,
		defaultInterval: defaultInterval,
	}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	defs := h.catalog.List()
	response := make([]api.Report, 0, len(defs))
	for _, def := range defs {
		response = append(response, adapters.MapDomainReportDefinitionToAPI(def))
	}
	writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *Handler) RunAll(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, catalog.AllReports)
}

func (h *Handler) RunReport(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, chi.URLParam(r, "report"))
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, reportKey string) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	rng := parseDateRange(r, time.Now())

	results, err := h.ctrl.RunOnce(ctx, reportKey, rng)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		http.Error(w, "report not found: "+reportKey, http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrInvalidDateRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logger.Error().Err(err).Str("report", reportKey).Msg("failed to run report")
		http.Error(w, "failed to run report", http.StatusInternalServerError)
		return
	}

	response := make([]api.RunResult, 0, len(results))
	for _, res := range results {
		response = append(response, adapters.MapDomainPipelineResultToAPI(res))
	}
	if reportKey != catalog.AllReports && len(response) == 1 {
		writeJSON(ctx, w, http.StatusOK, response[0])
		return
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, adapters.MapDomainScheduleStatusToAPI(h.ctrl.Status()))
}

func (h *Handler) StartSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := api.StartScheduleRequest{IntervalMinutes: h.defaultInterval}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.ctrl.Start(ctx, req.IntervalMinutes)
	switch {
	case errors.Is(err, workflow.ErrInvalidInterval):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, workflow.ErrAlreadyRunning):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to start schedule")
		http.Error(w, "failed to start schedule", http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusAccepted, adapters.MapDomainScheduleStatusToAPI(h.ctrl.Status()))
}

func (h *Handler) StopSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.ctrl.Stop(ctx)
	switch {
	case errors.Is(err, workflow.ErrNotRunning):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to stop schedule")
		http.Error(w, "failed to stop schedule", http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapDomainScheduleStatusToAPI(h.ctrl.Status()))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, ok := parseLimit(w, r, defaultRunsLimit)
	if !ok {
		return
	}

	runs, err := h.stores.Runs.List(ctx, r.URL.Query().Get("report"), limit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list runs")
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	response := make([]api.Run, 0, len(runs))
	for _, run := range runs {
		response = append(response, adapters.MapStoreRunToAPI(run))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) ListBaselines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	baselines, err := h.stores.Baselines.ListBaselines(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list baselines")
		http.Error(w, "failed to list baselines", http.StatusInternalServerError)
		return
	}

	response := make([]api.Baseline, 0, len(baselines))
	for _, b := range baselines {
		response = append(response, adapters.MapStoreBaselineToAPI(b))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) ListExchanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportKey := chi.URLParam(r, "report")

	if _, err := h.catalog.Get(reportKey); err != nil {
		http.Error(w, "report not found: "+reportKey, http.StatusNotFound)
		return
	}
	limit, ok := parseLimit(w, r, defaultExchangesLimit)
	if !ok {
		return
	}

	exchanges, err := h.stores.Exchanges.ListExchanges(ctx, reportKey, limit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("report", reportKey).Msg("failed to list exchanges")
		http.Error(w, "failed to list exchanges", http.StatusInternalServerError)
		return
	}

	response := make([]api.Exchange, 0, len(exchanges))
	for _, e := range exchanges {
		response = append(response, adapters.MapStoreExchangeToAPI(e))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

// parseLimit writes a 400 and reports false when the limit query value is
// not a positive integer.
func parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		http.Error(w, "invalid 'limit' value", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

// parseDateRange returns nil when neither bound is given. Partial,
// unparsable or inverted bounds fall back to the current month.
func parseDateRange(r *http.Request, now time.Time) *domain.DateRange {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" && to == "" {
		return nil
	}

	rng := domain.ParseDateRange(from, to, domain.CurrentMonth(now))
	if rng.From.Format(domain.DateLayout) != from || rng.To.Format(domain.DateLayout) != to {
		zerolog.Ctx(r.Context()).Warn().
			Str("from", from).
			Str("to", to).
			Str("range", rng.String()).
			Msg("ignoring invalid date range, using current month")
	}
	return &rng
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
