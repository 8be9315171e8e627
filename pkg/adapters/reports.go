package adapters

import (
	"github.com/de-tools/ledger-sync/pkg/models/api"
	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/models/store"
)

func MapDomainReportDefinitionToAPI(def domain.ReportDefinition) api.Report {
	return api.Report{
		Key:           def.Key,
		DisplayName:   def.DisplayName,
		ReportType:    def.ReportType,
		Category:      string(def.Category),
		UsesDateRange: def.UsesDateRange,
	}
}

func MapDomainPipelineResultToAPI(r domain.PipelineResult) api.RunResult {
	files := r.Files
	if files == nil {
		files = []string{}
	}

	result := api.RunResult{
		RunID:       r.RunID,
		ReportKey:   r.ReportKey,
		RowCount:    r.RowCount,
		Changed:     r.Changed,
		Hash:        string(r.Hash),
		Files:       files,
		CompletedAt: r.CompletedAt,
	}
	if r.Error != nil {
		result.Error = &api.ErrorDetail{
			Kind:     string(r.Error.Kind),
			Message:  r.Error.Message,
			Remedies: r.Error.Remedies,
		}
	}
	return result
}

func MapStoreRunToAPI(r store.Run) api.Run {
	files := r.Files
	if files == nil {
		files = []string{}
	}

	return api.Run{
		RunID:        r.RunID,
		ReportKey:    r.ReportKey,
		RowCount:     r.RowCount,
		Changed:      r.Changed,
		Hash:         r.Hash,
		Files:        files,
		ErrorKind:    r.ErrorKind,
		ErrorMessage: r.ErrorMessage,
		CompletedAt:  r.CompletedAt,
	}
}

func MapDomainScheduleStatusToAPI(s domain.ScheduleStatus) api.ScheduleStatus {
	return api.ScheduleStatus{
		State:           string(s.State),
		IntervalMinutes: int(s.Interval.Minutes()),
		Cycles:          s.Cycles,
		LastCycleAt:     s.LastCycleAt,
		LastReports:     s.LastReports,
		LastFailed:      s.LastFailed,
		LastChanged:     s.LastChanged,
	}
}

func MapStoreBaselineToAPI(b store.Baseline) api.Baseline {
	return api.Baseline{
		ReportKey: b.ReportKey,
		Hash:      b.Hash,
		UpdatedAt: b.UpdatedAt,
	}
}

func MapStoreExchangeToAPI(e store.Exchange) api.Exchange {
	return api.Exchange{
		ReportKey: e.ReportKey,
		Version:   e.Version,
		Request:   e.Request,
		Response:  e.Response,
		Error:     e.Error,
		LoggedAt:  e.LoggedAt,
	}
}
