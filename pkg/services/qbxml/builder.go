package qbxml

import (
	"encoding/xml"
	"fmt"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

const (
	// VersionPreferred is tried first on every request.
	VersionPreferred = "16.0"
	// VersionFallback is used once when the host rejects VersionPreferred.
	VersionFallback = "13.0"

	onErrorStop = "stopOnError"
	agingAsOf   = "ReportEndDate"
)

// Envelope is a rendered request, ready to be handed to the host.
type Envelope struct {
	ReportKey  string
	ReportType string
	Version    string
	Range      *domain.DateRange
	Payload    string
}

// Builder renders report definitions into versioned request envelopes.
// Output is byte-identical for identical input.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Build(def domain.ReportDefinition, dateRange *domain.DateRange, version string) (Envelope, error) {
	if version == "" {
		return Envelope{}, fmt.Errorf("protocol version cannot be empty")
	}
	if def.ReportType == "" {
		return Envelope{}, fmt.Errorf("report %s has no report type", def.Key)
	}

	var period *reportPeriod
	if def.UsesDateRange {
		if dateRange == nil {
			return Envelope{}, fmt.Errorf("report %s: %w: date range is required", def.Key, domain.ErrInvalidDateRange)
		}
		if err := dateRange.Validate(); err != nil {
			return Envelope{}, fmt.Errorf("report %s: %w", def.Key, err)
		}
		period = periodFor(def.Category, *dateRange)
	}

	msgs := msgsRq{OnError: onErrorStop}
	switch def.Category {
	case domain.DetailQuery:
		msgs.Detail = &detailQueryRq{ReportType: def.ReportType, Period: period}
	case domain.SummaryQuery:
		msgs.Summary = &summaryQueryRq{ReportType: def.ReportType, Period: period}
	case domain.AgingQuery:
		q := &agingQueryRq{ReportType: def.ReportType, Period: period}
		if period != nil {
			q.AsOf = agingAsOf
		}
		msgs.Aging = q
	default:
		return Envelope{}, fmt.Errorf("report %s: unknown query category %q", def.Key, def.Category)
	}

	body, err := xml.MarshalIndent(qbxmlRq{Msgs: msgs}, "", "  ")
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to render request for %s: %w", def.Key, err)
	}

	env := Envelope{
		ReportKey:  def.Key,
		ReportType: def.ReportType,
		Version:    version,
		Payload:    header(version) + string(body) + "\n",
	}
	if def.UsesDateRange {
		r := *dateRange
		env.Range = &r
	}
	return env, nil
}

// periodFor renders a bounded period for interval reports and a single
// as-of date for aging reports, which are point-in-time snapshots.
func periodFor(category domain.QueryCategory, r domain.DateRange) *reportPeriod {
	if category == domain.AgingQuery {
		return &reportPeriod{To: r.To.Format(domain.DateLayout)}
	}
	return &reportPeriod{
		From: r.From.Format(domain.DateLayout),
		To:   r.To.Format(domain.DateLayout),
	}
}

func header(version string) string {
	return "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<?qbxml version=\"" + version + "\"?>\n"
}

type qbxmlRq struct {
	XMLName xml.Name `xml:"QBXML"`
	Msgs    msgsRq   `xml:"QBXMLMsgsRq"`
}

type msgsRq struct {
	OnError string          `xml:"onError,attr"`
	Detail  *detailQueryRq  `xml:"GeneralDetailReportQueryRq,omitempty"`
	Summary *summaryQueryRq `xml:"GeneralSummaryReportQueryRq,omitempty"`
	Aging   *agingQueryRq   `xml:"AgingReportQueryRq,omitempty"`
}

type detailQueryRq struct {
	ReportType string        `xml:"GeneralDetailReportType"`
	Period     *reportPeriod `xml:"ReportPeriod,omitempty"`
}

type summaryQueryRq struct {
	ReportType string        `xml:"GeneralSummaryReportType"`
	Period     *reportPeriod `xml:"ReportPeriod,omitempty"`
}

type agingQueryRq struct {
	ReportType string        `xml:"AgingReportType"`
	Period     *reportPeriod `xml:"ReportPeriod,omitempty"`
	AsOf       string        `xml:"ReportAgingAsOf,omitempty"`
}

type reportPeriod struct {
	From string `xml:"FromReportDate,omitempty"`
	To   string `xml:"ToReportDate,omitempty"`
}
