package qbxml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

func march2025(t *testing.T) *domain.DateRange {
	r, err := domain.NewDateRange(
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return &r
}

func TestBuilder_DetailWithPeriod(t *testing.T) {
	def := domain.ReportDefinition{
		Key:           "sales_by_customer_detail",
		ReportType:    "SalesByCustomerDetail",
		Category:      domain.DetailQuery,
		UsesDateRange: true,
	}

	env, err := NewBuilder().Build(def, march2025(t), VersionPreferred)
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="utf-8"?>
<?qbxml version="16.0"?>
<QBXML>
  <QBXMLMsgsRq onError="stopOnError">
    <GeneralDetailReportQueryRq>
      <GeneralDetailReportType>SalesByCustomerDetail</GeneralDetailReportType>
      <ReportPeriod>
        <FromReportDate>2025-03-01</FromReportDate>
        <ToReportDate>2025-03-31</ToReportDate>
      </ReportPeriod>
    </GeneralDetailReportQueryRq>
  </QBXMLMsgsRq>
</QBXML>
`
	assert.Equal(t, expected, env.Payload)
	assert.Equal(t, VersionPreferred, env.Version)
	assert.Equal(t, "SalesByCustomerDetail", env.ReportType)
	require.NotNil(t, env.Range)
}

func TestBuilder_Summary(t *testing.T) {
	def := domain.ReportDefinition{
		Key:           "profit_and_loss",
		ReportType:    "ProfitAndLossStandard",
		Category:      domain.SummaryQuery,
		UsesDateRange: true,
	}

	env, err := NewBuilder().Build(def, march2025(t), VersionFallback)
	require.NoError(t, err)
	assert.Contains(t, env.Payload, `<?qbxml version="13.0"?>`)
	assert.Contains(t, env.Payload, "<GeneralSummaryReportQueryRq>")
	assert.Contains(t, env.Payload, "<GeneralSummaryReportType>ProfitAndLossStandard</GeneralSummaryReportType>")
	assert.Contains(t, env.Payload, "<FromReportDate>2025-03-01</FromReportDate>")
}

func TestBuilder_AgingUsesAsOfDate(t *testing.T) {
	def := domain.ReportDefinition{
		Key:           "ar_aging_summary",
		ReportType:    "ARAgingSummary",
		Category:      domain.AgingQuery,
		UsesDateRange: true,
	}

	env, err := NewBuilder().Build(def, march2025(t), VersionPreferred)
	require.NoError(t, err)
	assert.Contains(t, env.Payload, "<AgingReportType>ARAgingSummary</AgingReportType>")
	assert.Contains(t, env.Payload, "<ToReportDate>2025-03-31</ToReportDate>")
	assert.Contains(t, env.Payload, "<ReportAgingAsOf>ReportEndDate</ReportAgingAsOf>")
	assert.NotContains(t, env.Payload, "FromReportDate")
}

func TestBuilder_NoDateRange(t *testing.T) {
	def := domain.ReportDefinition{
		Key:        "open_sales_orders",
		ReportType: "OpenSalesOrderByCustomer",
		Category:   domain.DetailQuery,
	}

	env, err := NewBuilder().Build(def, march2025(t), VersionPreferred)
	require.NoError(t, err)
	assert.NotContains(t, env.Payload, "ReportPeriod")
	assert.Nil(t, env.Range)
}

func TestBuilder_InvalidDateRange(t *testing.T) {
	def := domain.ReportDefinition{
		Key:           "balance_sheet",
		ReportType:    "BalanceSheetStandard",
		Category:      domain.SummaryQuery,
		UsesDateRange: true,
	}
	inverted := domain.DateRange{
		From: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := NewBuilder().Build(def, &inverted, VersionPreferred)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = NewBuilder().Build(def, nil, VersionPreferred)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = NewBuilder().Build(def, &domain.DateRange{From: day, To: day}, VersionPreferred)
	assert.NoError(t, err)
}

func TestBuilder_Deterministic(t *testing.T) {
	def := domain.ReportDefinition{
		Key:           "ap_aging_summary",
		ReportType:    "APAgingSummary",
		Category:      domain.AgingQuery,
		UsesDateRange: true,
	}
	b := NewBuilder()

	first, err := b.Build(def, march2025(t), VersionPreferred)
	require.NoError(t, err)
	second, err := b.Build(def, march2025(t), VersionPreferred)
	require.NoError(t, err)

	assert.Equal(t, first.Payload, second.Payload)
}
