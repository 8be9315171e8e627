package catalog

import "github.com/de-tools/ledger-sync/pkg/models/domain"

var defaultDefinitions = []domain.ReportDefinition{
	{
		Key:           "open_sales_orders",
		DisplayName:   "Open Sales Orders by Customer",
		ReportType:    "OpenSalesOrderByCustomer",
		Category:      domain.DetailQuery,
		UsesDateRange: false,
	},
	{
		Key:           "open_invoices",
		DisplayName:   "Open Invoices",
		ReportType:    "OpenInvoices",
		Category:      domain.DetailQuery,
		UsesDateRange: false,
	},
	{
		Key:           "sales_by_customer_detail",
		DisplayName:   "Sales by Customer Detail",
		ReportType:    "SalesByCustomerDetail",
		Category:      domain.DetailQuery,
		UsesDateRange: true,
	},
	{
		Key:           "sales_by_item_summary",
		DisplayName:   "Sales by Item Summary",
		ReportType:    "SalesByItemSummary",
		Category:      domain.SummaryQuery,
		UsesDateRange: true,
	},
	{
		Key:           "profit_and_loss",
		DisplayName:   "Profit & Loss Standard",
		ReportType:    "ProfitAndLossStandard",
		Category:      domain.SummaryQuery,
		UsesDateRange: true,
	},
	{
		Key:           "balance_sheet",
		DisplayName:   "Balance Sheet Standard",
		ReportType:    "BalanceSheetStandard",
		Category:      domain.SummaryQuery,
		UsesDateRange: true,
	},
	{
		Key:           "inventory_stock_status",
		DisplayName:   "Inventory Stock Status by Item",
		ReportType:    "InventoryStockStatusByItem",
		Category:      domain.SummaryQuery,
		UsesDateRange: false,
	},
	{
		Key:           "ar_aging_summary",
		DisplayName:   "A/R Aging Summary",
		ReportType:    "ARAgingSummary",
		Category:      domain.AgingQuery,
		UsesDateRange: true,
	},
	{
		Key:           "ap_aging_summary",
		DisplayName:   "A/P Aging Summary",
		ReportType:    "APAgingSummary",
		Category:      domain.AgingQuery,
		UsesDateRange: true,
	},
}
