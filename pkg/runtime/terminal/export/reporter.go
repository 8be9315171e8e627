package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/models/store"
)

type TableConfig struct {
	ReportWidth int
	StatusWidth int
	RowsWidth   int
	DetailWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		ReportWidth: 28,
		StatusWidth: 16,
		RowsWidth:   8,
		DetailWidth: 54,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type tableRow struct {
	Report string
	Status string
	Rows   string
	Detail string
}

type table struct {
	Title string
	Rows  []tableRow
}

func (c *Reporter) funcs() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(report, status, rows, detail string) string {
			return fmt.Sprintf("| %-*s | %-*s | %*s | %-*s |",
				c.config.ReportWidth, clip(report, c.config.ReportWidth),
				c.config.StatusWidth, clip(status, c.config.StatusWidth),
				c.config.RowsWidth, clip(rows, c.config.RowsWidth),
				c.config.DetailWidth, clip(detail, c.config.DetailWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.ReportWidth+2),
				strings.Repeat("-", c.config.StatusWidth+2),
				strings.Repeat("-", c.config.RowsWidth+2),
				strings.Repeat("-", c.config.DetailWidth+2))
		},
	}
}

const tableTemplate = `
{{.Title}}
{{separator}}
{{formatRow "Report" "Status" "Rows" "Detail"}}
{{separator}}
{{range .Rows}}{{formatRow .Report .Status .Rows .Detail}}
{{end}}{{separator}}
`

func (c *Reporter) render(t table) error {
	tmpl, err := template.New("table").Funcs(c.funcs()).Parse(tableTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl.Execute(c.writer, t)
}

// HandleResults prints one line per pipeline result.
func (c *Reporter) HandleResults(results []domain.PipelineResult) error {
	t := table{Title: fmt.Sprintf("Pipeline results (%d reports)", len(results))}
	for _, r := range results {
		row := tableRow{
			Report: r.ReportKey,
			Rows:   fmt.Sprint(r.RowCount),
		}
		switch {
		case r.Failed():
			row.Status = string(r.Error.Kind)
			row.Detail = r.Error.Message
		case r.Changed:
			row.Status = "changed"
			row.Detail = strings.Join(r.Files, ", ")
		default:
			row.Status = "unchanged"
			row.Detail = strings.Join(r.Files, ", ")
		}
		t.Rows = append(t.Rows, row)
	}
	return c.render(t)
}

func (c *Reporter) HandleRuns(runs []store.Run) error {
	t := table{Title: fmt.Sprintf("Run history (%d runs)", len(runs))}
	for _, r := range runs {
		row := tableRow{
			Report: r.ReportKey,
			Status: "unchanged",
			Rows:   fmt.Sprint(r.RowCount),
			Detail: r.CompletedAt.Format("2006-01-02 15:04:05") + " " + r.RunID,
		}
		if r.Changed {
			row.Status = "changed"
		}
		if r.ErrorKind != nil {
			row.Status = *r.ErrorKind
		}
		t.Rows = append(t.Rows, row)
	}
	return c.render(t)
}

func (c *Reporter) HandleBaselines(baselines []store.Baseline) error {
	t := table{Title: fmt.Sprintf("Baselines (%d reports)", len(baselines))}
	for _, b := range baselines {
		t.Rows = append(t.Rows, tableRow{
			Report: b.ReportKey,
			Status: b.UpdatedAt.Format("2006-01-02 15:04"),
			Rows:   "-",
			Detail: b.Hash,
		})
	}
	return c.render(t)
}

// HandleExchanges prints one line per logged host exchange. Rows holds the
// response size in bytes.
func (c *Reporter) HandleExchanges(exchanges []store.Exchange) error {
	t := table{Title: fmt.Sprintf("Host exchanges (%d)", len(exchanges))}
	for _, e := range exchanges {
		row := tableRow{
			Report: e.ReportKey,
			Status: "qbXML " + e.Version,
			Rows:   "-",
			Detail: e.LoggedAt.Format("2006-01-02 15:04:05"),
		}
		if e.Response != nil {
			row.Rows = fmt.Sprint(len(*e.Response))
		}
		if e.Error != nil {
			row.Status = "failed"
			row.Detail += " " + *e.Error
		}
		t.Rows = append(t.Rows, row)
	}
	return c.render(t)
}

func (c *Reporter) HandleCatalog(defs []domain.ReportDefinition) error {
	t := table{Title: fmt.Sprintf("Reports (%d)", len(defs))}
	for _, d := range defs {
		rng := "-"
		if d.UsesDateRange {
			rng = "range"
		}
		t.Rows = append(t.Rows, tableRow{
			Report: d.Key,
			Status: string(d.Category),
			Rows:   rng,
			Detail: d.DisplayName,
		})
	}
	return c.render(t)
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
