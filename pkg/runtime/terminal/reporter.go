package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

// FailureReporter prints classified failures with their remedies verbatim.
type FailureReporter struct {
	writer io.Writer
}

func NewFailureReporter(writer io.Writer) *FailureReporter {
	if writer == nil {
		writer = os.Stderr
	}
	return &FailureReporter{writer: writer}
}

func (c *FailureReporter) Handle(results []domain.PipelineResult) error {
	var failed []domain.PipelineResult
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return nil
	}

	tmpl := `{{range .}}
=== {{.ReportKey}}: {{.Error.Kind}} ===
{{.Error.Message}}
{{range .Error.Remedies}}- {{.}}
{{end}}{{end}}`
	t, err := template.New("failures").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, failed)
}
