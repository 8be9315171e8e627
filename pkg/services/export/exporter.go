package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Exporter materializes a parsed report and returns the paths it wrote.
type Exporter interface {
	ExportTabular(ctx context.Context, record domain.ResponseRecord, baseName string) ([]string, error)
}

type writer interface {
	write(record domain.ResponseRecord, path string) error
}

// FileExporter writes one file per call into a directory.
type FileExporter struct {
	dir    string
	format Format
	writer writer
}

func NewFileExporter(dir string, format Format) (*FileExporter, error) {
	if dir == "" {
		return nil, fmt.Errorf("export directory cannot be empty")
	}

	var w writer
	switch Format(strings.ToLower(string(format))) {
	case FormatXLSX, "":
		format, w = FormatXLSX, xlsxWriter{}
	case FormatCSV:
		format, w = FormatCSV, csvWriter{}
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	return &FileExporter{
		dir:    dir,
		format: format,
		writer: w,
	}, nil
}

func (e *FileExporter) ExportTabular(ctx context.Context, record domain.ResponseRecord, baseName string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if baseName == "" || strings.ContainsAny(baseName, `/\`) {
		return nil, fmt.Errorf("invalid export name %q", baseName)
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(e.dir, baseName+"."+string(e.format))
	if err := e.writer.write(record, path); err != nil {
		return nil, fmt.Errorf("export %s: %w", baseName, err)
	}
	return []string{path}, nil
}
