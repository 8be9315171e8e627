package export

import (
	"encoding/csv"
	"os"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

type csvWriter struct{}

func (csvWriter) write(record domain.ResponseRecord, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if len(record.Columns) > 0 {
		if err := w.Write(record.Columns); err != nil {
			return err
		}
	}
	if err := w.WriteAll(record.Rows); err != nil {
		return err
	}
	return file.Close()
}
