package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

const sheetName = "Report"

type xlsxWriter struct{}

func (xlsxWriter) write(record domain.ResponseRecord, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	row := 1
	if record.Title != "" {
		if err := f.SetCellValue(sheetName, "A1", record.Title); err != nil {
			return err
		}
		row++
		if record.Basis != "" {
			if err := f.SetCellValue(sheetName, "A2", record.Basis); err != nil {
				return err
			}
			row++
		}
		row++
	}

	if len(record.Columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(record.Columns), row)
		if err := f.SetSheetRow(sheetName, start, toCells(record.Columns)); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, start, end, bold); err != nil {
			return err
		}
		row++
	}

	for _, values := range record.Rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, toCells(values)); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	return f.SaveAs(path)
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
