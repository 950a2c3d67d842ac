// Package parser provides excelize helpers for reading named regions and cells.
package parser

import (
	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
	"github.com/xuri/excelize/v2"
)

// ReadCell reads a single cell as a CellValue.
// The raw stored value is used, so number formats do not affect parsing.
func ReadCell(f *excelize.File, ref models.CellRef) (models.CellValue, error) {
	value, err := f.GetCellValue(ref.Sheet, ref.A1(), excelize.Options{RawCellValue: true})
	if err != nil {
		return models.CellValue{}, err
	}
	return models.ParseCellValue(value), nil
}

// LastRow returns the index (1-based) of the last row holding data,
// or 0 for an empty sheet.
func LastRow(f *excelize.File, sheetName string) (int, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, err
	}
	for rowIdx := len(rows) - 1; rowIdx >= 0; rowIdx-- {
		for _, cell := range rows[rowIdx] {
			if cell != "" {
				return rowIdx + 1, nil
			}
		}
	}
	return 0, nil
}
