// Package workbook adapts an xlsx file to the lapsync Host interface.
package workbook

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/ukaji3/lapsync-go/pkg/lapsync"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/parser"
	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound indicates the edited sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Workbook is an opened xlsx file.
type Workbook struct {
	f    *excelize.File
	path string
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &Workbook{f: f, path: path}, nil
}

// Name returns the workbook file name (no path).
func (w *Workbook) Name() string {
	return filepath.Base(w.path)
}

// File returns the underlying excelize file.
func (w *Workbook) File() *excelize.File {
	return w.f
}

// ResolveRegion looks up a defined name as seen from sheet.
func (w *Workbook) ResolveRegion(name, sheet string) (models.Region, error) {
	region, ok := parser.FindRegion(w.f, name, sheet)
	if !ok {
		return models.Region{}, lapsync.ErrRegionNotFound
	}
	return region, nil
}

// Regions lists every named range in the workbook.
func (w *Workbook) Regions() []models.Region {
	return parser.ExtractRegions(w.f)
}

// ReadCell returns the value of a single cell.
func (w *Workbook) ReadCell(ref models.CellRef) (models.CellValue, error) {
	return parser.ReadCell(w.f, ref)
}

// WriteCell stores a number. Non-finite values have no xlsx number
// representation and are stored as their text form ("NaN", "+Inf", "-Inf").
func (w *Workbook) WriteCell(ref models.CellRef, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return w.f.SetCellStr(ref.Sheet, ref.A1(), strconv.FormatFloat(value, 'g', -1, 64))
	}
	return w.f.SetCellFloat(ref.Sheet, ref.A1(), value, -1, 64)
}

// SetValue stores the edited value itself, as a user typing into the cell would.
func (w *Workbook) SetValue(ref models.CellRef, value models.CellValue) error {
	switch value.Kind {
	case models.KindNumber:
		return w.WriteCell(ref, value.Number)
	case models.KindNonNumeric:
		return w.f.SetCellStr(ref.Sheet, ref.A1(), value.Text)
	default:
		return w.f.SetCellValue(ref.Sheet, ref.A1(), nil)
	}
}

// LastRow returns the last row holding data on sheet.
func (w *Workbook) LastRow(sheet string) (int, error) {
	return parser.LastRow(w.f, sheet)
}

// Save writes the workbook back to its path, or to outputPath when set.
func (w *Workbook) Save(outputPath string) error {
	if outputPath == "" || outputPath == w.path {
		return w.f.Save()
	}
	return w.f.SaveAs(outputPath)
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// ApplyEdit stores the edited value and then synchronizes its row.
func ApplyEdit(w *Workbook, s *lapsync.Synchronizer, edit models.Edit) (*models.SyncResult, error) {
	idx, err := w.f.GetSheetIndex(edit.Ref.Sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, edit.Ref.Sheet)
	}
	if err := w.SetValue(edit.Ref, edit.Value); err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", edit.Ref, err)
	}

	plan, err := s.Apply(w, edit)
	result := &models.SyncResult{
		BookName: w.Name(),
		Edit:     edit,
		Branches: plan.Branches,
		Writes:   plan.Writes,
		Skipped:  plan.Skipped,
	}
	return result, err
}
