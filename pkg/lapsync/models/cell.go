// Package models defines data structures for lap/duration synchronization.
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRef addresses a single cell of a worksheet.
type CellRef struct {
	// Sheet is the worksheet name.
	Sheet string `json:"sheet"`
	// Row is the row index (1-based).
	Row int `json:"row"`
	// Col is the column index (1-based).
	Col int `json:"col"`
}

// ParseCellRef builds a CellRef from an A1-style cell name.
func ParseCellRef(sheet, cell string) (CellRef, error) {
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(cell, "$", ""))
	if err != nil {
		return CellRef{}, err
	}
	return CellRef{Sheet: sheet, Row: row, Col: col}, nil
}

// A1 returns the cell name in A1 notation (e.g. "E5").
func (r CellRef) A1() string {
	name, err := excelize.CoordinatesToCellName(r.Col, r.Row)
	if err != nil {
		return "R" + strconv.Itoa(r.Row) + "C" + strconv.Itoa(r.Col)
	}
	return name
}

// String returns the sheet-qualified A1 notation.
func (r CellRef) String() string {
	return r.Sheet + "!" + r.A1()
}

// ValueKind tags the variant held by a CellValue.
type ValueKind int

const (
	// KindEmpty is a cell with no value.
	KindEmpty ValueKind = iota
	// KindNumber is a cell holding a number.
	KindNumber
	// KindNonNumeric is a cell holding text or any other non-numeric value.
	KindNonNumeric
)

func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindNonNumeric:
		return "non_numeric"
	default:
		return "unknown"
	}
}

// CellValue is a cell's content as one of Number, Empty or NonNumeric.
type CellValue struct {
	Kind   ValueKind
	Number float64
	Text   string
}

// Number returns a numeric CellValue.
func Number(f float64) CellValue {
	return CellValue{Kind: KindNumber, Number: f}
}

// Empty returns an empty CellValue.
func Empty() CellValue {
	return CellValue{Kind: KindEmpty}
}

// NonNumeric returns a CellValue holding text.
func NonNumeric(s string) CellValue {
	return CellValue{Kind: KindNonNumeric, Text: s}
}

// ParseCellValue classifies a raw cell string.
// Blank strings are Empty, strings that parse as a finite float are Number,
// everything else (including "NaN" and "Inf" text) is NonNumeric.
func ParseCellValue(s string) CellValue {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Empty()
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Number(f)
	}
	return NonNumeric(s)
}

// Float returns the numeric value and whether the cell held a number.
// Non-numbers report NaN.
func (v CellValue) Float() (float64, bool) {
	if v.Kind == KindNumber {
		return v.Number, true
	}
	return math.NaN(), false
}

// String renders the value the way a spreadsheet would display it.
func (v CellValue) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindNonNumeric:
		return v.Text
	default:
		return ""
	}
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and
// empty cells as null.
func (v CellValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.Number)
	case KindNonNumeric:
		return json.Marshal(v.Text)
	default:
		return []byte("null"), nil
	}
}
