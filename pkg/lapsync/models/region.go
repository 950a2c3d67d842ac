package models

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Branch identifies which linked column a region holds.
type Branch string

const (
	// BranchLaps is the lap count column.
	BranchLaps Branch = "laps"
	// BranchDurations is the duration column.
	BranchDurations Branch = "durations"
)

// Region represents the cell coordinate bounds of a named range.
type Region struct {
	// Name is the defined name the region was resolved from.
	Name string `json:"name"`
	// Sheet is the sheet the range refers to.
	Sheet string `json:"sheet"`
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// Contains reports whether ref lies inside the region, inclusive on all
// four edges. Sheet names compare case-insensitively.
func (r Region) Contains(ref CellRef) bool {
	if !strings.EqualFold(r.Sheet, ref.Sheet) {
		return false
	}
	return ref.Row >= r.R1 && ref.Row <= r.R2 &&
		ref.Col >= r.C1 && ref.Col <= r.C2
}

// Column returns the column holding the region's values.
func (r Region) Column() int {
	return r.C1
}

// CellInRow returns the region's cell for the given row on sheet.
func (r Region) CellInRow(sheet string, row int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: r.Column()}
}

// Ref returns the region in sheet-qualified A1 range notation.
func (r Region) Ref() string {
	start, _ := excelize.CoordinatesToCellName(r.C1, r.R1)
	end, _ := excelize.CoordinatesToCellName(r.C2, r.R2)
	return fmt.Sprintf("%s!%s:%s", r.Sheet, start, end)
}
