package models

import "encoding/json"

// Edit is a notification that a single cell was changed.
type Edit struct {
	// ID correlates log lines and results for one edit.
	ID string `json:"id"`
	// Ref is the edited cell.
	Ref CellRef `json:"ref"`
	// Value is the cell's new value.
	Value CellValue `json:"value"`
}

// Write is an instruction to set one cell to a derived value.
type Write struct {
	// Target is the cell to write.
	Target CellRef `json:"target"`
	// Value is the derived number. It may be NaN or infinite.
	Value float64 `json:"-"`
	// Branch is the region the edited cell was classified into.
	Branch Branch `json:"branch"`
	// Pace is the row pace in minutes per lap used for the derivation.
	Pace float64 `json:"-"`
	// Err is set when an input was not numeric.
	Err error `json:"-"`
}

// MarshalJSON renders the value like CellValue does, so NaN and infinite
// results survive encoding as strings.
func (w Write) MarshalJSON() ([]byte, error) {
	view := struct {
		Target CellRef   `json:"target"`
		Cell   string    `json:"cell"`
		Value  CellValue `json:"value"`
		Branch Branch    `json:"branch"`
		Pace   CellValue `json:"pace"`
		Error  string    `json:"error,omitempty"`
	}{
		Target: w.Target,
		Cell:   w.Target.A1(),
		Value:  Number(w.Value),
		Branch: w.Branch,
		Pace:   Number(w.Pace),
	}
	if w.Err != nil {
		view.Error = w.Err.Error()
	}
	return json.Marshal(view)
}

// RowSnapshot holds the pace source cells of one row.
type RowSnapshot struct {
	// Row is the row index (1-based).
	Row int
	// PaceMinutes is the pace-minutes cell value.
	PaceMinutes CellValue
	// PaceSeconds is the pace-seconds cell value.
	PaceSeconds CellValue
}
