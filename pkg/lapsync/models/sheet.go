package models

// ColumnTotals summarizes the numeric cells of one region.
type ColumnTotals struct {
	// Region is the summarized region.
	Region Region `json:"region"`
	// Count is the number of numeric cells.
	Count int `json:"count"`
	// Sum is the total of the numeric cells.
	Sum float64 `json:"sum"`
	// Mean is the average of the numeric cells (zero when Count is zero).
	Mean float64 `json:"mean"`
	// Ignored is the number of non-empty, non-numeric cells skipped.
	Ignored int `json:"ignored"`
}

// Totals summarizes the lap and duration columns of a sheet.
type Totals struct {
	// SheetName is the sheet the totals were computed for.
	SheetName string `json:"sheet_name"`
	// Laps summarizes the lap count column.
	Laps ColumnTotals `json:"laps"`
	// Durations summarizes the duration column.
	Durations ColumnTotals `json:"durations"`
}
