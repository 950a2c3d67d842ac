package models

// SyncResult is the outcome of applying one edit to a workbook.
type SyncResult struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Edit is the edit that was applied.
	Edit Edit `json:"edit"`
	// Branches lists the regions the edited cell matched, in evaluation order.
	Branches []Branch `json:"branches"`
	// Writes lists the cells written.
	Writes []Write `json:"writes"`
	// Skipped lists derivations dropped because of bad input data.
	Skipped []Write `json:"skipped,omitempty"`
}
