package lapsync

import (
	"math"

	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
)

// Plan is the set of writes derived from one edit.
type Plan struct {
	// Branches lists the regions the edited cell matched, laps first.
	Branches []models.Branch
	// Writes are the cells to set.
	Writes []models.Write
	// Skipped are derivations dropped by PolicySkip.
	Skipped []models.Write
}

// Classify returns every region that contains ref. Both regions are checked
// independently, so a cell inside overlapping regions matches twice.
func Classify(ref models.CellRef, laps, durations models.Region) []models.Branch {
	var branches []models.Branch
	if laps.Contains(ref) {
		branches = append(branches, models.BranchLaps)
	}
	if durations.Contains(ref) {
		branches = append(branches, models.BranchDurations)
	}
	return branches
}

// Pace returns the row's pace in minutes per lap: minutes + seconds/60.
// If either source cell is not a number the pace is NaN and a *DataError
// names the first offending cell.
func Pace(cfg Config, sheet string, snap models.RowSnapshot) (float64, error) {
	minutes, ok := snap.PaceMinutes.Float()
	if !ok {
		return math.NaN(), &DataError{
			Ref:    models.CellRef{Sheet: sheet, Row: snap.Row, Col: cfg.PaceMinutesColumn},
			Value:  snap.PaceMinutes,
			Reason: "pace_minutes",
		}
	}
	seconds, ok := snap.PaceSeconds.Float()
	if !ok {
		return math.NaN(), &DataError{
			Ref:    models.CellRef{Sheet: sheet, Row: snap.Row, Col: cfg.PaceSecondsColumn},
			Value:  snap.PaceSeconds,
			Reason: "pace_seconds",
		}
	}
	return minutes + seconds/60.0, nil
}

// Duration returns the duration in minutes of nlaps laps at pace.
func Duration(nlaps, pace float64) float64 {
	return nlaps * pace
}

// Laps returns the number of laps covered in dur minutes at pace.
// A zero pace yields ±Inf, or NaN when dur is also zero.
func Laps(dur, pace float64) float64 {
	return dur / pace
}

// editedNumber coerces the edited cell the way a spreadsheet formula would:
// a cleared cell counts as zero.
func editedNumber(edit models.Edit) (float64, error) {
	switch edit.Value.Kind {
	case models.KindNumber:
		return edit.Value.Number, nil
	case models.KindEmpty:
		return 0, nil
	default:
		return math.NaN(), &DataError{Ref: edit.Ref, Value: edit.Value, Reason: "edited_value"}
	}
}

// HandleEdit derives the sibling cell writes for an edit. It performs no I/O:
// snap must hold the pace cells of the edited row.
func HandleEdit(cfg Config, snap models.RowSnapshot, laps, durations models.Region, edit models.Edit) Plan {
	plan := Plan{Branches: Classify(edit.Ref, laps, durations)}
	if len(plan.Branches) == 0 {
		return plan
	}

	value, valueErr := editedNumber(edit)
	pace, paceErr := Pace(cfg, edit.Ref.Sheet, snap)
	dataErr := valueErr
	if dataErr == nil {
		dataErr = paceErr
	}

	for _, branch := range plan.Branches {
		w := models.Write{Branch: branch, Pace: pace, Err: dataErr}
		switch branch {
		case models.BranchLaps:
			w.Target = durations.CellInRow(edit.Ref.Sheet, edit.Ref.Row)
			w.Value = Duration(value, pace)
		case models.BranchDurations:
			w.Target = laps.CellInRow(edit.Ref.Sheet, edit.Ref.Row)
			w.Value = Laps(value, pace)
		}
		if dataErr != nil && cfg.Policy() == PolicySkip {
			plan.Skipped = append(plan.Skipped, w)
			continue
		}
		plan.Writes = append(plan.Writes, w)
	}
	return plan
}
