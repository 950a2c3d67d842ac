package lapsync

import (
	"fmt"

	"github.com/ukaji3/lapsync-go/internal/logging"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
)

// Host is the spreadsheet the synchronizer reads and writes.
type Host interface {
	// ResolveRegion looks up a named region as seen from sheet.
	ResolveRegion(name, sheet string) (models.Region, error)
	// ReadCell returns the value of a single cell.
	ReadCell(ref models.CellRef) (models.CellValue, error)
	// WriteCell sets a single cell to a number.
	WriteCell(ref models.CellRef, value float64) error
}

// Phase is the synchronizer's position in handling one edit.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseClassifying Phase = "classifying"
	PhaseComputing   Phase = "computing"
	PhaseWritingBack Phase = "writing_back"
)

func isAllowedTransition(from, to Phase) bool {
	switch from {
	case PhaseIdle:
		return to == PhaseClassifying
	case PhaseClassifying:
		return to == PhaseComputing || to == PhaseIdle
	case PhaseComputing:
		return to == PhaseWritingBack || to == PhaseIdle
	case PhaseWritingBack:
		return to == PhaseIdle
	default:
		return false
	}
}

// Synchronizer applies edits to a Host one at a time.
// It is not safe for concurrent use; callers serialize edits.
type Synchronizer struct {
	cfg   Config
	log   *logging.Logger
	phase Phase
}

// NewSynchronizer creates a Synchronizer. A nil logger discards output.
func NewSynchronizer(cfg Config, logger *logging.Logger) (*Synchronizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Synchronizer{cfg: cfg, log: logger, phase: PhaseIdle}, nil
}

// Config returns the synchronizer configuration.
func (s *Synchronizer) Config() Config {
	return s.cfg
}

// Phase returns the current phase. It is PhaseIdle between edits.
func (s *Synchronizer) Phase() Phase {
	return s.phase
}

func (s *Synchronizer) transition(to Phase) error {
	if !isAllowedTransition(s.phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.phase, to)
	}
	s.log.Trace("phase %s -> %s", s.phase, to)
	s.phase = to
	return nil
}

// Regions resolves both named regions as seen from sheet.
// Regions are looked up on every call and never cached.
func (s *Synchronizer) Regions(host Host, sheet string) (laps, durations models.Region, err error) {
	laps, err = host.ResolveRegion(s.cfg.LapsRegionName, sheet)
	if err != nil {
		return laps, durations, NewConfigError(s.cfg.LapsRegionName, sheet, err)
	}
	durations, err = host.ResolveRegion(s.cfg.DurationsRegionName, sheet)
	if err != nil {
		return laps, durations, NewConfigError(s.cfg.DurationsRegionName, sheet, err)
	}
	return laps, durations, nil
}

// Snapshot reads the pace cells of row.
func (s *Synchronizer) Snapshot(host Host, sheet string, row int) (models.RowSnapshot, error) {
	snap := models.RowSnapshot{Row: row}
	var err error
	snap.PaceMinutes, err = host.ReadCell(models.CellRef{Sheet: sheet, Row: row, Col: s.cfg.PaceMinutesColumn})
	if err != nil {
		return snap, fmt.Errorf("failed to read pace minutes: %w", err)
	}
	snap.PaceSeconds, err = host.ReadCell(models.CellRef{Sheet: sheet, Row: row, Col: s.cfg.PaceSecondsColumn})
	if err != nil {
		return snap, fmt.Errorf("failed to read pace seconds: %w", err)
	}
	return snap, nil
}

// Apply handles one edit notification: classify the edited cell, read the
// row pace, derive the sibling value and write it back. A missing region
// aborts before any write. A failed write aborts the remaining writes;
// earlier writes are kept.
func (s *Synchronizer) Apply(host Host, edit models.Edit) (Plan, error) {
	if err := s.transition(PhaseClassifying); err != nil {
		return Plan{}, err
	}
	defer func() { s.phase = PhaseIdle }()

	s.log.Info("[%s] range %s was edited (%s)", edit.ID, edit.Ref, edit.Value.Kind)

	laps, durations, err := s.Regions(host, edit.Ref.Sheet)
	if err != nil {
		s.log.Error("[%s] %v", edit.ID, err)
		return Plan{}, err
	}

	branches := Classify(edit.Ref, laps, durations)
	s.log.Debug("[%s] range %s is a lap count: %t", edit.ID, edit.Ref.A1(), laps.Contains(edit.Ref))
	s.log.Debug("[%s] range %s is a duration: %t", edit.ID, edit.Ref.A1(), durations.Contains(edit.Ref))
	if len(branches) == 0 {
		return Plan{}, s.transition(PhaseIdle)
	}
	if len(branches) > 1 {
		s.log.Warn("[%s] %s lies in both %s and %s; applying both derivations",
			edit.ID, edit.Ref, laps.Ref(), durations.Ref())
	}

	if err := s.transition(PhaseComputing); err != nil {
		return Plan{}, err
	}
	snap, err := s.Snapshot(host, edit.Ref.Sheet, edit.Ref.Row)
	if err != nil {
		return Plan{}, err
	}
	plan := HandleEdit(s.cfg, snap, laps, durations, edit)
	for _, w := range plan.Writes {
		s.log.Info("[%s] pace for row %d is %g; %s %s = %g",
			edit.ID, edit.Ref.Row, w.Pace, otherBranch(w.Branch), w.Target.A1(), w.Value)
		if w.Err != nil {
			s.log.Warn("[%s] %v", edit.ID, w.Err)
		}
	}
	for _, w := range plan.Skipped {
		s.log.Warn("[%s] skipped write to %s: %v", edit.ID, w.Target, w.Err)
	}

	if err := s.transition(PhaseWritingBack); err != nil {
		return plan, err
	}
	for i, w := range plan.Writes {
		if err := host.WriteCell(w.Target, w.Value); err != nil {
			plan.Writes = plan.Writes[:i]
			return plan, fmt.Errorf("failed to write %s: %w", w.Target, err)
		}
	}
	return plan, s.transition(PhaseIdle)
}

// otherBranch names the column a branch writes to.
func otherBranch(b models.Branch) models.Branch {
	if b == models.BranchLaps {
		return models.BranchDurations
	}
	return models.BranchLaps
}
