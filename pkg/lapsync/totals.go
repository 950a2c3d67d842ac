package lapsync

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
)

// Totals sums the lap count and duration columns as seen from sheet.
// Empty cells are skipped; non-numeric cells are skipped and counted.
func (s *Synchronizer) Totals(host Host, sheet string) (*models.Totals, error) {
	laps, durations, err := s.Regions(host, sheet)
	if err != nil {
		return nil, err
	}

	lapTotals, err := columnTotals(host, laps)
	if err != nil {
		return nil, err
	}
	durationTotals, err := columnTotals(host, durations)
	if err != nil {
		return nil, err
	}
	s.log.Debug("totals for %s: %d laps rows, %d duration rows", sheet, lapTotals.Count, durationTotals.Count)

	return &models.Totals{
		SheetName: sheet,
		Laps:      lapTotals,
		Durations: durationTotals,
	}, nil
}

// rowLimiter is implemented by hosts that know the last used row of a sheet,
// so whole-column regions are not scanned to the sheet's maximum row.
type rowLimiter interface {
	LastRow(sheet string) (int, error)
}

func columnTotals(host Host, region models.Region) (models.ColumnTotals, error) {
	totals := models.ColumnTotals{Region: region}
	last := region.R2
	if rl, ok := host.(rowLimiter); ok {
		used, err := rl.LastRow(region.Sheet)
		if err != nil {
			return totals, err
		}
		last = min(last, used)
	}

	var data stats.Float64Data
	for row := region.R1; row <= last; row++ {
		v, err := host.ReadCell(region.CellInRow(region.Sheet, row))
		if err != nil {
			return totals, fmt.Errorf("failed to read %s row %d: %w", region.Name, row, err)
		}
		switch v.Kind {
		case models.KindNumber:
			data = append(data, v.Number)
		case models.KindNonNumeric:
			totals.Ignored++
		}
	}

	totals.Count = data.Len()
	if totals.Count == 0 {
		return totals, nil
	}
	sum, err := stats.Sum(data)
	if err != nil {
		return totals, err
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return totals, err
	}
	totals.Sum = sum
	totals.Mean = mean
	return totals, nil
}
