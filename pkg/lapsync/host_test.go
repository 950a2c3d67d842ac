package lapsync

import (
	"errors"
	"fmt"

	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
)

// memHost is an in-memory Host keyed by sheet-qualified A1 names.
type memHost struct {
	regions  map[string]models.Region
	cells    map[string]models.CellValue
	writes   []models.CellRef
	failNext error
}

func newMemHost() *memHost {
	return &memHost{
		regions: map[string]models.Region{
			"Reps":      {Name: "Reps", Sheet: "Sheet1", R1: 2, C1: 5, R2: 20, C2: 5},
			"Durations": {Name: "Durations", Sheet: "Sheet1", R1: 2, C1: 6, R2: 20, C2: 6},
		},
		cells: map[string]models.CellValue{},
	}
}

func (h *memHost) ResolveRegion(name, sheet string) (models.Region, error) {
	r, ok := h.regions[name]
	if !ok {
		return models.Region{}, ErrRegionNotFound
	}
	return r, nil
}

func (h *memHost) ReadCell(ref models.CellRef) (models.CellValue, error) {
	return h.cells[ref.String()], nil
}

func (h *memHost) WriteCell(ref models.CellRef, value float64) error {
	if h.failNext != nil {
		err := h.failNext
		h.failNext = nil
		return err
	}
	h.writes = append(h.writes, ref)
	h.cells[ref.String()] = models.CellValue{Kind: models.KindNumber, Number: value}
	return nil
}

func (h *memHost) set(cell string, v models.CellValue) {
	h.cells["Sheet1!"+cell] = v
}

func (h *memHost) number(cell string) float64 {
	v := h.cells["Sheet1!"+cell]
	return v.Number
}

// setPace stores a pace of minutes:seconds in columns C and D of row.
func (h *memHost) setPace(row int, minutes, seconds float64) {
	h.set(fmt.Sprintf("C%d", row), models.Number(minutes))
	h.set(fmt.Sprintf("D%d", row), models.Number(seconds))
}

var errDiskFull = errors.New("disk full")
