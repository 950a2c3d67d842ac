package lapsync

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/lapsync-go/internal/logging"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
)

func newTestSynchronizer(t *testing.T, cfg Config) (*Synchronizer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s, err := NewSynchronizer(cfg, logging.New(&buf, logging.LevelTrace))
	require.NoError(t, err)
	return s, &buf
}

func TestApplyScenario(t *testing.T) {
	host := newMemHost()
	host.setPace(5, 3, 30)
	s, logs := newTestSynchronizer(t, DefaultConfig())

	host.set("E5", models.Number(4))
	plan, err := s.Apply(host, edit(5, 5, models.Number(4)))
	require.NoError(t, err)
	require.Len(t, plan.Writes, 1)
	assert.Equal(t, 14.0, host.number("F5"))
	assert.Equal(t, PhaseIdle, s.Phase())

	host.set("F5", models.Number(7))
	_, err = s.Apply(host, edit(5, 6, models.Number(7)))
	require.NoError(t, err)
	assert.Equal(t, 2.0, host.number("E5"))

	assert.Contains(t, logs.String(), "range Sheet1!E5 was edited")
	assert.Contains(t, logs.String(), "phase writing_back -> idle")
}

func TestApplyOutsideRegionsWritesNothing(t *testing.T) {
	host := newMemHost()
	host.setPace(5, 3, 30)
	s, _ := newTestSynchronizer(t, DefaultConfig())

	for _, col := range []int{1, 2, 3, 4, 7} {
		plan, err := s.Apply(host, edit(5, col, models.Number(9)))
		require.NoError(t, err)
		assert.Empty(t, plan.Writes)
	}
	assert.Empty(t, host.writes)
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestApplyMissingRegion(t *testing.T) {
	host := newMemHost()
	host.setPace(5, 3, 30)
	delete(host.regions, "Durations")
	s, _ := newTestSynchronizer(t, DefaultConfig())

	_, err := s.Apply(host, edit(5, 5, models.Number(4)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegionNotFound))
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "Durations", cfgErr.Name)
	assert.Empty(t, host.writes)
	assert.Equal(t, PhaseIdle, s.Phase())

	// Edits outside both regions still need the regions to classify.
	_, err = s.Apply(host, edit(5, 1, models.Number(4)))
	assert.True(t, errors.Is(err, ErrRegionNotFound))
}

func TestApplyResolvesRegionsPerEdit(t *testing.T) {
	host := newMemHost()
	host.setPace(5, 3, 30)
	s, _ := newTestSynchronizer(t, DefaultConfig())

	_, err := s.Apply(host, edit(5, 5, models.Number(4)))
	require.NoError(t, err)

	// Move the duration column from F to G.
	host.regions["Durations"] = models.Region{Name: "Durations", Sheet: "Sheet1", R1: 2, C1: 7, R2: 20, C2: 7}
	_, err = s.Apply(host, edit(5, 5, models.Number(2)))
	require.NoError(t, err)
	assert.Equal(t, 7.0, host.number("G5"))
	assert.Equal(t, 14.0, host.number("F5"))
}

func TestApplyZeroPaceDoesNotHalt(t *testing.T) {
	host := newMemHost()
	host.setPace(5, 0, 0)
	s, _ := newTestSynchronizer(t, DefaultConfig())

	_, err := s.Apply(host, edit(5, 5, models.Number(4)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, host.number("F5"))

	plan, err := s.Apply(host, edit(5, 6, models.Number(7)))
	require.NoError(t, err)
	require.Len(t, plan.Writes, 1)
	assert.Equal(t, []models.CellRef{{Sheet: "Sheet1", Row: 5, Col: 6}, {Sheet: "Sheet1", Row: 5, Col: 5}}, host.writes)
}

func TestApplyEmptyPaceWritesNaN(t *testing.T) {
	host := newMemHost()
	s, logs := newTestSynchronizer(t, DefaultConfig())

	plan, err := s.Apply(host, edit(5, 5, models.Number(4)))
	require.NoError(t, err)
	require.Len(t, plan.Writes, 1)
	assert.Error(t, plan.Writes[0].Err)
	assert.Len(t, host.writes, 1)
	assert.Contains(t, logs.String(), "[WARN]")
}

func TestApplySkipPolicy(t *testing.T) {
	host := newMemHost()
	cfg := DefaultConfig()
	cfg.OnDataError = PolicySkip
	s, _ := newTestSynchronizer(t, cfg)

	plan, err := s.Apply(host, edit(5, 5, models.Number(4)))
	require.NoError(t, err)
	assert.Empty(t, plan.Writes)
	assert.Len(t, plan.Skipped, 1)
	assert.Empty(t, host.writes)
}

func TestApplyWriteFailure(t *testing.T) {
	host := newMemHost()
	host.setPace(5, 3, 30)
	host.failNext = errDiskFull
	s, _ := newTestSynchronizer(t, DefaultConfig())

	plan, err := s.Apply(host, edit(5, 5, models.Number(4)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDiskFull))
	assert.Empty(t, plan.Writes)
	assert.Equal(t, PhaseIdle, s.Phase())

	// The synchronizer recovers for the next edit.
	_, err = s.Apply(host, edit(5, 5, models.Number(4)))
	require.NoError(t, err)
}

func TestTransitions(t *testing.T) {
	s, _ := newTestSynchronizer(t, DefaultConfig())

	require.NoError(t, s.transition(PhaseClassifying))
	require.NoError(t, s.transition(PhaseComputing))
	err := s.transition(PhaseClassifying)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	require.NoError(t, s.transition(PhaseWritingBack))
	require.NoError(t, s.transition(PhaseIdle))
	assert.True(t, errors.Is(s.transition(PhaseWritingBack), ErrInvalidTransition))
}

func TestNewSynchronizerValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PaceMinutesColumn = 0
	_, err := NewSynchronizer(cfg, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg = DefaultConfig()
	cfg.LapsRegionName = ""
	_, err = NewSynchronizer(cfg, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg = DefaultConfig()
	cfg.OnDataError = "ignore"
	_, err = NewSynchronizer(cfg, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg = DefaultConfig()
	cfg.OnDataError = ""
	s, err := NewSynchronizer(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, PolicyWrite, s.Config().Policy())
}

func TestTotals(t *testing.T) {
	host := newMemHost()
	host.set("E2", models.Number(4))
	host.set("E3", models.Number(6))
	host.set("E4", models.NonNumeric("rest"))
	host.set("F2", models.Number(14))
	host.set("F3", models.Number(21))
	s, _ := newTestSynchronizer(t, DefaultConfig())

	totals, err := s.Totals(host, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Laps.Count)
	assert.Equal(t, 10.0, totals.Laps.Sum)
	assert.Equal(t, 5.0, totals.Laps.Mean)
	assert.Equal(t, 1, totals.Laps.Ignored)
	assert.Equal(t, 35.0, totals.Durations.Sum)
	assert.Equal(t, 17.5, totals.Durations.Mean)

	delete(host.regions, "Reps")
	_, err = s.Totals(host, "Sheet1")
	assert.True(t, errors.Is(err, ErrRegionNotFound))
}

func TestTotalsEmptyColumn(t *testing.T) {
	s, _ := newTestSynchronizer(t, DefaultConfig())

	totals, err := s.Totals(newMemHost(), "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, 0, totals.Durations.Count)
	assert.Equal(t, 0.0, totals.Durations.Sum)
}
