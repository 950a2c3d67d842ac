package lapsync

import (
	"errors"
	"fmt"

	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
)

// ErrRegionNotFound indicates a named region does not exist in the workbook.
var ErrRegionNotFound = errors.New("named region not found")

// ErrInvalidConfig indicates the synchronizer configuration is unusable.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrInvalidTransition indicates the synchronizer was driven out of order.
var ErrInvalidTransition = errors.New("invalid phase transition")

// ConfigError reports a named region that could not be resolved.
type ConfigError struct {
	Name  string
	Sheet string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("region %q (sheet %q): %v", e.Name, e.Sheet, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(name, sheet string, err error) *ConfigError {
	return &ConfigError{
		Name:  name,
		Sheet: sheet,
		Err:   err,
	}
}

// DataError reports a cell whose value could not be used as a number.
type DataError struct {
	Ref    models.CellRef
	Value  models.CellValue
	Reason string // "pace_minutes", "pace_seconds", "edited_value"
}

func (e *DataError) Error() string {
	return fmt.Sprintf("cell %s (%s): %s value %q is not a number", e.Ref, e.Reason, e.Value.Kind, e.Value.String())
}
