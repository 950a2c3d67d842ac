// Package lapsync keeps a lap count column and a duration column of a
// spreadsheet consistent using each row's pace.
package lapsync

import "fmt"

// DataErrorPolicy decides what happens to a derivation whose inputs are not numeric.
type DataErrorPolicy string

const (
	// PolicyWrite writes the NaN or infinite result as-is.
	PolicyWrite DataErrorPolicy = "write"
	// PolicySkip drops the write and only reports the error.
	PolicySkip DataErrorPolicy = "skip"
)

// Default values match the layout of the training log sheet: pace minutes in
// column C, pace seconds in column D.
const (
	DefaultPaceMinutesColumn = 3
	DefaultPaceSecondsColumn = 4
	DefaultLapsRegion        = "Reps"
	DefaultDurationsRegion   = "Durations"
)

// Config configures a Synchronizer.
type Config struct {
	// PaceMinutesColumn is the 1-based column holding pace minutes.
	PaceMinutesColumn int
	// PaceSecondsColumn is the 1-based column holding pace seconds.
	PaceSecondsColumn int
	// LapsRegionName is the defined name of the lap count region.
	LapsRegionName string
	// DurationsRegionName is the defined name of the duration region.
	DurationsRegionName string
	// OnDataError selects the data error policy.
	// If empty, defaults to PolicyWrite.
	OnDataError DataErrorPolicy
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PaceMinutesColumn:   DefaultPaceMinutesColumn,
		PaceSecondsColumn:   DefaultPaceSecondsColumn,
		LapsRegionName:      DefaultLapsRegion,
		DurationsRegionName: DefaultDurationsRegion,
		OnDataError:         PolicyWrite,
	}
}

// Policy returns the effective data error policy.
func (c Config) Policy() DataErrorPolicy {
	if c.OnDataError == "" {
		return PolicyWrite
	}
	return c.OnDataError
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.PaceMinutesColumn < 1 || c.PaceSecondsColumn < 1 {
		return fmt.Errorf("%w: pace columns must be 1-based, got %d and %d",
			ErrInvalidConfig, c.PaceMinutesColumn, c.PaceSecondsColumn)
	}
	if c.LapsRegionName == "" || c.DurationsRegionName == "" {
		return fmt.Errorf("%w: region names must not be empty", ErrInvalidConfig)
	}
	switch c.Policy() {
	case PolicyWrite, PolicySkip:
	default:
		return fmt.Errorf("%w: unknown data error policy %q (must be write or skip)", ErrInvalidConfig, c.OnDataError)
	}
	return nil
}

// ParsePolicy converts a string into a DataErrorPolicy.
func ParsePolicy(s string) (DataErrorPolicy, error) {
	switch DataErrorPolicy(s) {
	case PolicyWrite, PolicySkip:
		return DataErrorPolicy(s), nil
	default:
		return "", fmt.Errorf("%w: unknown data error policy %q (must be write or skip)", ErrInvalidConfig, s)
	}
}
