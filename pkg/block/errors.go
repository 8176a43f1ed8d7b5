package block

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrConfiguration marks an invalid mode or capacity.
	ErrConfiguration = errors.New("invalid packing configuration")
	// ErrCapacityViolation marks a record that can never fit in a block.
	ErrCapacityViolation = errors.New("capacity violation")
)

// ConfigError describes a rejected packing parameter
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s=%v %s", ErrConfiguration, e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrConfiguration
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// CapacityError reports a payload that does not fit in a block.
// Record is -1 when the violation is detected from the configuration alone.
type CapacityError struct {
	Mode     Mode
	Capacity int
	Record   int
	Size     int
}

func (e *CapacityError) Error() string {
	if e.Record < 0 {
		return fmt.Sprintf("%v: %s blocks of %d bytes cannot hold a %d-byte record",
			ErrCapacityViolation, e.Mode, e.Capacity, e.Size)
	}
	return fmt.Sprintf("%v: record %d is %d bytes, %s block capacity is %d",
		ErrCapacityViolation, e.Record, e.Size, e.Mode, e.Capacity)
}

// Unwrap returns ErrCapacityViolation
func (e *CapacityError) Unwrap() error {
	return ErrCapacityViolation
}
