package composite

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every error Run reports before dispatch.
	ErrInvalidConfig = errors.New("invalid composite configuration")

	// ErrChannelMismatch reports a frame whose channel count differs from the
	// accumulator's.
	ErrChannelMismatch = errors.New("channel count mismatch")
)

// ConfigError names the buffer that failed validation. Frame is -1 for the
// accumulator.
type ConfigError struct {
	Frame int
	Name  string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("accumulator: %v", e.Err)
	}
	if e.Name != "" {
		return fmt.Sprintf("frame %d (%s): %v", e.Frame, e.Name, e.Err)
	}
	return fmt.Sprintf("frame %d: %v", e.Frame, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrInvalidConfig, e.Err}
}

// Failure reports a composite that aborted at runtime. The accumulator is
// undefined after a Failure.
type Failure struct {
	Frame   int
	Backend string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("composite failed at frame %d on %s backend: %v", f.Frame, f.Backend, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
