package composite

import (
	"fmt"

	"github.com/samcharles93/mosaic/internal/tensor"
)

// Validate checks the accumulator and every frame without touching any
// buffer. The first problem found is returned as a *ConfigError.
func Validate(frames []Frame, acc *tensor.Buffer) error {
	if acc == nil {
		return &ConfigError{Frame: -1, Err: fmt.Errorf("nil buffer")}
	}
	if err := acc.Validate(); err != nil {
		return &ConfigError{Frame: -1, Err: err}
	}
	if len(frames) == 0 {
		return &ConfigError{Frame: -1, Err: fmt.Errorf("no frames")}
	}
	for i, f := range frames {
		if f.Image == nil {
			return &ConfigError{Frame: i, Name: f.Name, Err: fmt.Errorf("nil image")}
		}
		if err := f.Image.Validate(); err != nil {
			return &ConfigError{Frame: i, Name: f.Name, Err: err}
		}
		if got, want := f.Image.Shape.Channels, acc.Shape.Channels; got != want {
			return &ConfigError{
				Frame: i,
				Name:  f.Name,
				Err:   fmt.Errorf("%w: image has %d channels, accumulator has %d", ErrChannelMismatch, got, want),
			}
		}
	}
	return nil
}
