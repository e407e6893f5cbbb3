// Package config holds the engine configuration.
package config

import (
	"github.com/pkg/errors"

	zerrors "github.com/dudk/zen/errors"
)

// Config is the static configuration of a context. All capacities are
// fixed for the context lifetime.
type Config struct {
	BlockSize      int     `usage:"number of frames per block"`
	SampleRate     float64 `usage:"sample rate in Hz"`
	InputChannels  int     `usage:"number of input channels"`
	OutputChannels int     `usage:"number of output channels"`
	MaxObjects     int     `usage:"capacity of the object table"`
	MaxGraphs      int     `usage:"capacity of the graph table"`
	QueueCapacity  int     `usage:"capacity of the message queue"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		BlockSize:      64,
		SampleRate:     44100,
		InputChannels:  2,
		OutputChannels: 2,
		MaxObjects:     1024,
		MaxGraphs:      64,
		QueueCapacity:  1024,
	}
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	switch {
	case c.BlockSize <= 0:
		return errors.Wrapf(zerrors.ErrInvalidConfig, "block size %d", c.BlockSize)
	case c.SampleRate <= 0:
		return errors.Wrapf(zerrors.ErrInvalidConfig, "sample rate %v", c.SampleRate)
	case c.InputChannels < 0:
		return errors.Wrapf(zerrors.ErrInvalidConfig, "input channels %d", c.InputChannels)
	case c.OutputChannels < 0:
		return errors.Wrapf(zerrors.ErrInvalidConfig, "output channels %d", c.OutputChannels)
	case c.MaxObjects <= 0:
		return errors.Wrapf(zerrors.ErrInvalidConfig, "max objects %d", c.MaxObjects)
	case c.MaxGraphs <= 0:
		return errors.Wrapf(zerrors.ErrInvalidConfig, "max graphs %d", c.MaxGraphs)
	case c.QueueCapacity <= 0:
		return errors.Wrapf(zerrors.ErrInvalidConfig, "queue capacity %d", c.QueueCapacity)
	}
	return nil
}

// BlockDuration returns the duration of one block in milliseconds.
func (c Config) BlockDuration() float64 {
	return float64(c.BlockSize) / c.SampleRate * 1000
}
