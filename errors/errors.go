// Package errors defines the error values returned by zen packages.
package errors

import "errors"

var (
	// ErrBufferOverflow is returned when a fixed-capacity container is full.
	ErrBufferOverflow = errors.New("buffer overflow")
	// ErrIndexOutOfBounds is returned when an index exceeds collection bounds.
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	// ErrParse is returned for malformed textual message sources.
	ErrParse = errors.New("parse error")
	// ErrUnknownObject is returned when no factory can build an object label.
	ErrUnknownObject = errors.New("unknown object")
	// ErrInvalidConfig is returned for configuration values out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)
