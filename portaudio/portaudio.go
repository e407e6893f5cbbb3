// Package portaudio plays audio on the default output device.
package portaudio

import (
	"github.com/gordonklaus/portaudio"
	"go.uber.org/multierr"

	"github.com/dudk/zen/internal/layout"
)

// Sink writes blocks to the default output stream. Blocks must have the
// block size the sink was created with.
type Sink struct {
	stream   *portaudio.Stream
	buffer   []float32
	channels int
}

// NewSink initializes portaudio and starts the default output stream.
func NewSink(sampleRate float64, channels, blockSize int) (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s := &Sink{
		buffer:   make([]float32, blockSize*channels),
		channels: channels,
	}
	stream, err := portaudio.OpenDefaultStream(0, channels, sampleRate, blockSize, &s.buffer)
	if err != nil {
		return nil, multierr.Append(err, portaudio.Terminate())
	}
	if err := stream.Start(); err != nil {
		return nil, multierr.Combine(err, stream.Close(), portaudio.Terminate())
	}
	s.stream = stream
	return s, nil
}

// Write plays a channel-major block.
func (s *Sink) Write(block []float32) error {
	layout.Interleave(s.buffer, block, s.channels)
	return s.stream.Write()
}

// Close stops the stream and terminates portaudio.
func (s *Sink) Close() error {
	return multierr.Combine(s.stream.Stop(), s.stream.Close(), portaudio.Terminate())
}
