// Package run drives a zen engine block by block from an audio source to
// an audio sink.
package run

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type (
	// Engine processes one block of channel-major audio per call.
	Engine interface {
		Process(in, out []float32)
		BlockSize() int
		NumInputChannels() int
		NumOutputChannels() int
	}

	// Source fills a channel-major block and returns the number of frames
	// read. It returns io.EOF when it is exhausted. Frames after a short
	// read must be zeroed.
	Source interface {
		Read(block []float32) (int, error)
	}

	// Sink consumes a channel-major block.
	Sink interface {
		Write(block []float32) error
	}

	// Flusher is implemented by sinks that buffer their output.
	Flusher interface {
		Flush() error
	}
)

// Run drives e in its own goroutine until source returns io.EOF, an
// endpoint fails or ctx is done. Source blocks hold at least one channel
// even if the engine has no inputs.
//
// When the run ends the sink is flushed and endpoints implementing
// io.Closer are closed. The returned channel yields at most one error,
// combining every failure, and is closed after that.
func Run(ctx context.Context, e Engine, source Source, sink Sink) <-chan error {
	errc := make(chan error, 1)
	go run(ctx, e, source, sink, errc)
	return errc
}

// Wait blocks until the run is done and returns its error.
func Wait(errc <-chan error) error {
	var err error
	for e := range errc {
		err = multierr.Append(err, e)
	}
	return err
}

func run(ctx context.Context, e Engine, source Source, sink Sink, errc chan<- error) {
	defer close(errc)
	bs := e.BlockSize()
	inputs := e.NumInputChannels()
	block := make([]float32, max(inputs, 1)*bs)
	in := block[:inputs*bs]
	out := make([]float32, e.NumOutputChannels()*bs)

	var err error
	for err == nil {
		err = step(ctx, e, source, sink, block, in, out)
	}
	if err == io.EOF {
		err = nil
	}
	err = multierr.Append(err, finish(source, sink))
	if err != nil {
		errc <- err
	}
}

// step processes one block. io.EOF is returned when ctx is done or the
// source is exhausted.
func step(ctx context.Context, e Engine, source Source, sink Sink, block, in, out []float32) error {
	select {
	case <-ctx.Done():
		return io.EOF
	default:
	}
	read, err := source.Read(block)
	if err != nil {
		if err == io.EOF {
			return err
		}
		return errors.Wrap(err, "error reading source")
	}
	e.Process(in, out)
	if err := sink.Write(out); err != nil {
		return errors.Wrap(err, "error writing sink")
	}
	if read < e.BlockSize() {
		return io.EOF
	}
	return nil
}

func finish(source Source, sink Sink) error {
	var err error
	if f, ok := sink.(Flusher); ok {
		if ferr := f.Flush(); ferr != nil {
			err = multierr.Append(err, errors.Wrap(ferr, "error flushing sink"))
		}
	}
	for _, v := range []interface{}{source, sink} {
		if c, ok := v.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil {
				err = multierr.Append(err, errors.Wrap(cerr, "error closing endpoint"))
			}
		}
	}
	return err
}

// Silence is a source of zeros. Frames limits its length, zero means
// endless.
type Silence struct {
	Channels int
	Frames   int
	read     int
}

// NewSilence returns a silent source sized for e.
func NewSilence(e Engine, frames int) *Silence {
	return &Silence{Channels: max(e.NumInputChannels(), 1), Frames: frames}
}

// Read zeroes the block.
func (s *Silence) Read(block []float32) (int, error) {
	if s.Frames > 0 && s.read >= s.Frames {
		return 0, io.EOF
	}
	for i := range block {
		block[i] = 0
	}
	n := len(block) / s.Channels
	if s.Frames > 0 && s.Frames-s.read < n {
		n = s.Frames - s.read
	}
	s.read += n
	return n, nil
}
