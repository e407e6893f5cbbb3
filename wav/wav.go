// Package wav reads and writes wav files as run endpoints.
package wav

import (
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"pipelined.dev/signal"

	"github.com/dudk/zen/internal/layout"
)

type (
	// Source reads a wav file. Blocks hold NumChannels channels.
	Source struct {
		file       *os.File
		decoder    *wav.Decoder
		buffer     *audio.IntBuffer
		channels   int
		sampleRate int
		bitDepth   signal.BitDepth
	}

	// Sink writes a wav file.
	Sink struct {
		file     *os.File
		encoder  *wav.Encoder
		buffer   *audio.IntBuffer
		channels int
		bitDepth signal.BitDepth
		floats   signal.Float64
		ints     []int
	}
)

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 16 and 32 bit depth is supported")

// NewSource opens the wav file at path.
func NewSource(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, multierr.Append(errors.Errorf("wav %s is not valid", path), file.Close())
	}
	bitDepth := signal.BitDepth(decoder.BitDepth)
	if bitDepth != signal.BitDepth16 && bitDepth != signal.BitDepth32 {
		return nil, multierr.Append(ErrUnsupportedBitDepth, file.Close())
	}
	return &Source{
		file:       file,
		decoder:    decoder,
		channels:   int(decoder.NumChans),
		sampleRate: int(decoder.SampleRate),
		bitDepth:   bitDepth,
	}, nil
}

// NumChannels returns the number of channels of the file.
func (s *Source) NumChannels() int {
	return s.channels
}

// SampleRate returns the sample rate of the file.
func (s *Source) SampleRate() int {
	return s.sampleRate
}

// Read fills a channel-major block with the next frames of the file.
func (s *Source) Read(block []float32) (int, error) {
	size := len(block) / s.channels
	if s.buffer == nil || len(s.buffer.Data) != size*s.channels {
		s.buffer = &audio.IntBuffer{
			Format:         s.decoder.Format(),
			Data:           make([]int, size*s.channels),
			SourceBitDepth: int(s.bitDepth),
		}
	}
	n, err := s.decoder.PCMBuffer(s.buffer)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	floats := signal.InterInt{Data: s.buffer.Data[:n], NumChannels: s.channels, BitDepth: s.bitDepth}.AsFloat64()
	read := floats.Size()
	for c := range floats {
		for i := 0; i < size; i++ {
			if i < read {
				block[c*size+i] = float32(floats[c][i])
			} else {
				block[c*size+i] = 0
			}
		}
	}
	return read, nil
}

// Close closes the file.
func (s *Source) Close() error {
	return s.file.Close()
}

// NewSink creates the wav file at path.
func NewSink(path string, sampleRate, channels int, bitDepth signal.BitDepth) (*Sink, error) {
	if bitDepth != signal.BitDepth16 && bitDepth != signal.BitDepth32 {
		return nil, ErrUnsupportedBitDepth
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{
		file:     file,
		encoder:  wav.NewEncoder(file, sampleRate, int(bitDepth), channels, 1),
		channels: channels,
		bitDepth: bitDepth,
		buffer: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: int(bitDepth),
		},
	}, nil
}

// Write encodes a channel-major block.
func (s *Sink) Write(block []float32) error {
	size := len(block) / s.channels
	if s.floats.Size() != size {
		s.floats = signal.Float64Buffer(s.channels, size)
	}
	layout.ReadChannelMajor(s.floats, block)
	s.ints = layout.AsInts(s.ints, s.floats, s.bitDepth)
	s.buffer.Data = s.ints
	return s.encoder.Write(s.buffer)
}

// Close finalizes the header and closes the file.
func (s *Sink) Close() error {
	return multierr.Append(s.encoder.Close(), s.file.Close())
}
