// Package mp3 encodes audio into mp3 files.
package mp3

import (
	"encoding/binary"
	"os"

	"github.com/viert/lame"
	"go.uber.org/multierr"
	"pipelined.dev/signal"

	"github.com/dudk/zen/internal/layout"
)

// Sink encodes channel-major blocks into an mp3 file.
type Sink struct {
	file     *os.File
	writer   *lame.LameWriter
	channels int
	floats   signal.Float64
	ints     []int
	pcm      []byte
}

// NewSink creates the mp3 file at path. Bit rate is in kbps, quality
// ranges from 0 (best) to 9.
func NewSink(path string, sampleRate, channels, bitRate, quality int) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := lame.NewWriter(f)
	w.Encoder.SetBitrate(bitRate)
	w.Encoder.SetQuality(quality)
	w.Encoder.SetNumChannels(channels)
	w.Encoder.SetInSamplerate(sampleRate)
	if channels == 2 {
		w.Encoder.SetMode(lame.JOINT_STEREO)
	}
	w.Encoder.SetVBR(lame.VBR_RH)
	w.Encoder.InitParams()
	return &Sink{
		file:     f,
		writer:   w,
		channels: channels,
	}, nil
}

// Write encodes a block as 16 bit PCM.
func (s *Sink) Write(block []float32) error {
	size := len(block) / s.channels
	if s.floats.Size() != size {
		s.floats = signal.Float64Buffer(s.channels, size)
		s.pcm = make([]byte, 2*size*s.channels)
	}
	layout.ReadChannelMajor(s.floats, block)
	s.ints = layout.AsInts(s.ints, s.floats, signal.BitDepth16)
	for i, v := range s.ints {
		binary.LittleEndian.PutUint16(s.pcm[2*i:], uint16(int16(v)))
	}
	_, err := s.writer.Write(s.pcm)
	return err
}

// Close flushes the encoder and closes the file.
func (s *Sink) Close() error {
	return multierr.Append(s.writer.Close(), s.file.Close())
}
