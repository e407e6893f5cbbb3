// Package mock provides mocks of zen objects and audio endpoints for
// integration tests.
package mock

import (
	"io"
	"time"

	"github.com/dudk/zen"
	"github.com/dudk/zen/connection"
	"github.com/dudk/zen/message"
)

// Source mocks a run.Source. It produces Limit frames of Value on every
// channel.
type Source struct {
	counter
	Interval    time.Duration
	Limit       int
	Value       float32
	NumChannels int
	ErrorOnCall error
	Hooks
}

// Read fills a channel-major block.
func (m *Source) Read(block []float32) (int, error) {
	if m.ErrorOnCall != nil {
		return 0, m.ErrorOnCall
	}
	if m.samples >= m.Limit {
		return 0, io.EOF
	}
	time.Sleep(m.Interval)

	size := len(block) / m.NumChannels
	read := size
	if left := m.Limit - m.samples; left < read {
		read = left
	}
	for c := 0; c < m.NumChannels; c++ {
		for i := 0; i < size; i++ {
			if i < read {
				block[c*size+i] = m.Value
			} else {
				block[c*size+i] = 0
			}
		}
	}
	m.advance(read)
	return read, nil
}

// Close implements io.Closer.
func (m *Source) Close() error {
	m.Closed = true
	return m.ErrorOnClose
}

// Sink mocks a run.Sink. Buffer is not thread-safe, so it should not be
// checked while running.
type Sink struct {
	counter
	buffer      [][]float32
	NumChannels int
	Discard     bool
	ErrorOnCall error
	Hooks
}

// Write appends a channel-major block.
func (m *Sink) Write(block []float32) error {
	if m.ErrorOnCall != nil {
		return m.ErrorOnCall
	}
	size := len(block) / m.NumChannels
	if !m.Discard {
		if m.buffer == nil {
			m.buffer = make([][]float32, m.NumChannels)
		}
		for c := range m.buffer {
			m.buffer[c] = append(m.buffer[c], block[c*size:(c+1)*size]...)
		}
	}
	m.advance(size)
	return nil
}

// Flush implements run.Flusher.
func (m *Sink) Flush() error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Close implements io.Closer.
func (m *Sink) Close() error {
	m.Closed = true
	return m.ErrorOnClose
}

// Buffer returns the samples written to the sink per channel.
func (m *Sink) Buffer() [][]float32 {
	return m.buffer
}

// Hooks allows to mock endpoint hooks.
type Hooks struct {
	Flushed bool
	Closed  bool

	ErrorOnFlush error
	ErrorOnClose error
}

// counter counts calls and samples.
type counter struct {
	messages int
	samples  int
}

func (c *counter) advance(size int) {
	c.messages++
	c.samples = c.samples + size
}

// Count returns the number of calls and samples.
func (c *counter) Count() (int, int) {
	return c.messages, c.samples
}

// Received is a message recorded at an inlet.
type Received struct {
	Inlet   int
	Message *message.Message
}

// Recorder is a message object that records every message it receives
// and forwards it from the outlet matching the inlet.
type Recorder struct {
	Name     string
	In, Out  int
	Received []Received
}

// Label implements zen.Object.
func (r *Recorder) Label() string {
	if r.Name == "" {
		return "recorder"
	}
	return r.Name
}

// Inlets implements zen.Object.
func (r *Recorder) Inlets() int { return r.In }

// Outlets implements zen.Object.
func (r *Recorder) Outlets() int { return r.Out }

// ProcessMessage implements zen.Object.
func (r *Recorder) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	r.Received = append(r.Received, Received{Inlet: inlet, Message: m.Clone()})
	if inlet < r.Out {
		env.Send(inlet, m)
	}
}

// Span is a sub-block range processed by a signal mock.
type Span struct {
	From, To int
}

// Signal is a signal object. Every outlet carries the sum of all inlets
// plus Value. A float received at any inlet replaces Value.
type Signal struct {
	Name     string
	In, Out  int
	Value    float64
	Leaf     bool
	Depends  []zen.ObjectID
	Spans    []Span
	Received []Received
}

// Label implements zen.Object.
func (s *Signal) Label() string {
	if s.Name == "" {
		return "signal~"
	}
	return s.Name
}

// Inlets implements zen.Object.
func (s *Signal) Inlets() int { return s.In }

// Outlets implements zen.Object.
func (s *Signal) Outlets() int { return s.Out }

// ProcessMessage implements zen.Object.
func (s *Signal) ProcessMessage(_ *zen.Env, inlet int, m *message.Message) {
	s.Received = append(s.Received, Received{Inlet: inlet, Message: m.Clone()})
	if m.IsFloat(0) {
		s.Value = float64(m.Float(0))
	}
}

// ProcessDSP implements zen.DSP.
func (s *Signal) ProcessDSP(_ *zen.Env, b *zen.Block, from, to int) {
	s.Spans = append(s.Spans, Span{From: from, To: to})
	for _, out := range b.Out {
		for i := from; i < to; i++ {
			v := s.Value
			for _, in := range b.In {
				v += in[i]
			}
			out[i] = v
		}
	}
}

// IsLeaf implements zen.Terminal.
func (s *Signal) IsLeaf() bool { return s.Leaf }

// Dependencies implements zen.Dependent.
func (s *Signal) Dependencies(*zen.Env) []zen.ObjectID { return s.Depends }

// ConnectionType implements zen.Typed.
func (s *Signal) ConnectionType(int) connection.Type { return connection.DSP }

// Tap is a signal sink. It keeps the input of the last processed block.
type Tap struct {
	Last []float64
}

// Label implements zen.Object.
func (t *Tap) Label() string { return "tap~" }

// Inlets implements zen.Object.
func (t *Tap) Inlets() int { return 1 }

// Outlets implements zen.Object.
func (t *Tap) Outlets() int { return 0 }

// ProcessMessage implements zen.Object.
func (t *Tap) ProcessMessage(*zen.Env, int, *message.Message) {}

// ProcessDSP implements zen.DSP.
func (t *Tap) ProcessDSP(_ *zen.Env, b *zen.Block, from, to int) {
	if len(t.Last) != len(b.In[0]) {
		t.Last = make([]float64, len(b.In[0]))
	}
	copy(t.Last[from:to], b.In[0][from:to])
}
