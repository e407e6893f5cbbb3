package objects

import (
	"math"

	"github.com/dudk/zen"
	"github.com/dudk/zen/connection"
	"github.com/dudk/zen/message"
	"github.com/dudk/zen/mixer"
)

// oscillator is osc~ and phasor~. The left inlet takes the frequency as a
// signal or a number, the right inlet resets the phase.
type oscillator struct {
	base
	frequency float64
	phase     float64
	cosine    bool
}

func newOscillator(label string, init *message.Message) (zen.Object, error) {
	return &oscillator{
		base:      base{label: label, inlets: 2, outlets: 1},
		frequency: float64(floatArg(init, 0, 0)),
		cosine:    label == "osc~",
	}, nil
}

func (o *oscillator) ProcessMessage(_ *zen.Env, inlet int, m *message.Message) {
	if !m.IsFloat(0) {
		return
	}
	switch inlet {
	case 0:
		o.frequency = float64(m.Float(0))
	case 1:
		o.phase = float64(m.Float(0))
	}
}

func (o *oscillator) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	out := b.Out[0]
	step := 1 / env.SampleRate()
	signal := env.Connected(0)
	for i := from; i < to; i++ {
		_, frac := math.Modf(o.phase)
		if frac < 0 {
			frac++
		}
		o.phase = frac
		if o.cosine {
			out[i] = math.Cos(2 * math.Pi * o.phase)
		} else {
			out[i] = o.phase
		}
		f := o.frequency
		if signal {
			f = b.In[0][i]
		}
		o.phase += f * step
	}
}

// sig converts a number into a constant signal.
type sig struct {
	base
	value float64
}

func newSig(label string, init *message.Message) (zen.Object, error) {
	return &sig{
		base:  base{label: label, inlets: 1, outlets: 1},
		value: float64(floatArg(init, 0, 0)),
	}, nil
}

func (s *sig) ProcessMessage(_ *zen.Env, _ int, m *message.Message) {
	if m.IsFloat(0) {
		s.value = float64(m.Float(0))
	}
}

func (s *sig) ProcessDSP(_ *zen.Env, b *zen.Block, from, to int) {
	mixer.Fill(b.Out[0][from:to], s.value)
}

// signalArithmetic is +~, -~ and *~. Without a signal in the right inlet
// the right operand is the last number received there or the creation
// argument.
type signalArithmetic struct {
	base
	scalar float64
}

func newSignalArithmetic(label string, init *message.Message) (zen.Object, error) {
	return &signalArithmetic{
		base:   base{label: label, inlets: 2, outlets: 1},
		scalar: float64(floatArg(init, 0, 0)),
	}, nil
}

func (o *signalArithmetic) ProcessMessage(_ *zen.Env, inlet int, m *message.Message) {
	if inlet == 1 && m.IsFloat(0) {
		o.scalar = float64(m.Float(0))
	}
}

func (o *signalArithmetic) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	out, left, right := b.Out[0][from:to], b.In[0][from:to], b.In[1][from:to]
	if env.Connected(1) {
		switch o.label {
		case "+~":
			copy(out, left)
			mixer.Add(out, right)
		case "-~":
			mixer.Subtract(out, left, right)
		case "*~":
			mixer.Multiply(out, left, right)
		}
		return
	}
	switch o.label {
	case "+~":
		for i := range out {
			out[i] = left[i] + o.scalar
		}
	case "-~":
		for i := range out {
			out[i] = left[i] - o.scalar
		}
	case "*~":
		mixer.Scale(out, left, o.scalar)
	}
}

// line ramps its output towards a target. A list "target time" ramps over
// time milliseconds, a single number jumps.
type line struct {
	base
	current, target, increment float64
	time                       float64
	remaining                  int
}

func newLine(label string, _ *message.Message) (zen.Object, error) {
	return &line{base: base{label: label, inlets: 2, outlets: 1}}, nil
}

// DistributeToInlets lets "target time" lists set both inlets.
func (l *line) DistributeToInlets() bool {
	return true
}

func (l *line) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	switch {
	case inlet == 1 && m.IsFloat(0):
		l.time = float64(m.Float(0))
	case inlet == 0 && m.IsFloat(0):
		l.target = float64(m.Float(0))
		samples := int(l.time * env.SampleRate() / 1000)
		l.time = 0
		if samples <= 0 {
			l.current, l.remaining = l.target, 0
			return
		}
		l.remaining = samples
		l.increment = (l.target - l.current) / float64(samples)
	case inlet == 0 && m.IsSymbolString(0, "stop"):
		l.remaining = 0
		l.target = l.current
	}
}

func (l *line) ProcessDSP(_ *zen.Env, b *zen.Block, from, to int) {
	out := b.Out[0]
	for i := from; i < to; i++ {
		if l.remaining > 0 {
			l.current += l.increment
			l.remaining--
			if l.remaining == 0 {
				l.current = l.target
			}
		}
		out[i] = l.current
	}
}

// snapshot outputs the value of its input signal when banged.
type snapshot struct {
	base
	last float64
}

func newSnapshot(label string, _ *message.Message) (zen.Object, error) {
	return &snapshot{base: base{label: label, inlets: 1, outlets: 1}}, nil
}

func (s *snapshot) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	switch {
	case m.IsBang(0):
		env.Send(0, message.FromFloat(m.Timestamp(), float32(s.last)))
	case m.IsSymbolString(0, "set") && m.IsFloat(1):
		s.last = float64(m.Float(1))
	}
}

func (s *snapshot) ProcessDSP(_ *zen.Env, b *zen.Block, from, to int) {
	if to > from {
		s.last = b.In[0][to-1]
	}
}

// ConnectionType reports the message outlet.
func (s *snapshot) ConnectionType(int) connection.Type {
	return connection.Message
}
