package objects

import (
	"github.com/dudk/zen"
	"github.com/dudk/zen/message"
	"github.com/dudk/zen/mixer"
)

// delayWrite records its input into a named delay line. It has no outlets
// and ends the process order, so a delread~ wired back into it reads the
// previous block.
type delayWrite struct {
	base
	name   string
	length float64
	line   *zen.Delayline
}

func newDelayWrite(label string, init *message.Message) (zen.Object, error) {
	return &delayWrite{
		base:   base{label: label, inlets: 1},
		name:   symbolArg(init, 0, ""),
		length: float64(floatArg(init, 1, -1)),
	}, nil
}

func (*delayWrite) ProcessMessage(*zen.Env, int, *message.Message) {}

func (*delayWrite) IsLeaf() bool {
	return true
}

func (d *delayWrite) Attach(env *zen.Env) error {
	if d.name == "" || d.length < 0 {
		env.PrintErr("delwrite~ must be initialised as [delwrite~ name delay].")
		return nil
	}
	// a duplicate name is reported by the context
	d.line, _ = env.RegisterDelayline(d.name, d.length)
	return nil
}

func (d *delayWrite) Detach(env *zen.Env) {
	if d.line != nil {
		env.UnregisterDelayline(d.name)
		d.line = nil
	}
}

func (d *delayWrite) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	if d.line != nil {
		d.line.Write(env, b.In[0], from, to)
	}
}

// delayRead outputs a delay line delayed by a number of milliseconds set at
// creation or by a float.
type delayRead struct {
	base
	name  string
	delay float64
}

func newDelayRead(label string, init *message.Message) (zen.Object, error) {
	return &delayRead{
		base:  base{label: label, inlets: 1, outlets: 1},
		name:  symbolArg(init, 0, ""),
		delay: float64(floatArg(init, 1, 0)),
	}, nil
}

func (r *delayRead) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	switch {
	case m.IsFloat(0):
		r.delay = float64(m.Float(0))
	case m.IsSymbolString(0, "set") && m.IsSymbol(1):
		r.name = m.Symbol(1)
	}
}

func (r *delayRead) Dependencies(env *zen.Env) []zen.ObjectID {
	return env.DelaylineWriter(r.name)
}

func (r *delayRead) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	line := env.Delayline(r.name)
	if line == nil {
		mixer.Zero(b.Out[0][from:to])
		return
	}
	line.Read(env, b.Out[0], from, to, r.delay*env.SampleRate()/1000)
}

// variableDelay is vd~: the delay in milliseconds is read from its signal
// inlet for every sample.
type variableDelay struct {
	base
	name   string
	delays []float64
}

func newVariableDelay(label string, init *message.Message) (zen.Object, error) {
	return &variableDelay{
		base: base{label: label, inlets: 1, outlets: 1},
		name: symbolArg(init, 0, ""),
	}, nil
}

func (*variableDelay) ProcessMessage(*zen.Env, int, *message.Message) {}

func (v *variableDelay) Attach(env *zen.Env) error {
	if v.name == "" {
		env.PrintErr("vd~ requires the name of a delayline. None given.")
	}
	return nil
}

func (*variableDelay) Detach(*zen.Env) {}

func (v *variableDelay) Dependencies(env *zen.Env) []zen.ObjectID {
	return env.DelaylineWriter(v.name)
}

func (v *variableDelay) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	line := env.Delayline(v.name)
	if line == nil {
		mixer.Zero(b.Out[0][from:to])
		return
	}
	if len(v.delays) != len(b.In[0]) {
		v.delays = make([]float64, len(b.In[0]))
	}
	mixer.Scale(v.delays[from:to], b.In[0][from:to], env.SampleRate()/1000)
	line.ReadVariable(env, b.Out[0], v.delays, from, to)
}
