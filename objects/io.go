package objects

import (
	"github.com/dudk/zen"
	"github.com/dudk/zen/message"
	"github.com/dudk/zen/mixer"
)

// channels returns the 1-based channel arguments as 0-based indices.
func channels(init *message.Message) []int {
	var result []int
	for _, a := range arguments(init) {
		if f, ok := a.Float(); ok && f >= 1 {
			result = append(result, int(f)-1)
		}
	}
	if len(result) == 0 {
		result = []int{0, 1}
	}
	return result
}

// dac adds its inlets into the output channels of the context.
type dac struct {
	base
	channels []int
}

func newDac(label string, init *message.Message) (zen.Object, error) {
	ch := channels(init)
	return &dac{base: base{label: label, inlets: len(ch)}, channels: ch}, nil
}

func (*dac) ProcessMessage(*zen.Env, int, *message.Message) {}

func (d *dac) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	for i, ch := range d.channels {
		if out := env.Output(ch); out != nil {
			mixer.Add(out[from:to], b.In[i][from:to])
		}
	}
}

// adc outputs the input channels of the context.
type adc struct {
	base
	channels []int
}

func newAdc(label string, init *message.Message) (zen.Object, error) {
	ch := channels(init)
	return &adc{base: base{label: label, outlets: len(ch)}, channels: ch}, nil
}

func (*adc) ProcessMessage(*zen.Env, int, *message.Message) {}

func (a *adc) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	for i, ch := range a.channels {
		if in := env.Input(ch); in != nil {
			copy(b.Out[i][from:to], in[from:to])
		} else {
			mixer.Zero(b.Out[i][from:to])
		}
	}
}

// signalSend writes its input into a named bus read by receive~.
type signalSend struct {
	base
	name string
}

func newSignalSend(label string, init *message.Message) (zen.Object, error) {
	return &signalSend{base: base{label: label, inlets: 1}, name: symbolArg(init, 0, "")}, nil
}

func (*signalSend) ProcessMessage(*zen.Env, int, *message.Message) {}

func (s *signalSend) Attach(env *zen.Env) error {
	env.JoinBus(zen.SignalSend, s.name)
	return nil
}

func (s *signalSend) Detach(env *zen.Env) {
	env.LeaveBus(zen.SignalSend, s.name)
}

func (s *signalSend) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	copy(env.Bus(zen.SignalSend, s.name)[from:to], b.In[0][from:to])
}

// signalReceive outputs a named bus written by send~. It runs after the
// send~ of the same name.
type signalReceive struct {
	base
	name string
}

func newSignalReceive(label string, init *message.Message) (zen.Object, error) {
	return &signalReceive{base: base{label: label, outlets: 1}, name: symbolArg(init, 0, "")}, nil
}

func (r *signalReceive) ProcessMessage(_ *zen.Env, _ int, m *message.Message) {
	if m.IsSymbolString(0, "set") && m.IsSymbol(1) {
		r.name = m.Symbol(1)
	}
}

func (r *signalReceive) Dependencies(env *zen.Env) []zen.ObjectID {
	return env.BusWriters(zen.SignalSend, r.name)
}

func (r *signalReceive) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	copy(b.Out[0][from:to], env.Bus(zen.SignalSend, r.name)[from:to])
}

// throw adds its input into a named bus summed by catch~.
type throw struct {
	base
	name string
}

func newThrow(label string, init *message.Message) (zen.Object, error) {
	return &throw{base: base{label: label, inlets: 1}, name: symbolArg(init, 0, "")}, nil
}

func (t *throw) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	if m.IsSymbolString(0, "set") && m.IsSymbol(1) {
		env.LeaveBus(zen.SignalThrow, t.name)
		t.name = m.Symbol(1)
		env.JoinBus(zen.SignalThrow, t.name)
	}
}

func (t *throw) Attach(env *zen.Env) error {
	env.JoinBus(zen.SignalThrow, t.name)
	return nil
}

func (t *throw) Detach(env *zen.Env) {
	env.LeaveBus(zen.SignalThrow, t.name)
}

func (t *throw) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	mixer.Add(env.Bus(zen.SignalThrow, t.name)[from:to], b.In[0][from:to])
}

// catch outputs the sum of every throw~ of its name and clears the bus.
type catch struct {
	base
	name string
}

func newCatch(label string, init *message.Message) (zen.Object, error) {
	return &catch{base: base{label: label, outlets: 1}, name: symbolArg(init, 0, "")}, nil
}

func (*catch) ProcessMessage(*zen.Env, int, *message.Message) {}

func (c *catch) Dependencies(env *zen.Env) []zen.ObjectID {
	return env.BusWriters(zen.SignalThrow, c.name)
}

func (c *catch) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	bus := env.Bus(zen.SignalThrow, c.name)[from:to]
	copy(b.Out[0][from:to], bus)
	mixer.Zero(bus)
}
