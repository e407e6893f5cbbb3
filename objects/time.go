package objects

import (
	"github.com/dudk/zen"
	"github.com/dudk/zen/message"
)

// minInterval is the shortest metro period in milliseconds.
const minInterval = 0.01

// metro outputs bangs at a fixed interval in milliseconds. A bang or a
// non-zero number starts it, zero or "stop" stops it.
type metro struct {
	base
	interval float64
	pending  *message.Message
}

func newMetro(label string, init *message.Message) (zen.Object, error) {
	return &metro{
		base:     base{label: label, inlets: 2, outlets: 1},
		interval: period(floatArg(init, 0, 1000)),
	}, nil
}

func period(ms float32) float64 {
	return max(float64(ms), minInterval)
}

func (o *metro) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	switch inlet {
	case 0:
		switch {
		case m.IsFloat(0) && m.Float(0) == 0, m.IsSymbolString(0, "stop"):
			o.stop(env)
		case m.IsFloat(0), m.IsBang(0):
			o.start(env, m.Timestamp())
		}
	case 1:
		if m.IsFloat(0) {
			o.interval = period(m.Float(0))
		}
	}
}

// SendScheduled schedules the next tick before sending the current one so
// that a stop caused by this tick cancels the next.
func (o *metro) SendScheduled(env *zen.Env, outlet int, m *message.Message) {
	next, err := env.Schedule(0, bang(m.Timestamp().Add(o.interval)))
	if err != nil {
		env.PrintErr("%s: %v", o.label, err)
		next = nil
	}
	o.pending = next
	env.Send(outlet, m)
}

func (o *metro) start(env *zen.Env, ts message.Timestamp) {
	o.stop(env)
	o.SendScheduled(env, 0, bang(ts))
}

func (o *metro) stop(env *zen.Env) {
	if o.pending != nil {
		env.Cancel(0, o.pending)
		o.pending = nil
	}
}

func (o *metro) Detach(env *zen.Env) {
	o.stop(env)
}

func (o *metro) Attach(*zen.Env) error {
	return nil
}

// delay outputs a bang after a delay in milliseconds. Every new start
// reschedules the pending bang.
type delay struct {
	base
	delay   float64
	pending *message.Message
}

func newDelay(label string, init *message.Message) (zen.Object, error) {
	return &delay{
		base:  base{label: label, inlets: 2, outlets: 1},
		delay: float64(floatArg(init, 0, 0)),
	}, nil
}

func (o *delay) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	switch inlet {
	case 0:
		switch {
		case m.IsSymbolString(0, "stop"):
			o.stop(env)
		case m.IsFloat(0):
			o.delay = float64(m.Float(0))
			o.start(env, m.Timestamp())
		case m.IsBang(0):
			o.start(env, m.Timestamp())
		}
	case 1:
		if m.IsFloat(0) {
			o.delay = float64(m.Float(0))
		}
	}
}

func (o *delay) start(env *zen.Env, ts message.Timestamp) {
	o.stop(env)
	m, err := env.Schedule(0, bang(ts.Add(o.delay)))
	if err != nil {
		env.PrintErr("%s: %v", o.label, err)
		return
	}
	o.pending = m
}

func (o *delay) stop(env *zen.Env) {
	if o.pending != nil {
		env.Cancel(0, o.pending)
		o.pending = nil
	}
}

func (o *delay) SendScheduled(env *zen.Env, outlet int, m *message.Message) {
	o.pending = nil
	env.Send(outlet, m)
}

func (o *delay) Attach(*zen.Env) error {
	return nil
}

func (o *delay) Detach(env *zen.Env) {
	o.stop(env)
}
