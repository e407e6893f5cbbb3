package objects

import (
	"github.com/dudk/zen"
	"github.com/dudk/zen/message"
)

// floatObject stores a number. The left inlet sets and outputs it, the right
// inlet only sets it.
type floatObject struct {
	base
	value float32
}

func newFloat(label string, init *message.Message) (zen.Object, error) {
	return &floatObject{
		base:  base{label: label, inlets: 2, outlets: 1},
		value: floatArg(init, 0, 0),
	}, nil
}

func (f *floatObject) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	switch inlet {
	case 0:
		switch {
		case m.IsFloat(0):
			f.value = m.Float(0)
		case m.IsSymbolString(0, "set"):
			f.value = floatArg(m, 1, f.value)
			return
		case m.IsBang(0):
		default:
			env.PrintErr("%s: no method for %s", f.label, m)
			return
		}
		env.Send(0, message.FromFloat(m.Timestamp(), f.value))
	case 1:
		if m.IsFloat(0) {
			f.value = m.Float(0)
		}
	}
}

type bangObject struct {
	base
}

func newBang(label string, _ *message.Message) (zen.Object, error) {
	return &bangObject{base{label: label, inlets: 1, outlets: 1}}, nil
}

func (b *bangObject) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	env.Send(0, bang(m.Timestamp()))
}

// printObject reports every message to the host prefixed with its name.
type printObject struct {
	base
	name string
}

func newPrint(label string, init *message.Message) (zen.Object, error) {
	return &printObject{
		base: base{label: label, inlets: 1},
		name: symbolArg(init, 0, "print"),
	}, nil
}

func (p *printObject) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	env.PrintStd("%s: %s", p.name, m)
}

// send forwards messages to the receivers of a name. Without a name
// argument the right inlet sets it.
type send struct {
	base
	name string
}

func newSend(label string, init *message.Message) (zen.Object, error) {
	s := &send{base: base{label: label, inlets: 1}, name: symbolArg(init, 0, "")}
	if s.name == "" {
		s.inlets = 2
	}
	return s, nil
}

func (s *send) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	switch inlet {
	case 0:
		if s.name != "" {
			env.SendToName(s.name, m)
		}
	case 1:
		if m.IsSymbol(0) {
			s.name = m.Symbol(0)
		}
	}
}

// receive outputs messages sent to its name.
type receive struct {
	base
	name string
}

func newReceive(label string, init *message.Message) (zen.Object, error) {
	return &receive{
		base: base{label: label, outlets: 1},
		name: symbolArg(init, 0, ""),
	}, nil
}

func (r *receive) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	env.Send(0, m)
}

func (r *receive) Attach(env *zen.Env) error {
	if r.name == "" {
		return nil
	}
	return env.AddReceiver(r.name)
}

func (r *receive) Detach(env *zen.Env) {
	if r.name != "" {
		env.RemoveReceiver(r.name)
	}
}

// loadbang outputs a bang at the start of the block after it is attached.
type loadbang struct {
	base
	pending *message.Message
}

func newLoadbang(label string, _ *message.Message) (zen.Object, error) {
	return &loadbang{base: base{label: label, outlets: 1}}, nil
}

func (l *loadbang) ProcessMessage(*zen.Env, int, *message.Message) {}

func (l *loadbang) Attach(env *zen.Env) error {
	m, err := env.Schedule(0, bang(env.BlockStart()))
	if err != nil {
		return err
	}
	l.pending = m
	return nil
}

func (l *loadbang) Detach(env *zen.Env) {
	if l.pending != nil {
		env.Cancel(0, l.pending)
		l.pending = nil
	}
}

func (l *loadbang) SendScheduled(env *zen.Env, outlet int, m *message.Message) {
	l.pending = nil
	env.Send(outlet, m)
}

// spigot passes messages from the left inlet while the right inlet holds
// a non-zero number.
type spigot struct {
	base
	open bool
}

func newSpigot(label string, init *message.Message) (zen.Object, error) {
	return &spigot{
		base: base{label: label, inlets: 2, outlets: 1},
		open: floatArg(init, 0, 0) != 0,
	}, nil
}

func (s *spigot) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	switch inlet {
	case 0:
		if s.open {
			env.Send(0, m)
		}
	case 1:
		if m.IsFloat(0) {
			s.open = m.Float(0) != 0
		}
	}
}

// value shares a number between all value objects of the same name.
type value struct {
	base
	name string
}

func newValue(label string, init *message.Message) (zen.Object, error) {
	return &value{
		base: base{label: label, inlets: 1, outlets: 1},
		name: symbolArg(init, 0, ""),
	}, nil
}

func (v *value) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	switch {
	case m.IsBang(0):
		env.Send(0, message.FromFloat(m.Timestamp(), env.Value(v.name)))
	case m.IsFloat(0):
		env.SetValue(v.name, m.Float(0))
	}
}

// text is a comment.
type text struct {
	base
	content string
}

func newText(label string, init *message.Message) (zen.Object, error) {
	return &text{base: base{label: label}, content: joinAtoms(arguments(init))}, nil
}

func (*text) ProcessMessage(*zen.Env, int, *message.Message) {}

// switchObject turns signal processing of its graph on and off.
type switchObject struct {
	base
}

func newSwitch(label string, _ *message.Message) (zen.Object, error) {
	return &switchObject{base{label: label, inlets: 1}}, nil
}

func (s *switchObject) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	switch {
	case m.IsFloat(0):
		env.SwitchGraph(m.Float(0) != 0)
	case m.IsBang(0):
		env.PrintErr("%s: single block processing is not supported", s.label)
	}
}

// symbolObject stores a symbol. The left inlet sets and outputs it, the
// right inlet only sets it.
type symbolObject struct {
	base
	value string
}

func newSymbol(label string, init *message.Message) (zen.Object, error) {
	return &symbolObject{
		base:  base{label: label, inlets: 2, outlets: 1},
		value: symbolArg(init, 0, ""),
	}, nil
}

func (s *symbolObject) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	switch {
	case m.IsSymbolString(0, "symbol") && m.IsSymbol(1):
		s.value = m.Symbol(1)
	case m.IsSymbolString(0, "set"):
		s.value = symbolArg(m, 1, s.value)
		return
	case m.IsSymbol(0):
		s.value = m.Symbol(0)
	case m.IsBang(0):
	default:
		env.PrintErr("%s: no method for %s", s.label, m)
		return
	}
	if inlet == 0 {
		env.Send(0, message.FromAtoms(m.Timestamp(), message.SymbolAtom("symbol"), message.SymbolAtom(s.value)))
	}
}

// DistributeToInlets keeps "symbol name" messages whole.
func (*symbolObject) DistributeToInlets() bool {
	return false
}
