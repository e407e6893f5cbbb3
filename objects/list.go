package objects

import (
	"github.com/dudk/zen"
	"github.com/dudk/zen/message"
)

// typeSlots converts creation arguments like "f s b a" into typed atoms.
// Numbers are float slots holding that number.
func typeSlots(init *message.Message, defaults int) []message.Atom {
	atoms := arguments(init)
	if len(atoms) == 0 {
		atoms = make([]message.Atom, defaults)
		for i := range atoms {
			atoms[i] = message.FloatAtom(0)
		}
		return atoms
	}
	slots := message.FromAtoms(0, atoms...)
	slots.ResolveSymbolsToType()
	return append([]message.Atom(nil), slots.Atoms()...)
}

// trigger sends its input from every outlet right to left, converted to
// the type of the outlet.
type trigger struct {
	base
	types []message.Kind
}

func newTrigger(label string, init *message.Message) (zen.Object, error) {
	slots := typeSlots(init, 2)
	t := &trigger{
		base:  base{label: label, inlets: 1, outlets: len(slots)},
		types: make([]message.Kind, len(slots)),
	}
	for i, a := range slots {
		t.types[i] = a.Kind()
	}
	return t, nil
}

func (t *trigger) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	ts := m.Timestamp()
	for i := len(t.types) - 1; i >= 0; i-- {
		switch out := t.types[i]; {
		case out == message.Anything, out == message.List:
			env.Send(i, m)
		case out == message.Bang:
			env.Send(i, bang(ts))
		case m.IsFloat(0) && out == message.Float:
			env.Send(i, message.FromFloat(ts, m.Float(0)))
		case m.IsFloat(0) && out == message.Symbol:
			env.Send(i, message.FromSymbol(ts, "float"))
		case m.IsBang(0) && out == message.Float:
			env.Send(i, message.FromFloat(ts, 0))
		case m.IsBang(0) && out == message.Symbol:
			env.Send(i, message.FromSymbol(ts, "symbol"))
		case m.IsSymbol(0):
			env.PrintErr("%s: can only convert 's' to 'b' or 'a'", t.label)
		default:
			env.Send(i, bang(ts))
		}
	}
}

// pack combines the values of its inlets into a list. The left inlet
// triggers the output.
type pack struct {
	base
	values []message.Atom
}

func newPack(label string, init *message.Message) (zen.Object, error) {
	slots := typeSlots(init, 2)
	for i, a := range slots {
		if a.Kind() == message.Symbol {
			slots[i] = message.SymbolAtom("symbol")
		}
	}
	return &pack{
		base:   base{label: label, inlets: len(slots), outlets: 1},
		values: slots,
	}, nil
}

func (p *pack) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	if inlet >= len(p.values) {
		return
	}
	switch {
	case m.IsBang(0):
		if inlet != 0 {
			return
		}
	case m.IsFloat(0) && p.values[inlet].Kind() == message.Float,
		m.IsSymbol(0) && p.values[inlet].Kind() == message.Symbol:
		p.values[inlet] = m.Element(0)
		if inlet != 0 {
			return
		}
	default:
		env.PrintErr("%s: type mismatch: %s expected but got %s at inlet %d",
			p.label, p.values[inlet].Kind(), m.Type(0), inlet+1)
		return
	}
	env.Send(0, message.FromAtoms(m.Timestamp(), p.values...))
}

// unpack sends the atoms of a list from its outlets right to left.
type unpack struct {
	base
}

func newUnpack(label string, init *message.Message) (zen.Object, error) {
	n := len(arguments(init))
	if n == 0 {
		n = 2
	}
	return &unpack{base{label: label, inlets: 1, outlets: n}}, nil
}

func (u *unpack) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	last := m.Len()
	if u.outlets < last {
		last = u.outlets
	}
	for i := last - 1; i >= 0; i-- {
		env.Send(i, message.FromAtoms(m.Timestamp(), m.Element(i)))
	}
}
