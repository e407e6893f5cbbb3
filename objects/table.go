package objects

import (
	"math"

	"github.com/dudk/zen"
	"github.com/dudk/zen/message"
	"github.com/dudk/zen/mixer"
)

// defaultTableSize is the length of a table created without one.
const defaultTableSize = 1024

// table owns a named array read and written by the tab objects.
type table struct {
	base
	name string
	size int
	t    *zen.Table
}

func newTable(label string, init *message.Message) (zen.Object, error) {
	size := int(floatArg(init, 1, defaultTableSize))
	return &table{
		base: base{label: label},
		name: symbolArg(init, 0, ""),
		size: max(size, 1),
	}, nil
}

func (t *table) Attach(env *zen.Env) error {
	if t.name == "" {
		env.PrintErr("Object \"table\" must be initialised with a name.")
		return nil
	}
	// a duplicate name is reported by the context
	if t.t, _ = env.RegisterTable(t.name, t.size); t.t == nil {
		return nil
	}
	if err := env.AddReceiver(t.name); err != nil {
		env.UnregisterTable(t.name)
		t.t = nil
		return err
	}
	return nil
}

func (t *table) Detach(env *zen.Env) {
	if t.t != nil {
		env.RemoveReceiver(t.name)
		env.UnregisterTable(t.name)
		t.t = nil
	}
}

// ProcessMessage handles "resize n" and "normalize [peak]". The table has
// no inlets and receives them through its name.
func (t *table) ProcessMessage(_ *zen.Env, _ int, m *message.Message) {
	if t.t == nil {
		return
	}
	switch {
	case m.IsSymbolString(0, "resize") && m.IsFloat(1):
		t.t.Resize(int(m.Float(1)))
	case m.IsSymbolString(0, "normalize"):
		normalize(t.t.Data(), float64(floatArg(m, 1, 1)))
	}
}

// normalize scales data so that its samples sum to peak in magnitude.
func normalize(data []float64, peak float64) {
	var sum float64
	for _, v := range data {
		sum += v
	}
	if sum == 0 {
		return
	}
	mixer.Scale(data, data, peak/math.Abs(sum))
}

// tableRead outputs the sample at the index received.
type tableRead struct {
	base
	name string
}

func newTableRead(label string, init *message.Message) (zen.Object, error) {
	return &tableRead{
		base: base{label: label, inlets: 1, outlets: 1},
		name: symbolArg(init, 0, ""),
	}, nil
}

func (r *tableRead) ProcessMessage(env *zen.Env, _ int, m *message.Message) {
	switch {
	case m.IsFloat(0):
		t := env.Table(r.name)
		if t == nil {
			return
		}
		data := t.Data()
		if i := int(m.Float(0)); i >= 0 && i < len(data) {
			env.Send(0, message.FromFloat(m.Timestamp(), float32(data[i])))
		}
	case m.IsSymbolString(0, "set") && m.IsSymbol(1):
		r.name = m.Symbol(1)
	}
}

// tableWrite writes the float at its left inlet at the index set by its
// right inlet.
type tableWrite struct {
	base
	name  string
	index int
}

func newTableWrite(label string, init *message.Message) (zen.Object, error) {
	return &tableWrite{
		base: base{label: label, inlets: 2},
		name: symbolArg(init, 0, ""),
	}, nil
}

func (*tableWrite) DistributeToInlets() bool {
	return false
}

func (w *tableWrite) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	switch inlet {
	case 0:
		switch {
		case m.IsFloat(0):
			t := env.Table(w.name)
			if t == nil {
				return
			}
			if data := t.Data(); w.index >= 0 && w.index < len(data) {
				data[w.index] = float64(m.Float(0))
			}
		case m.IsSymbolString(0, "set") && m.IsSymbol(1):
			w.name = m.Symbol(1)
		}
	case 1:
		if m.IsFloat(0) {
			w.index = int(m.Float(0))
		}
	}
}

// tableReadSignal is tabread~: it outputs the table sample at every index
// of its input signal plus an offset set by the right inlet. Indices are
// clamped to the table.
type tableReadSignal struct {
	base
	name   string
	offset float64
}

func newTableReadSignal(label string, init *message.Message) (zen.Object, error) {
	return &tableReadSignal{
		base: base{label: label, inlets: 2, outlets: 1},
		name: symbolArg(init, 0, ""),
	}, nil
}

func (r *tableReadSignal) ProcessMessage(_ *zen.Env, inlet int, m *message.Message) {
	switch {
	case inlet == 0 && m.IsSymbolString(0, "set") && m.IsSymbol(1):
		r.name = m.Symbol(1)
	case inlet == 1 && m.IsFloat(0):
		r.offset = float64(m.Float(0))
	}
}

func (r *tableReadSignal) ProcessDSP(env *zen.Env, b *zen.Block, from, to int) {
	t := env.Table(r.name)
	if t == nil || len(t.Data()) == 0 {
		mixer.Zero(b.Out[0][from:to])
		return
	}
	data := t.Data()
	last := len(data) - 1
	for i := from; i < to; i++ {
		x := int(b.In[0][i] + r.offset)
		switch {
		case x <= 0:
			b.Out[0][i] = data[0]
		case x >= last:
			b.Out[0][i] = data[last]
		default:
			b.Out[0][i] = data[x]
		}
	}
}
