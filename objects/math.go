package objects

import (
	"github.com/dudk/zen"
	"github.com/dudk/zen/message"
)

// arithmetic applies a binary operator to the left input and the right
// operand. A bang repeats the last computation.
type arithmetic struct {
	base
	left, right float32
	op          func(a, b float32) float32
}

var operators = map[string]func(a, b float32) float32{
	"+": func(a, b float32) float32 { return a + b },
	"-": func(a, b float32) float32 { return a - b },
	"*": func(a, b float32) float32 { return a * b },
	"/": func(a, b float32) float32 {
		if b == 0 {
			return 0
		}
		return a / b
	},
}

func newArithmetic(label string, init *message.Message) (zen.Object, error) {
	return &arithmetic{
		base:  base{label: label, inlets: 2, outlets: 1},
		right: floatArg(init, 0, 0),
		op:    operators[label],
	}, nil
}

func (o *arithmetic) ProcessMessage(env *zen.Env, inlet int, m *message.Message) {
	switch inlet {
	case 0:
		switch {
		case m.IsFloat(0):
			o.left = m.Float(0)
		case m.IsBang(0):
		default:
			return
		}
		env.Send(0, message.FromFloat(m.Timestamp(), o.op(o.left, o.right)))
	case 1:
		if m.IsFloat(0) {
			o.right = m.Float(0)
		}
	}
}
