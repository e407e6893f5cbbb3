package zen

import (
	"github.com/dudk/zen/connection"
	"github.com/dudk/zen/message"
)

// Labels of graph port objects.
const (
	InletLabel        = "inlet"
	OutletLabel       = "outlet"
	SignalInletLabel  = "inlet~"
	SignalOutletLabel = "outlet~"
)

// graphPort is implemented by the objects that carry wires across a graph
// boundary.
type graphPort interface {
	isInlet() bool
}

type inlet struct{}

func (inlet) Label() string { return InletLabel }
func (inlet) Inlets() int   { return 1 }
func (inlet) Outlets() int  { return 1 }
func (inlet) isInlet() bool { return true }

func (inlet) ProcessMessage(env *Env, _ int, m *message.Message) {
	env.Send(0, m)
}

type outlet struct{}

func (outlet) Label() string { return OutletLabel }
func (outlet) Inlets() int   { return 1 }
func (outlet) Outlets() int  { return 1 }
func (outlet) isInlet() bool { return false }

func (outlet) ProcessMessage(env *Env, _ int, m *message.Message) {
	env.Send(0, m)
}

// signalPort passes its input signal through unchanged.
type signalPort struct {
	inlet bool
}

func (p signalPort) Label() string {
	if p.inlet {
		return SignalInletLabel
	}
	return SignalOutletLabel
}

func (signalPort) Inlets() int     { return 1 }
func (signalPort) Outlets() int    { return 1 }
func (p signalPort) isInlet() bool { return p.inlet }

func (signalPort) ProcessMessage(*Env, int, *message.Message) {}

func (signalPort) ProcessDSP(_ *Env, b *Block, from, to int) {
	copy(b.Out[0][from:to], b.In[0][from:to])
}

// subpatch stands for a nested graph inside its parent. Its ports mirror
// the port objects of the nested graph.
type subpatch struct {
	graph *Graph
}

func (s *subpatch) Label() string { return "pd" }
func (s *subpatch) Inlets() int   { return len(s.graph.inlets) }
func (s *subpatch) Outlets() int  { return len(s.graph.outlets) }

func (s *subpatch) ProcessMessage(*Env, int, *message.Message) {}

func (s *subpatch) ConnectionType(int) connection.Type {
	return connection.Message
}

func registerPorts(r *Registry) {
	r.MustRegister(InletLabel, func(*message.Message) (Object, error) { return inlet{}, nil })
	r.MustRegister(OutletLabel, func(*message.Message) (Object, error) { return outlet{}, nil })
	r.MustRegister(SignalInletLabel, func(*message.Message) (Object, error) { return signalPort{inlet: true}, nil })
	r.MustRegister(SignalOutletLabel, func(*message.Message) (Object, error) { return signalPort{}, nil })
}
