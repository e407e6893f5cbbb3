package zen

import (
	"github.com/dudk/zen/alloc"
	"github.com/dudk/zen/connection"
	"github.com/dudk/zen/message"
)

// maxPending is the number of messages a DSP object buffers per block.
const maxPending = 256

type pending struct {
	inlet int
	m     *message.Message
}

// node is the engine side of an object: its wiring and transient state.
type node struct {
	env      Env
	object   Object
	coords   Coordinates
	incoming connection.Table
	outgoing connection.Table
	attached bool

	// ordered guards the process order traversal. pass marks nodes in the
	// scope of the current traversal.
	ordered bool
	pass    uint64

	dsp       DSP
	block     Block
	sources   [][][]float64
	connected []bool
	scratch   [][]float64
	pending   []pending

	// subgraph is set when the node stands for a nested graph.
	subgraph *Graph
}

func (n *node) id() ObjectID {
	return n.env.id
}

func (n *node) isLeaf() bool {
	if t, ok := n.object.(Terminal); ok && t.IsLeaf() {
		return true
	}
	return n.outgoing.Empty()
}

func (n *node) addIncoming(inlet int, from ObjectID, outlet int) error {
	return n.incoming.Add(inlet, connection.Connection{ObjectID: alloc.ID(from), Port: outlet})
}

func (n *node) addOutgoing(outlet int, to ObjectID, inlet int) error {
	return n.outgoing.Add(outlet, connection.Connection{ObjectID: alloc.ID(to), Port: inlet})
}

func (n *node) removeIncoming(inlet int, from ObjectID, outlet int) {
	n.incoming.Remove(inlet, connection.Connection{ObjectID: alloc.ID(from), Port: outlet})
}

func (n *node) removeOutgoing(outlet int, to ObjectID, inlet int) {
	n.outgoing.Remove(outlet, connection.Connection{ObjectID: alloc.ID(to), Port: inlet})
}

func (n *node) hasOutgoing(outlet int, to ObjectID, inlet int) bool {
	return n.outgoing.Port(outlet).Contains(connection.Connection{ObjectID: alloc.ID(to), Port: inlet})
}

// receive is the single entry point of inbound messages. A list arriving
// at the left inlet of an object with several inlets is distributed right
// to left, one float or symbol per inlet. Atoms of other kinds are skipped.
func (c *Context) receive(n *node, inlet int, m *message.Message) {
	c.delivered++
	inlets := n.object.Inlets()
	if inlet == 0 && inlets > 1 && m.Len() > 1 && distributes(n.object) {
		last := m.Len()
		if inlets < last {
			last = inlets
		}
		for i := last - 1; i >= 0; i-- {
			if a := m.Element(i); a.Kind() == message.Float || a.Kind() == message.Symbol {
				c.process(n, i, message.FromAtoms(m.Timestamp(), a))
			}
		}
		return
	}
	c.process(n, inlet, m)
}

func (c *Context) process(n *node, inlet int, m *message.Message) {
	if n.dsp == nil {
		n.object.ProcessMessage(&n.env, inlet, m)
		return
	}
	if !n.env.graph.isSwitchedOn() {
		return
	}
	if len(n.pending) >= maxPending {
		c.printErr("%s: too many pending messages, %s dropped", n.object.Label(), m)
		return
	}
	n.pending = append(n.pending, pending{inlet: inlet, m: m.Clone()})
}

// sendFrom delivers m to every object wired to the outlet.
func (c *Context) sendFrom(id ObjectID, outlet int, m *message.Message) {
	n := c.node(id)
	if outlet < 0 || outlet >= n.outgoing.Len() {
		return
	}
	l := n.outgoing.Port(outlet)
	for i := 0; i < l.Len(); i++ {
		conn := l.At(i)
		c.receive(c.node(ObjectID(conn.ObjectID)), conn.Port, m)
	}
}
