package zen

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/dudk/zen/alloc"
	"github.com/dudk/zen/connection"
	zerrors "github.com/dudk/zen/errors"
	"github.com/dudk/zen/message"
)

// Graph is a patch: a set of objects and the wires between them. Graphs
// nest; a nested graph appears in its parent as a single object whose
// ports are the inlet and outlet objects of the nested graph.
type Graph struct {
	ctx        *Context
	id         GraphID
	dollarZero int
	parent     *Graph
	container  ObjectID
	args       *message.Message

	objects  []ObjectID
	inlets   []ObjectID
	outlets  []ObjectID
	children []*Graph

	// order is the signal process order of the graph and its subgraphs.
	// It is only maintained on top-level graphs.
	order    []ObjectID
	on       bool
	attached bool
}

// ID returns the id of the graph.
func (g *Graph) ID() GraphID {
	return g.id
}

// Parent returns the enclosing graph or nil for top-level graphs.
func (g *Graph) Parent() *Graph {
	return g.parent
}

// Container returns the object standing for the graph in its parent or
// NilObject for top-level graphs.
func (g *Graph) Container() ObjectID {
	return g.container
}

// Arguments returns the graph arguments. The first atom is $0.
func (g *Graph) Arguments() *message.Message {
	return g.args
}

// DollarZero returns the $0 value of the graph.
func (g *Graph) DollarZero() int {
	return g.dollarZero
}

// Objects returns the objects of the graph in creation order.
func (g *Graph) Objects() []ObjectID {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	return append([]ObjectID(nil), g.objects...)
}

// Inlets returns the inlet objects of the graph sorted by position.
func (g *Graph) Inlets() []ObjectID {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	return append([]ObjectID(nil), g.inlets...)
}

// Outlets returns the outlet objects of the graph sorted by position.
func (g *Graph) Outlets() []ObjectID {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	return append([]ObjectID(nil), g.outlets...)
}

// SwitchOn enables or disables signal processing of the graph and its
// subgraphs. Signal messages sent to a switched off graph are dropped.
func (g *Graph) SwitchOn(on bool) {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	g.on = on
}

// IsSwitchedOn reports whether the graph and all of its parents are on.
func (g *Graph) IsSwitchedOn() bool {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	return g.isSwitchedOn()
}

func (g *Graph) isSwitchedOn() bool {
	for p := g; p != nil; p = p.parent {
		if !p.on {
			return false
		}
	}
	return true
}

func (g *Graph) root() *Graph {
	r := g
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (g *Graph) isAttached() bool {
	return g.root().attached
}

// walk calls fn for every node of the graph and its subgraphs, depth
// first in creation order.
func (g *Graph) walk(fn func(*node)) {
	for _, id := range g.objects {
		n := g.ctx.node(id)
		fn(n)
		if n.subgraph != nil {
			n.subgraph.walk(fn)
		}
	}
}

// AddObject adds o to the graph at the provided position.
func (g *Graph) AddObject(x, y float64, o Object) (ObjectID, error) {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	return g.addObject(x, y, o)
}

func (g *Graph) addObject(x, y float64, o Object) (ObjectID, error) {
	c := g.ctx
	if c.objects.Len() == c.objects.Cap() {
		return NilObject, errors.Wrapf(zerrors.ErrBufferOverflow, "object table of %d", c.objects.Cap())
	}
	var n *node
	id := ObjectID(c.objects.Allocate(func(id alloc.ID) *node {
		n = c.newNode(ObjectID(id), g, x, y, o)
		return n
	}))

	if p, ok := o.(graphPort); ok {
		if p.isInlet() {
			g.inlets = c.insertByX(g.inlets, id)
		} else {
			g.outlets = c.insertByX(g.outlets, id)
		}
	}
	g.objects = append(g.objects, id)

	if g.isAttached() {
		if err := c.attachNode(n); err != nil {
			g.removeObject(id)
			return NilObject, err
		}
		c.computeProcessOrder(g.root())
	}
	return id, nil
}

func (c *Context) newNode(id ObjectID, g *Graph, x, y float64, o Object) *node {
	n := &node{
		env:    Env{ctx: c, id: id, graph: g},
		object: o,
		coords: Coordinates{X: x, Y: y},
	}
	if s, ok := o.(*subpatch); ok {
		n.subgraph = s.graph
		n.incoming = connection.NewTable(0)
		n.outgoing = connection.NewTable(0)
		return n
	}
	n.incoming = connection.NewTable(o.Inlets())
	n.outgoing = connection.NewTable(o.Outlets())
	if d, ok := o.(DSP); ok {
		n.dsp = d
		n.block.In = make([][]float64, o.Inlets())
		n.block.Out = make([][]float64, o.Outlets())
		for i := range n.block.In {
			n.block.In[i] = c.zero
		}
		for i := range n.block.Out {
			n.block.Out[i] = c.alloc()
		}
		n.sources = make([][][]float64, o.Inlets())
		n.connected = make([]bool, o.Inlets())
		n.scratch = make([][]float64, o.Inlets())
	}
	return n
}

// insertByX inserts id keeping ids sorted by x. Ties keep insertion order.
func (c *Context) insertByX(ids []ObjectID, id ObjectID) []ObjectID {
	ids = append(ids, id)
	sort.SliceStable(ids, func(i, j int) bool {
		return c.node(ids[i]).coords.X < c.node(ids[j]).coords.X
	})
	return ids
}

// Create instantiates an object from its textual form, such as "osc~ 440".
// References like \$1 are resolved against the graph arguments.
func (g *Graph) Create(x, y float64, text string) (ObjectID, error) {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	resolved, err := message.ResolveString(text, g.args, 0)
	if err != nil {
		return NilObject, errors.Wrapf(err, "object %q", text)
	}
	m, err := message.FromString(0, objectCapacity, resolved)
	if err != nil {
		return NilObject, errors.Wrapf(err, "object %q", text)
	}
	if m.Len() == 0 {
		return NilObject, errors.Wrapf(zerrors.ErrParse, "empty object")
	}
	label := m.Element(0).String()
	init := message.FromAtoms(0, m.Atoms()[1:]...)
	o, err := g.ctx.newObject(label, init)
	if err != nil {
		return NilObject, err
	}
	return g.addObject(x, y, o)
}

// CreateWith instantiates the object registered as label with init as its
// arguments. No argument resolution takes place.
func (g *Graph) CreateWith(x, y float64, label string, init *message.Message) (ObjectID, error) {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	o, err := g.ctx.newObject(label, init)
	if err != nil {
		return NilObject, err
	}
	return g.addObject(x, y, o)
}

// NewSubgraph adds a nested graph at the provided position. The nested
// graph shares the arguments of g.
func (g *Graph) NewSubgraph(x, y float64) (*Graph, error) {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	child, err := g.ctx.newGraph(g.args, g.dollarZero)
	if err != nil {
		return nil, err
	}
	child.parent = g
	id, err := g.addObject(x, y, &subpatch{graph: child})
	if err != nil {
		g.ctx.graphs.Free(alloc.ID(child.id))
		return nil, err
	}
	child.container = id
	g.children = append(g.children, child)
	return child, nil
}

// Subgraphs returns the nested graphs of g in creation order.
func (g *Graph) Subgraphs() []*Graph {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	return append([]*Graph(nil), g.children...)
}

// RemoveObject removes the object and all of its connections. Messages
// it has scheduled are cancelled.
func (g *Graph) RemoveObject(id ObjectID) error {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	if n, ok := g.ctx.objects.Get(alloc.ID(id)); !ok || n.env.graph != g {
		return errors.Errorf("object %v is not in graph %v", id, g.id)
	}
	g.removeObject(id)
	return nil
}

func (g *Graph) removeObject(id ObjectID) {
	c := g.ctx
	n := c.node(id)
	if child := n.subgraph; child != nil {
		child.clear()
		for i := range g.children {
			if g.children[i] == child {
				g.children = append(g.children[:i], g.children[i+1:]...)
				break
			}
		}
		c.graphs.Free(alloc.ID(child.id))
	}

	n.incoming.Each(func(inlet int, conn connection.Connection) {
		if src, ok := c.objects.Get(conn.ObjectID); ok {
			src.removeOutgoing(conn.Port, id, inlet)
		}
	})
	n.outgoing.Each(func(outlet int, conn connection.Connection) {
		if dst, ok := c.objects.Get(conn.ObjectID); ok {
			dst.removeIncoming(conn.Port, id, outlet)
		}
	})
	c.queue.RemoveObject(alloc.ID(id))
	if n.attached {
		c.detachNode(n)
	}
	if n.dsp != nil {
		c.free(n.block.Out...)
		for _, s := range n.scratch {
			if s != nil {
				c.free(s)
			}
		}
	}

	g.objects = removeID(g.objects, id)
	g.inlets = removeID(g.inlets, id)
	g.outlets = removeID(g.outlets, id)
	c.objects.Free(alloc.ID(id))
	c.computeProcessOrder(g.root())
}

// clear removes every object of the graph, last created first.
func (g *Graph) clear() {
	for len(g.objects) > 0 {
		g.removeObject(g.objects[len(g.objects)-1])
	}
}

func removeID(ids []ObjectID, id ObjectID) []ObjectID {
	for i := range ids {
		if ids[i] == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// AddConnection wires outlet of from to inlet of to. Wires to a nested
// graph are attached to its port objects. Wires between missing ports or
// from a signal outlet into a message object are reported and ignored.
func (g *Graph) AddConnection(from ObjectID, outlet int, to ObjectID, inlet int) error {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	return g.addConnection(from, outlet, to, inlet)
}

func (g *Graph) addConnection(from ObjectID, outlet int, to ObjectID, inlet int) error {
	c := g.ctx
	src, outlet, ok := c.resolveOutlet(from, outlet)
	if !ok {
		return nil
	}
	dst, inlet, ok := c.resolveInlet(to, inlet)
	if !ok {
		return nil
	}
	if src.env.graph == nil || dst.env.graph == nil || src.env.graph.root() != g.root() || dst.env.graph.root() != g.root() {
		c.printErr("Connection ignored: %s and %s are not in the same patch.",
			src.object.Label(), dst.object.Label())
		return nil
	}
	if outlet < 0 || outlet >= src.outgoing.Len() || inlet < 0 || inlet >= dst.incoming.Len() {
		c.printErr("Connection ignored: %s outlet %d to %s inlet %d does not exist.",
			src.object.Label(), outlet, dst.object.Label(), inlet)
		return nil
	}
	if connectionType(src.object, outlet) == connection.DSP && dst.dsp == nil {
		c.printErr("Connection ignored: signal outlet of %s connected to message object %s.",
			src.object.Label(), dst.object.Label())
		return nil
	}
	if src.hasOutgoing(outlet, dst.id(), inlet) {
		return nil
	}
	if err := src.addOutgoing(outlet, dst.id(), inlet); err != nil {
		return err
	}
	if err := dst.addIncoming(inlet, src.id(), outlet); err != nil {
		src.removeOutgoing(outlet, dst.id(), inlet)
		return err
	}
	c.computeProcessOrder(g.root())
	return nil
}

// RemoveConnection removes a wire. Missing wires are ignored.
func (g *Graph) RemoveConnection(from ObjectID, outlet int, to ObjectID, inlet int) error {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	g.removeConnection(from, outlet, to, inlet)
	return nil
}

func (g *Graph) removeConnection(from ObjectID, outlet int, to ObjectID, inlet int) {
	c := g.ctx
	src, outlet, ok := c.resolveOutlet(from, outlet)
	if !ok {
		return
	}
	dst, inlet, ok := c.resolveInlet(to, inlet)
	if !ok {
		return
	}
	if outlet < 0 || outlet >= src.outgoing.Len() || !src.hasOutgoing(outlet, dst.id(), inlet) {
		return
	}
	src.removeOutgoing(outlet, dst.id(), inlet)
	dst.removeIncoming(inlet, src.id(), outlet)
	c.computeProcessOrder(g.root())
}

// ConnectIndex wires objects addressed by their creation index.
func (g *Graph) ConnectIndex(from, outlet, to, inlet int) error {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	src, dst, err := g.byIndex(from, to)
	if err != nil {
		return err
	}
	return g.addConnection(src, outlet, dst, inlet)
}

// DisconnectIndex removes a wire between objects addressed by their
// creation index.
func (g *Graph) DisconnectIndex(from, outlet, to, inlet int) error {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	src, dst, err := g.byIndex(from, to)
	if err != nil {
		return err
	}
	g.removeConnection(src, outlet, dst, inlet)
	return nil
}

func (g *Graph) byIndex(from, to int) (ObjectID, ObjectID, error) {
	for _, i := range []int{from, to} {
		if i < 0 || i >= len(g.objects) {
			return NilObject, NilObject, errors.Wrapf(zerrors.ErrIndexOutOfBounds, "object index %d of %d", i, len(g.objects))
		}
	}
	return g.objects[from], g.objects[to], nil
}

// resolveOutlet returns the node that really emits from outlet of id.
func (c *Context) resolveOutlet(id ObjectID, outlet int) (*node, int, bool) {
	n, ok := c.objects.Get(alloc.ID(id))
	if !ok {
		c.printErr("Connection ignored: unknown object %v.", id)
		return nil, 0, false
	}
	for n.subgraph != nil {
		ports := n.subgraph.outlets
		if outlet < 0 || outlet >= len(ports) {
			c.printErr("Connection ignored: subpatch has no outlet %d.", outlet)
			return nil, 0, false
		}
		n, outlet = c.node(ports[outlet]), 0
	}
	return n, outlet, true
}

// resolveInlet returns the node that really receives at inlet of id.
func (c *Context) resolveInlet(id ObjectID, inlet int) (*node, int, bool) {
	n, ok := c.objects.Get(alloc.ID(id))
	if !ok {
		c.printErr("Connection ignored: unknown object %v.", id)
		return nil, 0, false
	}
	for n.subgraph != nil {
		ports := n.subgraph.inlets
		if inlet < 0 || inlet >= len(ports) {
			c.printErr("Connection ignored: subpatch has no inlet %d.", inlet)
			return nil, 0, false
		}
		n, inlet = c.node(ports[inlet]), 0
	}
	return n, inlet, true
}

// ComputeProcessOrder recomputes the signal process order of the graph
// this graph belongs to.
func (g *Graph) ComputeProcessOrder() {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	g.ctx.computeProcessOrder(g.root())
}

// ProcessOrder returns the signal objects of the top-level graph in the
// order they are processed.
func (g *Graph) ProcessOrder() []ObjectID {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	return append([]ObjectID(nil), g.root().order...)
}
