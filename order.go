package zen

import (
	"math"

	"github.com/dudk/zen/connection"
	"github.com/dudk/zen/mixer"
)

// computeProcessOrder orders the signal objects of g and its subgraphs so
// that every object runs after the objects feeding it. Traversal starts at
// the leaves and follows incoming wires and declared dependencies.
func (c *Context) computeProcessOrder(g *Graph) {
	c.pass++
	var scope []*node
	g.walk(func(n *node) {
		n.pass = c.pass
		n.ordered = false
		scope = append(scope, n)
	})

	order := g.order[:0]
	for _, n := range scope {
		if n.subgraph == nil && n.isLeaf() {
			order = c.collectOrder(n, order)
		}
	}
	g.order = order
	for _, id := range order {
		c.resolveInputs(c.node(id))
	}
	c.logger.Debug("process order of graph ", g.id, ": ", len(order), " signal objects")
}

func (c *Context) collectOrder(n *node, order []ObjectID) []ObjectID {
	if n.ordered {
		return order
	}
	n.ordered = true
	n.incoming.Each(func(_ int, conn connection.Connection) {
		if src, ok := c.objects.Get(conn.ObjectID); ok && src.pass == c.pass {
			order = c.collectOrder(src, order)
		}
	})
	if d, ok := n.object.(Dependent); ok {
		for _, id := range d.Dependencies(&n.env) {
			if src, ok := c.lookup(id); ok && src.pass == c.pass {
				order = c.collectOrder(src, order)
			}
		}
	}
	if n.dsp != nil {
		order = append(order, n.id())
	}
	return order
}

// resolveInputs points every signal inlet of n at its source buffer. An
// unconnected inlet reads silence, a single source is read in place and
// several sources are summed into a scratch buffer.
func (c *Context) resolveInputs(n *node) {
	for inlet := range n.block.In {
		var sources [][]float64
		for _, conn := range n.incoming.Port(inlet).All() {
			src, ok := c.objects.Get(conn.ObjectID)
			if !ok || src.dsp == nil || connectionType(src.object, conn.Port) != connection.DSP {
				continue
			}
			sources = append(sources, src.block.Out[conn.Port])
		}
		n.connected[inlet] = len(sources) > 0
		switch len(sources) {
		case 0:
			n.block.In[inlet] = c.zero
			n.sources[inlet] = nil
		case 1:
			n.block.In[inlet] = sources[0]
			n.sources[inlet] = nil
		default:
			if n.scratch[inlet] == nil {
				n.scratch[inlet] = c.alloc()
			}
			n.block.In[inlet] = n.scratch[inlet]
			n.sources[inlet] = sources
		}
	}
}

// processDSP runs one block of every signal object of g.
func (c *Context) processDSP(g *Graph) {
	for _, id := range g.order {
		n := c.node(id)
		if !n.env.graph.isSwitchedOn() {
			n.pending = n.pending[:0]
			for _, out := range n.block.Out {
				mixer.Zero(out)
			}
			continue
		}
		c.processNode(n)
	}
}

// processNode splits the block at the sample position of every pending
// message so that messages take effect sample accurately.
func (c *Context) processNode(n *node) {
	for inlet, sources := range n.sources {
		if len(sources) > 1 {
			mixer.Sum(n.scratch[inlet], sources...)
		}
	}

	size := c.config.BlockSize
	from := 0
	for i, p := range n.pending {
		to := int(math.Ceil(c.blockIndex(p.m.Timestamp())))
		if to < from {
			to = from
		}
		if to > size {
			to = size
		}
		if to > from {
			n.dsp.ProcessDSP(&n.env, &n.block, from, to)
			from = to
		}
		c.now = p.m.Timestamp()
		n.object.ProcessMessage(&n.env, p.inlet, p.m)
		n.pending[i] = pending{}
	}
	n.pending = n.pending[:0]
	c.now = c.blockStart
	if from < size {
		n.dsp.ProcessDSP(&n.env, &n.block, from, size)
	}
}
