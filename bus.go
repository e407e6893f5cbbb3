package zen

// BusKind separates the namespaces of named signal buses.
type BusKind int

const (
	// SignalSend buses are written by send~ and read by receive~.
	SignalSend BusKind = iota
	// SignalThrow buses are summed by throw~ and drained by catch~.
	SignalThrow
)

type busKey struct {
	kind BusKind
	name string
}

type bus struct {
	buffer  []float64
	writers []ObjectID
}

func (c *Context) bus(kind BusKind, name string) *bus {
	k := busKey{kind: kind, name: name}
	b, ok := c.buses[k]
	if !ok {
		b = &bus{buffer: c.alloc()}
		c.buses[k] = b
	}
	return b
}

func (c *Context) joinBus(kind BusKind, name string, id ObjectID) []float64 {
	b := c.bus(kind, name)
	for _, w := range b.writers {
		if w == id {
			return b.buffer
		}
	}
	b.writers = append(b.writers, id)
	return b.buffer
}

func (c *Context) leaveBus(kind BusKind, name string, id ObjectID) {
	b, ok := c.buses[busKey{kind: kind, name: name}]
	if !ok {
		return
	}
	b.writers = removeID(b.writers, id)
}
