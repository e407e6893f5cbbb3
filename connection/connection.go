// Package connection describes wires between object ports.
package connection

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/dudk/zen/alloc"
	zerrors "github.com/dudk/zen/errors"
)

const (
	// MaxConnections is the capacity of a single port list.
	MaxConnections = 64
	// MaxPorts is the number of ports a table can hold.
	MaxPorts = 64
)

// Type is the kind of data carried by a connection.
type Type int

const (
	// Message connections carry control messages.
	Message Type = iota
	// DSP connections carry sample blocks.
	DSP
)

func (t Type) String() string {
	if t == DSP {
		return "dsp"
	}
	return "message"
}

// Connection is one end of a wire: the object on the other side and its
// port.
type Connection struct {
	ObjectID alloc.ID
	Port     int
}

// List is a bounded list of connections of one port.
type List struct {
	connections []Connection
}

// PushBack appends c. It returns ErrBufferOverflow if the list is full.
func (l *List) PushBack(c Connection) error {
	if len(l.connections) >= MaxConnections {
		return errors.Wrapf(zerrors.ErrBufferOverflow, "connection list of %d", MaxConnections)
	}
	l.connections = append(l.connections, c)
	return nil
}

// Remove deletes c from the list. Removing a connection that is not in
// the list is a programming error and panics.
func (l *List) Remove(c Connection) {
	for i := range l.connections {
		if l.connections[i] != c {
			continue
		}
		last := len(l.connections) - 1
		l.connections[i] = l.connections[last]
		l.connections = l.connections[:last]
		return
	}
	panic(fmt.Sprintf("remove absent connection %v", c))
}

// Contains reports whether c is in the list.
func (l *List) Contains(c Connection) bool {
	for i := range l.connections {
		if l.connections[i] == c {
			return true
		}
	}
	return false
}

// Len returns the number of connections.
func (l *List) Len() int {
	return len(l.connections)
}

// At returns the connection at index i.
func (l *List) At(i int) Connection {
	return l.connections[i]
}

// All returns a snapshot of the connections. Dispatch iterates over the
// snapshot so receivers may rewire the graph.
func (l *List) All() []Connection {
	return append([]Connection(nil), l.connections...)
}

// Table holds one list per port. Port 0 is the primary port.
type Table struct {
	ports []List
}

// NewTable returns a table with the provided number of ports.
func NewTable(ports int) Table {
	if ports > MaxPorts {
		panic(fmt.Sprintf("table of %d ports exceeds %d", ports, MaxPorts))
	}
	return Table{ports: make([]List, ports)}
}

// Len returns the number of ports.
func (t *Table) Len() int {
	return len(t.ports)
}

// Port returns the list of port i.
func (t *Table) Port(i int) *List {
	return &t.ports[i]
}

// Add appends c to port.
func (t *Table) Add(port int, c Connection) error {
	if port < 0 || port >= len(t.ports) {
		return errors.Wrapf(zerrors.ErrIndexOutOfBounds, "port %d of %d", port, len(t.ports))
	}
	return t.ports[port].PushBack(c)
}

// Remove deletes c from port. It panics if c is absent.
func (t *Table) Remove(port int, c Connection) {
	t.ports[port].Remove(c)
}

// Empty reports whether no port has a connection.
func (t *Table) Empty() bool {
	for i := range t.ports {
		if t.ports[i].Len() > 0 {
			return false
		}
	}
	return true
}

// Each calls fn for every connection in port order.
func (t *Table) Each(fn func(port int, c Connection)) {
	for i := range t.ports {
		for _, c := range t.ports[i].All() {
			fn(i, c)
		}
	}
}
