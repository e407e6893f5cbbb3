/*
Package zen is a message-passing and signal-processing runtime for Pure
Data style dataflow graphs.

Objects

A graph is made of objects. Every object has numbered inlets and outlets.
Wires connect an outlet of one object to an inlet of another. Control
messages travel along message wires immediately, through the name
registry (send and receive by name) or through the context's ordered
message queue when they are scheduled for a later time.

Objects implement the Object interface. Additional behaviour is opted in by
implementing the capability interfaces of this package:

    DSP         processes sample blocks
    Distributor controls distribution of lists across inlets
    Terminal    terminates process order traversal
    Typed       declares signal outlets
    Dependent   declares upstream objects without wires
    Scheduled   intercepts queued deliveries
    Attacher    registers with the context when attached

Objects never keep a reference to their context. Everything they need is
reachable from the Env passed into every call.

Processing

Context.Process runs one audio block: it delivers every queued message due
before the end of the block and then evaluates the process order of each
attached graph once.
*/
package zen

import (
	"github.com/dudk/zen/alloc"
	"github.com/dudk/zen/connection"
	"github.com/dudk/zen/message"
)

type (
	// ObjectID identifies an object of a context.
	ObjectID alloc.ID

	// GraphID identifies a graph of a context.
	GraphID alloc.ID

	// Coordinates are the canvas position of an object.
	Coordinates struct {
		X, Y float64
	}

	// Object is the behaviour of a graph node.
	Object interface {
		// Label is the name the object was created with.
		Label() string
		Inlets() int
		Outlets() int
		// ProcessMessage handles a message received at inlet.
		ProcessMessage(env *Env, inlet int, m *message.Message)
	}

	// DSP objects process sample blocks. Messages received by DSP objects
	// are handled during the block at their sample position.
	DSP interface {
		Object
		// ProcessDSP computes samples [from, to) of the block.
		ProcessDSP(env *Env, b *Block, from, to int)
	}

	// Distributor overrides the distribution of multi-atom messages
	// arriving at the left inlet.
	Distributor interface {
		DistributeToInlets() bool
	}

	// Terminal objects are leaves of the process order even when they have
	// outgoing connections.
	Terminal interface {
		IsLeaf() bool
	}

	// Typed objects declare the connection type of their outlets.
	Typed interface {
		ConnectionType(outlet int) connection.Type
	}

	// Dependent objects must be processed after objects they are not wired
	// to, such as catch~ after its throw~ objects.
	Dependent interface {
		Dependencies(env *Env) []ObjectID
	}

	// Scheduled objects intercept the delivery of messages they scheduled.
	Scheduled interface {
		SendScheduled(env *Env, outlet int, m *message.Message)
	}

	// Attacher objects are notified when they become part of an attached
	// graph and when they leave it.
	Attacher interface {
		Attach(env *Env) error
		Detach(env *Env)
	}

	// Block holds the signal buffers of a DSP object for one block. In
	// buffers must not be written. Neither may be retained after the call.
	Block struct {
		In  [][]float64
		Out [][]float64
	}
)

// NilObject is an id that never refers to an object.
var NilObject = ObjectID(alloc.Nil)

// IsNil reports whether id is NilObject.
func (id ObjectID) IsNil() bool {
	return alloc.ID(id).IsNil()
}

func (id ObjectID) String() string {
	return alloc.ID(id).String()
}

func (id GraphID) String() string {
	return alloc.ID(id).String()
}

// EventKind is the type of a host notification.
type EventKind int

const (
	// PrintStd carries standard output text.
	PrintStd EventKind = iota
	// PrintErr carries error text.
	PrintErr
	// SwitchDSP asks the host to switch audio processing.
	SwitchDSP
	// ReceiverMessage carries a message sent to an external receiver.
	ReceiverMessage
)

func (k EventKind) String() string {
	switch k {
	case PrintStd:
		return "print std"
	case PrintErr:
		return "print err"
	case SwitchDSP:
		return "switch dsp"
	case ReceiverMessage:
		return "receiver message"
	}
	return "unknown"
}

// Event is a notification delivered to the host.
type Event struct {
	Kind EventKind
	// Text of print events.
	Text string
	// DSP state requested by SwitchDSP.
	DSP bool
	// Receiver and Message of ReceiverMessage events.
	Receiver string
	Message  *message.Message
}

// Callback receives host notifications. It is called with the context
// lock held and must not call locking context methods.
type Callback func(Event)

func isDSP(o Object) bool {
	_, ok := o.(DSP)
	return ok
}

func connectionType(o Object, outlet int) connection.Type {
	if t, ok := o.(Typed); ok {
		return t.ConnectionType(outlet)
	}
	if isDSP(o) {
		return connection.DSP
	}
	return connection.Message
}

func distributes(o Object) bool {
	if d, ok := o.(Distributor); ok {
		return d.DistributeToInlets()
	}
	return !isDSP(o)
}
