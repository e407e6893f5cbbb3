package zen

import (
	"github.com/dudk/zen/message"
	"github.com/dudk/zen/send"
)

// controllerObject owns the queue entries of messages scheduled for a
// name. The outlet of such an entry is the index of the name.
type controllerObject struct{}

func (controllerObject) Label() string { return "send controller" }
func (controllerObject) Inlets() int   { return 0 }
func (controllerObject) Outlets() int  { return 0 }

func (controllerObject) ProcessMessage(*Env, int, *message.Message) {}

func (controllerObject) SendScheduled(env *Env, index int, m *message.Message) {
	env.ctx.deliverToIndex(index, m)
}

// deliverToIndex hands m to every receiver of the name at index and to
// the host if it observes the name.
func (c *Context) deliverToIndex(index int, m *message.Message) {
	if index == send.SystemIndex {
		c.receiveSystemMessage(m)
		return
	}
	for _, id := range c.names.Receivers(index) {
		if n, ok := c.objects.Get(id); ok {
			c.receive(n, 0, m)
		}
	}
	if name := c.names.Name(index); c.names.IsExternal(name) {
		c.notify(Event{Kind: ReceiverMessage, Receiver: name, Message: m})
	}
}

// receiveSystemMessage handles messages sent to "pd".
func (c *Context) receiveSystemMessage(m *message.Message) {
	switch {
	case m.IsSymbolString(0, "dsp") && m.IsFloat(1):
		c.notify(Event{Kind: SwitchDSP, DSP: m.Float(1) != 0})
	case m.IsSymbolString(0, "obj"):
		c.printErr("pd obj: dynamic object creation is not supported.")
	default:
		c.printErr("Unrecognised system command: %s", m)
	}
}
