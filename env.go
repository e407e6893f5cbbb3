package zen

import (
	"math"

	"github.com/dudk/zen/message"
)

// Env is the view of the context handed to objects. It is only valid for
// the duration of the call it is passed to.
type Env struct {
	ctx   *Context
	id    ObjectID
	graph *Graph
}

// ID returns the id of the object.
func (e *Env) ID() ObjectID {
	return e.id
}

// Arguments returns the arguments of the graph the object belongs to. The
// first atom is the graph's $0 value.
func (e *Env) Arguments() *message.Message {
	if e.graph == nil {
		return nil
	}
	return e.graph.args
}

// Send delivers m to every object wired to the outlet immediately.
func (e *Env) Send(outlet int, m *message.Message) {
	e.ctx.sendFrom(e.id, outlet, m)
}

// Schedule queues m for delivery from the outlet at its timestamp. The
// returned message identifies the delivery for Cancel.
func (e *Env) Schedule(outlet int, m *message.Message) (*message.Message, error) {
	return e.ctx.schedule(e.id, outlet, m)
}

// Cancel withdraws a scheduled message. Unknown messages are ignored.
func (e *Env) Cancel(outlet int, m *message.Message) {
	e.ctx.cancel(e.id, outlet, m)
}

// SendToName delivers m to every receiver of name immediately.
func (e *Env) SendToName(name string, m *message.Message) {
	e.ctx.sendToName(name, m)
}

// AddReceiver registers the object as a receiver of name. Messages sent to
// the name arrive at inlet 0.
func (e *Env) AddReceiver(name string) error {
	return e.ctx.addReceiver(name, e.id)
}

// RemoveReceiver unregisters the object from name.
func (e *Env) RemoveReceiver(name string) {
	e.ctx.removeReceiver(name, e.id)
}

// BlockStart returns the timestamp of the current block.
func (e *Env) BlockStart() message.Timestamp {
	return e.ctx.blockStart
}

// BlockSize returns the number of frames per block.
func (e *Env) BlockSize() int {
	return e.ctx.config.BlockSize
}

// SampleRate returns the sample rate in Hz.
func (e *Env) SampleRate() float64 {
	return e.ctx.config.SampleRate
}

// BlockDuration returns the duration of a block in milliseconds.
func (e *Env) BlockDuration() float64 {
	return e.ctx.blockDuration
}

// Value returns the global value of name.
func (e *Env) Value(name string) float32 {
	return e.ctx.values[name]
}

// SetValue sets the global value of name.
func (e *Env) SetValue(name string, v float32) {
	e.ctx.values[name] = v
}

// PrintStd reports text to the host.
func (e *Env) PrintStd(format string, args ...interface{}) {
	e.ctx.printStd(format, args...)
}

// PrintErr reports an error to the host.
func (e *Env) PrintErr(format string, args ...interface{}) {
	e.ctx.printErr(format, args...)
}

// Input returns the global input buffer of channel or nil.
func (e *Env) Input(channel int) []float64 {
	if channel < 0 || channel >= len(e.ctx.input) {
		return nil
	}
	return e.ctx.input[channel]
}

// Output returns the global output buffer of channel or nil.
func (e *Env) Output(channel int) []float64 {
	if channel < 0 || channel >= len(e.ctx.output) {
		return nil
	}
	return e.ctx.output[channel]
}

// JoinBus registers the object as a writer of the named signal bus and
// returns the bus buffer.
func (e *Env) JoinBus(kind BusKind, name string) []float64 {
	return e.ctx.joinBus(kind, name, e.id)
}

// LeaveBus unregisters the object from the named signal bus.
func (e *Env) LeaveBus(kind BusKind, name string) {
	e.ctx.leaveBus(kind, name, e.id)
}

// Bus returns the buffer of the named signal bus, creating it if needed.
func (e *Env) Bus(kind BusKind, name string) []float64 {
	return e.ctx.bus(kind, name).buffer
}

// BusWriters returns the writers of the named signal bus.
func (e *Env) BusWriters(kind BusKind, name string) []ObjectID {
	b, ok := e.ctx.buses[busKey{kind: kind, name: name}]
	if !ok {
		return nil
	}
	return append([]ObjectID(nil), b.writers...)
}

// RegisterDelayline creates the delay line name, owned by the object, long
// enough for ms milliseconds.
func (e *Env) RegisterDelayline(name string, ms float64) (*Delayline, error) {
	frames := int(math.Ceil(ms * e.ctx.config.SampleRate / 1000))
	return e.ctx.registerDelayline(name, e.id, max(frames, 0))
}

// UnregisterDelayline removes the delay line name if the object owns it.
func (e *Env) UnregisterDelayline(name string) {
	e.ctx.unregisterDelayline(name, e.id)
}

// Delayline returns the delay line name or nil.
func (e *Env) Delayline(name string) *Delayline {
	return e.ctx.delaylines[name]
}

// DelaylineWriter returns the object writing the delay line name.
func (e *Env) DelaylineWriter(name string) []ObjectID {
	if d, ok := e.ctx.delaylines[name]; ok {
		return []ObjectID{d.owner}
	}
	return nil
}

// RegisterTable creates the table name of size samples, owned by the
// object.
func (e *Env) RegisterTable(name string, size int) (*Table, error) {
	return e.ctx.registerTable(name, e.id, size)
}

// UnregisterTable removes the table name if the object owns it.
func (e *Env) UnregisterTable(name string) {
	e.ctx.unregisterTable(name, e.id)
}

// Table returns the table name or nil.
func (e *Env) Table(name string) *Table {
	return e.ctx.tables[name]
}

// SwitchGraph enables or disables signal processing of the object's graph.
func (e *Env) SwitchGraph(on bool) {
	if e.graph != nil {
		e.graph.on = on
	}
}

// Connected reports whether a signal is wired into inlet. Unconnected
// signal inlets read silence.
func (e *Env) Connected(inlet int) bool {
	n, ok := e.ctx.lookup(e.id)
	if !ok || inlet < 0 || inlet >= len(n.connected) {
		return false
	}
	return n.connected[inlet]
}

// BlockIndex returns the sample position of ts within the current block.
func (e *Env) BlockIndex(ts message.Timestamp) float64 {
	return e.ctx.blockIndex(ts)
}

// Now returns the logical time of the message being handled. Outside of
// queued deliveries it is the start of the current block.
func (e *Env) Now() message.Timestamp {
	return e.ctx.now
}

// GraphID returns the id of the object's graph.
func (e *Env) GraphID() GraphID {
	if e.graph == nil {
		return GraphID{Index: -1}
	}
	return e.graph.id
}
