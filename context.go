package zen

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"go.uber.org/multierr"
	"pipelined.dev/signal"
	signalpool "pipelined.dev/signal/pool"

	"github.com/dudk/zen/alloc"
	"github.com/dudk/zen/config"
	"github.com/dudk/zen/connection"
	zerrors "github.com/dudk/zen/errors"
	"github.com/dudk/zen/internal/layout"
	"github.com/dudk/zen/internal/pool"
	"github.com/dudk/zen/log"
	"github.com/dudk/zen/message"
	"github.com/dudk/zen/metric"
	"github.com/dudk/zen/queue"
	"github.com/dudk/zen/send"
)

const (
	// dollarZeroStart is the $0 value of the first top-level graph.
	dollarZeroStart = 1000
	// objectCapacity is the maximum number of atoms in an object text.
	objectCapacity = 64
)

// Context owns graphs, objects and the message queue, and advances them
// one block at a time. All exported methods are safe for concurrent use.
type Context struct {
	mu sync.Mutex

	id       xid.ID
	config   config.Config
	logger   log.Logger
	callback Callback
	registry *Registry

	objects    *alloc.Table[*node]
	graphs     *alloc.Table[*Graph]
	roots      []*Graph
	queue      *queue.Queue
	names      *send.Controller
	controller ObjectID
	values     map[string]float32
	buses      map[busKey]*bus
	delaylines map[string]*Delayline
	tables     map[string]*Table
	pool       *signalpool.Pool
	zero       []float64

	input         signal.Float64
	output        signal.Float64
	blockStart    message.Timestamp
	now           message.Timestamp
	blockDuration float64
	dollarZero    int
	pass          uint64
	delivered     int64
	measure       metric.MeasureFunc
}

// Option configures a Context.
type Option func(*Context)

// WithConfig sets the context configuration.
func WithConfig(cfg config.Config) Option {
	return func(c *Context) {
		c.config = cfg
	}
}

// WithLogger sets the logger of the context.
func WithLogger(l log.Logger) Option {
	return func(c *Context) {
		c.logger = l
	}
}

// WithCallback sets the host notification callback.
func WithCallback(fn Callback) Option {
	return func(c *Context) {
		c.callback = fn
	}
}

// WithRegistry sets the object registry used to create objects by label.
func WithRegistry(r *Registry) Option {
	return func(c *Context) {
		c.registry = r
	}
}

// New returns a context with the provided options applied.
func New(opts ...Option) (*Context, error) {
	c := &Context{
		config:     config.Default(),
		logger:     log.Silent,
		values:     make(map[string]float32),
		buses:      make(map[busKey]*bus),
		delaylines: make(map[string]*Delayline),
		tables:     make(map[string]*Table),
		dollarZero: dollarZeroStart,
	}
	for _, o := range opts {
		o(c)
	}
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}

	c.id = xid.New()
	c.objects = alloc.New[*node]("objects", c.config.MaxObjects+1)
	c.graphs = alloc.New[*Graph]("graphs", c.config.MaxGraphs)
	c.queue = queue.New(c.config.QueueCapacity)
	c.names = send.New()
	c.pool = pool.Get(c.config.BlockSize, 1)
	c.zero = make([]float64, c.config.BlockSize)
	c.input = signal.Float64Buffer(c.config.InputChannels, c.config.BlockSize)
	c.output = signal.Float64Buffer(c.config.OutputChannels, c.config.BlockSize)
	c.blockDuration = c.config.BlockDuration()
	c.controller = ObjectID(c.objects.Allocate(func(id alloc.ID) *node {
		return &node{
			env:      Env{ctx: c, id: ObjectID(id)},
			object:   controllerObject{},
			incoming: connection.NewTable(0),
			outgoing: connection.NewTable(0),
		}
	}))
	c.measure = metric.Meter(c, c.config.SampleRate)()
	c.logger.Debug("context ", c.id, " created: ", c.config.BlockSize, " frames at ", c.config.SampleRate, " Hz")
	return c, nil
}

// ID returns the unique id of the context.
func (c *Context) ID() string {
	return c.id.String()
}

// BlockSize returns the number of frames per block.
func (c *Context) BlockSize() int {
	return c.config.BlockSize
}

// SampleRate returns the sample rate in Hz.
func (c *Context) SampleRate() float64 {
	return c.config.SampleRate
}

// NumInputChannels returns the number of input channels.
func (c *Context) NumInputChannels() int {
	return c.config.InputChannels
}

// NumOutputChannels returns the number of output channels.
func (c *Context) NumOutputChannels() int {
	return c.config.OutputChannels
}

// BlockDuration returns the duration of a block in milliseconds.
func (c *Context) BlockDuration() float64 {
	return c.blockDuration
}

// BlockStart returns the timestamp of the next block to process.
func (c *Context) BlockStart() message.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockStart
}

// Registry returns the object registry of the context.
func (c *Context) Registry() *Registry {
	return c.registry
}

// Process computes one block. Both buffers are channel major: channel c
// occupies [c*blockSize, (c+1)*blockSize).
func (c *Context) Process(in, out []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	layout.ReadChannelMajor(c.input, in)
	layout.Zero(c.output)
	c.delivered = 0

	next := c.blockStart.Add(c.blockDuration)
	for {
		e, ok := c.queue.Peek()
		if !ok || e.Message.Timestamp() >= next {
			break
		}
		c.queue.Pop()
		if e.Message.Timestamp() < c.blockStart {
			e.Message.SetTimestamp(c.blockStart)
		}
		c.now = e.Message.Timestamp()
		c.dispatch(e)
	}
	c.now = c.blockStart

	for _, g := range c.roots {
		if g.on {
			c.processDSP(g)
		}
	}

	c.blockStart = next
	c.now = next
	layout.WriteChannelMajor(out, c.output)
	c.measure(int64(c.config.BlockSize), c.delivered)
}

// dispatch delivers a queued entry. Objects that scheduled it may take
// over the delivery.
func (c *Context) dispatch(e queue.Entry) {
	n, ok := c.objects.Get(e.ObjectID)
	if !ok {
		return
	}
	if s, ok := n.object.(Scheduled); ok {
		s.SendScheduled(&n.env, e.Port, e.Message)
		return
	}
	c.sendFrom(n.id(), e.Port, e.Message)
}

func (c *Context) node(id ObjectID) *node {
	return c.objects.MustGet(alloc.ID(id))
}

func (c *Context) lookup(id ObjectID) (*node, bool) {
	return c.objects.Get(alloc.ID(id))
}

func (c *Context) blockIndex(ts message.Timestamp) float64 {
	return float64(ts-c.blockStart) * c.config.SampleRate / 1000
}

// NewGraph returns a detached top-level graph. The graph arguments are
// prefixed with a fresh $0 value.
func (c *Context) NewGraph(args *message.Message) (*Graph, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dz := c.dollarZero
	atoms := []message.Atom{message.FloatAtom(float32(dz))}
	if args != nil && !(args.Len() == 1 && args.IsBang(0)) {
		atoms = append(atoms, args.Atoms()...)
	}
	g, err := c.newGraph(message.FromAtoms(0, atoms...), dz)
	if err != nil {
		return nil, err
	}
	c.dollarZero++
	return g, nil
}

func (c *Context) newGraph(args *message.Message, dollarZero int) (*Graph, error) {
	if c.graphs.Len() == c.graphs.Cap() {
		return nil, errors.Wrapf(zerrors.ErrBufferOverflow, "graph table of %d", c.graphs.Cap())
	}
	var g *Graph
	c.graphs.Allocate(func(id alloc.ID) *Graph {
		g = &Graph{
			ctx:        c,
			id:         GraphID(id),
			dollarZero: dollarZero,
			container:  NilObject,
			args:       args,
			on:         true,
		}
		return g
	})
	return g, nil
}

// Graphs returns the attached top-level graphs in attach order.
func (c *Context) Graphs() []*Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Graph(nil), c.roots...)
}

// AttachGraph makes g part of block processing. Objects of the graph are
// attached to the context and the process order is computed.
func (c *Context) AttachGraph(g *Graph) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g.parent != nil {
		return errors.Errorf("graph %v is nested", g.id)
	}
	if g.attached {
		return nil
	}
	g.attached = true
	c.roots = append(c.roots, g)
	var err error
	g.walk(func(n *node) {
		err = multierr.Append(err, c.attachNode(n))
	})
	c.computeProcessOrder(g)
	return err
}

// DetachGraph removes g from block processing. Messages scheduled by its
// objects are cancelled.
func (c *Context) DetachGraph(g *Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detachGraph(g)
}

func (c *Context) detachGraph(g *Graph) {
	if !g.attached {
		return
	}
	g.walk(func(n *node) {
		if n.attached {
			c.detachNode(n)
		}
		c.queue.RemoveObject(alloc.ID(n.id()))
	})
	g.attached = false
	for i := range c.roots {
		if c.roots[i] == g {
			c.roots = append(c.roots[:i], c.roots[i+1:]...)
			break
		}
	}
}

// RemoveGraph detaches g and releases all of its objects.
func (c *Context) RemoveGraph(g *Graph) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g.parent != nil {
		return errors.Errorf("graph %v is nested", g.id)
	}
	c.detachGraph(g)
	g.clear()
	c.graphs.Free(alloc.ID(g.id))
	return nil
}

func (c *Context) attachNode(n *node) error {
	if n.attached || n.subgraph != nil {
		return nil
	}
	if a, ok := n.object.(Attacher); ok {
		if err := a.Attach(&n.env); err != nil {
			return errors.Wrapf(err, "attach %s", n.object.Label())
		}
	}
	n.attached = true
	return nil
}

func (c *Context) detachNode(n *node) {
	if a, ok := n.object.(Attacher); ok {
		a.Detach(&n.env)
	}
	n.attached = false
}

// NewObject creates an object by label. A numeric label creates a float
// object holding that number.
func (c *Context) NewObject(label string, init *message.Message) (Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newObject(label, init)
}

func (c *Context) newObject(label string, init *message.Message) (Object, error) {
	if init == nil {
		init = message.FromTimestamp(0)
	}
	if f := c.registry.Lookup(label); f != nil {
		return f(init)
	}
	if message.IsNumeric(label) {
		if f := c.registry.Lookup("float"); f != nil {
			m, err := message.FromString(0, 1, label)
			if err != nil {
				return nil, err
			}
			return f(m)
		}
	}
	c.printErr("Unknown object or abstraction '%s'.", label)
	return nil, errors.Wrapf(zerrors.ErrUnknownObject, "%s", label)
}

// ScheduleMessage queues m for delivery from outlet of the object at the
// message timestamp. It returns the queued copy used to cancel it.
func (c *Context) ScheduleMessage(id ObjectID, outlet int, m *message.Message) (*message.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lookup(id); !ok {
		return nil, errors.Errorf("unknown object %v", id)
	}
	return c.schedule(id, outlet, m)
}

func (c *Context) schedule(id ObjectID, outlet int, m *message.Message) (*message.Message, error) {
	scheduled := m.Clone()
	err := c.queue.Insert(queue.Entry{ObjectID: alloc.ID(id), Port: outlet, Message: scheduled})
	if err != nil {
		return nil, err
	}
	return scheduled, nil
}

// CancelMessage removes a scheduled message. Unknown messages are ignored.
func (c *Context) CancelMessage(id ObjectID, outlet int, m *message.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel(id, outlet, m)
}

func (c *Context) cancel(id ObjectID, outlet int, m *message.Message) {
	c.queue.Remove(alloc.ID(id), outlet, m)
}

// ScheduleExternalMessage queues m for delivery to the receivers of name
// at the message timestamp.
func (c *Context) ScheduleExternalMessage(name string, m *message.Message) (*message.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	index, err := c.names.Resolve(name)
	if err != nil {
		return nil, err
	}
	return c.schedule(c.controller, index, m)
}

// ScheduleExternalString parses s and queues it for name at ts.
func (c *Context) ScheduleExternalString(name string, ts message.Timestamp, s string) (*message.Message, error) {
	m, err := message.FromString(ts, message.DefaultCapacity, s)
	if err != nil {
		return nil, err
	}
	return c.ScheduleExternalMessage(name, m)
}

// ScheduleExternalFormat builds a message from format and args and queues
// it for name at ts. Format letters are 'f' for floats, 's' for symbols
// and 'b' for bangs, which take no argument.
func (c *Context) ScheduleExternalFormat(name string, ts message.Timestamp, format string, args ...interface{}) (*message.Message, error) {
	atoms := make([]message.Atom, 0, len(format))
	next := 0
	arg := func() (interface{}, error) {
		if next >= len(args) {
			return nil, errors.Wrapf(zerrors.ErrIndexOutOfBounds, "format %q needs more than %d arguments", format, len(args))
		}
		next++
		return args[next-1], nil
	}
	for _, f := range format {
		var a message.Atom
		switch f {
		case 'b':
			a = message.BangAtom()
		case 'f':
			v, err := arg()
			if err != nil {
				return nil, err
			}
			fv, ok := toFloat(v)
			if !ok {
				return nil, errors.Wrapf(zerrors.ErrParse, "%v is not a float", v)
			}
			a = message.FloatAtom(fv)
		case 's':
			v, err := arg()
			if err != nil {
				return nil, err
			}
			a = message.SymbolAtom(fmt.Sprint(v))
		default:
			return nil, errors.Wrapf(zerrors.ErrParse, "unknown format %q", f)
		}
		atoms = append(atoms, a)
	}
	return c.ScheduleExternalMessage(name, message.FromAtoms(ts, atoms...))
}

func toFloat(v interface{}) (float32, bool) {
	switch f := v.(type) {
	case float32:
		return f, true
	case float64:
		return float32(f), true
	case int:
		return float32(f), true
	case int64:
		return float32(f), true
	}
	return 0, false
}

// SendToName delivers m to the receivers of name immediately.
func (c *Context) SendToName(name string, m *message.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendToName(name, m)
}

func (c *Context) sendToName(name string, m *message.Message) {
	index, ok := c.names.Index(name)
	if !ok {
		c.logger.Debug("no receivers for ", name)
		return
	}
	c.deliverToIndex(index, m)
}

func (c *Context) addReceiver(name string, id ObjectID) error {
	return c.names.AddReceiver(name, alloc.ID(id))
}

func (c *Context) removeReceiver(name string, id ObjectID) {
	c.names.RemoveReceiver(name, alloc.ID(id))
}

// RegisterExternalReceiver forwards messages sent to name to the host
// callback.
func (c *Context) RegisterExternalReceiver(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.names.RegisterExternal(name)
}

// UnregisterExternalReceiver stops forwarding messages sent to name.
func (c *Context) UnregisterExternalReceiver(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names.UnregisterExternal(name)
}

// SetValueForName sets a global value.
func (c *Context) SetValueForName(name string, v float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = v
}

// ValueForName returns a global value. Unset names are zero.
func (c *Context) ValueForName(name string) float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// PrintStd reports text to the host.
func (c *Context) PrintStd(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printStd(format, args...)
}

// PrintErr reports an error to the host.
func (c *Context) PrintErr(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printErr(format, args...)
}

func (c *Context) printStd(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	c.logger.Info(text)
	c.notify(Event{Kind: PrintStd, Text: text})
}

func (c *Context) printErr(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	c.logger.Error(text)
	c.notify(Event{Kind: PrintErr, Text: text})
}

func (c *Context) notify(e Event) {
	if c.callback != nil {
		c.callback(e)
	}
}
