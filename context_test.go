package zen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/zen"
	"github.com/dudk/zen/config"
	zerrors "github.com/dudk/zen/errors"
	"github.com/dudk/zen/internal/mock"
	"github.com/dudk/zen/message"
)

const (
	blockSize  = 64
	sampleRate = 44100
)

// events collects host notifications.
type events []zen.Event

func (e *events) callback(ev zen.Event) {
	*e = append(*e, ev)
}

func (e events) texts(kind zen.EventKind) []string {
	var result []string
	for _, ev := range e {
		if ev.Kind == kind {
			result = append(result, ev.Text)
		}
	}
	return result
}

func newContext(t *testing.T, opts ...zen.Option) *zen.Context {
	t.Helper()
	c, err := zen.New(opts...)
	require.NoError(t, err)
	return c
}

func newGraph(t *testing.T, c *zen.Context) *zen.Graph {
	t.Helper()
	g, err := c.NewGraph(nil)
	require.NoError(t, err)
	require.NoError(t, c.AttachGraph(g))
	return g
}

func process(c *zen.Context, blocks int) {
	in := make([]float32, c.NumInputChannels()*c.BlockSize())
	out := make([]float32, c.NumOutputChannels()*c.BlockSize())
	for i := 0; i < blocks; i++ {
		c.Process(in, out)
	}
}

func add(t *testing.T, g *zen.Graph, o zen.Object) zen.ObjectID {
	t.Helper()
	id, err := g.AddObject(0, 0, o)
	require.NoError(t, err)
	return id
}

func connect(t *testing.T, g *zen.Graph, from zen.ObjectID, outlet int, to zen.ObjectID, inlet int) {
	t.Helper()
	require.NoError(t, g.AddConnection(from, outlet, to, inlet))
}

func TestNew(t *testing.T) {
	c := newContext(t)
	assert.Equal(t, blockSize, c.BlockSize())
	assert.Equal(t, float64(sampleRate), c.SampleRate())
	assert.InDelta(t, 1.4512, c.BlockDuration(), 0.0001)
	assert.NotEmpty(t, c.ID())

	cfg := config.Default()
	cfg.BlockSize = 0
	_, err := zen.New(zen.WithConfig(cfg))
	assert.ErrorIs(t, err, zerrors.ErrInvalidConfig)
}

func TestDollarZero(t *testing.T) {
	c := newContext(t)
	g1, err := c.NewGraph(message.FromFloat(0, 7))
	require.NoError(t, err)
	g2, err := c.NewGraph(nil)
	require.NoError(t, err)

	assert.Equal(t, 1000, g1.DollarZero())
	assert.Equal(t, 1001, g2.DollarZero())
	assert.Equal(t, "1000 7", g1.Arguments().String())

	sub, err := g1.NewSubgraph(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1000, sub.DollarZero())
	assert.Equal(t, g1, sub.Parent())
}

func TestDistribution(t *testing.T) {
	tests := []struct {
		description string
		inlets      int
		message     string
		expected    []mock.Received
	}{
		{
			description: "list over three inlets",
			inlets:      3,
			message:     "1 2 3 4",
			expected: []mock.Received{
				{Inlet: 2, Message: message.FromFloat(0, 3)},
				{Inlet: 1, Message: message.FromFloat(0, 2)},
				{Inlet: 0, Message: message.FromFloat(0, 1)},
			},
		},
		{
			description: "short list",
			inlets:      3,
			message:     "5 6",
			expected: []mock.Received{
				{Inlet: 1, Message: message.FromFloat(0, 6)},
				{Inlet: 0, Message: message.FromFloat(0, 5)},
			},
		},
		{
			description: "bang in a list",
			inlets:      3,
			message:     "1 bang 3",
			expected: []mock.Received{
				{Inlet: 2, Message: message.FromFloat(0, 3)},
				{Inlet: 0, Message: message.FromFloat(0, 1)},
			},
		},
		{
			description: "symbols",
			inlets:      2,
			message:     "a b",
			expected: []mock.Received{
				{Inlet: 1, Message: message.FromAtoms(0, message.SymbolAtom("b"))},
				{Inlet: 0, Message: message.FromAtoms(0, message.SymbolAtom("a"))},
			},
		},
		{
			description: "single inlet",
			inlets:      1,
			message:     "1 2",
			expected: []mock.Received{
				{Inlet: 0, Message: mustParse(t, "1 2")},
			},
		},
		{
			description: "single atom",
			inlets:      2,
			message:     "9",
			expected: []mock.Received{
				{Inlet: 0, Message: message.FromFloat(0, 9)},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			c := newContext(t)
			g := newGraph(t, c)
			src := add(t, g, &mock.Recorder{In: 1, Out: 1})
			dst := &mock.Recorder{In: test.inlets}
			connect(t, g, src, 0, add(t, g, dst), 0)

			_, err := c.ScheduleMessage(src, 0, mustParse(t, test.message))
			require.NoError(t, err)
			process(c, 1)

			require.Len(t, dst.Received, len(test.expected))
			for i, r := range test.expected {
				assert.Equal(t, r.Inlet, dst.Received[i].Inlet)
				assert.True(t, r.Message.Equal(dst.Received[i].Message), "%s != %s", r.Message, dst.Received[i].Message)
			}
		})
	}
}

func mustParse(t *testing.T, s string) *message.Message {
	t.Helper()
	m, err := message.FromString(0, message.DefaultCapacity, s)
	require.NoError(t, err)
	return m
}

func TestScheduling(t *testing.T) {
	c := newContext(t)
	g := newGraph(t, c)
	src := add(t, g, &mock.Recorder{In: 1, Out: 1})
	dst := &mock.Recorder{In: 1}
	connect(t, g, src, 0, add(t, g, dst), 0)

	late := message.FromFloat(message.Timestamp(2), 1)
	_, err := c.ScheduleMessage(src, 0, late)
	require.NoError(t, err)
	process(c, 1)
	assert.Empty(t, dst.Received)

	// messages from the past are delivered at the start of the block
	_, err = c.ScheduleMessage(src, 0, message.FromFloat(0, 2))
	require.NoError(t, err)
	process(c, 1)
	require.Len(t, dst.Received, 2)
	assert.Equal(t, float32(2), dst.Received[0].Message.Float(0))
	assert.Equal(t, c.BlockStart()-message.Timestamp(c.BlockDuration()), dst.Received[0].Message.Timestamp())
	assert.Equal(t, float32(1), dst.Received[1].Message.Float(0))
	assert.Equal(t, message.Timestamp(2), dst.Received[1].Message.Timestamp())
}

func TestSchedulingBlockBoundary(t *testing.T) {
	c := newContext(t)
	g := newGraph(t, c)
	src := add(t, g, &mock.Recorder{In: 1, Out: 1})
	dst := &mock.Recorder{In: 1}
	connect(t, g, src, 0, add(t, g, dst), 0)

	next := message.Timestamp(c.BlockDuration())
	_, err := c.ScheduleMessage(src, 0, message.FromFloat(next, 1))
	require.NoError(t, err)
	process(c, 1)
	assert.Empty(t, dst.Received)

	process(c, 1)
	require.Len(t, dst.Received, 1)
	assert.Equal(t, next, dst.Received[0].Message.Timestamp())
}

func TestCancel(t *testing.T) {
	c := newContext(t)
	g := newGraph(t, c)
	src := add(t, g, &mock.Recorder{In: 1, Out: 1})
	dst := &mock.Recorder{In: 1}
	connect(t, g, src, 0, add(t, g, dst), 0)

	m := message.FromFloat(1, 5)
	scheduled, err := c.ScheduleMessage(src, 0, m)
	require.NoError(t, err)
	assert.True(t, scheduled.Equal(m))
	_, err = c.ScheduleMessage(src, 0, message.FromFloat(1, 6))
	require.NoError(t, err)

	c.CancelMessage(src, 0, scheduled)
	c.CancelMessage(src, 0, message.FromFloat(1, 100))
	process(c, 1)

	require.Len(t, dst.Received, 1)
	assert.Equal(t, float32(6), dst.Received[0].Message.Float(0))
}

func TestSystemMessages(t *testing.T) {
	var e events
	c := newContext(t, zen.WithCallback(e.callback))

	c.SendToName("pd", mustParse(t, "dsp 1"))
	c.SendToName("pd", mustParse(t, "dsp 0"))
	c.SendToName("pd", mustParse(t, "obj 10 10 osc~"))
	c.SendToName("pd", mustParse(t, "quit"))

	var dsp []bool
	for _, ev := range e {
		if ev.Kind == zen.SwitchDSP {
			dsp = append(dsp, ev.DSP)
		}
	}
	assert.Equal(t, []bool{true, false}, dsp)
	errs := e.texts(zen.PrintErr)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "not supported")
	assert.Equal(t, "Unrecognised system command: quit", errs[1])
}

func TestSendToName(t *testing.T) {
	var e events
	c := newContext(t, zen.WithCallback(e.callback))
	g := newGraph(t, c)
	r := &receiver{name: "freq"}
	add(t, g, r)
	require.NoError(t, c.RegisterExternalReceiver("freq"))

	c.SendToName("freq", message.FromFloat(0, 440))
	c.SendToName("unknown", message.FromFloat(0, 1))
	_, err := c.ScheduleExternalString("freq", 0, "220")
	require.NoError(t, err)
	_, err = c.ScheduleExternalFormat("freq", 0, "fsb", 1, "hz")
	require.NoError(t, err)
	process(c, 1)

	require.Len(t, r.received, 3)
	assert.Equal(t, "440", r.received[0].String())
	assert.Equal(t, "220", r.received[1].String())
	assert.Equal(t, "1 hz bang", r.received[2].String())

	forwarded := func() []string {
		var result []string
		for _, ev := range e {
			if ev.Kind == zen.ReceiverMessage {
				assert.Equal(t, "freq", ev.Receiver)
				result = append(result, ev.Message.String())
			}
		}
		return result
	}
	assert.Equal(t, []string{"440", "220", "1 hz bang"}, forwarded())

	c.UnregisterExternalReceiver("freq")
	c.SendToName("freq", message.FromFloat(0, 1))
	assert.Len(t, r.received, 4)
	assert.Len(t, forwarded(), 3)

	_, err = c.ScheduleExternalFormat("freq", 0, "ff", 1)
	assert.ErrorIs(t, err, zerrors.ErrIndexOutOfBounds)
	_, err = c.ScheduleExternalFormat("freq", 0, "x")
	assert.ErrorIs(t, err, zerrors.ErrParse)
}

// receiver registers under a name while attached.
type receiver struct {
	name     string
	received []*message.Message
}

func (r *receiver) Label() string { return "r" }
func (r *receiver) Inlets() int   { return 1 }
func (r *receiver) Outlets() int  { return 0 }

func (r *receiver) ProcessMessage(_ *zen.Env, _ int, m *message.Message) {
	r.received = append(r.received, m.Clone())
}

func (r *receiver) Attach(env *zen.Env) error {
	return env.AddReceiver(r.name)
}

func (r *receiver) Detach(env *zen.Env) {
	env.RemoveReceiver(r.name)
}

func TestValues(t *testing.T) {
	c := newContext(t)
	assert.Equal(t, float32(0), c.ValueForName("gain"))
	c.SetValueForName("gain", 0.5)
	assert.Equal(t, float32(0.5), c.ValueForName("gain"))
}

func TestNewObject(t *testing.T) {
	var e events
	r := zen.NewRegistry()
	r.MustRegister("float", func(init *message.Message) (zen.Object, error) {
		return &mock.Recorder{Name: "float " + init.String(), In: 2, Out: 1}, nil
	})
	c := newContext(t, zen.WithRegistry(r), zen.WithCallback(e.callback))

	o, err := c.NewObject("3.5", nil)
	require.NoError(t, err)
	assert.Equal(t, "float 3.5", o.Label())

	o, err = c.NewObject("inlet~", nil)
	require.NoError(t, err)
	assert.Equal(t, "inlet~", o.Label())

	_, err = c.NewObject("nope~", nil)
	assert.ErrorIs(t, err, zerrors.ErrUnknownObject)
	assert.Equal(t, []string{"Unknown object or abstraction 'nope~'."}, e.texts(zen.PrintErr))
}

// passthrough copies the first input channel to the first output channel.
type passthrough struct {
	now []message.Timestamp
}

func (*passthrough) Label() string { return "passthrough~" }
func (*passthrough) Inlets() int   { return 0 }
func (*passthrough) Outlets() int  { return 0 }

func (p *passthrough) ProcessMessage(env *zen.Env, _ int, _ *message.Message) {
	p.now = append(p.now, env.Now())
}

func (*passthrough) ProcessDSP(env *zen.Env, _ *zen.Block, from, to int) {
	copy(env.Output(1)[from:to], env.Input(0)[from:to])
}

func TestProcessIO(t *testing.T) {
	c := newContext(t)
	g := newGraph(t, c)
	add(t, g, &passthrough{})

	in := make([]float32, 2*blockSize)
	for i := 0; i < blockSize; i++ {
		in[i] = 0.25
	}
	out := make([]float32, 2*blockSize)
	for i := range out {
		out[i] = 1
	}
	c.Process(in, out)

	for i := 0; i < blockSize; i++ {
		assert.Equal(t, float32(0), out[i])
		assert.Equal(t, float32(0.25), out[blockSize+i])
	}
	assert.InDelta(t, c.BlockDuration(), float64(c.BlockStart()), 1e-9)
}
