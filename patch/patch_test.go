package patch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/zen"
	zerrors "github.com/dudk/zen/errors"
	"github.com/dudk/zen/message"
	"github.com/dudk/zen/objects"
	"github.com/dudk/zen/patch"
)

const blockSize = 64

type host struct {
	std, err []string
}

func (h *host) callback(e zen.Event) {
	switch e.Kind {
	case zen.PrintStd:
		h.std = append(h.std, e.Text)
	case zen.PrintErr:
		h.err = append(h.err, e.Text)
	}
}

func newContext(t *testing.T) (*zen.Context, *host) {
	t.Helper()
	h := &host{}
	c, err := zen.New(zen.WithRegistry(objects.NewRegistry()), zen.WithCallback(h.callback))
	require.NoError(t, err)
	return c, h
}

func process(c *zen.Context, blocks int) []float32 {
	in := make([]float32, c.NumInputChannels()*blockSize)
	out := make([]float32, c.NumOutputChannels()*blockSize)
	for i := 0; i < blocks; i++ {
		c.Process(in, out)
	}
	return out
}

const sine = `#N canvas 0 0 450 300 10;
#X obj 30 30 sig~ 0.5;
#X obj 30 60 *~ \$1;
#X obj 30 90 dac~ 1;
#X connect 0 0 1 0;
#X connect 1 0 2 0;
`

func TestParse(t *testing.T) {
	c, _ := newContext(t)
	g, err := patch.ParseString(c, sine, message.FromFloat(0, 2))
	require.NoError(t, err)
	assert.Len(t, g.Objects(), 3)
	assert.Equal(t, "1000 2", g.Arguments().String())

	require.NoError(t, c.AttachGraph(g))
	out := process(c, 1)
	assert.Equal(t, float32(1), out[0])
	assert.Equal(t, float32(0), out[blockSize])
}

func TestParseMessages(t *testing.T) {
	c, h := newContext(t)
	g, err := patch.ParseString(c, `#N canvas 0 0 450 300 10;
#X obj 10 10 loadbang;
#X msg 10 40 hello \, world \; out 7;
#X obj 10 70 print;
#X obj 100 10 r out;
#X obj 100 40 print remote;
#X text 200 10 a comment \, with a comma;
#X connect 0 0 1 0;
#X connect 1 0 2 0;
#X connect 3 0 4 0;
`, nil)
	require.NoError(t, err)
	require.NoError(t, c.AttachGraph(g))

	process(c, 1)
	assert.Equal(t, []string{"print: hello", "print: world", "remote: 7"}, h.std)
	assert.Empty(t, h.err)
}

func TestParseContinuation(t *testing.T) {
	c, h := newContext(t)
	g, err := patch.ParseString(c, `#N canvas 0 0 450 300 10;
#X obj 10 10 loadbang;
#X msg 10 40 1 2
3;
#X obj 10 70 print, f 20;
#X connect 0 0 1 0;
#X connect 1 0 2 0;
`, nil)
	require.NoError(t, err)
	require.NoError(t, c.AttachGraph(g))

	process(c, 1)
	assert.Equal(t, []string{"print: 1 2 3"}, h.std)
}

func TestParseWrappedWidth(t *testing.T) {
	c, h := newContext(t)
	g, err := patch.ParseString(c, `#N canvas 0 0 450 300 10;
#X obj 10 10 loadbang;
#X msg 10 40 4 5 6
, f 40;
#X obj 10 70 print wide
, f 20;
#X connect 0 0 1 0;
#X connect 1 0 2 0;
`, nil)
	require.NoError(t, err)
	require.NoError(t, c.AttachGraph(g))

	process(c, 1)
	assert.Equal(t, []string{"wide: 4 5 6"}, h.std)
	assert.Empty(t, h.err)
}

func TestParseSubpatch(t *testing.T) {
	c, _ := newContext(t)
	g, err := patch.ParseString(c, `#N canvas 0 0 450 300 10;
#X obj 10 10 sig~ 3;
#N canvas 0 0 450 300 sub 0;
#X obj 10 10 inlet~;
#X obj 10 40 *~ 2;
#X obj 10 70 outlet~;
#X connect 0 0 1 0;
#X connect 1 0 2 0;
#X restore 10 40 pd sub;
#X obj 10 70 dac~ 1 2;
#X connect 0 0 1 0;
#X connect 1 0 2 0;
#X connect 1 0 2 1;
`, nil)
	require.NoError(t, err)
	require.Len(t, g.Subgraphs(), 1)
	sub := g.Subgraphs()[0]
	assert.Len(t, sub.Inlets(), 1)
	assert.Len(t, sub.Outlets(), 1)
	assert.Equal(t, g.DollarZero(), sub.DollarZero())

	require.NoError(t, c.AttachGraph(g))
	out := process(c, 1)
	assert.Equal(t, float32(6), out[0])
	assert.Equal(t, float32(6), out[blockSize])
}

func TestParseDelayFeedback(t *testing.T) {
	c, _ := newContext(t)
	g, err := patch.ParseString(c, `#N canvas 0 0 450 300 10;
#X obj 10 10 sig~ 1;
#X obj 10 100 delwrite~ fb 10;
#X obj 100 10 delread~ fb 0;
#X obj 100 40 *~ 0.5;
#X obj 100 100 dac~ 1;
#X connect 0 0 1 0;
#X connect 2 0 3 0;
#X connect 3 0 1 0;
#X connect 2 0 4 0;
`, nil)
	require.NoError(t, err)
	require.NoError(t, c.AttachGraph(g))

	// the reader runs before the writer, so each pass is one block late
	for _, expected := range []float32{0, 1, 1.5, 1.75} {
		out := process(c, 1)
		assert.Equal(t, expected, out[0])
		assert.Equal(t, expected, out[blockSize-1])
	}
}

func TestParseUnknownObject(t *testing.T) {
	c, h := newContext(t)
	g, err := patch.ParseString(c, `#N canvas 0 0 450 300 10;
#X obj 10 10 sig~ 1;
#X obj 10 40 nosuchobject~;
#X obj 10 70 dac~ 1;
#X floatatom 10 100 5 0 0 0 - - -;
#X symbolatom 10 130 10 0 0 0 - - -;
#X connect 0 0 1 0;
#X connect 1 0 2 0;
#X connect 0 0 2 0;
`, nil)
	require.NoError(t, err)
	assert.Len(t, g.Objects(), 4)
	assert.Contains(t, h.err, "Unknown object or abstraction 'nosuchobject~'.")
	assert.Len(t, h.err, 3)

	require.NoError(t, c.AttachGraph(g))
	out := process(c, 1)
	assert.Equal(t, float32(1), out[0])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		description string
		patch       string
		expected    error
	}{
		{
			description: "no canvas",
			patch:       "",
			expected:    zerrors.ErrParse,
		},
		{
			description: "object before canvas",
			patch:       "#X obj 10 10 f;\n",
			expected:    zerrors.ErrParse,
		},
		{
			description: "bad position",
			patch:       "#N canvas 0 0 450 300 10;\n#X obj a 10 f;\n",
			expected:    zerrors.ErrParse,
		},
		{
			description: "connection out of range",
			patch:       "#N canvas 0 0 450 300 10;\n#X obj 10 10 f;\n#X connect 0 0 1 0;\n",
			expected:    zerrors.ErrIndexOutOfBounds,
		},
		{
			description: "unbalanced restore",
			patch:       "#N canvas 0 0 450 300 10;\n#X restore 0 0 pd sub;\n",
			expected:    zerrors.ErrParse,
		},
	}
	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			c, _ := newContext(t)
			_, err := patch.ParseString(c, test.patch, nil)
			assert.ErrorIs(t, err, test.expected)
			assert.Empty(t, c.Graphs())
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sine.pd")
	require.NoError(t, os.WriteFile(path, []byte(sine), 0o600))

	c, _ := newContext(t)
	g, err := patch.Load(c, path, nil)
	require.NoError(t, err)
	assert.Len(t, g.Objects(), 3)

	_, err = patch.Load(c, filepath.Join(t.TempDir(), "missing.pd"), nil)
	assert.Error(t, err)
}
