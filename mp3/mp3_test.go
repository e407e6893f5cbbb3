package mp3_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/zen"
	"github.com/dudk/zen/mp3"
	"github.com/dudk/zen/objects"
	"github.com/dudk/zen/run"
)

func TestSink(t *testing.T) {
	c, err := zen.New(zen.WithRegistry(objects.NewRegistry()))
	require.NoError(t, err)
	g, err := c.NewGraph(nil)
	require.NoError(t, err)
	osc, err := g.Create(0, 0, "osc~ 440")
	require.NoError(t, err)
	dac, err := g.Create(0, 30, "dac~")
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(osc, 0, dac, 0))
	require.NoError(t, g.AddConnection(osc, 0, dac, 1))
	require.NoError(t, c.AttachGraph(g))

	path := filepath.Join(t.TempDir(), "sine.mp3")
	sink, err := mp3.NewSink(path, int(c.SampleRate()), c.NumOutputChannels(), 192, 2)
	require.NoError(t, err)
	// one second
	source := run.NewSilence(c, int(c.SampleRate()))
	require.NoError(t, run.Wait(run.Run(context.Background(), c, source, sink)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
