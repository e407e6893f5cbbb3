//go:build portaudio

package portaudio_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dudk/zen"
	"github.com/dudk/zen/objects"
	"github.com/dudk/zen/portaudio"
	"github.com/dudk/zen/run"
)

func TestSink(t *testing.T) {
	c, err := zen.New(zen.WithRegistry(objects.NewRegistry()))
	require.NoError(t, err)
	g, err := c.NewGraph(nil)
	require.NoError(t, err)
	osc, err := g.Create(0, 0, "osc~ 440")
	require.NoError(t, err)
	gain, err := g.Create(0, 30, "*~ 0.1")
	require.NoError(t, err)
	dac, err := g.Create(0, 60, "dac~")
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(osc, 0, gain, 0))
	require.NoError(t, g.AddConnection(gain, 0, dac, 0))
	require.NoError(t, g.AddConnection(gain, 0, dac, 1))
	require.NoError(t, c.AttachGraph(g))

	sink, err := portaudio.NewSink(c.SampleRate(), c.NumOutputChannels(), c.BlockSize())
	require.NoError(t, err)
	source := run.NewSilence(c, int(c.SampleRate()))
	require.NoError(t, run.Wait(run.Run(context.Background(), c, source, sink)))
}
