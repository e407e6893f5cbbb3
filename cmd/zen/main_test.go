package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/zen/wav"
)

const sine = `#N canvas 0 0 450 300 10;
#X obj 30 30 osc~ 440;
#X obj 30 60 *~ 0.5;
#X obj 30 90 dac~;
#X connect 0 0 1 0;
#X connect 1 0 2 0;
#X connect 1 0 2 1;
`

func TestCommands(t *testing.T) {
	var names []string
	for _, cmd := range commands {
		names = append(names, cmd.Name())
		assert.NotEmpty(t, cmd.Help())
	}
	assert.Equal(t, []string{"render", "play", "objects"}, names)
	assert.Nil(t, lookup("process"))

	var usage bytes.Buffer
	printUsage(&usage)
	assert.Contains(t, usage.String(), "render")
}

func TestParseArgs(t *testing.T) {
	name, args := parseArgs([]string{"zen", "render", "-patch", "a.pd"})
	assert.Equal(t, "render", name)
	assert.Equal(t, []string{"-patch", "a.pd"}, args)

	name, args = parseArgs([]string{"zen"})
	assert.Empty(t, name)
	assert.Nil(t, args)
}

func TestObjects(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, lookup("objects").Run(defaultConfig(), &out))
	assert.Contains(t, out.String(), "osc~\n")
	assert.Contains(t, out.String(), "metro\n")
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.Patch = filepath.Join(dir, "sine.pd")
	cfg.Out = filepath.Join(dir, "sine.wav")
	cfg.Seconds = 0.1
	require.NoError(t, os.WriteFile(cfg.Patch, []byte(sine), 0o600))

	var out bytes.Buffer
	require.NoError(t, lookup("render").Run(cfg, &out))
	assert.Contains(t, out.String(), "sine.wav")

	source, err := wav.NewSource(cfg.Out)
	require.NoError(t, err)
	defer source.Close()
	assert.Equal(t, 2, source.NumChannels())
	block := make([]float32, 2*64)
	_, err = source.Read(block)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, block[0], 1e-3)
	assert.InDelta(t, 0.5, block[64], 1e-3)
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	patch := filepath.Join(dir, "sine.pd")
	require.NoError(t, os.WriteFile(patch, []byte(sine), 0o600))

	tests := []struct {
		description string
		modify      func(*Config)
	}{
		{description: "no patch", modify: func(c *Config) { c.Out = filepath.Join(dir, "out.wav") }},
		{description: "no out", modify: func(c *Config) { c.Patch = patch }},
		{description: "unsupported format", modify: func(c *Config) {
			c.Patch = patch
			c.Out = filepath.Join(dir, "out.ogg")
		}},
		{description: "missing patch", modify: func(c *Config) {
			c.Patch = filepath.Join(dir, "missing.pd")
			c.Out = filepath.Join(dir, "out.wav")
		}},
		{description: "missing input", modify: func(c *Config) {
			c.Patch = patch
			c.In = filepath.Join(dir, "missing.wav")
			c.Out = filepath.Join(dir, "out.wav")
		}},
	}
	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			cfg := defaultConfig()
			test.modify(&cfg)
			assert.Error(t, lookup("render").Run(cfg, &bytes.Buffer{}))
		})
	}
}
