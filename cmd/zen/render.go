package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"pipelined.dev/signal"

	"github.com/dudk/zen"
	"github.com/dudk/zen/log"
	"github.com/dudk/zen/mp3"
	"github.com/dudk/zen/objects"
	"github.com/dudk/zen/patch"
	"github.com/dudk/zen/run"
	"github.com/dudk/zen/wav"
)

type renderCommand struct{}

func (*renderCommand) Name() string {
	return "render"
}

func (*renderCommand) Help() string {
	return "Render a patch into a wav or mp3 file"
}

func (*renderCommand) Run(cfg Config, stdout io.Writer) error {
	if cfg.Patch == "" || cfg.Out == "" {
		return errors.New("patch and out are required")
	}
	source, err := openSource(&cfg)
	if err != nil {
		return err
	}
	c, err := load(cfg)
	if err != nil {
		return multierr.Append(err, closeSource(source))
	}

	var sink run.Sink
	sampleRate := int(c.SampleRate())
	switch ext := strings.ToLower(filepath.Ext(cfg.Out)); ext {
	case ".wav":
		sink, err = wav.NewSink(cfg.Out, sampleRate, c.NumOutputChannels(), signal.BitDepth16)
	case ".mp3":
		sink, err = mp3.NewSink(cfg.Out, sampleRate, c.NumOutputChannels(), cfg.BitRate, cfg.Quality)
	default:
		err = errors.Errorf("unsupported output format %q", ext)
	}
	if err != nil {
		return multierr.Append(err, closeSource(source))
	}
	if err := run.Wait(run.Run(context.Background(), c, source, sink)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "Rendered %s into %s\n", cfg.Patch, cfg.Out)
	return err
}

// openSource opens the input file or a silence of cfg.Seconds. The engine
// takes its input channels and sample rate from the input file.
func openSource(cfg *Config) (run.Source, error) {
	if cfg.In == "" {
		return &run.Silence{
			Channels: max(cfg.Engine.InputChannels, 1),
			Frames:   int(cfg.Seconds * cfg.Engine.SampleRate),
		}, nil
	}
	s, err := wav.NewSource(cfg.In)
	if err != nil {
		return nil, err
	}
	cfg.Engine.InputChannels = s.NumChannels()
	cfg.Engine.SampleRate = float64(s.SampleRate())
	return s, nil
}

func closeSource(s run.Source) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// load creates an engine with the stock objects and attaches the patch.
func load(cfg Config) (*zen.Context, error) {
	c, err := zen.New(
		zen.WithConfig(cfg.Engine),
		zen.WithLogger(log.GetLogger()),
		zen.WithRegistry(objects.NewRegistry()),
	)
	if err != nil {
		return nil, err
	}
	g, err := patch.Load(c, cfg.Patch, nil)
	if err != nil {
		return nil, err
	}
	if err := c.AttachGraph(g); err != nil {
		return nil, err
	}
	return c, nil
}
