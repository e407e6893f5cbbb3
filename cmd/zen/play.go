package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/dudk/zen/portaudio"
	"github.com/dudk/zen/run"
)

type playCommand struct{}

func (*playCommand) Name() string {
	return "play"
}

func (*playCommand) Help() string {
	return "Play a patch on the default audio device until interrupted"
}

func (*playCommand) Run(cfg Config, stdout io.Writer) error {
	if cfg.Patch == "" {
		return errors.New("patch is required")
	}
	source, err := openSource(&cfg)
	if err != nil {
		return err
	}
	if s, ok := source.(*run.Silence); ok {
		s.Frames = 0
	}
	c, err := load(cfg)
	if err != nil {
		return multierr.Append(err, closeSource(source))
	}
	sink, err := portaudio.NewSink(c.SampleRate(), c.NumOutputChannels(), c.BlockSize())
	if err != nil {
		return multierr.Append(err, closeSource(source))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if _, err := fmt.Fprintf(stdout, "Playing %s, press Ctrl+C to stop\n", cfg.Patch); err != nil {
		return err
	}
	return run.Wait(run.Run(ctx, c, source, sink))
}
