package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/dudk/zen/config"
)

// Config is read from flags, environment and an optional json file.
type Config struct {
	Engine  config.Config
	Patch   string  `usage:"patch file to load"`
	In      string  `usage:"input wav file, silence if empty"`
	Out     string  `usage:"output file, .wav or .mp3"`
	Seconds float64 `usage:"length of silent input in seconds"`
	BitRate int     `usage:"mp3 bit rate in kbps"`
	Quality int     `usage:"mp3 quality from 0 (best) to 9"`
}

func defaultConfig() Config {
	return Config{
		Engine:  config.Default(),
		Seconds: 10,
		BitRate: 192,
		Quality: 2,
	}
}

type command interface {
	Name() string
	Help() string
	Run(cfg Config, stdout io.Writer) error
}

var (
	successExitCode = 0
	errorExitCode   = 1
	commands        = []command{
		&renderCommand{},
		&playCommand{},
		&objectsCommand{},
	}
)

func main() {
	name, args := parseArgs(os.Args)
	cmd := lookup(name)
	if cmd == nil {
		printUsage(os.Stdout)
		os.Exit(errorExitCode)
	}
	// goconfig parses the flags that follow the command name
	os.Args = append([]string{os.Args[0]}, args...)
	cfg := defaultConfig()
	goconfig.Read(&cfg)
	if err := cmd.Run(cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Command %s failed: %v\n", name, err)
		os.Exit(errorExitCode)
	}
	os.Exit(successExitCode)
}

func lookup(name string) command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "zen runs Pure Data patches")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: zen <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}
