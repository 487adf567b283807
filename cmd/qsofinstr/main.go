// Command qsofinstr compiles OpenQASM circuits into the 64-bit instruction
// stream of the QSoF FPGA controller.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"qsofinstr/internal/config"
)

const version = "0.4.0"

// CLI defines the command-line interface for qsofinstr.
type CLI struct {
	// Global flags
	Config string `name:"config" short:"c" help:"YAML configuration file" type:"path"`
	Debug  bool   `help:"Enable debug logging"`

	Compile CompileCmd `cmd:"" help:"Compile a circuit into instruction words"`
	Draw    DrawCmd    `cmd:"" help:"Draw the timeline of a circuit"`
	Dump    DumpCmd    `cmd:"" help:"Dump the circuit graph as JSON"`
	Decode  DecodeCmd  `cmd:"" help:"Decode a binary instruction stream"`
	Inspect InspectCmd `cmd:"" help:"Browse a compiled circuit one timeslice at a time"`
	Check   CheckCmd   `cmd:"" help:"Check that scheduling preserves the final state"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// env is handed to every command.
type env struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer
}

// newEnv loads the configuration named by the global flags.
func (c *CLI) newEnv(out io.Writer) (*env, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	log, err := cfg.CreateLogger(c.Debug)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, out: out}, nil
}

// options configures the kong parser.
var options = []kong.Option{
	kong.Name("qsofinstr"),
	kong.Description("QSoF instruction generator"),
	kong.UsageOnError(),
	kong.ConfigureHelp(kong.HelpOptions{
		Compact: true,
	}),
}

// run parses args and executes the selected command.
func run(args []string, out io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli, options...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	e, err := cli.newEnv(out)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()
	return ctx.Run(e)
}

func main() {
	var cli CLI
	parser := kong.Must(&cli, options...)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	e, err := cli.newEnv(os.Stdout)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(e)
	_ = e.log.Sync()
	ctx.FatalIfErrorf(err)
}
