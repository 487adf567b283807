package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"qsofinstr/circuit"
	"qsofinstr/encode"
	"qsofinstr/internal/config"
	"qsofinstr/qasm"
	"qsofinstr/schedule"
)

// Source selects the circuit file and how to read it.
type Source struct {
	File string `arg:"" help:"Circuit file (.qasm, or .json with --json)" type:"existingfile"`
	JSON bool   `name:"json" help:"Read a JSON graph written by dump"`
}

func (s Source) load() (*circuit.Graph, error) {
	if !s.JSON && filepath.Ext(s.File) != ".json" {
		return qasm.ParseFile(s.File)
	}
	f, err := os.Open(s.File)
	if err != nil {
		return nil, errors.Wrap(err, "open circuit")
	}
	defer f.Close()
	return circuit.Load(f)
}

// ScheduleFlags override the schedule section of the configuration.
type ScheduleFlags struct {
	Mode       int  `help:"Scheduling mode: 1 packed, 2 isolated (default from config)"`
	NoSchedule bool `name:"no-schedule" help:"Encode the graph in the timeslices the front end assigned"`
}

func (f ScheduleFlags) resolve(cfg *config.Config) schedule.Config {
	sc := cfg.Schedule.Resolve()
	if f.Mode != 0 {
		sc.Mode = schedule.Mode(f.Mode)
	}
	if f.NoSchedule {
		sc.Enabled = false
	}
	return sc
}

// scheduled runs the scheduler after validating the requested mode.
func scheduled(e *env, g *circuit.Graph, sc schedule.Config) (*circuit.Graph, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return schedule.Schedule(g, sc, schedule.WithLogger(e.log)), nil
}

// CompileCmd runs the whole pipeline and writes the program.
type CompileCmd struct {
	Source
	ScheduleFlags

	Format   string `help:"Output format: txt or bin (default from config)"`
	Out      string `short:"o" help:"Output path (default: input name with the format extension)" type:"path"`
	Manifest bool   `help:"Write a YAML manifest next to the program"`
}

// Manifest records how a program was built.
type Manifest struct {
	Build      string    `yaml:"build"`
	Created    time.Time `yaml:"created"`
	Circuit    string    `yaml:"circuit"`
	Source     string    `yaml:"source"`
	Program    string    `yaml:"program"`
	Format     string    `yaml:"format"`
	Scheduled  bool      `yaml:"scheduled"`
	Mode       int       `yaml:"mode,omitempty"`
	Qubits     int       `yaml:"qubits"`
	Timeslices int       `yaml:"timeslices"`
	Words      int       `yaml:"words"`
	Blake3     string    `yaml:"blake3"`
}

func (c *CompileCmd) Run(e *env) error {
	format := c.Format
	if format == "" {
		format = e.cfg.Output.Format
	}
	if err := (config.OutputConfig{Format: format}).Validate(); err != nil {
		return err
	}
	sc := c.resolve(e.cfg)

	g, err := c.load()
	if err != nil {
		return err
	}
	g, err = scheduled(e, g, sc)
	if err != nil {
		return err
	}
	prog, err := encode.Encode(g, encode.WithLogger(e.log))
	if err != nil {
		return errors.Wrap(err, "encode")
	}

	out := c.outputPath(e.cfg, format)
	if err := writeProgram(out, prog, format); err != nil {
		return err
	}
	e.log.Info("compiled circuit",
		zap.String("circuit", g.Name),
		zap.String("program", out),
		zap.Int("timeslices", len(prog.Slices)),
		zap.Int("words", len(prog.Words())))

	digest := prog.Digest()
	fmt.Fprintf(e.out, "%s: %d words in %d timeslices, blake3 %s\n",
		out, len(prog.Words()), len(prog.Slices), hex.EncodeToString(digest[:]))

	if !c.Manifest && !e.cfg.Output.Manifest {
		return nil
	}
	m := Manifest{
		Build:      uuid.New().String(),
		Created:    time.Now().UTC(),
		Circuit:    g.Name,
		Source:     c.File,
		Program:    out,
		Format:     format,
		Scheduled:  sc.Enabled,
		Qubits:     prog.Qubits,
		Timeslices: len(prog.Slices),
		Words:      len(prog.Words()),
		Blake3:     hex.EncodeToString(digest[:]),
	}
	if sc.Enabled {
		m.Mode = int(sc.Mode)
	}
	return writeManifest(out+".manifest.yml", &m)
}

func (c *CompileCmd) outputPath(cfg *config.Config, format string) string {
	if c.Out != "" {
		return c.Out
	}
	base := strings.TrimSuffix(filepath.Base(c.File), filepath.Ext(c.File)) + "." + format
	dir := cfg.Output.Dir
	if dir == "" {
		dir = filepath.Dir(c.File)
	}
	return filepath.Join(dir, base)
}

func writeProgram(path string, prog *encode.Program, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create program")
	}
	if format == config.FormatBinary {
		err = prog.WriteBinary(f)
	} else {
		err = prog.WriteText(f)
	}
	if err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close program")
}

func writeManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write manifest")
}
