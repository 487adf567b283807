package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qsofinstr/circuit"
	"qsofinstr/encode"
	"qsofinstr/sim"
	"qsofinstr/tui"
)

// DrawCmd prints the timeline of a circuit.
type DrawCmd struct {
	Source
	ScheduleFlags
	Scheduled bool `help:"Draw the graph after scheduling"`
}

func (c *DrawCmd) Run(e *env) error {
	g, err := c.load()
	if err != nil {
		return err
	}
	if c.Scheduled {
		if g, err = scheduled(e, g, c.resolve(e.cfg)); err != nil {
			return err
		}
	}
	_, err = io.WriteString(e.out, g.Draw())
	return err
}

// DumpCmd writes the circuit graph as JSON.
type DumpCmd struct {
	Source
	ScheduleFlags
	Scheduled bool   `help:"Dump the graph after scheduling"`
	Out       string `short:"o" help:"Output path (default: stdout)" type:"path"`
}

func (c *DumpCmd) Run(e *env) error {
	g, err := c.load()
	if err != nil {
		return err
	}
	if c.Scheduled {
		if g, err = scheduled(e, g, c.resolve(e.cfg)); err != nil {
			return err
		}
	}
	if c.Out == "" {
		return circuit.Dump(e.out, g)
	}
	f, err := os.Create(c.Out)
	if err != nil {
		return errors.Wrap(err, "create dump")
	}
	if err := circuit.Dump(f, g); err != nil {
		f.Close()
		return err
	}
	e.log.Info("dumped circuit", zap.String("circuit", g.Name), zap.String("path", c.Out))
	return errors.Wrap(f.Close(), "close dump")
}

// DecodeCmd prints the operations of a binary instruction stream.
type DecodeCmd struct {
	File   string `arg:"" help:"Binary program written by compile --format bin" type:"existingfile"`
	Qubits int    `required:"" short:"n" help:"Number of qubits the program was compiled for"`
}

func (c *DecodeCmd) Run(e *env) error {
	f, err := os.Open(c.File)
	if err != nil {
		return errors.Wrap(err, "open program")
	}
	defer f.Close()
	words, err := encode.ReadBinary(f)
	if err != nil {
		return err
	}
	ops, err := encode.Decode(words, c.Qubits)
	if err != nil {
		return errors.Wrap(err, "decode program")
	}
	slice := -1
	for _, op := range ops {
		if op.Slice != slice {
			slice = op.Slice
			fmt.Fprintf(e.out, "slice %d\n", slice)
		}
		fmt.Fprintf(e.out, "  %s\n", op)
	}
	e.log.Info("decoded program", zap.Int("words", len(words)), zap.Int("ops", len(ops)))
	return nil
}

// InspectCmd opens the terminal inspector.
type InspectCmd struct {
	Source
	ScheduleFlags
}

func (c *InspectCmd) Run(e *env) error {
	g, err := c.load()
	if err != nil {
		return err
	}
	if g, err = scheduled(e, g, c.resolve(e.cfg)); err != nil {
		return err
	}
	prog, err := encode.Encode(g, encode.WithLogger(e.log))
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	return tui.Run(g, prog)
}

// CheckCmd simulates a circuit before and after scheduling.
type CheckCmd struct {
	Source
	ScheduleFlags
	Tolerance float64 `default:"1e-9" help:"Largest accepted infidelity"`
}

func (c *CheckCmd) Run(e *env) error {
	g, err := c.load()
	if err != nil {
		return err
	}
	sc := c.resolve(e.cfg)
	sc.Enabled = true
	after, err := scheduled(e, g, sc)
	if err != nil {
		return err
	}

	want, err := sim.Simulate(g)
	if err != nil {
		return errors.Wrap(err, "simulate")
	}
	got, err := sim.Simulate(after)
	if err != nil {
		return errors.Wrap(err, "simulate scheduled")
	}
	fidelity := want.Fidelity(got)
	fmt.Fprintf(e.out, "%s: %d -> %d timeslices (%s), fidelity %.12f\n",
		g.Name, g.MaxTimeslice, after.MaxTimeslice, sc.Mode, fidelity)
	if 1-fidelity > c.Tolerance {
		return errors.Errorf("scheduling changed the final state: fidelity %g", fidelity)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	_, err := fmt.Fprintf(e.out, "qsofinstr version %s\n", version)
	return err
}
