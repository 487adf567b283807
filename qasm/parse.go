// Package qasm builds circuit graphs from OpenQASM 2.0 source with the QSoF
// extensions: rtheta and crtheta rotations, multi-controlled gates written
// with repeated "c" prefixes, and the mixamp/mixphase decoherence channels.
package qasm

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"qsofinstr/circuit"
)

// ParseFile parses a QASM file. The circuit is named after the file.
func ParseFile(path string) (*circuit.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read qasm")
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return parse(path, name, string(src))
}

// Parse parses QASM source into a graph called name.
func Parse(name, src string) (*circuit.Graph, error) {
	return parse(name, name, src)
}

func parse(filename, name, src string) (*circuit.Graph, error) {
	prog, err := qasmParser.ParseString(filename, src)
	if err != nil {
		return nil, errors.Wrap(err, "parse qasm")
	}
	b := &builder{
		g:      circuit.New(name),
		gates:  make(map[string]*gateDecl),
		opaque: make(map[string]*opaqueDecl),
	}
	for _, st := range prog.Statements {
		if err := b.statement(st); err != nil {
			return nil, errors.Wrapf(err, "%s", st.Pos)
		}
	}
	return b.g, nil
}

// builder replays statements onto a graph.
type builder struct {
	g      *circuit.Graph
	gates  map[string]*gateDecl
	opaque map[string]*opaqueDecl
}

func (b *builder) statement(st *statement) error {
	switch {
	case st.Include != nil:
		// qelib1.inc gates are built in
		return nil
	case st.Reg != nil:
		return b.register(st.Reg)
	case st.Gate != nil:
		return b.declareGate(st.Gate)
	case st.Opaque != nil:
		if !circuit.IsDecoherence(st.Opaque.Name) {
			return errors.Errorf("opaque gate %q has no instruction encoding", st.Opaque.Name)
		}
		b.opaque[st.Opaque.Name] = st.Opaque
		return nil
	case st.If != nil:
		idx := -1
		if st.If.Index != nil {
			idx = *st.If.Index
		}
		cond, err := b.g.Condition(st.If.Reg, idx, st.If.Value)
		if err != nil {
			return err
		}
		switch {
		case st.If.Op.Barrier != nil:
			return errors.New("barrier cannot be conditioned")
		case st.If.Op.Measure != nil:
			return errors.New("measure cannot be conditioned")
		case st.If.Op.Reset != nil:
			return errors.New("reset cannot be conditioned")
		}
		return b.qop(st.If.Op, cond)
	default:
		return b.qop(st.Op, nil)
	}
}

func (b *builder) register(r *regDecl) error {
	if r.Size <= 0 {
		return errors.Errorf("register %s must have a positive size", r.Name)
	}
	if b.g.QuantumRegisterSize(r.Name) > 0 || b.g.RegisterSize(r.Name) > 0 {
		return errors.Errorf("register %s already declared", r.Name)
	}
	if r.Kind == "qreg" {
		b.g.AddQubits(r.Name, r.Size)
	} else {
		b.g.AddCregs(r.Name, r.Size)
	}
	return nil
}

func (b *builder) declareGate(d *gateDecl) error {
	if _, ok := b.gates[d.Name]; ok {
		return errors.Errorf("gate %s already declared", d.Name)
	}
	for _, c := range d.Body {
		if !b.known(c.Name) {
			return errors.Errorf("gate %s: %s: unknown gate %q", d.Name, c.Pos, c.Name)
		}
		for _, a := range c.Args {
			if a.Index != nil {
				return errors.Errorf("gate %s: %s: arguments of a gate body cannot be indexed", d.Name, c.Pos)
			}
			if !slices.Contains(d.Args, a.Reg) {
				return errors.Errorf("gate %s: %s: unknown argument %q", d.Name, c.Pos, a.Reg)
			}
		}
	}
	b.gates[d.Name] = d
	return nil
}

// known reports whether name can be called at this point of the program.
func (b *builder) known(name string) bool {
	name = builtinName(name)
	if _, ok := circuit.SingleGates[name]; ok {
		return true
	}
	if _, _, ok := circuit.SplitControls(name); ok {
		return true
	}
	_, gate := b.gates[name]
	_, opaque := b.opaque[name]
	return gate || opaque
}

// builtinName maps the upper-case OpenQASM primitives to the gate table.
func builtinName(name string) string {
	switch name {
	case "U":
		return "u"
	case "CX":
		return "cx"
	}
	return name
}

func (b *builder) qop(op *qop, cond *circuit.Condition) error {
	switch {
	case op.Measure != nil:
		qubits, err := b.qubits(op.Measure.From)
		if err != nil {
			return err
		}
		bits, err := b.bits(op.Measure.To)
		if err != nil {
			return err
		}
		if len(qubits) != len(bits) {
			return errors.Errorf("measure: %d qubits into %d bits", len(qubits), len(bits))
		}
		return b.g.Measure(qubits, bits, cond)
	case op.Reset != nil:
		qubits, err := b.qubits(op.Reset)
		if err != nil {
			return err
		}
		return b.g.Reset(qubits, cond)
	case op.Barrier != nil:
		var all []string
		for _, a := range op.Barrier {
			qubits, err := b.qubits(a)
			if err != nil {
				return err
			}
			all = append(all, qubits...)
		}
		return b.g.Barrier(all)
	default:
		return b.call(op.Call, cond)
	}
}

// call applies a top-level gate call, broadcasting register arguments.
func (b *builder) call(c *call, cond *circuit.Condition) error {
	params, err := evalAll(c.Params, nil)
	if err != nil {
		return errors.Wrap(err, c.Name)
	}
	args := make([][]string, len(c.Args))
	width := 1
	for i, a := range c.Args {
		if args[i], err = b.qubits(a); err != nil {
			return err
		}
		if a.Index == nil {
			if width > 1 && len(args[i]) != width {
				return errors.Errorf("%s: registers of different sizes", c.Name)
			}
			width = len(args[i])
		}
	}
	for k := range width {
		qubits := make([]string, len(args))
		for i, a := range args {
			if len(a) == 1 {
				qubits[i] = a[0]
			} else {
				qubits[i] = a[k]
			}
		}
		if err := b.apply(c.Name, params, qubits, cond); err != nil {
			return err
		}
	}
	return nil
}

// apply places one gate instance on resolved qubits.
func (b *builder) apply(name string, params []float64, qubits []string, cond *circuit.Condition) error {
	name = builtinName(name)

	if _, ok := circuit.SingleGates[name]; ok {
		if err := checkCall(name, name, params, qubits, 1); err != nil {
			return err
		}
		return b.g.SingleGate(name, qubits[0], params, cond)
	}
	if base, n, ok := circuit.SplitControls(name); ok {
		if err := checkCall(name, base, params, qubits, n+1); err != nil {
			return err
		}
		return b.g.ControlledGate(base, qubits[:n], qubits[n], params, cond)
	}
	if d, ok := b.opaque[name]; ok {
		if err := checkCall(name, name, params, qubits, len(d.Args)); err != nil {
			return err
		}
		if cond != nil {
			return errors.Errorf("%s cannot be conditioned", name)
		}
		return b.g.Opaque(name, qubits, params, cond)
	}
	if d, ok := b.gates[name]; ok {
		return b.expand(d, params, qubits, cond)
	}
	return errors.Errorf("unknown gate %q", name)
}

func checkCall(name, table string, params []float64, qubits []string, arity int) error {
	if len(qubits) != arity {
		return errors.Errorf("%s takes %d qubits, got %d", name, arity, len(qubits))
	}
	if want := circuit.ParamArity(table); len(params) != want {
		return errors.Errorf("%s takes %d parameters, got %d", name, want, len(params))
	}
	return nil
}

// expand inlines a user-defined gate.
func (b *builder) expand(d *gateDecl, params []float64, qubits []string, cond *circuit.Condition) error {
	if len(params) != len(d.Params) {
		return errors.Errorf("%s takes %d parameters, got %d", d.Name, len(d.Params), len(params))
	}
	if len(qubits) != len(d.Args) {
		return errors.Errorf("%s takes %d qubits, got %d", d.Name, len(d.Args), len(qubits))
	}
	vars := make(env, len(params))
	for i, p := range d.Params {
		vars[p] = params[i]
	}
	bind := make(map[string]string, len(qubits))
	for i, a := range d.Args {
		bind[a] = qubits[i]
	}
	for _, c := range d.Body {
		vals, err := evalAll(c.Params, vars)
		if err != nil {
			return errors.Wrapf(err, "%s: %s", d.Name, c.Pos)
		}
		inner := make([]string, len(c.Args))
		for i, a := range c.Args {
			inner[i] = bind[a.Reg]
		}
		if err := b.apply(c.Name, vals, inner, cond); err != nil {
			return errors.Wrapf(err, "%s: %s", d.Name, c.Pos)
		}
	}
	return nil
}

// qubits resolves an argument to qubit names, expanding whole registers.
func (b *builder) qubits(a *arg) ([]string, error) {
	size := b.g.QuantumRegisterSize(a.Reg)
	if size == 0 {
		return nil, errors.Errorf("unknown quantum register %q", a.Reg)
	}
	return expandArg(a, size)
}

// bits resolves an argument to classical bit names.
func (b *builder) bits(a *arg) ([]string, error) {
	size := b.g.RegisterSize(a.Reg)
	if size == 0 {
		return nil, errors.Errorf("unknown classical register %q", a.Reg)
	}
	return expandArg(a, size)
}

func expandArg(a *arg, size int) ([]string, error) {
	if a.Index != nil {
		if *a.Index >= size {
			return nil, errors.Errorf("%s out of range", circuit.BitName(a.Reg, *a.Index))
		}
		return []string{circuit.BitName(a.Reg, *a.Index)}, nil
	}
	out := make([]string, size)
	for i := range size {
		out[i] = circuit.BitName(a.Reg, i)
	}
	return out, nil
}
