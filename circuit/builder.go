package circuit

import (
	"slices"

	"github.com/pkg/errors"
)

// Condition resolves an `if(reg[index]==value)` guard. index < 0 means the
// register was written without an index.
func (g *Graph) Condition(reg string, index, value int) (*Condition, error) {
	size := g.RegisterSize(reg)
	if size == 0 {
		return nil, errors.Errorf("unknown classical register %q", reg)
	}
	if index < 0 && size > 1 {
		return &Condition{Register: reg, Value: value, Kind: MultiBit}, nil
	}
	if index < 0 {
		index = 0
	}
	if index >= size {
		return nil, errors.Errorf("classical bit %s out of range", BitName(reg, index))
	}
	return &Condition{Register: BitName(reg, index), Value: value, Kind: SingleBit}, nil
}

// slotFor returns the first timeslice after every qubit's last operation,
// raised past the last measurement when the operation is conditioned.
func (g *Graph) slotFor(qubits []string, cond *Condition) int {
	t := 0
	for _, q := range qubits {
		t = max(t, g.qubitHigh[q])
	}
	t++
	if cond != nil {
		t = max(t, g.MeasuredHighWater+1)
	}
	return t
}

func (g *Graph) checkQubits(qubits ...string) error {
	for _, q := range qubits {
		if !g.HasQubit(q) {
			return errors.Errorf("unknown qubit %q", q)
		}
	}
	for i := range qubits {
		if slices.Contains(qubits[i+1:], qubits[i]) {
			return errors.Errorf("qubit %q used twice in one operation", qubits[i])
		}
	}
	return nil
}

// others returns the participants of an operation except index i.
func others(qubits []string, i int) []string {
	out := make([]string, 0, len(qubits)-1)
	out = append(out, qubits[:i]...)
	return append(out, qubits[i+1:]...)
}

// SingleGate appends a single-qubit gate.
func (g *Graph) SingleGate(gate, qubit string, params []float64, cond *Condition) error {
	if err := g.checkQubits(qubit); err != nil {
		return err
	}
	t := g.slotFor([]string{qubit}, cond)
	g.Place(qubit, &Node{
		Gate:         gate,
		Params:       slices.Clone(params),
		HasParameter: len(params) > 0,
		Target:       true,
		Timeslice:    t,
		Cond:         cond,
	})
	return nil
}

// ControlledGate appends a gate with one or more control qubits. Every
// participant gets a node at the same timeslice; only the target node is
// marked Target and its Partners list the controls in order.
func (g *Graph) ControlledGate(gate string, controls []string, target string, params []float64, cond *Condition) error {
	if len(controls) == 0 {
		return errors.Errorf("%s: no control qubits", gate)
	}
	qubits := append([]string{target}, controls...)
	if err := g.checkQubits(qubits...); err != nil {
		return err
	}
	t := g.slotFor(qubits, cond)
	for i, q := range qubits {
		g.Place(q, &Node{
			Gate:         gate,
			Controlled:   true,
			Partners:     others(qubits, i),
			Params:       slices.Clone(params),
			HasParameter: len(params) > 0,
			Target:       i == 0,
			Timeslice:    t,
			Cond:         cloneCond(cond),
		})
	}
	return nil
}

// Measure appends measurements of qubits[i] into bits[i], all in one timeslice.
func (g *Graph) Measure(qubits, bits []string, cond *Condition) error {
	if len(qubits) != len(bits) {
		return errors.Errorf("measure: %d qubits into %d bits", len(qubits), len(bits))
	}
	if err := g.checkQubits(qubits...); err != nil {
		return err
	}
	for _, b := range bits {
		if !g.HasCreg(b) {
			return errors.Errorf("unknown classical bit %q", b)
		}
	}
	t := g.slotFor(qubits, cond)
	for i, q := range qubits {
		g.Place(q, &Node{
			Gate:        "M",
			Cregs:       []string{bits[i]},
			Target:      true,
			Timeslice:   t,
			Measurement: true,
			Cond:        cloneCond(cond),
		})
	}
	return nil
}

// Reset appends a reset of every listed qubit in one timeslice.
func (g *Graph) Reset(qubits []string, cond *Condition) error {
	if err := g.checkQubits(qubits...); err != nil {
		return err
	}
	t := g.slotFor(qubits, cond)
	for _, q := range qubits {
		g.Place(q, &Node{
			Gate:      "reset",
			Target:    true,
			Timeslice: t,
			Reset:     true,
			Cond:      cloneCond(cond),
		})
	}
	return nil
}

// Barrier aligns the listed qubits on a common timeslice.
func (g *Graph) Barrier(qubits []string) error {
	if err := g.checkQubits(qubits...); err != nil {
		return err
	}
	t := g.slotFor(qubits, nil)
	for _, q := range qubits {
		g.Place(q, &Node{
			Gate:      "barrier",
			Target:    true,
			Timeslice: t,
			Barrier:   true,
		})
	}
	return nil
}

// Opaque appends an opaque operation such as mixamp or mixphase. Each
// participant gets its own co-located node.
func (g *Graph) Opaque(name string, qubits []string, params []float64, cond *Condition) error {
	if len(qubits) == 0 {
		return errors.Errorf("%s: no qubits", name)
	}
	if err := g.checkQubits(qubits...); err != nil {
		return err
	}
	t := g.slotFor(qubits, cond)
	for i, q := range qubits {
		g.Place(q, &Node{
			Gate:         name,
			Partners:     others(qubits, i),
			Params:       slices.Clone(params),
			HasParameter: len(params) > 0,
			Target:       true,
			Timeslice:    t,
			Cond:         cloneCond(cond),
		})
	}
	return nil
}

func cloneCond(c *Condition) *Condition {
	if c == nil {
		return nil
	}
	cpy := *c
	return &cpy
}
