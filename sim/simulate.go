package sim

import (
	"github.com/pkg/errors"

	"qsofinstr/circuit"
)

// Unitary reports why g cannot be simulated as a pure unitary, or nil.
// Measurements, resets, decoherence and conditioned nodes are rejected;
// barriers are ignored.
func Unitary(g *circuit.Graph) error {
	for _, q := range g.Qubits() {
		for t, n := range g.Timeline(q) {
			switch {
			case n.Barrier:
			case n.Measurement, n.Reset:
				return errors.Errorf("%s at timeslice %d: %s is not unitary", q, t, n.Gate)
			case n.Conditioned():
				return errors.Errorf("%s at timeslice %d: conditioned %s", q, t, n.Gate)
			case circuit.IsDecoherence(n.Gate):
				return errors.Errorf("%s at timeslice %d: decoherence %s", q, t, n.Gate)
			}
		}
	}
	return nil
}

// Simulate runs g from |0...0> in timeslice order.
func Simulate(g *circuit.Graph) (*StateVector, error) {
	if err := Unitary(g); err != nil {
		return nil, err
	}
	state := NewStateVector(g.NumQubits())
	for t := 1; t <= g.MaxTimeslice; t++ {
		for _, q := range g.Qubits() {
			n := g.At(q, t)
			if n == nil || n.Barrier || !n.Target {
				continue
			}
			gate := n.Gate
			if n.Controlled {
				gate = gate[1:]
			}
			m, ok := gateMatrix(gate, n.Params)
			if !ok {
				return nil, errors.Errorf("%s at timeslice %d: unknown gate %q", q, t, n.Gate)
			}
			var controls []int
			if n.Controlled {
				for _, p := range n.Partners {
					controls = append(controls, g.QubitIndex(p))
				}
			}
			state.apply(m, g.QubitIndex(q), controls)
		}
	}
	return state, nil
}
