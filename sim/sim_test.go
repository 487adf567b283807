package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qsofinstr/circuit"
	"qsofinstr/schedule"
)

func q(i int) string { return circuit.BitName("q", i) }

func TestBellState(t *testing.T) {
	g := circuit.New("bell")
	g.AddQubits("q", 2)
	require.NoError(t, g.SingleGate("h", q(0), nil, nil))
	require.NoError(t, g.ControlledGate("cx", []string{q(0)}, q(1), nil, nil))

	s, err := Simulate(g)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, real(s.Amplitudes[0])*real(s.Amplitudes[0]), 1e-12)
	assert.InDelta(t, 0.5, real(s.Amplitudes[3])*real(s.Amplitudes[3]), 1e-12)
	assert.Zero(t, s.Amplitudes[1])
	assert.Zero(t, s.Amplitudes[2])

	for _, p := range s.Probabilities() {
		assert.InDelta(t, 0.5, p.Prob0, 1e-12)
		assert.InDelta(t, 0.5, p.Prob1, 1e-12)
	}
}

func TestToffoli(t *testing.T) {
	g := circuit.New("toffoli")
	g.AddQubits("q", 3)
	require.NoError(t, g.SingleGate("x", q(0), nil, nil))
	require.NoError(t, g.SingleGate("x", q(1), nil, nil))
	require.NoError(t, g.ControlledGate("cx", []string{q(0), q(1)}, q(2), nil, nil))

	s, err := Simulate(g)
	require.NoError(t, err)
	assert.InDelta(t, 1, real(s.Amplitudes[7]), 1e-12)
}

func TestRotations(t *testing.T) {
	g := circuit.New("rot")
	g.AddQubits("q", 1)
	require.NoError(t, g.SingleGate("ry", q(0), []float64{math.Pi / 2}, nil))
	require.NoError(t, g.SingleGate("rz", q(0), []float64{math.Pi}, nil))
	require.NoError(t, g.SingleGate("rtheta", q(0), []float64{math.Pi}, nil))
	require.NoError(t, g.SingleGate("u", q(0), []float64{math.Pi / 2, 0, math.Pi}, nil))

	s, err := Simulate(g)
	require.NoError(t, err)
	// ry(pi/2)|0> = |+>; rz(pi) then rtheta(pi) bring it back to |+> up to phase; u(pi/2,0,pi) = H.
	assert.InDelta(t, 1, s.Probabilities()[0].Prob0, 1e-12)
}

func TestUnitaryRejects(t *testing.T) {
	g := circuit.New("measured")
	g.AddQubits("q", 2)
	g.AddCregs("c", 1)
	require.NoError(t, g.Barrier([]string{q(0), q(1)}))
	require.NoError(t, Unitary(g))

	require.NoError(t, g.Measure([]string{q(0)}, []string{"c[0]"}, nil))
	_, err := Simulate(g)
	assert.ErrorContains(t, err, "not unitary")

	noisy := circuit.New("noisy")
	noisy.AddQubits("q", 1)
	require.NoError(t, noisy.Opaque("mixamp", []string{q(0)}, []float64{0.1}, nil))
	assert.ErrorContains(t, Unitary(noisy), "decoherence")
}

func TestSchedulingPreservesState(t *testing.T) {
	g := circuit.New("ghz")
	g.AddQubits("q", 4)
	require.NoError(t, g.SingleGate("h", q(0), nil, nil))
	require.NoError(t, g.SingleGate("ry", q(3), []float64{0.7}, nil))
	require.NoError(t, g.ControlledGate("cx", []string{q(0)}, q(1), nil, nil))
	require.NoError(t, g.SingleGate("h", q(2), nil, nil))
	require.NoError(t, g.ControlledGate("crz", []string{q(2)}, q(3), []float64{1.1}, nil))
	require.NoError(t, g.ControlledGate("cx", []string{q(1)}, q(2), nil, nil))
	require.NoError(t, g.SingleGate("t", q(0), nil, nil))
	require.NoError(t, g.ControlledGate("ch", []string{q(0), q(2)}, q(3), nil, nil))

	want, err := Simulate(g)
	require.NoError(t, err)
	for _, mode := range []schedule.Mode{schedule.Packed, schedule.Isolated} {
		got, err := Simulate(schedule.Schedule(g, schedule.Config{Enabled: true, Mode: mode}))
		require.NoError(t, err)
		assert.InDelta(t, 1, want.Fidelity(got), 1e-9, mode.String())
	}
}
