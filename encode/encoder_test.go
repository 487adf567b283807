package encode

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qsofinstr/circuit"
)

func newGraph(t *testing.T, qubits, cbits int) *circuit.Graph {
	t.Helper()
	g := circuit.New("test")
	g.AddQubits("q", qubits)
	if cbits > 0 {
		g.AddCregs("c", cbits)
	}
	return g
}

func q(i int) string { return circuit.BitName("q", i) }
func c(i int) string { return circuit.BitName("c", i) }

const last = Word(1) << 63

func TestEncodeHadamardThenCX(t *testing.T) {
	g := newGraph(t, 2, 0)
	require.NoError(t, g.SingleGate("h", q(0), nil, nil))
	require.NoError(t, g.ControlledGate("cx", []string{q(0)}, q(1), nil, nil))

	p, err := Encode(g)
	require.NoError(t, err)
	require.Len(t, p.Slices, 2)
	assert.Equal(t, 1, p.QubitBits)

	h := p.Slices[0].Words
	require.Len(t, h, 1)
	assert.Equal(t, last|4<<55|ones(55), h[0])
	assert.Equal(t, SingleGate, h[0].Opcode())

	cx := p.Slices[1].Words
	require.Len(t, cx, 1)
	assert.Equal(t, last|1<<60|1<<57|1<<53|ones(53), cx[0])
	assert.Equal(t, ControlGate, cx[0].Opcode())
}

func TestEncodeRotationParameter(t *testing.T) {
	g := newGraph(t, 1, 0)
	require.NoError(t, g.SingleGate("rx", q(0), []float64{math.Pi / 2}, nil))

	p, err := Encode(g)
	require.NoError(t, err)
	words := p.Words()
	require.Len(t, words, 2)
	assert.True(t, words[0].Last())
	assert.False(t, words[1].Last())

	cos, sin := splitPair(words[1])
	assert.InDelta(t, math.Cos(math.Pi/4), FromFixed(cos), 1.0/fixedScale)
	assert.InDelta(t, math.Sin(math.Pi/4), FromFixed(sin), 1.0/fixedScale)
	assert.Equal(t, ParamWord(math.Pi/4), words[1])
}

func TestEncodeRthetaKeepsAngle(t *testing.T) {
	g := newGraph(t, 2, 0)
	require.NoError(t, g.ControlledGate("crtheta", []string{q(0)}, q(1), []float64{math.Pi / 3}, nil))

	p, err := Encode(g)
	require.NoError(t, err)
	words := p.Words()
	require.Len(t, words, 2)
	assert.Equal(t, ParamWord(math.Pi/3), words[1])
}

func TestEncodeParameterWordsFollowHeader(t *testing.T) {
	g := newGraph(t, 2, 0)
	require.NoError(t, g.SingleGate("rz", q(0), []float64{0.5}, nil))
	require.NoError(t, g.SingleGate("rx", q(1), []float64{1.5}, nil))

	p, err := Encode(g)
	require.NoError(t, err)
	words := p.Words()
	require.Len(t, words, 3)
	assert.True(t, words[0].Last())
	assert.Equal(t, SingleGate, words[0].Opcode())
	assert.Equal(t, ParamWord(0.25), words[1])
	assert.Equal(t, ParamWord(0.75), words[2])
}

func TestEncodeMeasurementBeforeCondition(t *testing.T) {
	g := newGraph(t, 2, 1)
	require.NoError(t, g.Measure([]string{q(0)}, []string{c(0)}, nil))
	cond, err := g.Condition("c", -1, 1)
	require.NoError(t, err)
	require.NoError(t, g.SingleGate("x", q(1), nil, cond))

	p, err := Encode(g)
	require.NoError(t, err)
	require.Len(t, p.Slices, 2)

	assert.Equal(t, 1, p.Slices[0].Index)
	assert.Equal(t, []Word{last | 5<<60 | ones(59)}, p.Slices[0].Words)

	assert.Equal(t, 2, p.Slices[1].Index)
	assert.Equal(t, []Word{last | 2<<60 | 1<<58 | 1<<54 | 1<<52 | ones(52)}, p.Slices[1].Words)
}

func TestEncodeRangeCondition(t *testing.T) {
	g := circuit.New("range")
	g.AddQubits("q", 3)
	g.AddCregs("a", 1)
	g.AddCregs("c", 2)
	require.NoError(t, g.Measure([]string{q(0), q(1)}, []string{c(0), c(1)}, nil))
	cond, err := g.Condition("c", -1, 3)
	require.NoError(t, err)
	require.Equal(t, circuit.MultiBit, cond.Kind)
	require.NoError(t, g.SingleGate("x", q(2), nil, cond))

	p, err := Encode(g)
	require.NoError(t, err)
	require.Len(t, p.Slices, 2)
	assert.Equal(t, []Word{last | 5<<60 | 1<<56 | ones(56)}, p.Slices[0].Words)
	assert.Equal(t,
		[]Word{last | 2<<60 | 1<<59 | 2<<57 | 1<<53 | 1<<51 | 2<<49 | 3<<46 | ones(46)},
		p.Slices[1].Words)
}

func TestEncodeMultiControl(t *testing.T) {
	g := newGraph(t, 3, 0)
	require.NoError(t, g.ControlledGate("cx", []string{q(0), q(1)}, q(2), nil, nil))

	p, err := Encode(g)
	require.NoError(t, err)
	assert.Equal(t, []Word{last | 1<<60 | 1<<59 | 3<<56 | 2<<54 | 1<<50 | ones(50)}, p.Words())
}

func TestEncodeControlCondition(t *testing.T) {
	g := newGraph(t, 3, 2)
	require.NoError(t, g.Measure([]string{q(0)}, []string{c(1)}, nil))
	cond, err := g.Condition("c", 1, 1)
	require.NoError(t, err)
	require.NoError(t, g.ControlledGate("cz", []string{q(1)}, q(2), nil, cond))

	p, err := Encode(g)
	require.NoError(t, err)
	require.Len(t, p.Slices, 2)
	w := p.Slices[1].Words
	require.Len(t, w, 1)
	assert.Equal(t, ControlGateCond, w[0].Opcode())
	// ctrl=1 target=2 gate=3 bit=1 value=1, fields from bit 57
	assert.Equal(t, last|3<<60|1<<56|2<<54|3<<50|1<<48|1<<47|ones(47), w[0])
}

func TestEncodeMarkerCategoryLast(t *testing.T) {
	g := newGraph(t, 3, 0)
	require.NoError(t, g.SingleGate("x", q(0), nil, nil))
	require.NoError(t, g.Reset([]string{q(1)}, nil))
	require.NoError(t, g.SingleGate("h", q(2), nil, nil))

	p, err := Encode(g)
	require.NoError(t, err)
	words := p.Words()
	require.Len(t, words, 2)
	assert.Equal(t, 6<<60|1<<58|ones(58), words[0])
	assert.Equal(t, last|1<<54|2<<52|4<<48|ones(48), words[1])
}

func TestEncodeWordOverflow(t *testing.T) {
	g := newGraph(t, 16, 0)
	for i := range 16 {
		require.NoError(t, g.SingleGate("x", q(i), nil, nil))
	}

	p, err := Encode(g)
	require.NoError(t, err)
	words := p.Words()
	require.Len(t, words, 3)
	for i, w := range words {
		assert.Equal(t, SingleGate, w.Opcode())
		assert.Equal(t, i == 2, w.Last())
	}
	assert.Equal(t, ones(4), words[0]&ones(4))

	ops, err := Decode(words, 16)
	require.NoError(t, err)
	require.Len(t, ops, 16)
	for i, op := range ops {
		assert.Equal(t, i, op.Qubit)
		assert.Equal(t, "x", op.Gate)
	}
}

func TestEncodeDecoherenceProbabilities(t *testing.T) {
	g := newGraph(t, 3, 0)
	for i, p := range []float64{0.1, 0.2, 0.3} {
		require.NoError(t, g.Opaque("mixamp", []string{q(i)}, []float64{p}, nil))
	}

	p, err := Encode(g)
	require.NoError(t, err)
	words := p.Words()
	require.Len(t, words, 3)
	assert.Equal(t, Decoherence, words[0].Opcode())
	assert.True(t, words[0].Last())

	hi, lo := splitPair(words[1])
	assert.Equal(t, FixedPoint(0.1), hi)
	assert.Equal(t, FixedPoint(0.2), lo)
	hi, _ = splitPair(words[2])
	assert.Equal(t, FixedPoint(0.3), hi)
	assert.Equal(t, ones(32), words[2]&ones(32))
}

func TestEncodeMeasurementBatchAtLatestTimeslice(t *testing.T) {
	g := newGraph(t, 2, 2)
	require.NoError(t, g.SingleGate("h", q(1), nil, nil))
	require.NoError(t, g.Measure([]string{q(0)}, []string{c(0)}, nil))
	require.NoError(t, g.Measure([]string{q(1)}, []string{c(1)}, nil))
	require.Equal(t, 2, g.MeasuredHighWater)

	p, err := Encode(g)
	require.NoError(t, err)
	require.Len(t, p.Slices, 2)
	assert.Equal(t, []Word{last | 4<<55 | 1<<59 | ones(55)}, p.Slices[0].Words)
	assert.Equal(t, []Word{last | 5<<60 | 1<<58 | ones(58)}, p.Slices[1].Words)
}

func TestEncodeUnknownGate(t *testing.T) {
	g := newGraph(t, 1, 0)
	require.NoError(t, g.SingleGate("sdg", q(0), nil, nil))

	_, err := Encode(g)
	assert.ErrorContains(t, err, `unknown gate "sdg"`)
}

func TestEncodeIdempotent(t *testing.T) {
	g := sampleGraph(t)
	a, err := Encode(g)
	require.NoError(t, err)
	b, err := Encode(g)
	require.NoError(t, err)
	assert.Equal(t, a.Words(), b.Words())
	assert.Equal(t, a.Digest(), b.Digest())
}

func TestEncodeSurvivesJSON(t *testing.T) {
	g := sampleGraph(t)
	var buf bytes.Buffer
	require.NoError(t, circuit.Dump(&buf, g))
	loaded, err := circuit.Load(&buf)
	require.NoError(t, err)

	a, err := Encode(g)
	require.NoError(t, err)
	b, err := Encode(loaded)
	require.NoError(t, err)
	assert.Equal(t, a.Words(), b.Words())
}

func TestSliceStateMeasurementYieldsMarker(t *testing.T) {
	s := newSliceState(1)
	s.addMeasurements([]Word{header(Measurement) | ones(headerPos)})
	require.True(t, s.measured[0].Last())

	ln := s.lane(LaneSingle, 5)
	ln.put(1, 1)
	ln.put(1, GateBits)
	assert.False(t, s.measured[0].Last())

	s.flush()
	words := s.words()
	require.Len(t, words, 2)
	assert.Equal(t, Measurement, words[0].Opcode())
	assert.False(t, words[0].Last())
	assert.True(t, words[1].Last())
}

func TestEncodeConditionSharingMeasurementSlice(t *testing.T) {
	g := newGraph(t, 2, 1)
	g.Place(q(0), &circuit.Node{Gate: "M", Cregs: []string{c(0)}, Target: true, Timeslice: 1, Measurement: true})
	g.Place(q(1), &circuit.Node{Gate: "x", Target: true, Timeslice: 1,
		Cond: &circuit.Condition{Register: c(0), Value: 1, Kind: circuit.SingleBit}})

	p, err := Encode(g)
	require.NoError(t, err)
	require.Len(t, p.Slices, 1)
	words := p.Slices[0].Words
	require.Len(t, words, 2)
	assert.Equal(t, Measurement, words[0].Opcode())
	assert.False(t, words[0].Last())
	assert.Equal(t, SingleGateCond, words[1].Opcode())
	assert.True(t, words[1].Last())
}

func TestEncodeRejectsConditionWithoutEncoding(t *testing.T) {
	build := map[string]func(g *circuit.Graph, cond *circuit.Condition) error{
		"reset": func(g *circuit.Graph, cond *circuit.Condition) error {
			return g.Reset([]string{q(1)}, cond)
		},
		"measure": func(g *circuit.Graph, cond *circuit.Condition) error {
			return g.Measure([]string{q(1)}, []string{c(1)}, cond)
		},
		"mixamp": func(g *circuit.Graph, cond *circuit.Condition) error {
			return g.Opaque("mixamp", []string{q(1)}, []float64{0.1}, cond)
		},
	}
	for name, add := range build {
		t.Run(name, func(t *testing.T) {
			g := newGraph(t, 3, 2)
			require.NoError(t, g.Measure([]string{q(0)}, []string{c(0)}, nil))
			cond, err := g.Condition("c", 0, 1)
			require.NoError(t, err)
			require.NoError(t, add(g, cond))

			_, err = Encode(g)
			assert.ErrorContains(t, err, "cannot be conditioned")
		})
	}
}

func TestSliceStateSubKindTie(t *testing.T) {
	s := newSliceState(1)
	s.lane(LaneSingleCondRange, 10).put(0, 10)
	s.lane(LaneSingleCondBit, 10).put(0, 10)
	s.flush()

	assert.False(t, s.lanes[LaneSingleCondBit].words[0].Last())
	assert.True(t, s.lanes[LaneSingleCondRange].words[0].Last())
	words := s.words()
	assert.True(t, words[len(words)-1].Last())
}

func sampleGraph(t *testing.T) *circuit.Graph {
	t.Helper()
	g := newGraph(t, 3, 2)
	require.NoError(t, g.SingleGate("h", q(0), nil, nil))
	require.NoError(t, g.ControlledGate("cx", []string{q(0)}, q(1), nil, nil))
	require.NoError(t, g.SingleGate("ry", q(2), []float64{0.3}, nil))
	require.NoError(t, g.ControlledGate("crz", []string{q(2)}, q(1), []float64{-1.2}, nil))
	require.NoError(t, g.Measure([]string{q(0), q(1)}, []string{c(0), c(1)}, nil))
	cond, err := g.Condition("c", -1, 2)
	require.NoError(t, err)
	require.NoError(t, g.SingleGate("rtheta", q(2), []float64{0.7}, cond))
	require.NoError(t, g.Opaque("mixphase", []string{q(0)}, []float64{0.05}, nil))
	require.NoError(t, g.Reset([]string{q(1)}, nil))
	return g
}
