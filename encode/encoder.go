package encode

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qsofinstr/circuit"
)

// Option configures Encode.
type Option func(*encoder)

// WithLogger routes encoder debug output to log.
func WithLogger(log *zap.Logger) Option {
	return func(e *encoder) {
		if log != nil {
			e.log = log
		}
	}
}

type encoder struct {
	g      *circuit.Graph
	log    *zap.Logger
	layout layout
	slices map[int]*sliceState
	buf    *MeasurementBuffer
}

// Encode walks a scheduled graph and returns its instruction stream.
// Timeslices are visited in increasing order and qubits in declaration
// order; each timeslice is flushed after its last qubit.
func Encode(g *circuit.Graph, opts ...Option) (*Program, error) {
	n := max(g.NumQubits(), 1)
	e := &encoder{
		g:      g,
		log:    zap.NewNop(),
		layout: newLayout(n),
		slices: make(map[int]*sliceState),
		buf:    NewMeasurementBuffer(QubitBits(n)),
	}
	for _, opt := range opts {
		opt(e)
	}

	for t := 1; t <= g.MaxTimeslice; t++ {
		for _, q := range g.Qubits() {
			node := g.At(q, t)
			if node == nil {
				continue
			}
			if err := e.node(t, q, node); err != nil {
				return nil, err
			}
		}
		if s, ok := e.slices[t]; ok {
			s.flush()
		}
	}
	e.flushMeasurements()

	p := &Program{Qubits: g.NumQubits(), QubitBits: e.layout.qubitBits}
	for t := 1; t <= g.MaxTimeslice; t++ {
		s, ok := e.slices[t]
		if !ok {
			continue
		}
		if words := s.words(); len(words) > 0 {
			p.Slices = append(p.Slices, Slice{Index: t, Words: words})
		}
	}
	e.log.Debug("encoded program",
		zap.String("circuit", g.Name),
		zap.Int("timeslices", len(p.Slices)),
		zap.Int("words", len(p.Words())))
	return p, nil
}

func (e *encoder) slice(t int) *sliceState {
	s, ok := e.slices[t]
	if !ok {
		s = newSliceState(t)
		e.slices[t] = s
	}
	return s
}

// flushMeasurements writes the pending measurement batch into the timeslice
// of its latest measurement.
func (e *encoder) flushMeasurements() {
	if e.buf.Flushed() {
		return
	}
	words, t := e.buf.Close()
	e.slice(t).addMeasurements(words)
	e.log.Debug("measurement batch flushed", zap.Int("timeslice", t), zap.Int("words", len(words)))
}

func (e *encoder) node(t int, qubit string, n *circuit.Node) error {
	q := e.g.QubitIndex(qubit)
	if n.Conditioned() && !Conditional(n) {
		return errors.Errorf("timeslice %d: %s on %s cannot be conditioned", t, n.Gate, qubit)
	}
	switch {
	case n.Barrier:
		return nil
	case n.Measurement:
		e.buf.Add(q, t)
		return nil
	case n.Reset:
		return e.reset(t, q)
	case circuit.IsDecoherence(n.Gate):
		return e.decoherence(t, q, n)
	case n.Controlled:
		if !n.Target {
			return nil
		}
		return e.controlled(t, q, n)
	default:
		return e.single(t, q, n)
	}
}

// Conditional reports whether n has an instruction encoding that carries a
// classical condition. Barriers, measurements, resets and decoherence do not.
func Conditional(n *circuit.Node) bool {
	return !n.Barrier && !n.Measurement && !n.Reset && !circuit.IsDecoherence(n.Gate)
}

// group opens room in lane l of timeslice t.
func (e *encoder) group(t int, l Lane) (*lane, error) {
	if !e.layout.fits(l) {
		return nil, errors.Errorf("%s operands of %d bits do not fit in one word", l.Category(), e.layout.width[l])
	}
	return e.slice(t).lane(l, e.layout.width[l]), nil
}

func (e *encoder) single(t, q int, n *circuit.Node) error {
	sel, ok := circuit.SingleGates[n.Gate]
	if !ok {
		return errors.Errorf("timeslice %d: unknown gate %q", t, n.Gate)
	}
	qb := e.layout.qubitBits

	if !n.Conditioned() {
		ln, err := e.group(t, LaneSingle)
		if err != nil {
			return err
		}
		ln.put(uint64(q), qb)
		ln.put(uint64(sel), GateBits)
		e.parameter(ln, n)
		return nil
	}

	e.flushMeasurements()
	cond, err := e.condition(n.Cond)
	if err != nil {
		return errors.Wrapf(err, "timeslice %d: %s", t, n.Gate)
	}
	l := LaneSingleCondBit
	if cond.rng {
		l = LaneSingleCondRange
	}
	ln, err := e.group(t, l)
	if err != nil {
		return err
	}
	ln.put(uint64(q), qb)
	ln.put(uint64(sel), GateBits)
	e.putCondition(ln, cond)
	e.parameter(ln, n)
	return nil
}

func (e *encoder) controlled(t, q int, n *circuit.Node) error {
	sel, ok := circuit.ControlledGates[n.Gate]
	if !ok {
		return errors.Errorf("timeslice %d: unknown controlled gate %q", t, n.Gate)
	}
	multi := len(n.Partners) > 1

	var cond operandCond
	l := LaneControlOne
	if multi {
		l = LaneControlMany
	}
	if n.Conditioned() {
		e.flushMeasurements()
		var err error
		if cond, err = e.condition(n.Cond); err != nil {
			return errors.Wrapf(err, "timeslice %d: %s", t, n.Gate)
		}
		l = controlCondLane(multi, cond.rng)
	}

	ln, err := e.group(t, l)
	if err != nil {
		return err
	}
	e.putControls(ln, n.Partners)
	ln.put(uint64(q), e.layout.qubitBits)
	ln.put(uint64(sel), GateBits)
	if n.Conditioned() {
		e.putCondition(ln, cond)
	}
	e.parameter(ln, n)
	return nil
}

// putControls writes one control index, or a mask with control i at bit i
// of an N-bit field.
func (e *encoder) putControls(ln *lane, controls []string) {
	if len(controls) == 1 {
		ln.put(uint64(e.g.QubitIndex(controls[0])), e.layout.qubitBits)
		return
	}
	var mask uint64
	for _, c := range controls {
		mask |= 1 << e.g.QubitIndex(c)
	}
	ln.put(mask, e.layout.qubits)
}

func (e *encoder) decoherence(t, q int, n *circuit.Node) error {
	ln, err := e.group(t, LaneDecoherence)
	if err != nil {
		return err
	}
	ln.put(uint64(q), e.layout.qubitBits)
	ln.put(uint64(circuit.DecoherenceOps[n.Gate]), DecoherenceBits)
	var p float64
	if len(n.Params) > 0 {
		p = n.Params[0]
	}
	ln.probability(p)
	return nil
}

func (e *encoder) reset(t, q int) error {
	ln, err := e.group(t, LaneReset)
	if err != nil {
		return err
	}
	ln.put(uint64(q), e.layout.qubitBits)
	return nil
}

// parameter appends the cos/sin word of a rotation.
func (e *encoder) parameter(ln *lane, n *circuit.Node) {
	if !circuit.EncodesParameter(n.Gate) || len(n.Params) == 0 {
		return
	}
	theta := n.Params[0]
	if circuit.HalvesAngle(n.Gate) {
		theta /= 2
	}
	ln.trail(ParamWord(theta))
}

// operandCond is a condition resolved to classical bit indices.
type operandCond struct {
	rng   bool
	bit   int // single bit, or lower bound of the range
	hi    int
	value int
}

func (e *encoder) condition(c *circuit.Condition) (operandCond, error) {
	qb := e.layout.qubitBits
	var oc operandCond
	if c.Kind == circuit.MultiBit {
		oc.rng = true
		oc.bit = e.g.CregIndex(circuit.BitName(c.Register, 0))
		oc.hi = oc.bit + e.g.RegisterSize(c.Register) - 1
		oc.value = c.Value
		if c.Value < 0 || (e.layout.qubits < 63 && c.Value >= 1<<e.layout.qubits) {
			return oc, errors.Errorf("condition value %d does not fit in %d bits", c.Value, e.layout.qubits)
		}
	} else {
		oc.bit = e.g.CregIndex(c.Register)
		oc.hi = oc.bit
		oc.value = c.Value & 1
	}
	if oc.hi >= 1<<qb {
		return oc, errors.Errorf("classical bit %d does not fit in %d bits", oc.hi, qb)
	}
	return oc, nil
}

func (e *encoder) putCondition(ln *lane, c operandCond) {
	qb := e.layout.qubitBits
	ln.put(uint64(c.bit), qb)
	if !c.rng {
		ln.put(uint64(c.value), 1)
		return
	}
	ln.put(uint64(c.hi), qb)
	ln.put(uint64(c.value), e.layout.qubits)
}
