package encode

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"qsofinstr/circuit"
)

// Cond is a decoded classical condition.
type Cond struct {
	Range bool
	Bit   int // tested bit, or lower bound of the range
	Hi    int
	Value int
}

// Op is one operation recovered from an instruction stream.
type Op struct {
	Slice    int // ordinal of the timeslice, from 0
	Category Category
	Gate     string
	Qubit    int
	Controls []int
	Cond     *Cond

	HasParam bool
	Cos, Sin float64
	Prob     float64

	Last bool // the header word carries bit 63
}

// String returns a one-line summary of the operation.
func (op Op) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s", op.Category)
	if op.Gate != "" {
		fmt.Fprintf(&sb, " %-8s", op.Gate)
	}
	fmt.Fprintf(&sb, " q%d", op.Qubit)
	if len(op.Controls) > 0 {
		fmt.Fprintf(&sb, " ctrl %v", op.Controls)
	}
	if c := op.Cond; c != nil {
		if c.Range {
			fmt.Fprintf(&sb, " if c[%d:%d]==%d", c.Bit, c.Hi, c.Value)
		} else {
			fmt.Fprintf(&sb, " if c%d==%d", c.Bit, c.Value)
		}
	}
	if op.HasParam {
		fmt.Fprintf(&sb, " cos=%.6f sin=%.6f", op.Cos, op.Sin)
	}
	if op.Category == Decoherence {
		fmt.Fprintf(&sb, " p=%.6f", op.Prob)
	}
	if op.Last {
		sb.WriteString(" [last]")
	}
	return sb.String()
}

var (
	singleNames  = invert(circuit.SingleGates)
	controlNames = invert(circuit.ControlledGates)
	decohNames   = invert(circuit.DecoherenceOps)
)

func invert(m map[string]uint8) map[uint8]string {
	out := make(map[uint8]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// laneOf recovers the lane of a header word from its opcode and flag bits.
func laneOf(w Word) (Lane, bool) {
	flag := func(bit int) bool { return w.Field(bit, 1) == 1 }
	switch w.Opcode() {
	case SingleGate:
		return LaneSingle, true
	case SingleGateCond:
		if flag(headerPos - 1) {
			return LaneSingleCondRange, true
		}
		return LaneSingleCondBit, true
	case ControlGate:
		if flag(headerPos - 1) {
			return LaneControlMany, true
		}
		return LaneControlOne, true
	case ControlGateCond:
		return controlCondLane(flag(headerPos-1), flag(headerPos-2)), true
	case Decoherence:
		return LaneDecoherence, true
	case Reset:
		return LaneReset, true
	}
	return 0, false
}

type fieldReader struct {
	w   Word
	pos int
}

func (r *fieldReader) next(width int) int {
	hi := r.pos - 1
	r.pos -= width
	return int(r.w.Field(hi, width))
}

// more reports whether another group of width bits follows. The first group
// of a header is always real; a later one is padding when every bit below
// the read position is set.
func (r *fieldReader) more(start, width int) bool {
	if r.pos < width {
		return false
	}
	return r.pos == start || r.w&ones(r.pos) != ones(r.pos)
}

// Decode walks an instruction stream for a circuit of the given qubit count.
// After the first group of a word, a group whose remaining bits are all ones
// is read as padding, so a later measurement, reset or decoherence on the
// highest qubit index in the same word is lost when the qubit count is a
// power of two.
func Decode(words []Word, qubits int) ([]Op, error) {
	ly := newLayout(max(qubits, 1))
	qb := ly.qubitBits
	var ops []Op
	slice := 0
	for i := 0; i < len(words); i++ {
		w := words[i]
		if w.Opcode() == Measurement {
			r := fieldReader{w: w, pos: headerPos}
			for r.more(headerPos, qb) {
				ops = append(ops, Op{Slice: slice, Category: Measurement, Qubit: r.next(qb), Last: w.Last()})
			}
			if w.Last() {
				slice++
			}
			continue
		}

		l, ok := laneOf(w)
		if !ok {
			return nil, errors.Errorf("word %d: unknown opcode %d", i, uint8(w.Opcode()))
		}
		_, pos := l.header()
		r := fieldReader{w: w, pos: pos}
		start := len(ops)
		for r.more(pos, ly.width[l]) {
			op, err := decodeGroup(&r, l, ly)
			if err != nil {
				return nil, errors.Wrapf(err, "word %d", i)
			}
			op.Slice, op.Last = slice, w.Last()
			ops = append(ops, op)
		}

		group := ops[start:]
		if l == LaneDecoherence {
			for j := range group {
				if j%2 == 0 {
					i++
					if i >= len(words) {
						return nil, errors.Errorf("word %d: missing probability word", i)
					}
				}
				hi, lo := splitPair(words[i])
				if j%2 == 0 {
					group[j].Prob = FromFixed(hi)
				} else {
					group[j].Prob = FromFixed(lo)
				}
			}
		} else {
			for j := range group {
				if !circuit.EncodesParameter(group[j].Gate) {
					continue
				}
				i++
				if i >= len(words) {
					return nil, errors.Errorf("word %d: missing parameter word", i)
				}
				c, s := splitPair(words[i])
				group[j].HasParam = true
				group[j].Cos, group[j].Sin = FromFixed(c), FromFixed(s)
			}
		}
		if w.Last() {
			slice++
		}
	}
	return ops, nil
}

func decodeGroup(r *fieldReader, l Lane, ly layout) (Op, error) {
	qb := ly.qubitBits
	op := Op{Category: l.Category()}

	switch l.Category() {
	case Reset:
		op.Qubit = r.next(qb)
		return op, nil
	case Decoherence:
		op.Qubit = r.next(qb)
		kind := uint8(r.next(DecoherenceBits))
		op.Gate = decohNames[kind]
		return op, nil
	case SingleGate, SingleGateCond:
		op.Qubit = r.next(qb)
		sel := uint8(r.next(GateBits))
		name, ok := singleNames[sel]
		if !ok {
			return op, errors.Errorf("unknown gate selector %d", sel)
		}
		op.Gate = name
	case ControlGate, ControlGateCond:
		if l.multiControl() {
			mask := r.next(ly.qubits)
			for q := range ly.qubits {
				if mask>>q&1 == 1 {
					op.Controls = append(op.Controls, q)
				}
			}
		} else {
			op.Controls = []int{r.next(qb)}
		}
		op.Qubit = r.next(qb)
		sel := uint8(r.next(GateBits))
		name, ok := controlNames[sel]
		if !ok {
			return op, errors.Errorf("unknown controlled gate selector %d", sel)
		}
		op.Gate = name
	}

	if c := l.Category(); c == SingleGateCond || c == ControlGateCond {
		cond := &Cond{Range: l.rangeCond(), Bit: r.next(qb)}
		if cond.Range {
			cond.Hi = r.next(qb)
			cond.Value = r.next(ly.qubits)
		} else {
			cond.Hi = cond.Bit
			cond.Value = r.next(1)
		}
		op.Cond = cond
	}
	return op, nil
}
